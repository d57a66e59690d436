package constants

// Redis cache keys for the event read cache.
// Pattern: gatherly:{module}:{operation}:{identifier}

const (
	CachePrefix = "gatherly"
)

// Event cache keys
const (
	// Event listings (suffix :status:X, or :all)
	CacheKeyEventsList = CachePrefix + ":events:list"

	// Individual event details (suffix event-id)
	CacheKeyEventDetail = CachePrefix + ":events:detail:"
)

// EventDetailKey builds the cache key for a single event.
func EventDetailKey(eventID string) string {
	return CacheKeyEventDetail + eventID
}

// EventsListKey builds the cache key for a status-filtered listing.
func EventsListKey(status string) string {
	if status == "" {
		status = "all"
	}
	return CacheKeyEventsList + ":status:" + status
}

// EventsListPattern matches every cached listing, for invalidation.
func EventsListPattern() string {
	return CacheKeyEventsList + ":*"
}
