package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"gatherly/internal/shared/apierr"
	"gatherly/internal/shared/constants"
)

type fakeRepo struct {
	mu     sync.Mutex
	events map[string]Event
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{events: make(map[string]Event)}
}

func (f *fakeRepo) Create(ctx context.Context, event *Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[event.EventID]; ok {
		return ErrDuplicateEvent
	}
	f.events[event.EventID] = *event
	return nil
}

func (f *fakeRepo) GetByID(ctx context.Context, eventID string) (*Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[eventID]
	if !ok {
		return nil, ErrEventNotFound
	}
	return &event, nil
}

func (f *fakeRepo) GetAll(ctx context.Context, status string) ([]Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Event
	for _, event := range f.events {
		if status == "" || event.Status == status {
			out = append(out, event)
		}
	}
	return out, nil
}

func (f *fakeRepo) UpdateOpaque(ctx context.Context, eventID string, updates map[string]interface{}) (*Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	event, ok := f.events[eventID]
	if !ok {
		return nil, ErrEventNotFound
	}
	for col, val := range updates {
		switch col {
		case "title":
			event.Title = val.(string)
		case "description":
			event.Description = val.(string)
		case "date":
			event.Date = val.(string)
		case "location":
			event.Location = val.(string)
		case "organizer":
			event.Organizer = val.(string)
		case "status":
			event.Status = val.(string)
		case "updated_at":
			event.UpdatedAt = val.(time.Time)
		default:
			return nil, fmt.Errorf("unexpected column %s", col)
		}
	}
	f.events[eventID] = event
	return &event, nil
}

func (f *fakeRepo) Delete(ctx context.Context, eventID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[eventID]; !ok {
		return ErrEventNotFound
	}
	delete(f.events, eventID)
	return nil
}

// fakeCache is an in-memory cache.Service without TTL expiry.
type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string, dest interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.entries[key]
	if !ok {
		return errors.New("cache miss")
	}
	f.hits++
	return json.Unmarshal(data, dest)
}

func (f *fakeCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = data
	f.sets++
	return nil
}

func (f *fakeCache) Delete(ctx context.Context, keys ...string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, key := range keys {
		delete(f.entries, key)
	}
	return nil
}

func (f *fakeCache) DeletePattern(ctx context.Context, pattern string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	for key := range f.entries {
		if strings.HasPrefix(key, prefix) {
			delete(f.entries, key)
		}
	}
	return nil
}

func (f *fakeCache) Ping(ctx context.Context) error { return nil }

func newTestService(repo Repository) Service {
	return NewService(repo, nil, time.Minute, time.Minute)
}

func requireCode(t *testing.T, err error, code apierr.Code) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, apierr.From(err).Code)
}

func TestCreateEventDefaults(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	resp, err := svc.CreateEvent(context.Background(), CreateEventRequest{
		Title:    "Launch Party",
		Date:     "2026-10-01",
		Capacity: 50,
	})
	require.NoError(t, err)
	require.NotEmpty(t, resp.EventID)
	require.Equal(t, "active", resp.Status)
	require.Equal(t, 0, resp.RegisteredCount)
	require.Equal(t, 50, resp.AvailableSpots)
	require.False(t, resp.WaitlistEnabled)
	require.NotNil(t, resp.Waitlist)
	require.Empty(t, resp.Waitlist)
	require.Equal(t, 0, resp.WaitlistCount)
}

func TestCreateEventWithExplicitID(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	resp, err := svc.CreateEvent(context.Background(), CreateEventRequest{
		EventID:         "summer-fest",
		Title:           "Summer Fest",
		Date:            "2026-07-15",
		Capacity:        100,
		Status:          "published",
		WaitlistEnabled: true,
	})
	require.NoError(t, err)
	require.Equal(t, "summer-fest", resp.EventID)
	require.Equal(t, "published", resp.Status)
	require.True(t, resp.WaitlistEnabled)
}

func TestCreateEventDuplicateID(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	req := CreateEventRequest{EventID: "ev1", Title: "Meetup", Date: "2026-10-01", Capacity: 10}
	_, err := svc.CreateEvent(context.Background(), req)
	require.NoError(t, err)

	_, err = svc.CreateEvent(context.Background(), req)
	requireCode(t, err, apierr.CodeDuplicateEvent)
}

func TestCreateEventValidation(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.CreateEvent(context.Background(), CreateEventRequest{
		Title:    "   ",
		Date:     "2026-10-01",
		Capacity: 0,
	})
	requireCode(t, err, apierr.CodeValidation)

	details := apierr.From(err).Details
	fields := make(map[string]bool, len(details))
	for _, d := range details {
		fields[d.Field] = true
	}
	require.True(t, fields["title"])
	require.True(t, fields["capacity"])
}

func TestCreateEventInvalidStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.CreateEvent(context.Background(), CreateEventRequest{
		Title:    "Launch Party",
		Date:     "2026-10-01",
		Capacity: 10,
		Status:   "bogus",
	})
	requireCode(t, err, apierr.CodeValidation)
}

func TestGetEventNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.GetEvent(context.Background(), "nope")
	requireCode(t, err, apierr.CodeEventNotFound)
}

func TestGetEventComputedFields(t *testing.T) {
	repo := newFakeRepo()
	repo.events["ev1"] = Event{
		EventID:         "ev1",
		Title:           "Meetup",
		Capacity:        10,
		RegisteredCount: 7,
		WaitlistEnabled: true,
		Waitlist:        Waitlist{"a", "b"},
	}
	svc := newTestService(repo)

	resp, err := svc.GetEvent(context.Background(), "ev1")
	require.NoError(t, err)
	require.Equal(t, 3, resp.AvailableSpots)
	require.Equal(t, 2, resp.WaitlistCount)
}

func TestGetEventCachesReads(t *testing.T) {
	repo := newFakeRepo()
	repo.events["ev1"] = Event{EventID: "ev1", Title: "Meetup", Capacity: 10}
	fc := newFakeCache()
	svc := NewService(repo, fc, time.Minute, time.Minute)

	first, err := svc.GetEvent(context.Background(), "ev1")
	require.NoError(t, err)
	require.Equal(t, 1, fc.sets)

	// Mutate the store directly; the cached copy must be served.
	repo.events["ev1"] = Event{EventID: "ev1", Title: "Renamed", Capacity: 10}

	second, err := svc.GetEvent(context.Background(), "ev1")
	require.NoError(t, err)
	require.Equal(t, first.Title, second.Title)
	require.Equal(t, 1, fc.hits)
}

func TestUpdateEventInvalidatesCache(t *testing.T) {
	repo := newFakeRepo()
	repo.events["ev1"] = Event{EventID: "ev1", Title: "Meetup", Capacity: 10, Waitlist: Waitlist{}}
	fc := newFakeCache()
	svc := NewService(repo, fc, time.Minute, time.Minute)

	_, err := svc.GetEvent(context.Background(), "ev1")
	require.NoError(t, err)

	title := "Renamed"
	_, err = svc.UpdateEvent(context.Background(), "ev1", UpdateEventRequest{Title: &title})
	require.NoError(t, err)

	fc.mu.Lock()
	_, cached := fc.entries[constants.EventDetailKey("ev1")]
	fc.mu.Unlock()
	require.False(t, cached)

	resp, err := svc.GetEvent(context.Background(), "ev1")
	require.NoError(t, err)
	require.Equal(t, "Renamed", resp.Title)
}

func TestListEventsStatusFilter(t *testing.T) {
	repo := newFakeRepo()
	repo.events["ev1"] = Event{EventID: "ev1", Status: "active", Capacity: 5}
	repo.events["ev2"] = Event{EventID: "ev2", Status: "cancelled", Capacity: 5}
	svc := newTestService(repo)

	all, err := svc.ListEvents(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 2)

	active, err := svc.ListEvents(context.Background(), "active")
	require.NoError(t, err)
	require.Len(t, active, 1)
	require.Equal(t, "ev1", active[0].EventID)
}

func TestListEventsRejectsUnknownStatus(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	_, err := svc.ListEvents(context.Background(), "bogus")
	requireCode(t, err, apierr.CodeValidation)
}

func TestUpdateEventOpaqueFields(t *testing.T) {
	repo := newFakeRepo()
	repo.events["ev1"] = Event{EventID: "ev1", Title: "Meetup", Capacity: 10, Waitlist: Waitlist{}}
	svc := newTestService(repo)

	title := "Renamed"
	status := "completed"
	resp, err := svc.UpdateEvent(context.Background(), "ev1", UpdateEventRequest{
		Title:  &title,
		Status: &status,
	})
	require.NoError(t, err)
	require.Equal(t, "Renamed", resp.Title)
	require.Equal(t, "completed", resp.Status)
	require.Equal(t, 10, resp.Capacity)
}

func TestUpdateEventRejectsEngineFields(t *testing.T) {
	repo := newFakeRepo()
	repo.events["ev1"] = Event{EventID: "ev1", Title: "Meetup", Capacity: 10}
	svc := newTestService(repo)

	capacity := 20
	count := 3
	_, err := svc.UpdateEvent(context.Background(), "ev1", UpdateEventRequest{
		Capacity:        &capacity,
		RegisteredCount: &count,
	})
	requireCode(t, err, apierr.CodeValidation)

	details := apierr.From(err).Details
	require.Len(t, details, 2)
	require.Equal(t, "capacity", details[0].Field)
	require.Equal(t, "registeredCount", details[1].Field)

	// Store untouched.
	event, err := repo.GetByID(context.Background(), "ev1")
	require.NoError(t, err)
	require.Equal(t, 10, event.Capacity)
	require.Equal(t, 0, event.RegisteredCount)
}

func TestUpdateEventEmptyPatch(t *testing.T) {
	repo := newFakeRepo()
	repo.events["ev1"] = Event{EventID: "ev1", Title: "Meetup", Capacity: 10}
	svc := newTestService(repo)

	_, err := svc.UpdateEvent(context.Background(), "ev1", UpdateEventRequest{})
	requireCode(t, err, apierr.CodeValidation)
}

func TestUpdateEventNotFound(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	title := "Renamed"
	_, err := svc.UpdateEvent(context.Background(), "nope", UpdateEventRequest{Title: &title})
	requireCode(t, err, apierr.CodeEventNotFound)
}

func TestDeleteEvent(t *testing.T) {
	repo := newFakeRepo()
	repo.events["ev1"] = Event{EventID: "ev1", Title: "Meetup", Capacity: 10}
	svc := newTestService(repo)

	require.NoError(t, svc.DeleteEvent(context.Background(), "ev1"))

	err := svc.DeleteEvent(context.Background(), "ev1")
	requireCode(t, err, apierr.CodeEventNotFound)
}
