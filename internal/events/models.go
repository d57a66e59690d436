package events

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// tableName is injected at startup from EVENTS_TABLE_NAME.
var tableName = "events"

// SetTableName overrides the backing table name. Call before opening the DB.
func SetTableName(name string) {
	if name != "" {
		tableName = name
	}
}

// Waitlist is the ordered FIFO queue of userIds stored on the event row.
// Keeping it on the row lets the queue and registeredCount move under one
// row lock.
type Waitlist []string

// Value implements driver.Valuer, serialising to JSONB. A nil waitlist is
// stored as an empty array, never NULL.
func (w Waitlist) Value() (driver.Value, error) {
	if w == nil {
		return "[]", nil
	}
	data, err := json.Marshal([]string(w))
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Scan implements sql.Scanner.
func (w *Waitlist) Scan(value interface{}) error {
	if value == nil {
		*w = Waitlist{}
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("cannot scan %T into Waitlist", value)
	}

	var out []string
	if err := json.Unmarshal(data, &out); err != nil {
		return fmt.Errorf("failed to decode waitlist: %w", err)
	}
	*w = out
	return nil
}

// Contains reports whether userID is queued.
func (w Waitlist) Contains(userID string) bool {
	for _, id := range w {
		if id == userID {
			return true
		}
	}
	return false
}

// Remove returns a copy with userID removed, preserving the order of the
// remaining entries.
func (w Waitlist) Remove(userID string) Waitlist {
	out := make(Waitlist, 0, len(w))
	for _, id := range w {
		if id != userID {
			out = append(out, id)
		}
	}
	return out
}

type Event struct {
	EventID     string `json:"eventId" gorm:"column:event_id;primaryKey;size:100"`
	Title       string `json:"title" gorm:"not null;size:200"`
	Description string `json:"description" gorm:"size:1000"`
	Date        string `json:"date" gorm:"not null"`
	Location    string `json:"location" gorm:"size:200"`
	Organizer   string `json:"organizer" gorm:"size:100"`
	Status      string `json:"status" gorm:"type:varchar(20);default:'active'"`

	// Engine-owned bookkeeping. Capacity and WaitlistEnabled are immutable
	// after creation; RegisteredCount and Waitlist are mutated only by the
	// registration engine.
	Capacity        int      `json:"capacity" gorm:"not null;check:capacity > 0"`
	RegisteredCount int      `json:"registeredCount" gorm:"not null;default:0;check:registered_count >= 0"`
	WaitlistEnabled bool     `json:"waitlistEnabled" gorm:"not null;default:false"`
	Waitlist        Waitlist `json:"waitlist" gorm:"type:jsonb;not null;default:'[]'"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Event) TableName() string {
	return tableName
}

type EventResponse struct {
	EventID         string    `json:"eventId"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	Date            string    `json:"date"`
	Location        string    `json:"location"`
	Organizer       string    `json:"organizer"`
	Status          string    `json:"status"`
	Capacity        int       `json:"capacity"`
	RegisteredCount int       `json:"registeredCount"`
	AvailableSpots  int       `json:"availableSpots"`
	WaitlistEnabled bool      `json:"waitlistEnabled"`
	Waitlist        Waitlist  `json:"waitlist"`
	WaitlistCount   int       `json:"waitlistCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type CreateEventRequest struct {
	EventID         string `json:"eventId" validate:"omitempty,notblank,max=100"`
	Title           string `json:"title" validate:"required,notblank,max=200"`
	Description     string `json:"description" validate:"max=1000"`
	Date            string `json:"date" validate:"required,notblank"`
	Location        string `json:"location" validate:"max=200"`
	Organizer       string `json:"organizer" validate:"max=100"`
	Status          string `json:"status" validate:"omitempty,eventstatus"`
	Capacity        int    `json:"capacity" validate:"required,min=1"`
	WaitlistEnabled bool   `json:"waitlistEnabled"`
}

// UpdateEventRequest is a partial patch of the opaque fields. The engine
// fields are listed so attempts to change them can be rejected explicitly.
type UpdateEventRequest struct {
	Title       *string `json:"title" validate:"omitempty,notblank,max=200"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
	Date        *string `json:"date" validate:"omitempty,notblank"`
	Location    *string `json:"location" validate:"omitempty,max=200"`
	Organizer   *string `json:"organizer" validate:"omitempty,max=100"`
	Status      *string `json:"status" validate:"omitempty,eventstatus"`

	// Engine-owned; any non-nil value is a validation error.
	Capacity        *int     `json:"capacity"`
	RegisteredCount *int     `json:"registeredCount"`
	WaitlistEnabled *bool    `json:"waitlistEnabled"`
	Waitlist        []string `json:"waitlist"`
}

// ToResponse converts an Event to its API representation with the computed
// availability fields.
func (e *Event) ToResponse() EventResponse {
	availableSpots := e.Capacity - e.RegisteredCount
	if availableSpots < 0 {
		availableSpots = 0
	}

	waitlist := e.Waitlist
	if waitlist == nil {
		waitlist = Waitlist{}
	}

	return EventResponse{
		EventID:         e.EventID,
		Title:           e.Title,
		Description:     e.Description,
		Date:            e.Date,
		Location:        e.Location,
		Organizer:       e.Organizer,
		Status:          e.Status,
		Capacity:        e.Capacity,
		RegisteredCount: e.RegisteredCount,
		AvailableSpots:  availableSpots,
		WaitlistEnabled: e.WaitlistEnabled,
		Waitlist:        waitlist,
		WaitlistCount:   len(waitlist),
		CreatedAt:       e.CreatedAt,
		UpdatedAt:       e.UpdatedAt,
	}
}
