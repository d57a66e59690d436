package registrations

import (
	"time"
)

// tableName is injected at startup from REGISTRATIONS_TABLE_NAME.
var tableName = "registrations"

// SetTableName overrides the backing table name. Call before opening the DB.
func SetTableName(name string) {
	if name != "" {
		tableName = name
	}
}

const (
	StatusConfirmed = "confirmed"
	StatusWaitlist  = "waitlist"
)

// Registration links a user to an event. The (userId, eventId) pair is the
// primary key, so a user holds at most one registration per event regardless
// of status. EventTitle and EventDate are denormalised at registration time
// so listings do not fan out into event reads.
type Registration struct {
	UserID  string `json:"userId" gorm:"column:user_id;primaryKey;size:100"`
	EventID string `json:"eventId" gorm:"column:event_id;primaryKey;size:100;index:idx_registrations_event_id"`
	Status  string `json:"status" gorm:"type:varchar(20);not null"`

	EventTitle string `json:"eventTitle" gorm:"size:200"`
	EventDate  string `json:"eventDate"`

	RegisteredAt time.Time `json:"registeredAt" gorm:"not null"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// TableName specifies the table name for GORM
func (Registration) TableName() string {
	return tableName
}

type RegistrationResponse struct {
	UserID       string    `json:"userId"`
	EventID      string    `json:"eventId"`
	Status       string    `json:"status"`
	EventTitle   string    `json:"eventTitle"`
	EventDate    string    `json:"eventDate"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// RegistrationList is the collection shape for both the per-user and
// per-event listings.
type RegistrationList struct {
	Registrations []RegistrationResponse `json:"registrations"`
	Total         int                    `json:"total"`
}

// RegisterRequest is the body of the user-centric registration call.
type RegisterRequest struct {
	EventID string `json:"eventId" validate:"required,notblank,max=100"`
}

// EventRegisterRequest is the body of the event-centric alias.
type EventRegisterRequest struct {
	UserID string `json:"userId" validate:"required,userid"`
}

// ToResponse converts a Registration to its API representation.
func (r *Registration) ToResponse() RegistrationResponse {
	return RegistrationResponse{
		UserID:       r.UserID,
		EventID:      r.EventID,
		Status:       r.Status,
		EventTitle:   r.EventTitle,
		EventDate:    r.EventDate,
		RegisteredAt: r.RegisteredAt,
	}
}
