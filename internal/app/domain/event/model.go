package event

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type classifies an event.
type Type string

const (
	TypeFellowship Type = "fellowship"
	TypeWebinar    Type = "webinar"
	TypeWorkshop   Type = "workshop"
	TypePitch      Type = "pitch"
)

// DefaultCapacity applies to events created without an explicit capacity.
const DefaultCapacity = 100

// DefaultRegistrationType is recorded when a registration names no type.
const DefaultRegistrationType = "standard"

// Event is a scheduled gathering members can register for.
type Event struct {
	ID          int64           `db:"id"`
	Title       string          `db:"title"`
	Type        Type            `db:"event_type"`
	Description string          `db:"description"`
	Date        time.Time       `db:"date"`
	Location    *string         `db:"location"`
	Capacity    int64           `db:"capacity"`
	Registered  int64           `db:"registered"`
	Price       decimal.Decimal `db:"price"`
	Speaker     *string         `db:"speaker"`
	Agenda      *string         `db:"agenda"`
	CreatedAt   time.Time       `db:"created_at"`
}

// Full reports whether the event has no seats left.
func (e Event) Full() bool {
	return e.Registered >= e.Capacity
}

// Upcoming reports whether the event starts after now.
func (e Event) Upcoming(now time.Time) bool {
	return e.Date.After(now)
}

// Registration links an attendee to an event.
type Registration struct {
	ID        int64     `db:"id"`
	EventID   int64     `db:"event_id"`
	UserID    *int64    `db:"user_id"`
	Type      string    `db:"registration_type"`
	CreatedAt time.Time `db:"created_at"`
}
