package calendar

import (
	"errors"
	"time"
)

// ErrEventNotFound is returned when an operation targets an event id that does
// not exist in the given calendar.
var ErrEventNotFound = errors.New("event not found")

// Calendar is one calendar visible to the host.
type Calendar struct {
	ID           string
	Name         string
	AccountName  string
	OwnerAccount string
}

// Event is a transient view of one event row, or of one expanded instance of a
// recurring event. Instances share the master's EventID and non-temporal
// fields; only StartTime and EndTime differ.
type Event struct {
	EventID     string
	Title       string
	Description string
	StartTime   time.Time
	EndTime     time.Time
	Location    string
	URL         string
	AllDay      bool
	HasAlarm    bool
	Reminder    *Reminder
	Attendees   []Attendee
}

// Attendee belongs to exactly one event. Status carries the provider's
// attendance status so rewriting attendee rows loses nothing.
type Attendee struct {
	AttendeeID  string
	Name        string
	Email       string
	IsOrganizer bool
	Status      int64
}

// Reminder fires Minutes before the event start.
type Reminder struct {
	Minutes int64
}
