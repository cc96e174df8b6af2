package eventbus

const (
	EventCreated       EventType = "calendar.event.created"
	EventUpdated       EventType = "calendar.event.updated"
	EventDeleted       EventType = "calendar.event.deleted"
	ReminderAdded      EventType = "calendar.reminder.added"
	ReminderUpdated    EventType = "calendar.reminder.updated"
	ReminderDeleted    EventType = "calendar.reminder.deleted"
	AttendeesAdded     EventType = "calendar.attendees.added"
	AttendeeDeleted    EventType = "calendar.attendee.deleted"
	AttendeesRewritten EventType = "calendar.attendees.rewritten"
)

// EventMutation describes a change to an event row.
type EventMutation struct {
	CalendarID string
	EventID    string
	Title      string
}

// ReminderMutation describes a change to the reminders of an event.
type ReminderMutation struct {
	EventID string
	Minutes int64
	Rows    int64
}

// AttendeeMutation describes a change to the attendees of an event.
type AttendeeMutation struct {
	EventID string
	Count   int
}
