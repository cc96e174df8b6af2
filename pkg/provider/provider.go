package provider

import "context"

// Tables exposed by the calendar provider store.
const (
	TableCalendars = "calendars"
	TableEvents    = "events"
	TableAttendees = "attendees"
	TableReminders = "reminders"
)

// Column names of the provider tables. The instances endpoint additionally
// exposes ColBegin and ColEnd for the concrete occurrence bounds.
const (
	ColID = "_id"

	ColCalendarDisplayName = "calendar_display_name"
	ColAccountName         = "account_name"
	ColOwnerAccount        = "owner_account"
	ColCalendarAccessLevel = "calendar_access_level"

	ColCalendarID    = "calendar_id"
	ColTitle         = "title"
	ColDescription   = "description"
	ColEventLocation = "event_location"
	ColCustomAppURI  = "custom_app_uri"
	ColDTStart       = "dtstart"
	ColDTEnd         = "dtend"
	ColDuration      = "duration"
	ColEventTimezone = "event_timezone"
	ColAllDay        = "all_day"
	ColHasAlarm      = "has_alarm"
	ColRRule         = "rrule"
	ColDeleted       = "deleted"

	ColEventID              = "event_id"
	ColAttendeeName         = "attendee_name"
	ColAttendeeEmail        = "attendee_email"
	ColAttendeeRelationship = "attendee_relationship"
	ColAttendeeStatus       = "attendee_status"

	ColMinutes = "minutes"
	ColMethod  = "method"

	ColBegin = "begin"
	ColEnd   = "end"
)

// Attendee relationship and reminder method codes, as stored by the provider.
const (
	RelationshipAttendee  = 1
	RelationshipOrganizer = 2

	MethodAlarm = 4
)

// Query describes a read against one provider table. Selection is a predicate
// with `?` placeholders bound from Args; Projection lists the columns to
// return.
type Query struct {
	Table      string
	Projection []string
	Selection  string
	Args       []any
	OrderBy    string
}

// Values holds column values for inserts and updates.
type Values map[string]any

// Store is the tabular capability the calendar façade is constructed over.
// Implementations must treat Selection strings as parameterized predicates and
// never interpolate Args into SQL.
type Store interface {
	// Query returns the matching rows of q.Table.
	Query(ctx context.Context, q Query) ([]Row, error)
	// Instances materializes recurring events into concrete occurrences
	// within [windowStart, windowEnd] (epoch ms, inclusive). The selection of
	// q filters the underlying event rows and is written against the events
	// table columns; returned rows carry ColEventID, ColBegin, ColEnd plus
	// the master's non-temporal columns, ordered by ColBegin ascending.
	Instances(ctx context.Context, windowStart, windowEnd int64, q Query) ([]Row, error)
	// Insert adds one row and returns its new identifier.
	Insert(ctx context.Context, table string, values Values) (int64, error)
	// BulkInsert adds all rows atomically and returns the number inserted.
	BulkInsert(ctx context.Context, table string, values []Values) (int64, error)
	// Update modifies matching rows and returns the number affected.
	Update(ctx context.Context, table string, values Values, selection string, args ...any) (int64, error)
	// Delete removes matching rows and returns the number affected.
	Delete(ctx context.Context, table string, selection string, args ...any) (int64, error)
}
