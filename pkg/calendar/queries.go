package calendar

import (
	"github.com/WoodJim/manage-calendar-events/pkg/provider"
)

// eventProjection is the column set every event read uses.
var eventProjection = []string{
	provider.ColID,
	provider.ColTitle,
	provider.ColDescription,
	provider.ColEventLocation,
	provider.ColCustomAppURI,
	provider.ColDTStart,
	provider.ColDTEnd,
	provider.ColAllDay,
	provider.ColDuration,
	provider.ColHasAlarm,
	provider.ColRRule,
}

var attendeeProjection = []string{
	provider.ColID,
	provider.ColEventID,
	provider.ColAttendeeName,
	provider.ColAttendeeEmail,
	provider.ColAttendeeRelationship,
	provider.ColAttendeeStatus,
}

var reminderProjection = []string{
	provider.ColEventID,
	provider.ColMethod,
	provider.ColMinutes,
}

func allEventsQuery(calendarID string) provider.Query {
	return provider.Query{
		Table:      provider.TableEvents,
		Projection: eventProjection,
		Selection:  provider.ColCalendarID + " = ? AND " + provider.ColDeleted + " != 1",
		Args:       []any{calendarID},
		OrderBy:    provider.ColDTStart + " ASC",
	}
}

// eventsByRangeQuery matches events overlapping [startMs, endMs] plus every
// recurring event starting no later than endMs; the latter are replaced by
// their expanded instances.
func eventsByRangeQuery(calendarID string, startMs, endMs int64) provider.Query {
	selection := provider.ColCalendarID + " = ?" +
		" AND " + provider.ColDeleted + " != 1" +
		" AND ((" + provider.ColDTStart + " <= ? AND " + provider.ColDTEnd + " >= ?)" +
		" OR (" + provider.ColRRule + " != '' AND " + provider.ColDTStart + " <= ?))"
	return provider.Query{
		Table:      provider.TableEvents,
		Projection: eventProjection,
		Selection:  selection,
		Args:       []any{calendarID, endMs, startMs, endMs},
		OrderBy:    provider.ColDTStart + " ASC",
	}
}

func eventByIDQuery(calendarID, eventID string) provider.Query {
	return provider.Query{
		Table:      provider.TableEvents,
		Projection: eventProjection,
		Selection:  provider.ColCalendarID + " = ? AND " + provider.ColID + " = ?",
		Args:       []any{calendarID, eventID},
		OrderBy:    provider.ColDTStart + " ASC",
	}
}

func instancesQuery(eventID string) provider.Query {
	return provider.Query{
		Table:     provider.TableEvents,
		Selection: provider.ColID + " = ? AND " + provider.ColDeleted + " != 1",
		Args:      []any{eventID},
	}
}

func calendarsQuery() provider.Query {
	return provider.Query{
		Table: provider.TableCalendars,
		Projection: []string{
			provider.ColID,
			provider.ColAccountName,
			provider.ColCalendarDisplayName,
			provider.ColOwnerAccount,
			provider.ColCalendarAccessLevel,
		},
	}
}

func attendeesQuery(eventID string) provider.Query {
	return provider.Query{
		Table:      provider.TableAttendees,
		Projection: attendeeProjection,
		Selection:  provider.ColEventID + " = ?",
		Args:       []any{eventID},
	}
}

func remindersQuery(eventID string) provider.Query {
	return provider.Query{
		Table:      provider.TableReminders,
		Projection: reminderProjection,
		Selection:  provider.ColEventID + " = ?",
		Args:       []any{eventID},
	}
}
