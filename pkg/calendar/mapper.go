package calendar

import (
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/WoodJim/manage-calendar-events/pkg/provider"
	log "github.com/sirupsen/logrus"
)

// nonNamePattern matches the email domain and every run of non-letters, the
// pieces dropped when deriving a display name from an address.
var nonNamePattern = regexp.MustCompile(`((@.*)|[^a-zA-Z])+`)

func calendarFromRow(row provider.Row) (Calendar, bool) {
	id, ok := row.String(provider.ColID)
	if !ok || id == "" {
		return Calendar{}, false
	}
	name, _ := row.String(provider.ColCalendarDisplayName)
	accountName, _ := row.String(provider.ColAccountName)
	ownerAccount, _ := row.String(provider.ColOwnerAccount)
	return Calendar{
		ID:           id,
		Name:         name,
		AccountName:  accountName,
		OwnerAccount: ownerAccount,
	}, true
}

// eventFromRow maps an event row. It reports the row's recurrence rule
// separately so the caller can decide whether to expand instead of emit.
// Rows missing any required column (id, title, start, end) are rejected.
func eventFromRow(row provider.Row) (Event, string, bool) {
	id, idOK := row.String(provider.ColID)
	title, titleOK := row.String(provider.ColTitle)
	if !idOK || !titleOK || !row.Has(provider.ColDTStart) || !row.Has(provider.ColDTEnd) {
		log.Error("skipping event row: required columns not found")
		return Event{}, "", false
	}

	start, _ := row.Int64(provider.ColDTStart)
	end, _ := row.Int64(provider.ColDTEnd)
	duration, _ := row.Int64(provider.ColDuration)
	if end == 0 && duration > 0 {
		end = start + duration
	}

	description, _ := row.String(provider.ColDescription)
	location, _ := row.String(provider.ColEventLocation)
	url, _ := row.String(provider.ColCustomAppURI)
	rule, _ := row.String(provider.ColRRule)

	return Event{
		EventID:     id,
		Title:       title,
		Description: description,
		StartTime:   time.UnixMilli(start),
		EndTime:     time.UnixMilli(end),
		Location:    location,
		URL:         url,
		AllDay:      row.Bool(provider.ColAllDay),
		HasAlarm:    row.Bool(provider.ColHasAlarm),
	}, rule, true
}

// eventFromInstanceRow builds the occurrence of a recurring master: the
// master's identifier and non-temporal fields with the instance bounds.
func eventFromInstanceRow(master Event, row provider.Row) (Event, bool) {
	begin, beginOK := row.Int64(provider.ColBegin)
	end, endOK := row.Int64(provider.ColEnd)
	if !beginOK || !endOK {
		log.Error("skipping instance row: begin/end columns not found")
		return Event{}, false
	}
	instance := master
	instance.StartTime = time.UnixMilli(begin)
	instance.EndTime = time.UnixMilli(end)
	return instance, true
}

func attendeeFromRow(row provider.Row) (Attendee, bool) {
	id, ok := row.String(provider.ColID)
	if !ok {
		return Attendee{}, false
	}
	name, _ := row.String(provider.ColAttendeeName)
	email, _ := row.String(provider.ColAttendeeEmail)
	relationship, _ := row.Int64(provider.ColAttendeeRelationship)
	status, _ := row.Int64(provider.ColAttendeeStatus)

	if name == "" && email != "" {
		name = displayNameFromEmail(email)
	}
	return Attendee{
		AttendeeID:  id,
		Name:        name,
		Email:       email,
		IsOrganizer: relationship == provider.RelationshipOrganizer,
		Status:      status,
	}, true
}

// displayNameFromEmail derives "Ann smith" from "ann.smith@x.io": drop the
// domain, replace non-letter runs in the local part with spaces, upper-case
// the first rune.
func displayNameFromEmail(email string) string {
	name := strings.TrimSpace(nonNamePattern.ReplaceAllString(email, " "))
	if name == "" {
		return name
	}
	runes := []rune(name)
	runes[0] = unicode.ToUpper(runes[0])
	return string(runes)
}

func reminderFromRow(row provider.Row) (Reminder, bool) {
	minutes, ok := row.Int64(provider.ColMinutes)
	if !ok {
		return Reminder{}, false
	}
	return Reminder{Minutes: minutes}, true
}
