package calendar

import (
	"context"
	"fmt"
	"sort"

	"github.com/WoodJim/manage-calendar-events/internal/eventbus"
	"github.com/WoodJim/manage-calendar-events/pkg/provider"
	log "github.com/sirupsen/logrus"
)

// GetAttendees returns the attendees of the event: the organizer (if any)
// first, the rest deduplicated by email and sorted by it. When the
// deduplicated list is smaller than the raw row count, the provider retained
// duplicate rows from repeated edits; the rows are rewritten with the
// deduplicated list, preserving every read attribute.
func (s *Service) GetAttendees(ctx context.Context, eventID string) ([]Attendee, error) {
	if err := s.checkPermissions(ctx); err != nil {
		return nil, err
	}
	return s.getAttendees(ctx, eventID)
}

func (s *Service) getAttendees(ctx context.Context, eventID string) ([]Attendee, error) {
	rows, err := s.store.Query(ctx, attendeesQuery(eventID))
	if err != nil {
		return nil, fmt.Errorf("failed to query attendees of event %s: %w", eventID, err)
	}
	rawCount := len(rows)

	mapped := make([]Attendee, 0, len(rows))
	for _, row := range rows {
		if attendee, ok := attendeeFromRow(row); ok {
			mapped = append(mapped, attendee)
		}
	}

	// The organizer-flagged row is the surviving representative of its email
	// wherever it appears in provider order.
	var organizer *Attendee
	for i := range mapped {
		if mapped[i].IsOrganizer {
			organizer = &mapped[i]
			break
		}
	}

	seen := make(map[string]struct{}, len(mapped))
	others := make([]Attendee, 0, len(mapped))
	for _, attendee := range mapped {
		if organizer != nil && attendee.Email == organizer.Email {
			continue
		}
		if _, duplicate := seen[attendee.Email]; duplicate {
			continue
		}
		seen[attendee.Email] = struct{}{}
		others = append(others, attendee)
	}
	sort.Slice(others, func(i, j int) bool { return others[i].Email < others[j].Email })

	attendees := others
	if organizer != nil {
		attendees = append([]Attendee{*organizer}, others...)
	}

	if rawCount != len(attendees) {
		// Repair pass, not part of the read contract: a failure is logged and
		// the deduplicated list is still returned.
		if err := s.rewriteAttendees(ctx, eventID, attendees); err != nil {
			log.Errorf("failed to rewrite attendees of event %s: %v", eventID, err)
		}
	}
	return attendees, nil
}

// rewriteAttendees replaces all attendee rows of the event with the given
// list.
func (s *Service) rewriteAttendees(ctx context.Context, eventID string, attendees []Attendee) error {
	if _, err := s.store.Delete(ctx, provider.TableAttendees, provider.ColEventID+" = ?", eventID); err != nil {
		return err
	}
	if len(attendees) > 0 {
		if _, err := s.store.BulkInsert(ctx, provider.TableAttendees, attendeeValues(eventID, attendees)); err != nil {
			return err
		}
	}
	s.publish(ctx, eventbus.AttendeesRewritten, eventbus.AttendeeMutation{EventID: eventID, Count: len(attendees)})
	return nil
}

// AddAttendees bulk-inserts the attendees for the event.
func (s *Service) AddAttendees(ctx context.Context, eventID string, attendees []Attendee) error {
	if err := s.checkPermissions(ctx); err != nil {
		return err
	}
	if len(attendees) == 0 {
		return nil
	}
	if _, err := s.store.BulkInsert(ctx, provider.TableAttendees, attendeeValues(eventID, attendees)); err != nil {
		return fmt.Errorf("failed to add attendees to event %s: %w", eventID, err)
	}
	s.publish(ctx, eventbus.AttendeesAdded, eventbus.AttendeeMutation{EventID: eventID, Count: len(attendees)})
	return nil
}

// DeleteAttendee removes the attendee rows matching the attendee's email and
// returns the number of rows deleted.
func (s *Service) DeleteAttendee(ctx context.Context, eventID string, attendee Attendee) (int64, error) {
	if err := s.checkPermissions(ctx); err != nil {
		return 0, err
	}
	deleted, err := s.store.Delete(ctx, provider.TableAttendees,
		provider.ColEventID+" = ? AND "+provider.ColAttendeeEmail+" = ?", eventID, attendee.Email)
	if err != nil {
		return 0, fmt.Errorf("failed to delete attendee from event %s: %w", eventID, err)
	}
	if deleted > 0 {
		s.publish(ctx, eventbus.AttendeeDeleted, eventbus.AttendeeMutation{EventID: eventID, Count: int(deleted)})
	}
	return deleted, nil
}

func attendeeValues(eventID string, attendees []Attendee) []provider.Values {
	values := make([]provider.Values, 0, len(attendees))
	for _, attendee := range attendees {
		relationship := provider.RelationshipAttendee
		if attendee.IsOrganizer {
			relationship = provider.RelationshipOrganizer
		}
		values = append(values, provider.Values{
			provider.ColEventID:              eventID,
			provider.ColAttendeeName:         attendee.Name,
			provider.ColAttendeeEmail:        attendee.Email,
			provider.ColAttendeeRelationship: relationship,
			provider.ColAttendeeStatus:       attendee.Status,
		})
	}
	return values
}
