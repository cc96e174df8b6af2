package calendar

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/WoodJim/manage-calendar-events/internal/eventbus"
	"github.com/WoodJim/manage-calendar-events/pkg/provider"
)

// CreateUpdateEvent inserts the event when its id is empty, populating
// EventID from the new row, and updates the matching row otherwise. An update
// that matches no row fails with ErrEventNotFound.
func (s *Service) CreateUpdateEvent(ctx context.Context, calendarID string, event *Event) error {
	if err := s.checkPermissions(ctx); err != nil {
		return err
	}

	values := provider.Values{
		provider.ColDTStart:       event.StartTime.UnixMilli(),
		provider.ColDTEnd:         event.EndTime.UnixMilli(),
		provider.ColTitle:         event.Title,
		provider.ColDescription:   event.Description,
		provider.ColCalendarID:    calendarID,
		provider.ColEventTimezone: time.Local.String(),
		provider.ColAllDay:        boolToInt(event.AllDay),
		provider.ColHasAlarm:      boolToInt(event.HasAlarm),
	}
	if event.Location != "" {
		values[provider.ColEventLocation] = event.Location
	}
	if event.URL != "" {
		values[provider.ColCustomAppURI] = event.URL
	}

	if event.EventID == "" {
		id, err := s.store.Insert(ctx, provider.TableEvents, values)
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
		event.EventID = strconv.FormatInt(id, 10)
		s.publish(ctx, eventbus.EventCreated, eventbus.EventMutation{CalendarID: calendarID, EventID: event.EventID, Title: event.Title})
		return nil
	}

	updated, err := s.store.Update(ctx, provider.TableEvents, values,
		provider.ColCalendarID+" = ? AND "+provider.ColID+" = ?", calendarID, event.EventID)
	if err != nil {
		return fmt.Errorf("failed to update event %s: %w", event.EventID, err)
	}
	if updated == 0 {
		return fmt.Errorf("event %s in calendar %s: %w", event.EventID, calendarID, ErrEventNotFound)
	}
	s.publish(ctx, eventbus.EventUpdated, eventbus.EventMutation{CalendarID: calendarID, EventID: event.EventID, Title: event.Title})
	return nil
}

// DeleteEvent removes the event and reports whether any row was deleted.
func (s *Service) DeleteEvent(ctx context.Context, calendarID, eventID string) (bool, error) {
	if err := s.checkPermissions(ctx); err != nil {
		return false, err
	}
	deleted, err := s.store.Delete(ctx, provider.TableEvents,
		provider.ColCalendarID+" = ? AND "+provider.ColID+" = ?", calendarID, eventID)
	if err != nil {
		return false, fmt.Errorf("failed to delete event %s: %w", eventID, err)
	}
	if deleted > 0 {
		s.publish(ctx, eventbus.EventDeleted, eventbus.EventMutation{CalendarID: calendarID, EventID: eventID})
	}
	return deleted > 0, nil
}

// GetReminders returns all reminders of the event.
func (s *Service) GetReminders(ctx context.Context, eventID string) ([]Reminder, error) {
	if err := s.checkPermissions(ctx); err != nil {
		return nil, err
	}
	return s.getReminders(ctx, eventID)
}

func (s *Service) getReminders(ctx context.Context, eventID string) ([]Reminder, error) {
	rows, err := s.store.Query(ctx, remindersQuery(eventID))
	if err != nil {
		return nil, fmt.Errorf("failed to query reminders of event %s: %w", eventID, err)
	}
	reminders := make([]Reminder, 0, len(rows))
	for _, row := range rows {
		if reminder, ok := reminderFromRow(row); ok {
			reminders = append(reminders, reminder)
		}
	}
	return reminders, nil
}

// AddReminder inserts an alarm reminder for the event and persists the
// event's has-alarm flag.
func (s *Service) AddReminder(ctx context.Context, calendarID, eventID string, minutes int64) error {
	if err := s.checkPermissions(ctx); err != nil {
		return err
	}
	if minutes < 0 {
		return fmt.Errorf("reminder minutes must be non-negative, got %d", minutes)
	}
	event, err := s.getEvent(ctx, calendarID, eventID)
	if err != nil {
		return err
	}

	_, err = s.store.Insert(ctx, provider.TableReminders, provider.Values{
		provider.ColEventID: event.EventID,
		provider.ColMinutes: minutes,
		provider.ColMethod:  provider.MethodAlarm,
	})
	if err != nil {
		return fmt.Errorf("failed to add reminder to event %s: %w", eventID, err)
	}

	if _, err := s.store.Update(ctx, provider.TableEvents,
		provider.Values{provider.ColHasAlarm: 1},
		provider.ColID+" = ?", event.EventID); err != nil {
		return fmt.Errorf("failed to set alarm flag on event %s: %w", eventID, err)
	}

	s.publish(ctx, eventbus.ReminderAdded, eventbus.ReminderMutation{EventID: eventID, Minutes: minutes, Rows: 1})
	return nil
}

// UpdateReminder sets all reminder rows of the event to the given minutes and
// returns the number of rows updated.
func (s *Service) UpdateReminder(ctx context.Context, calendarID, eventID string, minutes int64) (int64, error) {
	if err := s.checkPermissions(ctx); err != nil {
		return 0, err
	}
	if minutes < 0 {
		return 0, fmt.Errorf("reminder minutes must be non-negative, got %d", minutes)
	}
	event, err := s.getEvent(ctx, calendarID, eventID)
	if err != nil {
		return 0, err
	}

	updated, err := s.store.Update(ctx, provider.TableReminders,
		provider.Values{provider.ColMinutes: minutes},
		provider.ColEventID+" = ?", event.EventID)
	if err != nil {
		return 0, fmt.Errorf("failed to update reminders of event %s: %w", eventID, err)
	}
	s.publish(ctx, eventbus.ReminderUpdated, eventbus.ReminderMutation{EventID: eventID, Minutes: minutes, Rows: updated})
	return updated, nil
}

// DeleteReminder removes all reminder rows of the event and returns the
// number of rows deleted.
func (s *Service) DeleteReminder(ctx context.Context, eventID string) (int64, error) {
	if err := s.checkPermissions(ctx); err != nil {
		return 0, err
	}
	deleted, err := s.store.Delete(ctx, provider.TableReminders, provider.ColEventID+" = ?", eventID)
	if err != nil {
		return 0, fmt.Errorf("failed to delete reminders of event %s: %w", eventID, err)
	}
	if deleted > 0 {
		s.publish(ctx, eventbus.ReminderDeleted, eventbus.ReminderMutation{EventID: eventID, Rows: deleted})
	}
	return deleted, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
