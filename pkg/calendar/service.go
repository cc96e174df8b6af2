package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/WoodJim/manage-calendar-events/internal/eventbus"
	"github.com/WoodJim/manage-calendar-events/internal/utils"
	"github.com/WoodJim/manage-calendar-events/pkg/permission"
	"github.com/WoodJim/manage-calendar-events/pkg/provider"
)

// Service is the calendar access façade. It is stateless: every operation is a
// fresh view of provider state, and returned records are never mutated after
// the call returns.
type Service struct {
	store provider.Store
	perms permission.Service
	clock utils.Clock
	bus   *eventbus.Bus
}

func NewService(store provider.Store, perms permission.Service, bus *eventbus.Bus) *Service {
	return &Service{
		store: store,
		perms: perms,
		clock: utils.SystemClock{},
		bus:   bus,
	}
}

// checkPermissions gates every public operation. On denial it issues exactly
// one prompt request and fails without touching the store.
func (s *Service) checkPermissions(ctx context.Context) error {
	if s.perms.HasPermissions(ctx) {
		return nil
	}
	s.perms.Request(ctx)
	return permission.ErrDenied
}

func (s *Service) publish(ctx context.Context, eventType eventbus.EventType, data any) {
	if s.bus != nil {
		s.bus.Publish(eventbus.NewEvent(ctx, eventType, data))
	}
}

// GetCalendars enumerates all calendars visible to the host.
func (s *Service) GetCalendars(ctx context.Context) ([]Calendar, error) {
	if err := s.checkPermissions(ctx); err != nil {
		return nil, err
	}
	rows, err := s.store.Query(ctx, calendarsQuery())
	if err != nil {
		return nil, fmt.Errorf("failed to query calendars: %w", err)
	}
	calendars := make([]Calendar, 0, len(rows))
	for _, row := range rows {
		if calendar, ok := calendarFromRow(row); ok {
			calendars = append(calendars, calendar)
		}
	}
	return calendars, nil
}

// GetAllEvents returns all non-deleted events of the calendar. Recurring
// masters are replaced by their instances over the default window, which is
// [now−6 months at 00:00:00, now+6 months at 23:59:59] in local time.
func (s *Service) GetAllEvents(ctx context.Context, calendarID string) ([]Event, error) {
	if err := s.checkPermissions(ctx); err != nil {
		return nil, err
	}
	return s.getEvents(ctx, allEventsQuery(calendarID), s.defaultWindow())
}

// GetEventsByDateRange returns events whose [start, end] intersects
// [from, to], plus the expanded instances of every recurring event starting no
// later than to.
func (s *Service) GetEventsByDateRange(ctx context.Context, calendarID string, from, to time.Time) ([]Event, error) {
	if err := s.checkPermissions(ctx); err != nil {
		return nil, err
	}
	win := window{start: from.UnixMilli(), end: to.UnixMilli()}
	return s.getEvents(ctx, eventsByRangeQuery(calendarID, win.start, win.end), win)
}

// GetEvent returns the single event with the given id.
func (s *Service) GetEvent(ctx context.Context, calendarID, eventID string) (*Event, error) {
	if err := s.checkPermissions(ctx); err != nil {
		return nil, err
	}
	return s.getEvent(ctx, calendarID, eventID)
}

// getEvent maps the single matching row as-is. A recurring master keeps its
// own start and end here; every instance shares the master's id, so expansion
// would turn the one matching row into many events.
func (s *Service) getEvent(ctx context.Context, calendarID, eventID string) (*Event, error) {
	rows, err := s.store.Query(ctx, eventByIDQuery(calendarID, eventID))
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	switch len(rows) {
	case 0:
		return nil, fmt.Errorf("event %s in calendar %s: %w", eventID, calendarID, ErrEventNotFound)
	case 1:
	default:
		return nil, fmt.Errorf("expected exactly one row for event id %s, found %d", eventID, len(rows))
	}

	event, _, ok := eventFromRow(rows[0])
	if !ok {
		return nil, fmt.Errorf("event %s in calendar %s: %w", eventID, calendarID, ErrEventNotFound)
	}
	events := []Event{event}
	if err := s.enrich(ctx, events); err != nil {
		return nil, err
	}
	return &events[0], nil
}

// getEvents runs the primary event query, replaces recurring masters with
// their instances, and enriches every event with reminders and attendees
// before returning.
func (s *Service) getEvents(ctx context.Context, q provider.Query, win window) ([]Event, error) {
	rows, err := s.store.Query(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}

	events := make([]Event, 0, len(rows))
	for _, row := range rows {
		event, rule, ok := eventFromRow(row)
		if !ok {
			continue
		}
		if rule != "" {
			instances, err := s.expandInstances(ctx, event, win)
			if err != nil {
				return nil, err
			}
			events = append(events, instances...)
			continue
		}
		events = append(events, event)
	}

	if err := s.enrich(ctx, events); err != nil {
		return nil, err
	}
	return events, nil
}

type window struct {
	start int64
	end   int64
}

// defaultWindow bounds recurrence expansion when the caller gives no range.
func (s *Service) defaultWindow() window {
	now := s.clock.Now()
	past := now.AddDate(0, -6, 0)
	future := now.AddDate(0, 6, 0)
	start := time.Date(past.Year(), past.Month(), past.Day(), 0, 0, 0, 0, past.Location())
	end := time.Date(future.Year(), future.Month(), future.Day(), 23, 59, 59, 0, future.Location())
	return window{start: start.UnixMilli(), end: end.UnixMilli()}
}

// expandInstances queries the provider's instances endpoint for the master's
// concrete occurrences inside the window. The master itself is never emitted.
func (s *Service) expandInstances(ctx context.Context, master Event, win window) ([]Event, error) {
	rows, err := s.store.Instances(ctx, win.start, win.end, instancesQuery(master.EventID))
	if err != nil {
		return nil, fmt.Errorf("failed to query instances of event %s: %w", master.EventID, err)
	}
	instances := make([]Event, 0, len(rows))
	for _, row := range rows {
		if instance, ok := eventFromInstanceRow(master, row); ok {
			instances = append(instances, instance)
		}
	}
	return instances, nil
}
