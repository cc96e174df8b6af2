package calendar

import (
	"context"
	"sync"
)

// enrichWorkers bounds the fan-out of per-event reminder and attendee queries.
const enrichWorkers = 4

// enrich populates the reminder and attendee fields of every event. The
// per-event lookups run concurrently on a bounded pool and are joined before
// returning, so callers always receive fully populated, immutable records.
func (s *Service) enrich(ctx context.Context, events []Event) error {
	if len(events) == 0 {
		return nil
	}

	workers := enrichWorkers
	if len(events) < workers {
		workers = len(events)
	}

	jobs := make(chan int)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstErr error

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				if err := s.enrichEvent(ctx, &events[i]); err != nil {
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
				}
			}
		}()
	}
	for i := range events {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return firstErr
}

// enrichEvent loads reminders and attendees for one event. Each worker owns a
// distinct index, so no locking is needed on the event itself.
func (s *Service) enrichEvent(ctx context.Context, event *Event) error {
	reminders, err := s.getReminders(ctx, event.EventID)
	if err != nil {
		return err
	}
	if len(reminders) > 0 {
		reminder := reminders[len(reminders)-1]
		event.Reminder = &reminder
	}

	attendees, err := s.getAttendees(ctx, event.EventID)
	if err != nil {
		return err
	}
	event.Attendees = attendees
	return nil
}
