package app

import (
	"database/sql"

	"github.com/WoodJim/manage-calendar-events/internal/config"
	"github.com/WoodJim/manage-calendar-events/internal/eventbus"
	"github.com/WoodJim/manage-calendar-events/pkg/calendar"
	"github.com/WoodJim/manage-calendar-events/pkg/permission"
	"github.com/WoodJim/manage-calendar-events/pkg/provider"
	log "github.com/sirupsen/logrus"
)

// Dependencies holds all services and handlers for the application.
type Dependencies struct {
	Bus   *eventbus.Bus
	Store provider.Store
	Perms permission.Service

	CalendarService *calendar.Service
	CalendarHandler *calendar.Handler
}

// BuildDependencies initializes and wires all application services and
// handlers.
func BuildDependencies(db *sql.DB, cfg config.Application) *Dependencies {
	deps := &Dependencies{}

	deps.Bus = eventbus.New()
	subscribeAuditLog(deps.Bus)

	deps.Store = provider.NewSQLStore(db, cfg.Database.Driver)
	deps.Perms = permission.NewStaticService(cfg.Permissions)

	deps.CalendarService = calendar.NewService(deps.Store, deps.Perms, deps.Bus)
	deps.CalendarHandler = calendar.NewHandler(deps.CalendarService, deps.Perms)

	return deps
}

// subscribeAuditLog records every calendar mutation on the bus.
func subscribeAuditLog(bus *eventbus.Bus) {
	audit := func(e eventbus.Event) error {
		log.Infof("audit: %s %+v", e.Type, e.Data)
		return nil
	}
	for _, eventType := range []eventbus.EventType{
		eventbus.EventCreated,
		eventbus.EventUpdated,
		eventbus.EventDeleted,
		eventbus.ReminderAdded,
		eventbus.ReminderUpdated,
		eventbus.ReminderDeleted,
		eventbus.AttendeesAdded,
		eventbus.AttendeeDeleted,
		eventbus.AttendeesRewritten,
	} {
		bus.Subscribe(eventType, audit)
	}
}
