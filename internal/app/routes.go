package app

import (
	"github.com/gorilla/mux"
)

// RegisterRoutes registers all API endpoints.
func RegisterRoutes(r *mux.Router, deps *Dependencies) {

	// Permissions
	r.HandleFunc("/api/permissions", deps.CalendarHandler.HasPermissions).Methods("GET")
	r.HandleFunc("/api/permissions/request", deps.CalendarHandler.RequestPermissions).Methods("POST")

	// Calendars
	r.HandleFunc("/api/calendars", deps.CalendarHandler.GetCalendars).Methods("GET")

	// Events
	r.HandleFunc("/api/calendars/{calendarId}/events", deps.CalendarHandler.GetEvents).Methods("GET")
	r.HandleFunc("/api/calendars/{calendarId}/events", deps.CalendarHandler.CreateUpdateEvent).Methods("POST")
	r.HandleFunc("/api/calendars/{calendarId}/events/{eventId}", deps.CalendarHandler.GetEvent).Methods("GET")
	r.HandleFunc("/api/calendars/{calendarId}/events/{eventId}", deps.CalendarHandler.DeleteEvent).Methods("DELETE")

	// Reminders
	r.HandleFunc("/api/calendars/{calendarId}/events/{eventId}/reminders", deps.CalendarHandler.AddReminder).Methods("POST")
	r.HandleFunc("/api/calendars/{calendarId}/events/{eventId}/reminders", deps.CalendarHandler.UpdateReminder).Methods("PUT")
	r.HandleFunc("/api/events/{eventId}/reminders", deps.CalendarHandler.GetReminders).Methods("GET")
	r.HandleFunc("/api/events/{eventId}/reminders", deps.CalendarHandler.DeleteReminder).Methods("DELETE")

	// Attendees
	r.HandleFunc("/api/events/{eventId}/attendees", deps.CalendarHandler.GetAttendees).Methods("GET")
	r.HandleFunc("/api/events/{eventId}/attendees", deps.CalendarHandler.AddAttendees).Methods("POST")
	r.HandleFunc("/api/events/{eventId}/attendees", deps.CalendarHandler.DeleteAttendee).Methods("DELETE")
}
