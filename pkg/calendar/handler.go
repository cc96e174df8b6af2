package calendar

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/WoodJim/manage-calendar-events/internal/rest"
	"github.com/WoodJim/manage-calendar-events/pkg/permission"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

type Handler struct {
	service *Service
	perms   permission.Service
}

func NewHandler(service *Service, perms permission.Service) *Handler {
	return &Handler{service: service, perms: perms}
}

type CalendarDTO struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	AccountName  string `json:"accountName"`
	OwnerAccount string `json:"ownerAccount"`
}

type EventDTO struct {
	EventID     string        `json:"eventId,omitempty"`
	Title       string        `json:"title"`
	Description string        `json:"description,omitempty"`
	StartDate   int64         `json:"startDate"`
	EndDate     int64         `json:"endDate"`
	Location    string        `json:"location,omitempty"`
	URL         string        `json:"url,omitempty"`
	IsAllDay    bool          `json:"isAllDay"`
	HasAlarm    bool          `json:"hasAlarm"`
	Reminder    *ReminderDTO  `json:"reminder,omitempty"`
	Attendees   []AttendeeDTO `json:"attendees,omitempty"`
}

type AttendeeDTO struct {
	AttendeeID       string `json:"attendeeId,omitempty"`
	Name             string `json:"name"`
	EmailAddress     string `json:"emailAddress"`
	IsOrganiser      bool   `json:"isOrganiser"`
	AttendanceStatus int64  `json:"attendanceStatus,omitempty"`
}

type ReminderDTO struct {
	Minutes int64 `json:"minutes"`
}

func (h *Handler) GetCalendars(w http.ResponseWriter, r *http.Request) {
	calendars, err := h.service.GetCalendars(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]CalendarDTO, 0, len(calendars))
	for _, c := range calendars {
		dtos = append(dtos, CalendarDTO{
			ID:           c.ID,
			Name:         c.Name,
			AccountName:  c.AccountName,
			OwnerAccount: c.OwnerAccount,
		})
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetEvents serves all events of a calendar, or the events in a date range
// when both startDate and endDate (epoch ms) query parameters are present.
func (h *Handler) GetEvents(w http.ResponseWriter, r *http.Request) {
	calendarID := mux.Vars(r)["calendarId"]
	startParam := r.URL.Query().Get("startDate")
	endParam := r.URL.Query().Get("endDate")

	var events []Event
	var err error
	if startParam != "" || endParam != "" {
		start, startErr := strconv.ParseInt(startParam, 10, 64)
		end, endErr := strconv.ParseInt(endParam, 10, 64)
		if startErr != nil || endErr != nil {
			writeJSON(w, http.StatusBadRequest, rest.ErrorResponse{
				Error:   "Invalid date range",
				Details: "'startDate' and 'endDate' must both be epoch milliseconds",
			})
			return
		}
		events, err = h.service.GetEventsByDateRange(r.Context(), calendarID, time.UnixMilli(start), time.UnixMilli(end))
	} else {
		events, err = h.service.GetAllEvents(r.Context(), calendarID)
	}
	if err != nil {
		writeError(w, err)
		return
	}

	dtos := make([]EventDTO, 0, len(events))
	for _, e := range events {
		dtos = append(dtos, eventToDTO(e))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	event, err := h.service.GetEvent(r.Context(), vars["calendarId"], vars["eventId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, eventToDTO(*event))
}

func (h *Handler) CreateUpdateEvent(w http.ResponseWriter, r *http.Request) {
	calendarID := mux.Vars(r)["calendarId"]
	var dto EventDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	event := dtoToEvent(dto)
	created := event.EventID == ""
	if err := h.service.CreateUpdateEvent(r.Context(), calendarID, &event); err != nil {
		writeError(w, err)
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, eventToDTO(event))
}

func (h *Handler) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	deleted, err := h.service.DeleteEvent(r.Context(), vars["calendarId"], vars["eventId"])
	if err != nil {
		writeError(w, err)
		return
	}
	if !deleted {
		writeJSON(w, http.StatusNotFound, rest.ErrorResponse{Error: "event not found"})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) GetReminders(w http.ResponseWriter, r *http.Request) {
	reminders, err := h.service.GetReminders(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]ReminderDTO, 0, len(reminders))
	for _, reminder := range reminders {
		dtos = append(dtos, ReminderDTO{Minutes: reminder.Minutes})
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) AddReminder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var dto ReminderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.service.AddReminder(r.Context(), vars["calendarId"], vars["eventId"], dto.Minutes); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) UpdateReminder(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var dto ReminderDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	updated, err := h.service.UpdateReminder(r.Context(), vars["calendarId"], vars["eventId"], dto.Minutes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"updated": updated})
}

func (h *Handler) DeleteReminder(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.DeleteReminder(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

func (h *Handler) GetAttendees(w http.ResponseWriter, r *http.Request) {
	attendees, err := h.service.GetAttendees(r.Context(), mux.Vars(r)["eventId"])
	if err != nil {
		writeError(w, err)
		return
	}
	dtos := make([]AttendeeDTO, 0, len(attendees))
	for _, attendee := range attendees {
		dtos = append(dtos, attendeeToDTO(attendee))
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) AddAttendees(w http.ResponseWriter, r *http.Request) {
	eventID := mux.Vars(r)["eventId"]
	var dtos []AttendeeDTO
	if err := json.NewDecoder(r.Body).Decode(&dtos); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	attendees := make([]Attendee, 0, len(dtos))
	for _, dto := range dtos {
		attendees = append(attendees, dtoToAttendee(dto))
	}
	if err := h.service.AddAttendees(r.Context(), eventID, attendees); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handler) DeleteAttendee(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var dto AttendeeDTO
	if err := json.NewDecoder(r.Body).Decode(&dto); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	deleted, err := h.service.DeleteAttendee(r.Context(), vars["eventId"], dtoToAttendee(dto))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"deleted": deleted})
}

// HasPermissions reports the current grant state.
func (h *Handler) HasPermissions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"granted": h.perms.HasPermissions(r.Context())})
}

// RequestPermissions initiates a permission prompt.
func (h *Handler) RequestPermissions(w http.ResponseWriter, r *http.Request) {
	h.perms.Request(r.Context())
	w.WriteHeader(http.StatusAccepted)
}

func eventToDTO(e Event) EventDTO {
	dto := EventDTO{
		EventID:     e.EventID,
		Title:       e.Title,
		Description: e.Description,
		StartDate:   e.StartTime.UnixMilli(),
		EndDate:     e.EndTime.UnixMilli(),
		Location:    e.Location,
		URL:         e.URL,
		IsAllDay:    e.AllDay,
		HasAlarm:    e.HasAlarm,
	}
	if e.Reminder != nil {
		dto.Reminder = &ReminderDTO{Minutes: e.Reminder.Minutes}
	}
	for _, attendee := range e.Attendees {
		dto.Attendees = append(dto.Attendees, attendeeToDTO(attendee))
	}
	return dto
}

func dtoToEvent(dto EventDTO) Event {
	return Event{
		EventID:     dto.EventID,
		Title:       dto.Title,
		Description: dto.Description,
		StartTime:   time.UnixMilli(dto.StartDate),
		EndTime:     time.UnixMilli(dto.EndDate),
		Location:    dto.Location,
		URL:         dto.URL,
		AllDay:      dto.IsAllDay,
		HasAlarm:    dto.HasAlarm,
	}
}

func attendeeToDTO(a Attendee) AttendeeDTO {
	return AttendeeDTO{
		AttendeeID:       a.AttendeeID,
		Name:             a.Name,
		EmailAddress:     a.Email,
		IsOrganiser:      a.IsOrganizer,
		AttendanceStatus: a.Status,
	}
}

func dtoToAttendee(dto AttendeeDTO) Attendee {
	return Attendee{
		AttendeeID:  dto.AttendeeID,
		Name:        dto.Name,
		Email:       dto.EmailAddress,
		IsOrganizer: dto.IsOrganiser,
		Status:      dto.AttendanceStatus,
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, permission.ErrDenied):
		writeJSON(w, http.StatusForbidden, rest.ErrorResponse{Error: "calendar permission denied"})
	case errors.Is(err, ErrEventNotFound):
		writeJSON(w, http.StatusNotFound, rest.ErrorResponse{Error: "event not found"})
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
