package calendar

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/WoodJim/manage-calendar-events/internal/eventbus"
	"github.com/WoodJim/manage-calendar-events/internal/testutils"
	"github.com/WoodJim/manage-calendar-events/pkg/permission"
	"github.com/WoodJim/manage-calendar-events/pkg/provider"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, perms permission.Service) (*mux.Router, provider.Store) {
	t.Helper()
	db := testutils.SetupTestDB(t)
	store := provider.NewSQLStore(db, "sqlite")
	service := NewService(store, perms, eventbus.New())
	handler := NewHandler(service, perms)

	r := mux.NewRouter()
	r.HandleFunc("/api/permissions", handler.HasPermissions).Methods("GET")
	r.HandleFunc("/api/permissions/request", handler.RequestPermissions).Methods("POST")
	r.HandleFunc("/api/calendars", handler.GetCalendars).Methods("GET")
	r.HandleFunc("/api/calendars/{calendarId}/events", handler.GetEvents).Methods("GET")
	r.HandleFunc("/api/calendars/{calendarId}/events", handler.CreateUpdateEvent).Methods("POST")
	r.HandleFunc("/api/calendars/{calendarId}/events/{eventId}", handler.GetEvent).Methods("GET")
	r.HandleFunc("/api/calendars/{calendarId}/events/{eventId}", handler.DeleteEvent).Methods("DELETE")
	r.HandleFunc("/api/calendars/{calendarId}/events/{eventId}/reminders", handler.AddReminder).Methods("POST")
	r.HandleFunc("/api/events/{eventId}/attendees", handler.GetAttendees).Methods("GET")
	return r, store
}

func doRequest(t *testing.T, r *mux.Router, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestHandlerGetCalendars(t *testing.T) {
	r, store := newTestRouter(t, &permission.StubService{Granted: true})
	createTestCalendar(t, store)

	rec := doRequest(t, r, http.MethodGet, "/api/calendars", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var dtos []CalendarDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dtos))
	require.Len(t, dtos, 1)
	assert.Equal(t, "Personal", dtos[0].Name)
}

func TestHandlerCreateEvent(t *testing.T) {
	r, store := newTestRouter(t, &permission.StubService{Granted: true})
	calendarID := createTestCalendar(t, store)

	body := `{"title":"Dentist","startDate":1717250400000,"endDate":1717252200000,"hasAlarm":true}`
	rec := doRequest(t, r, http.MethodPost, "/api/calendars/"+calendarID+"/events", body)
	require.Equal(t, http.StatusCreated, rec.Code)

	var dto EventDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))
	assert.NotEmpty(t, dto.EventID)
	assert.Equal(t, "Dentist", dto.Title)

	rec = doRequest(t, r, http.MethodGet, "/api/calendars/"+calendarID+"/events/"+dto.EventID, "")
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerUpdateEvent_ExistingRowReturns200(t *testing.T) {
	r, store := newTestRouter(t, &permission.StubService{Granted: true})
	calendarID := createTestCalendar(t, store)

	body := `{"title":"Before","startDate":1000,"endDate":2000}`
	rec := doRequest(t, r, http.MethodPost, "/api/calendars/"+calendarID+"/events", body)
	require.Equal(t, http.StatusCreated, rec.Code)
	var dto EventDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dto))

	body = `{"eventId":"` + dto.EventID + `","title":"After","startDate":1000,"endDate":2000}`
	rec = doRequest(t, r, http.MethodPost, "/api/calendars/"+calendarID+"/events", body)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHandlerGetEvents_InvalidRangeReturns400(t *testing.T) {
	r, store := newTestRouter(t, &permission.StubService{Granted: true})
	calendarID := createTestCalendar(t, store)

	rec := doRequest(t, r, http.MethodGet, "/api/calendars/"+calendarID+"/events?startDate=abc&endDate=100", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doRequest(t, r, http.MethodGet, "/api/calendars/"+calendarID+"/events?startDate=100", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerGetEvent_NotFoundReturns404(t *testing.T) {
	r, store := newTestRouter(t, &permission.StubService{Granted: true})
	calendarID := createTestCalendar(t, store)

	rec := doRequest(t, r, http.MethodGet, "/api/calendars/"+calendarID+"/events/999", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerDeleteEvent(t *testing.T) {
	r, store := newTestRouter(t, &permission.StubService{Granted: true})
	calendarID := createTestCalendar(t, store)
	eventID, err := store.Insert(context.Background(), provider.TableEvents, provider.Values{
		provider.ColCalendarID: calendarID,
		provider.ColTitle:      "Doomed",
		provider.ColDTStart:    int64(1000),
		provider.ColDTEnd:      int64(2000),
	})
	require.NoError(t, err)

	path := "/api/calendars/" + calendarID + "/events/" + strconv.FormatInt(eventID, 10)
	rec := doRequest(t, r, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNoContent, rec.Code)

	rec = doRequest(t, r, http.MethodDelete, path, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandlerPermissionDeniedReturns403(t *testing.T) {
	perms := &permission.StubService{Granted: false}
	r, _ := newTestRouter(t, perms)

	rec := doRequest(t, r, http.MethodGet, "/api/calendars", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 1, perms.RequestCount())

	rec = doRequest(t, r, http.MethodGet, "/api/calendars/1/events", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, 2, perms.RequestCount())
}

func TestHandlerPermissionEndpoints(t *testing.T) {
	perms := &permission.StubService{Granted: true}
	r, _ := newTestRouter(t, perms)

	rec := doRequest(t, r, http.MethodGet, "/api/permissions", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var granted map[string]bool
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &granted))
	assert.True(t, granted["granted"])

	rec = doRequest(t, r, http.MethodPost, "/api/permissions/request", "")
	assert.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, 1, perms.RequestCount())
}

func TestHandlerAddReminderValidation(t *testing.T) {
	r, store := newTestRouter(t, &permission.StubService{Granted: true})
	calendarID := createTestCalendar(t, store)
	eventID, err := store.Insert(context.Background(), provider.TableEvents, provider.Values{
		provider.ColCalendarID: calendarID,
		provider.ColTitle:      "Flight",
		provider.ColDTStart:    int64(1000),
		provider.ColDTEnd:      int64(2000),
	})
	require.NoError(t, err)

	path := "/api/calendars/" + calendarID + "/events/" + strconv.FormatInt(eventID, 10) + "/reminders"
	rec := doRequest(t, r, http.MethodPost, path, `{"minutes":15}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = doRequest(t, r, http.MethodPost, path, `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
