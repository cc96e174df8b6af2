package provider

import (
	"context"
	"testing"
	"time"

	"github.com/WoodJim/manage-calendar-events/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLStore {
	db := testutils.SetupTestDB(t)
	return NewSQLStore(db, "sqlite")
}

func insertTestCalendar(t *testing.T, store *SQLStore) int64 {
	t.Helper()
	id, err := store.Insert(context.Background(), TableCalendars, Values{
		ColCalendarDisplayName: "Work",
		ColAccountName:         "work@example.com",
		ColOwnerAccount:        "work@example.com",
	})
	require.NoError(t, err)
	return id
}

func TestSQLStore_InsertAndQuery(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	id := insertTestCalendar(t, store)
	require.NotZero(t, id)

	rows, err := store.Query(ctx, Query{
		Table:      TableCalendars,
		Projection: []string{ColID, ColCalendarDisplayName, ColAccountName},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)

	name, ok := rows[0].String(ColCalendarDisplayName)
	assert.True(t, ok)
	assert.Equal(t, "Work", name)
	rowID, ok := rows[0].Int64(ColID)
	assert.True(t, ok)
	assert.Equal(t, id, rowID)
}

func TestSQLStore_UpdateAndDelete(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	calendarID := insertTestCalendar(t, store)
	eventID, err := store.Insert(ctx, TableEvents, Values{
		ColCalendarID: calendarID,
		ColTitle:      "Standup",
		ColDTStart:    int64(1000),
		ColDTEnd:      int64(2000),
	})
	require.NoError(t, err)

	updated, err := store.Update(ctx, TableEvents, Values{ColTitle: "Standup (moved)"}, ColID+" = ?", eventID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), updated)

	rows, err := store.Query(ctx, Query{
		Table:      TableEvents,
		Projection: []string{ColTitle},
		Selection:  ColID + " = ?",
		Args:       []any{eventID},
	})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	title, _ := rows[0].String(ColTitle)
	assert.Equal(t, "Standup (moved)", title)

	deleted, err := store.Delete(ctx, TableEvents, ColID+" = ?", eventID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	deleted, err = store.Delete(ctx, TableEvents, ColID+" = ?", eventID)
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestSQLStore_BulkInsert(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	calendarID := insertTestCalendar(t, store)
	eventID, err := store.Insert(ctx, TableEvents, Values{
		ColCalendarID: calendarID,
		ColTitle:      "Review",
		ColDTStart:    int64(1000),
		ColDTEnd:      int64(2000),
	})
	require.NoError(t, err)

	inserted, err := store.BulkInsert(ctx, TableAttendees, []Values{
		{ColEventID: eventID, ColAttendeeName: "Ann", ColAttendeeEmail: "ann@x.io", ColAttendeeRelationship: RelationshipAttendee},
		{ColEventID: eventID, ColAttendeeName: "Bob", ColAttendeeEmail: "bob@x.io", ColAttendeeRelationship: RelationshipOrganizer},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), inserted)

	rows, err := store.Query(ctx, Query{
		Table:      TableAttendees,
		Projection: []string{ColAttendeeEmail},
		Selection:  ColEventID + " = ?",
		Args:       []any{eventID},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}

func TestSQLStore_Instances_WeeklyRecurrence(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	calendarID := insertTestCalendar(t, store)
	start := time.Date(2024, time.January, 1, 9, 0, 0, 0, time.UTC)
	eventID, err := store.Insert(ctx, TableEvents, Values{
		ColCalendarID: calendarID,
		ColTitle:      "Weekly sync",
		ColDTStart:    start.UnixMilli(),
		ColDTEnd:      start.Add(time.Hour).UnixMilli(),
		ColRRule:      "FREQ=WEEKLY",
	})
	require.NoError(t, err)

	windowStart := time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	windowEnd := time.Date(2024, time.January, 22, 0, 0, 0, 0, time.UTC).UnixMilli()
	rows, err := store.Instances(ctx, windowStart, windowEnd, Query{
		Table:     TableEvents,
		Selection: ColID + " = ? AND " + ColDeleted + " != 1",
		Args:      []any{eventID},
	})
	require.NoError(t, err)
	require.Len(t, rows, 3)

	for i, expected := range []time.Time{start, start.AddDate(0, 0, 7), start.AddDate(0, 0, 14)} {
		begin, ok := rows[i].Int64(ColBegin)
		require.True(t, ok)
		assert.Equal(t, expected.UnixMilli(), begin)
		end, ok := rows[i].Int64(ColEnd)
		require.True(t, ok)
		assert.Equal(t, expected.Add(time.Hour).UnixMilli(), end)
		id, _ := rows[i].Int64(ColEventID)
		assert.Equal(t, eventID, id)
		title, _ := rows[i].String(ColTitle)
		assert.Equal(t, "Weekly sync", title)
	}
}

func TestSQLStore_Instances_DurationFallback(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	calendarID := insertTestCalendar(t, store)
	start := time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)
	eventID, err := store.Insert(ctx, TableEvents, Values{
		ColCalendarID: calendarID,
		ColTitle:      "Daily",
		ColDTStart:    start.UnixMilli(),
		ColDTEnd:      int64(0),
		ColDuration:   time.Hour.Milliseconds(),
		ColRRule:      "FREQ=DAILY;COUNT=2",
	})
	require.NoError(t, err)

	rows, err := store.Instances(ctx, start.UnixMilli(), start.AddDate(0, 0, 7).UnixMilli(), Query{
		Table:     TableEvents,
		Selection: ColID + " = ?",
		Args:      []any{eventID},
	})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	begin, _ := rows[0].Int64(ColBegin)
	end, _ := rows[0].Int64(ColEnd)
	assert.Equal(t, time.Hour.Milliseconds(), end-begin)
}

func TestSQLStore_Instances_NonRecurringOutsideWindow(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	calendarID := insertTestCalendar(t, store)
	eventID, err := store.Insert(ctx, TableEvents, Values{
		ColCalendarID: calendarID,
		ColTitle:      "One-off",
		ColDTStart:    int64(1_000_000),
		ColDTEnd:      int64(2_000_000),
	})
	require.NoError(t, err)

	rows, err := store.Instances(ctx, 3_000_000, 4_000_000, Query{
		Table:     TableEvents,
		Selection: ColID + " = ?",
		Args:      []any{eventID},
	})
	require.NoError(t, err)
	assert.Empty(t, rows)

	rows, err = store.Instances(ctx, 1_500_000, 4_000_000, Query{
		Table:     TableEvents,
		Selection: ColID + " = ?",
		Args:      []any{eventID},
	})
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}

func TestSQLStore_BindPostgresPlaceholders(t *testing.T) {
	store := &SQLStore{postgres: true}
	bound := store.bind("SELECT * FROM events WHERE calendar_id = ? AND _id = ?")
	assert.Equal(t, "SELECT * FROM events WHERE calendar_id = $1 AND _id = $2", bound)

	store = &SQLStore{postgres: false}
	unchanged := store.bind("SELECT * FROM events WHERE _id = ?")
	assert.Equal(t, "SELECT * FROM events WHERE _id = ?", unchanged)
}
