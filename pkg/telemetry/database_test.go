package telemetry

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamegrove/pkg/testutil"
)

func newTestDB(t *testing.T) (*TelemetryDB, *testutil.SQLiteTestHelper) {
	t.Helper()
	h := testutil.NewSQLiteTestHelper(t)
	db, err := NewTelemetryDB(h.DBPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, h
}

func TestTelemetryDB_SaveAndQueryEvents(t *testing.T) {
	db, h := newTestDB(t)
	now := time.Now()

	require.NoError(t, db.SaveEvent(Event{
		ID: "e1", Timestamp: now.Add(-time.Minute), SessionID: "s1", EventType: EventCommand,
		Command: "project create", Args: []string{"--category", "2d"}, Duration: 1500 * time.Millisecond, Success: true,
	}))
	require.NoError(t, db.SaveEvent(Event{
		ID: "e2", Timestamp: now, SessionID: "s1", EventType: EventProject,
		Command: "create", TemplateUsed: "2d", Success: false, ErrorType: "already_exists",
	}))

	assert.Equal(t, 2, h.Count(t, "events"))
	assert.True(t, h.RowExists(t, "events", "id = ? AND template_used = ?", "e2", "2d"))

	events, err := db.QueryEvents(now.Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "e1", events[0].ID)
	assert.Equal(t, []string{"--category", "2d"}, events[0].Args)
	assert.Equal(t, 1500*time.Millisecond, events[0].Duration)
	assert.True(t, events[0].Success)
	assert.Equal(t, now.Add(-time.Minute).UnixMilli(), events[0].Timestamp.UnixMilli())

	assert.Equal(t, "already_exists", events[1].ErrorType)
	assert.False(t, events[1].Success)

	recent, err := db.QueryEvents(now.Add(-time.Second))
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "e2", recent[0].ID)
}

func TestTelemetryDB_Sessions(t *testing.T) {
	db, _ := newTestDB(t)
	start := time.Now().Add(-time.Minute)

	require.NoError(t, db.SaveSession(Session{ID: "s1", StartedAt: start}))
	require.NoError(t, db.SaveEvent(Event{ID: "c1", Timestamp: time.Now(), SessionID: "s1", EventType: EventCommand, Command: "project create", Success: true}))
	require.NoError(t, db.SaveEvent(Event{ID: "p1", Timestamp: time.Now(), SessionID: "s1", EventType: EventProject, Command: "create", TemplateUsed: "3d", Success: true}))
	require.NoError(t, db.SaveEvent(Event{ID: "p2", Timestamp: time.Now(), SessionID: "s1", EventType: EventProject, Command: "create", TemplateUsed: "3d", Success: false, ErrorType: "io"}))

	require.NoError(t, db.EndSession("s1"))

	s, err := db.GetSession("s1")
	require.NoError(t, err)
	require.NotNil(t, s.EndedAt)
	assert.Equal(t, 1, s.CommandsExecuted)
	assert.Equal(t, 1, s.ProjectsCreated)
	assert.Equal(t, 1, s.ErrorsEncountered)
	assert.GreaterOrEqual(t, s.Duration, time.Minute-time.Second)

	events, err := db.GetEventsBySession("s1")
	require.NoError(t, err)
	assert.Len(t, events, 3)

	assert.Error(t, db.EndSession("missing"))
}

func TestTelemetryDB_GetStats(t *testing.T) {
	db, _ := newTestDB(t)
	now := time.Now()

	events := []Event{
		{ID: "1", EventType: EventProject, Command: "create", TemplateUsed: "2d", Success: true},
		{ID: "2", EventType: EventProject, Command: "create", TemplateUsed: "2d", Success: true},
		{ID: "3", EventType: EventProject, Command: "create", TemplateUsed: "3d", Success: true},
		{ID: "4", EventType: EventProject, Command: "create", TemplateUsed: "3d", Success: false, ErrorType: "template_not_found"},
		{ID: "5", EventType: EventListing, Command: "list", ItemCount: 4, Success: true},
		{ID: "6", EventType: EventListing, Command: "list", ItemCount: 2, Success: true},
		{ID: "7", EventType: EventOpen, Command: "editor", Success: true},
		{ID: "8", EventType: EventCommand, Command: "project list", Success: true, Duration: 100 * time.Millisecond},
		{ID: "9", EventType: EventCommand, Command: "project create", Success: false, ErrorType: "template_not_found", Duration: 300 * time.Millisecond},
	}
	for _, e := range events {
		e.Timestamp = now
		e.SessionID = "s1"
		require.NoError(t, db.SaveEvent(e))
	}
	require.NoError(t, db.SaveEvent(Event{ID: "old", Timestamp: now.AddDate(0, 0, -60), EventType: EventProject, Command: "create", TemplateUsed: "3d", Success: true}))

	stats, err := db.GetStats(7)
	require.NoError(t, err)

	assert.Equal(t, len(events), stats.TotalEvents)
	assert.Equal(t, 1, stats.TotalSessions)
	assert.Equal(t, 2, stats.TotalCommands)
	assert.InDelta(t, 50.0, stats.SuccessRate, 0.01)
	assert.Equal(t, 200*time.Millisecond, stats.AvgCommandDuration)

	assert.Equal(t, 3, stats.ProjectStats.TotalCreated)
	assert.Equal(t, 1, stats.ProjectStats.TotalFailed)
	assert.Equal(t, 1, stats.ProjectStats.TotalOpened)
	assert.Equal(t, []TemplateStat{{TemplateName: "2d", Count: 2}, {TemplateName: "3d", Count: 1}}, stats.ProjectStats.TopTemplates)

	require.Len(t, stats.CommonErrors, 1)
	assert.Equal(t, "template_not_found", stats.CommonErrors[0].ErrorType)
	assert.Equal(t, 2, stats.CommonErrors[0].Count)

	assert.Equal(t, 2, stats.ListingStats.TotalListings)
	assert.InDelta(t, 3.0, stats.ListingStats.AvgFolders, 0.01)
}

func TestTelemetryDB_DeleteOldEvents(t *testing.T) {
	db, h := newTestDB(t)

	require.NoError(t, db.SaveEvent(Event{ID: "old", Timestamp: time.Now().AddDate(0, 0, -40), EventType: EventListing}))
	require.NoError(t, db.SaveEvent(Event{ID: "new", Timestamp: time.Now(), EventType: EventListing}))

	deleted, err := db.DeleteOldEvents(30 * 24 * time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)
	assert.Equal(t, 1, h.Count(t, "events"))
	assert.True(t, h.RowExists(t, "events", "id = ?", "new"))
}
