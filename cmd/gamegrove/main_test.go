package main

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamegrove/pkg/telemetry"
)

func newDaysCmd(t *testing.T, args ...string) *cobra.Command {
	t.Helper()
	cmd := &cobra.Command{Use: "stats"}
	cmd.Flags().Int("days", 7, "")
	cmd.Flags().Bool("week", false, "")
	cmd.Flags().Bool("month", false, "")
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd
}

func TestDaysFlag(t *testing.T) {
	tests := []struct {
		args []string
		want int
	}{
		{nil, 7},
		{[]string{"--days", "3"}, 3},
		{[]string{"--week", "--days", "90"}, 7},
		{[]string{"--month"}, 30},
		{[]string{"--month", "--week"}, 30},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, daysFlag(newDaysCmd(t, tt.args...)), "%v", tt.args)
	}
}

func TestTelemetryDB_Disabled(t *testing.T) {
	saved := current
	t.Cleanup(func() { current = saved })

	current = nil
	_, err := telemetryDB()
	assert.ErrorIs(t, err, errTelemetryDisabled)

	current = &app{}
	_, err = telemetryDB()
	assert.ErrorIs(t, err, errTelemetryDisabled)
}

func TestRecordCommand_NoApp(t *testing.T) {
	saved := current
	t.Cleanup(func() { current = saved })
	current = nil

	assert.NotPanics(t, func() { recordCommand(&cobra.Command{Use: "x"}, time.Now(), nil) })
}

func TestDescribeSession(t *testing.T) {
	db, err := telemetry.NewTelemetryDB(filepath.Join(t.TempDir(), "telemetry.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	start := time.Now().Add(-time.Minute)
	require.NoError(t, db.SaveSession(telemetry.Session{ID: "s1", StartedAt: start}))
	require.NoError(t, db.SaveEvent(telemetry.Event{ID: "e1", Timestamp: start.Add(time.Second), SessionID: "s1",
		EventType: telemetry.EventProject, Command: "create", TemplateUsed: "2d", Success: true}))
	require.NoError(t, db.SaveEvent(telemetry.Event{ID: "e2", Timestamp: start.Add(2 * time.Second), SessionID: "s1",
		EventType: telemetry.EventProject, Command: "create", TemplateUsed: "3d", ErrorType: "template_not_found"}))

	out, err := describeSession(db, "s1")
	require.NoError(t, err)
	assert.Contains(t, out, "Session s1")
	assert.Contains(t, out, "Ended: still running")
	assert.Contains(t, out, "Events: 2")
	assert.Contains(t, out, "create 2d ok")
	assert.Contains(t, out, "create 3d failed (template_not_found)")

	require.NoError(t, db.EndSession("s1"))
	out, err = describeSession(db, "s1")
	require.NoError(t, err)
	assert.NotContains(t, out, "still running")

	_, err = describeSession(db, "missing")
	assert.ErrorContains(t, err, "session missing")
}
