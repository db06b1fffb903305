package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"gamegrove/pkg/telemetry"
)

var errTelemetryDisabled = errors.New("telemetry is disabled; enable it with 'gamegrove telemetry enable'")

func recordCommand(cmd *cobra.Command, start time.Time, err error) {
	if cmd == nil || current == nil || current.collector == nil {
		return
	}
	args := os.Args[1:]
	if recErr := current.collector.RecordCommand(cmd.CommandPath(), args, time.Since(start), err); recErr != nil {
		slog.Debug("failed to record command", "error", recErr)
	}
}

func telemetryDB() (*telemetry.TelemetryDB, error) {
	if current == nil || current.collector == nil || current.collector.DB() == nil {
		return nil, errTelemetryDisabled
	}
	return current.collector.DB(), nil
}

// daysFlag reads --days, with --week and --month as shortcuts.
func daysFlag(cmd *cobra.Command) int {
	days, _ := cmd.Flags().GetInt("days")
	if month, _ := cmd.Flags().GetBool("month"); month {
		return 30
	}
	if week, _ := cmd.Flags().GetBool("week"); week {
		return 7
	}
	return days
}

// describeSession renders a stored session and its events, oldest first.
func describeSession(db *telemetry.TelemetryDB, id string) (string, error) {
	s, err := db.GetSession(id)
	if err != nil {
		return "", fmt.Errorf("session %s: %w", id, err)
	}
	events, err := db.GetEventsBySession(id)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Session %s\n", s.ID)
	fmt.Fprintf(&b, "Started: %s\n", s.StartedAt.Format(time.RFC3339))
	if s.EndedAt != nil {
		fmt.Fprintf(&b, "Ended: %s (%v)\n", s.EndedAt.Format(time.RFC3339), s.Duration.Round(time.Second))
	} else {
		b.WriteString("Ended: still running\n")
	}
	fmt.Fprintf(&b, "Commands: %d, projects created: %d, errors: %d\n",
		s.CommandsExecuted, s.ProjectsCreated, s.ErrorsEncountered)

	fmt.Fprintf(&b, "Events: %d\n", len(events))
	for _, e := range events {
		status := "ok"
		if !e.Success {
			status = "failed"
			if e.ErrorType != "" {
				status += " (" + e.ErrorType + ")"
			}
		}
		what := e.Command
		if e.TemplateUsed != "" {
			what += " " + e.TemplateUsed
		}
		fmt.Fprintf(&b, "  %s %-8s %s %s\n", e.Timestamp.Format("15:04:05"), e.EventType, what, status)
	}
	return b.String(), nil
}
