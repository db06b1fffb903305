package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"gamegrove/pkg/fsys"
	"gamegrove/pkg/telemetry"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export telemetry events as JSON",
	Example: `  gamegrove export
  gamegrove export --output events.json --days 90
  gamegrove export --session <id>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		days, _ := cmd.Flags().GetInt("days")
		session, _ := cmd.Flags().GetString("session")

		db, err := telemetryDB()
		if err != nil {
			return err
		}

		var events []telemetry.Event
		if session != "" {
			events, err = db.GetEventsBySession(session)
		} else {
			events, err = current.collector.GetEvents(time.Now().AddDate(0, 0, -days))
		}
		if err != nil {
			return err
		}

		data, err := json.MarshalIndent(events, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to encode events: %w", err)
		}
		if err := fsys.WriteFileAtomic(fsys.OS(), output, data, 0644); err != nil {
			return err
		}
		fmt.Printf("✅ Exported %d events to %s\n", len(events), output)
		return nil
	},
}

func init() {
	exportCmd.Flags().String("output", "gamegrove-telemetry.json", "Output file")
	exportCmd.Flags().Int("days", 30, "Number of days to include")
	exportCmd.Flags().String("session", "", "Export only this session's events")
	rootCmd.AddCommand(exportCmd)
}
