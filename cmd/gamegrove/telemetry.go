package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gamegrove/pkg/fsys"
	"gamegrove/pkg/telemetry"
)

var telemetryCmd = &cobra.Command{
	Use:   "telemetry",
	Short: "Manage telemetry settings",
}

var telemetryStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show telemetry status",
	Run: func(cmd *cobra.Command, args []string) {
		config := telemetry.LoadTelemetryConfig(fsys.OS(), telemetry.DefaultConfigPath())

		fmt.Println("📊 Telemetry Status")
		fmt.Println("------------------")
		fmt.Printf("Enabled: %v\n", config.Enabled && current.cfg.Telemetry.Enabled)
		fmt.Printf("Anonymized: %v\n", config.Anonymize)
		fmt.Printf("Data location: %s\n", telemetry.DefaultDBPath())
		fmt.Printf("Retention: %d days\n", config.RetentionDays)

		if _, err := telemetryDB(); err != nil {
			return
		}
		stats, err := current.collector.GetStats(7)
		if err != nil {
			return
		}
		fmt.Printf("\nEvents (last 7 days): %d\n", stats.TotalEvents)
		fmt.Printf("Sessions: %d\n", stats.TotalSessions)
		fmt.Printf("Current session: %s\n", current.collector.CurrentSession())
		fmt.Printf("\n%s", telemetry.GetSummary(stats, 7))
	},
}

var telemetryEnableCmd = &cobra.Command{
	Use:   "enable",
	Short: "Enable telemetry collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTelemetryEnabled(true)
	},
}

var telemetryDisableCmd = &cobra.Command{
	Use:   "disable",
	Short: "Disable telemetry collection",
	RunE: func(cmd *cobra.Command, args []string) error {
		return setTelemetryEnabled(false)
	},
}

var telemetryCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete events older than the retention period",
	RunE: func(cmd *cobra.Command, args []string) error {
		if current.collector == nil {
			return errTelemetryDisabled
		}
		deleted, err := current.collector.Cleanup()
		if err != nil {
			return err
		}
		fmt.Printf("🧹 Deleted %d old events\n", deleted)
		return nil
	},
}

func setTelemetryEnabled(enabled bool) error {
	path := telemetry.DefaultConfigPath()
	config := telemetry.LoadTelemetryConfig(fsys.OS(), path)
	config.Enabled = enabled
	if err := telemetry.SaveTelemetryConfig(fsys.OS(), path, config); err != nil {
		return err
	}

	if enabled {
		fmt.Println("✅ Telemetry enabled")
		fmt.Printf("Data is stored locally in %s\n", telemetry.DefaultDBPath())
	} else {
		fmt.Println("🔕 Telemetry disabled")
		fmt.Println("Existing data is kept; run 'gamegrove telemetry cleanup' before disabling to trim it")
	}
	return nil
}

func init() {
	telemetryCmd.AddCommand(telemetryStatusCmd)
	telemetryCmd.AddCommand(telemetryEnableCmd)
	telemetryCmd.AddCommand(telemetryDisableCmd)
	telemetryCmd.AddCommand(telemetryCleanupCmd)
	rootCmd.AddCommand(telemetryCmd)
}
