package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"gamegrove/pkg/telemetry"
)

var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Show usage insights and suggestions",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := telemetryDB()
		if err != nil {
			return err
		}

		analyzer := telemetry.NewAnalyzer(db)
		insights, err := analyzer.GenerateInsights(daysFlag(cmd))
		if err != nil {
			return err
		}
		patterns, err := analyzer.DetectPatterns(30)
		if err != nil {
			return err
		}

		if len(insights) == 0 && len(patterns) == 0 {
			fmt.Println("✅ No data yet.")
			return nil
		}

		fmt.Println("💡 Insights")
		fmt.Println("==========")
		for _, insight := range insights {
			icon := "ℹ️"
			if insight.Severity == "high" {
				icon = "⚠️"
			}
			fmt.Printf("\n%s %s\n", icon, telemetry.FormatInsight(insight))
		}

		if len(patterns) > 0 {
			fmt.Println("\n🔁 Recurring Problems")
			for _, p := range patterns {
				fmt.Printf("\n  %s (%d times)\n", p.Description, p.Frequency)
				fmt.Printf("   Fix: %s\n", p.SuggestedFix)
			}
		}
		return nil
	},
}

func init() {
	insightsCmd.Flags().Int("days", 7, "Number of days to include")
	insightsCmd.Flags().Bool("week", false, "Use the last 7 days")
	insightsCmd.Flags().Bool("month", false, "Use the last 30 days")
	rootCmd.AddCommand(insightsCmd)
}
