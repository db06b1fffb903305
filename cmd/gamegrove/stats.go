package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show usage statistics",
	Example: `  gamegrove stats           # Last 7 days
  gamegrove stats --week    # Last 7 days
  gamegrove stats --month   # Last 30 days
  gamegrove stats --session <id>`,
	RunE: func(cmd *cobra.Command, args []string) error {
		days := daysFlag(cmd)

		db, err := telemetryDB()
		if err != nil {
			return err
		}

		if session, _ := cmd.Flags().GetString("session"); session != "" {
			out, err := describeSession(db, session)
			if err != nil {
				return err
			}
			fmt.Print(out)
			return nil
		}

		stats, err := db.GetStats(days)
		if err != nil {
			return err
		}

		fmt.Printf("📈 Usage Statistics (Last %d Days)\n", days)
		fmt.Println("================================")
		fmt.Printf("Commands executed: %d\n", stats.TotalCommands)
		fmt.Printf("Success rate: %.1f%%\n", stats.SuccessRate)
		fmt.Printf("Avg command time: %v\n", stats.AvgCommandDuration)
		fmt.Printf("Projects created: %d\n", stats.ProjectStats.TotalCreated)
		fmt.Printf("Failed creations: %d\n", stats.ProjectStats.TotalFailed)
		fmt.Printf("Projects opened: %d\n", stats.ProjectStats.TotalOpened)
		fmt.Printf("Folder listings: %d (avg %.1f folders)\n", stats.ListingStats.TotalListings, stats.ListingStats.AvgFolders)

		if len(stats.ProjectStats.TopTemplates) > 0 {
			fmt.Println("\nTop Templates:")
			for _, t := range stats.ProjectStats.TopTemplates {
				fmt.Printf("  %s: %d\n", t.TemplateName, t.Count)
			}
		}

		if len(stats.TopCommands) > 0 {
			fmt.Println("\nTop Commands:")
			for i, c := range stats.TopCommands {
				if i >= 5 {
					break
				}
				fmt.Printf("  %s: %d\n", c.Command, c.Count)
			}
		}

		if len(stats.CommonErrors) > 0 {
			fmt.Println("\nCommon Errors:")
			for i, e := range stats.CommonErrors {
				if i >= 3 {
					break
				}
				fmt.Printf("  %s: %d occurrences\n", e.ErrorType, e.Count)
			}
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("days", 7, "Number of days to include")
	statsCmd.Flags().Bool("week", false, "Show last 7 days")
	statsCmd.Flags().Bool("month", false, "Show last 30 days")
	statsCmd.Flags().String("session", "", "Show one session and its events")
	rootCmd.AddCommand(statsCmd)
}
