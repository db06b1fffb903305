package telemetry

import (
	"database/sql"
	"fmt"
	"strings"
	"time"
)

const (
	recurringErrorThreshold = 3
	slowCreateThresholdMs   = 5000
)

// Analyzer analyzes telemetry data
type Analyzer struct {
	db *TelemetryDB
}

func NewAnalyzer(db *TelemetryDB) *Analyzer {
	return &Analyzer{db: db}
}

func (a *Analyzer) GetStats(days int) (Stats, error) {
	return a.db.GetStats(days)
}

// DetectPatterns finds recurring failures and slow project creation in the
// last days.
func (a *Analyzer) DetectPatterns(days int) ([]Pattern, error) {
	since := time.Now().AddDate(0, 0, -days).UnixMilli()

	patterns, err := a.detectRecurringErrors(since)
	if err != nil {
		return nil, err
	}

	slow, err := a.detectSlowCreates(since)
	if err != nil {
		return nil, err
	}
	return append(patterns, slow...), nil
}

func (a *Analyzer) detectRecurringErrors(since int64) ([]Pattern, error) {
	query := `
		SELECT error_type, COUNT(*) as count, MIN(timestamp), MAX(timestamp)
		FROM events WHERE success = 0 AND error_type != '' AND timestamp >= ?
		GROUP BY error_type HAVING count >= ? ORDER BY count DESC, error_type
	`

	rows, err := a.db.db.Query(query, since, recurringErrorThreshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var patterns []Pattern
	for rows.Next() {
		var p Pattern
		var firstSeen, lastSeen int64
		if err := rows.Scan(&p.PatternType, &p.Frequency, &firstSeen, &lastSeen); err != nil {
			return nil, err
		}
		p.FirstSeen = time.UnixMilli(firstSeen)
		p.LastSeen = time.UnixMilli(lastSeen)
		p.Description = errorDescription(p.PatternType)
		p.SuggestedFix = errorFix(p.PatternType)
		patterns = append(patterns, p)
	}

	return patterns, rows.Err()
}

func (a *Analyzer) detectSlowCreates(since int64) ([]Pattern, error) {
	query := `
		SELECT COUNT(*), MIN(timestamp), MAX(timestamp)
		FROM events WHERE event_type = 'project' AND command = 'create' AND duration_ms > ? AND timestamp >= ?
	`

	var count int
	var firstSeen, lastSeen sql.NullInt64
	if err := a.db.db.QueryRow(query, slowCreateThresholdMs, since).Scan(&count, &firstSeen, &lastSeen); err != nil {
		return nil, err
	}
	if count < recurringErrorThreshold || !firstSeen.Valid || !lastSeen.Valid {
		return nil, nil
	}

	return []Pattern{{
		PatternType:  "slow_create",
		Description:  "Copying the template takes more than 5 seconds",
		Frequency:    count,
		FirstSeen:    time.UnixMilli(firstSeen.Int64),
		LastSeen:     time.UnixMilli(lastSeen.Int64),
		SuggestedFix: "Keep large assets out of the template folders or store the workspace on a local disk",
	}}, nil
}

// GenerateInsights turns the last days of statistics into actionable
// insights.
func (a *Analyzer) GenerateInsights(days int) ([]Insight, error) {
	stats, err := a.db.GetStats(days)
	if err != nil {
		return nil, err
	}

	var insights []Insight

	if stats.TotalCommands > 0 && stats.SuccessRate < 80 {
		insights = append(insights, Insight{
			Type:        "usability",
			Title:       "Low Command Success Rate",
			Description: fmt.Sprintf("Only %.1f%% of commands are succeeding. Check common errors for issues.", stats.SuccessRate),
			Severity:    "high",
		})
	}

	for _, e := range stats.CommonErrors {
		if e.ErrorType == "template_not_found" {
			insights = append(insights, Insight{
				Type:        "install",
				Title:       "Templates Missing",
				Description: fmt.Sprintf("Template lookup failed %d times. Set templates.resource_dir or GAMEGROVE_RESOURCE_DIR to the folder holding templates/.", e.Count),
				Severity:    severityFromCount(e.Count),
			})
			break
		}
	}

	ps := stats.ProjectStats
	if attempts := ps.TotalCreated + ps.TotalFailed; attempts >= 5 && ps.TotalFailed*2 > attempts {
		insights = append(insights, Insight{
			Type:        "usability",
			Title:       "Most Project Creations Fail",
			Description: fmt.Sprintf("%d of %d create attempts failed.", ps.TotalFailed, attempts),
			Severity:    "medium",
		})
	}

	if stats.TotalEvents > 0 && len(insights) == 0 {
		insights = append(insights, Insight{
			Type:        "success",
			Title:       "All Good",
			Description: "No recurring problems detected.",
			Severity:    "low",
		})
	}

	return insights, nil
}

func errorDescription(errType string) string {
	descriptions := map[string]string{
		"invalid_parent":     "Projects are created in folders that do not exist",
		"invalid_name":       "Project names are rejected",
		"invalid_category":   "Unknown template categories are requested",
		"already_exists":     "Project folders with the same name already exist",
		"template_not_found": "Template folders cannot be found",
		"io":                 "Filesystem operations are failing",
		"permission_error":   "Permission denied for required operations",
		"launch_error":       "The editor or browser cannot be started",
	}

	if desc, ok := descriptions[errType]; ok {
		return desc
	}
	return "Unknown error type occurring repeatedly"
}

func errorFix(errType string) string {
	fixes := map[string]string{
		"invalid_parent":     "Check workspace.root in config.yaml",
		"already_exists":     "Pick another name or remove the old folder",
		"template_not_found": "Run 'gamegrove template list' to see which paths are searched",
		"io":                 "Check free disk space and folder permissions",
		"permission_error":   "Check ownership of the workspace folder",
		"launch_error":       "Set editor.command in config.yaml to an installed editor",
	}

	if fix, ok := fixes[errType]; ok {
		return fix
	}
	return "Review error logs for specific error messages"
}

func severityFromCount(count int) string {
	if count > 50 {
		return "high"
	} else if count > 10 {
		return "medium"
	}
	return "low"
}

// FormatInsight formats an insight for display
func FormatInsight(insight Insight) string {
	return fmt.Sprintf("[%s] %s: %s", insight.Severity, insight.Title, insight.Description)
}

// GetSummary returns a text summary of statistics
func GetSummary(stats Stats, days int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Telemetry Summary (Last %d days):\n", days)
	fmt.Fprintf(&b, "- Total Commands: %d\n", stats.TotalCommands)
	fmt.Fprintf(&b, "- Success Rate: %.1f%%\n", stats.SuccessRate)
	fmt.Fprintf(&b, "- Projects Created: %d (%d failed)\n", stats.ProjectStats.TotalCreated, stats.ProjectStats.TotalFailed)

	if len(stats.ProjectStats.TopTemplates) > 0 {
		b.WriteString("\nTop Templates:\n")
		for i, t := range stats.ProjectStats.TopTemplates {
			fmt.Fprintf(&b, "  %d. %s: %d\n", i+1, t.TemplateName, t.Count)
		}
	}

	if len(stats.CommonErrors) > 0 {
		b.WriteString("\nCommon Errors:\n")
		for i, e := range stats.CommonErrors {
			if i >= 5 {
				break
			}
			fmt.Fprintf(&b, "  %d. %s: %d occurrences\n", i+1, e.ErrorType, e.Count)
		}
	}

	return b.String()
}
