package telemetry

import (
	"fmt"
	"strings"
	"testing"
	"time"
)

func seedFailures(t *testing.T, db *TelemetryDB, errorType string, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		err := db.SaveEvent(Event{
			ID:           fmt.Sprintf("%s-%d", errorType, i),
			Timestamp:    time.Now(),
			EventType:    EventProject,
			Command:      "create",
			TemplateUsed: "2d",
			Success:      false,
			ErrorType:    errorType,
		})
		if err != nil {
			t.Fatalf("SaveEvent failed: %v", err)
		}
	}
}

func TestAnalyzer_DetectPatterns(t *testing.T) {
	db, _ := newTestDB(t)
	analyzer := NewAnalyzer(db)

	seedFailures(t, db, "template_not_found", 4)
	seedFailures(t, db, "already_exists", 2)
	for i := 0; i < 3; i++ {
		db.SaveEvent(Event{
			ID: fmt.Sprintf("slow-%d", i), Timestamp: time.Now(), EventType: EventProject,
			Command: "create", Duration: 8 * time.Second, Success: true,
		})
	}

	patterns, err := analyzer.DetectPatterns(30)
	if err != nil {
		t.Fatalf("DetectPatterns failed: %v", err)
	}

	if len(patterns) != 2 {
		t.Fatalf("Expected 2 patterns, got %d: %+v", len(patterns), patterns)
	}
	if patterns[0].PatternType != "template_not_found" || patterns[0].Frequency != 4 {
		t.Errorf("Unexpected first pattern: %+v", patterns[0])
	}
	if patterns[0].SuggestedFix == "" {
		t.Error("Expected a suggested fix")
	}
	if patterns[1].PatternType != "slow_create" || patterns[1].Frequency != 3 {
		t.Errorf("Unexpected second pattern: %+v", patterns[1])
	}
}

func TestAnalyzer_DetectPatternsEmpty(t *testing.T) {
	db, _ := newTestDB(t)

	patterns, err := NewAnalyzer(db).DetectPatterns(30)
	if err != nil {
		t.Fatalf("DetectPatterns failed: %v", err)
	}
	if len(patterns) != 0 {
		t.Errorf("Expected no patterns, got %+v", patterns)
	}
}

func TestAnalyzer_GenerateInsights(t *testing.T) {
	db, _ := newTestDB(t)
	seedFailures(t, db, "template_not_found", 6)

	insights, err := NewAnalyzer(db).GenerateInsights(7)
	if err != nil {
		t.Fatalf("GenerateInsights failed: %v", err)
	}

	titles := map[string]bool{}
	for _, i := range insights {
		titles[i.Title] = true
	}
	if !titles["Templates Missing"] {
		t.Errorf("Expected templates missing insight, got %+v", insights)
	}
	if !titles["Most Project Creations Fail"] {
		t.Errorf("Expected failing creations insight, got %+v", insights)
	}
}

func TestAnalyzer_GenerateInsightsHealthy(t *testing.T) {
	db, _ := newTestDB(t)
	db.SaveEvent(Event{ID: "ok", Timestamp: time.Now(), EventType: EventProject, Command: "create", TemplateUsed: "2d", Success: true})

	insights, err := NewAnalyzer(db).GenerateInsights(7)
	if err != nil {
		t.Fatalf("GenerateInsights failed: %v", err)
	}
	if len(insights) != 1 || insights[0].Type != "success" {
		t.Errorf("Expected a single success insight, got %+v", insights)
	}
}

func TestGetSummary(t *testing.T) {
	stats := Stats{
		TotalCommands: 4,
		SuccessRate:   75,
		ProjectStats: ProjectStats{
			TotalCreated: 3,
			TotalFailed:  1,
			TopTemplates: []TemplateStat{{TemplateName: "2d", Count: 2}},
		},
		CommonErrors: []ErrorStat{{ErrorType: "already_exists", Count: 1}},
	}

	summary := GetSummary(stats, 7)
	for _, want := range []string{"Last 7 days", "Success Rate: 75.0%", "Projects Created: 3 (1 failed)", "1. 2d: 2", "already_exists: 1 occurrences"} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary missing %q:\n%s", want, summary)
		}
	}
}

func TestFormatInsight(t *testing.T) {
	got := FormatInsight(Insight{Severity: "high", Title: "Templates Missing", Description: "x"})
	if got != "[high] Templates Missing: x" {
		t.Errorf("Unexpected format: %s", got)
	}
}
