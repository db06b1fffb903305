package telemetry

import "time"

// Event types.
const (
	EventCommand = "command"
	EventProject = "project"
	EventListing = "listing"
	EventOpen    = "open"
)

// Event represents a telemetry event
type Event struct {
	ID           string        `json:"id"`
	Timestamp    time.Time     `json:"timestamp"`
	SessionID    string        `json:"session_id"`
	EventType    string        `json:"event_type"`
	FolderHash   string        `json:"folder_hash,omitempty"`
	Command      string        `json:"command,omitempty"`
	Args         []string      `json:"args,omitempty"`
	Duration     time.Duration `json:"duration_ms"`
	Success      bool          `json:"success"`
	ErrorType    string        `json:"error_type,omitempty"`
	TemplateUsed string        `json:"template_used,omitempty"`
	ItemCount    int           `json:"item_count,omitempty"`
}

// Session represents a user session
type Session struct {
	ID                string        `json:"id"`
	StartedAt         time.Time     `json:"started_at"`
	EndedAt           *time.Time    `json:"ended_at,omitempty"`
	Duration          time.Duration `json:"duration"`
	CommandsExecuted  int           `json:"commands_executed"`
	ProjectsCreated   int           `json:"projects_created"`
	ErrorsEncountered int           `json:"errors_encountered"`
}

// Pattern represents a recurring problem found in the event log
type Pattern struct {
	PatternType  string    `json:"pattern_type"`
	Description  string    `json:"description"`
	Frequency    int       `json:"frequency"`
	FirstSeen    time.Time `json:"first_seen"`
	LastSeen     time.Time `json:"last_seen"`
	SuggestedFix string    `json:"suggested_fix,omitempty"`
}

// Stats represents usage statistics
type Stats struct {
	TotalEvents        int           `json:"total_events"`
	TotalSessions      int           `json:"total_sessions"`
	TotalCommands      int           `json:"total_commands"`
	SuccessRate        float64       `json:"success_rate"`
	AvgCommandDuration time.Duration `json:"avg_command_duration"`
	TopCommands        []CommandStat `json:"top_commands"`
	CommonErrors       []ErrorStat   `json:"common_errors"`
	ProjectStats       ProjectStats  `json:"project_stats"`
	ListingStats       ListingStats  `json:"listing_stats"`
}

type CommandStat struct {
	Command     string  `json:"command"`
	Count       int     `json:"count"`
	AvgDuration int64   `json:"avg_duration_ms"`
	SuccessRate float64 `json:"success_rate"`
}

type ErrorStat struct {
	ErrorType string    `json:"error_type"`
	Count     int       `json:"count"`
	FirstSeen time.Time `json:"first_seen"`
	LastSeen  time.Time `json:"last_seen"`
}

// ProjectStats summarises project creation attempts
type ProjectStats struct {
	TotalCreated int            `json:"total_created"`
	TotalFailed  int            `json:"total_failed"`
	TotalOpened  int            `json:"total_opened"`
	TopTemplates []TemplateStat `json:"top_templates"`
}

type TemplateStat struct {
	TemplateName string `json:"template_name"`
	Count        int    `json:"count"`
}

type ListingStats struct {
	TotalListings int     `json:"total_listings"`
	AvgFolders    float64 `json:"avg_folders"`
}

// Insight represents an actionable insight
type Insight struct {
	Type        string `json:"type"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
}
