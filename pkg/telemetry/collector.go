package telemetry

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"gamegrove/pkg/project"
)

var errNoSession = errors.New("no active session")

// Collector records events for one process. A nil or disabled Collector
// records nothing.
type Collector struct {
	db     *TelemetryDB
	config TelemetryConfig

	mu             sync.Mutex
	currentSession string
}

// NewCollector opens the database at dbPath. When config is disabled no
// database is opened.
func NewCollector(dbPath string, config TelemetryConfig) (*Collector, error) {
	if config.RetentionDays <= 0 {
		config.RetentionDays = defaultRetentionDays
	}
	if !config.Enabled {
		return &Collector{config: config}, nil
	}

	db, err := NewTelemetryDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry database: %w", err)
	}

	return &Collector{db: db, config: config}, nil
}

func (c *Collector) enabled() bool {
	return c != nil && c.config.Enabled && c.db != nil
}

func (c *Collector) session() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.currentSession
}

func (c *Collector) newEvent(eventType, command string) Event {
	return Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now(),
		SessionID: c.session(),
		EventType: eventType,
		Command:   command,
	}
}

// RecordCommand records a CLI or HTTP command execution
func (c *Collector) RecordCommand(cmd string, args []string, duration time.Duration, err error) error {
	if !c.enabled() {
		return nil
	}

	event := c.newEvent(EventCommand, cmd)
	event.Duration = duration
	event.Success = err == nil
	event.ErrorType = classifyError(err)

	if c.config.Anonymize {
		event.Args = anonymizeArgs(args)
	} else {
		event.Args = args
	}

	return c.db.SaveEvent(event)
}

// RecordProject records a project action such as "create"; template is the
// category that was requested.
func (c *Collector) RecordProject(action, name, template string, duration time.Duration, err error) error {
	if !c.enabled() {
		return nil
	}

	event := c.newEvent(EventProject, action)
	event.TemplateUsed = template
	event.Duration = duration
	event.Success = err == nil
	event.ErrorType = classifyError(err)
	event.FolderHash = c.folder(name)

	return c.db.SaveEvent(event)
}

// RecordOpen records handing a project to the editor or browser.
func (c *Collector) RecordOpen(target, path string, err error) error {
	if !c.enabled() {
		return nil
	}

	event := c.newEvent(EventOpen, target)
	event.Success = err == nil
	event.ErrorType = classifyError(err)
	event.FolderHash = c.folder(path)

	return c.db.SaveEvent(event)
}

// RecordListing records a folder listing and how many folders it returned.
func (c *Collector) RecordListing(root string, count int, err error) error {
	if !c.enabled() {
		return nil
	}

	event := c.newEvent(EventListing, "list")
	event.ItemCount = count
	event.Success = err == nil
	event.ErrorType = classifyError(err)
	event.FolderHash = c.folder(root)

	return c.db.SaveEvent(event)
}

func (c *Collector) folder(name string) string {
	if name == "" {
		return ""
	}
	if c.config.Anonymize {
		return hashString(name)
	}
	return name
}

// StartSession begins a new session; later events are attached to it.
func (c *Collector) StartSession() (string, error) {
	if !c.enabled() {
		return "", nil
	}

	session := Session{
		ID:        uuid.NewString(),
		StartedAt: time.Now(),
	}
	if err := c.db.SaveSession(session); err != nil {
		return "", err
	}

	c.mu.Lock()
	c.currentSession = session.ID
	c.mu.Unlock()
	return session.ID, nil
}

// EndSession closes the current session
func (c *Collector) EndSession() error {
	if !c.enabled() {
		return nil
	}

	c.mu.Lock()
	id := c.currentSession
	c.currentSession = ""
	c.mu.Unlock()

	if id == "" {
		return errNoSession
	}
	return c.db.EndSession(id)
}

// CurrentSession returns the current session ID
func (c *Collector) CurrentSession() string {
	if c == nil {
		return ""
	}
	return c.session()
}

// GetStats returns usage statistics for the specified number of days
func (c *Collector) GetStats(days int) (Stats, error) {
	if !c.enabled() {
		return Stats{}, nil
	}
	return c.db.GetStats(days)
}

// GetEvents returns events since the specified time
func (c *Collector) GetEvents(since time.Time) ([]Event, error) {
	if !c.enabled() {
		return nil, nil
	}
	return c.db.QueryEvents(since)
}

// Cleanup removes events older than the retention period and returns how
// many were deleted.
func (c *Collector) Cleanup() (int64, error) {
	if !c.enabled() {
		return 0, nil
	}
	olderThan := time.Duration(c.config.RetentionDays) * 24 * time.Hour
	return c.db.DeleteOldEvents(olderThan)
}

// DB exposes the underlying store for analysis. It is nil when disabled.
func (c *Collector) DB() *TelemetryDB {
	if c == nil {
		return nil
	}
	return c.db
}

// Close closes the collector and its database connection
func (c *Collector) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

func hashString(s string) string {
	h := sha256.Sum256([]byte(s))
	return hex.EncodeToString(h[:])[:16]
}

func anonymizeArgs(args []string) []string {
	var anonymized []string
	for _, arg := range args {
		switch {
		case looksLikePath(arg):
			anonymized = append(anonymized, "[path]")
		case looksLikeEnvVar(arg):
			anonymized = append(anonymized, "[env]")
		default:
			anonymized = append(anonymized, arg)
		}
	}
	return anonymized
}

func looksLikePath(s string) bool {
	return strings.HasPrefix(s, "/") ||
		strings.HasPrefix(s, "~") ||
		strings.HasPrefix(s, "./") ||
		strings.HasPrefix(s, "../") ||
		strings.Contains(s, `:\`) ||
		strings.Contains(s, "/home/") ||
		strings.Contains(s, "/Users/")
}

func looksLikeEnvVar(s string) bool {
	return strings.HasPrefix(s, "$") || strings.HasPrefix(s, "%")
}

// classifyError maps err to a stable error type, preferring the project
// error kinds.
func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if kind := project.Kind(err); kind != "unknown" {
		return kind
	}

	errStr := strings.ToLower(err.Error())
	switch {
	case strings.Contains(errStr, "permission") || strings.Contains(errStr, "access denied"):
		return "permission_error"
	case strings.Contains(errStr, "executable file not found") || strings.Contains(errStr, "failed to start"):
		return "launch_error"
	case strings.Contains(errStr, "no such file") || strings.Contains(errStr, "not found"):
		return "file_not_found"
	}
	return "unknown"
}
