package telemetry

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// TelemetryDB handles database operations. Timestamps are stored as unix
// milliseconds.
type TelemetryDB struct {
	db *sql.DB
}

// NewTelemetryDB creates/opens telemetry database
func NewTelemetryDB(path string) (*TelemetryDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	tdb := &TelemetryDB{db: db}
	if err := tdb.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return tdb, nil
}

func (t *TelemetryDB) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id TEXT PRIMARY KEY,
		timestamp INTEGER NOT NULL,
		session_id TEXT,
		event_type TEXT NOT NULL,
		folder_hash TEXT,
		command TEXT,
		args TEXT,
		duration_ms INTEGER,
		success BOOLEAN,
		error_type TEXT,
		template_used TEXT,
		item_count INTEGER
	);

	CREATE INDEX IF NOT EXISTS idx_events_type ON events(event_type);
	CREATE INDEX IF NOT EXISTS idx_events_time ON events(timestamp);
	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id);

	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		ended_at INTEGER,
		duration_ms INTEGER DEFAULT 0,
		commands_executed INTEGER DEFAULT 0,
		projects_created INTEGER DEFAULT 0,
		errors_encountered INTEGER DEFAULT 0
	);
	`

	_, err := t.db.Exec(schema)
	return err
}

// SaveEvent saves a telemetry event
func (t *TelemetryDB) SaveEvent(e Event) error {
	argsJSON, err := json.Marshal(e.Args)
	if err != nil {
		return fmt.Errorf("failed to encode args: %w", err)
	}

	query := `
	INSERT OR REPLACE INTO events (
		id, timestamp, session_id, event_type, folder_hash, command, args,
		duration_ms, success, error_type, template_used, item_count
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = t.db.Exec(query,
		e.ID, e.Timestamp.UnixMilli(), e.SessionID, e.EventType, e.FolderHash,
		e.Command, string(argsJSON), e.Duration.Milliseconds(), e.Success,
		e.ErrorType, e.TemplateUsed, e.ItemCount,
	)
	return err
}

// SaveSession saves a new session
func (t *TelemetryDB) SaveSession(s Session) error {
	_, err := t.db.Exec(`INSERT INTO sessions (id, started_at) VALUES (?, ?)`,
		s.ID, s.StartedAt.UnixMilli())
	return err
}

// EndSession closes a session and stores its totals
func (t *TelemetryDB) EndSession(sessionID string) error {
	now := time.Now()

	tx, err := t.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var startedAt int64
	err = tx.QueryRow(`SELECT started_at FROM sessions WHERE id = ?`, sessionID).Scan(&startedAt)
	if err == sql.ErrNoRows {
		return fmt.Errorf("session %s not found", sessionID)
	}
	if err != nil {
		return err
	}

	var commands, projects, failures int
	err = tx.QueryRow(`
		SELECT
			COUNT(CASE WHEN event_type = 'command' THEN 1 END),
			COUNT(CASE WHEN event_type = 'project' AND command = 'create' AND success = 1 THEN 1 END),
			COUNT(CASE WHEN success = 0 THEN 1 END)
		FROM events WHERE session_id = ?
	`, sessionID).Scan(&commands, &projects, &failures)
	if err != nil {
		return err
	}

	_, err = tx.Exec(`
		UPDATE sessions SET ended_at = ?, duration_ms = ?, commands_executed = ?,
		projects_created = ?, errors_encountered = ? WHERE id = ?
	`, now.UnixMilli(), now.UnixMilli()-startedAt, commands, projects, failures, sessionID)
	if err != nil {
		return err
	}

	return tx.Commit()
}

// GetSession returns a stored session
func (t *TelemetryDB) GetSession(sessionID string) (Session, error) {
	var s Session
	var startedAt, durationMs int64
	var endedAt sql.NullInt64

	err := t.db.QueryRow(`
		SELECT id, started_at, ended_at, duration_ms, commands_executed,
			projects_created, errors_encountered
		FROM sessions WHERE id = ?
	`, sessionID).Scan(&s.ID, &startedAt, &endedAt, &durationMs,
		&s.CommandsExecuted, &s.ProjectsCreated, &s.ErrorsEncountered)
	if err != nil {
		return s, err
	}

	s.StartedAt = time.UnixMilli(startedAt)
	s.Duration = time.Duration(durationMs) * time.Millisecond
	if endedAt.Valid {
		ended := time.UnixMilli(endedAt.Int64)
		s.EndedAt = &ended
	}
	return s, nil
}

const eventColumns = `id, timestamp, session_id, event_type, folder_hash, command, args,
	duration_ms, success, error_type, template_used, item_count`

// QueryEvents returns events at or after since, oldest first
func (t *TelemetryDB) QueryEvents(since time.Time) ([]Event, error) {
	rows, err := t.db.Query(`SELECT `+eventColumns+` FROM events WHERE timestamp >= ? ORDER BY timestamp, rowid`,
		since.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetEventsBySession returns all events for a session
func (t *TelemetryDB) GetEventsBySession(sessionID string) ([]Event, error) {
	rows, err := t.db.Query(`SELECT `+eventColumns+` FROM events WHERE session_id = ? ORDER BY timestamp, rowid`,
		sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanEvents(rows)
}

// GetStats returns usage statistics for the last days
func (t *TelemetryDB) GetStats(days int) (Stats, error) {
	since := time.Now().AddDate(0, 0, -days).UnixMilli()

	stats := Stats{}

	err := t.db.QueryRow(`
		SELECT COUNT(*), COUNT(DISTINCT session_id) FROM events WHERE timestamp >= ?
	`, since).Scan(&stats.TotalEvents, &stats.TotalSessions)
	if err != nil {
		return stats, err
	}

	var successful int
	var avgDuration sql.NullFloat64
	err = t.db.QueryRow(`
		SELECT COUNT(*), COUNT(CASE WHEN success = 1 THEN 1 END), AVG(duration_ms)
		FROM events WHERE event_type = 'command' AND timestamp >= ?
	`, since).Scan(&stats.TotalCommands, &successful, &avgDuration)
	if err != nil {
		return stats, err
	}
	if stats.TotalCommands > 0 {
		stats.SuccessRate = float64(successful) / float64(stats.TotalCommands) * 100
	}
	if avgDuration.Valid {
		stats.AvgCommandDuration = time.Duration(avgDuration.Float64) * time.Millisecond
	}

	stats.TopCommands, err = t.getTopCommands(since)
	if err != nil {
		return stats, err
	}

	stats.CommonErrors, err = t.getCommonErrors(since)
	if err != nil {
		return stats, err
	}

	stats.ProjectStats, err = t.getProjectStats(since)
	if err != nil {
		return stats, err
	}

	stats.ListingStats, err = t.getListingStats(since)
	if err != nil {
		return stats, err
	}

	return stats, nil
}

func (t *TelemetryDB) getTopCommands(since int64) ([]CommandStat, error) {
	query := `
		SELECT command, COUNT(*) as count, AVG(duration_ms) as avg_dur,
			(COUNT(CASE WHEN success = 1 THEN 1 END) * 100.0 / COUNT(*)) as success_rate
		FROM events WHERE event_type = 'command' AND command != '' AND timestamp >= ?
		GROUP BY command ORDER BY count DESC, command LIMIT 10
	`

	rows, err := t.db.Query(query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var commands []CommandStat
	for rows.Next() {
		var cs CommandStat
		var avgDur, successRate sql.NullFloat64

		if err := rows.Scan(&cs.Command, &cs.Count, &avgDur, &successRate); err != nil {
			return nil, err
		}
		if avgDur.Valid {
			cs.AvgDuration = int64(avgDur.Float64)
		}
		if successRate.Valid {
			cs.SuccessRate = successRate.Float64
		}

		commands = append(commands, cs)
	}

	return commands, rows.Err()
}

func (t *TelemetryDB) getCommonErrors(since int64) ([]ErrorStat, error) {
	query := `
		SELECT error_type, COUNT(*) as count, MIN(timestamp), MAX(timestamp)
		FROM events WHERE success = 0 AND error_type != '' AND timestamp >= ?
		GROUP BY error_type ORDER BY count DESC, error_type LIMIT 10
	`

	rows, err := t.db.Query(query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var errors []ErrorStat
	for rows.Next() {
		var es ErrorStat
		var firstSeen, lastSeen int64
		if err := rows.Scan(&es.ErrorType, &es.Count, &firstSeen, &lastSeen); err != nil {
			return nil, err
		}
		es.FirstSeen = time.UnixMilli(firstSeen)
		es.LastSeen = time.UnixMilli(lastSeen)
		errors = append(errors, es)
	}

	return errors, rows.Err()
}

func (t *TelemetryDB) getProjectStats(since int64) (ProjectStats, error) {
	ps := ProjectStats{}

	err := t.db.QueryRow(`
		SELECT
			COUNT(CASE WHEN event_type = 'project' AND command = 'create' AND success = 1 THEN 1 END),
			COUNT(CASE WHEN event_type = 'project' AND command = 'create' AND success = 0 THEN 1 END),
			COUNT(CASE WHEN event_type = 'open' AND success = 1 THEN 1 END)
		FROM events WHERE timestamp >= ?
	`, since).Scan(&ps.TotalCreated, &ps.TotalFailed, &ps.TotalOpened)
	if err != nil {
		return ps, err
	}

	ps.TopTemplates, err = t.getTopTemplates(since)
	if err != nil {
		return ps, err
	}

	return ps, nil
}

func (t *TelemetryDB) getTopTemplates(since int64) ([]TemplateStat, error) {
	query := `
		SELECT template_used, COUNT(*) as count
		FROM events WHERE event_type = 'project' AND success = 1 AND template_used != '' AND timestamp >= ?
		GROUP BY template_used ORDER BY count DESC, template_used LIMIT 5
	`

	rows, err := t.db.Query(query, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var templates []TemplateStat
	for rows.Next() {
		var ts TemplateStat
		if err := rows.Scan(&ts.TemplateName, &ts.Count); err != nil {
			return nil, err
		}
		templates = append(templates, ts)
	}

	return templates, rows.Err()
}

func (t *TelemetryDB) getListingStats(since int64) (ListingStats, error) {
	ls := ListingStats{}
	var avg sql.NullFloat64

	err := t.db.QueryRow(`
		SELECT COUNT(*), AVG(item_count) FROM events WHERE event_type = 'listing' AND timestamp >= ?
	`, since).Scan(&ls.TotalListings, &avg)
	if err != nil {
		return ls, err
	}
	if avg.Valid {
		ls.AvgFolders = avg.Float64
	}
	return ls, nil
}

// DeleteOldEvents removes events older than the specified duration
func (t *TelemetryDB) DeleteOldEvents(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UnixMilli()
	res, err := t.db.Exec(`DELETE FROM events WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Close closes the database connection
func (t *TelemetryDB) Close() error {
	return t.db.Close()
}

func scanEvents(rows *sql.Rows) ([]Event, error) {
	var events []Event
	for rows.Next() {
		var e Event
		var ts int64
		var sessionID, folderHash, command, argsJSON, errorType, templateUsed sql.NullString
		var durationMs, itemCount sql.NullInt64
		var success sql.NullBool

		err := rows.Scan(
			&e.ID, &ts, &sessionID, &e.EventType, &folderHash, &command,
			&argsJSON, &durationMs, &success, &errorType, &templateUsed, &itemCount,
		)
		if err != nil {
			return nil, err
		}

		e.Timestamp = time.UnixMilli(ts)
		e.SessionID = sessionID.String
		e.FolderHash = folderHash.String
		e.Command = command.String
		e.ErrorType = errorType.String
		e.TemplateUsed = templateUsed.String
		e.Success = success.Bool
		e.ItemCount = int(itemCount.Int64)
		if durationMs.Valid {
			e.Duration = time.Duration(durationMs.Int64) * time.Millisecond
		}
		if argsJSON.Valid && argsJSON.String != "" && argsJSON.String != "null" {
			if err := json.Unmarshal([]byte(argsJSON.String), &e.Args); err != nil {
				return nil, fmt.Errorf("failed to decode args of event %s: %w", e.ID, err)
			}
		}

		events = append(events, e)
	}
	return events, rows.Err()
}
