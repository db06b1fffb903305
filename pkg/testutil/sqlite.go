package testutil

import (
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"
)

// SQLiteTestHelper opens a second connection to a temp database so tests can
// inspect rows written by the code under test.
type SQLiteTestHelper struct {
	DB     *sql.DB
	DBPath string
}

func NewSQLiteTestHelper(t *testing.T) *SQLiteTestHelper {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "telemetry.db")

	db, err := sql.Open("sqlite3", dbPath)
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return &SQLiteTestHelper{DB: db, DBPath: dbPath}
}

func (h *SQLiteTestHelper) Exec(t *testing.T, query string, args ...interface{}) {
	t.Helper()
	_, err := h.DB.Exec(query, args...)
	require.NoError(t, err)
}

func (h *SQLiteTestHelper) RowExists(t *testing.T, table string, where string, args ...interface{}) bool {
	t.Helper()
	var count int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s", table, where)
	require.NoError(t, h.DB.QueryRow(query, args...).Scan(&count))
	return count > 0
}

func (h *SQLiteTestHelper) Count(t *testing.T, table string) int {
	t.Helper()
	var count int
	require.NoError(t, h.DB.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s", table)).Scan(&count))
	return count
}
