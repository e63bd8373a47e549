package storage

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ezlockin/internal/core/model"
)

// HistoryFileName is the SQLite session history inside the data directory.
const HistoryFileName = "history.db"

const historySchema = `CREATE TABLE IF NOT EXISTS focus_sessions (
	id TEXT PRIMARY KEY,
	start_time TEXT NOT NULL,
	end_time TEXT NOT NULL,
	duration_seconds INTEGER NOT NULL,
	local_date TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_focus_sessions_start ON focus_sessions(start_time);`

// HistoryEntry is a stored session record.
type HistoryEntry struct {
	ID string
	model.SessionRecord
}

// HistorySummary aggregates stored sessions.
type HistorySummary struct {
	Sessions   int
	Focus      time.Duration
	ActiveDays int
}

// History mirrors completed sessions into a SQLite database for queries.
// Day counts use the calendar date in loc, matching the CSV log's date column.
type History struct {
	db  *sql.DB
	now func() time.Time
	loc *time.Location
}

// OpenHistory opens or creates the history database at path.
func OpenHistory(path string) (*History, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, &PersistenceError{Op: "create history directory", Path: filepath.Dir(path), Err: err}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &PersistenceError{Op: "open history", Path: path, Err: err}
	}
	// Keeps appends from the cycle and CLI queries on one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "set history WAL mode", Path: path, Err: err}
	}
	if _, err := db.Exec(historySchema); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "migrate history", Path: path, Err: err}
	}
	if err := addLocalDateColumn(db); err != nil {
		db.Close()
		return nil, &PersistenceError{Op: "migrate history", Path: path, Err: err}
	}

	return &History{db: db, now: time.Now, loc: time.Local}, nil
}

// addLocalDateColumn upgrades databases created before local_date existed.
// Old rows fall back to their UTC date.
func addLocalDateColumn(db *sql.DB) error {
	var count int
	query := `SELECT COUNT(*) FROM pragma_table_info('focus_sessions') WHERE name = 'local_date'`
	if err := db.QueryRow(query).Scan(&count); err != nil {
		return fmt.Errorf("inspecting focus_sessions: %w", err)
	}
	if count > 0 {
		return nil
	}
	if _, err := db.Exec(`ALTER TABLE focus_sessions ADD COLUMN local_date TEXT NOT NULL DEFAULT ''`); err != nil {
		return fmt.Errorf("adding local_date: %w", err)
	}
	if _, err := db.Exec(`UPDATE focus_sessions SET local_date = substr(start_time, 1, 10)`); err != nil {
		return fmt.Errorf("backfilling local_date: %w", err)
	}
	return nil
}

// Close releases the database.
func (history *History) Close() error {
	return history.db.Close()
}

// Append stores record under a new ID. Records with a non-positive duration are skipped.
func (history *History) Append(record model.SessionRecord) error {
	return history.AppendContext(context.Background(), record)
}

// AppendContext is Append with a caller supplied context.
func (history *History) AppendContext(ctx context.Context, record model.SessionRecord) error {
	if record.Duration < time.Second {
		return nil
	}
	query := `INSERT INTO focus_sessions (id, start_time, end_time, duration_seconds, local_date) VALUES (?, ?, ?, ?, ?)`
	_, err := history.db.ExecContext(ctx, query,
		uuid.NewString(),
		record.Start.UTC().Format(time.RFC3339),
		record.End.UTC().Format(time.RFC3339),
		int64(record.Duration/time.Second),
		record.Start.In(history.loc).Format(DateLayout),
	)
	if err != nil {
		return fmt.Errorf("inserting focus session: %w", err)
	}
	return nil
}

// Recent lists sessions started within the last days days, newest first.
func (history *History) Recent(ctx context.Context, days int) ([]HistoryEntry, error) {
	query := `SELECT id, start_time, end_time, duration_seconds
		FROM focus_sessions
		WHERE start_time >= ?
		ORDER BY start_time DESC`
	rows, err := history.db.QueryContext(ctx, query, history.cutoff(days))
	if err != nil {
		return nil, fmt.Errorf("listing recent focus sessions: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var entry HistoryEntry
		var startText, endText string
		var durationSeconds int64
		if err := rows.Scan(&entry.ID, &startText, &endText, &durationSeconds); err != nil {
			return nil, fmt.Errorf("scanning focus session: %w", err)
		}
		if entry.Start, err = time.Parse(time.RFC3339, startText); err != nil {
			return nil, fmt.Errorf("parsing start_time: %w", err)
		}
		if entry.End, err = time.Parse(time.RFC3339, endText); err != nil {
			return nil, fmt.Errorf("parsing end_time: %w", err)
		}
		entry.Duration = time.Duration(durationSeconds) * time.Second
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating focus sessions: %w", err)
	}
	return entries, nil
}

// Summary aggregates sessions started within the last days days. A
// non-positive days covers the whole history.
func (history *History) Summary(ctx context.Context, days int) (HistorySummary, error) {
	query := `SELECT COUNT(*), COALESCE(SUM(duration_seconds), 0), COUNT(DISTINCT local_date)
		FROM focus_sessions
		WHERE start_time >= ?`
	cutoff := ""
	if days > 0 {
		cutoff = history.cutoff(days)
	}

	var summary HistorySummary
	var focusSeconds int64
	if err := history.db.QueryRowContext(ctx, query, cutoff).Scan(&summary.Sessions, &focusSeconds, &summary.ActiveDays); err != nil {
		return HistorySummary{}, fmt.Errorf("summarizing focus sessions: %w", err)
	}
	summary.Focus = time.Duration(focusSeconds) * time.Second
	return summary, nil
}

func (history *History) cutoff(days int) string {
	return history.now().UTC().AddDate(0, 0, -days).Format(time.RFC3339)
}
