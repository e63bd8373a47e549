package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"ezlockin/internal/core/model"
)

const (
	// SessionLogFileName is the append-only CSV session log inside the data directory.
	SessionLogFileName = "study_log.csv"

	// TimestampLayout formats session timestamps in the CSV log.
	TimestampLayout = "2006-01-02 15:04:05"

	// DateLayout formats the calendar day a session started on, in local time.
	DateLayout = "2006-01-02"
)

var sessionLogHeader = []string{"start_time", "end_time", "duration_seconds", "date", "day_of_week"}

// SessionLog appends completed focus sessions to a CSV file.
type SessionLog struct {
	mu   sync.Mutex
	path string
}

// NewSessionLog returns a log writing to study_log.csv in dir.
func NewSessionLog(dir string) *SessionLog {
	return &SessionLog{path: filepath.Join(dir, SessionLogFileName)}
}

// Path returns the log location.
func (sessionLog *SessionLog) Path() string {
	return sessionLog.path
}

// Append writes one row for record. The header is written when the file is
// new or empty. Records with a non-positive duration are skipped.
func (sessionLog *SessionLog) Append(record model.SessionRecord) error {
	if record.Duration < time.Second {
		log.Debug().Dur("duration", record.Duration).Msg("skipping session with non-positive duration")
		return nil
	}

	sessionLog.mu.Lock()
	defer sessionLog.mu.Unlock()

	file, err := os.OpenFile(sessionLog.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return &PersistenceError{Op: "open session log", Path: sessionLog.path, Err: err}
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return &PersistenceError{Op: "stat session log", Path: sessionLog.path, Err: err}
	}

	writer := csv.NewWriter(file)
	if info.Size() == 0 {
		if err := writer.Write(sessionLogHeader); err != nil {
			return &PersistenceError{Op: "write session log header", Path: sessionLog.path, Err: err}
		}
	}
	if err := writer.Write(sessionRow(record)); err != nil {
		return &PersistenceError{Op: "append session log", Path: sessionLog.path, Err: err}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return &PersistenceError{Op: "append session log", Path: sessionLog.path, Err: err}
	}
	return nil
}

func sessionRow(record model.SessionRecord) []string {
	start := record.Start.Local()
	return []string{
		start.Format(TimestampLayout),
		record.End.Local().Format(TimestampLayout),
		strconv.FormatInt(int64(record.Duration/time.Second), 10),
		start.Format(DateLayout),
		start.Weekday().String(),
	}
}
