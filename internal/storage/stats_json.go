package storage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"ezlockin/internal/core/model"
)

// StatsFileName is the totals document inside the data directory.
const StatsFileName = "stats.json"

// LoadStatus describes the outcome of reading the stats document.
type LoadStatus int

const (
	StatsOK LoadStatus = iota
	StatsAbsent
	StatsCorrupt
)

func (status LoadStatus) String() string {
	switch status {
	case StatsOK:
		return "ok"
	case StatsAbsent:
		return "absent"
	case StatsCorrupt:
		return "corrupt"
	default:
		return fmt.Sprintf("LoadStatus(%d)", int(status))
	}
}

type statsDocument struct {
	LifetimeFocusSeconds    int64     `json:"lifetime_focus_seconds"`
	AccumulatedFocusSeconds int64     `json:"accumulated_focus_seconds"`
	UpdatedAt               time.Time `json:"updated_at"`
}

// StatsStore persists focus totals as a JSON document.
type StatsStore struct {
	mu   sync.Mutex
	path string
	now  func() time.Time
	sync func(*os.File) error
}

// NewStatsStore returns a store for stats.json in dir.
func NewStatsStore(dir string) *StatsStore {
	return &StatsStore{path: filepath.Join(dir, StatsFileName), now: time.Now, sync: (*os.File).Sync}
}

// Path returns the document location.
func (store *StatsStore) Path() string {
	return store.path
}

// Load reads the persisted totals. Absent and corrupt documents yield zero
// totals; for a corrupt or unreadable document the cause is returned too.
func (store *StatsStore) Load() (model.Totals, LoadStatus, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	data, err := os.ReadFile(store.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Totals{}, StatsAbsent, nil
		}
		return model.Totals{}, StatsCorrupt, &PersistenceError{Op: "read stats", Path: store.path, Err: err}
	}

	var document statsDocument
	if err := json.Unmarshal(data, &document); err != nil {
		return model.Totals{}, StatsCorrupt, &PersistenceError{Op: "parse stats", Path: store.path, Err: err}
	}
	if document.LifetimeFocusSeconds < 0 || document.AccumulatedFocusSeconds < 0 {
		return model.Totals{}, StatsCorrupt, &PersistenceError{
			Op:   "parse stats",
			Path: store.path,
			Err:  fmt.Errorf("negative totals %d/%d", document.AccumulatedFocusSeconds, document.LifetimeFocusSeconds),
		}
	}

	return model.Totals{
		Accumulated: time.Duration(document.AccumulatedFocusSeconds) * time.Second,
		Lifetime:    time.Duration(document.LifetimeFocusSeconds) * time.Second,
	}, StatsOK, nil
}

// Save replaces the document with totals. The write goes to a temp file in
// the same directory, is flushed to disk and is then renamed over the document.
func (store *StatsStore) Save(totals model.Totals) (err error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	data, err := json.MarshalIndent(statsDocument{
		LifetimeFocusSeconds:    int64(totals.Lifetime / time.Second),
		AccumulatedFocusSeconds: int64(totals.Accumulated / time.Second),
		UpdatedAt:               store.now().UTC().Truncate(time.Second),
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal stats: %w", err)
	}

	dir := filepath.Dir(store.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &PersistenceError{Op: "create stats directory", Path: dir, Err: err}
	}

	tmp, err := os.CreateTemp(dir, "stats-*.json.tmp")
	if err != nil {
		return &PersistenceError{Op: "write stats", Path: store.path, Err: err}
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return &PersistenceError{Op: "write stats", Path: store.path, Err: err}
	}
	if err = store.sync(tmp); err != nil {
		_ = tmp.Close()
		return &PersistenceError{Op: "sync stats", Path: store.path, Err: err}
	}
	if err = tmp.Close(); err != nil {
		return &PersistenceError{Op: "write stats", Path: store.path, Err: err}
	}
	if err = os.Rename(tmpName, store.path); err != nil {
		return &PersistenceError{Op: "replace stats", Path: store.path, Err: err}
	}
	return nil
}
