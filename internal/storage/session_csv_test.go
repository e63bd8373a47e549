package storage

import (
	"encoding/csv"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ezlockin/internal/core/model"
)

func readSessionRows(t *testing.T, path string) [][]string {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()
	rows, err := csv.NewReader(file).ReadAll()
	require.NoError(t, err)
	return rows
}

func TestSessionLogWritesHeaderOnce(t *testing.T) {
	sessionLog := NewSessionLog(t.TempDir())
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.Local)

	for i := 0; i < 3; i++ {
		begin := start.Add(time.Duration(i) * 10 * time.Minute)
		require.NoError(t, sessionLog.Append(model.SessionRecord{
			Start:    begin,
			End:      begin.Add(200 * time.Second),
			Duration: 200 * time.Second,
		}))
	}

	rows := readSessionRows(t, sessionLog.Path())
	require.Len(t, rows, 4)
	assert.Equal(t, sessionLogHeader, rows[0])
	assert.Equal(t, []string{"2026-03-02 09:00:00", "2026-03-02 09:03:20", "200", "2026-03-02", "Monday"}, rows[1])
	assert.Equal(t, "2026-03-02 09:20:00", rows[3][0])
}

func TestSessionLogSkipsNonPositiveDurations(t *testing.T) {
	sessionLog := NewSessionLog(t.TempDir())
	now := time.Now()

	require.NoError(t, sessionLog.Append(model.SessionRecord{Start: now, End: now, Duration: 0}))
	_, err := os.Stat(sessionLog.Path())
	assert.True(t, os.IsNotExist(err))

	require.NoError(t, sessionLog.Append(model.SessionRecord{Start: now, End: now.Add(time.Minute), Duration: time.Minute}))
	require.NoError(t, sessionLog.Append(model.SessionRecord{Start: now, End: now, Duration: -time.Second}))
	assert.Len(t, readSessionRows(t, sessionLog.Path()), 2)
}

func TestSessionLogReportsUnwritablePath(t *testing.T) {
	dir := t.TempDir()
	sessionLog := NewSessionLog(dir + "/missing/dir")
	now := time.Now()

	err := sessionLog.Append(model.SessionRecord{Start: now, End: now.Add(time.Minute), Duration: time.Minute})
	var persistenceErr *PersistenceError
	require.ErrorAs(t, err, &persistenceErr)
	assert.Equal(t, "open session log", persistenceErr.Op)
}
