package auditlog

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ppiankov/brandguard/internal/model"
)

func entries(n int) []model.AuditEntry {
	base := time.Date(2026, 5, 4, 9, 30, 0, 123456789, time.FixedZone("EEST", 3*3600))
	out := make([]model.AuditEntry, n)
	for i := range out {
		out[i] = model.AuditEntry{Tool: "draft_content", Timestamp: base.Add(time.Duration(i) * time.Second), Iteration: i}
	}
	return out
}

func TestStore_AppendAndReadAll(t *testing.T) {
	s, err := New(Options{Dir: t.TempDir()})
	require.NoError(t, err)

	require.NoError(t, s.Append("run-a", entries(2)))
	require.NoError(t, s.Append("run-b", entries(1)))
	require.NoError(t, s.Append("run-c", nil))

	records, err := s.ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "run-a", records[0].RunID)
	assert.Equal(t, 1, records[1].Iteration)
	assert.Equal(t, "run-b", records[2].RunID)
	assert.Equal(t, time.UTC, records[0].Timestamp.Location())
	assert.True(t, records[0].Timestamp.Equal(entries(1)[0].Timestamp), "nanosecond timestamps survive the round trip")

	runs := Runs(records)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-a", runs[0].ID)
	assert.Len(t, runs[0].Entries, 2)
}

func TestStore_LineFormat(t *testing.T) {
	s, err := New(Options{Dir: t.TempDir()})
	require.NoError(t, err)
	require.NoError(t, s.Append("run-1", entries(1)))

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, `{"run_id":"run-1","tool":"draft_content","timestamp":"2026-05-04T06:30:00.123456789Z","iteration":0}`+"\n", string(data))
}

func TestStore_Rotation(t *testing.T) {
	dir := t.TempDir()
	s, err := New(Options{Dir: dir, MaxBytes: 200, MaxBackups: 2})
	require.NoError(t, err)

	for i := 0; i < 6; i++ {
		require.NoError(t, s.Append("run", entries(3)))
	}

	rotated, err := filepath.Glob(filepath.Join(dir, "audit-*.jsonl"))
	require.NoError(t, err)
	assert.Len(t, rotated, 2, "old backups are pruned")

	records, err := s.ReadAll()
	require.NoError(t, err)
	assert.Equal(t, 0, len(records)%3, "runs are never split across files")
}

func TestReadFile_SkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")
	content := `{"run_id":"r","tool":"verify_claims","timestamp":"2026-01-01T00:00:00Z","iteration":1}` + "\n\nnot json\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := ReadFile(path)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "verify_claims", records[0].Tool)

	missing, err := ReadFile(filepath.Join(t.TempDir(), "nope.jsonl"))
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestNew_RequiresDir(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)
}
