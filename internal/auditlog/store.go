// Package auditlog persists run audit trails as JSON lines with size-based rotation.
package auditlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ppiankov/brandguard/internal/model"
	"go.uber.org/zap"
)

const (
	defaultMaxBytes   = int64(4 << 20) // 4 MiB
	defaultMaxBackups = 3

	activeName    = "audit.jsonl"
	rotatedPrefix = "audit-"
	rotatedSuffix = ".jsonl"
)

// Record is one audit entry tagged with its run
type Record struct {
	RunID string `json:"run_id"`
	model.AuditEntry
}

// Run groups the entries of one run
type Run struct {
	ID      string
	Entries []model.AuditEntry
}

// Options configures a Store
type Options struct {
	Logger *zap.Logger

	// Dir holds the active file and its rotated backups
	Dir string

	// MaxBytes is the rotation threshold of the active file; <= 0 uses 4 MiB
	MaxBytes int64

	// MaxBackups keeps the latest N rotated files; <= 0 keeps 3
	MaxBackups int
}

// Store appends audit records to a JSONL file
type Store struct {
	log *zap.Logger

	dir        string
	activePath string

	maxBytes   int64
	maxBackups int

	mu sync.Mutex
}

// New creates the audit directory and active file
func New(opts Options) (*Store, error) {
	dir := strings.TrimSpace(opts.Dir)
	if dir == "" {
		return nil, errors.New("missing audit dir")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audit dir: %w", err)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	maxBackups := opts.MaxBackups
	if maxBackups <= 0 {
		maxBackups = defaultMaxBackups
	}

	activePath := filepath.Join(dir, activeName)
	f, err := os.OpenFile(activePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open audit log: %w", err)
	}
	_ = f.Close()

	return &Store{
		log:        logger,
		dir:        dir,
		activePath: activePath,
		maxBytes:   maxBytes,
		maxBackups: maxBackups,
	}, nil
}

// Path returns the active file
func (s *Store) Path() string {
	return s.activePath
}

// Append writes one run's entries in order. Rotation happens after the write,
// so a run's entries never straddle two files.
func (s *Store) Append(runID string, entries []model.AuditEntry) error {
	if s == nil || len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.OpenFile(s.activePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, e := range entries {
		e.Timestamp = e.Timestamp.UTC()
		if err := enc.Encode(Record{RunID: runID, AuditEntry: e}); err != nil {
			_ = f.Close()
			return fmt.Errorf("encode audit entry: %w", err)
		}
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("write audit log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close audit log: %w", err)
	}

	s.maybeRotateLocked()
	return nil
}

// ReadAll returns every record, oldest file first
func (s *Store) ReadAll() ([]Record, error) {
	s.mu.Lock()
	files := s.listFilesLocked()
	s.mu.Unlock()

	var out []Record
	for _, path := range files {
		records, err := ReadFile(path)
		if err != nil {
			return nil, err
		}
		out = append(out, records...)
	}
	return out, nil
}

// listFilesLocked returns rotated files oldest first, then the active file
func (s *Store) listFilesLocked() []string {
	paths := s.rotatedLocked()
	for i := range paths {
		paths[i] = filepath.Join(s.dir, paths[i])
	}
	return append(paths, s.activePath)
}

// rotatedLocked lists backup names; UnixMilli names sort oldest first
func (s *Store) rotatedLocked() []string {
	ents, err := os.ReadDir(s.dir)
	if err != nil {
		return nil
	}
	var rotated []string
	for _, ent := range ents {
		if ent.IsDir() {
			continue
		}
		name := ent.Name()
		if strings.HasPrefix(name, rotatedPrefix) && strings.HasSuffix(name, rotatedSuffix) {
			rotated = append(rotated, name)
		}
	}
	sort.Strings(rotated)
	return rotated
}

func (s *Store) maybeRotateLocked() {
	st, err := os.Stat(s.activePath)
	if err != nil || st.Size() <= s.maxBytes {
		return
	}

	ts := time.Now().UnixMilli()
	dst := filepath.Join(s.dir, fmt.Sprintf("%s%d%s", rotatedPrefix, ts, rotatedSuffix))
	for i := 1; fileExists(dst); i++ {
		dst = filepath.Join(s.dir, fmt.Sprintf("%s%d-%d%s", rotatedPrefix, ts, i, rotatedSuffix))
	}
	if err := os.Rename(s.activePath, dst); err != nil {
		s.log.Warn("audit log rotate failed", zap.Error(err))
		return
	}
	if f, err := os.OpenFile(s.activePath, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644); err == nil {
		_ = f.Close()
	}

	rotated := s.rotatedLocked()
	if len(rotated) <= s.maxBackups {
		return
	}
	for _, name := range rotated[:len(rotated)-s.maxBackups] {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil {
			s.log.Warn("audit log cleanup failed", zap.String("file", name), zap.Error(err))
		}
	}
}

// ReadFile loads records from one JSONL file in file order.
// Blank and undecodable lines are skipped; a missing file reads as empty.
func ReadFile(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var records []Record
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		var r Record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return records, nil
}

// Runs groups records by run id in first-seen order
func Runs(records []Record) []Run {
	index := map[string]int{}
	var runs []Run
	for _, r := range records {
		i, ok := index[r.RunID]
		if !ok {
			i = len(runs)
			index[r.RunID] = i
			runs = append(runs, Run{ID: r.RunID})
		}
		runs[i].Entries = append(runs[i].Entries, r.AuditEntry)
	}
	return runs
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
