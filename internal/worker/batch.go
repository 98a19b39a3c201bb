package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ppiankov/brandguard/internal/model"
	"gopkg.in/yaml.v3"
)

// Runner executes one brief end to end
type Runner interface {
	Run(ctx context.Context, brief model.EventBrief) *model.RunResult
}

// BriefJob runs a single brief
type BriefJob struct {
	Index  int
	Source string
	Brief  model.EventBrief
	Runner Runner
}

// Execute executes the brief job
func (j *BriefJob) Execute(ctx context.Context) Result {
	if err := j.Brief.Validate(); err != nil {
		return &BriefResult{Index: j.Index, Source: j.Source, Error: err}
	}
	return &BriefResult{
		Index:  j.Index,
		Source: j.Source,
		Result: j.Runner.Run(ctx, j.Brief),
	}
}

// BriefResult is the outcome of one brief in a batch
type BriefResult struct {
	Index  int
	Source string
	Result *model.RunResult
	Error  error
}

// GetError returns the error from the brief result
func (r *BriefResult) GetError() error {
	return r.Error
}

// BatchRunner runs several briefs concurrently against a shared runner
type BatchRunner struct {
	runner      Runner
	concurrency int
}

// NewBatchRunner creates a batch runner
func NewBatchRunner(runner Runner, concurrency int) *BatchRunner {
	return &BatchRunner{
		runner:      runner,
		concurrency: concurrency,
	}
}

// RunBriefs runs briefs concurrently and returns results in input order
func (b *BatchRunner) RunBriefs(ctx context.Context, briefs []model.EventBrief, sources []string) []*BriefResult {
	if len(briefs) == 0 {
		return []*BriefResult{}
	}

	jobs := make([]Job, len(briefs))
	for i, brief := range briefs {
		source := ""
		if i < len(sources) {
			source = sources[i]
		}
		jobs[i] = &BriefJob{Index: i, Source: source, Brief: brief, Runner: b.runner}
	}

	results := Run(ctx, b.concurrency, jobs)

	out := make([]*BriefResult, 0, len(results))
	for _, r := range results {
		out = append(out, r.(*BriefResult))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Index < out[j].Index })

	return out
}

// RunFile reads brief paths from a list file and runs them
func (b *BatchRunner) RunFile(ctx context.Context, listPath string) ([]*BriefResult, error) {
	paths, err := ReadListFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read brief list: %w", err)
	}

	base := filepath.Dir(listPath)
	briefs := make([]model.EventBrief, 0, len(paths))
	sources := make([]string, 0, len(paths))
	for _, p := range paths {
		if !filepath.IsAbs(p) {
			p = filepath.Join(base, p)
		}
		brief, err := LoadBrief(p)
		if err != nil {
			return nil, err
		}
		briefs = append(briefs, *brief)
		sources = append(sources, p)
	}

	return b.RunBriefs(ctx, briefs, sources), nil
}

// LoadBrief reads an event brief from a JSON or YAML file
func LoadBrief(path string) (*model.EventBrief, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read brief: %w", err)
	}

	var brief model.EventBrief
	// YAML is a superset of JSON, so one decoder covers both
	if err := yaml.Unmarshal(data, &brief); err != nil {
		return nil, fmt.Errorf("parse brief %s: %w", path, err)
	}
	return &brief, nil
}

// ReadListFile reads one entry per line, skipping blanks, comments and duplicates
func ReadListFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var entries []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			entries = append(entries, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return entries, nil
}
