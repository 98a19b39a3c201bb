package worker

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ppiankov/brandguard/internal/model"
)

// mockRunner implements Runner
type mockRunner struct {
	calls int32
}

func (m *mockRunner) Run(ctx context.Context, brief model.EventBrief) *model.RunResult {
	atomic.AddInt32(&m.calls, 1)
	time.Sleep(5 * time.Millisecond)
	return &model.RunResult{
		RunID:   "run-" + brief.Title,
		Success: true,
		Bundle:  &model.ExportBundle{EventTitle: brief.Title},
	}
}

func brief(title string) model.EventBrief {
	return model.EventBrief{
		Title:       title,
		Description: "A webinar",
		Channels:    []model.Channel{model.ChannelEmail},
	}
}

func TestBatchRunner_RunBriefs(t *testing.T) {
	runner := &mockRunner{}
	batch := NewBatchRunner(runner, 2)

	briefs := []model.EventBrief{brief("a"), brief("b"), brief("c")}
	results := batch.RunBriefs(context.Background(), briefs, nil)

	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	for i, res := range results {
		if res.Index != i {
			t.Errorf("result %d has index %d", i, res.Index)
		}
		if res.Error != nil {
			t.Errorf("unexpected error: %v", res.Error)
		}
		if res.Result.Bundle.EventTitle != briefs[i].Title {
			t.Errorf("result %d out of order: %s", i, res.Result.Bundle.EventTitle)
		}
	}
}

func TestBatchRunner_InvalidBrief(t *testing.T) {
	runner := &mockRunner{}
	batch := NewBatchRunner(runner, 2)

	results := batch.RunBriefs(context.Background(), []model.EventBrief{{Title: "no channels"}}, []string{"x.yaml"})

	if len(results) != 1 || results[0].Error == nil {
		t.Fatal("expected validation error")
	}
	if results[0].Source != "x.yaml" {
		t.Errorf("expected source x.yaml, got %s", results[0].Source)
	}
	if atomic.LoadInt32(&runner.calls) != 0 {
		t.Error("runner should not be called for an invalid brief")
	}
}

func TestBatchRunner_Empty(t *testing.T) {
	batch := NewBatchRunner(&mockRunner{}, 2)
	if got := batch.RunBriefs(context.Background(), nil, nil); len(got) != 0 {
		t.Errorf("expected no results, got %d", len(got))
	}
}

func TestBatchRunner_RunFile(t *testing.T) {
	dir := t.TempDir()

	yamlBrief := "event_title: Zero Trust Webinar\nevent_description: Learn zero trust\nchannels: [email, web]\n"
	jsonBrief := `{"event_title":"Launch","event_description":"New release","channels":["linkedin"]}`
	if err := os.WriteFile(filepath.Join(dir, "one.yaml"), []byte(yamlBrief), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "two.json"), []byte(jsonBrief), 0644); err != nil {
		t.Fatal(err)
	}
	list := filepath.Join(dir, "briefs.txt")
	if err := os.WriteFile(list, []byte("# briefs\none.yaml\n\ntwo.json\none.yaml\n"), 0644); err != nil {
		t.Fatal(err)
	}

	batch := NewBatchRunner(&mockRunner{}, 2)
	results, err := batch.RunFile(context.Background(), list)
	if err != nil {
		t.Fatalf("RunFile failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].Result.Bundle.EventTitle != "Zero Trust Webinar" {
		t.Errorf("unexpected first title %q", results[0].Result.Bundle.EventTitle)
	}
	if results[1].Result.Bundle.EventTitle != "Launch" {
		t.Errorf("unexpected second title %q", results[1].Result.Bundle.EventTitle)
	}
}

func TestLoadBrief_Channels(t *testing.T) {
	path := filepath.Join(t.TempDir(), "brief.yaml")
	content := "event_title: T\nevent_description: D\nchannels:\n  - email\n  - facebook\nkey_messages:\n  - one\n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	b, err := LoadBrief(path)
	if err != nil {
		t.Fatalf("LoadBrief failed: %v", err)
	}
	if len(b.Channels) != 2 || b.Channels[1] != model.ChannelFacebook {
		t.Errorf("unexpected channels %v", b.Channels)
	}
	if len(b.KeyMessages) != 1 {
		t.Errorf("unexpected key messages %v", b.KeyMessages)
	}
}

func TestReadListFile_Missing(t *testing.T) {
	if _, err := ReadListFile(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error for missing file")
	}
}
