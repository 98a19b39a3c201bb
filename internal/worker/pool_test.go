package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// stepResult implements Result
type stepResult struct {
	step int
	err  error
}

func (r *stepResult) GetError() error {
	return r.err
}

// stepJob stands in for one critique or verify step of an iteration
type stepJob struct {
	step     int
	delay    time.Duration
	fail     bool
	started  chan<- struct{}
	executed *int32
	active   *int32
	peak     *int32
}

func (j *stepJob) Execute(ctx context.Context) Result {
	if j.executed != nil {
		atomic.AddInt32(j.executed, 1)
	}
	if j.active != nil {
		n := atomic.AddInt32(j.active, 1)
		defer atomic.AddInt32(j.active, -1)
		for {
			p := atomic.LoadInt32(j.peak)
			if n <= p || atomic.CompareAndSwapInt32(j.peak, p, n) {
				break
			}
		}
	}
	if j.started != nil {
		close(j.started)
	}
	if j.delay > 0 {
		select {
		case <-time.After(j.delay):
		case <-ctx.Done():
			return &stepResult{step: j.step, err: ctx.Err()}
		}
	}
	if j.fail {
		return &stepResult{step: j.step, err: errors.New("step failed")}
	}
	return &stepResult{step: j.step}
}

func TestNewPool_WorkerFloor(t *testing.T) {
	for _, n := range []int{-1, 0, 1} {
		if got := NewPool(context.Background(), n).workers; got != 1 {
			t.Errorf("workers=%d: expected floor of 1, got %d", n, got)
		}
	}
	if got := NewPool(context.Background(), 4).workers; got != 4 {
		t.Errorf("expected 4 workers, got %d", got)
	}
}

func TestPool_RunsEverySubmittedJob(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()

	var executed int32
	for i := 0; i < 10; i++ {
		if !pool.Submit(&stepJob{step: i, executed: &executed}) {
			t.Fatalf("Submit of step %d rejected", i)
		}
	}

	results := pool.Wait()
	if len(results) != 10 {
		t.Errorf("expected 10 results, got %d", len(results))
	}
	if n := atomic.LoadInt32(&executed); n != 10 {
		t.Errorf("expected 10 executions, got %d", n)
	}
}

func TestPool_BoundedConcurrency(t *testing.T) {
	const workers = 3
	pool := NewPool(context.Background(), workers)
	pool.Start()

	var active, peak int32
	for i := 0; i < 24; i++ {
		pool.Submit(&stepJob{step: i, delay: 5 * time.Millisecond, active: &active, peak: &peak})
	}
	pool.Wait()

	if p := atomic.LoadInt32(&peak); p > workers {
		t.Errorf("expected at most %d concurrent steps, saw %d", workers, p)
	}
}

func TestPool_ErrorsAreResults(t *testing.T) {
	results := Run(context.Background(), 2, []Job{
		&stepJob{step: 0, fail: true},
		&stepJob{step: 1},
	})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	failed := 0
	for _, r := range results {
		if r.GetError() != nil {
			failed++
		}
	}
	if failed != 1 {
		t.Errorf("expected 1 failed result, got %d", failed)
	}
}

func TestPool_SubmitAfterShutdown(t *testing.T) {
	pool := NewPool(context.Background(), 2)
	pool.Start()
	pool.Shutdown()

	done := make(chan bool)
	go func() { done <- pool.Submit(&stepJob{}) }()

	select {
	case ok := <-done:
		if ok {
			t.Error("expected Submit after shutdown to be rejected")
		}
	case <-time.After(time.Second):
		t.Fatal("Submit after shutdown blocked")
	}
}

func TestPool_ShutdownCancelsRunningJob(t *testing.T) {
	pool := NewPool(context.Background(), 1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(&stepJob{delay: time.Minute, started: started})
	<-started

	pool.Shutdown()

	done := make(chan []Result)
	go func() { done <- pool.Wait() }()
	select {
	case results := <-done:
		if len(results) != 1 {
			t.Fatalf("expected 1 result, got %d", len(results))
		}
		if err := results[0].GetError(); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Wait after Shutdown blocked")
	}
}

func TestPool_MoreJobsThanBuffers(t *testing.T) {
	jobs := make([]Job, 100)
	for i := range jobs {
		jobs[i] = &stepJob{step: i}
	}
	if got := len(Run(context.Background(), 1, jobs)); got != 100 {
		t.Errorf("expected 100 results, got %d", got)
	}
}

func TestPool_ParentCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	pool := NewPool(ctx, 1)
	pool.Start()

	started := make(chan struct{})
	pool.Submit(&stepJob{delay: time.Minute, started: started})
	<-started
	cancel()

	if pool.Submit(&stepJob{}) {
		t.Error("expected Submit after parent cancel to be rejected")
	}
	pool.Wait()
}

func TestRun_CancelWhileQueueing(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	started := make(chan struct{})
	jobs := []Job{&stepJob{step: 0, delay: time.Minute, started: started}}
	for i := 1; i < 10; i++ {
		jobs = append(jobs, &stepJob{step: i})
	}
	go func() {
		<-started
		cancel()
	}()

	done := make(chan []Result)
	go func() { done <- Run(ctx, 1, jobs) }()

	select {
	case results := <-done:
		if len(results) == 0 || len(results) >= len(jobs) {
			t.Fatalf("expected a partial result set, got %d of %d", len(results), len(jobs))
		}
		cancelled := false
		for _, r := range results {
			if r.(*stepResult).step == 0 {
				cancelled = errors.Is(r.GetError(), context.Canceled)
			}
		}
		if !cancelled {
			t.Error("expected the running step to be cancelled")
		}
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestResultCollector_ReturnsCopy(t *testing.T) {
	c := NewResultCollector()
	c.Add(&stepResult{step: 1})
	c.Add(&stepResult{step: 2, err: errors.New("boom")})

	got := c.Results()
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	got[0] = nil
	if c.Results()[0] == nil {
		t.Error("Results should return a copy")
	}
}
