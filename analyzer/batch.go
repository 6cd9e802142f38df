package analyzer

import (
	"context"
	"errors"
	"log"
	"sync"
)

// BatchCallbacks receive controller events. Every field is optional. The
// controller invokes callbacks sequentially from a single collector
// goroutine, never concurrently; UI layers marshal them onto the main
// thread themselves.
type BatchCallbacks struct {
	// OnCaseAdded fires once per completed task with the constructed Case,
	// in completion order.
	OnCaseAdded func(c Case)
	// OnProgress fires after each completion with the running counter.
	OnProgress func(done, total int)
	// OnTaskError fires for failed tasks before their fallback Case is
	// added. Non-fatal: the batch keeps going.
	OnTaskError func(imagePath string, err error)
	// OnSettled fires when every task of the submitted group has delivered
	// its completion signal.
	OnSettled func()
}

// taskResult is the one value a worker delivers for its image.
type taskResult struct {
	path   string
	result PredictionResult
	err    error
}

// BatchController dispatches one analysis task per submitted image, collects
// completions in arrival order and owns the canonical ordered Case list.
// The GUI cards and the report exporter both read from that list.
type BatchController struct {
	engine    Predictor
	topK      int
	callbacks BatchCallbacks
	logger    *log.Logger

	mu      sync.Mutex
	cases   []Case
	done    int
	target  int
	results chan taskResult // non-nil while a group is in flight

	pending sync.WaitGroup
}

// NewBatchController constructs a controller around the given engine.
func NewBatchController(engine Predictor, topK int, cb BatchCallbacks, logger *log.Logger) (*BatchController, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	if topK < 1 {
		topK = 3
	}
	return &BatchController{
		engine:    engine,
		topK:      topK,
		callbacks: cb,
		logger:    logger,
	}, nil
}

// Submit dispatches one task per path. Starting a fresh group resets the
// progress counter to 0 with target len(paths); submitting while a group is
// still in flight extends the target instead, so every dispatched task is
// counted exactly once. An empty list is a no-op.
func (b *BatchController) Submit(paths []string) {
	if len(paths) == 0 {
		return
	}
	b.mu.Lock()
	if b.results == nil {
		b.done = 0
		b.target = len(paths)
		b.results = make(chan taskResult, len(paths))
		go b.collect(b.results)
	} else {
		b.target += len(paths)
	}
	results := b.results
	b.mu.Unlock()

	logf(b.logger, "submitting %d images for analysis", len(paths))
	for _, path := range paths {
		b.pending.Add(1)
		go b.runTask(results, path)
	}
}

// runTask wraps one predict call. On failure the error travels alongside the
// synthetic fallback result, so the collector still receives exactly one
// completion signal for this task.
func (b *BatchController) runTask(results chan<- taskResult, path string) {
	res, err := b.engine.Predict(context.Background(), path, b.topK)
	if err != nil {
		res = ErrorResult()
	}
	results <- taskResult{path: path, result: res, err: err}
}

// collect serializes completions for one group: error signal first, then the
// Case append, then progress; the group's resources are reclaimed once the
// counter reaches the target.
func (b *BatchController) collect(results <-chan taskResult) {
	for r := range results {
		if r.err != nil {
			logf(b.logger, "analysis failed: %v", r.err)
			if b.callbacks.OnTaskError != nil {
				b.callbacks.OnTaskError(r.path, r.err)
			}
		}
		c := NewCase(r.path, r.result)

		b.mu.Lock()
		b.cases = append(b.cases, c)
		b.done++
		done, target := b.done, b.target
		settled := done >= target
		if settled {
			b.results = nil
		}
		b.mu.Unlock()

		if b.callbacks.OnCaseAdded != nil {
			b.callbacks.OnCaseAdded(c)
		}
		if b.callbacks.OnProgress != nil {
			b.callbacks.OnProgress(done, target)
		}
		if settled {
			logf(b.logger, "batch settled: %d/%d analyzed", done, target)
			if b.callbacks.OnSettled != nil {
				b.callbacks.OnSettled()
			}
			b.pending.Done()
			return
		}
		b.pending.Done()
	}
}

// Cases returns a snapshot of the canonical Case list in completion order.
func (b *BatchController) Cases() []Case {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Case, len(b.cases))
	copy(out, b.cases)
	return out
}

// Clear empties the Batch. Tasks still in flight append to the now-empty
// list when they complete.
func (b *BatchController) Clear() {
	b.mu.Lock()
	n := len(b.cases)
	b.cases = nil
	b.mu.Unlock()
	logf(b.logger, "cleared %d cases", n)
}

// Wait blocks until every dispatched task has been collected. Used before
// shutdown and by the CLI between submit and output.
func (b *BatchController) Wait() {
	b.pending.Wait()
}

// logf writes through the optional logger.
func logf(logger *log.Logger, format string, args ...any) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
