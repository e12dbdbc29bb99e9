package orchestrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/dusk-indust/autodocs/internal/docs"
)

// FileResult is the outcome of running one Input through the per-file
// stages. Exactly one of Doc and Skip is set.
type FileResult struct {
	Path           string
	Doc            *docs.Documentation
	Skip           *Skip
	ProseErr       error
	Outputs        []Output
	RenderFailures []RenderFailure
}

// FanOut runs one task per Input on a bounded pool of goroutines. A task
// reports its failure in its FileResult instead of returning an error, so
// one failing file never cancels its siblings.
type FanOut struct {
	limit      int
	onProgress func(Event)
}

// NewFanOut creates a FanOut running at most limit tasks at once.
// onProgress is called from each goroutine; it may be nil.
func NewFanOut(limit int, onProgress func(Event)) *FanOut {
	if limit < 1 {
		limit = 1
	}
	return &FanOut{
		limit:      limit,
		onProgress: onProgress,
	}
}

// Run calls task for every input and returns the results in input order.
// It returns once every task has finished.
func (f *FanOut) Run(ctx context.Context, inputs []Input, task func(context.Context, Input) FileResult) []FileResult {
	results := make([]FileResult, len(inputs))

	var g errgroup.Group
	g.SetLimit(f.limit)

	for i, in := range inputs {
		f.emit(Event{Stage: StageExtract, Path: in.Path, Status: StatusPending})

		g.Go(func() error {
			results[i] = task(ctx, in)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// emit sends a progress event if a callback is registered.
func (f *FanOut) emit(ev Event) {
	if f.onProgress != nil {
		f.onProgress(ev)
	}
}
