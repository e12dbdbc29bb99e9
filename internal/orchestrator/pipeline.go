package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dusk-indust/autodocs/internal/docs"
	"github.com/dusk-indust/autodocs/internal/extract"
	"github.com/dusk-indust/autodocs/internal/model"
	"github.com/dusk-indust/autodocs/internal/prose"
	"github.com/dusk-indust/autodocs/internal/render"
)

// Parser turns one source file into a normalized Module.
type Parser interface {
	Parse(ctx context.Context, path string, source []byte) (model.Module, error)
}

// Compile-time interface check.
var _ Parser = (*extract.Registry)(nil)

// Pipeline wires a Parser, a prose Service and a set of renderers into a
// batch run.
type Pipeline struct {
	cfg       Config
	parser    Parser
	prose     prose.Service
	renderers []render.Renderer
	onEvent   func(Event)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithProgress registers a callback receiving every Event. The callback
// is invoked from worker goroutines and must be safe for concurrent use;
// ProgressReporter.Emit is.
func WithProgress(fn func(Event)) Option {
	return func(p *Pipeline) {
		p.onEvent = fn
	}
}

// NewPipeline builds a Pipeline. A nil svc selects prose.Offline. An
// unknown format in cfg fails with *render.OutputFormatError.
func NewPipeline(cfg Config, parser Parser, svc prose.Service, opts ...Option) (*Pipeline, error) {
	if svc == nil {
		svc = prose.Offline{}
	}
	p := &Pipeline{
		cfg:    cfg,
		parser: parser,
		prose:  svc,
	}
	for _, f := range cfg.formats() {
		r, err := render.New(f, cfg.Render)
		if err != nil {
			return nil, err
		}
		p.renderers = append(p.renderers, r)
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// Formats returns the formats the pipeline renders, in order.
func (p *Pipeline) Formats() []render.Format {
	out := make([]render.Format, 0, len(p.renderers))
	for _, r := range p.renderers {
		out = append(out, r.Format())
	}
	return out
}

// Run processes every input and returns the run report. Per-file failures
// are recorded in the report; the only error returns are ErrNoInput and
// the context's error when ctx ends before the batch completes. Artifacts
// produced for the succeeding files are in the report either way.
func (p *Pipeline) Run(ctx context.Context, inputs []Input) (*Report, error) {
	if len(inputs) == 0 {
		return nil, ErrNoInput
	}

	report := &Report{Attempted: len(inputs)}

	renderers := p.usableRenderers(report)

	fanout := NewFanOut(p.cfg.workers(), p.onEvent)
	results := fanout.Run(ctx, inputs, func(ctx context.Context, in Input) FileResult {
		return p.processFile(ctx, in, renderers)
	})

	// Join point: everything below sees the whole batch in path order.
	sort.SliceStable(results, func(i, j int) bool { return results[i].Path < results[j].Path })

	for _, res := range results {
		if res.Skip != nil {
			report.Skipped = append(report.Skipped, *res.Skip)
			continue
		}
		report.Succeeded++
		report.Documents = append(report.Documents, *res.Doc)
		if res.ProseErr != nil {
			report.ProseUnavailable = append(report.ProseUnavailable, res.Path)
		}
		report.Outputs = append(report.Outputs, res.Outputs...)
		report.RenderFailures = append(report.RenderFailures, res.RenderFailures...)
	}

	if len(report.Documents) > 0 {
		p.renderAggregates(report, renderers)
	}

	return report, ctx.Err()
}

// usableRenderers drops renderers whose configuration is unusable for the
// whole run, recording one failure per dropped format.
func (p *Pipeline) usableRenderers(report *Report) []render.Renderer {
	out := make([]render.Renderer, 0, len(p.renderers))
	for _, r := range p.renderers {
		if v, ok := r.(interface{ Validate() error }); ok {
			if err := v.Validate(); err != nil {
				report.RenderFailures = append(report.RenderFailures, RenderFailure{Format: r.Format(), Err: err})
				p.emit(Event{Stage: StageRender, Status: StatusFailed, Message: fmt.Sprintf("%s disabled: %v", r.Format(), err)})
				continue
			}
		}
		out = append(out, r)
	}
	return out
}

func (p *Pipeline) processFile(ctx context.Context, in Input, renderers []render.Renderer) FileResult {
	res := FileResult{Path: in.Path}

	if err := ctx.Err(); err != nil {
		res.Skip = &Skip{Path: in.Path, Reason: err.Error(), Err: err}
		p.emit(Event{Stage: StageExtract, Path: in.Path, Status: StatusSkipped, Message: err.Error()})
		return res
	}

	p.emit(Event{Stage: StageExtract, Path: in.Path, Status: StatusWorking})
	mod, err := p.parser.Parse(ctx, in.Path, in.Content)
	if err != nil {
		res.Skip = &Skip{Path: in.Path, Reason: skipReason(err), Err: err}
		p.emit(Event{Stage: StageExtract, Path: in.Path, Status: StatusSkipped, Message: err.Error()})
		return res
	}
	p.emit(Event{Stage: StageExtract, Path: in.Path, Status: StatusComplete})

	p.emit(Event{Stage: StageProse, Path: in.Path, Status: StatusWorking})
	resp, proseErr := p.prose.Generate(ctx, mod)
	if proseErr != nil {
		res.ProseErr = proseErr
		p.emit(Event{Stage: StageProse, Path: in.Path, Status: StatusFailed, Message: proseErr.Error()})
	} else {
		p.emit(Event{Stage: StageProse, Path: in.Path, Status: StatusComplete})
	}

	doc := docs.Assemble(mod, resp, proseErr)
	res.Doc = &doc

	p.emit(Event{Stage: StageRender, Path: in.Path, Status: StatusWorking})
	for _, r := range renderers {
		art, err := r.RenderFile(doc)
		if err != nil {
			res.RenderFailures = append(res.RenderFailures, RenderFailure{Format: r.Format(), Path: in.Path, Err: err})
			p.emit(Event{Stage: StageRender, Path: in.Path, Status: StatusFailed, Message: err.Error()})
			continue
		}
		res.Outputs = append(res.Outputs, Output{Format: r.Format(), Artifact: art})
	}
	p.emit(Event{Stage: StageRender, Path: in.Path, Status: StatusComplete})

	return res
}

func (p *Pipeline) renderAggregates(report *Report, renderers []render.Renderer) {
	p.emit(Event{Stage: StageIndex, Status: StatusWorking})
	for _, r := range renderers {
		art, err := r.RenderIndex(report.Documents)
		if err != nil {
			report.RenderFailures = append(report.RenderFailures, RenderFailure{Format: r.Format(), Err: err})
		} else {
			report.Outputs = append(report.Outputs, Output{Format: r.Format(), Artifact: art})
		}

		c, ok := r.(render.Combiner)
		if !ok {
			continue
		}
		art, err = c.RenderCombined(report.Documents)
		if err != nil {
			report.RenderFailures = append(report.RenderFailures, RenderFailure{Format: r.Format(), Err: err})
			continue
		}
		report.Outputs = append(report.Outputs, Output{Format: r.Format(), Artifact: art})
	}
	p.emit(Event{Stage: StageIndex, Status: StatusComplete})
}

func (p *Pipeline) emit(ev Event) {
	if p.onEvent != nil {
		p.onEvent(ev)
	}
}

// skipReason turns an extraction error into the reason shown to users.
func skipReason(err error) string {
	var grammarErr *extract.GrammarError
	var unsupported *extract.UnsupportedGrammarError
	switch {
	case errors.As(err, &unsupported):
		return fmt.Sprintf("unsupported file extension %q", unsupported.Ext)
	case errors.As(err, &grammarErr):
		return grammarErr.Error()
	default:
		return err.Error()
	}
}
