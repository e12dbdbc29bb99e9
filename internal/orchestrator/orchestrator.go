// Package orchestrator runs the documentation pipeline over a batch of
// source files: extraction, prose, assembly and rendering per file on a
// bounded worker pool, then the index and combined artifacts once every
// file is done. One file's failure never stops its siblings.
package orchestrator

import (
	"errors"

	"github.com/dusk-indust/autodocs/internal/docs"
	"github.com/dusk-indust/autodocs/internal/render"
)

// ErrNoInput is returned when a run is started with no files.
var ErrNoInput = errors.New("no input files")

// Stage identifies a step of the per-file pipeline.
type Stage int

const (
	StageExtract Stage = iota
	StageProse
	StageRender
	StageIndex
)

func (s Stage) String() string {
	names := [...]string{
		"extract",
		"prose",
		"render",
		"index",
	}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// Input is one source file handed to the pipeline. Path is expected to be
// absolute; the pipeline does no path resolution.
type Input struct {
	Path    string
	Content []byte
}

// Event is emitted as files move through the pipeline.
type Event struct {
	Stage   Stage
	Path    string
	Status  Status
	Message string
}

// Status is the state of a file within a stage.
type Status string

const (
	StatusPending  Status = "pending"
	StatusWorking  Status = "working"
	StatusComplete Status = "complete"
	StatusFailed   Status = "failed"
	StatusSkipped  Status = "skipped"
)

// Skip records a file that produced no documentation.
type Skip struct {
	Path   string
	Reason string
	Err    error
}

// RenderFailure records a renderer that could not produce an artifact.
// Path is empty when the failure affected the whole format.
type RenderFailure struct {
	Format render.Format
	Path   string
	Err    error
}

// Output is an artifact together with the format that produced it.
type Output struct {
	Format   render.Format
	Artifact render.Artifact
}

// Report summarizes a run. Documents and Skipped are sorted by path.
type Report struct {
	Attempted        int
	Succeeded        int
	Skipped          []Skip
	ProseUnavailable []string
	RenderFailures   []RenderFailure
	Documents        []docs.Documentation
	Outputs          []Output
}
