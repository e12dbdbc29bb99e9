package orchestrator

import (
	"runtime"

	"github.com/dusk-indust/autodocs/internal/render"
)

// Config holds the settings for a pipeline run.
type Config struct {
	// Workers bounds concurrent per-file work. Values below 1 select
	// runtime.GOMAXPROCS(0).
	Workers int

	// Formats lists the renderers to run. Empty selects every format.
	Formats []render.Format

	// Render is passed to every renderer.
	Render render.Options
}

func (c Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.GOMAXPROCS(0)
}

func (c Config) formats() []render.Format {
	if len(c.Formats) == 0 {
		return render.AllFormats
	}
	return c.Formats
}
