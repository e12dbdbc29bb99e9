package main

import (
	"fmt"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/dusk-indust/autodocs/internal/orchestrator"
)

// consumeProgress drains events until the channel closes, logging them and
// advancing a progress bar once per finished file. The returned channel is
// closed when draining stops.
func (a *app) consumeProgress(events <-chan orchestrator.Event, total int) <-chan struct{} {
	done := make(chan struct{})

	var bar *progressbar.ProgressBar
	if !a.quiet && total > 0 {
		bar = progressbar.NewOptions(total,
			progressbar.OptionSetWriter(a.stderr),
			progressbar.OptionSetDescription("Documenting files"),
			progressbar.OptionSetWidth(40),
			progressbar.OptionShowCount(),
			progressbar.OptionShowIts(),
			progressbar.OptionSetItsString("files/s"),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionShowElapsedTimeOnFinish(),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(a.stderr)
			}),
		)
	}

	go func() {
		defer close(done)
		for ev := range events {
			a.logEvent(ev)
			if bar != nil && fileFinished(ev) {
				_ = bar.Add(1)
			}
		}
		if bar != nil {
			_ = bar.Finish()
		}
	}()
	return done
}

func (a *app) logEvent(ev orchestrator.Event) {
	attrs := []any{"stage", ev.Stage.String(), "status", string(ev.Status)}
	if ev.Path != "" {
		attrs = append(attrs, "path", ev.Path)
	}
	if ev.Message != "" {
		attrs = append(attrs, "message", ev.Message)
	}

	switch ev.Status {
	case orchestrator.StatusFailed, orchestrator.StatusSkipped:
		a.logger.Warn(ev.Stage.String()+" "+string(ev.Status), attrs...)
	default:
		a.logger.Debug(orchestrator.FormatProgress(ev), attrs...)
	}
}

// fileFinished reports whether ev is the last event a file emits.
func fileFinished(ev orchestrator.Event) bool {
	if ev.Path == "" {
		return false
	}
	switch {
	case ev.Status == orchestrator.StatusSkipped:
		return true
	case ev.Stage == orchestrator.StageRender && ev.Status == orchestrator.StatusComplete:
		return true
	}
	return false
}
