package orchestrator

import "fmt"

// ProgressReporter emits progress events through a buffered channel.
type ProgressReporter struct {
	ch chan Event
}

// NewProgressReporter creates a ProgressReporter whose channel holds up to
// size events. A size below 1 selects 64.
func NewProgressReporter(size int) *ProgressReporter {
	if size < 1 {
		size = 64
	}
	return &ProgressReporter{
		ch: make(chan Event, size),
	}
}

// Emit sends an event without blocking. If the channel is full the event
// is dropped.
func (pr *ProgressReporter) Emit(event Event) {
	select {
	case pr.ch <- event:
	default:
	}
}

// Subscribe returns a read-only channel for consuming events.
func (pr *ProgressReporter) Subscribe() <-chan Event {
	return pr.ch
}

// Close closes the event channel.
func (pr *ProgressReporter) Close() {
	close(pr.ch)
}

// FormatProgress formats an Event as a human-readable status line.
func FormatProgress(event Event) string {
	switch event.Status {
	case StatusPending:
		return fmt.Sprintf("  ○ %s (pending)", event.Path)
	case StatusWorking:
		return fmt.Sprintf("  ● %s: %s...", event.Path, event.Stage)
	case StatusComplete:
		return fmt.Sprintf("  ✓ %s: %s complete", event.Path, event.Stage)
	case StatusFailed:
		return fmt.Sprintf("  ✗ %s: %s failed: %s", event.Path, event.Stage, event.Message)
	case StatusSkipped:
		return fmt.Sprintf("  - %s skipped: %s", event.Path, event.Message)
	default:
		return fmt.Sprintf("  ? %s (unknown status)", event.Path)
	}
}
