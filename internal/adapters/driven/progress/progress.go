// Package progress provides ProgressReporter implementations for the CLI:
// an interactive bar, a line-per-batch text reporter, and combinators.
package progress

import (
	"fmt"
	"io"
	"sync"

	"github.com/cheggaaa/pb/v3"

	"github.com/custodia-labs/refsync/internal/core/ports/driven"
)

// Ensure reporters implement the interface.
var (
	_ driven.ProgressReporter = (*Bar)(nil)
	_ driven.ProgressReporter = (*Text)(nil)
	_ driven.ProgressReporter = Multi(nil)
	_ driven.ProgressReporter = Nop{}
)

// barTemplate renders "label 500 / 1200 [====>   ] 41.67% 2s".
const barTemplate = `{{string . "label"}} {{counters . }} {{bar . }} {{percent . }} {{etime . }}`

// Bar renders a terminal progress bar.
type Bar struct {
	mu    sync.Mutex
	w     io.Writer
	label string
	bar   *pb.ProgressBar
}

// NewBar creates a bar writing to w.
func NewBar(w io.Writer, label string) *Bar {
	return &Bar{w: w, label: label}
}

// Total starts the bar with n as its denominator.
func (b *Bar) Total(n int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.bar != nil {
		b.bar.SetTotal(int64(n))
		return
	}
	bar := pb.New(n)
	bar.SetWriter(b.w)
	bar.SetTemplateString(barTemplate)
	bar.SetWidth(80)
	bar.Set("label", b.label)
	b.bar = bar.Start()
}

// Advance moves the bar forward.
func (b *Bar) Advance(by int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil {
		b.bar.Add(by)
	}
}

// Current returns the processed count shown by the bar.
func (b *Bar) Current() int64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar == nil {
		return 0
	}
	return b.bar.Current()
}

// Finish stops the bar. It is safe to call more than once.
func (b *Bar) Finish() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.bar != nil && b.bar.IsStarted() {
		b.bar.Finish()
	}
}

// Text prints one "processed / total" line per batch, for logs and
// non-interactive output.
type Text struct {
	mu        sync.Mutex
	w         io.Writer
	label     string
	processed int
	total     int
}

// NewText creates a text reporter writing to w.
func NewText(w io.Writer, label string) *Text {
	return &Text{w: w, label: label}
}

// Total sets the denominator.
func (t *Text) Total(n int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.total = n
	t.processed = 0
}

// Advance prints the cumulative progress.
func (t *Text) Advance(by int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.processed += by
	fmt.Fprintf(t.w, "%s %d / %d\n", t.label, t.processed, t.total)
}

// Finish does nothing; every batch already printed its line.
func (t *Text) Finish() {}

// Multi fans calls out to several reporters in order.
type Multi []driven.ProgressReporter

// Total forwards to every reporter.
func (m Multi) Total(n int) {
	for _, r := range m {
		r.Total(n)
	}
}

// Advance forwards to every reporter.
func (m Multi) Advance(by int) {
	for _, r := range m {
		r.Advance(by)
	}
}

// Finish forwards to every reporter.
func (m Multi) Finish() {
	for _, r := range m {
		r.Finish()
	}
}

// Nop discards progress.
type Nop struct{}

func (Nop) Total(int)   {}
func (Nop) Advance(int) {}
func (Nop) Finish()     {}
