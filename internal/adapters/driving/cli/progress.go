package cli

import (
	"io"
	"os"

	"golang.org/x/term"

	"github.com/custodia-labs/refsync/internal/adapters/driven/progress"
	"github.com/custodia-labs/refsync/internal/core/ports/driven"
	"github.com/custodia-labs/refsync/internal/metrics"
)

// isTerminal reports whether w is an interactive terminal.
var isTerminal = func(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newProgress picks a bar for terminals and per-batch lines otherwise.
// Run metrics are always fed.
func newProgress(w io.Writer, label string) driven.ProgressReporter {
	var display driven.ProgressReporter
	if isTerminal(w) {
		display = progress.NewBar(w, label)
	} else {
		display = progress.NewText(w, label)
	}
	return progress.Multi{display, metrics.Progress{}}
}
