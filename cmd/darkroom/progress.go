package main

import (
	"fmt"
	"io"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/term"

	"darkroom/internal/process"
)

// progressObserver prints one line per completed job when stdout is a
// terminal. Redirected output stays quiet; the stage summary still prints.
type progressObserver struct {
	w     io.Writer
	tty   bool
	count atomic.Int64
	mu    sync.Mutex
}

func newProgressObserver(w io.Writer) *progressObserver {
	tty := false
	if f, ok := w.(*os.File); ok {
		tty = term.IsTerminal(int(f.Fd()))
	}
	return &progressObserver{w: w, tty: tty}
}

func (p *progressObserver) JobCompleted(r process.JobResult) {
	n := p.count.Add(1)
	if !p.tty {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if r.Outcome == process.OutcomeFailed {
		fmt.Fprintf(p.w, "  [%d] %-7s %s: %v\n", n, r.Outcome, r.Job.OutputPath, r.Err)
		return
	}
	fmt.Fprintf(p.w, "  [%d] %-7s %s\n", n, r.Outcome, r.Job.OutputPath)
}
