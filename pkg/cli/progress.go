package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// ProgressReporter reports progress for long-running operations such as
// audit exports.
type ProgressReporter interface {
	Start(total int64)
	Update(current int64)
	Finish()
	Error(err error)
}

// DiscardProgress is a ProgressReporter that reports nothing.
var DiscardProgress ProgressReporter = discardProgress{}

type discardProgress struct{}

func (discardProgress) Start(int64)  {}
func (discardProgress) Update(int64) {}
func (discardProgress) Finish()      {}
func (discardProgress) Error(error)  {}

const (
	barWidth = 30

	// minRedraw bounds how often Update repaints the bar.
	minRedraw = 100 * time.Millisecond
)

// barProgress redraws a single carriage-returned line on its writer.
type barProgress struct {
	mu       sync.Mutex
	w        io.Writer
	unit     string
	total    int64
	current  int64
	started  time.Time
	lastDraw time.Time
}

// NewProgressReporter returns a bar reporter counting unit items on w.
// A nil w writes to os.Stderr so progress never mixes with command output.
func NewProgressReporter(w io.Writer, unit string) ProgressReporter {
	if w == nil {
		w = os.Stderr
	}
	if unit == "" {
		unit = "items"
	}
	return &barProgress{w: w, unit: unit}
}

func (p *barProgress) Start(total int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.total, p.current = total, 0
	p.started = time.Now()
	p.draw()
}

func (p *barProgress) Update(current int64) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if current > p.current {
		p.current = current
	}
	if time.Since(p.lastDraw) >= minRedraw {
		p.draw()
	}
}

func (p *barProgress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.total > 0 {
		p.current = p.total
		p.draw()
		fmt.Fprintln(p.w)
	}
}

func (p *barProgress) Error(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	fmt.Fprintf(p.w, "\n✗ Error: %v\n", err)
}

// draw must be called with mu held.
func (p *barProgress) draw() {
	p.lastDraw = time.Now()
	if p.total <= 0 {
		return
	}

	done := min(p.current, p.total)
	filled := int(done * barWidth / p.total)
	var rate float64
	if secs := time.Since(p.started).Seconds(); secs > 0 {
		rate = float64(done) / secs
	}

	fmt.Fprintf(p.w, "\r[%s%s] %3d%% %d/%d %s (%.0f/s)",
		strings.Repeat("█", filled), strings.Repeat("░", barWidth-filled),
		done*100/p.total, done, p.total, p.unit, rate)
}
