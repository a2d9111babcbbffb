package progress

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

const barWidth = 20

// Tracker draws a single-line progress bar for CLI runs. It is safe for
// concurrent use; probes call Increment from worker goroutines.
type Tracker struct {
	mu      sync.Mutex
	out     io.Writer
	enabled bool

	phase   string
	done    int
	total   int
	started time.Time
	drawn   int // width of the line currently on screen
}

// New creates a tracker writing to w. A disabled tracker only prints Info
// messages.
func New(w io.Writer, enabled bool) *Tracker {
	return &Tracker{out: w, enabled: enabled, started: time.Now()}
}

// update runs fn under the lock and redraws the bar. It does nothing for
// a disabled tracker.
func (p *Tracker) update(fn func()) {
	if !p.enabled {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	fn()
	p.redraw()
}

func (p *Tracker) StartPhase(phase string, total int) {
	p.update(func() {
		p.phase, p.done, p.total = phase, 0, total
		p.started = time.Now()
	})
}

// Increment counts one finished candidate. It never passes the total.
func (p *Tracker) Increment() {
	p.update(func() {
		if p.total == 0 || p.done < p.total {
			p.done++
		}
	})
}

// Complete fills the bar and moves to the next line.
func (p *Tracker) Complete() {
	p.update(func() {
		if p.phase != "" {
			p.done = p.total
		}
	})
	if !p.enabled {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.phase != "" {
		fmt.Fprintln(p.out)
		p.phase, p.drawn = "", 0
	}
}

// Info prints a message above the bar, even when the bar is disabled.
func (p *Tracker) Info(format string, args ...interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.erase()
	fmt.Fprintln(p.out, color.CyanString(format, args...))
	if p.enabled {
		p.redraw()
	}
}

func (p *Tracker) erase() {
	if p.drawn > 0 {
		fmt.Fprintf(p.out, "\r%s\r", strings.Repeat(" ", p.drawn))
		p.drawn = 0
	}
}

func (p *Tracker) redraw() {
	p.erase()
	if p.phase == "" {
		return
	}
	line := p.render(time.Since(p.started))
	p.drawn = len(line)
	fmt.Fprint(p.out, "\r"+line)
}

func (p *Tracker) render(elapsed time.Duration) string {
	ratio := 0.0
	if p.total > 0 {
		ratio = float64(p.done) / float64(p.total)
	}
	filled := int(ratio * barWidth)
	bar := strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled)

	return fmt.Sprintf("%-24s [%s] %3.0f%% (%d/%d) [%s]",
		p.phase, bar, ratio*100, p.done, p.total, formatDuration(elapsed))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
