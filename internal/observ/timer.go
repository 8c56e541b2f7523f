package observ

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"
)

// Phase records one timed pass over one unit.
type Phase struct {
	Name  string
	Unit  string
	Start time.Time
	Dur   time.Duration
}

// Timer collects phase durations. It is safe for concurrent use, so one
// timer can be shared by every unit of a parallel compile.
type Timer struct {
	mu     sync.Mutex
	phases []Phase
	now    func() time.Time
}

// NewTimer creates a new empty Timer.
func NewTimer() *Timer {
	return &Timer{phases: make([]Phase, 0, 8), now: time.Now}
}

// Begin starts a new phase and returns its index.
func (t *Timer) Begin(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.phases = append(t.phases, Phase{Name: name, Start: t.now()})
	return len(t.phases) - 1
}

// End finishes a phase by its index and records the unit it ran for.
func (t *Timer) End(idx int, unit string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if idx < 0 || idx >= len(t.phases) {
		return
	}
	p := &t.phases[idx]
	p.Dur = t.now().Sub(p.Start)
	p.Unit = unit
}

// PhaseReport is one phase name summed over all units.
type PhaseReport struct {
	Name       string  `json:"name"`
	Runs       int     `json:"runs"`
	DurationMS float64 `json:"duration_ms"`
	// Slowest names the unit with the longest single run.
	Slowest   string  `json:"slowest,omitempty"`
	SlowestMS float64 `json:"slowest_ms,omitempty"`
}

// Report is the aggregated view of a timer.
type Report struct {
	TotalMS float64       `json:"total_ms"`
	Phases  []PhaseReport `json:"phases"`
}

// Report sums phases by name, in order of first appearance.
func (t *Timer) Report() Report {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.phases) == 0 {
		return Report{}
	}
	var (
		report  Report
		total   time.Duration
		index   = make(map[string]int)
		slowest = make(map[string]time.Duration)
	)
	for _, ph := range t.phases {
		total += ph.Dur
		i, ok := index[ph.Name]
		if !ok {
			i = len(report.Phases)
			index[ph.Name] = i
			report.Phases = append(report.Phases, PhaseReport{Name: ph.Name})
		}
		pr := &report.Phases[i]
		pr.Runs++
		pr.DurationMS += durationToMillis(ph.Dur)
		if ph.Dur > slowest[ph.Name] || pr.Slowest == "" {
			slowest[ph.Name] = ph.Dur
			pr.Slowest = ph.Unit
			pr.SlowestMS = durationToMillis(ph.Dur)
		}
	}
	report.TotalMS = durationToMillis(total)
	return report
}

// Units lists the distinct units seen, sorted.
func (t *Timer) Units() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	seen := make(map[string]bool)
	var out []string
	for _, ph := range t.phases {
		if ph.Unit != "" && !seen[ph.Unit] {
			seen[ph.Unit] = true
			out = append(out, ph.Unit)
		}
	}
	sort.Strings(out)
	return out
}

// Summary returns a human-readable table of the report.
func (t *Timer) Summary() string {
	report := t.Report()
	var sb strings.Builder
	sb.WriteString("timings:\n")
	for _, p := range report.Phases {
		fmt.Fprintf(&sb, "  %-12s %4d× %9.2f ms", p.Name, p.Runs, p.DurationMS)
		if p.Slowest != "" && p.Runs > 1 {
			fmt.Fprintf(&sb, "  // slowest %s (%.2f ms)", p.Slowest, p.SlowestMS)
		}
		sb.WriteString("\n")
	}
	fmt.Fprintf(&sb, "  %-12s       %9.2f ms\n", "total", report.TotalMS)
	return sb.String()
}

func durationToMillis(d time.Duration) float64 {
	return float64(d) / float64(time.Millisecond)
}
