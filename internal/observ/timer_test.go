package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

// fakeClock advances by step on every reading.
func fakeClock(step time.Duration) func() time.Time {
	var mu sync.Mutex
	cur := time.Unix(0, 0)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		cur = cur.Add(step)
		return cur
	}
}

func TestReportAggregatesByName(t *testing.T) {
	tm := NewTimer()
	tm.now = fakeClock(time.Millisecond)

	a := tm.Begin("analyse")
	tm.End(a, "a.yaml")
	c := tm.Begin("convert")
	tm.End(c, "a.yaml")
	b := tm.Begin("analyse")
	tm.End(b, "b.yaml")

	r := tm.Report()
	if len(r.Phases) != 2 {
		t.Fatalf("phases = %+v", r.Phases)
	}
	if r.Phases[0].Name != "analyse" || r.Phases[0].Runs != 2 || r.Phases[0].DurationMS != 2 {
		t.Fatalf("analyse = %+v", r.Phases[0])
	}
	if r.Phases[1].Name != "convert" || r.Phases[1].Runs != 1 {
		t.Fatalf("convert = %+v", r.Phases[1])
	}
	if r.TotalMS != 3 {
		t.Fatalf("total = %v", r.TotalMS)
	}
	if got := tm.Units(); strings.Join(got, ",") != "a.yaml,b.yaml" {
		t.Fatalf("units = %v", got)
	}
	if s := tm.Summary(); !strings.Contains(s, "analyse") || !strings.Contains(s, "total") {
		t.Fatalf("summary:\n%s", s)
	}
}

func TestEndIgnoresBadIndex(t *testing.T) {
	tm := NewTimer()
	tm.End(3, "x")
	tm.End(-1, "x")
	if r := tm.Report(); len(r.Phases) != 0 {
		t.Fatalf("unexpected phases %+v", r.Phases)
	}
}

func TestTimerConcurrentUse(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			idx := tm.Begin("convert")
			tm.End(idx, string(rune('a'+i)))
		}()
	}
	wg.Wait()
	r := tm.Report()
	if len(r.Phases) != 1 || r.Phases[0].Runs != 16 {
		t.Fatalf("report = %+v", r)
	}
}
