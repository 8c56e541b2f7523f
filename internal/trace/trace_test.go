package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestLevelShouldEmit(t *testing.T) {
	tests := []struct {
		level Level
		scope Scope
		want  bool
	}{
		{LevelOff, ScopeDriver, false},
		{LevelError, ScopeDriver, false},
		{LevelPhase, ScopeTemplate, true},
		{LevelPhase, ScopePass, false},
		{LevelDetail, ScopePass, true},
		{LevelDetail, ScopeNode, false},
		{LevelDebug, ScopeNode, true},
	}
	for _, tt := range tests {
		if got := tt.level.ShouldEmit(tt.scope); got != tt.want {
			t.Errorf("%s.ShouldEmit(%s) = %v", tt.level, tt.scope, got)
		}
	}
}

func TestStreamTracerSpans(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatText)

	span := Begin(tr, ScopePass, "analyse", 0)
	Point(tr, ScopeNode, "requeue", "Print", span.ID())
	span.WithExtra("nodes", "3").WithExtra("blocks", "1").End("ok")

	out := buf.String()
	for _, want := range []string{"→ analyse", "• requeue (Print)", "← analyse (ok) {blocks=1, nodes=3}"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in output:\n%s", want, out)
		}
	}
}

func TestFilteredSpanIsInert(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)
	span := Begin(tr, ScopeNode, "rewrite", 0).WithExtra("k", "v")
	if span.ID() != 0 || span.End("") != 0 {
		t.Fatal("filtered span should be inert")
	}
	if buf.Len() != 0 {
		t.Fatalf("filtered span wrote %q", buf.String())
	}
}

func TestNDJSONLine(t *testing.T) {
	ev := &Event{
		Time:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Seq:    7,
		Kind:   KindSpanEnd,
		Scope:  ScopeTemplate,
		SpanID: 3,
		Name:   "compile",
		Extra:  map[string]string{"unit": "views/page.twig"},
	}
	line := AppendEvent(nil, ev, FormatNDJSON)
	if !bytes.HasSuffix(line, []byte("\n")) {
		t.Fatalf("line not terminated: %q", line)
	}
	var got map[string]any
	if err := json.Unmarshal(line, &got); err != nil {
		t.Fatal(err)
	}
	want := map[string]any{
		"time":    "2026-01-02T03:04:05.000000Z",
		"seq":     float64(7),
		"kind":    "end",
		"scope":   "template",
		"span_id": float64(3),
		"name":    "compile",
		"extra":   map[string]any{"unit": "views/page.twig"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("ndjson mismatch (-want +got):\n%s", diff)
	}
}

func TestRingTracerKeepsLast(t *testing.T) {
	tr := NewRingTracer(2, LevelDebug)
	for _, name := range []string{"a", "b", "c"} {
		Point(tr, ScopeNode, name, "", 0)
	}
	var names []string
	for _, ev := range tr.Snapshot() {
		names = append(names, ev.Name)
	}
	if diff := cmp.Diff([]string{"b", "c"}, names); diff != "" {
		t.Fatalf("ring contents (-want +got):\n%s", diff)
	}

	var out bytes.Buffer
	if err := tr.Dump(&out, FormatText); err != nil {
		t.Fatal(err)
	}
	if strings.Count(out.String(), "\n") != 2 {
		t.Fatalf("dump:\n%s", out.String())
	}
}

func TestContextPropagation(t *testing.T) {
	if FromContext(context.Background()) != Nop {
		t.Fatalf("expected Nop without tracer")
	}
	tr := NewRingTracer(4, LevelPhase)
	ctx := WithTracer(context.Background(), tr)
	if FromContext(ctx) != Tracer(tr) {
		t.Fatalf("tracer not propagated")
	}
	ctx = WithSpanContext(ctx, SpanContext{SpanID: 9})
	if CurrentSpan(ctx).SpanID != 9 || CurrentSpan(context.Background()).SpanID != 0 {
		t.Fatalf("span context not propagated")
	}
}

func TestParseHelpers(t *testing.T) {
	if lvl, err := ParseLevel("DETAIL"); err != nil || lvl != LevelDetail {
		t.Fatalf("ParseLevel: %v %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error for bogus level")
	}
	if m, err := ParseMode("both"); err != nil || m != ModeBoth {
		t.Fatalf("ParseMode: %v %v", m, err)
	}
	if _, err := ParseMode("bogus"); err == nil {
		t.Fatalf("expected error for bogus mode")
	}
}

func TestNewPicksFormatByExtension(t *testing.T) {
	path := t.TempDir() + "/trace.ndjson"
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, OutputPath: path})
	if err != nil {
		t.Fatal(err)
	}
	multi, ok := tr.(*MultiTracer)
	if !ok || multi.Ring() == nil {
		t.Fatalf("ModeBoth gave %T", tr)
	}
	if st := multi.targets[0].(*StreamTracer); st.format != FormatNDJSON || st.closer == nil {
		t.Fatalf("stream format %v, owns file %v", st.format, st.closer != nil)
	}
	if err := tr.Close(); err != nil {
		t.Fatal(err)
	}
	if off, _ := New(Config{Level: LevelOff}); off != Nop {
		t.Fatalf("LevelOff gave %T", off)
	}
}

func TestMultiTracerRing(t *testing.T) {
	var buf bytes.Buffer
	ring := NewRingTracer(4, LevelDebug)
	multi := NewMultiTracer(LevelDebug, NewStreamTracer(&buf, LevelDebug, FormatText), ring)
	if multi.Ring() != ring {
		t.Fatalf("Ring() did not find the ring tracer")
	}
	Point(multi, ScopeNode, "x", "", 0)
	if len(ring.Snapshot()) != 1 || buf.Len() == 0 {
		t.Fatalf("fan-out missed a target")
	}
	if NewMultiTracer(LevelDebug, NewStreamTracer(&buf, LevelDebug, FormatText)).Ring() != nil {
		t.Errorf("stream-only fan-out reported a ring")
	}
}

func TestHeartbeat(t *testing.T) {
	ring := NewRingTracer(8, LevelPhase)
	h := StartHeartbeat(ring, time.Millisecond)
	deadline := time.Now().Add(2 * time.Second)
	for len(ring.Snapshot()) == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	h.Stop()
	h.Stop()
	events := ring.Snapshot()
	if len(events) == 0 || events[0].Kind != KindHeartbeat || events[0].Detail != "#1" {
		t.Fatalf("heartbeat events: %+v", events)
	}
	if StartHeartbeat(Nop, time.Millisecond) != nil {
		t.Fatal("heartbeat on disabled tracer")
	}
}
