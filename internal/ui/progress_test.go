package ui

import (
	"math"
	"strings"
	"testing"

	"weave/internal/driver"
)

func TestApplyEventTracksFiles(t *testing.T) {
	events := make(chan driver.Event)
	m := NewProgressModel("compile", []string{"a.yaml", "b.yaml"}, events).(*progressModel)

	m.applyEvent(driver.Event{File: "a.yaml", Stage: driver.StageLoad, Status: driver.StatusDone})
	m.applyEvent(driver.Event{File: "a.yaml", Stage: driver.StageCompile, Status: driver.StatusCached})
	m.applyEvent(driver.Event{File: "b.yaml", Stage: driver.StageCompile, Status: driver.StatusWorking})
	m.applyEvent(driver.Event{File: "unknown.yaml", Stage: driver.StageCompile, Status: driver.StatusDone})

	if got := m.items[0].status; got != "cached" {
		t.Errorf("a.yaml status = %q", got)
	}
	if got := m.items[1].status; got != "compiling" {
		t.Errorf("b.yaml status = %q", got)
	}
	if got := m.percent(); math.Abs(got-0.7) > 1e-9 {
		t.Errorf("percent = %v, want 0.7", got)
	}

	// прогресс не откатывается назад
	m.applyEvent(driver.Event{File: "a.yaml", Stage: driver.StageLoad, Status: driver.StatusDone})
	if m.items[0].fraction != 1.0 {
		t.Errorf("fraction went back to %v", m.items[0].fraction)
	}
}

func TestRunWideEventsSetStageLabel(t *testing.T) {
	m := NewProgressModel("compile", []string{"a.yaml"}, nil).(*progressModel)
	m.applyEvent(driver.Event{Stage: driver.StageWrite, Status: driver.StatusWorking})
	if m.stageLabel != "writing" {
		t.Fatalf("stage label = %q", m.stageLabel)
	}
	if !strings.Contains(m.View(), "compile (writing)") {
		t.Errorf("header lacks stage label:\n%s", m.View())
	}
}

func TestDoneMessageQuits(t *testing.T) {
	m := NewProgressModel("compile", []string{"a.yaml"}, nil).(*progressModel)
	_, cmd := m.Update(doneMsg{})
	if !m.done || cmd == nil {
		t.Fatalf("done message did not finish the model")
	}
	if !strings.Contains(m.View(), "done: compile") {
		t.Errorf("view after done:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	cases := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"abcdefghij", 8, "abcde..."},
		{"abcd", 4, "abcd"},
		{"日本語テキスト", 9, "日本語..."},
		{"abcdef", 2, "ab"},
		{"abc", 0, "abc"},
	}
	for _, tc := range cases {
		if got := truncate(tc.in, tc.width); got != tc.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tc.in, tc.width, got, tc.want)
		}
	}
}
