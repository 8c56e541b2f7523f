package trace

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// Tracer receives events. Implementations must be safe for concurrent use.
type Tracer interface {
	Emit(ev *Event)
	Flush() error
	Close() error
	Level() Level
	Enabled() bool
}

// Level controls which scopes reach a tracer.
type Level uint8

const (
	LevelOff    Level = iota
	LevelError        // ring only, dumped on crash
	LevelPhase        // driver and per-template spans
	LevelDetail       // plus analyse/convert passes
	LevelDebug        // plus node rewrites
)

var levelNames = [...]string{"off", "error", "phase", "detail", "debug"}

func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

func ParseLevel(s string) (Level, error) {
	if i := slices.Index(levelNames[:], strings.ToLower(s)); i >= 0 {
		return Level(i), nil
	}
	return LevelOff, fmt.Errorf("invalid trace level %q (want %s)", s, strings.Join(levelNames[:], "|"))
}

// ShouldEmit reports whether events of scope pass at level l.
func (l Level) ShouldEmit(s Scope) bool {
	switch l {
	case LevelPhase:
		return s <= ScopeTemplate
	case LevelDetail:
		return s <= ScopePass
	case LevelDebug:
		return true
	}
	return false
}

// Scope is the granularity of an event; smaller is coarser.
type Scope uint8

const (
	ScopeDriver Scope = iota + 1
	ScopeTemplate
	ScopePass
	ScopeNode
)

var scopeNames = [...]string{"unknown", "driver", "template", "pass", "node"}

func (s Scope) String() string {
	if int(s) < len(scopeNames) {
		return scopeNames[s]
	}
	return scopeNames[0]
}

type Kind uint8

const (
	KindSpanBegin Kind = iota + 1
	KindSpanEnd
	KindPoint
	KindHeartbeat
)

var kindNames = [...]string{"unknown", "begin", "end", "point", "heartbeat"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return kindNames[0]
}

// Event is one trace record. Seq is assigned by the sink that stores it.
type Event struct {
	Time     time.Time
	Seq      uint64
	Kind     Kind
	Scope    Scope
	SpanID   uint64
	ParentID uint64
	Name     string // "compile_files", "analyse", "requeue", ...
	Detail   string
	Extra    map[string]string
}

// keep: heartbeats bypass the level filter.
func keep(l Level, ev *Event) bool {
	return ev != nil && (ev.Kind == KindHeartbeat || l.ShouldEmit(ev.Scope))
}
