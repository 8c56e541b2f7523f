package driver

import "time"

// Stage is a step a document goes through.
type Stage string

const (
	StageLoad    Stage = "load"
	StageCompile Stage = "compile"
	StageWrite   Stage = "write"
)

// Status captures progress within a stage.
type Status string

const (
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusCached  Status = "cached"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for one document, or for the whole run when File
// is empty.
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use: every worker reports directly.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events to Ch; the receiver must keep up.
type ChannelSink struct {
	Ch chan<- Event
}

func (c ChannelSink) OnEvent(ev Event) {
	if c.Ch != nil {
		c.Ch <- ev
	}
}

// FuncSink adapts a function.
type FuncSink func(Event)

func (f FuncSink) OnEvent(ev Event) { f(ev) }

func emit(sink ProgressSink, ev Event) {
	if sink != nil {
		sink.OnEvent(ev)
	}
}
