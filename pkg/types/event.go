package types

// EventKind identifies what an Event is about.
type EventKind string

const (
	EventDirectory EventKind = "directory"
	EventText      EventKind = "text"
	EventBinary    EventKind = "binary"
	EventSkipped   EventKind = "skipped"
	EventHook      EventKind = "hook"
	EventWarning   EventKind = "warning"
)

// Outcome is what happened to the entry an Event reports on.
type Outcome string

const (
	OutcomeCreated  Outcome = "created"
	OutcomeWritten  Outcome = "written"
	OutcomeCopied   Outcome = "copied"
	OutcomeFallback Outcome = "fallback"
	OutcomeExcluded Outcome = "excluded"
	OutcomeFailed   Outcome = "failed"
	OutcomeWarning  Outcome = "warning"
	OutcomeInfo     Outcome = "info"
)

// Event is one entry of the ordered progress/warning log of a run.
type Event struct {
	Seq     int       `json:"seq"`
	Kind    EventKind `json:"kind"`
	Outcome Outcome   `json:"outcome"`
	Source  string    `json:"source,omitempty"`
	Target  string    `json:"target,omitempty"`
	Message string    `json:"message,omitempty"`
	Code    string    `json:"code,omitempty"`
}

// IsWarning reports whether the event records a recoverable problem.
func (e Event) IsWarning() bool {
	return e.Outcome == OutcomeWarning || e.Outcome == OutcomeFallback
}

// EventHandler receives events as they happen.
type EventHandler func(Event)
