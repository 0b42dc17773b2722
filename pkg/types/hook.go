package types

import "time"

// HookStatus is the outcome of a post-generation hook.
type HookStatus string

const (
	HookSucceeded   HookStatus = "succeeded"
	HookSkipped     HookStatus = "skipped"
	HookNonZeroExit HookStatus = "non_zero_exit"
	HookTimedOut    HookStatus = "timeout"
	HookFailed      HookStatus = "failed"
)

// HookReport records what a hook did. Hooks never fail a run; their problems
// surface here and as warning events.
type HookReport struct {
	Hook     string        `json:"hook"`
	Status   HookStatus    `json:"status"`
	Command  []string      `json:"command,omitempty"`
	ExitCode int           `json:"exit_code"`
	Stdout   string        `json:"stdout,omitempty"`
	Stderr   string        `json:"stderr,omitempty"`
	Duration time.Duration `json:"duration"`
	Message  string        `json:"message,omitempty"`
	Err      error         `json:"-"`
}

// IsWarning reports whether the report should be surfaced as a warning. A
// skipped hook is a warning only when it carries an error.
func (r HookReport) IsWarning() bool {
	switch r.Status {
	case HookNonZeroExit, HookTimedOut, HookFailed:
		return true
	}
	return r.Err != nil
}
