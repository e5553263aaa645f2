// Package job tracks server-side long-running operations. A job is started
// by one request and then observed through a fixed-interval polling loop
// until it reaches a terminal state.
package job

import "strings"

// State is the lifecycle phase reported by the backend.
type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateError     State = "error"
)

// Status is one observation of a job. Completed/Total carry progress counters
// when the backend reports them (emails sent vs. total recipients).
type Status struct {
	State     State
	Detail    string // error detail, set only for StateError
	Completed int
	Total     int

	// PollFailures counts consecutive malformed or failed poll ticks that
	// were absorbed before this status was observed. Informational only;
	// a bad tick never terminates the loop.
	PollFailures int
}

// ParseState maps a raw backend status string to a State. The progress
// endpoint reports errors as a prefixed string ("error: smtp auth failed"),
// so anything starting with "error" is terminal with the remainder as detail.
func ParseState(raw string) (State, string) {
	switch raw {
	case "idle":
		return StateIdle, ""
	case "running":
		return StateRunning, ""
	case "completed":
		return StateCompleted, ""
	}
	if strings.HasPrefix(raw, "error") {
		detail := strings.TrimPrefix(raw, "error")
		detail = strings.TrimLeft(detail, ":- ")
		return StateError, detail
	}
	// Unknown states keep the loop going rather than failing it.
	return StateRunning, ""
}

// Terminal reports whether polling must stop permanently for this job.
func (s Status) Terminal() bool {
	return s.State == StateCompleted || s.State == StateError
}

// Fraction returns Completed/Total clamped to [0, 1], and exactly 0 when the
// total is unknown or zero.
func (s Status) Fraction() float64 {
	if s.Total <= 0 {
		return 0
	}
	f := float64(s.Completed) / float64(s.Total)
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}
