package analysis

import "github.com/mabhi256/medi/internal/upload"

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitting
	PhaseSucceeded
	PhaseRateLimited
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseSubmitting:
		return "submitting"
	case PhaseSucceeded:
		return "succeeded"
	case PhaseRateLimited:
		return "rate-limited"
	case PhaseFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Terminal reports whether the network call has resolved into an outcome
func (p Phase) Terminal() bool {
	return p == PhaseSucceeded || p == PhaseRateLimited || p == PhaseFailed
}

// State is the UI state of one analysis session. Only the field matching
// Phase is meaningful: File while submitting, Result on success, Message on
// failure.
type State struct {
	Phase     Phase
	File      *upload.File
	Result    *Result
	Message   string
	RequestID uint64 // id of the in-flight (or last resolved) request

	seq uint64 // last issued request id, never rewound
}

// Event is anything that may move the state machine
type Event interface {
	event()
}

// Submit asks to analyze File. A nil File means nothing is selected.
type Submit struct {
	File *upload.File
}

// ResponseOK carries a successful analysis for request RequestID
type ResponseOK struct {
	RequestID uint64
	Result    Result
}

// ResponseRateLimited reports an HTTP 429 for request RequestID
type ResponseRateLimited struct {
	RequestID uint64
}

// ResponseError reports any other failure for request RequestID
type ResponseError struct {
	RequestID uint64
	Message   string
}

// Reset returns the machine to Idle, discarding file and result
type Reset struct{}

func (Submit) event()              {}
func (ResponseOK) event()          {}
func (ResponseRateLimited) event() {}
func (ResponseError) event()       {}
func (Reset) event()               {}

// Reduce applies e to s and returns the next state. The boolean is false when
// the event is rejected, in which case the returned state equals s.
func Reduce(s State, e Event) (State, bool) {
	switch e := e.(type) {
	case Submit:
		if s.Phase != PhaseIdle || e.File == nil {
			return s, false
		}
		next := s.seq + 1
		return State{
			Phase:     PhaseSubmitting,
			File:      e.File,
			RequestID: next,
			seq:       next,
		}, true

	case ResponseOK:
		if !s.awaiting(e.RequestID) {
			return s, false
		}
		result := e.Result
		return State{
			Phase:     PhaseSucceeded,
			Result:    &result,
			RequestID: s.RequestID,
			seq:       s.seq,
		}, true

	case ResponseRateLimited:
		if !s.awaiting(e.RequestID) {
			return s, false
		}
		return State{
			Phase:     PhaseRateLimited,
			RequestID: s.RequestID,
			seq:       s.seq,
		}, true

	case ResponseError:
		if !s.awaiting(e.RequestID) {
			return s, false
		}
		return State{
			Phase:     PhaseFailed,
			Message:   e.Message,
			RequestID: s.RequestID,
			seq:       s.seq,
		}, true

	case Reset:
		return State{Phase: PhaseIdle, seq: s.seq}, true
	}

	return s, false
}

// awaiting reports whether a response for id may still be applied
func (s State) awaiting(id uint64) bool {
	return s.Phase == PhaseSubmitting && s.RequestID == id
}
