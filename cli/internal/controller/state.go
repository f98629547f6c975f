package controller

import "github.com/bhandras/docchat/shared/wire"

// Phase is the request lifecycle state.
type Phase string

const (
	// PhaseIdle means no request has been sent yet.
	PhaseIdle Phase = "idle"
	// PhaseSending means a request is in flight and its events are applied.
	PhaseSending Phase = "sending"
	// PhaseCompleted means the last request delivered a messageDone.
	PhaseCompleted Phase = "completed"
	// PhaseErrored means the last request failed (stream error event,
	// decode failure or network failure).
	PhaseErrored Phase = "errored"
	// PhaseCancelled means the user aborted the last request.
	PhaseCancelled Phase = "cancelled"
)

// Terminal reports whether a new submit is the only way forward.
func (p Phase) Terminal() bool {
	return p == PhaseCompleted || p == PhaseErrored || p == PhaseCancelled
}

// State holds the UI-observable client state.
//
// It is updated only by the reducer and is intentionally small so it can be
// snapshotted and tested deterministically.
type State struct {
	// Phase is the lifecycle state of the current/last request.
	Phase Phase

	// Gen identifies the in-flight request. Events tagged with any other
	// generation are discarded; this is what makes late events from a
	// cancelled or preempted request provably inert.
	Gen uint64

	// ThreadID is adopted from the first stream event that carries one and
	// is never overwritten for the lifetime of the conversation.
	ThreadID string

	// Messages is the visible conversation, oldest first.
	Messages []wire.Message

	// StatusText is the transient progress line ("Assistant is thinking...").
	StatusText string

	// ErrorText is the visible error banner; empty when none.
	ErrorText string
}
