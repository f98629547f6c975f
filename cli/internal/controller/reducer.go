package controller

import (
	"strings"

	"github.com/bhandras/docchat/shared/wire"
)

// User-visible strings, matching what the server's consumers show.
const (
	statusThinking  = "Assistant is thinking..."
	statusSearching = "Searching documentation..."
	statusCancelled = "Request cancelled"
	errorTransport  = "Failed to send message"
)

// Reduce is the request lifecycle reducer.
//
// It is a pure function over State; all side effects come back as Effect
// values for the runner to execute.
func Reduce(state State, input Input) (State, []Effect) {
	switch in := input.(type) {
	case CmdSubmit:
		return reduceSubmit(state, in)
	case CmdCancel:
		return reduceCancel(state)
	case EvStreamEvent:
		return reduceStreamEvent(state, in)
	case EvTransportError:
		return reduceTransportError(state, in)
	case EvStreamClosed:
		return reduceStreamClosed(state, in)
	default:
		return state, nil
	}
}

func reduceSubmit(state State, cmd CmdSubmit) (State, []Effect) {
	query := strings.TrimSpace(cmd.Query)
	if query == "" {
		return state, nil
	}

	var effects []Effect
	// Only one logical request may be in flight; a new submit always
	// preempts the old one.
	if state.Phase == PhaseSending {
		effects = append(effects, EffCancelRequest{Gen: state.Gen})
	}

	state.Gen++
	state.Phase = PhaseSending
	state.StatusText = ""
	state.ErrorText = ""

	effects = append(effects, EffStartRequest{
		Gen:      state.Gen,
		Query:    query,
		ThreadID: state.ThreadID,
	})
	return state, effects
}

func reduceCancel(state State) (State, []Effect) {
	if state.Phase != PhaseSending {
		return state, nil
	}
	state.Phase = PhaseCancelled
	state.StatusText = statusCancelled
	return state, []Effect{EffCancelRequest{Gen: state.Gen}}
}

func reduceStreamEvent(state State, ev EvStreamEvent) (State, []Effect) {
	// Late events from a cancelled or preempted request are discarded.
	if ev.Gen != state.Gen || state.Phase != PhaseSending {
		return state, nil
	}

	event := ev.Event

	if event.Event == wire.EventError {
		state.Phase = PhaseErrored
		state.ErrorText = event.Error
		state.StatusText = ""
		return state, nil
	}

	// Adopt the thread id once and keep it for the whole conversation.
	if event.ThreadID != "" && state.ThreadID == "" {
		state.ThreadID = event.ThreadID
	}

	switch event.Status {
	case wire.StatusStarted:
		state.StatusText = statusThinking
	case wire.StatusInProgress:
		// Repeated inProgress events are no-ops past the first.
		state.StatusText = statusSearching
	case wire.StatusCompleted:
		state.Phase = PhaseCompleted
		state.Messages = event.Messages
		state.StatusText = ""
	}
	return state, nil
}

func reduceTransportError(state State, ev EvTransportError) (State, []Effect) {
	if ev.Gen != state.Gen || state.Phase != PhaseSending {
		return state, nil
	}
	state.Phase = PhaseErrored
	state.ErrorText = errorTransport
	state.StatusText = ""
	return state, nil
}

func reduceStreamClosed(state State, ev EvStreamClosed) (State, []Effect) {
	if ev.Gen != state.Gen || state.Phase != PhaseSending {
		return state, nil
	}
	// The stream ended without a terminal event; treat it as a failure so
	// the UI never hangs in the loading state.
	state.Phase = PhaseErrored
	state.ErrorText = errorTransport
	state.StatusText = ""
	return state, nil
}
