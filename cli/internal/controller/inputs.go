package controller

import "github.com/bhandras/docchat/shared/wire"

// Input is a command or event fed into the reducer.
type Input interface {
	isInput()
}

// CmdSubmit asks to send a new query. It preempts any in-flight request.
type CmdSubmit struct {
	// Query is the user's question; blank input is rejected.
	Query string
}

func (CmdSubmit) isInput() {}

// CmdCancel aborts the in-flight request, if any.
type CmdCancel struct{}

func (CmdCancel) isInput() {}

// EvStreamEvent is one decoded wire event from the request with generation
// Gen.
type EvStreamEvent struct {
	Gen   uint64
	Event wire.StreamEvent
}

func (EvStreamEvent) isInput() {}

// EvTransportError reports a network or decode failure for generation Gen.
type EvTransportError struct {
	Gen uint64
	Err error
}

func (EvTransportError) isInput() {}

// EvStreamClosed reports that the response body for generation Gen ended
// without a terminal event.
type EvStreamClosed struct {
	Gen uint64
}

func (EvStreamClosed) isInput() {}
