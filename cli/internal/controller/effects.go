package controller

// Effect is an output of the reducer that must be executed by the caller.
//
// Keeping effects as data makes the reducer deterministic and testable.
type Effect interface {
	isEffect()
}

// EffStartRequest opens a new streaming request for generation Gen.
type EffStartRequest struct {
	Gen      uint64
	Query    string
	ThreadID string
}

func (EffStartRequest) isEffect() {}

// EffCancelRequest aborts the transport call for generation Gen.
type EffCancelRequest struct {
	Gen uint64
}

func (EffCancelRequest) isEffect() {}
