package assistant

import "context"

// RunState is the observed status of a remote run.
//
// The remote engine owns the state machine; the relay only observes
// transitions while polling.
type RunState string

const (
	RunQueued         RunState = "queued"
	RunInProgress     RunState = "in_progress"
	RunRequiresAction RunState = "requires_action"
	RunCompleted      RunState = "completed"
	RunFailed         RunState = "failed"
)

// Terminal reports whether polling should stop at this state.
func (s RunState) Terminal() bool {
	return s == RunCompleted || s == RunFailed
}

// Annotation locates one citation marker inside generated message text.
type Annotation struct {
	// Text is the literal marker substring as it appears in the message.
	Text string
	// FileID references the cited file. Empty when the annotation carries
	// no file reference.
	FileID string
}

// ThreadMessage is one conversation record as returned by the remote engine.
type ThreadMessage struct {
	// Role is "user" or "assistant".
	Role string
	// Text is the raw message text, markers included.
	Text string
	// Annotations are the citation markers for this message, in source order.
	Annotations []Annotation
}

// Engine is the remote job surface the relay consumes.
//
// Implementations must be safe for concurrent use; each stream request drives
// its own run against a shared Engine.
type Engine interface {
	// CreateThread creates a new remote conversation and returns its id.
	CreateThread(ctx context.Context) (string, error)

	// AddUserMessage appends a user message to the thread.
	AddUserMessage(ctx context.Context, threadID, content string) error

	// StartRun starts an answer run over the thread with document retrieval
	// enabled, returning the run id.
	StartRun(ctx context.Context, threadID string) (string, error)

	// RunStatus retrieves the current status of a run.
	RunStatus(ctx context.Context, threadID, runID string) (RunState, error)

	// ListMessages returns the full conversation, newest first, as the
	// remote engine orders it.
	ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error)

	// FileName resolves a file id to its display filename.
	FileName(ctx context.Context, fileID string) (string, error)
}
