package wire

import (
	"encoding/json"
	"fmt"
)

// Event names for the query stream protocol.
//
// A stream is a sequence of data-framed JSON events ending in exactly one
// terminal event (EventMessageDone or EventError).
const (
	// EventTextCreated is the first event of every stream. It carries the
	// resolved thread id so clients can adopt it before any poll completes.
	EventTextCreated = "textCreated"
	// EventInProgress signals that the remote run is still working. It may
	// repeat; clients treat repeats as no-ops.
	EventInProgress = "inProgress"
	// EventToolCallCreated signals that the remote run requested a tool
	// action. Informational only.
	EventToolCallCreated = "toolCallCreated"
	// EventMessageDone carries the full conversation, oldest first. Terminal.
	EventMessageDone = "messageDone"
	// EventError carries a generic failure message. Terminal.
	EventError = "error"
)

// Status tags attached to progress events.
const (
	StatusStarted    = "started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// ToolTypeFileSearch is the only tool type the relay reports.
const ToolTypeFileSearch = "file_search"

// Citation is a resolved source reference for an assistant message.
type Citation struct {
	// Text is the literal marker substring that was replaced in the message.
	Text string `json:"text"`
	// Filename is the resolved display name of the cited source.
	Filename string `json:"filename"`
}

// Message is one conversation entry as delivered to clients.
type Message struct {
	// Role is "user" or "assistant".
	Role string `json:"role"`
	// Content is the message text. For the latest assistant message, inline
	// citation markers have been replaced with bracketed ordinals.
	Content string `json:"content"`
	// Citations lists resolved sources for this message, in ordinal order.
	// Only the latest assistant message carries a non-empty list.
	Citations []Citation `json:"citations"`
}

// StreamEvent is the tagged union carried by one stream frame.
//
// Event discriminates the payload; the remaining fields are populated per
// event as described on the constructors below.
type StreamEvent struct {
	// Event is one of the Event* constants.
	Event string `json:"event"`
	// Content is present (and empty) on textCreated and inProgress.
	Content *string `json:"content,omitempty"`
	// Status is one of the Status* constants when present.
	Status string `json:"status,omitempty"`
	// ThreadID is the session identifier for this conversation.
	ThreadID string `json:"threadId,omitempty"`
	// Type is the tool type on toolCallCreated.
	Type string `json:"type,omitempty"`
	// Messages is the full conversation on messageDone, oldest first.
	Messages []Message `json:"messages,omitempty"`
	// Error is the user-safe failure message on error events.
	Error string `json:"error,omitempty"`
	// Done marks terminal events. No events follow a done event.
	Done bool `json:"done,omitempty"`
}

// Terminal reports whether no further events may follow this one.
func (e StreamEvent) Terminal() bool {
	return e.Done
}

func emptyContent() *string {
	s := ""
	return &s
}

// NewTextCreated builds the stream-opening event carrying the thread id.
func NewTextCreated(threadID string) StreamEvent {
	return StreamEvent{
		Event:    EventTextCreated,
		Content:  emptyContent(),
		Status:   StatusStarted,
		ThreadID: threadID,
	}
}

// NewInProgress builds a progress heartbeat event.
func NewInProgress(threadID string) StreamEvent {
	return StreamEvent{
		Event:    EventInProgress,
		Content:  emptyContent(),
		Status:   StatusInProgress,
		ThreadID: threadID,
	}
}

// NewToolCallCreated builds the informational tool-call notification.
func NewToolCallCreated() StreamEvent {
	return StreamEvent{
		Event: EventToolCallCreated,
		Type:  ToolTypeFileSearch,
	}
}

// NewMessageDone builds the successful terminal event.
func NewMessageDone(messages []Message, threadID string) StreamEvent {
	return StreamEvent{
		Event:    EventMessageDone,
		Messages: messages,
		Status:   StatusCompleted,
		ThreadID: threadID,
		Done:     true,
	}
}

// NewError builds the failure terminal event.
func NewError(message string) StreamEvent {
	return StreamEvent{
		Event: EventError,
		Error: message,
		Done:  true,
	}
}

// Frame encodes a single event as one wire frame: the data prefix, the JSON
// payload on one line, and a blank separator line.
func Frame(ev StreamEvent) ([]byte, error) {
	payload, err := json.Marshal(ev)
	if err != nil {
		return nil, fmt.Errorf("marshal stream event: %w", err)
	}
	buf := make([]byte, 0, len(framePrefix)+len(payload)+2)
	buf = append(buf, framePrefix...)
	buf = append(buf, payload...)
	buf = append(buf, '\n', '\n')
	return buf, nil
}
