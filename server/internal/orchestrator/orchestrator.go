// Package orchestrator turns one slow, polled remote run into an ordered
// push stream of wire events.
package orchestrator

import (
	"context"
	"time"

	"github.com/bhandras/docchat/pkg/logger"
	"github.com/bhandras/docchat/server/internal/assistant"
	"github.com/bhandras/docchat/server/internal/registry"
	"github.com/bhandras/docchat/shared/wire"
)

// GenericErrorMessage is the only failure detail ever disclosed to clients.
// Specific causes stay in server logs.
const GenericErrorMessage = "An error occurred while processing your request"

// RunFailedMessage is sent when the remote engine reports a failed run.
const RunFailedMessage = "Assistant run failed"

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultRunTimeout   = 5 * time.Minute
)

// EmitFunc delivers one stream event to the client.
//
// A returned error means the client can no longer be written to; the run is
// abandoned and no further events are emitted.
type EmitFunc func(wire.StreamEvent) error

// Orchestrator drives one remote run per request and emits stream events for
// each observed state transition. It is safe for concurrent use; every
// Stream call is independent apart from the shared thread registry.
type Orchestrator struct {
	engine       assistant.Engine
	threads      registry.Registry
	pollInterval time.Duration
	runTimeout   time.Duration
}

// New creates an Orchestrator. Zero durations fall back to defaults.
func New(engine assistant.Engine, threads registry.Registry, pollInterval, runTimeout time.Duration) *Orchestrator {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	if runTimeout <= 0 {
		runTimeout = defaultRunTimeout
	}
	return &Orchestrator{
		engine:       engine,
		threads:      threads,
		pollInterval: pollInterval,
		runTimeout:   runTimeout,
	}
}

// Stream answers one user query over the given (possibly empty) thread id.
//
// It emits the opening textCreated event carrying the resolved thread id,
// then polls the run until a terminal state, emitting at most one event per
// observed status. Exactly one terminal event (messageDone or error) ends
// the stream unless the client disconnects first.
func (o *Orchestrator) Stream(ctx context.Context, reqID, candidateThreadID, query string, emit EmitFunc) {
	threadID, err := o.resolveThread(ctx, reqID, candidateThreadID)
	if err != nil {
		o.fail(reqID, "resolve thread", err, emit)
		return
	}

	if err := o.engine.AddUserMessage(ctx, threadID, query); err != nil {
		o.fail(reqID, "post message", err, emit)
		return
	}

	runID, err := o.engine.StartRun(ctx, threadID)
	if err != nil {
		o.fail(reqID, "start run", err, emit)
		return
	}
	logger.Debugf("[%s] Started run %s on thread %s", reqID, runID, threadID)

	if err := emit(wire.NewTextCreated(threadID)); err != nil {
		logger.Debugf("[%s] Client went away before first event: %v", reqID, err)
		return
	}

	deadline := time.Now().Add(o.runTimeout)
	for {
		status, err := o.engine.RunStatus(ctx, threadID, runID)
		if err != nil {
			o.fail(reqID, "poll run status", err, emit)
			return
		}
		logger.Debugf("[%s] Current run status: %s", reqID, status)

		switch status {
		case assistant.RunInProgress:
			if err := emit(wire.NewInProgress(threadID)); err != nil {
				return
			}
		case assistant.RunRequiresAction:
			// Tool-call fulfillment is not implemented; notify the client
			// and keep polling. The run timeout bounds a stalled run.
			if err := emit(wire.NewToolCallCreated()); err != nil {
				return
			}
		case assistant.RunCompleted:
			messages, err := o.collectMessages(ctx, threadID)
			if err != nil {
				o.fail(reqID, "collect messages", err, emit)
				return
			}
			if err := emit(wire.NewMessageDone(messages, threadID)); err != nil {
				logger.Debugf("[%s] Client went away before messageDone: %v", reqID, err)
			}
			return
		case assistant.RunFailed:
			logger.Warnf("[%s] Run %s failed", reqID, runID)
			_ = emit(wire.NewError(RunFailedMessage))
			return
		}

		if time.Now().After(deadline) {
			logger.Errorf("[%s] Run %s exceeded the %s timeout in status %s", reqID, runID, o.runTimeout, status)
			_ = emit(wire.NewError(GenericErrorMessage))
			return
		}

		select {
		case <-ctx.Done():
			logger.Infof("[%s] Request cancelled while polling run %s", reqID, runID)
			return
		case <-time.After(o.pollInterval):
		}
	}
}

// resolveThread is the session router: reuse the candidate thread iff it is
// registered as live, otherwise create and register a new one.
func (o *Orchestrator) resolveThread(ctx context.Context, reqID, candidate string) (string, error) {
	if candidate != "" {
		known, err := o.threads.Has(ctx, candidate)
		if err != nil {
			return "", err
		}
		if known {
			logger.Infof("[%s] Using existing thread: %s", reqID, candidate)
			return candidate, nil
		}
	}

	threadID, err := o.engine.CreateThread(ctx)
	if err != nil {
		return "", err
	}
	if err := o.threads.Add(ctx, threadID); err != nil {
		return "", err
	}
	logger.Infof("[%s] Created new thread: %s", reqID, threadID)
	return threadID, nil
}

// collectMessages fetches the conversation, reverses it to oldest-first and
// applies citation resolution to the latest assistant answer.
func (o *Orchestrator) collectMessages(ctx context.Context, threadID string) ([]wire.Message, error) {
	records, err := o.engine.ListMessages(ctx, threadID)
	if err != nil {
		return nil, err
	}

	messages := make([]wire.Message, len(records))
	for i, rec := range records {
		messages[len(records)-1-i] = wire.Message{
			Role:      rec.Role,
			Content:   rec.Text,
			Citations: []wire.Citation{},
		}
	}

	if len(records) > 0 {
		latest := records[0]
		text, citations := assistant.ResolveCitations(ctx, latest.Text, latest.Annotations, o.engine.FileName)
		messages[len(messages)-1].Content = text
		messages[len(messages)-1].Citations = citations
	}
	return messages, nil
}

func (o *Orchestrator) fail(reqID, op string, err error, emit EmitFunc) {
	logger.Errorf("[%s] Failed to %s: %v", reqID, op, err)
	_ = emit(wire.NewError(GenericErrorMessage))
}
