package assistant

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Client is the OpenAI Assistants implementation of Engine.
//
// Threads are created with the configured vector store attached, and runs are
// started with the file_search tool so answers are grounded in the
// pre-provisioned document index.
type Client struct {
	api           *openai.Client
	assistantID   string
	vectorStoreID string
}

// NewClient creates an Engine backed by the OpenAI Assistants API.
func NewClient(apiKey, assistantID, vectorStoreID string) *Client {
	return &Client{
		api:           openai.NewClient(apiKey),
		assistantID:   assistantID,
		vectorStoreID: vectorStoreID,
	}
}

// CreateThread creates a remote thread with the document index attached.
func (c *Client) CreateThread(ctx context.Context) (string, error) {
	thread, err := c.api.CreateThread(ctx, openai.ThreadRequest{
		ToolResources: &openai.ToolResourcesRequest{
			FileSearch: &openai.FileSearchToolResourcesRequest{
				VectorStoreIDs: []string{c.vectorStoreID},
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("create thread: %w", err)
	}
	return thread.ID, nil
}

// AddUserMessage appends a user message to the thread.
func (c *Client) AddUserMessage(ctx context.Context, threadID, content string) error {
	_, err := c.api.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    openai.ChatMessageRoleUser,
		Content: content,
	})
	if err != nil {
		return fmt.Errorf("add message to thread %s: %w", threadID, err)
	}
	return nil
}

// StartRun starts an assistant run with file search enabled.
func (c *Client) StartRun(ctx context.Context, threadID string) (string, error) {
	run, err := c.api.CreateRun(ctx, threadID, openai.RunRequest{
		AssistantID: c.assistantID,
		Tools:       []openai.Tool{{Type: "file_search"}},
	})
	if err != nil {
		return "", fmt.Errorf("start run on thread %s: %w", threadID, err)
	}
	return run.ID, nil
}

// RunStatus retrieves and maps the remote run status.
//
// Statuses outside the observed set collapse to failed: a cancelled or
// expired run will never complete, so polling it further is pointless.
func (c *Client) RunStatus(ctx context.Context, threadID, runID string) (RunState, error) {
	run, err := c.api.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return "", fmt.Errorf("retrieve run %s: %w", runID, err)
	}
	switch run.Status {
	case openai.RunStatusQueued:
		return RunQueued, nil
	case openai.RunStatusInProgress, openai.RunStatusCancelling:
		return RunInProgress, nil
	case openai.RunStatusRequiresAction:
		return RunRequiresAction, nil
	case openai.RunStatusCompleted:
		return RunCompleted, nil
	default:
		return RunFailed, nil
	}
}

// ListMessages returns the thread conversation, newest first.
func (c *Client) ListMessages(ctx context.Context, threadID string) ([]ThreadMessage, error) {
	list, err := c.api.ListMessage(ctx, threadID, nil, nil, nil, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("list messages for thread %s: %w", threadID, err)
	}

	messages := make([]ThreadMessage, 0, len(list.Messages))
	for _, msg := range list.Messages {
		messages = append(messages, ThreadMessage{
			Role:        msg.Role,
			Text:        messageText(msg),
			Annotations: messageAnnotations(msg),
		})
	}
	return messages, nil
}

// FileName resolves a file id to its display filename.
func (c *Client) FileName(ctx context.Context, fileID string) (string, error) {
	file, err := c.api.GetFile(ctx, fileID)
	if err != nil {
		return "", fmt.Errorf("retrieve file %s: %w", fileID, err)
	}
	return file.FileName, nil
}

func messageText(msg openai.Message) string {
	if len(msg.Content) == 0 {
		return ""
	}
	part := msg.Content[0]
	if part.Type != "text" || part.Text == nil {
		return ""
	}
	return part.Text.Value
}

// annotationRecord mirrors the JSON shape of one message text annotation.
// The SDK surfaces annotations untyped, so each is round-tripped through
// JSON into this shape.
type annotationRecord struct {
	Text         string `json:"text"`
	FileCitation *struct {
		FileID string `json:"file_id"`
	} `json:"file_citation"`
}

func messageAnnotations(msg openai.Message) []Annotation {
	if len(msg.Content) == 0 {
		return nil
	}
	part := msg.Content[0]
	if part.Type != "text" || part.Text == nil || len(part.Text.Annotations) == 0 {
		return nil
	}

	annotations := make([]Annotation, 0, len(part.Text.Annotations))
	for _, raw := range part.Text.Annotations {
		data, err := json.Marshal(raw)
		if err != nil {
			continue
		}
		var rec annotationRecord
		if err := json.Unmarshal(data, &rec); err != nil {
			continue
		}
		ann := Annotation{Text: rec.Text}
		if rec.FileCitation != nil {
			ann.FileID = rec.FileCitation.FileID
		}
		annotations = append(annotations, ann)
	}
	return annotations
}
