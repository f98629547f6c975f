package wire

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFrameFraming(t *testing.T) {
	raw, err := Frame(NewToolCallCreated())
	require.NoError(t, err)

	s := string(raw)
	require.True(t, strings.HasPrefix(s, "data: "))
	require.True(t, strings.HasSuffix(s, "\n\n"))
	require.NotContains(t, strings.TrimSuffix(s, "\n\n"), "\n", "payload must be a single line")
}

func TestStreamEventPayloads(t *testing.T) {
	tests := []struct {
		name string
		ev   StreamEvent
		want map[string]any
	}{
		{
			name: "textCreated",
			ev:   NewTextCreated("thread_1"),
			want: map[string]any{
				"event":    "textCreated",
				"content":  "",
				"status":   "started",
				"threadId": "thread_1",
			},
		},
		{
			name: "inProgress",
			ev:   NewInProgress("thread_1"),
			want: map[string]any{
				"event":    "inProgress",
				"content":  "",
				"status":   "in_progress",
				"threadId": "thread_1",
			},
		},
		{
			name: "toolCallCreated",
			ev:   NewToolCallCreated(),
			want: map[string]any{
				"event": "toolCallCreated",
				"type":  "file_search",
			},
		},
		{
			name: "error",
			ev:   NewError("Assistant run failed"),
			want: map[string]any{
				"event": "error",
				"error": "Assistant run failed",
				"done":  true,
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data, err := json.Marshal(tc.ev)
			require.NoError(t, err)

			var got map[string]any
			require.NoError(t, json.Unmarshal(data, &got))
			require.Equal(t, tc.want, got)
		})
	}
}

func TestMessageDonePayload(t *testing.T) {
	messages := []Message{
		{Role: "user", Content: "What is the refund window?", Citations: []Citation{}},
		{
			Role:    "assistant",
			Content: "Refunds are allowed within 30 days[0].",
			Citations: []Citation{
				{Text: "【abc123】", Filename: "refund-policy.md"},
			},
		},
	}

	ev := NewMessageDone(messages, "thread_1")
	require.True(t, ev.Terminal())

	data, err := json.Marshal(ev)
	require.NoError(t, err)

	var got map[string]any
	require.NoError(t, json.Unmarshal(data, &got))
	require.Equal(t, "messageDone", got["event"])
	require.Equal(t, "completed", got["status"])
	require.Equal(t, "thread_1", got["threadId"])
	require.Equal(t, true, got["done"])

	list, ok := got["messages"].([]any)
	require.True(t, ok)
	require.Len(t, list, 2)

	first := list[0].(map[string]any)
	require.Equal(t, "user", first["role"])
	require.Equal(t, []any{}, first["citations"], "citations must encode as an empty list, not null")
}

func TestTerminalFlags(t *testing.T) {
	require.False(t, NewTextCreated("t").Terminal())
	require.False(t, NewInProgress("t").Terminal())
	require.False(t, NewToolCallCreated().Terminal())
	require.True(t, NewMessageDone(nil, "t").Terminal())
	require.True(t, NewError("boom").Terminal())
}
