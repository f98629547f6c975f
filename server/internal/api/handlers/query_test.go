package handlers

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bhandras/docchat/server/internal/api/middleware"
	"github.com/bhandras/docchat/server/internal/orchestrator"
	"github.com/bhandras/docchat/shared/wire"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// scriptedStreamer emits a fixed event sequence and records what it was
// asked to stream.
type scriptedStreamer struct {
	events   []wire.StreamEvent
	threadID string
	query    string
}

func (s *scriptedStreamer) Stream(_ context.Context, _, threadID, query string, emit orchestrator.EmitFunc) {
	s.threadID = threadID
	s.query = query
	for _, ev := range s.events {
		if err := emit(ev); err != nil {
			return
		}
	}
}

func newTestRouter(streamer *scriptedStreamer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(middleware.LoggingMiddleware())
	router.POST("/api/query/stream", NewQueryHandler(streamer).StreamQuery)
	return router
}

func postQuery(t *testing.T, router *gin.Engine, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/query/stream", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeAll(t *testing.T, body *bytes.Buffer) []wire.StreamEvent {
	t.Helper()
	d := wire.NewDecoder(body)
	var events []wire.StreamEvent
	for {
		ev, err := d.Next()
		if err == io.EOF {
			return events
		}
		require.NoError(t, err)
		events = append(events, ev)
	}
}

func TestStreamQueryHappyPath(t *testing.T) {
	streamer := &scriptedStreamer{events: []wire.StreamEvent{
		wire.NewTextCreated("thread_1"),
		wire.NewInProgress("thread_1"),
		wire.NewMessageDone([]wire.Message{
			{Role: "user", Content: "hi", Citations: []wire.Citation{}},
			{Role: "assistant", Content: "hello", Citations: []wire.Citation{}},
		}, "thread_1"),
	}}

	w := postQuery(t, newTestRouter(streamer), `{"query":"  hi  ","threadId":"thread_1"}`)

	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	require.Equal(t, "no-cache", w.Header().Get("Cache-Control"))
	require.Equal(t, "keep-alive", w.Header().Get("Connection"))

	require.Equal(t, "thread_1", streamer.threadID)
	require.Equal(t, "hi", streamer.query, "query must be trimmed before streaming")

	events := decodeAll(t, w.Body)
	require.Len(t, events, 3)
	require.Equal(t, wire.EventTextCreated, events[0].Event)
	require.Equal(t, wire.EventMessageDone, events[2].Event)
	require.True(t, events[2].Terminal())
}

func TestStreamQueryValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"query":`},
		{"missing query", `{}`},
		{"blank query", `{"query":"   "}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			streamer := &scriptedStreamer{}
			w := postQuery(t, newTestRouter(streamer), tc.body)
			require.Equal(t, http.StatusBadRequest, w.Code)
			require.Empty(t, streamer.query, "invalid requests must not reach the orchestrator")
		})
	}
}

func TestStreamQueryErrorEvent(t *testing.T) {
	streamer := &scriptedStreamer{events: []wire.StreamEvent{
		wire.NewTextCreated("thread_1"),
		wire.NewError(orchestrator.RunFailedMessage),
	}}

	w := postQuery(t, newTestRouter(streamer), `{"query":"q"}`)
	require.Equal(t, http.StatusOK, w.Code, "stream failures do not change the HTTP status")

	events := decodeAll(t, w.Body)
	require.Len(t, events, 2)
	last := events[len(events)-1]
	require.Equal(t, wire.EventError, last.Event)
	require.Equal(t, "Assistant run failed", last.Error)
	require.True(t, last.Done)
}
