package transport

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bhandras/docchat/shared/wire"
	"github.com/stretchr/testify/require"
)

func writeFrame(t *testing.T, w http.ResponseWriter, ev wire.StreamEvent) {
	t.Helper()
	frame, err := wire.Frame(ev)
	require.NoError(t, err)
	_, err = w.Write(frame)
	require.NoError(t, err)
	w.(http.Flusher).Flush()
}

func TestStreamDeliversEventsInOrder(t *testing.T) {
	var gotBody queryRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/query/stream", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		w.Header().Set("Content-Type", "text/event-stream")
		writeFrame(t, w, wire.NewTextCreated("thread_1"))
		writeFrame(t, w, wire.NewInProgress("thread_1"))
		writeFrame(t, w, wire.NewMessageDone([]wire.Message{
			{Role: "assistant", Content: "hi", Citations: []wire.Citation{}},
		}, "thread_1"))
	}))
	defer srv.Close()

	var events []wire.StreamEvent
	err := New(srv.URL).Stream(context.Background(), "hello", "thread_1", func(ev wire.StreamEvent) error {
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)

	require.Equal(t, "hello", gotBody.Query)
	require.Equal(t, "thread_1", gotBody.ThreadID)

	require.Len(t, events, 3)
	require.Equal(t, wire.EventTextCreated, events[0].Event)
	require.Equal(t, wire.EventInProgress, events[1].Event)
	require.Equal(t, wire.EventMessageDone, events[2].Event)
}

func TestStreamStopsAtTerminalEvent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeFrame(t, w, wire.NewError("Assistant run failed"))
		// Nothing after a terminal event should be consumed even if sent.
		writeFrame(t, w, wire.NewInProgress("thread_1"))
	}))
	defer srv.Close()

	var events []wire.StreamEvent
	err := New(srv.URL).Stream(context.Background(), "q", "", func(ev wire.StreamEvent) error {
		events = append(events, ev)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, events, 1)
	require.True(t, events[0].Terminal())
}

func TestStreamCancellation(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		writeFrame(t, w, wire.NewTextCreated("thread_1"))
		<-release
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan wire.StreamEvent, 1)
	errCh := make(chan error, 1)
	go func() {
		errCh <- New(srv.URL).Stream(ctx, "q", "", func(ev wire.StreamEvent) error {
			got <- ev
			return nil
		})
	}()

	select {
	case <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for the first event")
	}
	cancel()

	select {
	case err := <-errCh:
		require.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not stop after cancellation")
	}
}

func TestStreamNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"query is required"}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	err := New(srv.URL).Stream(context.Background(), "q", "", func(wire.StreamEvent) error {
		t.Fatal("no events expected")
		return nil
	})
	require.ErrorIs(t, err, ErrUnexpectedStatus)
	require.Contains(t, err.Error(), "400")
}
