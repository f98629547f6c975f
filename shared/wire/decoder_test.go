package wire

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// chunkReader yields the underlying data in fixed-size chunks so tests can
// force frame boundaries to land mid-payload.
type chunkReader struct {
	data  []byte
	chunk int
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.data) == 0 {
		return 0, io.EOF
	}
	n := r.chunk
	if n > len(r.data) {
		n = len(r.data)
	}
	if n > len(p) {
		n = len(p)
	}
	copy(p, r.data[:n])
	r.data = r.data[n:]
	return n, nil
}

func framed(t *testing.T, events ...StreamEvent) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, ev := range events {
		raw, err := Frame(ev)
		require.NoError(t, err)
		buf.Write(raw)
	}
	return buf.Bytes()
}

func drain(t *testing.T, d *Decoder) []StreamEvent {
	t.Helper()
	var out []StreamEvent
	for {
		ev, err := d.Next()
		if err == io.EOF {
			return out
		}
		require.NoError(t, err)
		out = append(out, ev)
	}
}

func TestDecoderRoundTrip(t *testing.T) {
	sent := []StreamEvent{
		NewTextCreated("thread_1"),
		NewInProgress("thread_1"),
		NewToolCallCreated(),
		NewMessageDone([]Message{
			{Role: "user", Content: "hi", Citations: []Citation{}},
			{Role: "assistant", Content: "hello[0]", Citations: []Citation{{Text: "【x】", Filename: "a.md"}}},
		}, "thread_1"),
	}

	got := drain(t, NewDecoder(bytes.NewReader(framed(t, sent...))))
	require.Equal(t, sent, got)
}

func TestDecoderBuffersPartialLines(t *testing.T) {
	// Single-byte reads force every payload to arrive split across many
	// reads; the decoder must still produce whole events in order.
	data := framed(t,
		NewTextCreated("thread_1"),
		NewInProgress("thread_1"),
		NewError("Assistant run failed"),
	)

	got := drain(t, NewDecoder(&chunkReader{data: data, chunk: 1}))
	require.Len(t, got, 3)
	require.Equal(t, EventTextCreated, got[0].Event)
	require.Equal(t, EventInProgress, got[1].Event)
	require.Equal(t, EventError, got[2].Event)
	require.True(t, got[2].Terminal())
}

func TestDecoderSkipsUnrecognizedLines(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString(": comment\n\n")
	buf.WriteString("event: noise\n")
	buf.Write(framed(t, NewToolCallCreated()))
	buf.WriteString("data:\n\n")

	got := drain(t, NewDecoder(&buf))
	require.Len(t, got, 1)
	require.Equal(t, EventToolCallCreated, got[0].Event)
}

func TestDecoderMalformedPayload(t *testing.T) {
	d := NewDecoder(strings.NewReader("data: {not-json\n\n"))
	_, err := d.Next()
	require.Error(t, err)
	require.NotErrorIs(t, err, io.EOF)
}
