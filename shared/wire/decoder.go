package wire

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const framePrefix = "data: "

const (
	decoderInitialBuffer = 64 * 1024
	decoderMaxBuffer     = 8 * 1024 * 1024
)

// Decoder reads stream frames from a byte stream as they arrive.
//
// Frames may be split across reads at arbitrary byte boundaries; the decoder
// buffers partial lines and only parses a payload once its full line is
// available. Blank separator lines and unrecognized lines are skipped.
type Decoder struct {
	s *bufio.Scanner
}

// NewDecoder wraps a reader (typically a streaming HTTP response body).
func NewDecoder(r io.Reader) *Decoder {
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, decoderInitialBuffer), decoderMaxBuffer)
	return &Decoder{s: s}
}

// Next returns the next decoded event.
//
// It returns io.EOF once the stream ends cleanly, and a non-EOF error on a
// transport failure or a malformed payload.
func (d *Decoder) Next() (StreamEvent, error) {
	for d.s.Scan() {
		line := strings.TrimSpace(d.s.Text())
		if line == "" || !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		var ev StreamEvent
		if err := json.Unmarshal([]byte(payload), &ev); err != nil {
			return StreamEvent{}, fmt.Errorf("decode stream event: %w", err)
		}
		return ev, nil
	}
	if err := d.s.Err(); err != nil {
		return StreamEvent{}, err
	}
	return StreamEvent{}, io.EOF
}
