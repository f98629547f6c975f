// Package transport implements the streaming HTTP call to the docchat
// server.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bhandras/docchat/shared/wire"
)

// ErrUnexpectedStatus is returned when the server answers with anything
// other than 200 before streaming starts.
var ErrUnexpectedStatus = errors.New("transport: unexpected response status")

type queryRequest struct {
	Query    string `json:"query"`
	ThreadID string `json:"threadId,omitempty"`
}

// Client posts queries and decodes the resulting event stream.
type Client struct {
	baseURL string
	// No client timeout: the response is a long-lived stream and the
	// caller's context is the cancellation mechanism.
	http *http.Client
}

// New creates a Client for the given server base URL.
func New(serverURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(serverURL, "/"),
		http:    &http.Client{},
	}
}

// Stream posts a query and invokes fn for each decoded event, in arrival
// order, until a terminal event, end of stream, a transport failure, or
// context cancellation.
//
// Cancelling ctx aborts the in-flight request; no events are delivered
// after the abort is observed.
func (c *Client) Stream(ctx context.Context, query, threadID string, fn func(wire.StreamEvent) error) error {
	payload, err := json.Marshal(queryRequest{Query: query, ThreadID: threadID})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/query/stream", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	decoder := wire.NewDecoder(resp.Body)
	for {
		ev, err := decoder.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			// Body reads fail with a transport error once the context
			// is cancelled; report the cancellation itself instead.
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := fn(ev); err != nil {
			return err
		}
		if ev.Terminal() {
			return nil
		}
	}
}
