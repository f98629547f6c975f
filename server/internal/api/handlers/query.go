package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/bhandras/docchat/pkg/logger"
	"github.com/bhandras/docchat/server/internal/api/middleware"
	"github.com/bhandras/docchat/server/internal/orchestrator"
	"github.com/bhandras/docchat/server/pkg/types"
	"github.com/bhandras/docchat/shared/wire"
	"github.com/gin-gonic/gin"
)

// QueryRequest is the POST /api/query/stream request body.
type QueryRequest struct {
	// Query is the user's question. Required, non-empty after trimming.
	Query string `json:"query"`
	// ThreadID continues an existing conversation when present.
	ThreadID string `json:"threadId"`
}

// QueryStreamer answers one query by emitting stream events.
type QueryStreamer interface {
	Stream(ctx context.Context, reqID, threadID, query string, emit orchestrator.EmitFunc)
}

// QueryHandler streams assistant answers over a long-lived HTTP response.
type QueryHandler struct {
	orchestrator QueryStreamer
}

func NewQueryHandler(o QueryStreamer) *QueryHandler {
	return &QueryHandler{orchestrator: o}
}

// StreamQuery handles POST /api/query/stream.
//
// The response is a text/event-stream of wire frames; once streaming starts,
// failures surface as an error event rather than an HTTP status.
func (h *QueryHandler) StreamQuery(c *gin.Context) {
	var req QueryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "invalid request body"})
		return
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		c.JSON(http.StatusBadRequest, types.ErrorResponse{Error: "query is required"})
		return
	}

	reqID := middleware.GetRequestID(c)
	logger.Infof("[%s] Received query: %s", reqID, query)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Writer.WriteHeader(http.StatusOK)
	c.Writer.Flush()

	emit := func(ev wire.StreamEvent) error {
		frame, err := wire.Frame(ev)
		if err != nil {
			return err
		}
		if _, err := c.Writer.Write(frame); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	}

	h.orchestrator.Stream(c.Request.Context(), reqID, req.ThreadID, query, emit)
}
