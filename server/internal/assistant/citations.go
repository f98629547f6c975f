package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/bhandras/docchat/pkg/logger"
	"github.com/bhandras/docchat/shared/wire"
)

// FileResolver resolves a file id to a display filename.
type FileResolver func(ctx context.Context, fileID string) (string, error)

// ResolveCitations rewrites inline citation markers in an answer and builds
// the citation list for it.
//
// Annotations are processed in source order; the i-th annotation's marker is
// replaced with "[i]" wherever the marker next occurs in the text. Only the
// first remaining occurrence is replaced, so repeated markers each consume
// one annotation. Every annotation consumes an ordinal whether or not it
// yields a citation entry.
//
// A failed file lookup skips that citation entry and continues; resolution
// never fails as a whole. An empty annotation list returns the text
// unchanged with an empty citation list.
func ResolveCitations(ctx context.Context, text string, annotations []Annotation, resolve FileResolver) (string, []wire.Citation) {
	processed := text
	citations := make([]wire.Citation, 0, len(annotations))

	for i, ann := range annotations {
		if ann.Text != "" {
			processed = strings.Replace(processed, ann.Text, fmt.Sprintf("[%d]", i), 1)
		}
		if ann.FileID == "" {
			continue
		}
		filename, err := resolve(ctx, ann.FileID)
		if err != nil {
			logger.Warnf("Citation lookup failed for file %s: %v", ann.FileID, err)
			continue
		}
		citations = append(citations, wire.Citation{Text: ann.Text, Filename: filename})
	}

	return processed, citations
}
