// Package extract converts raw ingestion sources (inline text, local files,
// web pages) into plain text plus extraction metadata.
package extract

import (
	"context"
	"fmt"
	"strings"
)

// Result is the output of one extraction: the text to be chunked and any
// metadata the extractor derived from the source itself.
type Result struct {
	Text     string
	Metadata map[string]string
}

// Extractor turns a source locator (inline payload, file path, or URL) into
// a Result. Implementations fail fast instead of returning partial text.
type Extractor interface {
	Extract(ctx context.Context, source string) (*Result, error)
}

// Text is the identity extractor: the source already is the content.
type Text struct{}

func NewText() *Text { return &Text{} }

func (e *Text) Extract(_ context.Context, source string) (*Result, error) {
	if strings.TrimSpace(source) == "" {
		return nil, fmt.Errorf("empty text content")
	}
	return &Result{Text: source, Metadata: map[string]string{}}, nil
}
