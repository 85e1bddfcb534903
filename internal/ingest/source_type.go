package ingest

import (
	"fmt"

	"ragbot/internal/audio"
)

// SourceType identifies how an ingestion payload should be interpreted.
type SourceType string

const (
	SourceTypeText     SourceType = "text"
	SourceTypePDF      SourceType = "pdf"
	SourceTypeMarkdown SourceType = "markdown"
	SourceTypeURL      SourceType = "url"
	SourceTypeYouTube  SourceType = "youtube"
)

// ParseSourceType validates a caller-supplied type string.
func ParseSourceType(s string) (SourceType, error) {
	switch SourceType(s) {
	case SourceTypeText, SourceTypePDF, SourceTypeMarkdown, SourceTypeURL, SourceTypeYouTube:
		return SourceType(s), nil
	default:
		return "", &UnsupportedSourceTypeError{Type: s}
	}
}

// Classify resolves the effective source type for a submission. A generic
// "url" whose host is on the YouTube allow-list is reclassified to "youtube"
// before the pipeline ever sees it, so YouTube links submitted as plain URLs
// transparently take the audio path.
func Classify(sourceType SourceType, value string) SourceType {
	if sourceType == SourceTypeURL && audio.IsYouTubeURL(value) {
		return SourceTypeYouTube
	}
	return sourceType
}

func (s SourceType) String() string { return string(s) }

// ExtensionSourceType maps an uploaded file extension (without the dot,
// case-insensitive handling is the caller's job) to a source type.
func ExtensionSourceType(ext string) (SourceType, error) {
	switch ext {
	case "pdf":
		return SourceTypePDF, nil
	case "md":
		return SourceTypeMarkdown, nil
	default:
		return "", &UnsupportedSourceTypeError{Type: fmt.Sprintf("file extension %q", ext)}
	}
}
