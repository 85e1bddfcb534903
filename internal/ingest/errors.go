package ingest

import "fmt"

// UnsupportedSourceTypeError is a validation failure: the caller named a
// source type this pipeline does not know. Handlers map it to a 400.
type UnsupportedSourceTypeError struct {
	Type string
}

func (e *UnsupportedSourceTypeError) Error() string {
	return fmt.Sprintf("unsupported data source type: %s", e.Type)
}

// InvalidSourceError covers malformed source values (bad URL, missing file).
type InvalidSourceError struct {
	Value  string
	Reason string
}

func (e *InvalidSourceError) Error() string {
	return fmt.Sprintf("invalid source %q: %s", e.Value, e.Reason)
}

// ExtractionError wraps a failure to turn a source into text. It aborts the
// ingestion call.
type ExtractionError struct {
	Source string
	Err    error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extraction failed for %s: %v", e.Source, e.Err)
}

func (e *ExtractionError) Unwrap() error { return e.Err }

// EmbeddingError wraps an embedding-provider failure. Fatal, never retried.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string { return fmt.Sprintf("embedding failed: %v", e.Err) }

func (e *EmbeddingError) Unwrap() error { return e.Err }

// StoreError wraps a vector-store upsert failure. Fatal, never retried, and
// anything already committed stays committed.
type StoreError struct {
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("vector store write failed: %v", e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
