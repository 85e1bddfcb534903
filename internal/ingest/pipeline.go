package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"ragbot/internal/audio"
	"ragbot/internal/extract"
	"ragbot/internal/settings"
	"ragbot/internal/text"
	"ragbot/internal/transcripts"
)

// Embedder vectorizes chunks in one batched call, order-aligned with input.
type Embedder interface {
	EmbedBatch(ctx context.Context, chunks []string) ([][]float32, error)
}

// VectorStore commits aligned documents, vectors and metadata in one write.
type VectorStore interface {
	Upsert(ctx context.Context, documents []string, vectors [][]float32, metadatas []map[string]string) error
}

// Downloader fetches a YouTube video's audio track to a local file.
type Downloader interface {
	Download(ctx context.Context, youtubeURL string) (string, error)
	Cleanup(path string)
}

// Transcriber converts a local audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath, model string) (string, error)
	Engine() string
}

// TranscriptRecorder persists transcription provenance. Recording failures
// never abort an ingestion; the record is bookkeeping, not pipeline state.
type TranscriptRecorder interface {
	Create(ctx context.Context, t *transcripts.Transcription) (int64, error)
	Complete(ctx context.Context, id int64, rawText, correctedText string, duration float64) error
	Fail(ctx context.Context, id int64, errorMessage string) error
}

// Request is one ingestion submission after handler-level validation.
type Request struct {
	SourceType SourceType
	Value      string
	TaskID     string
	Metadata   map[string]string
}

// Pipeline runs extract, chunk, embed, store for every source type. Stages
// run strictly in order and a stage failure aborts the call; there is no
// rollback of earlier stages, and the vector store is written at most once
// per call.
type Pipeline struct {
	chunker     *text.Chunker
	embedder    Embedder
	store       VectorStore
	downloader  Downloader
	transcriber Transcriber
	corrector   *audio.Corrector
	recorder    TranscriptRecorder
	settingsSvc *settings.Service

	textExtractor extract.Extractor
	pdfExtractor  extract.Extractor
	mdExtractor   extract.Extractor
	webExtractor  extract.Extractor
}

type PipelineOptions struct {
	Chunker     *text.Chunker
	Embedder    Embedder
	Store       VectorStore
	Downloader  Downloader
	Transcriber Transcriber
	Recorder    TranscriptRecorder
	SettingsSvc *settings.Service
}

func NewPipeline(opts PipelineOptions) *Pipeline {
	chunker := opts.Chunker
	if chunker == nil {
		chunker = text.NewChunker(0, 0)
	}
	return &Pipeline{
		chunker:       chunker,
		embedder:      opts.Embedder,
		store:         opts.Store,
		downloader:    opts.Downloader,
		transcriber:   opts.Transcriber,
		corrector:     audio.NewCorrector(),
		recorder:      opts.Recorder,
		settingsSvc:   opts.SettingsSvc,
		textExtractor: extract.NewText(),
		pdfExtractor:  extract.NewPDF(),
		mdExtractor:   extract.NewMarkdown(),
		webExtractor:  extract.NewWeb(),
	}
}

// Ingest runs the full pipeline for one submission.
func (p *Pipeline) Ingest(ctx context.Context, req Request) error {
	sourceType := Classify(req.SourceType, req.Value)

	var (
		res *extract.Result
		err error
	)
	switch sourceType {
	case SourceTypeText:
		res, err = p.textExtractor.Extract(ctx, req.Value)
	case SourceTypePDF:
		res, err = p.pdfExtractor.Extract(ctx, req.Value)
	case SourceTypeMarkdown:
		res, err = p.mdExtractor.Extract(ctx, req.Value)
	case SourceTypeURL:
		res, err = p.webExtractor.Extract(ctx, req.Value)
	case SourceTypeYouTube:
		res, err = p.ingestYouTube(ctx, req.Value)
	default:
		return &UnsupportedSourceTypeError{Type: string(sourceType)}
	}
	if err != nil {
		var extractionErr *ExtractionError
		var invalidErr *InvalidSourceError
		var downloadErr *audio.DownloadError
		if errors.As(err, &extractionErr) || errors.As(err, &invalidErr) || errors.As(err, &downloadErr) {
			return err
		}
		return &ExtractionError{Source: req.Value, Err: err}
	}

	// Caller metadata first, extractor metadata after so derived fields win
	// on collision.
	merged := make(map[string]string, len(req.Metadata)+len(res.Metadata)+2)
	for k, v := range req.Metadata {
		merged[k] = v
	}
	for k, v := range res.Metadata {
		merged[k] = v
	}
	merged["source_type"] = string(sourceType)
	if req.TaskID != "" {
		merged["task_id"] = req.TaskID
	}

	chunks := p.chunker.Split(res.Text)
	if len(chunks) == 0 {
		return &ExtractionError{Source: req.Value, Err: fmt.Errorf("no content produced")}
	}

	vectors, err := p.embedder.EmbedBatch(ctx, chunks)
	if err != nil {
		return &EmbeddingError{Err: err}
	}

	metadatas := make([]map[string]string, len(chunks))
	for i := range chunks {
		m := make(map[string]string, len(merged))
		for k, v := range merged {
			m[k] = v
		}
		metadatas[i] = m
	}

	if err := p.store.Upsert(ctx, chunks, vectors, metadatas); err != nil {
		return &StoreError{Err: err}
	}

	slog.InfoContext(ctx, "ingestion complete",
		"source_type", sourceType, "chunks", len(chunks), "task_id", req.TaskID)
	return nil
}

// ingestYouTube downloads and transcribes a video. A download failure is
// fatal. A transcription failure is not: the ingestion degrades to URL-only
// content so the link itself stays findable.
func (p *Pipeline) ingestYouTube(ctx context.Context, youtubeURL string) (*extract.Result, error) {
	if !audio.IsYouTubeURL(youtubeURL) {
		return nil, &InvalidSourceError{Value: youtubeURL, Reason: "not a recognized YouTube URL"}
	}

	model := p.whisperModel(ctx)

	var recordID int64
	if p.recorder != nil {
		id, err := p.recorder.Create(ctx, &transcripts.Transcription{
			YouTubeURL: youtubeURL,
			Engine:     p.transcriber.Engine(),
			Model:      model,
		})
		if err != nil {
			slog.WarnContext(ctx, "failed to record transcription", "url", youtubeURL, "error", err)
		} else {
			recordID = id
		}
	}

	// A download failure surfaces as the audio package's own error type so
	// callers can tell it apart from extraction problems.
	audioPath, err := p.downloader.Download(ctx, youtubeURL)
	if err != nil {
		p.failRecord(ctx, recordID, err)
		return nil, err
	}
	defer p.downloader.Cleanup(audioPath)

	start := time.Now()
	raw, err := p.transcriber.Transcribe(ctx, audioPath, model)
	if err != nil {
		slog.WarnContext(ctx, "transcription failed, keeping URL-only content",
			"url", youtubeURL, "error", err)
		p.failRecord(ctx, recordID, err)
		return &extract.Result{
			Text: fmt.Sprintf("YouTube video: %s", youtubeURL),
			Metadata: map[string]string{
				"url":                     youtubeURL,
				"transcription_available": "false",
			},
		}, nil
	}

	corrected := p.corrector.Correct(raw)
	duration := time.Since(start).Seconds()

	if p.recorder != nil && recordID != 0 {
		if err := p.recorder.Complete(ctx, recordID, raw, corrected, duration); err != nil {
			slog.WarnContext(ctx, "failed to update transcription record",
				"id", recordID, "error", err)
		}
	}

	return &extract.Result{
		Text: corrected,
		Metadata: map[string]string{
			"url":                     youtubeURL,
			"transcription_available": "true",
			"transcription_engine":    p.transcriber.Engine(),
		},
	}, nil
}

func (p *Pipeline) whisperModel(ctx context.Context) string {
	if p.settingsSvc == nil {
		return ""
	}
	s, err := p.settingsSvc.Get(ctx)
	if err != nil {
		slog.WarnContext(ctx, "failed to load settings, using default whisper model", "error", err)
		return ""
	}
	return s.WhisperModel
}

func (p *Pipeline) failRecord(ctx context.Context, recordID int64, cause error) {
	if p.recorder == nil || recordID == 0 {
		return
	}
	if err := p.recorder.Fail(ctx, recordID, cause.Error()); err != nil {
		slog.WarnContext(ctx, "failed to update transcription record",
			"id", recordID, "error", err)
	}
}
