package audio

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TranscriptionError is fail-soft: callers degrade to URL-only content
// instead of aborting the ingestion.
type TranscriptionError struct {
	Path string
	Err  error
}

func (e *TranscriptionError) Error() string {
	return fmt.Sprintf("transcription failed for %s: %v", e.Path, e.Err)
}

func (e *TranscriptionError) Unwrap() error { return e.Err }

// Transcriber runs the whisper.cpp executable over a downloaded audio file.
// Transcription is the slowest stage of the audio pipeline and is attempted
// exactly once per ingestion; there is no automatic retry.
type Transcriber struct {
	executable   string
	defaultModel string
	tempDir      string
	timeout      time.Duration
}

func NewTranscriber(executable, defaultModel, tempDir string, timeout time.Duration) *Transcriber {
	if executable == "" {
		executable = "whisper"
	}
	if defaultModel == "" {
		defaultModel = "base"
	}
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &Transcriber{
		executable:   executable,
		defaultModel: defaultModel,
		tempDir:      tempDir,
		timeout:      timeout,
	}
}

// Engine names the transcription backend for provenance records.
func (t *Transcriber) Engine() string { return "whisper.cpp" }

// Available probes the executable with --help.
func (t *Transcriber) Available(ctx context.Context) bool {
	probeCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return exec.CommandContext(probeCtx, t.executable, "--help").Run() == nil
}

// Transcribe converts an audio file to text. model overrides the default
// model name when non-empty.
func (t *Transcriber) Transcribe(ctx context.Context, audioPath, model string) (string, error) {
	if _, err := os.Stat(audioPath); err != nil {
		return "", &TranscriptionError{Path: audioPath, Err: err}
	}
	if !t.Available(ctx) {
		return "", &TranscriptionError{
			Path: audioPath,
			Err:  fmt.Errorf("whisper executable not found or not working: %s", t.executable),
		}
	}

	if model == "" {
		model = t.defaultModel
	}

	outPrefix := filepath.Join(t.tempDir, "transcript_"+uuid.New().String())
	outFile := outPrefix + ".txt"
	defer t.cleanupTemp(outFile)

	runCtx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	slog.InfoContext(ctx, "starting transcription", "audio", audioPath, "model", model)

	cmd := exec.CommandContext(runCtx, t.executable,
		"-m", model,
		"-f", audioPath,
		"-otxt",
		"-of", outPrefix,
	)
	out, err := cmd.Output()
	if err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return "", &TranscriptionError{Path: audioPath, Err: fmt.Errorf("timed out after %s", t.timeout)}
		}
		return "", &TranscriptionError{Path: audioPath, Err: err}
	}

	if data, readErr := os.ReadFile(outFile); readErr == nil && len(strings.TrimSpace(string(data))) > 0 {
		transcript := strings.TrimSpace(string(data))
		slog.InfoContext(ctx, "transcription finished", "audio", audioPath, "chars", len(transcript))
		return transcript, nil
	}

	// Some whisper.cpp builds write only to stdout.
	if transcript := strings.TrimSpace(string(out)); transcript != "" {
		return transcript, nil
	}

	return "", &TranscriptionError{Path: audioPath, Err: fmt.Errorf("no transcription output produced")}
}

// KnownModels is the static list of common whisper model names; whisper.cpp
// has no command to enumerate them.
func (t *Transcriber) KnownModels() []string {
	return []string{
		"tiny", "tiny.en",
		"base", "base.en",
		"small", "small.en",
		"medium", "medium.en",
		"large-v1", "large-v2", "large-v3",
	}
}

func (t *Transcriber) cleanupTemp(path string) {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to clean up transcript temp file", "path", path, "error", err)
	}
}
