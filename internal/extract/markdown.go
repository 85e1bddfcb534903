package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Markdown loads a local markdown file as UTF-8 text. The markup is left
// intact; metadata comes from file attributes.
type Markdown struct{}

func NewMarkdown() *Markdown { return &Markdown{} }

func (e *Markdown) Extract(_ context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read markdown: %w", err)
	}
	if strings.TrimSpace(string(data)) == "" {
		return nil, fmt.Errorf("empty markdown file %s", filepath.Base(path))
	}

	meta := map[string]string{
		"filename": filepath.Base(path),
	}
	if info, err := os.Stat(path); err == nil {
		meta["file_size"] = strconv.FormatInt(info.Size(), 10)
		meta["modified_at"] = info.ModTime().UTC().Format(time.RFC3339)
	}

	return &Result{Text: string(data), Metadata: meta}, nil
}
