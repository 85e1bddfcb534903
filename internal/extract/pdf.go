package extract

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"code.sajari.com/docconv"
)

// PDF extracts page text from a local PDF file via docconv (pdftotext under
// the hood). Image-only PDFs with no extractable text are an error; OCR is
// out of scope.
type PDF struct{}

func NewPDF() *PDF { return &PDF{} }

func (e *PDF) Extract(_ context.Context, path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}
	defer f.Close()

	res, err := docconv.Convert(f, "application/pdf", false)
	if err != nil {
		return nil, fmt.Errorf("convert pdf: %w", err)
	}
	if strings.TrimSpace(res.Body) == "" {
		return nil, fmt.Errorf("no extractable text in %s", filepath.Base(path))
	}

	meta := map[string]string{
		"filename": filepath.Base(path),
	}
	if author := res.Meta["Author"]; author != "" {
		meta["author"] = author
	}
	if title := res.Meta["Title"]; title != "" {
		meta["title"] = title
	}
	if pages := res.Meta["Pages"]; pages != "" {
		meta["page_count"] = pages
	}

	return &Result{Text: res.Body, Metadata: meta}, nil
}
