package extract

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"code.sajari.com/docconv"
)

const maxArticleBytes = 10 << 20 // 10 MB

// Web fetches an http(s) URL and extracts the page text with docconv,
// dropping scripts, styles and markup.
type Web struct {
	client *http.Client
}

func NewWeb() *Web {
	return &Web{client: &http.Client{Timeout: 30 * time.Second}}
}

func (e *Web) Extract(ctx context.Context, rawURL string) (*Result, error) {
	u, err := url.Parse(rawURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("not an absolute http(s) url: %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: unexpected status %d", rawURL, resp.StatusCode)
	}

	body := io.LimitReader(resp.Body, maxArticleBytes)

	// docconv dispatches on the exact media type, so "text/html;
	// charset=utf-8" has to be stripped down to "text/html" first.
	mediaType, _, mtErr := mime.ParseMediaType(resp.Header.Get("Content-Type"))
	if mtErr != nil || mediaType == "" {
		mediaType = "text/html"
	}

	res, err := docconv.Convert(body, mediaType, false)
	if err != nil {
		return nil, fmt.Errorf("extract article from %s: %w", rawURL, err)
	}
	if strings.TrimSpace(res.Body) == "" {
		return nil, fmt.Errorf("no article text extracted from %s", rawURL)
	}

	meta := map[string]string{
		"url": rawURL,
	}
	if title := res.Meta["title"]; title != "" {
		meta["title"] = title
	}

	return &Result{Text: res.Body, Metadata: meta}, nil
}
