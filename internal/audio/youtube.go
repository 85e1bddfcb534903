package audio

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// youtubeHosts is the fixed allow-list of hostnames treated as YouTube.
var youtubeHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"youtu.be":          true,
	"music.youtube.com": true,
}

// IsYouTubeURL reports whether raw parses as a URL whose host is on the
// YouTube allow-list.
func IsYouTubeURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	return youtubeHosts[strings.ToLower(u.Host)]
}

// DownloadError is fatal to a YouTube ingestion: without audio there is
// nothing to transcribe.
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("audio download failed for %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Downloader fetches best-available audio from a YouTube URL and transcodes
// it to mp3 via the yt-dlp executable.
type Downloader struct {
	executable string
	dir        string
}

func NewDownloader(executable, dir string) *Downloader {
	if executable == "" {
		executable = "yt-dlp"
	}
	return &Downloader{executable: executable, dir: dir}
}

// Download runs yt-dlp and returns the path of the resulting mp3.
func (d *Downloader) Download(ctx context.Context, youtubeURL string) (string, error) {
	if !IsYouTubeURL(youtubeURL) {
		return "", &DownloadError{URL: youtubeURL, Err: fmt.Errorf("not a youtube url")}
	}

	if err := os.MkdirAll(d.dir, 0o750); err != nil {
		return "", &DownloadError{URL: youtubeURL, Err: err}
	}

	outputTemplate := filepath.Join(d.dir, "%(title)s.%(ext)s")
	cmd := exec.CommandContext(ctx, d.executable,
		"--format", "bestaudio/best",
		"--extract-audio",
		"--audio-format", "mp3",
		"--audio-quality", "192K",
		"--output", outputTemplate,
		"--no-playlist",
		"--restrict-filenames",
		"--quiet",
		"--print", "after_move:filepath",
		youtubeURL,
	)

	slog.InfoContext(ctx, "starting audio download", "url", youtubeURL)

	out, err := cmd.Output()
	if err != nil {
		return "", &DownloadError{URL: youtubeURL, Err: err}
	}

	// yt-dlp prints the final path of the transcoded file; fall back to the
	// newest mp3 in the download directory if the print came back empty.
	path := strings.TrimSpace(string(out))
	if path != "" {
		if _, statErr := os.Stat(path); statErr == nil {
			slog.InfoContext(ctx, "audio downloaded", "path", path)
			return path, nil
		}
	}

	if newest := d.newestMP3(); newest != "" {
		slog.InfoContext(ctx, "audio downloaded", "path", newest)
		return newest, nil
	}

	return "", &DownloadError{URL: youtubeURL, Err: fmt.Errorf("downloaded file not found")}
}

func (d *Downloader) newestMP3() string {
	matches, err := filepath.Glob(filepath.Join(d.dir, "*.mp3"))
	if err != nil || len(matches) == 0 {
		return ""
	}
	newest := ""
	var newestMod int64
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); newest == "" || mod > newestMod {
			newest = m
			newestMod = mod
		}
	}
	return newest
}

// Cleanup removes a downloaded file. Failures are logged, never escalated.
func (d *Downloader) Cleanup(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to clean up downloaded audio", "path", path, "error", err)
	}
}
