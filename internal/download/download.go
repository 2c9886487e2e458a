// Package download saves a resolved stream to disk.
// Output paths are validated against directory traversal and partial files
// never survive a failed or cancelled transfer.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"ytresolve/internal/httputil"
	"ytresolve/internal/media"
)

// Options controls a download.
type Options struct {
	Dir      string
	Client   *http.Client // nil uses httputil.NewClient without its overall timeout
	Progress io.Writer    // nil writes the progress bar to stderr
}

// Download fetches stream into opts.Dir and returns the written path.
func Download(ctx context.Context, stream *media.Stream, title string, opts Options) (string, error) {
	absDir, err := filepath.Abs(opts.Dir)
	if err != nil {
		return "", fmt.Errorf("resolving output directory: %w", err)
	}
	if err := os.MkdirAll(absDir, 0755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}

	outputPath, err := httputil.SafeDownloadPath(absDir, Filename(stream, title))
	if err != nil {
		return "", fmt.Errorf("invalid output path: %w", err)
	}

	client := opts.Client
	if client == nil {
		client = httputil.NewClient()
		client.Timeout = 0 // large files; ctx bounds the transfer
	}
	progress := opts.Progress
	if progress == nil {
		progress = os.Stderr
	}

	req, err := httputil.NewRequest(ctx, http.MethodGet, stream.URL, nil)
	if err != nil {
		return "", err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("requesting stream: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected status %d fetching stream", resp.StatusCode)
	}

	partPath := outputPath + ".part"
	f, err := os.OpenFile(partPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("creating output file: %w", err)
	}

	bar := progressbar.NewOptions64(resp.ContentLength,
		progressbar.OptionSetWriter(progress),
		progressbar.OptionSetDescription(filepath.Base(outputPath)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionFullWidth(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(progress) }),
	)

	_, copyErr := io.Copy(io.MultiWriter(f, bar), resp.Body)
	closeErr := f.Close()
	if copyErr != nil || closeErr != nil {
		os.Remove(partPath)
		if copyErr != nil {
			return "", fmt.Errorf("downloading stream: %w", copyErr)
		}
		return "", fmt.Errorf("closing output file: %w", closeErr)
	}
	bar.Finish()

	if err := os.Rename(partPath, outputPath); err != nil {
		os.Remove(partPath)
		return "", fmt.Errorf("finalizing download: %w", err)
	}
	return outputPath, nil
}

// Filename derives the output file name from the title, itag and container.
func Filename(stream *media.Stream, title string) string {
	if strings.TrimSpace(title) == "" {
		title = stream.VideoID
	}
	return httputil.SanitizeFilename(fmt.Sprintf("%s [%d].%s", title, stream.Itag, extension(stream.MimeType)))
}

func extension(mimeType string) string {
	base, _, _ := strings.Cut(mimeType, ";")
	switch strings.TrimSpace(base) {
	case "audio/mp4":
		return "m4a"
	case "audio/webm":
		return "weba"
	case "video/webm":
		return "webm"
	case "video/3gpp":
		return "3gp"
	default:
		return "mp4"
	}
}
