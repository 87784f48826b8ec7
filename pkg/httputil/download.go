package httputil

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
)

const downloadChunkSize = 64 * 1024

// Downloader streams remote media to disk in fixed-size chunks. A failed
// download leaves the partial file in place; callers own the directory
// lifecycle and must re-download from scratch rather than resume.
type Downloader struct {
	client *RetryClient
}

func NewDownloader(client *RetryClient) *Downloader {
	if client == nil {
		client = NewRetryClient(nil, DefaultRetryConfig())
	}
	return &Downloader{client: client}
}

func (d *Downloader) Fetch(ctx context.Context, url, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: %s", url, resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer func() { _ = f.Close() }()

	buf := make([]byte, downloadChunkSize)
	if _, err := io.CopyBuffer(f, resp.Body, buf); err != nil {
		return fmt.Errorf("write %s: %w", destPath, err)
	}

	return nil
}
