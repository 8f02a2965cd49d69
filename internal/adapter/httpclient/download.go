package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const defaultDownloadTimeout = 30 * time.Second

// Downloader is the binary-response pipeline instance: it fetches a file
// and performs the client-side save-as flow to a destination path.
type Downloader struct {
	baseURL string
	client  *http.Client
	token   TokenSource
}

func NewDownloader(baseURL string, token TokenSource, opts ...func(*Downloader)) *Downloader {
	d := &Downloader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultDownloadTimeout},
		token:   token,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func WithDownloadTimeout(t time.Duration) func(*Downloader) {
	return func(d *Downloader) { d.client.Timeout = t }
}

// Download fetches path and writes the body to destPath. The write goes
// through a temp file and rename, so a failed download never leaves a
// truncated destination.
func (d *Downloader) Download(ctx context.Context, path, destPath string) error {
	const op = "Downloader.Download"

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if d.token != nil {
		if tok := d.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		data, _ := io.ReadAll(res.Body)
		return fmt.Errorf("%s: %w", op, &statusError{res.StatusCode, envelopeMessage(data)})
	}

	tmp, err := os.CreateTemp(filepath.Dir(destPath), ".download-*")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, res.Body); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	if err := os.Rename(tmp.Name(), destPath); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
