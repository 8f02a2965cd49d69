package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.Uploader = (*Uploader)(nil)

const defaultUploadTimeout = 60 * time.Second

// Uploader is the file-upload pipeline instance: multipart encoding, a
// longer timeout and a caller-supplied progress callback instead of the
// global loading indicator.
type Uploader struct {
	baseURL string
	client  *http.Client
	token   TokenSource
}

func NewUploader(baseURL string, token TokenSource, opts ...func(*Uploader)) *Uploader {
	u := &Uploader{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: defaultUploadTimeout},
		token:   token,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

func WithUploadTimeout(d time.Duration) func(*Uploader) {
	return func(u *Uploader) { u.client.Timeout = d }
}

// Upload sends the named file as a multipart form field "file".
func (u *Uploader) Upload(
	ctx context.Context, path, filename string, src io.Reader, onProgress port.ProgressFunc,
) ([]byte, error) {
	const op = "Uploader.Upload"

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if _, err := io.Copy(fw, src); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var body io.Reader = &buf
	if onProgress != nil {
		body = &progressReader{r: &buf, total: int64(buf.Len()), fn: onProgress}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	if u.token != nil {
		if tok := u.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}
	res, err := u.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		slog.Warn("upload failed", "op", op, "status", res.StatusCode)
		return nil, &statusError{res.StatusCode, envelopeMessage(data)}
	}
	return data, nil
}

type progressReader struct {
	r     io.Reader
	total int64
	read  int64
	last  int
	fn    port.ProgressFunc
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.total > 0 {
		pct := int(p.read * 100 / p.total)
		if pct != p.last {
			p.last = pct
			p.fn(pct)
		}
	}
	return n, err
}
