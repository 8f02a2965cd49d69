package port

import (
	"context"
	"errors"
	"io"
	"net/url"
)

// RequestConfig carries per-call pipeline overrides.
type RequestConfig struct {
	Retry              int
	RetrySet           bool
	SkipDuplicateCheck bool
	SkipLoading        bool
}

type RequestOption func(*RequestConfig)

// WithRetry overrides the configured re-attempt count for HTTP 500.
func WithRetry(attempts int) RequestOption {
	return func(c *RequestConfig) {
		c.Retry = attempts
		c.RetrySet = true
	}
}

func SkipDuplicateCheck() RequestOption {
	return func(c *RequestConfig) { c.SkipDuplicateCheck = true }
}

func SkipLoading() RequestOption {
	return func(c *RequestConfig) { c.SkipLoading = true }
}

// Gateway is the outbound request pipeline as the store sees it: uniform
// policy (auth, dedupe, retry, classification) applied to every call,
// raw JSON bodies returned for the caller to decode.
type Gateway interface {
	Get(ctx context.Context, path string, query url.Values, opts ...RequestOption) ([]byte, error)
	Post(ctx context.Context, path string, body any, opts ...RequestOption) ([]byte, error)
	Put(ctx context.Context, path string, body any, opts ...RequestOption) ([]byte, error)
	Delete(ctx context.Context, path string, opts ...RequestOption) ([]byte, error)
}

// ProgressFunc receives upload progress in whole percent.
type ProgressFunc func(percent int)

// Uploader is the file-upload pipeline instance: multipart bodies, a
// longer timeout and per-call progress instead of the global indicator.
type Uploader interface {
	Upload(ctx context.Context, path, filename string, src io.Reader, onProgress ProgressFunc) ([]byte, error)
}

// ErrNoValue is returned by KeyValue.Load when the key was never saved.
var ErrNoValue = errors.New("no value for key")

// KeyValue is the persistence adapter behind every persisted store slice.
// Each namespace owns a disjoint key; values are opaque bytes.
type KeyValue interface {
	Load(key string) ([]byte, error)
	Save(key string, value []byte) error
	Remove(key string) error
}

// Notifier is the user-visible toast surface.
type Notifier interface {
	ShowError(msg string)
	ShowSuccess(msg string)
	ShowInfo(msg string)
}

// Navigator performs client-side route changes, e.g. the forced redirect
// to the login page after a 401.
type Navigator interface {
	NavigateTo(path string)
}

// LoadingSink receives the global loading indicator increments. The
// pipeline guarantees one paired Start/Done per call.
type LoadingSink interface {
	LoadingStart()
	LoadingDone()
}
