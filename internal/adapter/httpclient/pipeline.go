package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/retry"
)

var _ port.Gateway = (*Pipeline)(nil)

const (
	defaultTimeout       = 10 * time.Second
	defaultRetryAttempts = 3
	defaultSlowThreshold = 3 * time.Second

	loginPath = "/user/login"
)

// TokenSource yields the current bearer token, empty when anonymous.
type TokenSource func() string

// Pipeline issues outbound calls with uniform policy: bearer injection,
// duplicate-request cancellation, loading and timing instrumentation and
// status-driven recovery. It implements [port.Gateway].
type Pipeline struct {
	baseURL        string
	client         *http.Client
	token          TokenSource
	notifier       port.Notifier
	navigator      port.Navigator
	loading        port.LoadingSink
	onUnauthorized func()
	pending        *pendingRegistry
	retryAttempts  int
	backoff        retry.Backoff
	slowThreshold  time.Duration
}

type Option func(*Pipeline)

func WithTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.client.Timeout = d }
}

func WithTokenSource(ts TokenSource) Option {
	return func(p *Pipeline) { p.token = ts }
}

func WithNotifier(n port.Notifier) Option {
	return func(p *Pipeline) { p.notifier = n }
}

func WithNavigator(nav port.Navigator) Option {
	return func(p *Pipeline) { p.navigator = nav }
}

func WithLoadingSink(l port.LoadingSink) Option {
	return func(p *Pipeline) { p.loading = l }
}

// WithUnauthorizedHook installs the global session teardown invoked on
// any 401 response, before the login redirect.
func WithUnauthorizedHook(fn func()) Option {
	return func(p *Pipeline) { p.onUnauthorized = fn }
}

func WithRetryAttempts(n int) Option {
	return func(p *Pipeline) { p.retryAttempts = n }
}

// WithBackoff overrides the exponential 2^attempt second delays, mainly
// for tests.
func WithBackoff(b retry.Backoff) Option {
	return func(p *Pipeline) { p.backoff = b }
}

func WithSlowThreshold(d time.Duration) Option {
	return func(p *Pipeline) { p.slowThreshold = d }
}

func New(baseURL string, opts ...Option) *Pipeline {
	p := &Pipeline{
		baseURL:       strings.TrimRight(baseURL, "/"),
		client:        &http.Client{Timeout: defaultTimeout},
		pending:       newPendingRegistry(),
		retryAttempts: defaultRetryAttempts,
		backoff:       retry.ExponentialBackoff(time.Second),
		slowThreshold: defaultSlowThreshold,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Pipeline) Get(
	ctx context.Context, path string, query url.Values, opts ...port.RequestOption,
) ([]byte, error) {
	return p.do(ctx, http.MethodGet, path, query, nil, opts)
}

func (p *Pipeline) Post(
	ctx context.Context, path string, body any, opts ...port.RequestOption,
) ([]byte, error) {
	return p.do(ctx, http.MethodPost, path, nil, body, opts)
}

func (p *Pipeline) Put(
	ctx context.Context, path string, body any, opts ...port.RequestOption,
) ([]byte, error) {
	return p.do(ctx, http.MethodPut, path, nil, body, opts)
}

func (p *Pipeline) Delete(
	ctx context.Context, path string, opts ...port.RequestOption,
) ([]byte, error) {
	return p.do(ctx, http.MethodDelete, path, nil, nil, opts)
}

// statusError is the unclassified non-2xx outcome of a single attempt.
type statusError struct {
	status  int
	message string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("http status %d: %s", e.status, e.message)
}

func (p *Pipeline) do(
	ctx context.Context,
	method, path string,
	query url.Values,
	body any,
	opts []port.RequestOption,
) ([]byte, error) {
	const op = "Pipeline.do"
	log := slog.With("op", op)

	var cfg port.RequestConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	absURL := p.baseURL + path
	if len(query) > 0 {
		absURL += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		payload = b
	}

	reqCtx := ctx
	if !cfg.SkipDuplicateCheck {
		fp := fingerprint(method, absURL, query)
		var cancel context.CancelCauseFunc
		reqCtx, cancel = context.WithCancelCause(ctx)
		entry := p.pending.register(fp, cancel)
		defer func() {
			p.pending.settle(fp, entry)
			cancel(nil)
		}()
	}

	requestID := uuid.NewString()
	start := time.Now()

	if p.loading != nil && !cfg.SkipLoading {
		p.loading.LoadingStart()
		defer p.loading.LoadingDone()
	}

	attempts := p.retryAttempts
	if cfg.RetrySet {
		attempts = cfg.Retry
	}

	policy := retry.Config{
		MaxAttempts: attempts,
		Backoff:     p.backoff,
		ShouldRetry: func(err error) bool {
			var se *statusError
			return errors.As(err, &se) && se.status == http.StatusInternalServerError
		},
	}

	data, err := retry.DoWithResult(reqCtx, policy, func() ([]byte, error) {
		return p.attempt(reqCtx, method, absURL, payload)
	})
	if err != nil {
		return nil, p.classify(reqCtx, err, log, requestID, method, path)
	}

	duration := time.Since(start)
	log.Debug("api request",
		"id", requestID, "method", method, "path", path, "duration", duration)
	if duration > p.slowThreshold {
		log.Warn("slow api request",
			"id", requestID, "method", method, "path", path, "duration", duration)
	}
	return data, nil
}

// attempt performs a single HTTP round trip.
func (p *Pipeline) attempt(
	ctx context.Context, method, absURL string, payload []byte,
) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, absURL, reqBody)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if p.token != nil {
		if tok := p.token(); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	res, err := p.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, err
	}

	if res.StatusCode >= 200 && res.StatusCode < 300 {
		return data, nil
	}
	return nil, &statusError{res.StatusCode, envelopeMessage(data)}
}

// classify maps a settled failure onto the client error taxonomy and
// surfaces the user-visible notification.
func (p *Pipeline) classify(
	ctx context.Context, err error, log *slog.Logger, requestID, method, path string,
) error {
	if cause := context.Cause(ctx); errors.Is(cause, domain.ErrRequestSuperseded) {
		log.Debug("request superseded", "id", requestID, "method", method, "path", path)
		return domain.ErrRequestSuperseded
	}

	var se *statusError
	if errors.As(err, &se) {
		return p.classifyStatus(se, log, requestID, method, path)
	}

	log.Error("api transport failure",
		"id", requestID, "method", method, "path", path, "err", err)

	if isTimeout(err) {
		p.notify("request timed out, try again later")
		return domain.ErrTimeout
	}
	p.notify("network error, check the connection")
	return fmt.Errorf("%w: %w", domain.ErrNetwork, err)
}

func (p *Pipeline) classifyStatus(
	se *statusError, log *slog.Logger, requestID, method, path string,
) error {
	log.Warn("api error response",
		"id", requestID, "method", method, "path", path, "status", se.status)

	switch se.status {
	case http.StatusUnauthorized:
		if p.onUnauthorized != nil {
			p.onUnauthorized()
		}
		if p.navigator != nil {
			p.navigator.NavigateTo(loginPath)
		}
		p.notify("session expired, sign in again")
		if se.message != "" {
			return fmt.Errorf("%w: %s", domain.ErrUnauthorized, se.message)
		}
		return domain.ErrUnauthorized

	case http.StatusForbidden:
		p.notify("insufficient permissions for this operation")
		if se.message != "" {
			return fmt.Errorf("%w: %s", domain.ErrForbidden, se.message)
		}
		return domain.ErrForbidden

	case http.StatusNotFound:
		msg := se.message
		if msg == "" {
			msg = "requested resource does not exist"
		}
		p.notify(msg)
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)

	case http.StatusInternalServerError:
		p.notify("server error, try again later")
		if se.message != "" {
			return fmt.Errorf("%w: %s", domain.ErrServer, se.message)
		}
		return domain.ErrServer

	default:
		msg := se.message
		if msg == "" {
			msg = fmt.Sprintf("request failed (%d)", se.status)
		}
		p.notify(msg)
		return &domain.APIError{Status: se.status, Message: msg}
	}
}

func (p *Pipeline) notify(msg string) {
	if p.notifier != nil {
		p.notifier.ShowError(msg)
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// envelopeMessage extracts {message} from an error body, empty when the
// body is not the expected envelope.
func envelopeMessage(data []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		return ""
	}
	return env.Message
}
