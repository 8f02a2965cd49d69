package httpclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/niksmo/storefront/internal/adapter/httpclient"
	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
	"github.com/niksmo/storefront/pkg/retry"
)

type fakeNotifier struct {
	mu     sync.Mutex
	errors []string
}

func (f *fakeNotifier) ShowError(msg string) {
	f.mu.Lock()
	f.errors = append(f.errors, msg)
	f.mu.Unlock()
}

func (f *fakeNotifier) ShowSuccess(string) {}
func (f *fakeNotifier) ShowInfo(string)    {}

func (f *fakeNotifier) errorCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.errors)
}

type fakeNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (f *fakeNavigator) NavigateTo(path string) {
	f.mu.Lock()
	f.paths = append(f.paths, path)
	f.mu.Unlock()
}

type fakeLoading struct {
	starts atomic.Int32
	dones  atomic.Int32
}

func (f *fakeLoading) LoadingStart() { f.starts.Add(1) }
func (f *fakeLoading) LoadingDone()  { f.dones.Add(1) }

func fastOpts(opts ...httpclient.Option) []httpclient.Option {
	base := []httpclient.Option{
		httpclient.WithBackoff(retry.LinearBackoff(time.Millisecond)),
	}
	return append(base, opts...)
}

func TestPipelineSuccess(t *testing.T) {
	var gotAuth, gotAccept string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotAccept = r.Header.Get("Accept")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	p := httpclient.New(srv.URL, fastOpts(
		httpclient.WithTokenSource(func() string { return "tok123" }),
	)...)

	data, err := p.Get(context.Background(), "/api/products", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))
	assert.Equal(t, "Bearer tok123", gotAuth)
	assert.Equal(t, "application/json", gotAccept)
}

func TestPipelineAnonymousHasNoBearer(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	p := httpclient.New(srv.URL, fastOpts(
		httpclient.WithTokenSource(func() string { return "" }),
	)...)

	_, err := p.Get(context.Background(), "/api/products", nil)
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestPipelineUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"message":"token expired"}`))
	}))
	defer srv.Close()

	notifier := &fakeNotifier{}
	navigator := &fakeNavigator{}
	var tornDown atomic.Bool

	p := httpclient.New(srv.URL, fastOpts(
		httpclient.WithNotifier(notifier),
		httpclient.WithNavigator(navigator),
		httpclient.WithUnauthorizedHook(func() { tornDown.Store(true) }),
	)...)

	_, err := p.Get(context.Background(), "/api/user/orders", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	assert.ErrorContains(t, err, "token expired")

	assert.True(t, tornDown.Load())
	assert.Equal(t, []string{"/user/login"}, navigator.paths)
	assert.Equal(t, 1, notifier.errorCount())
}

func TestPipelineForbidden(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"message":"blocked"}`))
	}))
	defer srv.Close()

	p := httpclient.New(srv.URL, fastOpts()...)

	_, err := p.Post(context.Background(), "/api/auth/login", map[string]string{"email": "x"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorContains(t, err, "blocked")
}

func TestPipelineNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"product not found"}`))
	}))
	defer srv.Close()

	notifier := &fakeNotifier{}
	p := httpclient.New(srv.URL, fastOpts(httpclient.WithNotifier(notifier))...)

	_, err := p.Get(context.Background(), "/api/products/999", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, []string{"product not found"}, notifier.errors)
}

func TestPipelineServerErrorRetries(t *testing.T) {

	t.Run("ExhaustsAttempts", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"message":"boom"}`))
		}))
		defer srv.Close()

		p := httpclient.New(srv.URL, fastOpts(httpclient.WithRetryAttempts(3))...)

		_, err := p.Get(context.Background(), "/api/products", nil)
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrServer)
		assert.Equal(t, int32(4), calls.Load(), "initial call plus three re-attempts")
	})

	t.Run("RecoversMidway", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1) < 3 {
				w.WriteHeader(http.StatusInternalServerError)
				return
			}
			w.Write([]byte(`{"ok":true}`))
		}))
		defer srv.Close()

		p := httpclient.New(srv.URL, fastOpts(httpclient.WithRetryAttempts(3))...)

		data, err := p.Get(context.Background(), "/api/products", nil)
		require.NoError(t, err)
		assert.JSONEq(t, `{"ok":true}`, string(data))
		assert.Equal(t, int32(3), calls.Load())
	})

	t.Run("PerCallOverride", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer srv.Close()

		p := httpclient.New(srv.URL, fastOpts(httpclient.WithRetryAttempts(3))...)

		_, err := p.Get(context.Background(), "/api/products", nil, port.WithRetry(0))
		require.Error(t, err)
		assert.Equal(t, int32(1), calls.Load())
	})

	t.Run("ClientErrorNotRetried", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"message":"bad payload"}`))
		}))
		defer srv.Close()

		p := httpclient.New(srv.URL, fastOpts(httpclient.WithRetryAttempts(3))...)

		_, err := p.Post(context.Background(), "/api/orders", map[string]int{"x": 1})
		require.Error(t, err)

		var apiErr *domain.APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.Status)
		assert.Equal(t, int32(1), calls.Load())
	})
}

func TestPipelineDuplicateSuperseded(t *testing.T) {
	var calls atomic.Int32
	firstArrived := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(firstArrived)
			<-r.Context().Done()
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	p := httpclient.New(srv.URL, fastOpts()...)

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Get(context.Background(), "/api/products", nil)
		errCh <- err
	}()

	<-firstArrived
	data, err := p.Get(context.Background(), "/api/products", nil)
	require.NoError(t, err)
	assert.JSONEq(t, `{"ok":true}`, string(data))

	firstErr := <-errCh
	require.Error(t, firstErr)
	assert.ErrorIs(t, firstErr, domain.ErrRequestSuperseded)
}

func TestPipelineSkipDuplicateCheck(t *testing.T) {
	var calls atomic.Int32
	firstArrived := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			close(firstArrived)
			<-release
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	p := httpclient.New(srv.URL, fastOpts()...)

	errCh := make(chan error, 1)
	go func() {
		_, err := p.Get(context.Background(), "/api/products", nil)
		errCh <- err
	}()

	<-firstArrived
	_, err := p.Get(context.Background(), "/api/products", nil, port.SkipDuplicateCheck())
	require.NoError(t, err)

	close(release)
	assert.NoError(t, <-errCh, "first call must survive an opted-out duplicate")
}

func TestPipelineTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	notifier := &fakeNotifier{}
	p := httpclient.New(srv.URL, fastOpts(
		httpclient.WithTimeout(50*time.Millisecond),
		httpclient.WithNotifier(notifier),
	)...)

	_, err := p.Get(context.Background(), "/api/products", nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrTimeout)
	assert.ErrorIs(t, err, domain.ErrNetwork, "timeout is a network failure")
	assert.Equal(t, 1, notifier.errorCount())
}

func TestPipelineLoadingIndicator(t *testing.T) {

	t.Run("PairedOnSuccessAndFailure", func(t *testing.T) {
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if calls.Add(1)%2 == 0 {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		loading := &fakeLoading{}
		p := httpclient.New(srv.URL, fastOpts(httpclient.WithLoadingSink(loading))...)

		for i := 0; i < 4; i++ {
			p.Get(context.Background(), "/api/products", nil, port.SkipDuplicateCheck())
		}

		assert.Equal(t, int32(4), loading.starts.Load())
		assert.Equal(t, loading.starts.Load(), loading.dones.Load())
	})

	t.Run("SkipLoading", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		loading := &fakeLoading{}
		p := httpclient.New(srv.URL, fastOpts(httpclient.WithLoadingSink(loading))...)

		_, err := p.Get(context.Background(), "/api/products", nil, port.SkipLoading())
		require.NoError(t, err)
		assert.Zero(t, loading.starts.Load())
	})
}
