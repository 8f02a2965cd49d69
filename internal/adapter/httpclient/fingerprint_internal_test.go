package httpclient

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/niksmo/storefront/internal/core/domain"
)

func TestFingerprint(t *testing.T) {

	t.Run("ParamOrderIndependent", func(t *testing.T) {
		a := url.Values{}
		a.Set("page", "1")
		a.Set("sortBy", "newest")

		b := url.Values{}
		b.Set("sortBy", "newest")
		b.Set("page", "1")

		assert.Equal(t,
			fingerprint("GET", "/api/products", a),
			fingerprint("GET", "/api/products", b),
		)
	})

	t.Run("MethodSeparates", func(t *testing.T) {
		assert.NotEqual(t,
			fingerprint("GET", "/api/cart", nil),
			fingerprint("POST", "/api/cart", nil),
		)
	})

	t.Run("ValuesSorted", func(t *testing.T) {
		a := url.Values{"tag": {"b", "a"}}
		b := url.Values{"tag": {"a", "b"}}
		assert.Equal(t,
			fingerprint("GET", "/api/products", a),
			fingerprint("GET", "/api/products", b),
		)
	})

	t.Run("DifferentParamsSeparate", func(t *testing.T) {
		a := url.Values{"page": {"1"}}
		b := url.Values{"page": {"2"}}
		assert.NotEqual(t,
			fingerprint("GET", "/api/products", a),
			fingerprint("GET", "/api/products", b),
		)
	})
}

func TestPendingRegistry(t *testing.T) {

	t.Run("DuplicateCancelsPrevious", func(t *testing.T) {
		r := newPendingRegistry()

		ctx1, cancel1 := context.WithCancelCause(context.Background())
		e1 := r.register("fp", cancel1)

		_, cancel2 := context.WithCancelCause(context.Background())
		e2 := r.register("fp", cancel2)

		assert.ErrorIs(t, context.Cause(ctx1), domain.ErrRequestSuperseded)

		r.settle("fp", e1)
		assert.Equal(t, 1, r.size(), "superseded settle must not evict the replacement")

		r.settle("fp", e2)
		assert.Zero(t, r.size())
	})

	t.Run("DistinctFingerprintsCoexist", func(t *testing.T) {
		r := newPendingRegistry()

		ctx1, cancel1 := context.WithCancelCause(context.Background())
		r.register("a", cancel1)
		_, cancel2 := context.WithCancelCause(context.Background())
		r.register("b", cancel2)

		assert.NoError(t, context.Cause(ctx1))
		assert.Equal(t, 2, r.size())
	})
}
