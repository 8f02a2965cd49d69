package httpclient

import (
	"context"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
)

type pendingEntry struct {
	cancel context.CancelCauseFunc
}

// pendingRegistry maps request fingerprints to cancellation handles.
// At most one in-flight entry per fingerprint: registering a duplicate
// cancels the previous one. Entries are removed on settlement via
// compare-and-delete, so a settling superseded call never evicts its
// replacement.
type pendingRegistry struct {
	mu sync.Mutex
	m  map[string]*pendingEntry
}

func newPendingRegistry() *pendingRegistry {
	return &pendingRegistry{m: make(map[string]*pendingEntry)}
}

func (r *pendingRegistry) register(fp string, cancel context.CancelCauseFunc) *pendingEntry {
	e := &pendingEntry{cancel}

	r.mu.Lock()
	prev := r.m[fp]
	r.m[fp] = e
	r.mu.Unlock()

	if prev != nil {
		prev.cancel(domain.ErrRequestSuperseded)
	}
	return e
}

func (r *pendingRegistry) settle(fp string, e *pendingEntry) {
	r.mu.Lock()
	if r.m[fp] == e {
		delete(r.m, fp)
	}
	r.mu.Unlock()
}

func (r *pendingRegistry) size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.m)
}
