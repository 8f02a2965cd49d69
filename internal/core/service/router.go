package service

import (
	"log/slog"
	"sync"

	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.Navigator = (*RouterService)(nil)

const maxHistory = 50

// RouterService tracks the current client-side route. It is the
// pipeline's Navigator, so the forced login redirect after a 401 lands
// here.
type RouterService struct {
	mu      sync.RWMutex
	current string
	history []string
}

func NewRouter() *RouterService {
	return &RouterService{current: "/"}
}

func (s *RouterService) NavigateTo(path string) {
	s.mu.Lock()
	if path == s.current {
		s.mu.Unlock()
		return
	}
	s.history = append(s.history, s.current)
	if len(s.history) > maxHistory {
		s.history = s.history[len(s.history)-maxHistory:]
	}
	s.current = path
	s.mu.Unlock()

	slog.Debug("navigate", "path", path)
}

// Back pops the previous route, staying put when the history is empty.
func (s *RouterService) Back() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.history) == 0 {
		return s.current
	}
	s.current = s.history[len(s.history)-1]
	s.history = s.history[:len(s.history)-1]
	return s.current
}

func (s *RouterService) Current() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}
