package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/niksmo/storefront/internal/core/port"
)

var _ port.Notifier = (*UIService)(nil)
var _ port.LoadingSink = (*UIService)(nil)

const (
	maxToasts    = 50
	defaultTheme = "light"
)

type ToastLevel string

const (
	ToastError   ToastLevel = "error"
	ToastSuccess ToastLevel = "success"
	ToastInfo    ToastLevel = "info"
)

type Toast struct {
	Level     ToastLevel
	Message   string
	CreatedAt time.Time
}

// UIService holds transient UI state: the toast queue, the global
// loading counter and the persisted theme. It is the pipeline's
// Notifier and LoadingSink.
type UIService struct {
	mu      sync.RWMutex
	toasts  []Toast
	loading int
	theme   string
	kv      port.KeyValue
}

func NewUI(kv port.KeyValue) *UIService {
	s := &UIService{theme: defaultTheme, kv: kv}
	if data, err := kv.Load(keyTheme); err == nil && len(data) > 0 {
		s.theme = string(data)
	}
	return s
}

func (s *UIService) ShowError(msg string)   { s.push(ToastError, msg) }
func (s *UIService) ShowSuccess(msg string) { s.push(ToastSuccess, msg) }
func (s *UIService) ShowInfo(msg string)    { s.push(ToastInfo, msg) }

func (s *UIService) push(level ToastLevel, msg string) {
	s.mu.Lock()
	s.toasts = append(s.toasts, Toast{level, msg, time.Now()})
	if len(s.toasts) > maxToasts {
		s.toasts = s.toasts[len(s.toasts)-maxToasts:]
	}
	s.mu.Unlock()

	slog.Debug("toast", "level", level, "msg", msg)
}

func (s *UIService) Toasts() []Toast {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Toast(nil), s.toasts...)
}

func (s *UIService) ClearToasts() {
	s.mu.Lock()
	s.toasts = nil
	s.mu.Unlock()
}

func (s *UIService) LoadingStart() {
	s.mu.Lock()
	s.loading++
	s.mu.Unlock()
}

func (s *UIService) LoadingDone() {
	s.mu.Lock()
	if s.loading > 0 {
		s.loading--
	}
	s.mu.Unlock()
}

// Loading reports whether any call is still holding the indicator.
func (s *UIService) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading > 0
}

func (s *UIService) Theme() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.theme
}

func (s *UIService) SetTheme(theme string) {
	const op = "UIService.SetTheme"

	s.mu.Lock()
	s.theme = theme
	s.mu.Unlock()

	if err := s.kv.Save(keyTheme, []byte(theme)); err != nil {
		slog.Error("failed to persist theme", "op", op, "err", err)
	}
}
