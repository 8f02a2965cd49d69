package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

// NotificationsService mirrors the user's server-side notification feed
// and keeps the unread count in step with every mutation.
type NotificationsService struct {
	mu    sync.RWMutex
	items []domain.Notification

	gw port.Gateway
}

func NewNotifications(gw port.Gateway) *NotificationsService {
	return &NotificationsService{gw: gw}
}

func (s *NotificationsService) Fetch(ctx context.Context) error {
	const op = "NotificationsService.Fetch"

	data, err := s.gw.Get(ctx, "/api/notifications", nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var items []domain.Notification
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

func (s *NotificationsService) MarkRead(ctx context.Context, id int) error {
	const op = "NotificationsService.MarkRead"

	_, err := s.gw.Put(ctx, "/api/notifications/"+strconv.Itoa(id)+"/read", nil, port.SkipLoading())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i].Read = true
			break
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *NotificationsService) MarkAllRead(ctx context.Context) error {
	const op = "NotificationsService.MarkAllRead"

	_, err := s.gw.Put(ctx, "/api/notifications/read-all", nil, port.SkipLoading())
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	for i := range s.items {
		s.items[i].Read = true
	}
	s.mu.Unlock()
	return nil
}

func (s *NotificationsService) Delete(ctx context.Context, id int) error {
	const op = "NotificationsService.Delete"

	_, err := s.gw.Delete(ctx, "/api/notifications/"+strconv.Itoa(id))
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			break
		}
	}
	s.mu.Unlock()
	return nil
}

func (s *NotificationsService) All() []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Notification(nil), s.items...)
}

func (s *NotificationsService) UnreadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	for _, it := range s.items {
		if !it.Read {
			n++
		}
	}
	return n
}

// Recent returns at most n notifications, newest first assuming the feed
// arrives newest first.
func (s *NotificationsService) Recent(n int) []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if n > len(s.items) {
		n = len(s.items)
	}
	return append([]domain.Notification(nil), s.items[:n]...)
}

func (s *NotificationsService) ByType(typ string) []domain.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Notification
	for _, it := range s.items {
		if it.Type == typ {
			out = append(out, it)
		}
	}
	return out
}
