package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

// ErrAuthRequired is returned by favorites mutations for anonymous users.
var ErrAuthRequired = fmt.Errorf("%w: sign in required", domain.ErrUnauthorized)

// SessionReader exposes the slice of session state favorites depends on.
// The auth service satisfies it.
type SessionReader interface {
	Authenticated() bool
	UserID() int
}

// FavoritesService owns the favorites namespace. The list is persisted
// per user, so switching accounts never leaks another user's favorites.
// Anonymous users see an empty list and cannot toggle.
type FavoritesService struct {
	mu  sync.RWMutex
	ids []int

	session SessionReader
	kv      port.KeyValue
}

func NewFavorites(session SessionReader, kv port.KeyValue) *FavoritesService {
	return &FavoritesService{session: session, kv: kv}
}

func favoritesKey(userID int) string {
	return keyFavorites + ":" + strconv.Itoa(userID)
}

// Load reads the signed-in user's persisted list. For anonymous users it
// resets to empty.
func (s *FavoritesService) Load() error {
	const op = "FavoritesService.Load"

	if !s.session.Authenticated() {
		s.mu.Lock()
		s.ids = nil
		s.mu.Unlock()
		return nil
	}

	data, err := s.kv.Load(favoritesKey(s.session.UserID()))
	if err != nil {
		if errors.Is(err, port.ErrNoValue) {
			s.mu.Lock()
			s.ids = nil
			s.mu.Unlock()
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var ids []int
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.ids = ids
	s.mu.Unlock()
	return nil
}

// Toggle adds the product when absent, removes it when present. Reports
// whether the product is a favorite after the call.
func (s *FavoritesService) Toggle(productID int) (bool, error) {
	const op = "FavoritesService.Toggle"

	if !s.session.Authenticated() {
		return false, fmt.Errorf("%s: %w", op, ErrAuthRequired)
	}

	s.mu.Lock()
	var now bool
	if i := slices.Index(s.ids, productID); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
	} else {
		s.ids = append(s.ids, productID)
		now = true
	}
	s.mu.Unlock()

	s.persist()
	return now, nil
}

func (s *FavoritesService) Remove(productID int) error {
	const op = "FavoritesService.Remove"

	if !s.session.Authenticated() {
		return fmt.Errorf("%s: %w", op, ErrAuthRequired)
	}

	s.mu.Lock()
	if i := slices.Index(s.ids, productID); i >= 0 {
		s.ids = slices.Delete(s.ids, i, i+1)
	}
	s.mu.Unlock()

	s.persist()
	return nil
}

func (s *FavoritesService) Clear() error {
	const op = "FavoritesService.Clear"

	if !s.session.Authenticated() {
		return fmt.Errorf("%s: %w", op, ErrAuthRequired)
	}

	s.mu.Lock()
	s.ids = nil
	s.mu.Unlock()

	if err := s.kv.Remove(favoritesKey(s.session.UserID())); err != nil {
		slog.Error("failed to clear persisted favorites", "op", op, "err", err)
	}
	return nil
}

func (s *FavoritesService) persist() {
	const op = "FavoritesService.persist"

	s.mu.RLock()
	data, err := json.Marshal(s.ids)
	s.mu.RUnlock()

	if err == nil {
		err = s.kv.Save(favoritesKey(s.session.UserID()), data)
	}
	if err != nil {
		slog.Error("failed to persist favorites", "op", op, "err", err)
	}
}

// IDs returns the favorite product ids; empty for anonymous users.
func (s *FavoritesService) IDs() []int {
	if !s.session.Authenticated() {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]int(nil), s.ids...)
}

func (s *FavoritesService) Contains(productID int) bool {
	if !s.session.Authenticated() {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.ids, productID)
}

func (s *FavoritesService) Count() int {
	if !s.session.Authenticated() {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.ids)
}
