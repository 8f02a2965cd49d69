package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

const (
	maxRecentSearches = 10
	minSuggestionLen  = 2
	maxSuggestions    = 8
)

// SearchService owns the search namespace: remote keyword search, the
// persisted recent-searches list and local suggestions over the cached
// catalog.
type SearchService struct {
	mu      sync.RWMutex
	results []domain.Product
	recent  []string

	gw      port.Gateway
	kv      port.KeyValue
	catalog *CatalogService
}

func NewSearch(gw port.Gateway, kv port.KeyValue, catalog *CatalogService) *SearchService {
	return &SearchService{gw: gw, kv: kv, catalog: catalog}
}

// Search runs a keyword query and records it in the recent list.
func (s *SearchService) Search(ctx context.Context, keyword string) ([]domain.Product, error) {
	const op = "SearchService.Search"

	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return nil, fmt.Errorf("%s: %w: empty keyword", op, domain.ErrValidation)
	}

	query := url.Values{}
	query.Set("q", keyword)

	data, err := s.gw.Get(ctx, "/api/products/search", query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var res struct {
		Data  []domain.Product `json:"data"`
		Total int              `json:"total"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.results = res.Data
	s.mu.Unlock()

	s.record(keyword)
	return res.Data, nil
}

// record moves the keyword to the front of the recent list, deduplicated
// and capped.
func (s *SearchService) record(keyword string) {
	s.mu.Lock()
	recent := make([]string, 0, maxRecentSearches)
	recent = append(recent, keyword)
	for _, k := range s.recent {
		if strings.EqualFold(k, keyword) {
			continue
		}
		recent = append(recent, k)
		if len(recent) == maxRecentSearches {
			break
		}
	}
	s.recent = recent
	s.mu.Unlock()

	s.persist()
}

// Suggestions matches the cached catalog by name prefix or substring.
// Queries shorter than two characters return nothing.
func (s *SearchService) Suggestions(prefix string) []string {
	prefix = strings.TrimSpace(prefix)
	if len(prefix) < minSuggestionLen {
		return nil
	}

	lower := strings.ToLower(prefix)
	var out []string
	for _, p := range s.catalog.Products() {
		if strings.Contains(strings.ToLower(p.Name), lower) {
			out = append(out, p.Name)
			if len(out) == maxSuggestions {
				break
			}
		}
	}
	return out
}

func (s *SearchService) LoadRecent() error {
	const op = "SearchService.LoadRecent"

	data, err := s.kv.Load(keyRecentSearches)
	if err != nil {
		if errors.Is(err, port.ErrNoValue) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var recent []string
	if err := json.Unmarshal(data, &recent); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if len(recent) > maxRecentSearches {
		recent = recent[:maxRecentSearches]
	}

	s.mu.Lock()
	s.recent = recent
	s.mu.Unlock()
	return nil
}

func (s *SearchService) ClearRecent() {
	const op = "SearchService.ClearRecent"

	s.mu.Lock()
	s.recent = nil
	s.mu.Unlock()

	if err := s.kv.Remove(keyRecentSearches); err != nil {
		slog.Error("failed to clear recent searches", "op", op, "err", err)
	}
}

func (s *SearchService) RemoveRecent(keyword string) {
	s.mu.Lock()
	for i, k := range s.recent {
		if strings.EqualFold(k, keyword) {
			s.recent = append(s.recent[:i], s.recent[i+1:]...)
			break
		}
	}
	s.mu.Unlock()

	s.persist()
}

func (s *SearchService) persist() {
	const op = "SearchService.persist"

	s.mu.RLock()
	data, err := json.Marshal(s.recent)
	s.mu.RUnlock()

	if err == nil {
		err = s.kv.Save(keyRecentSearches, data)
	}
	if err != nil {
		slog.Error("failed to persist recent searches", "op", op, "err", err)
	}
}

func (s *SearchService) Results() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.results...)
}

func (s *SearchService) Recent() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.recent...)
}
