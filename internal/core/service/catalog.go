package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strconv"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

// Sort orders accepted by the catalog.
const (
	SortNewest    = "newest"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortRating    = "rating"
	SortDiscount  = "discount"
)

type (
	CatalogFilter struct {
		CategoryID int
		PriceMin   float64
		PriceMax   float64
		SortBy     string
	}

	Pagination struct {
		Page  int `json:"page"`
		Limit int `json:"limit"`
		Total int `json:"total"`
		Pages int `json:"pages"`
	}

	productList struct {
		Data       []domain.Product `json:"data"`
		Pagination Pagination       `json:"pagination"`
	}
)

// CatalogService owns the products namespace: the in-memory per-load
// catalog cache, the category list and pure derived views over them.
type CatalogService struct {
	mu         sync.RWMutex
	products   []domain.Product
	categories []domain.Category
	current    *domain.Product
	pagination Pagination
	filter     CatalogFilter

	gw port.Gateway
}

func NewCatalog(gw port.Gateway) *CatalogService {
	return &CatalogService{
		gw:     gw,
		filter: CatalogFilter{PriceMax: 100000, SortBy: SortNewest},
	}
}

// LoadProducts fetches one catalog page and replaces the cache.
func (s *CatalogService) LoadProducts(ctx context.Context, page, limit int) error {
	const op = "CatalogService.LoadProducts"

	query := url.Values{}
	if page > 0 {
		query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}

	s.mu.RLock()
	f := s.filter
	s.mu.RUnlock()
	if f.CategoryID != 0 {
		query.Set("category", strconv.Itoa(f.CategoryID))
	}
	if f.SortBy != "" {
		query.Set("sortBy", f.SortBy)
	}

	data, err := s.gw.Get(ctx, "/api/products", query)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var list productList
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.products = list.Data
	s.pagination = list.Pagination
	s.mu.Unlock()
	return nil
}

func (s *CatalogService) LoadCategories(ctx context.Context) error {
	const op = "CatalogService.LoadCategories"

	data, err := s.gw.Get(ctx, "/api/categories", nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var cats []domain.Category
	if err := json.Unmarshal(data, &cats); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.categories = cats
	s.mu.Unlock()
	return nil
}

// LoadProduct fetches one product and makes it current.
func (s *CatalogService) LoadProduct(ctx context.Context, id int) (domain.Product, error) {
	const op = "CatalogService.LoadProduct"

	data, err := s.gw.Get(ctx, "/api/products/"+strconv.Itoa(id), nil)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	var p domain.Product
	if err := json.Unmarshal(data, &p); err != nil {
		return domain.Product{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.current = &p
	s.mu.Unlock()
	return p, nil
}

func (s *CatalogService) SetFilter(f CatalogFilter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

func (s *CatalogService) ResetFilter() {
	s.mu.Lock()
	s.filter = CatalogFilter{PriceMax: 100000, SortBy: SortNewest}
	s.mu.Unlock()
}

func (s *CatalogService) Products() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Product(nil), s.products...)
}

func (s *CatalogService) Categories() []domain.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Category(nil), s.categories...)
}

func (s *CatalogService) Current() (domain.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Product{}, false
	}
	return *s.current, true
}

func (s *CatalogService) PaginationInfo() Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}

// Filtered applies the current filter and sort to the cached page.
func (s *CatalogService) Filtered() []domain.Product {
	s.mu.RLock()
	f := s.filter
	ps := append([]domain.Product(nil), s.products...)
	s.mu.RUnlock()

	out := ps[:0]
	for _, p := range ps {
		if f.CategoryID != 0 && p.CategoryID != f.CategoryID {
			continue
		}
		if p.Price < f.PriceMin {
			continue
		}
		if f.PriceMax > 0 && p.Price > f.PriceMax {
			continue
		}
		out = append(out, p)
	}

	switch f.SortBy {
	case SortPriceLow:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmpFloat(a.Price, b.Price)
		})
	case SortPriceHigh:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmpFloat(b.Price, a.Price)
		})
	case SortRating:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return cmpFloat(b.Rating, a.Rating)
		})
	case SortDiscount:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return b.DiscountPercent() - a.DiscountPercent()
		})
	default:
		slices.SortStableFunc(out, func(a, b domain.Product) int {
			return b.ID - a.ID
		})
	}
	return out
}

// OnSale returns the products carrying a crossed-out price.
func (s *CatalogService) OnSale() []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Product
	for _, p := range s.products {
		if p.OnSale() {
			out = append(out, p)
		}
	}
	return out
}

// Tagged returns products carrying the tag, e.g. "new" or "hot".
func (s *CatalogService) Tagged(tag string) []domain.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []domain.Product
	for _, p := range s.products {
		if slices.Contains(p.Tags, tag) {
			out = append(out, p)
		}
	}
	return out
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
