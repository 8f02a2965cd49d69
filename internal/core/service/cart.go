package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

// ShippingRule prices delivery for the whole cart: a flat fee, waived
// once the subtotal reaches the free threshold, reduced when the cart is
// small enough for convenience-store pickup.
type ShippingRule struct {
	FlatFee             float64
	ConvenienceFee      float64
	FreeThreshold       float64
	ConvenienceMaxItems int
}

func DefaultShippingRule() ShippingRule {
	return ShippingRule{
		FlatFee:             100,
		ConvenienceFee:      60,
		FreeThreshold:       990,
		ConvenienceMaxItems: 5,
	}
}

// CartService owns the cart namespace. Lines are keyed by the variant
// key, so the same product with the same option selection always lands
// on one line. Every mutation persists.
type CartService struct {
	mu    sync.RWMutex
	items []domain.CartItem
	open  bool

	gw   port.Gateway
	kv   port.KeyValue
	rule ShippingRule
}

func NewCart(gw port.Gateway, kv port.KeyValue, rule ShippingRule) *CartService {
	return &CartService{gw: gw, kv: kv, rule: rule}
}

// Add coalesces the item into an existing line with the same variant key
// or appends a new line. Zero quantity counts as one.
func (s *CartService) Add(item domain.CartItem) {
	if item.Quantity <= 0 {
		item.Quantity = 1
	}

	s.mu.Lock()
	key := item.Key()
	found := false
	for i := range s.items {
		if s.items[i].Key() == key {
			s.items[i].Quantity += item.Quantity
			found = true
			break
		}
	}
	if !found {
		s.items = append(s.items, item)
	}
	s.mu.Unlock()

	s.persist()
}

// AddProduct builds the cart line for a catalog product, using the
// variant price and specs when a variant is selected.
func (s *CartService) AddProduct(p domain.Product, variantID string, qty int) {
	item := domain.CartItem{
		ProductID: p.ID,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  qty,
	}
	if v, ok := p.VariantByID(variantID); ok {
		item.VariantID = v.ID
		item.Specs = v.Specs
		if v.Price > 0 {
			item.UnitPrice = v.Price
		}
	}
	s.Add(item)
}

// SetQuantity updates a line; zero or negative removes it entirely.
func (s *CartService) SetQuantity(key string, qty int) {
	s.mu.Lock()
	for i := range s.items {
		if s.items[i].Key() != key {
			continue
		}
		if qty <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		} else {
			s.items[i].Quantity = qty
		}
		break
	}
	s.mu.Unlock()

	s.persist()
}

func (s *CartService) Remove(key string) {
	s.SetQuantity(key, 0)
}

func (s *CartService) Clear() {
	const op = "CartService.Clear"

	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	if err := s.kv.Remove(keyCart); err != nil {
		slog.Error("failed to clear persisted cart", "op", op, "err", err)
	}
}

// Load replaces the in-memory lines with the persisted ones.
func (s *CartService) Load() error {
	const op = "CartService.Load"

	data, err := s.kv.Load(keyCart)
	if err != nil {
		if errors.Is(err, port.ErrNoValue) {
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	var items []domain.CartItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
	return nil
}

// PushRemote mirrors the local lines to the server cart for the signed-in
// user. Best effort: a failed line is logged and skipped.
func (s *CartService) PushRemote(ctx context.Context) {
	const op = "CartService.PushRemote"
	log := slog.With("op", op)

	for _, item := range s.Items() {
		body := map[string]any{
			"product_id": item.ProductID,
			"variant_id": item.VariantID,
			"specs":      item.Specs,
			"quantity":   item.Quantity,
		}
		if _, err := s.gw.Post(ctx, "/api/cart", body, port.SkipLoading()); err != nil {
			log.Warn("failed to push cart line", "key", item.Key(), "err", err)
		}
	}
}

// SyncLineRemote mirrors one line to the server cart: an update with the
// current quantity while the line exists locally, a delete once it is
// gone. Best effort, like PushRemote.
func (s *CartService) SyncLineRemote(ctx context.Context, key string) {
	const op = "CartService.SyncLineRemote"

	s.mu.RLock()
	qty := 0
	for _, it := range s.items {
		if it.Key() == key {
			qty = it.Quantity
			break
		}
	}
	s.mu.RUnlock()

	path := "/api/cart/" + url.PathEscape(key)
	var err error
	if qty > 0 {
		_, err = s.gw.Put(ctx, path, map[string]int{"quantity": qty}, port.SkipLoading())
	} else {
		_, err = s.gw.Delete(ctx, path, port.SkipLoading())
	}
	if err != nil {
		slog.Warn("failed to sync cart line", "op", op, "key", key, "err", err)
	}
}

func (s *CartService) persist() {
	const op = "CartService.persist"

	s.mu.RLock()
	data, err := json.Marshal(s.items)
	s.mu.RUnlock()

	if err == nil {
		err = s.kv.Save(keyCart, data)
	}
	if err != nil {
		slog.Error("failed to persist cart", "op", op, "err", err)
	}
}

func (s *CartService) Items() []domain.CartItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CartItem(nil), s.items...)
}

// ItemCount is the summed quantity over all lines.
func (s *CartService) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var n int
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

func (s *CartService) Subtotal() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum float64
	for _, it := range s.items {
		sum += it.LineTotal()
	}
	return sum
}

// ConvenienceEligible reports whether the cart is small enough for
// convenience-store pickup.
func (s *CartService) ConvenienceEligible() bool {
	n := s.ItemCount()
	return n > 0 && n <= s.rule.ConvenienceMaxItems
}

// ShippingFee applies the rule: free at or above the threshold, reduced
// for convenience-store-eligible carts, flat otherwise. An empty cart
// ships nothing.
func (s *CartService) ShippingFee() float64 {
	if s.ItemCount() == 0 {
		return 0
	}
	if s.Subtotal() >= s.rule.FreeThreshold {
		return 0
	}
	if s.ConvenienceEligible() {
		return s.rule.ConvenienceFee
	}
	return s.rule.FlatFee
}

func (s *CartService) Total() float64 {
	return s.Subtotal() + s.ShippingFee()
}

// Contains reports whether any line matches the product id.
func (s *CartService) Contains(productID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, it := range s.items {
		if it.ProductID == productID {
			return true
		}
	}
	return false
}

func (s *CartService) IsOpen() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.open
}

func (s *CartService) Toggle() {
	s.mu.Lock()
	s.open = !s.open
	s.mu.Unlock()
}

func (s *CartService) SetOpen(open bool) {
	s.mu.Lock()
	s.open = open
	s.mu.Unlock()
}
