package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/port"
)

type (
	OrderFilter struct {
		Status  string
		Keyword string
	}

	orderList struct {
		Data       []domain.Order `json:"data"`
		Pagination Pagination     `json:"pagination"`
	}

	// PlaceOrderInput is the checkout payload.
	PlaceOrderInput struct {
		Items         []domain.CartItem `json:"items"`
		Subtotal      float64           `json:"subtotal"`
		ShippingFee   float64           `json:"shipping_fee"`
		Total         float64           `json:"total"`
		PaymentMethod string            `json:"payment_method"`
	}

	// InvoiceSaver performs the save-as flow for order invoices; the
	// download pipeline instance satisfies it.
	InvoiceSaver interface {
		Download(ctx context.Context, path, destPath string) error
	}
)

// OrdersService owns the orders namespace. Status is server-driven: the
// client sends cancel/confirm actions and mirrors whatever state comes
// back, it never advances an order locally.
type OrdersService struct {
	mu         sync.RWMutex
	orders     []domain.Order
	current    *domain.Order
	stats      domain.OrderStats
	pagination Pagination
	filter     OrderFilter

	gw      port.Gateway
	invoice InvoiceSaver
}

func NewOrders(gw port.Gateway, invoice InvoiceSaver) *OrdersService {
	return &OrdersService{gw: gw, invoice: invoice}
}

// Fetch loads one page of the user's orders with the current filter.
func (s *OrdersService) Fetch(ctx context.Context, page, limit int) error {
	const op = "OrdersService.Fetch"

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
	if f.Status != "" && f.Status != "all" {
		query.Set("status", f.Status)
	}
	if f.Keyword != "" {
		query.Set("keyword", f.Keyword)
	}

	data, err := s.gw.Get(ctx, "/api/user/orders", query)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var list orderList
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.orders = list.Data
	s.pagination = list.Pagination
	s.mu.Unlock()
	return nil
}

func (s *OrdersService) Detail(ctx context.Context, id int) (domain.Order, error) {
	const op = "OrdersService.Detail"

	data, err := s.gw.Get(ctx, "/api/orders/"+strconv.Itoa(id), nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	var o domain.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.current = &o
	s.mu.Unlock()
	return o, nil
}

func (s *OrdersService) FetchStats(ctx context.Context) error {
	const op = "OrdersService.FetchStats"

	data, err := s.gw.Get(ctx, "/api/user/orders/stats", nil)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	var stats domain.OrderStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.stats = stats
	s.mu.Unlock()
	return nil
}

// Place submits the checkout payload and returns the created order.
func (s *OrdersService) Place(ctx context.Context, input PlaceOrderInput) (domain.Order, error) {
	const op = "OrdersService.Place"

	if len(input.Items) == 0 {
		return domain.Order{}, fmt.Errorf("%s: %w: empty order", op, domain.ErrValidation)
	}

	data, err := s.gw.Post(ctx, "/api/orders", input)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	var o domain.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	s.orders = append([]domain.Order{o}, s.orders...)
	s.mu.Unlock()
	return o, nil
}

// Cancel asks the server to cancel; the mirrored order replaces the
// local copy on success.
func (s *OrdersService) Cancel(ctx context.Context, id int, reason string) (domain.Order, error) {
	const op = "OrdersService.Cancel"

	body := map[string]string{"reason": reason}
	data, err := s.gw.Post(ctx, "/api/orders/"+strconv.Itoa(id)+"/cancel", body)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.replace(op, data)
}

func (s *OrdersService) ConfirmDelivery(ctx context.Context, id int) (domain.Order, error) {
	const op = "OrdersService.ConfirmDelivery"

	data, err := s.gw.Post(ctx, "/api/orders/"+strconv.Itoa(id)+"/confirm-delivery", nil)
	if err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}
	return s.replace(op, data)
}

// Reorder returns the original order's items so the caller can put them
// back into the cart.
func (s *OrdersService) Reorder(ctx context.Context, id int) ([]domain.CartItem, error) {
	const op = "OrdersService.Reorder"

	data, err := s.gw.Post(ctx, "/api/orders/"+strconv.Itoa(id)+"/reorder", nil)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var res struct {
		Items []domain.CartItem `json:"items"`
	}
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return res.Items, nil
}

// DownloadInvoice saves the order invoice to destPath.
func (s *OrdersService) DownloadInvoice(ctx context.Context, id int, destPath string) error {
	const op = "OrdersService.DownloadInvoice"

	err := s.invoice.Download(ctx, "/api/orders/"+strconv.Itoa(id)+"/invoice", destPath)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func (s *OrdersService) replace(op string, data []byte) (domain.Order, error) {
	var o domain.Order
	if err := json.Unmarshal(data, &o); err != nil {
		return domain.Order{}, fmt.Errorf("%s: %w", op, err)
	}

	s.mu.Lock()
	for i := range s.orders {
		if s.orders[i].ID == o.ID {
			s.orders[i] = o
			break
		}
	}
	if s.current != nil && s.current.ID == o.ID {
		s.current = &o
	}
	s.mu.Unlock()
	return o, nil
}

func (s *OrdersService) SetFilter(f OrderFilter) {
	s.mu.Lock()
	s.filter = f
	s.mu.Unlock()
}

func (s *OrdersService) Orders() []domain.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Order(nil), s.orders...)
}

func (s *OrdersService) Current() (domain.Order, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return domain.Order{}, false
	}
	return *s.current, true
}

func (s *OrdersService) Stats() domain.OrderStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}

func (s *OrdersService) PaginationInfo() Pagination {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pagination
}
