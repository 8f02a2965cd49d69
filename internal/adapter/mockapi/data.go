package mockapi

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/niksmo/storefront/internal/core/domain"
)

// Seed accounts. The blocked account authenticates with the right
// password but is always rejected with 403.
const (
	SeedUserEmail    = "test@example.com"
	SeedUserPassword = "Test123456"
	BlockedUserEmail = "blocked@example.com"
)

type account struct {
	user         domain.User
	passwordHash []byte
	blocked      bool
}

// dataStore is the in-memory backend state. Everything lives behind one
// mutex; the mock serves a single developer, not production traffic.
type dataStore struct {
	mu sync.Mutex

	accounts map[string]*account
	products []domain.Product
	cats     []domain.Category

	carts  map[int][]domain.CartItem
	orders map[int][]domain.Order
	notifs map[int][]domain.Notification

	nextUserID  int
	nextOrderID int
	nextNotifID int
}

func newDataStore() *dataStore {
	s := &dataStore{
		accounts: make(map[string]*account),
		carts:    make(map[int][]domain.CartItem),
		orders:   make(map[int][]domain.Order),
		notifs:   make(map[int][]domain.Notification),

		nextUserID:  1,
		nextOrderID: 1000,
		nextNotifID: 1,
	}
	s.seed()
	return s
}

func (s *dataStore) seed() {
	s.mustAddAccount(domain.User{
		Name: "Test User", Email: SeedUserEmail, Role: "customer",
	}, SeedUserPassword, false)
	s.mustAddAccount(domain.User{
		Name: "Blocked User", Email: BlockedUserEmail, Role: "customer",
	}, SeedUserPassword, true)

	s.cats = []domain.Category{
		{ID: 1, Name: "Electronics", Slug: "electronics"},
		{ID: 2, Name: "Apparel", Slug: "apparel"},
		{ID: 3, Name: "Home", Slug: "home"},
		{ID: 4, Name: "Books", Slug: "books"},
	}

	s.products = seedProducts()

	testID := s.accounts[SeedUserEmail].user.ID
	s.notifs[testID] = []domain.Notification{
		{
			ID: s.nextNotifID, UserID: testID, Type: "order",
			Title: "Order shipped", Message: "Order #1001 is on its way",
			CreatedAt: time.Now().Add(-time.Hour),
		},
		{
			ID: s.nextNotifID + 1, UserID: testID, Type: "promo",
			Title: "Weekend sale", Message: "Up to 40% off electronics",
			Read: true, CreatedAt: time.Now().Add(-24 * time.Hour),
		},
	}
	s.nextNotifID += 2

	s.orders[testID] = seedOrders(testID)
	s.nextOrderID = 1003
}

func (s *dataStore) mustAddAccount(u domain.User, password string, blocked bool) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		panic(fmt.Sprintf("seed account %s: %v", u.Email, err))
	}
	u.ID = s.nextUserID
	s.nextUserID++
	s.accounts[strings.ToLower(u.Email)] = &account{
		user: u, passwordHash: hash, blocked: blocked,
	}
}

func seedProducts() []domain.Product {
	return []domain.Product{
		{
			ID: 1, Name: "Wireless Earbuds Pro", Price: 890, OriginalPrice: 1290,
			CategoryID: 1, Tags: []string{"hot", "sale"}, Rating: 4.7, Stock: 42,
			Description: "Active noise cancelling, 30h battery",
			Variants: []domain.Variant{
				{ID: "eb-blk", Specs: map[string]string{"color": "black"}, Price: 890, Stock: 30},
				{ID: "eb-wht", Specs: map[string]string{"color": "white"}, Price: 890, Stock: 12},
			},
			CreatedAt: "2026-05-02",
		},
		{
			ID: 2, Name: "Mechanical Keyboard 87", Price: 1590,
			CategoryID: 1, Tags: []string{"new"}, Rating: 4.5, Stock: 18,
			Description: "Hot-swappable switches, PBT keycaps",
			Variants: []domain.Variant{
				{ID: "kb-red", Specs: map[string]string{"switch": "red"}, Price: 1590, Stock: 10},
				{ID: "kb-brn", Specs: map[string]string{"switch": "brown"}, Price: 1590, Stock: 8},
			},
			CreatedAt: "2026-06-15",
		},
		{
			ID: 3, Name: "Cotton T-Shirt", Price: 290,
			CategoryID: 2, Rating: 4.2, Stock: 120,
			Description: "Heavyweight combed cotton",
			Variants: []domain.Variant{
				{ID: "ts-s", Specs: map[string]string{"size": "S", "color": "navy"}, Price: 290, Stock: 40},
				{ID: "ts-m", Specs: map[string]string{"size": "M", "color": "navy"}, Price: 290, Stock: 50},
				{ID: "ts-l", Specs: map[string]string{"size": "L", "color": "navy"}, Price: 290, Stock: 30},
			},
			CreatedAt: "2026-03-20",
		},
		{
			ID: 4, Name: "Ceramic Pour-Over Set", Price: 680, OriginalPrice: 820,
			CategoryID: 3, Tags: []string{"sale"}, Rating: 4.8, Stock: 9,
			Description: "Dripper, carafe and two cups",
			CreatedAt:   "2026-01-11",
		},
		{
			ID: 5, Name: "The Pragmatic Shopper", Price: 450,
			CategoryID: 4, Tags: []string{"new"}, Rating: 4.9, Stock: 64,
			Description: "Essays on buying less and better",
			CreatedAt:   "2026-07-01",
		},
		{
			ID: 6, Name: "Smart Desk Lamp", Price: 990,
			CategoryID: 3, Rating: 4.1, Stock: 25,
			Description: "Auto-dimming, USB-C charging port",
			Variants: []domain.Variant{
				{ID: "dl-wrm", Specs: map[string]string{"tone": "warm"}, Price: 990, Stock: 14},
				{ID: "dl-cld", Specs: map[string]string{"tone": "cold"}, Price: 990, Stock: 11},
			},
			CreatedAt: "2026-04-08",
		},
	}
}

func seedOrders(userID int) []domain.Order {
	now := time.Now()
	return []domain.Order{
		{
			ID: 1001, UserID: userID,
			Items: []domain.CartItem{{
				ProductID: 1, VariantID: "eb-blk",
				Specs: map[string]string{"color": "black"},
				Name:  "Wireless Earbuds Pro", UnitPrice: 890, Quantity: 1,
			}},
			Subtotal: 890, ShippingFee: 60, Total: 950,
			Status: domain.OrderShipped,
			StatusHistory: []domain.StatusEvent{
				{Status: domain.OrderPending, CreatedAt: now.Add(-72 * time.Hour)},
				{Status: domain.OrderPaid, CreatedAt: now.Add(-71 * time.Hour)},
				{Status: domain.OrderProcessing, CreatedAt: now.Add(-48 * time.Hour)},
				{Status: domain.OrderShipped, CreatedAt: now.Add(-24 * time.Hour)},
			},
			PaymentMethod: "credit_card",
			CreatedAt:     now.Add(-72 * time.Hour),
			UpdatedAt:     now.Add(-24 * time.Hour),
		},
		{
			ID: 1002, UserID: userID,
			Items: []domain.CartItem{{
				ProductID: 5, Name: "The Pragmatic Shopper",
				UnitPrice: 450, Quantity: 2,
			}},
			Subtotal: 900, ShippingFee: 60, Total: 960,
			Status: domain.OrderPending,
			StatusHistory: []domain.StatusEvent{
				{Status: domain.OrderPending, CreatedAt: now.Add(-time.Hour)},
			},
			PaymentMethod: "bank_transfer",
			CreatedAt:     now.Add(-time.Hour),
			UpdatedAt:     now.Add(-time.Hour),
		},
	}
}

func (s *dataStore) findAccount(email string) (*account, bool) {
	a, ok := s.accounts[strings.ToLower(email)]
	return a, ok
}

func (s *dataStore) accountByID(id int) (*account, bool) {
	for _, a := range s.accounts {
		if a.user.ID == id {
			return a, true
		}
	}
	return nil, false
}

func (s *dataStore) checkPassword(a *account, password string) bool {
	return bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password)) == nil
}

func (s *dataStore) productByID(id int) (domain.Product, bool) {
	for _, p := range s.products {
		if p.ID == id {
			return p, true
		}
	}
	return domain.Product{}, false
}

func (s *dataStore) orderByID(userID, orderID int) (*domain.Order, bool) {
	orders := s.orders[userID]
	for i := range orders {
		if orders[i].ID == orderID {
			return &orders[i], true
		}
	}
	return nil, false
}

// advanceOrder appends a status event and stamps the order.
func advanceOrder(o *domain.Order, status domain.OrderStatus, note string) {
	now := time.Now()
	o.Status = status
	o.StatusHistory = append(o.StatusHistory, domain.StatusEvent{
		Status: status, Note: note, CreatedAt: now,
	})
	o.UpdatedAt = now
}

func (s *dataStore) orderStats(userID int) domain.OrderStats {
	var st domain.OrderStats
	for _, o := range s.orders[userID] {
		st.Total++
		st.TotalAmount += o.Total
		switch o.Status {
		case domain.OrderPending:
			st.Pending++
		case domain.OrderPaid:
			st.Paid++
		case domain.OrderProcessing:
			st.Processing++
		case domain.OrderShipped:
			st.Shipped++
		case domain.OrderDelivered:
			st.Delivered++
		case domain.OrderCancelled:
			st.Cancelled++
		case domain.OrderReturned:
			st.Returned++
		}
	}
	return st
}

// sortProducts orders a copy of ps by the catalog sort key.
func sortProducts(ps []domain.Product, sortBy string) []domain.Product {
	out := append([]domain.Product(nil), ps...)
	switch sortBy {
	case "price-low":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case "price-high":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case "rating":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	case "discount":
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].DiscountPercent() > out[j].DiscountPercent()
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	}
	return out
}
