package mockapi

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/niksmo/storefront/internal/core/domain"
)

type cartItemRequest struct {
	ProductID int               `json:"product_id" binding:"required"`
	VariantID string            `json:"variant_id"`
	Specs     map[string]string `json:"specs"`
	Quantity  int               `json:"quantity"`
}

func (a *API) addCartItem(c *gin.Context) {
	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "product_id is required")
		return
	}
	if req.Quantity <= 0 {
		req.Quantity = 1
	}

	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	p, ok := a.store.productByID(req.ProductID)
	if !ok {
		fail(c, http.StatusNotFound, "product not found")
		return
	}

	item := domain.CartItem{
		ProductID: req.ProductID,
		VariantID: req.VariantID,
		Specs:     req.Specs,
		Name:      p.Name,
		UnitPrice: p.Price,
		Quantity:  req.Quantity,
	}
	if v, ok := p.VariantByID(req.VariantID); ok && v.Price > 0 {
		item.UnitPrice = v.Price
	}

	userID := currentUserID(c)
	cart := a.store.carts[userID]
	key := item.Key()
	merged := false
	for i := range cart {
		if cart[i].Key() == key {
			cart[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		cart = append(cart, item)
	}
	a.store.carts[userID] = cart

	c.JSON(http.StatusOK, cart)
}

// updateCartItem sets the quantity of the line matching the variant key;
// zero or negative removes the line.
func (a *API) updateCartItem(c *gin.Context) {
	var req struct {
		Quantity int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request body")
		return
	}

	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	userID := currentUserID(c)
	key := c.Param("key")
	cart := a.store.carts[userID]
	for i := range cart {
		if cart[i].Key() != key {
			continue
		}
		if req.Quantity <= 0 {
			cart = append(cart[:i], cart[i+1:]...)
		} else {
			cart[i].Quantity = req.Quantity
		}
		a.store.carts[userID] = cart
		c.JSON(http.StatusOK, cart)
		return
	}
	fail(c, http.StatusNotFound, "cart item not found")
}

func (a *API) removeCartItem(c *gin.Context) {
	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	userID := currentUserID(c)
	key := c.Param("key")
	cart := a.store.carts[userID]
	for i := range cart {
		if cart[i].Key() == key {
			cart = append(cart[:i], cart[i+1:]...)
			a.store.carts[userID] = cart
			c.JSON(http.StatusOK, cart)
			return
		}
	}
	fail(c, http.StatusNotFound, "cart item not found")
}

func (a *API) getCart(c *gin.Context) {
	a.store.mu.Lock()
	cart := append([]domain.CartItem(nil), a.store.carts[currentUserID(c)]...)
	a.store.mu.Unlock()
	c.JSON(http.StatusOK, cart)
}

func (a *API) clearCart(c *gin.Context) {
	a.store.mu.Lock()
	delete(a.store.carts, currentUserID(c))
	a.store.mu.Unlock()
	c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
}

type placeOrderRequest struct {
	Items         []domain.CartItem `json:"items" binding:"required"`
	Subtotal      float64           `json:"subtotal"`
	ShippingFee   float64           `json:"shipping_fee"`
	Total         float64           `json:"total"`
	PaymentMethod string            `json:"payment_method"`
}

func (a *API) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.Items) == 0 {
		fail(c, http.StatusBadRequest, "order items are required")
		return
	}

	userID := currentUserID(c)
	now := time.Now()

	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	order := domain.Order{
		ID:          a.store.nextOrderID,
		UserID:      userID,
		Items:       req.Items,
		Subtotal:    req.Subtotal,
		ShippingFee: req.ShippingFee,
		Total:       req.Total,
		Status:      domain.OrderPending,
		StatusHistory: []domain.StatusEvent{
			{Status: domain.OrderPending, CreatedAt: now},
		},
		PaymentMethod: req.PaymentMethod,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	a.store.nextOrderID++
	a.store.orders[userID] = append([]domain.Order{order}, a.store.orders[userID]...)
	delete(a.store.carts, userID)

	c.JSON(http.StatusCreated, order)
}

func (a *API) listOrders(c *gin.Context) {
	page := queryInt(c, "page", 1)
	limit := queryInt(c, "limit", 10)
	status := c.Query("status")

	a.store.mu.Lock()
	all := append([]domain.Order(nil), a.store.orders[currentUserID(c)]...)
	a.store.mu.Unlock()

	if status != "" && status != "all" {
		filtered := all[:0]
		for _, o := range all {
			if string(o.Status) == status {
				filtered = append(filtered, o)
			}
		}
		all = filtered
	}

	total := len(all)
	pages := (total + limit - 1) / limit
	start := (page - 1) * limit
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}

	c.JSON(http.StatusOK, gin.H{
		"data": all[start:end],
		"pagination": gin.H{
			"page": page, "limit": limit, "total": total, "pages": pages,
		},
	})
}

func (a *API) orderStats(c *gin.Context) {
	a.store.mu.Lock()
	st := a.store.orderStats(currentUserID(c))
	a.store.mu.Unlock()
	c.JSON(http.StatusOK, st)
}

func (a *API) getOrder(c *gin.Context) {
	order, ok := a.lookupOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, order)
}

func (a *API) cancelOrder(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid order id")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&body)

	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	order, ok := a.store.orderByID(currentUserID(c), id)
	if !ok {
		fail(c, http.StatusNotFound, "order not found")
		return
	}
	if !order.Status.CanCancel() {
		fail(c, http.StatusConflict,
			fmt.Sprintf("cannot cancel order in status %s", order.Status))
		return
	}

	advanceOrder(order, domain.OrderCancelled, body.Reason)
	c.JSON(http.StatusOK, order)
}

func (a *API) confirmDelivery(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid order id")
		return
	}

	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	order, ok := a.store.orderByID(currentUserID(c), id)
	if !ok {
		fail(c, http.StatusNotFound, "order not found")
		return
	}
	if !order.Status.CanConfirmDelivery() {
		fail(c, http.StatusConflict,
			fmt.Sprintf("cannot confirm delivery in status %s", order.Status))
		return
	}

	advanceOrder(order, domain.OrderDelivered, "confirmed by customer")
	c.JSON(http.StatusOK, order)
}

func (a *API) reorder(c *gin.Context) {
	order, ok := a.lookupOrder(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": order.Items})
}

// invoice streams a plain-text invoice for the save-as flow.
func (a *API) invoice(c *gin.Context) {
	order, ok := a.lookupOrder(c)
	if !ok {
		return
	}

	var body string
	body += fmt.Sprintf("INVOICE #%d\n", order.ID)
	body += fmt.Sprintf("Date: %s\n\n", order.CreatedAt.Format("2006-01-02"))
	for _, it := range order.Items {
		body += fmt.Sprintf("%-32s x%d  %10.2f\n", it.Name, it.Quantity, it.LineTotal())
	}
	body += fmt.Sprintf("\nSubtotal: %10.2f\n", order.Subtotal)
	body += fmt.Sprintf("Shipping: %10.2f\n", order.ShippingFee)
	body += fmt.Sprintf("Total:    %10.2f\n", order.Total)

	c.Header("Content-Disposition",
		fmt.Sprintf("attachment; filename=invoice-%d.txt", order.ID))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(body))
}

func (a *API) lookupOrder(c *gin.Context) (domain.Order, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid order id")
		return domain.Order{}, false
	}

	a.store.mu.Lock()
	defer a.store.mu.Unlock()

	order, ok := a.store.orderByID(currentUserID(c), id)
	if !ok {
		fail(c, http.StatusNotFound, "order not found")
		return domain.Order{}, false
	}
	return *order, true
}
