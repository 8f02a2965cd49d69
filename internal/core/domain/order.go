package domain

import "time"

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderPaid       OrderStatus = "paid"
	OrderProcessing OrderStatus = "processing"
	OrderShipped    OrderStatus = "shipped"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
	OrderReturned   OrderStatus = "returned"
)

// transitions is the forward-only order state machine. The client never
// invents transitions, it only mirrors what the server reports; the table
// exists so the UI can disable actions the server would reject anyway.
var transitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderPaid, OrderCancelled},
	OrderPaid:       {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderShipped},
	OrderShipped:    {OrderDelivered},
	OrderDelivered:  {OrderReturned},
}

func (s OrderStatus) CanTransition(to OrderStatus) bool {
	for _, next := range transitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

func (s OrderStatus) CanCancel() bool {
	return s.CanTransition(OrderCancelled)
}

func (s OrderStatus) CanConfirmDelivery() bool {
	return s == OrderShipped
}

type (
	StatusEvent struct {
		Status    OrderStatus `json:"status"`
		Note      string      `json:"note,omitempty"`
		CreatedAt time.Time   `json:"created_at"`
	}

	Order struct {
		ID            int           `json:"id"`
		UserID        int           `json:"user_id"`
		Items         []CartItem    `json:"items"`
		Subtotal      float64       `json:"subtotal"`
		ShippingFee   float64       `json:"shipping_fee"`
		Total         float64       `json:"total"`
		Status        OrderStatus   `json:"status"`
		StatusHistory []StatusEvent `json:"status_history"`
		PaymentMethod string        `json:"payment_method,omitempty"`
		CreatedAt     time.Time     `json:"created_at"`
		UpdatedAt     time.Time     `json:"updated_at"`
	}

	OrderStats struct {
		Total       int     `json:"total"`
		Pending     int     `json:"pending"`
		Paid        int     `json:"paid"`
		Processing  int     `json:"processing"`
		Shipped     int     `json:"shipped"`
		Delivered   int     `json:"delivered"`
		Cancelled   int     `json:"cancelled"`
		Returned    int     `json:"returned"`
		TotalAmount float64 `json:"total_amount"`
	}
)
