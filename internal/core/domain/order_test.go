package domain_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/niksmo/storefront/internal/core/domain"
)

func TestOrderStatusTransitions(t *testing.T) {

	t.Run("ForwardOnly", func(t *testing.T) {
		assert.True(t, domain.OrderPending.CanTransition(domain.OrderPaid))
		assert.True(t, domain.OrderPaid.CanTransition(domain.OrderProcessing))
		assert.True(t, domain.OrderProcessing.CanTransition(domain.OrderShipped))
		assert.True(t, domain.OrderShipped.CanTransition(domain.OrderDelivered))
		assert.True(t, domain.OrderDelivered.CanTransition(domain.OrderReturned))

		assert.False(t, domain.OrderPaid.CanTransition(domain.OrderPending))
		assert.False(t, domain.OrderShipped.CanTransition(domain.OrderProcessing))
		assert.False(t, domain.OrderDelivered.CanTransition(domain.OrderPending))
	})

	t.Run("CancelOnlyEarly", func(t *testing.T) {
		assert.True(t, domain.OrderPending.CanCancel())
		assert.True(t, domain.OrderPaid.CanCancel())

		assert.False(t, domain.OrderProcessing.CanCancel())
		assert.False(t, domain.OrderShipped.CanCancel())
		assert.False(t, domain.OrderDelivered.CanCancel())
		assert.False(t, domain.OrderCancelled.CanCancel())
	})

	t.Run("ConfirmDeliveryOnlyShipped", func(t *testing.T) {
		assert.True(t, domain.OrderShipped.CanConfirmDelivery())

		assert.False(t, domain.OrderPending.CanConfirmDelivery())
		assert.False(t, domain.OrderDelivered.CanConfirmDelivery())
	})

	t.Run("TerminalStates", func(t *testing.T) {
		for _, status := range []domain.OrderStatus{
			domain.OrderCancelled, domain.OrderReturned,
		} {
			for _, to := range []domain.OrderStatus{
				domain.OrderPending, domain.OrderPaid, domain.OrderProcessing,
				domain.OrderShipped, domain.OrderDelivered,
			} {
				assert.False(t, status.CanTransition(to), "%s -> %s", status, to)
			}
		}
	})
}
