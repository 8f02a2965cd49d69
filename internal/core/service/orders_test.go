package service_test

import (
	"context"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/niksmo/storefront/internal/core/domain"
	"github.com/niksmo/storefront/internal/core/service"
)

type stubInvoiceSaver struct {
	path, dest string
}

func (s *stubInvoiceSaver) Download(_ context.Context, path, destPath string) error {
	s.path, s.dest = path, destPath
	return nil
}

const ordersPage = `{
	"data":[
		{"id":1001,"user_id":1,"status":"shipped","total":950},
		{"id":1002,"user_id":1,"status":"pending","total":960}
	],
	"pagination":{"page":1,"limit":10,"total":2,"pages":1}
}`

func TestOrdersFetch(t *testing.T) {
	gw := new(MockGateway)
	svc := service.NewOrders(gw, &stubInvoiceSaver{})

	var gotQuery url.Values
	gw.On("Get", mock.Anything, "/api/user/orders", mock.Anything).
		Run(func(args mock.Arguments) {
			gotQuery = args.Get(2).(url.Values)
		}).
		Return([]byte(ordersPage), nil)

	svc.SetFilter(service.OrderFilter{Status: "pending"})
	require.NoError(t, svc.Fetch(context.Background(), 1, 10))

	assert.Equal(t, "pending", gotQuery.Get("status"))
	assert.Len(t, svc.Orders(), 2)
	assert.Equal(t, 2, svc.PaginationInfo().Total)
}

func TestOrdersPlace(t *testing.T) {

	t.Run("EmptyOrderRejected", func(t *testing.T) {
		gw := new(MockGateway)
		svc := service.NewOrders(gw, &stubInvoiceSaver{})

		_, err := svc.Place(context.Background(), service.PlaceOrderInput{})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrValidation)
		gw.AssertNotCalled(t, "Post", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("PrependsCreatedOrder", func(t *testing.T) {
		gw := new(MockGateway)
		svc := service.NewOrders(gw, &stubInvoiceSaver{})

		input := service.PlaceOrderInput{
			Items:    []domain.CartItem{{ProductID: 1, UnitPrice: 890, Quantity: 1}},
			Subtotal: 890, ShippingFee: 60, Total: 950,
		}
		gw.On("Post", mock.Anything, "/api/orders", input).
			Return([]byte(`{"id":1003,"status":"pending","total":950}`), nil)

		order, err := svc.Place(context.Background(), input)
		require.NoError(t, err)
		assert.Equal(t, 1003, order.ID)
		assert.Equal(t, domain.OrderPending, order.Status)

		orders := svc.Orders()
		require.Len(t, orders, 1)
		assert.Equal(t, 1003, orders[0].ID)
	})
}

func TestOrdersCancel(t *testing.T) {
	gw := new(MockGateway)
	svc := service.NewOrders(gw, &stubInvoiceSaver{})

	gw.On("Get", mock.Anything, "/api/user/orders", mock.Anything).
		Return([]byte(ordersPage), nil)
	require.NoError(t, svc.Fetch(context.Background(), 1, 10))

	gw.On("Post", mock.Anything, "/api/orders/1002/cancel",
		map[string]string{"reason": "changed my mind"}).
		Return([]byte(`{"id":1002,"status":"cancelled","total":960}`), nil)

	order, err := svc.Cancel(context.Background(), 1002, "changed my mind")
	require.NoError(t, err)
	assert.Equal(t, domain.OrderCancelled, order.Status)

	for _, o := range svc.Orders() {
		if o.ID == 1002 {
			assert.Equal(t, domain.OrderCancelled, o.Status, "local copy mirrors the server")
		}
	}
}

func TestOrdersConfirmDelivery(t *testing.T) {
	gw := new(MockGateway)
	svc := service.NewOrders(gw, &stubInvoiceSaver{})

	gw.On("Post", mock.Anything, "/api/orders/1001/confirm-delivery", nil).
		Return([]byte(`{"id":1001,"status":"delivered","total":950}`), nil)

	order, err := svc.ConfirmDelivery(context.Background(), 1001)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderDelivered, order.Status)
}

func TestOrdersReorder(t *testing.T) {
	gw := new(MockGateway)
	svc := service.NewOrders(gw, &stubInvoiceSaver{})

	gw.On("Post", mock.Anything, "/api/orders/1001/reorder", nil).
		Return([]byte(`{"items":[{"product_id":1,"name":"Earbuds","quantity":1}]}`), nil)

	items, err := svc.Reorder(context.Background(), 1001)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, 1, items[0].ProductID)
}

func TestOrdersStats(t *testing.T) {
	gw := new(MockGateway)
	svc := service.NewOrders(gw, &stubInvoiceSaver{})

	gw.On("Get", mock.Anything, "/api/user/orders/stats", url.Values(nil)).
		Return([]byte(`{"total":2,"pending":1,"shipped":1,"total_amount":1910}`), nil)

	require.NoError(t, svc.FetchStats(context.Background()))
	stats := svc.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Pending)
	assert.InDelta(t, 1910, stats.TotalAmount, 1e-9)
}

func TestOrdersDownloadInvoice(t *testing.T) {
	saver := &stubInvoiceSaver{}
	svc := service.NewOrders(new(MockGateway), saver)

	require.NoError(t, svc.DownloadInvoice(context.Background(), 1001, "/tmp/invoice.txt"))
	assert.Equal(t, "/api/orders/1001/invoice", saver.path)
	assert.Equal(t, "/tmp/invoice.txt", saver.dest)
}
