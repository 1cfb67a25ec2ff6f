package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/2beens/fittrack/internal/calendar"
	"github.com/2beens/fittrack/internal/kv"
	"github.com/2beens/fittrack/internal/notify"
	"github.com/2beens/fittrack/internal/shop/cart"
	"github.com/2beens/fittrack/internal/shop/orders"
	"github.com/2beens/fittrack/internal/telemetry/metrics"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var testNow = time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

func TestNewQuote(t *testing.T) {
	items := []cart.Item{
		{ID: "p1", Price: 89.99, Quantity: 2},
		{ID: "p2", Price: 30, Quantity: 1},
	}

	quote, err := NewQuote(items, "fittrack10")
	require.NoError(t, err)
	assert.Equal(t, Quote{Subtotal: 209.98, Discount: 21.00, Shipping: 0, Total: 188.98, PromoApplied: true}, quote)

	quote, err = NewQuote(items, "")
	require.NoError(t, err)
	assert.Equal(t, 209.98, quote.Total)
	assert.False(t, quote.PromoApplied)

	quote, err = NewQuote(items, "SUMMER50")
	assert.ErrorIs(t, err, ErrInvalidPromo)
	assert.Equal(t, 209.98, quote.Total)
	assert.Zero(t, quote.Discount)
}

func TestNewQuote_Shipping(t *testing.T) {
	quote, err := NewQuote([]cart.Item{{Price: 99.99, Quantity: 1}}, "")
	require.NoError(t, err)
	assert.Equal(t, 9.99, quote.Shipping)
	assert.Equal(t, 109.98, quote.Total)

	quote, err = NewQuote([]cart.Item{{Price: 100, Quantity: 1}}, "")
	require.NoError(t, err)
	assert.Zero(t, quote.Shipping)

	// threshold applies to the subtotal, before the discount
	quote, err = NewQuote([]cart.Item{{Price: 105, Quantity: 1}}, " FitTrack10 ")
	require.NoError(t, err)
	assert.Zero(t, quote.Shipping)
	assert.Equal(t, 10.5, quote.Discount)
	assert.Equal(t, 94.5, quote.Total)

	quote, err = NewQuote(nil, "")
	require.NoError(t, err)
	assert.Equal(t, 9.99, quote.Total)
}

type testDeps struct {
	cart      *cart.Store
	orders    *orders.Store
	sender    *MocknotificationSender
	customers *MockcustomerLookup
	metrics   *metrics.Manager
	service   *Service
}

func newTestDeps(t *testing.T) *testDeps {
	ctrl := gomock.NewController(t)
	store := kv.NewMemoryStore()
	clock := calendar.NewFixedClock(testNow)

	deps := &testDeps{
		cart:      cart.NewStore(store),
		orders:    orders.NewStore(store, clock),
		sender:    NewMocknotificationSender(ctrl),
		customers: NewMockcustomerLookup(ctrl),
		metrics:   metrics.NewTestManager(),
	}
	deps.service = NewService(NewServiceParams{
		Cart:                deps.cart,
		Orders:              deps.orders,
		Customers:           deps.customers,
		Sender:              deps.sender,
		MetricsManager:      deps.metrics,
		NotificationTimeout: time.Second,
	})
	return deps
}

func (d *testDeps) fillCart(t *testing.T) {
	ctx := context.Background()
	_, err := d.cart.Add(ctx, cart.Item{ID: "p1", Name: "Trail Shoe", Price: 89.99})
	require.NoError(t, err)
	_, err = d.cart.Add(ctx, cart.Item{ID: "p1", Name: "Trail Shoe", Price: 89.99})
	require.NoError(t, err)
	_, err = d.cart.Add(ctx, cart.Item{ID: "p2", Name: "Bottle", Price: 30})
	require.NoError(t, err)
}

func TestService_PlaceOrder(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t)
	deps.fillCart(t)

	quote, err := deps.service.Quote(ctx, "FITTRACK10")
	require.NoError(t, err)
	assert.Equal(t, 188.98, quote.Total)

	sent := make(chan notify.Notification, 1)
	deps.customers.EXPECT().Email(gomock.Any()).Return("ana@example.com", true, nil)
	deps.sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, n notify.Notification) error {
			sent <- n
			return nil
		},
	)

	order, err := deps.service.PlaceOrder(ctx, "FITTRACK10")
	require.NoError(t, err)
	deps.service.Wait()

	assert.Equal(t, "ORD-1710498600000", order.ID)
	assert.Equal(t, orders.StatusProcessing, order.Status)
	assert.Equal(t, 209.98, order.Subtotal)
	assert.Equal(t, 21.0, order.Discount)
	assert.Equal(t, 0.0, order.Shipping)
	assert.Equal(t, 188.98, order.Total)
	require.Len(t, order.Items, 2)
	assert.Equal(t, 2, order.Items[0].Quantity)

	cartItems, err := deps.cart.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, cartItems)

	notification := <-sent
	assert.Equal(t, "ana@example.com", notification.Email)
	assert.Equal(t, order.ID, notification.OrderID)
	assert.Equal(t, "processing", notification.Status)
	assert.Equal(t, 188.98, notification.Total)
	require.NotNil(t, notification.EstimatedDelivery)
	assert.True(t, order.EstimatedDelivery.Equal(*notification.EstimatedDelivery))

	assert.Equal(t, float64(1), testutil.ToFloat64(deps.metrics.CounterOrders))
	assert.Equal(t, float64(0), testutil.ToFloat64(deps.metrics.CounterNotificationFailures))
}

func TestService_PlaceOrder_EmptyCart(t *testing.T) {
	deps := newTestDeps(t)
	_, err := deps.service.PlaceOrder(context.Background(), "")
	assert.ErrorIs(t, err, ErrEmptyCart)

	placed, err := deps.orders.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, placed)
}

func TestService_PlaceOrder_InvalidPromo(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t)
	deps.fillCart(t)

	_, err := deps.service.PlaceOrder(ctx, "FREESTUFF")
	assert.ErrorIs(t, err, ErrInvalidPromo)

	// nothing happened
	cartItems, err := deps.cart.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cartItems, 2)
}

func TestService_PlaceOrder_NotificationFailureIgnored(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t)
	deps.fillCart(t)

	deps.customers.EXPECT().Email(gomock.Any()).Return("ana@example.com", true, nil)
	deps.sender.EXPECT().Send(gomock.Any(), gomock.Any()).Return(errors.New("smtp down"))

	order, err := deps.service.PlaceOrder(ctx, "")
	require.NoError(t, err)
	deps.service.Wait()

	stored, err := deps.orders.Get(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, stored.ID)
	assert.Equal(t, float64(1), testutil.ToFloat64(deps.metrics.CounterNotificationFailures))
}

func TestService_PlaceOrder_NoSessionNoEmail(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t)
	deps.fillCart(t)

	deps.customers.EXPECT().Email(gomock.Any()).Return("", false, nil)
	// sender must not be called; gomock fails on unexpected calls

	_, err := deps.service.PlaceOrder(ctx, "")
	require.NoError(t, err)
	deps.service.Wait()
}

func TestService_AdvanceOrder(t *testing.T) {
	ctx := context.Background()
	deps := newTestDeps(t)
	deps.fillCart(t)

	deps.customers.EXPECT().Email(gomock.Any()).Return("", false, nil)
	order, err := deps.service.PlaceOrder(ctx, "")
	require.NoError(t, err)

	var statuses []string
	deps.customers.EXPECT().Email(gomock.Any()).Return("ana@example.com", true, nil).Times(2)
	deps.sender.EXPECT().Send(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, n notify.Notification) error {
			statuses = append(statuses, n.Status)
			return nil
		},
	).Times(2)

	advanced, err := deps.service.AdvanceOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusShipped, advanced.Status)
	deps.service.Wait()

	advanced, err = deps.service.AdvanceOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusDelivered, advanced.Status)
	deps.service.Wait()

	// delivered is final, no further email
	advanced, err = deps.service.AdvanceOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, orders.StatusDelivered, advanced.Status)
	deps.service.Wait()

	assert.Equal(t, []string{"shipped", "delivered"}, statuses)

	_, err = deps.service.AdvanceOrder(ctx, "ORD-0")
	assert.ErrorIs(t, err, orders.ErrOrderNotFound)
}

// addOnOrderWrite adds a cart line from another goroutine as soon as an order
// gets written, i.e. while the checkout is in progress.
type addOnOrderWrite struct {
	*kv.MemoryStore
	added chan struct{}
	once  bool
}

func (s *addOnOrderWrite) Set(ctx context.Context, key, value string) error {
	if err := s.MemoryStore.Set(ctx, key, value); err != nil {
		return err
	}
	if key == kv.KeyOrders && !s.once {
		s.once = true
		go func() {
			defer close(s.added)
			_, _ = cart.NewStore(s).Add(context.Background(), cart.Item{ID: "p3", Name: "Headband", Price: 12})
		}()
	}
	return nil
}

func TestService_PlaceOrder_ConcurrentCartAddIsKept(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	store := &addOnOrderWrite{MemoryStore: kv.NewMemoryStore(), added: make(chan struct{})}
	cartStore := cart.NewStore(store)
	ordersStore := orders.NewStore(store, calendar.NewFixedClock(testNow))
	customers := NewMockcustomerLookup(ctrl)
	customers.EXPECT().Email(gomock.Any()).Return("", false, nil)

	service := NewService(NewServiceParams{
		Cart:      cartStore,
		Orders:    ordersStore,
		Customers: customers,
		Sender:    NewMocknotificationSender(ctrl),
	})

	_, err := cartStore.Add(ctx, cart.Item{ID: "p1", Name: "Trail Shoe", Price: 89.99})
	require.NoError(t, err)

	order, err := service.PlaceOrder(ctx, "")
	require.NoError(t, err)
	<-store.added
	service.Wait()

	require.Len(t, order.Items, 1)
	assert.Equal(t, "p1", order.Items[0].ID)

	// the late line waits in the cart for the next order
	cartItems, err := cartStore.List(ctx)
	require.NoError(t, err)
	require.Len(t, cartItems, 1)
	assert.Equal(t, "p3", cartItems[0].ID)
}
