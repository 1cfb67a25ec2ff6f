package checkout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/2beens/fittrack/internal/notify"
	"github.com/2beens/fittrack/internal/shop/cart"
	"github.com/2beens/fittrack/internal/shop/orders"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	PromoCode                  = "FITTRACK10"
	DefaultNotificationTimeout = 10 * time.Second

	promoPercent          = 10
	freeShippingFromCents = 100_00
	shippingCents         = 9_99
)

var (
	ErrEmptyCart    = errors.New("cart is empty")
	ErrInvalidPromo = errors.New("invalid promo code")
)

//go:generate mockgen -source=$GOFILE -destination=checkout_mocks_test.go -package=checkout

type notificationSender interface {
	Send(ctx context.Context, notification notify.Notification) error
}

type customerLookup interface {
	// Email reports false when nobody is logged in.
	Email(ctx context.Context) (string, bool, error)
}

type Quote struct {
	Subtotal     float64 `json:"subtotal"`
	Discount     float64 `json:"discount"`
	Shipping     float64 `json:"shipping"`
	Total        float64 `json:"total"`
	PromoApplied bool    `json:"promoApplied"`
}

// ValidPromo reports whether code is a known promo code, ignoring case and surrounding spaces.
func ValidPromo(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), PromoCode)
}

// NewQuote prices the lines. Money is summed in cents and rounded to the cent.
// An unknown, non empty promo yields ErrInvalidPromo along with the quote
// computed without a discount.
func NewQuote(items []cart.Item, promo string) (Quote, error) {
	subtotal := int64(0)
	for _, item := range items {
		subtotal += toCents(item.Price) * int64(item.Quantity)
	}

	var promoErr error
	discount := int64(0)
	promoApplied := false
	switch {
	case strings.TrimSpace(promo) == "":
	case ValidPromo(promo):
		promoApplied = true
		discount = roundDiv(subtotal*promoPercent, 100)
	default:
		promoErr = ErrInvalidPromo
	}

	shipping := int64(shippingCents)
	if subtotal >= freeShippingFromCents {
		shipping = 0
	}

	return Quote{
		Subtotal:     fromCents(subtotal),
		Discount:     fromCents(discount),
		Shipping:     fromCents(shipping),
		Total:        fromCents(subtotal - discount + shipping),
		PromoApplied: promoApplied,
	}, promoErr
}

type Service struct {
	cart                *cart.Store
	orders              *orders.Store
	customers           customerLookup
	sender              notificationSender
	metricsManager      *metrics.Manager
	notificationTimeout time.Duration

	pending sync.WaitGroup
}

type NewServiceParams struct {
	Cart                *cart.Store
	Orders              *orders.Store
	Customers           customerLookup
	Sender              notificationSender
	MetricsManager      *metrics.Manager
	NotificationTimeout time.Duration
}

func NewService(params NewServiceParams) *Service {
	timeout := params.NotificationTimeout
	if timeout <= 0 {
		timeout = DefaultNotificationTimeout
	}
	return &Service{
		cart:                params.Cart,
		orders:              params.Orders,
		customers:           params.Customers,
		sender:              params.Sender,
		metricsManager:      params.MetricsManager,
		notificationTimeout: timeout,
	}
}

// Quote prices the current cart.
func (s *Service) Quote(ctx context.Context, promo string) (Quote, error) {
	items, err := s.cart.List(ctx)
	if err != nil {
		return Quote{}, fmt.Errorf("list cart: %w", err)
	}
	return NewQuote(items, promo)
}

// PlaceOrder turns the cart into an order and empties the cart in one step. The order
// email is sent in the background; its outcome never affects the order.
func (s *Service) PlaceOrder(ctx context.Context, promo string) (_ *orders.Order, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.checkout.place_order")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	var order *orders.Order
	err = s.cart.TakeAll(ctx, func(items []cart.Item) error {
		if len(items) == 0 {
			return ErrEmptyCart
		}
		quote, err := NewQuote(items, promo)
		if err != nil {
			return err
		}

		orderItems := make([]orders.Item, 0, len(items))
		for _, item := range items {
			orderItems = append(orderItems, orders.Item{
				ID:       item.ID,
				Name:     item.Name,
				Price:    item.Price,
				Quantity: item.Quantity,
				Image:    item.Image,
			})
		}

		order, err = s.orders.Create(ctx, orders.NewOrder{
			Items:    orderItems,
			Subtotal: quote.Subtotal,
			Discount: quote.Discount,
			Shipping: quote.Shipping,
			Total:    quote.Total,
		})
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	switch {
	case err != nil && order == nil:
		return nil, err
	case err != nil:
		// the order exists, a stale cart is the lesser problem
		log.Errorf("clear cart after order %s: %s", order.ID, err)
		err = nil
	}
	span.SetAttributes(attribute.String("order.id", order.ID))

	if s.metricsManager != nil {
		s.metricsManager.CounterOrders.Inc()
	}
	log.Infof("order %s placed: %d lines, total %.2f", order.ID, len(order.Items), order.Total)

	s.notifyAsync(ctx, order)
	return order, nil
}

// AdvanceOrder moves an order to its next status and, when the status
// changed, emails the customer about it the same way PlaceOrder does.
func (s *Service) AdvanceOrder(ctx context.Context, id string) (_ *orders.Order, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.checkout.advance_order")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	order, changed, err := s.orders.AdvanceStatus(ctx, id)
	if err != nil {
		return nil, err
	}
	if changed {
		log.Infof("order %s is now %s", order.ID, order.Status)
		s.notifyAsync(ctx, order)
	}
	return order, nil
}

func (s *Service) notifyAsync(ctx context.Context, order *orders.Order) {
	email, found, err := s.customers.Email(ctx)
	if err != nil {
		log.Errorf("order %s notification: lookup customer email: %s", order.ID, err)
		s.countNotificationFailure()
		return
	}
	if !found || email == "" {
		log.Debugf("order %s notification skipped, no session", order.ID)
		return
	}

	notification := NotificationFor(order, email)
	s.pending.Add(1)
	go func() {
		defer s.pending.Done()
		// detached from the request, which is likely done by now
		sendCtx, cancel := context.WithTimeout(context.Background(), s.notificationTimeout)
		defer cancel()

		if err := s.sender.Send(sendCtx, notification); err != nil {
			log.Errorf("send order %s notification: %s", order.ID, err)
			s.countNotificationFailure()
			return
		}
		log.Debugf("order %s notification sent to %s", order.ID, email)
	}()
}

// Wait blocks until the in-flight notifications are done.
func (s *Service) Wait() {
	s.pending.Wait()
}

func (s *Service) countNotificationFailure() {
	if s.metricsManager != nil {
		s.metricsManager.CounterNotificationFailures.Inc()
	}
}

func NotificationFor(order *orders.Order, email string) notify.Notification {
	items := make([]notify.Item, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, notify.Item{
			Name:     item.Name,
			Quantity: item.Quantity,
			Price:    item.Price,
		})
	}
	estimatedDelivery := order.EstimatedDelivery
	return notify.Notification{
		Email:             email,
		OrderID:           order.ID,
		Status:            string(order.Status),
		Items:             items,
		Total:             order.Total,
		EstimatedDelivery: &estimatedDelivery,
	}
}

func toCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

func fromCents(cents int64) float64 {
	return float64(cents) / 100
}

// roundDiv divides rounding half up; operands are non negative.
func roundDiv(a, b int64) int64 {
	return (a + b/2) / b
}
