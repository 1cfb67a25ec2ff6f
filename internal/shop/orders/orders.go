package orders

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/calendar"
	"github.com/2beens/fittrack/internal/kv"
)

var ErrOrderNotFound = errors.New("order not found")

// DeliveryWindow is added to the creation time to get the estimated delivery.
const DeliveryWindow = 5 * 24 * time.Hour

type Status string

const (
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
)

// Next is the following status; delivered is terminal.
func (s Status) Next() Status {
	switch s {
	case StatusProcessing:
		return StatusShipped
	case StatusShipped:
		return StatusDelivered
	default:
		return s
	}
}

type Item struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    string  `json:"image"`
}

type Order struct {
	ID                string    `json:"id"`
	Items             []Item    `json:"items"`
	Subtotal          float64   `json:"subtotal"`
	Discount          float64   `json:"discount"`
	Shipping          float64   `json:"shipping"`
	Total             float64   `json:"total"`
	Status            Status    `json:"status"`
	CreatedAt         time.Time `json:"createdAt"`
	EstimatedDelivery time.Time `json:"estimatedDelivery"`
}

// NewOrder carries the caller supplied part of an order.
type NewOrder struct {
	Items    []Item
	Subtotal float64
	Discount float64
	Shipping float64
	Total    float64
}

// Store keeps orders newest first.
type Store struct {
	orders *kv.Collection[Order]
	clock  calendar.Clock
}

func NewStore(store kv.Store, clock calendar.Clock) *Store {
	return &Store{
		orders: kv.NewCollection[Order](store, kv.KeyOrders),
		clock:  clock,
	}
}

func (s *Store) List(ctx context.Context) ([]Order, error) {
	return s.orders.List(ctx)
}

func (s *Store) Create(ctx context.Context, newOrder NewOrder) (*Order, error) {
	var created Order
	_, err := s.orders.Update(ctx, func(orders []Order) ([]Order, error) {
		now := s.clock.Now()
		items := make([]Item, len(newOrder.Items))
		copy(items, newOrder.Items)

		created = Order{
			ID:                fmt.Sprintf("ORD-%d", now.UnixMilli()),
			Items:             items,
			Subtotal:          newOrder.Subtotal,
			Discount:          newOrder.Discount,
			Shipping:          newOrder.Shipping,
			Total:             newOrder.Total,
			Status:            StatusProcessing,
			CreatedAt:         now,
			EstimatedDelivery: now.Add(DeliveryWindow),
		}
		return append([]Order{created}, orders...), nil
	})
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func (s *Store) Get(ctx context.Context, id string) (*Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if orders[i].ID == id {
			return &orders[i], nil
		}
	}
	return nil, ErrOrderNotFound
}

// AdvanceStatus moves the order one step forward. Delivered orders and
// unknown ids are left as they are; the boolean reports whether anything changed.
func (s *Store) AdvanceStatus(ctx context.Context, id string) (*Order, bool, error) {
	var found *Order
	advanced := false
	_, err := s.orders.Update(ctx, func(orders []Order) ([]Order, error) {
		for i := range orders {
			if orders[i].ID != id {
				continue
			}
			next := orders[i].Status.Next()
			advanced = next != orders[i].Status
			orders[i].Status = next
			order := orders[i]
			found = &order
			break
		}
		return orders, nil
	})
	if err != nil {
		return nil, false, err
	}
	if found == nil {
		return nil, false, ErrOrderNotFound
	}
	return found, advanced, nil
}

// ContainsProduct reports whether any order has a line for the product.
func (s *Store) ContainsProduct(ctx context.Context, productID string) (bool, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return false, err
	}
	for _, order := range orders {
		for _, item := range order.Items {
			if item.ID == productID {
				return true, nil
			}
		}
	}
	return false, nil
}
