package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/events"
	"github.com/andreasstove999/ecommerce-system/storefront-service-go/internal/order"
)

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrInvalidCustomer = errors.New("invalid customer details")
)

// OrderPublisher announces placed orders. *events.Publisher implements it.
type OrderPublisher interface {
	PublishOrderPlaced(ctx context.Context, meta events.EventMeta, o *order.Order) error
}

type Customer struct {
	Name    string `json:"customerName"`
	Email   string `json:"customerEmail"`
	Phone   string `json:"customerPhone"`
	Address string `json:"customerAddress"`
}

func (c Customer) validate() error {
	switch {
	case strings.TrimSpace(c.Name) == "":
		return fmt.Errorf("%w: name is required", ErrInvalidCustomer)
	case strings.TrimSpace(c.Phone) == "":
		return fmt.Errorf("%w: phone is required", ErrInvalidCustomer)
	case strings.TrimSpace(c.Address) == "":
		return fmt.Errorf("%w: address is required", ErrInvalidCustomer)
	}
	if _, err := mail.ParseAddress(c.Email); err != nil {
		return fmt.Errorf("%w: email %q is not valid", ErrInvalidCustomer, c.Email)
	}
	return nil
}

type Service struct {
	sessions  *cart.Sessions
	orders    order.Repository
	publisher OrderPublisher
	logger    *zap.Logger
}

// NewService wires checkout. publisher may be nil when events are disabled.
func NewService(sessions *cart.Sessions, orders order.Repository, publisher OrderPublisher, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{sessions: sessions, orders: orders, publisher: publisher, logger: logger}
}

// PlaceOrder turns the session's cart into a pending order. The order is
// built from one state value so its items and total always agree. Once the
// order is stored, exactly the ordered lines are taken out of the cart;
// anything added meanwhile stays.
func (s *Service) PlaceOrder(ctx context.Context, sessionID string, c Customer) (*order.Order, error) {
	if err := c.validate(); err != nil {
		return nil, err
	}

	store, err := s.sessions.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	st := store.State()
	if st.Empty() {
		return nil, ErrEmptyCart
	}

	o := &order.Order{
		SessionID:       sessionID,
		CustomerName:    strings.TrimSpace(c.Name),
		CustomerEmail:   strings.TrimSpace(c.Email),
		CustomerPhone:   strings.TrimSpace(c.Phone),
		CustomerAddress: strings.TrimSpace(c.Address),
		Items:           orderItems(st.Items),
		TotalAmount:     st.Total,
		Status:          order.StatusPending,
	}

	if err := s.orders.Create(ctx, o); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if s.publisher != nil {
		meta := events.EventMeta{CorrelationID: events.CorrelationIDFrom(ctx), PartitionKey: sessionID}
		if meta.CorrelationID == "" {
			meta.CorrelationID = o.ID
		}
		if err := s.publisher.PublishOrderPlaced(ctx, meta, o); err != nil {
			s.logger.Warn("publishing OrderPlaced failed",
				zap.String("orderId", o.ID),
				zap.Error(err))
		}
	}

	store.RemoveOrdered(ctx, st.Items)
	s.logger.Info("order placed",
		zap.String("orderId", o.ID),
		zap.String("session", sessionID),
		zap.Int("items", len(o.Items)),
		zap.String("total", o.TotalAmount.StringFixed(2)))
	return o, nil
}

func orderItems(lines []cart.LineItem) []order.Item {
	items := make([]order.Item, 0, len(lines))
	for _, l := range lines {
		items = append(items, order.Item{
			LineID:        l.ID,
			ProductID:     l.ProductID,
			ProductName:   l.Product.Name,
			Image:         l.Product.Image,
			UnitPrice:     l.Product.Price,
			Quantity:      l.Quantity,
			SelectedSize:  l.SelectedSize,
			SelectedColor: l.SelectedColor,
		})
	}
	return items
}
