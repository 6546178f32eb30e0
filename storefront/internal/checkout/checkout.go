package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/scheduler"
	"ardelivero-storefront/storefront/internal/service"
	"ardelivero-storefront/storefront/internal/storage"
	"ardelivero-storefront/storefront/internal/store"
)

const (
	PaymentCash = "cash"
	PaymentCard = "card"

	DefaultPollInterval = 3 * time.Second
)

var (
	ErrEmptyCart           = errors.New("cart is empty")
	ErrMultipleRestaurants = errors.New("cart holds items from more than one restaurant")
	ErrNoTransaction       = errors.New("order has no payment transaction")
	ErrPaymentFailed       = errors.New("payment failed")
)

type Cart interface {
	Snapshot() domain.Cart
	Clear(ctx context.Context) error
}

type Sessions interface {
	Current() (domain.Session, bool)
}

type Memory interface {
	Address() string
	PaymentType() string
	Remember(ctx context.Context, address, paymentType string) error
}

var (
	_ Cart     = (*store.CartStore)(nil)
	_ Sessions = (*store.SessionStore)(nil)
	_ Memory   = (*store.CheckoutMemory)(nil)
)

type Request struct {
	DeliveryAddress string
	PaymentType     string
	Location        *domain.GeoPoint
	Tip             float64
	Notes           string
}

// Confirmation is what the order confirmation page shows.
type Confirmation struct {
	Order  domain.Order
	Status string
	Link   string
	QR     []byte
}

// Placement is the outcome of Place. Confirmation is nil while an online
// payment is pending.
type Placement struct {
	Order        domain.Order
	Confirmation *Confirmation
}

type Checkout struct {
	cart         Cart
	sessions     Sessions
	memory       Memory
	orders       service.OrderServiceInterface
	payments     service.PaymentServiceInterface
	events       storage.OrderEventPublisher
	qr           service.QRGenerator
	scheduler    scheduler.Scheduler
	pollInterval time.Duration
	log          *slog.Logger
	now          func() time.Time
}

type Deps struct {
	Cart         Cart
	Sessions     Sessions
	Memory       Memory
	Orders       service.OrderServiceInterface
	Payments     service.PaymentServiceInterface
	Events       storage.OrderEventPublisher
	QR           service.QRGenerator
	Scheduler    scheduler.Scheduler
	PollInterval time.Duration
	Logger       *slog.Logger
}

func New(d Deps) *Checkout {
	if d.Events == nil {
		d.Events = storage.NopPublisher{}
	}
	if d.PollInterval <= 0 {
		d.PollInterval = DefaultPollInterval
	}
	return &Checkout{
		cart:         d.Cart,
		sessions:     d.Sessions,
		memory:       d.Memory,
		orders:       d.Orders,
		payments:     d.Payments,
		events:       d.Events,
		qr:           d.QR,
		scheduler:    d.Scheduler,
		pollInterval: d.PollInterval,
		log:          d.Logger,
		now:          time.Now,
	}
}

// Prefill returns the address and payment type remembered from the last
// checkout.
func (c *Checkout) Prefill() Request {
	return Request{DeliveryAddress: c.memory.Address(), PaymentType: c.memory.PaymentType()}
}

func (c *Checkout) Place(ctx context.Context, req Request) (*Placement, error) {
	session, ok := c.sessions.Current()
	if !ok {
		return nil, store.ErrNotLoggedIn
	}
	cart := c.cart.Snapshot()
	if cart.Empty() {
		return nil, ErrEmptyCart
	}

	restaurant := cart.Lines[0].Item.RestaurantID
	items := make([]domain.OrderLine, 0, len(cart.Lines))
	for _, line := range cart.Lines {
		if line.Item.RestaurantID != restaurant {
			return nil, ErrMultipleRestaurants
		}
		items = append(items, domain.OrderLine{Menu: line.Item.ID, Name: line.Item.Name, Quantity: line.Quantity})
	}

	prefill := c.Prefill()
	if strings.TrimSpace(req.DeliveryAddress) == "" {
		req.DeliveryAddress = prefill.DeliveryAddress
	}
	if req.PaymentType == "" {
		req.PaymentType = prefill.PaymentType
	}
	if req.PaymentType == "" {
		req.PaymentType = PaymentCash
	}

	order, err := c.orders.Create(ctx, service.OrderRequest{
		Restaurant:      restaurant,
		Items:           items,
		PaymentType:     req.PaymentType,
		DeliveryAddress: req.DeliveryAddress,
		Location:        req.Location,
		Tip:             req.Tip,
		Notes:           req.Notes,
	})
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}
	if order.User == "" {
		order.User = session.User.ID
	}
	if order.PaymentType == "" {
		order.PaymentType = req.PaymentType
	}
	if order.DeliveryAddress == "" {
		order.DeliveryAddress = req.DeliveryAddress
	}

	c.publish(ctx, domain.EventOrderPlaced, *order, cart)

	placement := &Placement{Order: *order}
	if req.PaymentType == PaymentCash {
		confirmation, err := c.confirm(ctx, *order, cart, "cash")
		if err != nil {
			return placement, err
		}
		placement.Confirmation = confirmation
	}
	return placement, nil
}

// AwaitPayment polls the transaction status until the gateway reports a
// final outcome or ctx ends. Polling errors are logged and retried on the
// next tick.
func (c *Checkout) AwaitPayment(ctx context.Context, order domain.Order) (*Confirmation, error) {
	if order.TransactionID == "" {
		return nil, ErrNoTransaction
	}
	cart := c.cart.Snapshot()

	results := make(chan *service.TransactionStatus, 1)
	inFlight := make(chan struct{}, 1)
	task := c.scheduler.Every(c.pollInterval, func() {
		select {
		case inFlight <- struct{}{}:
		default:
			return
		}
		defer func() { <-inFlight }()

		status, err := c.payments.Status(ctx, order.TransactionID)
		if err != nil {
			c.log.Warn("poll payment status", "transaction_id", order.TransactionID, "error", err)
			return
		}
		if status.Succeeded() || status.Failed() {
			select {
			case results <- status:
			default:
			}
		}
	})
	defer task.Cancel()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case status := <-results:
		task.Cancel()
		if status.Failed() {
			c.publish(ctx, domain.EventPaymentFailed, order, cart)
			return nil, fmt.Errorf("transaction %s %s: %w", order.TransactionID, strings.ToLower(status.Status), ErrPaymentFailed)
		}
		return c.confirm(ctx, order, cart, status.Status)
	}
}

// confirm completes a checkout: the cart is emptied and the delivery details
// become the prefill for the next one.
func (c *Checkout) confirm(ctx context.Context, order domain.Order, cart domain.Cart, status string) (*Confirmation, error) {
	if err := c.cart.Clear(ctx); err != nil {
		return nil, fmt.Errorf("clear cart after payment: %w", err)
	}
	if err := c.memory.Remember(ctx, order.DeliveryAddress, order.PaymentType); err != nil {
		c.log.Warn("remember checkout details", "error", err)
	}
	c.publish(ctx, domain.EventPaymentConfirmed, order, cart)

	confirmation := &Confirmation{Order: order, Status: status}
	if c.qr != nil {
		confirmation.Link = c.qr.Link(order.ID)
		png, err := c.qr.Generate(order.ID)
		if err != nil {
			c.log.Warn("render confirmation qr", "order_id", order.ID, "error", err)
		} else {
			confirmation.QR = png
		}
	}
	return confirmation, nil
}

func (c *Checkout) publish(ctx context.Context, eventType string, order domain.Order, cart domain.Cart) {
	total := order.Total
	if total == 0 {
		total = cart.TotalPrice()
	}
	err := c.events.PublishOrderEvent(ctx, domain.OrderEvent{
		Type:          eventType,
		OrderID:       order.ID,
		TransactionID: order.TransactionID,
		UserID:        order.User,
		PaymentType:   order.PaymentType,
		Total:         total,
		ItemCount:     cart.TotalItems(),
		OccurredAt:    c.now().UTC(),
	})
	if err != nil {
		c.log.Warn("publish order event", "type", eventType, "order_id", order.ID, "error", err)
	}
}
