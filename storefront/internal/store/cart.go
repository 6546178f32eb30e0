package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/storage"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be positive")
	ErrItemNotInCart   = errors.New("item not in cart")
)

// CartStore owns the cart. Every mutation writes the whole cart to storage
// before it becomes visible; if the write fails the cart is unchanged.
type CartStore struct {
	mu      sync.Mutex
	cart    domain.Cart
	storage storage.Storage
	bus     *Bus
	log     *slog.Logger
}

// NewCartStore restores the persisted cart. A missing or unreadable value
// starts an empty cart.
func NewCartStore(ctx context.Context, st storage.Storage, bus *Bus, logger *slog.Logger) *CartStore {
	s := &CartStore{storage: st, bus: bus, log: logger}
	raw, err := st.Get(ctx, storage.KeyCart)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		logger.Warn("restore cart", "error", err)
	default:
		cart, err := decodeCart(raw)
		if err != nil {
			logger.Warn("restore cart", "error", err)
			break
		}
		s.cart = cart
	}
	return s
}

func decodeCart(raw []byte) (domain.Cart, error) {
	var cart domain.Cart
	if err := json.Unmarshal(raw, &cart); err != nil {
		return domain.Cart{}, fmt.Errorf("decode cart: %w", err)
	}
	lines := cart.Lines[:0]
	for _, line := range cart.Lines {
		if line.Quantity > 0 && line.Item.ID != "" {
			lines = append(lines, line)
		}
	}
	cart.Lines = lines
	return cart, nil
}

func copyCart(c domain.Cart) domain.Cart {
	if c.Lines == nil {
		return domain.Cart{}
	}
	return domain.Cart{Lines: append([]domain.CartLine(nil), c.Lines...)}
}

// commit persists next and then adopts it. Callers hold s.mu.
func (s *CartStore) commit(ctx context.Context, next domain.Cart) error {
	payload, err := json.Marshal(next)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.storage.Set(ctx, storage.KeyCart, payload); err != nil {
		s.log.Error("persist cart", "error", err)
		return fmt.Errorf("persist cart: %w", err)
	}
	s.cart = next
	return nil
}

func (s *CartStore) mutate(ctx context.Context, change func(*domain.Cart) error) error {
	s.mu.Lock()
	next := copyCart(s.cart)
	if err := change(&next); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.commit(ctx, next); err != nil {
		s.mu.Unlock()
		return err
	}
	snapshot := copyCart(s.cart)
	s.mu.Unlock()

	s.bus.Publish(TopicCart, snapshot)
	return nil
}

func indexOf(c *domain.Cart, id string) int {
	for i, line := range c.Lines {
		if line.Item.ID == id {
			return i
		}
	}
	return -1
}

// Add appends item, or increases the quantity of its existing line.
func (s *CartStore) Add(ctx context.Context, item domain.CartItem, quantity int) error {
	if quantity <= 0 {
		return ErrInvalidQuantity
	}
	return s.mutate(ctx, func(c *domain.Cart) error {
		if i := indexOf(c, item.ID); i >= 0 {
			c.Lines[i].Quantity += quantity
			return nil
		}
		c.Lines = append(c.Lines, domain.CartLine{Item: item, Quantity: quantity})
		return nil
	})
}

func (s *CartStore) Remove(ctx context.Context, itemID string) error {
	return s.mutate(ctx, func(c *domain.Cart) error {
		i := indexOf(c, itemID)
		if i < 0 {
			return fmt.Errorf("remove %s: %w", itemID, ErrItemNotInCart)
		}
		c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
		return nil
	})
}

// SetQuantity replaces a line's quantity; zero or less removes the line.
func (s *CartStore) SetQuantity(ctx context.Context, itemID string, quantity int) error {
	return s.mutate(ctx, func(c *domain.Cart) error {
		i := indexOf(c, itemID)
		if i < 0 {
			return fmt.Errorf("set quantity of %s: %w", itemID, ErrItemNotInCart)
		}
		if quantity <= 0 {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			return nil
		}
		c.Lines[i].Quantity = quantity
		return nil
	})
}

func (s *CartStore) Clear(ctx context.Context) error {
	return s.mutate(ctx, func(c *domain.Cart) error {
		c.Lines = []domain.CartLine{}
		return nil
	})
}

func (s *CartStore) Snapshot() domain.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCart(s.cart)
}

func (s *CartStore) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalItems()
}

func (s *CartStore) TotalPrice() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.TotalPrice()
}

func (s *CartStore) Keys() []string { return []string{storage.KeyCart} }

// Apply adopts a cart written by another instance. Nothing is persisted.
func (s *CartStore) Apply(_ string, value []byte) {
	next := domain.Cart{}
	if value != nil {
		cart, err := decodeCart(value)
		if err != nil {
			s.log.Warn("apply synced cart", "error", err)
			return
		}
		next = cart
	}

	s.mu.Lock()
	s.cart = next
	snapshot := copyCart(next)
	s.mu.Unlock()

	s.bus.Publish(TopicCart, snapshot)
}
