package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"ardelivero-storefront/storefront/internal/storage"
)

// CheckoutMemory remembers the delivery address and payment type of the last
// completed checkout so the next one can be prefilled.
type CheckoutMemory struct {
	mu          sync.Mutex
	address     string
	paymentType string
	storage     storage.Storage
	log         *slog.Logger
}

func NewCheckoutMemory(ctx context.Context, st storage.Storage, logger *slog.Logger) *CheckoutMemory {
	m := &CheckoutMemory{storage: st, log: logger}
	m.address = m.load(ctx, storage.KeyDeliveryAddress)
	m.paymentType = m.load(ctx, storage.KeyPaymentType)
	return m
}

func (m *CheckoutMemory) load(ctx context.Context, key string) string {
	raw, err := m.storage.Get(ctx, key)
	if err != nil {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		m.log.Warn("restore checkout field", "key", key, "error", err)
		return ""
	}
	return value
}

func (m *CheckoutMemory) Remember(ctx context.Context, address, paymentType string) error {
	addr, _ := json.Marshal(address)
	pay, _ := json.Marshal(paymentType)

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.storage.Set(ctx, storage.KeyDeliveryAddress, addr); err != nil {
		return fmt.Errorf("persist delivery address: %w", err)
	}
	if err := m.storage.Set(ctx, storage.KeyPaymentType, pay); err != nil {
		return fmt.Errorf("persist payment type: %w", err)
	}
	m.address = address
	m.paymentType = paymentType
	return nil
}

func (m *CheckoutMemory) Address() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.address
}

func (m *CheckoutMemory) PaymentType() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.paymentType
}

func (m *CheckoutMemory) Keys() []string {
	return []string{storage.KeyDeliveryAddress, storage.KeyPaymentType}
}

func (m *CheckoutMemory) Apply(key string, value []byte) {
	var s string
	if value != nil {
		if err := json.Unmarshal(value, &s); err != nil {
			m.log.Warn("apply synced checkout field", "key", key, "error", err)
			return
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	switch key {
	case storage.KeyDeliveryAddress:
		m.address = s
	case storage.KeyPaymentType:
		m.paymentType = s
	}
}
