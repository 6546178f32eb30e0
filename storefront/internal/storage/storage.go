// Package storage persists the storefront's client state as JSON documents
// under fixed keys and reports changes made by other instances.
package storage

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var ErrNotFound = errors.New("key not found")

// Keys used by the stores.
const (
	KeyCart                    = "cart"
	KeyLocation                = "location"
	KeyLocationPermissionAsked = "locationPermissionAsked"
	KeySession                 = "session"
	KeyDeliveryAddress         = "deliveryAddress"
	KeyPaymentType             = "paymentType"
)

// Event reports a change to a key. A nil Value means the key was removed.
// Origin identifies the Storage instance that made the change.
type Event struct {
	Key    string `json:"key"`
	Value  []byte `json:"value,omitempty"`
	Origin string `json:"origin"`
}

func (e Event) Removed() bool { return e.Value == nil }

type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
	// Watch streams changes until ctx is done, then closes the channel.
	Watch(ctx context.Context) (<-chan Event, error)
	// Origin is this instance's id, stamped on the events it causes.
	Origin() string
}

func newOrigin() string {
	return uuid.NewString()
}
