package store

import (
	"context"
	"fmt"
	"log/slog"

	"ardelivero-storefront/storefront/internal/storage"
)

// Syncable is a store that adopts values written by other instances.
type Syncable interface {
	Keys() []string
	Apply(key string, value []byte)
}

var (
	_ Syncable = (*CartStore)(nil)
	_ Syncable = (*LocationStore)(nil)
	_ Syncable = (*SessionStore)(nil)
	_ Syncable = (*CheckoutMemory)(nil)
)

// Syncer applies other instances' changes to the local stores. The policy is
// last writer wins: whatever value arrives replaces the local one, no merge.
type Syncer struct {
	Storage storage.Storage
	routes  map[string]Syncable
	log     *slog.Logger
}

func NewSyncer(st storage.Storage, logger *slog.Logger, stores ...Syncable) *Syncer {
	routes := make(map[string]Syncable)
	for _, s := range stores {
		for _, key := range s.Keys() {
			routes[key] = s
		}
	}
	return &Syncer{Storage: st, routes: routes, log: logger}
}

// Start blocks, applying events until ctx is done or the watch ends.
func (s *Syncer) Start(ctx context.Context) error {
	events, err := s.Storage.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watch storage: %w", err)
	}
	s.log.Info("state sync started", "origin", s.Storage.Origin())
	for ev := range events {
		s.ProcessEvent(ev)
	}
	return ctx.Err()
}

func (s *Syncer) ProcessEvent(ev storage.Event) {
	if ev.Origin == s.Storage.Origin() {
		return
	}
	target, ok := s.routes[ev.Key]
	if !ok {
		return
	}
	s.log.Debug("applying synced state", "key", ev.Key, "origin", ev.Origin, "removed", ev.Removed())
	target.Apply(ev.Key, ev.Value)
}
