package store

import (
	"context"
	"errors"
	"testing"

	"ardelivero-storefront/logging"
	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/storage"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errEventsDown = errors.New("events down")

// eventsDown lets reads through but fails anything that would announce a
// change on the events channel.
type eventsDown struct{}

func (eventsDown) DialHook(next redis.DialHook) redis.DialHook { return next }

func (eventsDown) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		switch cmd.Name() {
		case "publish", "eval", "evalsha":
			cmd.SetErr(errEventsDown)
			return errEventsDown
		}
		return next(ctx, cmd)
	}
}

func (eventsDown) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		for _, cmd := range cmds {
			if cmd.Name() == "publish" {
				return errEventsDown
			}
		}
		return next(ctx, cmds)
	}
}

func TestCartStore_FailedEventKeepsStoredAndMemoryEqual(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	healthy := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { healthy.Close() })
	seed := NewCartStore(ctx, storage.NewRedisStorage(healthy, "storefront", logging.Discard()), nil, logging.Discard())
	require.NoError(t, seed.Add(ctx, falafel, 2))

	broken := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	broken.AddHook(eventsDown{})
	t.Cleanup(func() { broken.Close() })
	st := storage.NewRedisStorage(broken, "storefront", logging.Discard())
	cart := NewCartStore(ctx, st, nil, logging.Discard())
	require.Equal(t, 2, cart.TotalItems())

	steps := []struct {
		name string
		run  func() error
	}{
		{name: "add", run: func() error { return cart.Add(ctx, shawarma, 1) }},
		{name: "set_quantity", run: func() error { return cart.SetQuantity(ctx, falafel.ID, 5) }},
		{name: "remove", run: func() error { return cart.Remove(ctx, falafel.ID) }},
		{name: "clear", run: func() error { return cart.Clear(ctx) }},
	}

	for _, step := range steps {
		t.Run(step.name, func(t *testing.T) {
			assert.ErrorIs(t, step.run(), errEventsDown)
			assert.Equal(t, persistedCart(t, st), cart.Snapshot())
			assert.Equal(t, 2, cart.TotalItems())
		})
	}

	reloaded := NewCartStore(ctx, storage.NewRedisStorage(healthy, "storefront", logging.Discard()), nil, logging.Discard())
	assert.Equal(t, cart.Snapshot(), reloaded.Snapshot())
	assert.Equal(t, []domain.CartLine{{Item: falafel, Quantity: 2}}, reloaded.Snapshot().Lines)
}
