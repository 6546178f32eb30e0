package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

// RedisStorage keeps state in a hash and announces every change on a
// pub/sub channel, so instances on different hosts stay in step.
type RedisStorage struct {
	Client    *redis.Client
	namespace string
	origin    string
	log       *slog.Logger
}

func NewRedisStorage(client *redis.Client, namespace string, logger *slog.Logger) *RedisStorage {
	return &RedisStorage{Client: client, namespace: namespace, origin: newOrigin(), log: logger}
}

func (r *RedisStorage) Origin() string { return r.origin }

func (r *RedisStorage) StateKey() string { return r.namespace + ":state" }

func (r *RedisStorage) EventsChannel() string { return r.namespace + ":events" }

func (r *RedisStorage) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := r.Client.HGet(ctx, r.StateKey(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return value, nil
}

// Set writes the field and publishes its event in one MULTI/EXEC, so a
// failed publish never leaves a stored value nobody heard about.
func (r *RedisStorage) Set(ctx context.Context, key string, value []byte) error {
	payload, err := json.Marshal(Event{Key: key, Value: value, Origin: r.origin})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	if _, err := r.Client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, r.StateKey(), key, value)
		pipe.Publish(ctx, r.EventsChannel(), payload)
		return nil
	}); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

// removeAndPublish deletes the field and announces it only when something
// was actually removed.
var removeAndPublish = redis.NewScript(`
if redis.call('HDEL', KEYS[1], ARGV[1]) == 1 then
	redis.call('PUBLISH', KEYS[2], ARGV[2])
	return 1
end
return 0
`)

func (r *RedisStorage) Remove(ctx context.Context, key string) error {
	payload, err := json.Marshal(Event{Key: key, Origin: r.origin})
	if err != nil {
		return fmt.Errorf("encode event: %w", err)
	}
	keys := []string{r.StateKey(), r.EventsChannel()}
	if err := removeAndPublish.Run(ctx, r.Client, keys, key, payload).Err(); err != nil {
		return fmt.Errorf("redis remove %s: %w", key, err)
	}
	return nil
}

// Watch returns once the subscription is live, so changes published after it
// returns are never missed.
func (r *RedisStorage) Watch(ctx context.Context) (<-chan Event, error) {
	ps := r.Client.Subscribe(ctx, r.EventsChannel())
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", r.EventsChannel(), err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		defer ps.Close()
		messages := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					r.log.Warn("decode state event", "error", err)
					continue
				}
				select {
				case out <- ev:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}
