package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lib/pq"
)

// Listener is the part of *pq.Listener that PostgresStorage uses.
type Listener interface {
	Listen(channel string) error
	NotificationChannel() <-chan *pq.Notification
	Close() error
}

var _ Listener = (*pq.Listener)(nil)

const (
	minReconnect = 10 * time.Second
	maxReconnect = time.Minute
)

const createStateTable = `
	CREATE TABLE IF NOT EXISTS client_state (
		namespace  TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (namespace, key)
	)`

// notice is the NOTIFY payload. Values are read back from the table since
// NOTIFY payloads are capped at 8000 bytes.
type notice struct {
	Key     string `json:"key"`
	Origin  string `json:"origin"`
	Removed bool   `json:"removed,omitempty"`
}

type PostgresStorage struct {
	DB        *sql.DB
	listener  Listener
	namespace string
	origin    string
	log       *slog.Logger
}

func NewPostgresStorage(db *sql.DB, listener Listener, namespace string, logger *slog.Logger) *PostgresStorage {
	return &PostgresStorage{DB: db, listener: listener, namespace: namespace, origin: newOrigin(), log: logger}
}

// NewPQListener connects a LISTEN session with lib/pq's reconnect policy.
func NewPQListener(dsn string, logger *slog.Logger) *pq.Listener {
	return pq.NewListener(dsn, minReconnect, maxReconnect, func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("postgres listener", "event", ev, "error", err)
		}
	})
}

func (p *PostgresStorage) Origin() string { return p.origin }

// Channel is the NOTIFY channel for this namespace.
func (p *PostgresStorage) Channel() string { return "client_state_" + p.namespace }

func (p *PostgresStorage) Migrate(ctx context.Context) error {
	if _, err := p.DB.ExecContext(ctx, createStateTable); err != nil {
		return fmt.Errorf("create client_state table: %w", err)
	}
	return nil
}

func (p *PostgresStorage) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := p.DB.QueryRowContext(ctx, `
		SELECT value FROM client_state
		WHERE namespace = $1 AND key = $2
	`, p.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres get %s: %w", key, err)
	}
	return value, nil
}

func (p *PostgresStorage) Set(ctx context.Context, key string, value []byte) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO client_state (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = now()
	`, p.namespace, key, string(value)); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	if err := p.notify(ctx, tx, notice{Key: key, Origin: p.origin}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres set %s: %w", key, err)
	}
	return nil
}

func (p *PostgresStorage) Remove(ctx context.Context, key string) error {
	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("postgres remove %s: %w", key, err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `
		DELETE FROM client_state
		WHERE namespace = $1 AND key = $2
	`, p.namespace, key)
	if err != nil {
		return fmt.Errorf("postgres remove %s: %w", key, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return tx.Commit()
	}
	if err := p.notify(ctx, tx, notice{Key: key, Origin: p.origin, Removed: true}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("postgres remove %s: %w", key, err)
	}
	return nil
}

// notify queues the NOTIFY inside tx; Postgres delivers it only on commit,
// so listeners never hear about a write that was rolled back.
func (p *PostgresStorage) notify(ctx context.Context, tx *sql.Tx, n notice) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode notice: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `SELECT pg_notify($1, $2)`, p.Channel(), string(payload)); err != nil {
		return fmt.Errorf("notify %s: %w", n.Key, err)
	}
	return nil
}

func (p *PostgresStorage) Watch(ctx context.Context) (<-chan Event, error) {
	if p.listener == nil {
		return nil, errors.New("postgres storage has no listener")
	}
	if err := p.listener.Listen(p.Channel()); err != nil && !errors.Is(err, pq.ErrChannelAlreadyOpen) {
		return nil, fmt.Errorf("listen %s: %w", p.Channel(), err)
	}

	out := make(chan Event)
	go func() {
		defer close(out)
		notifications := p.listener.NotificationChannel()
		for {
			select {
			case <-ctx.Done():
				return
			case n, ok := <-notifications:
				if !ok {
					return
				}
				// lib/pq sends nil after re-establishing a lost connection.
				if n == nil {
					continue
				}
				ev, err := p.resolve(ctx, n.Extra)
				if err != nil {
					p.log.Warn("resolve state notice", "error", err)
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

func (p *PostgresStorage) resolve(ctx context.Context, payload string) (Event, error) {
	var n notice
	if err := json.Unmarshal([]byte(payload), &n); err != nil {
		return Event{}, fmt.Errorf("decode notice: %w", err)
	}
	ev := Event{Key: n.Key, Origin: n.Origin}
	if n.Removed {
		return ev, nil
	}
	value, err := p.Get(ctx, n.Key)
	if errors.Is(err, ErrNotFound) {
		return ev, nil
	}
	if err != nil {
		return Event{}, err
	}
	ev.Value = value
	return ev, nil
}
