package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/storage"

	"github.com/dgrijalva/jwt-go"
)

var ErrNotLoggedIn = errors.New("not logged in")

type SessionStore struct {
	mu      sync.Mutex
	session *domain.Session
	storage storage.Storage
	bus     *Bus
	log     *slog.Logger
}

func NewSessionStore(ctx context.Context, st storage.Storage, bus *Bus, logger *slog.Logger) *SessionStore {
	s := &SessionStore{storage: st, bus: bus, log: logger}
	raw, err := st.Get(ctx, storage.KeySession)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			logger.Warn("restore session", "error", err)
		}
		return s
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		logger.Warn("restore session", "error", err)
		return s
	}
	s.session = &session
	return s
}

func (s *SessionStore) Login(ctx context.Context, user domain.User, token string) error {
	session := domain.Session{User: user, Token: token}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}

	s.mu.Lock()
	if err := s.storage.Set(ctx, storage.KeySession, payload); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist session: %w", err)
	}
	s.session = &session
	s.mu.Unlock()

	s.bus.Publish(TopicSession, &session)
	return nil
}

func (s *SessionStore) Logout(ctx context.Context) error {
	s.mu.Lock()
	if err := s.storage.Remove(ctx, storage.KeySession); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear session: %w", err)
	}
	s.session = nil
	s.mu.Unlock()

	s.bus.Publish(TopicSession, (*domain.Session)(nil))
	return nil
}

func (s *SessionStore) Current() (domain.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return domain.Session{}, false
	}
	return *s.session, true
}

// Token is the bearer token for authenticated calls, or "".
func (s *SessionStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.session == nil {
		return ""
	}
	return s.session.Token
}

// Expired reports whether the session token's exp claim is before now. The
// signature is not checked here; the backend does that. Tokens that cannot
// be parsed count as expired.
func (s *SessionStore) Expired(now time.Time) bool {
	token := s.Token()
	if token == "" {
		return true
	}
	claims := jwt.MapClaims{}
	if _, _, err := new(jwt.Parser).ParseUnverified(token, claims); err != nil {
		return true
	}
	return !claims.VerifyExpiresAt(now.Unix(), false)
}

func (s *SessionStore) Keys() []string { return []string{storage.KeySession} }

func (s *SessionStore) Apply(_ string, value []byte) {
	var next *domain.Session
	if value != nil {
		var session domain.Session
		if err := json.Unmarshal(value, &session); err != nil {
			s.log.Warn("apply synced session", "error", err)
			return
		}
		next = &session
	}
	s.mu.Lock()
	s.session = next
	s.mu.Unlock()
	s.bus.Publish(TopicSession, next)
}
