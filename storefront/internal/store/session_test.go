package store

import (
	"context"
	"testing"
	"time"

	"ardelivero-storefront/logging"
	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/storage"

	"github.com/dgrijalva/jwt-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signedToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-backend-secret"))
	require.NoError(t, err)
	return token
}

func TestSessionStore_LoginLogout(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	bus := NewBus()
	var events []*domain.Session
	Subscribe(bus, TopicSession, func(s *domain.Session) { events = append(events, s) })

	sessions := NewSessionStore(ctx, st, bus, logging.Discard())
	assert.Equal(t, "", sessions.Token())

	user := domain.User{ID: "u1", Username: "sara", Email: "sara@example.com", Role: "customer"}
	require.NoError(t, sessions.Login(ctx, user, "tok"))

	restored := NewSessionStore(ctx, st, nil, logging.Discard())
	current, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, user, current.User)
	assert.Equal(t, "tok", restored.Token())

	require.NoError(t, sessions.Logout(ctx))
	_, ok = sessions.Current()
	assert.False(t, ok)

	require.Len(t, events, 2)
	assert.NotNil(t, events[0])
	assert.Nil(t, events[1])
}

func TestSessionStore_Expired(t *testing.T) {
	now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{name: "no_session", token: "", want: true},
		{name: "future_exp", token: signedToken(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), want: false},
		{name: "past_exp", token: signedToken(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}), want: true},
		{name: "no_exp", token: signedToken(t, jwt.MapClaims{"sub": "u1"}), want: false},
		{name: "garbage", token: "not-a-jwt", want: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := context.Background()
			sessions := NewSessionStore(ctx, storage.NewMemoryStorage(), nil, logging.Discard())
			if testCase.token != "" {
				require.NoError(t, sessions.Login(ctx, domain.User{ID: "u1"}, testCase.token))
			}
			assert.Equal(t, testCase.want, sessions.Expired(now))
		})
	}
}

func TestCheckoutMemory(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()

	memory := NewCheckoutMemory(ctx, st, logging.Discard())
	assert.Empty(t, memory.Address())

	require.NoError(t, memory.Remember(ctx, "King Fahd Rd 12", "card"))

	restored := NewCheckoutMemory(ctx, st, logging.Discard())
	assert.Equal(t, "King Fahd Rd 12", restored.Address())
	assert.Equal(t, "card", restored.PaymentType())

	restored.Apply(storage.KeyPaymentType, []byte(`"cash"`))
	assert.Equal(t, "cash", restored.PaymentType())
}

func TestCheckoutMemory_WriteFailureKeepsValues(t *testing.T) {
	ctx := context.Background()
	st := newFlakyStorage()
	memory := NewCheckoutMemory(ctx, st, logging.Discard())
	require.NoError(t, memory.Remember(ctx, "a", "cash"))

	st.failing = true
	assert.ErrorIs(t, memory.Remember(ctx, "b", "card"), errDiskFull)
	assert.Equal(t, "a", memory.Address())
}
