package otp_test

import (
	"context"
	"testing"
	"time"

	"ardelivero-storefront/logging"
	"ardelivero-storefront/storefront/internal/apiclient"
	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/mocks"
	"ardelivero-storefront/storefront/internal/otp"
	"ardelivero-storefront/storefront/internal/scheduler"
	"ardelivero-storefront/storefront/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type harness struct {
	flow     *otp.Flow
	auth     *mocks.AuthServiceInterface
	sessions *mocks.SessionWriter
	notify   *mocks.Notifier
	nav      *mocks.Navigator
	clock    *scheduler.ManualScheduler
}

func newHarness(t *testing.T) *harness {
	h := &harness{
		auth:     mocks.NewAuthServiceInterface(t),
		sessions: mocks.NewSessionWriter(t),
		notify:   mocks.NewNotifier(t),
		nav:      mocks.NewNavigator(t),
		clock:    scheduler.NewManualScheduler(),
	}
	h.flow = otp.NewFlow(h.auth, h.sessions, h.clock, h.notify, h.nav, logging.Discard(), otp.DefaultCountdown)
	return h
}

func TestFlow_CountdownExpires(t *testing.T) {
	h := newHarness(t)
	h.flow.Begin("sara@example.com", "pw", false)

	state := h.flow.State()
	assert.Equal(t, otp.PhaseAwaitingOTP, state.Phase)
	assert.Equal(t, otp.DisplayCounting, state.Display)
	assert.Equal(t, 120*time.Second, state.Remaining)
	assert.False(t, state.CanResend)

	h.clock.Advance(119 * time.Second)
	assert.Equal(t, time.Second, h.flow.Remaining())
	assert.ErrorIs(t, h.flow.Resend(context.Background()), otp.ErrResendNotAllowed)

	h.clock.Advance(time.Second)
	state = h.flow.State()
	assert.Equal(t, otp.PhaseAwaitingOTP, state.Phase)
	assert.Equal(t, otp.DisplayExpired, state.Display)
	assert.Zero(t, state.Remaining)
	assert.True(t, state.CanResend)
	assert.Equal(t, 0, h.clock.Active())

	h.clock.Advance(time.Minute)
	assert.Zero(t, h.flow.Remaining())
}

func TestFlow_ResendResetsCountdown(t *testing.T) {
	tests := []struct {
		name      string
		resendErr error
		notify    string
	}{
		{name: "success", notify: "Success"},
		{name: "failure_still_resets", resendErr: &apiclient.Error{Status: 429, Message: "Too many requests"}, notify: "Failure"},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			h := newHarness(t)
			h.auth.On("ResendOTP", mock.Anything, "sara@example.com").Return(testCase.resendErr).Once()
			h.notify.On(testCase.notify, mock.Anything).Once()

			h.flow.Begin("sara@example.com", "pw", false)
			h.clock.Advance(otp.DefaultCountdown)

			err := h.flow.Resend(context.Background())
			if testCase.resendErr != nil {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}

			state := h.flow.State()
			assert.Equal(t, otp.DefaultCountdown, state.Remaining)
			assert.Equal(t, otp.DisplayCounting, state.Display)
			assert.ErrorIs(t, h.flow.Resend(context.Background()), otp.ErrResendNotAllowed)

			h.clock.Advance(10 * time.Second)
			assert.Equal(t, 110*time.Second, h.flow.Remaining())
		})
	}
}

func TestFlow_ResendInFlightRejected(t *testing.T) {
	h := newHarness(t)
	release := make(chan struct{})
	entered := make(chan struct{})
	h.auth.On("ResendOTP", mock.Anything, "sara@example.com").
		Run(func(mock.Arguments) {
			close(entered)
			<-release
		}).
		Return(nil).Once()
	h.notify.On("Success", mock.Anything).Once()

	h.flow.Begin("sara@example.com", "pw", false)
	h.clock.Advance(otp.DefaultCountdown)

	done := make(chan error, 1)
	go func() { done <- h.flow.Resend(context.Background()) }()
	<-entered

	assert.False(t, h.flow.State().CanResend)
	assert.ErrorIs(t, h.flow.Resend(context.Background()), otp.ErrResendInFlight)

	close(release)
	require.NoError(t, <-done)
}

func TestFlow_SubmitWrongCodeStaysAwaiting(t *testing.T) {
	h := newHarness(t)
	h.auth.On("VerifyOTP", mock.Anything, "sara@example.com", "000000").
		Return(&apiclient.Error{Status: 400, Message: "Invalid OTP"}).Once()
	h.notify.On("Failure", "Invalid OTP").Once()

	h.flow.Begin("sara@example.com", "pw", true)
	h.clock.Advance(30 * time.Second)

	err := h.flow.Submit(context.Background(), "000000")

	assert.Equal(t, 400, apiclient.StatusOf(err))
	state := h.flow.State()
	assert.Equal(t, otp.PhaseAwaitingOTP, state.Phase)
	assert.Equal(t, otp.DisplayFailed, state.Display)
	assert.Equal(t, 90*time.Second, state.Remaining)

	h.clock.Advance(time.Second)
	assert.Equal(t, 89*time.Second, h.flow.Remaining())
}

func TestFlow_SubmitNetworkFailure(t *testing.T) {
	h := newHarness(t)
	h.auth.On("VerifyOTP", mock.Anything, "sara@example.com", "123456").
		Return(&apiclient.Error{Message: "connection refused"}).Once()
	h.notify.On("Failure", "Verification failed").Once()

	h.flow.Begin("sara@example.com", "pw", false)
	assert.Error(t, h.flow.Submit(context.Background(), "123456"))
	assert.Equal(t, otp.PhaseAwaitingOTP, h.flow.State().Phase)
}

func TestFlow_SubmitGuestLogsInAndGoesToCheckout(t *testing.T) {
	h := newHarness(t)
	user := domain.User{ID: "u1", Email: "guest@example.com", Role: "customer"}
	h.auth.On("VerifyOTP", mock.Anything, "guest@example.com", "123456").Return(nil).Once()
	h.auth.On("Login", mock.Anything, "guest@example.com", "placeholder").
		Return(&service.LoginResult{Token: "jwt", User: user}, nil).Once()
	h.sessions.On("Login", mock.Anything, user, "jwt").Return(nil).Once()
	h.notify.On("Success", mock.Anything).Once()
	h.nav.On("ToCheckout").Once()

	h.flow.Begin("guest@example.com", "placeholder", true)
	require.NoError(t, h.flow.Submit(context.Background(), " 123456 "))

	assert.Equal(t, otp.PhaseVerified, h.flow.State().Phase)
	assert.Equal(t, 0, h.clock.Active())
	h.nav.AssertNotCalled(t, "ToLogin")
}

func TestFlow_SubmitGuestLoginFailureFallsBackToLogin(t *testing.T) {
	h := newHarness(t)
	h.auth.On("VerifyOTP", mock.Anything, "guest@example.com", "123456").Return(nil).Once()
	h.auth.On("Login", mock.Anything, "guest@example.com", "placeholder").Return(nil, assert.AnError).Once()
	h.notify.On("Failure", mock.Anything).Once()
	h.nav.On("ToLogin").Once()

	h.flow.Begin("guest@example.com", "placeholder", true)
	err := h.flow.Submit(context.Background(), "123456")

	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, otp.PhaseVerified, h.flow.State().Phase)
}

func TestFlow_SubmitRegisteredUserGoesToLogin(t *testing.T) {
	h := newHarness(t)
	h.auth.On("VerifyOTP", mock.Anything, "sara@example.com", "123456").Return(nil).Once()
	h.notify.On("Success", mock.Anything).Once()
	h.nav.On("ToLogin").Once()

	h.flow.Begin("sara@example.com", "pw", false)
	require.NoError(t, h.flow.Submit(context.Background(), "123456"))

	h.auth.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)
}

func TestFlow_SubmitValidation(t *testing.T) {
	h := newHarness(t)
	assert.ErrorIs(t, h.flow.Submit(context.Background(), "123456"), otp.ErrNotAwaiting)

	h.flow.Begin("sara@example.com", "pw", false)
	assert.ErrorIs(t, h.flow.Submit(context.Background(), "  "), otp.ErrEmptyCode)
}

func TestFlow_BackDiscardsState(t *testing.T) {
	h := newHarness(t)
	h.nav.On("ToRegister").Once()

	h.flow.Begin("sara@example.com", "pw", false)
	h.flow.Back()

	state := h.flow.State()
	assert.Equal(t, otp.PhaseRegistered, state.Phase)
	assert.Empty(t, state.Email)
	assert.Equal(t, otp.DisplayNone, state.Display)
	assert.Equal(t, 0, h.clock.Active())
}

func TestFlow_CloseStopsTimerAndDropsResults(t *testing.T) {
	h := newHarness(t)
	h.flow.Begin("sara@example.com", "pw", false)
	h.clock.Advance(5 * time.Second)

	h.flow.Close()
	h.clock.Advance(time.Minute)

	assert.Equal(t, 115*time.Second, h.flow.Remaining())
	assert.ErrorIs(t, h.flow.Submit(context.Background(), "123456"), otp.ErrClosed)
}

func TestFlow_Register(t *testing.T) {
	t.Run("guest_gets_placeholder_password", func(t *testing.T) {
		h := newHarness(t)
		var sent service.RegisterRequest
		h.auth.On("Register", mock.Anything, mock.AnythingOfType("service.RegisterRequest")).
			Run(func(args mock.Arguments) { sent = args.Get(1).(service.RegisterRequest) }).
			Return(nil).Once()
		h.notify.On("Success", mock.Anything).Once()

		require.NoError(t, h.flow.Register(context.Background(), service.RegisterRequest{
			Username: "guest", Email: "guest@example.com", Guest: true,
		}))

		assert.NotEmpty(t, sent.Password)
		state := h.flow.State()
		assert.Equal(t, otp.PhaseAwaitingOTP, state.Phase)
		assert.True(t, state.Guest)
	})

	t.Run("failure_stays_registered", func(t *testing.T) {
		h := newHarness(t)
		h.auth.On("Register", mock.Anything, mock.Anything).
			Return(&apiclient.Error{Status: 409, Message: "Email already registered"}).Once()
		h.notify.On("Failure", "Email already registered").Once()

		err := h.flow.Register(context.Background(), service.RegisterRequest{Email: "sara@example.com", Password: "pw"})

		assert.Equal(t, 409, apiclient.StatusOf(err))
		assert.Equal(t, otp.PhaseRegistered, h.flow.State().Phase)
	})
}
