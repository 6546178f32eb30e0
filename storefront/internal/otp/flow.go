// Package otp drives the register → verify → login sequence and its resend
// countdown.
package otp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"ardelivero-storefront/storefront/internal/apiclient"
	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/scheduler"
	"ardelivero-storefront/storefront/internal/service"

	"github.com/google/uuid"
)

const (
	DefaultCountdown = 120 * time.Second
	tick             = time.Second
)

var (
	ErrNotAwaiting      = errors.New("no verification in progress")
	ErrEmptyCode        = errors.New("verification code is required")
	ErrResendNotAllowed = errors.New("resend is available when the countdown reaches zero")
	ErrResendInFlight   = errors.New("a resend is already in progress")
	ErrClosed           = errors.New("verification flow closed")
)

type Phase int

const (
	PhaseRegistered Phase = iota
	PhaseAwaitingOTP
	PhaseVerified
)

func (p Phase) String() string {
	switch p {
	case PhaseAwaitingOTP:
		return "awaiting_otp"
	case PhaseVerified:
		return "verified"
	default:
		return "registered"
	}
}

// Display refines PhaseAwaitingOTP for rendering. Neither Expired nor Failed
// leaves the awaiting phase.
type Display int

const (
	DisplayNone Display = iota
	DisplayCounting
	DisplayExpired
	DisplayFailed
)

func (d Display) String() string {
	switch d {
	case DisplayCounting:
		return "counting"
	case DisplayExpired:
		return "expired"
	case DisplayFailed:
		return "failed"
	default:
		return ""
	}
}

type State struct {
	Phase     Phase
	Display   Display
	Email     string
	Guest     bool
	Remaining time.Duration
	CanResend bool
}

type Notifier interface {
	Success(message string)
	Failure(message string)
}

type Navigator interface {
	ToRegister()
	ToLogin()
	ToCheckout()
}

// SessionWriter stores the session created by a guest's automatic login.
type SessionWriter interface {
	Login(ctx context.Context, user domain.User, token string) error
}

type Flow struct {
	mu        sync.Mutex
	auth      service.AuthServiceInterface
	sessions  SessionWriter
	scheduler scheduler.Scheduler
	notify    Notifier
	nav       Navigator
	log       *slog.Logger
	countdown time.Duration

	phase     Phase
	email     string
	password  string
	guest     bool
	remaining time.Duration
	failed    bool
	resending bool
	closed    bool
	timer     scheduler.Task
}

func NewFlow(
	auth service.AuthServiceInterface,
	sessions SessionWriter,
	sched scheduler.Scheduler,
	notify Notifier,
	nav Navigator,
	logger *slog.Logger,
	countdown time.Duration,
) *Flow {
	if countdown <= 0 {
		countdown = DefaultCountdown
	}
	return &Flow{
		auth:      auth,
		sessions:  sessions,
		scheduler: sched,
		notify:    notify,
		nav:       nav,
		log:       logger,
		countdown: countdown,
	}
}

// Register creates the account and, on success, starts verification. Guests
// without a password get a random one; it is only used for the automatic
// login after verification.
func (f *Flow) Register(ctx context.Context, req service.RegisterRequest) error {
	if req.Guest && req.Password == "" {
		req.Password = uuid.NewString()
	}
	if err := f.auth.Register(ctx, req); err != nil {
		f.notify.Failure(messageOf(err, "Registration failed"))
		return err
	}
	f.notify.Success("Account created. Check " + req.Email + " for your code.")
	f.Begin(req.Email, req.Password, req.Guest)
	return nil
}

// Begin enters PhaseAwaitingOTP and starts the countdown.
func (f *Flow) Begin(email, password string, guest bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTimerLocked()
	f.phase = PhaseAwaitingOTP
	f.email = email
	f.password = password
	f.guest = guest
	f.failed = false
	f.resending = false
	f.closed = false
	f.startTimerLocked()
}

func (f *Flow) startTimerLocked() {
	f.remaining = f.countdown
	f.timer = f.scheduler.Every(tick, f.onTick)
}

func (f *Flow) stopTimerLocked() {
	if f.timer != nil {
		f.timer.Cancel()
		f.timer = nil
	}
}

func (f *Flow) onTick() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.phase != PhaseAwaitingOTP || f.remaining <= 0 {
		f.stopTimerLocked()
		return
	}
	f.remaining -= tick
	if f.remaining <= 0 {
		f.remaining = 0
		f.stopTimerLocked()
	}
}

// Submit checks code. A rejected code keeps the flow awaiting and leaves the
// countdown running.
func (f *Flow) Submit(ctx context.Context, code string) error {
	code = strings.TrimSpace(code)

	f.mu.Lock()
	if err := f.awaitingLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	if code == "" {
		f.mu.Unlock()
		return ErrEmptyCode
	}
	email, password, guest := f.email, f.password, f.guest
	f.mu.Unlock()

	err := f.auth.VerifyOTP(ctx, email, code)

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return ErrClosed
	}
	if err != nil {
		f.failed = true
		f.mu.Unlock()
		f.log.Warn("otp verification rejected", "email", email, "error", err)
		f.notify.Failure(messageOf(err, "Verification failed"))
		return err
	}
	f.phase = PhaseVerified
	f.failed = false
	f.stopTimerLocked()
	f.mu.Unlock()

	if !guest {
		f.notify.Success("Email verified. Please log in.")
		f.nav.ToLogin()
		return nil
	}
	return f.loginGuest(ctx, email, password)
}

func (f *Flow) loginGuest(ctx context.Context, email, password string) error {
	result, err := f.auth.Login(ctx, email, password)
	if err == nil {
		err = f.sessions.Login(ctx, result.User, result.Token)
	}
	if f.isClosed() {
		return ErrClosed
	}
	if err != nil {
		f.log.Error("guest login after verification", "email", email, "error", err)
		f.notify.Failure("Verified, but signing in failed. Please log in.")
		f.nav.ToLogin()
		return fmt.Errorf("guest login: %w", err)
	}
	f.notify.Success("Email verified. Continuing to checkout.")
	f.nav.ToCheckout()
	return nil
}

// Resend requests a new code. The countdown restarts once the request
// returns, whether or not it succeeded.
func (f *Flow) Resend(ctx context.Context) error {
	f.mu.Lock()
	if err := f.awaitingLocked(); err != nil {
		f.mu.Unlock()
		return err
	}
	if f.resending {
		f.mu.Unlock()
		return ErrResendInFlight
	}
	if f.remaining > 0 {
		f.mu.Unlock()
		return ErrResendNotAllowed
	}
	f.resending = true
	email := f.email
	f.mu.Unlock()

	err := f.auth.ResendOTP(ctx, email)

	f.mu.Lock()
	f.resending = false
	if f.closed || f.phase != PhaseAwaitingOTP {
		f.mu.Unlock()
		return ErrClosed
	}
	f.failed = false
	f.stopTimerLocked()
	f.startTimerLocked()
	f.mu.Unlock()

	if err != nil {
		f.notify.Failure(messageOf(err, "Could not resend the code"))
		return err
	}
	f.notify.Success("A new code was sent to " + email)
	return nil
}

// Back abandons verification and returns to registration.
func (f *Flow) Back() {
	f.mu.Lock()
	f.stopTimerLocked()
	f.phase = PhaseRegistered
	f.email, f.password, f.guest = "", "", false
	f.remaining = 0
	f.failed = false
	f.mu.Unlock()

	f.nav.ToRegister()
}

// Close stops the countdown. Results of calls still in flight are discarded.
func (f *Flow) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	f.stopTimerLocked()
}

func (f *Flow) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *Flow) awaitingLocked() error {
	if f.closed {
		return ErrClosed
	}
	if f.phase != PhaseAwaitingOTP {
		return ErrNotAwaiting
	}
	return nil
}

func (f *Flow) Remaining() time.Duration {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.remaining
}

func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	s := State{
		Phase:     f.phase,
		Email:     f.email,
		Guest:     f.guest,
		Remaining: f.remaining,
	}
	if f.phase == PhaseAwaitingOTP {
		switch {
		case f.remaining <= 0:
			s.Display = DisplayExpired
		case f.failed:
			s.Display = DisplayFailed
		default:
			s.Display = DisplayCounting
		}
		s.CanResend = f.remaining <= 0 && !f.resending && !f.closed
	}
	return s
}

// messageOf prefers the backend's message for API errors.
func messageOf(err error, fallback string) string {
	var apiErr *apiclient.Error
	if errors.As(err, &apiErr) && apiErr.Status != 0 && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}
