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
)

// LocationErrorCode mirrors the geolocation failure codes.
type LocationErrorCode int

const (
	LocationPermissionDenied LocationErrorCode = iota + 1
	LocationUnavailable
	LocationTimeout
)

type LocationError struct {
	Code LocationErrorCode
	Err  error
}

func (e *LocationError) Error() string {
	switch e.Code {
	case LocationPermissionDenied:
		return "location permission denied; enter your address manually"
	case LocationTimeout:
		return "locating took too long; try again"
	default:
		return "your location is currently unavailable"
	}
}

func (e *LocationError) Unwrap() error { return e.Err }

// Locator asks the device for its current position.
type Locator interface {
	Locate(ctx context.Context) (domain.Location, error)
}

type LocationStore struct {
	mu      sync.Mutex
	current *domain.Location
	asked   bool
	storage storage.Storage
	locator Locator
	bus     *Bus
	log     *slog.Logger
	now     func() time.Time
}

func NewLocationStore(ctx context.Context, st storage.Storage, locator Locator, bus *Bus, logger *slog.Logger) *LocationStore {
	s := &LocationStore{storage: st, locator: locator, bus: bus, log: logger, now: time.Now}

	if raw, err := st.Get(ctx, storage.KeyLocation); err == nil {
		var loc domain.Location
		if err := json.Unmarshal(raw, &loc); err != nil {
			logger.Warn("restore location", "error", err)
		} else {
			s.current = &loc
		}
	} else if !errors.Is(err, storage.ErrNotFound) {
		logger.Warn("restore location", "error", err)
	}

	if raw, err := st.Get(ctx, storage.KeyLocationPermissionAsked); err == nil {
		_ = json.Unmarshal(raw, &s.asked)
	}
	return s
}

// Request asks the locator for the device position. On failure the stored
// location is left as it was and a *LocationError is returned.
func (s *LocationStore) Request(ctx context.Context) (*domain.Location, error) {
	if s.locator == nil {
		return nil, &LocationError{Code: LocationUnavailable}
	}

	loc, err := s.locator.Locate(ctx)
	s.markAsked(ctx)
	if err != nil {
		var locErr *LocationError
		if errors.As(err, &locErr) {
			return nil, locErr
		}
		return nil, &LocationError{Code: LocationUnavailable, Err: err}
	}

	loc.Source = domain.LocationSourceDevice
	if err := s.set(ctx, loc); err != nil {
		return nil, err
	}
	return &loc, nil
}

func (s *LocationStore) markAsked(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.asked {
		return
	}
	if err := s.storage.Set(ctx, storage.KeyLocationPermissionAsked, []byte("true")); err != nil {
		s.log.Warn("persist location permission flag", "error", err)
		return
	}
	s.asked = true
}

// Update stores a location the user entered; it is trusted as given.
func (s *LocationStore) Update(ctx context.Context, loc domain.Location) error {
	if loc.Source == "" {
		loc.Source = domain.LocationSourceManual
	}
	return s.set(ctx, loc)
}

func (s *LocationStore) set(ctx context.Context, loc domain.Location) error {
	if loc.UpdatedAt.IsZero() {
		loc.UpdatedAt = s.now().UTC()
	}
	payload, err := json.Marshal(loc)
	if err != nil {
		return fmt.Errorf("encode location: %w", err)
	}

	s.mu.Lock()
	if err := s.storage.Set(ctx, storage.KeyLocation, payload); err != nil {
		s.mu.Unlock()
		s.log.Error("persist location", "error", err)
		return fmt.Errorf("persist location: %w", err)
	}
	s.current = &loc
	s.mu.Unlock()

	s.bus.Publish(TopicLocation, &loc)
	return nil
}

func (s *LocationStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	if err := s.storage.Remove(ctx, storage.KeyLocation); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear location: %w", err)
	}
	s.current = nil
	s.mu.Unlock()

	s.bus.Publish(TopicLocation, (*domain.Location)(nil))
	return nil
}

func (s *LocationStore) Current() (domain.Location, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return domain.Location{}, false
	}
	return *s.current, true
}

func (s *LocationStore) PermissionAsked() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.asked
}

func (s *LocationStore) Keys() []string {
	return []string{storage.KeyLocation, storage.KeyLocationPermissionAsked}
}

func (s *LocationStore) Apply(key string, value []byte) {
	switch key {
	case storage.KeyLocationPermissionAsked:
		asked := false
		if value != nil {
			_ = json.Unmarshal(value, &asked)
		}
		s.mu.Lock()
		s.asked = asked
		s.mu.Unlock()
	case storage.KeyLocation:
		var next *domain.Location
		if value != nil {
			var loc domain.Location
			if err := json.Unmarshal(value, &loc); err != nil {
				s.log.Warn("apply synced location", "error", err)
				return
			}
			next = &loc
		}
		s.mu.Lock()
		s.current = next
		s.mu.Unlock()
		s.bus.Publish(TopicLocation, next)
	}
}
