package store

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"ardelivero-storefront/logging"
	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/mocks"
	"ardelivero-storefront/storefront/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var riyadh = domain.Location{Address: "Olaya St, Riyadh", Latitude: 24.69, Longitude: 46.68}

func TestLocationStore_Request(t *testing.T) {
	tests := []struct {
		name        string
		locateErr   error
		wantCode    LocationErrorCode
		wantStored  bool
		wantPublish int
	}{
		{name: "granted", wantStored: true, wantPublish: 1},
		{name: "denied", locateErr: &LocationError{Code: LocationPermissionDenied}, wantCode: LocationPermissionDenied},
		{name: "timeout", locateErr: &LocationError{Code: LocationTimeout}, wantCode: LocationTimeout},
		{name: "other_failure", locateErr: assert.AnError, wantCode: LocationUnavailable},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			ctx := context.Background()
			st := storage.NewMemoryStorage()
			bus := NewBus()
			published := 0
			Subscribe(bus, TopicLocation, func(*domain.Location) { published++ })

			locator := mocks.NewLocator(t)
			locator.On("Locate", mock.Anything).Return(riyadh, testCase.locateErr).Once()

			locations := NewLocationStore(ctx, st, locator, bus, logging.Discard())
			loc, err := locations.Request(ctx)

			assert.True(t, locations.PermissionAsked())
			assert.Equal(t, testCase.wantPublish, published)
			_, stored := locations.Current()
			assert.Equal(t, testCase.wantStored, stored)

			if testCase.locateErr != nil {
				var locErr *LocationError
				require.ErrorAs(t, err, &locErr)
				assert.Equal(t, testCase.wantCode, locErr.Code)
				assert.NotEmpty(t, locErr.Error())
				assert.Nil(t, loc)
				_, getErr := st.Get(ctx, storage.KeyLocation)
				assert.ErrorIs(t, getErr, storage.ErrNotFound)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, domain.LocationSourceDevice, loc.Source)
			assert.False(t, loc.UpdatedAt.IsZero())

			raw, err := st.Get(ctx, storage.KeyLocation)
			require.NoError(t, err)
			var persisted domain.Location
			require.NoError(t, json.Unmarshal(raw, &persisted))
			assert.Equal(t, riyadh.Address, persisted.Address)
		})
	}
}

func TestLocationStore_FailureKeepsPreviousLocation(t *testing.T) {
	ctx := context.Background()
	locator := mocks.NewLocator(t)
	locator.On("Locate", mock.Anything).Return(domain.Location{}, &LocationError{Code: LocationPermissionDenied}).Once()

	locations := NewLocationStore(ctx, storage.NewMemoryStorage(), locator, nil, logging.Discard())
	require.NoError(t, locations.Update(ctx, riyadh))

	_, err := locations.Request(ctx)
	require.Error(t, err)

	current, ok := locations.Current()
	require.True(t, ok)
	assert.Equal(t, riyadh.Address, current.Address)
	assert.Equal(t, domain.LocationSourceManual, current.Source)
}

func TestLocationStore_UpdateClearAndRestore(t *testing.T) {
	ctx := context.Background()
	st := storage.NewMemoryStorage()
	bus := NewBus()
	var last *domain.Location
	Subscribe(bus, TopicLocation, func(l *domain.Location) { last = l })

	locations := NewLocationStore(ctx, st, nil, bus, logging.Discard())
	fixed := riyadh
	fixed.UpdatedAt = time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC)
	require.NoError(t, locations.Update(ctx, fixed))
	require.NotNil(t, last)

	restored := NewLocationStore(ctx, st, nil, nil, logging.Discard())
	current, ok := restored.Current()
	require.True(t, ok)
	assert.Equal(t, fixed.UpdatedAt, current.UpdatedAt)
	assert.False(t, restored.PermissionAsked())

	require.NoError(t, locations.Clear(ctx))
	assert.Nil(t, last)
	_, ok = locations.Current()
	assert.False(t, ok)
}

func TestLocationStore_NoLocator(t *testing.T) {
	locations := NewLocationStore(context.Background(), storage.NewMemoryStorage(), nil, nil, logging.Discard())
	_, err := locations.Request(context.Background())

	var locErr *LocationError
	require.ErrorAs(t, err, &locErr)
	assert.Equal(t, LocationUnavailable, locErr.Code)
}

func TestLocationStore_Apply(t *testing.T) {
	locations := NewLocationStore(context.Background(), storage.NewMemoryStorage(), nil, nil, logging.Discard())

	locations.Apply(storage.KeyLocation, []byte(`{"address":"Jeddah","source":"manual"}`))
	locations.Apply(storage.KeyLocationPermissionAsked, []byte(`true`))

	current, ok := locations.Current()
	require.True(t, ok)
	assert.Equal(t, "Jeddah", current.Address)
	assert.True(t, locations.PermissionAsked())

	locations.Apply(storage.KeyLocation, nil)
	_, ok = locations.Current()
	assert.False(t, ok)
}
