package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"ardelivero-storefront/config"
	"ardelivero-storefront/logging"
	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/storage"
	"ardelivero-storefront/storefront/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load("")
	require.NoError(t, err)
	return cfg
}

func TestOpenStorage(t *testing.T) {
	tests := []struct {
		name    string
		driver  string
		path    string
		wantErr error
	}{
		{name: "memory", driver: "memory"},
		{name: "file", driver: "file", path: "state.json"},
		{name: "unknown", driver: "etcd", wantErr: ErrUnknownStorageDriver},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			cfg := testConfig(t)
			cfg.Storage.Driver = testCase.driver
			if testCase.path != "" {
				cfg.Storage.Path = filepath.Join(t.TempDir(), testCase.path)
			}

			st, closer, err := OpenStorage(context.Background(), cfg, logging.Discard())

			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Nil(t, closer)
			require.NoError(t, st.Set(context.Background(), storage.KeyPaymentType, []byte(`"cash"`)))
		})
	}
}

func TestNew_SendsKeyAndSessionToken(t *testing.T) {
	var gotKey, gotAuth string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"data":[]}`))
	}))
	defer backend.Close()

	cfg := testConfig(t)
	cfg.API.BaseURL = backend.URL
	cfg.API.Key = "service-key"

	ctx := context.Background()
	a, err := New(ctx, cfg, logging.Discard(), Options{Storage: storage.NewMemoryStorage(), HTTPClient: backend.Client()})
	require.NoError(t, err)
	defer a.Close()

	_, err = a.Categories.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "service-key", gotKey)
	assert.Empty(t, gotAuth)

	require.NoError(t, a.Sessions.Login(ctx, domain.User{ID: "u1"}, "jwt-token"))
	_, err = a.Categories.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Bearer jwt-token", gotAuth)
}

func TestDeviceLocator(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.LocationConfig
		wantCode store.LocationErrorCode
	}{
		{name: "disabled", cfg: config.LocationConfig{}, wantCode: store.LocationPermissionDenied},
		{name: "no_fix", cfg: config.LocationConfig{Enabled: true}, wantCode: store.LocationUnavailable},
		{name: "configured", cfg: config.LocationConfig{Enabled: true, Address: "Riyadh", Latitude: 24.7, Longitude: 46.7}},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			loc, err := NewDeviceLocator(testCase.cfg).Locate(context.Background())
			if testCase.wantCode != 0 {
				var locErr *store.LocationError
				require.ErrorAs(t, err, &locErr)
				assert.Equal(t, testCase.wantCode, locErr.Code)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Riyadh", loc.Address)
		})
	}
}
