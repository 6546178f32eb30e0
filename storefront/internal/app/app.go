// Package app wires the storefront's services and stores from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"ardelivero-storefront/config"
	"ardelivero-storefront/storefront/internal/apiclient"
	"ardelivero-storefront/storefront/internal/checkout"
	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/scheduler"
	"ardelivero-storefront/storefront/internal/service"
	"ardelivero-storefront/storefront/internal/storage"
	"ardelivero-storefront/storefront/internal/store"
)

var ErrUnknownStorageDriver = errors.New("unknown storage driver")

type App struct {
	Config *config.Config
	Log    *slog.Logger

	Storage   storage.Storage
	Bus       *store.Bus
	Cart      *store.CartStore
	Locations *store.LocationStore
	Sessions  *store.SessionStore
	Memory    *store.CheckoutMemory
	Syncer    *store.Syncer

	Categories  service.CategoryServiceInterface
	Restaurants service.RestaurantServiceInterface
	Menus       service.MenuServiceInterface
	Orders      service.OrderServiceInterface
	Auth        service.AuthServiceInterface
	Payments    service.PaymentServiceInterface
	Images      service.ImageResolver
	QR          service.DefaultQRGenerator

	Scheduler scheduler.Scheduler
	Events    storage.OrderEventPublisher
	Checkout  *checkout.Checkout

	closers []func() error
}

// Options override what New would otherwise build from configuration.
type Options struct {
	Storage    storage.Storage
	HTTPClient apiclient.HTTPClient
	Scheduler  scheduler.Scheduler
	Events     storage.OrderEventPublisher
}

func New(ctx context.Context, cfg *config.Config, logger *slog.Logger, opts Options) (*App, error) {
	a := &App{Config: cfg, Log: logger, Bus: store.NewBus()}

	if opts.Storage == nil {
		st, closer, err := OpenStorage(ctx, cfg, logger)
		if err != nil {
			return nil, err
		}
		opts.Storage = st
		a.addCloser(closer)
	}
	a.Storage = opts.Storage

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{}
	}
	if opts.Scheduler == nil {
		opts.Scheduler = scheduler.NewTimeScheduler()
	}
	a.Scheduler = opts.Scheduler

	if opts.Events == nil {
		opts.Events = storage.NopPublisher{}
		if cfg.Kafka.Enabled {
			writer := config.NewKafkaWriter(cfg.Kafka)
			opts.Events = storage.NewKafkaPublisher(writer)
			a.addCloser(writer.Close)
		}
	}
	a.Events = opts.Events

	a.Cart = store.NewCartStore(ctx, a.Storage, a.Bus, logger)
	a.Sessions = store.NewSessionStore(ctx, a.Storage, a.Bus, logger)
	a.Locations = store.NewLocationStore(ctx, a.Storage, NewDeviceLocator(cfg.Location), a.Bus, logger)
	a.Memory = store.NewCheckoutMemory(ctx, a.Storage, logger)
	a.Syncer = store.NewSyncer(a.Storage, logger, a.Cart, a.Sessions, a.Locations, a.Memory)

	api := apiclient.New(apiclient.Config{
		BaseURL:   cfg.API.BaseURL,
		Key:       cfg.API.Key,
		KeyHeader: cfg.API.KeyHeader,
	}, opts.HTTPClient).WithToken(a.Sessions.Token)
	proxy := apiclient.New(apiclient.Config{BaseURL: cfg.Proxy.BaseURL}, opts.HTTPClient)

	a.Categories = service.NewCategoryService(api, logger)
	a.Restaurants = service.NewRestaurantService(api, logger)
	a.Menus = service.NewMenuService(api, logger)
	a.Orders = service.NewOrderService(api, logger)
	a.Auth = service.NewAuthService(api, logger)
	a.Payments = service.NewPaymentService(proxy, logger)
	a.Images = service.ImageResolver{BaseURL: cfg.API.ImageBaseURL, Placeholder: cfg.API.ImagePlaceholder}
	a.QR = service.DefaultQRGenerator{SiteURL: cfg.API.SiteURL}

	a.Checkout = checkout.New(checkout.Deps{
		Cart:         a.Cart,
		Sessions:     a.Sessions,
		Memory:       a.Memory,
		Orders:       a.Orders,
		Payments:     a.Payments,
		Events:       a.Events,
		QR:           a.QR,
		Scheduler:    a.Scheduler,
		PollInterval: cfg.Payment.PollInterval,
		Logger:       logger,
	})
	return a, nil
}

func (a *App) addCloser(fn func() error) {
	if fn != nil {
		a.closers = append(a.closers, fn)
	}
}

func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// OpenStorage builds the configured backend and a function releasing it.
func OpenStorage(ctx context.Context, cfg *config.Config, logger *slog.Logger) (storage.Storage, func() error, error) {
	switch cfg.Storage.Driver {
	case "memory":
		return storage.NewMemoryStorage(), nil, nil
	case "", "file":
		path := cfg.Storage.Path
		if path == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, nil, fmt.Errorf("locate home directory: %w", err)
			}
			path = filepath.Join(home, ".ardelivero", cfg.Storage.Namespace+".json")
		}
		st, err := storage.NewFileStorage(path, logger)
		if err != nil {
			return nil, nil, err
		}
		return st, nil, nil
	case "redis":
		client := config.MustInitRedis(cfg.Redis)
		return storage.NewRedisStorage(client, cfg.Storage.Namespace, logger), client.Close, nil
	case "postgres":
		db := config.MustInitPostgres(cfg.Postgres)
		listener := storage.NewPQListener(cfg.Postgres.DSN(), logger)
		st := storage.NewPostgresStorage(db, listener, cfg.Storage.Namespace, logger)
		if err := st.Migrate(ctx); err != nil {
			listener.Close()
			db.Close()
			return nil, nil, err
		}
		closer := func() error {
			return errors.Join(listener.Close(), db.Close())
		}
		return st, closer, nil
	default:
		return nil, nil, fmt.Errorf("%w: %q", ErrUnknownStorageDriver, cfg.Storage.Driver)
	}
}

// DeviceLocator answers location requests from configuration, since a
// terminal has no geolocation prompt.
type DeviceLocator struct {
	cfg config.LocationConfig
}

func NewDeviceLocator(cfg config.LocationConfig) *DeviceLocator {
	return &DeviceLocator{cfg: cfg}
}

func (d *DeviceLocator) Locate(ctx context.Context) (domain.Location, error) {
	if err := ctx.Err(); err != nil {
		return domain.Location{}, &store.LocationError{Code: store.LocationTimeout, Err: err}
	}
	if !d.cfg.Enabled {
		return domain.Location{}, &store.LocationError{Code: store.LocationPermissionDenied}
	}
	if d.cfg.Latitude == 0 && d.cfg.Longitude == 0 {
		return domain.Location{}, &store.LocationError{Code: store.LocationUnavailable}
	}
	return domain.Location{
		Address:   d.cfg.Address,
		Latitude:  d.cfg.Latitude,
		Longitude: d.cfg.Longitude,
	}, nil
}
