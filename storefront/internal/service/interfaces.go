package service

import (
	"context"

	"ardelivero-storefront/storefront/internal/domain"
)

type CategoryServiceInterface interface {
	List(ctx context.Context) ([]domain.Category, error)
}

type RestaurantServiceInterface interface {
	ListByCategory(ctx context.Context, categoryID string) ([]domain.Restaurant, error)
	Get(ctx context.Context, id string) (*domain.Restaurant, error)
}

type MenuServiceInterface interface {
	ListByCategory(ctx context.Context, categoryID string) ([]domain.MenuItem, error)
	Get(ctx context.Context, id string) (*domain.MenuItem, error)
}

type OrderServiceInterface interface {
	History(ctx context.Context, userID string, filter OrderFilter) ([]domain.Order, error)
	Get(ctx context.Context, id string) (*domain.Order, error)
	Create(ctx context.Context, req OrderRequest) (*domain.Order, error)
}

type AuthServiceInterface interface {
	Register(ctx context.Context, req RegisterRequest) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	VerifyOTP(ctx context.Context, email, code string) error
	ResendOTP(ctx context.Context, email string) error
}

type PaymentServiceInterface interface {
	Status(ctx context.Context, transactionID string) (*TransactionStatus, error)
}

var (
	_ CategoryServiceInterface   = (*CategoryService)(nil)
	_ RestaurantServiceInterface = (*RestaurantService)(nil)
	_ MenuServiceInterface       = (*MenuService)(nil)
	_ OrderServiceInterface      = (*OrderService)(nil)
	_ AuthServiceInterface       = (*AuthService)(nil)
	_ PaymentServiceInterface    = (*PaymentService)(nil)
)
