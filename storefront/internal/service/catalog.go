package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"ardelivero-storefront/storefront/internal/apiclient"
	"ardelivero-storefront/storefront/internal/domain"
)

type CategoryService struct {
	api *apiclient.Client
	log *slog.Logger
}

func NewCategoryService(api *apiclient.Client, logger *slog.Logger) *CategoryService {
	return &CategoryService{api: api, log: logger}
}

func (s *CategoryService) List(ctx context.Context) ([]domain.Category, error) {
	categories, err := apiclient.GetData[[]domain.Category](ctx, s.api, "/categories", nil)
	if err != nil {
		s.log.Error("fetch categories", "error", err)
		return nil, fmt.Errorf("fetch categories: %w", err)
	}
	return categories, nil
}

type RestaurantService struct {
	api *apiclient.Client
	log *slog.Logger
}

func NewRestaurantService(api *apiclient.Client, logger *slog.Logger) *RestaurantService {
	return &RestaurantService{api: api, log: logger}
}

func (s *RestaurantService) ListByCategory(ctx context.Context, categoryID string) ([]domain.Restaurant, error) {
	path := "/restaurants/category/" + url.PathEscape(categoryID)
	restaurants, err := apiclient.GetData[[]domain.Restaurant](ctx, s.api, path, nil)
	if err != nil {
		s.log.Error("fetch restaurants by category", "category_id", categoryID, "error", err)
		return nil, fmt.Errorf("fetch restaurants for category %s: %w", categoryID, err)
	}
	return restaurants, nil
}

func (s *RestaurantService) Get(ctx context.Context, id string) (*domain.Restaurant, error) {
	restaurant, err := apiclient.GetData[domain.Restaurant](ctx, s.api, "/restaurants/"+url.PathEscape(id), nil)
	if err != nil {
		s.log.Error("fetch restaurant", "restaurant_id", id, "error", err)
		return nil, fmt.Errorf("fetch restaurant %s: %w", id, err)
	}
	return &restaurant, nil
}

type MenuService struct {
	api *apiclient.Client
	log *slog.Logger
}

func NewMenuService(api *apiclient.Client, logger *slog.Logger) *MenuService {
	return &MenuService{api: api, log: logger}
}

func (s *MenuService) ListByCategory(ctx context.Context, categoryID string) ([]domain.MenuItem, error) {
	path := "/menus/category/" + url.PathEscape(categoryID)
	menus, err := apiclient.GetData[[]domain.MenuItem](ctx, s.api, path, nil)
	if err != nil {
		s.log.Error("fetch menus by category", "category_id", categoryID, "error", err)
		return nil, fmt.Errorf("fetch menus for category %s: %w", categoryID, err)
	}
	return menus, nil
}

func (s *MenuService) Get(ctx context.Context, id string) (*domain.MenuItem, error) {
	menu, err := apiclient.GetData[domain.MenuItem](ctx, s.api, "/menus/"+url.PathEscape(id), nil)
	if err != nil {
		s.log.Error("fetch menu", "menu_id", id, "error", err)
		return nil, fmt.Errorf("fetch menu %s: %w", id, err)
	}
	return &menu, nil
}
