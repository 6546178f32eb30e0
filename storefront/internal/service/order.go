package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"ardelivero-storefront/storefront/internal/apiclient"
	"ardelivero-storefront/storefront/internal/domain"
)

var ErrInvalidOrder = errors.New("invalid order payload")

const filterDateLayout = "2006-01-02"

// OrderFilter narrows the order history. Zero fields are not sent.
type OrderFilter struct {
	Status        string
	PaymentType   string
	PaymentStatus string
	From          time.Time
	To            time.Time
}

func (f OrderFilter) Query() url.Values {
	q := url.Values{}
	if f.Status != "" {
		q.Set("status", f.Status)
	}
	if f.PaymentType != "" {
		q.Set("paymentType", f.PaymentType)
	}
	if f.PaymentStatus != "" {
		q.Set("paymentStatus", f.PaymentStatus)
	}
	if !f.From.IsZero() {
		q.Set("startDate", f.From.Format(filterDateLayout))
	}
	if !f.To.IsZero() {
		q.Set("endDate", f.To.Format(filterDateLayout))
	}
	return q
}

type OrderRequest struct {
	Restaurant      string             `json:"restaurant"`
	Items           []domain.OrderLine `json:"items"`
	PaymentType     string             `json:"paymentType"`
	DeliveryAddress string             `json:"deliveryAddress"`
	Location        *domain.GeoPoint   `json:"location,omitempty"`
	Tip             float64            `json:"tip,omitempty"`
	Notes           string             `json:"notes,omitempty"`
}

type OrderService struct {
	api *apiclient.Client
	log *slog.Logger
}

func NewOrderService(api *apiclient.Client, logger *slog.Logger) *OrderService {
	return &OrderService{api: api, log: logger}
}

func (s *OrderService) History(ctx context.Context, userID string, filter OrderFilter) ([]domain.Order, error) {
	path := "/orders/user/" + url.PathEscape(userID)
	orders, err := apiclient.GetData[[]domain.Order](ctx, s.api, path, filter.Query())
	if err != nil {
		s.log.Error("fetch order history", "user_id", userID, "error", err)
		return nil, fmt.Errorf("fetch orders for user %s: %w", userID, err)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, id string) (*domain.Order, error) {
	order, err := apiclient.GetData[domain.Order](ctx, s.api, "/orders/"+url.PathEscape(id), nil)
	if err != nil {
		s.log.Error("fetch order", "order_id", id, "error", err)
		return nil, fmt.Errorf("fetch order %s: %w", id, err)
	}
	return &order, nil
}

func (s *OrderService) Create(ctx context.Context, req OrderRequest) (*domain.Order, error) {
	if req.Restaurant == "" || len(req.Items) == 0 || req.DeliveryAddress == "" {
		return nil, ErrInvalidOrder
	}
	order, err := apiclient.PostData[domain.Order](ctx, s.api, "/orders", req)
	if err != nil {
		s.log.Error("create order", "restaurant_id", req.Restaurant, "error", err)
		return nil, fmt.Errorf("create order: %w", err)
	}
	return &order, nil
}
