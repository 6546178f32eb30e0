package service_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ardelivero-storefront/logging"
	"ardelivero-storefront/storefront/internal/apiclient"
	"ardelivero-storefront/storefront/internal/domain"
	"ardelivero-storefront/storefront/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	body   string
}

func backend(t *testing.T, status int, body string) (*apiclient.Client, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		*rec = recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: string(b)}
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return apiclient.New(apiclient.Config{BaseURL: srv.URL, Key: "k"}, srv.Client()), rec
}

func TestCategoryService_List(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantLen int
		wantErr bool
	}{
		{name: "success", status: 200, body: `{"success":true,"data":[{"_id":"c1","title":"Pharmacy","productCount":4}]}`, wantLen: 1},
		{name: "empty", status: 200, body: `{"success":true,"data":[]}`, wantLen: 0},
		{name: "server_error", status: 500, body: `{"message":"boom"}`, wantErr: true},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			api, rec := backend(t, testCase.status, testCase.body)
			svc := service.NewCategoryService(api, logging.Discard())

			categories, err := svc.List(context.Background())

			assert.Equal(t, "/categories", rec.path)
			if testCase.wantErr {
				assert.Error(t, err)
				assert.Equal(t, testCase.status, apiclient.StatusOf(err))
				return
			}
			require.NoError(t, err)
			assert.Len(t, categories, testCase.wantLen)
		})
	}
}

func TestRestaurantService(t *testing.T) {
	body := `{"data":[{"_id":"r1","name":"Shawarma House","location":{"type":"Point","coordinates":[46.7,24.7]},"openingHours":{"monday":{"from":"09:00","to":"22:00"}}}]}`
	api, rec := backend(t, 200, body)
	svc := service.NewRestaurantService(api, logging.Discard())

	restaurants, err := svc.ListByCategory(context.Background(), "cat 1")
	require.NoError(t, err)

	assert.Equal(t, "/restaurants/category/cat 1", rec.path)
	require.Len(t, restaurants, 1)
	assert.Equal(t, "Point", restaurants[0].Location.Type)
	assert.Equal(t, [2]float64{46.7, 24.7}, restaurants[0].Location.Coordinates)
	assert.Equal(t, "22:00", restaurants[0].OpeningHours["monday"].To)
}

func TestMenuService_Get(t *testing.T) {
	api, rec := backend(t, 200, `{"data":{"_id":"m1","name":"Falafel","price":12,"sellPrice":10}}`)
	svc := service.NewMenuService(api, logging.Discard())

	menu, err := svc.Get(context.Background(), "m1")
	require.NoError(t, err)

	assert.Equal(t, "/menus/m1", rec.path)
	assert.Equal(t, 10.0, menu.EffectivePrice())
}

func TestMenuService_NotFound(t *testing.T) {
	api, _ := backend(t, 404, `{"message":"Menu not found"}`)
	svc := service.NewMenuService(api, logging.Discard())

	_, err := svc.Get(context.Background(), "missing")

	var apiErr *apiclient.Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "Menu not found", apiErr.Message)
}

func TestOrderService_History(t *testing.T) {
	api, rec := backend(t, 200, `{"data":[{"_id":"o1","status":"delivered","total":50}]}`)
	svc := service.NewOrderService(api, logging.Discard())

	filter := service.OrderFilter{
		Status:      "delivered",
		PaymentType: "card",
		From:        time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		To:          time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC),
	}
	orders, err := svc.History(context.Background(), "u1", filter)
	require.NoError(t, err)

	assert.Equal(t, "/orders/user/u1", rec.path)
	assert.Equal(t, "endDate=2026-10-18&paymentType=card&startDate=2026-10-01&status=delivered", rec.query)
	require.Len(t, orders, 1)
	assert.Equal(t, 50.0, orders[0].Total)
}

func TestOrderService_Create(t *testing.T) {
	tests := []struct {
		name    string
		req     service.OrderRequest
		wantErr error
	}{
		{
			name:    "missing_restaurant",
			req:     service.OrderRequest{Items: []domain.OrderLine{{Menu: "m1", Quantity: 1}}, DeliveryAddress: "x"},
			wantErr: service.ErrInvalidOrder,
		},
		{
			name:    "no_items",
			req:     service.OrderRequest{Restaurant: "r1", DeliveryAddress: "x"},
			wantErr: service.ErrInvalidOrder,
		},
		{
			name: "valid",
			req: service.OrderRequest{
				Restaurant:      "r1",
				Items:           []domain.OrderLine{{Menu: "m1", Quantity: 2}},
				PaymentType:     "card",
				DeliveryAddress: "King Fahd Rd",
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			api, rec := backend(t, 201, `{"data":{"_id":"o9","transactionId":"tx_9","paymentUrl":"https://pay/tx_9"}}`)
			svc := service.NewOrderService(api, logging.Discard())

			order, err := svc.Create(context.Background(), testCase.req)
			if testCase.wantErr != nil {
				assert.ErrorIs(t, err, testCase.wantErr)
				assert.Empty(t, rec.path)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "o9", order.ID)
			assert.Equal(t, "tx_9", order.TransactionID)

			var sent map[string]any
			require.NoError(t, json.Unmarshal([]byte(rec.body), &sent))
			assert.Equal(t, "r1", sent["restaurant"])
			assert.Equal(t, "card", sent["paymentType"])
		})
	}
}

func TestAuthService(t *testing.T) {
	t.Run("login", func(t *testing.T) {
		api, rec := backend(t, 200, `{"data":{"token":"jwt","user":{"_id":"u1","email":"a@b.c","role":"customer"}}}`)
		svc := service.NewAuthService(api, logging.Discard())

		result, err := svc.Login(context.Background(), "a@b.c", "pw")
		require.NoError(t, err)

		assert.Equal(t, "/auth/login", rec.path)
		assert.JSONEq(t, `{"email":"a@b.c","password":"pw"}`, rec.body)
		assert.Equal(t, "jwt", result.Token)
		assert.Equal(t, "customer", result.User.Role)
	})

	t.Run("verify_otp_rejected", func(t *testing.T) {
		api, rec := backend(t, 400, `{"message":"Invalid OTP"}`)
		svc := service.NewAuthService(api, logging.Discard())

		err := svc.VerifyOTP(context.Background(), "a@b.c", "000000")

		assert.Equal(t, "/auth/verify-otp", rec.path)
		assert.JSONEq(t, `{"email":"a@b.c","otp":"000000"}`, rec.body)
		assert.Equal(t, 400, apiclient.StatusOf(err))
	})

	t.Run("resend_and_register", func(t *testing.T) {
		api, rec := backend(t, 200, `{"success":true}`)
		svc := service.NewAuthService(api, logging.Discard())

		require.NoError(t, svc.ResendOTP(context.Background(), "a@b.c"))
		assert.Equal(t, "/auth/resend-otp", rec.path)

		require.NoError(t, svc.Register(context.Background(), service.RegisterRequest{Username: "a", Email: "a@b.c", Password: "pw"}))
		assert.Equal(t, "/auth/register", rec.path)
	})
}

func TestPaymentService_Status(t *testing.T) {
	api, rec := backend(t, 200, `{"id":"tx_1","status":"CAPTURED","amount":20,"currency":"SAR"}`)
	svc := service.NewPaymentService(api, logging.Discard())

	status, err := svc.Status(context.Background(), "tx_1")
	require.NoError(t, err)

	assert.Equal(t, "/api/transactions/tx_1", rec.path)
	assert.True(t, status.Succeeded())
	assert.False(t, status.Failed())
	assert.True(t, service.TransactionStatus{Status: "declined"}.Failed())
	assert.False(t, service.TransactionStatus{Status: "INITIATED"}.Succeeded())
}
