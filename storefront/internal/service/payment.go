package service

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"ardelivero-storefront/storefront/internal/apiclient"
)

// TransactionStatus is the subset of the gateway's transaction document the
// storefront reads. The proxy relays the gateway body verbatim.
type TransactionStatus struct {
	ID       string  `json:"id"`
	Status   string  `json:"status"`
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

func (t TransactionStatus) Succeeded() bool {
	switch strings.ToUpper(t.Status) {
	case "CAPTURED", "PAID", "SUCCESS", "SUCCEEDED":
		return true
	}
	return false
}

func (t TransactionStatus) Failed() bool {
	switch strings.ToUpper(t.Status) {
	case "FAILED", "DECLINED", "CANCELLED", "ABANDONED", "VOID", "TIMEDOUT":
		return true
	}
	return false
}

// PaymentService talks to the transaction-status proxy, not the backend API.
type PaymentService struct {
	proxy *apiclient.Client
	log   *slog.Logger
}

func NewPaymentService(proxy *apiclient.Client, logger *slog.Logger) *PaymentService {
	return &PaymentService{proxy: proxy, log: logger}
}

func (s *PaymentService) Status(ctx context.Context, transactionID string) (*TransactionStatus, error) {
	var status TransactionStatus
	path := "/api/transactions/" + url.PathEscape(transactionID)
	if err := s.proxy.Get(ctx, path, nil, &status); err != nil {
		s.log.Error("fetch transaction status", "transaction_id", transactionID, "error", err)
		return nil, fmt.Errorf("fetch transaction %s: %w", transactionID, err)
	}
	return &status, nil
}
