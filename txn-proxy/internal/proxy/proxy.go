package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	// StatusURL is the gateway endpoint; the transaction id is appended as the last path segment.
	StatusURL string
	SecretKey string
}

type Proxy struct {
	config Config
	client HTTPClient
	log    *slog.Logger
}

type errorBody struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

func NewProxy(config Config, client HTTPClient, logger *slog.Logger) *Proxy {
	return &Proxy{
		config: config,
		client: client,
		log:    logger,
	}
}

func (p *Proxy) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "txn-proxy",
	})
}

// TransactionStatus relays the gateway's view of a single transaction.
func (p *Proxy) TransactionStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(mux.Vars(r)["id"])
	if id == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Transaction ID is required"})
		return
	}

	target := strings.TrimRight(p.config.StatusURL, "/") + "/" + url.PathEscape(id)
	p.log.Info("proxy transaction lookup", "transaction_id", id, "target", target)

	req, err := http.NewRequestWithContext(r.Context(), http.MethodGet, target, nil)
	if err != nil {
		p.log.Error("build gateway request", "transaction_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
		return
	}
	req.Header.Set("Accept", "application/json")
	if p.config.SecretKey != "" {
		req.Header.Set("Authorization", "Bearer "+p.config.SecretKey)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		p.log.Error("gateway unreachable", "transaction_id", id, "error", err)
		writeJSON(w, http.StatusBadGateway, errorBody{Error: "Failed to reach payment gateway"})
		return
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		p.log.Error("read gateway response", "transaction_id", id, "error", err)
		writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
		return
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		p.log.Warn("gateway rejected lookup", "transaction_id", id, "status", resp.StatusCode)
		writeJSON(w, resp.StatusCode, errorBody{
			Error:   "Failed to fetch transaction status",
			Details: details(body),
		})
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(body); err != nil {
		p.log.Error("write response", "transaction_id", id, "error", err)
	}
}

// Recover turns a panicking handler into a 500 with a JSON body.
func (p *Proxy) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				p.log.Error("handler panic", "path", r.URL.Path, "panic", fmt.Sprint(rec))
				writeJSON(w, http.StatusInternalServerError, errorBody{Error: "Internal server error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func (p *Proxy) SetupRoutes() http.Handler {
	r := mux.NewRouter()
	r.Use(p.Recover)
	r.HandleFunc("/health", p.HealthCheck).Methods("GET")
	r.HandleFunc("/api/transactions/{id}", p.TransactionStatus).Methods("GET")
	r.HandleFunc("/api/transactions/", p.TransactionStatus).Methods("GET")
	r.HandleFunc("/api/transactions", p.TransactionStatus).Methods("GET")
	return NewCORS().Handler(r)
}

// NewCORS allows any origin, which the storefront needs when it is served
// from a different host than the proxy.
func NewCORS() *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With"},
	})
}

func details(body []byte) any {
	if len(body) == 0 {
		return nil
	}
	if json.Valid(body) {
		return json.RawMessage(body)
	}
	return string(body)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
