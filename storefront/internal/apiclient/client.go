// Package apiclient is the single doorway to the storefront backend. Every
// call carries the JSON content type and the static service key; responses
// are normalized so callers can either inspect Response.OK or receive a typed
// *Error from the verb helpers.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

var ErrMalformedResponse = errors.New("malformed response body")

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type Config struct {
	BaseURL   string
	Key       string
	KeyHeader string
}

// TokenSource returns the bearer token for the current session, or "".
type TokenSource func() string

type Client struct {
	baseURL   string
	key       string
	keyHeader string
	http      HTTPClient
	token     TokenSource
}

type Options struct {
	Method  string
	Headers map[string]string
	Query   url.Values
	// Body is JSON-encoded unless it is already []byte or json.RawMessage.
	Body any
}

type Response struct {
	OK      bool
	Status  int
	Body    json.RawMessage
	Message string

	undecodable bool
}

// Error is returned for transport failures (Status 0) and non-2xx responses.
type Error struct {
	Status  int
	Body    json.RawMessage
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		return "request failed: " + e.Message
	}
	return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// StatusOf reports the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}

func New(cfg Config, httpClient HTTPClient) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	keyHeader := cfg.KeyHeader
	if keyHeader == "" {
		keyHeader = "x-api-key"
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		key:       cfg.Key,
		keyHeader: keyHeader,
		http:      httpClient,
	}
}

// WithToken returns a copy of c that authenticates with the session token.
func (c *Client) WithToken(src TokenSource) *Client {
	clone := *c
	clone.token = src
	return &clone
}

func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func encodeBody(body any) (io.Reader, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return bytes.NewReader(b), nil
	case json.RawMessage:
		return bytes.NewReader(b), nil
	default:
		payload, err := json.Marshal(b)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		return bytes.NewReader(payload), nil
	}
}

// Request issues exactly one call. A nil error means the server answered;
// check Response.OK for the outcome.
func (c *Client) Request(ctx context.Context, path string, opts Options) (*Response, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	body, err := encodeBody(opts.Body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, opts.Query), body)
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}

	req.Header.Set("Content-Type", "application/json")
	if c.key != "" {
		req.Header.Set(c.keyHeader, c.key)
	}
	if c.token != nil {
		if token := c.token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
	for k, v := range opts.Headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Status: resp.StatusCode, Message: err.Error(), Err: err}
	}

	out := &Response{
		OK:     resp.StatusCode >= 200 && resp.StatusCode <= 299,
		Status: resp.StatusCode,
	}
	trimmed := bytes.TrimSpace(raw)
	switch {
	case len(trimmed) == 0:
	case json.Valid(trimmed):
		out.Body = json.RawMessage(trimmed)
	default:
		out.undecodable = true
	}
	out.Message = extractMessage(out.Body, resp.StatusCode)
	return out, nil
}

func extractMessage(body json.RawMessage, status int) string {
	if len(body) > 0 {
		var fields struct {
			Message any `json:"message"`
			Error   any `json:"error"`
		}
		if json.Unmarshal(body, &fields) == nil {
			if s, ok := fields.Message.(string); ok && s != "" {
				return s
			}
			if s, ok := fields.Error.(string); ok && s != "" {
				return s
			}
		}
	}
	return http.StatusText(status)
}

func (c *Client) do(ctx context.Context, path string, opts Options, out any) error {
	resp, err := c.Request(ctx, path, opts)
	if err != nil {
		return err
	}
	if !resp.OK {
		return &Error{Status: resp.Status, Body: resp.Body, Message: resp.Message}
	}
	if out == nil {
		return nil
	}
	if resp.undecodable {
		return fmt.Errorf("%s %s: %w", opts.Method, path, ErrMalformedResponse)
	}
	if resp.Body == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("%s %s: %w: %v", opts.Method, path, ErrMalformedResponse, err)
	}
	return nil
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, path, Options{Method: http.MethodGet, Query: query}, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, path, Options{Method: http.MethodPost, Body: body}, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, path, Options{Method: http.MethodPut, Body: body}, out)
}

func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.do(ctx, path, Options{Method: http.MethodDelete}, out)
}
