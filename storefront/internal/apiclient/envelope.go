package apiclient

import (
	"context"
	"net/url"
)

// Envelope is the backend's standard response wrapper.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

func GetData[T any](ctx context.Context, c *Client, path string, query url.Values) (T, error) {
	var env Envelope[T]
	if err := c.Get(ctx, path, query, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}

func PostData[T any](ctx context.Context, c *Client, path string, body any) (T, error) {
	var env Envelope[T]
	if err := c.Post(ctx, path, body, &env); err != nil {
		var zero T
		return zero, err
	}
	return env.Data, nil
}
