package llm

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrVisionUnsupported is returned when a blob request reaches a text-only client.
var ErrVisionUnsupported = errors.New("client does not support binary input")

// TimeoutClient bounds every call of the wrapped client with a deadline.
// An expired call returns context.DeadlineExceeded like any provider error.
type TimeoutClient struct {
	inner   Client
	timeout time.Duration
}

// WithTimeout wraps client so each call gets at most d to complete.
func WithTimeout(client Client, d time.Duration) *TimeoutClient {
	return &TimeoutClient{inner: client, timeout: d}
}

func (c *TimeoutClient) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// GenerateContent calls the wrapped client under the deadline.
func (c *TimeoutClient) GenerateContent(ctx context.Context, systemMessage, prompt string, tier ModelTier) (string, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.inner.GenerateContent(ctx, systemMessage, prompt, tier)
}

// GenerateJSON calls the wrapped client under the deadline.
func (c *TimeoutClient) GenerateJSON(ctx context.Context, systemMessage, prompt string, tier ModelTier) (string, error) {
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return c.inner.GenerateJSON(ctx, systemMessage, prompt, tier)
}

// GenerateFromBlob calls the wrapped client under the deadline when it supports binary input.
func (c *TimeoutClient) GenerateFromBlob(ctx context.Context, prompt, mimeType string, data []byte, tier ModelTier) (string, error) {
	vc, ok := c.inner.(VisionClient)
	if !ok {
		return "", fmt.Errorf("%s: %w", mimeType, ErrVisionUnsupported)
	}
	ctx, cancel := c.bound(ctx)
	defer cancel()
	return vc.GenerateFromBlob(ctx, prompt, mimeType, data, tier)
}

// GetModel returns the wrapped client's model for tier.
func (c *TimeoutClient) GetModel(tier ModelTier) string {
	return c.inner.GetModel(tier)
}

// Close closes the wrapped client.
func (c *TimeoutClient) Close() error {
	return c.inner.Close()
}
