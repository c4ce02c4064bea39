package conversation

import (
	"context"
	"time"
)

// TimeoutClient caps every provider call at a fixed deadline so a slow LLM
// cannot hold a chat turn open indefinitely.
type TimeoutClient struct {
	inner   LLMClient
	timeout time.Duration
}

// NewTimeoutClient wraps client with a per-call timeout.
func NewTimeoutClient(client LLMClient, timeout time.Duration) *TimeoutClient {
	if client == nil {
		panic("conversation: wrapped client cannot be nil")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &TimeoutClient{inner: client, timeout: timeout}
}

var _ LLMClient = (*TimeoutClient)(nil)

func (c *TimeoutClient) Complete(ctx context.Context, req LLMRequest) (LLMResponse, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.inner.Complete(ctx, req)
}
