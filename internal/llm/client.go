// Package llm is the chat-completion boundary. The provider response is an
// opaque contract; nothing here inspects tool semantics.
package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// Completer issues one chat completion per call. It is the single suspension
// point of a turn; implementations must not fan out concurrent requests for
// one call.
type Completer interface {
	Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error)
}

// Client is the openai-go backed Completer. The zero value is not usable;
// construct with New.
type Client struct {
	api openai.Client
}

// New builds a Client. baseURL and apiKey are optional; empty values fall
// back to the SDK defaults (OPENAI_API_KEY et al).
func New(baseURL, apiKey string) *Client {
	var opts []option.RequestOption
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	return &Client{api: openai.NewClient(opts...)}
}

func (c *Client) Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	return resp, nil
}
