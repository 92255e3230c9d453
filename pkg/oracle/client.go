// Package oracle wraps the Anthropic Messages API as a structured discovery
// oracle: it sends a natural-language brief plus a JSON schema and returns
// the model's schema-shaped reply as raw JSON.
package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

const (
	defaultModel     = "claude-sonnet-4-5-20250929"
	defaultMaxTokens = 4096
)

// systemPrompt pins the oracle to strict JSON output. The response schema is
// appended per request.
const systemPrompt = `You are a deal discovery engine with access to recent market information. Answer the user's brief with real, recently announced items only. Respond with ONLY a single JSON object conforming to the provided JSON schema. No prose, no markdown fences.`

// Client defines the discovery oracle operation used by the pipeline.
type Client interface {
	// Query sends the brief and returns the JSON object from the reply.
	// The schema constrains the shape of the response.
	Query(ctx context.Context, prompt string, schema json.RawMessage) (json.RawMessage, error)
}

// Option configures the client.
type Option func(*sdkClient)

// WithModel overrides the default model.
func WithModel(model string) Option {
	return func(c *sdkClient) {
		if model != "" {
			c.model = model
		}
	}
}

// WithMaxTokens overrides the default response token budget.
func WithMaxTokens(n int64) Option {
	return func(c *sdkClient) {
		if n > 0 {
			c.maxTokens = n
		}
	}
}

// WithBaseURL points the SDK at an alternate endpoint (tests).
func WithBaseURL(u string) Option {
	return func(c *sdkClient) {
		c.sdkOpts = append(c.sdkOpts, option.WithBaseURL(u))
	}
}

// sdkClient implements Client using the official anthropic-sdk-go.
type sdkClient struct {
	client    sdk.Client
	model     string
	maxTokens int64
	sdkOpts   []option.RequestOption
}

// NewClient creates a discovery oracle backed by the Anthropic API.
func NewClient(apiKey string, opts ...Option) Client {
	c := &sdkClient{
		model:     defaultModel,
		maxTokens: defaultMaxTokens,
		sdkOpts:   []option.RequestOption{option.WithAPIKey(apiKey)},
	}
	for _, o := range opts {
		o(c)
	}
	c.client = sdk.NewClient(c.sdkOpts...)
	return c
}

func (c *sdkClient) Query(ctx context.Context, prompt string, schema json.RawMessage) (json.RawMessage, error) {
	system := systemPrompt
	if len(schema) > 0 {
		system = fmt.Sprintf("%s\n\nJSON schema:\n%s", systemPrompt, string(schema))
	}

	msg, err := c.client.Messages.New(ctx, sdk.MessageNewParams{
		Model:     sdk.Model(c.model),
		MaxTokens: c.maxTokens,
		System:    []sdk.TextBlockParam{{Text: system}},
		Messages: []sdk.MessageParam{
			sdk.NewUserMessage(sdk.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "oracle: create message")
	}

	var text string
	for _, block := range msg.Content {
		if block.Type == "text" {
			text = block.Text
			break
		}
	}
	if text == "" {
		return nil, eris.New("oracle: empty response")
	}

	return extractJSON(text)
}

// extractJSON pulls the first JSON object out of the reply text. The model
// may wrap it in surrounding prose despite instructions.
func extractJSON(text string) (json.RawMessage, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, eris.Errorf("oracle: no JSON object in response: %s", truncate(text, 200))
	}

	raw := json.RawMessage(text[start : end+1])
	if !json.Valid(raw) {
		return nil, eris.Errorf("oracle: invalid JSON in response: %s", truncate(text, 200))
	}
	return raw, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
