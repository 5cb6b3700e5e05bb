// Package completion wraps the hosted chat-completion capability behind a
// narrow text-in/text-out interface. Structural handling of the returned
// text lives entirely in the answer package.
package completion

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// ErrGeneration marks a failed completion call (timeout, auth, quota, empty
// response). Surfaced as a service-class failure; no automatic retry.
var ErrGeneration = errors.New("completion call failed")

// Completer is the single-shot text completion capability consumed by the
// pipeline.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Config holds the completion endpoint settings.
type Config struct {
	BaseURL     string
	Model       string
	Temperature float64
	MaxTokens   int
	Timeout     time.Duration
}

// Client calls an OpenAI-compatible chat completion endpoint in JSON mode.
type Client struct {
	client openai.Client
	cfg    Config
}

// NewClient creates the completion client. The API key is read from
// HF_TOKEN, falling back to OPENAI_API_KEY for direct OpenAI endpoints.
func NewClient(cfg Config) (*Client, error) {
	key := os.Getenv("HF_TOKEN")
	if key == "" {
		key = os.Getenv("OPENAI_API_KEY")
	}
	if key == "" {
		return nil, fmt.Errorf("neither HF_TOKEN nor OPENAI_API_KEY environment variable is set")
	}

	opts := []option.RequestOption{option.WithAPIKey(key)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}

	return &Client{client: openai.NewClient(opts...), cfg: cfg}, nil
}

// Complete runs one chat completion for the prompt under the configured
// timeout and returns the raw text. A timeout surfaces as a retrievable
// error, never a hang.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		Model:       openai.ChatModel(c.cfg.Model),
		Temperature: openai.Float(c.cfg.Temperature),
		MaxTokens:   openai.Int(int64(c.cfg.MaxTokens)),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{
				Type: "json_object",
			},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: model returned no choices", ErrGeneration)
	}

	return resp.Choices[0].Message.Content, nil
}
