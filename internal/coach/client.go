// Package coach talks to the language model that drafts training plans and answers coaching questions.
//
// Everything the model returns is untrusted. Plans go through plan.ValidateAndRepair before anyone sees them.
package coach

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/myrjola/calicoach/internal/errors"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"golang.org/x/sync/semaphore"
)

var (
	// ErrGeneration wraps every failure to get a usable answer from the model.
	ErrGeneration = errors.NewSentinel("generation failed")
	// ErrCoachOffline is returned when no API key is configured.
	ErrCoachOffline = errors.NewSentinel("coach is offline")
)

const DefaultModel = "gpt-4o-2024-08-06"

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	// Timeout bounds one completion including the wait for a free slot.
	Timeout time.Duration
	// MaxConcurrent bounds the completions in flight across all requests.
	MaxConcurrent int64
}

// Client is a rate limited chat completion client shared by the plan generator and the chat.
type Client struct {
	api     openai.Client
	model   string
	timeout time.Duration
	slots   *semaphore.Weighted
	logger  *slog.Logger
}

// NewClient returns nil when cfg has no API key, which puts the coach offline.
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		return nil
	}
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	maxConcurrent := cfg.MaxConcurrent
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Client{
		api:     openai.NewClient(opts...),
		model:   model,
		timeout: cfg.Timeout,
		slots:   semaphore.NewWeighted(maxConcurrent),
		logger:  logger,
	}
}

type completion struct {
	system   string
	messages []openai.ChatCompletionMessageParamUnion
	format   *openai.ResponseFormatJSONSchemaJSONSchemaParam
}

// complete runs one chat completion and returns the text of the first choice.
func (c *Client) complete(ctx context.Context, req completion) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.slots.Acquire(ctx, 1); err != nil {
		return "", fmt.Errorf("%w: wait for a free slot: %w", ErrGeneration, err)
	}
	defer c.slots.Release(1)

	params := openai.ChatCompletionNewParams{ //nolint:exhaustruct // only need to set a few fields.
		Model:    openai.ChatModel(c.model),
		Messages: append([]openai.ChatCompletionMessageParamUnion{openai.SystemMessage(req.system)}, req.messages...),
	}
	if req.format != nil {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{ //nolint:exhaustruct // one of.
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{JSONSchema: *req.format}, //nolint:exhaustruct // type is implicit.
		}
	}

	start := time.Now()
	chat, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: chat completion: %w", ErrGeneration, err)
	}
	c.logger.LogAttrs(ctx, slog.LevelDebug, "chat completion",
		slog.String("model", chat.Model),
		slog.Int64("total_tokens", chat.Usage.TotalTokens),
		slog.Duration("duration", time.Since(start)))

	if len(chat.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrGeneration)
	}
	choice := chat.Choices[0]
	if choice.Message.Refusal != "" {
		return "", fmt.Errorf("%w: model refused: %s", ErrGeneration, choice.Message.Refusal)
	}
	if choice.Message.Content == "" {
		return "", fmt.Errorf("%w: empty response", ErrGeneration)
	}
	return choice.Message.Content, nil
}
