// Package llm implements the model-invocation port on top of the OpenAI chat
// completions API. Calls run in JSON mode; transport failures are retried with
// exponential backoff and malformed output gets one repair pass per attempt.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
	"go.uber.org/zap"

	"vpatgen/internal/ports"
)

// Config holds client settings. Zero-value durations and counts fall back to
// the defaults below.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	MaxRetries  int
	CallTimeout time.Duration
	BackoffBase time.Duration
}

const (
	defaultModel       = "gpt-4o-mini"
	defaultTemperature = 0.4
	defaultMaxRetries  = 2
	defaultCallTimeout = 60 * time.Second
	defaultBackoffBase = time.Second
)

// Client sends prompt pairs to the chat completions endpoint.
type Client struct {
	api         openai.Client
	model       string
	temperature float64
	maxRetries  int
	callTimeout time.Duration
	backoffBase time.Duration
	log         *zap.Logger
}

var _ ports.ModelInvoker = (*Client)(nil)

// New validates the config and builds a client. A missing API key is a
// ConfigurationError; nothing is retried for it later.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, &ports.ConfigurationError{Setting: "OPENAI_API_KEY"}
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = defaultTemperature
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = defaultMaxRetries
	}
	if cfg.CallTimeout == 0 {
		cfg.CallTimeout = defaultCallTimeout
	}
	if cfg.BackoffBase == 0 {
		cfg.BackoffBase = defaultBackoffBase
	}

	// The SDK's own retry layer is disabled; retry policy lives here.
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}

	return &Client{
		api:         openai.NewClient(opts...),
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxRetries:  cfg.MaxRetries,
		callTimeout: cfg.CallTimeout,
		backoffBase: cfg.BackoffBase,
		log:         log,
	}, nil
}

// Invoke sends one system+user pair and returns validated JSON output.
// Request temperature overrides the client default when non-zero.
func (c *Client) Invoke(ctx context.Context, req ports.InvokeRequest) (*ports.Completion, error) {
	temperature := c.temperature
	if req.Temperature != 0 {
		temperature = req.Temperature
	}

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(c.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(req.System),
			openai.UserMessage(req.User),
		},
		Temperature: openai.Float(temperature),
		ResponseFormat: openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &shared.ResponseFormatJSONObjectParam{},
		},
	}

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := c.backoffBase * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return nil, &ports.TransportError{Attempts: attempt, Err: ctx.Err()}
			case <-time.After(delay):
			}
		}

		comp, err := c.attempt(ctx, params)
		if err == nil {
			return comp, nil
		}
		// Unrepairable JSON is not a transport problem; a retry would spend
		// budget on an endpoint that already answered.
		var jsonErr *ports.InvalidJSONError
		if errors.As(err, &jsonErr) {
			return nil, err
		}
		lastErr = err
		c.log.Warn("model call failed",
			zap.Int("attempt", attempt+1),
			zap.Error(err))
	}
	return nil, &ports.TransportError{Attempts: c.maxRetries + 1, Err: lastErr}
}

func (c *Client) attempt(ctx context.Context, params openai.ChatCompletionNewParams) (*ports.Completion, error) {
	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	resp, err := c.api.Chat.Completions.New(callCtx, params)
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion: empty choices")
	}
	raw := resp.Choices[0].Message.Content

	usage := ports.TokenUsage{
		Prompt:     resp.Usage.PromptTokens,
		Completion: resp.Usage.CompletionTokens,
		Total:      resp.Usage.TotalTokens,
	}
	c.log.Info("model usage",
		zap.String("model", c.model),
		zap.Int64("prompt_tokens", usage.Prompt),
		zap.Int64("completion_tokens", usage.Completion),
		zap.Int64("total_tokens", usage.Total))

	parsed, err := parseOrRepair(raw)
	if err != nil {
		return nil, err
	}
	return &ports.Completion{JSON: parsed, Raw: raw, Usage: usage}, nil
}

// parseOrRepair accepts the raw content if it is already valid JSON, otherwise
// applies one repair pass. Repair failing is fatal for the attempt.
func parseOrRepair(raw string) (json.RawMessage, error) {
	if json.Valid([]byte(raw)) {
		return json.RawMessage(raw), nil
	}
	repaired := repairJSON(raw)
	if json.Valid([]byte(repaired)) {
		return json.RawMessage(repaired), nil
	}
	return nil, &ports.InvalidJSONError{
		Raw: raw,
		Err: fmt.Errorf("not valid JSON after repair"),
	}
}
