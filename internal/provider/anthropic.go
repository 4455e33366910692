package provider

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net"
	"os"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const (
	anthropicMaxRetries     = 3
	anthropicInitialBackoff = 1 * time.Second
	anthropicMaxTokensCap   = 2048
)

// ErrAPIKeyRequired is returned when an API key is needed but not provided.
var ErrAPIKeyRequired = errors.New("API key required")

// AnthropicProvider is the "openai"-named provider's real backend: the
// project's translator/reviewer tasks are sent to Anthropic's API through
// the official SDK, with exponential backoff on 429/5xx responses.
type AnthropicProvider struct {
	client         anthropic.Client
	model          anthropic.Model
	maxRetries     int
	initialBackoff time.Duration
}

// NewAnthropicProvider creates a client for model. Env var
// ANTHROPIC_API_KEY takes precedence over the explicit apiKey argument.
func NewAnthropicProvider(apiKey, model string) (*AnthropicProvider, error) {
	if envKey := os.Getenv("ANTHROPIC_API_KEY"); envKey != "" {
		apiKey = envKey
	}
	if apiKey == "" {
		return nil, fmt.Errorf("%w: set ANTHROPIC_API_KEY or configure the openai_api_key secret", ErrAPIKeyRequired)
	}
	if model == "" {
		model = DefaultModelByProvider[ProviderOpenAI]
	}

	return &AnthropicProvider{
		client:         anthropic.NewClient(option.WithAPIKey(apiKey)),
		model:          anthropic.Model(model),
		maxRetries:     anthropicMaxRetries,
		initialBackoff: anthropicInitialBackoff,
	}, nil
}

// Generate sends a task/prompt pair as a single user message, with the
// task framing folded into that one text block rather than a separate
// system-message field. maxTokens is clamped to anthropicMaxTokensCap;
// temperature isn't forwarded.
func (p *AnthropicProvider) Generate(ctx context.Context, task Task, prompt string, _ float64, maxTokens int) (string, error) {
	if maxTokens <= 0 || maxTokens > anthropicMaxTokensCap {
		maxTokens = anthropicMaxTokensCap
	}
	framed := fmt.Sprintf("You are a localization model. Follow task constraints strictly. Task: %s.\n\n%s", task, prompt)
	params := anthropic.MessageNewParams{
		Model:     p.model,
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(framed)),
		},
	}
	return p.callWithRetry(ctx, params)
}

func (p *AnthropicProvider) callWithRetry(ctx context.Context, params anthropic.MessageNewParams) (string, error) {
	var lastErr error

	for attempt := 0; attempt <= p.maxRetries; attempt++ {
		if attempt > 0 {
			backoff := p.initialBackoff * time.Duration(math.Pow(2, float64(attempt-1)))
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		message, err := p.client.Messages.New(ctx, params)
		if err == nil {
			if len(message.Content) > 0 {
				content := message.Content[0]
				if content.Type == "text" {
					return content.Text, nil
				}
				return "", fmt.Errorf("unexpected response format: not a text block (type=%s)", content.Type)
			}
			return "", fmt.Errorf("unexpected response format: no content blocks")
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !isRetryable(err) {
			return "", fmt.Errorf("non-retryable error: %w", err)
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", p.maxRetries+1, lastErr)
}

func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		statusCode := apiErr.StatusCode
		return statusCode == 429 || statusCode >= 500
	}

	return false
}
