package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Client is an abstraction over LLM providers.
type Client interface {
	// GenerateContent generates text content using the specified model tier.
	GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GenerateJSON generates JSON content using the specified model tier.
	GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error)
	// GetModel returns the underlying provider model for a tier.
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client.
	Close() error
}

// NewClient creates a new LLM client based on configuration.
func NewClient(ctx context.Context, config *Config, apiKey string, log *zap.Logger) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}
	return NewGeminiClient(ctx, config, apiKey, log)
}

// GeminiClient implements Client for Google Gemini with bounded retries for
// temporary errors. Quota and permanent errors are returned immediately so
// callers can fall back.
type GeminiClient struct {
	client *genai.Client
	config *Config
	log    *zap.Logger
}

// NewGeminiClient creates a new Gemini client.
func NewGeminiClient(ctx context.Context, config *Config, apiKey string, log *zap.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if log == nil {
		log = zap.NewNop()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{client: client, config: config, log: log}, nil
}

// GenerateContent generates text content using the specified model tier.
func (c *GeminiClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	return c.generate(ctx, prompt, tier, "")
}

// GenerateJSON generates JSON content using the specified model tier.
func (c *GeminiClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	text, err := c.generate(ctx, prompt, tier, "application/json")
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

func (c *GeminiClient) generate(ctx context.Context, prompt string, tier ModelTier, mimeType string) (string, error) {
	modelName := c.config.GetModel(tier)
	if modelName == "" {
		return "", &Error{Category: CategoryPermanent, Err: fmt.Errorf("no model configured for tier %s", tier)}
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(0.1) // Low temperature for consistent output
	if mimeType != "" {
		model.ResponseMIMEType = mimeType
	}

	var lastErr error
	delay := c.config.RetryBaseDelay
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			c.log.Warn("retrying llm call",
				zap.String("model", modelName),
				zap.Int("attempt", attempt),
				zap.Error(lastErr))
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", Classify(ctx.Err())
			}
			delay *= 2
		}

		callCtx := ctx
		var cancel context.CancelFunc
		if c.config.RequestTimeout > 0 {
			callCtx, cancel = context.WithTimeout(ctx, c.config.RequestTimeout)
		}
		resp, err := model.GenerateContent(callCtx, genai.Text(prompt))
		if cancel != nil {
			cancel()
		}
		if err != nil {
			lastErr = err
			if !Retryable(err) {
				return "", Classify(err)
			}
			continue
		}
		return extractTextFromResponse(resp)
	}
	return "", Classify(lastErr)
}

// GetModel returns the model name for a tier.
func (c *GeminiClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

// extractTextFromResponse extracts text from a Gemini API response.
func extractTextFromResponse(resp *genai.GenerateContentResponse) (string, error) {
	if len(resp.Candidates) == 0 {
		return "", &Error{Category: CategoryTemporary, Err: fmt.Errorf("no candidates in response")}
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", &Error{Category: CategoryTemporary, Err: fmt.Errorf("no content in response")}
	}

	var parts []string
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}

	if len(parts) == 0 {
		return "", &Error{Category: CategoryTemporary, Err: fmt.Errorf("no text parts in response")}
	}

	return strings.Join(parts, ""), nil
}
