package client

import (
	"context"
	"fmt"
	"time"

	"github.com/cloudwego/eino-ext/components/model/claude"
	"github.com/cloudwego/eino-ext/components/model/gemini"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = 500 * time.Millisecond
	claudeMaxTokens   = 8192
)

// LLMClient wraps an eino chat model behind a uniform Invoke call.
// Transport failures are retried here, at the invocation boundary, so the
// pipeline's attempt budget only counts real generator outcomes.
type LLMClient struct {
	chatModel  model.BaseChatModel
	provider   string
	modelName  string
	maxRetries int
	retryDelay time.Duration
}

type OpenAIModelOptions struct {
	Model string
}

type ClaudeModelOptions struct {
	Model string
}

type GeminiModelOptions struct {
	Model string
}

func NewOpenAIClient(ctx context.Context, key string, opts OpenAIModelOptions) (*LLMClient, error) {
	chatModel, err := openai.NewChatModel(ctx, &openai.ChatModelConfig{
		APIKey: key,
		Model:  opts.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("create openai chat model: %w", err)
	}
	return newLLMClient(chatModel, "openai", opts.Model), nil
}

func NewClaudeClient(ctx context.Context, key string, opts ClaudeModelOptions) (*LLMClient, error) {
	chatModel, err := claude.NewChatModel(ctx, &claude.Config{
		APIKey:    key,
		Model:     opts.Model,
		MaxTokens: claudeMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("create claude chat model: %w", err)
	}
	return newLLMClient(chatModel, "anthropic", opts.Model), nil
}

func NewGeminiClient(ctx context.Context, key string, opts GeminiModelOptions) (*LLMClient, error) {
	genaiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  key,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	chatModel, err := gemini.NewChatModel(ctx, &gemini.Config{
		Client: genaiClient,
		Model:  opts.Model,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini chat model: %w", err)
	}
	return newLLMClient(chatModel, "gemini", opts.Model), nil
}

func newLLMClient(chatModel model.BaseChatModel, provider, modelName string) *LLMClient {
	return &LLMClient{
		chatModel:  chatModel,
		provider:   provider,
		modelName:  modelName,
		maxRetries: defaultMaxRetries,
		retryDelay: defaultRetryDelay,
	}
}

// Provider returns the provider id this client was built for.
func (c *LLMClient) Provider() string { return c.provider }

// Model returns the API model name.
func (c *LLMClient) Model() string { return c.modelName }

// Invoke sends messages to the model and returns its reply. Failed calls
// are retried with a doubling delay; the context cancels waiting between
// attempts.
func (c *LLMClient) Invoke(ctx context.Context, messages []*schema.Message) (*schema.Message, error) {
	var lastErr error
	delay := c.retryDelay

	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		msg, err := c.chatModel.Generate(ctx, messages)
		if err == nil {
			return msg, nil
		}
		lastErr = err
		logrus.WithFields(logrus.Fields{
			"provider": c.provider,
			"model":    c.modelName,
			"attempt":  attempt,
		}).WithError(err).Warn("model invocation failed")

		if attempt == c.maxRetries {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return nil, fmt.Errorf("model invocation failed after %d attempts: %w", c.maxRetries, lastErr)
}

// TokenUsage extracts the total token count from a model reply, if the
// provider reported one.
func TokenUsage(msg *schema.Message) int {
	if msg == nil || msg.ResponseMeta == nil || msg.ResponseMeta.Usage == nil {
		return 0
	}
	return msg.ResponseMeta.Usage.TotalTokens
}
