package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"iter"

	"github.com/aktagon/llmkit/anthropic"
	"github.com/aktagon/llmkit/anthropic/types"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// TextModel is a text-generation backend
type TextModel interface {
	// Generate returns the whole completion for prompt
	Generate(ctx context.Context, prompt string) (string, error)
	// Stream returns the completion as a lazy, single-use sequence of chunks.
	// A request failure is yielded as the first error.
	Stream(ctx context.Context, prompt string) iter.Seq2[string, error]
}

var errStreamConsumed = errors.New("stream already consumed")

// NewTextModels creates the title and content models for the configured provider
func NewTextModels(ctx context.Context, cfg *Config) (title TextModel, content TextModel, err error) {
	gen := cfg.Settings.Generator

	switch gen.Provider {
	case ProviderAnthropic:
		return NewAnthropicModel(cfg.APIKey, gen.Title), NewAnthropicModel(cfg.APIKey, gen.Content), nil
	case ProviderOpenAI:
		title, err = newOpenAIModel(ctx, cfg.APIKey, gen.BaseURL, gen.Title)
		if err != nil {
			return nil, nil, fmt.Errorf("creating title model: %w", err)
		}
		content, err = newOpenAIModel(ctx, cfg.APIKey, gen.BaseURL, gen.Content)
		if err != nil {
			return nil, nil, fmt.Errorf("creating content model: %w", err)
		}
		return title, content, nil
	default:
		return nil, nil, fmt.Errorf("unknown provider: %s", gen.Provider)
	}
}

// ChatModel adapts an eino chat model to TextModel
type ChatModel struct {
	cm model.BaseChatModel
}

// NewChatModel wraps an eino chat model
func NewChatModel(cm model.BaseChatModel) *ChatModel {
	return &ChatModel{cm: cm}
}

func newOpenAIModel(ctx context.Context, apiKey, baseURL string, settings ModelSettings) (*ChatModel, error) {
	conf := &openai.ChatModelConfig{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   settings.Model,
	}
	if settings.MaxTokens > 0 {
		maxTokens := settings.MaxTokens
		conf.MaxTokens = &maxTokens
	}
	temperature := float32(settings.Temperature)
	conf.Temperature = &temperature

	cm, err := openai.NewChatModel(ctx, conf)
	if err != nil {
		return nil, err
	}
	return NewChatModel(cm), nil
}

// Generate implements TextModel
func (m *ChatModel) Generate(ctx context.Context, prompt string) (string, error) {
	msg, err := m.cm.Generate(ctx, []*schema.Message{schema.UserMessage(prompt)})
	if err != nil {
		return "", err
	}
	return msg.Content, nil
}

// Stream implements TextModel
func (m *ChatModel) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	consumed := false
	return func(yield func(string, error) bool) {
		if consumed {
			yield("", errStreamConsumed)
			return
		}
		consumed = true

		sr, err := m.cm.Stream(ctx, []*schema.Message{schema.UserMessage(prompt)})
		if err != nil {
			yield("", err)
			return
		}
		defer sr.Close()

		for {
			msg, err := sr.Recv()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield("", err)
				return
			}
			if !yield(msg.Content, nil) {
				return
			}
		}
	}
}

// AnthropicModel calls the Anthropic messages API. It has no incremental
// delivery, so Stream yields the whole completion as one chunk.
type AnthropicModel struct {
	apiKey   string
	settings types.RequestSettings
}

// NewAnthropicModel creates an Anthropic-backed model
func NewAnthropicModel(apiKey string, settings ModelSettings) *AnthropicModel {
	return &AnthropicModel{
		apiKey: apiKey,
		settings: types.RequestSettings{
			Model:       settings.Model,
			MaxTokens:   settings.MaxTokens,
			Temperature: settings.Temperature,
		},
	}
}

// Generate implements TextModel
func (m *AnthropicModel) Generate(ctx context.Context, prompt string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	response, err := anthropic.PromptWithSettings("", prompt, "", m.apiKey, m.settings)
	if err != nil {
		return "", fmt.Errorf("anthropic prompt failed: %w", err)
	}
	if len(response.Content) == 0 {
		return "", fmt.Errorf("no content in response")
	}
	return response.Content[0].Text, nil
}

// Stream implements TextModel
func (m *AnthropicModel) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	consumed := false
	return func(yield func(string, error) bool) {
		if consumed {
			yield("", errStreamConsumed)
			return
		}
		consumed = true

		text, err := m.Generate(ctx, prompt)
		if err != nil {
			yield("", err)
			return
		}
		yield(text, nil)
	}
}
