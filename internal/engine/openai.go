package engine

import (
	"context"
	"fmt"
	"iter"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAI streams Chat Completions and folds the content deltas into snapshots.
type OpenAI struct {
	client *openai.Client
	model  string
	params Params
	hasKey bool
}

// NewOpenAI creates an engine using the official client. An empty apiKey
// falls back to OPENAI_API_KEY; baseURL may point at any compatible server.
func NewOpenAI(model, apiKey, baseURL string, params Params) *OpenAI {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := openai.NewClient(opts...)
	return NewOpenAIFromClient(&client, model, params, apiKey != "" || baseURL != "" || envSet("OPENAI_API_KEY"))
}

// NewOpenAIFromClient wraps an existing client. hasKey reports whether the
// client is configured with credentials (or a keyless compatible endpoint).
func NewOpenAIFromClient(client *openai.Client, model string, params Params, hasKey bool) *OpenAI {
	if model == "" {
		model = openai.ChatModelGPT4oMini
	}
	return &OpenAI{client: client, model: model, params: params, hasKey: hasKey}
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Available() error {
	if !o.hasKey {
		return ErrDependencyUnavailable("openai: no API key configured")
	}
	return nil
}

func (o *OpenAI) Snapshots(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return Accumulate(ctx, func(ctx context.Context, emit func(string) bool) error {
		stream := o.client.Chat.Completions.NewStreaming(ctx, o.buildParams(prompt))
		defer stream.Close()
		for stream.Next() {
			for _, ch := range stream.Current().Choices {
				if !emit(ch.Delta.Content) {
					return nil
				}
			}
		}
		if err := stream.Err(); err != nil {
			return fmt.Errorf("openai streaming error: %w", err)
		}
		return nil
	})
}

func (o *OpenAI) buildParams(prompt string) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
		Model:    o.model,
	}
	if o.params.Temperature > 0 {
		params.Temperature = openai.Float(float64(o.params.Temperature))
	}
	if o.params.TopP > 0 {
		params.TopP = openai.Float(float64(o.params.TopP))
	}
	if o.params.MaxTokens > 0 {
		params.MaxCompletionTokens = openai.Int(int64(o.params.MaxTokens))
	}
	if o.params.Seed != 0 {
		params.Seed = openai.Int(int64(o.params.Seed))
	}
	return params
}

func envSet(key string) bool { return strings.TrimSpace(lookupEnv(key)) != "" }
