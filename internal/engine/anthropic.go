package engine

import (
	"context"
	"fmt"
	"iter"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultAnthropicMaxTokens = 1024

// Anthropic streams the Messages API and folds text deltas into snapshots.
type Anthropic struct {
	client *anthropic.Client
	model  anthropic.Model
	params Params
	hasKey bool
}

// NewAnthropic creates an engine using the official client. An empty apiKey
// falls back to ANTHROPIC_API_KEY.
func NewAnthropic(model, apiKey, baseURL string, params Params) *Anthropic {
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	client := anthropic.NewClient(opts...)
	m := anthropic.Model(model)
	if model == "" {
		m = anthropic.ModelClaude3_5Sonnet20241022
	}
	return &Anthropic{
		client: &client,
		model:  m,
		params: params,
		hasKey: apiKey != "" || envSet("ANTHROPIC_API_KEY"),
	}
}

func (a *Anthropic) Name() string { return "anthropic" }

func (a *Anthropic) Available() error {
	if !a.hasKey {
		return ErrDependencyUnavailable("anthropic: no API key configured")
	}
	return nil
}

func (a *Anthropic) Snapshots(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return Accumulate(ctx, func(ctx context.Context, emit func(string) bool) error {
		stream := a.client.Messages.NewStreaming(ctx, a.buildParams(prompt))
		defer stream.Close()
		for stream.Next() {
			ev, ok := stream.Current().AsAny().(anthropic.ContentBlockDeltaEvent)
			if !ok {
				continue
			}
			if d, ok := ev.Delta.AsAny().(anthropic.TextDelta); ok {
				if !emit(d.Text) {
					return nil
				}
			}
		}
		if err := stream.Err(); err != nil {
			return fmt.Errorf("anthropic streaming error: %w", err)
		}
		return nil
	})
}

func (a *Anthropic) buildParams(prompt string) anthropic.MessageNewParams {
	maxTokens := int64(a.params.MaxTokens)
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}
	params := anthropic.MessageNewParams{
		Model:     a.model,
		MaxTokens: maxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if a.params.Temperature > 0 {
		params.Temperature = anthropic.Float(float64(a.params.Temperature))
	}
	if a.params.TopK > 0 {
		params.TopK = anthropic.Int(int64(a.params.TopK))
	}
	return params
}
