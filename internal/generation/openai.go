// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package generation

import (
	"context"
	"fmt"
	"os"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/pdiddy/answer-engine/pkg/types"
)

// generationTemperature keeps completions close to the supplied
// passages; grounded output should not be creative.
const generationTemperature = 0.2

// OpenAIProvider implements Provider using the OpenAI chat completions
// API.
type OpenAIProvider struct {
	client openai.Client
	model  string
}

// NewOpenAIProvider creates an OpenAI-backed completion provider. The
// API key comes from cfg or the OPENAI_API_KEY environment variable.
func NewOpenAIProvider(cfg types.GenerationConfig) (*OpenAIProvider, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("missing OpenAI API key (set OPENAI_API_KEY or generation.api_key)")
	}

	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}

	return &OpenAIProvider{
		client: openai.NewClient(option.WithAPIKey(apiKey)),
		model:  model,
	}, nil
}

// Complete sends the prompts to OpenAI and returns the generated text.
func (p *OpenAIProvider) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(systemPrompt),
			openai.UserMessage(userPrompt),
		},
		Temperature: openai.Float(generationTemperature),
	}
	if maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(maxTokens))
	}

	completion, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrProvider, err)
	}
	if len(completion.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", ErrProvider)
	}

	return completion.Choices[0].Message.Content, nil
}
