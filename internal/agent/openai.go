package agent

import (
	"context"
	"strings"

	"github.com/sashabaranov/go-openai"
)

const (
	ProviderOpenAI     = "openai"
	defaultOpenAIModel = "gpt-4o-mini"

	// Chat completions accept at most four stop sequences.
	openAIMaxStops = 4
)

// OpenAIClient implements Generator against any OpenAI-compatible chat endpoint.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

func NewOpenAIClient(apiKey, baseURL, model string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if strings.TrimSpace(model) == "" {
		model = defaultOpenAIModel
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, req Request) (string, error) {
	stops := req.StopSequences
	if len(stops) > openAIMaxStops {
		stops = stops[:openAIMaxStops]
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   int(req.MaxOutputTokens),
		Temperature: req.Temperature,
		TopP:        req.TopP,
		Stop:        stops,
	})
	if err != nil {
		return "", wrapError(ProviderOpenAI, err)
	}
	if len(resp.Choices) == 0 {
		return "", wrapError(ProviderOpenAI, ErrNoContent)
	}

	text := strings.TrimSpace(resp.Choices[0].Message.Content)
	if text == "" {
		return "", wrapError(ProviderOpenAI, ErrNoContent)
	}
	return text, nil
}
