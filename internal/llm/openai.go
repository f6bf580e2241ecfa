package llm

import (
	"context"
	"errors"

	openai "github.com/openai/openai-go"
	openaiopt "github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAI calls the chat completions API through the official SDK. The
// client is built per request because the key comes from the node, not
// from service configuration.
type OpenAI struct {
	// BaseURL overrides the API endpoint, used by tests and
	// OpenAI-compatible gateways.
	BaseURL string
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Generate(ctx context.Context, req Request) (string, error) {
	opts := []openaiopt.RequestOption{openaiopt.WithAPIKey(req.APIKey)}
	if o.BaseURL != "" {
		opts = append(opts, openaiopt.WithBaseURL(o.BaseURL))
	}
	client := openai.NewClient(opts...)

	params := openai.ChatCompletionNewParams{
		Model: shared.ChatModel(req.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(req.Prompt),
		},
		Temperature:         openai.Float(req.Temperature),
		MaxCompletionTokens: openai.Int(int64(req.MaxTokens)),
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", &ProviderError{Provider: o.Name(), Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: o.Name(), Err: errors.New("empty completion")}
	}
	return resp.Choices[0].Message.Content, nil
}
