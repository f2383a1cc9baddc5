package llm

import (
	"context"
	"fmt"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
)

// OpenAIProvider serves any OpenAI-compatible chat completions endpoint.
// Kimi and Doubao are the same wire format behind a different base URL.
type OpenAIProvider struct {
	Label        string
	BaseURL      string
	APIKey       string
	APIKeyEnv    []string
	DefaultModel string
	Style        string // prefix applied by AdaptInstructions
}

var _ Provider = (*OpenAIProvider)(nil)

// NewOpenAIProvider targets api.openai.com.
func NewOpenAIProvider() *OpenAIProvider {
	return &OpenAIProvider{
		Label:        "openai",
		APIKeyEnv:    []string{"OPENAI_API_KEY"},
		DefaultModel: "gpt-4o-mini",
	}
}

// NewKimiProvider targets Moonshot's Kimi, which is tuned for long-context
// financial documents.
func NewKimiProvider() *OpenAIProvider {
	return &OpenAIProvider{
		Label:        "kimi",
		BaseURL:      "https://api.moonshot.cn/v1",
		APIKeyEnv:    []string{"MOONSHOT_API_KEY", "KIMI_API_KEY"},
		DefaultModel: "moonshot-v1-32k",
	}
}

// NewDoubaoProvider targets ByteDance's Ark endpoint.
func NewDoubaoProvider() *OpenAIProvider {
	return &OpenAIProvider{
		Label:        "doubao",
		BaseURL:      "https://ark.cn-beijing.volces.com/api/v3",
		APIKeyEnv:    []string{"ARK_API_KEY", "DOUBAO_API_KEY"},
		DefaultModel: "doubao-pro-32k",
	}
}

func (p *OpenAIProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey, err := resolveAPIKey(p.APIKey, options, p.APIKeyEnv...)
	if err != nil {
		return "", err
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if p.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(p.BaseURL))
	}
	client := openai.NewClient(opts...)

	var messages []openai.ChatCompletionMessageParamUnion
	if systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(systemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:    openai.ChatModel(stringOption(options, "model", p.DefaultModel)),
		Messages: messages,
	}
	if t, ok := floatOption(options, "temperature"); ok {
		params.Temperature = openai.Float(t)
	}
	if n := intOption(options, "max_tokens", 0); n > 0 {
		params.MaxTokens = openai.Int(int64(n))
	}
	if boolOption(options, "json") {
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	resp, err := client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%s chat completion failed: %w", p.Label, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s returned no choices", p.Label)
	}
	return resp.Choices[0].Message.Content, nil
}

func (p *OpenAIProvider) AdaptInstructions(raw string) string {
	if p.Style == "" {
		return raw
	}
	return p.Style + raw
}
