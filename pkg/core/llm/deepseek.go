package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const deepSeekURL = "https://api.deepseek.com/chat/completions"

type DeepSeekProvider struct {
	APIKey  string
	BaseURL string // full chat completions URL; defaults to the public API
}

var _ Provider = (*DeepSeekProvider)(nil)

// DeepSeekRequest is the chat completions request body.
type DeepSeekRequest struct {
	Messages       []Message      `json:"messages"`
	Model          string         `json:"model"`
	MaxTokens      int            `json:"max_tokens"`
	ResponseFormat ResponseFormat `json:"response_format"`
	Stream         bool           `json:"stream"`
	Temperature    float64        `json:"temperature"`
	TopP           float64        `json:"top_p"`
}

type Message struct {
	Content string `json:"content"`
	Role    string `json:"role"`
}

type ResponseFormat struct {
	Type string `json:"type"`
}

type DeepSeekResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (p *DeepSeekProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	apiKey, err := resolveAPIKey(p.APIKey, options, "DEEPSEEK_API_KEY")
	if err != nil {
		return "", err
	}

	url := p.BaseURL
	if url == "" {
		url = deepSeekURL
	}

	reqBody := DeepSeekRequest{
		Model:          stringOption(options, "model", "deepseek-chat"),
		MaxTokens:      intOption(options, "max_tokens", 4096),
		ResponseFormat: ResponseFormat{Type: "text"},
		Stream:         false,
		Temperature:    1.0,
		TopP:           1.0,
	}
	if systemPrompt != "" {
		reqBody.Messages = append(reqBody.Messages, Message{Content: systemPrompt, Role: "system"})
	}
	reqBody.Messages = append(reqBody.Messages, Message{Content: prompt, Role: "user"})
	if t, ok := floatOption(options, "temperature"); ok {
		reqBody.Temperature = t
	}
	if boolOption(options, "json") {
		reqBody.ResponseFormat.Type = "json_object"
	}

	jsonBytes, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_MARSHAL_ERROR: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonBytes))
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_REQ_CREATE_ERROR: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+apiKey)

	client := &http.Client{Timeout: 120 * time.Second}
	res, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_API_CALL_ERROR: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return "", fmt.Errorf("DEEPSEEK_READ_BODY_ERROR: %w", err)
	}

	if res.StatusCode != http.StatusOK {
		return "", fmt.Errorf("DEEPSEEK_API_ERROR: status=%d body=%s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var response DeepSeekResponse
	if err := json.Unmarshal(body, &response); err != nil {
		return "", fmt.Errorf("DEEPSEEK_UNMARSHAL_ERROR: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("DEEPSEEK_NO_CHOICES: %s", string(body))
	}

	return response.Choices[0].Message.Content, nil
}

func (p *DeepSeekProvider) AdaptInstructions(raw string) string {
	return raw
}
