// Package llm wraps the LLM vendors behind one Provider interface.
package llm

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Provider is the interface for all LLM providers.
//
// Recognized options: "model" (string), "temperature" (float64),
// "max_tokens" (int), "api_key" (string), "json" (bool, request a JSON
// object response).
type Provider interface {
	GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error)
	// AdaptInstructions transforms raw instructions into model-specific formats
	AdaptInstructions(rawInstructions string) string
}

// ErrMissingAPIKey is returned when a provider has no credentials.
var ErrMissingAPIKey = errors.New("missing API key")

// ErrUnknownProvider is returned by New for an unregistered name.
var ErrUnknownProvider = errors.New("unknown LLM provider")

// =============================================================================
// PROVIDER REGISTRY
// =============================================================================

var constructors = map[string]func() Provider{
	"gemini":        func() Provider { return &GeminiProvider{} },
	"gemini-legacy": func() Provider { return &GeminiLegacyProvider{} },
	"openai":        func() Provider { return NewOpenAIProvider() },
	"kimi":          func() Provider { return NewKimiProvider() },
	"doubao":        func() Provider { return NewDoubaoProvider() },
	"claude":        func() Provider { return &ClaudeProvider{} },
	"deepseek":      func() Provider { return &DeepSeekProvider{} },
	"qwen":          func() Provider { return &QwenProvider{} },
	"mock":          func() Provider { return &MockProvider{} },
}

// New returns a fresh provider by name.
func New(name string) (Provider, error) {
	ctor, ok := constructors[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
	}
	return ctor(), nil
}

// Names lists the registered provider names.
func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// =============================================================================
// OPTION HELPERS
// =============================================================================

func stringOption(options map[string]interface{}, key, def string) string {
	if val, ok := options[key].(string); ok && val != "" {
		return val
	}
	return def
}

func floatOption(options map[string]interface{}, key string) (float64, bool) {
	switch v := options[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	}
	return 0, false
}

func intOption(options map[string]interface{}, key string, def int) int {
	switch v := options[key].(type) {
	case int:
		if v > 0 {
			return v
		}
	case float64:
		if v > 0 {
			return int(v)
		}
	}
	return def
}

func boolOption(options map[string]interface{}, key string) bool {
	v, _ := options[key].(bool)
	return v
}

// resolveAPIKey picks the explicit key, then the api_key option, then the
// first non-empty environment variable.
func resolveAPIKey(explicit string, options map[string]interface{}, envVars ...string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if val := stringOption(options, "api_key", ""); val != "" {
		return val, nil
	}
	for _, env := range envVars {
		if val := os.Getenv(env); val != "" {
			return val, nil
		}
	}
	return "", fmt.Errorf("%w: set %s", ErrMissingAPIKey, strings.Join(envVars, " or "))
}
