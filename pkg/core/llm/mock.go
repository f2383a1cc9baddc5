package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// MockProvider answers without a network call. Respond, when set, computes
// the reply; otherwise a short canned analysis is returned, or for JSON
// requests a neutral score for each numbered line of the prompt. Calls are
// recorded for inspection.
type MockProvider struct {
	Respond func(prompt, systemPrompt string, options map[string]interface{}) (string, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall is one recorded request.
type MockCall struct {
	Prompt       string
	SystemPrompt string
	Options      map[string]interface{}
}

var _ Provider = (*MockProvider)(nil)

var numberedLine = regexp.MustCompile(`^\s*\d+\.\s`)

func (p *MockProvider) GenerateResponse(ctx context.Context, prompt string, systemPrompt string, options map[string]interface{}) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p.mu.Lock()
	p.calls = append(p.calls, MockCall{Prompt: prompt, SystemPrompt: systemPrompt, Options: options})
	p.mu.Unlock()

	if p.Respond != nil {
		return p.Respond(prompt, systemPrompt, options)
	}
	if boolOption(options, "json") {
		scores := make([]string, 0)
		for _, line := range strings.Split(prompt, "\n") {
			if numberedLine.MatchString(line) {
				scores = append(scores, "0")
			}
		}
		return `{"scores": [` + strings.Join(scores, ", ") + `]}`, nil
	}
	firstLine := strings.SplitN(strings.TrimSpace(prompt), "\n", 2)[0]
	return fmt.Sprintf("Offline analysis (no LLM configured) for: %s", firstLine), nil
}

func (p *MockProvider) AdaptInstructions(raw string) string {
	return raw
}

// Calls returns the recorded requests.
func (p *MockProvider) Calls() []MockCall {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]MockCall(nil), p.calls...)
}
