package prompt

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"text/template"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"
)

//go:embed defaults.yaml
var defaultLibrary []byte

// library is the prompts.yaml layout. SystemPrompt is the shared default
// for prompts that do not set their own.
type library struct {
	Version      string            `yaml:"version"`
	SystemPrompt string            `yaml:"system_prompt"`
	Prompts      []*PromptTemplate `yaml:"prompts"`
}

// Parse builds a registry from prompts.yaml content.
func Parse(data []byte) (*Registry, error) {
	var lib library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("failed to parse prompt library: %w", err)
	}

	r := NewRegistry()
	for _, pt := range lib.Prompts {
		if pt.SystemPrompt == "" {
			pt.SystemPrompt = lib.SystemPrompt
		}
		if pt.Version == "" {
			pt.Version = lib.Version
		}
		if pt.Category == "" {
			pt.Category = detectCategory(pt.ID)
		}
		pt.SystemPrompt = strings.TrimSpace(pt.SystemPrompt)
		if err := r.Register(pt); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Default returns the embedded prompt library.
func Default() *Registry {
	r, err := Parse(defaultLibrary)
	if err != nil {
		panic(fmt.Sprintf("embedded prompt library is invalid: %v", err))
	}
	return r
}

// LoadFile reads a prompt library from path. A missing file falls back to
// the embedded defaults; a malformed one is an error.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		log.Warn().Str("component", "prompt").Str("path", path).Msg("prompt library not found, using embedded defaults")
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	r, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	log.Info().Str("component", "prompt").Int("count", r.Count()).Str("path", path).Msg("loaded prompt library")
	return r, nil
}

// detectCategory takes the ID prefix, e.g. "analysis.liquidity" -> "analysis".
func detectCategory(id string) string {
	if i := strings.IndexByte(id, '.'); i > 0 {
		return id[:i]
	}
	return "default"
}

// RenderUserPrompt executes the user prompt template with the given context.
// Missing variables are an error.
func RenderUserPrompt(pt *PromptTemplate, ctx *PromptExecutionContext) (string, error) {
	if pt.UserPromptTmpl == "" {
		return "", nil
	}

	vars := make(map[string]interface{})
	for _, v := range pt.Variables {
		if v.Default != "" {
			vars[v.Name] = v.Default
		}
	}
	if ctx != nil {
		for k, v := range ctx.Variables {
			vars[k] = v
		}
	}
	for _, v := range pt.Variables {
		if _, ok := vars[v.Name]; v.Required && !ok {
			return "", fmt.Errorf("missing required variable %s", v.Name)
		}
	}

	tmpl, err := template.New(pt.ID).Option("missingkey=error").Parse(pt.UserPromptTmpl)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, vars); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return strings.TrimSpace(buf.String()), nil
}
