// Package agent maps analysis roles onto LLM providers.
package agent

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v2"

	"financial_analyst/pkg/core/llm"
)

// Agent roles used by the report builder and the sentiment scorer.
const (
	RoleRatioAnalyst = "ratio_analyst"
	RoleSentiment    = "sentiment"
)

// Executor runs a prompt on behalf of an agent role. *Manager implements it.
type Executor interface {
	ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error)
}

var _ Executor = (*Manager)(nil)

type Config struct {
	ActiveProvider string                 `yaml:"active_provider"`
	Agents         map[string]AgentConfig `yaml:"agents"`
}

// AgentConfig overrides the provider or model of one role. A model without
// a provider belongs to the active_provider named in models.yaml and is not
// sent to another provider after a runtime switch.
type AgentConfig struct {
	Provider    string   `yaml:"provider"` // Optional override
	Model       string   `yaml:"model"`    // Optional model override
	Temperature *float64 `yaml:"temperature"`
	Description string   `yaml:"description"`
}

// LoadConfig reads a models.yaml file.
func LoadConfig(path string) (Config, error) {
	var cfg Config
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read agent config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse agent config %s: %w", path, err)
	}
	return cfg, nil
}

// Manager resolves the provider for each agent role. The active provider can
// be switched at runtime.
type Manager struct {
	mu        sync.RWMutex
	config    Config
	providers map[string]llm.Provider

	// provider active when the config was loaded
	configured string
}

func NewManager(config Config) *Manager {
	providers := make(map[string]llm.Provider)
	for _, name := range llm.Names() {
		p, _ := llm.New(name)
		providers[name] = p
	}
	return &Manager{config: config, providers: providers, configured: config.ActiveProvider}
}

// Register adds or replaces a provider under name.
func (m *Manager) Register(name string, p llm.Provider) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.providers[name] = p
}

func (m *Manager) GetProvider(agentType string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, p := m.resolve(agentType)
	return p
}

// resolve returns the provider name and instance for an agent. Callers hold mu.
func (m *Manager) resolve(agentType string) (string, llm.Provider) {
	// 1. Check for agent-specific override
	if agentConfig, ok := m.config.Agents[agentType]; ok && agentConfig.Provider != "" {
		if p, ok := m.providers[agentConfig.Provider]; ok {
			return agentConfig.Provider, p
		}
	}

	// 2. Use global active provider
	if p, ok := m.providers[m.config.ActiveProvider]; ok {
		return m.config.ActiveProvider, p
	}

	// 3. Fallback
	return "gemini", m.providers["gemini"]
}

// GetProviderByName retrieves a provider instance by its specific name (e.g. "deepseek", "gemini")
func (m *Manager) GetProviderByName(name string) llm.Provider {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.providers[name]
}

// ExecutePrompt handles instruction adaptation before sending to the model.
// The agent's configured model and temperature apply unless the caller set
// them in options.
func (m *Manager) ExecutePrompt(ctx context.Context, agentType string, rawPrompt string, rawSystemPrompt string, options map[string]interface{}) (string, error) {
	m.mu.RLock()
	name, provider := m.resolve(agentType)
	agentConfig := m.config.Agents[agentType]
	active := m.config.ActiveProvider
	modelOwner := agentConfig.Provider
	if modelOwner == "" {
		modelOwner = m.configured
	}
	m.mu.RUnlock()
	if provider == nil {
		return "", fmt.Errorf("no provider available for agent %s", agentType)
	}

	merged := make(map[string]interface{}, len(options)+2)
	if agentConfig.Model != "" && modelOwner == name {
		merged["model"] = agentConfig.Model
	}
	if agentConfig.Temperature != nil {
		merged["temperature"] = *agentConfig.Temperature
	}
	for k, v := range options {
		merged[k] = v
	}

	log.Debug().
		Str("component", "agent").
		Str("agent", agentType).
		Str("active_provider", active).
		Str("provider", name).
		Str("provider_type", fmt.Sprintf("%T", provider)).
		Msg("executing prompt")

	// Adapt instructions based on the model's specialized "teaching" style
	adaptedSystemPrompt := provider.AdaptInstructions(rawSystemPrompt)

	return provider.GenerateResponse(ctx, rawPrompt, adaptedSystemPrompt, merged)
}

func (m *Manager) SetGlobalProvider(newProvider string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.providers[newProvider]; !ok {
		return fmt.Errorf("provider %s not found", newProvider)
	}
	m.config.ActiveProvider = newProvider
	log.Info().Str("component", "agent").Str("provider", newProvider).Msg("global provider switched")
	return nil
}

func (m *Manager) GetActiveProvider() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config.ActiveProvider
}

// AvailableProviders lists registered provider names.
func (m *Manager) AvailableProviders() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	names := make([]string, 0, len(m.providers))
	for name := range m.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
