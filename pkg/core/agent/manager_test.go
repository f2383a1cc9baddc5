package agent

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"financial_analyst/pkg/core/llm"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
active_provider: gemini
agents:
  sentiment:
    provider: deepseek
    model: deepseek-chat
    temperature: 0
    description: Scores news headlines
`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.ActiveProvider)
	assert.Equal(t, "deepseek", cfg.Agents[RoleSentiment].Provider)
	require.NotNil(t, cfg.Agents[RoleSentiment].Temperature)
	assert.Equal(t, 0.0, *cfg.Agents[RoleSentiment].Temperature)
}

func TestManagerRouting(t *testing.T) {
	m := NewManager(Config{
		ActiveProvider: "mock",
		Agents: map[string]AgentConfig{
			RoleSentiment: {Provider: "scorer", Model: "tiny"},
		},
	})
	analyst := &llm.MockProvider{}
	scorer := &llm.MockProvider{}
	m.Register("mock", analyst)
	m.Register("scorer", scorer)

	_, err := m.ExecutePrompt(context.Background(), RoleRatioAnalyst, "p1", "s1", nil)
	require.NoError(t, err)
	_, err = m.ExecutePrompt(context.Background(), RoleSentiment, "p2", "s2", map[string]interface{}{"json": true})
	require.NoError(t, err)

	require.Len(t, analyst.Calls(), 1)
	require.Len(t, scorer.Calls(), 1)
	assert.Equal(t, "tiny", scorer.Calls()[0].Options["model"])
	assert.Equal(t, true, scorer.Calls()[0].Options["json"])
}

func TestSetGlobalProvider(t *testing.T) {
	m := NewManager(Config{ActiveProvider: "gemini"})
	require.NoError(t, m.SetGlobalProvider("deepseek"))
	assert.Equal(t, "deepseek", m.GetActiveProvider())
	assert.Error(t, m.SetGlobalProvider("nope"))
	assert.Equal(t, "deepseek", m.GetActiveProvider())
	assert.Contains(t, m.AvailableProviders(), "claude")
	assert.IsType(t, &llm.DeepSeekProvider{}, m.GetProvider(RoleRatioAnalyst))
}

func TestModelOverrideFollowsProvider(t *testing.T) {
	m := NewManager(Config{
		ActiveProvider: "mock",
		Agents: map[string]AgentConfig{
			RoleRatioAnalyst: {Model: "gemini-2.5-flash"},
			RoleSentiment:    {Provider: "scorer", Model: "tiny"},
		},
	})
	first := &llm.MockProvider{}
	second := &llm.MockProvider{}
	scorer := &llm.MockProvider{}
	m.Register("mock", first)
	m.Register("other", second)
	m.Register("scorer", scorer)
	ctx := context.Background()

	_, err := m.ExecutePrompt(ctx, RoleRatioAnalyst, "p", "s", nil)
	require.NoError(t, err)
	require.Len(t, first.Calls(), 1)
	assert.Equal(t, "gemini-2.5-flash", first.Calls()[0].Options["model"])

	require.NoError(t, m.SetGlobalProvider("other"))
	_, err = m.ExecutePrompt(ctx, RoleRatioAnalyst, "p", "s", nil)
	require.NoError(t, err)
	require.Len(t, second.Calls(), 1)
	_, hasModel := second.Calls()[0].Options["model"]
	assert.False(t, hasModel, "model belongs to the provider it was configured for")

	_, err = m.ExecutePrompt(ctx, RoleSentiment, "p", "s", nil)
	require.NoError(t, err)
	require.Len(t, scorer.Calls(), 1)
	assert.Equal(t, "tiny", scorer.Calls()[0].Options["model"])
}
