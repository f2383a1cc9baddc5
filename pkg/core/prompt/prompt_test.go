package prompt

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLibrary(t *testing.T) {
	r := Default()

	for _, group := range []string{"liquidity", "profitability", "efficiency", "valuation", "leverage", "growth"} {
		pt, err := r.GetPrompt(AnalysisID(group))
		require.NoError(t, err, group)
		assert.Equal(t, "analysis", pt.Category)
		assert.Contains(t, pt.SystemPrompt, "equity research analyst", "shared system prompt applies")
	}

	sys, err := r.GetSystemPrompt(IDSentimentScore)
	require.NoError(t, err)
	assert.Contains(t, sys, "JSON only", "prompt-specific system prompt wins")
	assert.Len(t, r.ListByCategory("analysis"), 7)
}

func TestRender(t *testing.T) {
	r := Default()
	ctx := NewContext().
		Set("CompanyName", "Acme Corp").
		Set("RatiosTable", "| Period | Current Ratio |")

	system, user, err := r.Render(AnalysisID("liquidity"), ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, system)
	assert.True(t, strings.HasPrefix(user, "Analyze the liquidity of Acme Corp"))
	assert.Contains(t, user, "| Period | Current Ratio |")
}

func TestRenderMissingVariable(t *testing.T) {
	r := Default()
	_, _, err := r.Render(AnalysisID("leverage"), NewContext().Set("CompanyName", "Acme"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "RatiosTable")

	_, _, err = r.Render("analysis.momentum", NewContext())
	assert.Error(t, err)
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()

	r, err := LoadFile(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, Default().Count(), r.Count())

	path := filepath.Join(dir, "prompts.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
system_prompt: Be brief.
prompts:
  - id: analysis.liquidity
    user_prompt_template: "Liquidity of {{.CompanyName}}"
`), 0o644))
	r, err = LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"analysis.liquidity"}, r.ListPrompts())
	sys, user, err := r.Render("analysis.liquidity", NewContext().Set("CompanyName", "X"))
	require.NoError(t, err)
	assert.Equal(t, "Be brief.", sys)
	assert.Equal(t, "Liquidity of X", user)

	require.NoError(t, os.WriteFile(path, []byte("prompts: [unterminated"), 0o644))
	_, err = LoadFile(path)
	assert.Error(t, err)
}
