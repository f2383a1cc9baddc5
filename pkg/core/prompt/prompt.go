// Package prompt provides a centralized prompt library for LLM interactions.
// Prompts are defined in a YAML file and loaded at runtime, so they can be
// tuned without code changes. A default library is embedded in the binary.
package prompt

// PromptTemplate represents a reusable prompt with metadata
type PromptTemplate struct {
	ID             string           `yaml:"id" json:"id"`                                     // Unique identifier (e.g., "analysis.liquidity")
	Name           string           `yaml:"name" json:"name"`                                 // Human-readable name
	Category       string           `yaml:"category" json:"category"`                         // Category (analysis, sentiment)
	Description    string           `yaml:"description" json:"description"`                   // Description of prompt purpose
	SystemPrompt   string           `yaml:"system_prompt" json:"system_prompt"`               // The system prompt content
	UserPromptTmpl string           `yaml:"user_prompt_template" json:"user_prompt_template"` // Go template for user prompt
	Variables      []PromptVariable `yaml:"variables" json:"variables"`                       // Variables used in template
	Version        string           `yaml:"version" json:"version"`                           // Version for tracking changes
}

// PromptVariable defines a variable used in a prompt template
type PromptVariable struct {
	Name        string `yaml:"name" json:"name"`               // Variable name (e.g., "CompanyName")
	Description string `yaml:"description" json:"description"` // What this variable represents
	Required    bool   `yaml:"required" json:"required"`       // Whether this variable is required
	Default     string `yaml:"default" json:"default"`         // Default value if not provided
}

// PromptExecutionContext holds runtime values for prompt execution
type PromptExecutionContext struct {
	Variables map[string]interface{} // Key-value pairs for template substitution
}

// NewContext creates a new execution context
func NewContext() *PromptExecutionContext {
	return &PromptExecutionContext{
		Variables: make(map[string]interface{}),
	}
}

// Set adds a variable to the context
func (c *PromptExecutionContext) Set(key string, value interface{}) *PromptExecutionContext {
	c.Variables[key] = value
	return c
}

// Well-known prompt IDs.
const (
	IDAnalysisSummary = "analysis.summary"
	IDSentimentScore  = "sentiment.score"
)

// AnalysisID returns the prompt ID for one ratio group, e.g. "analysis.liquidity".
func AnalysisID(group string) string {
	return "analysis." + group
}
