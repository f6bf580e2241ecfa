package workflow

import "strconv"

// LLMNodeConfig is the typed view of an llm node's settings. Every
// optional field gets a default here so execution never has to guess.
type LLMNodeConfig struct {
	Provider     string
	Model        string
	APIKey       string
	Temperature  float64
	MaxTokens    int
	CustomPrompt string
	UseWebSearch bool
	SerpAPIKey   string
}

const (
	defaultProvider    = "openai"
	defaultTemperature = 0.7
	defaultMaxTokens   = 1000
)

// validModels lists the models the editor offers per provider. An
// unknown or empty model falls back to the first entry.
var validModels = map[string][]string{
	"openai":    {"gpt-3.5-turbo", "gpt-4", "gpt-4-turbo"},
	"anthropic": {"claude-3-sonnet", "claude-3-opus", "claude-3-haiku"},
	"gemini":    {"gemini-2.5-pro", "gemini-2.5-flash", "gemini-2.5-flash-lite", "gemini-1.5-pro", "gemini-1.5-flash"},
	"ollama":    {"llama3", "mistral"},
}

// ParseLLMConfig validates the loose key/value bag the editor stores on
// an llm node and applies defaults.
func ParseLLMConfig(data map[string]any) LLMNodeConfig {
	cfg := LLMNodeConfig{
		Provider:     stringValue(data, "provider", defaultProvider),
		Model:        stringValue(data, "model", ""),
		APIKey:       stringValue(data, "api_key", ""),
		Temperature:  floatValue(data, "temperature", defaultTemperature),
		MaxTokens:    intValue(data, "max_tokens", defaultMaxTokens),
		CustomPrompt: stringValue(data, "custom_prompt", ""),
		UseWebSearch: boolValue(data, "use_web_search"),
		SerpAPIKey:   stringValue(data, "serp_api_key", ""),
	}
	cfg.Model = normalizeModel(cfg.Provider, cfg.Model)
	return cfg
}

func normalizeModel(provider, model string) string {
	models, ok := validModels[provider]
	if !ok {
		// Unknown provider, keep whatever the node carries.
		return model
	}
	for _, m := range models {
		if m == model {
			return model
		}
	}
	return models[0]
}

func stringValue(data map[string]any, key, fallback string) string {
	if v, ok := data[key].(string); ok && v != "" {
		return v
	}
	return fallback
}

// floatValue accepts JSON numbers as well as the string values some
// editor builds serialize for slider inputs.
func floatValue(data map[string]any, key string, fallback float64) float64 {
	switch v := data[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case string:
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func intValue(data map[string]any, key string, fallback int) int {
	switch v := data[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	case string:
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func boolValue(data map[string]any, key string) bool {
	switch v := data[key].(type) {
	case bool:
		return v
	case string:
		return v == "true" || v == "1"
	}
	return false
}
