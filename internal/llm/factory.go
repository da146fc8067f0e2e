package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/dii/internal/model"
)

// NewProvider picks the narrator named by config.Provider. An empty name
// returns a nil provider, which disables narratives.
func NewProvider(config Config) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(config.Provider)) {
	case "":
		return nil, nil
	case "openai":
		return NewOpenAI(config)
	case "anthropic", "claude":
		return NewAnthropic(config)
	case "ollama":
		return NewOllama(config), nil
	default:
		return nil, fmt.Errorf("llm provider %q is not supported (use openai, anthropic or ollama)", config.Provider)
	}
}

// ConfigFromModel converts the runtime configuration to llm.Config.
// Strict figures mode is always on.
func ConfigFromModel(llmCfg model.LLMConfig, httpCfg model.HTTPConfig) Config {
	return Config{
		Provider:      llmCfg.Provider,
		Model:         llmCfg.Model,
		APIKey:        llmCfg.APIKey,
		BaseURL:       llmCfg.BaseURL,
		Timeout:       llmCfg.Timeout,
		StrictFigures: true,
		MaxTokens:     llmCfg.MaxTokens,
		HTTPProxy:     httpCfg.HTTPProxy,
		HTTPSProxy:    httpCfg.HTTPSProxy,
	}
}
