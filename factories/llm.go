package factories

import (
	"errors"

	"github.com/rohithkumar20211/murf-voice-agent/core"
	openaillm "github.com/rohithkumar20211/murf-voice-agent/services/openai/llm"
)

// LLMFactoryConfig holds provider-specific configs for LLM service
// construction. Set at most one provider config; when none is set the factory
// falls back to Gemini with defaults. All providers speak the OpenAI-compatible
// protocol and are implemented via the same service with a custom base URL.
type LLMFactoryConfig struct {
	GeminiConfig     *openaillm.Config `json:"gemini,omitempty"`
	OpenAIConfig     *openaillm.Config `json:"openai,omitempty"`
	GroqConfig       *openaillm.Config `json:"groq,omitempty"`
	TogetherConfig   *openaillm.Config `json:"together,omitempty"`
	OpenRouterConfig *openaillm.Config `json:"openrouter,omitempty"`
}

// Default base URLs and models for the OpenAI-compatible providers.
const (
	geminiBaseURL     = "https://generativelanguage.googleapis.com/v1beta/openai"
	groqBaseURL       = "https://api.groq.com/openai/v1"
	togetherBaseURL   = "https://api.together.xyz/v1"
	openrouterBaseURL = "https://openrouter.ai/api/v1"

	defaultGeminiModel = "gemini-1.5-flash-8b"
)

// BuildLLMService constructs an LLM service from the factory config, filling
// in the matching API key when the config does not carry one.
func BuildLLMService(config LLMFactoryConfig, keys APIKeys, logger *core.Logger) (*openaillm.OpenAILLMService, error) {
	set := 0
	for _, c := range []*openaillm.Config{
		config.GeminiConfig, config.OpenAIConfig, config.GroqConfig,
		config.TogetherConfig, config.OpenRouterConfig,
	} {
		if c != nil {
			set++
		}
	}
	if set > 1 {
		return nil, errors.New("LLMFactoryConfig: more than one provider config specified")
	}

	switch {
	case config.OpenAIConfig != nil:
		return buildOpenAICompatible(*config.OpenAIConfig, "", "gpt-4o-mini", keys.OpenAI, logger), nil
	case config.GroqConfig != nil:
		return buildOpenAICompatible(*config.GroqConfig, groqBaseURL, "llama-3.3-70b-versatile", keys.OpenAI, logger), nil
	case config.TogetherConfig != nil:
		return buildOpenAICompatible(*config.TogetherConfig, togetherBaseURL, "meta-llama/Llama-3.3-70B-Instruct-Turbo", keys.OpenAI, logger), nil
	case config.OpenRouterConfig != nil:
		return buildOpenAICompatible(*config.OpenRouterConfig, openrouterBaseURL, "openai/gpt-4o", keys.OpenAI, logger), nil
	case config.GeminiConfig != nil:
		return buildOpenAICompatible(*config.GeminiConfig, geminiBaseURL, defaultGeminiModel, keys.Gemini, logger), nil
	default:
		cfg := openaillm.DefaultConfig()
		return buildOpenAICompatible(cfg, geminiBaseURL, defaultGeminiModel, keys.Gemini, logger), nil
	}
}

// buildOpenAICompatible creates an OpenAI-compatible LLM service, applying
// default base URL, model and API key where the config leaves them empty.
func buildOpenAICompatible(cfg openaillm.Config, defaultBaseURL, defaultModel, apiKey string, logger *core.Logger) *openaillm.OpenAILLMService {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	if cfg.APIKey == "" {
		cfg.APIKey = apiKey
	}
	return openaillm.NewOpenAILLMService(cfg, logger)
}
