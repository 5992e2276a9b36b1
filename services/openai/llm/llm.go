package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/rohithkumar20211/murf-voice-agent/core"
)

// OpenAILLMService runs chat completions against any OpenAI-compatible
// endpoint. The Gemini, Groq and friends variants differ only in BaseURL and
// default model, so they all share this implementation.
type OpenAILLMService struct {
	config Config
	logger *core.Logger

	client *openai.Client
	mu     sync.RWMutex
}

// Config holds the configuration for an OpenAI-compatible LLM service.
type Config struct {
	APIKey      string        `json:"api_key"`
	BaseURL     string        `json:"base_url"`
	Model       string        `json:"model"`
	MaxTokens   int           `json:"max_tokens"`
	Temperature float32       `json:"temperature"`
	Timeout     time.Duration `json:"timeout"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxTokens: 1024,
		Timeout:   30 * time.Second,
	}
}

// NewOpenAILLMService creates a new OpenAI-compatible LLM service.
// A missing API key is allowed here; calls made without one fail and the
// orchestrator maps that failure into its fallback reply.
func NewOpenAILLMService(config Config, logger *core.Logger) *OpenAILLMService {
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxTokens <= 0 {
		config.MaxTokens = 1024
	}
	if logger == nil {
		logger = core.GetLogger()
	}

	s := &OpenAILLMService{
		config: config,
		logger: logger,
	}
	if config.APIKey != "" {
		s.client = newClient(config)
	}
	return s
}

func newClient(config Config) *openai.Client {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}
	return openai.NewClientWithConfig(clientConfig)
}

// Available reports whether the service has credentials to make calls.
func (s *OpenAILLMService) Available() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.client != nil
}

// Complete sends the prompt messages and returns the assistant reply text.
// model overrides the configured model when non-empty. The call is bounded by
// the configured timeout on top of whatever deadline ctx already carries.
func (s *OpenAILLMService) Complete(ctx context.Context, messages []core.PromptMessage, model string) (string, error) {
	s.mu.RLock()
	client := s.client
	s.mu.RUnlock()
	if client == nil {
		return "", errors.New("llm service has no API key configured")
	}

	if model == "" {
		model = s.config.Model
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	req := openai.ChatCompletionRequest{
		Model:       model,
		Messages:    convertMessages(messages),
		MaxTokens:   s.config.MaxTokens,
		Temperature: s.config.Temperature,
	}

	resp, err := client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: empty choices")
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// convertMessages maps prompt messages to the OpenAI wire format.
func convertMessages(messages []core.PromptMessage) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		out = append(out, openai.ChatCompletionMessage{
			Role:    convertRole(msg.Role),
			Content: msg.Content,
		})
	}
	return out
}

func convertRole(role core.Role) string {
	switch role {
	case core.RoleAssistant:
		return openai.ChatMessageRoleAssistant
	case core.RoleSystem:
		return openai.ChatMessageRoleSystem
	default:
		return openai.ChatMessageRoleUser
	}
}
