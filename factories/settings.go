package factories

import (
	"fmt"
	"os"

	"github.com/bytedance/sonic"

	"github.com/rohithkumar20211/murf-voice-agent/agent"
)

// ServerConfig holds the HTTP surface settings.
type ServerConfig struct {
	Addr string `json:"addr"`
}

// SettingsConfig is the top-level config loaded from settings.json. It bundles
// the orchestrator tunables, the persona, and the provider factory configs.
type SettingsConfig struct {
	Agent   agent.Config     `json:"agent"`
	Persona *agent.Persona   `json:"persona,omitempty"`
	STT     STTFactoryConfig `json:"stt"`
	LLM     LLMFactoryConfig `json:"llm"`
	TTS     TTSFactoryConfig `json:"tts"`
	Server  ServerConfig     `json:"server"`
}

// DefaultSettingsConfig returns a SettingsConfig pre-filled with defaults.
func DefaultSettingsConfig() SettingsConfig {
	return SettingsConfig{
		Agent:  agent.DefaultConfig(),
		Server: ServerConfig{Addr: ":8000"},
	}
}

// ActivePersona returns the configured persona or the default one.
func (c SettingsConfig) ActivePersona() agent.Persona {
	if c.Persona != nil {
		return *c.Persona
	}
	return agent.DefaultPersona()
}

// SettingsConfigFromJSON parses a JSON blob into a SettingsConfig, leaving
// defaults in place for anything the blob omits.
func SettingsConfigFromJSON(data []byte) (SettingsConfig, error) {
	cfg := DefaultSettingsConfig()
	if err := sonic.Unmarshal(data, &cfg); err != nil {
		return DefaultSettingsConfig(), fmt.Errorf("settings: %w", err)
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8000"
	}
	return cfg, nil
}

// SettingsConfigFromFile reads and parses a SettingsConfig from a JSON file.
func SettingsConfigFromFile(path string) (SettingsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return DefaultSettingsConfig(), fmt.Errorf("settings: read %q: %w", path, err)
	}
	return SettingsConfigFromJSON(data)
}
