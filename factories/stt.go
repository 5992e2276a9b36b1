package factories

import (
	"github.com/rohithkumar20211/murf-voice-agent/core"
	assemblyaistt "github.com/rohithkumar20211/murf-voice-agent/services/assemblyai/stt"
)

// STTFactoryConfig holds provider-specific configs for STT service
// construction. AssemblyAI is the only provider today.
type STTFactoryConfig struct {
	AssemblyAIConfig *assemblyaistt.AssemblyAIConfig `json:"assemblyai,omitempty"`
}

// BuildSTTService constructs the STT service from the factory config, filling
// in the API key when the config does not carry one.
func BuildSTTService(config STTFactoryConfig, keys APIKeys, logger *core.Logger) *assemblyaistt.AssemblyAISTTService {
	cfg := assemblyaistt.DefaultConfig()
	if config.AssemblyAIConfig != nil {
		copied := *config.AssemblyAIConfig
		cfg = &copied
	}
	if cfg.APIKey == "" {
		cfg.APIKey = keys.AssemblyAI
	}
	return assemblyaistt.NewAssemblyAISTTService(cfg, logger)
}
