package factories

import (
	"github.com/rohithkumar20211/murf-voice-agent/core"
	murftts "github.com/rohithkumar20211/murf-voice-agent/services/murf/tts"
)

// TTSFactoryConfig holds provider-specific configs for TTS service
// construction. Murf is the only provider today; the optional stream block
// additionally enables the WebSocket streaming client.
type TTSFactoryConfig struct {
	MurfConfig       *murftts.MurfTTSConfig    `json:"murf,omitempty"`
	MurfStreamConfig *murftts.MurfStreamConfig `json:"murf_stream,omitempty"`
}

// BuildTTSService constructs the TTS service from the factory config, filling
// in the API key when the config does not carry one.
func BuildTTSService(config TTSFactoryConfig, keys APIKeys, logger *core.Logger) *murftts.MurfTTS {
	cfg := murftts.DefaultConfig()
	if config.MurfConfig != nil {
		cfg = *config.MurfConfig
	}
	if cfg.APIKey == "" {
		cfg.APIKey = keys.Murf
	}
	return murftts.NewMurfTTS(cfg, logger)
}

// BuildTTSStream constructs the streaming TTS client when the settings enable
// it, nil otherwise.
func BuildTTSStream(config TTSFactoryConfig, keys APIKeys, logger *core.Logger) *murftts.MurfStream {
	if config.MurfStreamConfig == nil {
		return nil
	}
	cfg := *config.MurfStreamConfig
	if cfg.APIKey == "" {
		cfg.APIKey = keys.Murf
	}
	return murftts.NewMurfStream(cfg, logger)
}
