package server

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/labstack/echo/v4"

	"github.com/rohithkumar20211/murf-voice-agent/agent"
	"github.com/rohithkumar20211/murf-voice-agent/core"
	"github.com/rohithkumar20211/murf-voice-agent/factories"
	"github.com/rohithkumar20211/murf-voice-agent/store"
	utilsaudio "github.com/rohithkumar20211/murf-voice-agent/utils/audio"
)

// SynthesisService is the TTS surface the handlers need beyond what the
// orchestrator already covers.
type SynthesisService interface {
	agent.TTSService
	Voices(ctx context.Context) ([]core.Voice, error)
}

// Handler carries the wired collaborators for the HTTP surface.
type Handler struct {
	settings factories.SettingsConfig
	keys     factories.APIKeys
	logger   *core.Logger

	store *store.MemoryStore
	orch  *agent.Orchestrator
	stt   agent.STTService
	tts   SynthesisService
}

// NewHandler builds a handler around explicit collaborators. Used directly in
// tests; production wiring goes through Build.
func NewHandler(orch *agent.Orchestrator, stt agent.STTService, tts SynthesisService, st *store.MemoryStore, logger *core.Logger) *Handler {
	if logger == nil {
		logger = core.GetLogger()
	}
	return &Handler{
		store:  st,
		orch:   orch,
		stt:    stt,
		tts:    tts,
		logger: logger,
	}
}

// Build wires a handler from settings and process-wide API keys via the
// factories, keeping both around so per-request key overrides can rebuild the
// provider services with merged credentials.
func Build(settings factories.SettingsConfig, keys factories.APIKeys, st *store.MemoryStore, logger *core.Logger) (*Handler, error) {
	if logger == nil {
		logger = core.GetLogger()
	}

	stt := factories.BuildSTTService(settings.STT, keys, logger)
	llm, err := factories.BuildLLMService(settings.LLM, keys, logger)
	if err != nil {
		return nil, fmt.Errorf("invalid LLM settings: %w", err)
	}
	tts := factories.BuildTTSService(settings.TTS, keys, logger)
	orch := agent.NewOrchestrator(stt, llm, tts, st, settings.ActivePersona(), settings.Agent, logger)

	h := NewHandler(orch, stt, tts, st, logger)
	h.settings = settings
	h.keys = keys
	return h, nil
}

// Routes registers all endpoints on the echo instance.
func (h *Handler) Routes(e *echo.Echo) {
	e.POST("/agent/chat/:session_id", h.AgentChat)
	e.GET("/agent/history/:session_id", h.GetHistory)
	e.DELETE("/agent/history/:session_id", h.ClearHistory)
	e.POST("/llm/query", h.LLMQuery)
	e.POST("/transcribe/file", h.TranscribeFile)
	e.POST("/generate-tts", h.GenerateTTS)
	e.GET("/voices", h.GetVoices)
	e.POST("/tts/echo", h.TTSEcho)
}

// New builds the echo instance with all routes registered.
func New(h *Handler) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	h.Routes(e)
	return e
}

// keyOverrides reads per-request credential overrides from headers. An
// override beats the process-wide default for this request only.
func keyOverrides(c echo.Context) factories.APIKeys {
	header := c.Request().Header
	return factories.APIKeys{
		AssemblyAI: header.Get("X-Assemblyai-Key"),
		Gemini:     header.Get("X-Gemini-Key"),
		Murf:       header.Get("X-Murf-Key"),
		OpenAI:     header.Get("X-Openai-Key"),
	}
}

// orchestratorFor resolves the orchestrator for one request. Without overrides
// it is the shared default; with overrides the provider services are rebuilt
// once for this call with the merged keys.
func (h *Handler) orchestratorFor(c echo.Context) *agent.Orchestrator {
	overrides := keyOverrides(c)
	if overrides.Empty() {
		return h.orch
	}

	merged := h.keys.Merge(overrides)
	stt := factories.BuildSTTService(h.settings.STT, merged, h.logger)
	llm, err := factories.BuildLLMService(h.settings.LLM, merged, h.logger)
	if err != nil {
		h.logger.Warn("invalid LLM settings for override request", "error", err)
		return h.orch
	}
	tts := factories.BuildTTSService(h.settings.TTS, merged, h.logger)
	return agent.NewOrchestrator(stt, llm, tts, h.store, h.settings.ActivePersona(), h.settings.Agent, h.logger)
}

// readAudioFile pulls the uploaded audio out of a multipart form. Raw G.711
// telephony uploads are converted to WAV before transcription. A missing file
// field is not an error; the request may be text-only.
func readAudioFile(c echo.Context) ([]byte, error) {
	fh, err := c.FormFile("file")
	if err != nil {
		return nil, nil
	}
	return readUpload(fh)
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	if utilsaudio.IsTelephonyContentType(fh.Header.Get("Content-Type")) {
		wav, err := utilsaudio.UlawToWav(data, utilsaudio.DefaultTelephonySampleRate)
		if err != nil {
			return nil, err
		}
		return wav, nil
	}
	return data, nil
}

func jsonError(c echo.Context, status int, detail string) error {
	return c.JSON(status, map[string]string{"detail": detail})
}
