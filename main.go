package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/rohithkumar20211/murf-voice-agent/core"
	"github.com/rohithkumar20211/murf-voice-agent/factories"
	"github.com/rohithkumar20211/murf-voice-agent/server"
	"github.com/rohithkumar20211/murf-voice-agent/store"
)

func main() {
	var settingsPath string
	var addr string
	flag.StringVar(&settingsPath, "settings", "./settings.json", "path to settings.json")
	flag.StringVar(&addr, "addr", "", "listen address (overrides settings)")
	flag.Parse()

	logger := core.GetLogger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := godotenv.Load(".env.local"); err != nil {
		logger.With(map[string]interface{}{"error": err}).Warn("No .env.local file found or failed to load")
	}

	settings, err := factories.SettingsConfigFromFile(settingsPath)
	if err != nil {
		logger.With(map[string]interface{}{"path": settingsPath, "error": err}).Warn("failed to load settings, using defaults")
	}
	if addr != "" {
		settings.Server.Addr = addr
	}

	keys := factories.LoadAPIKeysFromEnv()
	if keys.AssemblyAI == "" {
		logger.Warn("ASSEMBLYAI_API_KEY not set; transcription disabled")
	}
	if keys.Gemini == "" && keys.OpenAI == "" {
		logger.Warn("no LLM API key set; completions will fall back")
	}
	if keys.Murf == "" {
		logger.Warn("MURF_API_KEY not set; synthesis disabled")
	}

	sessionStore := store.NewMemoryStore(0)
	handler, err := server.Build(settings, keys, sessionStore, logger)
	if err != nil {
		logger.Fatal("invalid settings", "error", err)
	}
	e := server.New(handler)

	go func() {
		logger.Info("voice agent listening", "addr", settings.Server.Addr)
		if err := e.Start(settings.Server.Addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
