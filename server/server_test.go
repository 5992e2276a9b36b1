package server

import (
	"bytes"
	"context"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"

	"github.com/rohithkumar20211/murf-voice-agent/agent"
	"github.com/rohithkumar20211/murf-voice-agent/core"
	"github.com/rohithkumar20211/murf-voice-agent/factories"
	openaillm "github.com/rohithkumar20211/murf-voice-agent/services/openai/llm"
	"github.com/rohithkumar20211/murf-voice-agent/store"
)

type stubSTT struct {
	result core.TranscriptResult
}

func (s *stubSTT) Transcribe(ctx context.Context, audio []byte) core.TranscriptResult {
	return s.result
}

type stubLLM struct {
	reply string
	err   error
}

func (s *stubLLM) Complete(ctx context.Context, messages []core.PromptMessage, model string) (string, error) {
	return s.reply, s.err
}

type stubTTS struct {
	url       string
	err       error
	voices    []core.Voice
	voicesErr error
}

func (s *stubTTS) Synthesize(ctx context.Context, text, voiceID string) (string, error) {
	return s.url, s.err
}

func (s *stubTTS) Voices(ctx context.Context) ([]core.Voice, error) {
	return s.voices, s.voicesErr
}

type testServer struct {
	e     *echo.Echo
	store *store.MemoryStore
	stt   *stubSTT
	llm   *stubLLM
	tts   *stubTTS
}

func newTestServer() *testServer {
	st := store.NewMemoryStore(0)
	stt := &stubSTT{result: core.TranscriptResult{Status: core.TranscriptUnavailable}}
	llm := &stubLLM{reply: "Hi there!"}
	tts := &stubTTS{url: "https://cdn.example/a.mp3"}

	cfg := agent.DefaultConfig()
	cfg.DisableGreetingShortcut = true
	orch := agent.NewOrchestrator(stt, llm, tts, st, agent.DefaultPersona(), cfg, core.GetLogger())

	h := NewHandler(orch, stt, tts, st, core.GetLogger())
	return &testServer{e: New(h), store: st, stt: stt, llm: llm, tts: tts}
}

func (ts *testServer) do(method, path, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set(echo.HeaderContentType, contentType)
	}
	rec := httptest.NewRecorder()
	ts.e.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) doJSON(method, path, body string) *httptest.ResponseRecorder {
	return ts.do(method, path, echo.MIMEApplicationJSON, bytes.NewBufferString(body))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := sonic.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("bad response body %q: %v", rec.Body.String(), err)
	}
}

func multipartAudio(t *testing.T, contentType string, audio []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="clip.wav"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write(audio); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return body, w.FormDataContentType()
}

func TestBuildRejectsInvalidLLMSettings(t *testing.T) {
	settings := factories.DefaultSettingsConfig()
	settings.LLM.GeminiConfig = &openaillm.Config{}
	settings.LLM.GroqConfig = &openaillm.Config{}

	_, err := Build(settings, factories.APIKeys{}, store.NewMemoryStore(0), core.GetLogger())
	if err == nil {
		t.Fatal("conflicting provider configs must fail the build")
	}
}

func TestBuildWithDefaults(t *testing.T) {
	h, err := Build(factories.DefaultSettingsConfig(), factories.APIKeys{}, store.NewMemoryStore(0), core.GetLogger())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if h == nil {
		t.Fatal("expected a handler")
	}
}

func TestAgentChatTextTurn(t *testing.T) {
	ts := newTestServer()

	rec := ts.doJSON(http.MethodPost, "/agent/chat/s1", `{"prompt":"what time is it"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp chatResponse
	decode(t, rec, &resp)
	if resp.SessionID != "s1" {
		t.Fatalf("unexpected session id: %q", resp.SessionID)
	}
	if resp.LLMText != "Hi there!" {
		t.Fatalf("unexpected reply: %q", resp.LLMText)
	}
	if len(resp.AudioURLs) != 1 || resp.AudioURLs[0] != "https://cdn.example/a.mp3" {
		t.Fatalf("unexpected audio urls: %v", resp.AudioURLs)
	}
	if resp.Fallback {
		t.Fatal("successful turn must not be fallback")
	}
	if got := ts.store.Len("s1"); got != 2 {
		t.Fatalf("expected 2 history turns, got %d", got)
	}
}

func TestAgentChatEmptyRequestIs400(t *testing.T) {
	ts := newTestServer()

	rec := ts.doJSON(http.MethodPost, "/agent/chat/s1", `{"prompt":""}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if got := ts.store.Len("s1"); got != 0 {
		t.Fatalf("rejected request must not touch history, got %d turns", got)
	}
}

func TestAgentChatLLMFailureDegrades(t *testing.T) {
	ts := newTestServer()
	ts.llm.err = errors.New("model down")

	rec := ts.doJSON(http.MethodPost, "/agent/chat/s1", `{"prompt":"anything"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("degraded turn must stay 200, got %d", rec.Code)
	}

	var resp chatResponse
	decode(t, rec, &resp)
	if !resp.Fallback {
		t.Fatal("expected fallback response")
	}
	if !strings.Contains(resp.LLMText, "trouble connecting") {
		t.Fatalf("unexpected fallback text: %q", resp.LLMText)
	}
	if len(resp.AudioURLs) != 0 {
		t.Fatalf("fallback must not carry audio, got %v", resp.AudioURLs)
	}
}

func TestHistoryRoundTrip(t *testing.T) {
	ts := newTestServer()

	ts.doJSON(http.MethodPost, "/agent/chat/s1", `{"prompt":"first message"}`)
	ts.doJSON(http.MethodPost, "/agent/chat/s1", `{"prompt":"second message"}`)

	rec := ts.do(http.MethodGet, "/agent/history/s1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp historyResponse
	decode(t, rec, &resp)
	if len(resp.History) != 4 {
		t.Fatalf("expected 4 history entries, got %d", len(resp.History))
	}
	if resp.History[0].Role != "user" || resp.History[0].Content != "first message" {
		t.Fatalf("unexpected first entry: %+v", resp.History[0])
	}
	if resp.History[1].Role != "assistant" {
		t.Fatalf("unexpected second entry role: %q", resp.History[1].Role)
	}
	if resp.History[0].TS == "" {
		t.Fatal("history entries must carry timestamps")
	}

	rec = ts.do(http.MethodDelete, "/agent/history/s1", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 on clear, got %d", rec.Code)
	}

	rec = ts.do(http.MethodGet, "/agent/history/s1", "", nil)
	decode(t, rec, &resp)
	if len(resp.History) != 0 {
		t.Fatalf("cleared history must be empty, got %d entries", len(resp.History))
	}
}

func TestLLMQueryIsStateless(t *testing.T) {
	ts := newTestServer()

	rec := ts.doJSON(http.MethodPost, "/llm/query", `{"prompt":"quick question"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp chatResponse
	decode(t, rec, &resp)
	if resp.LLMText != "Hi there!" {
		t.Fatalf("unexpected reply: %q", resp.LLMText)
	}
	if ts.store.Sessions() != 0 {
		t.Fatal("one-shot query must not create sessions")
	}
}

func TestTranscribeFile(t *testing.T) {
	ts := newTestServer()
	ts.stt.result = core.TranscriptResult{Text: "spoken words", Status: core.TranscriptCompleted}

	body, contentType := multipartAudio(t, "audio/wav", []byte("fake audio"))
	rec := ts.do(http.MethodPost, "/transcribe/file", contentType, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result core.TranscriptResult
	decode(t, rec, &result)
	if result.Text != "spoken words" || result.Status != core.TranscriptCompleted {
		t.Fatalf("unexpected result: %+v", result)
	}
}

func TestTranscribeFileRequiresUpload(t *testing.T) {
	ts := newTestServer()

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	w.Close()
	rec := ts.do(http.MethodPost, "/transcribe/file", w.FormDataContentType(), body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGenerateTTS(t *testing.T) {
	ts := newTestServer()

	rec := ts.doJSON(http.MethodPost, "/generate-tts", `{"text":"read this aloud"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp ttsResponse
	decode(t, rec, &resp)
	if resp.AudioURL != "https://cdn.example/a.mp3" {
		t.Fatalf("unexpected audio url: %q", resp.AudioURL)
	}
}

func TestGenerateTTSFailureKeepsStatus200(t *testing.T) {
	ts := newTestServer()
	ts.tts.url = ""
	ts.tts.err = errors.New("synthesis down")

	rec := ts.doJSON(http.MethodPost, "/generate-tts", `{"text":"read this"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp ttsResponse
	decode(t, rec, &resp)
	if resp.AudioURL != "" || resp.Message != ttsFallbackMessage {
		t.Fatalf("unexpected degraded response: %+v", resp)
	}
}

func TestGenerateTTSRequiresText(t *testing.T) {
	ts := newTestServer()

	rec := ts.doJSON(http.MethodPost, "/generate-tts", `{"text":"  "}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestGetVoices(t *testing.T) {
	ts := newTestServer()
	ts.tts.voices = []core.Voice{{VoiceID: "en-US-natalie", DisplayName: "Natalie"}}

	rec := ts.do(http.MethodGet, "/voices", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var voices []core.Voice
	decode(t, rec, &voices)
	if len(voices) != 1 || voices[0].VoiceID != "en-US-natalie" {
		t.Fatalf("unexpected voices: %+v", voices)
	}
}

func TestGetVoicesFailureReadsEmpty(t *testing.T) {
	ts := newTestServer()
	ts.tts.voicesErr = errors.New("upstream down")

	rec := ts.do(http.MethodGet, "/voices", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var voices []core.Voice
	decode(t, rec, &voices)
	if len(voices) != 0 {
		t.Fatalf("expected empty list, got %+v", voices)
	}
}

func TestTTSEcho(t *testing.T) {
	ts := newTestServer()
	ts.stt.result = core.TranscriptResult{Text: "echo me", Status: core.TranscriptCompleted}

	body, contentType := multipartAudio(t, "audio/wav", []byte("fake audio"))
	rec := ts.do(http.MethodPost, "/tts/echo", contentType, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp echoResponse
	decode(t, rec, &resp)
	if resp.Transcript != "echo me" {
		t.Fatalf("unexpected transcript: %q", resp.Transcript)
	}
	if resp.AudioURL != "https://cdn.example/a.mp3" {
		t.Fatalf("unexpected audio url: %q", resp.AudioURL)
	}
}

func TestTTSEchoUntranscribableAudio(t *testing.T) {
	ts := newTestServer()
	ts.stt.result = core.TranscriptResult{Status: core.TranscriptError}

	body, contentType := multipartAudio(t, "audio/wav", []byte("noise"))
	rec := ts.do(http.MethodPost, "/tts/echo", contentType, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp echoResponse
	decode(t, rec, &resp)
	if resp.AudioURL != "" || resp.Message != ttsFallbackMessage {
		t.Fatalf("unexpected response: %+v", resp)
	}
}

func TestAgentChatMultipartAudio(t *testing.T) {
	ts := newTestServer()
	ts.stt.result = core.TranscriptResult{Text: "spoken question", Status: core.TranscriptCompleted}

	body, contentType := multipartAudio(t, "audio/webm", []byte("fake audio"))
	rec := ts.do(http.MethodPost, "/agent/chat/s1", contentType, body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp chatResponse
	decode(t, rec, &resp)
	if resp.TranscriptText != "spoken question" {
		t.Fatalf("unexpected transcript: %q", resp.TranscriptText)
	}
	if resp.LLMText != "Hi there!" {
		t.Fatalf("unexpected reply: %q", resp.LLMText)
	}
}
