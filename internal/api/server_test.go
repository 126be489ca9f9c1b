package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"voicetag/internal/api"
	"voicetag/internal/assets"
	"voicetag/internal/audio"
	"voicetag/internal/config"
	"voicetag/internal/history"
	"voicetag/internal/inference"
	"voicetag/internal/labels"
	"voicetag/internal/media/ffmpeg"
	"voicetag/internal/testsupport"
)

type harness struct {
	cfg    *config.Config
	server *api.Server
	store  *history.Store
}

func newHarness(t *testing.T, opts ...testsupport.ConfigOption) *harness {
	t.Helper()
	cfg := testsupport.NewConfig(t, append([]testsupport.ConfigOption{testsupport.WithArtifacts()}, opts...)...)

	loader := assets.NewLoader(assets.PathsFromConfig(cfg), nil)
	transcoder := ffmpeg.New(ffmpeg.Options{Binary: cfg.FFmpegBinary(), TempDir: cfg.Audio.TempDir}, nil)
	normalizer := audio.NewNormalizer(audio.Options{}, transcoder, nil)

	h := &harness{cfg: cfg}
	var recorder inference.Recorder
	var reader api.HistoryReader
	if cfg.History.Enabled {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			t.Fatalf("open history: %v", err)
		}
		t.Cleanup(func() { _ = store.Close() })
		h.store = store
		recorder, reader = store, store
	}

	svc := inference.New(loader, normalizer, labels.NewInterpreter(cfg.Labels), recorder, nil)
	server, err := api.New(cfg, svc, reader, loader, nil)
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	h.server = server
	return h
}

func (h *harness) do(t *testing.T, req *http.Request) (int, map[string]any) {
	t.Helper()
	resp, err := h.server.App().Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		t.Fatalf("decode %q: %v", body, err)
	}
	return resp.StatusCode, payload
}

func multipartRequest(t *testing.T, field, filename string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(data); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/predict", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHealth(t *testing.T) {
	h := newHarness(t)
	status, payload := h.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	if status != http.StatusOK || payload["status"] != "ok" {
		t.Fatalf("unexpected health response %d %v", status, payload)
	}
	if fp, _ := payload["modelFingerprint"].(string); len(fp) != 64 {
		t.Fatalf("expected fingerprint, got %v", payload)
	}
}

func TestPredictUpload(t *testing.T) {
	h := newHarness(t)
	wav := testsupport.WAVBytes(t, testsupport.SineWave(16000, 16000, 500), 16000)

	status, payload := h.do(t, multipartRequest(t, "file", "tone.wav", wav))
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", status, payload)
	}
	if payload["status"] != "ok" || payload["word"] != "buka" || payload["speaker"] != "fauzan" {
		t.Fatalf("unexpected payload %v", payload)
	}
	if payload["display"] != "BUKA / FAUZAN" {
		t.Fatalf("unexpected display %v", payload["display"])
	}
	if pred, _ := payload["prediction"].([]any); len(pred) != 3 {
		t.Fatalf("expected raw prediction, got %v", payload["prediction"])
	}
	if id, _ := payload["id"].(string); id == "" {
		t.Fatal("expected request id")
	}
}

func TestPredictRejectsMissingField(t *testing.T) {
	h := newHarness(t)
	status, payload := h.do(t, multipartRequest(t, "audio", "tone.wav", []byte("x")))
	if status != http.StatusBadRequest || payload["status"] != "error" {
		t.Fatalf("expected 400 error envelope, got %d %v", status, payload)
	}
}

func TestPredictWithoutFFmpegIsRequestError(t *testing.T) {
	h := newHarness(t, testsupport.WithEmptyPath())
	status, payload := h.do(t, multipartRequest(t, "file", "clip.mp3", []byte("not really audio")))
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %v", status, payload)
	}
	if payload["message"] != "FFmpeg not found. Make sure FFmpeg is installed." {
		t.Fatalf("unexpected message %v", payload["message"])
	}

	// The server keeps serving after a failed request.
	status, _ = h.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	if status != http.StatusOK {
		t.Fatalf("expected healthy server after failure, got %d", status)
	}
}

func TestRecordAndHistory(t *testing.T) {
	h := newHarness(t)
	wav := testsupport.WAVBytes(t, make([]float64, 16000), 16000)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/record", bytes.NewReader(wav))
	req.Header.Set("Content-Type", "audio/wav")
	status, payload := h.do(t, req)
	if status != http.StatusOK || payload["word"] != "tutup" || payload["speaker"] != "fikri" || payload["source"] != "recorder" {
		t.Fatalf("unexpected record response %d %v", status, payload)
	}

	status, payload = h.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=5", nil))
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", status, payload)
	}
	entries, _ := payload["entries"].([]any)
	if len(entries) != 1 {
		t.Fatalf("expected one history entry, got %v", payload)
	}
	entry := entries[0].(map[string]any)
	if entry["word"] != "tutup" || entry["source"] != "recorder" || entry["createdAt"] == "" {
		t.Fatalf("unexpected entry %v", entry)
	}
}

func TestRecordRejectsEmptyBody(t *testing.T) {
	h := newHarness(t)
	status, payload := h.do(t, httptest.NewRequest(http.MethodPost, "/api/v1/record", nil))
	if status != http.StatusBadRequest || payload["status"] != "error" {
		t.Fatalf("expected 400, got %d %v", status, payload)
	}
}

func TestRecordRejectsNonFiniteSamples(t *testing.T) {
	h := newHarness(t)
	samples := make([]float32, 16000)
	samples[100] = float32(math.NaN())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/record", bytes.NewReader(testsupport.Float32WAVBytes(samples, 16000)))
	req.Header.Set("Content-Type", "audio/wav")
	status, payload := h.do(t, req)
	if status != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d %v", status, payload)
	}
	if payload["message"] != "The audio could not be decoded." {
		t.Fatalf("unexpected message %v", payload["message"])
	}
}

func TestHistoryValidation(t *testing.T) {
	h := newHarness(t)
	status, _ := h.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/history?limit=0", nil))
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400 for limit=0, got %d", status)
	}

	disabled := newHarness(t, testsupport.WithHistoryDisabled())
	status, _ = disabled.do(t, httptest.NewRequest(http.MethodGet, "/api/v1/history", nil))
	if status != http.StatusNotFound {
		t.Fatalf("expected 404 when history disabled, got %d", status)
	}
}

func TestUnknownRouteUsesEnvelope(t *testing.T) {
	h := newHarness(t)
	status, payload := h.do(t, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if status != http.StatusNotFound || payload["status"] != "error" {
		t.Fatalf("expected 404 envelope, got %d %v", status, payload)
	}
}

type brokenPredictor struct{}

func (brokenPredictor) Run(context.Context, inference.Request) (inference.Outcome, error) {
	return inference.Outcome{}, errors.New("disk on fire")
}

func TestUnexpectedErrorsAre500(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithArtifacts())
	loader := assets.NewLoader(assets.PathsFromConfig(cfg), nil)
	server, err := api.New(cfg, brokenPredictor{}, nil, loader, nil)
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	h := &harness{cfg: cfg, server: server}
	status, payload := h.do(t, multipartRequest(t, "file", "a.wav", []byte("RIFF")))
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d %v", status, payload)
	}
	if msg, _ := payload["message"].(string); !strings.Contains(msg, "disk on fire") {
		t.Fatalf("unexpected message %q", msg)
	}
}

type panickingPredictor struct{}

func (panickingPredictor) Run(context.Context, inference.Request) (inference.Outcome, error) {
	panic("index out of range")
}

func TestHandlerPanicIs500AndServerSurvives(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithArtifacts())
	loader := assets.NewLoader(assets.PathsFromConfig(cfg), nil)
	server, err := api.New(cfg, panickingPredictor{}, nil, loader, nil)
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	h := &harness{cfg: cfg, server: server}

	status, payload := h.do(t, multipartRequest(t, "file", "a.wav", []byte("RIFF")))
	if status != http.StatusInternalServerError {
		t.Fatalf("expected 500 after panic, got %d %v", status, payload)
	}
	if payload["status"] != "error" {
		t.Fatalf("expected error envelope, got %v", payload)
	}

	status, _ = h.do(t, httptest.NewRequest(http.MethodGet, "/health", nil))
	if status != http.StatusOK {
		t.Fatalf("expected health to keep working, got %d", status)
	}
}

func TestStartHoldsInstanceLock(t *testing.T) {
	h := newHarness(t, testsupport.WithHistoryDisabled())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := h.server.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if h.server.Addr() == "" {
		t.Fatal("expected bound address")
	}

	loader := assets.NewLoader(assets.PathsFromConfig(h.cfg), nil)
	second, err := api.New(h.cfg, brokenPredictor{}, nil, loader, nil)
	if err != nil {
		t.Fatalf("api.New: %v", err)
	}
	if err := second.Start(ctx); err == nil || !strings.Contains(err.Error(), "another voicetag server") {
		t.Fatalf("expected lock contention error, got %v", err)
	}

	resp, err := http.Get("http://" + h.server.Addr() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 from live server, got %d", resp.StatusCode)
	}

	h.server.Stop()
	if err := h.server.Wait(); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if err := second.Start(ctx); err != nil {
		t.Fatalf("lock should be free after Stop: %v", err)
	}
	second.Stop()
}
