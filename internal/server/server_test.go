package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"dubmix/internal/language"
	"dubmix/internal/logging"
	"dubmix/internal/mediaengine"
	"dubmix/internal/pipeline"
	"dubmix/internal/transcript"
)

type stubEngine struct{}

func (stubEngine) Render(context.Context, mediaengine.Job) ([]byte, error) {
	return nil, errors.New("render not expected")
}

func (stubEngine) Duration(context.Context, []byte) (float64, error) {
	return 0, errors.New("duration not expected")
}

func (stubEngine) ExtractAudio(context.Context, string) ([]byte, error) {
	return []byte("audio"), nil
}

type stubTranscriber struct{}

func (stubTranscriber) Transcribe(context.Context, []byte, string) ([]transcript.RawSegment, error) {
	return []transcript.RawSegment{
		{ID: 1, Start: "00:00", End: "00:02", Text: "hello"},
		{ID: 2, Start: "00:02", End: "00:04", Text: "world"},
	}, nil
}

type stubTranslator struct{}

func (stubTranslator) Translate(_ context.Context, segments []transcript.Segment, _ language.Target) ([]transcript.Translation, error) {
	out := make([]transcript.Translation, len(segments))
	for i, s := range segments {
		out[i] = transcript.Translation{ID: s.ID, Text: "pt:" + s.TextOriginal}
	}
	return out, nil
}

type stubSynthesizer struct{}

func (stubSynthesizer) Synthesize(_ context.Context, text string) []byte {
	return []byte("clip:" + text)
}

type stubAssembler struct{}

func (stubAssembler) Assemble(_ context.Context, _ []transcript.Segment, clips [][]byte) ([]byte, error) {
	var joined []byte
	for _, c := range clips {
		joined = append(joined, c...)
	}
	return joined, nil
}

func newTestApp(t *testing.T) (*App, *pipeline.Orchestrator) {
	t.Helper()
	target, err := language.Resolve("pt-BR")
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	orch := pipeline.New(pipeline.Deps{
		Engine:      stubEngine{},
		Transcriber: stubTranscriber{},
		Translator:  stubTranslator{},
		Synthesizer: stubSynthesizer{},
		Assembler:   stubAssembler{},
	}, pipeline.Options{Target: target, MinSlotSeconds: 0.5}, logging.NewNop())
	return NewApp(logging.NewNop(), orch, t.TempDir(), 0), orch
}

func waitForStage(t *testing.T, orch *pipeline.Orchestrator, want pipeline.Stage) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		state := orch.State()
		if state.Stage == want {
			return
		}
		if state.Stage == pipeline.StageError && want != pipeline.StageError {
			t.Fatalf("run failed: %s", state.Log)
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for stage %s", want)
}

func TestUploadStoresFile(t *testing.T) {
	app, _ := newTestApp(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	fw, err := mw.CreateFormFile("file", "my movie.mp4")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte("video-bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/api/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body)
	}
	var resp struct {
		SourcePath string `json:"source_path"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	data, err := os.ReadFile(resp.SourcePath)
	if err != nil {
		t.Fatalf("read stored upload: %v", err)
	}
	if string(data) != "video-bytes" {
		t.Fatalf("stored bytes = %q", data)
	}
	if strings.Contains(resp.SourcePath, " ") {
		t.Fatalf("stored path not sanitized: %s", resp.SourcePath)
	}
}

func TestStartRunRejectsUnknownMode(t *testing.T) {
	app, _ := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/api/runs",
		strings.NewReader(`{"source_path":"movie.mp4","mode":"yolo"}`))
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "error") {
		t.Fatalf("missing error envelope: %s", rec.Body)
	}
}

func TestManualRunReviewFlow(t *testing.T) {
	app, orch := newTestApp(t)
	router := app.Router()

	req := httptest.NewRequest(http.MethodPost, "/api/runs",
		strings.NewReader(`{"source_path":"movie.mp4","mode":"manual"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("start status = %d, body %s", rec.Code, rec.Body)
	}
	waitForStage(t, orch, pipeline.StageWaitingForApproval)

	// State endpoint reflects the suspension.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/state", nil))
	var state pipeline.State
	if err := json.Unmarshal(rec.Body.Bytes(), &state); err != nil {
		t.Fatalf("decode state: %v", err)
	}
	if state.Stage != pipeline.StageWaitingForApproval {
		t.Fatalf("stage = %s", state.Stage)
	}

	// Edit a segment, then resume with the store snapshot.
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/segments/1",
		strings.NewReader(`{"text":"olá mundo"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("edit status = %d, body %s", rec.Code, rec.Body)
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/runs/resume", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("resume status = %d, body %s", rec.Code, rec.Body)
	}
	waitForStage(t, orch, pipeline.StageCompleted)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/audio", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("audio status = %d", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "audio/mpeg" {
		t.Fatalf("content type = %s", got)
	}
	if !strings.Contains(rec.Body.String(), "olá mundo") {
		t.Fatalf("final audio missing edited text: %q", rec.Body.String())
	}
}

func TestEditUnknownSegment(t *testing.T) {
	app, _ := newTestApp(t)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPatch, "/api/segments/99",
		strings.NewReader(`{"text":"x"}`)))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
}

func TestAudioBeforeCompletion(t *testing.T) {
	app, _ := newTestApp(t)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/audio", nil))
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
}

func TestResumeWithoutRun(t *testing.T) {
	app, _ := newTestApp(t)
	rec := httptest.NewRecorder()
	app.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/runs/resume", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", rec.Code)
	}
}

func TestWebsocketPushesStates(t *testing.T) {
	app, orch := newTestApp(t)
	srv := httptest.NewServer(app.Router())
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// The latest state is replayed immediately on connect.
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var first pipeline.State
	if err := conn.ReadJSON(&first); err != nil {
		t.Fatalf("read initial state: %v", err)
	}
	if first.Stage != pipeline.StageIdle {
		t.Fatalf("initial stage = %s, want idle", first.Stage)
	}

	if _, err := orch.Start(context.Background(), "movie.mp4", pipeline.ModeAuto); err != nil {
		t.Fatalf("Start: %v", err)
	}

	sawCompleted := false
	for !sawCompleted {
		var state pipeline.State
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		if err := conn.ReadJSON(&state); err != nil {
			t.Fatalf("read state: %v", err)
		}
		if state.Stage == pipeline.StageError {
			t.Fatalf("run failed: %s", state.Log)
		}
		if state.Stage == pipeline.StageCompleted {
			sawCompleted = true
		}
	}
}
