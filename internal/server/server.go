package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"dubmix/internal/logging"
	"dubmix/internal/pipeline"
	"dubmix/internal/services"
	"dubmix/internal/transcript"
)

const defaultMaxUploadBytes = 2 * 1024 * 1024 * 1024

// App serves the UI boundary: uploads, run control, transcript review,
// and a websocket pushing every pipeline state change.
type App struct {
	logger *slog.Logger
	router *chi.Mux
	orch   *pipeline.Orchestrator

	uploadsDir     string
	maxUploadBytes int64

	upgrader websocket.Upgrader
}

// NewApp wires the HTTP surface around an orchestrator.
func NewApp(logger *slog.Logger, orch *pipeline.Orchestrator, uploadsDir string, maxUploadBytes int64) *App {
	if logger == nil {
		logger = logging.NewNop()
	}
	if maxUploadBytes <= 0 {
		maxUploadBytes = defaultMaxUploadBytes
	}
	app := &App{
		logger:         logger,
		router:         chi.NewRouter(),
		orch:           orch,
		uploadsDir:     uploadsDir,
		maxUploadBytes: maxUploadBytes,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	app.registerRoutes()
	return app
}

// Router returns the HTTP handler for the app.
func (a *App) Router() http.Handler {
	return a.router
}

func (a *App) registerRoutes() {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.RealIP)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Timeout(60 * time.Minute))

	a.router.Get("/healthz", a.health)
	a.router.Post("/api/upload", a.upload)
	a.router.Post("/api/runs", a.startRun)
	a.router.Delete("/api/runs", a.resetRun)
	a.router.Post("/api/runs/resume", a.resumeRun)
	a.router.Get("/api/segments", a.listSegments)
	a.router.Patch("/api/segments/{id}", a.editSegment)
	a.router.Get("/api/state", a.state)
	a.router.Get("/api/audio", a.finalAudio)
	a.router.Get("/ws", a.stateWS)
}

func (a *App) health(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) upload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, a.maxUploadBytes+1024)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid multipart upload")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "form field \"file\" is required")
		return
	}
	defer file.Close()

	if err := os.MkdirAll(a.uploadsDir, 0o755); err != nil {
		a.logger.Error("ensure uploads dir", logging.Error(err))
		a.respondError(w, http.StatusInternalServerError, "failed to prepare upload directory")
		return
	}

	name := uuid.NewString() + "_" + sanitizeFileName(header.Filename)
	path := filepath.Join(a.uploadsDir, name)
	out, err := os.Create(path)
	if err != nil {
		a.logger.Error("create upload file", logging.Error(err))
		a.respondError(w, http.StatusInternalServerError, "failed to save upload")
		return
	}
	defer out.Close()
	if _, err := out.ReadFrom(file); err != nil {
		a.logger.Error("persist upload", logging.Error(err))
		a.respondError(w, http.StatusInternalServerError, "failed to write upload")
		return
	}

	a.logger.Info("upload saved", logging.String("file", name))
	a.respondJSON(w, http.StatusCreated, map[string]string{"source_path": path})
}

func (a *App) startRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SourcePath string `json:"source_path"`
		Mode       string `json:"mode"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Mode == "" {
		req.Mode = string(pipeline.ModeAuto)
	}

	runID, err := a.orch.Start(r.Context(), req.SourcePath, pipeline.Mode(req.Mode))
	if err != nil {
		a.respondServiceError(w, err)
		return
	}
	a.respondJSON(w, http.StatusAccepted, map[string]string{"run_id": runID})
}

func (a *App) resetRun(w http.ResponseWriter, r *http.Request) {
	a.orch.Reset()
	a.respondJSON(w, http.StatusOK, a.orch.State())
}

func (a *App) resumeRun(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Segments []transcript.Segment `json:"segments"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			a.respondError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	segments := req.Segments
	if len(segments) == 0 {
		// No explicit snapshot: resume with the reviewed store contents.
		segments = a.orch.Segments()
	}

	if err := a.orch.Resume(segments); err != nil {
		a.respondServiceError(w, err)
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]string{"status": "resumed"})
}

func (a *App) listSegments(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, map[string]any{"segments": a.orch.Segments()})
}

func (a *App) editSegment(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		a.respondError(w, http.StatusBadRequest, "segment id must be an integer")
		return
	}
	var req struct {
		Text string `json:"text"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.respondError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := a.orch.EditText(id, req.Text); err != nil {
		a.respondError(w, http.StatusNotFound, err.Error())
		return
	}
	a.respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (a *App) state(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, http.StatusOK, a.orch.State())
}

func (a *App) finalAudio(w http.ResponseWriter, r *http.Request) {
	audio := a.orch.FinalAudio()
	if audio == nil {
		a.respondError(w, http.StatusConflict, "no completed run")
		return
	}
	w.Header().Set("Content-Type", "audio/mpeg")
	w.Header().Set("Content-Disposition", `attachment; filename="dub.mp3"`)
	_, _ = w.Write(audio)
}

func (a *App) stateWS(w http.ResponseWriter, r *http.Request) {
	conn, err := a.upgrader.Upgrade(w, r, nil)
	if err != nil {
		a.logger.Warn("websocket upgrade failed", logging.Error(err))
		return
	}
	defer conn.Close()

	states, cancel := a.orch.Subscribe()
	defer cancel()

	// Reader drains control frames; its exit means the peer is gone.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case state, ok := <-states:
			if !ok {
				return
			}
			if err := conn.WriteJSON(state); err != nil {
				return
			}
		case <-closed:
			return
		case <-r.Context().Done():
			return
		}
	}
}

func (a *App) respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	if errors.Is(err, services.ErrValidation) {
		status = http.StatusUnprocessableEntity
	}
	a.respondError(w, status, err.Error())
}

func (a *App) respondError(w http.ResponseWriter, code int, message string) {
	a.respondJSON(w, code, map[string]string{"error": message})
}

func (a *App) respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		a.logger.Error("encode json response", logging.Error(err))
	}
}

func sanitizeFileName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "_")
	name = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '.' || r == '_' || r == '-' {
			return r
		}
		return '_'
	}, name)
	if name == "" || name == "." {
		return "source.bin"
	}
	return name
}
