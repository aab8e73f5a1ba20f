package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"dubmix/internal/language"
	"dubmix/internal/logging"
	"dubmix/internal/mediaengine"
	"dubmix/internal/services"
	"dubmix/internal/transcript"
)

// Mode selects whether a run pauses for human review of the translated
// transcript before synthesis.
type Mode string

const (
	ModeAuto   Mode = "auto"
	ModeManual Mode = "manual"
)

// Transcriber turns extracted audio into raw dialogue segments.
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, mimeType string) ([]transcript.RawSegment, error)
}

// Translator produces per-segment translations for the target language.
type Translator interface {
	Translate(ctx context.Context, segments []transcript.Segment, target language.Target) ([]transcript.Translation, error)
}

// Synthesizer renders one text into an audio clip. An empty clip means the
// segment stays silent; synthesis never aborts a run.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string) []byte
}

// Assembler mixes segment clips into the final dub track.
type Assembler interface {
	Assemble(ctx context.Context, segments []transcript.Segment, clips [][]byte) ([]byte, error)
}

// Deps collects the services a run drives.
type Deps struct {
	Engine      mediaengine.Engine
	Transcriber Transcriber
	Translator  Translator
	Synthesizer Synthesizer
	Assembler   Assembler
}

// Options tunes run behavior.
type Options struct {
	Target         language.Target
	MinSlotSeconds float64
	// RateLimitDelay is the pause between successive segment syntheses.
	RateLimitDelay time.Duration
	// Sleeper overrides the inter-segment wait, for tests.
	Sleeper func(ctx context.Context, d time.Duration) error
}

// Orchestrator owns the run state machine: one active run at a time,
// stages advancing through the legal transitions, every change published
// to the hub.
type Orchestrator struct {
	deps   Deps
	opts   Options
	logger *slog.Logger
	store  *transcript.Store
	hub    *Hub

	mu         sync.Mutex
	state      State
	runID      string
	running    bool
	cancel     context.CancelFunc
	resumeCh   chan []transcript.Segment
	finalAudio []byte
}

// New constructs an idle orchestrator.
func New(deps Deps, opts Options, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.Sleeper == nil {
		opts.Sleeper = sleep
	}
	o := &Orchestrator{
		deps:   deps,
		opts:   opts,
		logger: logger,
		store:  transcript.NewStore(),
		hub:    NewHub(),
		state:  State{Stage: StageIdle, UpdatedAt: time.Now().UTC()},
	}
	o.hub.Publish(o.state)
	return o
}

// Start begins a new run over the given source media file. A second run
// while one is active is rejected.
func (o *Orchestrator) Start(ctx context.Context, sourcePath string, mode Mode) (string, error) {
	if mode != ModeAuto && mode != ModeManual {
		return "", services.Wrap(services.ErrValidation, "pipeline", "start", fmt.Sprintf("unknown mode %q", mode), nil)
	}
	if sourcePath == "" {
		return "", services.Wrap(services.ErrValidation, "pipeline", "start", "source path required", nil)
	}

	o.mu.Lock()
	if o.running {
		o.mu.Unlock()
		return "", services.Wrap(services.ErrValidation, "pipeline", "start", "a run is already active", nil)
	}
	runCtx, cancel := context.WithCancel(ctx)
	runID := uuid.NewString()
	o.runID = runID
	o.running = true
	o.cancel = cancel
	o.finalAudio = nil
	o.state = State{RunID: runID, Stage: StageIdle, UpdatedAt: time.Now().UTC()}
	o.mu.Unlock()

	o.store.Clear()
	go o.run(runCtx, cancel, runID, sourcePath, mode)
	return runID, nil
}

func (o *Orchestrator) run(ctx context.Context, cancel context.CancelFunc, runID, sourcePath string, mode Mode) {
	defer cancel()
	defer func() {
		o.mu.Lock()
		if o.runID == runID {
			o.running = false
			o.cancel = nil
			o.resumeCh = nil
		}
		o.mu.Unlock()
	}()

	ctx = services.WithRunID(ctx, runID)
	log := logging.WithContext(ctx, o.logger)

	o.publish(runID, StageExtracting, 0, "extracting audio")
	audio, err := o.deps.Engine.ExtractAudio(services.WithStage(ctx, StageExtracting.String()), sourcePath)
	if err != nil {
		o.fail(runID, log, "extract audio", err)
		return
	}

	o.publish(runID, StageTranscribing, 10, "transcribing dialogue")
	raw, err := o.deps.Transcriber.Transcribe(services.WithStage(ctx, StageTranscribing.String()), audio, "audio/mp3")
	if err != nil {
		o.fail(runID, log, "transcribe", err)
		return
	}
	segments := transcript.Normalize(raw, o.opts.MinSlotSeconds)
	o.store.ReplaceAll(segments)

	o.publish(runID, StageTranslating, 30, fmt.Sprintf("translating %d segments to %s", len(segments), o.opts.Target.Name))
	translations, err := o.deps.Translator.Translate(services.WithStage(ctx, StageTranslating.String()), segments, o.opts.Target)
	switch {
	case err != nil && (ctx.Err() != nil || services.Fatal(err)):
		// Cancellation and validation/configuration problems are not the
		// kind of flakiness the keep-originals fallback is for.
		o.fail(runID, log, "translate", err)
		return
	case err != nil:
		// A failed translation keeps the original text for every segment
		// rather than dubbing a half-translated transcript.
		log.Warn("translation failed, keeping original text", logging.Error(err))
	default:
		segments = transcript.ApplyTranslations(segments, translations)
	}
	o.store.ReplaceAll(segments)

	if mode == ModeManual {
		resume := make(chan []transcript.Segment, 1)
		o.mu.Lock()
		o.resumeCh = resume
		o.mu.Unlock()
		o.publish(runID, StageWaitingForApproval, 40, "waiting for transcript approval")
		select {
		case <-ctx.Done():
			o.fail(runID, log, "await approval", ctx.Err())
			return
		case approved := <-resume:
			segments = approved
		}
		o.mu.Lock()
		o.resumeCh = nil
		o.mu.Unlock()
		o.store.ReplaceAll(segments)
	}

	o.publish(runID, StageDubbing, 40, "synthesizing speech")
	dubCtx := services.WithStage(ctx, StageDubbing.String())
	clips := make([][]byte, len(segments))
	for i, segment := range segments {
		if err := ctx.Err(); err != nil {
			o.fail(runID, log, "synthesize", err)
			return
		}
		clips[i] = o.deps.Synthesizer.Synthesize(dubCtx, segment.Text)
		// Integer division floors, keeping progress a whole percentage.
		progress := 40 + 50*(i+1)/len(segments)
		o.publish(runID, StageDubbing, progress, fmt.Sprintf("synthesized segment %d/%d", i+1, len(segments)))
		if i < len(segments)-1 && o.opts.RateLimitDelay > 0 {
			if err := o.opts.Sleeper(ctx, o.opts.RateLimitDelay); err != nil {
				o.fail(runID, log, "synthesize", err)
				return
			}
		}
	}

	o.publish(runID, StageAssembling, 90, "assembling dub track")
	track, err := o.deps.Assembler.Assemble(services.WithStage(ctx, StageAssembling.String()), segments, clips)
	if err != nil {
		o.fail(runID, log, "assemble", err)
		return
	}

	o.mu.Lock()
	if o.runID == runID {
		o.finalAudio = track
	}
	o.mu.Unlock()
	o.publish(runID, StageCompleted, 100, "dub complete")
	log.Info("run completed", logging.Int("segments", len(segments)))
}

// Resume unblocks a run waiting for approval, using the caller's segment
// snapshot as the authoritative transcript. An empty set is rejected and
// the run stays suspended.
func (o *Orchestrator) Resume(segments []transcript.Segment) error {
	if len(segments) == 0 {
		return services.Wrap(services.ErrValidation, "pipeline", "resume", "segment set is empty", nil)
	}

	o.mu.Lock()
	ch := o.resumeCh
	stage := o.state.Stage
	o.mu.Unlock()
	if ch == nil || stage != StageWaitingForApproval {
		return services.Wrap(services.ErrValidation, "pipeline", "resume", "no run is waiting for approval", nil)
	}

	approved := make([]transcript.Segment, len(segments))
	copy(approved, segments)
	select {
	case ch <- approved:
		return nil
	default:
		return services.Wrap(services.ErrValidation, "pipeline", "resume", "run already resumed", nil)
	}
}

// EditText updates one segment's text in the store; typically used while a
// manual run is suspended for review.
func (o *Orchestrator) EditText(id int, text string) error {
	return o.store.UpdateText(id, text)
}

// Segments returns the current transcript snapshot.
func (o *Orchestrator) Segments() []transcript.Segment {
	return o.store.Snapshot()
}

// State returns the current run state.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Subscribe registers for state updates; the latest state is replayed
// immediately. Call the returned func to unsubscribe.
func (o *Orchestrator) Subscribe() (<-chan State, func()) {
	return o.hub.Subscribe()
}

// FinalAudio returns the assembled dub track, non-nil only after a run
// completed.
func (o *Orchestrator) FinalAudio() []byte {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.state.Stage != StageCompleted || o.finalAudio == nil {
		return nil
	}
	out := make([]byte, len(o.finalAudio))
	copy(out, o.finalAudio)
	return out
}

// Reset cancels any active run and returns the orchestrator to idle with
// an empty transcript.
func (o *Orchestrator) Reset() {
	o.mu.Lock()
	if o.cancel != nil {
		o.cancel()
		o.cancel = nil
	}
	o.runID = ""
	o.running = false
	o.resumeCh = nil
	o.finalAudio = nil
	o.state = State{Stage: StageIdle, UpdatedAt: time.Now().UTC()}
	state := o.state
	o.mu.Unlock()

	o.store.Clear()
	o.hub.Publish(state)
}

// publish applies a stage/progress change if the run is still current and
// the transition is legal, then fans the new state out. Progress never
// moves backwards within a run.
func (o *Orchestrator) publish(runID string, stage Stage, progress int, message string) {
	o.mu.Lock()
	if o.runID != runID {
		o.mu.Unlock()
		return
	}
	if from := o.state.Stage; from != stage && !CanTransition(from, stage) {
		o.mu.Unlock()
		o.logger.Error("illegal stage transition suppressed",
			logging.String("from", from.String()),
			logging.String("to", stage.String()))
		return
	}
	if progress < o.state.Progress {
		progress = o.state.Progress
	}
	o.state = State{
		RunID:     runID,
		Stage:     stage,
		Progress:  progress,
		Log:       message,
		UpdatedAt: time.Now().UTC(),
	}
	state := o.state
	o.mu.Unlock()
	o.hub.Publish(state)
}

func (o *Orchestrator) fail(runID string, log *slog.Logger, operation string, err error) {
	o.mu.Lock()
	stale := o.runID != runID
	progress := o.state.Progress
	o.mu.Unlock()
	if stale {
		// Reset already returned the machine to idle.
		return
	}

	log.Error("run failed", logging.String("operation", operation), logging.Error(err))
	o.mu.Lock()
	if o.runID != runID {
		o.mu.Unlock()
		return
	}
	o.state = State{
		RunID:     runID,
		Stage:     StageError,
		Progress:  progress,
		Log:       fmt.Sprintf("%s failed: %v", operation, err),
		UpdatedAt: time.Now().UTC(),
	}
	state := o.state
	o.mu.Unlock()
	o.hub.Publish(state)
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
