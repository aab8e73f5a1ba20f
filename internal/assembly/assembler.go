package assembly

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"dubmix/internal/alignment"
	"dubmix/internal/logging"
	"dubmix/internal/mediaengine"
	"dubmix/internal/transcript"
)

// ErrNoUsableClips is returned when not a single segment produced a
// decodable clip; mixing an all-silent track would only hide the failure.
var ErrNoUsableClips = errors.New("assembly: no usable clips")

// Options tunes the assembly pass.
type Options struct {
	// TrimSilence strips provider padding from each clip before its true
	// duration is measured, so speed correction targets actual speech.
	TrimSilence bool
	// SilenceThresholdDB is the level below which audio counts as silence.
	SilenceThresholdDB float64
}

// Assembler mixes per-segment synthesized clips into one dub track whose
// timing matches the original dialogue.
type Assembler struct {
	engine  mediaengine.Engine
	planner alignment.Planner
	opts    Options
	logger  *slog.Logger
}

// New constructs an assembler over the given engine and planner.
func New(engine mediaengine.Engine, planner alignment.Planner, opts Options, logger *slog.Logger) *Assembler {
	if logger == nil {
		logger = logging.NewNop()
	}
	if opts.SilenceThresholdDB == 0 {
		opts.SilenceThresholdDB = -50
	}
	return &Assembler{engine: engine, planner: planner, opts: opts, logger: logger}
}

// Assemble builds one processing directive per usable segment (speed
// correction plus fixed-position delay) and a final mix directive, then
// hands the whole graph to the media engine in a single call. Empty or
// undecodable clips keep their slot as silence; an engine failure fails
// the entire pass.
func (a *Assembler) Assemble(ctx context.Context, segments []transcript.Segment, clips [][]byte) ([]byte, error) {
	if len(segments) != len(clips) {
		return nil, fmt.Errorf("assembly: %d segments but %d clips", len(segments), len(clips))
	}
	if len(segments) == 0 {
		return nil, ErrNoUsableClips
	}

	type plannedClip struct {
		segment transcript.Segment
		clip    []byte
		plan    alignment.Plan
	}

	planned := make([]plannedClip, 0, len(segments))
	for i, segment := range segments {
		clip := clips[i]
		if len(clip) == 0 {
			a.logger.Info("segment has no clip, leaving silence",
				logging.Int(logging.FieldSegmentID, segment.ID))
			continue
		}

		if a.opts.TrimSilence {
			if trimmed, err := a.trim(ctx, clip); err != nil {
				a.logger.Warn("silence trim failed, using raw clip",
					logging.Int(logging.FieldSegmentID, segment.ID),
					logging.Error(err))
			} else if len(trimmed) > 0 {
				clip = trimmed
			}
		}

		duration, err := a.engine.Duration(ctx, clip)
		if err != nil {
			a.logger.Warn("clip undecodable, leaving silence",
				logging.Int(logging.FieldSegmentID, segment.ID),
				logging.Error(err))
			continue
		}

		plan := a.planner.Plan(duration, segment.SlotSeconds(), segment.StartTime)
		a.logger.Debug("alignment planned",
			logging.Int(logging.FieldSegmentID, segment.ID),
			logging.Float64("clip_seconds", duration),
			logging.Float64("slot_seconds", segment.SlotSeconds()),
			logging.Float64("speed_factor", plan.SpeedFactor))
		planned = append(planned, plannedClip{segment: segment, clip: clip, plan: plan})
	}

	if len(planned) == 0 {
		return nil, ErrNoUsableClips
	}

	job := mediaengine.Job{OutputName: "output.mp3", OutputLabel: "[out]"}
	var graph strings.Builder
	for i, pc := range planned {
		job.Inputs = append(job.Inputs, mediaengine.Input{
			Name: fmt.Sprintf("seg_%d.mp3", i),
			Data: pc.clip,
		})
		fmt.Fprintf(&graph, "[%d:a]%s,adelay=%d|%d[a%d];",
			i, tempoFilter(pc.plan.TempoChain), pc.plan.PlacementOffsetMs, pc.plan.PlacementOffsetMs, i)
	}
	for i := range planned {
		fmt.Fprintf(&graph, "[a%d]", i)
	}
	// normalize=0 keeps full loudness even where segments overlap.
	fmt.Fprintf(&graph, "amix=inputs=%d:dropout_transition=0:normalize=0[out]", len(planned))
	job.FilterGraph = graph.String()

	output, err := a.engine.Render(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("assembly: %w", err)
	}
	return output, nil
}

// trim runs one clip through a leading and trailing silence strip.
func (a *Assembler) trim(ctx context.Context, clip []byte) ([]byte, error) {
	strip := fmt.Sprintf("silenceremove=start_periods=1:start_threshold=%sdB",
		formatFloat(a.opts.SilenceThresholdDB))
	graph := fmt.Sprintf("[0:a]%s,areverse,%s,areverse[out]", strip, strip)
	return a.engine.Render(ctx, mediaengine.Job{
		Inputs:      []mediaengine.Input{{Name: "clip.mp3", Data: clip}},
		FilterGraph: graph,
		OutputLabel: "[out]",
		OutputName:  "trimmed.mp3",
	})
}

func tempoFilter(chain []float64) string {
	if len(chain) == 0 {
		return "atempo=1.0"
	}
	parts := make([]string, len(chain))
	for i, stage := range chain {
		parts[i] = "atempo=" + formatFloat(stage)
	}
	return strings.Join(parts, ",")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
