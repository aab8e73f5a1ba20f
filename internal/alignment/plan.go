package alignment

import "math"

// Engine atempo stages only accept factors inside this range; anything
// outside is expressed as a chain of stages whose product hits the target.
const (
	primitiveTempoMin = 0.5
	primitiveTempoMax = 2.0
)

// Plan is the per-segment time correction consumed once by assembly.
type Plan struct {
	// SpeedFactor is the effective playback-rate multiplier after clamping.
	SpeedFactor float64
	// TempoChain expresses SpeedFactor as primitive stages, each within
	// the engine's supported range.
	TempoChain []float64
	// PlacementOffsetMs is the output-track position of the clip start.
	PlacementOffsetMs int
}

// Planner computes speed correction and placement for synthesized clips.
type Planner struct {
	// MinSlotSeconds floors the slot duration to avoid division pathologies.
	MinSlotSeconds float64
	// MaxSpeedFactor caps the speed-up so output stays intelligible. Clips
	// that would need more are capped and may be truncated by their slot.
	MaxSpeedFactor float64
}

// NewPlanner applies defaults for non-positive tunables.
func NewPlanner(minSlotSeconds, maxSpeedFactor float64) Planner {
	if minSlotSeconds <= 0 {
		minSlotSeconds = 0.5
	}
	if maxSpeedFactor < 1 {
		maxSpeedFactor = 2.5
	}
	return Planner{MinSlotSeconds: minSlotSeconds, MaxSpeedFactor: maxSpeedFactor}
}

// Plan reconciles a clip's true duration against its time slot. Speech is
// only ever sped up, never slowed below natural pace: a clip shorter than
// its slot keeps factor 1.0 and simply leaves trailing silence.
func (p Planner) Plan(trueDuration, slotDuration, startTime float64) Plan {
	slot := slotDuration
	if slot < p.MinSlotSeconds {
		slot = p.MinSlotSeconds
	}

	factor := 1.0
	if trueDuration > 0 {
		factor = trueDuration / slot
	}
	if factor < 1.0 {
		factor = 1.0
	}
	if factor > p.MaxSpeedFactor {
		factor = p.MaxSpeedFactor
	}

	offset := 0
	if startTime > 0 {
		offset = int(math.Floor(startTime * 1000))
	}

	return Plan{
		SpeedFactor:       factor,
		TempoChain:        tempoChain(factor),
		PlacementOffsetMs: offset,
	}
}

// tempoChain splits a factor into stages the engine's speed primitive can
// execute, e.g. 3.2 becomes [2.0, 1.6].
func tempoChain(factor float64) []float64 {
	if factor == 1.0 {
		return []float64{1.0}
	}
	var chain []float64
	remaining := factor
	for remaining > primitiveTempoMax {
		chain = append(chain, primitiveTempoMax)
		remaining /= primitiveTempoMax
	}
	for remaining < primitiveTempoMin {
		chain = append(chain, primitiveTempoMin)
		remaining /= primitiveTempoMin
	}
	return append(chain, remaining)
}
