package pipeline

// Stage identifies one phase of a dubbing run.
type Stage string

const (
	StageIdle               Stage = "idle"
	StageExtracting         Stage = "extracting"
	StageTranscribing       Stage = "transcribing"
	StageTranslating        Stage = "translating"
	StageWaitingForApproval Stage = "waiting_for_approval"
	StageDubbing            Stage = "dubbing"
	StageAssembling         Stage = "assembling"
	StageCompleted          Stage = "completed"
	StageError              Stage = "error"
)

func (s Stage) String() string { return string(s) }

// Terminal reports whether a run in this stage has finished, for better
// or worse. Idle is the resting state, not a terminal one.
func (s Stage) Terminal() bool {
	return s == StageCompleted || s == StageError
}

// transitions lists every legal forward edge. Reset moves any stage back
// to idle and is handled separately.
var transitions = map[Stage][]Stage{
	StageIdle:               {StageExtracting},
	StageExtracting:         {StageTranscribing, StageError},
	StageTranscribing:       {StageTranslating, StageError},
	StageTranslating:        {StageDubbing, StageWaitingForApproval, StageError},
	StageWaitingForApproval: {StageDubbing, StageError},
	StageDubbing:            {StageAssembling, StageError},
	StageAssembling:         {StageCompleted, StageError},
}

// CanTransition reports whether moving from one stage to another is legal.
func CanTransition(from, to Stage) bool {
	if to == StageIdle {
		return true
	}
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
