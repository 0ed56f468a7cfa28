package pipeline

import (
	"github.com/juristack/juristack/pkg/errors"
	jtypes "github.com/juristack/juristack/pkg/types/judgment"
)

// stageOrder is the canonical forward path of the pipeline.  COMPLETED and
// FAILED are terminal and never appear as a claimed work stage.
var stageOrder = []Stage{
	jtypes.StageExtraction,
	jtypes.StageNormalize,
	jtypes.StageFacts,
	jtypes.StageSummary,
	jtypes.StageTranslate,
	jtypes.StageChunkEmbed,
	jtypes.StageSimilarity,
	jtypes.StagePredict,
	jtypes.StageCompleted,
}

// stageIndex maps each stage to its position in stageOrder.
var stageIndex = func() map[Stage]int {
	m := make(map[Stage]int, len(stageOrder))
	for i, s := range stageOrder {
		m[s] = i
	}
	return m
}()

// WorkStages returns the non-terminal stages in execution order.
func WorkStages() []Stage {
	out := make([]Stage, len(stageOrder)-1)
	copy(out, stageOrder[:len(stageOrder)-1])
	return out
}

// NextStage returns the stage that follows s on the forward path.
// COMPLETED follows PREDICT; terminal stages have no successor.
func NextStage(s Stage) (Stage, error) {
	i, ok := stageIndex[s]
	if !ok {
		if s == jtypes.StageFailed {
			return "", errors.New(errors.ErrCodeInvalidTransition, "FAILED is terminal")
		}
		return "", errors.Newf(errors.ErrCodeInvalidTransition, "unknown stage %q", s)
	}
	if i == len(stageOrder)-1 {
		return "", errors.New(errors.ErrCodeInvalidTransition, "COMPLETED is terminal")
	}
	return stageOrder[i+1], nil
}

// CanTransition reports whether moving from one stage to another respects the
// forward-only rule.  FAILED is reachable from any work stage; everything else
// must be the immediate successor.
func CanTransition(from, to Stage) bool {
	if from.IsTerminal() {
		return false
	}
	if to == jtypes.StageFailed {
		_, known := stageIndex[from]
		return known
	}
	next, err := NextStage(from)
	if err != nil {
		return false
	}
	return to == next
}

// StageBefore reports whether a ranks strictly earlier than b on the forward
// path.  Used by Reset to enforce that resets only move backward.
func StageBefore(a, b Stage) bool {
	ia, oka := stageIndex[a]
	ib, okb := stageIndex[b]
	if !oka || !okb {
		return false
	}
	return ia < ib
}
