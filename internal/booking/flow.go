package booking

import (
	"errors"

	"github.com/aerostay/bookflow/internal/domain"
)

var (
	ErrLocationRequired   = errors.New("location not selected")
	ErrScheduleIncomplete = errors.New("schedule incomplete")
	ErrEmptySelection     = errors.New("no rooms selected")
	ErrFlowComplete       = errors.New("booking flow already complete")
	ErrUnknownStage       = errors.New("unknown stage")
	ErrForwardJump        = errors.New("cannot jump forward")
)

// stageOrder fixes the wizard sequence. Forward transitions are guarded;
// backward jumps are not and preserve all entered state.
var stageOrder = []domain.Stage{
	domain.StageLocation,
	domain.StageSchedule,
	domain.StageRoomSelection,
	domain.StageSummary,
	domain.StagePayment,
}

// StageIndex returns the position of stage in the wizard, or -1.
func StageIndex(stage domain.Stage) int {
	for i, s := range stageOrder {
		if s == stage {
			return i
		}
	}
	return -1
}

// Advance moves the session to the next stage after checking the guard of
// the stage being left. Reaching the payment stage is terminal here: the
// hand-off to the payment collaborator happens outside the flow.
func Advance(sess *domain.Session) error {
	switch sess.Stage {
	case domain.StageLocation:
		if sess.Location == nil {
			return ErrLocationRequired
		}
	case domain.StageSchedule:
		if !sess.Schedule.Complete() {
			return ErrScheduleIncomplete
		}
	case domain.StageRoomSelection:
		if len(sess.Items) == 0 {
			return ErrEmptySelection
		}
	case domain.StageSummary:
		// advancing into payment needs nothing beyond the earlier guards
	case domain.StagePayment:
		return ErrFlowComplete
	default:
		return ErrUnknownStage
	}

	sess.Stage = stageOrder[StageIndex(sess.Stage)+1]

	return nil
}

// JumpBack moves the session directly to an earlier (or the current)
// stage. No state is cleared.
func JumpBack(sess *domain.Session, target domain.Stage) error {
	ti := StageIndex(target)
	if ti < 0 {
		return ErrUnknownStage
	}

	if ti > StageIndex(sess.Stage) {
		return ErrForwardJump
	}

	sess.Stage = target

	return nil
}
