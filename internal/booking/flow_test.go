package booking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aerostay/bookflow/internal/domain"
)

func sessionAt(stage domain.Stage) *domain.Session {
	checkIn := time.Date(2026, 3, 14, 22, 0, 0, 0, time.UTC)
	return &domain.Session{
		Stage:    stage,
		Location: &domain.Location{ID: 1, Name: "Airside", LotID: 1},
		Schedule: domain.Schedule{CheckIn: &checkIn, DurationHours: 6},
		Items:    []domain.LineItem{{RoomTypeID: "Queen", Quantity: 1}},
	}
}

func TestAdvance(t *testing.T) {
	t.Run("walks the full wizard", func(t *testing.T) {
		sess := sessionAt(domain.StageLocation)

		for _, want := range []domain.Stage{
			domain.StageSchedule,
			domain.StageRoomSelection,
			domain.StageSummary,
			domain.StagePayment,
		} {
			require.NoError(t, Advance(sess))
			assert.Equal(t, want, sess.Stage)
		}

		assert.ErrorIs(t, Advance(sess), ErrFlowComplete)
	})

	t.Run("location guard", func(t *testing.T) {
		sess := sessionAt(domain.StageLocation)
		sess.Location = nil

		assert.ErrorIs(t, Advance(sess), ErrLocationRequired)
		assert.Equal(t, domain.StageLocation, sess.Stage)
	})

	t.Run("schedule guard rejects unset duration", func(t *testing.T) {
		sess := sessionAt(domain.StageSchedule)
		sess.Schedule.DurationHours = 0

		assert.ErrorIs(t, Advance(sess), ErrScheduleIncomplete)
	})

	t.Run("schedule guard rejects unset date", func(t *testing.T) {
		sess := sessionAt(domain.StageSchedule)
		sess.Schedule.CheckIn = nil

		assert.ErrorIs(t, Advance(sess), ErrScheduleIncomplete)
	})

	t.Run("schedule guard passes with date and duration", func(t *testing.T) {
		sess := sessionAt(domain.StageSchedule)

		require.NoError(t, Advance(sess))
		assert.Equal(t, domain.StageRoomSelection, sess.Stage)
	})

	t.Run("room selection guard requires a line item", func(t *testing.T) {
		sess := sessionAt(domain.StageRoomSelection)
		sess.Items = nil

		assert.ErrorIs(t, Advance(sess), ErrEmptySelection)
	})
}

func TestJumpBack(t *testing.T) {
	t.Run("jumps to any earlier stage and keeps state", func(t *testing.T) {
		sess := sessionAt(domain.StageSummary)

		require.NoError(t, JumpBack(sess, domain.StageSchedule))
		assert.Equal(t, domain.StageSchedule, sess.Stage)
		assert.NotNil(t, sess.Location)
		assert.Len(t, sess.Items, 1)
	})

	t.Run("forward jumps are rejected", func(t *testing.T) {
		sess := sessionAt(domain.StageSchedule)

		assert.ErrorIs(t, JumpBack(sess, domain.StageSummary), ErrForwardJump)
	})

	t.Run("unknown stage is rejected", func(t *testing.T) {
		sess := sessionAt(domain.StageSummary)

		assert.ErrorIs(t, JumpBack(sess, domain.Stage("lobby")), ErrUnknownStage)
	})
}

func TestStageIndex(t *testing.T) {
	assert.Equal(t, 0, StageIndex(domain.StageLocation))
	assert.Equal(t, 4, StageIndex(domain.StagePayment))
	assert.Equal(t, -1, StageIndex(domain.Stage("lobby")))
}
