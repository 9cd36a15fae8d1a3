package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/talonchess/talon/internal/board"
)

func TestTimeManagerFixedMoveTime(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(UCILimits{MoveTime: 500 * time.Millisecond}, board.White, 0)

	assert.Equal(t, 500*time.Millisecond, tm.OptimumTime())
	assert.Equal(t, 500*time.Millisecond, tm.MaximumTime())
}

func TestTimeManagerInfiniteModeUsesLongHorizon(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(UCILimits{Infinite: true}, board.White, 0)

	assert.False(t, tm.ShouldStop())
	assert.False(t, tm.PastOptimum())
}

func TestTimeManagerSuddenDeathAllocatesWithinRemaining(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(UCILimits{
		Time: [2]time.Duration{10 * time.Second, 10 * time.Second},
		Inc:  [2]time.Duration{0, 0},
	}, board.White, 0)

	assert.Positive(t, tm.OptimumTime())
	assert.LessOrEqual(t, tm.OptimumTime(), tm.MaximumTime())
	assert.Less(t, tm.MaximumTime(), 10*time.Second)
}

func TestTimeManagerShouldStopAfterMaximumElapses(t *testing.T) {
	tm := NewTimeManager()
	tm.Init(UCILimits{MoveTime: 1 * time.Millisecond}, board.White, 0)

	time.Sleep(5 * time.Millisecond)
	assert.True(t, tm.ShouldStop())
	assert.True(t, tm.PastOptimum())
}

func TestAdjustForScoreDeltaExtendsOnLargeDrop(t *testing.T) {
	tm := NewTimeManager()
	tm.optimumTime = 1000 * time.Millisecond
	tm.maximumTime = 5000 * time.Millisecond

	tm.AdjustForScoreDelta(-60)
	assert.Equal(t, 1500*time.Millisecond, tm.optimumTime)
}

func TestAdjustForScoreDeltaExtensionCapsAtMaximum(t *testing.T) {
	tm := NewTimeManager()
	tm.optimumTime = 1000 * time.Millisecond
	tm.maximumTime = 1200 * time.Millisecond

	tm.AdjustForScoreDelta(-60)
	assert.Equal(t, 1200*time.Millisecond, tm.optimumTime)
}

func TestAdjustForScoreDeltaShrinksOnLargeGain(t *testing.T) {
	tm := NewTimeManager()
	tm.optimumTime = 1000 * time.Millisecond
	tm.maximumTime = 5000 * time.Millisecond

	tm.AdjustForScoreDelta(60)
	assert.Equal(t, 700*time.Millisecond, tm.optimumTime)
}

func TestAdjustForScoreDeltaIgnoresSmallSwings(t *testing.T) {
	tm := NewTimeManager()
	tm.optimumTime = 1000 * time.Millisecond
	tm.maximumTime = 5000 * time.Millisecond

	tm.AdjustForScoreDelta(10)
	assert.Equal(t, 1000*time.Millisecond, tm.optimumTime)
}
