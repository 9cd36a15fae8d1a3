package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonchess/talon/internal/board"
)

func newTestSearcher() *Searcher {
	tt := NewTranspositionTable(1)
	return NewSearcher(tt, NewMaterialEvaluator())
}

func TestSearchFindsMateInOne(t *testing.T) {
	// Fool's mate setup after 1.f3 e5 2.g4: Black to move finds Qd8-h4#.
	pos, err := board.ParseFEN("rnbqkbnr/pppp1ppp/8/4p3/6P1/5P2/PPPPP2P/RNBQKBNR b KQkq - 0 2")
	require.NoError(t, err)

	s := newTestSearcher()
	tm := NewTimeManager()
	tm.Init(UCILimits{MoveTime: 2 * time.Second}, pos.SideToMove, 3)

	move, score := s.Search(pos, tm, 4, nil)

	require.NotEqual(t, board.NoMove, move)
	assert.Equal(t, "d8h4", move.String())
	assert.Greater(t, score, MateScore-MaxPly)
}

func TestSearchReturnsImmediatelyOnCheckmatedRoot(t *testing.T) {
	// The position right after fool's mate (1.f3 e5 2.g4 Qh4#): White to
	// move has no legal moves and is in check.
	pos, err := board.ParseFEN("rnb1kbnr/pppp1ppp/8/4p3/6Pq/5P2/PPPPP2P/RNBQKBNR w KQkq - 1 3")
	require.NoError(t, err)
	require.Zero(t, pos.GenerateLegalMoves().Len())

	s := newTestSearcher()
	done := make(chan struct{})
	var move board.Move
	var score int
	go func() {
		move, score = s.Search(pos, nil, 4, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("search on a checkmated root never returned")
	}

	assert.Equal(t, board.NoMove, move)
	assert.Equal(t, -MateScore, score)
}

func TestSearchReturnsImmediatelyOnStalematedRoot(t *testing.T) {
	// Classic queen stalemate: Black king h8 has no legal move and is
	// not in check.
	pos, err := board.ParseFEN("7k/5Q2/6K1/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)
	require.Zero(t, pos.GenerateLegalMoves().Len())
	require.False(t, pos.InCheck())

	s := newTestSearcher()
	done := make(chan struct{})
	var move board.Move
	var score int
	go func() {
		move, score = s.Search(pos, nil, 4, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("search on a stalemated root never returned")
	}

	assert.Equal(t, board.NoMove, move)
	assert.Equal(t, 0, score)
}

func TestSearchReturnsOnlyLegalMoveImmediately(t *testing.T) {
	// Black king on h8 with White's king on f7 controls g7 and g8,
	// leaving Kh7 as the only legal move.
	pos, err := board.ParseFEN("7k/5K2/8/8/8/8/8/8 b - - 0 1")
	require.NoError(t, err)

	legal := pos.GenerateLegalMoves()
	require.Equal(t, 1, legal.Len(), "test position must have exactly one legal move")

	s := newTestSearcher()
	move, score := s.Search(pos, nil, 1, nil)

	assert.Equal(t, legal.Get(0), move)
	assert.Equal(t, 0, score)
}

func TestSearchRespectsDepthLimit(t *testing.T) {
	pos := board.NewPosition()
	s := newTestSearcher()

	var maxDepthSeen int
	_, _ = s.Search(pos, nil, 3, func(info IterationInfo) {
		if info.Depth > maxDepthSeen {
			maxDepthSeen = info.Depth
		}
	})

	assert.LessOrEqual(t, maxDepthSeen, 3)
}

func TestSearchStopsPromptlyWhenTimerExpires(t *testing.T) {
	pos := board.NewPosition()
	s := newTestSearcher()

	tm := NewTimeManager()
	tm.Init(UCILimits{MoveTime: 1 * time.Nanosecond}, pos.SideToMove, 0)

	done := make(chan struct{})
	go func() {
		s.Search(pos, tm, 0, nil)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("search did not halt once the timer's maximum time elapsed")
	}
}

func TestResetClearsStopFlag(t *testing.T) {
	s := newTestSearcher()
	s.Stop()
	assert.True(t, s.stopFlag.Load())

	s.Reset()
	assert.False(t, s.stopFlag.Load())
}

func TestIsDrawDetectsFiftyMoveRule(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 100 60")
	require.NoError(t, err)

	s := newTestSearcher()
	s.pos = pos
	assert.True(t, s.isDraw())
}

func TestIsDrawDetectsInsufficientMaterial(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/4K3 w - - 0 1")
	require.NoError(t, err)

	s := newTestSearcher()
	s.pos = pos
	assert.True(t, s.isDraw())
}

func TestIsDrawDetectsRepeatedPositionWithinTheSearchLine(t *testing.T) {
	pos := board.NewPosition()
	pos.HalfMoveClock = 4
	s := newTestSearcher()
	s.pos = pos
	// posHistory[len-1] duplicates the current hash (as makeSearchMove
	// appends it); the same-side-to-move repeat sits two entries back.
	s.posHistory = []uint64{0x1, pos.Hash, 0x2, pos.Hash}

	assert.True(t, s.isDraw())
}

func TestGetPVReflectsBestLine(t *testing.T) {
	pos := board.NewPosition()
	s := newTestSearcher()

	move, _ := s.Search(pos, nil, 2, nil)
	pv := s.GetPV()

	require.NotEmpty(t, pv)
	assert.Equal(t, move, pv[0])
}
