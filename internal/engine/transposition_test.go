package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonchess/talon/internal/board"
)

func TestTranspositionTableSizeIsPowerOfTwo(t *testing.T) {
	tt := NewTranspositionTable(1)
	size := tt.Size()
	require.NotZero(t, size)
	assert.Zero(t, size&(size-1), "table size %d is not a power of 2", size)
}

func TestTranspositionTableStoreProbeRoundTrip(t *testing.T) {
	tt := NewTranspositionTable(1)
	pos := board.NewPosition()

	tt.Store(pos.Hash, 5, 123, TTExact, board.NewQuietMove(board.NewSquare(4, 6), board.NewSquare(4, 4)))

	entry, found := tt.Probe(pos.Hash)
	require.True(t, found)
	assert.Equal(t, 123, int(entry.Score))
	assert.Equal(t, TTExact, entry.Flag)
	assert.Equal(t, 5, int(entry.Depth))
}

func TestTranspositionTableStoresAndProbesDepthZeroEntries(t *testing.T) {
	// A check-extension node can reach Store with depth 0; occupancy
	// must not be inferred from Depth being positive.
	tt := NewTranspositionTable(1)
	pos := board.NewPosition()

	tt.Store(pos.Hash, 0, 7, TTExact, board.NoMove)

	entry, found := tt.Probe(pos.Hash)
	require.True(t, found)
	assert.Equal(t, 0, int(entry.Depth))
	assert.Equal(t, 7, int(entry.Score))
}

func TestTranspositionTableProbeMissOnCollisionKey(t *testing.T) {
	tt := NewTranspositionTable(1)
	tt.Store(0x1111111100000000, 4, 1, TTExact, board.NoMove)

	_, found := tt.Probe(0x2222222200000000)
	assert.False(t, found)
}

func TestTranspositionTableAlwaysOverwrites(t *testing.T) {
	tt := NewTranspositionTable(1)
	pos := board.NewPosition()

	tt.Store(pos.Hash, 3, 10, TTExact, board.NoMove)
	tt.Store(pos.Hash, 1, 99, TTLowerBound, board.NoMove)

	entry, found := tt.Probe(pos.Hash)
	require.True(t, found)
	assert.Equal(t, 1, int(entry.Depth))
	assert.Equal(t, 99, int(entry.Score))
	assert.Equal(t, TTLowerBound, entry.Flag)
}

func TestTranspositionTableClear(t *testing.T) {
	tt := NewTranspositionTable(1)
	pos := board.NewPosition()
	tt.Store(pos.Hash, 2, 5, TTExact, board.NoMove)

	tt.Clear()

	_, found := tt.Probe(pos.Hash)
	assert.False(t, found)
	assert.Equal(t, 0, tt.HashFull())
}

func TestAdjustScoreToFromTTRoundTrip(t *testing.T) {
	const ply = 4
	stored := AdjustScoreToTT(MateScore-2, ply)
	assert.Equal(t, MateScore-2, AdjustScoreFromTT(stored, ply))

	nonMate := AdjustScoreToTT(37, ply)
	assert.Equal(t, 37, nonMate)
}
