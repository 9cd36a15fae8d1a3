package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/talonchess/talon/internal/board"
)

func TestMaterialEvaluatorStartingPositionIsSymmetric(t *testing.T) {
	pos := board.NewPosition()
	eval := NewMaterialEvaluator()

	assert.Equal(t, tempoBonus, eval.Evaluate(pos))
}

func TestMaterialEvaluatorFavorsExtraMaterial(t *testing.T) {
	pos, err := board.ParseFEN("4k3/8/8/8/8/8/8/Q3K3 w - - 0 1")
	require.NoError(t, err)

	// The queen on a1 is worth its material plus the a1 table entry.
	eval := NewMaterialEvaluator()
	assert.Greater(t, eval.Evaluate(pos), QueenValue+queenPST[0])
}

func TestMaterialEvaluatorIsSideToMoveRelative(t *testing.T) {
	white, err := board.ParseFEN("4k3/8/8/8/8/8/8/Q3K3 w - - 0 1")
	require.NoError(t, err)
	black, err := board.ParseFEN("4k3/8/8/8/8/8/8/Q3K3 b - - 0 1")
	require.NoError(t, err)

	eval := NewMaterialEvaluator()
	whiteScore := eval.Evaluate(white)
	blackScore := eval.Evaluate(black)

	assert.Equal(t, whiteScore, -blackScore)
}
