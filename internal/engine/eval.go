package engine

import "github.com/talonchess/talon/internal/board"

// Evaluator returns a static centipawn score for a position from the
// point of view of the side to move. Implementations must be
// deterministic and must not produce mate scores; those are the
// searcher's responsibility at terminal nodes.
type Evaluator interface {
	Evaluate(pos *board.Position) int
}

// Material values in centipawns, mirroring board.PieceValue so the
// searcher's pruning margins (QueenValue, PawnValue) and this
// evaluator's material term agree with the board package's own
// material-sufficiency checks.
var (
	PawnValue   = board.PieceValue[board.Pawn]
	KnightValue = board.PieceValue[board.Knight]
	BishopValue = board.PieceValue[board.Bishop]
	RookValue   = board.PieceValue[board.Rook]
	QueenValue  = board.PieceValue[board.Queen]
	KingValue   = board.PieceValue[board.King]

	pieceValues = board.PieceValue
)

// tempoBonus is added to the White-relative score before it is turned
// into the side to move's view, so it always favours White and flipping
// only the side to move exactly negates the evaluation.
const tempoBonus = 10

// Piece-square tables, from White's perspective with a1 at index 0
// (rank ascending, matching board.NewSquare(file, 8-rank) after
// mirroring through algebraic rank). Black's score uses the same
// table mirrored vertically.
var pawnPST = [64]int{
	0, 0, 0, 0, 0, 0, 0, 0,
	5, 10, 10, -20, -20, 10, 10, 5,
	5, -5, -10, 0, 0, -10, -5, 5,
	0, 0, 0, 20, 20, 0, 0, 0,
	5, 5, 10, 25, 25, 10, 5, 5,
	10, 10, 20, 30, 30, 20, 10, 10,
	50, 50, 50, 50, 50, 50, 50, 50,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var knightPST = [64]int{
	-50, -40, -30, -30, -30, -30, -40, -50,
	-40, -20, 0, 5, 5, 0, -20, -40,
	-30, 5, 10, 15, 15, 10, 5, -30,
	-30, 0, 15, 20, 20, 15, 0, -30,
	-30, 5, 15, 20, 20, 15, 5, -30,
	-30, 0, 10, 15, 15, 10, 0, -30,
	-40, -20, 0, 0, 0, 0, -20, -40,
	-50, -40, -30, -30, -30, -30, -40, -50,
}

var bishopPST = [64]int{
	-20, -10, -10, -10, -10, -10, -10, -20,
	-10, 5, 0, 0, 0, 0, 5, -10,
	-10, 10, 10, 10, 10, 10, 10, -10,
	-10, 0, 10, 10, 10, 10, 0, -10,
	-10, 5, 5, 10, 10, 5, 5, -10,
	-10, 0, 5, 10, 10, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -10, -10, -10, -10, -20,
}

var rookPST = [64]int{
	0, 0, 0, 5, 5, 0, 0, 0,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	-5, 0, 0, 0, 0, 0, 0, -5,
	5, 10, 10, 10, 10, 10, 10, 5,
	0, 0, 0, 0, 0, 0, 0, 0,
}

var queenPST = [64]int{
	-20, -10, -10, -5, -5, -10, -10, -20,
	-10, 0, 5, 0, 0, 0, 0, -10,
	-10, 5, 5, 5, 5, 5, 0, -10,
	0, 0, 5, 5, 5, 5, 0, -5,
	-5, 0, 5, 5, 5, 5, 0, -5,
	-10, 0, 5, 5, 5, 5, 0, -10,
	-10, 0, 0, 0, 0, 0, 0, -10,
	-20, -10, -10, -5, -5, -10, -10, -20,
}

var kingMidgamePST = [64]int{
	20, 30, 10, 0, 0, 10, 30, 20,
	20, 20, 0, 0, 0, 0, 20, 20,
	-10, -20, -20, -20, -20, -20, -20, -10,
	-20, -30, -30, -40, -40, -30, -30, -20,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
	-30, -40, -40, -50, -50, -40, -40, -30,
}

var kingEndgamePST = [64]int{
	-50, -30, -30, -30, -30, -30, -30, -50,
	-30, -30, 0, 0, 0, 0, -30, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 30, 40, 40, 30, -10, -30,
	-30, -10, 20, 30, 30, 20, -10, -30,
	-30, -20, -10, 0, 0, -10, -20, -30,
	-50, -40, -30, -20, -20, -30, -40, -50,
}

var psts = [6][64]int{pawnPST, knightPST, bishopPST, rookPST, queenPST, kingMidgamePST}

// pstIndex maps a board square (0x88, rank 0 = 8th rank) to a
// White-relative 0..63 index with a1 = 0, h8 = 63.
func pstIndex(sq board.Square, c board.Color) int {
	file := sq.File()
	rank := sq.Rank() // 0 = rank 8 .. 7 = rank 1
	if c == board.White {
		return (7-rank)*8 + file
	}
	return rank*8 + file
}

// phaseWeight gives each piece type's contribution to the tapered-eval
// game-phase counter; pawns and kings don't count.
var phaseWeight = [6]int{0, 1, 1, 2, 4, 0}

const maxPhase = 2 * (2*1 + 2*1 + 2*2 + 1*4)

// MaterialEvaluator is a deterministic material-plus-piece-square-table
// evaluator: a tapered blend of middlegame and endgame piece-square
// tables, scaled by how much non-pawn material remains on the board.
type MaterialEvaluator struct{}

// NewMaterialEvaluator creates the baseline evaluator.
func NewMaterialEvaluator() *MaterialEvaluator {
	return &MaterialEvaluator{}
}

// Evaluate implements Evaluator.
func (MaterialEvaluator) Evaluate(pos *board.Position) int {
	var mg, eg, phase int

	for c := board.White; c <= board.Black; c++ {
		sign := 1
		if c == board.Black {
			sign = -1
		}
		for pt := board.Pawn; pt <= board.King; pt++ {
			for _, sq := range pos.PieceSquares(board.NewPiece(pt, c)) {
				mg += sign * pieceValues[pt]
				eg += sign * pieceValues[pt]

				idx := pstIndex(sq, c)
				if pt == board.King {
					mg += sign * kingMidgamePST[idx]
					eg += sign * kingEndgamePST[idx]
				} else {
					v := psts[pt][idx]
					mg += sign * v
					eg += sign * v
				}

				phase += phaseWeight[pt]
			}
		}
	}

	if phase > maxPhase {
		phase = maxPhase
	}
	score := (mg*phase + eg*(maxPhase-phase)) / maxPhase
	score += tempoBonus

	if pos.SideToMove == board.Black {
		return -score
	}
	return score
}
