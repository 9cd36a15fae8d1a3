package engine

import (
	"github.com/talonchess/talon/internal/board"
)

// Move ordering priorities.
const (
	TTMoveScore     = 10000000 // hash move from the transposition table
	PVMoveScore     = 15000000 // PV move at this ply, while still following the prior iteration's line
	GoodCaptureBase = 1000000  // base score for MVV-LVA captures
	KillerScore1    = 900000   // first killer move at this ply
	KillerScore2    = 800000   // second killer move at this ply

	historyScoreCap = 90 // quiet non-killer moves are ranked by at most this much history bonus
)

// mvvLva scores captures by victim value first, attacker value second:
// "most valuable victim, least valuable attacker".
var mvvLva = [6][6]int{
	//       P    N    B    R    Q    K  (attacker)
	/* P */ {15, 14, 14, 13, 12, 11},
	/* N */ {25, 24, 24, 23, 22, 21},
	/* B */ {35, 34, 34, 33, 32, 31},
	/* R */ {45, 44, 44, 43, 42, 41},
	/* Q */ {55, 54, 54, 53, 52, 51},
	/* K */ {0, 0, 0, 0, 0, 0},
}

// MoveOrderer holds the per-search move-ordering heuristics: killer
// moves and the history table. TT-move and MVV-LVA scoring need no
// persistent state, so they are computed directly in scoreMove.
type MoveOrderer struct {
	killers [MaxPly][2]board.Move
	history [128][128]int
}

// NewMoveOrderer creates a new move orderer.
func NewMoveOrderer() *MoveOrderer {
	return &MoveOrderer{}
}

// Clear resets killers and ages history scores for a new search.
func (mo *MoveOrderer) Clear() {
	for i := range mo.killers {
		mo.killers[i][0] = board.NoMove
		mo.killers[i][1] = board.NoMove
	}
	for i := range mo.history {
		for j := range mo.history[i] {
			mo.history[i][j] /= 2
		}
	}
}

// ScoreMoves assigns an ordering score to every move in the list.
// pvMove, if not board.NoMove, is the move the previous iteration's
// principal variation played at this ply, still on the line the search
// has followed so far.
func (mo *MoveOrderer) ScoreMoves(pos *board.Position, moves *board.MoveList, ply int, ttMove, pvMove board.Move) []int {
	scores := make([]int, moves.Len())
	mo.ScoreMovesInto(pos, moves, ply, ttMove, pvMove, scores)
	return scores
}

// ScoreMovesInto is the allocation-free counterpart to ScoreMoves: dst
// must have length at least moves.Len(), letting a hot search path
// reuse a per-ply scratch buffer instead of allocating a scores slice
// per node.
func (mo *MoveOrderer) ScoreMovesInto(pos *board.Position, moves *board.MoveList, ply int, ttMove, pvMove board.Move, dst []int) []int {
	dst = dst[:moves.Len()]
	for i := 0; i < moves.Len(); i++ {
		dst[i] = mo.scoreMove(pos, moves.Get(i), ply, ttMove, pvMove)
	}
	return dst
}

func (mo *MoveOrderer) scoreMove(pos *board.Position, m board.Move, ply int, ttMove, pvMove board.Move) int {
	if m == ttMove {
		return TTMoveScore
	}
	if m == pvMove {
		return PVMoveScore
	}

	if m.IsCapture() {
		attacker := pos.PieceAt(m.Source()).Type()
		var victim board.PieceType
		if m.IsEnPassant() {
			victim = board.Pawn
		} else {
			victim = pos.PieceAt(m.Target()).Type()
		}
		return GoodCaptureBase + mvvLva[victim][attacker]*1000
	}

	if m.IsPromotion() {
		return GoodCaptureBase - 1000 + int(m.Promotion())*100
	}

	if m == mo.killers[ply][0] {
		return KillerScore1
	}
	if m == mo.killers[ply][1] {
		return KillerScore2
	}

	if h := mo.history[m.Source()][m.Target()]; h < historyScoreCap {
		return h
	}
	return historyScoreCap
}

// PickMove selects the best-scoring move at or after index and swaps
// it into index, so callers can pull moves off in ranked order
// without sorting the whole list up front.
func PickMove(moves *board.MoveList, scores []int, index int) {
	best := index
	for j := index + 1; j < moves.Len(); j++ {
		if scores[j] > scores[best] {
			best = j
		}
	}
	if best != index {
		moves.Swap(index, best)
		scores[index], scores[best] = scores[best], scores[index]
	}
}

// UpdateKillers records a quiet move that caused a beta cutoff at ply,
// keeping the two most recent distinct killers.
func (mo *MoveOrderer) UpdateKillers(m board.Move, ply int) {
	if ply >= MaxPly || mo.killers[ply][0] == m {
		return
	}
	mo.killers[ply][1] = mo.killers[ply][0]
	mo.killers[ply][0] = m
}

// historyCap bounds history scores; on overflow all entries are halved.
const historyCap = 1<<16/2 - 1

// UpdateHistory applies the d*d bonus for a beta-cutoff quiet move,
// aging the whole table if any entry would overflow historyCap.
func (mo *MoveOrderer) UpdateHistory(m board.Move, depth int) {
	from, to := m.Source(), m.Target()
	mo.history[from][to] += depth * depth
	if mo.history[from][to] > historyCap {
		for i := range mo.history {
			for j := range mo.history[i] {
				mo.history[i][j] /= 2
			}
		}
	}
}
