package engine

import (
	"math"
	"sync/atomic"

	"github.com/talonchess/talon/internal/board"
)

// Search-wide constants.
const (
	Infinity  = 30000
	MateScore = 29000
	MaxPly    = 128

	maxQuiescencePly = 32
	aspirationWindow = 25 // cp, per spec.md's search loop
)

// lmrTable[depth][moveIndex] is the precomputed late-move reduction,
// floor(0.75 + ln(depth)*ln(moveIndex)/2.25).
var lmrTable [MaxPly][MaxPly]int

func init() {
	for d := 1; d < MaxPly; d++ {
		for i := 1; i < MaxPly; i++ {
			lmrTable[d][i] = int(0.75 + math.Log(float64(d))*math.Log(float64(i))/2.25)
		}
	}
}

// PVTable holds the triangular principal-variation array built up
// during negamax.
type PVTable struct {
	length [MaxPly]int
	moves  [MaxPly][MaxPly]board.Move
}

// Stats reports search statistics for the UCI "info" line and tests.
type Stats struct {
	Nodes    uint64
	SelDepth int
	TTHits   uint64
	TTProbes uint64
}

// Searcher runs a single-threaded iterative-deepening negamax search
// with quiescence, null-move pruning, late-move reduction, aspiration
// windows, and PV extraction.
type Searcher struct {
	pos     *board.Position
	tt      *TranspositionTable
	orderer *MoveOrderer
	eval    Evaluator
	timer   *TimeManager

	nodes    uint64
	selDepth int
	stopFlag atomic.Bool

	pv        PVTable
	prevPV    PVTable
	undoStack [MaxPly]board.UndoInfo

	// posHistory holds Zobrist hashes of every position from the start
	// of the game through the current search line, for repetition
	// detection; SetPositionHistory seeds it with the game so far.
	posHistory []uint64

	// Per-ply scratch buffers, indexed by ply, so the hot negamax/
	// quiescence path does not allocate a MoveList or scores slice per
	// node. Safe because a node at a given ply only reads its own slot
	// while children at greater plies use theirs.
	rootMoveBuf  board.MoveList
	rootScoreBuf [256]int
	moveBuf      [MaxPly]board.MoveList
	scoreBuf     [MaxPly][256]int
	captureBuf   [MaxPly]board.MoveList
	qScoreBuf    [MaxPly][256]int
}

// NewSearcher creates a searcher sharing the given transposition table
// and using eval for leaf evaluation.
func NewSearcher(tt *TranspositionTable, eval Evaluator) *Searcher {
	return &Searcher{
		tt:      tt,
		orderer: NewMoveOrderer(),
		eval:    eval,
	}
}

// Stop signals the search to abandon its current iteration.
func (s *Searcher) Stop() {
	s.stopFlag.Store(true)
}

// Reset clears per-search state; call before each new search.
func (s *Searcher) Reset() {
	s.stopFlag.Store(false)
	s.nodes = 0
	s.selDepth = 0
	s.orderer.Clear()
}

// Nodes returns the number of nodes visited by the most recent search.
func (s *Searcher) Nodes() uint64 {
	return s.nodes
}

// Stats returns statistics for the most recent search.
func (s *Searcher) Stats() Stats {
	return Stats{
		Nodes:    s.nodes,
		SelDepth: s.selDepth,
		TTHits:   s.tt.hits,
		TTProbes: s.tt.probes,
	}
}

// SetPositionHistory seeds repetition detection with the game's
// position hashes so far, ending with the position to be searched.
func (s *Searcher) SetPositionHistory(hashes []uint64) {
	s.posHistory = append(s.posHistory[:0], hashes...)
}

// GetPV returns the principal variation found by the last completed
// iteration.
func (s *Searcher) GetPV() []board.Move {
	pv := make([]board.Move, s.pv.length[0])
	copy(pv, s.pv.moves[0][:s.pv.length[0]])
	return pv
}

// IterationInfo is passed to Search's onIteration callback after each
// completed iterative-deepening depth: the depth, its score, the
// current best move, and the nodes searched so far.
type IterationInfo struct {
	Depth int
	Score int
	Move  board.Move
	Nodes uint64
}

// Search runs iterative deepening until the stop flag fires, the
// timer's optimum time is exhausted, depth exceeds limitDepth (0 =
// unlimited), or the position proves to have only one legal move.
// onIteration, if non-nil, is invoked after every completed depth.
func (s *Searcher) Search(pos *board.Position, tm *TimeManager, limitDepth int, onIteration func(IterationInfo)) (board.Move, int) {
	s.pos = pos.Copy()
	s.timer = tm
	s.Reset()
	s.prevPV = PVTable{}

	legal := s.pos.GenerateLegalMoves()
	if legal.Len() == 0 {
		if s.pos.InCheck() {
			return board.NoMove, -MateScore
		}
		return board.NoMove, 0
	}
	if legal.Len() == 1 {
		return legal.Get(0), 0
	}

	var bestMove board.Move
	var bestScore int
	alpha, beta := -Infinity, Infinity
	depth := 1
	lastScore := 0

	for {
		if s.stopFlag.Load() {
			break
		}
		if limitDepth > 0 && depth > limitDepth {
			break
		}
		if depth > 1 && tm != nil && tm.PastOptimum() {
			break
		}

		score := s.negamaxRoot(depth, alpha, beta, true)

		if s.stopFlag.Load() {
			break
		}

		if score <= alpha {
			alpha = -Infinity
			continue
		}
		if score >= beta {
			beta = Infinity
			continue
		}

		if depth > 1 && tm != nil {
			tm.AdjustForScoreDelta(score - lastScore)
		}

		bestScore = score
		lastScore = score
		if s.pv.length[0] > 0 {
			bestMove = s.pv.moves[0][0]
		}
		s.prevPV = s.pv

		if onIteration != nil {
			onIteration(IterationInfo{Depth: depth, Score: score, Move: bestMove, Nodes: s.nodes})
		}

		if score > MateScore-MaxPly || score < -MateScore+MaxPly {
			break
		}

		alpha = lastScore - aspirationWindow
		beta = lastScore + aspirationWindow
		depth++

		if limitDepth == 0 && depth >= MaxPly {
			break
		}
	}

	return bestMove, bestScore
}

// negamaxRoot searches the root position across all legal moves,
// returning the best score found and leaving the best move in pv[0][0].
// onPV indicates the prior iteration's PV is still a candidate guide at
// this node.
func (s *Searcher) negamaxRoot(depth, alpha, beta int, onPV bool) int {
	if s.pos.InCheck() {
		depth++
	}

	s.pv.length[0] = 0

	ttMove := board.NoMove
	if entry, found := s.tt.Probe(s.pos.Hash); found {
		ttMove = entry.BestMove
	}

	pvMove := board.NoMove
	if onPV && s.prevPV.length[0] > 0 {
		pvMove = s.prevPV.moves[0][0]
	}

	moves := &s.rootMoveBuf
	s.pos.GenerateLegalMovesInto(moves)
	scores := s.orderer.ScoreMovesInto(s.pos, moves, 0, ttMove, pvMove, s.rootScoreBuf[:])

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound

	for i := 0; i < moves.Len(); i++ {
		if s.nodes&4095 == 0 && s.shouldStop() {
			s.stopFlag.Store(true)
			return 0
		}

		PickMove(moves, scores, i)
		move := moves.Get(i)

		s.makeRootMove(move)
		score := -s.negamax(depth-1, 1, -beta, -alpha, true, onPV && move == pvMove)
		s.unmakeRootMove(move)

		if s.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
		}
		if score > alpha {
			alpha = score
			flag = TTExact
			s.updatePV(0, move)
		}
		if score >= beta {
			s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(score, 0), TTLowerBound, bestMove)
			return score
		}
	}

	s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(bestScore, 0), flag, bestMove)
	return bestScore
}

func (s *Searcher) makeRootMove(m board.Move) {
	s.undoStack[0] = s.pos.MakeMove(m)
	s.posHistory = append(s.posHistory, s.pos.Hash)
}

func (s *Searcher) unmakeRootMove(m board.Move) {
	s.posHistory = s.posHistory[:len(s.posHistory)-1]
	s.pos.UnmakeMove(s.undoStack[0])
}

// shouldStop reports whether the search should abort: either the
// external stop flag or the soft-deadline timer has fired.
func (s *Searcher) shouldStop() bool {
	if s.stopFlag.Load() {
		return true
	}
	return s.timer != nil && s.timer.ShouldStop()
}

// negamax implements the core alpha-beta search with null-move
// pruning, late-move reduction, and PV-style re-search. onPV indicates
// every move from the root to this node has matched the prior
// iteration's PV; once a move diverges, PV-move ordering is disabled
// for the remainder of that line.
func (s *Searcher) negamax(depth, ply int, alpha, beta int, canNull, onPV bool) int {
	if s.nodes&4095 == 0 && s.shouldStop() {
		s.stopFlag.Store(true)
		return 0
	}
	s.nodes++
	if ply > s.selDepth {
		s.selDepth = ply
	}

	s.pv.length[ply] = ply

	// Mate-distance pruning.
	if a := -MateScore + ply; alpha < a {
		alpha = a
	}
	if b := MateScore - ply - 1; beta > b {
		beta = b
	}
	if alpha >= beta {
		return alpha
	}

	if ply > 0 && s.isDraw() {
		return 0
	}

	inCheck := s.pos.InCheck()
	if depth <= 0 && !inCheck {
		return s.quiescence(ply, alpha, beta)
	}

	var ttMove board.Move
	ttEntry, found := s.tt.Probe(s.pos.Hash)
	if found {
		ttMove = ttEntry.BestMove
		if int(ttEntry.Depth) >= depth {
			score := AdjustScoreFromTT(int(ttEntry.Score), ply)
			switch ttEntry.Flag {
			case TTExact:
				return score
			case TTLowerBound:
				if score > alpha {
					alpha = score
				}
			case TTUpperBound:
				if score < beta {
					beta = score
				}
			}
			if alpha >= beta {
				return score
			}
		}
	}

	// Null-move pruning.
	if canNull && !inCheck && depth >= 2 && ply > 0 && s.pos.HasNonPawnMaterial() {
		staticEval := s.eval.Evaluate(s.pos)
		if staticEval >= beta {
			R := 2
			if depth > 6 {
				R = 3
			}
			nullUndo := s.pos.MakeNullMove()
			s.posHistory = append(s.posHistory, s.pos.Hash)
			score := -s.negamax(depth-R-1, ply+1, -beta, -beta+1, false, false)
			s.posHistory = s.posHistory[:len(s.posHistory)-1]
			s.pos.UnmakeNullMove(nullUndo)

			if s.stopFlag.Load() {
				return 0
			}
			if score >= beta {
				return beta
			}
		}
	}

	moves := &s.moveBuf[ply]
	s.pos.GenerateLegalMovesInto(moves)
	if moves.Len() == 0 {
		if inCheck {
			return -MateScore + ply
		}
		return 0
	}

	pvMove := board.NoMove
	if onPV && ply < s.prevPV.length[0] {
		pvMove = s.prevPV.moves[0][ply]
	}

	scores := s.orderer.ScoreMovesInto(s.pos, moves, ply, ttMove, pvMove, s.scoreBuf[ply][:])

	bestScore := -Infinity
	bestMove := board.NoMove
	flag := TTUpperBound

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		childOnPV := onPV && move == pvMove

		s.makeSearchMove(ply, move)

		var score int
		if i == 0 {
			score = -s.negamax(depth-1, ply+1, -beta, -alpha, true, childOnPV)
		} else {
			reduction := 0
			if depth >= 3 && i >= 2 && move.IsQuiet() && !inCheck {
				d := depth
				if d >= MaxPly {
					d = MaxPly - 1
				}
				idx := i
				if idx >= MaxPly {
					idx = MaxPly - 1
				}
				reduction = lmrTable[d][idx]
			}

			score = -s.negamax(depth-1-reduction, ply+1, -alpha-1, -alpha, true, childOnPV)
			if score > alpha && reduction > 0 {
				score = -s.negamax(depth-1, ply+1, -alpha-1, -alpha, true, childOnPV)
			}
			if score > alpha && score < beta {
				score = -s.negamax(depth-1, ply+1, -beta, -alpha, true, childOnPV)
			}
		}

		s.unmakeSearchMove(ply, move)

		if s.stopFlag.Load() {
			return 0
		}

		if score > bestScore {
			bestScore = score
			bestMove = move
		}
		if score > alpha {
			alpha = score
			flag = TTExact
			s.updatePV(ply, move)
		}
		if score >= beta {
			s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(score, ply), TTLowerBound, bestMove)
			if move.IsQuiet() {
				s.orderer.UpdateKillers(move, ply)
				s.orderer.UpdateHistory(move, depth)
			}
			return score
		}
	}

	s.tt.Store(s.pos.Hash, depth, AdjustScoreToTT(bestScore, ply), flag, bestMove)
	return bestScore
}

func (s *Searcher) makeSearchMove(ply int, m board.Move) {
	s.undoStack[ply] = s.pos.MakeMove(m)
	s.posHistory = append(s.posHistory, s.pos.Hash)
}

func (s *Searcher) unmakeSearchMove(ply int, m board.Move) {
	s.posHistory = s.posHistory[:len(s.posHistory)-1]
	s.pos.UnmakeMove(s.undoStack[ply])
}

func (s *Searcher) updatePV(ply int, move board.Move) {
	s.pv.moves[ply][ply] = move
	for j := ply + 1; j < s.pv.length[ply+1]; j++ {
		s.pv.moves[ply][j] = s.pv.moves[ply+1][j]
	}
	s.pv.length[ply] = s.pv.length[ply+1]
}

// quiescence searches captures only, until the position is quiet.
func (s *Searcher) quiescence(ply int, alpha, beta int) int {
	if ply > s.selDepth {
		s.selDepth = ply
	}
	if ply >= MaxPly-1 || ply-1 > maxQuiescencePly {
		return s.eval.Evaluate(s.pos)
	}
	if s.nodes&4095 == 0 && s.shouldStop() {
		s.stopFlag.Store(true)
		return 0
	}
	s.nodes++

	standPat := s.eval.Evaluate(s.pos)
	if standPat >= beta {
		return beta
	}
	if standPat > alpha {
		alpha = standPat
	}
	if standPat+QueenValue < alpha {
		return alpha
	}

	moves := &s.captureBuf[ply]
	s.pos.GenerateCapturesInto(moves)
	scores := s.orderer.ScoreMovesInto(s.pos, moves, ply, board.NoMove, board.NoMove, s.qScoreBuf[ply][:])
	inCheck := s.pos.InCheck()

	for i := 0; i < moves.Len(); i++ {
		PickMove(moves, scores, i)
		move := moves.Get(i)

		if !inCheck {
			captureValue := 0
			if move.IsEnPassant() {
				captureValue = PawnValue
			} else if captured := s.pos.PieceAt(move.Target()); captured != board.NoPiece {
				captureValue = pieceValues[captured.Type()]
			}
			if move.IsPromotion() {
				captureValue += QueenValue - PawnValue
			}
			if standPat+captureValue+200 < alpha {
				continue
			}
		}

		undo := s.pos.MakeMove(move)
		score := -s.quiescence(ply+1, -beta, -alpha)
		s.pos.UnmakeMove(undo)

		if score >= beta {
			return beta
		}
		if score > alpha {
			alpha = score
		}
	}

	return alpha
}

// isDraw reports a draw by the fifty-move rule, insufficient
// material, or a position hash repeated earlier in the search line
// (including the game history seeded by SetPositionHistory).
func (s *Searcher) isDraw() bool {
	if s.pos.HalfMoveClock >= 100 {
		return true
	}
	if s.pos.IsInsufficientMaterial() {
		return true
	}
	for i := len(s.posHistory) - 3; i >= 0 && i >= len(s.posHistory)-1-s.pos.HalfMoveClock; i -= 2 {
		if s.posHistory[i] == s.pos.Hash {
			return true
		}
	}
	return false
}
