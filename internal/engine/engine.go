// Package engine implements the search engine: the transposition
// table, move ordering, evaluator interface, time manager, and the
// iterative-deepening negamax searcher, wired together behind a single
// Engine type for the UCI front-end to drive.
package engine

import (
	"log"
	"time"

	"github.com/talonchess/talon/internal/board"
)

// SearchInfo reports progress for the UCI "info" line.
type SearchInfo struct {
	Depth    int
	SelDepth int
	Score    int
	Nodes    uint64
	Time     time.Duration
	PV       []board.Move
	HashFull int // permille of the transposition table in use
}

// SearchLimits constrains a single search.
type SearchLimits struct {
	Depth    int           // maximum depth; 0 = no limit
	MoveTime time.Duration // fixed time for this move; 0 = use UCILimits instead
	UCI      UCILimits     // clock-based time control, used when MoveTime == 0
	Ply      int           // current game ply, for the time manager's move estimate
}

// Engine wraps a single Searcher with the transposition table, time
// manager, and evaluator it needs, and exposes the surface the UCI
// front-end drives. Search is single-threaded by design.
type Engine struct {
	tt       *TranspositionTable
	eval     Evaluator
	searcher *Searcher
	timer    *TimeManager

	rootPosHashes []uint64

	// OnInfo, if set, is invoked after every completed iterative-
	// deepening depth.
	OnInfo func(SearchInfo)
}

// NewEngine creates an engine with a transposition table sized to
// approximately ttSizeMB megabytes and the baseline material+PST
// evaluator.
func NewEngine(ttSizeMB int) *Engine {
	tt := NewTranspositionTable(ttSizeMB)
	eval := NewMaterialEvaluator()
	return &Engine{
		tt:       tt,
		eval:     eval,
		searcher: NewSearcher(tt, eval),
		timer:    NewTimeManager(),
	}
}

// SetPositionHistory seeds repetition detection with the game's
// position hashes so far, ending with the position about to be
// searched.
func (e *Engine) SetPositionHistory(hashes []uint64) {
	e.rootPosHashes = append(e.rootPosHashes[:0], hashes...)
}

// SearchWithLimits searches pos under limits and returns the best
// move found. The transposition table is not cleared between calls,
// letting later searches reuse earlier results.
func (e *Engine) SearchWithLimits(pos *board.Position, limits SearchLimits) board.Move {
	e.timer = NewTimeManager()
	if limits.MoveTime > 0 {
		e.timer.optimumTime = limits.MoveTime
		e.timer.maximumTime = limits.MoveTime
		e.timer.startTime = time.Now()
	} else {
		e.timer.Init(limits.UCI, pos.SideToMove, limits.Ply)
	}

	e.searcher.SetPositionHistory(e.rootPosHashes)

	startTime := time.Now()
	move, score := e.searcher.Search(pos, e.timer, limits.Depth, func(info IterationInfo) {
		if e.OnInfo == nil {
			return
		}
		stats := e.searcher.Stats()
		e.OnInfo(SearchInfo{
			Depth:    info.Depth,
			SelDepth: stats.SelDepth,
			Score:    info.Score,
			Nodes:    info.Nodes,
			Time:     time.Since(startTime),
			PV:       e.searcher.GetPV(),
			HashFull: e.tt.HashFull(),
		})
	})

	log.Printf("[engine] depth search finished: move=%v score=%d nodes=%d", move, score, e.searcher.Nodes())
	return move
}

// Stop aborts the current search at the next node-count check.
func (e *Engine) Stop() {
	e.searcher.Stop()
}

// Clear empties the transposition table, resets the killer moves and
// halves the history scores, for the UCI "ucinewgame" command.
func (e *Engine) Clear() {
	e.tt.Clear()
	e.searcher.orderer.Clear()
}

// Perft counts the leaves of the move tree rooted at pos to the given
// depth; exposed for the UCI "perft" debug command.
func (e *Engine) Perft(pos *board.Position, depth int) uint64 {
	return pos.Copy().Perft(depth)
}

// Evaluate returns the static evaluation of pos from the side to
// move's perspective.
func (e *Engine) Evaluate(pos *board.Position) int {
	return e.eval.Evaluate(pos)
}

// Stats returns statistics from the most recently completed search.
func (e *Engine) Stats() Stats {
	return e.searcher.Stats()
}
