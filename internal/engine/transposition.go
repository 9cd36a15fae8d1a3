package engine

import (
	"github.com/talonchess/talon/internal/board"
)

// TTFlag indicates which kind of bound a transposition table entry stores.
type TTFlag uint8

const (
	TTExact      TTFlag = iota // exact score
	TTLowerBound               // failed high (beta cutoff); score is a lower bound
	TTUpperBound               // failed low; score is an upper bound
)

// TTEntry is one slot of the transposition table. Depth may legitimately
// be 0 (a check-extension node searched at the horizon), so occupancy
// is tracked separately via Valid rather than inferred from Depth.
type TTEntry struct {
	Key      uint32     // upper 32 bits of the Zobrist hash, for verification
	BestMove board.Move
	Score    int16
	Depth    int8
	Flag     TTFlag
	Valid    bool
}

// TranspositionTable is a fixed-size, power-of-2-sized, open-addressed
// hash table keyed by the low bits of a position's Zobrist hash.
// Replacement is always-overwrite: a probe miss or a colliding entry
// is simply replaced, favoring simplicity and recency over the
// depth-preferred/aging schemes larger engines use.
type TranspositionTable struct {
	entries []TTEntry
	mask    uint64

	probes uint64
	hits   uint64
}

// NewTranspositionTable creates a table sized to approximately sizeMB
// megabytes, rounded down to a power of 2 number of entries.
func NewTranspositionTable(sizeMB int) *TranspositionTable {
	const entrySize = 16 // approximate size of TTEntry in bytes
	numEntries := (uint64(sizeMB) * 1024 * 1024) / entrySize
	numEntries = roundDownToPowerOf2(numEntries)
	if numEntries == 0 {
		numEntries = 1
	}

	return &TranspositionTable{
		entries: make([]TTEntry, numEntries),
		mask:    numEntries - 1,
	}
}

func roundDownToPowerOf2(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return (n + 1) >> 1
}

// Probe looks up hash in the table. The second return reports whether
// a verified entry was found.
func (tt *TranspositionTable) Probe(hash uint64) (TTEntry, bool) {
	tt.probes++
	entry := tt.entries[hash&tt.mask]
	if entry.Valid && entry.Key == uint32(hash>>32) {
		tt.hits++
		return entry, true
	}
	return TTEntry{}, false
}

// Store writes an entry for hash, always overwriting whatever
// occupied the slot.
func (tt *TranspositionTable) Store(hash uint64, depth int, score int, flag TTFlag, bestMove board.Move) {
	entry := &tt.entries[hash&tt.mask]
	entry.Key = uint32(hash >> 32)
	entry.BestMove = bestMove
	entry.Score = int16(score)
	entry.Depth = int8(depth)
	entry.Flag = flag
	entry.Valid = true
}

// Clear empties the table and resets its statistics.
func (tt *TranspositionTable) Clear() {
	for i := range tt.entries {
		tt.entries[i] = TTEntry{}
	}
	tt.probes = 0
	tt.hits = 0
}

// HashFull estimates, in permille, how full the table is by sampling
// its first 1000 slots (or all of them, if smaller).
func (tt *TranspositionTable) HashFull() int {
	sampleSize := 1000
	if uint64(sampleSize) > uint64(len(tt.entries)) {
		sampleSize = len(tt.entries)
	}
	used := 0
	for i := 0; i < sampleSize; i++ {
		if tt.entries[i].Valid {
			used++
		}
	}
	if sampleSize == 0 {
		return 0
	}
	return (used * 1000) / sampleSize
}

// HitRate returns the cache hit rate as a percentage of probes.
func (tt *TranspositionTable) HitRate() float64 {
	if tt.probes == 0 {
		return 0
	}
	return float64(tt.hits) / float64(tt.probes) * 100
}

// Size returns the number of slots in the table.
func (tt *TranspositionTable) Size() uint64 {
	return uint64(len(tt.entries))
}

// AdjustScoreFromTT converts a mate score read from the table (stored
// relative to the table entry's own search root) into one relative to
// ply, the current distance from this search's root.
func AdjustScoreFromTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score - ply
	}
	if score < -MateScore+MaxPly {
		return score + ply
	}
	return score
}

// AdjustScoreToTT converts a mate score relative to ply into one
// relative to the position itself, suitable for storage.
func AdjustScoreToTT(score, ply int) int {
	if score > MateScore-MaxPly {
		return score + ply
	}
	if score < -MateScore+MaxPly {
		return score - ply
	}
	return score
}
