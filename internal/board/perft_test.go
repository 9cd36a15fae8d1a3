package board

import "testing"

// TestPerftStartingPosition exercises move generation from the
// starting position against the well-known perft counts.
func TestPerftStartingPosition(t *testing.T) {
	pos := NewPosition()

	tests := []struct {
		depth    int
		expected uint64
	}{
		{1, 20},
		{2, 400},
		{3, 8902},
		{4, 197281},
		// {5, 4865609}, // slow; enable for thorough local verification
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := pos.Perft(tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftKiwipete exercises the Kiwipete position, known for
// exercising castling, en passant, and promotion edge cases together.
func TestPerftKiwipete(t *testing.T) {
	pos, err := ParseFEN("r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -")
	if err != nil {
		t.Fatalf("failed to parse FEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected uint64
	}{
		{1, 48},
		{2, 2039},
		{3, 97862},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := pos.Perft(tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftPosition3 exercises en passant edge cases.
func TestPerftPosition3(t *testing.T) {
	pos, err := ParseFEN("8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8 w - -")
	if err != nil {
		t.Fatalf("failed to parse FEN: %v", err)
	}

	tests := []struct {
		depth    int
		expected uint64
	}{
		{1, 14},
		{2, 191},
		{3, 2812},
		{4, 43238},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := pos.Perft(tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestPerftEnPassantPin verifies that an en passant capture exposing
// the mover's own king to a horizontal pin is rejected as illegal.
func TestPerftEnPassantPin(t *testing.T) {
	pos, err := ParseFEN("8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1")
	if err != nil {
		t.Fatalf("failed to parse FEN: %v", err)
	}

	moves := pos.GenerateLegalMoves()
	for i := 0; i < moves.Len(); i++ {
		if m := moves.Get(i); m.IsEnPassant() {
			t.Errorf("en passant move %v should be illegal (horizontal pin)", m)
		}
	}

	tests := []struct {
		depth    int
		expected uint64
	}{
		{1, 6},
		{2, 94},
	}

	for _, tc := range tests {
		t.Run("", func(t *testing.T) {
			got := pos.Perft(tc.depth)
			if got != tc.expected {
				t.Errorf("perft(%d) = %d, want %d", tc.depth, got, tc.expected)
			}
		})
	}
}

// TestMakeUnmakeInvolution checks that applying and reversing every
// legal move at the root restores the position's hash and FEN
// exactly, catching incremental make/unmake bugs perft alone can miss
// when a wrong count still happens to coincide.
func TestMakeUnmakeInvolution(t *testing.T) {
	positions := []string{
		StartFEN,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R w KQkq -",
		"8/8/8/8/k2Pp2R/8/8/4K3 b - d3 0 1",
	}

	for _, fen := range positions {
		pos, err := ParseFEN(fen)
		if err != nil {
			t.Fatalf("failed to parse FEN %q: %v", fen, err)
		}
		wantHash := pos.Hash
		wantFEN := pos.ToFEN()

		moves := pos.GenerateLegalMoves()
		for i := 0; i < moves.Len(); i++ {
			m := moves.Get(i)
			undo := pos.MakeMove(m)
			pos.UnmakeMove(undo)
			if pos.Hash != wantHash {
				t.Fatalf("%s: hash mismatch after make/unmake of %v: got %x want %x", fen, m, pos.Hash, wantHash)
			}
			if got := pos.ToFEN(); got != wantFEN {
				t.Fatalf("%s: FEN mismatch after make/unmake of %v: got %q want %q", fen, m, got, wantFEN)
			}
		}
	}
}

// TestHashMatchesRecompute checks that the incrementally maintained
// hash agrees with a from-scratch recomputation after a short
// sequence of moves, including a capture and a castle.
func TestHashMatchesRecompute(t *testing.T) {
	pos := NewPosition()
	for _, uci := range []string{"e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "f8c5", "e1g1", "c5f2"} {
		m, err := ParseMove(uci, pos)
		if err != nil {
			t.Fatalf("parsing move %q: %v", uci, err)
		}
		pos.MakeMove(m)
	}
	if got, want := pos.Hash, pos.ComputeHash(); got != want {
		t.Errorf("incremental hash %x does not match recomputed hash %x", got, want)
	}
}
