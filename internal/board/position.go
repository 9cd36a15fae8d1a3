package board

import "fmt"

// CastlingRights represents the available castling options, one bit
// per side/direction.
type CastlingRights uint8

const (
	WhiteKingSideCastle  CastlingRights = 1 << iota // K
	WhiteQueenSideCastle                            // Q
	BlackKingSideCastle                             // k
	BlackQueenSideCastle                            // q
	NoCastling           CastlingRights = 0
	AllCastling          CastlingRights = WhiteKingSideCastle | WhiteQueenSideCastle | BlackKingSideCastle | BlackQueenSideCastle
)

// String returns the FEN castling-rights string.
func (cr CastlingRights) String() string {
	if cr == NoCastling {
		return "-"
	}
	s := ""
	if cr&WhiteKingSideCastle != 0 {
		s += "K"
	}
	if cr&WhiteQueenSideCastle != 0 {
		s += "Q"
	}
	if cr&BlackKingSideCastle != 0 {
		s += "k"
	}
	if cr&BlackQueenSideCastle != 0 {
		s += "q"
	}
	return s
}

// CanCastle reports whether the given side may castle in the given direction.
func (cr CastlingRights) CanCastle(c Color, kingSide bool) bool {
	if c == White {
		if kingSide {
			return cr&WhiteKingSideCastle != 0
		}
		return cr&WhiteQueenSideCastle != 0
	}
	if kingSide {
		return cr&BlackKingSideCastle != 0
	}
	return cr&BlackQueenSideCastle != 0
}

// maxPieceCount bounds how many pieces of one color+type can exist
// simultaneously (up to 8 promoted pawns plus the original piece).
const maxPieceCount = 10

// pieceListIndex maps a Piece to its slot in the piece-list arrays (0..11).
func pieceListIndex(p Piece) int {
	return int(p)
}

// Position is a complete chess position: a 0x88 board array backed by
// per-piece-type piece lists for move generation, plus the incremental
// Zobrist hash and game state needed to make/unmake moves.
type Position struct {
	squares [128]Piece

	pieceSquares [12][maxPieceCount]Square
	pieceCount   [12]int
	pieceSlot    [128]int // slot within pieceSquares[piece] for the piece standing on a square

	SideToMove     Color
	CastlingRights CastlingRights
	EnPassant      Square // target square for an en passant capture, NoSquare if none
	HalfMoveClock  int    // half-moves since the last pawn move or capture
	FullMoveNumber int

	Hash uint64

	KingSquare [2]Square
}

// NewPosition returns the standard starting position.
func NewPosition() *Position {
	pos, _ := ParseFEN(StartFEN)
	return pos
}

// Copy returns a deep copy of the position (Position has no pointer
// fields, so a value copy suffices).
func (p *Position) Copy() *Position {
	newPos := *p
	return &newPos
}

// PieceAt returns the piece on sq, or NoPiece if empty or off-board.
func (p *Position) PieceAt(sq Square) Piece {
	if !sq.IsValid() {
		return NoPiece
	}
	return p.squares[sq]
}

// IsEmpty reports whether sq holds no piece.
func (p *Position) IsEmpty(sq Square) bool {
	return p.PieceAt(sq) == NoPiece
}

// PieceSquares returns the squares currently occupied by piece p, as
// a slice into the position's piece list (valid until the next
// mutation of p's list).
func (p *Position) PieceSquares(piece Piece) []Square {
	idx := pieceListIndex(piece)
	return p.pieceSquares[idx][:p.pieceCount[idx]]
}

// PieceCount returns how many pieces of the given kind are on the board.
func (p *Position) PieceCount(piece Piece) int {
	return p.pieceCount[pieceListIndex(piece)]
}

// addPiece places piece on sq, updating the board array and piece
// list. Does not touch the hash.
func (p *Position) addPiece(piece Piece, sq Square) {
	p.squares[sq] = piece
	idx := pieceListIndex(piece)
	slot := p.pieceCount[idx]
	p.pieceSquares[idx][slot] = sq
	p.pieceSlot[sq] = slot
	p.pieceCount[idx]++
	if piece.Type() == King {
		p.KingSquare[piece.Color()] = sq
	}
}

// removePiece clears sq and removes its piece from the piece list by
// swapping in the list's last entry, an O(1) operation that leaves
// the list unordered.
func (p *Position) removePiece(sq Square) Piece {
	piece := p.squares[sq]
	if piece == NoPiece {
		return NoPiece
	}
	idx := pieceListIndex(piece)
	slot := p.pieceSlot[sq]
	last := p.pieceCount[idx] - 1
	movedSq := p.pieceSquares[idx][last]
	p.pieceSquares[idx][slot] = movedSq
	p.pieceSlot[movedSq] = slot
	p.pieceCount[idx] = last
	p.squares[sq] = NoPiece
	return piece
}

// movePiece relocates the piece on from to to, which must be empty.
func (p *Position) movePiece(from, to Square) {
	piece := p.squares[from]
	if piece == NoPiece {
		return
	}
	idx := pieceListIndex(piece)
	slot := p.pieceSlot[from]
	p.pieceSquares[idx][slot] = to
	p.pieceSlot[to] = slot
	p.squares[from] = NoPiece
	p.squares[to] = piece
	if piece.Type() == King {
		p.KingSquare[piece.Color()] = to
	}
}

// rebuildPieceLists recomputes the piece lists from the board array.
// ParseFEN does not call it: it places each piece with addPiece.
func (p *Position) rebuildPieceLists() {
	p.pieceCount = [12]int{}
	for rank := 0; rank < 8; rank++ {
		for file := 0; file < 8; file++ {
			sq := NewSquare(file, rank)
			piece := p.squares[sq]
			if piece == NoPiece {
				continue
			}
			idx := pieceListIndex(piece)
			slot := p.pieceCount[idx]
			p.pieceSquares[idx][slot] = sq
			p.pieceSlot[sq] = slot
			p.pieceCount[idx]++
			if piece.Type() == King {
				p.KingSquare[piece.Color()] = sq
			}
		}
	}
}

// String returns a human-readable board diagram plus game state, used
// by the UCI "d" debug command.
func (p *Position) String() string {
	s := "\n"
	for rank := 0; rank < 8; rank++ {
		s += fmt.Sprintf("%d  ", 8-rank)
		for file := 0; file < 8; file++ {
			piece := p.squares[NewSquare(file, rank)]
			if piece == NoPiece {
				s += ". "
			} else {
				s += piece.String() + " "
			}
		}
		s += "\n"
	}
	s += "\n   a b c d e f g h\n\n"
	s += fmt.Sprintf("Side to move: %s\n", p.SideToMove)
	s += fmt.Sprintf("Castling: %s\n", p.CastlingRights)
	s += fmt.Sprintf("En passant: %s\n", p.EnPassant)
	s += fmt.Sprintf("Half-move clock: %d\n", p.HalfMoveClock)
	s += fmt.Sprintf("Full move: %d\n", p.FullMoveNumber)
	s += fmt.Sprintf("Hash: %016x\n", p.Hash)
	return s
}

// Clear resets the position to an empty board.
func (p *Position) Clear() {
	*p = Position{
		EnPassant:      NoSquare,
		FullMoveNumber: 1,
	}
	for i := range p.squares {
		p.squares[i] = NoPiece
	}
	p.KingSquare[White] = NoSquare
	p.KingSquare[Black] = NoSquare
}

// Validate reports structural problems with the position (exactly one
// king per side, no pawns on the back ranks).
func (p *Position) Validate() error {
	if p.PieceCount(NewPiece(King, White)) != 1 {
		return fmt.Errorf("white must have exactly one king")
	}
	if p.PieceCount(NewPiece(King, Black)) != 1 {
		return fmt.Errorf("black must have exactly one king")
	}
	for file := 0; file < 8; file++ {
		if p.squares[NewSquare(file, 0)].Type() == Pawn || p.squares[NewSquare(file, 7)].Type() == Pawn {
			return fmt.Errorf("pawns cannot be on rank 1 or 8")
		}
	}
	return nil
}

// InCheck reports whether the side to move is currently in check.
func (p *Position) InCheck() bool {
	return p.IsSquareAttackedBy(p.KingSquare[p.SideToMove], p.SideToMove.Other())
}

// Material returns the material balance in centipawns, positive favoring White.
func (p *Position) Material() int {
	score := 0
	for pt := Pawn; pt < King; pt++ {
		score += p.PieceCount(NewPiece(pt, White)) * PieceValue[pt]
		score -= p.PieceCount(NewPiece(pt, Black)) * PieceValue[pt]
	}
	return score
}

// HasNonPawnMaterial reports whether the side to move has any piece
// besides pawns and king, used to avoid null-move pruning in pure pawn
// endgames where zugzwang is likely.
func (p *Position) HasNonPawnMaterial() bool {
	us := p.SideToMove
	return p.PieceCount(NewPiece(Knight, us)) > 0 ||
		p.PieceCount(NewPiece(Bishop, us)) > 0 ||
		p.PieceCount(NewPiece(Rook, us)) > 0 ||
		p.PieceCount(NewPiece(Queen, us)) > 0
}

// NullMoveUndo stores the state MakeNullMove mutates, to be restored by UnmakeNullMove.
type NullMoveUndo struct {
	EnPassant Square
	Hash      uint64
}

// MakeNullMove passes the turn without moving a piece; used by
// null-move pruning in search.
func (p *Position) MakeNullMove() NullMoveUndo {
	undo := NullMoveUndo{EnPassant: p.EnPassant, Hash: p.Hash}

	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	p.SideToMove = p.SideToMove.Other()
	p.Hash ^= zobristSideToMove

	return undo
}

// UnmakeNullMove reverses MakeNullMove.
func (p *Position) UnmakeNullMove(undo NullMoveUndo) {
	p.EnPassant = undo.EnPassant
	p.Hash = undo.Hash
	p.SideToMove = p.SideToMove.Other()
}

// DebugMoveValidation holds the value of the "setoption name Debug"
// command; off by default. It is only recorded: no code path reads it,
// so it enables no extra logging or checks.
var DebugMoveValidation bool
