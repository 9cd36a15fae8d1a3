package board

import "fmt"

// Move encodes a chess move in 32 bits:
//
//	bits  0-6:  source square (0..127, 0x88 index)
//	bits  7-13: target square (0..127, 0x88 index)
//	bits 14-17: promotion piece type (NoPieceType = no promotion)
//	bit  18:    is capture
//	bit  19:    is a double pawn push
//	bit  20:    is an en passant capture
//	bit  21:    is castling
type Move uint32

const (
	moveSourceShift    = 0
	moveTargetShift    = 7
	movePromotionShift = 14
	moveCaptureBit     = 18
	moveDoublePushBit  = 19
	moveEnPassantBit   = 20
	moveCastlingBit    = 21

	moveSquareMask     = 0x7F
	movePromotionMask  = 0xF
)

// NoMove represents an invalid or null move.
const NoMove Move = 0

// NewMove builds a move from its constituent fields. promo should be
// NoPieceType for a non-promoting move.
func NewMove(source, target Square, promo PieceType, isCapture, isDoublePush, isEnPassant, isCastling bool) Move {
	m := Move(source)&moveSquareMask | (Move(target)&moveSquareMask)<<moveTargetShift | (Move(promo)&movePromotionMask)<<movePromotionShift
	if isCapture {
		m |= 1 << moveCaptureBit
	}
	if isDoublePush {
		m |= 1 << moveDoublePushBit
	}
	if isEnPassant {
		m |= 1 << moveEnPassantBit
	}
	if isCastling {
		m |= 1 << moveCastlingBit
	}
	return m
}

// NewQuietMove builds a plain, non-capturing, non-special move.
func NewQuietMove(source, target Square) Move {
	return NewMove(source, target, NoPieceType, false, false, false, false)
}

// Source returns the origin square.
func (m Move) Source() Square {
	return Square(m >> moveSourceShift & moveSquareMask)
}

// Target returns the destination square.
func (m Move) Target() Square {
	return Square(m >> moveTargetShift & moveSquareMask)
}

// Promotion returns the promotion piece type, or NoPieceType if this
// move does not promote.
func (m Move) Promotion() PieceType {
	return PieceType(m >> movePromotionShift & movePromotionMask)
}

// IsPromotion reports whether this move promotes a pawn.
func (m Move) IsPromotion() bool {
	return m.Promotion() != NoPieceType
}

// IsCapture reports whether this move captures a piece (including en passant).
func (m Move) IsCapture() bool {
	return m>>moveCaptureBit&1 != 0
}

// IsDoublePawnPush reports whether this move is a two-square pawn push.
func (m Move) IsDoublePawnPush() bool {
	return m>>moveDoublePushBit&1 != 0
}

// IsEnPassant reports whether this move is an en passant capture.
func (m Move) IsEnPassant() bool {
	return m>>moveEnPassantBit&1 != 0
}

// IsCastling reports whether this move is a castling move.
func (m Move) IsCastling() bool {
	return m>>moveCastlingBit&1 != 0
}

// IsQuiet reports whether this move is neither a capture nor a promotion.
func (m Move) IsQuiet() bool {
	return !m.IsCapture() && !m.IsPromotion()
}

// String returns the long algebraic (UCI) form of the move, e.g.
// "e2e4" or "e7e8q".
func (m Move) String() string {
	if m == NoMove {
		return "0000"
	}
	s := m.Source().String() + m.Target().String()
	if m.IsPromotion() {
		s += string(m.Promotion().Char())
	}
	return s
}

// ParseMove parses a long algebraic move string against the current
// position, filling in capture/double-push/en-passant/castling flags
// by inspecting the board.
func ParseMove(s string, pos *Position) (Move, error) {
	if len(s) < 4 {
		return NoMove, fmt.Errorf("invalid move string: %q", s)
	}

	source, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, err
	}
	target, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, err
	}

	piece := pos.PieceAt(source)
	if piece == NoPiece {
		return NoMove, fmt.Errorf("no piece on %s", source)
	}
	pt := piece.Type()

	promo := NoPieceType
	if len(s) >= 5 {
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion piece: %c", s[4])
		}
	}

	isCastling := pt == King && abs(target.File()-source.File()) == 2
	isEnPassant := pt == Pawn && target == pos.EnPassant && target.File() != source.File()
	isDoublePush := pt == Pawn && abs(target.Rank()-source.Rank()) == 2
	isCapture := isEnPassant || pos.PieceAt(target) != NoPiece

	return NewMove(source, target, promo, isCapture, isDoublePush, isEnPassant, isCastling), nil
}

// MoveList is a fixed-size list of moves, sized to avoid allocation
// during move generation (no chess position has more than ~218 legal
// moves).
type MoveList struct {
	moves [256]Move
	count int
}

// NewMoveList creates an empty move list.
func NewMoveList() *MoveList {
	return &MoveList{}
}

// Add appends a move to the list.
func (ml *MoveList) Add(m Move) {
	ml.moves[ml.count] = m
	ml.count++
}

// Len returns the number of moves in the list.
func (ml *MoveList) Len() int {
	return ml.count
}

// Get returns the move at index i.
func (ml *MoveList) Get(i int) Move {
	return ml.moves[i]
}

// Set overwrites the move at index i.
func (ml *MoveList) Set(i int, m Move) {
	ml.moves[i] = m
}

// Swap exchanges the moves at i and j.
func (ml *MoveList) Swap(i, j int) {
	ml.moves[i], ml.moves[j] = ml.moves[j], ml.moves[i]
}

// Clear empties the list without releasing its backing array.
func (ml *MoveList) Clear() {
	ml.count = 0
}

// Contains reports whether the list holds m.
func (ml *MoveList) Contains(m Move) bool {
	for i := 0; i < ml.count; i++ {
		if ml.moves[i] == m {
			return true
		}
	}
	return false
}

// Slice returns the populated moves as a slice into the list's backing array.
func (ml *MoveList) Slice() []Move {
	return ml.moves[:ml.count]
}

// UndoInfo holds everything MakeMove mutates, so UnmakeMove can
// restore the position exactly without a full copy.
type UndoInfo struct {
	Move           Move
	CapturedPiece  Piece
	CastlingRights CastlingRights
	EnPassant      Square
	HalfmoveClock  int
	Hash           uint64
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
