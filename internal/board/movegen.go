package board

// GenerateLegalMoves returns every legal move in the position.
func (p *Position) GenerateLegalMoves() *MoveList {
	ml := NewMoveList()
	p.GenerateLegalMovesInto(ml)
	return ml
}

// GenerateLegalMovesInto clears out and fills it with every legal
// move, so a hot search path can reuse a per-ply buffer instead of
// allocating a MoveList per node.
func (p *Position) GenerateLegalMovesInto(out *MoveList) {
	out.Clear()
	var scratch MoveList
	p.generatePseudoMoves(&scratch, false)
	p.filterLegalMovesInto(&scratch, out)
}

// GeneratePseudoLegalMoves returns every pseudo-legal move (may leave
// the mover's own king in check).
func (p *Position) GeneratePseudoLegalMoves() *MoveList {
	ml := NewMoveList()
	p.generatePseudoMoves(ml, false)
	return ml
}

// GenerateCaptures returns every legal capturing move (and promotions),
// for use in quiescence search.
func (p *Position) GenerateCaptures() *MoveList {
	ml := NewMoveList()
	p.GenerateCapturesInto(ml)
	return ml
}

// GenerateCapturesInto is the capture-only counterpart to
// GenerateLegalMovesInto.
func (p *Position) GenerateCapturesInto(out *MoveList) {
	out.Clear()
	var scratch MoveList
	p.generatePseudoMoves(&scratch, true)
	p.filterLegalMovesInto(&scratch, out)
}

// generatePseudoMoves walks the piece lists for the side to move and
// appends every pseudo-legal move. When capturesOnly is set, quiet
// (non-capturing, non-promoting) moves are skipped.
func (p *Position) generatePseudoMoves(ml *MoveList, capturesOnly bool) {
	us := p.SideToMove

	for _, sq := range p.PieceSquares(NewPiece(Pawn, us)) {
		p.genPawnMoves(ml, sq, us, capturesOnly)
	}
	for _, sq := range p.PieceSquares(NewPiece(Knight, us)) {
		p.genStepperMoves(ml, sq, us, knightOffsets[:], capturesOnly)
	}
	for _, sq := range p.PieceSquares(NewPiece(Bishop, us)) {
		p.genSliderMoves(ml, sq, us, bishopOffsets[:], capturesOnly)
	}
	for _, sq := range p.PieceSquares(NewPiece(Rook, us)) {
		p.genSliderMoves(ml, sq, us, rookOffsets[:], capturesOnly)
	}
	for _, sq := range p.PieceSquares(NewPiece(Queen, us)) {
		p.genSliderMoves(ml, sq, us, kingOffsets[:], capturesOnly)
	}
	for _, sq := range p.PieceSquares(NewPiece(King, us)) {
		p.genStepperMoves(ml, sq, us, kingOffsets[:], capturesOnly)
	}
	if !capturesOnly {
		p.genCastling(ml, us)
	}
}

var promotionPieces = [4]PieceType{Queen, Rook, Bishop, Knight}

func (p *Position) genPawnMoves(ml *MoveList, from Square, us Color, capturesOnly bool) {
	push := PawnPushOffset(us)
	promoteRank := 0
	if us == Black {
		promoteRank = 7
	}
	startRank := 6
	if us == Black {
		startRank = 1
	}

	to := from + Square(push)
	if to.IsValid() && p.squares[to] == NoPiece {
		if to.Rank() == promoteRank {
			for _, promo := range promotionPieces {
				ml.Add(NewMove(from, to, promo, false, false, false, false))
			}
		} else if !capturesOnly {
			ml.Add(NewMove(from, to, NoPieceType, false, false, false, false))

			if from.Rank() == startRank {
				double := to + Square(push)
				if double.IsValid() && p.squares[double] == NoPiece {
					ml.Add(NewMove(from, double, NoPieceType, false, true, false, false))
				}
			}
		}
	}

	for _, capOff := range PawnCaptureOffsets(us) {
		to := from + Square(capOff)
		if !to.IsValid() {
			continue
		}
		if to == p.EnPassant {
			ml.Add(NewMove(from, to, NoPieceType, true, false, true, false))
			continue
		}
		target := p.squares[to]
		if target == NoPiece || target.Color() == us {
			continue
		}
		if to.Rank() == promoteRank {
			for _, promo := range promotionPieces {
				ml.Add(NewMove(from, to, promo, true, false, false, false))
			}
		} else {
			ml.Add(NewMove(from, to, NoPieceType, true, false, false, false))
		}
	}
}

func (p *Position) genStepperMoves(ml *MoveList, from Square, us Color, offsets []int, capturesOnly bool) {
	for _, off := range offsets {
		to := from + Square(off)
		if !to.IsValid() {
			continue
		}
		target := p.squares[to]
		if target != NoPiece {
			if target.Color() != us {
				ml.Add(NewMove(from, to, NoPieceType, true, false, false, false))
			}
			continue
		}
		if !capturesOnly {
			ml.Add(NewMove(from, to, NoPieceType, false, false, false, false))
		}
	}
}

func (p *Position) genSliderMoves(ml *MoveList, from Square, us Color, offsets []int, capturesOnly bool) {
	for _, off := range offsets {
		to := from + Square(off)
		for to.IsValid() {
			target := p.squares[to]
			if target != NoPiece {
				if target.Color() != us {
					ml.Add(NewMove(from, to, NoPieceType, true, false, false, false))
				}
				break
			}
			if !capturesOnly {
				ml.Add(NewMove(from, to, NoPieceType, false, false, false, false))
			}
			to += Square(off)
		}
	}
}

func (p *Position) genCastling(ml *MoveList, us Color) {
	them := us.Other()
	king := p.KingSquare[us]

	if p.CastlingRights.CanCastle(us, true) {
		f1 := king + 1
		g1 := king + 2
		if p.squares[f1] == NoPiece && p.squares[g1] == NoPiece {
			if !p.IsSquareAttackedBy(king, them) && !p.IsSquareAttackedBy(f1, them) && !p.IsSquareAttackedBy(g1, them) {
				ml.Add(NewMove(king, g1, NoPieceType, false, false, false, true))
			}
		}
	}
	if p.CastlingRights.CanCastle(us, false) {
		d1 := king - 1
		c1 := king - 2
		b1 := king - 3
		if p.squares[d1] == NoPiece && p.squares[c1] == NoPiece && p.squares[b1] == NoPiece {
			if !p.IsSquareAttackedBy(king, them) && !p.IsSquareAttackedBy(d1, them) && !p.IsSquareAttackedBy(c1, them) {
				ml.Add(NewMove(king, c1, NoPieceType, false, false, false, true))
			}
		}
	}
}

// filterLegalMovesInto appends to out (without clearing it first) only
// the moves in ml that do not leave the mover's own king in check.
func (p *Position) filterLegalMovesInto(ml, out *MoveList) {
	for i := 0; i < ml.Len(); i++ {
		m := ml.Get(i)
		if p.IsLegal(m) {
			out.Add(m)
		}
	}
}

// IsLegal reports whether m can be played without leaving the
// mover's own king in check. It applies and reverses the move, which
// is simple to get right and cheap relative to search node cost.
func (p *Position) IsLegal(m Move) bool {
	us := p.SideToMove
	them := us.Other()
	undo := p.MakeMove(m)
	ksq := p.KingSquare[us]
	attacked := p.IsSquareAttackedBy(ksq, them)
	p.UnmakeMove(undo)
	return !attacked
}

// MakeMove applies m to the position and returns the information
// needed to undo it.
func (p *Position) MakeMove(m Move) UndoInfo {
	us := p.SideToMove
	them := us.Other()
	source := m.Source()
	target := m.Target()

	undo := UndoInfo{
		Move:           m,
		CapturedPiece:  NoPiece,
		CastlingRights: p.CastlingRights,
		EnPassant:      p.EnPassant,
		HalfmoveClock:  p.HalfMoveClock,
		Hash:           p.Hash,
	}

	piece := p.squares[source]
	pt := piece.Type()

	p.Hash ^= zobristSideToMove
	p.Hash ^= zobristCastling[p.CastlingRights]
	if p.EnPassant != NoSquare {
		p.Hash ^= zobristEnPassant[p.EnPassant.File()]
	}
	p.EnPassant = NoSquare

	if m.IsEnPassant() {
		capturedSq := target - Square(PawnPushOffset(us))
		undo.CapturedPiece = p.removePiece(capturedSq)
		p.Hash ^= zobristPiece[them][Pawn][capturedSq]
	} else if m.IsCapture() {
		undo.CapturedPiece = p.removePiece(target)
		p.Hash ^= zobristPiece[them][undo.CapturedPiece.Type()][target]
	}

	p.movePiece(source, target)
	p.Hash ^= zobristPiece[us][pt][source]
	p.Hash ^= zobristPiece[us][pt][target]

	if m.IsPromotion() {
		promo := m.Promotion()
		p.removePiece(target)
		p.addPiece(NewPiece(promo, us), target)
		p.Hash ^= zobristPiece[us][Pawn][target]
		p.Hash ^= zobristPiece[us][promo][target]
	}

	if m.IsCastling() {
		rookFrom, rookTo := castlingRookSquares(target)
		p.movePiece(rookFrom, rookTo)
		p.Hash ^= zobristPiece[us][Rook][rookFrom]
		p.Hash ^= zobristPiece[us][Rook][rookTo]
	}

	if pt == King {
		if us == White {
			p.CastlingRights &^= WhiteKingSideCastle | WhiteQueenSideCastle
		} else {
			p.CastlingRights &^= BlackKingSideCastle | BlackQueenSideCastle
		}
	}
	if source == A1 || target == A1 {
		p.CastlingRights &^= WhiteQueenSideCastle
	}
	if source == H1 || target == H1 {
		p.CastlingRights &^= WhiteKingSideCastle
	}
	if source == A8 || target == A8 {
		p.CastlingRights &^= BlackQueenSideCastle
	}
	if source == H8 || target == H8 {
		p.CastlingRights &^= BlackKingSideCastle
	}
	p.Hash ^= zobristCastling[p.CastlingRights]

	if m.IsDoublePawnPush() {
		epSquare := (source + target) / 2
		p.EnPassant = epSquare
		p.Hash ^= zobristEnPassant[epSquare.File()]
	}

	if pt == Pawn || undo.CapturedPiece != NoPiece {
		p.HalfMoveClock = 0
	} else {
		p.HalfMoveClock++
	}
	if us == Black {
		p.FullMoveNumber++
	}

	p.SideToMove = them
	return undo
}

// UnmakeMove reverses the effect of MakeMove given its returned UndoInfo.
func (p *Position) UnmakeMove(undo UndoInfo) {
	m := undo.Move
	them := p.SideToMove
	us := them.Other()
	source := m.Source()
	target := m.Target()

	p.CastlingRights = undo.CastlingRights
	p.EnPassant = undo.EnPassant
	p.HalfMoveClock = undo.HalfmoveClock
	p.Hash = undo.Hash
	p.SideToMove = us
	if us == Black {
		p.FullMoveNumber--
	}

	if m.IsPromotion() {
		p.removePiece(target)
		p.addPiece(NewPiece(Pawn, us), target)
	}

	p.movePiece(target, source)

	if m.IsCastling() {
		rookFrom, rookTo := castlingRookSquares(target)
		p.movePiece(rookTo, rookFrom)
	}

	if undo.CapturedPiece != NoPiece {
		if m.IsEnPassant() {
			capturedSq := target - Square(PawnPushOffset(us))
			p.addPiece(undo.CapturedPiece, capturedSq)
		} else {
			p.addPiece(undo.CapturedPiece, target)
		}
	}
}

// castlingRookSquares returns the rook's source and destination for a
// castling move whose king lands on target.
func castlingRookSquares(target Square) (from, to Square) {
	switch target {
	case G1:
		return H1, F1
	case C1:
		return A1, D1
	case G8:
		return H8, F8
	case C8:
		return A8, D8
	}
	return NoSquare, NoSquare
}

// HasLegalMoves reports whether the side to move has at least one legal move.
func (p *Position) HasLegalMoves() bool {
	ml := p.GeneratePseudoLegalMoves()
	for i := 0; i < ml.Len(); i++ {
		if p.IsLegal(ml.Get(i)) {
			return true
		}
	}
	return false
}

// IsCheckmate reports whether the side to move is checkmated.
func (p *Position) IsCheckmate() bool {
	return p.InCheck() && !p.HasLegalMoves()
}

// IsStalemate reports whether the side to move is stalemated.
func (p *Position) IsStalemate() bool {
	return !p.InCheck() && !p.HasLegalMoves()
}

// IsDraw reports whether the position is a draw by stalemate, the
// fifty-move rule, or insufficient material. Repetition draws are
// tracked by the caller (search keeps position history; see
// engine.Searcher.isDraw), since Position has no move history.
func (p *Position) IsDraw() bool {
	if p.IsStalemate() {
		return true
	}
	if p.HalfMoveClock >= 100 {
		return true
	}
	return p.IsInsufficientMaterial()
}

// IsInsufficientMaterial reports whether neither side has enough
// material to deliver checkmate.
func (p *Position) IsInsufficientMaterial() bool {
	if p.PieceCount(NewPiece(Pawn, White))+p.PieceCount(NewPiece(Pawn, Black)) != 0 {
		return false
	}
	if p.PieceCount(NewPiece(Rook, White))+p.PieceCount(NewPiece(Rook, Black)) != 0 {
		return false
	}
	if p.PieceCount(NewPiece(Queen, White))+p.PieceCount(NewPiece(Queen, Black)) != 0 {
		return false
	}

	wMinors := p.PieceCount(NewPiece(Knight, White)) + p.PieceCount(NewPiece(Bishop, White))
	bMinors := p.PieceCount(NewPiece(Knight, Black)) + p.PieceCount(NewPiece(Bishop, Black))

	if wMinors == 0 && bMinors == 0 {
		return true
	}
	if wMinors <= 1 && bMinors == 0 {
		return true
	}
	if bMinors <= 1 && wMinors == 0 {
		return true
	}
	return false
}

// Perft counts the leaf nodes of the legal move tree to depth, used
// to validate move generation against known-correct counts.
func (p *Position) Perft(depth int) uint64 {
	if depth == 0 {
		return 1
	}
	ml := p.GenerateLegalMoves()
	if depth == 1 {
		return uint64(ml.Len())
	}
	var nodes uint64
	for i := 0; i < ml.Len(); i++ {
		undo := p.MakeMove(ml.Get(i))
		nodes += p.Perft(depth - 1)
		p.UnmakeMove(undo)
	}
	return nodes
}
