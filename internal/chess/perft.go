package chess

// Perft counts the leaf nodes of the legal move tree to the given depth.
func Perft(b *Chessboard, depth int) uint64 {
	if depth <= 0 {
		return 1
	}
	moves := b.LegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		nodes += Perft(b.afterMove(m), depth-1)
	}
	return nodes
}

// PerftDivide reports the perft count below each root move, keyed by its
// coordinate notation.
func PerftDivide(b *Chessboard, depth int) map[string]uint64 {
	result := make(map[string]uint64)
	if depth <= 0 {
		return result
	}
	for _, m := range b.LegalMoves() {
		result[m.String()] = Perft(b.afterMove(m), depth-1)
	}
	return result
}

func (b *Chessboard) afterMove(m LegalMove) *Chessboard {
	next := b.Clone()
	next.MoveTo(m.PieceID, m.To)
	next.ChangeMovingSide()
	return next
}
