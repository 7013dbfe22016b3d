package ai

import "github.com/benbeisheim/starchess-backend/internal/chess"

const (
	WeightNormalMove  = 1
	CaptureMultiplier = 2
	WeightPromotion   = 11
	WeightCheck       = 13
	WeightCheckmate   = 20
)

var PieceValues = map[chess.PieceType]int{
	chess.Pawn:   1,
	chess.Bishop: 2,
	chess.Rook:   3,
	chess.Knight: 4,
	chess.Queen:  5,
	chess.King:   10,
}

// Evaluator scores a single move from the mover's point of view.
type Evaluator struct {
	// CheckBonuses enables the check and checkmate weights. They cost a board
	// copy per move and are off by default.
	CheckBonuses bool
}

func (e Evaluator) Score(b *chess.Chessboard, m chess.LegalMove) int {
	score := WeightNormalMove

	mover, _ := b.Piece(m.PieceID)
	if victim, ok := b.PieceAt(m.To); ok && victim.Side != mover.Side {
		score += CaptureMultiplier * PieceValues[victim.Type]
	} else if m.Type == chess.Pawn && m.From.Column != m.To.Column {
		// diagonal onto an empty square: en passant
		score += CaptureMultiplier * PieceValues[chess.Pawn]
	}

	if m.Type == chess.Pawn && m.To.Row == mover.Side.PromotionRow() {
		score += WeightPromotion
	}

	if e.CheckBonuses {
		after := b.Clone()
		after.MoveTo(m.PieceID, m.To)
		enemy := mover.Side.Opposite()
		if after.IsKingInCheckmate(enemy) {
			score += WeightCheckmate
		} else if after.IsKingInCheck(enemy) {
			score += WeightCheck
		}
	}
	return score
}
