package ai

import (
	"fmt"

	"github.com/benbeisheim/starchess-backend/internal/chess"
)

// Move is a scored candidate. PieceID stays valid on every copy of the board
// the move was generated on.
type Move struct {
	PieceID chess.PieceID   `json:"pieceId"`
	Type    chess.PieceType `json:"type"`
	From    chess.Position  `json:"from"`
	To      chess.Position  `json:"to"`
	Score   int             `json:"score"`
}

func newMove(m chess.LegalMove, score int) Move {
	return Move{PieceID: m.PieceID, Type: m.Type, From: m.From, To: m.To, Score: score}
}

func (m Move) String() string {
	return fmt.Sprintf("%s%s%s (%d)", m.Type.Notation(), m.From, m.To, m.Score)
}
