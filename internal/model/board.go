package model

import "github.com/benbeisheim/starchess-backend/internal/chess"

// BoardState is the client view of a board. Board[0] is the eighth rank and
// Board[y][0] the a-file.
type BoardState struct {
	Board             [][]*Piece `json:"board"`
	Placement         string     `json:"placement"`
	BlackKingPosition string     `json:"blackKingPosition"`
	WhiteKingPosition string     `json:"whiteKingPosition"`
}

type Piece struct {
	ID       chess.PieceID   `json:"id"`
	Type     chess.PieceType `json:"type"`
	Color    chess.Side      `json:"color"`
	Position string          `json:"position"`
}

func newBoardState(b *chess.Chessboard) *BoardState {
	state := &BoardState{
		Board:     make([][]*Piece, chess.MaxCoordinate),
		Placement: b.Placement(),
	}
	for y := range state.Board {
		state.Board[y] = make([]*Piece, chess.MaxCoordinate)
	}

	for _, p := range b.Pieces() {
		y := chess.MaxCoordinate - p.Position.Row
		x := chess.MaxCoordinate - p.Position.Column
		state.Board[y][x] = &Piece{
			ID:       p.ID,
			Type:     p.Type,
			Color:    p.Side,
			Position: p.Position.String(),
		}
		if p.Type != chess.King {
			continue
		}
		if p.Side == chess.White {
			state.WhiteKingPosition = p.Position.String()
		} else {
			state.BlackKingPosition = p.Position.String()
		}
	}
	return state
}
