package chess

import "fmt"

type PieceType string

const (
	King   PieceType = "king"
	Queen  PieceType = "queen"
	Rook   PieceType = "rook"
	Bishop PieceType = "bishop"
	Knight PieceType = "knight"
	Pawn   PieceType = "pawn"
)

var pieceTypes = []PieceType{King, Queen, Rook, Bishop, Knight, Pawn}

// Notation is the letter used in move notation; pawns have none.
func (t PieceType) Notation() string {
	switch t {
	case King:
		return "K"
	case Queen:
		return "Q"
	case Rook:
		return "R"
	case Bishop:
		return "B"
	case Knight:
		return "N"
	}
	return ""
}

// PieceID identifies a piece within a board and all of its copies.
type PieceID int

// Piece is one unit on a Chessboard. The board owns it; callers outside the
// package should treat it as read-only.
type Piece struct {
	ID       PieceID   `json:"id"`
	Type     PieceType `json:"type"`
	Side     Side      `json:"side"`
	Position Position  `json:"position"`

	// InitialPosition is where a pawn was spawned.
	InitialPosition Position `json:"-"`
	// CanCastle is only meaningful for Kings and Rooks and is cleared for
	// good by their first move.
	CanCastle bool `json:"canCastle,omitempty"`
	// AllowEnPassantCapture is set on a pawn for the enemy turn right after
	// its double step.
	AllowEnPassantCapture bool `json:"allowEnPassantCapture,omitempty"`
}

func (p *Piece) String() string {
	return fmt.Sprintf("%s %s@%s", p.Side, p.Type, p.Position)
}

// shape returns the precomputed empty-board move set for the piece's square.
func (p *Piece) shape() Bitboard {
	table := moveShapes[shapeKey{p.Type, p.Side}]
	shape, ok := table.at(p.Position)
	if !ok {
		panic(fmt.Sprintf("chess: no move shape for %s", p))
	}
	return shape
}
