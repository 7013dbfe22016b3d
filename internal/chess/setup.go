package chess

import (
	"fmt"
	"strings"
)

// StandardPlacement is the opening arrangement in FEN piece-placement form.
const StandardPlacement = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR"

var fenPieceTypes = map[byte]PieceType{
	'k': King,
	'q': Queen,
	'r': Rook,
	'b': Bishop,
	'n': Knight,
	'p': Pawn,
}

// NewStandardChessboard returns the opening position with White to move.
func NewStandardChessboard() *Chessboard {
	b, err := ParsePlacement(StandardPlacement, White)
	if err != nil {
		panic(err)
	}
	return b
}

// ParsePlacement builds a board from the piece-placement field of a FEN
// record. Kings and Rooks may castle only when they stand on their home
// squares. The result is validated.
func ParsePlacement(placement string, toMove Side) (*Chessboard, error) {
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("%w: expected 8 ranks, got %d", ErrInvalidPlacement, len(ranks))
	}

	b := NewChessboard()
	b.movingSide = toMove
	for i, rank := range ranks {
		row := MaxCoordinate - i
		column := MaxCoordinate
		for j := 0; j < len(rank); j++ {
			c := rank[j]
			if c >= '1' && c <= '8' {
				column -= int(c - '0')
				continue
			}
			lower := c | 0x20
			t, ok := fenPieceTypes[lower]
			if !ok {
				return nil, fmt.Errorf("%w: unknown piece %q", ErrInvalidPlacement, c)
			}
			if column < MinCoordinate {
				return nil, fmt.Errorf("%w: rank %d is too long", ErrInvalidPlacement, row)
			}
			side := Black
			if c != lower {
				side = White
			}
			at := Position{Column: column, Row: row}
			if t == Pawn && (row == side.HomeRow() || row == side.PromotionRow()) {
				return nil, fmt.Errorf("%w: %s pawn on %s", ErrInvalidPlacement, side, at)
			}
			id := b.AddPiece(t, side, at)
			b.mustPiece(id).CanCastle = onHomeSquare(t, side, at)
			column--
		}
		if column != MinCoordinate-1 {
			return nil, fmt.Errorf("%w: rank %d does not cover 8 squares", ErrInvalidPlacement, row)
		}
	}

	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

func onHomeSquare(t PieceType, side Side, at Position) bool {
	if at.Row != side.HomeRow() {
		return false
	}
	switch t {
	case King:
		return at.Column == kingHomeColumn
	case Rook:
		for _, rule := range castlingRules {
			if at.Column == rule.rookColumn {
				return true
			}
		}
	}
	return false
}

// Placement renders the board as a FEN piece-placement field.
func (b *Chessboard) Placement() string {
	var sb strings.Builder
	for row := MaxCoordinate; row >= MinCoordinate; row-- {
		empty := 0
		for column := MaxCoordinate; column >= MinCoordinate; column-- {
			p := b.pieceAt(Position{Column: column, Row: row})
			if p == nil {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			letter := pieceLetter(p.Type)
			if p.Side == White {
				letter -= 'a' - 'A'
			}
			sb.WriteByte(letter)
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if row > MinCoordinate {
			sb.WriteByte('/')
		}
	}
	return sb.String()
}

func pieceLetter(t PieceType) byte {
	for letter, pt := range fenPieceTypes {
		if pt == t {
			return letter
		}
	}
	return '?'
}

// String draws the board from White's side, a-file on the left.
func (b *Chessboard) String() string {
	var sb strings.Builder
	for row := MaxCoordinate; row >= MinCoordinate; row-- {
		fmt.Fprintf(&sb, "%d ", row)
		for column := MaxCoordinate; column >= MinCoordinate; column-- {
			p := b.pieceAt(Position{Column: column, Row: row})
			if p == nil {
				sb.WriteString(". ")
				continue
			}
			letter := pieceLetter(p.Type)
			if p.Side == White {
				letter -= 'a' - 'A'
			}
			sb.WriteByte(letter)
			sb.WriteByte(' ')
		}
		sb.WriteByte('\n')
	}
	sb.WriteString("  a b c d e f g h\n")
	return sb.String()
}
