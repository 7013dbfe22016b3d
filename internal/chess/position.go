package chess

import "fmt"

const (
	MinCoordinate = 1
	MaxCoordinate = 8
)

// Position is a square on the board. Column 1 is the h-file and column 8 the
// a-file, so the Kings start on column 4.
type Position struct {
	Column int `json:"column"`
	Row    int `json:"row"`
}

func (p Position) Valid() bool {
	return p.Column >= MinCoordinate && p.Column <= MaxCoordinate &&
		p.Row >= MinCoordinate && p.Row <= MaxCoordinate
}

// Offset returns the position shifted by the given deltas. The result may be
// off the board.
func (p Position) Offset(dColumn, dRow int) Position {
	return Position{Column: p.Column + dColumn, Row: p.Row + dRow}
}

func (p Position) index() int {
	return (p.Row-1)*8 + (p.Column - 1)
}

func (p Position) String() string {
	if !p.Valid() {
		return fmt.Sprintf("(%d,%d)", p.Column, p.Row)
	}
	return fmt.Sprintf("%c%d", 'a'+MaxCoordinate-p.Column, p.Row)
}

// ParseSquare reads algebraic notation such as "e2".
func ParseSquare(s string) (Position, error) {
	if len(s) != 2 {
		return Position{}, fmt.Errorf("%w %q", ErrInvalidSquare, s)
	}
	file, rank := s[0], s[1]
	if file >= 'A' && file <= 'H' {
		file += 'a' - 'A'
	}
	if file < 'a' || file > 'h' || rank < '1' || rank > '8' {
		return Position{}, fmt.Errorf("%w %q", ErrInvalidSquare, s)
	}
	return Position{Column: MaxCoordinate - int(file-'a'), Row: int(rank - '0')}, nil
}

// MustParseSquare is ParseSquare for literals known to be valid.
func MustParseSquare(s string) Position {
	p, err := ParseSquare(s)
	if err != nil {
		panic(err)
	}
	return p
}
