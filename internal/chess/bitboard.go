package chess

import (
	"math/bits"
	"strings"
)

// Bitboard is an 8x8 set of squares, one byte per row starting at row 1.
// Within a row, column 1 is the most significant bit.
type Bitboard [8]uint8

func columnMask(column int) uint8 {
	return 1 << (MaxCoordinate - column)
}

// BitboardOf returns a bitboard with the given squares marked.
func BitboardOf(positions ...Position) Bitboard {
	var b Bitboard
	for _, p := range positions {
		b.Set(p)
	}
	return b
}

func (b Bitboard) Value(p Position) bool {
	return b[p.Row-1]&columnMask(p.Column) != 0
}

func (b *Bitboard) Set(p Position) {
	b[p.Row-1] |= columnMask(p.Column)
}

func (b *Bitboard) Clear(p Position) {
	b[p.Row-1] &^= columnMask(p.Column)
}

// Flip toggles the square and reports whether it was marked before.
func (b *Bitboard) Flip(p Position) bool {
	prev := b.Value(p)
	b[p.Row-1] ^= columnMask(p.Column)
	return prev
}

// Positions lists the marked squares, row by row and by column within a row.
func (b Bitboard) Positions() []Position {
	out := make([]Position, 0, b.Count())
	for row := MinCoordinate; row <= MaxCoordinate; row++ {
		if b[row-1] == 0 {
			continue
		}
		for column := MinCoordinate; column <= MaxCoordinate; column++ {
			if b[row-1]&columnMask(column) != 0 {
				out = append(out, Position{Column: column, Row: row})
			}
		}
	}
	return out
}

func (b Bitboard) Count() int {
	n := 0
	for _, row := range b {
		n += bits.OnesCount8(row)
	}
	return n
}

func (b Bitboard) IsEmpty() bool {
	return b == Bitboard{}
}

func (b Bitboard) Complement() Bitboard {
	var out Bitboard
	for i, row := range b {
		out[i] = ^row
	}
	return out
}

// Intersect keeps the squares of b that are not also marked in other.
func (b Bitboard) Intersect(other Bitboard) Bitboard {
	var out Bitboard
	for i := range b {
		out[i] = (b[i] ^ other[i]) & b[i]
	}
	return out
}

func (b Bitboard) Union(other Bitboard) Bitboard {
	var out Bitboard
	for i := range b {
		out[i] = b[i] | other[i]
	}
	return out
}

// ComputeRayIntersections truncates the rays from origin at every marked
// square that is also marked in obstruction. The blocking square itself is
// kept when includeBlockingSquare is set. Walking a ray stops at the first
// unmarked square.
func (b Bitboard) ComputeRayIntersections(obstruction Bitboard, origin Position, includeBlockingSquare bool) Bitboard {
	out := b
	blockers := b.Intersect(b.Intersect(obstruction))

	for _, blocker := range blockers.Positions() {
		dColumn := sign(blocker.Column - origin.Column)
		dRow := sign(blocker.Row - origin.Row)

		clear := blocker
		if includeBlockingSquare {
			clear = clear.Offset(dColumn, dRow)
		}
		for clear.Valid() && out.Value(clear) {
			out.Clear(clear)
			clear = clear.Offset(dColumn, dRow)
		}
	}
	return out
}

func (b Bitboard) String() string {
	var sb strings.Builder
	for row := MaxCoordinate; row >= MinCoordinate; row-- {
		for column := MaxCoordinate; column >= MinCoordinate; column-- {
			if b.Value(Position{Column: column, Row: row}) {
				sb.WriteString("1 ")
			} else {
				sb.WriteString(". ")
			}
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
