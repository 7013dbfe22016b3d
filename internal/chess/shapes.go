package chess

type shapeKey struct {
	Type PieceType
	Side Side
}

// shapeTable maps each square to the squares reachable from it on an empty
// board. Squares without an entry (pawns on their back and promotion rows)
// have present unset.
type shapeTable struct {
	shapes  [64]Bitboard
	present [64]bool
}

func (t *shapeTable) at(p Position) (Bitboard, bool) {
	if t == nil || !p.Valid() {
		return Bitboard{}, false
	}
	i := p.index()
	return t.shapes[i], t.present[i]
}

func (t *shapeTable) put(p Position, b Bitboard) {
	t.shapes[p.index()] = b
	t.present[p.index()] = true
}

// moveShapes is computed once and shared by every piece and every board copy.
var moveShapes = computeMoveShapes()

var (
	rookDirections   = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	bishopDirections = [][2]int{{1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
	knightJumps      = [][2]int{{2, 1}, {2, -1}, {-2, 1}, {-2, -1}, {1, 2}, {1, -2}, {-1, 2}, {-1, -2}}
	kingSteps        = [][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}, {1, 1}, {1, -1}, {-1, 1}, {-1, -1}}
)

func computeMoveShapes() map[shapeKey]*shapeTable {
	tables := make(map[shapeKey]*shapeTable)
	for _, side := range []Side{Black, White} {
		for _, t := range pieceTypes {
			tables[shapeKey{t, side}] = computeShapesFor(t, side)
		}
	}
	return tables
}

func computeShapesFor(t PieceType, side Side) *shapeTable {
	table := &shapeTable{}
	if t == Pawn {
		computePawnShapes(table, side)
		return table
	}
	for row := MinCoordinate; row <= MaxCoordinate; row++ {
		for column := MinCoordinate; column <= MaxCoordinate; column++ {
			p := Position{Column: column, Row: row}
			var shape Bitboard
			switch t {
			case Rook:
				shape = slide(p, rookDirections)
			case Bishop:
				shape = slide(p, bishopDirections)
			case Queen:
				shape = slide(p, rookDirections).Union(slide(p, bishopDirections))
			case Knight:
				shape = step(p, knightJumps)
			case King:
				shape = step(p, kingSteps)
			}
			table.put(p, shape)
		}
	}
	return table
}

func slide(from Position, directions [][2]int) Bitboard {
	var b Bitboard
	for _, d := range directions {
		for p := from.Offset(d[0], d[1]); p.Valid(); p = p.Offset(d[0], d[1]) {
			b.Set(p)
		}
	}
	return b
}

func step(from Position, offsets [][2]int) Bitboard {
	var b Bitboard
	for _, d := range offsets {
		if p := from.Offset(d[0], d[1]); p.Valid() {
			b.Set(p)
		}
	}
	return b
}

// Pawns get a double step from their starting row and a single step from
// every other row short of promotion. Diagonal captures are added from the
// live board.
func computePawnShapes(table *shapeTable, side Side) {
	forward := side.Forward()
	startRow := side.HomeRow() + forward
	for row := startRow; row != side.PromotionRow(); row += forward {
		for column := MinCoordinate; column <= MaxCoordinate; column++ {
			p := Position{Column: column, Row: row}
			shape := BitboardOf(p.Offset(0, forward))
			if row == startRow {
				shape.Set(p.Offset(0, 2*forward))
			}
			table.put(p, shape)
		}
	}
}
