package chess

import (
	"testing"

	"github.com/dylhunn/dragontoothmg"
)

// referencePerft counts the same tree with an independent move generator.
func referencePerft(b *dragontoothmg.Board, depth int) uint64 {
	if depth == 0 {
		return 1
	}
	moves := b.GenerateLegalMoves()
	if depth == 1 {
		return uint64(len(moves))
	}
	var nodes uint64
	for _, m := range moves {
		unapply := b.Apply(m)
		nodes += referencePerft(b, depth-1)
		unapply()
	}
	return nodes
}

func TestPerftStartingPosition(t *testing.T) {
	want := []uint64{1, 20, 400, 8902, 197281}
	maxDepth := 4
	if testing.Short() {
		maxDepth = 3
	}
	b := NewStandardChessboard()
	for depth := 0; depth <= maxDepth; depth++ {
		if got := Perft(b, depth); got != want[depth] {
			t.Fatalf("Perft(%d) = %d, want %d", depth, got, want[depth])
		}
	}
}

// Positions are chosen so that no pawn reaches its promotion row within the
// searched depth; under-promotions are not generated here.
func TestPerftAgainstReference(t *testing.T) {
	tests := []struct {
		name      string
		placement string
		toMove    Side
		castling  string
		depth     int
	}{
		{"start", StandardPlacement, White, "KQkq", 3},
		{"castling and pins", "r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R", White, "KQkq", 2},
		{"en passant endgame", "8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8", White, "-", 3},
		{"black to move", "r3k2r/8/8/8/3pP3/8/8/R3K2R", Black, "KQkq", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := mustParse(t, tt.placement, tt.toMove)
			toMove := "w"
			if tt.toMove == Black {
				toMove = "b"
			}
			ref := dragontoothmg.ParseFen(tt.placement + " " + toMove + " " + tt.castling + " - 0 1")

			for depth := 1; depth <= tt.depth; depth++ {
				want := referencePerft(&ref, depth)
				if got := Perft(b, depth); got != want {
					t.Fatalf("Perft(%d) = %d, reference %d\n%v", depth, got, want, PerftDivide(b, depth))
				}
			}
		})
	}
}

func TestPerftDivideSumsToPerft(t *testing.T) {
	b := NewStandardChessboard()
	divide := PerftDivide(b, 2)
	if len(divide) != 20 {
		t.Fatalf("expected 20 root moves, got %d", len(divide))
	}
	var total uint64
	for move, n := range divide {
		if n != 20 {
			t.Errorf("%s: %d replies, want 20", move, n)
		}
		total += n
	}
	if total != Perft(b, 2) {
		t.Fatalf("divide sums to %d, Perft gives %d", total, Perft(b, 2))
	}
	if divide["e2e4"] != 20 {
		t.Fatalf("missing e2e4 in %v", divide)
	}
}

func TestPerftLeavesBoardUntouched(t *testing.T) {
	b := NewStandardChessboard()
	Perft(b, 2)
	if b.Placement() != StandardPlacement || b.MovingSide() != White {
		t.Fatalf("Perft modified the board:\n%s", b)
	}
}
