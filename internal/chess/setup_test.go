package chess

import (
	"errors"
	"strings"
	"testing"
)

func TestPlacementRoundTrip(t *testing.T) {
	placements := []string{
		StandardPlacement,
		"r3k2r/p1ppqpb1/bn2pnp1/3PN3/1p2P3/2N2Q1p/PPPBBPPP/R3K2R",
		"8/2p5/3p4/KP5r/1R3p1k/8/4P1P1/8",
		"4k3/8/8/8/8/8/8/4K3",
	}
	for _, placement := range placements {
		b, err := ParsePlacement(placement, White)
		if err != nil {
			t.Fatalf("ParsePlacement(%q): %v", placement, err)
		}
		if got := b.Placement(); got != placement {
			t.Fatalf("Placement() = %q, want %q", got, placement)
		}
	}
}

func TestParsePlacementErrors(t *testing.T) {
	tests := []struct {
		name      string
		placement string
	}{
		{"empty", ""},
		{"unknown letter", "4k3/8/8/8/8/8/8/4X3"},
		{"rank too long", "4k3/8/8/8/8/8/8/4K4"},
		{"rank too short", "4k3/8/8/8/8/8/8/4K2"},
		{"too many pieces", "4k3/8/8/8/8/8/8/RNBQKBNRR"},
		{"no black king", "8/8/8/8/8/8/8/4K3"},
		{"black pawn on promotion row", "4k3/8/8/8/8/8/8/p3K3"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePlacement(tt.placement, White)
			if !errors.Is(err, ErrInvalidPlacement) {
				t.Fatalf("expected ErrInvalidPlacement, got %v", err)
			}
		})
	}
}

func TestParsePlacementCastlingRights(t *testing.T) {
	b := mustParse(t, "r3k2r/8/8/8/8/8/8/1R2K1R1", Black)
	if b.MovingSide() != Black {
		t.Fatalf("side to move not kept")
	}
	tests := []struct {
		square string
		want   bool
	}{
		{"e8", true},
		{"a8", true},
		{"h8", true},
		{"e1", true},
		{"b1", false},
		{"g1", false},
	}
	for _, tt := range tests {
		if got := pieceOn(t, b, tt.square).CanCastle; got != tt.want {
			t.Errorf("%s CanCastle = %v, want %v", tt.square, got, tt.want)
		}
	}
}

func TestStandardBoardLayout(t *testing.T) {
	b := NewStandardChessboard()
	if n := len(b.Pieces()); n != 32 {
		t.Fatalf("expected 32 pieces, got %d", n)
	}
	if b.Locations(White).Count() != 16 || b.Locations(Black).Count() != 16 {
		t.Fatalf("expected 16 squares per side")
	}
	king := pieceOn(t, b, "e1")
	if king.Type != King || king.Position.Column != 4 {
		t.Fatalf("white king should start on column 4, got %+v", king)
	}
	if q := pieceOn(t, b, "d8"); q.Type != Queen || q.Side != Black {
		t.Fatalf("expected black queen on d8, got %+v", q)
	}
	drawn := b.String()
	if !strings.HasPrefix(drawn, "8 r n b q k b n r") {
		t.Fatalf("unexpected drawing:\n%s", drawn)
	}
}
