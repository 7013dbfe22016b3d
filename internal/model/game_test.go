package model

import (
	"encoding/json"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/benbeisheim/starchess-backend/internal/chess"
	"github.com/benbeisheim/starchess-backend/internal/ws"
)

const (
	alice = "3b1f0c2a-5a6e-4c57-9d0e-7f4f0e1d2c3b"
	bob   = "8c9d0e1f-2a3b-4c5d-8e6f-7a8b9c0d1e2f"
)

func newSeatedGame(t *testing.T) *Game {
	t.Helper()
	g := NewGame("game-1", ModeHuman)
	if side, err := g.AddPlayer(alice); err != nil || side != chess.White {
		t.Fatalf("AddPlayer(alice) = %s, %v", side, err)
	}
	if side, err := g.AddPlayer(bob); err != nil || side != chess.Black {
		t.Fatalf("AddPlayer(bob) = %s, %v", side, err)
	}
	return g
}

func play(t *testing.T, g *Game, moves ...string) {
	t.Helper()
	for _, m := range moves {
		player := alice
		if g.Board().MovingSide() == chess.Black {
			player = bob
		}
		from, to := chess.MustParseSquare(m[:2]), chess.MustParseSquare(m[2:])
		if err := g.MakeMove(player, from, to); err != nil {
			t.Fatalf("MakeMove(%s): %v", m, err)
		}
	}
}

func TestAddPlayer(t *testing.T) {
	g := newSeatedGame(t)

	if side, err := g.AddPlayer(bob); err != nil || side != chess.Black {
		t.Fatalf("rejoining should return the same side, got %s, %v", side, err)
	}
	if _, err := g.AddPlayer("someone-else"); !errors.Is(err, ErrGameFull) {
		t.Fatalf("expected ErrGameFull, got %v", err)
	}
	if err := g.AddPlayerAs("someone-else", chess.White); !errors.Is(err, ErrSideTaken) {
		t.Fatalf("expected ErrSideTaken, got %v", err)
	}
	if g.HasOpenSeat() {
		t.Fatalf("both seats are taken")
	}
}

func TestMakeMoveRejections(t *testing.T) {
	tests := []struct {
		name     string
		player   string
		from, to string
		want     error
	}{
		{"stranger", "someone-else", "e2", "e4", ErrNotInGame},
		{"out of turn", bob, "e7", "e5", ErrNotYourTurn},
		{"empty square", alice, "e4", "e5", ErrNoPiece},
		{"enemy piece", alice, "e7", "e5", ErrNoPiece},
		{"illegal target", alice, "e2", "e5", ErrIllegalMove},
		{"blocked rook", alice, "a1", "a3", ErrIllegalMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := newSeatedGame(t)
			err := g.MakeMove(tt.player, chess.MustParseSquare(tt.from), chess.MustParseSquare(tt.to))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if g.Board().Placement() != chess.StandardPlacement {
				t.Fatalf("rejected move changed the board")
			}
		})
	}
}

func TestMakeMoveRecordsHistory(t *testing.T) {
	g := newSeatedGame(t)
	play(t, g, "e2e4", "d7d5", "e4d5")

	state := g.GetState()
	if state.ToMove != chess.Black {
		t.Fatalf("ToMove = %s", state.ToMove)
	}
	if len(state.MoveHistory) != 2 {
		t.Fatalf("expected 2 history rows, got %d", len(state.MoveHistory))
	}
	var notations []string
	for _, m := range state.MoveHistory {
		for _, p := range []*Ply{m.WhitePly, m.BlackPly} {
			if p != nil {
				notations = append(notations, p.Notation)
			}
		}
	}
	if want := []string{"e4", "d5", "exd5"}; !reflect.DeepEqual(notations, want) {
		t.Fatalf("notations %v, want %v", notations, want)
	}
	if !reflect.DeepEqual(state.CapturedPieces.Black, []chess.PieceType{chess.Pawn}) {
		t.Fatalf("captured %+v", state.CapturedPieces)
	}
	if state.Sound != "capture" || state.LastMove == nil || state.LastMove.To != "d5" {
		t.Fatalf("sound %q last move %+v", state.Sound, state.LastMove)
	}
	if state.Board.Board[3][3] == nil || state.Board.Board[3][3].Color != chess.White {
		t.Fatalf("expected a white pawn on d5 in the board view")
	}
}

func TestCastlingNotation(t *testing.T) {
	g := newSeatedGame(t)
	play(t, g, "e2e4", "e7e5", "g1f3", "b8c6", "f1c4", "g8f6", "e1g1")

	state := g.GetState()
	last := state.MoveHistory[len(state.MoveHistory)-1].WhitePly
	if last.Notation != "O-O" || last.CastleRookMove == nil {
		t.Fatalf("expected a castle ply, got %+v", last)
	}
	if state.Sound != "castle" {
		t.Fatalf("sound %q", state.Sound)
	}
	if state.Board.WhiteKingPosition != "g1" {
		t.Fatalf("white king on %s", state.Board.WhiteKingPosition)
	}
}

func TestKnightNotationNamesTheFile(t *testing.T) {
	g := newSeatedGame(t)
	play(t, g, "g1f3", "a7a6", "d2d4", "a6a5", "b1d2")

	state := g.GetState()
	if last := state.MoveHistory[len(state.MoveHistory)-1].WhitePly; last.Notation != "Nbd2" {
		t.Fatalf("notation %q, want Nbd2", last.Notation)
	}
}

func TestFoolsMate(t *testing.T) {
	g := newSeatedGame(t)
	play(t, g, "f2f3", "e7e5", "g2g4", "d8h4")

	state := g.GetState()
	if state.Status != chess.StatusCheckmate || !state.IsCheck {
		t.Fatalf("status %s", state.Status)
	}
	if state.Result == nil || state.Result.Reason != ReasonCheckmate || *state.Result.Winner != chess.Black {
		t.Fatalf("result %+v", state.Result)
	}
	if last := state.MoveHistory[1].BlackPly; last.Notation != "Qh4#" {
		t.Fatalf("notation %q", last.Notation)
	}
	if !g.IsOver() || g.PlayerToMove() != "" {
		t.Fatalf("game should be over")
	}
	err := g.MakeMove(alice, chess.MustParseSquare("a2"), chess.MustParseSquare("a3"))
	if !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestResign(t *testing.T) {
	g := newSeatedGame(t)
	if err := g.Resign("someone-else"); !errors.Is(err, ErrNotInGame) {
		t.Fatalf("expected ErrNotInGame, got %v", err)
	}
	if err := g.Resign(alice); err != nil {
		t.Fatalf("Resign: %v", err)
	}
	res := g.GetState().Result
	if res == nil || res.Reason != ReasonResignation || *res.Winner != chess.Black {
		t.Fatalf("result %+v", res)
	}
	if err := g.Resign(bob); !errors.Is(err, ErrGameOver) {
		t.Fatalf("expected ErrGameOver, got %v", err)
	}
}

func TestLegalMoveHints(t *testing.T) {
	g := newSeatedGame(t)

	got := g.LegalMoves(chess.MustParseSquare("g1"))
	if want := []string{"h3", "f3"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("g1 hints %v, want %v", got, want)
	}
	if got := g.LegalMoves(chess.MustParseSquare("g8")); len(got) != 0 {
		t.Fatalf("black pieces should have no hints on white's turn, got %v", got)
	}
	if got := g.LegalMoves(chess.MustParseSquare("e4")); got == nil || len(got) != 0 {
		t.Fatalf("empty square should give an empty list, got %#v", got)
	}
}

type fakeConn struct {
	mu       sync.Mutex
	messages chan ws.Message
	closed   bool
}

func newFakeConn() *fakeConn {
	return &fakeConn{messages: make(chan ws.Message, 16)}
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	c.messages <- v.(ws.Message)
	return nil
}

func (c *fakeConn) WriteMessage(int, []byte) error { return nil }

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) next(t *testing.T) GameState {
	t.Helper()
	select {
	case msg := <-c.messages:
		if msg.Type != ws.MessageTypeGameState {
			t.Fatalf("unexpected message type %s", msg.Type)
		}
		var state GameState
		if err := json.Unmarshal(msg.Payload, &state); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		return state
	case <-time.After(5 * time.Second):
		t.Fatalf("no state pushed")
	}
	return GameState{}
}

func TestBroadcastAfterMove(t *testing.T) {
	g := newSeatedGame(t)
	conn := newFakeConn()
	if err := g.RegisterConnection(bob, conn); err != nil {
		t.Fatalf("RegisterConnection: %v", err)
	}
	if state := conn.next(t); state.ToMove != chess.White {
		t.Fatalf("initial push ToMove = %s", state.ToMove)
	}

	play(t, g, "e2e4")
	if state := conn.next(t); state.LastMove == nil || state.LastMove.To != "e4" {
		t.Fatalf("expected e4 in pushed state, got %+v", state.LastMove)
	}

	dup := newFakeConn()
	if err := g.RegisterConnection(bob, dup); err != nil {
		t.Fatalf("duplicate registration: %v", err)
	}
	if !dup.closed || g.ConnectionCount() != 1 {
		t.Fatalf("duplicate connection should be closed and ignored")
	}

	g.UnregisterConnection(bob, dup)
	if g.ConnectionCount() != 1 {
		t.Fatalf("unregistering a stale connection removed the live one")
	}
	g.UnregisterConnection(bob, conn)
	if g.ConnectionCount() != 0 {
		t.Fatalf("connection not removed")
	}
}

func TestRegisterConnectionRequiresSeat(t *testing.T) {
	g := newSeatedGame(t)
	if err := g.RegisterConnection("someone-else", newFakeConn()); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}

	open := NewGame("game-2", ModeHuman)
	if err := open.RegisterConnection("someone-else", newFakeConn()); err != nil {
		t.Fatalf("spectating an open game: %v", err)
	}
}

func TestParseMode(t *testing.T) {
	for in, want := range map[string]Mode{"": ModeHuman, "human": ModeHuman, "ai": ModeAI} {
		if got, err := ParseMode(in); err != nil || got != want {
			t.Fatalf("ParseMode(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseMode("robot"); err == nil {
		t.Fatalf("expected an error for an unknown mode")
	}
}
