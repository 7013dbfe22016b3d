package controller

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/benbeisheim/starchess-backend/internal/ai"
	"github.com/benbeisheim/starchess-backend/internal/chess"
	"github.com/benbeisheim/starchess-backend/internal/model"
	"github.com/benbeisheim/starchess-backend/internal/service"
)

const (
	alice = "3b1f0c2a-5a6e-4c57-9d0e-7f4f0e1d2c3b"
	bob   = "8c9d0e1f-2a3b-4c5d-8e6f-7a8b9c0d1e2f"
	carol = "0f1e2d3c-4b5a-4968-8776-5a4b3c2d1e0f"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	gm := service.NewGameManager(ctx, service.ManagerConfig{Search: ai.Options{MaxDepth: 1}})
	app := fiber.New()
	RegisterRoutes(app, service.NewGameService(gm), nil)
	return app
}

func doJSON(t *testing.T, app *fiber.App, method, target, player, body string, out any) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	if player != "" {
		req.Header.Set("X-Player-ID", player)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s %s: decoding body: %v", method, target, err)
		}
	}
	return resp.StatusCode
}

func createGame(t *testing.T, app *fiber.App, player, body string) string {
	t.Helper()
	var created struct {
		GameID string `json:"game_id"`
	}
	if status := doJSON(t, app, http.MethodPost, "/api/game/create", player, body, &created); status != fiber.StatusCreated {
		t.Fatalf("create returned %d", status)
	}
	return created.GameID
}

func TestCreateAndPlayHumanGame(t *testing.T) {
	app := newTestApp(t)
	gameID := createGame(t, app, alice, `{"mode":"human","side":"white"}`)

	var joined struct {
		Color chess.Side `json:"color"`
	}
	if status := doJSON(t, app, http.MethodPost, "/api/game/join/"+gameID, bob, "", &joined); status != fiber.StatusOK {
		t.Fatalf("join returned %d", status)
	}
	if joined.Color != chess.Black {
		t.Fatalf("bob joined as %s", joined.Color)
	}

	var state model.GameState
	status := doJSON(t, app, http.MethodPost, "/api/game/"+gameID+"/move", alice, `{"from":"e2","to":"e4"}`, &state)
	if status != fiber.StatusOK {
		t.Fatalf("move returned %d", status)
	}
	if state.ToMove != chess.Black || state.LastMove == nil || state.LastMove.To != "e4" {
		t.Fatalf("unexpected state after move: %+v", state)
	}

	var fetched model.GameState
	if status := doJSON(t, app, http.MethodGet, "/api/game/"+gameID, carol, "", &fetched); status != fiber.StatusOK {
		t.Fatalf("get returned %d", status)
	}
	if fetched.Board.Placement != "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR" {
		t.Fatalf("placement %s", fetched.Board.Placement)
	}
}

func TestMoveErrors(t *testing.T) {
	app := newTestApp(t)
	gameID := createGame(t, app, alice, "")
	if status := doJSON(t, app, http.MethodPost, "/api/game/join/"+gameID, bob, "", nil); status != fiber.StatusOK {
		t.Fatalf("join returned %d", status)
	}

	tests := []struct {
		name   string
		gameID string
		player string
		body   string
		status int
	}{
		{"unknown game", "00000000-0000-0000-0000-000000000000", alice, `{"from":"e2","to":"e4"}`, fiber.StatusNotFound},
		{"not seated", gameID, carol, `{"from":"e2","to":"e4"}`, fiber.StatusForbidden},
		{"out of turn", gameID, bob, `{"from":"e7","to":"e5"}`, fiber.StatusConflict},
		{"illegal", gameID, alice, `{"from":"e2","to":"e5"}`, fiber.StatusUnprocessableEntity},
		{"bad square", gameID, alice, `{"from":"e9","to":"e4"}`, fiber.StatusBadRequest},
		{"bad body", gameID, alice, `{"from":`, fiber.StatusBadRequest},
		{"no player", gameID, "", `{"from":"e2","to":"e4"}`, fiber.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var body map[string]any
			status := doJSON(t, app, http.MethodPost, "/api/game/"+tt.gameID+"/move", tt.player, tt.body, &body)
			if status != tt.status {
				t.Fatalf("status %d, want %d (%v)", status, tt.status, body)
			}
			if _, ok := body["error"]; !ok {
				t.Fatalf("expected an error body, got %v", body)
			}
		})
	}
}

func TestCreateGameValidation(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body string
	}{
		{"unknown mode", `{"mode":"robot"}`},
		{"unknown side", `{"mode":"ai","side":"green"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if status := doJSON(t, app, http.MethodPost, "/api/game/create", alice, tt.body, nil); status != fiber.StatusBadRequest {
				t.Fatalf("status %d, want 400", status)
			}
		})
	}
}

func TestLegalMoveHints(t *testing.T) {
	app := newTestApp(t)
	gameID := createGame(t, app, alice, `{"mode":"ai","side":"white"}`)

	var hints struct {
		From       string   `json:"from"`
		LegalMoves []string `json:"legalMoves"`
	}
	if status := doJSON(t, app, http.MethodGet, "/api/game/"+gameID+"/moves/e2", alice, "", &hints); status != fiber.StatusOK {
		t.Fatalf("hints returned %d", status)
	}
	if hints.From != "e2" || strings.Join(hints.LegalMoves, ",") != "e3,e4" {
		t.Fatalf("hints %+v", hints)
	}

	if status := doJSON(t, app, http.MethodGet, "/api/game/"+gameID+"/moves/z9", alice, "", nil); status != fiber.StatusBadRequest {
		t.Fatalf("bad square returned %d", status)
	}
}

func TestJoinMatchmakingTwice(t *testing.T) {
	app := newTestApp(t)

	if status := doJSON(t, app, http.MethodPost, "/api/game/matchmaking/join", alice, "", nil); status != fiber.StatusOK {
		t.Fatalf("first join returned %d", status)
	}
	if status := doJSON(t, app, http.MethodPost, "/api/game/matchmaking/join", alice, "", nil); status != fiber.StatusConflict {
		t.Fatalf("second join returned %d", status)
	}
}

func TestResign(t *testing.T) {
	app := newTestApp(t)
	gameID := createGame(t, app, alice, `{"mode":"human","side":"black"}`)
	if status := doJSON(t, app, http.MethodPost, "/api/game/join/"+gameID, bob, "", nil); status != fiber.StatusOK {
		t.Fatalf("join returned %d", status)
	}

	if status := doJSON(t, app, http.MethodPost, "/api/game/"+gameID+"/resign", carol, "", nil); status != fiber.StatusForbidden {
		t.Fatalf("outsider resign returned %d", status)
	}

	var state model.GameState
	if status := doJSON(t, app, http.MethodPost, "/api/game/"+gameID+"/resign", alice, "", &state); status != fiber.StatusOK {
		t.Fatalf("resign returned %d", status)
	}
	if state.Result == nil || state.Result.Reason != model.ReasonResignation {
		t.Fatalf("result %+v", state.Result)
	}
	if state.Result.Winner == nil || *state.Result.Winner != chess.White {
		t.Fatalf("winner %v, want white", state.Result.Winner)
	}

	if status := doJSON(t, app, http.MethodPost, "/api/game/"+gameID+"/resign", bob, "", nil); status != fiber.StatusConflict {
		t.Fatalf("second resign returned %d", status)
	}
}
