package model

import (
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/starchess-backend/internal/chess"
	"github.com/benbeisheim/starchess-backend/internal/ws"
)

type Mode string

const (
	ModeHuman Mode = "human"
	ModeAI    Mode = "ai"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeHuman:
		return ModeHuman, nil
	case ModeAI:
		return ModeAI, nil
	}
	return "", fmt.Errorf("unknown game mode %q", s)
}

// Conn is the part of a websocket connection a game writes to.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// The connections for a specific game
type GameConnections struct {
	connections map[string]Conn // playerID -> connection
	mu          sync.RWMutex
	// writeMu serialises broadcasts so every connection sees states in order.
	writeMu sync.Mutex
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// Game is one session: the board, who plays which side, the history and the
// observers to push state to.
type Game struct {
	ID   string
	Mode Mode

	mu          sync.Mutex
	board       *chess.Chessboard
	players     map[chess.Side]string
	history     []Move
	captured    CapturedPieces
	lastMove    *SimpleMove
	status      chess.Status
	result      *Result
	sound       string
	clocks      map[chess.Side]*Clock
	connections *GameConnections
}

type GameState struct {
	ID             string         `json:"id"`
	Mode           Mode           `json:"mode"`
	Sound          string         `json:"sound"`
	Board          *BoardState    `json:"boardState"`
	ToMove         chess.Side     `json:"toMove"`
	MoveHistory    []Move         `json:"moveHistory"`
	CapturedPieces CapturedPieces `json:"capturedPieces"`
	IsCheck        bool           `json:"isCheck"`
	Status         chess.Status   `json:"status"`
	Result         *Result        `json:"result"`
	Players        Players        `json:"players"`
	LastMove       *SimpleMove    `json:"lastMove"`
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

// CapturedPieces lists the pieces each side has lost.
type CapturedPieces struct {
	White []chess.PieceType `json:"white"`
	Black []chess.PieceType `json:"black"`
}

type Result struct {
	Reason string `json:"reason"`
	// Winner is nil for a stalemate.
	Winner *chess.Side `json:"winner"`
}

const (
	ReasonCheckmate   = "checkmate"
	ReasonStalemate   = "stalemate"
	ReasonResignation = "resignation"
)

func NewGame(id string, mode Mode) *Game {
	return &Game{
		ID:      id,
		Mode:    mode,
		board:   chess.NewStandardChessboard(),
		players: make(map[chess.Side]string),
		captured: CapturedPieces{
			White: make([]chess.PieceType, 0),
			Black: make([]chess.PieceType, 0),
		},
		status: chess.StatusOngoing,
		clocks: map[chess.Side]*Clock{
			chess.White: NewClock(),
			chess.Black: NewClock(),
		},
		connections: NewGameConnections(),
	}
}

// AddPlayer seats a player on the first free side, White first. A player
// already seated gets its side back.
func (g *Game) AddPlayer(playerID string) (chess.Side, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if side, ok := g.sideOf(playerID); ok {
		return side, nil
	}
	for _, side := range []chess.Side{chess.White, chess.Black} {
		if _, taken := g.players[side]; !taken {
			g.seat(playerID, side)
			return side, nil
		}
	}
	return 0, ErrGameFull
}

// AddPlayerAs seats a player on a given side.
func (g *Game) AddPlayerAs(playerID string, side chess.Side) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if id, taken := g.players[side]; taken && id != playerID {
		return fmt.Errorf("%w: %s", ErrSideTaken, side)
	}
	g.seat(playerID, side)
	return nil
}

func (g *Game) seat(playerID string, side chess.Side) {
	g.players[side] = playerID
	if len(g.players) == 2 {
		g.clocks[g.board.MovingSide()].Start()
	}
}

func (g *Game) sideOf(playerID string) (chess.Side, bool) {
	for side, id := range g.players {
		if id == playerID {
			return side, true
		}
	}
	return 0, false
}

// HasOpenSeat reports whether a side is still waiting for a player.
func (g *Game) HasOpenSeat() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.players) < 2
}

// PlayerToMove returns the id of the player whose turn it is, or "" while
// the seat is empty or the game is over.
func (g *Game) PlayerToMove() string {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.result != nil {
		return ""
	}
	return g.players[g.board.MovingSide()]
}

func (g *Game) IsOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.result != nil
}

// Board returns a copy of the current board.
func (g *Game) Board() *chess.Chessboard {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.board.Clone()
}

// LegalMoves lists the squares the piece on from may move to.
func (g *Game) LegalMoves(from chess.Position) []string {
	g.mu.Lock()
	defer g.mu.Unlock()

	moves := make([]string, 0)
	piece, ok := g.board.PieceAt(from)
	if !ok || g.result != nil || piece.Side != g.board.MovingSide() {
		return moves
	}
	for _, to := range g.board.SafeMoves(piece.ID).Positions() {
		moves = append(moves, to.String())
	}
	return moves
}

// MakeMove plays a move for the given player after checking turn, ownership
// and safety.
func (g *Game) MakeMove(playerID string, from, to chess.Position) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.result != nil {
		return ErrGameOver
	}
	side, ok := g.sideOf(playerID)
	if !ok {
		return ErrNotInGame
	}
	if side != g.board.MovingSide() {
		return ErrNotYourTurn
	}
	piece, ok := g.board.PieceAt(from)
	if !ok || piece.Side != side {
		return fmt.Errorf("%w: %s", ErrNoPiece, from)
	}
	if !to.Valid() || !g.board.SafeMoves(piece.ID).Value(to) {
		return fmt.Errorf("%w: %s%s", ErrIllegalMove, from, to)
	}

	g.executeMove(piece, to)
	log.Debugf("game %s: %s played %s", g.ID, side, g.lastPly().Notation)

	go g.broadcastState()
	return nil
}

func (g *Game) executeMove(piece chess.Piece, to chess.Position) {
	mover := g.board.MovingSide()
	g.clocks[mover].Stop()

	origin := disambiguation(g.board, piece, to)
	rec := g.board.MoveTo(piece.ID, to)
	g.board.ChangeMovingSide()
	next := g.board.MovingSide()
	g.status = g.board.Status(next)

	ply := newPly(rec, g.status, origin)
	if mover == chess.White {
		g.history = append(g.history, Move{WhitePly: &ply})
	} else if n := len(g.history); n > 0 && g.history[n-1].BlackPly == nil {
		g.history[n-1].BlackPly = &ply
	} else {
		g.history = append(g.history, Move{BlackPly: &ply})
	}

	g.sound = "move"
	if rec.Captured != nil {
		g.sound = "capture"
		if rec.Captured.Side == chess.White {
			g.captured.White = append(g.captured.White, rec.Captured.Type)
		} else {
			g.captured.Black = append(g.captured.Black, rec.Captured.Type)
		}
	} else if rec.Castle != nil {
		g.sound = "castle"
	}
	g.lastMove = &SimpleMove{From: rec.From.String(), To: rec.To.String()}

	switch g.status {
	case chess.StatusCheckmate:
		g.sound = "check"
		g.result = &Result{Reason: ReasonCheckmate, Winner: &mover}
	case chess.StatusStalemate:
		g.result = &Result{Reason: ReasonStalemate}
	case chess.StatusCheck:
		g.sound = "check"
	}
	if g.result == nil {
		g.clocks[next].Start()
	}
}

func (g *Game) lastPly() *Ply {
	last := g.history[len(g.history)-1]
	if last.BlackPly != nil {
		return last.BlackPly
	}
	return last.WhitePly
}

// Resign ends the game in favour of the player's opponent.
func (g *Game) Resign(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.result != nil {
		return ErrGameOver
	}
	side, ok := g.sideOf(playerID)
	if !ok {
		return ErrNotInGame
	}
	winner := side.Opposite()
	g.result = &Result{Reason: ReasonResignation, Winner: &winner}
	g.clocks[chess.White].Stop()
	g.clocks[chess.Black].Stop()

	go g.broadcastState()
	return nil
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()

	history := make([]Move, len(g.history))
	copy(history, g.history)

	return GameState{
		ID:          g.ID,
		Mode:        g.Mode,
		Sound:       g.sound,
		Board:       newBoardState(g.board),
		ToMove:      g.board.MovingSide(),
		MoveHistory: history,
		CapturedPieces: CapturedPieces{
			White: append([]chess.PieceType{}, g.captured.White...),
			Black: append([]chess.PieceType{}, g.captured.Black...),
		},
		IsCheck:  g.status == chess.StatusCheck || g.status == chess.StatusCheckmate,
		Status:   g.status,
		Result:   g.result,
		Players:  Players{White: g.clientPlayer(chess.White), Black: g.clientPlayer(chess.Black)},
		LastMove: g.lastMove,
	}
}

func (g *Game) clientPlayer(side chess.Side) ClientPlayer {
	id := g.players[side]
	return ClientPlayer{
		ID:       id,
		TimeUsed: int(g.clocks[side].Used().Milliseconds() / 100),
		IsAI:     id == AIPlayerID,
	}
}

// RegisterConnection subscribes a connection to state pushes. Seated players
// may always connect; others only while a seat is open.
func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	_, seated := g.sideOf(playerID)
	isAuthorized := seated || len(g.players) < 2
	g.mu.Unlock()

	if !isAuthorized {
		return ErrNotAuthorized
	}

	g.connections.mu.Lock()
	if _, exists := g.connections.connections[playerID]; exists {
		g.connections.mu.Unlock()
		_ = conn.WriteMessage(
			websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "Connection already exists"),
		)
		_ = conn.Close()
		log.Debugf("game %s: rejected duplicate connection for %s", g.ID, playerID)
		return nil
	}
	g.connections.connections[playerID] = conn
	g.connections.mu.Unlock()
	log.Debugf("game %s: registered connection for %s", g.ID, playerID)

	go g.broadcastState()
	return nil
}

// UnregisterConnection drops the player's connection if it is still conn.
func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	g.connections.mu.Lock()
	defer g.connections.mu.Unlock()

	if current, exists := g.connections.connections[playerID]; exists && current == conn {
		delete(g.connections.connections, playerID)
		log.Debugf("game %s: unregistered connection for %s", g.ID, playerID)
	}
}

func (g *Game) ConnectionCount() int {
	g.connections.mu.RLock()
	defer g.connections.mu.RUnlock()
	return len(g.connections.connections)
}

func (g *Game) broadcastState() {
	g.connections.writeMu.Lock()
	defer g.connections.writeMu.Unlock()

	g.connections.mu.RLock()
	active := make(map[string]Conn, len(g.connections.connections))
	for playerID, conn := range g.connections.connections {
		active[playerID] = conn
	}
	g.connections.mu.RUnlock()
	if len(active) == 0 {
		return
	}

	msg, err := ws.NewMessage(ws.MessageTypeGameState, g.GetState())
	if err != nil {
		log.Errorf("game %s: failed to encode state: %v", g.ID, err)
		return
	}
	for playerID, conn := range active {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("game %s: failed to send state to %s: %v", g.ID, playerID, err)
			g.UnregisterConnection(playerID, conn)
		}
	}
}
