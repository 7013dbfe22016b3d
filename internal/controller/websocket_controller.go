package controller

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"

	"github.com/benbeisheim/starchess-backend/internal/model"
	"github.com/benbeisheim/starchess-backend/internal/service"
	"github.com/benbeisheim/starchess-backend/internal/ws"
)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// lockedConn serialises writes; game broadcasts and replies to the
// reader run on different goroutines.
type lockedConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (l *lockedConn) WriteJSON(v interface{}) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Conn.WriteJSON(v)
}

func (l *lockedConn) WriteMessage(messageType int, data []byte) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.Conn.WriteMessage(messageType, data)
}

// socket is the part of a websocket connection the handlers use.
type socket interface {
	model.Conn
	ReadMessage() (messageType int, p []byte, err error)
}

// HandleConnection is called when a new WebSocket connection is established
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	wsc.serveGame(c.Params("gameId"), c.Locals("playerID").(string), &lockedConn{Conn: c})
}

// serveGame subscribes conn to the game and plays the moves it sends until
// the connection drops.
func (wsc *WebSocketController) serveGame(gameID, playerID string, conn socket) {
	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
		log.Warnf("game %s: failed to register connection for %s: %v", gameID, playerID, err)
		wsc.sendError(conn, err)
		conn.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, conn)

	for {
		messageType, message, err := conn.ReadMessage()
		if err != nil {
			log.Debugf("game %s: read from %s ended: %v", gameID, playerID, err)
			return
		}
		if messageType != websocket.TextMessage {
			continue
		}

		var msg ws.Message
		if err := json.Unmarshal(message, &msg); err != nil {
			wsc.sendError(conn, fmt.Errorf("malformed message: %w", err))
			continue
		}
		if err := wsc.handleMessage(gameID, playerID, msg); err != nil {
			log.Debugf("game %s: message from %s rejected: %v", gameID, playerID, err)
			wsc.sendError(conn, err)
		}
	}
}

func (wsc *WebSocketController) handleMessage(gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.MoveRequest
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return err
		}
		return wsc.gameService.HandleMove(gameID, playerID, move)
	case ws.MessageTypeResign:
		return wsc.gameService.Resign(gameID, playerID)
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking holds the connection open until the player is paired,
// then sends the match and returns. Closing the socket leaves the queue.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	wsc.serveMatchmaking(c.Locals("playerID").(string), &lockedConn{Conn: c})
}

func (wsc *WebSocketController) serveMatchmaking(playerID string, c socket) {
	events := make(chan model.MatchFoundEvent, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, events)
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, events)

	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil {
		log.Debugf("matchmaking: %s: %v", playerID, err)
	}

	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case event, ok := <-events:
		if !ok {
			return
		}
		msg, err := ws.NewMessage(ws.MessageTypeMatchFound, event)
		if err != nil {
			log.Errorf("matchmaking: encoding event for %s: %v", playerID, err)
			return
		}
		if err := c.WriteJSON(msg); err != nil {
			log.Warnf("matchmaking: failed to notify %s: %v", playerID, err)
		}
	case <-closed:
		wsc.gameService.UnregisterMatchmakingChannel(playerID, events)
		wsc.gameService.LeaveMatchmaking(playerID)
	}
}

func (wsc *WebSocketController) sendError(c model.Conn, err error) {
	msg, encErr := ws.NewMessage(ws.MessageTypeError, ws.ErrorPayload{Error: err.Error()})
	if encErr != nil {
		return
	}
	if writeErr := c.WriteJSON(msg); writeErr != nil {
		log.Debugf("failed to send error: %v", writeErr)
	}
}
