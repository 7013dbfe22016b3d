package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"

	"github.com/benbeisheim/starchess-backend/internal/ai"
	"github.com/benbeisheim/starchess-backend/internal/chess"
	"github.com/benbeisheim/starchess-backend/internal/model"
)

const DefaultMatchInterval = time.Second

type ManagerConfig struct {
	Search        ai.Options
	MatchInterval time.Duration
}

// aiSession is the search worker serving one AI game.
type aiSession struct {
	ctx    context.Context
	cancel context.CancelFunc
	worker *ai.Worker
}

type GameManager struct {
	ctx              context.Context
	searcher         *ai.Searcher
	games            map[string]*model.Game
	sessions         map[string]*aiSession
	queue            *model.Queue
	matchingChannels map[string]chan model.MatchFoundEvent
	mu               sync.RWMutex
}

// NewGameManager starts the matchmaking loop. Cancelling ctx stops it along
// with every AI worker.
func NewGameManager(ctx context.Context, cfg ManagerConfig) *GameManager {
	if cfg.MatchInterval <= 0 {
		cfg.MatchInterval = DefaultMatchInterval
	}
	gm := &GameManager{
		ctx:              ctx,
		searcher:         ai.NewSearcher(cfg.Search),
		games:            make(map[string]*model.Game),
		sessions:         make(map[string]*aiSession),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan model.MatchFoundEvent),
	}

	go gm.processMatchmaking(cfg.MatchInterval)

	return gm
}

// RegisterMatchmakingChannel sets where the player's match event is sent. The
// manager closes the channel after sending, or when it is replaced.
func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets ch if it is still the player's channel.
// The channel is not closed.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan model.MatchFoundEvent) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, exists := gm.matchingChannels[playerID]; exists && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) processMatchmaking(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.ctx.Done():
			return
		case <-ticker.C:
			gm.matchPlayers()
		}
	}
}

// matchPlayers pairs queued players whose matchmaking socket is still open.
// Players without one stay queued until they connect or leave.
func (gm *GameManager) matchPlayers() {
	for {
		gm.mu.Lock()
		first, second, ok := gm.queue.PopPair(gm.hasMatchmakingChannel)
		if !ok {
			gm.mu.Unlock()
			return
		}

		game := model.NewGame(uuid.NewString(), model.ModeHuman)
		p1Color, err := game.AddPlayer(first.Player.ID)
		if err != nil {
			gm.mu.Unlock()
			log.Errorf("matchmaking: adding %s: %v", first.Player.ID, err)
			continue
		}
		p2Color, err := game.AddPlayer(second.Player.ID)
		if err != nil {
			gm.mu.Unlock()
			log.Errorf("matchmaking: adding %s: %v", second.Player.ID, err)
			continue
		}

		gm.games[game.ID] = game
		gm.notifyMatch(first.Player.ID, model.MatchFoundEvent{GameID: game.ID, Color: p1Color})
		gm.notifyMatch(second.Player.ID, model.MatchFoundEvent{GameID: game.ID, Color: p2Color})
		gm.mu.Unlock()

		log.Infof("matchmaking: paired %s (waited %s) and %s (waited %s) in game %s",
			first.Player.ID, time.Since(first.JoinedAt).Round(time.Millisecond),
			second.Player.ID, time.Since(second.JoinedAt).Round(time.Millisecond),
			game.ID)
	}
}

// hasMatchmakingChannel must be called with gm.mu held.
func (gm *GameManager) hasMatchmakingChannel(player model.Player) bool {
	_, ok := gm.matchingChannels[player.ID]
	return ok
}

// notifyMatch must be called with gm.mu held.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) {
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		log.Warnf("matchmaking: %s has no open channel for game %s", playerID, event.GameID)
		return
	}
	delete(gm.matchingChannels, playerID)
	select {
	case ch <- event:
	default:
		log.Warnf("matchmaking: failed to notify %s of game %s", playerID, event.GameID)
	}
	close(ch)
}

// CreateGame starts a game with the player on the given side. In AI mode the
// other side is taken by a search worker, which moves at once if it has
// White.
func (gm *GameManager) CreateGame(playerID string, mode model.Mode, side chess.Side) (*model.Game, error) {
	game := model.NewGame(uuid.NewString(), mode)
	if err := game.AddPlayerAs(playerID, side); err != nil {
		return nil, err
	}

	gm.mu.Lock()
	gm.games[game.ID] = game
	if mode == model.ModeAI {
		if err := game.AddPlayerAs(model.AIPlayerID, side.Opposite()); err != nil {
			gm.mu.Unlock()
			return nil, err
		}
		ctx, cancel := context.WithCancel(gm.ctx)
		gm.sessions[game.ID] = &aiSession{
			ctx:    ctx,
			cancel: cancel,
			worker: ai.NewWorker(ctx, gm.searcher),
		}
	}
	gm.mu.Unlock()

	log.Infof("game %s created (%s) for %s as %s", game.ID, mode, playerID, side)
	gm.driveAI(game)
	return game, nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrGameNotFound, gameID)
	}
	return game, nil
}

func (gm *GameManager) AddPlayerToGame(gameID string, playerID string) (chess.Side, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return 0, err
	}
	return game.AddPlayer(playerID)
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	return gm.queue.AddPlayer(model.Player{ID: playerID})
}

func (gm *GameManager) LeaveMatchmaking(playerID string) {
	gm.queue.RemovePlayer(playerID)
}

func (gm *GameManager) GetGameState(gameID string) (model.GameState, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gm *GameManager) LegalMoves(gameID string, from chess.Position) ([]string, error) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(from), nil
}

func (gm *GameManager) MakeMove(gameID string, playerID string, from, to chess.Position) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.MakeMove(playerID, from, to); err != nil {
		return err
	}
	gm.afterMove(game)
	return nil
}

func (gm *GameManager) Resign(gameID string, playerID string) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.Resign(playerID); err != nil {
		return err
	}
	gm.afterMove(game)
	return nil
}

func (gm *GameManager) afterMove(game *model.Game) {
	if game.IsOver() {
		gm.endSession(game.ID)
		log.Infof("game %s over: %+v", game.ID, *game.GetState().Result)
		return
	}
	gm.driveAI(game)
}

// driveAI hands the board to the game's worker when the AI is to move and
// plays the result once it is in.
func (gm *GameManager) driveAI(game *model.Game) {
	gm.mu.RLock()
	session := gm.sessions[game.ID]
	gm.mu.RUnlock()

	if session == nil || game.PlayerToMove() != model.AIPlayerID {
		return
	}
	if err := session.worker.Submit(game.Board()); err != nil {
		log.Warnf("game %s: could not start search: %v", game.ID, err)
		return
	}
	go gm.awaitAIMove(session, game)
}

func (gm *GameManager) awaitAIMove(session *aiSession, game *model.Game) {
	move, err := session.worker.Await(session.ctx)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			log.Errorf("game %s: search failed: %v", game.ID, err)
		}
		return
	}
	if err := game.MakeMove(model.AIPlayerID, move.From, move.To); err != nil {
		if errors.Is(err, model.ErrGameOver) {
			return
		}
		log.Errorf("game %s: AI move %s rejected: %v", game.ID, move, err)
		return
	}
	gm.afterMove(game)
}

func (gm *GameManager) endSession(gameID string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if session, ok := gm.sessions[gameID]; ok {
		session.cancel()
		delete(gm.sessions, gameID)
	}
}

func (gm *GameManager) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gm *GameManager) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gm.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}
