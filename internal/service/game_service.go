package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benbeisheim/alphabeta-chess/internal/engine"
	"github.com/benbeisheim/alphabeta-chess/internal/model"
	"github.com/gofiber/fiber/v2/log"
)

var (
	// ErrAIBusy means the AI queue is full.
	ErrAIBusy         = errors.New("engine is busy, try again")
	ErrInvalidOptions = errors.New("invalid game options")
)

// CreateGameOptions is the body of a create request. Depths of zero use the
// service default.
type CreateGameOptions struct {
	Mode               string `json:"mode"`
	WhiteDepth         int    `json:"whiteDepth"`
	BlackDepth         int    `json:"blackDepth"`
	FEN                string `json:"fen,omitempty"`
	TimeControlSeconds int    `json:"timeControlSeconds,omitempty"`
}

type GameService struct {
	gameManager  *GameManager
	ai           *AIPool
	defaultDepth int
}

func NewGameService(gameManager *GameManager, ai *AIPool, defaultDepth int) *GameService {
	return &GameService{
		gameManager:  gameManager,
		ai:           ai,
		defaultDepth: model.ClampDepth(defaultDepth),
	}
}

// HandleAIResult is the AI pool's result handler.
func HandleAIResult(res AIResult) {
	switch {
	case res.Err == nil:
		log.Debugf("game %s: engine played %s", res.GameID, res.Move.Move.UCI())
	case errors.Is(res.Err, model.ErrStaleSearch), errors.Is(res.Err, model.ErrGameOver),
		errors.Is(res.Err, model.ErrNotAITurn):
		log.Debugf("game %s: engine move dropped: %v", res.GameID, res.Err)
	default:
		log.Warnf("game %s: engine move failed: %v", res.GameID, res.Err)
	}
}

func (gs *GameService) CreateGame(opts CreateGameOptions) (string, error) {
	mode, err := model.ParseMode(opts.Mode)
	if err != nil {
		return "", err
	}
	if opts.TimeControlSeconds < 0 {
		return "", fmt.Errorf("negative time control: %w", ErrInvalidOptions)
	}

	game, err := gs.gameManager.CreateGame(model.GameOptions{
		Mode:        mode,
		WhiteDepth:  gs.depthOrDefault(opts.WhiteDepth),
		BlackDepth:  gs.depthOrDefault(opts.BlackDepth),
		FEN:         opts.FEN,
		TimeControl: time.Duration(opts.TimeControlSeconds) * time.Second,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create game: %w", err)
	}
	log.Infof("created %s game %s", mode, game.ID)

	gs.scheduleAI(game)
	return game.ID, nil
}

func (gs *GameService) depthOrDefault(d int) int {
	if d == 0 {
		return gs.defaultDepth
	}
	return d
}

func (gs *GameService) JoinGame(gameID string, playerID string) (engine.Color, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return engine.White, err
	}
	return game.AddPlayer(playerID)
}

func (gs *GameService) GetGameState(gameID string) (model.GameState, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.GameState{}, err
	}
	return game.GetState(), nil
}

func (gs *GameService) LegalMoves(gameID string) ([]model.LegalMove, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	return game.LegalMoves(), nil
}

// HandleMove plays a human move and, in a game against the engine, queues
// the engine's reply.
func (gs *GameService) HandleMove(gameID string, playerID string, move model.WSMove) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.MakeMove(playerID, move); err != nil {
		return err
	}
	gs.scheduleAI(game)
	return nil
}

func (gs *GameService) HandleUndo(gameID string, playerID string) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	if err := game.Undo(playerID); err != nil {
		return err
	}
	gs.scheduleAI(game)
	return nil
}

// RequestAIMove runs one engine move on the pool and waits for it.
// Cancelling ctx stops the search; nothing is played then.
func (gs *GameService) RequestAIMove(ctx context.Context, gameID string) (model.AIMove, error) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return model.AIMove{}, err
	}

	reply := make(chan AIResult, 1)
	if !gs.ai.Submit(AIJob{Game: game, Ctx: ctx, Reply: reply}) {
		return model.AIMove{}, ErrAIBusy
	}
	select {
	case res := <-reply:
		return res.Move, res.Err
	case <-ctx.Done():
		return model.AIMove{}, ctx.Err()
	}
}

// scheduleAI queues an engine move when the engine is to move in a game
// against a human. Engine-only games advance on request.
func (gs *GameService) scheduleAI(game *model.Game) {
	if game.Mode() == model.ModeAIVsAI || !game.IsAITurn() {
		return
	}
	if !gs.ai.Submit(AIJob{Game: game}) {
		log.Warnf("game %s: engine queue full, move not scheduled", game.ID)
	}
}

func (gs *GameService) JoinMatchmaking(playerID string) error {
	return gs.gameManager.JoinMatchmaking(playerID)
}

func (gs *GameService) LeaveMatchmaking(playerID string) bool {
	return gs.gameManager.LeaveMatchmaking(playerID)
}

func (gs *GameService) MatchStatus(playerID string) (model.MatchFoundEvent, bool) {
	return gs.gameManager.MatchStatus(playerID)
}

func (gs *GameService) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.RegisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gs.gameManager.UnregisterMatchmakingChannel(playerID, ch)
}

func (gs *GameService) RegisterConnection(gameID string, playerID string, conn model.Conn) error {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return err
	}
	return game.RegisterConnection(playerID, conn)
}

func (gs *GameService) UnregisterConnection(gameID string, playerID string, conn model.Conn) {
	game, err := gs.gameManager.GetGame(gameID)
	if err != nil {
		return
	}
	game.UnregisterConnection(playerID, conn)
}

func (gs *GameService) GameCount() int {
	return gs.gameManager.Count()
}
