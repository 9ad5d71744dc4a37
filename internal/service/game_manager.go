package service

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/benbeisheim/alphabeta-chess/internal/model"
	"github.com/gofiber/fiber/v2/log"
	"github.com/google/uuid"
)

// GameManager owns every running game and the matchmaking queue.
type GameManager struct {
	games            map[string]*model.Game
	queue            *model.Queue
	matchingChannels map[string]chan string
	matches          map[string]model.MatchFoundEvent
	mu               sync.RWMutex

	done      chan struct{}
	closeOnce sync.Once
}

// NewGameManager starts the matchmaking loop, which pairs waiting players
// every interval (one second if interval is not positive).
func NewGameManager(interval time.Duration) *GameManager {
	if interval <= 0 {
		interval = time.Second
	}
	gm := &GameManager{
		games:            make(map[string]*model.Game),
		queue:            model.NewQueue(),
		matchingChannels: make(map[string]chan string),
		matches:          make(map[string]model.MatchFoundEvent),
		done:             make(chan struct{}),
	}

	go gm.processMatchmaking(interval)

	return gm
}

// Close stops the matchmaking loop.
func (gm *GameManager) Close() {
	gm.closeOnce.Do(func() { close(gm.done) })
}

func (gm *GameManager) processMatchmaking(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-gm.done:
			return
		case <-ticker.C:
			for gm.matchOnce() {
			}
		}
	}
}

// matchOnce pairs the two longest waiting players into a new human game.
// It reports whether a pair was made.
func (gm *GameManager) matchOnce() bool {
	player1, player2, ok := gm.queue.GetNextPair()
	if !ok {
		return false
	}

	game, err := gm.CreateGame(model.GameOptions{Mode: model.ModeHumanVsHuman})
	if err != nil {
		log.Errorf("failed to create matchmaking game: %v", err)
		return false
	}

	for _, p := range []model.Player{player1, player2} {
		color, err := game.AddPlayer(p.ID)
		if err != nil {
			log.Errorf("failed to seat %s in game %s: %v", p.ID, game.ID, err)
			continue
		}
		event := model.MatchFoundEvent{GameID: game.ID, Color: color.String()}
		if !gm.notifyMatch(p.ID, event) {
			log.Infof("player %s has no matchmaking channel; match kept for polling", p.ID)
		}
	}
	log.Infof("matched %s and %s in game %s", player1.ID, player2.ID, game.ID)
	return true
}

// notifyMatch records the event and pushes it to the player's channel, if
// one is registered.
func (gm *GameManager) notifyMatch(playerID string, event model.MatchFoundEvent) bool {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	gm.matches[playerID] = event
	ch, ok := gm.matchingChannels[playerID]
	if !ok {
		return false
	}
	payload, err := json.Marshal(event)
	if err != nil {
		log.Errorf("failed to marshal match event: %v", err)
		return false
	}

	select {
	case ch <- string(payload):
		delete(gm.matchingChannels, playerID)
		close(ch)
		return true
	default:
		log.Warnf("matchmaking channel for player %s is full", playerID)
		return false
	}
}

func (gm *GameManager) RegisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if existing, exists := gm.matchingChannels[playerID]; exists {
		delete(gm.matchingChannels, playerID)
		close(existing)
	}
	gm.matchingChannels[playerID] = ch
}

// UnregisterMatchmakingChannel forgets ch if it is still the player's
// channel. The channel is not closed here.
func (gm *GameManager) UnregisterMatchmakingChannel(playerID string, ch chan string) {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if current, ok := gm.matchingChannels[playerID]; ok && current == ch {
		delete(gm.matchingChannels, playerID)
	}
}

func (gm *GameManager) JoinMatchmaking(playerID string) error {
	gm.mu.Lock()
	delete(gm.matches, playerID)
	gm.mu.Unlock()

	if err := gm.queue.AddPlayer(model.Player{ID: playerID}); err != nil {
		return fmt.Errorf("join matchmaking: %w", err)
	}
	log.Infof("player %s joined matchmaking (%d waiting)", playerID, gm.queue.Size())
	return nil
}

func (gm *GameManager) LeaveMatchmaking(playerID string) bool {
	return gm.queue.RemovePlayer(playerID)
}

// MatchStatus returns the latest match made for playerID.
func (gm *GameManager) MatchStatus(playerID string) (model.MatchFoundEvent, bool) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	event, ok := gm.matches[playerID]
	return event, ok
}

// CreateGame registers a new game under a fresh UUID.
func (gm *GameManager) CreateGame(opts model.GameOptions) (*model.Game, error) {
	game, err := model.NewGame(uuid.New().String(), opts)
	if err != nil {
		return nil, err
	}
	if err := gm.AddGame(game); err != nil {
		return nil, err
	}
	return game, nil
}

func (gm *GameManager) AddGame(game *model.Game) error {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if _, exists := gm.games[game.ID]; exists {
		return fmt.Errorf("%s: %w", game.ID, model.ErrGameExists)
	}
	gm.games[game.ID] = game
	return nil
}

func (gm *GameManager) GetGame(gameID string) (*model.Game, error) {
	gm.mu.RLock()
	defer gm.mu.RUnlock()

	game, exists := gm.games[gameID]
	if !exists {
		return nil, fmt.Errorf("%s: %w", gameID, model.ErrGameNotFound)
	}
	return game, nil
}

func (gm *GameManager) Count() int {
	gm.mu.RLock()
	defer gm.mu.RUnlock()
	return len(gm.games)
}
