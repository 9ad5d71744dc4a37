package model

import (
	"encoding/json"
	"sync"

	"github.com/benbeisheim/alphabeta-chess/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/websocket/v2"
)

// Conn is the part of a websocket connection a game writes to.
// *websocket.Conn satisfies it.
type Conn interface {
	WriteJSON(v interface{}) error
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// GameConnections are the observers of one game, keyed by player id.
type GameConnections struct {
	connections map[string]Conn
	mu          sync.RWMutex

	// writeMu serialises broadcasts so that states reach clients in order.
	writeMu  sync.Mutex
	lastSent uint64
}

func NewGameConnections() *GameConnections {
	return &GameConnections{
		connections: make(map[string]Conn),
	}
}

// add registers conn for playerID, closing any connection it replaces.
func (gc *GameConnections) add(playerID string, conn Conn) {
	gc.mu.Lock()
	old, exists := gc.connections[playerID]
	gc.connections[playerID] = conn
	gc.mu.Unlock()

	if exists && old != conn {
		log.Infof("replacing connection for player %s", playerID)
		_ = old.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, "replaced by a newer connection"))
		_ = old.Close()
	}
}

// remove drops playerID only if conn is still its current connection.
func (gc *GameConnections) remove(playerID string, conn Conn) bool {
	gc.mu.Lock()
	defer gc.mu.Unlock()

	if current, exists := gc.connections[playerID]; exists && current == conn {
		delete(gc.connections, playerID)
		return true
	}
	return false
}

func (gc *GameConnections) Count() int {
	gc.mu.RLock()
	defer gc.mu.RUnlock()
	return len(gc.connections)
}

// broadcast sends state to every observer. States older than one already
// sent are dropped.
func (gc *GameConnections) broadcast(state GameState) {
	gc.writeMu.Lock()
	defer gc.writeMu.Unlock()

	if state.Version < gc.lastSent {
		log.Debugf("dropping stale state v%d for game %s", state.Version, state.ID)
		return
	}
	gc.lastSent = state.Version

	payload, err := json.Marshal(state)
	if err != nil {
		log.Errorf("failed to marshal state for game %s: %v", state.ID, err)
		return
	}
	msg := ws.Message{Type: ws.MessageTypeGameState, Payload: payload}

	gc.mu.RLock()
	active := make(map[string]Conn, len(gc.connections))
	for playerID, conn := range gc.connections {
		active[playerID] = conn
	}
	gc.mu.RUnlock()

	for playerID, conn := range active {
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("failed to send state to player %s: %v", playerID, err)
			gc.remove(playerID, conn)
		}
	}
}
