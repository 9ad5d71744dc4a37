package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/benbeisheim/alphabeta-chess/internal/middleware"
	"github.com/benbeisheim/alphabeta-chess/internal/model"
	"github.com/benbeisheim/alphabeta-chess/internal/service"
	"github.com/benbeisheim/alphabeta-chess/internal/ws"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/gofiber/websocket/v2"
)

// safeConn serialises writes on a websocket connection. Game broadcasts and
// direct replies to the client share the same socket.
type safeConn struct {
	*websocket.Conn
	mu sync.Mutex
}

func (c *safeConn) WriteJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteJSON(v)
}

func (c *safeConn) WriteMessage(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Conn.WriteMessage(messageType, data)
}

var _ model.Conn = (*safeConn)(nil)

type WebSocketController struct {
	gameService *service.GameService
}

func NewWebSocketController(gameService *service.GameService) *WebSocketController {
	return &WebSocketController{
		gameService: gameService,
	}
}

// HandleConnection serves /ws/game/:gameId. The connection receives every
// state of the game and may send moves, undos and engine move requests.
func (wsc *WebSocketController) HandleConnection(c *websocket.Conn) {
	gameID := utils.CopyString(c.Params("gameId"))
	playerID, _ := c.Locals(middleware.PlayerIDKey).(string)
	conn := &safeConn{Conn: c}

	if err := wsc.gameService.RegisterConnection(gameID, playerID, conn); err != nil {
		log.Warnf("failed to register connection for player %s in game %s: %v", playerID, gameID, err)
		wsc.sendError(conn, err)
		conn.Close()
		return
	}
	defer wsc.gameService.UnregisterConnection(gameID, playerID, conn)

	// Cancelled when the socket goes away so a pending engine search stops
	// without playing.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		messageType, message, err := c.ReadMessage()
		if err != nil {
			log.Debugf("read error for player %s in game %s: %v", playerID, gameID, err)
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
		if err := wsc.handleMessage(ctx, conn, gameID, playerID, msg); err != nil {
			log.Debugf("player %s in game %s: %s failed: %v", playerID, gameID, msg.Type, err)
			wsc.sendError(conn, err)
		}
	}
}

func (wsc *WebSocketController) handleMessage(ctx context.Context, conn *safeConn, gameID, playerID string, msg ws.Message) error {
	switch msg.Type {
	case ws.MessageTypeMove:
		var move model.WSMove
		if err := json.Unmarshal(msg.Payload, &move); err != nil {
			return fmt.Errorf("malformed move: %w", err)
		}
		return wsc.gameService.HandleMove(gameID, playerID, move)

	case ws.MessageTypeUndo:
		return wsc.gameService.HandleUndo(gameID, playerID)

	case ws.MessageTypeAIMove:
		move, err := wsc.gameService.RequestAIMove(ctx, gameID)
		if err != nil {
			return err
		}
		payload, err := json.Marshal(move)
		if err != nil {
			return err
		}
		return conn.WriteJSON(ws.Message{Type: ws.MessageTypeAIResult, Payload: payload})

	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
}

// HandleMatchmaking serves /ws/matchmaking. The player is queued and the
// socket receives a single matchFound message once paired.
func (wsc *WebSocketController) HandleMatchmaking(c *websocket.Conn) {
	playerID, _ := c.Locals(middleware.PlayerIDKey).(string)
	conn := &safeConn{Conn: c}

	matchCh := make(chan string, 1)
	wsc.gameService.RegisterMatchmakingChannel(playerID, matchCh)
	defer wsc.gameService.UnregisterMatchmakingChannel(playerID, matchCh)

	// A player already queued through REST keeps their place.
	if err := wsc.gameService.JoinMatchmaking(playerID); err != nil && !errors.Is(err, model.ErrAlreadyQueued) {
		wsc.sendError(conn, err)
		conn.Close()
		return
	}

	// The client sends nothing on this socket; a read error means it left.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := c.ReadMessage(); err != nil {
				return
			}
		}
	}()

	select {
	case payload, ok := <-matchCh:
		if !ok {
			// Replaced by a newer matchmaking socket for the same player.
			conn.Close()
			return
		}
		msg := ws.Message{Type: ws.MessageTypeMatchFound, Payload: json.RawMessage(payload)}
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("failed to send match to player %s: %v", playerID, err)
		}
		conn.Close()
	case <-gone:
		wsc.gameService.LeaveMatchmaking(playerID)
		log.Infof("player %s left matchmaking", playerID)
	}
	<-gone
}

func (wsc *WebSocketController) sendError(conn *safeConn, err error) {
	if werr := conn.WriteJSON(ws.NewErrorMessage(err)); werr != nil {
		log.Debugf("failed to send error: %v", werr)
	}
}
