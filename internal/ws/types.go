package ws

import (
	"encoding/json"
)

// MessageType names the kind of a websocket message.
type MessageType string

const (
	// Client to server.
	MessageTypeMove   MessageType = "move"
	MessageTypeUndo   MessageType = "undo"
	MessageTypeAIMove MessageType = "aiMove"

	// Server to client.
	MessageTypeGameState  MessageType = "gameState"
	MessageTypeAIResult   MessageType = "aiResult"
	MessageTypeMatchFound MessageType = "matchFound"
	MessageTypeError      MessageType = "error"
)

// Message is the envelope of every websocket message.
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// ErrorPayload is the payload of a MessageTypeError message.
type ErrorPayload struct {
	Error string `json:"error"`
}

// NewErrorMessage wraps err for sending to a client.
func NewErrorMessage(err error) Message {
	payload, _ := json.Marshal(ErrorPayload{Error: err.Error()})
	return Message{Type: MessageTypeError, Payload: payload}
}
