package model

import (
	"time"

	"github.com/benbeisheim/alphabeta-chess/internal/engine"
)

type Player struct {
	ID    string
	Color engine.Color
}

type Controller string

const (
	ControllerHuman Controller = "human"
	ControllerAI    Controller = "ai"
)

type ClientPlayer struct {
	ID         string       `json:"name"`
	Color      engine.Color `json:"color"`
	Controller Controller   `json:"controller"`
	Depth      int          `json:"depth,omitempty"`
	// TimeLeft is in tenths of a second; nil for untimed games.
	TimeLeft *int `json:"timeLeft"`
}

func tenths(d time.Duration) *int {
	if d < 0 {
		d = 0
	}
	n := int(d.Milliseconds() / 100)
	return &n
}
