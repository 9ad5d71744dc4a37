package model

import (
	"fmt"
	"strings"

	"github.com/benbeisheim/alphabeta-chess/internal/engine"
)

// Mode says which sides are played by humans and which by the engine.
type Mode string

const (
	ModeHumanVsHuman Mode = "hvh"
	ModeHumanWhite   Mode = "hvai_w"
	ModeHumanBlack   Mode = "hvai_b"
	ModeAIVsAI       Mode = "aivai"
)

const (
	MinDepth = 1
	MaxDepth = 4
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeHumanVsHuman, nil
	case ModeHumanVsHuman, ModeHumanWhite, ModeHumanBlack, ModeAIVsAI:
		return m, nil
	default:
		return "", fmt.Errorf("%q: %w", s, ErrInvalidMode)
	}
}

// HumanControls reports whether c is played by a person in this mode.
func (m Mode) HumanControls(c engine.Color) bool {
	switch m {
	case ModeHumanWhite:
		return c == engine.White
	case ModeHumanBlack:
		return c == engine.Black
	case ModeAIVsAI:
		return false
	default:
		return true
	}
}

// HasAI reports whether at least one side is engine controlled.
func (m Mode) HasAI() bool {
	return !m.HumanControls(engine.White) || !m.HumanControls(engine.Black)
}

// ClampDepth limits a search depth to [MinDepth, MaxDepth].
func ClampDepth(d int) int {
	if d < MinDepth {
		return MinDepth
	}
	if d > MaxDepth {
		return MaxDepth
	}
	return d
}
