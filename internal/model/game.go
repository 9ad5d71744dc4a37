package model

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/benbeisheim/alphabeta-chess/internal/engine"
	"github.com/gofiber/fiber/v2/log"
)

const (
	ResolveCheckmate = "checkmate"
	ResolveStalemate = "stalemate"
	ResolveDraw      = "draw"
	ResolveTimeout   = "timeout"
)

// Game is one session around a single engine position: who plays which
// side, per-side search depth, clocks, the result and the observers.
type Game struct {
	ID string

	mu      sync.Mutex
	mode    Mode
	depth   [2]int
	pos     *engine.Position
	plies   []Ply
	players [2]string
	clocks  [2]*Clock
	resolve string
	winner  *engine.Color
	version uint64

	connections *GameConnections
}

type GameOptions struct {
	Mode       Mode
	WhiteDepth int
	BlackDepth int
	// FEN is an optional starting position.
	FEN string
	// TimeControl is each side's total time; zero means untimed.
	TimeControl time.Duration
}

type Players struct {
	White ClientPlayer `json:"white"`
	Black ClientPlayer `json:"black"`
}

type GameState struct {
	ID             string         `json:"id"`
	Mode           Mode           `json:"mode"`
	Version        uint64         `json:"version"`
	Sound          string         `json:"sound"`
	Board          BoardState     `json:"boardState"`
	FEN            string         `json:"fen"`
	ToMove         engine.Color   `json:"toMove"`
	MoveHistory    []Move         `json:"moveHistory"`
	CapturedPieces CapturedPieces `json:"capturedPieces"`
	IsCheck        bool           `json:"isCheck"`
	LegalMoves     []LegalMove    `json:"legalMoves"`
	Resolve        *string        `json:"resolve"`
	Winner         *engine.Color  `json:"winner"`
	Players        Players        `json:"players"`
	LastMove       *SimpleMove    `json:"lastMove"`
	Evaluation     int            `json:"evaluation"`
}

// MateScore is reported in place of the infinite search score of a forced
// mate, which JSON cannot carry.
const MateScore = 100000

// AIMove describes a move the engine played. Score is from White's point of
// view and always finite; Mate is set when it stands for a forced mate.
type AIMove struct {
	Move  engine.Move        `json:"move"`
	Score float64            `json:"score"`
	Mate  bool               `json:"mate"`
	Depth int                `json:"depth"`
	Stats engine.SearchStats `json:"stats"`
	// Fallback is set when no candidate finished in time and the first
	// legal move was played instead.
	Fallback bool `json:"fallback"`
}

func NewGame(id string, opts GameOptions) (*Game, error) {
	mode, err := ParseMode(string(opts.Mode))
	if err != nil {
		return nil, err
	}

	pos := engine.NewPosition()
	if opts.FEN != "" {
		if pos, err = engine.ParseFEN(opts.FEN); err != nil {
			return nil, err
		}
	}

	g := &Game{
		ID:          id,
		mode:        mode,
		depth:       [2]int{ClampDepth(opts.WhiteDepth), ClampDepth(opts.BlackDepth)},
		pos:         pos,
		connections: NewGameConnections(),
	}
	if opts.TimeControl > 0 {
		g.clocks = [2]*Clock{NewClock(opts.TimeControl), NewClock(opts.TimeControl)}
	}
	g.updateResolveLocked()
	return g, nil
}

func (g *Game) Mode() Mode { return g.mode }

// Depth returns the search depth used for c when it is engine controlled.
func (g *Game) Depth(c engine.Color) int { return g.depth[c] }

func (g *Game) AddPlayer(playerID string) (engine.Color, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if c, ok := g.colorOf(playerID); ok {
		return c, nil
	}
	for _, c := range []engine.Color{engine.White, engine.Black} {
		if g.mode.HumanControls(c) && g.players[c] == "" {
			g.players[c] = playerID
			log.Infof("player %s joined game %s as %s", playerID, g.ID, c)
			g.changedLocked()
			return c, nil
		}
	}
	return engine.White, ErrGameFull
}

// ColorOf returns the side playerID is seated on.
func (g *Game) ColorOf(playerID string) (engine.Color, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.colorOf(playerID)
}

func (g *Game) colorOf(playerID string) (engine.Color, bool) {
	if playerID == "" {
		return engine.White, false
	}
	for _, c := range []engine.Color{engine.White, engine.Black} {
		if g.players[c] == playerID {
			return c, true
		}
	}
	return engine.White, false
}

func (g *Game) IsPlayerInGame(playerID string) bool {
	_, ok := g.ColorOf(playerID)
	return ok
}

// CanSpectate reports whether someone without a seat may watch: a human
// seat is still open, or the game has no human seats.
func (g *Game) CanSpectate() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.canSpectate()
}

func (g *Game) canSpectate() bool {
	if g.mode == ModeAIVsAI {
		return true
	}
	for _, c := range []engine.Color{engine.White, engine.Black} {
		if g.mode.HumanControls(c) && g.players[c] == "" {
			return true
		}
	}
	return false
}

// IsAITurn reports whether the game is running and the engine is to move.
func (g *Game) IsAITurn() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resolve == "" && !g.mode.HumanControls(g.pos.SideToMove())
}

func (g *Game) IsOver() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.resolve != ""
}

func (g *Game) GetState() GameState {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.stateLocked()
}

func (g *Game) LegalMoves() []LegalMove {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.resolve != "" {
		return []LegalMove{}
	}
	return newLegalMoves(g.pos.LegalMoves())
}

// MakeMove plays a human move for playerID.
func (g *Game) MakeMove(playerID string, move WSMove) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.resolve != "" {
		return ErrGameOver
	}
	side := g.pos.SideToMove()
	if !g.mode.HumanControls(side) || playerID == "" || g.players[side] != playerID {
		return ErrNotYourTurn
	}
	if g.flagLocked(side) {
		return fmt.Errorf("%s ran out of time: %w", side, ErrGameOver)
	}
	if !move.From.OnBoard() || !move.To.OnBoard() {
		return fmt.Errorf("square out of bounds: %w", ErrIllegalMove)
	}

	m, ok := g.pos.IsLegal(engine.Move{From: move.From, To: move.To})
	if !ok {
		return fmt.Errorf("%s%s: %w", move.From, move.To, ErrIllegalMove)
	}
	var chooser engine.PromotionChooser
	if pt, ok := engine.ParsePieceType(move.Promotion); ok {
		m.Promotion = pt
		chooser = engine.PromoteTo(pt)
	}

	log.Debugf("game %s: %s plays %s", g.ID, side, m.UCI())
	g.applyLocked(m, false, chooser)
	return nil
}

// PlayAI searches for the side to move and plays the result. The search
// runs on a copy of the position without holding the game lock; if the
// game changed meanwhile nothing is played and ErrStaleSearch is returned.
// When ctx expires the best fully searched candidate is played, or the
// first legal move if there is none.
func (g *Game) PlayAI(ctx context.Context) (AIMove, error) {
	g.mu.Lock()
	if g.resolve != "" {
		g.mu.Unlock()
		return AIMove{}, ErrGameOver
	}
	side := g.pos.SideToMove()
	if g.mode.HumanControls(side) {
		g.mu.Unlock()
		return AIMove{}, ErrNotAITurn
	}
	search := g.pos.Clone()
	depth := g.depth[side]
	version := g.version
	g.mu.Unlock()

	start := time.Now()
	res, err := engine.FindBestMoveContext(ctx, search, depth, search.LegalMoves(), side)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return AIMove{}, err
	}
	if err != nil {
		log.Warnf("game %s: search at depth %d hit its deadline after %d nodes", g.ID, depth, res.Stats.Nodes)
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.version != version {
		return AIMove{}, ErrStaleSearch
	}
	ai := AIMove{Move: res.Move, Depth: depth, Stats: res.Stats}
	ai.Score, ai.Mate = finiteScore(res.Score)
	if !res.Found {
		legal := g.pos.LegalMoves()
		if len(legal) == 0 {
			return AIMove{}, ErrGameOver
		}
		ai.Move = legal[0]
		ai.Score, ai.Mate = 0, false
		ai.Fallback = true
	}

	log.Infow("engine move",
		"game", g.ID,
		"side", side.String(),
		"move", ai.Move.UCI(),
		"score", ai.Score,
		"nodes", ai.Stats.Nodes,
		"elapsed", time.Since(start).String(),
	)
	g.applyLocked(ai.Move, true, nil)
	return ai, nil
}

// Undo takes back the last ply. In games against the engine it keeps
// taking back until a human is to move again. Undo on an empty history is
// a no-op.
func (g *Game) Undo(playerID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.resolve == ResolveTimeout {
		return ErrGameOver
	}
	if g.mode != ModeAIVsAI {
		if _, ok := g.colorOf(playerID); !ok {
			return ErrNotInGame
		}
	}
	if g.pos.Ply() == 0 {
		return nil
	}

	g.undoLocked()
	if g.mode != ModeAIVsAI {
		for g.pos.Ply() > 0 && !g.mode.HumanControls(g.pos.SideToMove()) {
			g.undoLocked()
		}
	}
	g.updateResolveLocked()
	g.restartClocksLocked()
	g.changedLocked()
	return nil
}

func (g *Game) RegisterConnection(playerID string, conn Conn) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	_, seated := g.colorOf(playerID)
	if !seated && !g.canSpectate() {
		return ErrUnauthorized
	}
	g.connections.add(playerID, conn)
	log.Infof("registered connection for player %s in game %s", playerID, g.ID)

	state := g.stateLocked()
	go g.connections.broadcast(state)
	return nil
}

func (g *Game) UnregisterConnection(playerID string, conn Conn) {
	if g.connections.remove(playerID, conn) {
		log.Infof("unregistered connection for player %s in game %s", playerID, g.ID)
	}
}

func (g *Game) applyLocked(m engine.Move, autoQueen bool, chooser engine.PromotionChooser) {
	mover := m.Piece.Color
	if c := g.clocks[mover]; c != nil {
		c.Stop()
	}

	g.pos.Apply(m, autoQueen, chooser)
	g.plies = append(g.plies, newPly(m, g.pos.At(m.To).Type))

	g.updateResolveLocked()
	if g.resolve == "" {
		if c := g.clocks[mover.Opposite()]; c != nil {
			c.Start()
		}
	}
	g.changedLocked()
}

func (g *Game) undoLocked() {
	g.pos.Undo()
	g.plies = g.plies[:len(g.plies)-1]
}

// flagLocked ends the game if side's clock has run out.
func (g *Game) flagLocked(side engine.Color) bool {
	c := g.clocks[side]
	if c == nil || !c.Expired() {
		return false
	}
	c.Stop()
	g.resolve = ResolveTimeout
	winner := side.Opposite()
	g.winner = &winner
	log.Infof("game %s: %s ran out of time", g.ID, side)
	g.changedLocked()
	return true
}

func (g *Game) restartClocksLocked() {
	for _, c := range g.clocks {
		if c != nil {
			c.Stop()
		}
	}
	if c := g.clocks[g.pos.SideToMove()]; c != nil && g.resolve == "" && g.pos.Ply() > 0 {
		c.Start()
	}
}

func (g *Game) updateResolveLocked() {
	g.resolve, g.winner = "", nil
	switch engine.Status(g.pos) {
	case engine.Checkmate:
		g.resolve = ResolveCheckmate
		winner := g.pos.SideToMove().Opposite()
		g.winner = &winner
	case engine.Stalemate:
		g.resolve = ResolveStalemate
	case engine.BareKings:
		g.resolve = ResolveDraw
	}
	if g.resolve != "" {
		log.Infof("game %s ended: %s", g.ID, g.resolve)
	}
}

// changedLocked bumps the version and pushes the new state to observers.
func (g *Game) changedLocked() {
	g.version++
	state := g.stateLocked()
	go g.connections.broadcast(state)
}

func (g *Game) stateLocked() GameState {
	plies := make([]Ply, len(g.plies))
	copy(plies, g.plies)

	state := GameState{
		ID:             g.ID,
		Mode:           g.mode,
		Version:        g.version,
		Board:          newBoardState(g.pos),
		FEN:            g.pos.FEN(),
		ToMove:         g.pos.SideToMove(),
		MoveHistory:    pairPlies(plies),
		CapturedPieces: newCapturedPieces(g.pos.History()),
		IsCheck:        g.pos.IsInCheck(),
		LegalMoves:     []LegalMove{},
		Evaluation:     engine.Evaluate(g.pos),
		Players: Players{
			White: g.clientPlayer(engine.White),
			Black: g.clientPlayer(engine.Black),
		},
	}
	if g.resolve == "" {
		state.LegalMoves = newLegalMoves(g.pos.LegalMoves())
	} else {
		resolve := g.resolve
		state.Resolve = &resolve
	}
	if g.winner != nil {
		winner := *g.winner
		state.Winner = &winner
	}
	if last, ok := g.pos.LastMove(); ok {
		state.LastMove = &SimpleMove{From: last.From, To: last.To}
		state.Sound = sound(last, state.IsCheck)
	}
	return state
}

func (g *Game) clientPlayer(c engine.Color) ClientPlayer {
	p := ClientPlayer{ID: g.players[c], Color: c, Controller: ControllerHuman}
	if !g.mode.HumanControls(c) {
		p.Controller = ControllerAI
		p.Depth = g.depth[c]
	}
	if clock := g.clocks[c]; clock != nil {
		p.TimeLeft = tenths(clock.GetTimeLeft())
	}
	return p
}

func finiteScore(score float64) (float64, bool) {
	switch {
	case math.IsInf(score, 1):
		return MateScore, true
	case math.IsInf(score, -1):
		return -MateScore, true
	default:
		return score, false
	}
}

func sound(m engine.Move, check bool) string {
	switch {
	case check:
		return "check"
	case m.IsCastle():
		return "castle"
	case m.IsPromotion():
		return "promote"
	case m.IsCapture():
		return "capture"
	default:
		return "move"
	}
}
