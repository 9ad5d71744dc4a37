package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbeisheim/alphabeta-chess/internal/engine"
	"github.com/benbeisheim/alphabeta-chess/internal/model"
)

func newAIGame(t *testing.T, depth int) *model.Game {
	t.Helper()
	g, err := model.NewGame("pool-game", model.GameOptions{
		Mode:       model.ModeAIVsAI,
		WhiteDepth: depth,
		BlackDepth: depth,
	})
	if err != nil {
		t.Fatalf("NewGame: %v", err)
	}
	return g
}

func waitResult(t *testing.T, ch <-chan AIResult) AIResult {
	t.Helper()
	select {
	case res := <-ch:
		return res
	case <-time.After(5 * time.Second):
		t.Fatalf("timed out waiting for an engine result")
	}
	return AIResult{}
}

func TestAIPoolPlaysMoves(t *testing.T) {
	var handled int32
	pool := NewAIPool(
		WithWorkers(2),
		WithBufferSize(4),
		WithResultHandler(func(AIResult) { atomic.AddInt32(&handled, 1) }),
	)
	pool.Start()
	defer pool.Close()

	if pool.NumWorkers() != 2 {
		t.Errorf("workers = %d, want 2", pool.NumWorkers())
	}

	game := newAIGame(t, 1)
	for _, side := range []engine.Color{engine.White, engine.Black} {
		reply := make(chan AIResult, 1)
		if !pool.Submit(AIJob{Game: game, Reply: reply}) {
			t.Fatalf("Submit rejected")
		}
		res := waitResult(t, reply)
		if res.Err != nil {
			t.Fatalf("engine move failed: %v", res.Err)
		}
		if res.GameID != game.ID || res.Move.Move.Piece.Color != side {
			t.Errorf("unexpected result %+v", res)
		}
	}
	if got := atomic.LoadInt32(&handled); got != 2 {
		t.Errorf("handler called %d times, want 2", got)
	}
}

func TestAIPoolSubmitRejects(t *testing.T) {
	pool := NewAIPool(WithBufferSize(1))
	game := newAIGame(t, 1)

	if !pool.Submit(AIJob{Game: game}) {
		t.Fatalf("first job should fit in the buffer")
	}
	if pool.Submit(AIJob{Game: game}) {
		t.Errorf("expected a full queue to reject the job")
	}

	pool.Start()
	pool.Close()
	if pool.Submit(AIJob{Game: game}) {
		t.Errorf("expected a closed pool to reject the job")
	}
	pool.Close()
}

func TestAIPoolStop(t *testing.T) {
	pool := NewAIPool(WithBufferSize(2))
	game := newAIGame(t, 1)
	reply := make(chan AIResult, 1)
	if !pool.Submit(AIJob{Game: game, Reply: reply}) {
		t.Fatalf("Submit rejected")
	}

	pool.Stop()
	if !pool.IsStopped() {
		t.Fatalf("expected the pool to report stopped")
	}
	pool.Start()

	res := waitResult(t, reply)
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("stopped job error = %v, want context.Canceled", res.Err)
	}
	if pool.Submit(AIJob{Game: game}) {
		t.Errorf("expected a stopped pool to reject jobs")
	}
	pool.Close()

	if game.GetState().Version != 0 {
		t.Errorf("a drained job must not play a move")
	}
}

func TestAIPoolJobContext(t *testing.T) {
	pool := NewAIPool(WithWorkers(1), WithMoveTimeout(5*time.Second))
	pool.Start()
	defer pool.Close()

	game := newAIGame(t, 3)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	reply := make(chan AIResult, 1)
	if !pool.Submit(AIJob{Game: game, Ctx: ctx, Reply: reply}) {
		t.Fatalf("Submit rejected")
	}
	res := waitResult(t, reply)
	if !errors.Is(res.Err, context.Canceled) {
		t.Errorf("cancelled job error = %v, want context.Canceled", res.Err)
	}
	if game.GetState().Version != 0 {
		t.Errorf("a cancelled job must not play a move")
	}
}
