package service

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/benbeisheim/alphabeta-chess/internal/model"
	"github.com/google/go-cmp/cmp"
)

func newTestManager(t *testing.T) *GameManager {
	t.Helper()
	// A long interval keeps the background loop out of the way; tests
	// drive matchOnce directly.
	gm := NewGameManager(time.Hour)
	t.Cleanup(gm.Close)
	return gm
}

func TestGameManagerGames(t *testing.T) {
	gm := newTestManager(t)

	game, err := gm.CreateGame(model.GameOptions{Mode: model.ModeHumanVsHuman})
	if err != nil {
		t.Fatalf("CreateGame: %v", err)
	}
	got, err := gm.GetGame(game.ID)
	if err != nil || got != game {
		t.Fatalf("GetGame = %v, %v", got, err)
	}
	if err := gm.AddGame(game); !errors.Is(err, model.ErrGameExists) {
		t.Errorf("duplicate AddGame: %v, want ErrGameExists", err)
	}
	if _, err := gm.GetGame("missing"); !errors.Is(err, model.ErrGameNotFound) {
		t.Errorf("GetGame(missing): %v, want ErrGameNotFound", err)
	}
	if _, err := gm.CreateGame(model.GameOptions{Mode: "nope"}); !errors.Is(err, model.ErrInvalidMode) {
		t.Errorf("bad mode: %v, want ErrInvalidMode", err)
	}
	if gm.Count() != 1 {
		t.Errorf("count = %d, want 1", gm.Count())
	}
}

func TestMatchmaking(t *testing.T) {
	gm := newTestManager(t)

	aliceCh := make(chan string, 1)
	gm.RegisterMatchmakingChannel("alice", aliceCh)
	for _, id := range []string{"alice", "bob"} {
		if err := gm.JoinMatchmaking(id); err != nil {
			t.Fatalf("JoinMatchmaking(%s): %v", id, err)
		}
	}
	if err := gm.JoinMatchmaking("bob"); !errors.Is(err, model.ErrAlreadyQueued) {
		t.Errorf("second join: %v, want ErrAlreadyQueued", err)
	}

	if !gm.matchOnce() {
		t.Fatalf("expected a pair to be matched")
	}
	if gm.matchOnce() {
		t.Errorf("expected nobody left to match")
	}

	raw, ok := <-aliceCh
	if !ok {
		t.Fatalf("alice's channel closed without an event")
	}
	var event model.MatchFoundEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		t.Fatalf("bad event %q: %v", raw, err)
	}
	if event.Color != "white" {
		t.Errorf("alice color = %q, want white", event.Color)
	}
	if _, ok := <-aliceCh; ok {
		t.Errorf("expected the channel to be closed after the event")
	}

	bobEvent, ok := gm.MatchStatus("bob")
	if !ok {
		t.Fatalf("expected bob's match to be kept for polling")
	}
	want := model.MatchFoundEvent{GameID: event.GameID, Color: "black"}
	if diff := cmp.Diff(want, bobEvent); diff != "" {
		t.Errorf("bob's match mismatch (-want +got):\n%s", diff)
	}

	game, err := gm.GetGame(event.GameID)
	if err != nil {
		t.Fatalf("GetGame: %v", err)
	}
	if !game.IsPlayerInGame("alice") || !game.IsPlayerInGame("bob") {
		t.Errorf("expected both players seated")
	}
}

func TestMatchmakingChannels(t *testing.T) {
	gm := newTestManager(t)

	first := make(chan string, 1)
	second := make(chan string, 1)
	gm.RegisterMatchmakingChannel("alice", first)
	gm.RegisterMatchmakingChannel("alice", second)
	if _, ok := <-first; ok {
		t.Errorf("expected the replaced channel to be closed")
	}

	gm.UnregisterMatchmakingChannel("alice", first)
	gm.mu.RLock()
	current := gm.matchingChannels["alice"]
	gm.mu.RUnlock()
	if current != second {
		t.Errorf("unregistering a stale channel removed the current one")
	}

	gm.UnregisterMatchmakingChannel("alice", second)
	if err := gm.JoinMatchmaking("alice"); err != nil {
		t.Fatalf("JoinMatchmaking: %v", err)
	}
	if !gm.LeaveMatchmaking("alice") {
		t.Errorf("expected alice to leave the queue")
	}
}
