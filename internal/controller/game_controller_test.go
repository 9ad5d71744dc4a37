package controller

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbeisheim/alphabeta-chess/internal/engine"
	"github.com/benbeisheim/alphabeta-chess/internal/middleware"
	"github.com/benbeisheim/alphabeta-chess/internal/model"
	"github.com/benbeisheim/alphabeta-chess/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/google/go-cmp/cmp"
)

func newTestApp(t *testing.T) *fiber.App {
	t.Helper()
	pool := service.NewAIPool(testPoolOptions()...)
	pool.Start()
	t.Cleanup(pool.Close)

	gm := service.NewGameManager(time.Hour)
	t.Cleanup(gm.Close)
	gc := NewGameController(service.NewGameService(gm, pool, 1))

	app := fiber.New()
	app.Get("/healthz", gc.Health)
	gc.Register(app.Group("/api/game", middleware.EnsurePlayerID()))
	return app
}

func testPoolOptions() []service.AIPoolOption {
	return []service.AIPoolOption{
		service.WithWorkers(1),
		service.WithMoveTimeout(5 * time.Second),
	}
}

func doRequest(t *testing.T, app *fiber.App, method, target, playerID, body string, out interface{}) int {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if playerID != "" {
		req.Header.Set("X-Player-ID", playerID)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, target, err)
		}
	}
	return resp.StatusCode
}

func createGame(t *testing.T, app *fiber.App, body string) string {
	t.Helper()
	var created struct {
		GameID string `json:"game_id"`
	}
	if status := doRequest(t, app, "POST", "/api/game/create", "alice", body, &created); status != fiber.StatusCreated {
		t.Fatalf("create status = %d", status)
	}
	if created.GameID == "" {
		t.Fatalf("create returned no game id")
	}
	return created.GameID
}

func moveBody(from, to string) string {
	f, _ := engine.ParseSquare(from)
	t, _ := engine.ParseSquare(to)
	b, _ := json.Marshal(model.WSMove{From: f, To: t})
	return string(b)
}

func TestGameFlow(t *testing.T) {
	app := newTestApp(t)
	gameID := createGame(t, app, `{"mode":"hvh"}`)

	var joined struct {
		Color string `json:"color"`
	}
	if status := doRequest(t, app, "POST", "/api/game/join/"+gameID, "alice", "", &joined); status != fiber.StatusOK {
		t.Fatalf("alice join status = %d", status)
	}
	if joined.Color != "white" {
		t.Errorf("alice color = %q, want white", joined.Color)
	}
	if status := doRequest(t, app, "POST", "/api/game/join/"+gameID, "bob", "", &joined); status != fiber.StatusOK {
		t.Fatalf("bob join status = %d", status)
	}
	if joined.Color != "black" {
		t.Errorf("bob color = %q, want black", joined.Color)
	}
	if status := doRequest(t, app, "POST", "/api/game/join/"+gameID, "carol", "", nil); status != fiber.StatusConflict {
		t.Errorf("third join status = %d, want %d", status, fiber.StatusConflict)
	}

	var moves struct {
		Moves []model.LegalMove `json:"moves"`
	}
	if status := doRequest(t, app, "GET", fmt.Sprintf("/api/game/%s/moves", gameID), "alice", "", &moves); status != fiber.StatusOK {
		t.Fatalf("moves status = %d", status)
	}
	if len(moves.Moves) != 20 {
		t.Errorf("got %d legal moves, want 20", len(moves.Moves))
	}

	move := fmt.Sprintf("/api/game/%s/move", gameID)
	if status := doRequest(t, app, "POST", move, "bob", moveBody("e7", "e5"), nil); status != fiber.StatusForbidden {
		t.Errorf("out of turn status = %d, want %d", status, fiber.StatusForbidden)
	}
	if status := doRequest(t, app, "POST", move, "alice", moveBody("e2", "e5"), nil); status != fiber.StatusBadRequest {
		t.Errorf("illegal move status = %d, want %d", status, fiber.StatusBadRequest)
	}

	var state stateView
	if status := doRequest(t, app, "POST", move, "alice", moveBody("e2", "e4"), &state); status != fiber.StatusOK {
		t.Fatalf("move status = %d", status)
	}
	if state.ToMove != "black" {
		t.Errorf("to move = %s, want black", state.ToMove)
	}
	if diff := cmp.Diff([]string{"e4"}, notations(state)); diff != "" {
		t.Errorf("history mismatch (-want +got):\n%s", diff)
	}

	if status := doRequest(t, app, "POST", fmt.Sprintf("/api/game/%s/undo", gameID), "alice", "", &state); status != fiber.StatusOK {
		t.Fatalf("undo status = %d", status)
	}
	if len(state.MoveHistory) != 0 || state.ToMove != "white" {
		t.Errorf("undo left %d moves with %s to move", len(state.MoveHistory), state.ToMove)
	}
}

// stateView is the part of a game state the tests look at.
type stateView struct {
	ToMove      string `json:"toMove"`
	MoveHistory []struct {
		WhitePly *struct {
			Notation string `json:"notation"`
		} `json:"whitePly"`
		BlackPly *struct {
			Notation string `json:"notation"`
		} `json:"blackPly"`
	} `json:"moveHistory"`
}

func notations(state stateView) []string {
	var out []string
	for _, m := range state.MoveHistory {
		if m.WhitePly != nil {
			out = append(out, m.WhitePly.Notation)
		}
		if m.BlackPly != nil {
			out = append(out, m.BlackPly.Notation)
		}
	}
	return out
}

func TestCreateGameErrors(t *testing.T) {
	app := newTestApp(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"bad mode", `{"mode":"blitz"}`, fiber.StatusBadRequest},
		{"bad fen", `{"mode":"hvh","fen":"not a fen"}`, fiber.StatusBadRequest},
		{"negative clock", `{"mode":"hvh","timeControlSeconds":-5}`, fiber.StatusBadRequest},
		{"malformed body", `{"mode":`, fiber.StatusBadRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if status := doRequest(t, app, "POST", "/api/game/create", "alice", tt.body, nil); status != tt.want {
				t.Errorf("status = %d, want %d", status, tt.want)
			}
		})
	}
}

func TestUnknownGame(t *testing.T) {
	app := newTestApp(t)
	var body map[string]string
	if status := doRequest(t, app, "GET", "/api/game/nope", "alice", "", &body); status != fiber.StatusNotFound {
		t.Fatalf("status = %d, want %d", status, fiber.StatusNotFound)
	}
	if body["error"] == "" {
		t.Errorf("expected an error message")
	}
}

func TestAIMove(t *testing.T) {
	app := newTestApp(t)
	gameID := createGame(t, app, `{"mode":"aivai","whiteDepth":1,"blackDepth":1}`)

	var reply struct {
		Notation string    `json:"notation"`
		State    stateView `json:"state"`
	}
	if status := doRequest(t, app, "POST", fmt.Sprintf("/api/game/%s/ai", gameID), "alice", "", &reply); status != fiber.StatusOK {
		t.Fatalf("ai status = %d", status)
	}
	if reply.Notation == "" {
		t.Errorf("expected the engine move notation")
	}
	if reply.State.ToMove != "black" {
		t.Errorf("to move = %s after engine move, want black", reply.State.ToMove)
	}
	if len(reply.State.MoveHistory) != 1 {
		t.Errorf("history has %d entries, want 1", len(reply.State.MoveHistory))
	}

	hvh := createGame(t, app, `{"mode":"hvh"}`)
	if status := doRequest(t, app, "POST", fmt.Sprintf("/api/game/%s/ai", hvh), "alice", "", nil); status != fiber.StatusConflict {
		t.Errorf("ai in hvh status = %d, want %d", status, fiber.StatusConflict)
	}
}

func TestEngineDeliversMate(t *testing.T) {
	app := newTestApp(t)
	gameID := createGame(t, app, `{"mode":"aivai","whiteDepth":2,"blackDepth":2,"fen":"6k1/5ppp/8/8/8/8/8/R5K1 w - - 0 1"}`)

	var reply struct {
		Move struct {
			Score float64 `json:"score"`
			Mate  bool    `json:"mate"`
		} `json:"move"`
		Notation string `json:"notation"`
		State    struct {
			Resolve *string `json:"resolve"`
			Winner  *string `json:"winner"`
		} `json:"state"`
	}
	if status := doRequest(t, app, "POST", fmt.Sprintf("/api/game/%s/ai", gameID), "alice", "", &reply); status != fiber.StatusOK {
		t.Fatalf("ai status = %d, want %d", status, fiber.StatusOK)
	}
	if reply.Notation != "Ra8" {
		t.Errorf("engine played %q, want Ra8", reply.Notation)
	}
	if !reply.Move.Mate || reply.Move.Score != model.MateScore {
		t.Errorf("score = %v mate = %v, want a mate score", reply.Move.Score, reply.Move.Mate)
	}
	if reply.State.Resolve == nil || *reply.State.Resolve != model.ResolveCheckmate {
		t.Errorf("resolve = %v, want checkmate", reply.State.Resolve)
	}
	if reply.State.Winner == nil || *reply.State.Winner != "white" {
		t.Errorf("winner = %v, want white", reply.State.Winner)
	}
}

// Player ids outlive the request that carried them.
func TestSeatsSurviveLaterRequests(t *testing.T) {
	app := newTestApp(t)
	gameID := createGame(t, app, `{"mode":"hvh"}`)

	if status := doRequest(t, app, "POST", "/api/game/join/"+gameID, "alice", "", nil); status != fiber.StatusOK {
		t.Fatalf("alice join status = %d", status)
	}
	for _, id := range []string{"mallo", "zzzzz", "bobby"} {
		doRequest(t, app, "GET", "/api/game/"+gameID, id, "", nil)
		doRequest(t, app, "GET", "/api/game/"+gameID+"?playerId="+id, "", "", nil)
	}

	var state struct {
		Players struct {
			White struct {
				ID string `json:"name"`
			} `json:"white"`
		} `json:"players"`
	}
	doRequest(t, app, "GET", "/api/game/"+gameID, "carol", "", &state)
	if state.Players.White.ID != "alice" {
		t.Errorf("white seat = %q, want alice", state.Players.White.ID)
	}

	move := fmt.Sprintf("/api/game/%s/move", gameID)
	if status := doRequest(t, app, "POST", move, "zzzzz", moveBody("e2", "e4"), nil); status != fiber.StatusForbidden {
		t.Errorf("move by unseated player status = %d, want %d", status, fiber.StatusForbidden)
	}
	if status := doRequest(t, app, "POST", move, "alice", moveBody("e2", "e4"), nil); status != fiber.StatusOK {
		t.Errorf("move by alice status = %d, want %d", status, fiber.StatusOK)
	}
}

func TestMatchmakingRoutes(t *testing.T) {
	app := newTestApp(t)

	var body map[string]interface{}
	if status := doRequest(t, app, "POST", "/api/game/matchmaking/join", "alice", "", &body); status != fiber.StatusOK {
		t.Fatalf("join status = %d", status)
	}
	if body["status"] != "queued" {
		t.Errorf("join body = %v", body)
	}
	if status := doRequest(t, app, "POST", "/api/game/matchmaking/join", "alice", "", nil); status != fiber.StatusConflict {
		t.Errorf("second join status = %d, want %d", status, fiber.StatusConflict)
	}

	body = nil
	doRequest(t, app, "GET", "/api/game/matchmaking/status", "alice", "", &body)
	if body["status"] != "waiting" {
		t.Errorf("status body = %v, want waiting", body)
	}

	body = nil
	doRequest(t, app, "POST", "/api/game/matchmaking/leave", "alice", "", &body)
	if body["removed"] != true {
		t.Errorf("leave body = %v, want removed", body)
	}
}

func TestHealth(t *testing.T) {
	app := newTestApp(t)
	createGame(t, app, "")

	var body struct {
		Status string `json:"status"`
		Games  int    `json:"games"`
	}
	if status := doRequest(t, app, "GET", "/healthz", "", "", &body); status != fiber.StatusOK {
		t.Fatalf("status = %d", status)
	}
	if body.Status != "ok" || body.Games != 1 {
		t.Errorf("health = %+v, want ok with 1 game", body)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("get: %w", model.ErrGameNotFound), http.StatusNotFound},
		{engine.ErrInvalidFEN, http.StatusBadRequest},
		{model.ErrIllegalMove, http.StatusBadRequest},
		{model.ErrNotYourTurn, http.StatusForbidden},
		{model.ErrUnauthorized, http.StatusForbidden},
		{model.ErrGameOver, http.StatusConflict},
		{model.ErrStaleSearch, http.StatusConflict},
		{service.ErrAIBusy, http.StatusServiceUnavailable},
		{context.DeadlineExceeded, http.StatusGatewayTimeout},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
