package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/talgya/broadside/internal/era"
	"github.com/talgya/broadside/internal/game"
)

func testServer(t *testing.T) *Server {
	t.Helper()
	g, err := game.New(era.Classic(), 1)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if err := g.BeginPlacement(); err != nil {
		t.Fatalf("begin placement: %v", err)
	}
	return &Server{Game: g}
}

func TestHandleBoard(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.handleBoard(rec, httptest.NewRequest(http.MethodGet, "/api/v1/match/board", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200, have=%d", rec.Code)
	}
	var body struct {
		Rows  int `json:"rows"`
		Cols  int `json:"cols"`
		Cells []struct {
			Terrain string `json:"terrain"`
		} `json:"cells"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Rows != 10 || body.Cols != 10 {
		t.Errorf("board is %dx%d, want 10x10", body.Rows, body.Cols)
	}
	if want, have := 100, len(body.Cells); want != have {
		t.Errorf("cells: want=%d, have=%d", want, have)
	}
	if body.Cells[0].Terrain != "deep" {
		t.Errorf("cell terrain: want=%q, have=%q", "deep", body.Cells[0].Terrain)
	}
}

func TestHandleActionAutoPlace(t *testing.T) {
	s := testServer(t)
	p := s.Game.Players()[0]

	payload := fmt.Sprintf(`{"kind": "auto-place", "player_id": %q}`, p.ID)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match/actions", strings.NewReader(payload))
	s.handleAction(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200, have=%d, body=%s", rec.Code, rec.Body.String())
	}
	if !p.Fleet.IsComplete() {
		t.Error("auto-place action did not complete the fleet")
	}
}

func TestHandleActionErrorStatuses(t *testing.T) {
	s := testServer(t)
	p := s.Game.Players()[0]

	cases := []struct {
		name    string
		payload string
		status  int
	}{
		{"bad json", `{`, http.StatusBadRequest},
		{"bad player id", `{"kind": "fire", "player_id": "nope", "munition": "shot"}`, http.StatusBadRequest},
		{"unknown kind", fmt.Sprintf(`{"kind": "ram", "player_id": %q}`, p.ID), http.StatusBadRequest},
		{"unknown munition", fmt.Sprintf(`{"kind": "fire", "player_id": %q, "munition": "harpoon"}`, p.ID), http.StatusBadRequest},
		// Firing during placement is a state conflict.
		{"fire during placement", fmt.Sprintf(`{"kind": "fire", "player_id": %q, "munition": "shot"}`, p.ID), http.StatusConflict},
		// An unplaceable ship id is a validation failure.
		{"unknown ship", fmt.Sprintf(`{"kind": "place-ship", "player_id": %q, "ship_id": 999}`, p.ID), http.StatusUnprocessableEntity},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodPost, "/api/v1/match/actions", strings.NewReader(tc.payload))
			s.handleAction(rec, req)
			if rec.Code != tc.status {
				t.Errorf("status: want=%d, have=%d, body=%s", tc.status, rec.Code, rec.Body.String())
			}
		})
	}
}

// playingHumanServer returns a server whose match is in play with a human
// holding the turn.
func playingHumanServer(t *testing.T) *Server {
	t.Helper()
	cfg := era.Classic()
	cfg.Players[0].Kind = "human"
	g, err := game.New(cfg, 1)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if err := g.BeginPlacement(); err != nil {
		t.Fatalf("begin placement: %v", err)
	}
	for _, p := range g.Players() {
		if _, err := g.ProcessAction(game.Action{Kind: game.ActionAutoPlace, PlayerID: p.ID}); err != nil {
			t.Fatalf("auto-place: %v", err)
		}
	}
	if err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return &Server{Game: g}
}

func TestHandleTargetCarriesMunition(t *testing.T) {
	s := playingHumanServer(t)
	req, err := s.Game.RequestTarget()
	if err != nil {
		t.Fatalf("request target: %v", err)
	}

	rec := httptest.NewRecorder()
	s.handleTarget(rec, httptest.NewRequest(http.MethodPost, "/api/v1/match/target",
		strings.NewReader(`{"target": {"row": 4, "col": 4}, "munition": "star-shell"}`)))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200, have=%d, body=%s", rec.Code, rec.Body.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	choice, err := req.Await(ctx)
	if err != nil {
		t.Fatalf("await: %v", err)
	}
	if want, have := game.MunitionStarShell, choice.Munition; want != have {
		t.Errorf("munition: want=%v, have=%v", want, have)
	}
	if choice.Coord.Row != 4 || choice.Coord.Col != 4 {
		t.Errorf("coord: have %v", choice.Coord)
	}
}

func TestHandleTargetRejectsUnknownMunition(t *testing.T) {
	s := playingHumanServer(t)
	if _, err := s.Game.RequestTarget(); err != nil {
		t.Fatalf("request target: %v", err)
	}
	rec := httptest.NewRecorder()
	s.handleTarget(rec, httptest.NewRequest(http.MethodPost, "/api/v1/match/target",
		strings.NewReader(`{"target": {"row": 4, "col": 4}, "munition": "harpoon"}`)))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status: want=400, have=%d", rec.Code)
	}
}

func TestHandleMatchExposesPlayerIDs(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	s.handleMatch(rec, httptest.NewRequest(http.MethodGet, "/api/v1/match", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status: want=200, have=%d", rec.Code)
	}
	var body struct {
		Players []struct {
			PlayerID string `json:"player_id"`
		} `json:"players"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if want, have := len(s.Game.Players()), len(body.Players); want != have {
		t.Fatalf("players: want=%d, have=%d", want, have)
	}
	for i, p := range s.Game.Players() {
		if want, have := p.ID.String(), body.Players[i].PlayerID; want != have {
			t.Errorf("player %d id: want=%q, have=%q", i, want, have)
		}
	}
}

func TestWebsocketClientReapedOnClose(t *testing.T) {
	s := testServer(t)
	s.clients = make(map[*websocket.Conn]struct{})
	srv := httptest.NewServer(http.HandlerFunc(s.handleWS))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}

	clientCount := func() int {
		s.mu.Lock()
		defer s.mu.Unlock()
		return len(s.clients)
	}
	waitFor := func(cond func() bool, msg string) {
		t.Helper()
		deadline := time.Now().Add(5 * time.Second)
		for time.Now().Before(deadline) {
			if cond() {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Fatal(msg)
	}

	waitFor(func() bool { return clientCount() == 1 }, "client never registered")
	conn.Close()
	waitFor(func() bool { return clientCount() == 0 }, "closed client never reaped")
}

func TestHandleTargetWithoutPending(t *testing.T) {
	s := testServer(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/match/target", strings.NewReader(`{"target": {"row": 1, "col": 1}}`))
	s.handleTarget(rec, req)
	if rec.Code != http.StatusConflict {
		t.Errorf("status: want=409, have=%d", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{&game.ValidationError{Reason: "bad"}, http.StatusUnprocessableEntity},
		{&game.StateError{Reason: "busy"}, http.StatusConflict},
		{&game.ResourceExhaustedError{Resource: "torpedoes"}, http.StatusPaymentRequired},
		{fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if have := statusFor(tc.err); have != tc.want {
			t.Errorf("statusFor(%v): want=%d, have=%d", tc.err, tc.want, have)
		}
	}
}
