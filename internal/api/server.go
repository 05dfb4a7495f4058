// Package api exposes one match over HTTP for a UI or orchestration layer.
// GET endpoints are read-only observation; POST endpoints submit actions.
// A websocket stream pushes the state-changed notification after every
// completed action.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"github.com/talgya/broadside/internal/board"
	"github.com/talgya/broadside/internal/game"
	"github.com/talgya/broadside/internal/stats"
	"github.com/talgya/broadside/internal/world"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Server serves one match over HTTP.
type Server struct {
	Game *game.Game
	DB   *stats.DB // Optional; match results are saved here on finish
	Port int

	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
	saved   bool
}

// Start wires the routes, registers the engine observer, and serves.
// Blocks until the listener fails.
func (s *Server) Start() error {
	s.clients = make(map[*websocket.Conn]struct{})
	s.Game.SetObserver(s.onAction)

	r := mux.NewRouter()
	r.HandleFunc("/api/v1/match", s.handleMatch).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/match/stats", s.handleMatch).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/match/board", s.handleBoard).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/match/events", s.handleEvents).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/match/actions", s.handleAction).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/match/target", s.handleTarget).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/leaderboard", s.handleLeaderboard).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/ws", s.handleWS)

	addr := fmt.Sprintf(":%d", s.Port)
	slog.Info("api listening", "addr", addr)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}
	return srv.ListenAndServe()
}

// onAction is the single registered observer: it fans the completed action
// out to websocket clients and archives the match once it finishes.
func (s *Server) onAction(res game.Result) {
	s.broadcast(res)
	if res.Winner != "" {
		s.saveResults()
	}
}

func (s *Server) broadcast(res game.Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for conn := range s.clients {
		if err := conn.WriteJSON(res); err != nil {
			conn.Close()
			delete(s.clients, conn)
		}
	}
}

func (s *Server) saveResults() {
	if s.DB == nil || s.saved {
		return
	}
	results, err := s.Game.Results()
	if err != nil {
		return
	}
	err = s.DB.SaveMatch(s.Game.ID.String(), s.Game.Era, s.Game.Winner(),
		s.Game.Turn(), results, s.Game.Events())
	if err != nil {
		slog.Error("failed to save match results", "error", err)
		return
	}
	s.saved = true
	slog.Info("match results saved", "game", s.Game.ID)
}

func (s *Server) handleMatch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Game.Stats())
}

// boardCell is the per-cell view sent to the UI: terrain plus the latest
// recorded shot result, if any. Occupancy is not exposed; the UI learns it
// from action results.
type boardCell struct {
	Coord   world.Coord `json:"coord"`
	Terrain string      `json:"terrain"`
	Shot    string      `json:"shot,omitempty"`
}

func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	b := s.Game.Board()
	latest := make(map[world.Coord]string)
	for _, shot := range s.Game.ShotHistory() {
		latest[shot.Coord] = board.ResultName(shot.Result)
	}
	cells := make([]boardCell, 0, b.Rows()*b.Cols())
	for row := 0; row < b.Rows(); row++ {
		for col := 0; col < b.Cols(); col++ {
			c := world.Coord{Row: row, Col: col}
			cells = append(cells, boardCell{
				Coord:   c,
				Terrain: world.TerrainName(b.TerrainAt(c)),
				Shot:    latest[c],
			})
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"rows":  b.Rows(),
		"cols":  b.Cols(),
		"cells": cells,
	})
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Game.Events())
}

// actionRequest is the JSON shape of a submitted action.
type actionRequest struct {
	Kind     string      `json:"kind"` // "place-ship", "unplace-ship", "auto-place", "fire"
	PlayerID string      `json:"player_id"`
	ShipID   int         `json:"ship_id"`
	Start    world.Coord `json:"start"`
	DragRow  int         `json:"drag_row"`
	DragCol  int         `json:"drag_col"`
	Munition string      `json:"munition"`
	Target   world.Coord `json:"target"`
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode action: %w", err))
		return
	}
	playerID, err := uuid.Parse(req.PlayerID)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("player_id: %w", err))
		return
	}

	action := game.Action{
		PlayerID: playerID,
		ShipID:   req.ShipID,
		Start:    req.Start,
		DragRow:  req.DragRow,
		DragCol:  req.DragCol,
		Target:   req.Target,
	}
	switch req.Kind {
	case "place-ship":
		action.Kind = game.ActionPlaceShip
	case "unplace-ship":
		action.Kind = game.ActionUnplaceShip
	case "auto-place":
		action.Kind = game.ActionAutoPlace
	case "fire":
		action.Kind = game.ActionFire
		m, ok := game.ParseMunition(req.Munition)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown munition %q", req.Munition))
			return
		}
		action.Munition = m
	default:
		writeError(w, http.StatusBadRequest, fmt.Errorf("unknown action kind %q", req.Kind))
		return
	}

	res, err := s.Game.ProcessAction(action)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

// targetRequest resolves or cancels the pending human target request.
// Munition defaults to a plain shot when omitted.
type targetRequest struct {
	Cancel   bool        `json:"cancel"`
	Target   world.Coord `json:"target"`
	Munition string      `json:"munition"`
}

func (s *Server) handleTarget(w http.ResponseWriter, r *http.Request) {
	var req targetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("decode target: %w", err))
		return
	}
	munition := game.MunitionShot
	if req.Munition != "" {
		m, ok := game.ParseMunition(req.Munition)
		if !ok {
			writeError(w, http.StatusBadRequest, fmt.Errorf("unknown munition %q", req.Munition))
			return
		}
		munition = m
	}
	pending := s.Game.PendingTarget()
	if pending == nil {
		writeError(w, http.StatusConflict, fmt.Errorf("no target request is pending"))
		return
	}
	var ok bool
	if req.Cancel {
		ok = pending.Cancel()
	} else {
		ok = pending.Resolve(game.TargetChoice{Coord: req.Target, Munition: munition})
	}
	if !ok {
		writeError(w, http.StatusConflict, fmt.Errorf("target request already settled"))
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	if s.DB == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("no stats database configured"))
		return
	}
	rows, err := s.DB.Leaderboard(20)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "error", err)
		return
	}
	s.mu.Lock()
	s.clients[conn] = struct{}{}
	s.mu.Unlock()
	go s.readPump(conn)
}

// readPump drains the connection so close frames are processed and the
// client is reaped as soon as it disconnects, not on the next broadcast.
func (s *Server) readPump(conn *websocket.Conn) {
	defer func() {
		s.mu.Lock()
		delete(s.clients, conn)
		s.mu.Unlock()
		conn.Close()
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

// statusFor maps the engine error taxonomy onto HTTP statuses.
func statusFor(err error) int {
	var ve *game.ValidationError
	var se *game.StateError
	var re *game.ResourceExhaustedError
	switch {
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.As(err, &se):
		return http.StatusConflict
	case errors.As(err, &re):
		return http.StatusPaymentRequired
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
