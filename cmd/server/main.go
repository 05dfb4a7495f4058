// Command server hosts one match over the HTTP API for human play.
// The first human slot in the era takes its turns through the target
// endpoint; AI opponents respond after each completed human action.
package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"github.com/talgya/broadside/internal/api"
	"github.com/talgya/broadside/internal/config"
	"github.com/talgya/broadside/internal/era"
	"github.com/talgya/broadside/internal/game"
	"github.com/talgya/broadside/internal/player"
	"github.com/talgya/broadside/internal/stats"
)

// targetTimeout bounds how long a human may deliberate over one shot.
const targetTimeout = 2 * time.Minute

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.ParseServer()
	if err != nil {
		slog.Error("failed to parse configuration", "error", err)
		os.Exit(1)
	}

	// ── Era configuration ─────────────────────────────────────────────
	var eraCfg *era.Config
	if cfg.EraPath != "" {
		eraCfg, err = era.Load(cfg.EraPath)
		if err != nil {
			slog.Error("failed to load era", "error", err)
			os.Exit(1)
		}
	} else {
		eraCfg = era.Preset(cfg.Era, cfg.Seed)
		if eraCfg == nil {
			slog.Error("unknown era preset", "era", cfg.Era)
			os.Exit(1)
		}
		// Presets default to AI-vs-AI; the server hosts a human in the
		// first slot instead.
		eraCfg.Players[0].Kind = "human"
		eraCfg.Players[0].Name = "You"
	}

	// ── Match ─────────────────────────────────────────────────────────
	g, err := game.New(eraCfg, cfg.Seed)
	if err != nil {
		slog.Error("failed to create match", "error", err)
		os.Exit(1)
	}
	if err := g.BeginPlacement(); err != nil {
		slog.Error("failed to begin placement", "error", err)
		os.Exit(1)
	}

	// ── Stats database ────────────────────────────────────────────────
	os.MkdirAll("data", 0755)
	db, err := stats.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open stats database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	// ── Serve ─────────────────────────────────────────────────────────
	srv := &api.Server{Game: g, DB: db, Port: cfg.Port}
	go humanTurnLoop(g)

	if err := srv.Start(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

// humanTurnLoop drives the match: during placement it deploys the AI
// fleets and starts play once every fleet is complete; during play it opens
// a target request whenever a human holds the turn and lets AI opponents
// fire after each completed action. The engine itself never schedules
// anything.
func humanTurnLoop(g *game.Game) {
	for {
		time.Sleep(200 * time.Millisecond)
		switch g.State() {
		case game.StateFinished:
			return
		case game.StatePlacement:
			placeAndStart(g)
			continue
		case game.StatePlaying:
		default:
			continue
		}

		p := g.CurrentPlayer()
		if p.Kind == player.Human {
			if g.PendingTarget() != nil {
				continue
			}
			req, err := g.RequestTarget()
			if err != nil {
				continue
			}
			ctx, cancel := context.WithTimeout(context.Background(), targetTimeout)
			choice, err := req.Await(ctx)
			cancel()
			g.ClearPendingTarget()
			if err != nil {
				if errors.Is(err, context.DeadlineExceeded) {
					slog.Warn("target request timed out", "player", p.Name)
				}
				continue
			}
			if _, err := g.ProcessAction(game.Action{
				Kind:     game.ActionFire,
				PlayerID: p.ID,
				Munition: choice.Munition,
				Target:   choice.Coord,
			}); err != nil {
				slog.Warn("shot rejected", "player", p.Name, "error", err)
			}
			continue
		}

		// AI turn: decide synchronously, apply as one action.
		target, err := g.AITarget(p)
		if err != nil {
			slog.Error("AI has no targets left", "player", p.Name)
			return
		}
		if _, err := g.ProcessAction(game.Action{
			Kind:     game.ActionFire,
			PlayerID: p.ID,
			Munition: game.MunitionShot,
			Target:   target,
		}); err != nil {
			slog.Warn("AI shot rejected", "player", p.Name, "error", err)
		}
	}
}

// placeAndStart deploys any AI fleet still unplaced, then starts the match
// once the human's fleet is complete too. Start fails harmlessly until then.
func placeAndStart(g *game.Game) {
	for _, p := range g.Players() {
		if p.Kind != player.AI || p.Fleet.IsComplete() {
			continue
		}
		if _, err := g.ProcessAction(game.Action{Kind: game.ActionAutoPlace, PlayerID: p.ID}); err != nil {
			slog.Error("AI auto-placement failed", "player", p.Name, "error", err)
		}
	}
	if err := g.Start(); err == nil {
		slog.Info("all fleets deployed, battle begins")
	}
}
