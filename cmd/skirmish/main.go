// Command skirmish runs one AI-vs-AI match to completion and records the
// result.
package main

import (
	"fmt"
	"log/slog"
	"math/rand"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/dustin/go-humanize"

	"github.com/talgya/broadside/internal/era"
	"github.com/talgya/broadside/internal/game"
	"github.com/talgya/broadside/internal/player"
	"github.com/talgya/broadside/internal/stats"
	"github.com/talgya/broadside/internal/world"
)

// options is the env-driven configuration for a skirmish run.
type options struct {
	Era     string `env:"ERA" envDefault:"classic"`
	EraPath string `env:"ERA_CONFIG"`
	Seed    int64  `env:"SEED" envDefault:"0"`
	DBPath  string `env:"STATS_DB" envDefault:"data/broadside.db"`
	Verbose bool   `env:"VERBOSE" envDefault:"false"`
}

// maxActions bounds the match loop. A legal match always ends far earlier;
// this is a defensive stop, not a rule.
const maxActions = 10000

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	var opts options
	if err := env.Parse(&opts); err != nil {
		slog.Error("failed to parse environment", "error", err)
		os.Exit(1)
	}

	// ── Era configuration ─────────────────────────────────────────────
	cfg, err := loadEra(opts)
	if err != nil {
		slog.Error("failed to load era", "error", err)
		os.Exit(1)
	}
	slog.Info("era loaded", "name", cfg.Name, "rows", cfg.Rows, "cols", cfg.Cols)

	// ── Match setup ───────────────────────────────────────────────────
	g, err := game.New(cfg, opts.Seed)
	if err != nil {
		slog.Error("failed to create match", "error", err)
		os.Exit(1)
	}

	counts := g.Board().Grid().TerrainCounts()
	for t, c := range counts {
		slog.Info("terrain", "type", world.TerrainName(t), "count", c)
	}

	if err := g.BeginPlacement(); err != nil {
		slog.Error("failed to begin placement", "error", err)
		os.Exit(1)
	}
	for _, p := range g.Players() {
		if _, err := g.ProcessAction(game.Action{Kind: game.ActionAutoPlace, PlayerID: p.ID}); err != nil {
			slog.Error("auto-placement failed", "player", p.Name, "error", err)
			os.Exit(1)
		}
	}
	if err := g.Start(); err != nil {
		slog.Error("failed to start match", "error", err)
		os.Exit(1)
	}

	// ── Battle loop ───────────────────────────────────────────────────
	rng := g.Rng()
	for i := 0; g.State() == game.StatePlaying; i++ {
		if i >= maxActions {
			slog.Error("match did not finish within the action bound", "actions", maxActions)
			os.Exit(1)
		}
		p := g.CurrentPlayer()
		target, err := p.Strategy.ChooseTarget(g.Board(), p, rng)
		if err != nil {
			slog.Error("AI has no targets left", "player", p.Name, "error", err)
			os.Exit(1)
		}
		res, err := g.ProcessAction(game.Action{
			Kind:     game.ActionFire,
			PlayerID: p.ID,
			Munition: chooseMunition(p, rng),
			Target:   target,
		})
		if err != nil {
			slog.Error("fire rejected", "player", p.Name, "error", err)
			os.Exit(1)
		}
		if opts.Verbose {
			slog.Info("action", "turn", res.Event.Turn, "message", res.Event.Message)
		}
	}

	// ── Results ───────────────────────────────────────────────────────
	printSummary(g)

	results, err := g.Results()
	if err != nil {
		slog.Error("failed to collect results", "error", err)
		os.Exit(1)
	}
	os.MkdirAll("data", 0755)
	db, err := stats.Open(opts.DBPath)
	if err != nil {
		slog.Error("failed to open stats database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.SaveMatch(g.ID.String(), g.Era, g.Winner(), g.Turn(), results, g.Events()); err != nil {
		slog.Error("failed to save match", "error", err)
		os.Exit(1)
	}
	slog.Info("match saved", "db", opts.DBPath, "game", g.ID)
}

func loadEra(opts options) (*era.Config, error) {
	if opts.EraPath != "" {
		return era.Load(opts.EraPath)
	}
	cfg := era.Preset(opts.Era, opts.Seed)
	if cfg == nil {
		return nil, fmt.Errorf("unknown era preset %q", opts.Era)
	}
	return cfg, nil
}

// chooseMunition picks what the AI fires this turn: mostly plain shots,
// with occasional use of the limited munitions while supplies last.
func chooseMunition(p *player.Player, rng *rand.Rand) game.Munition {
	roll := rng.Float64()
	switch {
	case p.Submarine() != nil && roll < 0.10:
		return game.MunitionTorpedo
	case p.ScatterShot > 0 && roll < 0.18:
		return game.MunitionScatterShot
	case p.StarShells > 0 && roll < 0.25:
		return game.MunitionStarShell
	default:
		return game.MunitionShot
	}
}

func printSummary(g *game.Game) {
	st := g.Stats()
	slog.Info("battle over",
		"winner", st.Winner,
		"turns", humanize.Comma(int64(st.Turn)),
	)
	for _, line := range st.Players {
		slog.Info("admiral report",
			"name", line.Name,
			"alliance", line.Alliance,
			"shots", line.Shots,
			"hits", line.Hits,
			"accuracy", fmt.Sprintf("%.1f%%", line.Accuracy*100),
			"sunk", line.Sunk,
			"score", humanize.Comma(int64(line.Score)),
			"ships_afloat", line.ShipsAfloat,
		)
	}
}
