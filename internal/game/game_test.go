package game_test

import (
	"errors"
	"testing"

	"github.com/talgya/broadside/internal/board"
	"github.com/talgya/broadside/internal/era"
	"github.com/talgya/broadside/internal/game"
	"github.com/talgya/broadside/internal/player"
	"github.com/talgya/broadside/internal/world"
)

// duelConfig is a minimal two-player era: one destroyer each on a 10x10
// open-water grid. Rapid rules keep the shooter's turn so scenarios can
// fire repeatedly.
func duelConfig() *era.Config {
	destroyer := []era.ShipSpec{
		{Name: "Destroyer", Class: "destroyer", Size: 2, AllowedTerrain: []string{"deep"}},
	}
	return &era.Config{
		Name: "duel",
		Rows: 10,
		Cols: 10,
		Rules: era.Rules{
			TurnOnHit:  true,
			TurnOnMiss: true,
		},
		Munitions: era.Munitions{StarShells: 2, ScatterShot: 1},
		Alliances: []era.AllianceSpec{
			{ID: "a", Name: "Alliance A"},
			{ID: "b", Name: "Alliance B"},
		},
		Players: []era.PlayerSpec{
			{Name: "Attacker", Kind: "ai", Alliance: "a", Strategy: "random"},
			{Name: "Defender", Kind: "ai", Alliance: "b", Strategy: "random"},
		},
		Fleets: map[string][]era.ShipSpec{
			"a": destroyer,
			"b": destroyer,
		},
	}
}

// startDuel builds the duel, places the attacker's destroyer at (3,3)-(3,4)
// and the defender's at (7,0)-(7,1), and starts play.
func startDuel(t *testing.T, cfg *era.Config) *game.Game {
	t.Helper()
	g, err := game.New(cfg, 1)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if err := g.BeginPlacement(); err != nil {
		t.Fatalf("begin placement: %v", err)
	}
	p0, p1 := g.Players()[0], g.Players()[1]
	if _, err := g.ProcessAction(game.Action{
		Kind: game.ActionPlaceShip, PlayerID: p0.ID,
		ShipID: p0.Fleet.Ships[0].ID, Start: world.Coord{Row: 3, Col: 3}, DragCol: 1,
	}); err != nil {
		t.Fatalf("place attacker ship: %v", err)
	}
	if _, err := g.ProcessAction(game.Action{
		Kind: game.ActionPlaceShip, PlayerID: p1.ID,
		ShipID: p1.Fleet.Ships[0].ID, Start: world.Coord{Row: 7, Col: 0}, DragCol: 1,
	}); err != nil {
		t.Fatalf("place defender ship: %v", err)
	}
	if err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	return g
}

func fire(t *testing.T, g *game.Game, p *player.Player, m game.Munition, c world.Coord) *game.Result {
	t.Helper()
	res, err := g.ProcessAction(game.Action{
		Kind: game.ActionFire, PlayerID: p.ID, Munition: m, Target: c,
	})
	if err != nil {
		t.Fatalf("fire at %v: %v", c, err)
	}
	return res
}

func TestShotHitAlreadyHitSunk(t *testing.T) {
	g := startDuel(t, duelConfig())
	attacker := g.Players()[0]

	res := fire(t, g, attacker, game.MunitionShot, world.Coord{Row: 7, Col: 0})
	if want, have := board.ResultHit, res.Cells[0].Result; want != have {
		t.Fatalf("first shot: want=%v, have=%v", want, have)
	}

	res = fire(t, g, attacker, game.MunitionShot, world.Coord{Row: 7, Col: 0})
	if want, have := board.ResultAlreadyHit, res.Cells[0].Result; want != have {
		t.Fatalf("repeat shot: want=%v, have=%v", want, have)
	}

	res = fire(t, g, attacker, game.MunitionShot, world.Coord{Row: 7, Col: 1})
	if want, have := board.ResultSunk, res.Cells[0].Result; want != have {
		t.Fatalf("final shot: want=%v, have=%v", want, have)
	}
	if !g.Players()[1].Fleet.Ships[0].IsSunk() {
		t.Error("defender's ship not sunk")
	}
	// Every cell of the dead ship joins the attacker's dont-shoot set.
	if !attacker.IsUnshootable(world.Coord{Row: 7, Col: 0}) ||
		!attacker.IsUnshootable(world.Coord{Row: 7, Col: 1}) {
		t.Error("sunk ship cells not marked unshootable for the attacker")
	}
}

func TestWinEndsMatchAndRejectsFurtherFire(t *testing.T) {
	g := startDuel(t, duelConfig())
	attacker := g.Players()[0]

	fire(t, g, attacker, game.MunitionShot, world.Coord{Row: 7, Col: 0})
	res := fire(t, g, attacker, game.MunitionShot, world.Coord{Row: 7, Col: 1})

	if want, have := "a", res.Winner; want != have {
		t.Fatalf("winner: want=%q, have=%q", want, have)
	}
	if want, have := game.StateFinished, g.State(); want != have {
		t.Fatalf("state: want=%v, have=%v", want, have)
	}

	_, err := g.ProcessAction(game.Action{
		Kind: game.ActionFire, PlayerID: attacker.ID,
		Munition: game.MunitionShot, Target: world.Coord{Row: 0, Col: 0},
	})
	var se *game.StateError
	if !errors.As(err, &se) {
		t.Errorf("fire after finish: want StateError, have %v", err)
	}
}

func TestExcludedTargetRejectedWithoutHistory(t *testing.T) {
	cfg := duelConfig()
	rows := make([]string, 10)
	for i := range rows {
		rows[i] = "dddddddddd"
	}
	rows[9] = "dddddddddx"
	cfg.Terrain = rows

	g := startDuel(t, cfg)
	attacker := g.Players()[0]

	_, err := g.ProcessAction(game.Action{
		Kind: game.ActionFire, PlayerID: attacker.ID,
		Munition: game.MunitionShot, Target: world.Coord{Row: 9, Col: 9},
	})
	var ve *game.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, have %v", err)
	}
	if len(g.Board().Shots()) != 0 {
		t.Error("rejected shot produced a history entry")
	}
	if attacker.Shots != 0 {
		t.Error("rejected shot counted in statistics")
	}
}

func TestDontShootTargetRejectedWithoutMutation(t *testing.T) {
	g := startDuel(t, duelConfig())
	attacker := g.Players()[0]

	fire(t, g, attacker, game.MunitionShot, world.Coord{Row: 0, Col: 0}) // miss
	before := len(g.Board().Shots())

	_, err := g.ProcessAction(game.Action{
		Kind: game.ActionFire, PlayerID: attacker.ID,
		Munition: game.MunitionShot, Target: world.Coord{Row: 0, Col: 0},
	})
	var ve *game.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("want ValidationError, have %v", err)
	}
	if len(g.Board().Shots()) != before {
		t.Error("rejected re-target mutated the shot history")
	}
}

func TestWrongTurnAndWrongPhase(t *testing.T) {
	cfg := duelConfig()
	g, err := game.New(cfg, 1)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if err := g.BeginPlacement(); err != nil {
		t.Fatalf("begin placement: %v", err)
	}
	attacker := g.Players()[0]

	// Firing during placement is a StateError.
	_, err = g.ProcessAction(game.Action{
		Kind: game.ActionFire, PlayerID: attacker.ID,
		Munition: game.MunitionShot, Target: world.Coord{Row: 0, Col: 0},
	})
	var se *game.StateError
	if !errors.As(err, &se) {
		t.Fatalf("fire during placement: want StateError, have %v", err)
	}

	// Starting before fleets are complete is also a StateError.
	if err := g.Start(); err == nil {
		t.Error("start with unplaced fleets accepted")
	}
}

func TestOutOfTurnFireRejected(t *testing.T) {
	g := startDuel(t, duelConfig())
	defender := g.Players()[1]

	_, err := g.ProcessAction(game.Action{
		Kind: game.ActionFire, PlayerID: defender.ID,
		Munition: game.MunitionShot, Target: world.Coord{Row: 3, Col: 3},
	})
	var se *game.StateError
	if !errors.As(err, &se) {
		t.Errorf("out-of-turn fire: want StateError, have %v", err)
	}
}

func TestTurnAdvancesWithoutContinuationRules(t *testing.T) {
	cfg := duelConfig()
	cfg.Rules = era.Rules{} // Classic rules: turn always passes
	g := startDuel(t, cfg)
	p0, p1 := g.Players()[0], g.Players()[1]

	res := fire(t, g, p0, game.MunitionShot, world.Coord{Row: 0, Col: 0})
	if !res.TurnAdvanced {
		t.Error("turn did not advance after a classic-rules shot")
	}
	if g.CurrentPlayer() != p1 {
		t.Error("current player did not rotate")
	}
}

func TestStarShellRevealsWithoutDamage(t *testing.T) {
	g := startDuel(t, duelConfig())
	attacker := g.Players()[0]
	defender := g.Players()[1]

	res := fire(t, g, attacker, game.MunitionStarShell, world.Coord{Row: 7, Col: 1})

	occupied := 0
	for _, c := range res.Cells {
		if !c.Revealed {
			t.Fatalf("star shell cell %v not marked revealed", c.Coord)
		}
		if c.Occupied {
			occupied++
		}
	}
	if want, have := 2, occupied; want != have {
		t.Errorf("occupied cells revealed: want=%d, have=%d", want, have)
	}
	if len(g.Board().Shots()) != 0 {
		t.Error("star shell wrote shot history")
	}
	if defender.Fleet.Ships[0].UnsunkCells() != 2 {
		t.Error("star shell damaged a ship")
	}
	if want, have := 1, attacker.StarShells; want != have {
		t.Errorf("star shell balance: want=%d, have=%d", want, have)
	}
	if attacker.Shots != 0 {
		t.Error("star shell counted as a shot outcome")
	}
}

func TestStarShellExhaustion(t *testing.T) {
	cfg := duelConfig()
	cfg.Munitions.StarShells = 0
	g := startDuel(t, cfg)
	attacker := g.Players()[0]

	_, err := g.ProcessAction(game.Action{
		Kind: game.ActionFire, PlayerID: attacker.ID,
		Munition: game.MunitionStarShell, Target: world.Coord{Row: 5, Col: 5},
	})
	var re *game.ResourceExhaustedError
	if !errors.As(err, &re) {
		t.Errorf("want ResourceExhaustedError, have %v", err)
	}
}

func TestScatterShotPattern(t *testing.T) {
	g := startDuel(t, duelConfig())
	attacker := g.Players()[0]

	res := fire(t, g, attacker, game.MunitionScatterShot, world.Coord{Row: 7, Col: 0})

	// Footprint is the plus shape clipped to the board: (7,0) (6,0) (8,0)
	// (7,1); (7,-1) is off-grid.
	if want, have := 4, len(res.Cells); want != have {
		t.Fatalf("scatter cells: want=%d, have=%d", want, have)
	}
	sunk := false
	for _, c := range res.Cells {
		if c.Result == board.ResultSunk {
			sunk = true
		}
	}
	if !sunk {
		t.Error("scatter over the destroyer did not sink it")
	}
	if want, have := "a", res.Winner; want != have {
		t.Errorf("winner: want=%q, have=%q", want, have)
	}
	if want, have := 0, attacker.ScatterShot; want != have {
		t.Errorf("scatter balance: want=%d, have=%d", want, have)
	}
}

func TestTorpedoConsumesFromSubmarine(t *testing.T) {
	cfg := duelConfig()
	cfg.Fleets["a"] = []era.ShipSpec{
		{Name: "Submarine", Class: "submarine", Size: 3, AllowedTerrain: []string{"deep"}, Torpedoes: 1},
	}
	g, err := game.New(cfg, 1)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if err := g.BeginPlacement(); err != nil {
		t.Fatalf("begin placement: %v", err)
	}
	p0, p1 := g.Players()[0], g.Players()[1]
	if _, err := g.ProcessAction(game.Action{
		Kind: game.ActionPlaceShip, PlayerID: p0.ID,
		ShipID: p0.Fleet.Ships[0].ID, Start: world.Coord{Row: 0, Col: 0}, DragCol: 1,
	}); err != nil {
		t.Fatalf("place submarine: %v", err)
	}
	if _, err := g.ProcessAction(game.Action{
		Kind: game.ActionPlaceShip, PlayerID: p1.ID,
		ShipID: p1.Fleet.Ships[0].ID, Start: world.Coord{Row: 7, Col: 0}, DragCol: 1,
	}); err != nil {
		t.Fatalf("place destroyer: %v", err)
	}
	if err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	sub := p0.Fleet.Ships[0]
	res := fire(t, g, p0, game.MunitionTorpedo, world.Coord{Row: 7, Col: 0})
	if want, have := board.ResultHit, res.Cells[0].Result; want != have {
		t.Fatalf("torpedo result: want=%v, have=%v", want, have)
	}
	if want, have := 0, sub.Torpedoes; want != have {
		t.Errorf("submarine torpedoes: want=%d, have=%d", want, have)
	}

	// Empty inventory: the next torpedo is a resource failure.
	_, err = g.ProcessAction(game.Action{
		Kind: game.ActionFire, PlayerID: p0.ID,
		Munition: game.MunitionTorpedo, Target: world.Coord{Row: 7, Col: 1},
	})
	var re *game.ResourceExhaustedError
	if !errors.As(err, &re) {
		t.Errorf("want ResourceExhaustedError, have %v", err)
	}
}

func TestEngineRejectsReentrantActions(t *testing.T) {
	g := startDuel(t, duelConfig())
	attacker := g.Players()[0]

	var reentrant error
	g.SetObserver(func(res game.Result) {
		_, reentrant = g.ProcessAction(game.Action{
			Kind: game.ActionFire, PlayerID: attacker.ID,
			Munition: game.MunitionShot, Target: world.Coord{Row: 1, Col: 1},
		})
	})

	fire(t, g, attacker, game.MunitionShot, world.Coord{Row: 0, Col: 0})

	var se *game.StateError
	if !errors.As(reentrant, &se) {
		t.Errorf("re-entrant action: want StateError, have %v", reentrant)
	}
}

func TestResultsOnlyWhenFinished(t *testing.T) {
	g := startDuel(t, duelConfig())
	if _, err := g.Results(); err == nil {
		t.Error("results available before the match finished")
	}

	attacker := g.Players()[0]
	fire(t, g, attacker, game.MunitionShot, world.Coord{Row: 7, Col: 0})
	fire(t, g, attacker, game.MunitionShot, world.Coord{Row: 7, Col: 1})

	results, err := g.Results()
	if err != nil {
		t.Fatalf("results: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("results length: want=2, have=%d", len(results))
	}
	for _, r := range results {
		if r.Alliance == "a" && !r.Won {
			t.Error("winning alliance member not marked as winner")
		}
		if r.Alliance == "b" && r.Won {
			t.Error("defeated alliance member marked as winner")
		}
	}
}

func TestChooseAlliance(t *testing.T) {
	cfg := duelConfig()
	cfg.Rules.AllowAllianceChoice = true
	g, err := game.New(cfg, 1)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	p0, p1 := g.Players()[0], g.Players()[1]

	// The second player claims alliance a; the first is reassigned to b.
	if err := g.ChooseAlliance(p1.ID, "a"); err != nil {
		t.Fatalf("choose alliance: %v", err)
	}
	if p1.AllianceID != "a" || p0.AllianceID != "b" {
		t.Errorf("alliances after choice: p0=%q p1=%q", p0.AllianceID, p1.AllianceID)
	}
	if err := g.BeginPlacement(); err != nil {
		t.Errorf("begin placement after choice: %v", err)
	}
}

func TestChooseAllianceRequiresRule(t *testing.T) {
	g, err := game.New(duelConfig(), 1)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	p1 := g.Players()[1]
	var se *game.StateError
	if err := g.ChooseAlliance(p1.ID, "a"); !errors.As(err, &se) {
		t.Errorf("want StateError, have %v", err)
	}
}

// TestConcurrentObservationDuringPlay hammers the read-only accessors from
// another goroutine while a match is being played. Run with -race; the
// engine lock must keep observation endpoints safe beside action dispatch.
func TestConcurrentObservationDuringPlay(t *testing.T) {
	cfg := era.Classic()
	g, err := game.New(cfg, 11)
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

	done := make(chan struct{})
	stopped := make(chan struct{})
	go func() {
		defer close(stopped)
		for {
			select {
			case <-done:
				return
			default:
			}
			_ = g.Stats()
			_ = g.State()
			_ = g.Events()
			_ = g.ShotHistory()
			_ = g.Winner()
			_ = g.Turn()
			_ = g.PendingTarget()
			_ = g.CurrentPlayer()
		}
	}()

	for i := 0; i < 300 && g.State() == game.StatePlaying; i++ {
		p := g.CurrentPlayer()
		target, err := g.AITarget(p)
		if err != nil {
			t.Fatalf("choose target: %v", err)
		}
		if _, err := g.ProcessAction(game.Action{
			Kind: game.ActionFire, PlayerID: p.ID,
			Munition: game.MunitionShot, Target: target,
		}); err != nil {
			t.Fatalf("fire: %v", err)
		}
	}
	close(done)
	<-stopped
}

// TestStatsExposePlayerIDs checks that the live stats view carries the
// action handle for every participant.
func TestStatsExposePlayerIDs(t *testing.T) {
	g := startDuel(t, duelConfig())
	st := g.Stats()
	for i, line := range st.Players {
		if want, have := g.Players()[i].ID.String(), line.PlayerID; want != have {
			t.Errorf("player %d id: want=%q, have=%q", i, want, have)
		}
	}
}

// TestFullMatchLoop drives a seeded AI-vs-AI match to completion the way
// the caller-driven advance loop does, checking the liveness invariant: as
// long as play continues some alliance has unsunk cells.
func TestFullMatchLoop(t *testing.T) {
	cfg := era.Classic()
	g, err := game.New(cfg, 99)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if err := g.BeginPlacement(); err != nil {
		t.Fatalf("begin placement: %v", err)
	}
	for _, p := range g.Players() {
		if _, err := g.ProcessAction(game.Action{Kind: game.ActionAutoPlace, PlayerID: p.ID}); err != nil {
			t.Fatalf("auto-place %s: %v", p.Name, err)
		}
	}
	if err := g.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	for i := 0; g.State() == game.StatePlaying; i++ {
		if i > 5000 {
			t.Fatal("match did not finish within 5000 actions")
		}
		afloat := 0
		for _, p := range g.Players() {
			afloat += p.Fleet.UnsunkCells()
		}
		if afloat == 0 {
			t.Fatal("no unsunk cells while state is still playing")
		}

		p := g.CurrentPlayer()
		target, err := p.Strategy.ChooseTarget(g.Board(), p, g.Rng())
		if err != nil {
			t.Fatalf("AI exhausted targets: %v", err)
		}
		if _, err := g.ProcessAction(game.Action{
			Kind: game.ActionFire, PlayerID: p.ID,
			Munition: game.MunitionShot, Target: target,
		}); err != nil {
			t.Fatalf("fire: %v", err)
		}
	}

	if g.Winner() == "" {
		t.Error("finished match has no winner")
	}
	if len(g.Events()) == 0 {
		t.Error("finished match has an empty event log")
	}
}
