package main

import (
	"testing"
	"time"

	"github.com/talgya/broadside/internal/era"
	"github.com/talgya/broadside/internal/game"
	"github.com/talgya/broadside/internal/world"
)

func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal(msg)
}

// The turn loop owns the placement→playing transition: it deploys the AI
// fleets and starts the match as soon as the human's fleet is complete,
// then opens a target request the human can answer.
func TestTurnLoopStartsMatchAndPlaysHumanTurn(t *testing.T) {
	cfg := era.Classic()
	cfg.Players[0].Kind = "human"
	cfg.Players[0].Name = "You"

	g, err := game.New(cfg, 1)
	if err != nil {
		t.Fatalf("new game: %v", err)
	}
	if err := g.BeginPlacement(); err != nil {
		t.Fatalf("begin placement: %v", err)
	}
	human := g.Players()[0]
	if _, err := g.ProcessAction(game.Action{Kind: game.ActionAutoPlace, PlayerID: human.ID}); err != nil {
		t.Fatalf("place human fleet: %v", err)
	}

	go humanTurnLoop(g)

	waitFor(t, func() bool { return g.State() == game.StatePlaying },
		"loop never started the match after all fleets were placeable")
	for _, p := range g.Players() {
		if !p.Fleet.IsComplete() {
			t.Errorf("player %q fleet still incomplete after start", p.Name)
		}
	}

	waitFor(t, func() bool { return g.PendingTarget() != nil },
		"loop never opened a target request for the human turn")
	pending := g.PendingTarget()
	if pending.PlayerID != human.ID {
		t.Fatal("target request bound to the wrong player")
	}
	if !pending.Resolve(game.TargetChoice{Coord: world.Coord{Row: 0, Col: 0}, Munition: game.MunitionShot}) {
		t.Fatal("resolve refused")
	}

	waitFor(t, func() bool { return len(g.ShotHistory()) > 0 },
		"resolved target was never fired")
}
