// Package game orchestrates one match: phase transitions, turn order,
// attack resolution, the munitions economy, and alliance win evaluation.
// The engine is single-threaded and cooperative: each action is fully
// applied, logged, and win-checked before the next one is accepted.
package game

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/talgya/broadside/internal/board"
	"github.com/talgya/broadside/internal/era"
	"github.com/talgya/broadside/internal/fleet"
	"github.com/talgya/broadside/internal/placement"
	"github.com/talgya/broadside/internal/player"
	"github.com/talgya/broadside/internal/world"
)

// State is the match phase. Transitions are monotonic; a new match means a
// new Game value.
type State uint8

const (
	StateSetup State = iota
	StatePlacement
	StatePlaying
	StateFinished
)

var stateNames = map[State]string{
	StateSetup:     "setup",
	StatePlacement: "placement",
	StatePlaying:   "playing",
	StateFinished:  "finished",
}

// StateName returns a human-readable name for a match phase.
func StateName(s State) string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Observer receives the result of every completed action.
// The caller registers at most one; there is no broadcast fan-out.
type Observer func(Result)

// Game composes the board, players, alliances, and turn engine for one
// match. Create a fresh Game per match and discard it afterwards.
type Game struct {
	ID  uuid.UUID
	Era string

	state     State
	rules     era.Rules
	board     *board.Board
	arena     *fleet.Arena
	placer    *placement.Engine
	players   []*player.Player
	byID      map[uuid.UUID]*player.Player
	alliances map[string]*Alliance
	order     []string // Alliance IDs in configuration order

	turnIdx   int
	turnCount int
	winner    string
	events    []EventEntry

	rng      *rand.Rand
	observer Observer
	pending  *TargetRequest

	// busy rejects concurrent actions; the engine is not re-entrant.
	busy sync.Mutex
	// mu guards engine state against observation endpoints reading while
	// an action is being applied. Writers hold it for the whole mutation.
	mu sync.RWMutex
}

// New builds a match from an era configuration. The same seed reproduces
// the same grid and the same AI decisions.
func New(cfg *era.Config, seed int64) (*Game, error) {
	if err := cfg.Validate(); err != nil {
		return nil, validationf("era config: %v", err)
	}
	grid, err := cfg.BuildGrid()
	if err != nil {
		return nil, validationf("build grid: %v", err)
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	g := &Game{
		ID:        uuid.New(),
		Era:       cfg.Name,
		state:     StateSetup,
		rules:     cfg.Rules,
		board:     board.New(grid),
		arena:     fleet.NewArena(),
		byID:      make(map[uuid.UUID]*player.Player),
		alliances: make(map[string]*Alliance),
		rng:       rand.New(rand.NewSource(seed)),
	}

	for _, a := range cfg.Alliances {
		g.alliances[a.ID] = &Alliance{ID: a.ID, Name: a.Name}
		g.order = append(g.order, a.ID)
	}

	shipID := 0
	for _, spec := range cfg.Players {
		kind := player.AI
		if spec.Kind == "human" {
			kind = player.Human
		}
		p := player.New(kind, spec.Name, spec.Alliance)
		p.StarShells = cfg.Munitions.StarShells
		p.ScatterShot = cfg.Munitions.ScatterShot
		if kind == player.AI {
			p.Strategy = player.StrategyByName(spec.Strategy)
			p.Difficulty = spec.Difficulty
		}

		var ships []*fleet.Ship
		for _, ss := range cfg.Fleets[spec.Alliance] {
			allowed, terr := ss.TerrainSet()
			if terr != nil {
				return nil, validationf("ship %q terrain: %v", ss.Name, terr)
			}
			class, _ := fleet.ParseClass(ss.Class)
			ship := fleet.NewShip(shipID, ss.Name, class, ss.Size, allowed)
			ship.Torpedoes = ss.Torpedoes
			shipID++
			ships = append(ships, ship)
			g.arena.Add(ship, p.ID)
		}
		p.Fleet = fleet.NewFleet(p.ID, ships)

		g.players = append(g.players, p)
		g.byID[p.ID] = p
		g.alliances[spec.Alliance].Members = append(g.alliances[spec.Alliance].Members, p.ID)
	}

	g.placer = placement.NewEngine(g.board, g.arena, placement.Rules{
		AllowFleetOverlap: cfg.Rules.AllowFleetOverlap,
		Restriction:       cfg.Rules.PlacementRestriction,
	})

	return g, nil
}

// State returns the current match phase.
func (g *Game) State() State {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.state
}

// Board returns the match board.
func (g *Game) Board() *board.Board { return g.board }

// Placer returns the placement engine for direct placement flows.
func (g *Game) Placer() *placement.Engine { return g.placer }

// Rng returns the match's deterministic random source.
func (g *Game) Rng() *rand.Rand { return g.rng }

// Players returns the participants in turn order.
func (g *Game) Players() []*player.Player { return g.players }

// PlayerByID returns the participant with the given id, or nil.
func (g *Game) PlayerByID(id uuid.UUID) *player.Player { return g.byID[id] }

// Alliances returns the configured alliances.
func (g *Game) Alliances() map[string]*Alliance { return g.alliances }

// Winner returns the winning alliance ID, or "" while undecided.
func (g *Game) Winner() string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.winner
}

// Turn returns the number of completed turns.
func (g *Game) Turn() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.turnCount
}

// Events returns a copy of the match log in append order.
func (g *Game) Events() []EventEntry {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]EventEntry, len(g.events))
	copy(out, g.events)
	return out
}

// ShotHistory returns a copy of the board's shot record, safe to read while
// actions are being applied.
func (g *Game) ShotHistory() []board.ShotRecord {
	g.mu.RLock()
	defer g.mu.RUnlock()
	shots := g.board.Shots()
	out := make([]board.ShotRecord, len(shots))
	copy(out, shots)
	return out
}

// SetObserver registers the single state-changed callback.
func (g *Game) SetObserver(fn Observer) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.observer = fn
}

// CurrentPlayer returns the participant whose turn it is.
func (g *Game) CurrentPlayer() *player.Player {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.currentPlayer()
}

func (g *Game) currentPlayer() *player.Player {
	return g.players[g.turnIdx]
}

// AITarget runs the player's strategy over the current board under the
// engine lock, so AI turn loops can run beside observation endpoints.
func (g *Game) AITarget(p *player.Player) (world.Coord, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return p.Strategy.ChooseTarget(g.board, p, g.rng)
}

// ChooseAlliance reassigns a player before placement begins, when the era
// allows it. Remaining players are redistributed deterministically over the
// other alliances in configuration order.
func (g *Game) ChooseAlliance(playerID uuid.UUID, allianceID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateSetup {
		return statef("alliance choice is only allowed during setup, state is %s", StateName(g.state))
	}
	if !g.rules.AllowAllianceChoice {
		return statef("era does not allow alliance choice")
	}
	chooser := g.byID[playerID]
	if chooser == nil {
		return validationf("unknown player %s", playerID)
	}
	if _, ok := g.alliances[allianceID]; !ok {
		return validationf("unknown alliance %q", allianceID)
	}

	var others []string
	for _, id := range g.order {
		if id != allianceID {
			others = append(others, id)
		}
	}

	chooser.AllianceID = allianceID
	next := 0
	for _, p := range g.players {
		if p == chooser {
			continue
		}
		p.AllianceID = others[next%len(others)]
		next++
	}

	for _, a := range g.alliances {
		a.Members = a.Members[:0]
	}
	for _, p := range g.players {
		g.alliances[p.AllianceID].Members = append(g.alliances[p.AllianceID].Members, p.ID)
	}
	return nil
}

// BeginPlacement transitions setup→placement once the board, at least two
// players, and the alliances are initialized.
func (g *Game) BeginPlacement() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StateSetup {
		return statef("cannot begin placement from %s", StateName(g.state))
	}
	if len(g.players) < 2 {
		return statef("need at least 2 players, have %d", len(g.players))
	}
	for _, a := range g.alliances {
		if len(a.Members) == 0 {
			return statef("alliance %q has no members", a.ID)
		}
	}
	g.state = StatePlacement
	g.logEvent("placement phase begins")
	return nil
}

// Start transitions placement→playing once every fleet is complete.
func (g *Game) Start() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StatePlacement {
		return statef("cannot start from %s", StateName(g.state))
	}
	for _, p := range g.players {
		if !p.Fleet.IsComplete() {
			return statef("player %q has unplaced ships", p.Name)
		}
	}
	g.state = StatePlaying
	g.logEvent("battle begins, %s to fire first", g.currentPlayer().Name)
	return nil
}

// ProcessAction applies one discrete action. The action is fully applied —
// board, ship, and player mutation, event log, win evaluation — before the
// method returns; concurrent calls are rejected with a StateError.
func (g *Game) ProcessAction(a Action) (*Result, error) {
	if !g.busy.TryLock() {
		return nil, statef("engine is busy resolving another action")
	}
	defer g.busy.Unlock()

	p := g.byID[a.PlayerID]
	if p == nil {
		return nil, validationf("unknown player %s", a.PlayerID)
	}

	g.mu.Lock()
	var (
		res *Result
		err error
	)
	switch a.Kind {
	case ActionPlaceShip:
		res, err = g.placeShip(p, a)
	case ActionUnplaceShip:
		res, err = g.unplaceShip(p, a)
	case ActionAutoPlace:
		res, err = g.autoPlace(p)
	case ActionFire:
		res, err = g.fire(p, a)
	default:
		err = validationf("unknown action kind %d", a.Kind)
	}
	obs := g.observer
	g.mu.Unlock()
	if err != nil {
		return nil, err
	}

	// Fired outside the state lock but inside the busy section, so the
	// observer may read engine state but not submit another action.
	if obs != nil {
		obs(*res)
	}
	return res, nil
}

func (g *Game) placeShip(p *player.Player, a Action) (*Result, error) {
	if g.state != StatePlacement {
		return nil, statef("placement attempted during %s", StateName(g.state))
	}
	ship := p.Fleet.ShipByID(a.ShipID)
	if ship == nil {
		return nil, validationf("player %q has no ship %d", p.Name, a.ShipID)
	}
	if err := g.placer.PlaceManual(ship, p.ID, a.Start, a.DragRow, a.DragCol); err != nil {
		return nil, validationf("%v", err)
	}
	ev := g.logEvent("%s places %s at %v", p.Name, ship.Name, ship.Cells[0])
	return &Result{Kind: ActionPlaceShip, Event: ev}, nil
}

func (g *Game) unplaceShip(p *player.Player, a Action) (*Result, error) {
	if g.state != StatePlacement {
		return nil, statef("placement attempted during %s", StateName(g.state))
	}
	ship := p.Fleet.ShipByID(a.ShipID)
	if ship == nil {
		return nil, validationf("player %q has no ship %d", p.Name, a.ShipID)
	}
	g.placer.Unplace(ship)
	ev := g.logEvent("%s recalls %s", p.Name, ship.Name)
	return &Result{Kind: ActionUnplaceShip, Event: ev}, nil
}

func (g *Game) autoPlace(p *player.Player) (*Result, error) {
	if g.state != StatePlacement {
		return nil, statef("placement attempted during %s", StateName(g.state))
	}
	if err := g.placer.AutoPlace(p.Fleet, g.rng); err != nil {
		return nil, validationf("%v", err)
	}
	ev := g.logEvent("%s deploys the fleet", p.Name)
	return &Result{Kind: ActionAutoPlace, Event: ev}, nil
}

// advanceTurn moves to the next player whose fleet is not fully sunk.
func (g *Game) advanceTurn() {
	g.turnCount++
	for i := 1; i <= len(g.players); i++ {
		idx := (g.turnIdx + i) % len(g.players)
		if !g.players[idx].Fleet.AllSunk() {
			g.turnIdx = idx
			return
		}
	}
}

// evaluateWin checks the alliance condition after an attack resolution.
// When exactly one alliance remains undefeated the match finishes.
func (g *Game) evaluateWin() {
	var undefeated []string
	for _, id := range g.order {
		if !g.alliances[id].IsDefeated(g.byID) {
			undefeated = append(undefeated, id)
		}
	}
	if len(undefeated) == 1 {
		g.winner = undefeated[0]
		g.state = StateFinished
		g.logEvent("%s wins the battle", g.alliances[g.winner].Name)
		slog.Info("match finished",
			"game", g.ID,
			"winner", g.alliances[g.winner].Name,
			"turns", g.turnCount,
		)
	}
}

func (g *Game) logEvent(format string, args ...any) EventEntry {
	ev := EventEntry{
		Turn:    g.turnCount,
		Message: fmt.Sprintf(format, args...),
		At:      time.Now(),
	}
	g.events = append(g.events, ev)
	return ev
}

// IsValidAttack reports whether the coordinate is attackable on this board.
func (g *Game) IsValidAttack(c world.Coord) bool {
	return g.board.IsValidAttackTarget(c)
}
