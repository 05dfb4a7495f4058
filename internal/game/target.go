// Human target resolution. The engine never blocks internally: a caller
// creates a request, the UI resolves or cancels it, and only the resolved
// coordinate is fed back through ProcessAction. Cancellation and timeouts
// leave the engine untouched.
package game

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/talgya/broadside/internal/player"
	"github.com/talgya/broadside/internal/world"
)

// ErrTargetCanceled reports that a pending target request was canceled
// before a coordinate was supplied.
var ErrTargetCanceled = errors.New("target request canceled")

// TargetChoice is a human player's answer to a target request: where to
// fire and with what.
type TargetChoice struct {
	Coord    world.Coord
	Munition Munition
}

// TargetRequest is one pending ask for a human player's target.
// It resolves at most once.
type TargetRequest struct {
	PlayerID uuid.UUID

	once     sync.Once
	resolved chan TargetChoice
	canceled chan struct{}
}

// NewTargetRequest creates a pending request for the given player.
func NewTargetRequest(playerID uuid.UUID) *TargetRequest {
	return &TargetRequest{
		PlayerID: playerID,
		resolved: make(chan TargetChoice, 1),
		canceled: make(chan struct{}),
	}
}

// Resolve supplies the chosen target. It reports false if the request was
// already resolved or canceled.
func (r *TargetRequest) Resolve(choice TargetChoice) bool {
	done := false
	r.once.Do(func() {
		r.resolved <- choice
		done = true
	})
	return done
}

// Cancel rejects the pending request without resolving it.
// It reports false if the request was already resolved or canceled.
func (r *TargetRequest) Cancel() bool {
	done := false
	r.once.Do(func() {
		close(r.canceled)
		done = true
	})
	return done
}

// Await blocks until the request resolves, is canceled, or the context
// expires. On cancellation or timeout no engine state has been touched.
func (r *TargetRequest) Await(ctx context.Context) (TargetChoice, error) {
	select {
	case choice := <-r.resolved:
		return choice, nil
	case <-r.canceled:
		return TargetChoice{}, ErrTargetCanceled
	case <-ctx.Done():
		// Mark the request dead so a late Resolve is a no-op.
		r.Cancel()
		return TargetChoice{}, ctx.Err()
	}
}

// RequestTarget opens a target request for the current player, who must be
// human. Only one request may be pending at a time.
func (g *Game) RequestTarget() (*TargetRequest, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.state != StatePlaying {
		return nil, statef("target request during %s", StateName(g.state))
	}
	p := g.currentPlayer()
	if p.Kind != player.Human {
		return nil, statef("current player %q is not human", p.Name)
	}
	if g.pending != nil {
		return nil, statef("a target request is already pending")
	}
	req := NewTargetRequest(p.ID)
	g.pending = req
	return req, nil
}

// PendingTarget returns the open target request, or nil.
func (g *Game) PendingTarget() *TargetRequest {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.pending
}

// ClearPendingTarget releases the pending request slot after the request
// has resolved or been canceled.
func (g *Game) ClearPendingTarget() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.pending = nil
}
