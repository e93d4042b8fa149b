package guard

import (
	"context"
	"sync"

	routegate "github.com/shopfront/routegate"
	"github.com/shopfront/routegate/session"
)

// State is the render state of a guard.
type State uint8

const (
	// StateLoading shows the neutral placeholder: either the auth
	// context has not settled, or a redirect is in flight.
	StateLoading State = iota
	// StateContent exposes the wrapped content.
	StateContent
)

// Outcome is the result of observing one session snapshot.
type Outcome struct {
	State    State
	Decision routegate.Decision
}

// Navigator performs client-side navigation. Replace must not push a
// history entry; back-navigation after a guard redirect must not land
// on the guarded page again.
type Navigator interface {
	Replace(target string)
}

// NavigatorFunc adapts a function to the Navigator interface.
type NavigatorFunc func(target string)

func (f NavigatorFunc) Replace(target string) { f(target) }

// Guard evaluates one path against successive session snapshots.
// Safe for concurrent use; Observe serializes internally.
type Guard struct {
	engine    *routegate.Engine
	path      string
	navigator Navigator

	mu          sync.Mutex
	redirecting string // target of the navigation in flight, if any
}

// New wraps path with a guard. navigator may be nil when the caller
// only inspects outcomes.
func New(engine *routegate.Engine, path string, navigator Navigator) *Guard {
	return &Guard{engine: engine, path: path, navigator: navigator}
}

// Observe re-evaluates the guard against st and returns the render
// state. Denied snapshots trigger at most one Replace per distinct
// target; observing the same denied snapshot again keeps the
// placeholder without re-navigating.
func (g *Guard) Observe(ctx context.Context, st session.State) Outcome {
	d := g.engine.EvaluateClient(ctx, g.path, st)

	g.mu.Lock()
	defer g.mu.Unlock()

	switch d.Action {
	case routegate.ActionAllow:
		// A fresh allow cancels any pending redirect bookkeeping; the
		// guard is re-entrant, not a one-shot latch.
		g.redirecting = ""
		return Outcome{State: StateContent, Decision: d}

	case routegate.ActionLoading:
		return Outcome{State: StateLoading, Decision: d}

	default:
		if g.navigator != nil && g.redirecting != d.Target {
			g.redirecting = d.Target
			g.navigator.Replace(d.Target)
		}
		return Outcome{State: StateLoading, Decision: d}
	}
}

// Watch consumes snapshots until ctx is done or snapshots closes,
// invoking fn with every outcome. It is the subscription form of
// Observe for callers fed by an external auth-state stream.
func (g *Guard) Watch(ctx context.Context, snapshots <-chan session.State, fn func(Outcome)) {
	for {
		select {
		case <-ctx.Done():
			return
		case st, ok := <-snapshots:
			if !ok {
				return
			}
			outcome := g.Observe(ctx, st)
			if fn != nil {
				fn(outcome)
			}
		}
	}
}
