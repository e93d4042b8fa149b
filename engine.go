package routegate

import (
	"context"
	"time"

	"github.com/google/uuid"
	internalaudit "github.com/shopfront/routegate/internal/audit"
	internalmetrics "github.com/shopfront/routegate/internal/metrics"
	"github.com/shopfront/routegate/jwt"
	"github.com/shopfront/routegate/routes"
	"github.com/shopfront/routegate/session"
)

// Engine evaluates navigations against the route table and session
// signals. Safe for concurrent use after [Builder.Build].
type Engine struct {
	config  Config
	metrics *internalmetrics.Metrics
	audit   *internalaudit.Dispatcher
	tokens  *jwt.Manager
	store   *session.TokenStore
}

// Close flushes and stops the audit dispatcher.
func (e *Engine) Close() {
	if e == nil {
		return
	}
	if e.audit != nil {
		e.audit.Close()
	}
}

// Config returns a copy of the engine's effective configuration.
func (e *Engine) Config() Config {
	if e == nil {
		return Config{}
	}
	return cloneConfig(e.config)
}

// CookieNames returns the configured token and user cookie names.
func (e *Engine) CookieNames() (token, user string) {
	if e == nil {
		return "", ""
	}
	return e.config.Cookies.Token, e.config.Cookies.User
}

// CallbackParam returns the configured callback query parameter name.
func (e *Engine) CallbackParam() string {
	if e == nil {
		return ""
	}
	return e.config.Redirects.CallbackParam
}

// DurableStore returns the token store attached via [Builder.WithRedis],
// or nil. Client-context callers use it to build a durable-presence
// signal; the edge path never does.
func (e *Engine) DurableStore() *session.TokenStore {
	if e == nil {
		return nil
	}
	return e.store
}

// MetricsSnapshot returns a deep copy of all decision metrics.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil || e.metrics == nil {
		return MetricsSnapshot{
			Counters:   map[MetricID]uint64{},
			Histograms: map[MetricID][]uint64{},
		}
	}
	return e.metrics.Snapshot()
}

// AuditDropped reports audit events lost to dispatcher backpressure.
func (e *Engine) AuditDropped() uint64 {
	if e == nil || e.audit == nil {
		return 0
	}
	return e.audit.Dropped()
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil || e.metrics == nil {
		return
	}
	e.metrics.Inc(id)
}

// EvaluateEdge runs the cookie-only machine that gates every
// navigation before page content is produced. It is synchronous and
// performs no I/O: the decision falls out of the path, the two cookies,
// and the configured table in a single pass.
//
// The authentication predicate here is strict: a token AND a parseable
// user cookie. Looser presence signals (durable-store-only) are not
// available at this layer and must not be approximated.
func (e *Engine) EvaluateEdge(ctx context.Context, path string, sig EdgeSignals) Decision {
	if e == nil {
		return Decision{Action: ActionAllow}
	}

	start := time.Now()
	category := e.config.Routes.Table.Classify(path)

	token := sig.Token
	if token != "" && e.tokens != nil {
		if _, err := e.tokens.Verify(token); err != nil {
			e.metricInc(MetricTokenVerifyFailure)
			token = ""
		}
	}

	user := session.ParseUserCookie(sig.RawUser)
	if user == nil && sig.RawUser != "" {
		e.metricInc(MetricMalformedUserCookie)
	}
	authenticated := token != "" && user != nil
	admin := user != nil && user.Role == session.RoleAdmin

	var d Decision
	switch category {
	case routes.CategoryPublic, routes.CategoryDefault:
		d = Decision{Action: ActionAllow}

	case routes.CategoryAuth:
		switch {
		case !authenticated:
			d = Decision{Action: ActionAllow}
		case admin:
			d = Decision{Action: ActionRedirect, Target: e.config.Redirects.AdminDashboard}
		default:
			d = Decision{Action: ActionRedirect, Target: e.config.Redirects.UserDashboard}
		}

	case routes.CategoryAdmin:
		switch {
		case !authenticated:
			d = Decision{Action: ActionRedirect, Target: e.config.Redirects.Login, Callback: path}
		case !admin:
			d = Decision{Action: ActionRedirect, Target: e.config.Redirects.UserDashboard}
		default:
			d = Decision{Action: ActionAllow}
		}

	case routes.CategoryUser:
		if !authenticated {
			d = Decision{Action: ActionRedirect, Target: e.config.Redirects.Login, Callback: path}
		} else {
			d = Decision{Action: ActionAllow}
		}
	}

	if e.metrics != nil {
		switch {
		case d.Action == ActionAllow:
			e.metricInc(MetricEdgeAllow)
		case d.Target == e.config.Redirects.Login:
			e.metricInc(MetricEdgeRedirectLogin)
		default:
			e.metricInc(MetricEdgeRedirectDashboard)
		}
		e.metrics.Observe(MetricEvaluateLatency, time.Since(start))
	}

	e.emitAudit(ctx, internalaudit.ContextEdge, path, category, d, user)

	return d
}

// EvaluateClient runs the richer-signal machine used by in-app guards.
// While st.IsLoading is true it defers with ActionLoading and never
// redirects, so an async auth context cannot be punished for a false
// negative. Once settled:
//
//   - admin routes allow when any auth signal exists and no concrete
//     user contradicts it; a confirmed non-admin user is refused even
//     though other signals are present;
//   - user routes allow on any auth signal;
//   - public, auth, and default routes always allow (bouncing a
//     logged-in visitor off the login page is the edge's job).
//
// Refusals redirect to the login route with Replace semantics. The
// result holds for the given snapshot only; guards re-evaluate on
// every snapshot change.
func (e *Engine) EvaluateClient(ctx context.Context, path string, st session.State) Decision {
	if e == nil {
		return Decision{Action: ActionAllow}
	}

	category := e.config.Routes.Table.Classify(path)

	if requiresSession(category) && st.IsLoading {
		e.metricInc(MetricClientLoading)
		return Decision{Action: ActionLoading}
	}

	allowed := true
	switch category {
	case routes.CategoryAdmin:
		allowed = st.HasAnyAuthSignal && (st.User == nil || st.User.Role == session.RoleAdmin)
	case routes.CategoryUser:
		allowed = st.HasAnyAuthSignal
	}

	var d Decision
	if allowed {
		e.metricInc(MetricClientAllow)
		d = Decision{Action: ActionAllow}
	} else {
		e.metricInc(MetricClientRedirect)
		d = Decision{
			Action:  ActionRedirect,
			Target:  e.config.Redirects.Login,
			Replace: true,
		}
	}

	e.emitAudit(ctx, internalaudit.ContextClient, path, category, d, st.User)

	return d
}

func requiresSession(c routes.Category) bool {
	return c == routes.CategoryAdmin || c == routes.CategoryUser
}

func (e *Engine) emitAudit(ctx context.Context, evalContext, path string, category routes.Category, d Decision, user *session.UserRecord) {
	if e.audit == nil {
		return
	}
	// Allows are the steady state; only redirects and deferrals are
	// audit-worthy.
	if d.Action == ActionAllow {
		return
	}

	event := AuditEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().UTC(),
		Context:   evalContext,
		Path:      path,
		Category:  category.String(),
		Decision:  d.Action.String(),
		Target:    d.Target,
		IP:        clientIPFromContext(ctx),
	}
	if user != nil {
		event.UserID = user.ID
		event.Role = user.Role
	}

	e.audit.Emit(ctx, event)
}
