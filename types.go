package routegate

import (
	"io"
	"net/url"

	internalaudit "github.com/shopfront/routegate/internal/audit"
	internalmetrics "github.com/shopfront/routegate/internal/metrics"
	"github.com/shopfront/routegate/session"
)

// Action is the kind of outcome an evaluation produced.
type Action uint8

const (
	// ActionAllow lets the navigation proceed.
	ActionAllow Action = iota
	// ActionRedirect sends the visitor elsewhere.
	ActionRedirect
	// ActionLoading defers judgment while the client auth context is
	// still resolving. Only the client machine produces it.
	ActionLoading
)

// String returns the lowercase action name used in audit records.
func (a Action) String() string {
	switch a {
	case ActionRedirect:
		return "redirect"
	case ActionLoading:
		return "loading"
	default:
		return "allow"
	}
}

// Decision is the result of one evaluation. Decisions are computed
// fresh on every evaluation and are never cached or persisted.
type Decision struct {
	Action Action

	// Target is the redirect destination path. Empty unless Action is
	// ActionRedirect.
	Target string

	// Callback carries the originally requested path when the visitor
	// is sent to login, so a successful login can return them there.
	// Empty when no callback applies.
	Callback string

	// Replace marks client-context redirects that must replace the
	// history entry instead of pushing one, so back-navigation does
	// not land on the guarded page again.
	Replace bool
}

// Allowed reports whether the navigation may proceed.
func (d Decision) Allowed() bool { return d.Action == ActionAllow }

// RedirectURL renders Target with the callback query parameter
// attached, using the given parameter name.
func (d Decision) RedirectURL(callbackParam string) string {
	if d.Action != ActionRedirect {
		return ""
	}
	if d.Callback == "" || callbackParam == "" {
		return d.Target
	}
	q := url.Values{callbackParam: {d.Callback}}
	return d.Target + "?" + q.Encode()
}

// EdgeSignals are the cookie-only inputs available to the edge machine.
// Empty strings mean absent.
type EdgeSignals struct {
	Token   string
	RawUser string
}

// UserRecord re-exports the session user record for callers that only
// import the root package.
type UserRecord = session.UserRecord

// AuditEvent is a structured record of one evaluation.
type AuditEvent = internalaudit.Event

// Evaluation contexts recorded on [AuditEvent] values.
const (
	AuditContextEdge   = internalaudit.ContextEdge
	AuditContextClient = internalaudit.ContextClient
)

// AuditSink receives [AuditEvent] values from the engine's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON-encoded events to
// an [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter or histogram bucket.
type MetricID = internalmetrics.MetricID

const (
	// MetricEdgeAllow counts edge evaluations that passed through.
	MetricEdgeAllow = internalmetrics.MetricEdgeAllow
	// MetricEdgeRedirectLogin counts edge redirects to the login route.
	MetricEdgeRedirectLogin = internalmetrics.MetricEdgeRedirectLogin
	// MetricEdgeRedirectDashboard counts edge redirects to a dashboard.
	MetricEdgeRedirectDashboard = internalmetrics.MetricEdgeRedirectDashboard
	// MetricClientAllow counts client-context allows.
	MetricClientAllow = internalmetrics.MetricClientAllow
	// MetricClientRedirect counts client-context redirects to login.
	MetricClientRedirect = internalmetrics.MetricClientRedirect
	// MetricClientLoading counts client evaluations deferred on loading.
	MetricClientLoading = internalmetrics.MetricClientLoading
	// MetricMalformedUserCookie counts user cookies downgraded on parse failure.
	MetricMalformedUserCookie = internalmetrics.MetricMalformedUserCookie
	// MetricTokenVerifyFailure counts cookie tokens rejected by verification.
	MetricTokenVerifyFailure = internalmetrics.MetricTokenVerifyFailure
	// MetricEvaluateLatency is the edge-evaluation latency histogram.
	MetricEvaluateLatency = internalmetrics.MetricEvaluateLatency
)

// Metrics holds atomic counters and optional latency histograms.
type Metrics = internalmetrics.Metrics

// MetricsSnapshot is a point-in-time deep copy of all metrics.
type MetricsSnapshot = internalmetrics.Snapshot

// NewMetrics creates a new [Metrics] instance configured by the given
// [MetricsConfig]. When Enabled is false, all operations are no-ops.
func NewMetrics(cfg MetricsConfig) *Metrics {
	return internalmetrics.New(internalmetrics.Config{
		Enabled:       cfg.Enabled,
		EnableLatency: cfg.EnableLatencyHistograms,
	})
}
