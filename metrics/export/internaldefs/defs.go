package internaldefs

import (
	routegate "github.com/shopfront/routegate"
)

// CounterDef binds a routegate counter ID to its exported name and help text.
type CounterDef struct {
	ID   routegate.MetricID
	Name string
	Help string
}

// HistogramDef binds a routegate histogram ID to its exported name and help text.
type HistogramDef struct {
	ID   routegate.MetricID
	Name string
	Help string
}

// CounterDefs lists every counter the decision engine maintains, in export order.
var CounterDefs = []CounterDef{
	{ID: routegate.MetricEdgeAllow, Name: "routegate_edge_allow_total", Help: "Edge evaluations that allowed the request through."},
	{ID: routegate.MetricEdgeRedirectLogin, Name: "routegate_edge_redirect_login_total", Help: "Edge evaluations redirected to the login page."},
	{ID: routegate.MetricEdgeRedirectDashboard, Name: "routegate_edge_redirect_dashboard_total", Help: "Edge evaluations that bounced an authenticated visitor off an auth page."},
	{ID: routegate.MetricClientAllow, Name: "routegate_client_allow_total", Help: "Client evaluations that allowed rendering."},
	{ID: routegate.MetricClientRedirect, Name: "routegate_client_redirect_total", Help: "Client evaluations that requested a replace navigation."},
	{ID: routegate.MetricClientLoading, Name: "routegate_client_loading_total", Help: "Client evaluations deferred because session state was still loading."},
	{ID: routegate.MetricMalformedUserCookie, Name: "routegate_malformed_user_cookie_total", Help: "User cookies that failed to decode and were treated as absent."},
	{ID: routegate.MetricTokenVerifyFailure, Name: "routegate_token_verify_failure_total", Help: "Session tokens rejected by signature verification."},
}

// HistogramDefs lists every histogram the decision engine maintains.
var HistogramDefs = []HistogramDef{
	{ID: routegate.MetricEvaluateLatency, Name: "routegate_evaluate_latency_seconds", Help: "Edge evaluation latency histogram."},
}

// HistogramBounds are the upper bucket bounds in seconds, matching the
// microsecond-scale bounds the core collector uses.
var HistogramBounds = []string{
	"0.000005",
	"0.00001",
	"0.000025",
	"0.00005",
	"0.0001",
	"0.00025",
	"0.001",
	"+Inf",
}

// HistogramBoundSuffix provides instrument-name-safe suffixes for each bound.
var HistogramBoundSuffix = []string{
	"5us",
	"10us",
	"25us",
	"50us",
	"100us",
	"250us",
	"1ms",
	"inf",
}

// NormalizeBuckets pads or truncates a raw bucket slice to the fixed bucket count.
func NormalizeBuckets(raw []uint64) [8]uint64 {
	var out [8]uint64
	for i := 0; i < len(out) && i < len(raw); i++ {
		out[i] = raw[i]
	}
	return out
}

// CumulativeBuckets converts per-bucket counts into the cumulative form
// Prometheus and OTel expect.
func CumulativeBuckets(raw [8]uint64) [8]uint64 {
	var out [8]uint64
	var running uint64
	for i := 0; i < len(raw); i++ {
		running += raw[i]
		out[i] = running
	}
	return out
}
