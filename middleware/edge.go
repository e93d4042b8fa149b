package middleware

import (
	"context"
	"net"
	"net/http"

	routegate "github.com/shopfront/routegate"
	"github.com/shopfront/routegate/session"
)

type decisionContextKey struct{}

// DecisionFromContext returns the edge decision recorded for the
// current request, if any.
func DecisionFromContext(ctx context.Context) (routegate.Decision, bool) {
	d, ok := ctx.Value(decisionContextKey{}).(routegate.Decision)
	return d, ok
}

// Edge returns middleware that applies the engine's edge machine to
// every request. Allowed requests continue to the next handler with
// the decision attached to the context; denied requests are answered
// with an HTTP redirect and never reach the handler.
func Edge(engine *routegate.Engine) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if engine == nil {
				http.Error(w, "service unavailable", http.StatusServiceUnavailable)
				return
			}

			tokenCookie, userCookie := engine.CookieNames()
			provider := session.NewRequestProvider(r, tokenCookie, userCookie)
			src := session.Gather(provider)

			ctx := routegate.WithClientIP(r.Context(), clientIP(r))
			decision := engine.EvaluateEdge(ctx, r.URL.Path, routegate.EdgeSignals{
				Token:   src.CookieToken,
				RawUser: src.CookieUser,
			})

			if !decision.Allowed() {
				http.Redirect(w, r, decision.RedirectURL(engine.CallbackParam()), http.StatusFound)
				return
			}

			ctx = context.WithValue(ctx, decisionContextKey{}, decision)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
