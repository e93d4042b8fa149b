package gateway

import (
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	routegate "github.com/shopfront/routegate"
	"github.com/shopfront/routegate/session"
)

const (
	streamReadLimit  = 8 << 10
	streamIdleLimit  = 5 * time.Minute
	streamWriteLimit = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// streamRequest is one navigation the single-page app asks the gateway to
// evaluate. Context mirrors the app's in-memory auth state; cookie and
// durable signals come from the upgrade request itself.
type streamRequest struct {
	Path    string         `json:"path"`
	Context *streamContext `json:"context"`
}

type streamContext struct {
	IsAuthenticated bool                  `json:"isAuthenticated"`
	IsLoading       bool                  `json:"isLoading"`
	Token           string                `json:"token"`
	User            *routegate.UserRecord `json:"user"`
}

type streamResponse struct {
	ID      string `json:"id"`
	Path    string `json:"path"`
	Action  string `json:"action"`
	Target  string `json:"target,omitempty"`
	Replace bool   `json:"replace,omitempty"`
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// handleStream upgrades the connection and evaluates client-context
// navigations until the peer goes away. Each frame is independent; the app
// re-sends when its auth context changes.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	engine := s.engine.Load()
	if engine == nil {
		http.Error(w, "engine not ready", http.StatusServiceUnavailable)
		return
	}

	if err := s.limiter.Allow(r.Context(), remoteIP(r)); err != nil {
		http.Error(w, "too many connections", http.StatusTooManyRequests)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Error("stream upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	conn.SetReadLimit(streamReadLimit)

	streamID := uuid.NewString()
	tokenCookie, userCookie := engine.CookieNames()
	reqProvider := session.NewRequestProvider(r, tokenCookie, userCookie)

	var durable bool
	if store := engine.DurableStore(); store != nil {
		if c, err := r.Cookie(engine.Config().Cookies.Device); err == nil && c.Value != "" {
			durable, _ = store.Present(r.Context(), c.Value)
		}
	}

	s.log.Debug("stream opened", "stream", streamID, "remote", r.RemoteAddr)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(streamIdleLimit))

		var req streamRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				s.log.Debug("stream read failed", "stream", streamID, "error", err)
			}
			return
		}

		src := session.Gather(reqProvider)
		src.DurableToken = durable
		if req.Context != nil {
			src.Context = &session.ContextState{
				IsAuthenticated: req.Context.IsAuthenticated,
				IsLoading:       req.Context.IsLoading,
				Token:           req.Context.Token,
				User:            req.Context.User,
			}
		}

		decision := engine.EvaluateClient(r.Context(), req.Path, session.Resolve(src))

		resp := streamResponse{
			ID:      uuid.NewString(),
			Path:    req.Path,
			Action:  decision.Action.String(),
			Target:  decision.Target,
			Replace: decision.Replace,
		}

		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteLimit))
		if err := conn.WriteJSON(resp); err != nil {
			s.log.Debug("stream write failed", "stream", streamID, "error", err)
			return
		}
	}
}
