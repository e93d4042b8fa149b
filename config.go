package routegate

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopfront/routegate/jwt"
	"github.com/shopfront/routegate/routes"
)

// Config defines the evaluation behavior of an [Engine]. Configure it
// during initialization and treat it as immutable afterwards; the
// builder clones it on Build.
type Config struct {
	Routes    RoutesConfig
	Cookies   CookiesConfig
	Redirects RedirectsConfig
	Token     TokenConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

/*
====================================
ROUTES CONFIG
====================================
*/

// RoutesConfig selects the classification table. An empty table means
// the canonical storefront table.
type RoutesConfig struct {
	Table routes.Table
}

/*
====================================
COOKIES CONFIG
====================================
*/

// CookiesConfig names the cookies carrying session signals.
type CookiesConfig struct {
	Token  string
	User   string
	Device string
}

/*
====================================
REDIRECTS CONFIG
====================================
*/

// RedirectsConfig names the redirect targets and the callback query
// parameter.
type RedirectsConfig struct {
	Login          string
	UserDashboard  string
	AdminDashboard string
	CallbackParam  string
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig enables cryptographic verification of the auth-token
// cookie. When disabled (the default), token presence alone is the
// signal, matching what a cookie-only edge can know without keys. When
// enabled, a token that fails verification reads as absent.
type TokenConfig struct {
	Verify   bool
	Method   jwt.VerifyMethod
	Key      []byte
	Issuer   string
	Audience string
	Leeway   time.Duration
}

/*
====================================
AUDIT + METRICS CONFIG
====================================
*/

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls decision metric collection.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns the canonical storefront configuration:
// canonical route table, authToken/user cookie names, /auth/login as
// the login route, dashboards per role, callbackUrl parameter, no
// token verification, metrics on, audit off.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		Routes: RoutesConfig{Table: routes.Canonical()},
		Cookies: CookiesConfig{
			Token:  "authToken",
			User:   "user",
			Device: "deviceId",
		},
		Redirects: RedirectsConfig{
			Login:          "/auth/login",
			UserDashboard:  "/dashboard",
			AdminDashboard: "/admin/dashboard",
			CallbackParam:  "callbackUrl",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// Validate checks cross-field consistency. It returns an error wrapping
// [ErrInvalidConfig] on the first violation found.
func (c Config) Validate() error {
	if c.Routes.Table.IsEmpty() {
		return fmt.Errorf("%w: route table is empty", ErrInvalidConfig)
	}
	for _, p := range [][2]string{
		{"login redirect", c.Redirects.Login},
		{"user dashboard redirect", c.Redirects.UserDashboard},
		{"admin dashboard redirect", c.Redirects.AdminDashboard},
	} {
		if !strings.HasPrefix(p[1], "/") {
			return fmt.Errorf("%w: %s %q must be an absolute path", ErrInvalidConfig, p[0], p[1])
		}
	}
	if strings.TrimSpace(c.Redirects.CallbackParam) == "" {
		return fmt.Errorf("%w: callback parameter name is blank", ErrInvalidConfig)
	}
	if strings.TrimSpace(c.Cookies.Token) == "" || strings.TrimSpace(c.Cookies.User) == "" {
		return fmt.Errorf("%w: cookie names must not be blank", ErrInvalidConfig)
	}
	if c.Token.Verify {
		if _, err := jwt.NewManager(jwt.Config{
			Method:   c.Token.Method,
			Key:      c.Token.Key,
			Issuer:   c.Token.Issuer,
			Audience: c.Token.Audience,
			Leeway:   c.Token.Leeway,
		}); err != nil {
			return fmt.Errorf("%w: token verification: %v", ErrInvalidConfig, err)
		}
	}
	if c.Audit.Enabled && c.Audit.BufferSize < 0 {
		return fmt.Errorf("%w: audit buffer size is negative", ErrInvalidConfig)
	}
	return nil
}

func cloneConfig(c Config) Config {
	clone := c
	clone.Routes.Table = routes.Table{
		Public: append([]string(nil), c.Routes.Table.Public...),
		Auth:   append([]string(nil), c.Routes.Table.Auth...),
		Admin:  append([]string(nil), c.Routes.Table.Admin...),
		User:   append([]string(nil), c.Routes.Table.User...),
	}
	clone.Token.Key = append([]byte(nil), c.Token.Key...)
	return clone
}
