package routegate

import (
	"errors"
	"testing"
	"time"

	"github.com/shopfront/routegate/jwt"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "defaults valid",
			mutate:    func(c *Config) {},
			wantValid: true,
		},
		{
			name: "empty route table",
			mutate: func(c *Config) {
				c.Routes.Table.Public = nil
				c.Routes.Table.Auth = nil
				c.Routes.Table.Admin = nil
				c.Routes.Table.User = nil
			},
			wantValid: false,
		},
		{
			name: "relative login redirect",
			mutate: func(c *Config) {
				c.Redirects.Login = "auth/login"
			},
			wantValid: false,
		},
		{
			name: "blank callback param",
			mutate: func(c *Config) {
				c.Redirects.CallbackParam = "   "
			},
			wantValid: false,
		},
		{
			name: "blank token cookie",
			mutate: func(c *Config) {
				c.Cookies.Token = ""
			},
			wantValid: false,
		},
		{
			name: "verify without key",
			mutate: func(c *Config) {
				c.Token.Verify = true
				c.Token.Method = jwt.MethodHS256
			},
			wantValid: false,
		},
		{
			name: "verify hs256 valid",
			mutate: func(c *Config) {
				c.Token.Verify = true
				c.Token.Method = jwt.MethodHS256
				c.Token.Key = []byte("0123456789abcdef0123456789abcdef")
			},
			wantValid: true,
		},
		{
			name: "verify oversized leeway",
			mutate: func(c *Config) {
				c.Token.Verify = true
				c.Token.Method = jwt.MethodHS256
				c.Token.Key = []byte("secret")
				c.Token.Leeway = 10 * time.Minute
			},
			wantValid: false,
		},
		{
			name: "negative audit buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = -1
			},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		cfg := DefaultConfig()
		tt.mutate(&cfg)
		err := cfg.Validate()
		if tt.wantValid && err != nil {
			t.Fatalf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.wantValid {
			if err == nil {
				t.Fatalf("%s: expected validation error", tt.name)
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("%s: error %v does not wrap ErrInvalidConfig", tt.name, err)
			}
		}
	}
}

func TestBuilderSingleUse(t *testing.T) {
	b := New()
	if _, err := b.Build(); err != nil {
		t.Fatalf("first build: %v", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrBuilderUsed) {
		t.Fatalf("second build: got %v, want ErrBuilderUsed", err)
	}
}

func TestBuildRejectsInvalidConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Redirects.Login = "not-absolute"
	if _, err := New().WithConfig(cfg).Build(); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("got %v, want ErrInvalidConfig", err)
	}
}

func TestConfigCloneIsolation(t *testing.T) {
	cfg := DefaultConfig()
	engine, err := New().WithConfig(cfg).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer engine.Close()

	// Mutating the caller's table after Build must not leak into the
	// engine.
	cfg.Routes.Table.Admin[0] = "/mutated"
	if got := engine.Config().Routes.Table.Admin[0]; got != "/admin" {
		t.Fatalf("engine table mutated through caller slice: %q", got)
	}
}

func TestEngineReport(t *testing.T) {
	engine := newTestEngine(t, func(c *Config) {
		c.Audit.Enabled = true
	})

	r := engine.Report()
	if r.PublicRoutes != 5 || r.AuthRoutes != 5 || r.AdminRoutes != 1 || r.UserRoutes != 5 {
		t.Fatalf("unexpected table sizes: %+v", r)
	}
	if r.TokenVerification || r.DurableStore {
		t.Fatalf("default engine should have neither verification nor store: %+v", r)
	}
	if !r.AuditEnabled || !r.MetricsEnabled {
		t.Fatalf("audit and metrics should be on: %+v", r)
	}
	if r.LoginRedirect != "/auth/login" || r.CallbackParam != "callbackUrl" {
		t.Fatalf("unexpected redirect config: %+v", r)
	}
}
