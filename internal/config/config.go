// Package config loads gateway configuration from YAML and converts it into
// an engine configuration. Missing files fall back to defaults so the gateway
// runs usefully with zero configuration.
package config

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	routegate "github.com/shopfront/routegate"
	"github.com/shopfront/routegate/jwt"
	"github.com/shopfront/routegate/routes"
)

// RoutesFile overrides the built-in route table. Empty lists keep the
// canonical defaults.
type RoutesFile struct {
	Public []string `yaml:"public"`
	Auth   []string `yaml:"auth"`
	Admin  []string `yaml:"admin"`
	User   []string `yaml:"user"`
}

// RedirectsFile overrides redirect targets.
type RedirectsFile struct {
	Login          string `yaml:"login"`
	UserDashboard  string `yaml:"user_dashboard"`
	AdminDashboard string `yaml:"admin_dashboard"`
	CallbackParam  string `yaml:"callback_param"`
}

// CookiesFile overrides cookie names.
type CookiesFile struct {
	Token  string `yaml:"token"`
	User   string `yaml:"user"`
	Device string `yaml:"device"`
}

// TokenFile configures optional signature verification of the session cookie.
// Key is base64 for ed25519 and the raw secret for hs256.
type TokenFile struct {
	Verify   bool          `yaml:"verify"`
	Method   string        `yaml:"method"`
	Key      string        `yaml:"key"`
	Issuer   string        `yaml:"issuer"`
	Audience string        `yaml:"audience"`
	Leeway   time.Duration `yaml:"leeway"`
}

// RedisFile configures the durable token store.
type RedisFile struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix"`
}

// AuditFile configures the audit trail.
type AuditFile struct {
	Enabled    bool   `yaml:"enabled"`
	Path       string `yaml:"path"`
	BufferSize int    `yaml:"buffer_size"`
	DropIfFull bool   `yaml:"drop_if_full"`
}

// StreamFile bounds websocket decision-stream churn. A zero MaxConnPerIP
// disables throttling.
type StreamFile struct {
	MaxConnPerIP int           `yaml:"max_conn_per_ip"`
	Window       time.Duration `yaml:"window"`
}

// MetricsFile configures metric collection.
type MetricsFile struct {
	Enabled    bool `yaml:"enabled"`
	Histograms bool `yaml:"histograms"`
}

// File is the top-level gateway configuration document.
type File struct {
	Listen    string        `yaml:"listen"`
	Backend   string        `yaml:"backend"`
	Redis     RedisFile     `yaml:"redis"`
	Routes    RoutesFile    `yaml:"routes"`
	Redirects RedirectsFile `yaml:"redirects"`
	Cookies   CookiesFile   `yaml:"cookies"`
	Token     TokenFile     `yaml:"token"`
	Stream    StreamFile    `yaml:"stream"`
	Audit     AuditFile     `yaml:"audit"`
	Metrics   MetricsFile   `yaml:"metrics"`
}

// Default returns the built-in gateway configuration.
func Default() *File {
	return &File{
		Listen:  ":8080",
		Backend: "http://127.0.0.1:3000",
		Audit: AuditFile{
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsFile{
			Enabled:    true,
			Histograms: true,
		},
	}
}

// Load reads a gateway configuration from a YAML file. A missing file returns
// defaults; invalid YAML returns an error. YAML overwrites only the fields it
// specifies.
func Load(path string) (*File, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read gateway config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse gateway config: %w", err)
	}

	return cfg, nil
}

// Validate checks the gateway-level fields. Engine-level fields are validated
// again when the engine is built.
func (f *File) Validate() error {
	if f.Listen == "" {
		return fmt.Errorf("listen address must not be empty")
	}
	if f.Backend != "" {
		u, err := url.Parse(f.Backend)
		if err != nil {
			return fmt.Errorf("backend URL: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("backend URL must be http or https, got %q", f.Backend)
		}
	}
	if f.Audit.Enabled && f.Audit.Path == "" {
		return fmt.Errorf("audit.path must be set when audit is enabled")
	}
	return nil
}

// EngineConfig converts the file into a [routegate.Config], starting from the
// engine defaults and overriding only what the file specifies.
func (f *File) EngineConfig() (routegate.Config, error) {
	cfg := routegate.DefaultConfig()

	if !emptyRoutes(f.Routes) {
		cfg.Routes.Table = routes.Table{
			Public: f.Routes.Public,
			Auth:   f.Routes.Auth,
			Admin:  f.Routes.Admin,
			User:   f.Routes.User,
		}
	}

	if f.Redirects.Login != "" {
		cfg.Redirects.Login = f.Redirects.Login
	}
	if f.Redirects.UserDashboard != "" {
		cfg.Redirects.UserDashboard = f.Redirects.UserDashboard
	}
	if f.Redirects.AdminDashboard != "" {
		cfg.Redirects.AdminDashboard = f.Redirects.AdminDashboard
	}
	if f.Redirects.CallbackParam != "" {
		cfg.Redirects.CallbackParam = f.Redirects.CallbackParam
	}

	if f.Cookies.Token != "" {
		cfg.Cookies.Token = f.Cookies.Token
	}
	if f.Cookies.User != "" {
		cfg.Cookies.User = f.Cookies.User
	}
	if f.Cookies.Device != "" {
		cfg.Cookies.Device = f.Cookies.Device
	}

	if f.Token.Verify {
		key, err := decodeTokenKey(f.Token.Method, f.Token.Key)
		if err != nil {
			return routegate.Config{}, err
		}
		cfg.Token.Verify = true
		cfg.Token.Method = jwt.VerifyMethod(f.Token.Method)
		cfg.Token.Key = key
		cfg.Token.Issuer = f.Token.Issuer
		cfg.Token.Audience = f.Token.Audience
		cfg.Token.Leeway = f.Token.Leeway
	}

	cfg.Audit.Enabled = f.Audit.Enabled
	if f.Audit.BufferSize > 0 {
		cfg.Audit.BufferSize = f.Audit.BufferSize
	}
	cfg.Audit.DropIfFull = f.Audit.DropIfFull

	cfg.Metrics.Enabled = f.Metrics.Enabled
	cfg.Metrics.EnableLatencyHistograms = f.Metrics.Histograms

	return cfg, nil
}

func emptyRoutes(r RoutesFile) bool {
	return len(r.Public) == 0 && len(r.Auth) == 0 && len(r.Admin) == 0 && len(r.User) == 0
}

func decodeTokenKey(method, key string) ([]byte, error) {
	switch method {
	case "hs256":
		return []byte(key), nil
	default:
		// ed25519 public keys travel base64-encoded.
		raw, err := base64.StdEncoding.DecodeString(key)
		if err != nil {
			return nil, fmt.Errorf("decode token key: %w", err)
		}
		return raw, nil
	}
}
