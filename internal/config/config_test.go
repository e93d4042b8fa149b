package config

import (
	"context"
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopfront/routegate/jwt"
	"github.com/shopfront/routegate/routes"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gateway.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listen != ":8080" {
		t.Fatalf("expected default listen address, got %q", cfg.Listen)
	}
	if !cfg.Metrics.Enabled {
		t.Fatal("expected metrics enabled by default")
	}
}

func TestLoadEmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Backend != "http://127.0.0.1:3000" {
		t.Fatalf("expected default backend, got %q", cfg.Backend)
	}
}

func TestLoadOverridesOnlySpecifiedFields(t *testing.T) {
	path := writeFile(t, `
listen: ":9090"
redirects:
  login: "/signin"
routes:
  admin:
    - /admin
    - /ops
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Listen != ":9090" {
		t.Fatalf("expected overridden listen, got %q", cfg.Listen)
	}
	if cfg.Backend != "http://127.0.0.1:3000" {
		t.Fatalf("expected default backend to survive, got %q", cfg.Backend)
	}
	if cfg.Redirects.Login != "/signin" {
		t.Fatalf("expected overridden login target, got %q", cfg.Redirects.Login)
	}
	if len(cfg.Routes.Admin) != 2 {
		t.Fatalf("expected two admin routes, got %v", cfg.Routes.Admin)
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := writeFile(t, "listen: [unterminated")
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for invalid YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*File)
		wantErr bool
	}{
		{name: "defaults valid", mutate: func(*File) {}},
		{name: "empty listen", mutate: func(f *File) { f.Listen = "" }, wantErr: true},
		{name: "bad backend scheme", mutate: func(f *File) { f.Backend = "ftp://host" }, wantErr: true},
		{name: "empty backend allowed", mutate: func(f *File) { f.Backend = "" }},
		{name: "audit without path", mutate: func(f *File) { f.Audit.Enabled = true }, wantErr: true},
		{name: "audit with path", mutate: func(f *File) {
			f.Audit.Enabled = true
			f.Audit.Path = "/tmp/audit.jsonl"
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr && err == nil {
				t.Fatal("expected validation error")
			}
			if !tt.wantErr && err != nil {
				t.Fatalf("unexpected validation error: %v", err)
			}
		})
	}
}

func TestEngineConfigKeepsCanonicalTableWhenUnset(t *testing.T) {
	cfg, err := Default().EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig failed: %v", err)
	}
	want := routes.Canonical()
	if len(cfg.Routes.Table.Public) != len(want.Public) {
		t.Fatalf("expected canonical public routes, got %v", cfg.Routes.Table.Public)
	}
	if cfg.Redirects.Login != "/auth/login" {
		t.Fatalf("expected canonical login target, got %q", cfg.Redirects.Login)
	}
}

func TestEngineConfigAppliesOverrides(t *testing.T) {
	f := Default()
	f.Routes.Admin = []string{"/backoffice"}
	f.Cookies.Token = "sess"
	f.Redirects.CallbackParam = "next"

	cfg, err := f.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig failed: %v", err)
	}
	if got := cfg.Routes.Table.Admin; len(got) != 1 || got[0] != "/backoffice" {
		t.Fatalf("expected admin override, got %v", got)
	}
	if cfg.Cookies.Token != "sess" {
		t.Fatalf("expected token cookie override, got %q", cfg.Cookies.Token)
	}
	if cfg.Redirects.CallbackParam != "next" {
		t.Fatalf("expected callback param override, got %q", cfg.Redirects.CallbackParam)
	}
}

func TestEngineConfigTokenKeys(t *testing.T) {
	f := Default()
	f.Token.Verify = true
	f.Token.Method = "hs256"
	f.Token.Key = "a-long-shared-secret-value"

	cfg, err := f.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig failed: %v", err)
	}
	if !cfg.Token.Verify || cfg.Token.Method != jwt.MethodHS256 {
		t.Fatalf("expected hs256 verification, got %+v", cfg.Token)
	}
	if string(cfg.Token.Key) != f.Token.Key {
		t.Fatal("expected hs256 secret passed through verbatim")
	}

	f = Default()
	f.Token.Verify = true
	f.Token.Method = "ed25519"
	f.Token.Key = base64.StdEncoding.EncodeToString(make([]byte, 32))

	cfg, err = f.EngineConfig()
	if err != nil {
		t.Fatalf("EngineConfig failed: %v", err)
	}
	if len(cfg.Token.Key) != 32 {
		t.Fatalf("expected decoded 32-byte key, got %d bytes", len(cfg.Token.Key))
	}

	f.Token.Key = "not base64!!!"
	if _, err := f.EngineConfig(); err == nil {
		t.Fatal("expected error for undecodable key")
	}
}

func TestReloaderAppliesValidChanges(t *testing.T) {
	path := writeFile(t, "listen: \":8080\"\n")

	applied := make(chan *File, 1)
	r, err := NewReloader(path, nil, func(f *File) {
		select {
		case applied <- f:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewReloader failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()

	if err := os.WriteFile(path, []byte("listen: \":9191\"\n"), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}

	select {
	case cfg := <-applied:
		if cfg.Listen != ":9191" {
			t.Fatalf("expected reloaded listen address, got %q", cfg.Listen)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for reload")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("reloader did not stop on cancel")
	}
}

func TestReloaderRejectsMissingFile(t *testing.T) {
	if _, err := NewReloader(filepath.Join(t.TempDir(), "absent.yaml"), nil, nil); err == nil {
		t.Fatal("expected error for missing config file")
	}
}
