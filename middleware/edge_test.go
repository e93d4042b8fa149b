package middleware

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	routegate "github.com/shopfront/routegate"
)

func newEngine(t *testing.T) *routegate.Engine {
	t.Helper()
	engine, err := routegate.New().Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine
}

func serve(t *testing.T, engine *routegate.Engine, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var sawDecision bool
	handler := Edge(engine)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, sawDecision = DecisionFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	r := httptest.NewRequest(http.MethodGet, path, nil)
	for _, c := range cookies {
		r.AddCookie(c)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, r)

	if w.Code == http.StatusOK && !sawDecision {
		t.Fatal("allowed request reached handler without a context decision")
	}
	return w
}

func TestEdgeMiddlewareAllowsPublic(t *testing.T) {
	engine := newEngine(t)
	w := serve(t, engine, "/products")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestEdgeMiddlewareRedirectsWithCallback(t *testing.T) {
	engine := newEngine(t)
	w := serve(t, engine, "/admin/orders/123")

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	loc := w.Header().Get("Location")
	want := "/auth/login?callbackUrl=%2Fadmin%2Forders%2F123"
	if loc != want {
		t.Fatalf("Location = %q, want %q", loc, want)
	}
}

func TestEdgeMiddlewareNonAdminToDashboard(t *testing.T) {
	engine := newEngine(t)
	w := serve(t, engine, "/admin/orders/123",
		&http.Cookie{Name: "authToken", Value: "tok"},
		&http.Cookie{Name: "user", Value: url.QueryEscape(`{"id":"u1","role":"user"}`)},
	)

	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/dashboard" {
		t.Fatalf("Location = %q, want /dashboard", loc)
	}
}

func TestEdgeMiddlewareAdminPasses(t *testing.T) {
	engine := newEngine(t)
	w := serve(t, engine, "/admin/orders/123",
		&http.Cookie{Name: "authToken", Value: "tok"},
		&http.Cookie{Name: "user", Value: url.QueryEscape(`{"id":"a1","role":"admin"}`)},
	)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestEdgeMiddlewareAuthRouteBounce(t *testing.T) {
	engine := newEngine(t)
	w := serve(t, engine, "/auth/login",
		&http.Cookie{Name: "authToken", Value: "tok"},
		&http.Cookie{Name: "user", Value: url.QueryEscape(`{"id":"a1","role":"admin"}`)},
	)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
	if loc := w.Header().Get("Location"); loc != "/admin/dashboard" {
		t.Fatalf("Location = %q, want /admin/dashboard", loc)
	}
}

func TestEdgeMiddlewareMalformedCookieRedirects(t *testing.T) {
	engine := newEngine(t)
	w := serve(t, engine, "/cart",
		&http.Cookie{Name: "authToken", Value: "tok"},
		&http.Cookie{Name: "user", Value: "not-json"},
	)
	if w.Code != http.StatusFound {
		t.Fatalf("status = %d, want 302", w.Code)
	}
}

func TestEdgeMiddlewareNilEngine(t *testing.T) {
	handler := Edge(nil)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without an engine")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/products", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}
