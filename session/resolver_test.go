package session

import "testing"

func TestResolveAllAbsent(t *testing.T) {
	st := Resolve(Sources{})

	if st.IsAuthenticated || st.IsAdmin || st.HasAnyToken || st.HasAnyAuthSignal || st.IsLoading {
		t.Fatalf("all-absent sources should resolve to zero state, got %+v", st)
	}
	if st.User != nil {
		t.Fatalf("expected nil user, got %+v", st.User)
	}
}

func TestResolveTokenPredicates(t *testing.T) {
	tests := []struct {
		name    string
		src     Sources
		wantTok bool
		wantSig bool
	}{
		{"cookie token only", Sources{CookieToken: "tok"}, true, true},
		{"durable token only", Sources{DurableToken: true}, true, true},
		{"context token only", Sources{Context: &ContextState{Token: "tok"}}, true, true},
		{"context authenticated flag only", Sources{Context: &ContextState{IsAuthenticated: true}}, false, true},
		{"context user only", Sources{Context: &ContextState{User: &UserRecord{ID: "u1", Role: "user"}}}, false, true},
		{"cookie user only", Sources{CookieUser: `{"id":"u1","role":"user"}`}, false, true},
		{"nothing", Sources{}, false, false},
	}

	for _, tt := range tests {
		st := Resolve(tt.src)
		if st.HasAnyToken != tt.wantTok {
			t.Fatalf("%s: HasAnyToken = %v, want %v", tt.name, st.HasAnyToken, tt.wantTok)
		}
		if st.HasAnyAuthSignal != tt.wantSig {
			t.Fatalf("%s: HasAnyAuthSignal = %v, want %v", tt.name, st.HasAnyAuthSignal, tt.wantSig)
		}
	}
}

func TestResolveAdminExactMatch(t *testing.T) {
	tests := []struct {
		role string
		want bool
	}{
		{"admin", true},
		{"Admin", false},
		{"ADMIN", false},
		{"user", false},
		{"", false},
	}

	for _, tt := range tests {
		st := Resolve(Sources{Context: &ContextState{User: &UserRecord{ID: "u1", Role: tt.role}}})
		if st.IsAdmin != tt.want {
			t.Fatalf("role %q: IsAdmin = %v, want %v", tt.role, st.IsAdmin, tt.want)
		}
	}
}

func TestResolveMalformedUserCookie(t *testing.T) {
	// A cookie that does not parse must read as "no user", with
	// authentication recomputed from the remaining signals.
	st := Resolve(Sources{CookieToken: "tok", CookieUser: "not-json"})

	if st.User != nil {
		t.Fatalf("malformed cookie produced user %+v", st.User)
	}
	if st.IsAuthenticated {
		t.Fatal("token without parsed user must not be authenticated")
	}
	if !st.HasAnyToken || !st.HasAnyAuthSignal {
		t.Fatal("token signal lost while downgrading malformed cookie")
	}
}

func TestResolveAuthenticatedCombinations(t *testing.T) {
	tests := []struct {
		name string
		src  Sources
		want bool
	}{
		{"token and cookie user", Sources{CookieToken: "tok", CookieUser: `{"id":"u1","role":"user"}`}, true},
		{"token and context user", Sources{CookieToken: "tok", Context: &ContextState{User: &UserRecord{ID: "u1"}}}, true},
		{"context says authenticated", Sources{Context: &ContextState{IsAuthenticated: true}}, true},
		{"token alone", Sources{CookieToken: "tok"}, false},
		{"user alone", Sources{CookieUser: `{"id":"u1","role":"user"}`}, false},
	}

	for _, tt := range tests {
		if got := Resolve(tt.src).IsAuthenticated; got != tt.want {
			t.Fatalf("%s: IsAuthenticated = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestResolveUserPrecedence(t *testing.T) {
	// The in-memory context user wins over the cookie user.
	st := Resolve(Sources{
		Context:    &ContextState{User: &UserRecord{ID: "ctx", Role: "admin"}},
		CookieUser: `{"id":"cookie","role":"user"}`,
	})
	if st.User == nil || st.User.ID != "ctx" {
		t.Fatalf("expected context user, got %+v", st.User)
	}
	if !st.IsAdmin {
		t.Fatal("context admin user should set IsAdmin")
	}
}

func TestResolveLoadingFlag(t *testing.T) {
	st := Resolve(Sources{Context: &ContextState{IsLoading: true}})
	if !st.IsLoading {
		t.Fatal("loading flag dropped")
	}
	if Resolve(Sources{}).IsLoading {
		t.Fatal("no context should mean not loading")
	}
}

func TestResolveIdempotent(t *testing.T) {
	src := Sources{
		Context:     &ContextState{IsAuthenticated: true, User: &UserRecord{ID: "u1", Role: "admin"}},
		CookieToken: "tok",
	}
	a, b := Resolve(src), Resolve(src)
	if a != b {
		t.Fatalf("resolution not idempotent: %+v vs %+v", a, b)
	}
}

func TestParseUserCookie(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want *UserRecord
	}{
		{"valid", `{"id":"u1","role":"user"}`, &UserRecord{ID: "u1", Role: "user"}},
		{"percent encoded", `%7B%22id%22%3A%22u1%22%2C%22role%22%3A%22user%22%7D`, &UserRecord{ID: "u1", Role: "user"}},
		{"role only", `{"role":"admin"}`, &UserRecord{Role: "admin"}},
		{"extra fields ignored", `{"id":"u1","role":"user","email":"a@b.c"}`, &UserRecord{ID: "u1", Role: "user"}},
		{"empty", "", nil},
		{"whitespace", "   ", nil},
		{"not json", "user=not-json", nil},
		{"wrong shape", `[1,2,3]`, nil},
		{"empty object", `{}`, nil},
	}

	for _, tt := range tests {
		got := ParseUserCookie(tt.raw)
		if (got == nil) != (tt.want == nil) {
			t.Fatalf("%s: ParseUserCookie(%q) = %+v, want %+v", tt.name, tt.raw, got, tt.want)
		}
		if got != nil && *got != *tt.want {
			t.Fatalf("%s: ParseUserCookie(%q) = %+v, want %+v", tt.name, tt.raw, got, tt.want)
		}
	}
}
