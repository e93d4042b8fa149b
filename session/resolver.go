package session

import (
	"encoding/json"
	"net/url"
	"strings"
)

// RoleAdmin is the exact role string that grants admin access. No case
// folding: "Admin" is a regular user.
const RoleAdmin = "admin"

// UserRecord is the serialized user carried in the user cookie and in
// the client auth context. Only ID and Role matter to resolution;
// unknown fields are ignored.
type UserRecord struct {
	ID   string `json:"id"`
	Role string `json:"role"`
}

// ContextState mirrors the client application's in-memory auth context.
// A nil ContextState means the evaluation point has no such context
// (the network edge, for example).
type ContextState struct {
	IsAuthenticated bool
	IsLoading       bool
	Token           string
	User            *UserRecord
}

// Sources are the raw signals gathered for one resolution. Empty
// strings and nil pointers mean "absent".
type Sources struct {
	Context      *ContextState
	CookieToken  string
	CookieUser   string
	DurableToken bool
}

// State is the normalized output of Resolve. It is an immutable
// snapshot: guards read it and decide, nothing mutates it.
type State struct {
	IsAuthenticated  bool
	IsAdmin          bool
	HasAnyToken      bool
	HasAnyAuthSignal bool
	IsLoading        bool

	// User is the resolved record: the context user when present,
	// otherwise the parsed cookie user, otherwise nil.
	User *UserRecord
}

// Resolve derives State from src. It never fails; malformed or
// unavailable inputs degrade to absence.
func Resolve(src Sources) State {
	var st State

	ctx := src.Context
	cookieUser := ParseUserCookie(src.CookieUser)

	contextToken := ctx != nil && ctx.Token != ""
	st.HasAnyToken = contextToken || src.CookieToken != "" || src.DurableToken

	contextUser := ctx != nil && ctx.User != nil
	contextAuthenticated := ctx != nil && ctx.IsAuthenticated

	st.HasAnyAuthSignal = contextAuthenticated || st.HasAnyToken || cookieUser != nil || contextUser

	st.IsAuthenticated = contextAuthenticated || (st.HasAnyToken && (contextUser || cookieUser != nil))

	switch {
	case contextUser:
		st.User = ctx.User
	case cookieUser != nil:
		st.User = cookieUser
	}
	st.IsAdmin = st.User != nil && st.User.Role == RoleAdmin

	st.IsLoading = ctx != nil && ctx.IsLoading

	return st
}

// ParseUserCookie decodes a serialized user record. Any parse failure,
// including an empty value or a record with no role, yields nil rather
// than an error; authentication then falls back to token-only signals.
func ParseUserCookie(raw string) *UserRecord {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}

	// Browsers store the record percent-encoded; accept both forms.
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}

	var rec UserRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil
	}
	if rec.ID == "" && rec.Role == "" {
		return nil
	}
	return &rec
}
