package routes

import "strings"

// Category is the access class assigned to a request path.
type Category uint8

const (
	// CategoryDefault applies to paths that match no table entry.
	CategoryDefault Category = iota
	// CategoryPublic paths are reachable without any auth signal.
	CategoryPublic
	// CategoryAuth covers the login/register family; authenticated
	// visitors are bounced away from these by the decision engine.
	CategoryAuth
	// CategoryAdmin paths require an admin session.
	CategoryAdmin
	// CategoryUser paths require any authenticated session.
	CategoryUser
)

// String returns the lowercase name used in config files, metrics
// labels, and audit metadata.
func (c Category) String() string {
	switch c {
	case CategoryPublic:
		return "public"
	case CategoryAuth:
		return "auth"
	case CategoryAdmin:
		return "admin"
	case CategoryUser:
		return "user"
	default:
		return "default"
	}
}

// Table holds the per-category path lists. A zero Table classifies
// everything as CategoryDefault.
//
// Tables are intended to be built once (or swapped atomically on
// reload) and then read concurrently; Classify never mutates.
type Table struct {
	Public []string
	Auth   []string
	Admin  []string
	User   []string
}

// Canonical returns the canonical storefront table. Both evaluation
// contexts reference this single table; context-specific copies drifted
// apart in earlier revisions and are deliberately gone.
func Canonical() Table {
	return Table{
		Public: []string{"/", "/landingpage", "/products", "/auth/landingpage", "/dashboard"},
		Auth:   []string{"/auth/login", "/auth/register", "/auth/forgotpassword", "/login", "/register"},
		Admin:  []string{"/admin"},
		User:   []string{"/user", "/profile", "/settings", "/orders", "/cart"},
	}
}

// Classify maps path to its category. Precedence is fixed: Public,
// then Auth, then Admin, then User, then Default. First match wins.
func (t Table) Classify(path string) Category {
	if matchAny(t.Public, path) {
		return CategoryPublic
	}
	if matchAny(t.Auth, path) {
		return CategoryAuth
	}
	if matchAny(t.Admin, path) {
		return CategoryAdmin
	}
	if matchAny(t.User, path) {
		return CategoryUser
	}
	return CategoryDefault
}

// IsEmpty reports whether no list has any entry.
func (t Table) IsEmpty() bool {
	return len(t.Public) == 0 && len(t.Auth) == 0 && len(t.Admin) == 0 && len(t.User) == 0
}

func matchAny(candidates []string, path string) bool {
	for _, c := range candidates {
		if Match(c, path) {
			return true
		}
	}
	return false
}

// Match reports whether candidate covers path: equality, or path under
// candidate + separator. The root candidate covers only the root path,
// otherwise it would swallow every navigation.
func Match(candidate, path string) bool {
	if candidate == "" {
		return false
	}
	if candidate == path {
		return true
	}
	if candidate == "/" {
		return false
	}
	candidate = strings.TrimSuffix(candidate, "/")
	return strings.HasPrefix(path, candidate+"/")
}
