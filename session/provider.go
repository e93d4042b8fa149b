package session

import (
	"context"
	"net/http"
)

// Provider hands raw signals to the resolver. Implementations report
// their own availability so the resolver never branches on environment:
// an unavailable provider simply contributes nothing.
type Provider interface {
	// Available reports whether this source can be read at all in the
	// current environment.
	Available() bool
	// Token returns the auth token held by this source, if any.
	Token() (string, bool)
	// UserCookie returns the raw serialized user record, if any.
	UserCookie() (string, bool)
}

// Gather merges any number of providers into Sources. The first
// available token and user cookie win; later providers only fill gaps.
func Gather(providers ...Provider) Sources {
	var src Sources
	for _, p := range providers {
		if p == nil || !p.Available() {
			continue
		}
		if src.CookieToken == "" {
			if tok, ok := p.Token(); ok && tok != "" {
				src.CookieToken = tok
			}
		}
		if src.CookieUser == "" {
			if raw, ok := p.UserCookie(); ok && raw != "" {
				src.CookieUser = raw
			}
		}
	}
	return src
}

// RequestProvider reads signals from the cookies of an HTTP request.
type RequestProvider struct {
	Request        *http.Request
	TokenCookie    string
	UserCookieName string
}

// NewRequestProvider builds a RequestProvider with the given cookie
// names.
func NewRequestProvider(r *http.Request, tokenCookie, userCookie string) RequestProvider {
	return RequestProvider{Request: r, TokenCookie: tokenCookie, UserCookieName: userCookie}
}

// Available reports whether the provider has a request to read.
func (p RequestProvider) Available() bool {
	return p.Request != nil
}

// Token returns the auth-token cookie value.
func (p RequestProvider) Token() (string, bool) {
	return p.cookie(p.TokenCookie)
}

// UserCookie returns the raw user cookie value.
func (p RequestProvider) UserCookie() (string, bool) {
	return p.cookie(p.UserCookieName)
}

func (p RequestProvider) cookie(name string) (string, bool) {
	if p.Request == nil || name == "" {
		return "", false
	}
	c, err := p.Request.Cookie(name)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// StoreProvider exposes durable token presence from a TokenStore for a
// single device. Lookup happens at construction so that resolution
// itself stays synchronous and I/O-free.
type StoreProvider struct {
	present   bool
	available bool
}

// NewStoreProvider consults store for deviceID. A nil store, empty
// deviceID, or store error all yield an unavailable provider.
func NewStoreProvider(ctx context.Context, store *TokenStore, deviceID string) StoreProvider {
	if store == nil || deviceID == "" {
		return StoreProvider{}
	}
	present, err := store.Present(ctx, deviceID)
	if err != nil {
		return StoreProvider{}
	}
	return StoreProvider{present: present, available: true}
}

// Available reports whether the durable store could be consulted.
func (p StoreProvider) Available() bool { return p.available }

// Present reports durable token presence. The store never reveals the
// token value to this layer, so this feeds Sources.DurableToken rather
// than the token slot.
func (p StoreProvider) Present() bool { return p.available && p.present }
