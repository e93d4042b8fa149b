package jwt

import (
	"crypto/ed25519"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// VerifyMethod selects the signature algorithm accepted by a Manager.
type VerifyMethod string

const (
	// MethodEd25519 verifies against an Ed25519 public key (default).
	MethodEd25519 VerifyMethod = "ed25519"
	// MethodHS256 verifies against a shared HMAC secret.
	MethodHS256 VerifyMethod = "hs256"
)

// Config holds verification parameters for session tokens.
type Config struct {
	Method VerifyMethod
	// Key is the Ed25519 public key or the HS256 shared secret,
	// depending on Method.
	Key      []byte
	Issuer   string
	Audience string
	Leeway   time.Duration
}

// Manager verifies session tokens. Safe for concurrent use after
// construction.
type Manager struct {
	config Config
	method jwt.SigningMethod
}

// SessionClaims is the claim set carried by storefront session tokens.
// Role mirrors the role field of the serialized user record so that the
// resolver can recover it when the user cookie is absent or malformed.
type SessionClaims struct {
	UserID string `json:"uid,omitempty"`
	Role   string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// NewManager validates cfg and returns a Manager.
func NewManager(cfg Config) (*Manager, error) {
	if cfg.Leeway < 0 || cfg.Leeway > 2*time.Minute {
		return nil, errors.New("invalid leeway configuration")
	}
	if cfg.Method == "" {
		cfg.Method = MethodEd25519
	}

	var method jwt.SigningMethod
	switch cfg.Method {
	case MethodHS256:
		if len(cfg.Key) == 0 {
			return nil, errors.New("hs256 requires a shared secret")
		}
		method = jwt.SigningMethodHS256
	case MethodEd25519:
		if len(cfg.Key) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("ed25519 public key must be %d bytes", ed25519.PublicKeySize)
		}
		method = jwt.SigningMethodEdDSA
	default:
		return nil, fmt.Errorf("unsupported verify method %q", cfg.Method)
	}

	return &Manager{config: cfg, method: method}, nil
}

// Verify parses and validates tokenStr, returning its claims. Any
// failure — signature, expiry, issuer, audience, malformed input —
// comes back as an error; callers downgrade that to "token absent".
func (m *Manager) Verify(tokenStr string) (*SessionClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{m.method.Alg()}),
	}
	if m.config.Leeway > 0 {
		options = append(options, jwt.WithLeeway(m.config.Leeway))
	}
	if m.config.Issuer != "" {
		options = append(options, jwt.WithIssuer(m.config.Issuer))
	}
	if m.config.Audience != "" {
		options = append(options, jwt.WithAudience(m.config.Audience))
	}

	parser := jwt.NewParser(options...)
	token, err := parser.ParseWithClaims(tokenStr, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != m.method.Alg() {
			return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
		}
		return m.verifyKey(), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}

	return claims, nil
}

func (m *Manager) verifyKey() any {
	if m.config.Method == MethodHS256 {
		return m.config.Key
	}
	return ed25519.PublicKey(m.config.Key)
}
