package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/golang-jwt/jwt/v4"
)

// Roles understood by permissions.yml.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// Principal holds identity extracted from a validated token.
type Principal struct {
	UserID string
	Email  string
	Name   string
	Roles  []string
	Claims map[string]interface{}
}

// HasRole reports whether the principal carries role.
func (p *Principal) HasRole(role string) bool {
	for _, r := range p.Roles {
		if strings.EqualFold(r, role) {
			return true
		}
	}
	return false
}

var (
	ErrNoToken         = errors.New("no token provided")
	ErrInvalidToken    = errors.New("invalid token")
	ErrInvalidIssuer   = errors.New("invalid issuer")
	ErrInvalidAudience = errors.New("invalid audience")
	ErrMissingSub      = errors.New("missing sub claim")
)

// TokenVerifier turns a bearer token into a Principal.
type TokenVerifier interface {
	VerifyToken(ctx context.Context, token string) (*Principal, error)
}

// Verifier checks RS256 tokens against a JWKS endpoint.
type Verifier struct {
	cfg  Config
	keys KeySource
}

// NewVerifier constructs a verifier with config and a key source.
func NewVerifier(cfg Config, keys KeySource) *Verifier {
	return &Verifier{cfg: cfg, keys: keys}
}

var _ TokenVerifier = (*Verifier)(nil)

func (v *Verifier) VerifyToken(_ context.Context, token string) (*Principal, error) {
	return v.ParseAndVerifyToken(token)
}

// ParseAndVerifyToken verifies a bearer token, validates issuer/aud/exp and returns Principal.
func (v *Verifier) ParseAndVerifyToken(tokenString string) (*Principal, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrNoToken
	}
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrInvalidToken
		}
		kid, _ := t.Header["kid"].(string)
		if kid == "" || v.keys == nil {
			return nil, ErrInvalidToken
		}
		return v.keys.Get(kid)
	})
	if err != nil || !parsed.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	if iss, _ := claims["iss"].(string); iss != v.cfg.Issuer {
		return nil, ErrInvalidIssuer
	}
	if v.cfg.Audience != "" && !claims.VerifyAudience(v.cfg.Audience, true) {
		return nil, ErrInvalidAudience
	}
	if !claims.VerifyExpiresAt(jwt.TimeFunc().Unix(), true) {
		return nil, ErrInvalidToken
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return nil, ErrMissingSub
	}

	email, _ := claims["email"].(string)
	name, _ := claims["name"].(string)
	return &Principal{
		UserID: sub,
		Email:  email,
		Name:   name,
		Roles:  rolesFromClaims(claims),
		Claims: claims,
	}, nil
}

// rolesFromClaims reads a "role" string, a "roles" list or Keycloak's
// realm_access.roles, lowercased.
func rolesFromClaims(claims map[string]interface{}) []string {
	var roles []string
	add := func(raw interface{}) {
		switch v := raw.(type) {
		case string:
			if v != "" {
				roles = append(roles, strings.ToLower(v))
			}
		case []interface{}:
			for _, r := range v {
				if s, ok := r.(string); ok && s != "" {
					roles = append(roles, strings.ToLower(s))
				}
			}
		}
	}
	add(claims["role"])
	add(claims["roles"])
	if ra, ok := claims["realm_access"].(map[string]interface{}); ok {
		add(ra["roles"])
	}
	return roles
}
