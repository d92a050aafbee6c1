package session

import (
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const RoleAdmin = "admin"

// Claims follows the identity provider's access token shape. The application
// role lives in app_metadata.role; the top-level role claim is the provider's
// own ("authenticated") and is only used as a fallback.
type Claims struct {
	jwt.RegisteredClaims

	Email       string      `json:"email,omitempty"`
	Role        string      `json:"role,omitempty"`
	AppMetadata AppMetadata `json:"app_metadata,omitempty"`
}

type AppMetadata struct {
	Role string `json:"role,omitempty"`
}

type Identity struct {
	Email     string
	Role      string
	ExpiresAt time.Time
}

func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == RoleAdmin
}

// Verify checks an HS256 session token and returns the caller's email and role.
func Verify(tokenString, secret, audience string, now time.Time) (*Identity, error) {
	if tokenString == "" {
		return nil, fmt.Errorf("missing token")
	}
	if secret == "" {
		return nil, fmt.Errorf("missing jwt secret")
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return now }),
		jwt.WithExpirationRequired(),
	}
	if audience != "" {
		opts = append(opts, jwt.WithAudience(audience))
	}

	claims := &Claims{}
	tok, err := jwt.NewParser(opts...).ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	email := strings.ToLower(strings.TrimSpace(claims.Email))
	if email == "" {
		return nil, fmt.Errorf("missing email in token")
	}

	role := claims.AppMetadata.Role
	if role == "" {
		role = claims.Role
	}

	return &Identity{
		Email:     email,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}

// Issue signs a token for id. Used by dev tooling and tests; production tokens
// come from the identity provider.
func Issue(id Identity, secret, audience string, now time.Time, ttl time.Duration) (string, error) {
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.Email,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		Email:       id.Email,
		Role:        "authenticated",
		AppMetadata: AppMetadata{Role: id.Role},
	}
	if audience != "" {
		claims.Audience = jwt.ClaimStrings{audience}
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
}
