// README: Supabase access-token verifier used by the auth middleware.
package infra

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// AuthToken holds the verified token data used by downstream middleware.
type AuthToken struct {
	UID    string
	Email  string
	Role   string
	Claims map[string]interface{}
}

// TokenVerifier verifies a raw bearer token and returns token data.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*AuthToken, error)
}

type supabaseVerifier struct {
	secret []byte
}

// NewSupabaseVerifier returns a TokenVerifier for access tokens signed with the
// project's JWT secret (HS256, audience "authenticated").
func NewSupabaseVerifier(secret string) (TokenVerifier, error) {
	if secret == "" {
		return nil, errors.New("supabase jwt secret is required")
	}
	return &supabaseVerifier{secret: []byte(secret)}, nil
}

func (v *supabaseVerifier) VerifyIDToken(_ context.Context, idToken string) (*AuthToken, error) {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience("authenticated"),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return nil, fmt.Errorf("verify token: %w", err)
	}
	sub, _ := claims.GetSubject()
	if sub == "" {
		return nil, errors.New("verify token: missing subject")
	}
	email, _ := claims["email"].(string)

	// The top-level role claim is always "authenticated"; the marketplace role
	// (customer, helpa, admin) lives in app_metadata.
	role, _ := claims["role"].(string)
	if meta, ok := claims["app_metadata"].(map[string]interface{}); ok {
		if r, ok := meta["role"].(string); ok && r != "" {
			role = r
		}
	}
	return &AuthToken{UID: sub, Email: email, Role: role, Claims: claims}, nil
}
