// Package auth reads backend-issued sessions and drives the multi-step
// registration flow.
package auth

import (
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"invoicely/internal/core/apperror"
	appctx "invoicely/internal/core/context"
	"invoicely/internal/core/id"
)

// Claims are the fields the backend puts into its access tokens.
type Claims struct {
	jwt.RegisteredClaims
	TokenType      string `json:"token_type,omitempty"`
	UserID         id.Ref `json:"user_id"`
	Email          string `json:"email,omitempty"`
	OrganizationID id.Ref `json:"organization_id,omitempty"`
	IsSuperuser    bool   `json:"is_superuser,omitempty"`
}

// ParseSession decodes an access token into a user context.
// The signature is not checked here: the backend verifies the token on every
// forwarded call, the gateway only needs the claims to scope its own work.
func ParseSession(token string, now time.Time) (*appctx.UserContext, error) {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return nil, apperror.NewUnauthorized("Authentication required")
	}

	claims := &Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, apperror.NewUnauthorized("Invalid session token").WithCause(err)
	}

	if claims.TokenType != "" && claims.TokenType != "access" {
		return nil, apperror.NewUnauthorized("Invalid session token")
	}
	if claims.UserID.IsZero() {
		return nil, apperror.NewUnauthorized("Invalid session token")
	}

	var expiresAt time.Time
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
		if !now.Before(expiresAt) {
			return nil, apperror.NewUnauthorized("Session expired")
		}
	}

	return &appctx.UserContext{
		UserID:         claims.UserID.String(),
		Email:          claims.Email,
		OrganizationID: claims.OrganizationID.String(),
		IsSuperAdmin:   claims.IsSuperuser,
		ExpiresAt:      expiresAt,
		AccessToken:    token,
	}, nil
}
