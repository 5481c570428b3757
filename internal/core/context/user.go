// Package context provides request-scoped values extraction.
package context

import (
	"context"
	"time"
)

// UserContext contains the session of the signed-in user as issued by the backend.
type UserContext struct {
	UserID         string
	Email          string
	OrganizationID string
	IsSuperAdmin   bool
	ExpiresAt      time.Time

	// AccessToken is forwarded to the backend on every call.
	AccessToken string
}

type userContextKey struct{}

// WithUser adds UserContext to context.
func WithUser(ctx context.Context, user *UserContext) context.Context {
	return context.WithValue(ctx, userContextKey{}, user)
}

// GetUser returns UserContext from context.
func GetUser(ctx context.Context) *UserContext {
	if v, ok := ctx.Value(userContextKey{}).(*UserContext); ok {
		return v
	}
	return nil
}

// GetUserID returns user ID from context or empty string.
func GetUserID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.UserID
	}
	return ""
}

// GetOrganizationID returns the active organization or empty string.
func GetOrganizationID(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.OrganizationID
	}
	return ""
}

// GetAccessToken returns the bearer token to forward, or empty string.
func GetAccessToken(ctx context.Context) string {
	if u := GetUser(ctx); u != nil {
		return u.AccessToken
	}
	return ""
}

// IsSuperAdmin reports whether the session may use organization/billing management.
func IsSuperAdmin(ctx context.Context) bool {
	u := GetUser(ctx)
	return u != nil && u.IsSuperAdmin
}
