package middleware

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"invoicely/internal/core/apperror"
	appctx "invoicely/internal/core/context"
)

// SessionParser turns a bearer token into the signed-in user.
type SessionParser func(token string, now time.Time) (*appctx.UserContext, error)

// KeyUserID is the gin key holding the signed-in user's id.
const KeyUserID = "user_id"

// Session requires a bearer token and puts the session on the request
// context. The token itself is forwarded to the backend, which remains the
// authority on whether it is valid.
func Session(parse SessionParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			abortUnauthorized(c, "Authentication required")
			return
		}
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "Invalid authorization header")
			return
		}

		user, err := parse(strings.TrimSpace(token), time.Now())
		if err != nil {
			if _, ok := apperror.AsAppError(err); !ok {
				err = apperror.NewUnauthorized("Invalid session token").WithCause(err)
			}
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(appctx.WithUser(c.Request.Context(), user))
		c.Set(KeyUserID, user.UserID)
		c.Next()
	}
}

// RequireOrganization rejects sessions that are not scoped to an
// organization, such as a super-admin browsing without one selected.
func RequireOrganization() gin.HandlerFunc {
	return func(c *gin.Context) {
		if appctx.GetOrganizationID(c.Request.Context()) == "" {
			_ = c.Error(apperror.NewForbidden("Select an organization first"))
			c.Abort()
			return
		}
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	_ = c.Error(apperror.NewUnauthorized(message))
	c.Abort()
}
