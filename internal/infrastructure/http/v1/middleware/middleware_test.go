package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"invoicely/internal/core/apperror"
	appctx "invoicely/internal/core/context"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestCORS(t *testing.T) {
	assert.Nil(t, CORS(nil))
	assert.Nil(t, CORS([]string{" ", ""}))

	router := gin.New()
	router.Use(CORS([]string{"https://app.example.com"}))
	router.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	req := httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "https://app.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	req.Header.Set("Access-Control-Request-Headers", "Authorization")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "https://app.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "https://evil.example.com")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func sessionRouter(parse SessionParser) *gin.Engine {
	router := gin.New()
	router.Use(Trace(), ErrorHandler())
	router.GET("/me", Session(parse), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(KeyUserID))
	})
	router.GET("/org", Session(parse), RequireOrganization(), func(c *gin.Context) {
		c.String(http.StatusOK, appctx.GetOrganizationID(c.Request.Context()))
	})
	return router
}

func TestSession(t *testing.T) {
	parse := func(token string, _ time.Time) (*appctx.UserContext, error) {
		switch token {
		case "good":
			return &appctx.UserContext{UserID: "7", OrganizationID: "4"}, nil
		case "no-org":
			return &appctx.UserContext{UserID: "7"}, nil
		case "expired":
			return nil, apperror.NewUnauthorized("Session expired")
		default:
			return nil, errors.New("malformed")
		}
	}
	router := sessionRouter(parse)

	tests := []struct {
		name   string
		path   string
		header string
		status int
		body   string
	}{
		{"no header", "/me", "", http.StatusUnauthorized, ""},
		{"basic scheme", "/me", "Basic abc", http.StatusUnauthorized, ""},
		{"empty token", "/me", "Bearer  ", http.StatusUnauthorized, ""},
		{"expired", "/me", "Bearer expired", http.StatusUnauthorized, ""},
		{"malformed", "/me", "Bearer junk", http.StatusUnauthorized, ""},
		{"ok", "/me", "Bearer good", http.StatusOK, "7"},
		{"lowercase scheme", "/me", "bearer good", http.StatusOK, "7"},
		{"organization", "/org", "Bearer good", http.StatusOK, "4"},
		{"no organization", "/org", "Bearer no-org", http.StatusForbidden, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			require.Equal(t, tt.status, w.Code, w.Body.String())
			if tt.body != "" {
				assert.Equal(t, tt.body, w.Body.String())
			}
		})
	}
}

func TestTrace_EchoesRequestID(t *testing.T) {
	router := gin.New()
	router.Use(Trace())
	router.GET("/x", func(c *gin.Context) {
		c.String(http.StatusOK, appctx.GetRequestID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set(HeaderRequestID, "req-1")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "req-1", w.Body.String())
	assert.Equal(t, "req-1", w.Header().Get(HeaderRequestID))
	assert.Equal(t, "req-1", w.Header().Get(HeaderTraceID))
}

func TestErrorHandler_HidesUnknownErrors(t *testing.T) {
	router := gin.New()
	router.Use(Trace(), ErrorHandler())
	router.GET("/x", func(c *gin.Context) { _ = c.Error(errors.New("db password leaked")) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "leaked")
	assert.Contains(t, w.Body.String(), apperror.CodeInternal)
}
