package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/0xkrishu/meal-snap-ai-guide/internal/auth"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type staticVerifier map[string]*auth.Identity

func (v staticVerifier) Verify(_ context.Context, token string) (*auth.Identity, error) {
	if id, ok := v[token]; ok {
		return id, nil
	}
	return nil, auth.ErrInvalidToken
}

var verifier = staticVerifier{
	"good-token": {UserID: "user-1", Email: "alice@example.com"},
}

func newRouter(mw gin.HandlerFunc) *gin.Engine {
	r := gin.New()
	r.GET("/", mw, func(c *gin.Context) {
		c.String(http.StatusOK, "%s|%s", GetUserID(c.Request.Context()), GetEmail(c.Request.Context()))
	})
	return r
}

func serve(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestOptionalAuth(t *testing.T) {
	r := newRouter(OptionalAuth(verifier))

	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", "|"},
		{"valid token", "Bearer good-token", "user-1|alice@example.com"},
		{"lowercase scheme", "bearer good-token", "user-1|alice@example.com"},
		{"invalid token", "Bearer bad-token", "|"},
		{"wrong scheme", "Basic good-token", "|"},
		{"bare token", "good-token", "|"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(r, tt.header)
			assert.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, rec.Body.String())
		})
	}
}

func TestRequireAuth(t *testing.T) {
	r := newRouter(RequireAuth(verifier))

	rec := serve(r, "Bearer good-token")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1|alice@example.com", rec.Body.String())

	for _, header := range []string{"", "Bearer bad-token", "Token good-token"} {
		rec := serve(r, header)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
		assert.Contains(t, rec.Body.String(), `"error":"Unauthorized"`)
	}
}

func TestBearerToken(t *testing.T) {
	assert.Equal(t, "abc", bearerToken("Bearer abc"))
	assert.Equal(t, "abc", bearerToken("  Bearer   abc  "))
	assert.Equal(t, "", bearerToken("Bearer"))
	assert.Equal(t, "", bearerToken("Bearer "))
	assert.Equal(t, "", bearerToken(""))
}
