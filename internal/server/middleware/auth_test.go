package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"project-management/backend/internal/security"
)

func newAuthRouter(t *testing.T) (*gin.Engine, *security.TokenProvider) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		t.Fatalf("test token provider: %v", err)
	}
	r := gin.New()
	r.GET("/whoami", Auth(tokens), func(c *gin.Context) {
		sess, ok := SessionFrom(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no session"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"user_id": sess.UserID, "role": sess.Role})
	})
	return r, tokens
}

func TestAuth_ValidToken(t *testing.T) {
	r, tokens := newAuthRouter(t)
	token, _, err := tokens.IssueAccess("u1", "ADMIN")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body %s)", w.Code, w.Body.String())
	}
}

func TestAuth_Rejections(t *testing.T) {
	r, _ := newAuthRouter(t)
	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc123"},
		{"malformed", "Bearer"},
		{"garbage token", "Bearer not.a.jwt"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if c.header != "" {
				req.Header.Set("Authorization", c.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != http.StatusUnauthorized {
				t.Fatalf("status = %d, want 401", w.Code)
			}
		})
	}
}
