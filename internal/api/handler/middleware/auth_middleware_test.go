package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"flowcore"
	"flowcore/internal/api/models"
	"flowcore/pkg"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRouter(cfg flowcore.AppConfig, roles ...models.AppRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := []gin.HandlerFunc{AuthMiddleware(cfg)}
	if len(roles) > 0 {
		handlers = append(handlers, RequireRole(roles...))
	}
	handlers = append(handlers, func(c *gin.Context) {
		id, _ := pkg.GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"userId": id})
	})
	r.GET("/private", handlers...)
	return r
}

func prodConfig() flowcore.AppConfig {
	var cfg flowcore.AppConfig
	cfg.Mode = "prod"
	cfg.JWTConfig.Secret = "middleware-secret"
	return cfg
}

func do(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/private", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	cfg := prodConfig()
	token, err := pkg.GenerateToken(9, "a@b.c", string(models.RoleViewer), cfg.JWTConfig.Secret, 5)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"bad scheme", "Token " + token, http.StatusUnauthorized},
		{"bad token", "Bearer nope", http.StatusUnauthorized},
		{"valid", "Bearer " + token, http.StatusOK},
	}
	r := newRouter(cfg)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, do(r, tt.header).Code)
		})
	}
}

func TestAuthMiddleware_TokenQueryParam(t *testing.T) {
	cfg := prodConfig()
	token, err := pkg.GenerateToken(4, "q@b.c", string(models.RoleEditor), cfg.JWTConfig.Secret, 5)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/private?token="+token, nil)
	w := httptest.NewRecorder()
	newRouter(cfg).ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"userId":4}`, w.Body.String())
}

func TestRequireRole(t *testing.T) {
	cfg := prodConfig()
	viewer, err := pkg.GenerateToken(1, "v@b.c", string(models.RoleViewer), cfg.JWTConfig.Secret, 5)
	require.NoError(t, err)
	editor, err := pkg.GenerateToken(2, "e@b.c", string(models.RoleEditor), cfg.JWTConfig.Secret, 5)
	require.NoError(t, err)

	r := newRouter(cfg, models.RoleAdmin, models.RoleEditor)
	assert.Equal(t, http.StatusForbidden, do(r, "Bearer "+viewer).Code)
	assert.Equal(t, http.StatusOK, do(r, "Bearer "+editor).Code)
}

func TestAuthMiddleware_DevModeIsAnonymousAdmin(t *testing.T) {
	cfg := prodConfig()
	cfg.Mode = "dev"

	r := newRouter(cfg, models.RoleAdmin)
	assert.Equal(t, http.StatusOK, do(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, do(r, "Bearer nope").Code)
}
