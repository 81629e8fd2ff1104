package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/reqtrace/backend/internal/infrastructure/auth"
	"github.com/reqtrace/backend/internal/infrastructure/config"
	"github.com/reqtrace/backend/internal/infrastructure/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret-key-at-least-32-chars!!"

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(config.AuthConfig{
		JWTSecret: testSecret,
		Issuer:    "https://id.example.com",
		Audience:  "reqtrace",
	})
}

func mustToken(t *testing.T, svc *auth.JWTService, principal string) string {
	t.Helper()
	token, err := svc.GenerateToken(auth.GenerateTokenInput{PrincipalID: principal, Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	return token
}

func authRouter(cfg JWTMiddlewareConfig) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), JWTAuthMiddlewareWithConfig(cfg))
	handler := func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"principal": GetPrincipalID(c),
			"ctxUser":   logger.GetUserID(c.Request.Context()),
		})
	}
	router.GET("/api/test", handler)
	router.GET("/health", handler)
	return router
}

func serve(router http.Handler, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set(AuthHeaderKey, authHeader)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestJWTAuthMiddleware_ValidToken(t *testing.T) {
	svc := newTestJWTService()
	router := authRouter(DefaultJWTConfig(svc))

	w := serve(router, "/api/test", BearerPrefix+mustToken(t, svc, "user_1"))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"principal":"user_1","ctxUser":"user_1"}`, w.Body.String())
}

func TestJWTAuthMiddleware_Rejections(t *testing.T) {
	svc := newTestJWTService()
	other := auth.NewJWTService(config.AuthConfig{JWTSecret: "another-secret-key-at-least-32-chars", Issuer: "https://id.example.com", Audience: "reqtrace"})

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, &auth.Claims{RegisteredClaims: jwt.RegisteredClaims{
		Subject:   "user_1",
		Issuer:    "https://id.example.com",
		Audience:  jwt.ClaimStrings{"reqtrace"},
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}})
	expiredToken, err := expired.SignedString([]byte(testSecret))
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
		code   string
	}{
		{"missing header", "", "UNAUTHORIZED"},
		{"wrong scheme", "Basic dXNlcjpwYXNz", "TOKEN_INVALID"},
		{"empty token", BearerPrefix, "TOKEN_INVALID"},
		{"garbage", BearerPrefix + "not-a-jwt", "TOKEN_INVALID"},
		{"foreign signature", BearerPrefix + mustToken(t, other, "user_1"), "TOKEN_INVALID"},
		{"expired", BearerPrefix + expiredToken, "TOKEN_EXPIRED"},
	}

	router := authRouter(DefaultJWTConfig(svc))
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(router, "/api/test", tt.header)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.Contains(t, w.Body.String(), `"code":"`+tt.code+`"`)
			assert.Contains(t, w.Body.String(), `"success":false`)
		})
	}
}

func TestJWTAuthMiddleware_SkipPaths(t *testing.T) {
	router := authRouter(DefaultJWTConfig(newTestJWTService()))

	w := serve(router, "/health", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"principal":"","ctxUser":""}`, w.Body.String())
}

type stubBlacklist struct {
	jtis        map[string]bool
	invalidated map[string]time.Time
}

func (b *stubBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return b.jtis[jti], nil
}

func (b *stubBlacklist) IsUserTokenInvalidated(_ context.Context, principalID string, issuedAt time.Time) (bool, error) {
	at, ok := b.invalidated[principalID]
	return ok && !issuedAt.After(at), nil
}

func TestJWTAuthMiddleware_Blacklist(t *testing.T) {
	svc := newTestJWTService()
	blacklist := &stubBlacklist{jtis: map[string]bool{}, invalidated: map[string]time.Time{}}
	cfg := DefaultJWTConfig(svc)
	cfg.TokenBlacklist = blacklist
	router := authRouter(cfg)

	t.Run("revoked jti", func(t *testing.T) {
		token := mustToken(t, svc, "user_1")
		claims, err := svc.ValidateToken(token)
		require.NoError(t, err)
		blacklist.jtis[claims.ID] = true

		w := serve(router, "/api/test", BearerPrefix+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), `"code":"TOKEN_REVOKED"`)
	})

	t.Run("principal invalidated", func(t *testing.T) {
		token := mustToken(t, svc, "user_2")
		blacklist.invalidated["user_2"] = time.Now().Add(time.Minute)

		w := serve(router, "/api/test", BearerPrefix+token)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unrelated principal passes", func(t *testing.T) {
		w := serve(router, "/api/test", BearerPrefix+mustToken(t, svc, "user_3"))
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestJWTAuthMiddleware_LogsFailures(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	cfg := DefaultJWTConfig(newTestJWTService())
	cfg.Logger = zap.New(core)

	serve(authRouter(cfg), "/api/test", "")

	require.Equal(t, 1, logs.FilterMessage("JWT authentication failed").Len())
	entry := logs.All()[0]
	assert.Equal(t, "/api/test", entry.ContextMap()["path"])
	assert.NotEmpty(t, entry.ContextMap()["request_id"])
}
