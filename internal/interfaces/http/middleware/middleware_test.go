package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	redisv9 "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sbtc-heritage.backend/pkg/crypto"
	"sbtc-heritage.backend/pkg/jwt"
	redispkg "sbtc-heritage.backend/pkg/redis"
)

const testPrincipal = "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"

func startMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	return srv
}

func TestRequestIDMiddleware_GeneratesAndEchoes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestIDMiddleware())
	r.GET("/x", func(c *gin.Context) {
		id := c.GetString(RequestIDKey)
		assert.NotEmpty(t, id)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))

	// Caller-supplied id wins.
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
}

func newAuthRouter(svc *jwt.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AuthMiddleware(svc))
	r.GET("/me", func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.JSON(http.StatusOK, gin.H{"principal": principal})
	})
	return r
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	svc := jwt.NewService("secret", time.Hour, 24*time.Hour)
	pair, err := svc.GenerateTokenPair(testPrincipal)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthorizationHeader, BearerPrefix+pair.AccessToken)
	w := httptest.NewRecorder()
	newAuthRouter(svc).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), testPrincipal)
}

func TestAuthMiddleware_Rejections(t *testing.T) {
	svc := jwt.NewService("secret", time.Hour, 24*time.Hour)
	r := newAuthRouter(svc)

	cases := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"not bearer", "Basic abc"},
		{"garbage token", BearerPrefix + "not.a.token"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set(AuthorizationHeader, tc.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	svc := jwt.NewService("secret", -time.Minute, 24*time.Hour)
	pair, err := svc.GenerateTokenPair(testPrincipal)
	require.NoError(t, err)

	validator := jwt.NewService("secret", time.Hour, 24*time.Hour)
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set(AuthorizationHeader, BearerPrefix+pair.AccessToken)
	w := httptest.NewRecorder()
	newAuthRouter(validator).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "expired")
}

func TestAdminAuthMiddleware(t *testing.T) {
	hash, err := crypto.HashAPIKey("top-secret")
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AdminAuthMiddleware(hash))
	r.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

	// Without key.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Wrong key.
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(AdminAPIKeyHeader, "wrong")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Right key.
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(AdminAPIKeyHeader, "top-secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminAuthMiddleware_DisabledWithoutHash(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AdminAuthMiddleware(""))
	r.GET("/admin", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set(AdminAPIKeyHeader, "anything")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func newIdempotencyRouter(hits *int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(PrincipalKey, testPrincipal)
		c.Next()
	})
	r.Use(IdempotencyMiddleware())
	r.POST("/deposit", func(c *gin.Context) {
		*hits++
		c.JSON(http.StatusOK, gin.H{"txRef": "0xabc"})
	})
	return r
}

func TestIdempotencyMiddleware_NoHeaderPassthrough(t *testing.T) {
	hits := 0
	r := newIdempotencyRouter(&hits)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/deposit", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, hits)
}

func TestIdempotencyMiddleware_ReplaysStoredResponse(t *testing.T) {
	srv := startMiniRedis(t)
	t.Cleanup(srv.Close)
	cli := redisv9.NewClient(&redisv9.Options{Addr: srv.Addr()})
	redispkg.SetClient(cli)
	t.Cleanup(func() { _ = cli.Close() })

	hits := 0
	r := newIdempotencyRouter(&hits)

	req := httptest.NewRequest(http.MethodPost, "/deposit", nil)
	req.Header.Set(IdempotencyHeader, "key-1")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, 1, hits)

	// Second submission replays without reaching the handler.
	req = httptest.NewRequest(http.MethodPost, "/deposit", nil)
	req.Header.Set(IdempotencyHeader, "key-1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get("X-Idempotency-Hit"))
	assert.Contains(t, w.Body.String(), "0xabc")
	assert.Equal(t, 1, hits, "ledger call not repeated")
}

func TestIdempotencyMiddleware_InProgressConflict(t *testing.T) {
	srv := startMiniRedis(t)
	t.Cleanup(srv.Close)
	cli := redisv9.NewClient(&redisv9.Options{Addr: srv.Addr()})
	redispkg.SetClient(cli)
	t.Cleanup(func() { _ = cli.Close() })

	require.NoError(t, srv.Set("idempotency:"+testPrincipal+":key-busy", processingMarker))

	hits := 0
	r := newIdempotencyRouter(&hits)
	req := httptest.NewRequest(http.MethodPost, "/deposit", nil)
	req.Header.Set(IdempotencyHeader, "key-busy")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "ERR_IDEMPOTENCY_CONFLICT")
	assert.Equal(t, 0, hits)
}

func TestIdempotencyMiddleware_FailureAllowsRetry(t *testing.T) {
	srv := startMiniRedis(t)
	t.Cleanup(srv.Close)
	cli := redisv9.NewClient(&redisv9.Options{Addr: srv.Addr()})
	redispkg.SetClient(cli)
	t.Cleanup(func() { _ = cli.Close() })

	gin.SetMode(gin.TestMode)
	failures := 0
	r := gin.New()
	r.Use(IdempotencyMiddleware())
	r.POST("/deposit", func(c *gin.Context) {
		failures++
		c.JSON(http.StatusBadGateway, gin.H{"code": "ERR_LEDGER_REJECTION"})
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/deposit", nil)
		req.Header.Set(IdempotencyHeader, "key-retry")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusBadGateway, w.Code)
	}
	assert.Equal(t, 2, failures, "failed responses are not replayed")
}

func TestMetricsMiddlewareAndHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(MetricsMiddleware())
	r.GET("/vaults/:id", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/metrics", gin.WrapH(MetricsHandler()))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/vaults/vault-1", nil))
	require.Equal(t, http.StatusOK, w.Code)

	RecordLedgerCall("deposit-sbtc", nil)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "heritage_vault_http_requests_total")
	assert.Contains(t, body, "/vaults/:id")
	assert.Contains(t, body, "heritage_vault_ledger_calls_total")
}
