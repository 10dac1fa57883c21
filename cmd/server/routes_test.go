package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"sbtc-heritage.backend/internal/interfaces/http/handlers"
)

func TestRegisterAPIV1Routes_RegistersKeyRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()

	registerAPIV1Routes(r, routeDeps{
		vaultHandler:        &handlers.VaultHandler{},
		authHandler:         &handlers.AuthHandler{},
		adminHandler:        &handlers.AdminHandler{},
		authMiddleware:      func(c *gin.Context) { c.Next() },
		adminAuthMiddleware: func(c *gin.Context) { c.Next() },
	})

	routes := r.Routes()
	if len(routes) < 14 {
		t.Fatalf("expected full route table, got %d routes", len(routes))
	}

	expects := []struct {
		method string
		path   string
	}{
		{"POST", "/api/v1/auth/session"},
		{"POST", "/api/v1/auth/refresh"},
		{"POST", "/api/v1/vaults"},
		{"GET", "/api/v1/vaults"},
		{"GET", "/api/v1/vaults/:id"},
		{"POST", "/api/v1/vaults/:id/deposit"},
		{"POST", "/api/v1/vaults/:id/withdraw"},
		{"POST", "/api/v1/vaults/:id/proof-of-life"},
		{"POST", "/api/v1/vaults/:id/trigger"},
		{"POST", "/api/v1/vaults/:id/claim"},
		{"GET", "/api/v1/vaults/:id/lifecycle"},
		{"GET", "/api/v1/vaults/:id/inheritance"},
		{"GET", "/api/v1/vaults/:id/transactions"},
		{"GET", "/api/v1/admin/stats"},
		{"GET", "/metrics"},
	}

	index := make(map[string]bool, len(routes))
	for _, route := range routes {
		index[route.Method+" "+route.Path] = true
	}
	for _, e := range expects {
		if !index[e.method+" "+e.path] {
			t.Errorf("missing route %s %s", e.method, e.path)
		}
	}
}

func TestMetricsEndpoint_Serves(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	registerAPIV1Routes(r, routeDeps{
		vaultHandler:        &handlers.VaultHandler{},
		authHandler:         &handlers.AuthHandler{},
		adminHandler:        &handlers.AdminHandler{},
		authMiddleware:      func(c *gin.Context) { c.Next() },
		adminAuthMiddleware: func(c *gin.Context) { c.Next() },
	})

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", rec.Code)
	}
}
