package main

import (
	"github.com/gin-gonic/gin"

	"sbtc-heritage.backend/internal/interfaces/http/handlers"
	"sbtc-heritage.backend/internal/interfaces/http/middleware"
)

type routeDeps struct {
	vaultHandler        *handlers.VaultHandler
	authHandler         *handlers.AuthHandler
	adminHandler        *handlers.AdminHandler
	authMiddleware      gin.HandlerFunc
	adminAuthMiddleware gin.HandlerFunc
}

func registerAPIV1Routes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/api/v1")
	{
		// Auth routes (public)
		auth := v1.Group("/auth")
		{
			auth.POST("/session", d.authHandler.CreateSession)
			auth.POST("/refresh", d.authHandler.RefreshSession)
		}

		// Vault routes (protected)
		vaults := v1.Group("/vaults")
		vaults.Use(d.authMiddleware)
		{
			vaults.POST("", middleware.IdempotencyMiddleware(), d.vaultHandler.CreateVault)
			vaults.GET("", d.vaultHandler.ListVaults)
			vaults.GET("/:id", d.vaultHandler.GetVault)
			vaults.POST("/:id/deposit", middleware.IdempotencyMiddleware(), d.vaultHandler.Deposit)
			vaults.POST("/:id/withdraw", middleware.IdempotencyMiddleware(), d.vaultHandler.Withdraw)
			vaults.POST("/:id/proof-of-life", middleware.IdempotencyMiddleware(), d.vaultHandler.ProofOfLife)
			vaults.POST("/:id/trigger", middleware.IdempotencyMiddleware(), d.vaultHandler.Trigger)
			vaults.POST("/:id/claim", middleware.IdempotencyMiddleware(), d.vaultHandler.Claim)
			vaults.GET("/:id/lifecycle", d.vaultHandler.GetLifecycle)
			vaults.GET("/:id/inheritance", d.vaultHandler.GetInheritance)
			vaults.GET("/:id/transactions", d.vaultHandler.ListTransactions)
		}

		// Admin routes (API key)
		admin := v1.Group("/admin")
		admin.Use(d.adminAuthMiddleware)
		{
			admin.GET("/stats", d.adminHandler.Stats)
		}
	}

	// Prometheus scrape endpoint
	r.GET("/metrics", gin.WrapH(middleware.MetricsHandler()))
}
