package router

import (
	"time"

	"github.com/Nihar07ops/Gate-Compass-sub002/internal/config"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/handler"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/middleware"
	"github.com/Nihar07ops/Gate-Compass-sub002/internal/response"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// resultMaxAge is how long clients may cache a computed result.
const resultMaxAge = 300

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session *handler.SessionHandler
	Result  *handler.ResultHandler
	WS      *handler.WSHandler
	System  *handler.SystemHandler
}

// Limiters groups the rate limiters. A nil limiter disables that limit.
type Limiters struct {
	API    *middleware.RateLimiter
	Submit *middleware.RateLimiter
}

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(
	auth middleware.TokenValidator,
	handlers *Handlers,
	limiters *Limiters,
	cfg *config.Config,
	log zerolog.Logger,
) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.New()
	router.Use(gin.Recovery())

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID", "Retry-After"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Request ID first so the access log and every envelope share it.
	router.Use(response.RequestIDMiddleware())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.Brotli())

	// Health check.
	router.GET("/health", handlers.System.Health)

	// ─── 1. API Group (JWT) ────────────────────────────────────────────
	api := router.Group("/api/v1")
	api.Use(middleware.RequireUserJWT(auth))
	if limiters != nil && limiters.API != nil {
		api.Use(limiters.API.Middleware())
	}

	submitChain := []gin.HandlerFunc{}
	if limiters != nil && limiters.Submit != nil {
		submitChain = append(submitChain, limiters.Submit.Middleware())
	}

	// Tests and sessions
	api.POST("/tests/:test_id/sessions", handlers.Session.CreateSession)

	sessions := api.Group("/sessions/:id")
	{
		sessions.POST("/answer", handlers.Session.RecordAnswer)
		sessions.PUT("/time", handlers.Session.RecordTime)
		sessions.POST("/submit", append(submitChain, handlers.Session.Submit)...)
		sessions.POST("/auto-submit", append(submitChain, handlers.Session.AutoSubmit)...)
		sessions.GET("/state", middleware.NoStore(), handlers.Session.GetState)
	}

	// Results
	results := api.Group("/results")
	{
		results.GET("/users/me/history", middleware.NoStore(), handlers.Result.History)
		results.GET("/:session_id", middleware.CacheControl(resultMaxAge), handlers.Result.GetResult)
		results.GET("/:session_id/analysis", middleware.CacheControl(resultMaxAge), handlers.Result.GetAnalysis)
	}

	// ─── 2. WebSocket Group (query token) ──────────────────────────────
	ws := router.Group("/ws/v1")
	ws.Use(middleware.RequireWSAuth(auth))
	{
		ws.GET("/sessions/:id/stream", handlers.WS.SessionStream)
	}

	return router
}
