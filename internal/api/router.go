package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"seat-occupancy-backend/config"
	"seat-occupancy-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(h *Handler, cfg config.ServerConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), mw.Logger(h.log))
	r.MaxMultipartMemory = h.maxUpload

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.RateLimitPerSec), cfg.RateLimitBurst)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(ttl, 2*ttl)
	caching := mw.Cache(cacheStore, ttl)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	api := r.Group("/api")
	api.Use(rateLimiter, mw.InvalidateCache(cacheStore))
	{
		api.GET("/health", h.Health)

		seats := api.Group("/seats")
		seats.GET("", h.ListSeats)
		seats.POST("", h.CreateSeat)
		seats.POST("/move", h.MoveEmployee)
		seats.GET("/:seatId", h.GetSeat)
		seats.GET("/:seatId/history", h.SeatHistory)
		seats.PUT("/:seatId/assign", h.AssignSeat)
		seats.PUT("/:seatId/vacate", h.VacateSeat)

		employees := api.Group("/employees")
		employees.GET("", h.ListEmployees)
		employees.POST("", h.CreateEmployee)
		employees.GET("/:id", h.GetEmployee)
		employees.PUT("/:id", h.UpdateEmployee)

		imports := api.Group("/import")
		imports.POST("/analyze", h.AnalyzeImport)
		imports.POST("/execute", h.ExecuteImport)
		imports.GET("/export", h.ExportImport)
		imports.GET("/sessions", h.ListImportSessions)
		imports.GET("/sessions/:sessionId", h.GetImportSession)

		reports := api.Group("/reports")
		reports.Use(caching)
		reports.GET("/summary", h.SummaryReport)
		reports.GET("/business-group", h.BusinessGroupReport)
		reports.GET("/floor", h.FloorReport)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
