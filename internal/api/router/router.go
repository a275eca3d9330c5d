package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"catalog-cms/config"
	"catalog-cms/internal/api/handler"
	"catalog-cms/internal/api/middleware"
)

// Pinger 存储健康检查（*backend.Store 实现）
type Pinger interface {
	Ping(ctx context.Context) error
}

// Setup 初始化并返回 Gin 路由引擎
// limiter 为 nil 时不限流
func Setup(cfg *config.Config, h *handler.Handler, store Pinger, limiter middleware.RateLimiter, logger *zap.Logger) *gin.Engine {
	if cfg.Runtime.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Actor())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := store.Ping(ctx); err != nil {
			logger.Warn("存储健康检查失败", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.RateLimit(limiter, cfg.Server.RateLimit.Limit, cfg.Server.RateLimit.Window, logger))
	{
		// 年份模块
		years := v1.Group("/years")
		{
			years.GET("", h.Year.ListYears)
			years.POST("", h.Year.CreateYear)
			years.GET("/:yearId", h.Year.GetYear)
			years.GET("/:yearId/export", h.Export.ExportYear)

			// 地点模块
			locations := years.Group("/:yearId/locations")
			{
				locations.GET("", h.Location.ListLocations)
				locations.POST("", h.Location.CreateLocation)
				locations.POST("/reorder", h.Location.ReorderLocations)
				locations.PUT("/:id", h.Location.UpdateLocation)
				locations.DELETE("/:id", h.Location.DeleteLocation)
				locations.POST("/:id/move", h.Location.MoveLocation)
			}

			// 合集模块
			collections := years.Group("/:yearId/collections")
			{
				collections.GET("", h.Collection.ListCollections)
				collections.POST("", h.Collection.CreateCollection)
				collections.POST("/reorder", h.Collection.ReorderCollections)
				collections.PUT("/:id", h.Collection.UpdateCollection)
				collections.DELETE("/:id", h.Collection.DeleteCollection)
				collections.POST("/:id/move", h.Collection.MoveCollection)
			}
		}

		// 按地点重排所属年份
		v1.POST("/locations/:locationId/reorder", h.Location.ReorderByLocation)

		// 合集资源
		assets := v1.Group("/collections/:collectionId/assets")
		{
			assets.GET("", h.Asset.ListAssets)
			assets.POST("", h.Asset.AttachAsset)
			assets.POST("/reorder", h.Asset.ReorderAssets)
			assets.DELETE("/:assetId", h.Asset.DetachAsset)
		}

		// 审计日志
		v1.GET("/audit-logs", h.Audit.ListAuditLogs)
	}

	return r
}
