package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"catalog-cms/config"
	"catalog-cms/internal/api/handler"
	"catalog-cms/internal/api/middleware"
	"catalog-cms/internal/api/router"
	"catalog-cms/internal/backend"
	"catalog-cms/internal/event"
	"catalog-cms/internal/service"
	applogger "catalog-cms/pkg/logger"
	"catalog-cms/pkg/redis"
)

func main() {
	// 1. 加载配置
	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("runtime", cfg.Runtime.Env),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 选择存储后端、连接并迁移（进程内只执行一次）
	store, err := backend.Open(cfg, logger)
	if err != nil {
		logger.Fatal("存储初始化失败", zap.Error(err))
	}

	// 4. 连接 Redis（可选：连接失败时不缓存、不限流，不中断启动）
	var (
		cache   service.Cache
		limiter middleware.RateLimiter
	)
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，读缓存与限流将不可用", zap.Error(err))
		rdb = nil
	} else {
		cache = rdb
		limiter = rdb
	}

	// 5. 事件总线：缓存失效与审计订阅者
	bus := event.NewBus(logger)
	bus.Subscribe("cache", service.NewCacheInvalidator(cache, logger).Handle)
	bus.Subscribe("audit", service.NewAuditRecorder(store.Repository.Audit, logger).Handle)

	// 6. 依赖注入: Repository → Service → Handler
	svc := service.NewService(cfg, store.Repository, bus, cache, logger)
	h := handler.NewHandler(svc)

	// 7. 初始化路由
	engine := router.Setup(cfg, h, store, limiter, logger)

	// 8. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr), zap.String("backend", string(store.Kind)))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 9. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 等待在途的缓存失效与审计写入完成后再关闭存储
	bus.Wait()

	if err := store.Close(); err != nil {
		logger.Error("关闭存储失败", zap.Error(err))
	}

	if rdb != nil {
		_ = rdb.Close()
	}

	logger.Info("服务器已关闭")
}
