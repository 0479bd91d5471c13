package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"randomchat/config"
	"randomchat/internal/handlers"
	"randomchat/internal/logx"
	"randomchat/internal/matchengine"
	"randomchat/internal/middleware"
	"randomchat/internal/stats"
	"randomchat/internal/transport"
)

func main() {
	cfg := config.Load()
	logx.Init(cfg.Environment == "development")

	engine := matchengine.NewEngine()

	statsSink, err := stats.Connect(cfg.Redis)
	if err != nil {
		// Stats are a best-effort diagnostics side channel (SPEC_FULL.md);
		// losing Redis never blocks matching, so this is a warning, not a
		// fatal startup error.
		logx.Warn("stats sink unavailable, continuing without it", "err", err.Error())
		statsSink = nil
	}

	hub := transport.NewHub(engine, cfg.RateLimitPerSecond, cfg.RateLimitBurst, func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == cfg.AllowedOrigin
	})

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.Use(handlers.NoCache(), handlers.OriginFilter(cfg.AllowedOrigin))

	router.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "alive")
	})
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/stats", handlers.Stats(engine))

	api := router.Group("/api")
	{
		api.POST("/auth/login", handlers.Login(cfg.JWTSecret))
	}

	ws := router.Group("/ws")
	{
		ws.GET("/signal", middleware.OptionalJWT(cfg.JWTSecret), handlers.HandleSignaling(hub))
	}

	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if statsSink != nil {
		go statsSink.Run(ctx, engine, cfg.StatsPublishInterval)
		defer statsSink.Close()
	}

	go func() {
		logx.Info("starting matchmaking server", "addr", cfg.Addr())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logx.Fatal(err, "server failed")
		}
	}()

	<-ctx.Done()
	logx.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logx.Error(err, "graceful shutdown failed")
	}
}
