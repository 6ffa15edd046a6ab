// Package main runs the classroom polling server: one in-memory session,
// a WebSocket gateway and graceful shutdown.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/classpulse/backend/config"
	"github.com/classpulse/backend/internal/chat"
	"github.com/classpulse/backend/internal/history"
	"github.com/classpulse/backend/internal/middleware"
	"github.com/classpulse/backend/internal/realtime"
	"github.com/classpulse/backend/internal/session"
	"github.com/classpulse/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	hub := realtime.NewHub(logger)
	pollHistory := history.NewLog()
	coord := session.New(session.Config{
		DefaultTimeLimit: cfg.Session.DefaultTimeLimitSec,
		MaxTimeLimit:     cfg.Session.MaxTimeLimitSec,
		MaxOptions:       cfg.Session.MaxOptions,
	}, pollHistory, hub, logger)
	relay := chat.NewRelay(coord, hub, logger, cfg.Chat.MaxMessageLen)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger, "/ws"))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })
	router.GET("/stats", func(c *gin.Context) {
		total, teachers, students := hub.Counts()
		response.OK(c, gin.H{
			"connections": total,
			"teachers":    teachers,
			"students":    students,
			"polls_run":   pollHistory.Len(),
		})
	})
	router.GET("/ws", realtime.ServeWs(hub, coord, relay, logger))

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	coord.CloseCurrentPoll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown", zap.Error(err))
	}
	logger.Info("server stopped")
}

func newLogger() *zap.Logger {
	config := zap.NewProductionConfig()
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, _ := config.Build()
	return logger
}
