// Package main runs the race registration HTTP server.
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

	"github.com/raid-scout/backend/config"
	"github.com/raid-scout/backend/internal/abuse"
	"github.com/raid-scout/backend/internal/admin"
	"github.com/raid-scout/backend/internal/middleware"
	"github.com/raid-scout/backend/internal/races"
	"github.com/raid-scout/backend/internal/registrations"
	"github.com/raid-scout/backend/internal/units"
	"github.com/raid-scout/backend/pkg/audit"
	"github.com/raid-scout/backend/pkg/database"
	"github.com/raid-scout/backend/pkg/redis"
	"github.com/raid-scout/backend/pkg/response"
)

func main() {
	logger := newLogger()
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("load config", zap.Error(err))
	}

	ctx := context.Background()
	pool, err := database.NewPostgresPool(ctx, cfg.Database.DSN(), logger)
	if err != nil {
		logger.Fatal("database", zap.Error(err))
	}
	defer pool.Close()

	if err := database.Migrate(ctx, pool); err != nil {
		logger.Fatal("migrate", zap.Error(err))
	}

	rdb, err := redis.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, logger)
	if err != nil {
		logger.Fatal("redis", zap.Error(err))
	}
	defer rdb.Close()

	recorder := audit.NewRecorder(rdb.Client, logger)

	guard := abuse.NewGuard(abuse.NewRedisCounter(rdb.Client), abuse.Config{
		RegistrationWindow:     time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute,
		RegistrationMaxSuccess: int64(cfg.RateLimit.RegistrationMaxSuccess),
		RegistrationMaxFailure: int64(cfg.RateLimit.RegistrationMaxFailure),
		LoginWindow:            time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute,
		LoginMaxAttempts:       int64(cfg.RateLimit.LoginMaxAttempts),
	}, logger)

	authority := admin.NewAuthority(
		admin.NewRedisSessionStore(rdb.Client),
		cfg.Admin.PasswordHash,
		cfg.Admin.SessionSecret,
		time.Duration(cfg.Admin.SessionTTLMinutes)*time.Minute,
		time.Duration(cfg.Admin.IdleTimeoutMinutes)*time.Minute,
		logger,
	)

	raceRepo := races.NewRepository(pool)
	raceHandler := races.NewHandler(raceRepo, logger)

	unitRepo := units.NewRepository(pool)

	regRepo := registrations.NewRepository(pool, unitRepo)
	regService := registrations.NewService(regRepo, raceRepo, cfg.Registration.MaxTeamsPerRequest, logger)
	regHandler := registrations.NewHandler(regService, guard, logger)

	adminHandler := admin.NewHandler(authority, guard, regRepo, unitRepo, recorder, cfg.Admin.CookieSecure, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg.Server.CORSAllowedOrigins))
	router.Use(middleware.Logger(logger))

	router.GET("/health", func(c *gin.Context) { response.OK(c, gin.H{"status": "ok"}) })

	api := router.Group("/api")
	{
		api.GET("/races", raceHandler.List)
		api.POST("/registration", regHandler.Submit)

		api.POST("/admin/login", adminHandler.Login)
		api.POST("/admin/logout", adminHandler.Logout)

		protected := api.Group("/admin")
		protected.Use(middleware.AdminSession(authority))
		{
			protected.GET("/registrations", adminHandler.ListRegistrations)
			protected.GET("/registrations.csv", adminHandler.ExportRegistrations)
			protected.GET("/teams", adminHandler.ListTeams)
			protected.GET("/teams.csv", adminHandler.ExportTeams)
			protected.GET("/units", adminHandler.ListUnits)
			protected.GET("/units.csv", adminHandler.ExportUnits)
			protected.GET("/leaders", adminHandler.ListLeaders)
			protected.GET("/leaders.csv", adminHandler.ExportLeaders)
			protected.PATCH("/registrations/:id/mark-paid", adminHandler.MarkPaid)
		}
	}

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
