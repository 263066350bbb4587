package main // Entry point package

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"

	"github.com/rezonate/auth-service/internal/auth"
	"github.com/rezonate/auth-service/internal/config"
	"github.com/rezonate/auth-service/internal/database"
	"github.com/rezonate/auth-service/internal/handler"
	"github.com/rezonate/auth-service/internal/profile"
	"github.com/rezonate/auth-service/internal/queue"
	"github.com/rezonate/auth-service/internal/repository"
	"github.com/rezonate/auth-service/internal/router"
	"github.com/rezonate/auth-service/internal/security"
	audit_publisher "github.com/rezonate/auth-service/internal/service"
	"github.com/rezonate/auth-service/pkg/log"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set the environment directly

	cfg := config.Load()
	logger := log.New(cfg.Env)

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal().Err(err).Msg("database connection failed")
	}
	defer db.Close()

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn().Msg("redis unavailable; login rate limiting disabled")
	}

	users := repository.NewUserRepo(db)
	sessions := repository.NewSessionRepo(db)
	profiles := repository.NewProfileRepo(db)

	sec := security.New(logger, security.DefaultMaxEvents, audit_publisher.PublishSecurityEvent)
	authMgr := auth.NewManager(cfg, users, sessions, profiles, sec, logger)
	profileMgr := profile.NewManager(profiles, users, sec)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := authMgr.Bootstrap(ctx); err != nil {
		logger.Fatal().Err(err).Msg("bootstrap failed")
	}

	// Background work: hourly expired-session sweep and the audit log
	// consumer.  Both retry on failure and stop on shutdown.
	go authMgr.RunSweeper(ctx)
	go func() {
		if err := queue.StartAuditConsumer(ctx); err != nil && ctx.Err() == nil {
			logger.Warn().Err(err).Msg("audit consumer stopped")
		}
	}()

	e := echo.New()
	e.HideBanner = true
	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(authMgr), authMgr, rdb)
	router.RegisterAdmin(e, handler.NewAdminHandler(authMgr, profileMgr, sec), authMgr, sec)

	addr := ":" + cfg.Port
	logger.Info().Str("addr", addr).Str("env", cfg.Env).Msg("listening")

	if err := e.Start(addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
