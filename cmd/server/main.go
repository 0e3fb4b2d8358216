package main // Entry point package

import (
	"log"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/syndikat/teamliste/internal/config"
	"github.com/syndikat/teamliste/internal/database"
	"github.com/syndikat/teamliste/internal/handler"
	"github.com/syndikat/teamliste/internal/middleware"
	"github.com/syndikat/teamliste/internal/queue"
	"github.com/syndikat/teamliste/internal/repository"
	"github.com/syndikat/teamliste/internal/router"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments use the environment
	cfg := config.Load()

	logger, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}

	rdb := config.NewRedisClient()
	if rdb == nil {
		logger.Warn("redis unavailable; rate limiting and response cache disabled")
	}

	users := repository.NewUserRepo(db)
	members := repository.NewTeamMemberRepo(db)
	ranks := repository.NewRankRepo(db)
	verwaltungen := repository.NewVerwaltungRepo(db)

	authHandler := handler.NewAuthHandler(cfg, users, logger)
	teamHandler := handler.NewTeamHandler(members, ranks, verwaltungen)
	rankHandler := handler.NewTaxonomyHandler(ranks)
	verwHandler := handler.NewTaxonomyHandler(verwaltungen)

	session := middleware.SessionAuth(cfg.JWTSecret, users)
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestID())

	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, session, limiter)
	router.RegisterTeam(e, teamHandler, session, cache)
	router.RegisterTaxonomies(e, rankHandler, verwHandler, session, cache)

	// Audit trail consumer; reconnects on its own until the process exits.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			logger.Error("audit consumer stopped", zap.Error(err))
		}
	}()

	addr := ":" + cfg.Port
	logger.Info("listening", zap.String("addr", addr), zap.String("env", cfg.Env))
	if err := e.Start(addr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(cfg config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
