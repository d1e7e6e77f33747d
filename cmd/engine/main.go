package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"courtside/internal/admission"
	"courtside/internal/alert"
	"courtside/internal/config"
	cronrunner "courtside/internal/cron"
	"courtside/internal/db"
	"courtside/internal/handler"
	"courtside/internal/logger"
	gormrepository "courtside/internal/repository/gorm"
	"courtside/internal/risklimit"
	"courtside/internal/service"
	"courtside/internal/settlement"
)

func main() {
	cfgPath := os.Getenv("CS_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("CS_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	locks := settlement.NewUserLocks()
	limits := &risklimit.Store{Repo: store, Logger: logger}
	engineSvc := &settlement.Engine{
		Repo:   store,
		Limits: limits,
		Locks:  locks,
		Logger: logger,
		Config: cfg.Settlement,
	}
	gate := &admission.Gate{Repo: store, Limits: limits, Locks: locks, Logger: logger}
	betSvc := &service.BetService{
		Repo:   store,
		Engine: engineSvc,
		Gate:   gate,
		Locks:  locks,
		Logger: logger,
	}
	bankrollSvc := &service.BankrollService{Repo: store, Locks: locks, Logger: logger}

	alertLoc, err := time.LoadLocation(cfg.Alerts.Timezone)
	if err != nil {
		logger.Warn("invalid alert timezone, falling back to UTC",
			zap.String("timezone", cfg.Alerts.Timezone), zap.Error(err))
		alertLoc = time.UTC
	}
	dispatcher := &alert.Dispatcher{Repo: store, Logger: logger, Location: alertLoc}

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	betHandler := &handler.BetHandler{Bets: betSvc}
	betHandler.Register(engine)
	bankrollHandler := &handler.BankrollHandler{Bankroll: bankrollSvc}
	bankrollHandler.Register(engine)
	limitHandler := &handler.LimitHandler{Repo: store, Limits: limits, Gate: gate}
	limitHandler.Register(engine)
	alertHandler := &handler.AlertHandler{Repo: store, Dispatcher: dispatcher}
	alertHandler.Register(engine)
	gameHandler := &handler.GameHandler{Repo: store}
	gameHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cronRunner := cronrunner.New(logger, ctx)
	if cfg.Cron.Enabled {
		scheduler := &service.Scheduler{
			Engine: engineSvc,
			Repo:   store,
			Logger: logger,
			Config: cfg,
		}
		if err := scheduler.Register(cronRunner); err != nil {
			logger.Fatal("cron registration failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 2)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
