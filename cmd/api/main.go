package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"leadflow_backend/internal/escalation"
	"leadflow_backend/internal/events"
	"leadflow_backend/internal/followup"
	apphttp "leadflow_backend/internal/http"
	"leadflow_backend/internal/http/router"
	"leadflow_backend/internal/leads"
	"leadflow_backend/internal/notification"
	"leadflow_backend/internal/realtime"
	"leadflow_backend/internal/staff"
	"leadflow_backend/internal/triggers"
	"leadflow_backend/migrations"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/db"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/validator"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr, "timezone", cfg.Location.String())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if cfg.MigrationsEnabled {
		if err := db.Retry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg, migrations.FS)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	notificationModule, err := notification.New(cfg, cfg.Location, log)
	if err != nil {
		panic("failed to initialize notifications: " + err.Error())
	}
	defer func() { _ = notificationModule.Close() }()
	notificationModule.RegisterHandlers(eventBus)

	staffModule, err := staff.NewModule(pool, val, cfg, log)
	if err != nil {
		panic("failed to initialize staff module: " + err.Error())
	}

	leadsModule, err := leads.NewModule(pool, eventBus, val, staffModule.Repository(), staffModule.Tracker(), cfg.Location, log)
	if err != nil {
		panic("failed to initialize leads module: " + err.Error())
	}

	followupModule := followup.NewModule(pool, leadsModule.Repository(), staffModule.Repository(), leadsModule.ManagementService(), eventBus, val, cfg.Location, log)

	checker := escalation.NewChecker(leadsModule.Repository(), leadsModule.Policy(), eventBus, cfg, log)
	runner := triggers.NewRunner(checker, followupModule.Service(), leadsModule.ManagementService(), staffModule.Repository(), eventBus, cfg.Location, log)
	triggersModule := triggers.NewModule(runner)

	realtimeModule := realtime.NewModule(staffModule.Keepalive(), router.OriginAllowed(cfg), log)
	listener := realtime.NewListener(cfg.DatabaseURL, realtimeModule.Hub(), log)

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: pool,
		Modules: []apphttp.Module{
			staffModule,
			leadsModule,
			followupModule,
			triggersModule,
			realtimeModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return listener.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutdown signal received, gracefully shutting down")
		realtimeModule.Hub().Close()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server error", "error", err)
	}
	eventBus.Wait()
}
