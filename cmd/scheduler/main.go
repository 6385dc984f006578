package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"leadflow_backend/internal/escalation"
	"leadflow_backend/internal/events"
	"leadflow_backend/internal/followup"
	"leadflow_backend/internal/leads"
	"leadflow_backend/internal/notification"
	"leadflow_backend/internal/scheduler"
	"leadflow_backend/internal/staff"
	"leadflow_backend/internal/triggers"
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
	log.Info("starting scheduler", "env", cfg.Env, "queue", cfg.AsynqQueueName, "reportHour", cfg.DailyReportHour)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := db.Connect(ctx, cfg, log)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()

	eventBus := events.NewInMemoryBus(log)
	val := validator.New()

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
	followupModule := followup.NewModule(pool, leadsModule.Repository(), staffModule.Repository(), nil, eventBus, val, cfg.Location, log)

	checker := escalation.NewChecker(leadsModule.Repository(), leadsModule.Policy(), eventBus, cfg, log)
	runner := triggers.NewRunner(checker, followupModule.Service(), leadsModule.ManagementService(), staffModule.Repository(), eventBus, cfg.Location, log)

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize scheduler client", "error", err)
		panic("failed to initialize scheduler client: " + err.Error())
	}
	defer func() { _ = client.Close() }()

	worker, err := scheduler.NewWorker(cfg, runner, log)
	if err != nil {
		log.Error("failed to initialize scheduler worker", "error", err)
		panic("failed to initialize scheduler worker: " + err.Error())
	}
	periodic := scheduler.NewPeriodic(client, cfg, log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		worker.Run(gctx)
		return nil
	})
	g.Go(func() error {
		periodic.Run(gctx)
		return nil
	})
	_ = g.Wait()

	// Let in-flight notifications finish before the process exits.
	eventBus.Wait()
	log.Info("scheduler stopped")
}
