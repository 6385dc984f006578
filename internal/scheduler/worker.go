package scheduler

import (
	"context"
	"fmt"

	"leadflow_backend/internal/escalation"
	"leadflow_backend/internal/followup"
	"leadflow_backend/internal/triggers"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/hibiken/asynq"
)

// TaskRunner is the subset of triggers.Runner the worker drives.
type TaskRunner interface {
	IdleCheck(ctx context.Context) (escalation.Report, error)
	ReassignCheck(ctx context.Context) (escalation.Report, error)
	FollowUpReminders(ctx context.Context) (followup.DueReport, error)
	BirthdayReport(ctx context.Context) (triggers.BirthdayReport, error)
}

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	runner TaskRunner
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, runner TaskRunner, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 5
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	w := &Worker{server: server, runner: runner, log: log}
	w.mux = w.routes()
	return w, nil
}

func (w *Worker) routes() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TaskIdleCheck, w.handleIdleCheck)
	mux.HandleFunc(TaskIdleReassign, w.handleIdleReassign)
	mux.HandleFunc(TaskFollowUpReminders, w.handleFollowUpReminders)
	mux.HandleFunc(TaskBirthdayReport, w.handleBirthdayReport)
	return mux
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleIdleCheck(ctx context.Context, task *asynq.Task) error {
	report, err := w.runner.IdleCheck(ctx)
	if err != nil {
		return err
	}
	w.log.Info("idle check finished", "slot", slotOf(task), "leads", len(report.Items), "notified", report.Notified)
	return nil
}

func (w *Worker) handleIdleReassign(ctx context.Context, task *asynq.Task) error {
	report, err := w.runner.ReassignCheck(ctx)
	if err != nil {
		return err
	}
	w.log.Info("reassign check finished", "slot", slotOf(task), "leads", len(report.Items), "notified", report.Notified)
	return nil
}

func (w *Worker) handleFollowUpReminders(ctx context.Context, task *asynq.Task) error {
	report, err := w.runner.FollowUpReminders(ctx)
	if err != nil {
		return err
	}
	w.log.Info("follow-up reminders finished", "slot", slotOf(task), "due", len(report.Items), "notified", report.Notified)
	return nil
}

func (w *Worker) handleBirthdayReport(ctx context.Context, task *asynq.Task) error {
	report, err := w.runner.BirthdayReport(ctx)
	if err != nil {
		return err
	}
	w.log.Info("birthday report finished", "slot", slotOf(task), "today", len(report.Today), "thisMonth", len(report.ThisMonth))
	return nil
}

func slotOf(task *asynq.Task) string {
	p, err := ParseSlotPayload(task)
	if err != nil {
		return ""
	}
	return p.Slot
}
