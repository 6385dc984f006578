package scheduler

import (
	"context"
	"time"

	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/hibiken/asynq"
)

const (
	slotLayout = "2006-01-02T15:04"
	dayLayout  = "2006-01-02"
	tickEvery  = 30 * time.Second
)

// Enqueuer is implemented by Client.
type Enqueuer interface {
	Enqueue(ctx context.Context, task *asynq.Task, uniqueFor time.Duration) (bool, error)
}

type intervalJob struct {
	taskType string
	every    time.Duration
	last     time.Time
}

// Periodic enqueues the idle checks on their intervals and the daily reports
// once per local day from DAILY_REPORT_HOUR. Every replica may run it; the
// unique lock on each slot lets only one enqueue win.
type Periodic struct {
	enq       Enqueuer
	jobs      []*intervalJob
	dailyHour int
	lastDaily string
	loc       *time.Location
	log       *logger.Logger
	now       func() time.Time
}

type PeriodicConfig interface {
	config.EscalationConfig
	config.LocaleConfig
}

func NewPeriodic(enq Enqueuer, cfg PeriodicConfig, log *logger.Logger) *Periodic {
	loc := cfg.GetLocation()
	if loc == nil {
		loc = time.UTC
	}
	return &Periodic{
		enq: enq,
		jobs: []*intervalJob{
			{taskType: TaskIdleCheck, every: cfg.GetIdleCheckInterval()},
			{taskType: TaskIdleReassign, every: cfg.GetReassignCheckInterval()},
		},
		dailyHour: cfg.GetDailyReportHour(),
		loc:       loc,
		log:       log,
		now:       time.Now,
	}
}

// Run ticks until ctx is done.
func (p *Periodic) Run(ctx context.Context) {
	p.tick(ctx)

	ticker := time.NewTicker(tickEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.tick(ctx)
		}
	}
}

func (p *Periodic) tick(ctx context.Context) {
	now := p.now().In(p.loc)

	for _, job := range p.jobs {
		if job.every <= 0 {
			continue
		}
		slot := now.Truncate(job.every)
		if !job.last.IsZero() && !slot.After(job.last) {
			continue
		}
		if p.enqueue(ctx, job.taskType, slot.Format(slotLayout), job.every) {
			job.last = slot
		}
	}

	day := now.Format(dayLayout)
	if now.Hour() < p.dailyHour || day == p.lastDaily {
		return
	}
	ok := p.enqueue(ctx, TaskFollowUpReminders, day, 24*time.Hour)
	ok = p.enqueue(ctx, TaskBirthdayReport, day, 24*time.Hour) && ok
	if ok {
		p.lastDaily = day
	}
}

// enqueue reports false only on a real failure so the slot is retried on the
// next tick.
func (p *Periodic) enqueue(ctx context.Context, taskType, slot string, uniqueFor time.Duration) bool {
	task, err := NewSlotTask(taskType, slot)
	if err != nil {
		p.log.Error("scheduler: build task failed", "task", taskType, "error", err)
		return false
	}
	enqueued, err := p.enq.Enqueue(ctx, task, uniqueFor)
	if err != nil {
		p.log.Warn("scheduler: enqueue failed", "task", taskType, "slot", slot, "error", err)
		return false
	}
	if enqueued {
		p.log.Info("scheduler: task enqueued", "task", taskType, "slot", slot)
	}
	return true
}
