package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"leadflow_backend/internal/escalation"
	"leadflow_backend/internal/followup"
	"leadflow_backend/internal/triggers"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"

	"github.com/alicebob/miniredis/v2"
	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type enqueued struct {
	taskType string
	slot     string
}

type fakeEnqueuer struct {
	calls []enqueued
	fail  bool
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, task *asynq.Task, _ time.Duration) (bool, error) {
	if f.fail {
		return false, errors.New("redis down")
	}
	p, err := ParseSlotPayload(task)
	if err != nil {
		return false, err
	}
	f.calls = append(f.calls, enqueued{taskType: task.Type(), slot: p.Slot})
	return true, nil
}

func (f *fakeEnqueuer) count(taskType string) int {
	n := 0
	for _, c := range f.calls {
		if c.taskType == taskType {
			n++
		}
	}
	return n
}

func newPeriodic(t *testing.T, enq Enqueuer, now *time.Time) *Periodic {
	t.Helper()
	cfg := &config.Config{
		IdleCheckInterval:     10 * time.Minute,
		ReassignCheckInterval: time.Hour,
		DailyReportHour:       8,
		Location:              time.UTC,
	}
	p := NewPeriodic(enq, cfg, logger.Discard())
	p.now = func() time.Time { return *now }
	return p
}

func TestPeriodicEnqueuesOncePerSlot(t *testing.T) {
	enq := &fakeEnqueuer{}
	now := time.Date(2024, 3, 10, 7, 1, 0, 0, time.UTC)
	p := newPeriodic(t, enq, &now)
	ctx := context.Background()

	p.tick(ctx)
	now = now.Add(30 * time.Second)
	p.tick(ctx)

	assert.Equal(t, 1, enq.count(TaskIdleCheck))
	assert.Equal(t, 1, enq.count(TaskIdleReassign))
	assert.Equal(t, 0, enq.count(TaskFollowUpReminders), "daily reports wait for the report hour")

	now = time.Date(2024, 3, 10, 7, 11, 0, 0, time.UTC)
	p.tick(ctx)
	assert.Equal(t, 2, enq.count(TaskIdleCheck))
	assert.Equal(t, 1, enq.count(TaskIdleReassign))
	assert.Equal(t, "2024-03-10T07:10", enq.calls[len(enq.calls)-1].slot)
}

func TestPeriodicDailyReportsOncePerDay(t *testing.T) {
	enq := &fakeEnqueuer{}
	now := time.Date(2024, 3, 10, 8, 0, 5, 0, time.UTC)
	p := newPeriodic(t, enq, &now)
	ctx := context.Background()

	p.tick(ctx)
	now = now.Add(3 * time.Hour)
	p.tick(ctx)

	assert.Equal(t, 1, enq.count(TaskFollowUpReminders))
	assert.Equal(t, 1, enq.count(TaskBirthdayReport))

	now = time.Date(2024, 3, 11, 8, 30, 0, 0, time.UTC)
	p.tick(ctx)
	assert.Equal(t, 2, enq.count(TaskBirthdayReport))
}

func TestPeriodicRetriesAfterFailure(t *testing.T) {
	enq := &fakeEnqueuer{fail: true}
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	p := newPeriodic(t, enq, &now)
	ctx := context.Background()

	p.tick(ctx)
	assert.Empty(t, p.lastDaily)

	enq.fail = false
	p.tick(ctx)
	assert.Equal(t, 1, enq.count(TaskIdleCheck))
	assert.Equal(t, 1, enq.count(TaskBirthdayReport))
	assert.Equal(t, "2024-03-10", p.lastDaily)
}

func TestClientUniqueLockDeduplicatesReplicas(t *testing.T) {
	mr := miniredis.RunT(t)
	a := newClient(asynq.RedisClientOpt{Addr: mr.Addr()}, "")
	b := newClient(asynq.RedisClientOpt{Addr: mr.Addr()}, "")
	defer func() { _ = a.Close() }()
	defer func() { _ = b.Close() }()

	task, err := NewSlotTask(TaskIdleCheck, "2024-03-10T07:10")
	require.NoError(t, err)

	first, err := a.Enqueue(context.Background(), task, 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, first)

	second, err := b.Enqueue(context.Background(), task, 10*time.Minute)
	require.NoError(t, err)
	assert.False(t, second, "the same slot from another replica is a duplicate")

	next, err := NewSlotTask(TaskIdleCheck, "2024-03-10T07:20")
	require.NoError(t, err)
	third, err := b.Enqueue(context.Background(), next, 10*time.Minute)
	require.NoError(t, err)
	assert.True(t, third)
}

func TestNilClientIsNoop(t *testing.T) {
	var c *Client
	ok, err := c.Enqueue(context.Background(), asynq.NewTask(TaskIdleCheck, nil), time.Minute)
	assert.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisClientOpt(t *testing.T) {
	opt, err := redisClientOpt("rediss://:secret@cache.local:6380/2", true)
	require.NoError(t, err)
	assert.Equal(t, "cache.local:6380", opt.Addr)
	assert.Equal(t, "secret", opt.Password)
	assert.Equal(t, 2, opt.DB)
	require.NotNil(t, opt.TLSConfig)
	assert.True(t, opt.TLSConfig.InsecureSkipVerify)
}

type fakeRunner struct {
	calls []string
	err   error
}

func (f *fakeRunner) IdleCheck(context.Context) (escalation.Report, error) {
	f.calls = append(f.calls, "idle")
	return escalation.Report{}, f.err
}

func (f *fakeRunner) ReassignCheck(context.Context) (escalation.Report, error) {
	f.calls = append(f.calls, "reassign")
	return escalation.Report{}, f.err
}

func (f *fakeRunner) FollowUpReminders(context.Context) (followup.DueReport, error) {
	f.calls = append(f.calls, "followups")
	return followup.DueReport{}, f.err
}

func (f *fakeRunner) BirthdayReport(context.Context) (triggers.BirthdayReport, error) {
	f.calls = append(f.calls, "birthdays")
	return triggers.BirthdayReport{}, f.err
}

func TestWorkerRoutesTasksToRunner(t *testing.T) {
	runner := &fakeRunner{}
	w := &Worker{runner: runner, log: logger.Discard()}
	mux := w.routes()

	for _, taskType := range []string{TaskIdleCheck, TaskIdleReassign, TaskFollowUpReminders, TaskBirthdayReport} {
		task, err := NewSlotTask(taskType, "2024-03-10")
		require.NoError(t, err)
		require.NoError(t, mux.ProcessTask(context.Background(), task))
	}
	assert.Equal(t, []string{"idle", "reassign", "followups", "birthdays"}, runner.calls)
}

func TestWorkerReturnsRunnerErrorsForRetry(t *testing.T) {
	w := &Worker{runner: &fakeRunner{err: errors.New("db down")}, log: logger.Discard()}
	task, err := NewSlotTask(TaskIdleCheck, "x")
	require.NoError(t, err)
	assert.Error(t, w.routes().ProcessTask(context.Background(), task))
}
