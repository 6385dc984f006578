// Package triggers holds the system checks an admin can run by hand and the
// scheduler runs on a timer. Both paths share the same Runner so a manual run
// and a scheduled run behave identically.
package triggers

import (
	"context"
	"time"

	"leadflow_backend/internal/escalation"
	"leadflow_backend/internal/events"
	"leadflow_backend/internal/followup"
	leadsrepo "leadflow_backend/internal/leads/repository"
	staffdomain "leadflow_backend/internal/staff/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// IdleChecker runs the two escalation tiers.
type IdleChecker interface {
	CheckStale(ctx context.Context) (escalation.Report, error)
	CheckReassign(ctx context.Context) (escalation.Report, error)
}

// Reminder publishes the follow-ups due on a day.
type Reminder interface {
	RemindDue(ctx context.Context, day time.Time) (followup.DueReport, error)
}

// BirthdaySource splits this month's birthdays into today and later.
type BirthdaySource interface {
	BirthdayLeads(ctx context.Context, today time.Time) ([]leadsrepo.Lead, []leadsrepo.Lead, error)
}

// StaffLookup resolves the requester's display name.
type StaffLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (staffdomain.Staff, error)
}

// BirthdayReport is the result of a birthday run.
type BirthdayReport struct {
	Day       string                `json:"day"`
	Today     []events.BirthdayLead `json:"today"`
	ThisMonth []events.BirthdayLead `json:"thisMonth"`
	Notified  bool                  `json:"notified"`
}

// TestReport confirms a test notification was queued.
type TestReport struct {
	RequestedBy string `json:"requestedBy"`
	Notified    bool   `json:"notified"`
}

type Runner struct {
	idle      IdleChecker
	reminders Reminder
	birthdays BirthdaySource
	staff     StaffLookup
	eventBus  events.Bus
	loc       *time.Location
	log       *logger.Logger
	now       func() time.Time
}

func NewRunner(idle IdleChecker, reminders Reminder, birthdays BirthdaySource, staff StaffLookup, eventBus events.Bus, loc *time.Location, log *logger.Logger) *Runner {
	if loc == nil {
		loc = time.UTC
	}
	return &Runner{
		idle:      idle,
		reminders: reminders,
		birthdays: birthdays,
		staff:     staff,
		eventBus:  eventBus,
		loc:       loc,
		log:       log,
		now:       time.Now,
	}
}

func (r *Runner) IdleCheck(ctx context.Context) (escalation.Report, error) {
	return r.idle.CheckStale(ctx)
}

func (r *Runner) ReassignCheck(ctx context.Context) (escalation.Report, error) {
	return r.idle.CheckReassign(ctx)
}

// FollowUpReminders reports today's follow-ups in the business timezone.
func (r *Runner) FollowUpReminders(ctx context.Context) (followup.DueReport, error) {
	return r.reminders.RemindDue(ctx, r.now().In(r.loc))
}

// BirthdayReport publishes today's and the rest of this month's birthdays.
// Nothing is published when both lists are empty.
func (r *Runner) BirthdayReport(ctx context.Context) (BirthdayReport, error) {
	now := r.now().In(r.loc)
	report := BirthdayReport{
		Day:       now.Format("2006-01-02"),
		Today:     make([]events.BirthdayLead, 0),
		ThisMonth: make([]events.BirthdayLead, 0),
	}

	today, later, err := r.birthdays.BirthdayLeads(ctx, now)
	if err != nil {
		return report, apperr.Unavailable("birthdays could not be loaded", err)
	}
	report.Today = birthdayLeads(today)
	report.ThisMonth = birthdayLeads(later)
	if len(today) == 0 && len(later) == 0 {
		return report, nil
	}

	r.eventBus.Publish(ctx, events.BirthdayReport{
		BaseEvent: events.NewBaseEvent(),
		Day:       now,
		Today:     report.Today,
		ThisMonth: report.ThisMonth,
	})
	report.Notified = true
	r.log.Info("birthday report published", "today", len(today), "thisMonth", len(later))
	return report, nil
}

// TestNotification sends a test message through every channel.
func (r *Runner) TestNotification(ctx context.Context, actor staffdomain.Actor) (TestReport, error) {
	name := "system"
	if actor.ID != uuid.Nil && r.staff != nil {
		if s, err := r.staff.GetByID(ctx, actor.ID); err == nil && s.FullName != "" {
			name = s.FullName
		}
	}
	r.eventBus.Publish(ctx, events.TestNotification{BaseEvent: events.NewBaseEvent(), RequestedBy: name})
	return TestReport{RequestedBy: name, Notified: true}, nil
}

func birthdayLeads(leads []leadsrepo.Lead) []events.BirthdayLead {
	out := make([]events.BirthdayLead, 0, len(leads))
	for _, l := range leads {
		if l.Birthday == nil {
			continue
		}
		out = append(out, events.BirthdayLead{Name: l.Name, Phone: l.Phone, Birthday: *l.Birthday})
	}
	return out
}
