// Package escalation reports leads that have sat in an early status too long.
// Checks only read and notify; they never change a lead, so running them
// again simply re-reports whatever is still unresolved.
package escalation

import (
	"context"
	"time"

	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/management"
	"leadflow_backend/internal/leads/repository"
	staffdomain "leadflow_backend/internal/staff/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/config"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/metrics"

	"github.com/google/uuid"
)

// LeadSource lists early-status leads created before a cutoff.
type LeadSource interface {
	ListIdle(ctx context.Context, cutoff time.Time) ([]repository.Lead, error)
}

// Advisor proposes a new owner for a stuck lead.
type Advisor interface {
	SuggestReassignment(ctx context.Context, current *uuid.UUID) (*staffdomain.Staff, error)
}

// Item is one idle lead in a report.
type Item struct {
	LeadID            uuid.UUID     `json:"leadId"`
	Name              string        `json:"name"`
	Phone             string        `json:"phone"`
	Status            string        `json:"status"`
	AssigneeName      string        `json:"assigneeName,omitempty"`
	CreatedAt         time.Time     `json:"createdAt"`
	Age               time.Duration `json:"age"`
	SuggestedAssignee *uuid.UUID    `json:"suggestedAssignee,omitempty"`
	SuggestedName     string        `json:"suggestedName,omitempty"`
}

// Report is the outcome of one check run.
type Report struct {
	Kind      events.IdleKind `json:"kind"`
	Threshold time.Duration   `json:"threshold"`
	CheckedAt time.Time       `json:"checkedAt"`
	Items     []Item          `json:"items"`
	Notified  bool            `json:"notified"`
}

type Checker struct {
	leads         LeadSource
	advisor       Advisor
	eventBus      events.Bus
	notifyAfter   time.Duration
	reassignAfter time.Duration
	log           *logger.Logger
	now           func() time.Time
}

func NewChecker(leads LeadSource, advisor Advisor, eventBus events.Bus, cfg config.EscalationConfig, log *logger.Logger) *Checker {
	return &Checker{
		leads:         leads,
		advisor:       advisor,
		eventBus:      eventBus,
		notifyAfter:   cfg.GetIdleNotifyAfter(),
		reassignAfter: cfg.GetIdleReassignAfter(),
		log:           log,
		now:           time.Now,
	}
}

// CheckStale reports early-status leads older than the notify threshold.
func (c *Checker) CheckStale(ctx context.Context) (Report, error) {
	return c.run(ctx, events.IdleKindStale, c.notifyAfter, false)
}

// CheckReassign reports leads older than the reassign threshold, each with an
// advisory new owner. Applying a suggestion is a normal lead update and goes
// through the assignment policy again.
func (c *Checker) CheckReassign(ctx context.Context) (Report, error) {
	return c.run(ctx, events.IdleKindReassign, c.reassignAfter, true)
}

func (c *Checker) run(ctx context.Context, kind events.IdleKind, threshold time.Duration, suggest bool) (Report, error) {
	now := c.now()
	report := Report{Kind: kind, Threshold: threshold, CheckedAt: now, Items: make([]Item, 0)}

	leads, err := c.leads.ListIdle(ctx, now.Add(-threshold))
	if err != nil {
		return report, apperr.Unavailable("idle leads could not be loaded", err)
	}

	idle := make([]events.IdleLead, 0, len(leads))
	for _, l := range leads {
		// Strictly older than the threshold, measured on this process's clock.
		if now.Sub(l.CreatedAt) <= threshold || !l.Status.IsEarly() {
			continue
		}
		item := Item{
			LeadID:       l.ID,
			Name:         l.Name,
			Phone:        l.Phone,
			Status:       l.Status.Label(),
			AssigneeName: l.AssigneeName,
			CreatedAt:    l.CreatedAt,
			Age:          now.Sub(l.CreatedAt),
		}
		if suggest {
			pick, err := c.advisor.SuggestReassignment(ctx, l.AssignedTo)
			if err != nil {
				c.log.Warn("reassignment suggestion failed", "leadId", l.ID, "error", err)
			} else if pick != nil {
				id := pick.ID
				item.SuggestedAssignee = &id
				item.SuggestedName = pick.FullName
			}
		}
		report.Items = append(report.Items, item)
		idle = append(idle, events.IdleLead{
			Lead:              management.Summary(l),
			Age:               item.Age,
			SuggestedAssignee: item.SuggestedName,
		})
	}

	if len(idle) == 0 {
		return report, nil
	}

	metrics.RecordIdleLeads(string(kind), len(idle))
	c.eventBus.Publish(ctx, events.IdleLeadsDetected{
		BaseEvent: events.NewBaseEvent(),
		Kind:      kind,
		Threshold: threshold,
		Leads:     idle,
	})
	report.Notified = true
	return report, nil
}
