package followup

import (
	"context"
	"errors"
	"strings"
	"time"

	"leadflow_backend/internal/events"
	leadsrepo "leadflow_backend/internal/leads/repository"
	staffdomain "leadflow_backend/internal/staff/domain"
	staffrepo "leadflow_backend/internal/staff/repository"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"

	"github.com/google/uuid"
)

// Store persists and reads calendar entries.
type Store interface {
	InsertBatch(ctx context.Context, items []Appointment) (int, error)
	ListRange(ctx context.Context, staffID *uuid.UUID, from, to time.Time) ([]CalendarEvent, error)
}

// LeadLookup loads the lead a batch belongs to.
type LeadLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (leadsrepo.Lead, error)
}

// StaffLookup resolves an explicitly chosen responsible member.
type StaffLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (staffdomain.Staff, error)
}

// ScheduleResult reports a booked batch.
type ScheduleResult struct {
	Appointments []Appointment `json:"appointments"`
	Inserted     int           `json:"inserted"`
}

// DueReport lists the follow-ups starting on one local day.
type DueReport struct {
	Day      string          `json:"day"`
	Items    []CalendarEvent `json:"items"`
	Notified bool            `json:"notified"`
}

type Service struct {
	store    Store
	leads    LeadLookup
	staff    StaffLookup
	eventBus events.Bus
	loc      *time.Location
	log      *logger.Logger
}

func NewService(store Store, leads LeadLookup, staff StaffLookup, eventBus events.Bus, loc *time.Location, log *logger.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{store: store, leads: leads, staff: staff, eventBus: eventBus, loc: loc, log: log}
}

// Schedule books the batch for a lead. The responsible member defaults to the
// lead's assignee, then to the actor.
func (s *Service) Schedule(ctx context.Context, actor staffdomain.Actor, leadID uuid.UUID, staffID *uuid.UUID, serviceDate time.Time) (ScheduleResult, error) {
	lead, err := s.leads.GetByID(ctx, leadID)
	if err != nil {
		if errors.Is(err, leadsrepo.ErrNotFound) {
			return ScheduleResult{}, apperr.NotFound("lead not found")
		}
		return ScheduleResult{}, err
	}
	if !actor.IsAdmin() && (lead.AssignedTo == nil || *lead.AssignedTo != actor.ID) && actor.Role != staffdomain.RoleAfterCare {
		return ScheduleResult{}, apperr.Forbidden("lead is not assigned to you")
	}

	owner := actor.ID
	switch {
	case staffID != nil:
		if _, err := s.staff.GetByID(ctx, *staffID); err != nil {
			if errors.Is(err, staffrepo.ErrNotFound) {
				return ScheduleResult{}, apperr.Validation("staffId does not match a staff member")
			}
			return ScheduleResult{}, err
		}
		owner = *staffID
	case lead.AssignedTo != nil:
		owner = *lead.AssignedTo
	}
	return s.book(ctx, lead, owner, serviceDate)
}

// ScheduleForLead books the batch when a sale closes with a service date.
func (s *Service) ScheduleForLead(ctx context.Context, lead leadsrepo.Lead, staffID uuid.UUID, serviceDate time.Time) error {
	_, err := s.book(ctx, lead, staffID, serviceDate)
	return err
}

func (s *Service) book(ctx context.Context, lead leadsrepo.Lead, staffID uuid.UUID, serviceDate time.Time) (ScheduleResult, error) {
	label := strings.TrimSpace(lead.Name)
	if label == "" {
		label = lead.Phone
	}
	items := Generate(lead.ID, staffID, serviceDate.In(s.loc), label)

	inserted, err := s.store.InsertBatch(ctx, items)
	if err != nil {
		s.log.DatabaseError("followup.insert_batch", err)
		return ScheduleResult{}, apperr.Unavailable("follow-ups could not be scheduled", err)
	}
	s.log.Info("follow-ups scheduled", "leadId", lead.ID, "staffId", staffID, "inserted", inserted)
	return ScheduleResult{Appointments: items, Inserted: inserted}, nil
}

// List returns calendar entries starting in [from, to). Admins see the whole
// team, everyone else only their own.
func (s *Service) List(ctx context.Context, actor staffdomain.Actor, from, to time.Time) ([]CalendarEvent, error) {
	if !to.After(from) {
		return nil, apperr.Validation("to must be after from")
	}
	var scope *uuid.UUID
	if !actor.IsAdmin() {
		id := actor.ID
		scope = &id
	}
	items, err := s.store.ListRange(ctx, scope, from, to)
	if err != nil {
		return nil, apperr.Unavailable("calendar could not be loaded", err)
	}
	return items, nil
}

// RemindDue publishes the follow-ups starting on day's local date. Nothing is
// published for an empty day.
func (s *Service) RemindDue(ctx context.Context, day time.Time) (DueReport, error) {
	local := day.In(s.loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	report := DueReport{Day: start.Format("2006-01-02"), Items: make([]CalendarEvent, 0)}

	items, err := s.store.ListRange(ctx, nil, start, start.AddDate(0, 0, 1))
	if err != nil {
		return report, apperr.Unavailable("follow-ups could not be loaded", err)
	}
	report.Items = items
	if len(items) == 0 {
		return report, nil
	}

	due := make([]events.DueFollowUp, 0, len(items))
	for _, e := range items {
		due = append(due, events.DueFollowUp{
			Title:     e.Title,
			LeadName:  e.LeadName,
			StaffName: e.StaffName,
			StartTime: e.Start.In(s.loc),
		})
	}
	s.eventBus.Publish(ctx, events.FollowUpsDue{BaseEvent: events.NewBaseEvent(), Day: start, Items: due})
	report.Notified = true
	return report, nil
}
