// Package management drives the lead lifecycle: every write goes through
// the assignment policy, lands in the store, appends exactly one activity
// entry when status or assignee changed, and then notifies.
//
// The three steps are not atomic. A failed append after a successful write
// is returned to the caller; the write itself is not rolled back.
package management

import (
	"context"
	"errors"
	"strings"
	"time"

	"leadflow_backend/internal/activity"
	"leadflow_backend/internal/assignment"
	"leadflow_backend/internal/events"
	"leadflow_backend/internal/leads/domain"
	"leadflow_backend/internal/leads/repository"
	"leadflow_backend/internal/leads/transport"
	staffdomain "leadflow_backend/internal/staff/domain"
	"leadflow_backend/platform/apperr"
	"leadflow_backend/platform/logger"
	"leadflow_backend/platform/phone"
	"leadflow_backend/platform/sanitize"

	"github.com/google/uuid"
)

// Repository defines the data access interface needed by the management service.
// This is a consumer-driven interface - only what management needs.
type Repository interface {
	Create(ctx context.Context, f repository.Fields) (repository.Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (repository.Lead, error)
	Update(ctx context.Context, id uuid.UUID, f repository.Fields) (repository.Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, p repository.ListParams) ([]repository.Lead, int, error)
	UnreadCount(ctx context.Context, staffID uuid.UUID) (int, error)
	ListBirthdaysInMonth(ctx context.Context, month int, assignedTo *uuid.UUID) ([]repository.Lead, error)
}

// ActivityLog is the append-only history.
type ActivityLog interface {
	Append(ctx context.Context, leadID uuid.UUID, description string, actor *activity.Actor) (activity.Entry, error)
	ListByLead(ctx context.Context, leadID uuid.UUID) ([]activity.Entry, error)
}

// AssignmentPolicy validates requested assignees.
type AssignmentPolicy interface {
	ValidateAssignment(ctx context.Context, actor staffdomain.Actor, draft assignment.Draft) (assignment.Decision, error)
}

// StaffLookup resolves actor display names for attribution.
type StaffLookup interface {
	GetByID(ctx context.Context, id uuid.UUID) (staffdomain.Staff, error)
}

// FollowUpScheduler books the after-care batch when a sale closes.
type FollowUpScheduler interface {
	ScheduleForLead(ctx context.Context, lead repository.Lead, staffID uuid.UUID, serviceDate time.Time) error
}

// Service handles lead lifecycle operations.
type Service struct {
	repo      Repository
	activity  ActivityLog
	policy    AssignmentPolicy
	staff     StaffLookup
	eventBus  events.Bus
	followUps FollowUpScheduler
	loc       *time.Location
	log       *logger.Logger
	now       func() time.Time
}

// New creates a new lead management service.
func New(repo Repository, log ActivityLog, policy AssignmentPolicy, staff StaffLookup, eventBus events.Bus, loc *time.Location, lg *logger.Logger) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:     repo,
		activity: log,
		policy:   policy,
		staff:    staff,
		eventBus: eventBus,
		loc:      loc,
		log:      lg,
		now:      time.Now,
	}
}

// SetFollowUpScheduler wires the follow-up scheduler after construction.
func (s *Service) SetFollowUpScheduler(f FollowUpScheduler) {
	s.followUps = f
}

// Create stores a new lead, logs its creation and announces it.
func (s *Service) Create(ctx context.Context, actor staffdomain.Actor, req transport.CreateLeadRequest) (transport.LeadResponse, error) {
	status := domain.StatusNew
	if strings.TrimSpace(req.Status) != "" {
		parsed, ok := domain.ParseStatus(req.Status)
		if !ok {
			return transport.LeadResponse{}, apperr.Validation("invalid status")
		}
		status = parsed
	}

	name := sanitize.Line(req.Name)
	if name == "" {
		return transport.LeadResponse{}, apperr.Validation("name is required")
	}

	received := s.today()
	if req.ReceivedDate != "" {
		d, err := s.parseDate(req.ReceivedDate)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		received = d
	}

	var birthday *time.Time
	if req.Birthday != "" {
		d, err := s.parseDate(req.Birthday)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		birthday = &d
	}

	decision, err := s.policy.ValidateAssignment(ctx, actor, assignment.Draft{AssignedTo: req.AssignedTo.Value})
	if err != nil {
		return transport.LeadResponse{}, err
	}

	lead, err := s.repo.Create(ctx, repository.Fields{
		Name:         name,
		Phone:        phone.NormalizeE164(req.Phone),
		Source:       sanitize.Line(req.Source),
		Program:      sanitize.Line(req.Program),
		Status:       status,
		AssignedTo:   decision.AssignedTo,
		Value:        req.Value.Value,
		Notes:        sanitize.Text(req.Notes),
		ReceivedDate: received,
		Birthday:     birthday,
		Address:      sanitize.Text(req.Address),
	})
	if err != nil {
		s.log.DatabaseError("leads.create", err)
		return transport.LeadResponse{}, err
	}

	author := s.attribution(ctx, actor)
	if _, err := s.activity.Append(ctx, lead.ID, domain.CreatedDescription, author); err != nil {
		return ToLeadResponse(lead), err
	}

	s.eventBus.Publish(ctx, events.LeadCreated{
		BaseEvent: events.NewBaseEvent(),
		Lead:      Summary(lead),
		ActorName: actorName(author),
	})

	return ToLeadResponse(lead), nil
}

// Get returns one lead the actor may see.
func (s *Service) Get(ctx context.Context, actor staffdomain.Actor, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.load(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !canAccess(actor, lead) {
		return transport.LeadResponse{}, apperr.Forbidden("lead is not assigned to you")
	}
	return ToLeadResponse(lead), nil
}

// List returns leads within the actor's scope: admins see everything,
// sales see their own, after-care also sees the unassigned pool.
func (s *Service) List(ctx context.Context, actor staffdomain.Actor, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	params := repository.ListParams{
		Search: sanitize.Line(req.Search),
		Limit:  req.Limit,
		Offset: req.Offset,
	}
	if !actor.IsAdmin() {
		id := actor.ID
		params.AssignedTo = &id
		params.IncludePooled = actor.Role == staffdomain.RoleAfterCare
	}
	if req.Status != "" {
		status, ok := domain.ParseStatus(req.Status)
		if !ok {
			return transport.LeadListResponse{}, apperr.Validation("invalid status")
		}
		params.Status = &status
	}
	rng, err := s.parseRange(req.From, req.To)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	params.Range = rng

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		return transport.LeadListResponse{}, err
	}
	return transport.LeadListResponse{Items: toLeadResponses(leads), Total: total}, nil
}

// Update applies a partial update. The activity entry describes only what
// changed in status and assignee; edits to other fields are not logged.
func (s *Service) Update(ctx context.Context, actor staffdomain.Actor, id uuid.UUID, req transport.UpdateLeadRequest) (transport.LeadResponse, error) {
	return s.update(ctx, actor, id, req, nil)
}

// update writes the lead and appends at most one entry. A logged call
// replaces the diff text with the call description and always appends.
func (s *Service) update(ctx context.Context, actor staffdomain.Actor, id uuid.UUID, req transport.UpdateLeadRequest, call *string) (transport.LeadResponse, error) {
	current, err := s.load(ctx, id)
	if err != nil {
		return transport.LeadResponse{}, err
	}
	if !canAccess(actor, current) {
		return transport.LeadResponse{}, apperr.Forbidden("lead is not assigned to you")
	}

	fields := repository.FieldsOf(current)
	if err := s.apply(&fields, req); err != nil {
		return transport.LeadResponse{}, err
	}
	if !domain.CanTransition(current.Status, fields.Status) {
		return transport.LeadResponse{}, apperr.Validation("status transition is not allowed")
	}

	if req.AssignedTo.Set && req.AssignedTo.Value != nil {
		decision, err := s.policy.ValidateAssignment(ctx, actor, assignment.Draft{AssignedTo: req.AssignedTo.Value})
		if err != nil {
			return transport.LeadResponse{}, err
		}
		fields.AssignedTo = decision.AssignedTo
	}

	var serviceDate *time.Time
	if req.ServiceDate != nil && strings.TrimSpace(*req.ServiceDate) != "" {
		d, err := s.parseDateTime(*req.ServiceDate)
		if err != nil {
			return transport.LeadResponse{}, err
		}
		serviceDate = &d
	}

	updated, err := s.repo.Update(ctx, id, fields)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		s.log.DatabaseError("leads.update", err)
		return transport.LeadResponse{}, err
	}

	// The diff is taken against what this call wrote, not the read-back,
	// so a concurrent writer's change is never attributed to this actor.
	written := domain.Snapshot{
		Status:       fields.Status,
		AssignedTo:   fields.AssignedTo,
		AssigneeName: s.assigneeName(ctx, fields.AssignedTo, updated),
	}
	description, changed := domain.DescribeChange(current.Snapshot(), written)
	if call != nil {
		description = domain.CallDescription(fields.Status, *call)
	}

	if changed || call != nil {
		author := s.attribution(ctx, actor)
		if _, err := s.activity.Append(ctx, updated.ID, description, author); err != nil {
			s.log.Error("lead updated without activity entry", "leadId", updated.ID, "error", err)
			return ToLeadResponse(updated), err
		}
		if !changed {
			return ToLeadResponse(updated), nil
		}
		s.eventBus.Publish(ctx, events.LeadUpdated{
			BaseEvent:           events.NewBaseEvent(),
			Lead:                Summary(updated),
			PreviousStatusLabel: current.Status.Label(),
			Change:              description,
			ActorName:           actorName(author),
		})
	}

	if updated.Status == domain.StatusWon && serviceDate != nil {
		if err := s.scheduleFollowUps(ctx, actor, updated, *serviceDate); err != nil {
			return ToLeadResponse(updated), err
		}
	}

	return ToLeadResponse(updated), nil
}

// LogCall records a call outcome as a status update with a single call
// entry in place of the status-change text.
func (s *Service) LogCall(ctx context.Context, actor staffdomain.Actor, id uuid.UUID, req transport.LogCallRequest) (transport.LeadResponse, error) {
	status, ok := domain.ParseStatus(req.Status)
	if !ok {
		return transport.LeadResponse{}, apperr.Validation("invalid status")
	}
	code := string(status)
	note := sanitize.Text(req.Note)
	return s.update(ctx, actor, id, transport.UpdateLeadRequest{Status: &code}, &note)
}

// Delete announces the removal from the pre-deletion snapshot, then deletes.
// The announcement is best effort: its failure never blocks the delete.
func (s *Service) Delete(ctx context.Context, actor staffdomain.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return apperr.Forbidden("only admins can delete leads")
	}

	snapshot, err := s.load(ctx, id)
	if err != nil {
		return err
	}

	author := s.attribution(ctx, actor)
	if err := s.eventBus.PublishSync(ctx, events.LeadDeleted{
		BaseEvent: events.NewBaseEvent(),
		Lead:      Summary(snapshot),
		ActorName: actorName(author),
	}); err != nil {
		s.log.Warn("lead deletion notification failed", "leadId", id, "error", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		s.log.DatabaseError("leads.delete", err)
		return err
	}
	return nil
}

// Activities returns the lead's history, newest first.
func (s *Service) Activities(ctx context.Context, actor staffdomain.Actor, id uuid.UUID) ([]activity.Entry, error) {
	lead, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canAccess(actor, lead) {
		return nil, apperr.Forbidden("lead is not assigned to you")
	}
	return s.activity.ListByLead(ctx, id)
}

// UnreadCount counts early-status leads assigned to the actor.
func (s *Service) UnreadCount(ctx context.Context, actor staffdomain.Actor) (int, error) {
	return s.repo.UnreadCount(ctx, actor.ID)
}

// Birthdays lists leads whose birthday falls today, and every birthday
// from today to the end of the month.
func (s *Service) Birthdays(ctx context.Context, actor staffdomain.Actor, today time.Time) (transport.BirthdaysResponse, error) {
	var scope *uuid.UUID
	if !actor.IsAdmin() {
		id := actor.ID
		scope = &id
	}
	todayLeads, monthLeads, err := s.birthdays(ctx, scope, today)
	if err != nil {
		return transport.BirthdaysResponse{}, err
	}
	return transport.BirthdaysResponse{Today: toLeadResponses(todayLeads), ThisMonth: toLeadResponses(monthLeads)}, nil
}

// BirthdayLeads is Birthdays across all leads, for the daily report.
func (s *Service) BirthdayLeads(ctx context.Context, today time.Time) ([]repository.Lead, []repository.Lead, error) {
	return s.birthdays(ctx, nil, today)
}

func (s *Service) birthdays(ctx context.Context, scope *uuid.UUID, today time.Time) ([]repository.Lead, []repository.Lead, error) {
	local := today.In(s.loc)
	leads, err := s.repo.ListBirthdaysInMonth(ctx, int(local.Month()), scope)
	if err != nil {
		return nil, nil, err
	}

	todayLeads := make([]repository.Lead, 0)
	monthLeads := make([]repository.Lead, 0)
	for _, l := range leads {
		day := l.Birthday.Day()
		if day == local.Day() {
			todayLeads = append(todayLeads, l)
		}
		if day >= local.Day() {
			monthLeads = append(monthLeads, l)
		}
	}
	return todayLeads, monthLeads, nil
}

func (s *Service) scheduleFollowUps(ctx context.Context, actor staffdomain.Actor, lead repository.Lead, serviceDate time.Time) error {
	if s.followUps == nil {
		s.log.Warn("service date ignored: follow-up scheduler not configured", "leadId", lead.ID)
		return nil
	}
	staffID := actor.ID
	if lead.AssignedTo != nil {
		staffID = *lead.AssignedTo
	}
	return s.followUps.ScheduleForLead(ctx, lead, staffID, serviceDate)
}

func (s *Service) apply(f *repository.Fields, req transport.UpdateLeadRequest) error {
	if req.Name != nil {
		name := sanitize.Line(*req.Name)
		if name == "" {
			return apperr.Validation("name is required")
		}
		f.Name = name
	}
	if req.Phone != nil {
		f.Phone = phone.NormalizeE164(*req.Phone)
	}
	if req.Source != nil {
		f.Source = sanitize.Line(*req.Source)
	}
	if req.Program != nil {
		f.Program = sanitize.Line(*req.Program)
	}
	if req.Status != nil {
		status, ok := domain.ParseStatus(*req.Status)
		if !ok {
			return apperr.Validation("invalid status")
		}
		f.Status = status
	}
	if req.AssignedTo.Set && req.AssignedTo.Value == nil {
		f.AssignedTo = nil
	}
	if req.Value.Set {
		f.Value = req.Value.Value
	}
	if req.Notes != nil {
		f.Notes = sanitize.Text(*req.Notes)
	}
	if req.ReceivedDate != nil {
		d, err := s.parseDate(*req.ReceivedDate)
		if err != nil {
			return err
		}
		f.ReceivedDate = d
	}
	if req.Birthday != nil {
		if strings.TrimSpace(*req.Birthday) == "" {
			f.Birthday = nil
		} else {
			d, err := s.parseDate(*req.Birthday)
			if err != nil {
				return err
			}
			f.Birthday = &d
		}
	}
	if req.Address != nil {
		f.Address = sanitize.Text(*req.Address)
	}
	return nil
}

func (s *Service) load(ctx context.Context, id uuid.UUID) (repository.Lead, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return repository.Lead{}, apperr.NotFound("lead not found")
		}
		return repository.Lead{}, err
	}
	return lead, nil
}

// attribution resolves the actor's display name. Lookup failures fall back
// to the raw ID so the entry is still attributed.
func (s *Service) attribution(ctx context.Context, actor staffdomain.Actor) *activity.Actor {
	if actor.ID == uuid.Nil {
		return nil
	}
	name := actor.ID.String()
	if member, err := s.staff.GetByID(ctx, actor.ID); err == nil {
		name = member.FullName
	}
	return &activity.Actor{ID: actor.ID, Name: name}
}

// assigneeName resolves the display name for a written assignee. The
// read-back name is used only when it belongs to the same assignee.
func (s *Service) assigneeName(ctx context.Context, assignee *uuid.UUID, readBack repository.Lead) string {
	if assignee == nil {
		return ""
	}
	if readBack.AssignedTo != nil && *readBack.AssignedTo == *assignee {
		return readBack.AssigneeName
	}
	if member, err := s.staff.GetByID(ctx, *assignee); err == nil {
		return member.FullName
	}
	return ""
}

func actorName(a *activity.Actor) string {
	if a == nil {
		return activity.SystemActorName
	}
	return a.Name
}

func canAccess(actor staffdomain.Actor, lead repository.Lead) bool {
	if actor.IsAdmin() {
		return true
	}
	if lead.AssignedTo == nil {
		return actor.Role == staffdomain.RoleAfterCare
	}
	return *lead.AssignedTo == actor.ID
}

func (s *Service) today() time.Time {
	now := s.now().In(s.loc)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, s.loc)
}

func (s *Service) parseDate(raw string) (time.Time, error) {
	d, err := time.ParseInLocation(transport.DateLayout, strings.TrimSpace(raw), s.loc)
	if err != nil {
		return time.Time{}, apperr.Validation("dates must use YYYY-MM-DD")
	}
	return d, nil
}

func (s *Service) parseDateTime(raw string) (time.Time, error) {
	t, err := transport.ParseDateTime(raw, s.loc)
	if err != nil {
		return time.Time{}, apperr.Validation("serviceDate must be a date or datetime")
	}
	return t, nil
}

func (s *Service) parseRange(from, to string) (repository.DateRange, error) {
	var rng repository.DateRange
	if from != "" {
		d, err := s.parseDate(from)
		if err != nil {
			return rng, err
		}
		rng.From = &d
	}
	if to != "" {
		d, err := s.parseDate(to)
		if err != nil {
			return rng, err
		}
		rng.To = &d
	}
	return rng, nil
}
