// Package assignment decides who may own a lead. It only reads staff and
// workload; it never writes.
package assignment

import (
	"context"
	"errors"
	"sort"

	"leadflow_backend/internal/staff/domain"
	staffrepo "leadflow_backend/internal/staff/repository"
	"leadflow_backend/platform/apperr"

	"github.com/google/uuid"
)

// CodeNoEligibleAssignee is returned in error details when an admin creates
// an unassigned lead while no sales member is online.
const CodeNoEligibleAssignee = "no_eligible_assignee"

// StaffReader is the staff lookup the policy needs.
type StaffReader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Staff, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Staff, error)
}

// WorkloadReader counts open (New/Uncalled) leads per assignee.
type WorkloadReader interface {
	OpenLeadCounts(ctx context.Context) (map[uuid.UUID]int, error)
}

// OnlineChecker derives liveness from a staff record.
type OnlineChecker interface {
	IsOnline(s domain.Staff) bool
}

// Draft carries the assignee requested for a lead, if any.
type Draft struct {
	AssignedTo *uuid.UUID
}

// Decision is the accepted assignment.
type Decision struct {
	AssignedTo *uuid.UUID
	Assignee   *domain.Staff
	AutoPicked bool
}

type Policy struct {
	staff    StaffReader
	workload WorkloadReader
	presence OnlineChecker
}

func New(staff StaffReader, workload WorkloadReader, presence OnlineChecker) *Policy {
	return &Policy{staff: staff, workload: workload, presence: presence}
}

// EligibleAssignees returns online members of role, ordered by name.
func (p *Policy) EligibleAssignees(ctx context.Context, role domain.Role) ([]domain.Staff, error) {
	members, err := p.staff.ListByRole(ctx, role)
	if err != nil {
		return nil, apperr.Unavailable("staff could not be loaded", err)
	}
	online := make([]domain.Staff, 0, len(members))
	for _, m := range members {
		if p.presence.IsOnline(m) {
			online = append(online, m)
		}
	}
	return online, nil
}

// ValidateAssignment checks a requested assignment against the actor's role.
//
// An explicit assignee must exist; being offline does not block it. An admin
// creating an unassigned lead needs at least one online sales member, and the
// least-loaded one is picked. Other roles may leave the lead pooled.
func (p *Policy) ValidateAssignment(ctx context.Context, actor domain.Actor, draft Draft) (Decision, error) {
	if draft.AssignedTo != nil {
		member, err := p.staff.GetByID(ctx, *draft.AssignedTo)
		if err != nil {
			if errors.Is(err, staffrepo.ErrNotFound) {
				return Decision{}, apperr.Validation("assignee does not exist")
			}
			return Decision{}, apperr.Unavailable("assignee could not be loaded", err)
		}
		id := member.ID
		return Decision{AssignedTo: &id, Assignee: &member}, nil
	}

	if !actor.IsAdmin() {
		return Decision{}, nil
	}

	pick, err := p.leastLoaded(ctx, uuid.Nil)
	if err != nil {
		return Decision{}, err
	}
	if pick == nil {
		return Decision{}, apperr.Validation("no sales staff online to take the lead").
			WithDetails(map[string]string{"code": CodeNoEligibleAssignee})
	}
	id := pick.ID
	return Decision{AssignedTo: &id, Assignee: pick, AutoPicked: true}, nil
}

// SuggestReassignment proposes the least-loaded online sales member other than
// current. Nil means nobody is available.
func (p *Policy) SuggestReassignment(ctx context.Context, current *uuid.UUID) (*domain.Staff, error) {
	exclude := uuid.Nil
	if current != nil {
		exclude = *current
	}
	return p.leastLoaded(ctx, exclude)
}

func (p *Policy) leastLoaded(ctx context.Context, exclude uuid.UUID) (*domain.Staff, error) {
	online, err := p.EligibleAssignees(ctx, domain.RoleSales)
	if err != nil {
		return nil, err
	}

	candidates := online[:0:0]
	for _, m := range online {
		if m.ID != exclude {
			candidates = append(candidates, m)
		}
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	counts, err := p.workload.OpenLeadCounts(ctx)
	if err != nil {
		return nil, apperr.Unavailable("workload could not be loaded", err)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		ci, cj := counts[candidates[i].ID], counts[candidates[j].ID]
		if ci != cj {
			return ci < cj
		}
		return candidates[i].FullName < candidates[j].FullName
	})
	pick := candidates[0]
	return &pick, nil
}
