package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadflow_backend/internal/leads/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("lead not found")

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Lead is a stored lead joined with its assignee's display name.
type Lead struct {
	ID             uuid.UUID
	Name           string
	Phone          string
	Source         string
	Program        string
	Status         domain.Status
	AssignedTo     *uuid.UUID
	AssigneeName   string
	Value          float64
	Notes          string
	ReceivedDate   time.Time
	Birthday       *time.Time
	Address        string
	CreatedAt      time.Time
	LastUpdateDate time.Time
}

// Snapshot returns the fields the activity diff compares.
func (l Lead) Snapshot() domain.Snapshot {
	return domain.Snapshot{Status: l.Status, AssignedTo: l.AssignedTo, AssigneeName: l.AssigneeName}
}

// Fields is the full writable state of a lead. Writes are unconditional:
// the last write wins.
type Fields struct {
	Name         string
	Phone        string
	Source       string
	Program      string
	Status       domain.Status
	AssignedTo   *uuid.UUID
	Value        float64
	Notes        string
	ReceivedDate time.Time
	Birthday     *time.Time
	Address      string
}

// FieldsOf copies a stored lead into writable fields.
func FieldsOf(l Lead) Fields {
	return Fields{
		Name:         l.Name,
		Phone:        l.Phone,
		Source:       l.Source,
		Program:      l.Program,
		Status:       l.Status,
		AssignedTo:   l.AssignedTo,
		Value:        l.Value,
		Notes:        l.Notes,
		ReceivedDate: l.ReceivedDate,
		Birthday:     l.Birthday,
		Address:      l.Address,
	}
}

// ListParams filters the lead list. Scope fields are combined with OR:
// a member sees leads assigned to them plus, when IncludePooled, unassigned ones.
type ListParams struct {
	AssignedTo    *uuid.UUID
	IncludePooled bool
	Status        *domain.Status
	Search        string
	Range         DateRange
	Limit         int
	Offset        int
}

// DateRange bounds received_date, both ends inclusive. Nil ends are open.
type DateRange struct {
	From *time.Time
	To   *time.Time
}

const leadSelect = `
	SELECT l.id, l.name, l.phone, l.source, l.program, l.status, l.assigned_to,
		COALESCE(s.full_name, ''), l.value::float8, l.notes, l.received_date, l.birthday,
		l.address, l.created_at, l.last_update_date
	FROM leads l
	LEFT JOIN staff s ON s.id = l.assigned_to`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	var status string
	err := row.Scan(&l.ID, &l.Name, &l.Phone, &l.Source, &l.Program, &status, &l.AssignedTo,
		&l.AssigneeName, &l.Value, &l.Notes, &l.ReceivedDate, &l.Birthday,
		&l.Address, &l.CreatedAt, &l.LastUpdateDate)
	if err != nil {
		return Lead{}, err
	}
	l.Status = domain.Status(status)
	return l, nil
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	defer rows.Close()
	items := make([]Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

func (r *Repository) Create(ctx context.Context, f Fields) (Lead, error) {
	var id uuid.UUID
	err := r.pool.QueryRow(ctx, `
		INSERT INTO leads (name, phone, source, program, status, assigned_to, value, notes,
			received_date, birthday, address)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id
	`, f.Name, f.Phone, f.Source, f.Program, string(f.Status), f.AssignedTo, f.Value, f.Notes,
		f.ReceivedDate, f.Birthday, f.Address).Scan(&id)
	if err != nil {
		return Lead{}, fmt.Errorf("insert lead: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	l, err := scanLead(r.pool.QueryRow(ctx, leadSelect+` WHERE l.id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	return l, err
}

// Update overwrites every writable field and refreshes last_update_date.
// The row is returned from the same statement, so it reflects this write.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, f Fields) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		WITH u AS (
			UPDATE leads
			SET name = $2, phone = $3, source = $4, program = $5, status = $6, assigned_to = $7,
				value = $8, notes = $9, received_date = $10, birthday = $11, address = $12,
				last_update_date = now()
			WHERE id = $1
			RETURNING *
		)
		SELECT u.id, u.name, u.phone, u.source, u.program, u.status, u.assigned_to,
			COALESCE(s.full_name, ''), u.value::float8, u.notes, u.received_date, u.birthday,
			u.address, u.created_at, u.last_update_date
		FROM u
		LEFT JOIN staff s ON s.id = u.assigned_to
	`, id, f.Name, f.Phone, f.Source, f.Program, string(f.Status), f.AssignedTo,
		f.Value, f.Notes, f.ReceivedDate, f.Birthday, f.Address)
	l, err := scanLead(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Lead{}, ErrNotFound
	}
	if err != nil {
		return Lead{}, fmt.Errorf("update lead: %w", err)
	}
	return l, nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) List(ctx context.Context, p ListParams) ([]Lead, int, error) {
	where := make([]string, 0, 4)
	args := make([]any, 0, 6)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if p.AssignedTo != nil {
		scope := "l.assigned_to = " + arg(*p.AssignedTo)
		if p.IncludePooled {
			scope = "(" + scope + " OR l.assigned_to IS NULL)"
		}
		where = append(where, scope)
	}
	if p.Status != nil {
		where = append(where, "l.status = "+arg(string(*p.Status)))
	}
	if s := strings.TrimSpace(p.Search); s != "" {
		placeholder := arg("%" + s + "%")
		where = append(where, "(l.name ILIKE "+placeholder+" OR l.phone ILIKE "+placeholder+")")
	}
	if p.Range.From != nil {
		where = append(where, "l.received_date >= "+arg(*p.Range.From))
	}
	if p.Range.To != nil {
		where = append(where, "l.received_date <= "+arg(*p.Range.To))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM leads l`+clause, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count leads: %w", err)
	}

	limit := p.Limit
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	query := leadSelect + clause + ` ORDER BY l.created_at DESC LIMIT ` + arg(limit) + ` OFFSET ` + arg(p.Offset)
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list leads: %w", err)
	}
	items, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListIdle returns early-status leads created strictly before cutoff, oldest first.
func (r *Repository) ListIdle(ctx context.Context, cutoff time.Time) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, leadSelect+`
		WHERE l.status IN ('new', 'uncalled') AND l.created_at < $1
		ORDER BY l.created_at ASC
	`, cutoff)
	if err != nil {
		return nil, fmt.Errorf("list idle leads: %w", err)
	}
	return collectLeads(rows)
}

// OpenLeadCounts counts early-status leads per assignee.
func (r *Repository) OpenLeadCounts(ctx context.Context) (map[uuid.UUID]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT assigned_to, COUNT(*)
		FROM leads
		WHERE assigned_to IS NOT NULL AND status IN ('new', 'uncalled')
		GROUP BY assigned_to
	`)
	if err != nil {
		return nil, fmt.Errorf("open lead counts: %w", err)
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var id uuid.UUID
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

// UnreadCount counts early-status leads assigned to staffID.
func (r *Repository) UnreadCount(ctx context.Context, staffID uuid.UUID) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM leads
		WHERE assigned_to = $1 AND status IN ('new', 'uncalled')
	`, staffID).Scan(&n)
	return n, err
}

// ListBirthdaysInMonth returns leads born in month (1-12), ordered by day.
// A non-nil assignedTo restricts to that member's leads.
func (r *Repository) ListBirthdaysInMonth(ctx context.Context, month int, assignedTo *uuid.UUID) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, leadSelect+`
		WHERE l.birthday IS NOT NULL
			AND EXTRACT(MONTH FROM l.birthday) = $1
			AND ($2::uuid IS NULL OR l.assigned_to = $2)
		ORDER BY EXTRACT(DAY FROM l.birthday) ASC, l.name ASC
	`, month, assignedTo)
	if err != nil {
		return nil, fmt.Errorf("list birthdays: %w", err)
	}
	return collectLeads(rows)
}
