package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"leadflow_backend/internal/staff/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound   = errors.New("staff not found")
	ErrEmailTaken = errors.New("email already in use")
)

const uniqueViolation = "23505"

// Reader provides read-only access to staff records.
type Reader interface {
	GetByID(ctx context.Context, id uuid.UUID) (domain.Staff, error)
	List(ctx context.Context) ([]domain.Staff, error)
	ListByRole(ctx context.Context, role domain.Role) ([]domain.Staff, error)
}

// PresenceWriter persists presence updates.
type PresenceWriter interface {
	Touch(ctx context.Context, id uuid.UUID, at time.Time) error
	SetStatus(ctx context.Context, id uuid.UUID, state domain.State, at time.Time) error
}

// CreateParams is a new profile row. Credentials live with the identity
// provider; only the profile is stored here.
type CreateParams struct {
	FullName  string
	Email     string
	Role      domain.Role
	AvatarURL string
}

// UpdateParams holds the admin-editable profile fields. Nil fields are left untouched.
type UpdateParams struct {
	FullName  *string
	Role      *domain.Role
	AvatarURL *string
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const staffColumns = `id, full_name, email, role, COALESCE(avatar_url, ''), status, last_active_at, updated_at`

func scanStaff(row pgx.Row) (domain.Staff, error) {
	var s domain.Staff
	var role, status string
	if err := row.Scan(&s.ID, &s.FullName, &s.Email, &role, &s.AvatarURL, &status, &s.LastActiveAt, &s.UpdatedAt); err != nil {
		return domain.Staff{}, err
	}
	s.Role = domain.Role(role)
	s.Status = domain.State(status)
	return s, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Staff, error) {
	s, err := scanStaff(r.pool.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Staff{}, ErrNotFound
	}
	return s, err
}

func (r *Repository) List(ctx context.Context) ([]domain.Staff, error) {
	return r.query(ctx, `SELECT `+staffColumns+` FROM staff ORDER BY full_name ASC`)
}

func (r *Repository) ListByRole(ctx context.Context, role domain.Role) ([]domain.Staff, error) {
	return r.query(ctx, `SELECT `+staffColumns+` FROM staff WHERE role = $1 ORDER BY full_name ASC`, string(role))
}

func (r *Repository) query(ctx context.Context, sql string, args ...any) ([]domain.Staff, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Staff, 0)
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}

// Touch records a heartbeat: the member is online as of at.
func (r *Repository) Touch(ctx context.Context, id uuid.UUID, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE staff SET status = 'online', last_active_at = $2, updated_at = $2
		WHERE id = $1
	`, id, at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// SetStatus persists an explicit toggle. Going online also refreshes
// last_active_at so the member is not immediately considered stale.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, state domain.State, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE staff
		SET status = $2,
			last_active_at = CASE WHEN $2 = 'online' THEN $3 ELSE last_active_at END,
			updated_at = $3
		WHERE id = $1
	`, id, string(state), at)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Create inserts an offline profile.
func (r *Repository) Create(ctx context.Context, params CreateParams) (domain.Staff, error) {
	var avatar *string
	if params.AvatarURL != "" {
		avatar = &params.AvatarURL
	}
	s, err := scanStaff(r.pool.QueryRow(ctx, `
		INSERT INTO staff (full_name, email, role, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING `+staffColumns, params.FullName, params.Email, string(params.Role), avatar))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return domain.Staff{}, ErrEmailTaken
		}
		return domain.Staff{}, fmt.Errorf("create staff: %w", err)
	}
	return s, nil
}

// Delete removes a profile. Leads assigned to the member fall back to the
// pool and their calendar rows go with them.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM staff WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete staff: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (domain.Staff, error) {
	var role *string
	if params.Role != nil {
		v := string(*params.Role)
		role = &v
	}
	s, err := scanStaff(r.pool.QueryRow(ctx, `
		UPDATE staff
		SET full_name = COALESCE($2, full_name),
			role = COALESCE($3, role),
			avatar_url = COALESCE($4, avatar_url),
			updated_at = now()
		WHERE id = $1
		RETURNING `+staffColumns, id, params.FullName, role, params.AvatarURL))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Staff{}, ErrNotFound
	}
	return s, err
}

// Compile-time checks
var (
	_ Reader         = (*Repository)(nil)
	_ PresenceWriter = (*Repository)(nil)
)
