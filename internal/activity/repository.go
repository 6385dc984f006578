package activity

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository is the Postgres-backed Store.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) Insert(ctx context.Context, e Entry) (Entry, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO lead_activities (id, lead_id, description, actor_id, actor_name, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`, e.ID, e.LeadID, e.Description, e.ActorID, e.ActorName, e.CreatedAt).Scan(&e.CreatedAt)
	return e, err
}

func (r *Repository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]Entry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, lead_id, description, actor_id, actor_name, created_at
		FROM lead_activities
		WHERE lead_id = $1
		ORDER BY created_at DESC, id DESC
	`, leadID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Entry, 0)
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.LeadID, &e.Description, &e.ActorID, &e.ActorName, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}

var _ Store = (*Repository)(nil)
