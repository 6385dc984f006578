package followup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CalendarEvent is a stored appointment joined with display names.
type CalendarEvent struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	LeadID    uuid.UUID `json:"leadId"`
	LeadName  string    `json:"leadName"`
	StaffID   uuid.UUID `json:"staffId"`
	StaffName string    `json:"staffName"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	CreatedAt time.Time `json:"createdAt"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// InsertBatch writes the appointments in one transaction. Rows that already
// exist (same lead, staff, start and title) are skipped, so retrying a batch
// is safe. Returns the number of rows actually inserted.
func (r *Repository) InsertBatch(ctx context.Context, items []Appointment) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin follow-up batch: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	batch := &pgx.Batch{}
	for _, a := range items {
		batch.Queue(`
			INSERT INTO calendar_events (title, lead_id, staff_id, start_time, end_time)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT ON CONSTRAINT calendar_events_batch_key DO NOTHING
		`, a.Title, a.LeadID, a.StaffID, a.Start, a.End)
	}

	results := tx.SendBatch(ctx, batch)
	inserted := 0
	for range items {
		tag, err := results.Exec()
		if err != nil {
			_ = results.Close()
			return 0, fmt.Errorf("insert follow-up: %w", err)
		}
		inserted += int(tag.RowsAffected())
	}
	if err := results.Close(); err != nil {
		return 0, fmt.Errorf("close follow-up batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit follow-up batch: %w", err)
	}
	return inserted, nil
}

// ListRange returns appointments starting in [from, to), optionally for one member.
func (r *Repository) ListRange(ctx context.Context, staffID *uuid.UUID, from, to time.Time) ([]CalendarEvent, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT e.id, e.title, e.lead_id, COALESCE(l.name, ''), e.staff_id, COALESCE(s.full_name, ''),
			e.start_time, e.end_time, e.created_at
		FROM calendar_events e
		LEFT JOIN leads l ON l.id = e.lead_id
		LEFT JOIN staff s ON s.id = e.staff_id
		WHERE e.start_time >= $1 AND e.start_time < $2
			AND ($3::uuid IS NULL OR e.staff_id = $3)
		ORDER BY e.start_time ASC, e.title ASC
	`, from, to, staffID)
	if err != nil {
		return nil, fmt.Errorf("list calendar: %w", err)
	}
	defer rows.Close()

	items := make([]CalendarEvent, 0)
	for rows.Next() {
		var e CalendarEvent
		if err := rows.Scan(&e.ID, &e.Title, &e.LeadID, &e.LeadName, &e.StaffID, &e.StaffName,
			&e.Start, &e.End, &e.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
