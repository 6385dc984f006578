package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

var ErrDuplicateProgram = errors.New("program already exists")

const uniqueViolation = "23505"

type Program struct {
	ID        uuid.UUID
	Name      string
	CreatedAt time.Time
}

func (r *Repository) ListPrograms(ctx context.Context) ([]Program, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name, created_at FROM programs ORDER BY name ASC`)
	if err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	defer rows.Close()

	items := make([]Program, 0)
	for rows.Next() {
		var p Program
		if err := rows.Scan(&p.ID, &p.Name, &p.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *Repository) CreateProgram(ctx context.Context, name string) (Program, error) {
	var p Program
	err := r.pool.QueryRow(ctx, `
		INSERT INTO programs (name) VALUES ($1)
		RETURNING id, name, created_at
	`, name).Scan(&p.ID, &p.Name, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Program{}, ErrDuplicateProgram
		}
		return Program{}, fmt.Errorf("create program: %w", err)
	}
	return p, nil
}

func (r *Repository) DeleteProgram(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete program: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
