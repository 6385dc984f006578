package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// FunnelCounts aggregates leads in a scope.
type FunnelCounts struct {
	Total      int
	Won        int
	Lost       int
	Uncalled   int
	WonValue   float64
	NewOnDay   int
	InProgress int
}

// Funnel aggregates leads received in rng, optionally restricted to one
// assignee. day selects which received_date counts toward NewOnDay.
func (r *Repository) Funnel(ctx context.Context, assignedTo *uuid.UUID, rng DateRange, day time.Time) (FunnelCounts, error) {
	var c FunnelCounts
	err := r.pool.QueryRow(ctx, `
		SELECT
			COUNT(*),
			COUNT(*) FILTER (WHERE status = 'won'),
			COUNT(*) FILTER (WHERE status = 'lost'),
			COUNT(*) FILTER (WHERE status IN ('new', 'uncalled')),
			COALESCE(SUM(value) FILTER (WHERE status = 'won'), 0)::float8,
			COUNT(*) FILTER (WHERE received_date = $4::date)
		FROM leads
		WHERE ($1::uuid IS NULL OR assigned_to = $1)
			AND ($2::date IS NULL OR received_date >= $2)
			AND ($3::date IS NULL OR received_date <= $3)
	`, assignedTo, rng.From, rng.To, day).Scan(&c.Total, &c.Won, &c.Lost, &c.Uncalled, &c.WonValue, &c.NewOnDay)
	if err != nil {
		return FunnelCounts{}, fmt.Errorf("funnel counts: %w", err)
	}
	c.InProgress = c.Total - c.Won - c.Lost
	return c, nil
}

// TeamSize counts non-admin staff.
func (r *Repository) TeamSize(ctx context.Context) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM staff WHERE role IN ('sales', 'after_care')`).Scan(&n)
	return n, err
}

// PerformanceRow is one member's funnel.
type PerformanceRow struct {
	StaffID  uuid.UUID
	Name     string
	Role     string
	Total    int
	Won      int
	Lost     int
	Uncalled int
	WonValue float64
}

// TeamPerformance returns per-member funnels for sales and after-care staff,
// best sellers first.
func (r *Repository) TeamPerformance(ctx context.Context) ([]PerformanceRow, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT s.id, s.full_name, s.role,
			COUNT(l.id),
			COUNT(l.id) FILTER (WHERE l.status = 'won'),
			COUNT(l.id) FILTER (WHERE l.status = 'lost'),
			COUNT(l.id) FILTER (WHERE l.status IN ('new', 'uncalled')),
			COALESCE(SUM(l.value) FILTER (WHERE l.status = 'won'), 0)::float8 AS won_value
		FROM staff s
		LEFT JOIN leads l ON l.assigned_to = s.id
		WHERE s.role IN ('sales', 'after_care')
		GROUP BY s.id, s.full_name, s.role
		ORDER BY won_value DESC, s.full_name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("team performance: %w", err)
	}
	defer rows.Close()

	items := make([]PerformanceRow, 0)
	for rows.Next() {
		var p PerformanceRow
		if err := rows.Scan(&p.StaffID, &p.Name, &p.Role, &p.Total, &p.Won, &p.Lost, &p.Uncalled, &p.WonValue); err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}
