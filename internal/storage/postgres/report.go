package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/bazaarlane/storefront/internal/domain/report"
)

var _ report.Repository = (*ReportRepository)(nil)

// ReportRepository implements report.Repository with aggregate SQL over the
// orders tables. Period keys are rendered in UTC regardless of the session
// timezone, matching the service's bucketing.
type ReportRepository struct {
	pool *pgxpool.Pool
}

// NewReportRepository returns a ReportRepository that uses the given pool.
func NewReportRepository(pool *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{pool: pool}
}

// Totals returns the all-time headline counters.
func (r *ReportRepository) Totals(ctx context.Context) (report.Totals, error) {
	const q = `SELECT
		(SELECT count(*) FROM orders),
		(SELECT COALESCE(sum(total_amount), 0) FROM orders),
		(SELECT count(*) FROM users WHERE role = 'customer'),
		(SELECT count(*) FROM products WHERE active)`

	var t report.Totals
	var revenue decimal.Decimal
	if err := r.pool.QueryRow(ctx, q).Scan(&t.Orders, &revenue, &t.Customers, &t.Products); err != nil {
		return report.Totals{}, fmt.Errorf("loading dashboard totals: %w", err)
	}
	t.Revenue = revenue
	return t, nil
}

// OrdersPerDay returns order counts grouped by day since from.
func (r *ReportRepository) OrdersPerDay(ctx context.Context, from time.Time) ([]report.CountPoint, error) {
	const q = `SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS period, count(*)
		FROM orders WHERE created_at >= $1
		GROUP BY period ORDER BY period`
	return r.queryCounts(ctx, q, from)
}

// RevenuePerDay returns summed order totals grouped by day since from.
func (r *ReportRepository) RevenuePerDay(ctx context.Context, from time.Time) ([]report.AmountPoint, error) {
	const q = `SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS period, sum(total_amount)
		FROM orders WHERE created_at >= $1
		GROUP BY period ORDER BY period`
	return r.queryAmounts(ctx, q, from)
}

// OrdersPerMonth returns order counts grouped by month since from.
func (r *ReportRepository) OrdersPerMonth(ctx context.Context, from time.Time) ([]report.CountPoint, error) {
	const q = `SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM') AS period, count(*)
		FROM orders WHERE created_at >= $1
		GROUP BY period ORDER BY period`
	return r.queryCounts(ctx, q, from)
}

// RevenuePerMonth returns summed order totals grouped by month since from.
func (r *ReportRepository) RevenuePerMonth(ctx context.Context, from time.Time) ([]report.AmountPoint, error) {
	const q = `SELECT to_char(created_at AT TIME ZONE 'UTC', 'YYYY-MM') AS period, sum(total_amount)
		FROM orders WHERE created_at >= $1
		GROUP BY period ORDER BY period`
	return r.queryAmounts(ctx, q, from)
}

func (r *ReportRepository) queryCounts(ctx context.Context, q string, from time.Time) ([]report.CountPoint, error) {
	rows, err := r.pool.Query(ctx, q, from)
	if err != nil {
		return nil, fmt.Errorf("loading order counts: %w", err)
	}
	defer rows.Close()

	var out []report.CountPoint
	for rows.Next() {
		var p report.CountPoint
		if err := rows.Scan(&p.Period, &p.Count); err != nil {
			return nil, fmt.Errorf("scanning order count: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading order counts: %w", err)
	}
	return out, nil
}

func (r *ReportRepository) queryAmounts(ctx context.Context, q string, from time.Time) ([]report.AmountPoint, error) {
	rows, err := r.pool.Query(ctx, q, from)
	if err != nil {
		return nil, fmt.Errorf("loading revenue: %w", err)
	}
	defer rows.Close()

	var out []report.AmountPoint
	for rows.Next() {
		var p report.AmountPoint
		if err := rows.Scan(&p.Period, &p.Amount); err != nil {
			return nil, fmt.Errorf("scanning revenue: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("loading revenue: %w", err)
	}
	return out, nil
}
