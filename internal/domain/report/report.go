// Package report aggregates order data into the admin dashboard figures.
package report

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Period key layouts. Daily series use DayLayout, monthly series MonthLayout.
const (
	DayLayout   = "2006-01-02"
	MonthLayout = "2006-01"
)

// Series lengths shown on the dashboard.
const (
	DaySpan   = 30
	MonthSpan = 12
)

// Totals are the headline counters at the top of the dashboard.
type Totals struct {
	Orders    int
	Revenue   decimal.Decimal
	Customers int
	Products  int
}

// CountPoint is one period's order count as returned by the repository.
// Periods with no orders are absent; the service fills them with zeroes.
type CountPoint struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// AmountPoint is one period's revenue as returned by the repository.
type AmountPoint struct {
	Period string          `json:"period"`
	Amount decimal.Decimal `json:"amount"`
}

// Repository defines the aggregate queries behind the dashboard.
type Repository interface {
	// Totals returns the all-time headline counters.
	Totals(ctx context.Context) (Totals, error)
	// OrdersPerDay returns order counts grouped by day since from.
	OrdersPerDay(ctx context.Context, from time.Time) ([]CountPoint, error)
	// RevenuePerDay returns summed order totals grouped by day since from.
	RevenuePerDay(ctx context.Context, from time.Time) ([]AmountPoint, error)
	// OrdersPerMonth returns order counts grouped by month since from.
	OrdersPerMonth(ctx context.Context, from time.Time) ([]CountPoint, error)
	// RevenuePerMonth returns summed order totals grouped by month since from.
	RevenuePerMonth(ctx context.Context, from time.Time) ([]AmountPoint, error)
}

// Dashboard is the fully assembled admin overview: headline totals plus four
// fixed-length, gap-free, ascending time series.
type Dashboard struct {
	Totals Totals

	SalesByDay     []CountPoint
	RevenueByDay   []AmountPoint
	SalesByMonth   []CountPoint
	RevenueByMonth []AmountPoint
}

// Service assembles dashboards from repository aggregates.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a report Service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Dashboard builds the admin overview. Every series covers its full span
// ending at the current period, with missing periods filled with zeroes so
// charts render gap-free. Buckets are UTC: period keys, query windows, and
// the repository's grouping all use the same clock.
func (s *Service) Dashboard(ctx context.Context) (*Dashboard, error) {
	now := s.now().UTC()
	dayFrom := now.AddDate(0, 0, -(DaySpan - 1)).Truncate(24 * time.Hour)
	monthFrom := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()).
		AddDate(0, -(MonthSpan - 1), 0)

	totals, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "totals")
	}

	ordersDay, err := s.repo.OrdersPerDay(ctx, dayFrom)
	if err != nil {
		return nil, errors.Wrap(err, "orders per day")
	}
	revenueDay, err := s.repo.RevenuePerDay(ctx, dayFrom)
	if err != nil {
		return nil, errors.Wrap(err, "revenue per day")
	}
	ordersMonth, err := s.repo.OrdersPerMonth(ctx, monthFrom)
	if err != nil {
		return nil, errors.Wrap(err, "orders per month")
	}
	revenueMonth, err := s.repo.RevenuePerMonth(ctx, monthFrom)
	if err != nil {
		return nil, errors.Wrap(err, "revenue per month")
	}

	days := dayPeriods(now)
	months := monthPeriods(now)

	return &Dashboard{
		Totals:         totals,
		SalesByDay:     fillCounts(days, ordersDay),
		RevenueByDay:   fillAmounts(days, revenueDay),
		SalesByMonth:   fillCounts(months, ordersMonth),
		RevenueByMonth: fillAmounts(months, revenueMonth),
	}, nil
}

func dayPeriods(now time.Time) []string {
	periods := make([]string, DaySpan)
	for i := range periods {
		periods[i] = now.AddDate(0, 0, i-(DaySpan-1)).Format(DayLayout)
	}
	return periods
}

func monthPeriods(now time.Time) []string {
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	periods := make([]string, MonthSpan)
	for i := range periods {
		periods[i] = first.AddDate(0, i-(MonthSpan-1), 0).Format(MonthLayout)
	}
	return periods
}

func fillCounts(periods []string, points []CountPoint) []CountPoint {
	byPeriod := make(map[string]int, len(points))
	for _, p := range points {
		byPeriod[p.Period] = p.Count
	}

	out := make([]CountPoint, len(periods))
	for i, period := range periods {
		out[i] = CountPoint{Period: period, Count: byPeriod[period]}
	}
	return out
}

func fillAmounts(periods []string, points []AmountPoint) []AmountPoint {
	byPeriod := make(map[string]decimal.Decimal, len(points))
	for _, p := range points {
		byPeriod[p.Period] = p.Amount
	}

	out := make([]AmountPoint, len(periods))
	for i, period := range periods {
		amount, ok := byPeriod[period]
		if !ok {
			amount = decimal.Zero
		}
		out[i] = AmountPoint{Period: period, Amount: amount}
	}
	return out
}
