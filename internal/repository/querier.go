package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

// Querier is the data-access surface the HTTP handlers depend on.
// Keeping it an interface lets handler tests swap in a mock.
type Querier interface {
	ListWeeksByYear(ctx context.Context, arg ListWeeksByYearParams) ([]ChartWeek, error)
	GetWeekByEndDate(ctx context.Context, weekEndDate pgtype.Date) (ChartWeek, error)
	GetNearestWeek(ctx context.Context, targetDate pgtype.Date) (ChartWeek, error)
	GetNthWeekInMonth(ctx context.Context, arg GetNthWeekInMonthParams) (ChartWeek, error)
	ListEntriesForWeek(ctx context.Context, arg ListEntriesForWeekParams) ([]ChartEntry, error)
}

var _ Querier = (*Queries)(nil)
