package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ErrNotFound is returned by single-week lookups when no row matches.
var ErrNotFound = errors.New("no matching chart week")

const listWeeksByYear = `
SELECT id, year, week_end_date
FROM chart_weeks
WHERE year = $1
ORDER BY week_end_date DESC
LIMIT $2 OFFSET $3
`

type ListWeeksByYearParams struct {
	Year   int32
	Limit  int32
	Offset int32
}

// ListWeeksByYear returns the chart weeks of one year, newest first.
// A year with no rows yields an empty slice, not an error.
func (q *Queries) ListWeeksByYear(ctx context.Context, arg ListWeeksByYearParams) ([]ChartWeek, error) {
	rows, err := q.db.Query(ctx, listWeeksByYear, arg.Year, arg.Limit, arg.Offset)
	if err != nil {
		return nil, fmt.Errorf("list chart weeks: %w", err)
	}
	defer rows.Close()

	weeks := []ChartWeek{}
	for rows.Next() {
		var w ChartWeek
		if err := rows.Scan(&w.ID, &w.Year, &w.WeekEndDate); err != nil {
			return nil, fmt.Errorf("scan chart week: %w", err)
		}
		weeks = append(weeks, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list chart weeks: %w", err)
	}
	return weeks, nil
}

const getWeekByEndDate = `
SELECT id, year, week_end_date
FROM chart_weeks
WHERE week_end_date = $1
`

// GetWeekByEndDate returns the chart week ending on exactly the given date.
func (q *Queries) GetWeekByEndDate(ctx context.Context, weekEndDate pgtype.Date) (ChartWeek, error) {
	var w ChartWeek
	err := q.db.QueryRow(ctx, getWeekByEndDate, weekEndDate).Scan(&w.ID, &w.Year, &w.WeekEndDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChartWeek{}, ErrNotFound
	}
	if err != nil {
		return ChartWeek{}, fmt.Errorf("get chart week by date: %w", err)
	}
	return w, nil
}

// The secondary week_end_date sort makes equidistant ties deterministic:
// the earlier of two equally close weeks wins.
const getNearestWeek = `
SELECT id, year, week_end_date
FROM chart_weeks
ORDER BY ABS(week_end_date - $1::date) ASC, week_end_date ASC
LIMIT 1
`

// GetNearestWeek returns the chart week whose week_end_date is closest to
// targetDate in absolute days.
func (q *Queries) GetNearestWeek(ctx context.Context, targetDate pgtype.Date) (ChartWeek, error) {
	var w ChartWeek
	err := q.db.QueryRow(ctx, getNearestWeek, targetDate).Scan(&w.ID, &w.Year, &w.WeekEndDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChartWeek{}, ErrNotFound
	}
	if err != nil {
		return ChartWeek{}, fmt.Errorf("get nearest chart week: %w", err)
	}
	return w, nil
}

const getNthWeekInMonth = `
SELECT id, year, week_end_date
FROM chart_weeks
WHERE year = $1
  AND EXTRACT(MONTH FROM week_end_date) = $2
ORDER BY week_end_date ASC
OFFSET $3
LIMIT 1
`

type GetNthWeekInMonthParams struct {
	Year  int32
	Month int32
	// Offset is zero-based: the caller passes week_in_month - 1.
	Offset int32
}

// GetNthWeekInMonth returns the (Offset+1)-th chart week of the given
// calendar month, counting from the earliest week_end_date. An offset past
// the last week of the month yields ErrNotFound.
func (q *Queries) GetNthWeekInMonth(ctx context.Context, arg GetNthWeekInMonthParams) (ChartWeek, error) {
	var w ChartWeek
	err := q.db.QueryRow(ctx, getNthWeekInMonth, arg.Year, arg.Month, arg.Offset).Scan(&w.ID, &w.Year, &w.WeekEndDate)
	if errors.Is(err, pgx.ErrNoRows) {
		return ChartWeek{}, ErrNotFound
	}
	if err != nil {
		return ChartWeek{}, fmt.Errorf("get nth chart week in month: %w", err)
	}
	return w, nil
}

const listEntriesForWeek = `
SELECT position, artist, song_title
FROM chart_entries
WHERE chart_week_id = $1
ORDER BY position ASC
LIMIT $2
`

type ListEntriesForWeekParams struct {
	ChartWeekID int64
	Limit       int32
}

// ListEntriesForWeek returns the top entries of one chart week in rank order.
func (q *Queries) ListEntriesForWeek(ctx context.Context, arg ListEntriesForWeekParams) ([]ChartEntry, error) {
	rows, err := q.db.Query(ctx, listEntriesForWeek, arg.ChartWeekID, arg.Limit)
	if err != nil {
		return nil, fmt.Errorf("list chart entries: %w", err)
	}
	defer rows.Close()

	entries := []ChartEntry{}
	for rows.Next() {
		var e ChartEntry
		if err := rows.Scan(&e.Position, &e.Artist, &e.SongTitle); err != nil {
			return nil, fmt.Errorf("scan chart entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list chart entries: %w", err)
	}
	return entries, nil
}
