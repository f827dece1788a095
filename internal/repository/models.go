package repository

import "github.com/jackc/pgx/v5/pgtype"

// ChartWeek is one dated chart snapshot from the chart_weeks table.
// week_end_date is unique across rows.
type ChartWeek struct {
	ID          int64
	Year        int32
	WeekEndDate pgtype.Date
}

// ChartEntry is one ranked song within a chart week.
type ChartEntry struct {
	Position  int32
	Artist    string
	SongTitle string
}
