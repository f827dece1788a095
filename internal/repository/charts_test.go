package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB records the last statement and arguments and replays canned rows.
type fakeDB struct {
	lastSQL  string
	lastArgs []any

	rows     [][]any
	queryErr error
	rowErr   error
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	f.lastSQL = sql
	f.lastArgs = args
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	return &fakeRows{rows: f.rows}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	f.lastSQL = sql
	f.lastArgs = args
	if f.rowErr != nil {
		return &fakeRow{err: f.rowErr}
	}
	if len(f.rows) == 0 {
		return &fakeRow{err: pgx.ErrNoRows}
	}
	return &fakeRow{values: f.rows[0]}
}

type fakeRow struct {
	values []any
	err    error
}

func (r *fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	return scanInto(r.values, dest)
}

type fakeRows struct {
	rows [][]any
	idx  int
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return nil }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Next() bool {
	if r.idx >= len(r.rows) {
		return false
	}
	r.idx++
	return true
}
func (r *fakeRows) Scan(dest ...any) error { return scanInto(r.rows[r.idx-1], dest) }
func (r *fakeRows) Values() ([]any, error) { return r.rows[r.idx-1], nil }
func (r *fakeRows) RawValues() [][]byte    { return nil }
func (r *fakeRows) Conn() *pgx.Conn        { return nil }

func scanInto(values []any, dest []any) error {
	if len(values) != len(dest) {
		return errors.New("column count mismatch")
	}
	for i, v := range values {
		switch d := dest[i].(type) {
		case *int64:
			*d = v.(int64)
		case *int32:
			*d = v.(int32)
		case *string:
			*d = v.(string)
		case *pgtype.Date:
			*d = v.(pgtype.Date)
		default:
			return errors.New("unsupported destination type")
		}
	}
	return nil
}

func dateOf(t *testing.T, s string) pgtype.Date {
	t.Helper()
	parsed, err := time.Parse("2006-01-02", s)
	require.NoError(t, err)
	return pgtype.Date{Time: parsed, Valid: true}
}

func TestListWeeksByYearEmptyIsNotAnError(t *testing.T) {
	db := &fakeDB{}
	q := New(db)

	weeks, err := q.ListWeeksByYear(context.Background(), ListWeeksByYearParams{Year: 1957, Limit: 60, Offset: 0})
	require.NoError(t, err)
	assert.NotNil(t, weeks)
	assert.Empty(t, weeks)
	assert.Equal(t, []any{int32(1957), int32(60), int32(0)}, db.lastArgs)
}

func TestListWeeksByYearScansRows(t *testing.T) {
	db := &fakeDB{rows: [][]any{
		{int64(12), int32(1985), dateOf(t, "1985-03-16")},
		{int64(11), int32(1985), dateOf(t, "1985-03-09")},
	}}
	q := New(db)

	weeks, err := q.ListWeeksByYear(context.Background(), ListWeeksByYearParams{Year: 1985, Limit: 60})
	require.NoError(t, err)
	require.Len(t, weeks, 2)
	assert.Equal(t, int64(12), weeks[0].ID)
	assert.Equal(t, "1985-03-16", weeks[0].WeekEndDate.Time.Format("2006-01-02"))
}

func TestGetWeekByEndDateMapsNoRowsToNotFound(t *testing.T) {
	q := New(&fakeDB{})

	_, err := q.GetWeekByEndDate(context.Background(), dateOf(t, "1985-03-17"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetNearestWeekWrapsDriverError(t *testing.T) {
	q := New(&fakeDB{rowErr: errors.New("connection refused")})

	_, err := q.GetNearestWeek(context.Background(), dateOf(t, "1985-03-15"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestGetNearestWeekOrdersByDistanceThenDate(t *testing.T) {
	db := &fakeDB{rows: [][]any{{int64(12), int32(1985), dateOf(t, "1985-03-16")}}}
	q := New(db)

	week, err := q.GetNearestWeek(context.Background(), dateOf(t, "1985-03-15"))
	require.NoError(t, err)
	assert.Equal(t, int64(12), week.ID)
	// tie-break clause must be part of the statement
	assert.Contains(t, db.lastSQL, "ABS(week_end_date - $1::date) ASC, week_end_date ASC")
}

func TestGetNthWeekInMonthUsesZeroBasedOffset(t *testing.T) {
	db := &fakeDB{rows: [][]any{{int64(10), int32(1985), dateOf(t, "1985-03-02")}}}
	q := New(db)

	week, err := q.GetNthWeekInMonth(context.Background(), GetNthWeekInMonthParams{Year: 1985, Month: 3, Offset: 0})
	require.NoError(t, err)
	assert.Equal(t, "1985-03-02", week.WeekEndDate.Time.Format("2006-01-02"))
	assert.Equal(t, []any{int32(1985), int32(3), int32(0)}, db.lastArgs)
}

func TestGetNthWeekInMonthPastEndIsNotFound(t *testing.T) {
	q := New(&fakeDB{})

	_, err := q.GetNthWeekInMonth(context.Background(), GetNthWeekInMonthParams{Year: 1985, Month: 3, Offset: 5})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListEntriesForWeekScansInRankOrder(t *testing.T) {
	db := &fakeDB{rows: [][]any{
		{int32(1), "Wham!", "Careless Whisper"},
		{int32(2), "REO Speedwagon", "Can't Fight This Feeling"},
	}}
	q := New(db)

	entries, err := q.ListEntriesForWeek(context.Background(), ListEntriesForWeekParams{ChartWeekID: 10, Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, int32(1), entries[0].Position)
	assert.Equal(t, "Careless Whisper", entries[0].SongTitle)
	assert.Equal(t, []any{int64(10), int32(2)}, db.lastArgs)
}
