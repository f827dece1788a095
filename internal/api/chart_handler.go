package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/dballard/chartbox/internal/repository"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/labstack/echo/v4"
)

const (
	minChartYear = 1955
	maxChartYear = 2019

	defaultWeeksLimit = 60
	maxWeeksLimit     = 200

	defaultTop = 5
	maxTop     = 100

	dateLayout = "2006-01-02"
)

// ChartHandler serves the read-only chart query endpoints.
type ChartHandler struct {
	queries repository.Querier
	logger  *slog.Logger
}

// NewChartHandler creates a new instance of the ChartHandler.
func NewChartHandler(q repository.Querier, logger *slog.Logger) *ChartHandler {
	return &ChartHandler{
		queries: q,
		logger:  logger.With("component", "chart_handler"),
	}
}

func (h *ChartHandler) RegisterRoutes(e *echo.Echo) {
	charts := e.Group("/charts")
	charts.GET("/weeks", h.HandleListWeeks)
	charts.GET("/week", h.HandleGetWeek)
	charts.GET("/resolve", h.HandleResolveWeek)
}

// --- Response Structs ---

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// WeekResponse is the wire form of a chart week.
type WeekResponse struct {
	ID          int64  `json:"id"`
	Year        int32  `json:"year"`
	WeekEndDate string `json:"week_end_date"`
}

// EntryResponse is the wire form of a ranked chart entry.
type EntryResponse struct {
	Position  int32  `json:"position"`
	Artist    string `json:"artist"`
	SongTitle string `json:"song_title"`
}

// WeekWithEntriesResponse is the body of /charts/week.
type WeekWithEntriesResponse struct {
	Week    WeekResponse    `json:"week"`
	Entries []EntryResponse `json:"entries"`
}

// ResolveResponse is the body of /charts/resolve.
type ResolveResponse struct {
	ResolvedFrom   any             `json:"resolved_from"`
	ResolutionNote string          `json:"resolution_note"`
	Week           WeekResponse    `json:"week"`
	Entries        []EntryResponse `json:"entries"`
}

type resolvedFromDate struct {
	TargetDate string `json:"target_date"`
}

type resolvedFromOrdinal struct {
	Year        int `json:"year"`
	Month       int `json:"month"`
	WeekInMonth int `json:"week_in_month"`
}

// --- Handlers ---

// HandleListWeeks lists the chart weeks of one year, newest first.
func (h *ChartHandler) HandleListWeeks(c echo.Context) error {
	ctx := c.Request().Context()

	year, err := requiredIntParam(c, "year", minChartYear, maxChartYear)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected list weeks request", "error", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
	}
	limit, err := optionalIntParam(c, "limit", defaultWeeksLimit, 1, maxWeeksLimit)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected list weeks request", "error", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
	}
	offset, err := optionalIntParam(c, "offset", 0, 0, -1)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected list weeks request", "error", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
	}

	weeks, err := h.queries.ListWeeksByYear(ctx, repository.ListWeeksByYearParams{
		Year:   int32(year),
		Limit:  int32(limit),
		Offset: int32(offset),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list chart weeks", "error", err, "year", year)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "DB error: " + err.Error()})
	}

	resp := make([]WeekResponse, 0, len(weeks))
	for _, w := range weeks {
		resp = append(resp, toWeekResponse(w))
	}
	h.logger.InfoContext(ctx, "listed chart weeks", "year", year, "count", len(resp))
	return c.JSON(http.StatusOK, resp)
}

// HandleGetWeek returns one chart week by its exact week_end_date, with its
// top entries.
func (h *ChartHandler) HandleGetWeek(c echo.Context) error {
	ctx := c.Request().Context()

	raw := c.QueryParam("week_end_date")
	if raw == "" {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: "week_end_date is required"})
	}
	endDate, err := parseDateParam("week_end_date", raw)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected get week request", "error", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
	}
	top, err := optionalIntParam(c, "top", defaultTop, 1, maxTop)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected get week request", "error", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
	}

	week, err := h.queries.GetWeekByEndDate(ctx, endDate)
	if errors.Is(err, repository.ErrNotFound) {
		h.logger.WarnContext(ctx, "no chart week for date", "week_end_date", raw)
		return c.JSON(http.StatusNotFound, ErrorResponse{Detail: "No chart week found for that input"})
	}
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get chart week", "error", err, "week_end_date", raw)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "DB error: " + err.Error()})
	}

	entries, err := h.topEntries(ctx, week.ID, top)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list chart entries", "error", err, "week_id", week.ID)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "DB error: " + err.Error()})
	}

	return c.JSON(http.StatusOK, WeekWithEntriesResponse{
		Week:    toWeekResponse(week),
		Entries: entries,
	})
}

// HandleResolveWeek resolves a chart week either by nearest date
// (target_date) or by ordinal position within a month
// (year+month+week_in_month), then returns it with its top entries.
func (h *ChartHandler) HandleResolveWeek(c echo.Context) error {
	ctx := c.Request().Context()

	targetDateRaw := c.QueryParam("target_date")
	yearRaw := c.QueryParam("year")
	monthRaw := c.QueryParam("month")
	weekInMonthRaw := c.QueryParam("week_in_month")

	// Mode selection is judged on parameter presence alone, before any
	// value is validated.
	hasModeB := yearRaw != "" || monthRaw != "" || weekInMonthRaw != ""
	hasFullModeB := yearRaw != "" && monthRaw != "" && weekInMonthRaw != ""

	if targetDateRaw == "" && !hasFullModeB {
		h.logger.WarnContext(ctx, "rejected resolve request with no selector mode")
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Detail: "Provide either target_date=YYYY-MM-DD OR year+month+week_in_month",
		})
	}
	if targetDateRaw != "" && hasModeB {
		h.logger.WarnContext(ctx, "rejected resolve request mixing selector modes")
		return c.JSON(http.StatusBadRequest, ErrorResponse{
			Detail: "Use only one mode: target_date OR year+month+week_in_month",
		})
	}

	top, err := optionalIntParam(c, "top", defaultTop, 1, maxTop)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected resolve request", "error", err)
		return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
	}

	var (
		week         repository.ChartWeek
		resolvedFrom any
		note         string
	)

	if targetDateRaw != "" {
		targetDate, err := parseDateParam("target_date", targetDateRaw)
		if err != nil {
			h.logger.WarnContext(ctx, "rejected resolve request", "error", err)
			return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		}

		week, err = h.queries.GetNearestWeek(ctx, targetDate)
		if errors.Is(err, repository.ErrNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Detail: "No chart week found for that input"})
		}
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to resolve nearest chart week", "error", err, "target_date", targetDateRaw)
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "DB error: " + err.Error()})
		}

		resolvedFrom = resolvedFromDate{TargetDate: targetDateRaw}
		note = fmt.Sprintf("Closest chart week to %s (week ending %s)", targetDateRaw, formatDate(week.WeekEndDate))
	} else {
		year, err := requiredIntParam(c, "year", minChartYear, maxChartYear)
		if err != nil {
			h.logger.WarnContext(ctx, "rejected resolve request", "error", err)
			return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		}
		month, err := requiredIntParam(c, "month", 1, 12)
		if err != nil {
			h.logger.WarnContext(ctx, "rejected resolve request", "error", err)
			return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		}
		weekInMonth, err := requiredIntParam(c, "week_in_month", 1, 6)
		if err != nil {
			h.logger.WarnContext(ctx, "rejected resolve request", "error", err)
			return c.JSON(http.StatusBadRequest, ErrorResponse{Detail: err.Error()})
		}

		week, err = h.queries.GetNthWeekInMonth(ctx, repository.GetNthWeekInMonthParams{
			Year:   int32(year),
			Month:  int32(month),
			Offset: int32(weekInMonth - 1),
		})
		if errors.Is(err, repository.ErrNotFound) {
			h.logger.WarnContext(ctx, "no chart week for ordinal selector", "year", year, "month", month, "week_in_month", weekInMonth)
			return c.JSON(http.StatusNotFound, ErrorResponse{Detail: "No chart week found for that input"})
		}
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to resolve nth chart week", "error", err, "year", year, "month", month)
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "DB error: " + err.Error()})
		}

		resolvedFrom = resolvedFromOrdinal{Year: year, Month: month, WeekInMonth: weekInMonth}
		note = fmt.Sprintf("%s chart week of %d/%d (week ending %s)", ordinal(weekInMonth), month, year, formatDate(week.WeekEndDate))
	}

	entries, err := h.topEntries(ctx, week.ID, top)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list chart entries", "error", err, "week_id", week.ID)
		return c.JSON(http.StatusInternalServerError, ErrorResponse{Detail: "DB error: " + err.Error()})
	}

	h.logger.InfoContext(ctx, "resolved chart week", "week_id", week.ID, "week_end_date", formatDate(week.WeekEndDate))
	return c.JSON(http.StatusOK, ResolveResponse{
		ResolvedFrom:   resolvedFrom,
		ResolutionNote: note,
		Week:           toWeekResponse(week),
		Entries:        entries,
	})
}

// --- Helpers ---

func (h *ChartHandler) topEntries(ctx context.Context, weekID int64, top int) ([]EntryResponse, error) {
	entries, err := h.queries.ListEntriesForWeek(ctx, repository.ListEntriesForWeekParams{
		ChartWeekID: weekID,
		Limit:       int32(top),
	})
	if err != nil {
		return nil, err
	}
	resp := make([]EntryResponse, 0, len(entries))
	for _, e := range entries {
		resp = append(resp, EntryResponse{
			Position:  e.Position,
			Artist:    e.Artist,
			SongTitle: e.SongTitle,
		})
	}
	return resp, nil
}

func toWeekResponse(w repository.ChartWeek) WeekResponse {
	return WeekResponse{
		ID:          w.ID,
		Year:        w.Year,
		WeekEndDate: formatDate(w.WeekEndDate),
	}
}

func formatDate(d pgtype.Date) string {
	return d.Time.Format(dateLayout)
}

func parseDateParam(name, raw string) (pgtype.Date, error) {
	t, err := time.Parse(dateLayout, raw)
	if err != nil {
		return pgtype.Date{}, fmt.Errorf("%s must be a valid date in YYYY-MM-DD format", name)
	}
	return pgtype.Date{Time: t, Valid: true}, nil
}

func requiredIntParam(c echo.Context, name string, min, max int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return 0, fmt.Errorf("%s is required", name)
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || v > max {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", name, min, max)
	}
	return v, nil
}

// optionalIntParam parses a bounded integer query parameter, falling back
// to def when absent. A max below zero means unbounded above.
func optionalIntParam(c echo.Context, name string, def, min, max int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < min || (max >= 0 && v > max) {
		if max < 0 {
			return 0, fmt.Errorf("%s must be an integer of at least %d", name, min)
		}
		return 0, fmt.Errorf("%s must be an integer between %d and %d", name, min, max)
	}
	return v, nil
}

func ordinal(n int) string {
	switch n {
	case 1:
		return "1st"
	case 2:
		return "2nd"
	case 3:
		return "3rd"
	default:
		return strconv.Itoa(n) + "th"
	}
}
