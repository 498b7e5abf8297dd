package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/LadaVilada/kido-sub000/config"
	"github.com/LadaVilada/kido-sub000/internal/dto"
	"github.com/LadaVilada/kido-sub000/internal/repository"
	"github.com/LadaVilada/kido-sub000/internal/schedule"
	"github.com/LadaVilada/kido-sub000/pkg/redis"
)

// ── Calendar business errors ──

var (
	ErrInvalidDate = errors.New("date must be YYYY-MM-DD")
)

const defaultUpcomingLimit = 10

// CalendarService renders recurring activities into dated, laid-out
// views. It is a thin shell around the schedule package: repositories
// supply the rules, the engine does the math.
type CalendarService interface {
	DayView(ctx context.Context, req *dto.DayViewRequest, callerID string) (*dto.DayViewResponse, error)
	WeekView(ctx context.Context, req *dto.WeekViewRequest, callerID string) (*dto.WeekViewResponse, error)
	Upcoming(ctx context.Context, req *dto.UpcomingRequest, callerID string) (*dto.UpcomingResponse, error)
}

type calendarService struct {
	cfg    *config.Config
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewCalendarService creates a CalendarService instance.
// rdb may be nil; week views are then rebuilt on every request.
func NewCalendarService(cfg *config.Config, repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) CalendarService {
	return &calendarService{cfg: cfg, repo: repo, rdb: rdb, logger: logger}
}

// ────────────────────── DayView ──────────────────────

func (s *calendarService) DayView(ctx context.Context, req *dto.DayViewRequest, callerID string) (*dto.DayViewResponse, error) {
	day, err := time.ParseInLocation("2006-01-02", req.Date, time.Local)
	if err != nil {
		return nil, ErrInvalidDate
	}

	rules, children, err := s.loadRules(ctx, callerID)
	if err != nil {
		return nil, err
	}
	maxColumns, _, _ := s.viewSettings(ctx, callerID)

	occs := schedule.GenerateDay(rules, children, day)
	view := buildDayView(day, occs, maxColumns)
	return &view, nil
}

// ────────────────────── WeekView ──────────────────────

func (s *calendarService) WeekView(ctx context.Context, req *dto.WeekViewRequest, callerID string) (*dto.WeekViewResponse, error) {
	maxColumns, weekStartsOn, _ := s.viewSettings(ctx, callerID)

	var anchor time.Time
	if req.Start != "" {
		var err error
		anchor, err = time.ParseInLocation("2006-01-02", req.Start, time.Local)
		if err != nil {
			return nil, ErrInvalidDate
		}
	} else {
		anchor = weekStart(time.Now(), weekStartsOn)
	}

	cacheKey := fmt.Sprintf("week:%s:%s", callerID, anchor.Format("2006-01-02"))
	if cached := s.cachedWeek(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	rules, children, err := s.loadRules(ctx, callerID)
	if err != nil {
		return nil, err
	}

	view := &dto.WeekViewResponse{
		StartDate:  anchor.Format("2006-01-02"),
		EndDate:    anchor.AddDate(0, 0, 6).Format("2006-01-02"),
		Days:       make([]dto.DayViewResponse, 0, 7),
		MaxColumns: maxColumns,
	}
	for i := 0; i < 7; i++ {
		day := anchor.AddDate(0, 0, i)
		occs := schedule.GenerateDay(rules, children, day)
		view.Days = append(view.Days, buildDayView(day, occs, maxColumns))
	}

	s.cacheWeek(ctx, cacheKey, view)
	return view, nil
}

// ────────────────────── Upcoming ──────────────────────

func (s *calendarService) Upcoming(ctx context.Context, req *dto.UpcomingRequest, callerID string) (*dto.UpcomingResponse, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}

	rules, children, err := s.loadRules(ctx, callerID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	horizon := now.AddDate(0, 0, s.cfg.Calendar.UpcomingHorizonDays)
	occs := schedule.Generate(rules, children, now, horizon)

	result := &dto.UpcomingResponse{Occurrences: make([]dto.OccurrenceResponse, 0, limit)}
	for _, occ := range occs {
		if occ.StartDateTime.Before(now) {
			continue
		}
		result.Occurrences = append(result.Occurrences, toOccurrenceResponse(occ))
		if len(result.Occurrences) == limit {
			break
		}
	}

	return result, nil
}

// ── Internal helpers ──

func (s *calendarService) loadRules(ctx context.Context, userID string) ([]schedule.Rule, map[string]schedule.ChildInfo, error) {
	rules, children, err := loadScheduleInputs(ctx, s.repo, userID)
	if err != nil {
		s.logger.Error("load schedule inputs failed", zap.Error(err))
	}
	return rules, children, err
}

// loadScheduleInputs converts a user's stored activities and children
// into the engine's input shape. Shared by the calendar, export and
// ICS services.
func loadScheduleInputs(ctx context.Context, repo *repository.Repository, userID string) ([]schedule.Rule, map[string]schedule.ChildInfo, error) {
	activities, err := repo.Activity.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	childRows, err := repo.Child.ListByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	rules := make([]schedule.Rule, 0, len(activities))
	for _, a := range activities {
		rules = append(rules, schedule.Rule{
			ID:         a.ActivityID,
			ChildID:    a.ChildID,
			Title:      a.Title,
			Location:   a.Location,
			DaysOfWeek: a.DaysOfWeek,
			StartTime:  a.StartTime,
			EndTime:    a.EndTime,
			Timezone:   a.Timezone,
		})
	}

	children := make(map[string]schedule.ChildInfo, len(childRows))
	for _, c := range childRows {
		children[c.ChildID] = schedule.ChildInfo{Name: c.Name, Color: c.Color}
	}

	return rules, children, nil
}

// viewSettings reads the caller's display settings without
// provisioning, falling back to the defaults.
func (s *calendarService) viewSettings(ctx context.Context, userID string) (maxColumns, weekStartsOn int, timezone string) {
	maxColumns = schedule.DefaultMaxColumns
	weekStartsOn = 0
	timezone = "UTC"

	settings, err := s.repo.Settings.GetByUser(ctx, userID)
	if err != nil {
		return
	}
	if settings.MaxColumns > 0 {
		maxColumns = settings.MaxColumns
	}
	if settings.WeekStartsOn >= 0 && settings.WeekStartsOn <= 6 {
		weekStartsOn = settings.WeekStartsOn
	}
	if settings.DefaultTimezone != "" {
		timezone = settings.DefaultTimezone
	}
	return
}

func (s *calendarService) cachedWeek(ctx context.Context, key string) *dto.WeekViewResponse {
	if s.rdb == nil {
		return nil
	}
	data, err := s.rdb.GetCachedView(ctx, key)
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) {
			s.logger.Warn("calendar cache read failed", zap.Error(err))
		}
		return nil
	}
	var view dto.WeekViewResponse
	if err := json.Unmarshal(data, &view); err != nil {
		s.logger.Warn("calendar cache decode failed", zap.Error(err))
		return nil
	}
	return &view
}

func (s *calendarService) cacheWeek(ctx context.Context, key string, view *dto.WeekViewResponse) {
	if s.rdb == nil {
		return
	}
	data, err := json.Marshal(view)
	if err != nil {
		return
	}
	if err := s.rdb.SetCachedView(ctx, key, data, s.cfg.Calendar.CacheTTL); err != nil {
		s.logger.Warn("calendar cache write failed", zap.Error(err))
	}
}

// weekStart walks back from t to the most recent day with the given
// weekday (0=Sunday), normalized to midnight.
func weekStart(t time.Time, weekStartsOn int) time.Time {
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	offset := (int(day.Weekday()) - weekStartsOn + 7) % 7
	return day.AddDate(0, 0, -offset)
}

// buildDayView runs overlap detection and layout for one day's
// occurrences.
func buildDayView(day time.Time, occs []schedule.Occurrence, maxColumns int) dto.DayViewResponse {
	groups := schedule.DetectOverlaps(occs)
	layouts := schedule.CalculateLayout(groups, maxColumns)

	view := dto.DayViewResponse{
		Date:        day.Format("2006-01-02"),
		Occurrences: make([]dto.OccurrenceResponse, 0, len(occs)),
		Layouts:     make([]dto.LayoutBlockResponse, 0, len(layouts)),
		MaxColumns:  maxColumns,
	}
	for _, occ := range occs {
		view.Occurrences = append(view.Occurrences, toOccurrenceResponse(occ))
	}
	for _, l := range layouts {
		block := dto.LayoutBlockResponse{
			Occurrence: toOccurrenceResponse(l.Occurrence),
			Column:     l.Column,
			IsOverflow: l.IsOverflow,
			Segments:   make([]dto.LayoutSegmentResponse, 0, len(l.Segments)),
		}
		for _, seg := range l.Segments {
			block.Segments = append(block.Segments, dto.LayoutSegmentResponse{
				StartMinutes: seg.StartMinutes,
				EndMinutes:   seg.EndMinutes,
				ColumnIndex:  seg.ColumnIndex,
				ColumnCount:  seg.ColumnCount,
				Width:        seg.Width,
				Left:         seg.Left,
			})
		}
		if l.IsOverflow {
			view.OverflowCount++
		}
		view.Layouts = append(view.Layouts, block)
	}
	return view
}

func toOccurrenceResponse(occ schedule.Occurrence) dto.OccurrenceResponse {
	return dto.OccurrenceResponse{
		ID:            occ.ID,
		ActivityID:    occ.ActivityID,
		Date:          occ.Date.Format("2006-01-02"),
		StartDateTime: occ.StartDateTime.Format(time.RFC3339),
		EndDateTime:   occ.EndDateTime.Format(time.RFC3339),
		StartTime:     schedule.MinutesToTime(occ.StartMinutes),
		EndTime:       schedule.MinutesToTime(occ.EndMinutes),
		StartMinutes:  occ.StartMinutes,
		EndMinutes:    occ.EndMinutes,
		Title:         occ.Title,
		Location:      occ.Location,
		ChildName:     occ.ChildName,
		ChildColor:    occ.ChildColor,
	}
}
