package service

import (
	"context"
	"errors"
	"sort"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/LadaVilada/kido-sub000/internal/dto"
	"github.com/LadaVilada/kido-sub000/internal/model"
	"github.com/LadaVilada/kido-sub000/internal/repository"
	"github.com/LadaVilada/kido-sub000/internal/schedule"
	"github.com/LadaVilada/kido-sub000/pkg/redis"
)

// ── Activities business errors ──

var (
	ErrActivityNotFound = errors.New("activity not found")
	ErrInvalidClockTime = errors.New("start_time and end_time must be HH:MM")
	ErrEndNotAfterStart = errors.New("end_time must be after start_time")
	ErrInvalidDayOfWeek = errors.New("days_of_week entries must be 0..6")
	ErrInvalidTimezone  = errors.New("timezone is not a valid IANA name")
)

// ActivityService is the recurring activity business interface.
// All rule validation happens here; rows that reach the database are
// safe to feed straight into the occurrence generator.
type ActivityService interface {
	Create(ctx context.Context, req *dto.CreateActivityRequest, callerID string) (*dto.ActivityResponse, error)
	GetByID(ctx context.Context, id string, callerID string) (*dto.ActivityResponse, error)
	List(ctx context.Context, req *dto.ActivityListRequest, callerID string) ([]dto.ActivityResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateActivityRequest, callerID string) (*dto.ActivityResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type activityService struct {
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewActivityService creates an ActivityService instance.
func NewActivityService(repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) ActivityService {
	return &activityService{repo: repo, rdb: rdb, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *activityService) Create(ctx context.Context, req *dto.CreateActivityRequest, callerID string) (*dto.ActivityResponse, error) {
	// 1. the target child must belong to the caller
	child, err := s.getOwnedChild(ctx, req.ChildID, callerID)
	if err != nil {
		return nil, err
	}

	// 2. timezone defaults from the caller's settings
	timezone := req.Timezone
	if timezone == "" {
		timezone = s.defaultTimezone(ctx, callerID)
	}

	// 3. rule validation
	if err := validateRule(req.StartTime, req.EndTime, req.DaysOfWeek, timezone); err != nil {
		return nil, err
	}

	activity := &model.Activity{
		UserID:     callerID,
		ChildID:    req.ChildID,
		Title:      req.Title,
		Location:   req.Location,
		DaysOfWeek: normalizeDays(req.DaysOfWeek),
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Timezone:   timezone,
		Source:     model.ActivitySourceManual,
	}
	activity.CreatedBy = &callerID
	activity.UpdatedBy = &callerID

	if err := s.repo.Activity.Create(ctx, activity); err != nil {
		s.logger.Error("create activity failed", zap.Error(err))
		return nil, err
	}
	activity.Child = child

	s.invalidateViews(ctx, callerID)
	return s.toActivityResponse(activity), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *activityService) GetByID(ctx context.Context, id string, callerID string) (*dto.ActivityResponse, error) {
	activity, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}
	return s.toActivityResponse(activity), nil
}

// ────────────────────── List ──────────────────────

func (s *activityService) List(ctx context.Context, req *dto.ActivityListRequest, callerID string) ([]dto.ActivityResponse, int64, error) {
	activities, total, err := s.repo.Activity.ListPage(ctx, callerID, req.ChildID, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("list activities failed", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.ActivityResponse, 0, len(activities))
	for i := range activities {
		result = append(result, *s.toActivityResponse(&activities[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *activityService) Update(ctx context.Context, id string, req *dto.UpdateActivityRequest, callerID string) (*dto.ActivityResponse, error) {
	activity, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if req.ChildID != nil && *req.ChildID != activity.ChildID {
		child, err := s.getOwnedChild(ctx, *req.ChildID, callerID)
		if err != nil {
			return nil, err
		}
		activity.ChildID = *req.ChildID
		activity.Child = child
	}
	if req.Title != nil {
		activity.Title = *req.Title
	}
	if req.Location != nil {
		activity.Location = *req.Location
	}
	if req.DaysOfWeek != nil {
		activity.DaysOfWeek = normalizeDays(*req.DaysOfWeek)
	}
	if req.StartTime != nil {
		activity.StartTime = *req.StartTime
	}
	if req.EndTime != nil {
		activity.EndTime = *req.EndTime
	}
	if req.Timezone != nil {
		activity.Timezone = *req.Timezone
	}

	// the merged rule must still hold together
	if err := validateRule(activity.StartTime, activity.EndTime, activity.DaysOfWeek, activity.Timezone); err != nil {
		return nil, err
	}

	activity.UpdatedBy = &callerID

	if err := s.repo.Activity.Update(ctx, activity); err != nil {
		s.logger.Error("update activity failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.invalidateViews(ctx, callerID)
	return s.toActivityResponse(activity), nil
}

// ────────────────────── Delete ──────────────────────

func (s *activityService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.getOwned(ctx, id, callerID); err != nil {
		return err
	}

	if err := s.repo.Activity.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("delete activity failed", zap.String("id", id), zap.Error(err))
		return err
	}

	s.invalidateViews(ctx, callerID)
	return nil
}

// ── Internal helpers ──

func (s *activityService) getOwned(ctx context.Context, id string, callerID string) (*model.Activity, error) {
	activity, err := s.repo.Activity.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrActivityNotFound
		}
		s.logger.Error("activity lookup failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if activity.UserID != callerID {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

func (s *activityService) getOwnedChild(ctx context.Context, childID string, callerID string) (*model.Child, error) {
	child, err := s.repo.Child.GetByID(ctx, childID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChildNotFound
		}
		s.logger.Error("child lookup failed", zap.String("id", childID), zap.Error(err))
		return nil, err
	}
	if child.UserID != callerID {
		return nil, ErrChildNotFound
	}
	return child, nil
}

// defaultTimezone reads the caller's configured timezone, falling back
// to UTC before settings are provisioned.
func (s *activityService) defaultTimezone(ctx context.Context, userID string) string {
	settings, err := s.repo.Settings.GetByUser(ctx, userID)
	if err != nil {
		return "UTC"
	}
	return settings.DefaultTimezone
}

func (s *activityService) invalidateViews(ctx context.Context, userID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.InvalidateUserViews(ctx, userID); err != nil {
		s.logger.Warn("calendar cache invalidation failed", zap.Error(err))
	}
}

func (s *activityService) toActivityResponse(activity *model.Activity) *dto.ActivityResponse {
	resp := &dto.ActivityResponse{
		ID:         activity.ActivityID,
		ChildID:    activity.ChildID,
		Title:      activity.Title,
		Location:   activity.Location,
		DaysOfWeek: activity.DaysOfWeek,
		StartTime:  activity.StartTime,
		EndTime:    activity.EndTime,
		Timezone:   activity.Timezone,
		Source:     activity.Source,
		CreatedAt:  activity.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:  activity.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if activity.Child != nil {
		resp.ChildName = activity.Child.Name
		resp.ChildColor = activity.Child.Color
	}
	return resp
}

// validateRule enforces the invariants every stored recurrence rule
// carries: parseable clocks, positive duration, day indices in 0..6
// with 0 meaning Sunday, and a loadable timezone. An empty day set is
// legal; it simply never matches a date.
func validateRule(startTime, endTime string, days []int, timezone string) error {
	startMin, err := schedule.TimeToMinutes(startTime)
	if err != nil {
		return ErrInvalidClockTime
	}
	endMin, err := schedule.TimeToMinutes(endTime)
	if err != nil {
		return ErrInvalidClockTime
	}
	if startMin >= endMin {
		return ErrEndNotAfterStart
	}
	for _, d := range days {
		if d < 0 || d > 6 {
			return ErrInvalidDayOfWeek
		}
	}
	if _, err := time.LoadLocation(timezone); err != nil {
		return ErrInvalidTimezone
	}
	return nil
}

// normalizeDays sorts and dedupes a weekday set so equal rules store
// identically.
func normalizeDays(days []int) model.IntArray {
	seen := make(map[int]bool, len(days))
	out := make(model.IntArray, 0, len(days))
	for _, d := range days {
		if !seen[d] {
			seen[d] = true
			out = append(out, d)
		}
	}
	sort.Ints(out)
	return out
}
