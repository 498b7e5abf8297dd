package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/LadaVilada/kido-sub000/internal/dto"
	"github.com/LadaVilada/kido-sub000/internal/model"
	"github.com/LadaVilada/kido-sub000/internal/repository"
	"github.com/LadaVilada/kido-sub000/internal/schedule"
	"github.com/LadaVilada/kido-sub000/pkg/redis"
)

// SettingsService manages per-user calendar display settings.
type SettingsService interface {
	Get(ctx context.Context, callerID string) (*dto.SettingsResponse, error)
	Update(ctx context.Context, req *dto.UpdateSettingsRequest, callerID string) (*dto.SettingsResponse, error)
}

type settingsService struct {
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewSettingsService creates a SettingsService instance.
func NewSettingsService(repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) SettingsService {
	return &settingsService{repo: repo, rdb: rdb, logger: logger}
}

// ────────────────────── Get ──────────────────────

// Get returns the caller's settings, provisioning the defaults on
// first access.
func (s *settingsService) Get(ctx context.Context, callerID string) (*dto.SettingsResponse, error) {
	settings, err := s.getOrProvision(ctx, callerID)
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(settings), nil
}

// ────────────────────── Update ──────────────────────

func (s *settingsService) Update(ctx context.Context, req *dto.UpdateSettingsRequest, callerID string) (*dto.SettingsResponse, error) {
	settings, err := s.getOrProvision(ctx, callerID)
	if err != nil {
		return nil, err
	}

	// 1. Apply the provided fields
	if req.MaxColumns != nil {
		settings.MaxColumns = *req.MaxColumns
	}
	if req.WeekStartsOn != nil {
		settings.WeekStartsOn = *req.WeekStartsOn
	}
	if req.DefaultTimezone != nil {
		if _, err := time.LoadLocation(*req.DefaultTimezone); err != nil {
			return nil, ErrInvalidTimezone
		}
		settings.DefaultTimezone = *req.DefaultTimezone
	}
	settings.UpdatedBy = &callerID

	// 2. Persist
	if err := s.repo.Settings.Update(ctx, settings); err != nil {
		s.logger.Error("update settings failed", zap.Error(err))
		return nil, err
	}

	// 3. Display settings shape every cached view
	s.invalidateViews(ctx, callerID)

	s.logger.Info("settings updated",
		zap.String("user_id", callerID),
		zap.Int("max_columns", settings.MaxColumns))

	return toSettingsResponse(settings), nil
}

// ── Internal helpers ──

func (s *settingsService) getOrProvision(ctx context.Context, userID string) (*model.CalendarSettings, error) {
	settings, err := s.repo.Settings.GetByUser(ctx, userID)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("get settings failed", zap.Error(err))
		return nil, err
	}

	settings = &model.CalendarSettings{
		UserID:          userID,
		MaxColumns:      schedule.DefaultMaxColumns,
		WeekStartsOn:    0,
		DefaultTimezone: "UTC",
	}
	settings.CreatedBy = &userID
	settings.UpdatedBy = &userID
	if err := s.repo.Settings.Create(ctx, settings); err != nil {
		s.logger.Error("provision settings failed", zap.Error(err))
		return nil, err
	}
	return settings, nil
}

func (s *settingsService) invalidateViews(ctx context.Context, userID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.InvalidateUserViews(ctx, userID); err != nil {
		s.logger.Warn("invalidate calendar cache failed", zap.Error(err))
	}
}

func toSettingsResponse(settings *model.CalendarSettings) *dto.SettingsResponse {
	return &dto.SettingsResponse{
		MaxColumns:      settings.MaxColumns,
		WeekStartsOn:    settings.WeekStartsOn,
		DefaultTimezone: settings.DefaultTimezone,
		UpdatedAt:       settings.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
