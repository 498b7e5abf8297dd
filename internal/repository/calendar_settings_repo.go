package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/LadaVilada/kido-sub000/internal/model"
)

// CalendarSettingsRepository is the per-account settings data access
// interface.
type CalendarSettingsRepository interface {
	GetByUser(ctx context.Context, userID string) (*model.CalendarSettings, error)
	Create(ctx context.Context, settings *model.CalendarSettings) error
	Update(ctx context.Context, settings *model.CalendarSettings) error
}

type calendarSettingsRepo struct {
	db *gorm.DB
}

// NewCalendarSettingsRepo creates a CalendarSettingsRepository instance.
func NewCalendarSettingsRepo(db *gorm.DB) CalendarSettingsRepository {
	return &calendarSettingsRepo{db: db}
}

func (r *calendarSettingsRepo) GetByUser(ctx context.Context, userID string) (*model.CalendarSettings, error) {
	var settings model.CalendarSettings
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&settings).Error
	if err != nil {
		return nil, err
	}
	return &settings, nil
}

func (r *calendarSettingsRepo) Create(ctx context.Context, settings *model.CalendarSettings) error {
	return r.db.WithContext(ctx).Create(settings).Error
}

func (r *calendarSettingsRepo) Update(ctx context.Context, settings *model.CalendarSettings) error {
	return r.db.WithContext(ctx).Save(settings).Error
}
