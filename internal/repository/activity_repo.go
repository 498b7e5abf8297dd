package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/LadaVilada/kido-sub000/internal/model"
	pkgerrors "github.com/LadaVilada/kido-sub000/pkg/errors"
)

// ActivityRepository is the recurring activity data access interface.
type ActivityRepository interface {
	Create(ctx context.Context, activity *model.Activity) error
	GetByID(ctx context.Context, id string) (*model.Activity, error)
	ListByUser(ctx context.Context, userID string) ([]model.Activity, error)
	ListByChild(ctx context.Context, childID string) ([]model.Activity, error)
	ListPage(ctx context.Context, userID, childID string, offset, limit int) ([]model.Activity, int64, error)
	BatchCreate(ctx context.Context, activities []model.Activity) error
	Update(ctx context.Context, activity *model.Activity) error
	Delete(ctx context.Context, id string, deletedBy string) error
	DeleteByChild(ctx context.Context, childID string, deletedBy string) error
}

// activityRepo is the GORM implementation of ActivityRepository.
type activityRepo struct {
	db *gorm.DB
}

// NewActivityRepo creates an ActivityRepository instance.
func NewActivityRepo(db *gorm.DB) ActivityRepository {
	return &activityRepo{db: db}
}

func (r *activityRepo) Create(ctx context.Context, activity *model.Activity) error {
	return r.db.WithContext(ctx).Create(activity).Error
}

func (r *activityRepo) GetByID(ctx context.Context, id string) (*model.Activity, error) {
	var activity model.Activity
	err := r.db.WithContext(ctx).
		Preload("Child").
		Where("activity_id = ?", id).
		First(&activity).Error
	if err != nil {
		return nil, err
	}
	return &activity, nil
}

func (r *activityRepo) ListByUser(ctx context.Context, userID string) ([]model.Activity, error) {
	var activities []model.Activity
	err := r.db.WithContext(ctx).
		Preload("Child").
		Where("user_id = ?", userID).
		Order("start_time ASC, title ASC").
		Find(&activities).Error
	return activities, err
}

func (r *activityRepo) ListByChild(ctx context.Context, childID string) ([]model.Activity, error) {
	var activities []model.Activity
	err := r.db.WithContext(ctx).
		Where("child_id = ?", childID).
		Order("start_time ASC, title ASC").
		Find(&activities).Error
	return activities, err
}

func (r *activityRepo) ListPage(ctx context.Context, userID, childID string, offset, limit int) ([]model.Activity, int64, error) {
	var activities []model.Activity
	var total int64

	db := r.db.WithContext(ctx).Model(&model.Activity{}).Where("user_id = ?", userID)
	if childID != "" {
		db = db.Where("child_id = ?", childID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Child").
		Offset(offset).Limit(limit).
		Order("start_time ASC, title ASC").
		Find(&activities).Error; err != nil {
		return nil, 0, err
	}

	return activities, total, nil
}

func (r *activityRepo) BatchCreate(ctx context.Context, activities []model.Activity) error {
	if len(activities) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&activities).Error
}

func (r *activityRepo) Update(ctx context.Context, activity *model.Activity) error {
	oldVersion := activity.Version
	result := r.db.WithContext(ctx).
		Model(activity).
		Where("activity_id = ? AND version = ?", activity.ActivityID, oldVersion).
		Updates(map[string]interface{}{
			"child_id":     activity.ChildID,
			"title":        activity.Title,
			"location":     activity.Location,
			"days_of_week": activity.DaysOfWeek,
			"start_time":   activity.StartTime,
			"end_time":     activity.EndTime,
			"timezone":     activity.Timezone,
			"source":       activity.Source,
			"updated_by":   activity.UpdatedBy,
			"version":      oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	activity.Version = oldVersion + 1
	return nil
}

func (r *activityRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("activity_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *activityRepo) DeleteByChild(ctx context.Context, childID string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("child_id = ? AND deleted_at IS NULL", childID).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
