package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/LadaVilada/kido-sub000/internal/model"
	pkgerrors "github.com/LadaVilada/kido-sub000/pkg/errors"
)

// ChildRepository is the child profile data access interface.
type ChildRepository interface {
	Create(ctx context.Context, child *model.Child) error
	GetByID(ctx context.Context, id string) (*model.Child, error)
	ListByUser(ctx context.Context, userID string) ([]model.Child, error)
	Update(ctx context.Context, child *model.Child) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountActivities(ctx context.Context, childID string) (int64, error)
}

// childRepo is the GORM implementation of ChildRepository.
type childRepo struct {
	db *gorm.DB
}

// NewChildRepo creates a ChildRepository instance.
func NewChildRepo(db *gorm.DB) ChildRepository {
	return &childRepo{db: db}
}

func (r *childRepo) Create(ctx context.Context, child *model.Child) error {
	return r.db.WithContext(ctx).Create(child).Error
}

func (r *childRepo) GetByID(ctx context.Context, id string) (*model.Child, error) {
	var child model.Child
	err := r.db.WithContext(ctx).
		Where("child_id = ?", id).
		First(&child).Error
	if err != nil {
		return nil, err
	}
	return &child, nil
}

func (r *childRepo) ListByUser(ctx context.Context, userID string) ([]model.Child, error) {
	var children []model.Child
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&children).Error
	return children, err
}

func (r *childRepo) Update(ctx context.Context, child *model.Child) error {
	oldVersion := child.Version
	result := r.db.WithContext(ctx).
		Model(child).
		Where("child_id = ? AND version = ?", child.ChildID, oldVersion).
		Updates(map[string]interface{}{
			"name":       child.Name,
			"color":      child.Color,
			"birth_date": child.BirthDate,
			"updated_by": child.UpdatedBy,
			"version":    oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	child.Version = oldVersion + 1
	return nil
}

func (r *childRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Child{}).
		Where("child_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

func (r *childRepo) CountActivities(ctx context.Context, childID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.Activity{}).
		Where("child_id = ? AND deleted_at IS NULL", childID).
		Count(&count).Error
	return count, err
}
