package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repository is the aggregate entry point for all repositories.
type Repository struct {
	db       *gorm.DB
	User     UserRepository
	Child    ChildRepository
	Activity ActivityRepository
	Settings CalendarSettingsRepository
}

// NewRepository wires the repository aggregate.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db:       db,
		User:     NewUserRepo(db),
		Child:    NewChildRepo(db),
		Activity: NewActivityRepo(db),
		Settings: NewCalendarSettingsRepo(db),
	}
}

// BeginTx opens a transaction. Pair with WithTx to run repository calls
// inside it; the caller owns Commit/Rollback.
func (r *Repository) BeginTx(ctx context.Context) (*gorm.DB, error) {
	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return tx, nil
}

// WithTx returns a repository aggregate bound to the given transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	return NewRepository(tx)
}
