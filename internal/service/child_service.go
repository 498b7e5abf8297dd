package service

import (
	"context"
	"errors"
	"regexp"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/LadaVilada/kido-sub000/internal/dto"
	"github.com/LadaVilada/kido-sub000/internal/model"
	"github.com/LadaVilada/kido-sub000/internal/repository"
	"github.com/LadaVilada/kido-sub000/pkg/redis"
)

// ── Children business errors ──

var (
	ErrChildNotFound    = errors.New("child not found")
	ErrInvalidColor     = errors.New("color must be #RRGGBB")
	ErrInvalidBirthDate = errors.New("birth_date must be YYYY-MM-DD")
)

const defaultChildColor = "#3B82F6"

var hexColorRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// ChildService is the child profile business interface.
type ChildService interface {
	Create(ctx context.Context, req *dto.CreateChildRequest, callerID string) (*dto.ChildResponse, error)
	GetByID(ctx context.Context, id string, callerID string) (*dto.ChildResponse, error)
	List(ctx context.Context, callerID string) ([]dto.ChildResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateChildRequest, callerID string) (*dto.ChildResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type childService struct {
	repo   *repository.Repository
	rdb    *redis.Client
	logger *zap.Logger
}

// NewChildService creates a ChildService instance.
func NewChildService(repo *repository.Repository, rdb *redis.Client, logger *zap.Logger) ChildService {
	return &childService{repo: repo, rdb: rdb, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *childService) Create(ctx context.Context, req *dto.CreateChildRequest, callerID string) (*dto.ChildResponse, error) {
	color := req.Color
	if color == "" {
		color = defaultChildColor
	}
	if !hexColorRe.MatchString(color) {
		return nil, ErrInvalidColor
	}

	birthDate, err := parseBirthDate(req.BirthDate)
	if err != nil {
		return nil, err
	}

	child := &model.Child{
		UserID:    callerID,
		Name:      req.Name,
		Color:     color,
		BirthDate: birthDate,
	}
	child.CreatedBy = &callerID
	child.UpdatedBy = &callerID

	if err := s.repo.Child.Create(ctx, child); err != nil {
		s.logger.Error("create child failed", zap.Error(err))
		return nil, err
	}

	s.invalidateViews(ctx, callerID)
	return s.toChildResponse(child, 0), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *childService) GetByID(ctx context.Context, id string, callerID string) (*dto.ChildResponse, error) {
	child, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	count, err := s.repo.Child.CountActivities(ctx, id)
	if err != nil {
		s.logger.Error("count activities failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toChildResponse(child, int(count)), nil
}

// ────────────────────── List ──────────────────────

func (s *childService) List(ctx context.Context, callerID string) ([]dto.ChildResponse, error) {
	children, err := s.repo.Child.ListByUser(ctx, callerID)
	if err != nil {
		s.logger.Error("list children failed", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ChildResponse, 0, len(children))
	for i := range children {
		result = append(result, *s.toChildResponse(&children[i], 0))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *childService) Update(ctx context.Context, id string, req *dto.UpdateChildRequest, callerID string) (*dto.ChildResponse, error) {
	child, err := s.getOwned(ctx, id, callerID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		child.Name = *req.Name
	}
	if req.Color != nil {
		if !hexColorRe.MatchString(*req.Color) {
			return nil, ErrInvalidColor
		}
		child.Color = *req.Color
	}
	if req.BirthDate != nil {
		birthDate, err := parseBirthDate(req.BirthDate)
		if err != nil {
			return nil, err
		}
		child.BirthDate = birthDate
	}

	child.UpdatedBy = &callerID

	if err := s.repo.Child.Update(ctx, child); err != nil {
		s.logger.Error("update child failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	s.invalidateViews(ctx, callerID)
	return s.toChildResponse(child, 0), nil
}

// ────────────────────── Delete ──────────────────────

// Delete removes the child and all of its activities in one
// transaction.
func (s *childService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.getOwned(ctx, id, callerID); err != nil {
		return err
	}

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("begin tx failed", zap.Error(err))
		return err
	}
	txRepo := s.repo.WithTx(tx)

	if err := txRepo.Activity.DeleteByChild(ctx, id, callerID); err != nil {
		tx.Rollback()
		s.logger.Error("delete child activities failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if err := txRepo.Child.Delete(ctx, id, callerID); err != nil {
		tx.Rollback()
		s.logger.Error("delete child failed", zap.String("id", id), zap.Error(err))
		return err
	}
	if err := tx.Commit().Error; err != nil {
		s.logger.Error("commit failed", zap.String("id", id), zap.Error(err))
		return err
	}

	s.invalidateViews(ctx, callerID)
	return nil
}

// ── Internal helpers ──

// getOwned loads a child and hides other accounts' children behind
// not-found.
func (s *childService) getOwned(ctx context.Context, id string, callerID string) (*model.Child, error) {
	child, err := s.repo.Child.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrChildNotFound
		}
		s.logger.Error("child lookup failed", zap.String("id", id), zap.Error(err))
		return nil, err
	}
	if child.UserID != callerID {
		return nil, ErrChildNotFound
	}
	return child, nil
}

func (s *childService) invalidateViews(ctx context.Context, userID string) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.InvalidateUserViews(ctx, userID); err != nil {
		s.logger.Warn("calendar cache invalidation failed", zap.Error(err))
	}
}

func (s *childService) toChildResponse(child *model.Child, activityCount int) *dto.ChildResponse {
	resp := &dto.ChildResponse{
		ID:            child.ChildID,
		Name:          child.Name,
		Color:         child.Color,
		ActivityCount: activityCount,
		CreatedAt:     child.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     child.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if child.BirthDate != nil {
		resp.BirthDate = child.BirthDate.Format("2006-01-02")
	}
	return resp
}

func parseBirthDate(raw *string) (*time.Time, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", *raw)
	if err != nil {
		return nil, ErrInvalidBirthDate
	}
	return &t, nil
}
