package service

import (
	"go.uber.org/zap"

	"github.com/LadaVilada/kido-sub000/config"
	"github.com/LadaVilada/kido-sub000/internal/repository"
	"github.com/LadaVilada/kido-sub000/pkg/jwt"
	"github.com/LadaVilada/kido-sub000/pkg/redis"
)

// Service is the aggregate entry point for all services.
type Service struct {
	Auth     AuthService
	Child    ChildService
	Activity ActivityService
	Calendar CalendarService
	Settings SettingsService
	Export   ExportService
	ICS      ICSService
}

// NewService creates the Service aggregate.
// rdb may be nil when Redis is not configured.
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	rdb *redis.Client,
	logger *zap.Logger,
) *Service {
	return &Service{
		Auth:     NewAuthService(cfg, repo, jwtMgr, rdb, logger),
		Child:    NewChildService(repo, rdb, logger),
		Activity: NewActivityService(repo, rdb, logger),
		Calendar: NewCalendarService(cfg, repo, rdb, logger),
		Settings: NewSettingsService(repo, rdb, logger),
		Export:   NewExportService(repo, logger),
		ICS:      NewICSService(cfg, repo, rdb, logger),
	}
}
