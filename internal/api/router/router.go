package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/LadaVilada/kido-sub000/config"
	"github.com/LadaVilada/kido-sub000/internal/api/handler"
	"github.com/LadaVilada/kido-sub000/internal/api/middleware"
	"github.com/LadaVilada/kido-sub000/pkg/jwt"
	"github.com/LadaVilada/kido-sub000/pkg/redis"
)

// Setup builds the Gin engine with all routes and middleware.
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── Global middleware ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	if cfg.Server.MaxBodySize > 0 {
		r.Use(middleware.BodyLimit(cfg.Server.MaxBodySize))
	}

	// ── Health check ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// auth endpoints (public, rate limited)
		auth := v1.Group("/auth")
		auth.Use(middleware.RateLimit(rdb, 10, time.Minute))
		{
			auth.POST("/register", h.Auth.Register)
			auth.POST("/login", h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// everything below requires a valid access token
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentUser)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			children := authorized.Group("/children")
			{
				children.GET("", h.Child.List)
				children.GET("/:id", h.Child.Get)
				children.POST("", h.Child.Create)
				children.PUT("/:id", h.Child.Update)
				children.DELETE("/:id", h.Child.Delete)
			}

			activities := authorized.Group("/activities")
			{
				activities.GET("", h.Activity.List)
				activities.GET("/:id", h.Activity.Get)
				activities.POST("", h.Activity.Create)
				activities.PUT("/:id", h.Activity.Update)
				activities.DELETE("/:id", h.Activity.Delete)
				activities.POST("/import", h.ICS.ImportActivities)
			}

			calendar := authorized.Group("/calendar")
			{
				calendar.GET("/day", h.Calendar.DayView)
				calendar.GET("/week", h.Calendar.WeekView)
				calendar.GET("/upcoming", h.Calendar.Upcoming)
			}

			settings := authorized.Group("/settings")
			{
				settings.GET("", h.Settings.Get)
				settings.PUT("", h.Settings.Update)
			}

			export := authorized.Group("/export")
			{
				export.GET("/week.xlsx", h.Export.ExportWeek)
				export.GET("/calendar.ics", h.ICS.ExportCalendar)
			}
		}
	}

	return r
}
