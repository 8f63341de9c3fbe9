package router

import (
	"context"
	"net/http"
	"time"

	"thai-travel-portal/internal/auth"
	"thai-travel-portal/internal/config"
	"thai-travel-portal/internal/database"
	"thai-travel-portal/internal/handler"
	"thai-travel-portal/internal/middleware"
	"thai-travel-portal/internal/models"
	"thai-travel-portal/internal/notify"
	"thai-travel-portal/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps are the long-lived collaborators the routes are built from.
type Deps struct {
	Config       *config.Config
	DB           *gorm.DB
	Log          *zap.Logger
	Store        *auth.Store
	Counter      notify.ViewCounter
	Redis        *redis.Client
	LoginLimiter *middleware.RateLimiter
}

// SetupRouter configures the gin engine and every API route.
func SetupRouter(d Deps) *gin.Engine {
	cfg := d.Config
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	if d.LoginLimiter == nil {
		d.LoginLimiter = middleware.NewRateLimiter(cfg.Security.LoginRate, cfg.Security.LoginBurst)
	}
	if d.Counter == nil {
		d.Counter = notify.NewMemoryCounter()
	}

	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(d.Log))

	r.GET("/healthz", health(d))
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	cookies := auth.CookieSettings{
		Name:   cfg.Session.CookieName,
		Secure: cfg.Server.Production,
		TTL:    d.Store.TTL(),
	}
	paging := handler.Paging{PageSize: cfg.App.PageSize, MaxPageSize: cfg.App.MaxPageSize}

	// ====== API ======
	api := r.Group("/api")
	api.Use(
		middleware.LoadUser(d.Store, cookies),
		middleware.AuditMiddleware(d.DB, d.Log),
	)
	admin := api.Group("", middleware.RequireAdmin(d.Store, cookies))

	// auth
	authHandler := handler.NewAuthHandler(d.DB, d.Store, cookies,
		cfg.Security.BcryptCost,
		cfg.Security.MaxFailedLogins,
		time.Duration(cfg.Security.LockMinutes)*time.Minute,
		d.Log)
	limited := middleware.RateLimit(d.LoginLimiter)
	api.POST("/auth/register", limited, authHandler.Register)
	api.POST("/auth/login", limited, authHandler.Login)
	api.POST("/auth/reset-password", limited, authHandler.ResetPassword)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/auth/me", handler.GetMe)
	api.GET("/auth/security-question", authHandler.SecurityQuestion)
	api.PUT("/auth/password", authHandler.ChangePassword)

	// content
	content := handler.NewContentHandler(d.DB, paging, d.Log)
	content.Register(api, admin)

	home := handler.Singleton[models.HomeSettings]{DB: d.DB, Log: d.Log}
	api.GET("/home-settings", home.Get)
	admin.PUT("/home-settings", home.Put)
	video := handler.Singleton[models.CultureVideo]{DB: d.DB, Log: d.Log}
	api.GET("/culture-video", video.Get)
	admin.PUT("/culture-video", video.Put)

	// partner notifications
	selector := notify.NewSelector(d.DB, d.Counter, d.Log)
	notifications := handler.NewNotificationHandler(selector, cfg.Server.Production, d.Log)
	api.GET("/partner-notification/random", notifications.Random)
	api.POST("/partner-notification/:id/view", notifications.RecordView)

	images := handler.NewImageHandler(cfg.App.UploadMaxMB, cfg.App.UploadMaxMegapixels, d.Log)
	admin.POST("/optimize-image", images.Optimize)

	// ====== admin ======
	adm := api.Group("/admin", middleware.RequireAdmin(d.Store, cookies))

	importExport := handler.NewImportExportHandler(d.DB, d.Log)
	adm.GET("/export", importExport.Export)
	adm.GET("/export/:file", importExport.ExportTable)
	adm.POST("/import", importExport.Import)

	backups := handler.NewBackupHandler(d.DB, cfg.Security.EncryptionKey, cfg.Backup.Dir, d.Log)
	adm.POST("/backups", backups.CreateBackup)
	adm.GET("/backups", backups.ListBackups)
	adm.GET("/backups/:id/download", backups.DownloadBackup)
	adm.POST("/backups/:id/restore", backups.RestoreBackup)
	adm.DELETE("/backups/:id", backups.DeleteBackup)

	logs := handler.NewLogHandler(d.DB, paging)
	adm.GET("/audit-logs", logs.ListLogs)

	return r
}

// health pings the database and, when configured, redis.
func health(d Deps) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{"database": "ok"}
		healthy := true

		if err := database.Ping(ctx, d.DB); err != nil {
			d.Log.Warn("health: database", zap.Error(err))
			checks["database"] = "unavailable"
			healthy = false
		}
		if d.Redis != nil {
			checks["redis"] = "ok"
			if err := d.Redis.Ping(ctx).Err(); err != nil {
				d.Log.Warn("health: redis", zap.Error(err))
				checks["redis"] = "unavailable"
				healthy = false
			}
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "checks": checks})
			return
		}
		util.Success(c, util.Response{"checks": checks})
	}
}
