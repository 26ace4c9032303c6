package app

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/nexhost/core/internal/middleware"
	"github.com/nexhost/core/internal/modules/activity"
	"github.com/nexhost/core/internal/modules/auth"
	"github.com/nexhost/core/internal/modules/contact"
	"github.com/nexhost/core/internal/modules/dashboard"
	"github.com/nexhost/core/internal/modules/media"
	"github.com/nexhost/core/internal/modules/navigation"
	"github.com/nexhost/core/internal/modules/page"
	"github.com/nexhost/core/internal/modules/service"
	"github.com/nexhost/core/internal/modules/setting"
	"github.com/nexhost/core/internal/modules/user"
	"github.com/nexhost/core/internal/pkg/response"
	"github.com/nexhost/core/internal/pkg/storage"
	goredis "github.com/redis/go-redis/v9"
)

func (a *App) registerRoutes() {
	r := a.router
	db := a.db
	authMW := middleware.Auth(db)

	var rdb *goredis.Client
	if a.rc != nil {
		rdb = a.rc.Raw()
	}

	r.NoRoute(func(c *gin.Context) {
		response.NotFound(c)
	})
	r.NoMethod(func(c *gin.Context) {
		response.MethodNotAllowed(c)
	})

	// Local uploads are served straight off disk. S3 objects carry their
	// own public URLs.
	if local, ok := a.store.(*storage.Local); ok {
		r.Static(a.cfg.Storage.LocalBaseURL, local.Dir())
	}

	appInfo := gin.H{
		"name":    "nexhost-core",
		"version": "1.0.0",
	}

	pageHandler := page.NewHandler(page.NewService(db))
	serviceHandler := service.NewHandler(service.NewService(db))
	navHandler := navigation.NewHandler(navigation.NewService(db))
	settingHandler := setting.NewHandler(setting.NewService(db))
	contactHandler := contact.NewHandler(contact.NewService(db))
	mediaHandler := media.NewHandler(media.NewService(db, a.store,
		int64(a.cfg.Storage.MaxUploadMB)<<20))
	activityHandler := activity.NewHandler(activity.NewService(db))
	dashboardHandler := dashboard.NewHandler(dashboard.NewService(db))
	authHandler := auth.NewHandler(auth.NewService(db))
	userHandler := user.NewHandler(user.NewService(db))

	api := r.Group("/api")
	api.Use(middleware.OptionalAuth(db))
	api.Use(middleware.RateLimit(rdb))
	api.Use(middleware.HTTPCache(rdb, middleware.HTTPCacheOptions{
		TTL:       15 * time.Second,
		Disable:   a.cfg.IsDev(),
		SkipPaths: []string{"/api/auth/*", "/api/admin/*"},
	}))

	api.GET("/ping", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"data": "pong"}) })
	api.GET("/info", func(c *gin.Context) { c.PureJSON(http.StatusOK, appInfo) })
	api.GET("/uptime", func(c *gin.Context) {
		uptimeMs := time.Since(processStart).Milliseconds()
		c.JSON(http.StatusOK, gin.H{
			"timestamp": uptimeMs,
			"humanize":  humanizeDuration(time.Duration(uptimeMs) * time.Millisecond),
		})
	})

	// Public site surface
	pageHandler.RegisterPublicRoutes(api)
	serviceHandler.RegisterPublicRoutes(api)
	navHandler.RegisterPublicRoutes(api)
	settingHandler.RegisterPublicRoutes(api)
	contactHandler.RegisterPublicRoutes(api)

	// Sign-in and session
	authHandler.RegisterRoutes(api, authMW)

	// Admin panel: session, role gate, audit trail, cache purge on writes.
	admin := api.Group("/admin")
	admin.Use(middleware.RequireAdmin(db))
	admin.Use(middleware.InvalidateOnWrite(rdb, a.logger))
	admin.Use(middleware.Audit(db, a.logger))

	pageHandler.RegisterAdminRoutes(admin)
	serviceHandler.RegisterAdminRoutes(admin)
	navHandler.RegisterAdminRoutes(admin)
	settingHandler.RegisterAdminRoutes(admin)
	contactHandler.RegisterAdminRoutes(admin)
	mediaHandler.RegisterAdminRoutes(admin)
	activityHandler.RegisterAdminRoutes(admin)
	dashboardHandler.RegisterAdminRoutes(admin)
	userHandler.RegisterAdminRoutes(admin)
}
