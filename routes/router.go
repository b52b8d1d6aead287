package routes

import (
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/cppla/greenhabit/config"
	"github.com/cppla/greenhabit/controllers"
	"github.com/cppla/greenhabit/middleware"
	"github.com/cppla/greenhabit/session"
	"github.com/cppla/greenhabit/store"
	"github.com/cppla/greenhabit/utils"
)

// Deps are the components the router hands to controllers.
type Deps struct {
	Config   config.AppConfig
	Store    *store.Store
	Sessions *session.Manager
	Cache    *utils.Cache
	Clock    utils.Clock
	Location *time.Location
}

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(deps Deps) *gin.Engine {
	cfg := deps.Config
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file when GinPath is set.
	gl := utils.Logger
	if cfg.GinPath != "" {
		if l, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress); err == nil {
			gl = l
		} else {
			utils.Logger.Warn("gin logger init failed, using app logger", zap.Error(err))
		}
	}
	r.Use(utils.Ginzap(gl, time.RFC3339, true))
	r.Use(utils.RecoveryWithZap(gl, false))

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 0 || (len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*") {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	if cfg.MetricsEnabled {
		r.Use(middleware.Metrics())
		r.GET("/metrics", gin.WrapH(middleware.MetricsHandler()))
	}

	r.Use(middleware.SessionLoader(deps.Sessions, cfg.SessionCookieName))

	r.GET("/health", func(ctx *gin.Context) {
		if err := deps.Store.Ping(ctx.Request.Context()); err != nil {
			utils.Logger.Warn("health check failed", zap.Error(err))
			utils.Error(ctx, http.StatusServiceUnavailable, 50300, "database unavailable")
			return
		}
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	authController := controllers.NewAuthController(deps.Store, deps.Sessions, controllers.CookieConfig{
		Name:   cfg.SessionCookieName,
		Secure: cfg.SessionCookieSecure,
		MaxAge: deps.Sessions.TTL(),
	})
	taskController := controllers.NewTaskController(deps.Store, deps.Clock, deps.Location)
	tipController := controllers.NewTipController(deps.Store, deps.Cache, deps.Clock, deps.Location)
	rewardController := controllers.NewRewardController(deps.Store)

	api := r.Group("/api")

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMinute)
	api.POST("/signup", middleware.RateLimitMiddleware(limiter), authController.Signup)
	api.POST("/login", middleware.RateLimitMiddleware(limiter), authController.Login)
	api.POST("/logout", authController.Logout)
	api.GET("/me", authController.Me)
	api.GET("/tip", tipController.GetTip)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())
	protected.GET("/task", taskController.GetTask)
	protected.POST("/task", taskController.CompleteTask)
	protected.GET("/streak", taskController.Streak)
	protected.GET("/rewards", rewardController.ListRewards)

	r.NoRoute(staticFallback(cfg.StaticDir))

	return r
}

// staticFallback serves files from dir and falls back to dir/index.html so client-side
// routes resolve. Non-GET requests get a JSON 404.
func staticFallback(dir string) gin.HandlerFunc {
	index := filepath.Join(dir, "index.html")
	return func(ctx *gin.Context) {
		method := ctx.Request.Method
		if method != http.MethodGet && method != http.MethodHead {
			utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
			return
		}
		// path.Clean on a rooted path cannot climb above dir.
		name := filepath.Join(dir, filepath.FromSlash(path.Clean("/"+ctx.Request.URL.Path)))
		if isFile(name) {
			ctx.File(name)
			return
		}
		if isFile(index) {
			ctx.Status(http.StatusOK)
			ctx.File(index)
			return
		}
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	}
}

func isFile(name string) bool {
	info, err := os.Stat(name)
	return err == nil && !info.IsDir()
}
