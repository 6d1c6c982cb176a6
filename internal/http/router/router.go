// Package router builds the Gin engine and mounts all modules.
package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	apphttp "roofchat_backend/internal/http"
	"roofchat_backend/platform/config"
	"roofchat_backend/platform/httpkit"
	"roofchat_backend/platform/logger"
)

// HealthChecker reports readiness of one backing dependency.
type HealthChecker interface {
	Name() string
	Ping(ctx context.Context) error
}

// Options carries everything the router needs beyond the modules themselves.
type Options struct {
	Config   config.HTTPConfig
	Logger   *logger.Logger
	Checkers []HealthChecker
}

// New assembles the engine: middleware stack, CORS, health endpoints and
// every module's routes under /api/v1.
func New(opts Options, modules ...apphttp.Module) *gin.Engine {
	if !opts.Config.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(httpkit.RequestLogger(opts.Logger))
	engine.Use(httpkit.SecurityHeaders())
	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
		AllowCredentials: opts.Config.GetCORSAllowCreds(),
		MaxAge:           12 * time.Hour,
	}
	if opts.Config.GetCORSAllowAll() {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = opts.Config.GetCORSOrigins()
	}
	engine.Use(cors.New(corsCfg))

	limiter := httpkit.NewIPRateLimiter(rate.Limit(2), 10, opts.Logger)

	root := engine.Group("/")
	root.GET("/api/health", healthHandler(opts.Checkers))

	api := engine.Group("/api/v1")
	api.Use(limiter.RateLimit())

	rc := apphttp.RouterContext{
		API:    api,
		Root:   root,
		Logger: opts.Logger,
	}
	for _, m := range modules {
		m.RegisterRoutes(rc)
		opts.Logger.Info("module routes registered", "module", m.Name())
	}
	return engine
}

func healthHandler(checkers []HealthChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		deps := gin.H{}
		for _, checker := range checkers {
			if err := checker.Ping(ctx); err != nil {
				status = http.StatusServiceUnavailable
				deps[checker.Name()] = "down"
				continue
			}
			deps[checker.Name()] = "up"
		}
		c.JSON(status, gin.H{
			"status":       statusWord(status),
			"dependencies": deps,
			"time":         time.Now().UTC().Format(time.RFC3339),
		})
	}
}

func statusWord(status int) string {
	if status == http.StatusOK {
		return "ok"
	}
	return "degraded"
}
