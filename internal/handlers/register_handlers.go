package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/SscSPs/secure_pay/cmd/docs"
	portssvc "github.com/SscSPs/secure_pay/internal/core/ports/services"
	"github.com/SscSPs/secure_pay/internal/middleware"
	"github.com/SscSPs/secure_pay/internal/platform/config"
	"github.com/SscSPs/secure_pay/internal/platform/metrics"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/ulule/limiter/v3"
)

// RouteOptions carries optional infrastructure for RegisterRoutes.
type RouteOptions struct {
	LoginLimiter *limiter.Limiter
	Metrics      *metrics.Registry
}

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
	opts RouteOptions,
) {
	registerValidators()

	if cfg.ClientOrigin != "" {
		r.Use(cors.New(corsConfig(cfg.ClientOrigin)))
	}
	if opts.Metrics != nil {
		r.Use(opts.Metrics.Middleware())
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}

	registerHealthRoutes(r, services.Health)

	v1 := r.Group("/api/v1")
	registerAuthRoutes(v1, services, opts.LoginLimiter)
	registerGoogleOAuthRoutes(v1, services)

	authed := v1.Group("", middleware.AuthMiddleware(services.Token))
	registerAccountRoutes(authed, services)
	registerAdminRoutes(authed, services)

	setupSwaggerRoutes(r, cfg)
}

func corsConfig(origins string) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowOrigins = strings.Split(origins, ",")
	cc.AllowHeaders = append(cc.AllowHeaders, "Authorization", IdempotencyKeyHeader, middleware.RequestIDHeader)
	cc.ExposeHeaders = []string{middleware.RequestIDHeader, "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"}
	cc.MaxAge = 12 * time.Hour
	return cc
}

// health godoc
// @Summary Readiness check
// @Description Pings the account store.
// @Tags root
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} dto.ErrorResponse
// @Router /health [get]
func registerHealthRoutes(r *gin.Engine, health portssvc.HealthSvc) {
	r.GET("/health", func(c *gin.Context) {
		if err := health.Check(c.Request.Context()); err != nil {
			respondError(c, err, "Health check failed")
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/api/v1"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
