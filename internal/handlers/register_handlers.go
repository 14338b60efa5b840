package handlers

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/credexa/carbon_ledger_app/cmd/docs"
	portssvc "github.com/credexa/carbon_ledger_app/internal/core/ports/services"
	"github.com/credexa/carbon_ledger_app/internal/middleware"
	"github.com/credexa/carbon_ledger_app/internal/platform/config"
)

// RegisterRoutes sets up all application routes, injecting dependencies using interfaces
func RegisterRoutes(
	r *gin.Engine,
	cfg *config.Config,
	services *portssvc.ServiceContainer,
) {
	// Health check route
	r.GET("/health", func(c *gin.Context) {
		c.String(200, "OK")
	})

	// Public admin login route (rate limited)
	registerAuthRoutes(r, cfg)

	// Public routes plus the admin group behind the bearer-token check
	public := r.Group("")
	admin := r.Group("", middleware.AdminAuthMiddleware(cfg.JWTSecret))

	registerBalanceRoutes(public, admin, services.Ledger)
	registerMarketplaceRoutes(public, services.Marketplace)
	registerTicketRoutes(public, admin, services.Ticket)

	// Swagger routes (not exposed in production)
	setupSwaggerRoutes(r, cfg)
}

// setupSwaggerRoutes configures the swagger documentation routes
func setupSwaggerRoutes(r *gin.Engine, cfg *config.Config) {
	if cfg.IsProduction {
		//no swagger in prod
		return
	}
	docs.SwaggerInfo.BasePath = "/"
	swagger := r.Group("/swagger")
	swagger.GET("/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
}
