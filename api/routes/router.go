// api/routes/router.go
package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"gatherly/internal/events"
	"gatherly/internal/registrations"
	"gatherly/internal/shared/config"
	"gatherly/internal/shared/database"
	"gatherly/internal/users"
	"gatherly/pkg/cache"
	"gatherly/pkg/retry"
)

// Router holds all route dependencies
type Router struct {
	config       *config.Config
	db           *database.DB
	cacheService cache.Service

	// Repositories are shared between feature groups; the registration
	// engine reads events and users through the same repositories the
	// CRUD surfaces use.
	userRepo  users.Repository
	eventRepo events.Repository
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, cacheService cache.Service) *Router {
	return &Router{
		config:       cfg,
		db:           db,
		cacheService: cacheService,
	}
}

// storeRetry derives the per-store-call retry policy from the engine config.
func (r *Router) storeRetry() retry.Config {
	return retry.Config{
		Attempts:    r.config.Engine.TransientAttempts,
		BackoffBase: r.config.Engine.BackoffBase,
		BackoffCap:  r.config.Engine.BackoffCap,
		CallTimeout: r.config.Engine.StoreCallTimeout,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	// Health check and basic info endpoints
	r.setupHealthRoutes(engine)

	// API routes
	api := engine.Group(r.config.APIPrefix)
	{
		r.setupUserRoutes(api)
		r.setupEventRoutes(api)
		r.setupRegistrationRoutes(api)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now().UTC(),
				"service":   "gatherly-backend",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC(),
			"service":   "gatherly-backend",
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	engine.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":   "gatherly-backend",
			"status":    "operational",
			"timestamp": time.Now().UTC(),
		})
	})
}

// setupUserRoutes configures user management routes
func (r *Router) setupUserRoutes(rg *gin.RouterGroup) {
	r.userRepo = users.NewRepository(r.db.GetPostgreSQL(), r.storeRetry())
	userService := users.NewService(r.userRepo)
	userController := users.NewController(userService)

	users.SetupUserRoutes(rg, userController)
}

// setupEventRoutes configures event management routes
func (r *Router) setupEventRoutes(rg *gin.RouterGroup) {
	r.eventRepo = events.NewRepository(r.db.GetPostgreSQL(), r.storeRetry())
	eventService := events.NewService(
		r.eventRepo,
		r.cacheService,
		r.config.Redis.EventDetailTTL,
		r.config.Redis.EventListTTL,
	)
	eventController := events.NewController(eventService)

	events.SetupEventRoutes(rg, eventController)
}

// setupRegistrationRoutes configures the registration engine routes
func (r *Router) setupRegistrationRoutes(rg *gin.RouterGroup) {
	registrationRepo := registrations.NewRepository(r.db.GetPostgreSQL(), r.storeRetry())
	registrationService := registrations.NewService(
		registrationRepo,
		r.eventRepo,
		r.userRepo,
		r.cacheService,
		r.config.Engine,
	)
	registrationController := registrations.NewController(registrationService)

	registrations.SetupRegistrationRoutes(rg, registrationController)
}
