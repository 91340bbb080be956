package handlers

import (
	"database/sql"

	"rigtally/internal/config"
	"rigtally/internal/email"
	"rigtally/internal/middleware"
	"rigtally/internal/models"
	"rigtally/internal/service"
	"rigtally/internal/session"
	"rigtally/internal/store"

	"github.com/gin-gonic/gin"
)

// Handlers bundles the dependencies the route handlers share.
type Handlers struct {
	db       *sql.DB
	cfg      *config.Config
	svc      *service.Service
	resolver *session.Resolver
	local    *store.LocalStore
	email    *email.Service
}

func New(db *sql.DB, cfg *config.Config, svc *service.Service, resolver *session.Resolver, local *store.LocalStore, emailService *email.Service) *Handlers {
	return &Handlers{
		db:       db,
		cfg:      cfg,
		svc:      svc,
		resolver: resolver,
		local:    local,
		email:    emailService,
	}
}

func (h *Handlers) SetupRoutes(r *gin.Engine) {
	r.Use(middleware.LogRequests())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(h.cfg.AllowedOrigins))
	r.Use(middleware.RateLimit(h.cfg))

	r.POST("/register", middleware.AuthRateLimit(h.cfg), h.handleRegister)
	r.POST("/login", middleware.AuthRateLimit(h.cfg), h.handleLogin)
	r.POST("/logout", middleware.AuthRequired(h.db), h.handleLogout)

	api := r.Group("/api")
	api.Use(middleware.AuthRequired(h.db))
	api.Use(h.notifyResolver())
	{
		api.GET("/parts", h.handleListParts)
		api.POST("/parts", h.handleSavePart)
		api.PUT("/parts/orders", h.handleUpdatePartOrders)
		api.DELETE("/parts/:id", h.handleDeletePart)
		api.POST("/parts/seed", h.handleSeedParts)

		api.GET("/setups", h.handleListSetups)
		api.POST("/setups", h.handleCreateSetup)
		api.GET("/setups/:id/parts", h.handleGetSetupParts)
		api.POST("/setups/:id/load", h.handleLoadSetup)
		api.PUT("/setups/:id", h.handleUpdateSetup)
		api.DELETE("/setups/:id", h.handleDeleteSetup)

		api.GET("/account/currency", h.handleGetCurrency)
		api.PUT("/account/currency", h.handleSetCurrency)
	}
}

// notifyResolver feeds each validated session into the session resolver,
// so the cached identity tracks the cookie without an extra lookup.
func (h *Handlers) notifyResolver() gin.HandlerFunc {
	return func(c *gin.Context) {
		if user, exists := c.Get("user"); exists {
			h.resolver.SessionStarted(user.(*models.User).ID)
		}
		c.Next()
	}
}
