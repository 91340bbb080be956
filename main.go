package main

import (
	"database/sql"
	"log"

	"rigtally/internal/config"
	"rigtally/internal/database"
	"rigtally/internal/email"
	"rigtally/internal/handlers"
	"rigtally/internal/logger"
	"rigtally/internal/service"
	"rigtally/internal/session"
	"rigtally/internal/store"

	"github.com/gin-gonic/gin"
)

// remoteSessions adapts the sessions table to the resolver's remote
// identity source.
type remoteSessions struct {
	db *sql.DB
}

func (r remoteSessions) CurrentUserID() (string, error) {
	return database.CurrentSessionUserID(r.db)
}

func main() {
	cfg := config.Load()
	logger.Initialize(logger.ParseLevel(cfg.LogLevel), cfg.IsDevelopment())

	db, err := database.Initialize(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to initialize database:", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	if err := database.CleanupExpiredSessions(db); err != nil {
		logger.Warn("Failed to cleanup expired sessions", "error", err)
	}

	localStore := store.NewLocalStore(cfg.LocalStorePath)
	remoteStore := store.NewRemoteStore(db)

	resolver := session.NewResolver(remoteSessions{db: db}, localStore)
	svc := service.New(resolver, remoteStore, localStore)

	emailService := email.NewService(cfg)
	if emailService.IsEnabled() {
		log.Println("Email service enabled with Mailgun")
	} else {
		log.Println("Email service disabled - Mailgun not configured")
	}

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()

	h := handlers.New(db, cfg, svc, resolver, localStore, emailService)
	h.SetupRoutes(r)

	log.Printf("Server starting on port %s", cfg.Port)
	log.Fatal(r.Run(":" + cfg.Port))
}
