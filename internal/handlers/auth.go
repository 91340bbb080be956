package handlers

import (
	"net/http"
	"strings"

	"rigtally/internal/database"
	"rigtally/internal/logger"
	"rigtally/internal/models"

	"github.com/gin-gonic/gin"
)

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Email    string `json:"email"`
}

func (h *Handlers) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if len(req.Username) < 3 || len(req.Username) > 30 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username must be between 3 and 30 characters"})
		return
	}
	if len(req.Password) < 8 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password must be at least 8 characters"})
		return
	}

	user, err := database.CreateUser(h.db, req.Username, req.Password)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			c.JSON(http.StatusConflict, gin.H{"error": "Username already exists"})
			return
		}

		// With no reachable database, fall back to the local store so a
		// fresh install still works offline.
		localUser, localErr := h.local.RegisterUser(req.Username, req.Password)
		if localErr != nil {
			logger.Error("Failed to register user", "error", err, "local_error", localErr)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create account"})
			return
		}

		logger.Warn("Registered user in local store fallback", "user_id", localUser.ID)
		c.JSON(http.StatusCreated, gin.H{"id": localUser.ID, "username": localUser.Username, "local": true})
		return
	}

	if h.email.IsEnabled() && req.Email != "" {
		if err := h.email.SendWelcomeEmail(user, req.Email); err != nil {
			logger.Warn("Failed to send welcome email", "user_id", user.ID, "error", err)
		}
	}

	h.startSession(c, user)
}

func (h *Handlers) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username and password are required"})
		return
	}

	user, err := database.AuthenticateUser(h.db, strings.TrimSpace(req.Username), req.Password)
	if err != nil {
		localUser, localErr := h.local.LoginUser(strings.TrimSpace(req.Username), req.Password)
		if localErr != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}

		// Local identity persists in the store document; the resolver
		// picks it up on its next fallback resolution.
		c.JSON(http.StatusOK, gin.H{"id": localUser.ID, "username": localUser.Username, "local": true})
		return
	}

	h.startSession(c, user)
}

func (h *Handlers) handleLogout(c *gin.Context) {
	if sessionCookie, err := c.Cookie("session_id"); err == nil {
		if err := database.DeleteSession(h.db, sessionCookie); err != nil {
			logger.Warn("Failed to delete session", "session_id", sessionCookie, "error", err)
		}
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("session_id", "", -1, "/", "", true, true)
	h.resolver.SessionEnded()

	if err := h.local.ClearCurrentUser(); err != nil {
		logger.Warn("Failed to clear local identity", "error", err)
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) startSession(c *gin.Context, user *models.User) {
	session, err := database.CreateSession(h.db, user.ID, h.cfg.SessionDuration)
	if err != nil {
		logger.Error("Failed to create session", "user_id", user.ID, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie("session_id", session.ID, int(h.cfg.SessionDuration.Seconds()), "/", "", true, true)
	h.resolver.SessionStarted(user.ID)

	c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username})
}
