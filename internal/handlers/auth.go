package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tournament-arena/internal/auth"
	"tournament-arena/internal/services"
)

// AuthHandler handles identity sync endpoints
type AuthHandler struct {
	userService *services.UserService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(userService *services.UserService) *AuthHandler {
	return &AuthHandler{userService: userService}
}

// Sync registers the caller on first sign-in and refreshes identity attributes.
// POST /auth/sync
func (h *AuthHandler) Sync(c *gin.Context) {
	identity, ok := auth.GetIdentity(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req struct {
		DisplayName string `json:"display_name" binding:"max=100"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err.Error())
			return
		}
	}

	user, err := h.userService.SyncUser(c.Request.Context(), identity, req.DisplayName)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}

// GetMe returns the caller's user record
// GET /auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	uid, ok := auth.GetUserUID(c)
	if !ok {
		unauthorized(c)
		return
	}

	user, err := h.userService.GetUser(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    user,
	})
}
