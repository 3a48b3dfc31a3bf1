package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tournament-arena/internal/auth"
	"tournament-arena/internal/services"
)

// UserHandler handles user-related endpoints
type UserHandler struct {
	userService       *services.UserService
	tournamentService *services.TournamentService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *services.UserService, tournamentService *services.TournamentService) *UserHandler {
	return &UserHandler{
		userService:       userService,
		tournamentService: tournamentService,
	}
}

// GetProfile returns the current user's profile and balances
func (h *UserHandler) GetProfile(c *gin.Context) {
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
		"user": gin.H{
			"uid":             user.UID,
			"email":           user.Email,
			"display_name":    user.DisplayName,
			"account_balance": user.AccountBalance,
			"game_balance":    user.GameBalance,
			"role":            user.Role,
			"email_verified":  user.EmailVerified,
			"created_at":      user.CreatedAt,
		},
	})
}

// GetTransactions returns the current user's ledger history
func (h *UserHandler) GetTransactions(c *gin.Context) {
	uid, ok := auth.GetUserUID(c)
	if !ok {
		unauthorized(c)
		return
	}

	limit, offset := pagination(c)
	txns, total, err := h.userService.ListTransactions(c.Request.Context(), uid, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    txns,
		"total":   total,
	})
}

// GetTournaments returns the tournaments the current user joined
func (h *UserHandler) GetTournaments(c *gin.Context) {
	uid, ok := auth.GetUserUID(c)
	if !ok {
		unauthorized(c)
		return
	}

	tournaments, err := h.tournamentService.ListUserTournaments(c.Request.Context(), uid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tournaments,
	})
}
