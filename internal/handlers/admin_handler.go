package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"tournament-arena/internal/auth"
	"tournament-arena/internal/models"
	"tournament-arena/internal/repository"
	"tournament-arena/internal/services"
)

type AdminHandler struct {
	adminService      *services.AdminService
	tournamentService *services.TournamentService
	alertService      *services.AlertService
	ledger            *services.LedgerService
}

func NewAdminHandler(
	adminService *services.AdminService,
	tournamentService *services.TournamentService,
	alertService *services.AlertService,
	ledger *services.LedgerService,
) *AdminHandler {
	return &AdminHandler{
		adminService:      adminService,
		tournamentService: tournamentService,
		alertService:      alertService,
		ledger:            ledger,
	}
}

// AdminMiddleware checks the caller's stored role
func (h *AdminHandler) AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		uid, ok := auth.GetUserUID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized", "code": "unauthorized"})
			return
		}

		isAdmin, err := h.adminService.IsAdmin(c.Request.Context(), uid)
		if err != nil && !errors.Is(err, services.ErrUserNotFound) {
			log.WithError(err).WithField("user_uid", uid).Error("Admin check failed")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "code": "internal_error"})
			return
		}
		if !isAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Forbidden", "code": "forbidden"})
			return
		}

		c.Set("admin_uid", uid)
		c.Next()
	}
}

// GetDashboard returns admin dashboard data
func (h *AdminHandler) GetDashboard(c *gin.Context) {
	dashboard, err := h.adminService.GetDashboard(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": dashboard})
}

// GetUsers returns all users
func (h *AdminHandler) GetUsers(c *gin.Context) {
	limit, offset := pagination(c)
	users, total, err := h.adminService.GetAllUsers(c.Request.Context(), c.Query("search"), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    users,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// SetUserRole grants or revokes admin
func (h *AdminHandler) SetUserRole(c *gin.Context) {
	var req struct {
		Role models.UserRole `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "role is required")
		return
	}

	if err := h.adminService.SetRole(c.Request.Context(), c.GetString("admin_uid"), c.Param("uid"), req.Role); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AdjustBalance credits or debits a user's wallet
func (h *AdminHandler) AdjustBalance(c *gin.Context) {
	var req struct {
		Amount decimal.Decimal `json:"amount"`
		Wallet models.Wallet   `json:"wallet"`
		Reason string          `json:"reason"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid adjustment request")
		return
	}

	txn, err := h.ledger.AdjustBalance(c.Request.Context(), c.GetString("admin_uid"), c.Param("uid"), req.Wallet, req.Amount, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": txn})
}

// GetTransactions lists ledger records across users
func (h *AdminHandler) GetTransactions(c *gin.Context) {
	limit, offset := pagination(c)
	txns, total, err := h.adminService.GetTransactions(c.Request.Context(), repository.TransactionFilter{
		UserUID: c.Query("user_uid"),
		Type:    models.TransactionType(c.Query("type")),
		Status:  models.TransactionStatus(c.Query("status")),
		Limit:   limit,
		Offset:  offset,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": txns, "total": total})
}

// GetAdminLogs returns admin activity logs
func (h *AdminHandler) GetAdminLogs(c *gin.Context) {
	limit, offset := pagination(c)
	logs, err := h.adminService.GetAdminLogs(c.Request.Context(), limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": logs})
}

// CreateTournament creates a tournament
func (h *AdminHandler) CreateTournament(c *gin.Context) {
	var req services.TournamentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid tournament: "+err.Error())
		return
	}

	tournament, err := h.tournamentService.CreateTournament(c.Request.Context(), c.GetString("admin_uid"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": tournament})
}

// UpdateTournament edits a tournament
func (h *AdminHandler) UpdateTournament(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.TournamentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid tournament: "+err.Error())
		return
	}

	tournament, err := h.tournamentService.UpdateTournament(c.Request.Context(), c.GetString("admin_uid"), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": tournament})
}

// UpdateTournamentStatus advances a tournament's lifecycle
func (h *AdminHandler) UpdateTournamentStatus(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		Status models.TournamentStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "status is required")
		return
	}

	tournament, err := h.tournamentService.UpdateStatus(c.Request.Context(), c.GetString("admin_uid"), id, req.Status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": tournament})
}

// DeleteTournament removes a tournament without participants
func (h *AdminHandler) DeleteTournament(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.tournamentService.DeleteTournament(c.Request.Context(), c.GetString("admin_uid"), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// AwardPrize pays a participant
func (h *AdminHandler) AwardPrize(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		UserUID string          `json:"user_uid" binding:"required"`
		Amount  decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "user_uid and amount are required")
		return
	}

	txn, err := h.ledger.AwardPrize(c.Request.Context(), c.GetString("admin_uid"), id, req.UserUID, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": txn})
}

// GetAlerts lists every alert
func (h *AdminHandler) GetAlerts(c *gin.Context) {
	alerts, err := h.alertService.ListAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": alerts})
}

// CreateAlert publishes an alert
func (h *AdminHandler) CreateAlert(c *gin.Context) {
	var req services.AlertInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid alert")
		return
	}

	alert, err := h.alertService.Create(c.Request.Context(), c.GetString("admin_uid"), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"success": true, "data": alert})
}

// UpdateAlert edits an alert
func (h *AdminHandler) UpdateAlert(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req services.AlertInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid alert")
		return
	}

	alert, err := h.alertService.Update(c.Request.Context(), c.GetString("admin_uid"), id, req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": alert})
}

// DeleteAlert removes an alert
func (h *AdminHandler) DeleteAlert(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	if err := h.alertService.Delete(c.Request.Context(), c.GetString("admin_uid"), id); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
