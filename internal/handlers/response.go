package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"

	"tournament-arena/internal/auth"
	"tournament-arena/internal/services"
)

// respondError maps service errors onto HTTP responses. Unknown errors are
// logged and reported without detail.
func respondError(c *gin.Context, err error) {
	status, code, message := classify(err)

	if status == http.StatusInternalServerError {
		uid, _ := auth.GetUserUID(c)
		log.WithError(err).WithFields(log.Fields{
			"method":   c.Request.Method,
			"path":     c.FullPath(),
			"user_uid": uid,
		}).Error("Request failed")
	}

	c.JSON(status, gin.H{
		"error": message,
		"code":  code,
	})
}

func classify(err error) (int, string, string) {
	switch {
	case services.IsValidation(err):
		return http.StatusBadRequest, "invalid_request", err.Error()

	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, "user_not_found", services.ErrUserNotFound.Error()
	case errors.Is(err, services.ErrTournamentNotFound):
		return http.StatusNotFound, "tournament_not_found", services.ErrTournamentNotFound.Error()
	case errors.Is(err, services.ErrTransactionNotFound):
		return http.StatusNotFound, "transaction_not_found", services.ErrTransactionNotFound.Error()
	case errors.Is(err, services.ErrAlertNotFound):
		return http.StatusNotFound, "alert_not_found", services.ErrAlertNotFound.Error()

	case errors.Is(err, services.ErrInsufficientBalance):
		return http.StatusConflict, "insufficient_balance", err.Error()
	case errors.Is(err, services.ErrTournamentNotJoinable):
		return http.StatusConflict, "tournament_not_joinable", err.Error()
	case errors.Is(err, services.ErrTournamentFull):
		return http.StatusConflict, "tournament_full", err.Error()
	case errors.Is(err, services.ErrTournamentHasPlayers):
		return http.StatusConflict, "tournament_has_players", err.Error()
	case errors.Is(err, services.ErrInvalidStatusTransition):
		return http.StatusConflict, "invalid_status_transition", err.Error()
	case errors.Is(err, services.ErrNotParticipant):
		return http.StatusConflict, "not_participant", err.Error()
	case errors.Is(err, services.ErrDuplicatePaymentEvent):
		return http.StatusConflict, "duplicate_payment_event", err.Error()

	case errors.Is(err, services.ErrPaymentGateway):
		return http.StatusBadGateway, "payment_gateway_error", "Payment gateway unavailable, please try again"
	}

	return http.StatusInternalServerError, "internal_error", "Internal server error"
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error": message,
		"code":  "invalid_request",
	})
}

func unauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error": "Unauthorized",
		"code":  "unauthorized",
	})
}

// pagination reads limit/offset query parameters
func pagination(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	return limit, offset
}

// idParam parses a numeric path parameter
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		badRequest(c, "invalid "+name)
		return 0, false
	}
	return uint(id), true
}
