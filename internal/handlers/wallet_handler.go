package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"tournament-arena/internal/auth"
	"tournament-arena/internal/services"
)

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// WalletHandler handles deposits and withdrawals
type WalletHandler struct {
	payments *services.PaymentService
	ledger   *services.LedgerService
}

// NewWalletHandler creates a new WalletHandler
func NewWalletHandler(payments *services.PaymentService, ledger *services.LedgerService) *WalletHandler {
	return &WalletHandler{
		payments: payments,
		ledger:   ledger,
	}
}

// Deposit starts a gateway checkout for the caller
// POST /api/wallet/deposit
func (h *WalletHandler) Deposit(c *gin.Context) {
	uid, ok := auth.GetUserUID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "amount must be a number")
		return
	}

	result, err := h.payments.InitiateDeposit(c.Request.Context(), uid, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    result,
	})
}

// Withdraw debits the caller's account balance
// POST /api/wallet/withdraw
func (h *WalletHandler) Withdraw(c *gin.Context) {
	uid, ok := auth.GetUserUID(c)
	if !ok {
		unauthorized(c)
		return
	}

	var req amountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "amount must be a number")
		return
	}

	result, err := h.ledger.Withdraw(c.Request.Context(), uid, req.Amount)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    result,
	})
}
