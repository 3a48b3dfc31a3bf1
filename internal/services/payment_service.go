package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tournament-arena/internal/events"
	"tournament-arena/internal/models"
	"tournament-arena/internal/payment"
	"tournament-arena/internal/repository"
)

// Gateway starts hosted checkouts
type Gateway interface {
	CreateCharge(ctx context.Context, charge payment.ChargeRequest) (*payment.ChargeResponse, error)
}

// PaymentSettings configures deposit initiation
type PaymentSettings struct {
	MinDeposit  decimal.Decimal
	RedirectURL string
	CancelURL   string
	WebhookURL  string
}

// DepositResult is returned to the client to continue checkout
type DepositResult struct {
	TransactionID uuid.UUID `json:"transaction_id"`
	PaymentURL    string    `json:"payment_url"`
}

// WebhookOutcome describes what a webhook delivery did
type WebhookOutcome string

const (
	OutcomeCredited         WebhookOutcome = "credited"
	OutcomeAlreadyProcessed WebhookOutcome = "already_processed"
	OutcomeMarkedFailed     WebhookOutcome = "marked_failed"
	OutcomeIgnored          WebhookOutcome = "ignored"
)

var errAlreadyProcessed = errors.New("deposit already processed")

// PaymentService bridges deposits between the ledger and the payment gateway
type PaymentService struct {
	repo      *repository.Repository
	gateway   Gateway
	publisher events.Publisher
	settings  PaymentSettings
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(repo *repository.Repository, gateway Gateway, publisher events.Publisher, settings PaymentSettings) *PaymentService {
	return &PaymentService{
		repo:      repo,
		gateway:   gateway,
		publisher: publisher,
		settings:  settings,
	}
}

// InitiateDeposit records a pending deposit and asks the gateway for a checkout URL.
// If the gateway call fails the pending record is marked failed.
func (s *PaymentService) InitiateDeposit(ctx context.Context, uid string, amount decimal.Decimal) (*DepositResult, error) {
	if !amount.IsPositive() {
		return nil, validationf("deposit amount must be positive")
	}
	if amount.LessThan(s.settings.MinDeposit) {
		return nil, validationf("minimum deposit is %s", s.settings.MinDeposit.String())
	}

	user, err := s.repo.GetUser(ctx, uid)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	txn := &models.Transaction{
		UserUID:     uid,
		Amount:      amount,
		Type:        models.TransactionTypeDeposit,
		Status:      models.TransactionStatusPending,
		Wallet:      models.WalletAccount,
		Description: "Deposit awaiting gateway confirmation",
	}
	if err := s.repo.CreateTransaction(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to record deposit: %w", err)
	}

	name := user.DisplayName
	if name == "" {
		name = user.Email
	}

	resp, err := s.gateway.CreateCharge(ctx, payment.ChargeRequest{
		FullName:    name,
		Email:       user.Email,
		Amount:      amount,
		RedirectURL: s.settings.RedirectURL,
		CancelURL:   s.settings.CancelURL,
		WebhookURL:  s.settings.WebhookURL,
		Metadata: map[string]string{
			"transaction_id": txn.ID.String(),
			"user_uid":       uid,
		},
	})
	if err != nil {
		log.WithError(err).WithFields(log.Fields{
			"user_uid":       uid,
			"transaction_id": txn.ID.String(),
		}).Error("Payment gateway rejected deposit")
		s.markFailed(txn.ID, "Payment gateway error")
		return nil, fmt.Errorf("%w: %v", ErrPaymentGateway, err)
	}

	log.WithFields(log.Fields{
		"user_uid":       uid,
		"transaction_id": txn.ID.String(),
		"amount":         amount.String(),
	}).Info("Deposit initiated")

	return &DepositResult{
		TransactionID: txn.ID,
		PaymentURL:    resp.PaymentURL,
	}, nil
}

// markFailed ignores request cancellation
func (s *PaymentService) markFailed(id uuid.UUID, description string) {
	ok, err := s.repo.TransitionTransaction(context.Background(), id,
		models.TransactionStatusPending, models.TransactionStatusFailed,
		map[string]interface{}{"description": description})
	if err != nil || !ok {
		log.WithError(err).WithField("transaction_id", id.String()).Error("Failed to mark deposit as failed")
	}
}

// HandleWebhook reconciles a gateway notification with the deposit.
// A payment confirmation completes the deposit even after it was failed or
// expired locally. Redelivery of a completed notification never credits twice.
func (s *PaymentService) HandleWebhook(ctx context.Context, payload *payment.WebhookPayload) (WebhookOutcome, error) {
	id, err := uuid.Parse(payload.Metadata.TransactionID)
	if err != nil {
		return "", validationf("metadata.transaction_id must be a valid id")
	}

	txn, err := s.repo.GetTransaction(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", ErrTransactionNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to load transaction: %w", err)
	}

	if txn.Type != models.TransactionTypeDeposit {
		return "", validationf("transaction is not a deposit")
	}
	if payload.Metadata.UserUID != "" && payload.Metadata.UserUID != txn.UserUID {
		return "", validationf("metadata.user_uid does not match the transaction")
	}

	fields := log.Fields{
		"transaction_id": txn.ID.String(),
		"user_uid":       txn.UserUID,
		"gateway_status": payload.Status,
		"gateway_ref":    payload.GatewayReference(),
	}

	if txn.Status == models.TransactionStatusCompleted {
		log.WithFields(fields).Info("Duplicate webhook for completed deposit")
		return OutcomeAlreadyProcessed, nil
	}

	switch status := payload.ParsedStatus(); status {
	case payment.StatusCompleted:
		if !payload.Amount.IsZero() && !payload.Amount.Equal(txn.Amount) {
			log.WithFields(fields).WithField("gateway_amount", payload.Amount.String()).
				Warn("Gateway amount differs from recorded deposit, crediting recorded amount")
		}
		if txn.Status != models.TransactionStatusPending {
			// The gateway took the money after we gave up on the deposit
			log.WithFields(fields).WithField("status", txn.Status).Warn("Payment confirmed for a locally closed deposit")
		}
		return s.completeDeposit(ctx, txn, payload.GatewayReference(), fields)
	case payment.StatusFailed, payment.StatusCancelled, payment.StatusExpired:
		if txn.Status != models.TransactionStatusPending {
			log.WithFields(fields).WithField("status", txn.Status).Info("Failure webhook for closed deposit ignored")
			return OutcomeIgnored, nil
		}
		return s.closeDeposit(ctx, txn, status, fields)
	default:
		log.WithFields(fields).Warn("Unrecognized webhook status, acknowledged without changes")
		return OutcomeIgnored, nil
	}
}

func (s *PaymentService) completeDeposit(ctx context.Context, txn *models.Transaction, gatewayRef string, fields log.Fields) (WebhookOutcome, error) {
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		updates := map[string]interface{}{"description": "Deposit confirmed by gateway"}
		if gatewayRef != "" {
			updates["gateway_transaction_id"] = gatewayRef
		}

		ok, err := tx.TransitionTransactionFrom(ctx, txn.ID, models.SettleableDepositStatuses(), models.TransactionStatusCompleted, updates)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePaymentEvent
		}
		if err != nil {
			return fmt.Errorf("failed to complete deposit: %w", err)
		}
		if !ok {
			return errAlreadyProcessed
		}

		credited, err := tx.CreditBalance(ctx, txn.UserUID, models.WalletAccount, txn.Amount)
		if err != nil {
			return fmt.Errorf("failed to credit deposit: %w", err)
		}
		if !credited {
			return ErrUserNotFound
		}
		return nil
	})

	switch {
	case errors.Is(err, errAlreadyProcessed):
		log.WithFields(fields).Info("Deposit completed by a concurrent delivery")
		return OutcomeAlreadyProcessed, nil
	case errors.Is(err, ErrUserNotFound):
		log.WithFields(fields).Error("Deposit owner no longer exists, webhook acknowledged without credit")
		return OutcomeIgnored, nil
	case err != nil:
		return "", err
	}

	log.WithFields(fields).WithField("amount", txn.Amount.String()).Info("Deposit credited")
	publish(ctx, s.publisher, events.New(events.SubjectDepositCompleted, txn.UserUID, txn.Amount, txn.ID.String()))
	return OutcomeCredited, nil
}

func (s *PaymentService) closeDeposit(ctx context.Context, txn *models.Transaction, status payment.WebhookStatus, fields log.Fields) (WebhookOutcome, error) {
	target := models.TransactionStatusFailed
	switch status {
	case payment.StatusCancelled:
		target = models.TransactionStatusCancelled
	case payment.StatusExpired:
		target = models.TransactionStatusExpired
	}

	ok, err := s.repo.TransitionTransaction(ctx, txn.ID, models.TransactionStatusPending, target,
		map[string]interface{}{"description": "Deposit " + status.String() + " at gateway"})
	if err != nil {
		return "", fmt.Errorf("failed to close deposit: %w", err)
	}
	if !ok {
		log.WithFields(fields).Info("Deposit already closed by a concurrent delivery")
		return OutcomeAlreadyProcessed, nil
	}

	log.WithFields(fields).WithField("status", target).Info("Deposit closed without credit")
	publish(ctx, s.publisher, events.New(events.SubjectDepositFailed, txn.UserUID, txn.Amount, txn.ID.String()))
	return OutcomeMarkedFailed, nil
}
