package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tournament-arena/internal/events"
	"tournament-arena/internal/models"
	"tournament-arena/internal/repository"
)

const maxGameNameLength = 64

// JoinResult is the outcome of a join request
type JoinResult struct {
	AlreadyJoined bool                     `json:"already_joined"`
	Participation *models.TournamentPlayer `json:"participation,omitempty"`
	Transaction   *models.Transaction      `json:"transaction,omitempty"`
	Balance       decimal.Decimal          `json:"account_balance"`
}

// WithdrawResult is the outcome of a withdrawal
type WithdrawResult struct {
	Transaction *models.Transaction `json:"transaction"`
	Balance     decimal.Decimal     `json:"account_balance"`
}

// LedgerService owns every balance and joined_players mutation
type LedgerService struct {
	repo      *repository.Repository
	publisher events.Publisher
}

// NewLedgerService creates a new LedgerService
func NewLedgerService(repo *repository.Repository, publisher events.Publisher) *LedgerService {
	return &LedgerService{
		repo:      repo,
		publisher: publisher,
	}
}

// JoinTournament debits the entry fee and records the participation atomically.
// A repeated join returns AlreadyJoined without side effects.
func (s *LedgerService) JoinTournament(ctx context.Context, uid string, tournamentID uint, gameName string) (*JoinResult, error) {
	gameName = strings.TrimSpace(gameName)
	if gameName == "" {
		return nil, validationf("game name is required")
	}
	if len(gameName) > maxGameNameLength {
		return nil, validationf("game name must be at most %d characters", maxGameNameLength)
	}

	result := &JoinResult{}
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		tournament, err := tx.GetTournament(ctx, tournamentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTournamentNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load tournament: %w", err)
		}
		if tournament.Status != models.TournamentStatusUpcoming {
			return ErrTournamentNotJoinable
		}

		user, err := tx.GetUser(ctx, uid)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load user: %w", err)
		}

		// A repeated join reports already joined whatever the current balance.
		if _, err := tx.GetParticipation(ctx, uid, tournamentID); err == nil {
			return errAlreadyJoined
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check participation: %w", err)
		}
		if user.AccountBalance.LessThan(tournament.EntryFee) {
			return ErrInsufficientBalance
		}
		if tournament.IsFull() {
			return ErrTournamentFull
		}

		ok, err := tx.DebitBalance(ctx, uid, models.WalletAccount, tournament.EntryFee)
		if err != nil {
			return fmt.Errorf("failed to debit entry fee: %w", err)
		}
		if !ok {
			return ErrInsufficientBalance
		}

		player := &models.TournamentPlayer{
			UserUID:      uid,
			TournamentID: tournamentID,
			GameName:     gameName,
		}
		if err := tx.CreateParticipation(ctx, player); err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return errAlreadyJoined
			}
			return fmt.Errorf("failed to record participation: %w", err)
		}

		ok, err = tx.IncrementJoinedPlayers(ctx, tournamentID)
		if err != nil {
			return fmt.Errorf("failed to update player count: %w", err)
		}
		if !ok {
			return ErrTournamentFull
		}

		tid := tournamentID
		txn := &models.Transaction{
			UserUID:      uid,
			Amount:       tournament.EntryFee,
			Type:         models.TransactionTypeTournamentEntry,
			Status:       models.TransactionStatusCompleted,
			Wallet:       models.WalletAccount,
			TournamentID: &tid,
			Description:  fmt.Sprintf("Entry fee for tournament #%d: %s", tournament.ID, tournament.Title),
		}
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return fmt.Errorf("failed to record entry transaction: %w", err)
		}

		updated, err := tx.GetUser(ctx, uid)
		if err != nil {
			return fmt.Errorf("failed to reload user: %w", err)
		}

		result.Participation = player
		result.Transaction = txn
		result.Balance = updated.AccountBalance
		return nil
	})

	if errors.Is(err, errAlreadyJoined) {
		log.WithFields(log.Fields{"user_uid": uid, "tournament_id": tournamentID}).Debug("Join ignored, already joined")
		return s.alreadyJoined(ctx, uid, tournamentID)
	}
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"user_uid":      uid,
		"tournament_id": tournamentID,
		"entry_fee":     result.Transaction.Amount.String(),
	}).Info("User joined tournament")

	publish(ctx, s.publisher, events.New(events.SubjectTournamentJoined, uid, result.Transaction.Amount, fmt.Sprint(tournamentID)))
	return result, nil
}

func (s *LedgerService) alreadyJoined(ctx context.Context, uid string, tournamentID uint) (*JoinResult, error) {
	result := &JoinResult{AlreadyJoined: true}

	player, err := s.repo.GetParticipation(ctx, uid, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to load participation: %w", err)
	}
	result.Participation = player

	user, err := s.repo.GetUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	result.Balance = user.AccountBalance

	return result, nil
}

// Withdraw debits the account balance and records a completed withdrawal
func (s *LedgerService) Withdraw(ctx context.Context, uid string, amount decimal.Decimal) (*WithdrawResult, error) {
	if !amount.IsPositive() {
		return nil, validationf("withdrawal amount must be positive")
	}

	result := &WithdrawResult{}
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := debitOrExplain(ctx, tx, uid, models.WalletAccount, amount); err != nil {
			return err
		}

		txn := &models.Transaction{
			UserUID:     uid,
			Amount:      amount,
			Type:        models.TransactionTypeWithdrawal,
			Status:      models.TransactionStatusCompleted,
			Wallet:      models.WalletAccount,
			Description: "Withdrawal",
		}
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return fmt.Errorf("failed to record withdrawal: %w", err)
		}

		user, err := tx.GetUser(ctx, uid)
		if err != nil {
			return fmt.Errorf("failed to reload user: %w", err)
		}

		result.Transaction = txn
		result.Balance = user.AccountBalance
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"user_uid": uid, "amount": amount.String()}).Info("Withdrawal completed")
	publish(ctx, s.publisher, events.New(events.SubjectWithdrawalCompleted, uid, amount, result.Transaction.ID.String()))
	return result, nil
}

// AdjustBalance applies a signed admin correction to one of the user's wallets
func (s *LedgerService) AdjustBalance(ctx context.Context, adminUID, targetUID string, wallet models.Wallet, amount decimal.Decimal, reason string) (*models.Transaction, error) {
	if wallet == "" {
		wallet = models.WalletAccount
	}
	if !wallet.IsValid() {
		return nil, validationf("unknown wallet %q", wallet)
	}
	if amount.IsZero() {
		return nil, validationf("adjustment amount must not be zero")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "Admin adjustment"
	}

	var txn *models.Transaction
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if amount.IsNegative() {
			if err := debitOrExplain(ctx, tx, targetUID, wallet, amount.Neg()); err != nil {
				return err
			}
		} else {
			ok, err := tx.CreditBalance(ctx, targetUID, wallet, amount)
			if err != nil {
				return fmt.Errorf("failed to credit balance: %w", err)
			}
			if !ok {
				return ErrUserNotFound
			}
		}

		txn = &models.Transaction{
			UserUID:     targetUID,
			Amount:      amount,
			Type:        models.TransactionTypeAdjustment,
			Status:      models.TransactionStatusCompleted,
			Wallet:      wallet,
			Description: reason,
		}
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return fmt.Errorf("failed to record adjustment: %w", err)
		}

		return logAdminAction(ctx, tx, adminUID, models.ActionAdjustBalance, "USER", targetUID, models.JSONB{
			"amount":         amount.String(),
			"wallet":         string(wallet),
			"reason":         reason,
			"transaction_id": txn.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"admin_uid": adminUID,
		"user_uid":  targetUID,
		"wallet":    wallet,
		"amount":    amount.String(),
	}).Info("Balance adjusted")
	publish(ctx, s.publisher, events.New(events.SubjectBalanceAdjusted, targetUID, amount, txn.ID.String()))
	return txn, nil
}

// AwardPrize credits a tournament participant and records the payout
func (s *LedgerService) AwardPrize(ctx context.Context, adminUID string, tournamentID uint, winnerUID string, amount decimal.Decimal) (*models.Transaction, error) {
	if !amount.IsPositive() {
		return nil, validationf("prize amount must be positive")
	}
	if winnerUID == "" {
		return nil, validationf("winner uid is required")
	}

	var txn *models.Transaction
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		tournament, err := tx.GetTournament(ctx, tournamentID)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTournamentNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load tournament: %w", err)
		}
		if tournament.Status == models.TournamentStatusCancelled {
			return ErrTournamentNotJoinable
		}

		if _, err := tx.GetParticipation(ctx, winnerUID, tournamentID); errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotParticipant
		} else if err != nil {
			return fmt.Errorf("failed to check participation: %w", err)
		}

		ok, err := tx.CreditBalance(ctx, winnerUID, models.WalletAccount, amount)
		if err != nil {
			return fmt.Errorf("failed to credit prize: %w", err)
		}
		if !ok {
			return ErrUserNotFound
		}

		tid := tournamentID
		txn = &models.Transaction{
			UserUID:      winnerUID,
			Amount:       amount,
			Type:         models.TransactionTypeTournamentPrize,
			Status:       models.TransactionStatusCompleted,
			Wallet:       models.WalletAccount,
			TournamentID: &tid,
			Description:  fmt.Sprintf("Prize for tournament #%d: %s", tournament.ID, tournament.Title),
		}
		if err := tx.CreateTransaction(ctx, txn); err != nil {
			return fmt.Errorf("failed to record prize: %w", err)
		}

		return logAdminAction(ctx, tx, adminUID, models.ActionAwardPrize, "TOURNAMENT", fmt.Sprint(tournamentID), models.JSONB{
			"winner_uid":     winnerUID,
			"amount":         amount.String(),
			"transaction_id": txn.ID.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"tournament_id": tournamentID,
		"winner_uid":    winnerUID,
		"amount":        amount.String(),
	}).Info("Prize awarded")
	publish(ctx, s.publisher, events.New(events.SubjectPrizeAwarded, winnerUID, amount, fmt.Sprint(tournamentID)))
	return txn, nil
}

// debitOrExplain runs the conditional debit and, when it matches no row,
// tells a missing user apart from insufficient funds.
func debitOrExplain(ctx context.Context, tx *repository.Repository, uid string, wallet models.Wallet, amount decimal.Decimal) error {
	ok, err := tx.DebitBalance(ctx, uid, wallet, amount)
	if err != nil {
		return fmt.Errorf("failed to debit balance: %w", err)
	}
	if ok {
		return nil
	}

	if _, err := tx.GetUser(ctx, uid); errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrUserNotFound
	} else if err != nil {
		return fmt.Errorf("failed to load user: %w", err)
	}
	return ErrInsufficientBalance
}
