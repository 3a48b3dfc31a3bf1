package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tournament-arena/internal/models"
	"tournament-arena/internal/repository"
)

// TournamentInput carries the admin-editable tournament fields
type TournamentInput struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Category    string                  `json:"category"`
	Date        time.Time               `json:"date"`
	EntryFee    decimal.Decimal         `json:"entry_fee"`
	PrizePool   decimal.Decimal         `json:"prize_pool"`
	MaxPlayers  *int                    `json:"max_players"`
	Status      models.TournamentStatus `json:"status"`
}

func (in *TournamentInput) validate() error {
	in.Title = strings.TrimSpace(in.Title)
	in.Category = strings.ToLower(strings.TrimSpace(in.Category))
	if in.Title == "" {
		return validationf("title is required")
	}
	if in.Date.IsZero() {
		return validationf("date is required")
	}
	if in.EntryFee.IsNegative() {
		return validationf("entry fee must not be negative")
	}
	if in.PrizePool.IsNegative() {
		return validationf("prize pool must not be negative")
	}
	if in.MaxPlayers != nil && *in.MaxPlayers <= 0 {
		return validationf("max players must be positive")
	}
	if in.Status != "" && !in.Status.IsValid() {
		return validationf("unknown status %q", in.Status)
	}
	return nil
}

// TournamentService handles tournament administration and listings
type TournamentService struct {
	repo *repository.Repository
}

// NewTournamentService creates a new TournamentService
func NewTournamentService(repo *repository.Repository) *TournamentService {
	return &TournamentService{repo: repo}
}

// CreateTournament creates an upcoming tournament
func (s *TournamentService) CreateTournament(ctx context.Context, adminUID string, in TournamentInput) (*models.Tournament, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	tournament := &models.Tournament{
		Title:       in.Title,
		Description: in.Description,
		Category:    in.Category,
		Date:        in.Date,
		EntryFee:    in.EntryFee,
		PrizePool:   in.PrizePool,
		MaxPlayers:  in.MaxPlayers,
		Status:      models.TournamentStatusUpcoming,
		CreatedBy:   adminUID,
	}

	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		if err := tx.CreateTournament(ctx, tournament); err != nil {
			return fmt.Errorf("failed to create tournament: %w", err)
		}
		return logAdminAction(ctx, tx, adminUID, models.ActionCreateTournament, "TOURNAMENT", fmt.Sprint(tournament.ID), models.JSONB{
			"title":     tournament.Title,
			"entry_fee": tournament.EntryFee.String(),
		})
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"tournament_id": tournament.ID, "admin_uid": adminUID}).Info("Tournament created")
	return tournament, nil
}

// UpdateTournament applies an explicit admin edit. Any valid status may be set here.
func (s *TournamentService) UpdateTournament(ctx context.Context, adminUID string, id uint, in TournamentInput) (*models.Tournament, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	var updated *models.Tournament
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		current, err := tx.GetTournament(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTournamentNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load tournament: %w", err)
		}
		if in.MaxPlayers != nil && *in.MaxPlayers < current.JoinedPlayers {
			return validationf("max players cannot be below the %d players already joined", current.JoinedPlayers)
		}

		status := in.Status
		if status == "" {
			status = current.Status
		}

		fields := map[string]interface{}{
			"title":       in.Title,
			"description": in.Description,
			"category":    in.Category,
			"date":        in.Date,
			"entry_fee":   in.EntryFee,
			"prize_pool":  in.PrizePool,
			"max_players": in.MaxPlayers,
			"status":      status,
		}
		ok, err := tx.UpdateTournamentFields(ctx, id, fields)
		if err != nil {
			return fmt.Errorf("failed to update tournament: %w", err)
		}
		if !ok {
			return validationf("max players cannot be below the players already joined")
		}

		if err := logAdminAction(ctx, tx, adminUID, models.ActionUpdateTournament, "TOURNAMENT", fmt.Sprint(id), models.JSONB{
			"title":  in.Title,
			"status": string(status),
		}); err != nil {
			return err
		}

		updated, err = tx.GetTournament(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// UpdateStatus moves a tournament along its lifecycle
func (s *TournamentService) UpdateStatus(ctx context.Context, adminUID string, id uint, next models.TournamentStatus) (*models.Tournament, error) {
	if !next.IsValid() {
		return nil, validationf("unknown status %q", next)
	}

	var updated *models.Tournament
	err := s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		current, err := tx.GetTournament(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTournamentNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load tournament: %w", err)
		}
		if !current.Status.CanTransitionTo(next) {
			return fmt.Errorf("%w: %s to %s", ErrInvalidStatusTransition, current.Status, next)
		}

		ok, err := tx.TransitionTournamentStatus(ctx, id, current.Status, next)
		if err != nil {
			return fmt.Errorf("failed to update status: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: status changed concurrently", ErrInvalidStatusTransition)
		}

		if err := logAdminAction(ctx, tx, adminUID, models.ActionTournamentStatus, "TOURNAMENT", fmt.Sprint(id), models.JSONB{
			"from": string(current.Status),
			"to":   string(next),
		}); err != nil {
			return err
		}

		updated, err = tx.GetTournament(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{"tournament_id": id, "status": next}).Info("Tournament status changed")
	return updated, nil
}

// DeleteTournament removes a tournament nobody has joined
func (s *TournamentService) DeleteTournament(ctx context.Context, adminUID string, id uint) error {
	return s.repo.Transaction(ctx, func(tx *repository.Repository) error {
		current, err := tx.GetTournament(ctx, id)
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTournamentNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load tournament: %w", err)
		}

		deleted, err := tx.DeleteTournament(ctx, id)
		if err != nil {
			return fmt.Errorf("failed to delete tournament: %w", err)
		}
		if !deleted {
			return ErrTournamentHasPlayers
		}

		return logAdminAction(ctx, tx, adminUID, models.ActionDeleteTournament, "TOURNAMENT", fmt.Sprint(id), models.JSONB{
			"title": current.Title,
		})
	})
}

// GetTournament retrieves a tournament by ID
func (s *TournamentService) GetTournament(ctx context.Context, id uint) (*models.Tournament, error) {
	tournament, err := s.repo.GetTournament(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTournamentNotFound
	}
	return tournament, err
}

// ListTournaments returns a page of tournaments
func (s *TournamentService) ListTournaments(ctx context.Context, filter repository.TournamentFilter) ([]models.Tournament, int64, error) {
	if filter.Status != "" && !filter.Status.IsValid() {
		return nil, 0, validationf("unknown status %q", filter.Status)
	}
	filter.Limit, filter.Offset = repository.Page(filter.Limit, filter.Offset, 100)
	return s.repo.ListTournaments(ctx, filter)
}

// ListPlayers returns the participants of a tournament
func (s *TournamentService) ListPlayers(ctx context.Context, id uint) ([]models.TournamentPlayer, error) {
	if _, err := s.GetTournament(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.ListTournamentPlayers(ctx, id)
}

// ListUserTournaments returns the tournaments a user has joined
func (s *TournamentService) ListUserTournaments(ctx context.Context, uid string) ([]models.Tournament, error) {
	return s.repo.ListUserTournaments(ctx, uid)
}
