package repository

import (
	"context"

	"gorm.io/gorm"

	"tournament-arena/internal/models"
)

// TournamentFilter narrows tournament listings
type TournamentFilter struct {
	Status   models.TournamentStatus
	Category string
	Limit    int
	Offset   int
}

// CounterDrift reports a tournament whose joined_players disagrees with its participations
type CounterDrift struct {
	TournamentID uint
	Stored       int
	Actual       int
}

// CreateTournament creates a new tournament
func (r *Repository) CreateTournament(ctx context.Context, tournament *models.Tournament) error {
	return r.db.WithContext(ctx).Create(tournament).Error
}

// GetTournament retrieves a tournament by ID
func (r *Repository) GetTournament(ctx context.Context, id uint) (*models.Tournament, error) {
	var tournament models.Tournament
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&tournament).Error
	if err != nil {
		return nil, err
	}
	return &tournament, nil
}

// UpdateTournamentFields applies an admin edit. joined_players is never part of it.
// A non-nil max_players only applies while joined_players fits under it;
// returns false when a join got there first.
func (r *Repository) UpdateTournamentFields(ctx context.Context, id uint, fields map[string]interface{}) (bool, error) {
	delete(fields, "joined_players")

	query := r.db.WithContext(ctx).Model(&models.Tournament{}).Where("id = ?", id)
	if maxPlayers, ok := fields["max_players"].(*int); ok && maxPlayers != nil {
		query = query.Where("joined_players <= ?", *maxPlayers)
	}

	result := query.Updates(fields)
	return result.RowsAffected == 1, result.Error
}

// TransitionTournamentStatus moves a tournament from one status to another.
// Returns false when the tournament was not in the expected status.
func (r *Repository) TransitionTournamentStatus(ctx context.Context, id uint, from, to models.TournamentStatus) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Tournament{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	return result.RowsAffected == 1, result.Error
}

// DeleteTournament removes a tournament that has no participations
func (r *Repository) DeleteTournament(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND joined_players = 0", id).
		Where("NOT EXISTS (SELECT 1 FROM tournament_players WHERE tournament_players.tournament_id = tournaments.id)").
		Delete(&models.Tournament{})
	return result.RowsAffected == 1, result.Error
}

// ListTournaments returns tournaments ordered by date
func (r *Repository) ListTournaments(ctx context.Context, filter TournamentFilter) ([]models.Tournament, int64, error) {
	var tournaments []models.Tournament
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Tournament{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where("category = ?", filter.Category)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := query.Order("date ASC, id ASC").Limit(filter.Limit).Offset(filter.Offset).Find(&tournaments).Error; err != nil {
		return nil, 0, err
	}

	return tournaments, total, nil
}

// IncrementJoinedPlayers bumps the counter unless the player cap is reached
func (r *Repository) IncrementJoinedPlayers(ctx context.Context, id uint) (bool, error) {
	result := r.db.WithContext(ctx).Model(&models.Tournament{}).
		Where("id = ? AND (max_players IS NULL OR joined_players < max_players)", id).
		Update("joined_players", gorm.Expr("joined_players + 1"))
	return result.RowsAffected == 1, result.Error
}

// CountTournamentsByStatus returns the number of tournaments per status
func (r *Repository) CountTournamentsByStatus(ctx context.Context) (map[models.TournamentStatus]int64, error) {
	var rows []struct {
		Status models.TournamentStatus
		Count  int64
	}
	err := r.db.WithContext(ctx).Model(&models.Tournament{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.TournamentStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// GetParticipation retrieves a user's participation in a tournament
func (r *Repository) GetParticipation(ctx context.Context, uid string, tournamentID uint) (*models.TournamentPlayer, error) {
	var player models.TournamentPlayer
	err := r.db.WithContext(ctx).
		Where("user_uid = ? AND tournament_id = ?", uid, tournamentID).
		First(&player).Error
	if err != nil {
		return nil, err
	}
	return &player, nil
}

// CreateParticipation inserts a participation row
func (r *Repository) CreateParticipation(ctx context.Context, player *models.TournamentPlayer) error {
	return r.db.WithContext(ctx).Create(player).Error
}

// ListTournamentPlayers returns participations in join order
func (r *Repository) ListTournamentPlayers(ctx context.Context, tournamentID uint) ([]models.TournamentPlayer, error) {
	var players []models.TournamentPlayer
	err := r.db.WithContext(ctx).
		Where("tournament_id = ?", tournamentID).
		Order("created_at ASC, id ASC").
		Find(&players).Error
	return players, err
}

// ListUserTournaments returns the tournaments a user has joined
func (r *Repository) ListUserTournaments(ctx context.Context, uid string) ([]models.Tournament, error) {
	var tournaments []models.Tournament
	err := r.db.WithContext(ctx).
		Joins("JOIN tournament_players ON tournament_players.tournament_id = tournaments.id").
		Where("tournament_players.user_uid = ?", uid).
		Order("tournaments.date ASC").
		Find(&tournaments).Error
	return tournaments, err
}

// FindCounterDrift lists tournaments whose joined_players differs from the participation count
func (r *Repository) FindCounterDrift(ctx context.Context) ([]CounterDrift, error) {
	var drifts []CounterDrift
	err := r.db.WithContext(ctx).
		Table("tournaments").
		Select("tournaments.id AS tournament_id, tournaments.joined_players AS stored, COUNT(tournament_players.id) AS actual").
		Joins("LEFT JOIN tournament_players ON tournament_players.tournament_id = tournaments.id").
		Group("tournaments.id, tournaments.joined_players").
		Having("COUNT(tournament_players.id) <> tournaments.joined_players").
		Order("tournaments.id").
		Scan(&drifts).Error
	return drifts, err
}

// RecountJoinedPlayers sets the counter to the participation count in one
// statement, so joins committed after a drift scan are still counted
func (r *Repository) RecountJoinedPlayers(ctx context.Context, id uint) (int, error) {
	err := r.db.WithContext(ctx).Model(&models.Tournament{}).
		Where("id = ?", id).
		UpdateColumn("joined_players", gorm.Expr(
			"(SELECT COUNT(*) FROM tournament_players WHERE tournament_players.tournament_id = tournaments.id)")).Error
	if err != nil {
		return 0, err
	}

	tournament, err := r.GetTournament(ctx, id)
	if err != nil {
		return 0, err
	}
	return tournament.JoinedPlayers, nil
}
