package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tournament-arena/internal/auth"
	"tournament-arena/internal/models"
	"tournament-arena/internal/repository"
	"tournament-arena/internal/services"
)

type TournamentHandler struct {
	tournamentService *services.TournamentService
	ledger            *services.LedgerService
}

func NewTournamentHandler(tournamentService *services.TournamentService, ledger *services.LedgerService) *TournamentHandler {
	return &TournamentHandler{
		tournamentService: tournamentService,
		ledger:            ledger,
	}
}

// GetTournaments lists tournaments
// GET /api/tournaments?status=&category=&limit=&offset=
func (h *TournamentHandler) GetTournaments(c *gin.Context) {
	limit, offset := pagination(c)
	filter := repository.TournamentFilter{
		Status:   models.TournamentStatus(c.Query("status")),
		Category: c.Query("category"),
		Limit:    limit,
		Offset:   offset,
	}

	tournaments, total, err := h.tournamentService.ListTournaments(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    tournaments,
		"total":   total,
		"limit":   limit,
		"offset":  offset,
	})
}

// GetTournament returns one tournament
// GET /api/tournaments/:id
func (h *TournamentHandler) GetTournament(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	tournament, err := h.tournamentService.GetTournament(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": tournament})
}

// GetPlayers lists a tournament's participants
// GET /api/tournaments/:id/players
func (h *TournamentHandler) GetPlayers(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	players, err := h.tournamentService.ListPlayers(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": players})
}

// JoinTournament enters the caller into a tournament.
// Responds 201 on a new join and 200 with already_joined on a repeat.
// POST /api/tournaments/:id/join
func (h *TournamentHandler) JoinTournament(c *gin.Context) {
	uid, ok := auth.GetUserUID(c)
	if !ok {
		unauthorized(c)
		return
	}

	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	var req struct {
		GameName string `json:"game_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "game_name is required")
		return
	}

	result, err := h.ledger.JoinTournament(c.Request.Context(), uid, id, req.GameName)
	if err != nil {
		respondError(c, err)
		return
	}

	status := http.StatusCreated
	if result.AlreadyJoined {
		status = http.StatusOK
	}

	c.JSON(status, gin.H{
		"success": true,
		"data":    result,
	})
}
