package main

import (
	"context"
	"flag"
	"time"

	log "github.com/sirupsen/logrus"

	"tournament-arena/internal/config"
	"tournament-arena/internal/database"
	"tournament-arena/internal/logging"
	"tournament-arena/internal/repository"
)

func main() {
	fix := flag.Bool("fix", false, "recount joined_players from the participation table")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	db, err := database.Connect(cfg.Database, cfg.GetDSN())
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	repo := repository.NewRepository(db)
	drift, err := repo.FindCounterDrift(ctx)
	if err != nil {
		log.Fatalf("Failed to scan tournaments: %v", err)
	}

	if len(drift) == 0 {
		log.Info("All tournament counters match their participations")
		return
	}

	for _, d := range drift {
		entry := log.WithFields(log.Fields{
			"tournament_id": d.TournamentID,
			"stored":        d.Stored,
			"actual":        d.Actual,
		})
		if !*fix {
			entry.Warn("Counter drift")
			continue
		}
		repaired, err := repo.RecountJoinedPlayers(ctx, d.TournamentID)
		if err != nil {
			entry.WithError(err).Error("Failed to repair counter")
			continue
		}
		entry.WithField("repaired", repaired).Info("Counter repaired")
	}

	if !*fix {
		log.WithField("tournaments", len(drift)).Warn("Drift found, rerun with -fix to repair")
	}
}
