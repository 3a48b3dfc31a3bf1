package main

import (
	"fmt"
	"os"

	log "github.com/sirupsen/logrus"

	"tournament-arena/internal/config"
	"tournament-arena/internal/database"
	"tournament-arena/internal/logging"
)

const usage = `usage: migrate <command>

commands:
  up        apply all pending migrations
  down N    roll back N migrations
  status    print the current migration version`

func main() {
	if len(os.Args) < 2 {
		fmt.Println(usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	logging.Setup(cfg.Log.Level, cfg.Log.Format)

	url := cfg.GetMigrationURL()

	switch os.Args[1] {
	case "up":
		err = database.MigrateUp(url)
	case "down":
		if len(os.Args) < 3 {
			fmt.Println(usage)
			os.Exit(2)
		}
		err = database.MigrateDown(url, os.Args[2])
	case "status":
		err = database.MigrateStatus(url)
	default:
		fmt.Println(usage)
		os.Exit(2)
	}

	if err != nil {
		log.Fatalf("Migration %s failed: %v", os.Args[1], err)
	}
}
