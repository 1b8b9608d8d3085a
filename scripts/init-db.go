package main

import (
	"flag"
	"os"

	"restaurant_pos/internal/config"
	"restaurant_pos/internal/database"
	"restaurant_pos/internal/migrations"
	"restaurant_pos/pkg/logger"
)

func main() {
	reset := flag.Bool("reset", false, "drop every table before migrating")
	flag.Parse()

	cfg := config.Load()
	log := logger.New("pos-init-db", cfg.LogLevel)

	db, err := database.Initialize(cfg.DatabaseURL)
	if err != nil {
		log.Error("database_connect", "Failed to connect to database", err)
		os.Exit(1)
	}

	if err := migrations.RunMigrations(db, *reset, cfg.DefaultAdminPassword, log); err != nil {
		log.Error("init_db", "Database initialization failed", err)
		os.Exit(1)
	}

	log.Info("init_db", "Database initialization completed", "admin_username", migrations.DefaultAdminUsername)
}
