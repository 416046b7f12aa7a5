package main

import (
	"context"
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"rarscale/adapters/postgres"
	"rarscale/internal/config"
	"rarscale/internal/migration"
	"rarscale/ui"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuration invalid: %v", err)
	}
	if cfg.Database.URL == "" {
		log.Fatal("DATABASE_URL is required for the dashboard")
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.NewRunner().Run(context.Background(), db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	server, err := ui.NewServer(postgres.NewRunRepository(db))
	if err != nil {
		log.Fatalf("Failed to build dashboard: %v", err)
	}
	if err := server.Run(cfg.Server.UIPort); err != nil {
		log.Fatalf("Dashboard failed: %v", err)
	}
}
