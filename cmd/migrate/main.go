package main

import (
	"errors"
	"flag"
	"log"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"infinite-experiment/werewolf/internal/config"
)

// Applies db/migrations to the configured Postgres database. SQLite deployments
// create their schema through gorm on start-up instead.
func main() {
	source := flag.String("source", "file://db/migrations", "migration source URL")
	down := flag.Bool("down", false, "roll back every migration")
	flag.Parse()

	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	m, err := migrate.New(*source, cfg.DSN())
	if err != nil {
		log.Fatalf("migration setup failed: %v", err)
	}
	defer m.Close()

	if *down {
		err = m.Down()
	} else {
		err = m.Up()
	}
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("database migration failed: %v", err)
	}

	version, dirty, _ := m.Version()
	log.Printf("database migrations applied, version %d dirty %t", version, dirty)
}
