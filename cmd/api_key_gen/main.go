package main

import (
	"context"
	"fmt"
	"log"

	"infinite-experiment/werewolf/internal/config"
	"infinite-experiment/werewolf/internal/db"
	"infinite-experiment/werewolf/internal/db/repositories"
)

// Issues a new gateway API key against the configured Postgres database.
func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Fatalf("load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	sqlDB, err := db.InitPostgres(cfg.DSN())
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer sqlDB.Close()

	key, err := repositories.NewApiKeysRepo(sqlDB).Create(context.Background())
	if err != nil {
		log.Fatalf("create api key: %v", err)
	}

	fmt.Println("New API Key:", key)
}
