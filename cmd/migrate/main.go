package main

import (
	"flag"
	"log"

	"github.com/joho/godotenv"

	"github.com/engsiam/phone-email-auth/internal/infra/config"
	"github.com/engsiam/phone-email-auth/internal/infra/database"
)

func main() {
	_ = godotenv.Load()

	direction := flag.String("direction", "up", "migration direction: up or down")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := database.Migrate(database.DSN(cfg.Postgres), *direction); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	log.Printf("migrations applied (%s)", *direction)
}
