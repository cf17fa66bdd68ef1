package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"github.com/ronakwanjari/medibot-platform/internal/doctors"
)

// Seeds the doctor directory into Postgres. Intended for local development
// and fresh environments; upserts, so re-running is safe.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}

	databaseURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer func() { _ = db.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("ping db: %v", err)
	}

	repo := doctors.NewPostgresRepository(db)
	if err := doctors.Seed(ctx, repo); err != nil {
		log.Fatalf("seed doctors: %v", err)
	}

	fmt.Printf("seeded %d doctors\n", len(doctors.SeedDoctors))
}
