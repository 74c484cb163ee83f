package main

import (
	"log"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"vbtlab/adapters/api"
	"vbtlab/adapters/postgres"
	"vbtlab/adapters/rng"
	"vbtlab/app"
	"vbtlab/internal"
	"vbtlab/internal/config"
	"vbtlab/internal/synth"
	"vbtlab/ports"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	gen := app.NewGenerationService(func(seed int64) ports.RNG {
		return rng.New(seed)
	})

	defaults := synth.DefaultConfig()
	defaults.ParticipantCount = cfg.Generation.ParticipantCount
	defaults.Seed = cfg.Generation.Seed
	defaults.StudyStartDate = cfg.Generation.StudyStartDate

	server := api.NewServer(api.Config{
		Port:     cfg.Server.Port,
		Defaults: defaults,
	}, gen, postgres.NewDatasetRepository(db), internal.DefaultLogger)

	log.Printf("Starting vbtlab API on http://localhost:%s", cfg.Server.Port)
	log.Fatal(server.Start())
}
