package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"datadesk/internal/config"
	"datadesk/internal/migration"
	"datadesk/models"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	_ = godotenv.Load()

	printOnly := flag.Bool("print", false, "Print the migration SQL instead of applying it")
	timeout := flag.Duration("timeout", time.Minute, "Overall migration timeout")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: migrate [-print] [database_url]")
		fmt.Fprintln(os.Stderr, "The database URL defaults to DATABASE_URL.")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *printOnly {
		for _, step := range migration.Steps() {
			fmt.Printf("-- %s\n%s\n\n", step.Name, step.SQL)
		}
		return
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if flag.NArg() > 0 {
		databaseURL = flag.Arg(0)
	}
	if databaseURL == "" {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	db, err := sqlx.ConnectContext(ctx, "postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	ingestCfg := config.LoadLocal().Ingest
	runner := migration.NewRunner(models.DefaultPlans(ingestCfg.DefaultPlanFiles))

	log.Printf("Applying schema %s", runner.Version())
	start := time.Now()
	if err := runner.Run(ctx, db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Printf("Migration completed in %v", time.Since(start).Round(time.Millisecond))
}
