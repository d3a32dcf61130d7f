package main

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/config"
	"github.com/yawerky/houseOfGul-sub000/internal/pincode"
	"github.com/yawerky/houseOfGul-sub000/internal/repository/postgres"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/import-pincodes/main.go <file.csv>")
		fmt.Println("Columns: pincode, city, state, area, deliverycharge, samedayavailable, nextdayavailable, minorderfree, isactive")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read file: %v\n", err)
		os.Exit(1)
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	repos, closeDB, err := postgres.Open(cfg.Database, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer closeDB()

	result, err := pincode.NewDirectory(repos, logger).BulkImport(context.Background(), string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Imported %d pincode(s), skipped %d\n", result.Imported, result.Skipped)
	for _, e := range result.Errors {
		fmt.Printf("  %s\n", e)
	}
}
