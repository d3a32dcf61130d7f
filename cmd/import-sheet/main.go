package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/config"
	"github.com/yawerky/houseOfGul-sub000/internal/repository/postgres"
	"github.com/yawerky/houseOfGul-sub000/internal/service"
	"github.com/yawerky/houseOfGul-sub000/internal/sheets"
)

func main() {
	urlFlag := flag.String("url", "", "Shared Google Sheet URL (defaults to PRODUCT_SHEET_URL)")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	sheetURL := *urlFlag
	if sheetURL == "" {
		sheetURL = cfg.ProductSheet.URL
	}
	if sheetURL == "" {
		fmt.Println("Usage: go run cmd/import-sheet/main.go --url \"https://docs.google.com/spreadsheets/d/<id>/edit#gid=0\"")
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

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	importer := service.NewProductImporter(repos, sheets.NewClient("", logger), logger)
	result, err := importer.ImportFromURL(ctx, sheetURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Import failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("✅ Created %d, skipped %d, failed %d\n", result.Created, result.Skipped, result.Failed)
	for _, e := range result.Errors {
		fmt.Printf("  %s\n", e)
	}
}
