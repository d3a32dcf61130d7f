package main

import (
	"database/sql"
	"flag"
	"fmt"
	"os"

	"github.com/lib/pq"

	"github.com/yawerky/houseOfGul-sub000/internal/config"
	"github.com/yawerky/houseOfGul-sub000/internal/repository/postgres"
)

func main() {
	createDB := flag.Bool("create-db", true, "create the database first when it does not exist")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// First, connect to the postgres database to create the target database if needed
	if *createDB && cfg.Database.URL == "" {
		if err := ensureDatabase(cfg.Database); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
	}

	// Now connect to the target database
	sqlDB, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	db, err := postgres.OpenGorm(sqlDB)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	if err := postgres.RunMigrations(db); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing migration: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Migration completed successfully! (%d tables)\n", len(postgres.Models()))
}

func ensureDatabase(dbCfg config.DatabaseConfig) error {
	admin := dbCfg
	admin.DBName = "postgres"

	postgresDB, err := sql.Open("postgres", admin.DSN())
	if err != nil {
		return fmt.Errorf("failed to connect to postgres database: %w", err)
	}
	defer postgresDB.Close()

	// Check if database exists, create if not
	var exists bool
	err = postgresDB.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", dbCfg.DBName,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check database existence: %w", err)
	}

	if !exists {
		fmt.Printf("Database '%s' does not exist. Creating...\n", dbCfg.DBName)
		if _, err := postgresDB.Exec("CREATE DATABASE " + pq.QuoteIdentifier(dbCfg.DBName)); err != nil {
			return fmt.Errorf("failed to create database: %w", err)
		}
		fmt.Printf("Database '%s' created successfully.\n", dbCfg.DBName)
	}
	return nil
}
