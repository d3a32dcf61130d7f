package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/auth"
	"github.com/yawerky/houseOfGul-sub000/internal/config"
	"github.com/yawerky/houseOfGul-sub000/internal/repository/postgres"
)

func main() {
	emailFlag := flag.String("email", "", "Admin email (used to sign in)")
	nameFlag := flag.String("name", "", "Admin display name")
	passwordFlag := flag.String("password", "", "Admin password, at least 8 characters (or set ADMIN_PASSWORD)")
	activeFlag := flag.String("set-active", "", "true or false: enable or disable an existing admin instead of creating one")
	flag.Parse()

	email, name, password := *emailFlag, *nameFlag, *passwordFlag
	if email == "" && flag.NArg() >= 1 {
		email = flag.Arg(0)
	}
	if password == "" {
		password = os.Getenv("ADMIN_PASSWORD")
	}
	toggle := *activeFlag != ""
	active, err := strconv.ParseBool(*activeFlag)
	if toggle && err != nil {
		fmt.Fprintf(os.Stderr, "--set-active must be true or false\n")
		os.Exit(1)
	}
	if strings.TrimSpace(email) == "" || (password == "" && !toggle) {
		fmt.Println("Usage:")
		fmt.Println("  go run cmd/create-admin/main.go --email owner@houseofgul.com --name \"Owner\" --password \"...\"")
		fmt.Println("  ADMIN_PASSWORD=... go run cmd/create-admin/main.go owner@houseofgul.com")
		fmt.Println("  go run cmd/create-admin/main.go --email owner@houseofgul.com --set-active=false")
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

	svc := auth.NewService(repos.AdminUser, auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), logger)
	if toggle {
		admin, err := svc.SetActive(context.Background(), email, active)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to update admin: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("✅ Admin %s active=%t\n", admin.Email, admin.IsActive)
		return
	}

	admin, err := svc.CreateAdmin(context.Background(), email, name, password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create admin: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("✅ Admin created")
	fmt.Printf("  ID: %s\n", admin.ID)
	fmt.Printf("  Email: %s\n", admin.Email)
	fmt.Println("\nSign in with POST /v1/admin/login")
}
