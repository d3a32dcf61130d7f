package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/config"
	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	"github.com/yawerky/houseOfGul-sub000/internal/repository/postgres"
)

func main() {
	statusFlag := flag.String("status", "", "Only orders in this status (pending, confirmed, ...)")
	limitFlag := flag.Int("limit", 100, "Maximum number of orders")
	flag.Parse()

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

	filter := repository.OrderFilter{Limit: *limitFlag}
	if *statusFlag != "" {
		filter.Status = domain.OrderStatus(*statusFlag)
		if !filter.Status.IsValid() {
			fmt.Fprintf(os.Stderr, "Unknown status %q\n", *statusFlag)
			os.Exit(1)
		}
	}

	fmt.Println("📋 Listing orders:")

	orders, err := repos.Order.List(context.Background(), filter)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query orders: %v\n", err)
		os.Exit(1)
	}

	for i, o := range orders {
		fmt.Printf("Order #%d:\n", i+1)
		fmt.Printf("  Order Number: %s\n", o.OrderNumber)
		fmt.Printf("  ID: %s\n", o.ID)
		fmt.Printf("  Status: %s\n", o.Status)
		fmt.Printf("  Payment Status: %s\n", o.PaymentStatus)
		fmt.Printf("  Customer: %s <%s>\n", o.CustomerName, o.CustomerEmail)
		fmt.Printf("  Total: %s\n", o.Total.StringFixed(2))
		if o.CouponCode != "" {
			fmt.Printf("  Coupon: %s (-%s)\n", o.CouponCode, o.Discount.StringFixed(2))
		}
		fmt.Printf("  Created: %s\n", o.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Println()
	}

	if len(orders) == 0 {
		fmt.Println("❌ No orders found in database.")
	} else {
		fmt.Printf("✅ Found %d order(s)\n", len(orders))
	}
}
