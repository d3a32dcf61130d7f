package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/config"
	"github.com/yawerky/houseOfGul-sub000/internal/domain"
	"github.com/yawerky/houseOfGul-sub000/internal/repository/postgres"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run cmd/find-order/main.go <order_number>")
		fmt.Println("Example: go run cmd/find-order/main.go HG-01J9Z3K4M5N6P7Q8R9S0T1V2W3")
		os.Exit(1)
	}

	orderNumber := strings.ToUpper(strings.TrimSpace(os.Args[1]))

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

	fmt.Printf("🔍 Searching for order %s\n\n", orderNumber)

	// Try with and without the prefix
	variations := []string{orderNumber}
	if !strings.HasPrefix(orderNumber, "HG-") {
		variations = append(variations, "HG-"+orderNumber)
	}

	ctx := context.Background()
	var order *domain.Order
	for _, v := range variations {
		if order, err = repos.Order.GetByOrderNumber(ctx, v); err == nil {
			break
		}
	}
	if order == nil {
		fmt.Println("❌ Order not found.")
		os.Exit(1)
	}

	fmt.Printf("Order Number: %s\n", order.OrderNumber)
	fmt.Printf("ID: %s\n", order.ID)
	fmt.Printf("Status: %s\n", order.Status)
	fmt.Printf("Payment: %s %s\n", order.PaymentStatus, order.PaymentReference)
	fmt.Printf("Customer: %s <%s> %s\n", order.CustomerName, order.CustomerEmail, order.CustomerPhone)
	a := order.ShippingAddress
	fmt.Printf("Ship to: %s, %s, %s %s\n", a.Line1, a.City, a.State, a.Pincode)
	if order.IsGift {
		fmt.Printf("Gift for %s (%s): %q\n", order.RecipientName, order.GiftWrapID, order.GiftMessage)
	}
	fmt.Println("Items:")
	for _, it := range order.Items {
		fmt.Printf("  %d x %s @ %s = %s\n", it.Quantity, it.ProductName, it.UnitPrice.StringFixed(2), it.LineTotal.StringFixed(2))
	}
	fmt.Printf("Subtotal %s | Delivery %s | Wrap %s | Slot %s | Discount %s | Total %s\n",
		order.Subtotal.StringFixed(2), order.DeliveryCharge.StringFixed(2), order.GiftWrapCharge.StringFixed(2),
		order.DeliverySlotCharge.StringFixed(2), order.Discount.StringFixed(2), order.Total.StringFixed(2))

	events, err := repos.OrderEvent.GetByOrderID(ctx, order.ID)
	if err == nil && len(events) > 0 {
		fmt.Println("History:")
		for _, e := range events {
			fmt.Printf("  %s %s %v\n", e.CreatedAt.Format("2006-01-02 15:04:05"), e.EventType, e.EventData)
		}
	}
}
