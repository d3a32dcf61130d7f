package api

import (
	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/yawerky/houseOfGul-sub000/internal/auth"
	"github.com/yawerky/houseOfGul-sub000/internal/cart"
	"github.com/yawerky/houseOfGul-sub000/internal/config"
	"github.com/yawerky/houseOfGul-sub000/internal/coupon"
	"github.com/yawerky/houseOfGul-sub000/internal/pincode"
	"github.com/yawerky/houseOfGul-sub000/internal/pricing"
	"github.com/yawerky/houseOfGul-sub000/internal/repository"
	"github.com/yawerky/houseOfGul-sub000/internal/service"
	"github.com/yawerky/houseOfGul-sub000/internal/sheets"
)

// Services wires the domain services the HTTP layer depends on
type Services struct {
	Repos      *repository.Repositories
	Auth       *auth.Service
	Directory  *pincode.Directory
	Coupons    *coupon.Evaluator
	Options    *pricing.Options
	Aggregator *pricing.Aggregator
	Sessions   *cart.Sessions
	Carts      cart.Store
	Feed       *service.LiveFeed
	Orders     *service.OrderService
	Checkout   *service.CheckoutService
	Importer   *service.ProductImporter
}

// NewServices builds every service from cfg on top of repos
func NewServices(cfg *config.Config, repos *repository.Repositories, logger *zap.Logger) (*Services, error) {
	options, err := pricing.LoadOptions(cfg.Pricing.CheckoutOptionsFile)
	if err != nil {
		return nil, errors.Wrap(err, "load checkout options")
	}
	sessions, err := cart.NewSessions(cfg.Auth.CartCookieName, []byte(cfg.Auth.CartCookieHashKey), cfg.Auth.CookieSecure)
	if err != nil {
		return nil, err
	}

	aggregator := pricing.NewAggregator(options, pricing.Fallback{
		FreeThreshold: cfg.Pricing.FallbackFreeThreshold,
		Charge:        cfg.Pricing.FallbackDeliveryCharge,
	})
	feed := service.NewLiveFeed(logger)
	notifier := service.NewNotifier(feed, cfg.OrderWebhookURL, logger)
	directory := pincode.NewDirectory(repos, logger)
	coupons := coupon.NewEvaluator(repos.Coupon, logger)
	carts := cart.NewStore(repos.Cart)

	return &Services{
		Repos:      repos,
		Auth:       auth.NewService(repos.AdminUser, auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL), logger),
		Directory:  directory,
		Coupons:    coupons,
		Options:    options,
		Aggregator: aggregator,
		Sessions:   sessions,
		Carts:      carts,
		Feed:       feed,
		Orders:     service.NewOrderService(repos, notifier, logger),
		Checkout:   service.NewCheckoutService(repos, aggregator, coupons, directory, carts, notifier, logger),
		Importer:   service.NewProductImporter(repos, sheets.NewClient("", logger), logger),
	}, nil
}
