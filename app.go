package main

import (
	"context"
	"errors"

	"github.com/Kariqs/amexan-checkout/cache"
	"github.com/Kariqs/amexan-checkout/config"
	"github.com/Kariqs/amexan-checkout/events"
	"github.com/Kariqs/amexan-checkout/initializers"
	"github.com/Kariqs/amexan-checkout/logger"
	"github.com/Kariqs/amexan-checkout/metrics"
	"github.com/Kariqs/amexan-checkout/payments"
	"github.com/Kariqs/amexan-checkout/repositories"
	"github.com/Kariqs/amexan-checkout/routes"
	"github.com/Kariqs/amexan-checkout/services"
	"github.com/Kariqs/amexan-checkout/storage"
	"github.com/Kariqs/amexan-checkout/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// app is the wired object graph shared by the CLI commands.
type app struct {
	cfg     *config.Config
	routes  routes.Deps
	sweeper *services.Sweeper

	events events.Publisher
	redis  *redis.Client
}

// newApp wires repositories, payment adapters and services on top of db.
// Redis, Kafka and S3 are optional; when unset or unreachable the matching
// feature is skipped and the database stays the only source of truth.
func newApp(ctx context.Context, cfg *config.Config, db *gorm.DB) *app {
	a := &app{cfg: cfg, events: events.Noop{}}

	orders := repositories.NewOrderRepository(db)
	users := repositories.NewUserRepository(db)
	inventory := repositories.NewInventoryRepository(db)
	notifications := repositories.NewNotificationRepository(db)
	paymentTypes := repositories.NewPaymentTypeRepository(db)
	deliveryTypes := repositories.NewDeliveryTypeRepository(db)
	settings := repositories.NewSettingsRepository(db)

	stripeOpts := payments.StripeOptions{
		SecretKey:  cfg.Stripe.SecretKey,
		APIURL:     cfg.Stripe.APIURL,
		SuccessURL: cfg.Stripe.SuccessURL,
		CancelURL:  cfg.Stripe.CancelURL,
		Timeout:    cfg.ProviderTimeout,
	}
	registry := payments.NewRegistry(
		payments.NewStripeCheckout(stripeOpts),
		payments.NewStripeIntent(stripeOpts),
		payments.NewPayPal(payments.PayPalOptions{
			ClientID:     cfg.PayPal.ClientID,
			ClientSecret: cfg.PayPal.ClientSecret,
			APIURL:       cfg.PayPal.APIURL,
			ReturnURL:    cfg.PayPal.ReturnURL,
			CancelURL:    cfg.PayPal.CancelURL,
			Timeout:      cfg.ProviderTimeout,
		}),
	)

	if len(cfg.KafkaBrokers) > 0 {
		a.events = events.NewKafkaPublisher(initializers.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic))
		logger.Info("publishing order events", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	var settled services.SettledCache
	if cfg.RedisAddr != "" {
		rdb, err := initializers.NewRedis(ctx, cfg.RedisAddr)
		if err != nil {
			logger.Warn("settled key cache disabled", zap.Error(err))
		} else {
			a.redis = rdb
			settled = cache.NewSettledKeys(rdb, cfg.SettledKeyTTL)
		}
	}

	var receipts services.ReceiptStore
	if cfg.ReceiptsBucket != "" {
		uploader, err := initializers.NewS3Uploader(ctx)
		if err != nil {
			logger.Warn("receipt archive disabled", zap.Error(err))
		} else {
			receipts = storage.NewReceiptArchive(uploader, cfg.ReceiptsBucket)
		}
	}

	m := metrics.New(prometheus.DefaultRegisterer)
	mailer := utils.NewSMTPMailer(cfg.SMTP)

	confirmer := services.NewConfirmer(services.ConfirmerDeps{
		Inventory:     inventory,
		Notifications: notifications,
		Users:         users,
		PaymentTypes:  paymentTypes,
		DeliveryTypes: deliveryTypes,
		Mailer:        mailer,
		Receipts:      receipts,
		Metrics:       m,
	})
	checkout := services.NewCheckout(services.CheckoutDeps{
		Orders:        orders,
		Users:         users,
		Inventory:     inventory,
		PaymentTypes:  paymentTypes,
		DeliveryTypes: deliveryTypes,
		Settings:      settings,
		Providers:     registry,
		Confirmer:     confirmer,
		Mailer:        mailer,
		Events:        a.events,
		Metrics:       m,
	}, services.CheckoutConfig{
		OrderGraceWindow: cfg.OrderGraceWindow,
		UserGraceWindow:  cfg.UserGraceWindow,
		JWTSecret:        cfg.JWTSecret,
		FrontendURL:      cfg.FrontendURL,
	})
	reconciler := services.NewReconciler(services.ReconcilerDeps{
		Orders:    orders,
		Users:     users,
		Inventory: inventory,
		Settings:  settings,
		Providers: registry,
		Confirmer: confirmer,
		Settled:   settled,
		Events:    a.events,
		Metrics:   m,
	})
	a.sweeper = services.NewSweeper(services.SweeperDeps{
		Orders:  orders,
		Users:   users,
		Events:  a.events,
		Metrics: m,
	})

	a.routes = routes.Deps{
		JWTSecret:         cfg.JWTSecret,
		CheckoutRateLimit: cfg.CheckoutRateLimit,
		CheckoutBurst:     cfg.CheckoutBurst,
		Checkout:          checkout,
		Reconciler:        reconciler,
		Sweeper:           a.sweeper,
		Accounts:          services.NewAccounts(users, cfg.JWTSecret),
		Notifications:     notifications,
		PaymentTypes:      paymentTypes,
		DeliveryTypes:     deliveryTypes,
	}
	return a
}

func (a *app) Close() error {
	var errs []error
	if err := a.events.Close(); err != nil {
		errs = append(errs, err)
	}
	if a.redis != nil {
		if err := a.redis.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
