package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Kariqs/amexan-checkout/config"
	"github.com/Kariqs/amexan-checkout/initializers"
	"github.com/Kariqs/amexan-checkout/logger"
	"github.com/Kariqs/amexan-checkout/metrics"
	"github.com/Kariqs/amexan-checkout/routes"
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	initializers.LoadEnv()

	cliApp := &cli.App{
		Name:   "amexan-checkout",
		Usage:  "checkout and payment reconciliation API for the Amexan store",
		Action: serve,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and the expiry sweeper",
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "migrate the schema and seed lookup rows",
				Action: migrate,
			},
			{
				Name:   "sweep",
				Usage:  "delete lapsed provisional orders and users once",
				Action: sweep,
			},
		},
	}

	if err := cliApp.Run(os.Args); err != nil {
		logger.Error("command failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

// setup loads config, initializes logging and opens the database.
func setup() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Env); err != nil {
		return nil, err
	}
	if err := initializers.ConnectToDB(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func migrate(c *cli.Context) error {
	defer logger.Sync()
	if _, err := setup(); err != nil {
		return err
	}
	return initializers.SyncDatabase()
}

func sweep(c *cli.Context) error {
	defer logger.Sync()
	cfg, err := setup()
	if err != nil {
		return err
	}
	a := newApp(c.Context, cfg, initializers.DB)
	defer a.Close()

	report, err := a.sweeper.SweepLapsed(c.Context, time.Now())
	if err != nil {
		return err
	}
	logger.Info("sweep finished",
		zap.Int("orders", report.Orders),
		zap.Int64("items", report.Items),
		zap.Int64("users", report.Users))
	return nil
}

func serve(c *cli.Context) error {
	defer logger.Sync()
	cfg, err := setup()
	if err != nil {
		return err
	}
	if err := initializers.SyncDatabase(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	flushSentry, err := initializers.InitSentry(cfg.SentryDSN, cfg.Env)
	if err != nil {
		logger.Warn("sentry disabled", zap.Error(err))
	} else {
		defer flushSentry()
	}
	shutdownTracing, err := initializers.InitTracing(ctx, cfg.OTLPEndpoint)
	if err != nil {
		logger.Warn("tracing disabled", zap.Error(err))
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Warn("failed to flush traces", zap.Error(err))
			}
		}()
	}

	a := newApp(ctx, cfg, initializers.DB)
	defer a.Close()

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	server := gin.Default()
	server.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	server.Use(gzip.Gzip(gzip.DefaultCompression))
	server.Use(otelgin.Middleware("amexan-checkout"))
	server.GET("/metrics", gin.WrapH(metrics.Handler()))
	routes.Register(server, a.routes)

	go a.sweeper.Run(ctx, cfg.SweepInterval)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           server,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
