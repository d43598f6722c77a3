package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	appauth "github.com/storefront-go/storefront/internal/application/auth"
	appcart "github.com/storefront-go/storefront/internal/application/cart"
	"github.com/storefront-go/storefront/internal/application/catalog"
	"github.com/storefront-go/storefront/internal/application/checkout"
	"github.com/storefront-go/storefront/internal/application/orders"
	"github.com/storefront-go/storefront/internal/config"
	"github.com/storefront-go/storefront/internal/domain/cart"
	"github.com/storefront-go/storefront/internal/domain/order"
	"github.com/storefront-go/storefront/internal/domain/product"
	"github.com/storefront-go/storefront/internal/domain/user"
	"github.com/storefront-go/storefront/internal/infrastructure/memory"
	"github.com/storefront-go/storefront/internal/infrastructure/notify"
	"github.com/storefront-go/storefront/internal/infrastructure/outbox"
	"github.com/storefront-go/storefront/internal/infrastructure/payment"
	"github.com/storefront-go/storefront/internal/infrastructure/postgres"
	"github.com/storefront-go/storefront/internal/pkg/logging"
	httpapi "github.com/storefront-go/storefront/internal/presentation/http"
	"github.com/storefront-go/storefront/migrations"
)

func main() {
	app := &cli.App{
		Name:  "storefront",
		Usage: "e-commerce backend",
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "run the HTTP API server",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "memory",
						Usage: "use in-memory stores instead of Postgres",
					},
				},
				Action: serve,
			},
			{
				Name:   "migrate",
				Usage:  "apply pending database migrations",
				Action: runMigrations,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// stores bundles the persistence surface so serve can swap Postgres for
// in-memory implementations behind one flag.
type stores struct {
	users    user.Repository
	products product.Repository
	carts    cart.Repository
	orders   order.Repository
	tx       checkout.TxRunner
	close    func() error
}

func serve(c *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.MustNewLogger(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()
	zap.ReplaceGlobals(logger)

	st, err := openStores(cfg, c.Bool("memory"), logger)
	if err != nil {
		return err
	}
	defer func() { _ = st.close() }()

	checkoutMetrics := checkout.NewMetrics(prometheus.DefaultRegisterer)
	httpMetrics := httpapi.NewMetrics(prometheus.DefaultRegisterer)

	bus := outbox.NewBus(logger)
	bus.Start(context.Background())
	defer bus.Stop(context.Background())

	notify.New(bus, logger).Start()

	charger := payment.NewProcessor(payment.Options{
		DefaultKey:    cfg.DefaultPaymentMethod,
		Fallback:      cfg.PaymentFallbackToDefault,
		ChargeTimeout: cfg.PaymentChargeTimeout,
	}, payment.NewCardStrategy(), payment.NewWalletStrategy())

	authService := appauth.NewService(st.users, cfg.JWTSecret, cfg.TokenTTL)
	catalogService := catalog.NewService(st.products)
	cartService := appcart.NewService(st.carts, st.products)
	checkoutService := checkout.NewService(
		cartService, st.products, st.orders, charger, st.tx, bus, checkoutMetrics,
	)
	orderService := orders.NewService(st.orders)

	handler := httpapi.NewHandler(
		authService, catalogService, cartService, checkoutService, orderService,
		logger, httpMetrics,
	)

	root := http.NewServeMux()
	root.Handle("/metrics", promhttp.Handler())
	root.Handle("/", handler.Router())

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: root,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("http_server_start", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http_server_error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_error", zap.Error(err))
		return err
	}
	logger.Info("http_server_stopped")
	return nil
}

func openStores(cfg config.Config, inMemory bool, logger *zap.Logger) (*stores, error) {
	if inMemory {
		logger.Warn("using_memory_stores")
		return &stores{
			users:    memory.NewUserRepository(),
			products: memory.NewProductRepository(),
			carts:    memory.NewCartRepository(),
			orders:   memory.NewOrderRepository(),
			tx:       memory.TxRunner{},
			close:    func() error { return nil },
		}, nil
	}

	db, err := postgres.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return &stores{
		users:    postgres.NewUserRepository(db),
		products: postgres.NewProductRepository(db),
		carts:    postgres.NewCartRepository(db),
		orders:   postgres.NewOrderRepository(db),
		tx:       db,
		close:    db.Close,
	}, nil
}

func runMigrations(_ *cli.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := logging.MustNewLogger(cfg.ServiceName, cfg.Env, cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	if err := postgres.MigrateUp(cfg.DatabaseURL, migrations.FS); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("migrations_applied")
	return nil
}
