package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/gin-gonic/gin"
	"github.com/layer-3/venmo/adapters/apiclient"
	"github.com/layer-3/venmo/adapters/appswitch"
	"github.com/layer-3/venmo/adapters/events"
	"github.com/layer-3/venmo/adapters/metrics"
	"github.com/layer-3/venmo/adapters/store"
	"github.com/layer-3/venmo/adapters/tokenizer"
	"github.com/layer-3/venmo/config"
	"github.com/layer-3/venmo/core"
	"github.com/layer-3/venmo/ports"
	"github.com/layer-3/venmo/service"
	transport "github.com/layer-3/venmo/transport/http"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand(configFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the host app HTTP surface",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(*configFile)
			if err != nil {
				return err
			}

			logger, err := newLogger(cfg)
			if err != nil {
				return fmt.Errorf("failed to build logger: %w", err)
			}
			defer logger.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	client, err := apiclient.New(cfg.Authorization,
		apiclient.WithBaseURL(cfg.GatewayURL),
		apiclient.WithLogger(logger.Named("apiclient")),
		apiclient.WithConfigurationTTL(cfg.Driver.ConfigurationTTL),
	)
	if err != nil {
		return fmt.Errorf("failed to create api client: %w", err)
	}

	stateTokenizer, err := newStateTokenizer(cfg.Driver.StateKeyFile)
	if err != nil {
		return err
	}

	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		opts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("failed to parse redis url: %w", err)
		}
		redisClient = redis.NewClient(opts)
		defer redisClient.Close()
	}

	stateStore := store.NewMemoryStore()
	if redisClient != nil {
		stateStore = store.NewRedisStore(redisClient)
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	analytics := service.MultiAnalytics{collector}
	observer := service.MultiObserver{collector}

	if cfg.Events.Backend == "redis" {
		wmLogger := watermill.NewStdLogger(false, false)
		publisher, err := redisstream.NewPublisher(
			redisstream.PublisherConfig{
				Client: redisClient,
			},
			wmLogger,
		)
		if err != nil {
			return fmt.Errorf("failed to create redis publisher: %w", err)
		}
		defer publisher.Close()

		eventPub := events.NewWatermillPublisher(publisher, wmLogger)
		analytics = append(analytics, eventPub)
		observer = append(observer, eventPub)
	}

	launcher := appswitch.NewLauncher(cfg.Host.InstalledSchemes...)
	driver, err := service.NewDriver(client,
		service.WithHostApp(core.HostApp{
			DisplayName:     cfg.Host.DisplayName,
			ReturnURLScheme: cfg.Host.ReturnURLScheme,
		}),
		service.WithAppSwitcher(launcher),
		service.WithStateTokenizer(stateTokenizer),
		service.WithStore(stateStore),
		service.WithAnalytics(analytics),
		service.WithLogger(logger.Named("driver")),
		service.WithReturnGracePeriod(cfg.Driver.ReturnGracePeriod),
		service.WithStateTTL(cfg.Driver.StateTTL),
	)
	if err != nil {
		return fmt.Errorf("failed to create driver: %w", err)
	}
	registration := driver.SetObserver(observer)
	defer registration.Close()

	if !cfg.Development() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := transport.SetupRouter(transport.NewHandlers(driver, launcher, logger), reg, logger.Named("http"))

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server",
			zap.String("addr", srv.Addr),
			zap.String("mode", client.AuthMode().String()),
			zap.String("merchant_id", client.MerchantID()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("failed to start server: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

func newStateTokenizer(keyFile string) (ports.StateTokenizer, error) {
	if keyFile == "" {
		return tokenizer.NewEphemeralJWTTokenizer()
	}

	key, err := tokenizer.LoadPrivateKey(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load state key: %w", err)
	}
	return tokenizer.NewJWTTokenizer(key), nil
}
