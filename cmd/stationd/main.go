package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gridmesh/station/adapters/events"
	"github.com/gridmesh/station/adapters/notify"
	"github.com/gridmesh/station/adapters/provider"
	"github.com/gridmesh/station/adapters/store"
	"github.com/gridmesh/station/config"
	"github.com/gridmesh/station/core"
	"github.com/gridmesh/station/gateway"
	"github.com/gridmesh/station/ports"
	"github.com/gridmesh/station/service"
	"github.com/gridmesh/station/staking"
	transporthttp "github.com/gridmesh/station/transport/http"
	"github.com/gridmesh/station/transport/relay"
)

func main() {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   "stationd",
		Short: "Session daemon for the compute network dashboard",
		Long: "stationd reconciles the injected wallet provider, the staking contracts " +
			"and the relay session into one consistent client session, and serves it " +
			"to the dashboard UI over HTTP.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(configPath)
		},
	}
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "station.json", "path to the configuration file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)
	ctx := context.Background()

	registry := core.NewRegistry(cfg.Networks)

	// The wallet bridge is the injected signing provider; running without one
	// is a normal, degraded mode where only reads work.
	var prov ports.WalletProvider
	bridge, err := provider.Dial(ctx, cfg.BridgeURL, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("wallet bridge unreachable, continuing without a provider")
	} else if bridge != nil {
		prov = bridge
	}

	stateStore, publisher, err := buildBackends(cfg, logger)
	if err != nil {
		return err
	}
	eventPub := events.NewWatermillPublisher(publisher)

	wallet := service.NewWalletSession(registry, prov, stateStore, eventPub, cfg.DefaultNetwork, logger)

	// The token getter closes over the auth session assigned below, the same
	// wiring order the relay client needs to exist first.
	var auth *service.AuthSession
	relayClient := relay.NewClient(cfg.RelayURL, func() string {
		if auth == nil {
			return ""
		}
		return auth.Token()
	}, logger)
	auth = service.NewAuthSession(wallet, relayClient, prov, stateStore, eventPub, logger)

	wallet.Restore(ctx)
	auth.Restore(ctx)

	notifier := notify.NewLogNotifier(logger)
	coordinator := service.NewCoordinator(wallet, auth, prov, notifier, eventPub, logger)
	relayClient.OnUnauthorized(coordinator.HandleUnauthorized)

	gw := gateway.New(registry, prov, wallet, logger)
	nodeStaking := staking.NewNodeStaking(gw, logger)
	delegatedStaking := staking.NewDelegatedStaking(gw, logger)

	handlers := transporthttp.NewHandlers(registry, wallet, auth, nodeStaking, delegatedStaking)
	router := transporthttp.SetupRouter(handlers, coordinator)

	logger.Info().Str("addr", cfg.ListenAddr).Msg("stationd listening")
	return router.Run(cfg.ListenAddr)
}

// buildBackends selects the persistence and event backends: Redis when
// configured, in-process fallbacks otherwise.
func buildBackends(cfg *config.Config, logger zerolog.Logger) (ports.StateStore, message.Publisher, error) {
	wmLogger := watermill.NewStdLogger(false, false)

	if cfg.RedisURL == "" {
		logger.Info().Msg("no redis configured, using in-memory state store")
		return store.NewMemoryStore(), gochannel.NewGoChannel(gochannel.Config{}, wmLogger), nil
	}

	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parsing redis url: %w", err)
	}
	redisClient := redis.NewClient(opts)

	publisher, err := redisstream.NewPublisher(
		redisstream.PublisherConfig{Client: redisClient},
		wmLogger,
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating redis publisher: %w", err)
	}

	return store.NewRedisStore(redisClient), publisher, nil
}

func newLogger(level string) zerolog.Logger {
	parsed, err := zerolog.ParseLevel(level)
	if err != nil {
		parsed = zerolog.InfoLevel
	}
	writer := zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}
	return zerolog.New(writer).Level(parsed).With().Timestamp().Logger()
}
