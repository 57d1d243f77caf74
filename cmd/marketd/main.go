package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/config"
	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/core/events"
	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/core/state"
	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/gateway"
	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/integrations/localchain"
	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/integrations/webhooks"
	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/native/market"
	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/observability"
	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/observability/logging"
	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/pricing"
	"github.com/racoon-supply-rac/chihuahua-nft-marketplace-sub000/storage"
)

const (
	webhookURLEnv    = "MARKETD_WEBHOOK_URL"
	webhookSecretEnv = "MARKETD_WEBHOOK_SECRET"
)

func main() {
	configFile := flag.String("config", "./market.toml", "Path to the configuration file")
	listenFlag := flag.String("listen", "", "Override the configured HTTP listen address")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	logger := logging.Setup("marketd", cfg.Environment)
	if err := config.Validate(cfg); err != nil {
		logger.Error("invalid config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	listen := cfg.ListenAddress
	if strings.TrimSpace(*listenFlag) != "" {
		listen = strings.TrimSpace(*listenFlag)
	}

	db, err := storage.NewLevelDB(filepath.Join(cfg.DataDir, "market"))
	if err != nil {
		logger.Error("open database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer db.Close()

	params, err := cfg.MarketParams()
	if err != nil {
		logger.Error("parse market params", slog.String("error", err.Error()))
		os.Exit(1)
	}
	engine, err := market.NewEngine(params)
	if err != nil {
		logger.Error("construct engine", slog.String("error", err.Error()))
		os.Exit(1)
	}
	engine.SetStore(state.NewManager(db))
	engine.SetBank(localchain.NewBank())
	engine.SetRegistry(localchain.NewRegistry())

	rates, err := pricing.ParseRates(cfg.Pricing.Rates)
	if err != nil {
		logger.Error("parse pricing rates", slog.String("error", err.Error()))
		os.Exit(1)
	}
	oracle, err := pricing.NewStaticOracle(rates)
	if err != nil {
		logger.Error("construct oracle", slog.String("error", err.Error()))
		os.Exit(1)
	}
	engine.SetOracle(oracle)

	emitters := events.Multi{observability.NewEmitter()}
	if endpoint := strings.TrimSpace(os.Getenv(webhookURLEnv)); endpoint != "" {
		dispatcher, err := webhooks.NewDispatcher(endpoint, []byte(os.Getenv(webhookSecretEnv)))
		if err != nil {
			logger.Error("construct webhook dispatcher", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer dispatcher.Close()
		emitters = append(emitters, dispatcher)
		logger.Info("webhook forwarding enabled", slog.String("endpoint", endpoint))
	}
	engine.SetEmitter(emitters)

	if err := seed(engine, cfg, params.Admin); err != nil {
		logger.Error("seed marketplace state", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go sweepExpiredSales(ctx, logger, engine, params.Admin,
		time.Duration(cfg.SweepIntervalSeconds)*time.Second)

	server := &http.Server{
		Addr:              listen,
		Handler:           gateway.NewServer(engine, logger).Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("gateway listening", slog.String("address", listen))
		serverErr <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case err := <-serverErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("gateway server failed", slog.String("error", err.Error()))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("gateway shutdown", slog.String("error", err.Error()))
	}
}

// seed registers the configured collections and installs the reward system
// when none exists yet. Seeding is idempotent across restarts.
func seed(engine *market.Engine, cfg *config.Config, admin [20]byte) error {
	collections, err := cfg.SeedCollections()
	if err != nil {
		return err
	}
	for _, collection := range collections {
		if err := engine.RegisterCollection(admin, collection); err != nil {
			if errors.Is(err, market.ErrCollectionRegistered) {
				continue
			}
			return err
		}
	}

	system, err := cfg.RewardSystem()
	if err != nil {
		return err
	}
	if system == nil {
		return nil
	}
	if _, err := engine.RewardSystemInfo(); err == nil {
		return nil // keep the installed system and its distribution counter
	} else if !errors.Is(err, market.ErrNoRewardSystem) {
		return err
	}
	return engine.UpdateRewardSystem(admin, system)
}

// sweepExpiredSales periodically removes expired listings so floors and
// counters track reality even without buyer traffic.
func sweepExpiredSales(ctx context.Context, logger *slog.Logger, engine *market.Engine, admin [20]byte, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := engine.RemoveExpiredSales(admin)
			if err != nil {
				logger.Error("expired sale sweep", slog.String("error", err.Error()))
				continue
			}
			if len(removed) > 0 {
				logger.Info("swept expired sales", slog.Int("count", len(removed)))
			}
		}
	}
}
