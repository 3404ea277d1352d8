package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"
	"github.com/spf13/cobra"

	"github.com/babylonlabs-io/staking-ledger/internal/api"
	"github.com/babylonlabs-io/staking-ledger/internal/clients/tokenclient"
	"github.com/babylonlabs-io/staking-ledger/internal/config"
	"github.com/babylonlabs-io/staking-ledger/internal/db"
	dbmodel "github.com/babylonlabs-io/staking-ledger/internal/db/model"
	"github.com/babylonlabs-io/staking-ledger/internal/ledger"
	"github.com/babylonlabs-io/staking-ledger/internal/observability/metrics"
	"github.com/babylonlabs-io/staking-ledger/internal/observability/tracing"
	"github.com/babylonlabs-io/staking-ledger/internal/queue"
	"github.com/babylonlabs-io/staking-ledger/internal/services"
)

const shutdownTimeout = 15 * time.Second

func StartServerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-server",
		Short: "Starts the staking ledger server",
		Args:  cobra.ExactArgs(0),
		RunE:  startServer,
	}

	return cmd
}

func startServer(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	// load config
	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		return fmt.Errorf("error while loading config file %s: %w", cfgPath, err)
	}

	err = dbmodel.Setup(ctx, &cfg.Db)
	if err != nil {
		return fmt.Errorf("error while setting up ledger db model: %w", err)
	}

	// create new db client
	dbClient, err := db.New(ctx, cfg.Db)
	if err != nil {
		return fmt.Errorf("error while creating db client: %w", err)
	}
	defer func() {
		if err := dbClient.Close(context.WithoutCancel(ctx)); err != nil {
			log.Warn().Err(err).Msg("failed to close db client")
		}
	}()

	publisher, err := newPublisher(cfg)
	if err != nil {
		return err
	}
	defer publisher.Shutdown()

	token := tokenclient.NewMemoryToken(cfg.Ledger.PoolAccount)
	stakeLedger := ledger.New(
		tokenclient.NewTokenGatewayWithMetrics(token),
		ledger.SystemClock{},
		cfg.Ledger.Funder,
	)

	service := services.NewService(cfg, db.NewDbWithMetrics(dbClient), stakeLedger, token, publisher)
	if err := service.Bootstrap(ctx); err != nil {
		return fmt.Errorf("error while bootstrapping ledger: %w", err)
	}

	// initialize metrics with the metrics port from config
	metrics.Init(cfg.Metrics.GetMetricsPort())

	server := api.New(cfg, service)

	var wg conc.WaitGroup
	wg.Go(func() {
		service.StartPollers(ctx)
	})
	wg.Go(func() {
		if err := server.Start(); err != nil {
			log.Error().Err(err).Msg("server stopped unexpectedly")
			stop()
		}
	})

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("failed to shut down server")
	}

	// pollers write the final checkpoint before returning
	wg.Wait()
	return nil
}

func newPublisher(cfg *config.Config) (queue.Publisher, error) {
	if cfg.Queue == nil {
		log.Info().Msg("no queue configured, ledger events are only logged")
		return queue.NewLogPublisher(), nil
	}

	qm, err := queue.NewQueueManager(cfg.Queue)
	if err != nil {
		return nil, fmt.Errorf("error while creating queue manager: %w", err)
	}
	return qm, nil
}
