package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/stakelens/stakesync/internal/clients/chainclient"
	"github.com/stakelens/stakesync/internal/config"
	"github.com/stakelens/stakesync/internal/db"
	dbmodel "github.com/stakelens/stakesync/internal/db/model"
	"github.com/stakelens/stakesync/internal/eligibility"
	"github.com/stakelens/stakesync/internal/engine"
	"github.com/stakelens/stakesync/internal/observability/metrics"
	"github.com/stakelens/stakesync/internal/observability/tracing"
	"github.com/stakelens/stakesync/internal/queue"
)

func StartDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "start-daemon",
		Short: "Starts the stakesync daemon",
		Args:  cobra.ExactArgs(0),
		RunE:  startDaemon,
	}

	return cmd
}

func startDaemon(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	ctx = tracing.InjectTraceID(ctx)
	log := log.Ctx(ctx)

	cfgPath := GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		return fmt.Errorf("error while loading config file %s: %w", cfgPath, err)
	}

	if err := dbmodel.Setup(ctx, &cfg.Db); err != nil {
		return fmt.Errorf("error while setting up snapshot db model: %w", err)
	}

	var dbClient db.DbInterface
	dbClient, err = db.New(ctx, cfg.Db)
	if err != nil {
		return fmt.Errorf("error while creating db client: %w", err)
	}
	dbClient = db.NewDbWithMetrics(dbClient)

	var sink eligibility.DiagnosticSink
	if cfg.Queue != nil {
		queueManager, err := queue.NewQueueManager(cfg.Queue)
		if err != nil {
			return fmt.Errorf("error while creating queue manager: %w", err)
		}
		defer queueManager.Shutdown()
		sink = queueManager
	}

	chainClient := chainclient.NewChainClient(&cfg.Chain)
	chainClient = chainclient.NewChainClientWithMetrics(chainClient)

	metrics.Init(cfg.Metrics.GetMetricsPort())

	engines := make([]*engine.Engine, 0, len(cfg.Identities))
	for _, address := range cfg.Identities {
		eng := engine.NewEngine(cfg.Sync, cfg.Reward, address, chainClient, dbClient, sink)
		eng.Start(ctx)
		engines = append(engines, eng)
		log.Info().Str("address", address).Msg("started sync engine")
	}

	<-ctx.Done()
	log.Info().Msg("shutting down")

	for _, eng := range engines {
		eng.Stop()
	}

	return nil
}
