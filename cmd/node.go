package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mezonai/cryptocurrency/api"
	"github.com/mezonai/cryptocurrency/config"
	"github.com/mezonai/cryptocurrency/events"
	"github.com/mezonai/cryptocurrency/jsonrpc"
	"github.com/mezonai/cryptocurrency/ledger"
	"github.com/mezonai/cryptocurrency/logx"
	"github.com/mezonai/cryptocurrency/monitoring"
	"github.com/mezonai/cryptocurrency/ratelimit"
	"github.com/mezonai/cryptocurrency/sequencer"
	"github.com/mezonai/cryptocurrency/service"
	"github.com/mezonai/cryptocurrency/store"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var (
	nodeConfigPath string
	iniConfigPath  string
	logToFile      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the ledger node",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runNode(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&nodeConfigPath, "config", "c", "config/node.yml", "node config file (yaml)")
	runCmd.Flags().StringVar(&iniConfigPath, "ini", "config/config.ini", "ledger and sequencer tuning (ini)")
	runCmd.Flags().BoolVar(&logToFile, "log-file", true, "also write logs to the rotating file under ./logs")
}

func runNode(parent context.Context) error {
	if logToFile {
		fileWriter, err := logx.NewFileWriter()
		if err != nil {
			return fmt.Errorf("failed to set up log file: %w", err)
		}
		defer fileWriter.Close()
		logx.InitWithOutput(io.MultiWriter(os.Stdout, fileWriter))
	}

	cfg, err := config.LoadNodeConfig(nodeConfigPath)
	if err != nil {
		return err
	}
	ledgerCfg, err := config.LoadLedgerConfig(iniConfigPath)
	if err != nil {
		return err
	}
	seqCfg, err := config.LoadSequencerConfig(iniConfigPath)
	if err != nil {
		return err
	}
	rlCfg, err := config.LoadRateLimitConfig(iniConfigPath)
	if err != nil {
		return err
	}

	monitoring.InitMetrics()

	walletStore, err := store.CreateStore(&cfg.Store)
	if err != nil {
		return fmt.Errorf("failed to initialize wallet store: %w", err)
	}
	defer walletStore.MustClose()

	count, err := walletStore.Count()
	if err != nil {
		return fmt.Errorf("failed to read wallet store: %w", err)
	}
	monitoring.SetWalletCount(count)
	logx.Info("NODE", fmt.Sprintf("Wallet store ready | type=%s wallets=%d", cfg.Store.Type, count))

	sink, err := newEventSink(cfg.Events)
	if err != nil {
		return err
	}
	eventRouter := events.NewEventRouter(events.NewEventBus(), sink)
	defer func() {
		if err := eventRouter.Close(); err != nil {
			logx.Warn("NODE", "Event sink close failed:", err)
		}
	}()

	ld := ledger.NewLedger(walletStore, ledger.Config{InitBalance: ledgerCfg.InitBalance}, eventRouter)
	seq := sequencer.New(ld, sequencer.Config{
		QueueSize:     seqCfg.QueueSize,
		SubmitTimeout: time.Duration(seqCfg.SubmitTimeoutMs) * time.Millisecond,
	})
	seq.Start()
	defer seq.Stop()

	walletSvc := service.NewWalletService(walletStore)
	healthSvc := service.NewHealthService(walletStore, seq)

	apiSrv := api.NewAPIServer(walletSvc, healthSvc, cfg.Node.ListenAddr)
	apiSrv.Start()

	var rpcSrv *jsonrpc.Server
	if cfg.Node.JSONRPCAddr != "" {
		rpcSrv = jsonrpc.NewServer(cfg.Node.JSONRPCAddr, seq, walletSvc, healthSvc)
		if cors, ok := jsonrpc.CORSFromEnv(); ok {
			rpcSrv.SetCORSConfig(cors)
		}
		limiter := newRateLimiter(rlCfg)
		defer limiter.Stop()
		rpcSrv.SetRateLimiter(limiter)
		rpcSrv.Start()
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()
	logx.Info("NODE", "Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if rpcSrv != nil {
		if err := rpcSrv.Shutdown(shutdownCtx); err != nil {
			logx.Warn("NODE", "JSON-RPC shutdown:", err)
		}
	}
	if err := apiSrv.Shutdown(shutdownCtx); err != nil {
		logx.Warn("NODE", "API shutdown:", err)
	}
	return nil
}

func newEventSink(cfg config.EventsConfig) (events.Sink, error) {
	switch cfg.Sink {
	case config.EventSinkRedis:
		sink, err := events.NewRedisStreamSink(cfg.RedisAddr, cfg.RedisStream)
		if err != nil {
			return nil, fmt.Errorf("failed to connect event sink: %w", err)
		}
		return sink, nil
	case config.EventSinkKafka:
		return events.NewKafkaSink(cfg.KafkaBrokers, cfg.KafkaTopic), nil
	default:
		return nil, nil
	}
}

func newRateLimiter(cfg *config.RateLimitConfig) *ratelimit.GlobalRateLimiter {
	window := time.Duration(cfg.WindowMs) * time.Millisecond
	return ratelimit.NewGlobalRateLimiter(&ratelimit.GlobalRateLimiterConfig{
		IPConfig: &ratelimit.RateLimiterConfig{
			MaxRequests:     cfg.IPMaxRequests,
			WindowSize:      window,
			CleanupInterval: 5 * time.Minute,
		},
		WalletConfig: &ratelimit.RateLimiterConfig{
			MaxRequests:     cfg.WalletMaxRequests,
			WindowSize:      window,
			CleanupInterval: 5 * time.Minute,
		},
	})
}
