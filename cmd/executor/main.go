package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/time/rate"

	"github.com/codeplaymaker/marketplaymaker-sub002/config"
	"github.com/codeplaymaker/marketplaymaker-sub002/internal/adapters/notify"
	"github.com/codeplaymaker/marketplaymaker-sub002/internal/adapters/storage"
	"github.com/codeplaymaker/marketplaymaker-sub002/internal/application/executor"
	"github.com/codeplaymaker/marketplaymaker-sub002/internal/application/risk"
	"github.com/codeplaymaker/marketplaymaker-sub002/internal/domain"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	once := flag.Bool("once", false, "run one execution cycle and exit")
	report := flag.Bool("report", false, "print the risk snapshot and trade history, then exit")
	mode := flag.String("mode", "", "execution mode: simulation|live (overrides config)")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	table := flag.Bool("table", false, "print full snapshot tables each cycle (default: compact 1-line)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if *mode != "" {
		cfg.Executor.Mode = *mode
	}
	setupLogger(cfg.Log)

	slog.Info("executor starting",
		"config", *configPath,
		"mode", cfg.Executor.Mode,
		"interval", cfg.TickInterval(),
		"bankroll", cfg.Executor.Bankroll,
		"once", *once,
	)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewStore(cfg.Storage.DSN)
	if err != nil {
		slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
		os.Exit(1)
	}
	defer store.Close()

	ledger := risk.NewLedger(ctx, cfg.Limits(), store, risk.WithFeeRate(cfg.Executor.FeeRate))

	execCfg := executor.Config{Mode: executor.Mode(cfg.Executor.Mode)}
	exec, err := executor.New(ctx, ledger, store, nil, execCfg)
	if err != nil {
		slog.Error("failed to build executor", "err", err)
		os.Exit(1)
	}

	notifier := notify.NewConsole(*table || *report)

	if *report {
		snapshot := ledger.Snapshot(ctx, cfg.Executor.Bankroll)
		if err := notifier.Notify(ctx, snapshot); err != nil {
			slog.Warn("notifier error", "err", err)
		}
		notifier.PrintTrades(exec.Trades(""), 25)
		return
	}

	runLoop(ctx, cfg, exec, ledger, notifier, *once)
	slog.Info("executor stopped cleanly")
}

// runLoop is the periodic driver: feed → admission → execution → pending
// sweep → resolutions → snapshot, once per tick.
func runLoop(ctx context.Context, cfg *config.Config, exec *executor.Executor, ledger *risk.Ledger, notifier *notify.Console, once bool) {
	feed := newFileFeed(cfg.Executor.OpportunityFeed, cfg.Executor.PriceFeed)
	criteria := executor.Criteria{
		MaxTrades:     cfg.Executor.MaxTradesPerTick,
		MinScore:      cfg.Executor.MinScore,
		MinConfidence: domain.Confidence(cfg.Executor.MinConfidence),
	}

	// One token per tick: keeps cycles from piling up if a tick runs long.
	limiter := rate.NewLimiter(rate.Every(cfg.TickInterval()), 1)

	for {
		if err := limiter.Wait(ctx); err != nil {
			return
		}

		runCycle(ctx, cfg, exec, ledger, feed, notifier, criteria)

		if once {
			return
		}
		select {
		case <-ctx.Done():
			return
		default:
		}
	}
}

func runCycle(ctx context.Context, cfg *config.Config, exec *executor.Executor, ledger *risk.Ledger, feed *fileFeed, notifier *notify.Console, criteria executor.Criteria) {
	start := time.Now()
	bankroll := cfg.Executor.Bankroll

	opps, err := feed.Opportunities()
	if err != nil {
		slog.Warn("cycle: error reading opportunity feed", "err", err)
	}
	if len(opps) > 0 {
		result := exec.AutoExecute(ctx, opps, bankroll, criteria)
		slog.Debug("cycle: batch executed",
			"filled", result.Filled, "pending", result.Pending, "rejected", result.Rejected)
	}

	prices, err := feed.Prices()
	if err != nil {
		slog.Warn("cycle: error reading price feed", "err", err)
	}
	if len(prices) > 0 {
		resolvedOrders := exec.CheckPendingOrders(ctx, prices)
		if len(resolvedOrders) > 0 {
			slog.Info("cycle: pending orders resolved", "count", len(resolvedOrders))
		}
	}

	for _, res := range feed.Resolutions() {
		for _, side := range []domain.Side{domain.SideYes, domain.SideNo} {
			if closed := ledger.ClosePosition(ctx, res.ConditionID, side, res.Outcome); closed != nil {
				slog.Info("cycle: position settled",
					"market", res.ConditionID,
					"side", side,
					"pnl", closed.PnL,
				)
			}
		}
	}

	snapshot := ledger.Snapshot(ctx, bankroll)
	if err := notifier.Notify(ctx, snapshot); err != nil {
		slog.Warn("notifier error", "err", err)
	}

	slog.Debug("cycle: done", "took", time.Since(start))
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
