package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dexwatch/swap-tracker/internal/alert"
	"github.com/dexwatch/swap-tracker/internal/engine"
	"github.com/dexwatch/swap-tracker/internal/notify"
	"github.com/dexwatch/swap-tracker/internal/pricing"
	"github.com/dexwatch/swap-tracker/internal/subgraph"
	"github.com/dexwatch/swap-tracker/internal/tracker"
	"github.com/dexwatch/swap-tracker/pkg/common/config"
	"github.com/dexwatch/swap-tracker/pkg/common/logger"
	"github.com/dexwatch/swap-tracker/pkg/infra"
	"github.com/dexwatch/swap-tracker/pkg/kvstore"
	"github.com/dexwatch/swap-tracker/pkg/retry"
	"github.com/dexwatch/swap-tracker/pkg/store/cursorstore"
	"github.com/nats-io/nats.go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debug      bool
)

func main() {
	root := &cobra.Command{
		Use:   "tracker",
		Short: "DEX swap tracker: reconciles on-chain swaps and alerts on large trades",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "configs/config.yaml", "path to config file")
	root.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logs")

	root.AddCommand(runCmd(), pricesCmd(), alertPrinterCmd())

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func initLogger() {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	logger.Init(&logger.Options{
		Level:      level,
		TimeFormat: time.RFC3339,
	})
}

func runCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the tracker workers for all configured project/chain pairs",
		RunE: func(cmd *cobra.Command, args []string) error {
			initLogger()

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			logger.Info("Config loaded", "projects", len(cfg.Projects))

			manager, err := buildManager(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			manager.Start()
			logger.Info("Tracker is running... Press Ctrl+C to stop")
			waitForShutdown()
			manager.Stop()
			logger.Info("Tracker stopped")
			return nil
		},
	}
}

func buildManager(ctx context.Context, cfg config.Config) (*tracker.Manager, error) {
	kv, err := kvstore.NewFromConfig(cfg.KVStore)
	if err != nil {
		return nil, fmt.Errorf("create kvstore: %w", err)
	}
	cursors := cursorstore.New(kv, cfg.Tracker.Name)

	overrides, err := pricing.ParseOverrides(cfg.Pricing.Overrides)
	if err != nil {
		return nil, err
	}
	prices := pricing.NewProvider(
		pricing.NewBinanceSource(cfg.Pricing.BinanceURL),
		cfg.Pricing.Aliases,
		overrides,
		cfg.Pricing.RefreshInterval,
	)

	aliases, err := engine.NewAliasMap(cfg.SymbolAliases)
	if err != nil {
		return nil, err
	}

	thresholds, err := alert.ParseThresholds(cfg.Alerting.MainstreamThreshold, cfg.Alerting.AltThreshold)
	if err != nil {
		return nil, err
	}
	renderer, err := alert.NewRenderer(cfg.Alerting.Locales)
	if err != nil {
		return nil, err
	}

	var tags alert.TagLookup
	switch {
	case cfg.Alerting.TagLookup.URL != "":
		tags = alert.NewHTTPTagLookup(cfg.Alerting.TagLookup.URL)
	default:
		static := alert.StaticTagLookup{}
		for addr, t := range cfg.Alerting.TagLookup.Static {
			static[addr] = alert.Tag{DisplayTag: t.DisplayTag, Twitter: t.Twitter}
		}
		tags = static
	}

	explorers := make(map[string]string)
	for _, project := range cfg.Projects {
		for chainName, chain := range project.Chains {
			if chain.ExplorerTxURL != "" {
				explorers[chainName] = chain.ExplorerTxURL
			}
		}
	}

	selector := alert.NewSelector(thresholds, tags, renderer, explorers, logger.L())

	sinks, closers, err := buildSinks(cfg)
	if err != nil {
		return nil, err
	}
	closers = append(closers, cursors)

	var workers []*tracker.Worker
	for projectName, project := range cfg.Projects {
		for chainName, chain := range project.Chains {
			runner := tracker.NewRunner(
				tracker.RunnerOptions{
					Project:         projectName,
					Chain:           chainName,
					PageSize:        chain.PageSize,
					ConfirmationLag: cfg.Tracker.ConfirmationLag,
					CursorTTL:       cfg.Tracker.CursorTTL,
				},
				subgraph.NewClient(chain.SubgraphURL),
				cursors,
				prices,
				aliases,
				selector,
				sinks,
				logger.L(),
			)
			workers = append(workers, tracker.NewWorker(ctx, runner, chain.PollInterval,
				logger.With("project", projectName, "chain", chainName)))
		}
	}

	return tracker.NewManager(workers, closers), nil
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

func buildSinks(cfg config.Config) ([]tracker.AlertSink, []io.Closer, error) {
	var sinks []tracker.AlertSink
	var closers []io.Closer

	if cfg.NATS.Enabled {
		nc, err := infra.GetNATSConnection(cfg.NATS.URL)
		if err != nil {
			return nil, nil, fmt.Errorf("connect NATS: %w", err)
		}
		mgr, err := infra.NewNATSMessageQueueManager(
			cfg.NATS.Stream,
			[]string{cfg.NATS.SubjectPrefix + ".>"},
			nc,
		)
		if err != nil {
			return nil, nil, err
		}
		queue, err := mgr.NewMessageQueue("tracker")
		if err != nil {
			return nil, nil, err
		}
		emitter := notify.NewEmitter(queue, cfg.NATS.SubjectPrefix)
		sinks = append(sinks, tracker.QueueSink{Emitter: emitter})
		closers = append(closers, closerFunc(func() error {
			emitter.Close()
			nc.Close()
			return nil
		}))
	}

	if cfg.Alerting.Telegram.Enabled {
		dispatcher := notify.NewDispatcher([]notify.Sender{
			notify.NewTelegramSender(cfg.Alerting.Telegram.Token, cfg.Alerting.Telegram.ChatID),
		}, logger.L())
		sinks = append(sinks, tracker.ChannelSink{Dispatcher: dispatcher, Locale: cfg.Alerting.Locales[0]})
	}

	if len(sinks) == 0 {
		sinks = append(sinks, tracker.LogSink{Logger: logger.L()})
	}
	return sinks, closers, nil
}

func pricesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prices",
		Short: "Fetch the reference price table and print selected entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			initLogger()

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			overrides, err := pricing.ParseOverrides(cfg.Pricing.Overrides)
			if err != nil {
				return err
			}

			source := pricing.NewBinanceSource(cfg.Pricing.BinanceURL)
			var base map[string]decimal.Decimal
			err = retry.Constant(cmd.Context(), func() error {
				var ferr error
				base, ferr = source.Fetch(cmd.Context())
				return ferr
			}, retry.DefaultInterval, retry.DefaultMaxAttempts)
			if err != nil {
				return err
			}
			table := pricing.NewTable(base, cfg.Pricing.Aliases, overrides)

			logger.Info("Price table built", "symbols", table.Len())
			for _, symbol := range []string{"BTC", "ETH", "WETH", "WBTC", "USDT"} {
				if price, ok := table.Get(symbol); ok {
					fmt.Printf("%-6s %s\n", symbol, price.String())
				} else {
					fmt.Printf("%-6s (unpriced)\n", symbol)
				}
			}
			return nil
		},
	}
}

func alertPrinterCmd() *cobra.Command {
	var natsURL, subject string

	cmd := &cobra.Command{
		Use:   "alert-printer",
		Short: "Subscribe to published alerts and print them",
		RunE: func(cmd *cobra.Command, args []string) error {
			initLogger()

			nc, err := nats.Connect(natsURL)
			if err != nil {
				return fmt.Errorf("NATS connect: %w", err)
			}
			defer nc.Close()

			logger.Info("Subscribed", "subject", subject)
			_, err = nc.Subscribe(subject, func(msg *nats.Msg) {
				var event notify.AlertEvent
				if err := json.Unmarshal(msg.Data, &event); err != nil {
					logger.Error("Unmarshal alert event failed", "err", err)
					return
				}
				logger.Info("Alert received",
					"chain", event.Chain,
					"tx_id", event.TxID,
					"value", event.Value,
				)
				for locale, text := range event.Messages {
					fmt.Printf("--- %s ---\n%s\n", locale, text)
				}
			})
			if err != nil {
				return fmt.Errorf("NATS subscribe: %w", err)
			}

			waitForShutdown()
			return nil
		},
	}
	cmd.Flags().StringVar(&natsURL, "nats-url", nats.DefaultURL, "NATS server URL")
	cmd.Flags().StringVar(&subject, "subject", "alerts.>", "NATS subject to subscribe to")
	return cmd
}

func waitForShutdown() {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
}
