package main

import (
	"fmt"
	"os"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jcalderone/barsim/src/data"
	"github.com/jcalderone/barsim/src/engine"
	"github.com/jcalderone/barsim/src/eventpubsub"
	"github.com/jcalderone/barsim/src/models"
	"github.com/jcalderone/barsim/src/report"
	"github.com/jcalderone/barsim/src/store"
	"github.com/jcalderone/barsim/src/strategy"
	"github.com/jcalderone/barsim/src/utils"
)

type RunArgs struct {
	ConfigPath  string
	DatabaseURL string
}

type RunConfig struct {
	Symbol string `yaml:"symbol"`

	Data struct {
		CSV     string `yaml:"csv"`
		Polygon struct {
			Multiplier int    `yaml:"multiplier"`
			Timespan   string `yaml:"timespan"`
			CacheDir   string `yaml:"cache_dir"`
		} `yaml:"polygon"`
	} `yaml:"data"`

	Start time.Time `yaml:"start"`
	End   time.Time `yaml:"end"`

	InitialBalance float64 `yaml:"initial_balance"`
	MarginDivisor  float64 `yaml:"margin_divisor"`

	Fees struct {
		MarketBps float64 `yaml:"market_bps"`
		LimitBps  float64 `yaml:"limit_bps"`
	} `yaml:"fees"`

	Strategy struct {
		Window  int     `yaml:"window"`
		StdDevs float64 `yaml:"std_devs"`
	} `yaml:"strategy"`

	FlattenAtEnd bool `yaml:"flatten_at_end"`
}

func (c *RunConfig) Validate() error {
	if c.Symbol == "" {
		return fmt.Errorf("symbol is required")
	}

	if c.InitialBalance <= 0 {
		return fmt.Errorf("initial_balance must be positive")
	}

	if !c.End.After(c.Start) {
		return fmt.Errorf("end must be after start")
	}

	if c.Strategy.Window < 2 {
		return fmt.Errorf("strategy.window must be at least 2")
	}

	return nil
}

var runCmd = &cobra.Command{
	Use:   "go run src/cmd/backtest/main.go --config run.yaml",
	Short: "Replay historical bars through the execution engine and print a performance summary",
	Run: func(cmd *cobra.Command, args []string) {
		configPath, err := cmd.Flags().GetString("config")
		if err != nil {
			log.Fatalf("error getting config: %v", err)
		}

		databaseURL, err := cmd.Flags().GetString("database-url")
		if err != nil {
			log.Fatalf("error getting database-url: %v", err)
		}

		if err := Run(RunArgs{ConfigPath: configPath, DatabaseURL: databaseURL}); err != nil {
			log.Fatalf("Error: %v", err)
		}
	},
}

func newFeed(cfg *RunConfig) (data.BarFeed, error) {
	if cfg.Data.CSV != "" {
		return data.NewCSVFeed(cfg.Data.CSV, cfg.Symbol), nil
	}

	apiKey := os.Getenv("POLYGON_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("missing POLYGON_API_KEY environment variable")
	}

	p := cfg.Data.Polygon
	if p.Multiplier <= 0 {
		p.Multiplier = 1
	}

	if p.Timespan == "" {
		p.Timespan = "minute"
	}

	if p.CacheDir == "" {
		p.CacheDir = "data"
	}

	return data.NewPolygonFeed(apiKey, cfg.Symbol, p.Multiplier, p.Timespan, p.CacheDir), nil
}

func Run(args RunArgs) error {
	startedAt := time.Now().UTC()

	if err := utils.InitEnvironmentVariables(); err != nil {
		return fmt.Errorf("failed to init environment variables: %w", err)
	}

	raw, err := os.ReadFile(args.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to read run config: %w", err)
	}

	var cfg RunConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("failed to unmarshal run config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid run config: %w", err)
	}

	feed, err := newFeed(&cfg)
	if err != nil {
		return err
	}

	log.Infof("Loading %s bars from %s to %s", cfg.Symbol, cfg.Start, cfg.End)

	bars, err := feed.FetchBars(cfg.Start, cfg.End)
	if err != nil {
		return fmt.Errorf("failed to fetch bars: %w", err)
	}

	if len(bars) == 0 {
		return fmt.Errorf("no bars returned for %s between %s and %s", cfg.Symbol, cfg.Start, cfg.End)
	}

	log.Infof("Loaded %d bars, range %s to %s", len(bars), bars[0].Time, bars[len(bars)-1].Time)

	eventpubsub.Init()

	err = eventpubsub.Subscribe(eventpubsub.OrderFilledEvent, func(trade *models.Trade) {
		log.WithFields(log.Fields{
			"symbol": trade.Symbol,
			"side":   trade.Side,
			"qty":    trade.Quantity,
			"price":  trade.Price,
			"pnl":    trade.Pnl,
		}).Info("order filled")
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to fills: %w", err)
	}

	err = eventpubsub.Subscribe(eventpubsub.OrderCancelledEvent, func(order *models.Order) {
		log.Debugf("order %s cancelled: %s", order.ID, order.Tag)
	})
	if err != nil {
		return fmt.Errorf("failed to subscribe to cancellations: %w", err)
	}

	assets := map[string]models.AssetVars{
		cfg.Symbol: {
			Symbol:       cfg.Symbol,
			MarketFeeBps: cfg.Fees.MarketBps,
			LimitFeeBps:  cfg.Fees.LimitBps,
		},
	}

	e := engine.NewExecutionEngine(cfg.InitialBalance, cfg.MarginDivisor, assets)
	e.Run(bars, strategy.NewMeanReversion(cfg.Strategy.Window, cfg.Strategy.StdDevs))

	if cfg.FlattenAtEnd {
		settle(e, bars[len(bars)-1])
	}

	summary := report.NewSummary(e.InitialBalance(), e.Equity(), e.Fills(), e.EquityCurve())
	fmt.Println(summary.String())

	if fills := e.Fills(); len(fills) > 0 {
		fmt.Println(report.TradesTable(fills))
	}

	printEquitySnapshot(e.EquityCurve())

	if args.DatabaseURL != "" {
		db, err := store.InitPostgresWithUrl(args.DatabaseURL)
		if err != nil {
			return err
		}

		runID, err := store.SaveRun(db, cfg.Symbol, startedAt, summary, e.Fills(), e.EquityCurve())
		if err != nil {
			return fmt.Errorf("failed to save run: %w", err)
		}

		log.Infof("Saved run %s", runID)
	}

	eventpubsub.Wait()

	return nil
}

// printEquitySnapshot shows the first and last few points of the equity curve.
func printEquitySnapshot(curve []models.EquityRecord) {
	if len(curve) == 0 {
		return
	}

	const edge = 5

	fmt.Println("Equity Snapshot (First 5 vs Last 5):")
	for i, rec := range curve {
		if i == edge && len(curve) > 2*edge {
			fmt.Println("  ...")
		}

		if i >= edge && i < len(curve)-edge {
			continue
		}

		fmt.Printf("  %s: $%.2f\n", rec.Time.Format(time.RFC3339), rec.Equity)
	}
	fmt.Println()
}

// settle closes any open position at the final close by replaying one
// synthetic bar, since market orders only fill on the bar after submission.
func settle(e *engine.ExecutionEngine, last models.Bar) {
	if err := e.Flatten(last.Time); err != nil {
		log.Warnf("failed to flatten: %v", err)
		return
	}

	e.ProcessBar(models.Bar{
		Time:   last.Time.Add(time.Minute),
		Symbol: last.Symbol,
		Open:   last.Close,
		High:   last.Close,
		Low:    last.Close,
		Close:  last.Close,
		Volume: 0,
	})
}

func main() {
	runCmd.PersistentFlags().String("config", "", "Path to the YAML run configuration.")
	runCmd.PersistentFlags().String("database-url", "", "Optional postgres URL to persist the run.")

	runCmd.MarkPersistentFlagRequired("config")

	runCmd.Execute()
}
