package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/subcommands"
	"github.com/lasupernova/stock-ticker-dash/internal/application/service"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/api"
	"github.com/lasupernova/stock-ticker-dash/internal/infrastructure/db"
	"github.com/robfig/cron/v3"
)

type collectCmd struct {
	schedule  string
	scheduled bool
}

func (*collectCmd) Name() string { return "collect" }
func (*collectCmd) Synopsis() string {
	return "rebuild the ticker reference table from the exchange listings"
}
func (*collectCmd) Usage() string {
	return `tickers collect [-cron <schedule> | -scheduled]

  Fetches every configured exchange listing and the reference symbol data,
  consolidates alternate spellings, writes the ticker CSV and imports it
  into the ticker store. With -cron the collection repeats on the given
  schedule (seconds field first) until interrupted; -scheduled uses
  tickers.collect_cron.
`
}

func (c *collectCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.schedule, "cron", "", "Cron schedule with a seconds field, e.g. \"0 0 6 * * *\".")
	f.BoolVar(&c.scheduled, "scheduled", false, "Repeat on the configured tickers.collect_cron schedule.")
}

func (c *collectCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	listings := make([]service.Listing, 0, len(e.cfg.Tickers.Listings))
	for _, l := range e.cfg.Tickers.Listings {
		listings = append(listings, service.Listing{Name: l.Name, URL: l.URL})
	}

	collector := service.NewCollectionService(
		listings,
		api.NewListingClient(e.cfg.Prices.Timeout, e.log),
		api.NewIEXClient(e.cfg.Tickers.IEXEndpoint, e.cfg.Prices.Timeout, e.log),
		db.CSVTickerTable{Path: e.cfg.Tickers.CSVPath},
		e.repo,
		e.log,
	)

	schedule := c.schedule
	if schedule == "" && c.scheduled {
		schedule = e.cfg.Tickers.CollectCron
	}

	if schedule == "" {
		result, err := collector.Collect(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}
		printCollection(result, e.cfg.Tickers.CSVPath)
		return subcommands.ExitSuccess
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	scheduler := cron.New(cron.WithSeconds())
	_, err = scheduler.AddFunc(schedule, func() {
		result, err := collector.Collect(ctx)
		if err != nil {
			e.log.Error("Scheduled collection failed", map[string]interface{}{"error": err.Error()})
			return
		}
		printCollection(result, e.cfg.Tickers.CSVPath)
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid cron schedule %q: %v\n", schedule, err)
		return subcommands.ExitUsageError
	}

	e.log.Info("Collection scheduled", map[string]interface{}{"schedule": schedule})
	scheduler.Start()
	<-ctx.Done()
	<-scheduler.Stop().Done()

	return subcommands.ExitSuccess
}

func printCollection(result *service.CollectionResult, path string) {
	fmt.Printf("Total number of stock symbols retrieved: %d\n", result.Listed)
	for name, n := range result.PerListing {
		fmt.Printf("\t%s: %d\n", name, n)
	}
	fmt.Printf("Number of ticker symbols with alternate spelling, that were consolidated: %d\n", result.Consolidated)
	fmt.Printf("Wrote %d tickers (%d without reference data) to %s\n", result.Total, result.Added, path)
}

type importCmd struct {
	csvPath string
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import a ticker CSV table into the ticker store" }
func (*importCmd) Usage() string {
	return `tickers import [-csv <path>]

  Reads a ticker table with the columns symbol, name, date and type and
  stores every row. The path defaults to tickers.csv_path.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.csvPath, "csv", "", "Path of the ticker table to import.")
}

func (c *importCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	path := c.csvPath
	if path == "" {
		path = e.cfg.Tickers.CSVPath
	}

	tickers, err := db.CSVTickerTable{Path: path}.Read()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	n, err := service.NewTickerService(e.repo, e.log).Import(ctx, tickers)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Imported %d tickers from %s\n", n, path)
	return subcommands.ExitSuccess
}

type optionsCmd struct {
	query string
	list  bool
}

func (*optionsCmd) Name() string     { return "options" }
func (*optionsCmd) Synopsis() string { return "show the ticker selection list" }
func (*optionsCmd) Usage() string {
	return `tickers options [-q <query>] [-list]

  Prints the number of entries in the ticker selection list, and the
  entries themselves with -list.
`
}

func (c *optionsCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.query, "q", "", "Only keep options matching this symbol prefix or name.")
	f.BoolVar(&c.list, "list", false, "Print every option.")
}

func (c *optionsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	options, err := service.NewTickerService(e.repo, e.log).Options(ctx, c.query, 0)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	if c.list {
		for _, o := range options {
			fmt.Printf("%-12s %s\n", o.Value, o.Label)
		}
	}
	fmt.Printf("%d selectable tickers\n", len(options))
	return subcommands.ExitSuccess
}

type gainersCmd struct {
	count int
}

func (*gainersCmd) Name() string     { return "gainers" }
func (*gainersCmd) Synopsis() string { return "print today's top gaining stocks" }
func (*gainersCmd) Usage() string {
	return `tickers gainers [-n <count>]
`
}

func (c *gainersCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&c.count, "n", 10, "Number of gainers to print.")
}

func (c *gainersCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	e, err := openEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer e.Close()

	yahoo := api.NewYahooClient(api.YahooConfig{
		Endpoint:         e.cfg.Prices.Endpoint,
		ScreenerEndpoint: e.cfg.Prices.ScreenerEndpoint,
		Timeout:          e.cfg.Prices.Timeout,
	}, e.log)

	gainers, err := yahoo.DayGainers(ctx, c.count)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}

	for _, g := range gainers {
		fmt.Printf("%-8s %-40s %10.2f %+8.2f %+7.2f%%\n", g.Symbol, g.Name, g.Price, g.Change, g.ChangePercent)
	}
	return subcommands.ExitSuccess
}
