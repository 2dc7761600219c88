package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"fintrack/internal/report"
	"fintrack/internal/services/metrics"
	"fintrack/internal/services/prices"
)

// fetchBoard fetches quotes once. A failed fetch leaves the error marker on the board.
func fetchBoard(ctx context.Context, e *env) *prices.Board {
	client := prices.NewClient(e.cfg.QuoteURL, e.cfg.RequestTimeout, prices.DefaultAssets)
	board := prices.NewBoard(client.Assets())
	prices.NewPoller(client, board, nil, e.cfg.PollInterval, e.logger).Refresh(ctx)
	return board
}

// summaryCmd holds the flags for the 'summary' subcommand.
type summaryCmd struct {
	fetch bool
}

func (*summaryCmd) Name() string     { return "summary" }
func (*summaryCmd) Synopsis() string { return "print the dashboard: totals, net worth and every collection" }
func (*summaryCmd) Usage() string {
	return `fintrack summary [-fetch]

  Prints the dashboard. With -fetch the current crypto quotes are included.
`
}

func (c *summaryCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.fetch, "fetch", false, "fetch current crypto quotes")
}

func (c *summaryCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)

	store, b, err := e.openLedger(ctx)
	if err != nil {
		return e.failure("opening ledger", err)
	}
	defer closeBackend(ctx, e, b)

	board := prices.NewBoard(prices.DefaultAssets)
	if c.fetch {
		board = fetchBoard(ctx, e)
	}

	m := metrics.New()
	snap := store.Snapshot()
	summary := m.Summarize(snap.Expenses, snap.Investments, snap.Cryptos)
	e.printMarkdown(report.DashboardMarkdown(summary, m.CategoryTotals(snap.Expenses), board.State(), snap))
	return subcommands.ExitSuccess
}

// pricesCmd prints the current quotes.
type pricesCmd struct{}

func (*pricesCmd) Name() string     { return "prices" }
func (*pricesCmd) Synopsis() string { return "fetch and print current crypto quotes in BRL" }
func (*pricesCmd) Usage() string {
	return `fintrack prices

  Fetches the tracked crypto quotes once.
`
}

func (*pricesCmd) SetFlags(*flag.FlagSet) {}

func (*pricesCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)

	state := fetchBoard(ctx, e).State()
	e.printMarkdown(report.PricesMarkdown(state))
	if state.LastError != "" {
		fmt.Fprintf(e.stderr, "Error fetching prices: %s\n", state.LastError)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
