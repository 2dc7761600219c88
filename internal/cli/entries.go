package cli

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/google/subcommands"
	"github.com/shopspring/decimal"

	"fintrack/internal/models"
	"fintrack/internal/report"
	"fintrack/internal/services/currency"
	"fintrack/internal/services/ledger"
)

// kindNames are the singular names used in messages
var kindNames = map[models.Kind]string{
	models.KindExpense:    "expense",
	models.KindInvestment: "investment",
	models.KindCrypto:     "crypto entry",
}

// parseAmount accepts 12.50 or the pt-BR form 12,50. Empty means zero.
func parseAmount(name, s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, nil
	}
	if strings.Contains(s, ",") {
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid %s %q", name, s)
	}
	return d, nil
}

// addCmd holds the flags for the 'add' subcommand.
type addCmd struct {
	kind        string
	date        string
	description string
	amount      string
	category    string
	typ         string
	profit      string
}

func (*addCmd) Name() string     { return "add" }
func (*addCmd) Synopsis() string { return "record an expense, investment or crypto snapshot" }
func (*addCmd) Usage() string {
	return `fintrack add -kind expense -amount <value> -desc <text> -category <category> [-date <date>]
fintrack add -kind investment -type <type> -amount <value> [-desc <text>] [-date <date>]
fintrack add -kind crypto -type <type> -amount <value> [-profit <value>] [-date <date>]

  Adds an entry. Investment profit is computed against the oldest snapshot of
  the same type; crypto profit is entered by hand.
`
}

func (c *addCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "expense", "collection: expense, investment or crypto")
	f.StringVar(&c.date, "date", "", "date as YYYY-MM-DD or DD/MM/YYYY, defaults to today")
	f.StringVar(&c.description, "desc", "", "description")
	f.StringVar(&c.amount, "amount", "", "amount in BRL")
	f.StringVar(&c.category, "category", "", "expense category: Leisure, Transport, Health, Clothing or Other")
	f.StringVar(&c.typ, "type", "", "investment or crypto type")
	f.StringVar(&c.profit, "profit", "", "crypto profit in BRL")
}

func (c *addCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)

	kind, err := models.ParseKind(c.kind)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	amount, err := parseAmount("amount", c.amount)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	profit, err := parseAmount("profit", c.profit)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	if c.date == "" {
		c.date = e.now().Format(models.ISODateLayout)
	}

	store, b, err := e.openLedger(ctx)
	if err != nil {
		return e.failure("opening ledger", err)
	}
	defer closeBackend(ctx, e, b)

	switch kind {
	case models.KindExpense:
		x, err := store.AddExpense(ctx, ledger.ExpenseInput{Date: c.date, Description: c.description, Amount: amount, Category: c.category})
		if err != nil {
			return e.failure("adding expense", err)
		}
		fmt.Fprintf(e.stdout, "Added expense #%d: %s %s\n", x.ID, x.Description, currency.Format(x.Amount))

	case models.KindInvestment:
		x, err := store.AddInvestment(ctx, ledger.InvestmentInput{Date: c.date, Type: c.typ, Amount: amount, Description: c.description})
		if err != nil {
			return e.failure("adding investment", err)
		}
		fmt.Fprintf(e.stdout, "Added investment #%d: %s %s, profit %s (%s)\n",
			x.ID, x.Type, currency.Format(x.Amount), currency.Format(x.Profit), currency.FormatPercent(x.ProfitPercent))

	case models.KindCrypto:
		x, err := store.AddCrypto(ctx, ledger.CryptoInput{Date: c.date, Type: c.typ, Amount: amount, Profit: profit})
		if err != nil {
			return e.failure("adding crypto entry", err)
		}
		fmt.Fprintf(e.stdout, "Added crypto entry #%d: %s %s, profit %s (%s)\n",
			x.ID, x.Type, currency.Format(x.Amount), currency.Format(x.Profit), currency.FormatPercent(x.ProfitPercent))
	}
	return subcommands.ExitSuccess
}

// editCmd holds the flags for the 'edit' subcommand. Only flags given on the
// command line are changed.
type editCmd struct {
	kind        string
	id          int64
	date        string
	description string
	amount      string
	category    string
	profit      string
}

func (*editCmd) Name() string     { return "edit" }
func (*editCmd) Synopsis() string { return "change fields of an existing entry" }
func (*editCmd) Usage() string {
	return `fintrack edit -kind <kind> -id <id> [-date <date>] [-desc <text>] [-amount <value>] [-category <category>] [-profit <value>]

  Edits an entry in place. Investment profit is recomputed against the closest
  earlier snapshot of the same type. The type of a snapshot cannot change.
`
}

func (c *editCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "expense", "collection: expense, investment or crypto")
	f.Int64Var(&c.id, "id", 0, "id of the entry")
	f.StringVar(&c.date, "date", "", "new date")
	f.StringVar(&c.description, "desc", "", "new description")
	f.StringVar(&c.amount, "amount", "", "new amount")
	f.StringVar(&c.category, "category", "", "new expense category")
	f.StringVar(&c.profit, "profit", "", "new crypto profit")
}

func (c *editCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)

	kind, err := models.ParseKind(c.kind)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	set := map[string]bool{}
	f.Visit(func(fl *flag.Flag) { set[fl.Name] = true })
	if !set["id"] {
		fmt.Fprintln(e.stderr, "Error: -id is required")
		return subcommands.ExitUsageError
	}

	text := func(name, v string) *string {
		if !set[name] {
			return nil
		}
		return &v
	}
	number := func(name, v string) (*decimal.Decimal, error) {
		if !set[name] {
			return nil, nil
		}
		d, err := parseAmount(name, v)
		return &d, err
	}

	amount, err := number("amount", c.amount)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}
	profit, err := number("profit", c.profit)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	store, b, err := e.openLedger(ctx)
	if err != nil {
		return e.failure("opening ledger", err)
	}
	defer closeBackend(ctx, e, b)

	switch kind {
	case models.KindExpense:
		_, err = store.EditExpense(ctx, c.id, ledger.ExpensePatch{
			Date:        text("date", c.date),
			Description: text("desc", c.description),
			Amount:      amount,
			Category:    text("category", c.category),
		})
	case models.KindInvestment:
		_, err = store.EditInvestment(ctx, c.id, ledger.InvestmentPatch{
			Date:        text("date", c.date),
			Amount:      amount,
			Description: text("desc", c.description),
		})
	case models.KindCrypto:
		_, err = store.EditCrypto(ctx, c.id, ledger.CryptoPatch{
			Date:   text("date", c.date),
			Amount: amount,
			Profit: profit,
		})
	}
	if err != nil {
		return e.failure("editing "+kindNames[kind], err)
	}

	e.printMarkdown(report.CollectionMarkdown(kind, store.Snapshot()))
	return subcommands.ExitSuccess
}

// deleteCmd holds the flags for the 'delete' subcommand.
type deleteCmd struct {
	kind string
	id   int64
	yes  bool
}

func (*deleteCmd) Name() string     { return "delete" }
func (*deleteCmd) Synopsis() string { return "remove one entry" }
func (*deleteCmd) Usage() string {
	return `fintrack delete -kind <kind> -id <id> [-y]

  Deletes an entry after confirmation.
`
}

func (c *deleteCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "expense", "collection: expense, investment or crypto")
	f.Int64Var(&c.id, "id", 0, "id of the entry")
	f.BoolVar(&c.yes, "y", false, "do not ask for confirmation")
}

func (c *deleteCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)

	kind, err := models.ParseKind(c.kind)
	if err != nil {
		fmt.Fprintf(e.stderr, "Error: %v\n", err)
		return subcommands.ExitUsageError
	}

	store, b, err := e.openLedger(ctx)
	if err != nil {
		return e.failure("opening ledger", err)
	}
	defer closeBackend(ctx, e, b)

	deleted, err := store.Delete(ctx, kind, c.id, e.confirmer(c.yes))
	if err != nil {
		return e.failure("deleting "+kindNames[kind], err)
	}
	if !deleted {
		fmt.Fprintf(e.stdout, "No %s with id %d\n", kindNames[kind], c.id)
		return subcommands.ExitSuccess
	}
	fmt.Fprintf(e.stdout, "Deleted %s #%d\n", kindNames[kind], c.id)
	return subcommands.ExitSuccess
}

// listCmd holds the flags for the 'list' subcommand.
type listCmd struct {
	kind string
}

func (*listCmd) Name() string     { return "list" }
func (*listCmd) Synopsis() string { return "print the entries of a collection" }
func (*listCmd) Usage() string {
	return `fintrack list [-kind <kind>|all]

  Prints a collection, newest first.
`
}

func (c *listCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "all", "collection: expense, investment, crypto or all")
}

func (c *listCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)

	kinds := models.Kinds
	if c.kind != "all" {
		kind, err := models.ParseKind(c.kind)
		if err != nil {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		kinds = []models.Kind{kind}
	}

	store, b, err := e.openLedger(ctx)
	if err != nil {
		return e.failure("opening ledger", err)
	}
	defer closeBackend(ctx, e, b)

	snap := store.Snapshot()
	var sb strings.Builder
	for _, kind := range kinds {
		sb.WriteString(report.CollectionMarkdown(kind, snap))
		sb.WriteString("\n")
	}
	e.printMarkdown(sb.String())
	return subcommands.ExitSuccess
}

// clearCmd holds the flags for the 'clear' subcommand.
type clearCmd struct {
	kind string
	yes  bool
}

func (*clearCmd) Name() string     { return "clear" }
func (*clearCmd) Synopsis() string { return "remove every entry of one collection, or everything" }
func (*clearCmd) Usage() string {
	return `fintrack clear [-kind <kind>] [-y]

  Without -kind every collection is erased, after two confirmations.
`
}

func (c *clearCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.kind, "kind", "", "collection to clear; empty clears everything")
	f.BoolVar(&c.yes, "y", false, "do not ask for confirmation")
}

func (c *clearCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)

	var kind models.Kind
	if c.kind != "" {
		k, err := models.ParseKind(c.kind)
		if err != nil {
			fmt.Fprintf(e.stderr, "Error: %v\n", err)
			return subcommands.ExitUsageError
		}
		kind = k
	}

	store, b, err := e.openLedger(ctx)
	if err != nil {
		return e.failure("opening ledger", err)
	}
	defer closeBackend(ctx, e, b)

	if kind == "" {
		if err := store.ClearAll(ctx, e.confirmer(c.yes)); err != nil {
			return e.failure("clearing data", err)
		}
		fmt.Fprintln(e.stdout, "All data cleared")
		return subcommands.ExitSuccess
	}

	if err := store.Clear(ctx, kind, e.confirmer(c.yes)); err != nil {
		return e.failure("clearing "+string(kind), err)
	}
	fmt.Fprintf(e.stdout, "Cleared %s\n", kind)
	return subcommands.ExitSuccess
}
