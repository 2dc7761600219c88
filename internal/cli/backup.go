package cli

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"

	"fintrack/internal/services/backup"
)

// exportCmd holds the flags for the 'export' subcommand.
type exportCmd struct {
	output string
}

func (*exportCmd) Name() string     { return "export" }
func (*exportCmd) Synopsis() string { return "write every collection to a JSON backup" }
func (*exportCmd) Usage() string {
	return `fintrack export [-o <file>|-]

  Writes a backup. The default file name carries today's date.
`
}

func (c *exportCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.output, "o", "", "output file, - for stdout")
}

func (c *exportCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)

	store, b, err := e.openLedger(ctx)
	if err != nil {
		return e.failure("opening ledger", err)
	}
	defer closeBackend(ctx, e, b)

	now := e.now()
	data, err := backup.Export(store.Snapshot(), now)
	if err != nil {
		return e.failure("exporting", err)
	}

	if c.output == "-" {
		e.stdout.Write(data)
		return subcommands.ExitSuccess
	}
	if c.output == "" {
		c.output = backup.FileName(now)
	}
	if err := os.WriteFile(c.output, data, 0600); err != nil {
		return e.failure("writing backup", err)
	}
	fmt.Fprintf(e.stdout, "Exported to %s\n", c.output)
	return subcommands.ExitSuccess
}

// importCmd holds the flags for the 'import' subcommand.
type importCmd struct {
	yes bool
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "replace all data with a JSON backup" }
func (*importCmd) Usage() string {
	return `fintrack import [-y] <file>

  Replaces every collection with the backup content after confirmation.
  Backups written by the older Portuguese-keyed format are accepted too.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.yes, "y", false, "do not ask for confirmation")
}

func (c *importCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)

	if f.NArg() != 1 {
		fmt.Fprintln(e.stderr, "Error: import takes exactly one file")
		return subcommands.ExitUsageError
	}

	data, err := os.ReadFile(f.Arg(0))
	if err != nil {
		return e.failure("reading backup", err)
	}
	collections, err := backup.Parse(data)
	if err != nil {
		return e.failure("reading backup", err)
	}
	fmt.Fprintf(e.stdout, "Backup holds %d expenses, %d investments and %d crypto entries\n",
		len(collections.Expenses), len(collections.Investments), len(collections.Cryptos))

	store, b, err := e.openLedger(ctx)
	if err != nil {
		return e.failure("opening ledger", err)
	}
	defer closeBackend(ctx, e, b)

	if err := store.ReplaceAll(ctx, collections, e.confirmer(c.yes)); err != nil {
		return e.failure("importing", err)
	}
	fmt.Fprintln(e.stdout, "Import complete")
	return subcommands.ExitSuccess
}
