// Package cli implements the fintrack command line application.
//
// Every command opens the configured storage, does one thing and exits, so
// state lives in the command structs and the env passed to Execute.
package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"
	"github.com/google/subcommands"
	"github.com/rs/zerolog"
	"golang.org/x/term"

	"fintrack/internal/config"
	"fintrack/internal/logging"
	"fintrack/internal/services/ledger"
	"fintrack/internal/services/storage"
)

// Name is the program name used in usage text and shell completion
const Name = "fintrack"

// env carries what every command needs. It is passed as the first
// Execute argument.
type env struct {
	cfg    *config.Config
	logger zerolog.Logger
	stdin  io.Reader
	in     *bufio.Reader
	stdout io.Writer
	stderr io.Writer
	plain  bool
	now    func() time.Time
}

type group struct {
	name     string
	commands []subcommands.Command
}

// commands returns fresh command values grouped for help output
func commands() []group {
	return []group{
		{"entries", []subcommands.Command{&addCmd{}, &editCmd{}, &deleteCmd{}, &listCmd{}, &clearCmd{}}},
		{"reports", []subcommands.Command{&summaryCmd{}, &pricesCmd{}}},
		{"backup", []subcommands.Command{&exportCmd{}, &importCmd{}}},
		{"settings", []subcommands.Command{&themeCmd{}, &encryptCmd{}, &versionCmd{}}},
	}
}

// Run parses args and executes the selected command. It returns the process exit code.
func Run(ctx context.Context, args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	top := flag.NewFlagSet(Name, flag.ContinueOnError)
	top.SetOutput(stderr)
	dataDir := top.String("data-dir", "", "data directory, overrides FINTRACK_DATA_DIR")
	backend := top.String("backend", "", "storage backend: file, memory, redis or mongo")
	plain := top.Bool("plain", false, "print raw markdown instead of styled output")
	debug := top.Bool("debug", false, "enable debug logging")
	if err := top.Parse(args); err != nil {
		return int(subcommands.ExitUsageError)
	}

	logger := logging.Console(stderr, *debug)
	if !*debug {
		logger = logger.Level(zerolog.WarnLevel)
	}

	cfg := config.Load(logger)
	if *dataDir != "" {
		cfg.DataDirectory = *dataDir
	}
	if *backend != "" {
		cfg.Backend = *backend
	}

	e := &env{
		cfg:    cfg,
		logger: logger,
		stdin:  stdin,
		in:     bufio.NewReader(stdin),
		stdout: stdout,
		stderr: stderr,
		plain:  *plain,
		now:    time.Now,
	}

	commander := subcommands.NewCommander(top, Name)
	commander.Output = stdout
	commander.Error = stderr
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")
	commander.Register(commander.CommandsCommand(), "")
	for _, g := range commands() {
		for _, c := range g.commands {
			commander.Register(c, g.name)
		}
	}

	return int(commander.Execute(ctx, e))
}

// openBackend opens storage, asking for the password when the file store is locked
func (e *env) openBackend(ctx context.Context) (*storage.Backend, error) {
	b, err := storage.OpenBackend(ctx, e.cfg, e.logger)
	if err != nil {
		return nil, err
	}
	if !b.Locked() {
		return b, nil
	}

	password, err := e.readPassword("Password: ")
	if err != nil {
		b.Close(ctx)
		return nil, err
	}
	if err := b.Files.Unlock(password); err != nil {
		b.Close(ctx)
		return nil, err
	}
	return b, nil
}

// openLedger opens storage and loads the three collections from it
func (e *env) openLedger(ctx context.Context) (*ledger.Store, *storage.Backend, error) {
	b, err := e.openBackend(ctx)
	if err != nil {
		return nil, nil, err
	}
	s, err := ledger.Open(ctx, b.KV, ledger.WithLogger(e.logger))
	if err != nil {
		b.Close(ctx)
		return nil, nil, err
	}
	return s, b, nil
}

func (e *env) readLine() (string, error) {
	line, err := e.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPassword reads without echo from a terminal, or a plain line otherwise
func (e *env) readPassword(prompt string) (string, error) {
	fmt.Fprint(e.stderr, prompt)
	if f, ok := e.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		data, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(e.stderr)
		return string(data), err
	}
	return e.readLine()
}

// confirmer asks on the terminal unless yes is set
func (e *env) confirmer(yes bool) ledger.Confirmer {
	if yes {
		return ledger.Always
	}
	return ledger.ConfirmFunc(func(prompt string) bool {
		fmt.Fprintf(e.stderr, "%s [y/N] ", prompt)
		answer, err := e.readLine()
		if err != nil {
			return false
		}
		switch strings.ToLower(answer) {
		case "y", "yes":
			return true
		}
		return false
	})
}

// printMarkdown writes md styled for the terminal, or raw with -plain
func (e *env) printMarkdown(md string) {
	if e.plain {
		fmt.Fprint(e.stdout, md)
		return
	}

	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(100))
	if err != nil {
		fmt.Fprint(e.stdout, md)
		return
	}
	out, err := r.Render(md)
	if err != nil {
		fmt.Fprint(e.stdout, md)
		return
	}
	fmt.Fprint(e.stdout, out)
}

// failure reports err on stderr. A declined prompt only prints Cancelled.
func (e *env) failure(action string, err error) subcommands.ExitStatus {
	if errors.Is(err, ledger.ErrNotConfirmed) {
		fmt.Fprintln(e.stderr, "Cancelled.")
		return subcommands.ExitFailure
	}
	fmt.Fprintf(e.stderr, "Error %s: %v\n", action, err)
	return subcommands.ExitFailure
}

func closeBackend(ctx context.Context, e *env, b *storage.Backend) {
	if err := b.Close(ctx); err != nil {
		e.logger.Warn().Err(err).Msg("error closing storage")
	}
}
