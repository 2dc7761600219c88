package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"

	"github.com/google/subcommands"

	"fintrack/internal/services/settings"
	"fintrack/internal/services/storage"
	"fintrack/internal/version"
)

// themeCmd prints or changes the dashboard theme.
type themeCmd struct{}

func (*themeCmd) Name() string     { return "theme" }
func (*themeCmd) Synopsis() string { return "print or set the dashboard theme" }
func (*themeCmd) Usage() string {
	return `fintrack theme [dark|vibrant]
`
}

func (*themeCmd) SetFlags(*flag.FlagSet) {}

func (*themeCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)

	if f.NArg() > 1 {
		fmt.Fprintln(e.stderr, "Error: theme takes at most one name")
		return subcommands.ExitUsageError
	}

	b, err := e.openBackend(ctx)
	if err != nil {
		return e.failure("opening storage", err)
	}
	defer closeBackend(ctx, e, b)

	if f.NArg() == 0 {
		theme, err := settings.Theme(ctx, b.KV)
		if err != nil {
			return e.failure("reading theme", err)
		}
		fmt.Fprintln(e.stdout, theme)
		return subcommands.ExitSuccess
	}

	theme, err := settings.SetTheme(ctx, b.KV, f.Arg(0))
	if err != nil {
		return e.failure("setting theme", err)
	}
	fmt.Fprintf(e.stdout, "Theme set to %s\n", theme)
	return subcommands.ExitSuccess
}

// encryptCmd holds the flags for the 'encrypt' subcommand.
type encryptCmd struct {
	disable bool
}

func (*encryptCmd) Name() string     { return "encrypt" }
func (*encryptCmd) Synopsis() string { return "encrypt or decrypt the file store with a password" }
func (*encryptCmd) Usage() string {
	return `fintrack encrypt [-disable]

  Encrypts every stored file with a password. With -disable the files are
  decrypted again. Only the file backend supports encryption.
`
}

func (c *encryptCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&c.disable, "disable", false, "decrypt instead of encrypt")
}

func (c *encryptCmd) Execute(ctx context.Context, f *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)

	// the password is asked below, so a locked store is opened as is
	b, err := storage.OpenBackend(ctx, e.cfg, e.logger)
	if err != nil {
		return e.failure("opening storage", err)
	}
	defer closeBackend(ctx, e, b)

	if b.Files == nil {
		fmt.Fprintf(e.stderr, "Error: the %s backend does not support encryption\n", b.Name)
		return subcommands.ExitFailure
	}

	password, err := e.readPassword("Password: ")
	if err != nil {
		return e.failure("reading password", err)
	}

	if c.disable {
		if err := b.Files.DisableEncryption(password); err != nil {
			return e.failure("disabling encryption", err)
		}
		fmt.Fprintln(e.stdout, "Encryption disabled")
		return subcommands.ExitSuccess
	}

	again, err := e.readPassword("Repeat password: ")
	if err != nil {
		return e.failure("reading password", err)
	}
	if again != password {
		return e.failure("enabling encryption", errors.New("passwords do not match"))
	}
	if err := b.Files.EnableEncryption(password); err != nil {
		return e.failure("enabling encryption", err)
	}
	fmt.Fprintln(e.stdout, "Encryption enabled")
	return subcommands.ExitSuccess
}

// versionCmd prints build information.
type versionCmd struct{}

func (*versionCmd) Name() string           { return "version" }
func (*versionCmd) Synopsis() string       { return "print version and build information" }
func (*versionCmd) Usage() string          { return "fintrack version\n" }
func (*versionCmd) SetFlags(*flag.FlagSet) {}

func (*versionCmd) Execute(_ context.Context, _ *flag.FlagSet, args ...interface{}) subcommands.ExitStatus {
	e := args[0].(*env)

	info := version.Get()
	fmt.Fprintln(e.stdout, info.String())
	if warning := info.Check(); warning != "" {
		fmt.Fprintln(e.stderr, warning)
	}
	return subcommands.ExitSuccess
}
