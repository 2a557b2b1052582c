package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/spf13/cobra"

	"github.com/roach88/animpub/internal/config"
	"github.com/roach88/animpub/internal/ident"
	"github.com/roach88/animpub/internal/publish"
	"github.com/roach88/animpub/internal/store"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "yaml"
	ConfigPath string

	// Config is loaded before any subcommand runs.
	Config *config.Configuration

	// Logger writes diagnostics to stderr at the configured level.
	Logger *slog.Logger

	// IDs allows overriding the composition id generator (for testing).
	// If nil, publishes use random UUIDs.
	IDs ident.Generator
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the animpub CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "animpub",
		Short: "Publish animation exports as palette-driven assets",
		Long: `animpub rewrites exported animation scripts so that colors and layer
visibility are read from a runtime palette, and reports the customization
slots each published script exposes.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "config file (default "+config.DefaultLocalPath+")")

	cmd.AddCommand(NewPublishCommand(opts))
	cmd.AddCommand(NewInspectCommand(opts))
	cmd.AddCommand(NewRegistryCommand(opts))
	cmd.AddCommand(NewPaletteCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))

	return cmd
}

// Execute runs the animpub CLI with os.Args.
func Execute() error {
	cmd := NewRootCommand()
	err := cmd.Execute()
	var exitErr *ExitError
	if err != nil && !errors.As(err, &exitErr) {
		// Flag and argument errors never reach a formatter.
		fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
	}
	return err
}

// setup loads the configuration and the logger. A --format flag wins over
// the configured format.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return o.fail(cmd, "CONFIG_ERROR", "failed to load config", err)
	}
	o.Config = cfg

	if !cmd.Flags().Changed("format") {
		o.Format = cfg.Format
	}
	if !isValidFormat(o.Format) {
		return fmt.Errorf("invalid format %q: must be one of %v", o.Format, ValidFormats)
	}

	level := cfg.Level()
	if o.Verbose {
		level = slog.LevelDebug
	}
	o.Logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))
	return nil
}

// formatter returns an OutputFormatter bound to cmd's writers.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// fail reports err through the formatter and returns the ExitError the
// command should return.
func (o *RootOptions) fail(cmd *cobra.Command, code, message string, err error) error {
	f := o.formatter(cmd)
	if !isValidFormat(f.Format) {
		f.Format = "text"
	}
	text := message
	if err != nil {
		text = message + ": " + err.Error()
	}
	_ = f.Error(code, text, nil)
	return WrapExitError(ExitFailure, message, err)
}

func (o *RootOptions) settings() *config.Configuration {
	if o.Config != nil {
		return o.Config
	}
	defaults := config.GetDefaults()
	return &config.Configuration{
		CacheDir:     defaults["cache_dir"].(string),
		BackupSuffix: defaults["backup_suffix"].(string),
		LogLevel:     defaults["log_level"].(string),
		Format:       defaults["format"].(string),
	}
}

func (o *RootOptions) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// hostFS is the operating system file system rooted at "/". Commands
// resolve their arguments to absolute paths before using it.
func hostFS() billy.Filesystem {
	return osfs.New("/")
}

// newPublisher builds a publisher from the loaded configuration.
func (o *RootOptions) newPublisher(ledger publish.Ledger) *publish.Publisher {
	cfg := o.settings()
	return &publish.Publisher{
		FS:           hostFS(),
		IDs:          o.IDs,
		Ledger:       ledger,
		Logger:       o.logger(),
		CacheDir:     cfg.CacheDir,
		BackupSuffix: cfg.BackupSuffix,
	}
}

// openLedger opens the configured database. A nil store and nil error mean
// the ledger is disabled.
func (o *RootOptions) openLedger() (*store.Store, error) {
	path := o.settings().Database
	if path == "" {
		return nil, nil
	}
	o.logger().Debug("opening ledger", "path", path)
	return store.Open(path)
}

func (o *RootOptions) closeLedger(st *store.Store) {
	if st == nil {
		return
	}
	if err := st.Close(); err != nil {
		o.logger().Error("error closing ledger", "error", err)
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
