package cli

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	ConfigPath string

	// Overrides for config file values. Empty means not set.
	Database      string
	Dialect       string
	Language      string
	MetadataPaths []string

	// Config is resolved before any subcommand runs.
	Config *Config
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the quarry CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "quarry",
		Short: "quarry - model-aware query building",
		Long: `Build, check and run filtered, ordered and paginated queries over
descriptor-defined models, compiled to MySQL or SQLite fragments.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			if err := opts.resolve(); err != nil {
				return WrapExitError(ExitCommandError, "configuration", err)
			}
			configureLogging(cmd, opts.Verbose)
			return nil
		},
	}

	// Global flags
	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	flags.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	flags.StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ./"+DefaultConfigFile+" when present)")
	flags.StringVar(&opts.Database, "db", "", "SQLite database path")
	flags.StringVar(&opts.Dialect, "dialect", "", "SQL dialect (mysql|sqlite)")
	flags.StringVar(&opts.Language, "lang", "", "current language")
	flags.StringSliceVarP(&opts.MetadataPaths, "models", "m", nil, "descriptor search paths")

	// Add subcommands
	cmd.AddCommand(NewCompileCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewQueryCommand(opts))
	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewModelsCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// resolve loads the config file and applies flag overrides.
func (o *RootOptions) resolve() error {
	cfg, err := resolveConfig(o.ConfigPath)
	if err != nil {
		return err
	}
	if o.Database != "" {
		cfg.Database = o.Database
	}
	if o.Dialect != "" {
		cfg.Dialect = o.Dialect
	}
	if o.Language != "" {
		cfg.Language = o.Language
	}
	if len(o.MetadataPaths) > 0 {
		cfg.MetadataPaths = slices.Clone(o.MetadataPaths)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	o.Config = cfg
	return nil
}

// ensureConfig resolves the config when the command runs without the
// root command's pre-run hook.
func (o *RootOptions) ensureConfig(f *OutputFormatter) error {
	if o.Config != nil {
		return nil
	}
	if err := o.resolve(); err != nil {
		return f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	return nil
}

// configureLogging routes slog to the command's stderr. Library debug
// logs (statements, metadata cache) show with --verbose.
func configureLogging(cmd *cobra.Command, verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// newFormatter creates the output formatter of a command.
func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(), // Verbose logs go to stderr to avoid corrupting JSON
		Verbose:   opts.Verbose,
	}
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
