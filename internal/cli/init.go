package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/quarry/internal/store"
)

// InitResult lists the tables created by init.
type InitResult struct {
	Database string                  `json:"database"`
	Models   []store.RegisteredModel `json:"models"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [model...]",
		Short: "Create tables for models",
		Long: `Create the table of every model found in the metadata paths, or of the
given models only. Existing tables are left untouched.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, args, cmd)
		},
	}

	return cmd
}

func runInit(opts *RootOptions, idents []string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	if err := opts.ensureConfig(formatter); err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	loader, err := opts.loader()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	if len(idents) == 0 {
		if idents, err = loader.Idents(); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeMetadata, err.Error(), nil)
		}
	}
	if len(idents) == 0 {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no descriptors found in %v", opts.Config.MetadataPaths), nil)
	}

	st, err := store.Open(opts.Config.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer st.Close()

	for _, ident := range idents {
		m, err := opts.loadModel(loader, ident)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeMetadata, err.Error(), metadataDetails(err))
		}
		if err := st.CreateTable(ctx, m); err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
		}
		formatter.VerboseLog("Created table %s for %s", m.Table(), ident)
	}

	models, err := st.Models(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	result := InitResult{Database: opts.Config.Database, Models: models}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ Initialized %d model(s) in %s\n", len(idents), opts.Config.Database)
	return nil
}

// NewModelsCommand creates the models command.
func NewModelsCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "models",
		Short:         "List the models initialized in the database",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runModels(rootOpts, cmd)
		},
	}

	return cmd
}

func runModels(opts *RootOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	if err := opts.ensureConfig(formatter); err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	st, err := store.Open(opts.Config.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer st.Close()

	models, err := st.Models(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}

	if formatter.IsJSON() {
		return formatter.Success(models)
	}
	if len(models) == 0 {
		fmt.Fprintln(formatter.Writer, "No models initialized.")
		return nil
	}
	for _, m := range models {
		fmt.Fprintf(formatter.Writer, "%s  table=%s key=%s columns=%d\n", m.Ident, m.Table, m.Key, len(m.Columns))
	}
	return nil
}
