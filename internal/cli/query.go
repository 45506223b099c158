package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/quarry/internal/store"
)

// QueryResult holds the items loaded for a query document.
type QueryResult struct {
	Model string           `json:"model"`
	Count int              `json:"count"`
	Items []map[string]any `json:"items"`
}

// NewQueryCommand creates the query command.
func NewQueryCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "query <query-file>",
		Short: "Run a query document against the database",
		Long: `Load the page of items matching a query document from the configured
SQLite database, with the total number of matching items.

Examples:
  quarry query hats.yaml
  quarry query hats.yaml --db shop.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runQuery(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)
	if err := opts.ensureConfig(formatter); err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	doc, src, err := opts.openDocument(formatter, path)
	if err != nil {
		return err
	}
	dialect, err := opts.dialect()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	st, err := store.Open(opts.Config.Database)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeDatabase, err.Error(), nil)
	}
	defer st.Close()

	ds, err := store.NewDatabaseSource(st, src.Model(), store.WithDialect(dialect))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), nil)
	}
	if err := ds.Source().SetData(doc.Query); err != nil {
		return formatter.Fail(ExitCommandError, expressionErrorCode(err), err.Error(), nil)
	}

	items, err := ds.LoadItems(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, queryErrorCode(err), err.Error(), nil)
	}
	count, err := ds.CountItems(ctx)
	if err != nil {
		return formatter.Fail(ExitCommandError, queryErrorCode(err), err.Error(), nil)
	}
	formatter.VerboseLog("Loaded %d of %d item(s) from %s", len(items), count, opts.Config.Database)

	result := QueryResult{Model: doc.Model, Count: count, Items: make([]map[string]any, 0, len(items))}
	for _, item := range items {
		result.Items = append(result.Items, item.Data())
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}

	w := formatter.Writer
	key := ds.Model().Key()
	for _, item := range items {
		var cols []string
		for _, k := range item.Keys() {
			if k == key {
				continue
			}
			v, _ := item.Get(k)
			cols = append(cols, fmt.Sprintf("%s=%v", k, v))
		}
		fmt.Fprintf(w, "%s  %s\n", item.String(key), strings.Join(cols, " "))
	}
	fmt.Fprintf(w, "\n%d of %d item(s)\n", len(items), count)
	return nil
}

// queryErrorCode maps load errors: expression errors keep their code,
// anything else is a database error.
func queryErrorCode(err error) string {
	if code := expressionErrorCode(err); code != ErrCodeCompile {
		return code
	}
	return ErrCodeDatabase
}
