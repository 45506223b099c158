package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/quarry/internal/querysql"
	"github.com/roach88/quarry/internal/source"
)

// CompileOptions holds flags for the compile command.
type CompileOptions struct {
	*RootOptions
	Inline bool // interpolate arguments into the SQL
}

// CompilationResult holds the compiled fragments of a query document.
type CompilationResult struct {
	Model   string `json:"model"`
	Dialect string `json:"dialect"`
	Where   string `json:"where"`
	OrderBy string `json:"order_by"`
	Limit   string `json:"limit"`
	Select  string `json:"select"`
	Args    []any  `json:"args,omitempty"`
}

// NewCompileCommand creates the compile command.
func NewCompileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CompileOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "compile <query-file>",
		Short: "Compile a query document to SQL fragments",
		Long: `Compile a YAML query document to its WHERE, ORDER BY and LIMIT
fragments and the full SELECT, for the configured dialect.

Fragments use ? placeholders; --inline renders the arguments as quoted
literals instead.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors - we handle our own error output
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCompile(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Inline, "inline", false, "interpolate arguments into the SQL")

	return cmd
}

func runCompile(opts *CompileOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if err := opts.ensureConfig(formatter); err != nil {
		return err
	}

	doc, src, err := opts.openDocument(formatter, path)
	if err != nil {
		return err
	}

	dialect, err := opts.dialect()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}

	result, err := compileSource(src, dialect, opts.Inline)
	if err != nil {
		return formatter.Fail(ExitCommandError, expressionErrorCode(err), err.Error(), nil)
	}
	result.Model = doc.Model
	formatter.VerboseLog("Compiled %s for %s", doc.Model, dialect.Name())

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	outputCompileText(formatter, result)
	return nil
}

// compileSource compiles every fragment of src. With inline the arguments
// are interpolated and Args is left empty.
func compileSource(src *source.Source, dialect querysql.Dialect, inline bool) (*CompilationResult, error) {
	m := src.Model()
	c := querysql.NewCompiler(dialect, m.Table())

	compiled, err := src.Compile(c)
	if err != nil {
		return nil, err
	}
	sel := c.CompileSelect(querysql.Select{
		Columns: src.Columns(),
		Where:   compiled.Where,
		OrderBy: compiled.OrderBy,
		Limit:   compiled.Limit,
		Key:     m.Key(),
	})

	result := &CompilationResult{Dialect: dialect.Name()}
	fragments := []struct {
		dst  *string
		frag querysql.Fragment
	}{
		{&result.Where, compiled.Where},
		{&result.OrderBy, compiled.OrderBy},
		{&result.Limit, compiled.Limit},
		{&result.Select, sel},
	}
	for _, f := range fragments {
		if !inline {
			*f.dst = f.frag.SQL
			continue
		}
		s, err := querysql.Interpolate(dialect, f.frag)
		if err != nil {
			return nil, err
		}
		*f.dst = s
	}
	if !inline {
		result.Args = sel.Args
	}
	return result, nil
}

// outputCompileText prints the fragments, one per line.
func outputCompileText(formatter *OutputFormatter, result *CompilationResult) {
	w := formatter.Writer
	fmt.Fprintf(w, "✓ Compiled %s (%s)\n\n", result.Model, result.Dialect)
	fmt.Fprintf(w, "WHERE:    %s\n", result.Where)
	fmt.Fprintf(w, "ORDER BY: %s\n", result.OrderBy)
	fmt.Fprintf(w, "LIMIT:    %s\n", result.Limit)
	fmt.Fprintf(w, "SELECT:   %s\n", result.Select)
	if len(result.Args) > 0 {
		fmt.Fprintf(w, "ARGS:     %v\n", result.Args)
	}
}
