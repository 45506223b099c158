package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/quarry/internal/query"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	*RootOptions
	Strict bool // non-portable queries fail
}

// ValidationResult holds the portability report of a query document.
type ValidationResult struct {
	Model    string   `json:"model"`
	Portable bool     `json:"portable"`
	Warnings []string `json:"warnings"`
}

// DescriptorResult holds the outcome of validating every descriptor.
type DescriptorResult struct {
	Valid  bool              `json:"valid"`
	Models []string          `json:"models"`
	Errors []DescriptorError `json:"errors,omitempty"`
}

// DescriptorError is one descriptor that failed to load.
type DescriptorError struct {
	Ident    string         `json:"ident"`
	Message  string         `json:"message"`
	Position *ErrorPosition `json:"position,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "validate [query-file]",
		Short: "Check a query document for portability, or every descriptor",
		Long: `With a query document, compile it and report features that are not
portable across dialects: raw conditions, MySQL-only operators, SQL
functions, symbolic conjunctions and rand/values orders.

Without arguments, load every descriptor found in the metadata paths and
report schema errors with their positions.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return runValidateDescriptors(opts, cmd)
			}
			return runValidate(opts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "fail when the query is not portable")

	return cmd
}

func runValidate(opts *ValidateOptions, path string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if err := opts.ensureConfig(formatter); err != nil {
		return err
	}

	doc, src, err := opts.openDocument(formatter, path)
	if err != nil {
		return err
	}

	// The query must compile before its portability matters.
	dialect, err := opts.dialect()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	if _, err := compileSource(src, dialect, false); err != nil {
		return formatter.Fail(ExitCommandError, expressionErrorCode(err), err.Error(), nil)
	}

	var exprs []query.Expression
	for _, n := range src.Filters() {
		exprs = append(exprs, n)
	}
	for _, o := range src.Orders() {
		exprs = append(exprs, o)
	}
	report := query.Validate(exprs...)

	result := ValidationResult{
		Model:    doc.Model,
		Portable: report.IsPortable,
		Warnings: report.Warnings,
	}

	if opts.Strict && !result.Portable {
		if formatter.IsJSON() {
			_ = formatter.Error(ErrCodeNotPortable, fmt.Sprintf("%d portability warning(s)", len(result.Warnings)), result)
		} else {
			outputValidateText(formatter, result)
		}
		return NewExitError(ExitFailure, fmt.Sprintf("%s is not portable", path))
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	outputValidateText(formatter, result)
	return nil
}

func outputValidateText(formatter *OutputFormatter, result ValidationResult) {
	w := formatter.Writer
	if result.Portable {
		fmt.Fprintf(w, "✓ %s query is portable\n", result.Model)
		return
	}
	fmt.Fprintf(w, "⚠ %s query uses %d non-portable feature(s)\n\n", result.Model, len(result.Warnings))
	for _, warning := range result.Warnings {
		fmt.Fprintf(w, "  %s\n", warning)
	}
}

func runValidateDescriptors(opts *ValidateOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)
	if err := opts.ensureConfig(formatter); err != nil {
		return err
	}

	loader, err := opts.loader()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	idents, err := loader.Idents()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeMetadata, err.Error(), nil)
	}
	if len(idents) == 0 {
		return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("no descriptors found in %v", opts.Config.MetadataPaths), nil)
	}

	result := DescriptorResult{Valid: true, Models: []string{}}
	for _, ident := range idents {
		formatter.VerboseLog("Validating descriptor: %s", ident)
		if _, err := opts.loadModel(loader, ident); err != nil {
			result.Valid = false
			descErr := DescriptorError{Ident: ident, Message: err.Error()}
			if pos, ok := metadataDetails(err).(ErrorPosition); ok {
				descErr.Position = &pos
			}
			result.Errors = append(result.Errors, descErr)
			continue
		}
		result.Models = append(result.Models, ident)
	}

	if !result.Valid {
		message := fmt.Sprintf("%d descriptor(s) invalid", len(result.Errors))
		if formatter.IsJSON() {
			_ = formatter.Error(ErrCodeMetadata, message, result)
		} else {
			fmt.Fprintln(formatter.Writer, "✗ Validation failed")
			fmt.Fprintln(formatter.Writer)
			for _, e := range result.Errors {
				fmt.Fprintf(formatter.Writer, "  %s\n", e.Message)
			}
		}
		// Invalid descriptors are command-level errors (exit code 2)
		return NewExitError(ExitCommandError, message)
	}

	if formatter.IsJSON() {
		return formatter.Success(result)
	}
	fmt.Fprintf(formatter.Writer, "✓ %d descriptor(s) valid\n", len(result.Models))
	return nil
}
