package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/roach88/quarry/internal/metadata"
	"github.com/roach88/quarry/internal/model"
	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/querysql"
	"github.com/roach88/quarry/internal/source"
	"github.com/roach88/quarry/internal/translation"
)

// QueryDocument is a query file: the model ident and the source
// configuration applied to it.
//
//	model: shop/product
//	properties: [id, title]
//	filters:
//	  - { property: tags, value: hat }
//	orders:
//	  - { property: price, mode: desc }
//	page: 1
//	num_per_page: 20
type QueryDocument struct {
	Path  string
	Model string
	Query query.Data
}

// documentKeys are the keys a query document may hold besides model.
var documentKeys = map[string]bool{
	"properties":   true,
	"filters":      true,
	"orders":       true,
	"pagination":   true,
	"page":         true,
	"num_per_page": true,
	"numPerPage":   true,
}

// DocumentError is an invalid query document.
type DocumentError struct {
	Path    string
	Message string
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// LoadQueryDocument reads a YAML query document.
func LoadQueryDocument(path string) (*QueryDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var raw map[string]any
	if err := yaml.NewDecoder(bytes.NewReader(data)).Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, &DocumentError{Path: path, Message: fmt.Sprintf("failed to parse YAML: %v", err)}
	}

	ident, _ := raw["model"].(string)
	if ident == "" {
		return nil, &DocumentError{Path: path, Message: "model is required"}
	}
	delete(raw, "model")

	var unknown []string
	for key := range raw {
		if !documentKeys[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return nil, &DocumentError{Path: path, Message: fmt.Sprintf("unknown keys %v", unknown)}
	}

	return &QueryDocument{Path: path, Model: ident, Query: query.Data(raw)}, nil
}

// loader creates a metadata loader over the configured search paths.
func (o *RootOptions) loader() (*metadata.Loader, error) {
	return metadata.NewLoader(o.Config.MetadataPaths)
}

// translator creates the configured translator.
func (o *RootOptions) translator() (*translation.Translator, error) {
	return translation.New(o.Config.Language, o.Config.Languages...)
}

// loadModel loads ident with the configured languages.
func (o *RootOptions) loadModel(loader *metadata.Loader, ident string) (*model.Model, error) {
	tr, err := o.translator()
	if err != nil {
		return nil, err
	}
	return model.Load(loader, ident, tr)
}

// dialect returns the configured dialect. SQLite when unset.
func (o *RootOptions) dialect() (querysql.Dialect, error) {
	if o.Config.Dialect == "" {
		return querysql.SQLite{}, nil
	}
	return querysql.DialectByName(o.Config.Dialect)
}

// openDocument loads a query document and configures a source for it.
// Failures are reported through f and returned as exit errors.
func (o *RootOptions) openDocument(f *OutputFormatter, path string) (*QueryDocument, *source.Source, error) {
	doc, err := LoadQueryDocument(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil, f.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("query document not found: %s", path), nil)
		}
		return nil, nil, f.Fail(ExitCommandError, ErrCodeDocument, err.Error(), nil)
	}
	f.VerboseLog("Loaded query document %s (model %s)", path, doc.Model)

	loader, err := o.loader()
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeConfig, err.Error(), nil)
	}
	m, err := o.loadModel(loader, doc.Model)
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeMetadata, err.Error(), metadataDetails(err))
	}

	src := source.New(m)
	if err := src.SetData(doc.Query); err != nil {
		return nil, nil, f.Fail(ExitCommandError, expressionErrorCode(err), err.Error(), nil)
	}
	return doc, src, nil
}

// expressionErrorCode maps expression errors to CLI error codes.
func expressionErrorCode(err error) string {
	switch {
	case query.IsInvalidArgument(err):
		return ErrCodeArgument
	case query.IsDomainError(err):
		return ErrCodeDomain
	}
	return ErrCodeCompile
}

// ErrorPosition locates a descriptor error.
type ErrorPosition struct {
	File   string `json:"file"`
	Line   int    `json:"line"`
	Column int    `json:"column"`
}

// metadataDetails returns the descriptor position of err, or nil.
func metadataDetails(err error) any {
	var metaErr *metadata.Error
	if errors.As(err, &metaErr) && metaErr.Pos.IsValid() {
		return ErrorPosition{
			File:   metaErr.Pos.Filename(),
			Line:   metaErr.Pos.Line(),
			Column: metaErr.Pos.Column(),
		}
	}
	return nil
}
