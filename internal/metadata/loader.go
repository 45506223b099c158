package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cuejson "cuelang.org/go/encoding/json"
	cueyaml "cuelang.org/go/encoding/yaml"
	"golang.org/x/sync/singleflight"
)

// Extensions lists the descriptor file extensions, in load order.
var Extensions = []string{".cue", ".json", ".yaml", ".yml"}

// Loader reads, validates and merges descriptors from search paths.
//
// Loader is safe for concurrent use. Concurrent loads of the same ident
// share a single read.
type Loader struct {
	paths []string
	cache *Cache

	group singleflight.Group

	// mu guards ctx and schema; a cue.Context is not safe for concurrent use.
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

// Option configures a Loader.
type Option func(*Loader)

// WithCache shares an existing cache instead of creating one.
func WithCache(c *Cache) Option {
	return func(l *Loader) {
		if c != nil {
			l.cache = c
		}
	}
}

// NewLoader creates a loader over paths. Later paths override earlier ones
// when the same descriptor exists in several.
func NewLoader(paths []string, opts ...Option) (*Loader, error) {
	l := &Loader{
		paths: append([]string(nil), paths...),
		cache: NewCache(),
		ctx:   cuecontext.New(),
	}
	for _, opt := range opts {
		opt(l)
	}

	schema := l.ctx.CompileString(schemaSource, cue.Filename(schemaFilename))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compile metadata schema: %w", err)
	}
	l.schema = schema.LookupPath(cue.ParsePath("#Metadata"))
	return l, nil
}

// Paths returns the search paths.
func (l *Loader) Paths() []string {
	return append([]string(nil), l.paths...)
}

// Cache returns the loader's cache.
func (l *Loader) Cache() *Cache {
	return l.cache
}

// Load returns the merged descriptor of ident.
func (l *Loader) Load(ident string) (*Metadata, error) {
	ident, err := NormalizeIdent(ident)
	if err != nil {
		return nil, err
	}

	if m, ok := l.cache.Get(ident); ok {
		slog.Debug("metadata cache hit", "ident", ident)
		return m, nil
	}

	v, err, _ := l.group.Do(ident, func() (any, error) {
		slog.Debug("metadata cache miss", "ident", ident)
		m, err := l.load(ident)
		if err != nil {
			return nil, err
		}
		return l.cache.Put(ident, m), nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Metadata), nil
}

// Hierarchy returns the idents merged into ident's descriptor, parents
// first. An ident appearing on several branches is listed once, at its
// first position.
func (l *Loader) Hierarchy(ident string) ([]string, error) {
	ident, err := NormalizeIdent(ident)
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	raw := map[string]map[string]any{}
	return l.hierarchy(ident, raw)
}

// Idents lists every descriptor found in the search paths, sorted.
func (l *Loader) Idents() ([]string, error) {
	seen := map[string]bool{}
	for _, root := range l.paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) && path == root {
					return filepath.SkipDir
				}
				return err
			}
			if d.IsDir() || !isDescriptor(path) {
				return nil
			}
			rel, err := filepath.Rel(root, path)
			if err != nil {
				return err
			}
			rel = strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel))
			ident, err := NormalizeIdent(rel)
			if err != nil {
				return err
			}
			seen[ident] = true
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", root, err)
		}
	}

	idents := make([]string, 0, len(seen))
	for ident := range seen {
		idents = append(idents, ident)
	}
	sort.Strings(idents)
	return idents, nil
}

func (l *Loader) load(ident string) (*Metadata, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	raw := map[string]map[string]any{}
	hierarchy, err := l.hierarchy(ident, raw)
	if err != nil {
		return nil, err
	}

	merged := map[string]any{}
	for _, h := range hierarchy {
		mergeData(merged, raw[h])
	}
	delete(merged, "extends")

	m := &Metadata{}
	if err := l.ctx.Encode(merged).Decode(m); err != nil {
		return nil, formatCUEError(ident, err)
	}
	m.Ident = ident
	m.Hierarchy = hierarchy
	m.applyDefaults()

	slog.Debug("metadata loaded", "ident", ident, "hierarchy", hierarchy, "properties", len(m.Properties))
	return m, nil
}

// hierarchy resolves extends depth-first. raw collects each ident's own
// data. Caller must hold l.mu.
func (l *Loader) hierarchy(ident string, raw map[string]map[string]any) ([]string, error) {
	var out []string
	visiting := map[string]bool{}
	done := map[string]bool{}

	var visit func(ident string, chain []string) error
	visit = func(ident string, chain []string) error {
		if done[ident] {
			return nil
		}
		if visiting[ident] {
			return &Error{Ident: ident, Message: fmt.Sprintf("cyclic extends: %s", strings.Join(append(chain, ident), " -> "))}
		}
		visiting[ident] = true

		data, ok := raw[ident]
		if !ok {
			var err error
			if data, err = l.readIdent(ident); err != nil {
				return err
			}
			raw[ident] = data
		}

		parents, err := extendsOf(ident, data)
		if err != nil {
			return err
		}
		for _, parent := range parents {
			if err := visit(parent, append(chain, ident)); err != nil {
				return err
			}
		}

		visiting[ident] = false
		done[ident] = true
		out = append(out, ident)
		return nil
	}

	if err := visit(ident, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// readIdent merges every descriptor file of ident across the search paths.
func (l *Loader) readIdent(ident string) (map[string]any, error) {
	data := map[string]any{}
	found := false

	for _, root := range l.paths {
		for _, ext := range Extensions {
			path := filepath.Join(root, filepath.FromSlash(ident)+ext)
			src, err := os.ReadFile(path)
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			if err != nil {
				return nil, fmt.Errorf("read %s: %w", path, err)
			}

			fileData, err := l.parseFile(ident, path, src)
			if err != nil {
				return nil, err
			}
			mergeData(data, fileData)
			found = true
		}
	}

	if !found {
		return nil, fmt.Errorf("%w: %s (searched %s)", ErrNotFound, ident, strings.Join(l.paths, ", "))
	}
	return data, nil
}

// parseFile builds a descriptor file with CUE, validates it against the
// schema and decodes it. Caller must hold l.mu.
func (l *Loader) parseFile(ident, path string, src []byte) (map[string]any, error) {
	var v cue.Value

	switch filepath.Ext(path) {
	case ".cue":
		v = l.ctx.CompileBytes(src, cue.Filename(path))
	case ".json":
		expr, err := cuejson.Extract(path, src)
		if err != nil {
			return nil, formatCUEError(ident, err)
		}
		v = l.ctx.BuildExpr(expr)
	case ".yaml", ".yml":
		file, err := cueyaml.Extract(path, src)
		if err != nil {
			return nil, formatCUEError(ident, err)
		}
		v = l.ctx.BuildFile(file)
	default:
		return nil, fmt.Errorf("unsupported descriptor %s", path)
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(ident, err)
	}

	unified := l.schema.Unify(v)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(ident, err)
	}

	data := map[string]any{}
	if err := unified.Decode(&data); err != nil {
		return nil, formatCUEError(ident, err)
	}
	return data, nil
}

// extendsOf returns the normalized parents declared by data.
func extendsOf(ident string, data map[string]any) ([]string, error) {
	list, ok := data["extends"].([]any)
	if !ok {
		return nil, nil
	}
	parents := make([]string, 0, len(list))
	for _, item := range list {
		s, _ := item.(string)
		parent, err := NormalizeIdent(s)
		if err != nil {
			return nil, &Error{Ident: ident, Message: fmt.Sprintf("extends: %v", err)}
		}
		parents = append(parents, parent)
	}
	return parents, nil
}

// mergeData merges src into dst. Nested maps merge recursively; any other
// value in src replaces the one in dst.
func mergeData(dst, src map[string]any) {
	for key, sv := range src {
		if sm, ok := sv.(map[string]any); ok {
			if dm, ok := dst[key].(map[string]any); ok {
				mergeData(dm, sm)
				continue
			}
			copied := map[string]any{}
			mergeData(copied, sm)
			dst[key] = copied
			continue
		}
		dst[key] = sv
	}
}

func isDescriptor(path string) bool {
	ext := filepath.Ext(path)
	for _, known := range Extensions {
		if ext == known {
			return true
		}
	}
	return false
}
