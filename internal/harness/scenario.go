package harness

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Scenario defines a query scenario.
type Scenario struct {
	// Name uniquely identifies this scenario. It names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Models lists the descriptor search paths. Relative paths are resolved
	// against the scenario file's directory.
	Models []string `yaml:"models"`

	// Model is the ident of the model under test.
	Model string `yaml:"model"`

	// Language and Languages configure the translator. Both are optional.
	Language  string   `yaml:"language,omitempty"`
	Languages []string `yaml:"languages,omitempty"`

	// Dialect selects the compiled dialect: sqlite (default) or mysql.
	Dialect string `yaml:"dialect,omitempty"`

	// KeyPrefix prefixes generated keys of seeded items. Defaults to "item".
	KeyPrefix string `yaml:"key_prefix,omitempty"`

	// Seed lists the items saved before the steps run, keyed by column.
	Seed []map[string]any `yaml:"seed,omitempty"`

	// Steps run in order, each on a fresh source.
	Steps []Step `yaml:"steps"`
}

// Step is one query and its expected outcome.
type Step struct {
	Name string `yaml:"name"`

	// Query is a source configuration document: properties, filters,
	// orders, pagination, page, num_per_page.
	Query map[string]any `yaml:"query"`

	Expect Expectation `yaml:"expect"`
}

// Expectation lists the checks applied to a step. Empty fields are not
// checked.
type Expectation struct {
	// IDs are the exact keys of the loaded page, in order. An explicit
	// empty list expects an empty page.
	IDs []string `yaml:"ids,omitempty"`

	// Contains are keys that must be on the page, in any order.
	Contains []string `yaml:"contains,omitempty"`

	// Count is the number of matching items, ignoring pagination.
	Count *int `yaml:"count,omitempty"`

	// SQL and Inline are the exact compiled SELECT, parameterized and
	// interpolated.
	SQL    string `yaml:"sql,omitempty"`
	Inline string `yaml:"inline,omitempty"`

	// First is a subset match on the first loaded item.
	First map[string]any `yaml:"first,omitempty"`

	// Error expects the step to fail with the given kind.
	Error string `yaml:"error,omitempty"`
}

// Error kinds accepted by Expectation.Error.
const (
	ErrorInvalidArgument = "invalid_argument"
	ErrorDomain          = "domain"
	ErrorAny             = "any"
)

// LoadScenario reads and parses a scenario YAML file. Model paths are
// resolved relative to the file's directory.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	return LoadScenarioWithBasePath(path, filepath.Dir(path))
}

// LoadScenarioWithBasePath reads and parses a scenario YAML file,
// resolving model paths relative to basePath.
func LoadScenarioWithBasePath(path, basePath string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	// Strict field validation catches typos like "expects:" vs "expect:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	for i, p := range scenario.Models {
		if !filepath.IsAbs(p) && basePath != "" {
			scenario.Models[i] = filepath.Join(basePath, p)
		}
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("invalid scenario: %w", err)
	}

	return &scenario, nil
}

// validateScenario checks required fields and expectation kinds.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}
	if s.Model == "" {
		return fmt.Errorf("model is required")
	}
	if len(s.Models) == 0 {
		return fmt.Errorf("models must list at least one path")
	}
	if len(s.Steps) == 0 {
		return fmt.Errorf("steps must contain at least one step")
	}

	names := map[string]bool{}
	for i, step := range s.Steps {
		if step.Name == "" {
			return fmt.Errorf("steps[%d]: name is required", i)
		}
		if names[step.Name] {
			return fmt.Errorf("steps[%d]: duplicate step name %q", i, step.Name)
		}
		names[step.Name] = true

		switch step.Expect.Error {
		case "", ErrorInvalidArgument, ErrorDomain, ErrorAny:
		default:
			return fmt.Errorf("steps[%d]: unknown error kind %q", i, step.Expect.Error)
		}
	}

	return nil
}
