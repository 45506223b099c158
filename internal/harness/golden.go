package harness

import (
	"context"
	"testing"

	"github.com/goccy/go-json"
	"github.com/sebdah/goldie/v2"
)

// TraceSnapshot is the golden file content of a scenario run.
type TraceSnapshot struct {
	ScenarioName string      `json:"scenario_name"`
	Trace        []StepTrace `json:"trace"`
}

// RunWithGolden runs a scenario, fails the test on any failed expectation
// and compares the trace against testdata/golden/<name>.golden.
//
// Regenerate golden files with: go test ./internal/harness -update
func RunWithGolden(t *testing.T, scenario *Scenario) *Result {
	t.Helper()

	result, err := Run(context.Background(), scenario)
	if err != nil {
		t.Fatalf("scenario %s: %v", scenario.Name, err)
	}
	for _, msg := range result.Errors {
		t.Errorf("scenario %s: %s", scenario.Name, msg)
	}

	AssertGolden(t, scenario.Name, result)
	return result
}

// AssertGolden compares the trace of result with the named golden file.
func AssertGolden(t *testing.T, name string, result *Result) {
	t.Helper()

	data, err := MarshalTrace(name, result)
	if err != nil {
		t.Fatalf("marshal trace: %v", err)
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, name, data)
}

// MarshalTrace renders the trace of result as indented JSON.
func MarshalTrace(name string, result *Result) ([]byte, error) {
	return json.MarshalIndent(TraceSnapshot{
		ScenarioName: name,
		Trace:        result.Trace,
	}, "", "  ")
}
