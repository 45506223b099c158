package harness

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/roach88/quarry/internal/metadata"
	"github.com/roach88/quarry/internal/model"
	"github.com/roach88/quarry/internal/query"
	"github.com/roach88/quarry/internal/querysql"
	"github.com/roach88/quarry/internal/store"
	"github.com/roach88/quarry/internal/testutil"
	"github.com/roach88/quarry/internal/translation"
)

// Harness holds the resources of one scenario run.
type Harness struct {
	store   *store.Store
	model   *model.Model
	dialect querysql.Dialect
	keys    *testutil.SequentialKeys
	logger  *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database for isolation.
// Setup failures (unloadable model, invalid seed) are returned as errors;
// failed expectations are reported in the result.
//
// Execution flow:
//  1. Create fresh in-memory database
//  2. Load the model and create its table
//  3. Save the seed items
//  4. Run each step on a fresh source and check its expectations
func Run(ctx context.Context, scenario *Scenario) (*Result, error) {
	st, err := store.Open(":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	h, err := newHarness(ctx, st, scenario)
	if err != nil {
		return nil, err
	}

	if err := h.seed(ctx, scenario.Seed); err != nil {
		return nil, err
	}

	result := NewResult()
	for _, step := range scenario.Steps {
		trace := h.runStep(ctx, step)
		result.Trace = append(result.Trace, trace)
		for _, msg := range checkStep(step, trace) {
			result.AddError(fmt.Sprintf("step %q: %s", step.Name, msg))
		}
	}
	return result, nil
}

func newHarness(ctx context.Context, st *store.Store, scenario *Scenario) (*Harness, error) {
	loader, err := metadata.NewLoader(scenario.Models)
	if err != nil {
		return nil, err
	}
	tr, err := translation.New(scenario.Language, scenario.Languages...)
	if err != nil {
		return nil, fmt.Errorf("translator: %w", err)
	}
	m, err := model.Load(loader, scenario.Model, tr)
	if err != nil {
		return nil, fmt.Errorf("load model %s: %w", scenario.Model, err)
	}

	dialect := querysql.Dialect(querysql.SQLite{})
	if scenario.Dialect != "" {
		if dialect, err = querysql.DialectByName(scenario.Dialect); err != nil {
			return nil, err
		}
	}

	if err := st.CreateTable(ctx, m); err != nil {
		return nil, err
	}

	return &Harness{
		store:   st,
		model:   m,
		dialect: dialect,
		keys:    testutil.NewSequentialKeys(scenario.KeyPrefix),
		logger:  slog.Default().With("scenario", scenario.Name),
	}, nil
}

func (h *Harness) source() (*store.DatabaseSource, error) {
	return store.NewDatabaseSource(h.store, h.model,
		store.WithDialect(h.dialect),
		store.WithKeyGenerator(h.keys))
}

// seed saves the seed items. Seeding always succeeds or aborts the run.
func (h *Harness) seed(ctx context.Context, rows []map[string]any) error {
	ds, err := h.source()
	if err != nil {
		return err
	}
	for i, row := range rows {
		if _, err := ds.SaveItem(ctx, model.NewRecord(row)); err != nil {
			return fmt.Errorf("seed[%d]: %w", i, err)
		}
	}
	h.logger.Debug("scenario seeded", "items", len(rows))
	return nil
}

// runStep configures a fresh source from the step's query and runs it.
// The first error stops the step and is recorded in the trace.
func (h *Harness) runStep(ctx context.Context, step Step) StepTrace {
	trace := StepTrace{Step: step.Name, IDs: []string{}}
	fail := func(err error) StepTrace {
		trace.err = err
		trace.Error = err.Error()
		h.logger.Debug("step failed", "step", step.Name, "error", err)
		return trace
	}

	ds, err := h.source()
	if err != nil {
		return fail(err)
	}
	if err := ds.Source().SetData(query.Data(step.Query)); err != nil {
		return fail(err)
	}

	q, err := ds.SelectSQL()
	if err != nil {
		return fail(err)
	}
	trace.SQL = q.SQL
	if trace.Inline, err = querysql.Interpolate(h.dialect, q); err != nil {
		return fail(err)
	}

	items, err := ds.LoadItems(ctx)
	if err != nil {
		return fail(err)
	}
	for _, item := range items {
		trace.IDs = append(trace.IDs, item.String(h.model.Key()))
		snapshot, err := snapshotItem(item)
		if err != nil {
			return fail(err)
		}
		trace.items = append(trace.items, snapshot)
	}

	if trace.Count, err = ds.CountItems(ctx); err != nil {
		return fail(err)
	}
	return trace
}

// snapshotItem deep-copies an item's values so that traces never share
// decoded lists or objects with the loaded records.
func snapshotItem(item *model.Record) (map[string]any, error) {
	clone, err := item.Clone()
	if err != nil {
		return nil, err
	}
	return clone.Data(), nil
}
