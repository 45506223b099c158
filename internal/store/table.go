package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/roach88/quarry/internal/model"
	"github.com/roach88/quarry/internal/querysql"
)

// RegisteredModel records a table created from a model descriptor.
type RegisteredModel struct {
	Ident     string   `json:"ident"`
	Table     string   `json:"table"`
	Key       string   `json:"key"`
	Columns   []string `json:"columns"`
	CreatedAt string   `json:"created_at"`
}

// CreateTable creates m's table if it does not exist and records it.
// Every column is nullable except the key, which is the primary key.
func (s *Store) CreateTable(ctx context.Context, m *model.Model) error {
	if m == nil {
		return fmt.Errorf("model is required")
	}
	d := querysql.SQLite{}

	var defs []string
	var columns []string
	for _, ident := range m.Properties() {
		p, _ := m.Property(ident)
		for _, col := range p.Columns(m.Translator()) {
			def := d.QuoteIdentifier(col) + " " + columnType(p)
			if col == m.Key() {
				def += " PRIMARY KEY"
			}
			defs = append(defs, def)
			columns = append(columns, col)
		}
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n    %s\n)",
		d.QuoteIdentifier(m.Table()), strings.Join(defs, ",\n    "))
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create table %s: %w", m.Table(), err)
	}

	encoded, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("encode columns: %w", err)
	}
	_, err = s.Exec(ctx, "register_model", querysql.Fragment{
		SQL: `INSERT INTO quarry_models (ident, table_name, key_column, columns, created_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(ident) DO UPDATE SET
				table_name = excluded.table_name,
				key_column = excluded.key_column,
				columns = excluded.columns`,
		Args: []any{m.Ident(), m.Table(), m.Key(), string(encoded), time.Now().UTC().Format(time.RFC3339)},
	})
	return err
}

// Models returns every registered model, sorted by ident.
func (s *Store) Models(ctx context.Context) ([]RegisteredModel, error) {
	rows, err := s.Query(ctx, "list_models", querysql.Fragment{
		SQL: `SELECT ident, table_name, key_column, columns, created_at
			FROM quarry_models
			ORDER BY ident ASC COLLATE BINARY`,
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var models []RegisteredModel
	for rows.Next() {
		var rm RegisteredModel
		var columns string
		if err := rows.Scan(&rm.Ident, &rm.Table, &rm.Key, &columns, &rm.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan model: %w", err)
		}
		if err := json.Unmarshal([]byte(columns), &rm.Columns); err != nil {
			return nil, fmt.Errorf("decode columns of %s: %w", rm.Ident, err)
		}
		models = append(models, rm)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate models: %w", err)
	}

	// Return empty slice instead of nil for consistency
	if models == nil {
		models = []RegisteredModel{}
	}
	return models, nil
}
