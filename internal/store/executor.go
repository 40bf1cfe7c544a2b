package store

import (
	"context"

	"github.com/aa196883/boardgame-crud/internal/errors"
)

// Row is one result row as an ordered list of column/value pairs. Order
// follows the SELECT list so callers can render results without knowing
// the query shape.
type Row []Cell

// Cell is a single column/value pair.
type Cell struct {
	Column string
	Value  interface{}
}

// ResultSet is the outcome of a read-only query.
type ResultSet struct {
	Columns []string
	Rows    []Row
}

// Map flattens a row to a column->value map, losing column order.
func (r Row) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r))
	for _, c := range r {
		m[c.Column] = c.Value
	}
	return m
}

// ExecuteSelect runs an already-validated read-only query and collects
// every row. The caller is responsible for safety screening; this layer
// only reports execution failures.
func (s *Store) ExecuteSelect(ctx context.Context, query string, args ...interface{}) (*ResultSet, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewDatabaseExecutionError(err).
			WithMetadata("query", query)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, errors.NewDatabaseExecutionError(err)
	}

	result := &ResultSet{Columns: columns, Rows: []Row{}}
	values := make([]interface{}, len(columns))
	scanTargets := make([]interface{}, len(columns))
	for i := range values {
		scanTargets[i] = &values[i]
	}

	for rows.Next() {
		if err := rows.Scan(scanTargets...); err != nil {
			return nil, errors.NewDatabaseExecutionError(err)
		}
		row := make(Row, len(columns))
		for i, col := range columns {
			row[i] = Cell{Column: col, Value: normalizeValue(values[i])}
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewDatabaseExecutionError(err)
	}

	return result, nil
}

// normalizeValue converts driver byte slices to strings so values survive
// JSON encoding as text rather than base64.
func normalizeValue(v interface{}) interface{} {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
