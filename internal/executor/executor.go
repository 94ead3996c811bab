// Package executor runs model-generated SQL against the office database. The
// statements it receives are unvalidated and may be malformed.
package executor

import (
	"context"
	"database/sql"
	"fmt"
)

type Executor struct {
	db *sql.DB
}

func NewExecutor(db *sql.DB) *Executor {
	return &Executor{db: db}
}

// Execute runs one SQL statement on a dedicated connection with foreign-key
// enforcement enabled and returns all rows as ordered mappings. The connection
// is released on every exit path. Driver errors are returned, never raised.
func (e *Executor) Execute(ctx context.Context, sqlText string) ([]Row, error) {
	conn, err := e.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if _, err := conn.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	rows, err := conn.QueryContext(ctx, sqlText)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	results := make([]Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}
		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		mapped := make(map[string]any, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				mapped[column] = string(b)
			} else {
				mapped[column] = values[i]
			}
		}
		results = append(results, NewRow(columns, mapped))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return results, nil
}
