// Package schema renders the database catalog as a DDL text block for prompt
// construction.
package schema

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrNoTables reports an empty catalog. The pipeline treats this as terminal
// before any model call is made.
var ErrNoTables = errors.New("no tables found in the database")

const catalogQuery = `SELECT sql FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'`

// dateHints is appended verbatim to every schema description so the model
// knows how dates and derived prices are encoded.
const dateHints = `
-- Important Notes for SQL Generation:
-- Dates in 'employees.hire_date' and 'customers.registration_date' are stored as TEXT in 'YYYY-MM-DD' format.
-- Dates in 'orders.order_date' are stored as TEXT in 'YYYY-MM-DD HH:MM:SS' format.
-- Use SQLite date functions like date(), strftime() for comparisons.
-- For example, to get orders from 2023: strftime('%Y', order_date) = '2023'
-- For "last year" (assuming current year is YYYY), use strftime('%Y', order_date) = 'YYYY-1'.
-- For "Q1 2023", query between '2023-01-01' and '2023-03-31'.
-- 'price_at_purchase' in 'order_items' is the historical price; 'unit_price' in 'products' is the current price.
-- 'manager_id' in 'employees' references 'employees.employee_id'.
`

type Provider struct {
	db *sql.DB
}

func NewProvider(db *sql.DB) *Provider {
	return &Provider{db: db}
}

// Describe returns the CREATE TABLE statements of every user table joined with
// the static hint footer. The output is deterministic for an unchanged
// database.
func (p *Provider) Describe(ctx context.Context) (string, error) {
	rows, err := p.db.QueryContext(ctx, catalogQuery)
	if err != nil {
		return "", fmt.Errorf("query sqlite_master: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var statements []string
	for rows.Next() {
		var ddl sql.NullString
		if err := rows.Scan(&ddl); err != nil {
			return "", fmt.Errorf("scan table ddl: %w", err)
		}
		if ddl.Valid && strings.TrimSpace(ddl.String) != "" {
			statements = append(statements, ddl.String)
		}
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("iterate sqlite_master: %w", err)
	}
	if len(statements) == 0 {
		return "", ErrNoTables
	}

	return strings.Join(statements, "\n\n") + "\n" + dateHints, nil
}
