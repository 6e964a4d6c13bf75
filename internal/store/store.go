package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Changes maps column names to new values for a partial update.
// A nil value clears a nullable column.
type Changes map[string]any

// withTx runs fn inside a transaction, committing on success.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// updateRow applies changes to a single row, bumping updated_at. Only columns
// listed in allowed may be written. It reports whether the row exists.
func updateRow(ctx context.Context, q querier, table string, allowed map[string]bool, id string, changes Changes) (bool, error) {
	cols := make([]string, 0, len(changes))
	for col := range changes {
		if !allowed[col] {
			return false, fmt.Errorf("column %q cannot be updated on %s", col, table)
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+1)
	for _, col := range cols {
		v, err := columnValue(changes[col])
		if err != nil {
			return false, fmt.Errorf("encoding %s.%s: %w", table, col, err)
		}
		sets = append(sets, col+" = ?")
		args = append(args, v)
	}
	sets = append(sets, "updated_at = CURRENT_TIMESTAMP")
	args = append(args, id)

	result, err := q.ExecContext(ctx,
		`UPDATE `+table+` SET `+strings.Join(sets, ", ")+` WHERE id = ?`, args...,
	)
	if err != nil {
		return false, fmt.Errorf("updating %s: %w", table, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking updated %s: %w", table, err)
	}
	return n > 0, nil
}

// deleteRow deletes a row by ID and reports whether it existed.
func deleteRow(ctx context.Context, q querier, table, id string) (bool, error) {
	result, err := q.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("deleting from %s: %w", table, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("checking deleted %s: %w", table, err)
	}
	return n > 0, nil
}

// columnValue converts Go values into something the driver stores.
func columnValue(v any) (any, error) {
	switch val := v.(type) {
	case []string:
		if val == nil {
			val = []string{}
		}
		data, err := json.Marshal(val)
		if err != nil {
			return nil, err
		}
		return string(data), nil
	case *float64:
		if val == nil {
			return nil, nil
		}
		return *val, nil
	case *string:
		if val == nil {
			return nil, nil
		}
		return *val, nil
	default:
		return v, nil
	}
}

func nullFloat(f sql.NullFloat64) *float64 {
	if !f.Valid {
		return nil
	}
	v := f.Float64
	return &v
}

func nullString(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}

// IsUniqueViolation reports whether err came from a UNIQUE constraint.
func IsUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
