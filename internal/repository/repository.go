// Package repository provides the Postgres-backed ledger store.
package repository

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a keyed record does not exist.
var ErrNotFound = errors.New("record not found")

// NewID returns a fresh record id.
func NewID() string {
	return uuid.NewString()
}

// setBuilder assembles the SET list of a partial UPDATE.
type setBuilder struct {
	cols []string
	args []any
}

func (b *setBuilder) add(col string, v any) {
	b.args = append(b.args, v)
	b.cols = append(b.cols, fmt.Sprintf("%s = $%d", col, len(b.args)))
}

func (b *setBuilder) empty() bool {
	return len(b.cols) == 0
}

// build returns the statement for table keyed by keyCol. The key is bound
// as the last argument.
func (b *setBuilder) build(table, keyCol string, key any, touch bool) (string, []any) {
	cols := b.cols
	if touch {
		cols = append(cols, "updated_at = NOW()")
	}
	args := append(b.args, key)
	sql := fmt.Sprintf("UPDATE %s SET %s WHERE %s = $%d",
		table, strings.Join(cols, ", "), keyCol, len(args))
	return sql, args
}

func notFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// nonNil keeps JSONB document columns from being written as SQL NULL.
func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

func nonNilMap[K comparable, V any](m map[K]V) map[K]V {
	if m == nil {
		return map[K]V{}
	}
	return m
}
