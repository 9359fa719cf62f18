package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"mall-api/internal/apperr"
	"mall-api/internal/db"
)

type scanner interface {
	Scan(dest ...any) error
}

// uniqueKey names a column whose value may appear at most once in a table.
// foldCase compares values ignoring case on every backend.
type uniqueKey[T any] struct {
	column   string
	value    func(*T) any
	message  string
	foldCase bool
}

// schema describes how a record type maps onto its table. columns[0] must be
// the primary key and args must return values in column order.
type schema[T any] struct {
	entity  string
	name    string
	columns []string
	orderBy string
	scan    func(scanner, *T) error
	args    func(*T) []any
	id      func(*T) string
	unique  []uniqueKey[T]
}

// table is the storage half of the generic CRUD contract shared by every
// entity: insert, get, getMany, list, update and delete over one SQL table.
type table[T any] struct {
	db *sql.DB
	schema[T]
}

type cond struct {
	column string
	value  any
}

// equal turns column/value pairs into conditions, dropping pairs whose value
// is empty.
func equal(pairs ...string) []cond {
	var conds []cond
	for i := 0; i+1 < len(pairs); i += 2 {
		if pairs[i+1] != "" {
			conds = append(conds, cond{column: pairs[i], value: pairs[i+1]})
		}
	}
	return conds
}

func (t *table[T]) selectSQL() string {
	return "SELECT " + strings.Join(t.columns, ", ") + " FROM " + t.name
}

func (t *table[T]) notFound() error {
	return apperr.NotFound(capitalize(t.entity) + " not found")
}

func (t *table[T]) insert(ctx context.Context, rec *T) error {
	if err := t.ensureUnique(ctx, rec); err != nil {
		return err
	}

	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		t.name, strings.Join(t.columns, ", "), placeholders(len(t.columns)))
	if _, err := t.db.ExecContext(ctx, query, t.args(rec)...); err != nil {
		return t.writeError("create", err)
	}
	return nil
}

func (t *table[T]) get(ctx context.Context, id string) (*T, error) {
	return t.findOne(ctx, t.columns[0], id)
}

func (t *table[T]) findOne(ctx context.Context, column string, value any) (*T, error) {
	row := t.db.QueryRowContext(ctx, t.selectSQL()+" WHERE "+column+" = ?", value)

	var rec T
	err := t.scan(row, &rec)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, t.notFound()
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching %s: %w", t.entity, err)
	}
	return &rec, nil
}

func (t *table[T]) exists(ctx context.Context, id string) (bool, error) {
	var found string
	err := t.db.QueryRowContext(ctx, "SELECT "+t.columns[0]+" FROM "+t.name+" WHERE "+t.columns[0]+" = ?", id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("error checking %s: %w", t.entity, err)
	}
	return true, nil
}

// getMany loads the records with the given ids, keyed by id. Unknown and empty
// ids are absent from the result.
func (t *table[T]) getMany(ctx context.Context, ids []string) (map[string]*T, error) {
	found := make(map[string]*T)
	seen := make(map[string]struct{}, len(ids))
	args := make([]any, 0, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		args = append(args, id)
	}
	if len(args) == 0 {
		return found, nil
	}

	query := t.selectSQL() + " WHERE " + t.columns[0] + " IN (" + placeholders(len(args)) + ")"
	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error fetching %s records: %w", t.entity, err)
	}
	defer rows.Close()

	for rows.Next() {
		rec := new(T)
		if err := t.scan(rows, rec); err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", t.entity, err)
		}
		found[t.id(rec)] = rec
	}
	return found, rows.Err()
}

func (t *table[T]) list(ctx context.Context, conds ...cond) ([]T, error) {
	query := t.selectSQL()
	args := make([]any, 0, len(conds))
	if len(conds) > 0 {
		clauses := make([]string, 0, len(conds))
		for _, c := range conds {
			clauses = append(clauses, c.column+" = ?")
			args = append(args, c.value)
		}
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	if t.orderBy != "" {
		query += " ORDER BY " + t.orderBy
	}

	rows, err := t.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("error listing %s records: %w", t.entity, err)
	}
	defer rows.Close()

	records := []T{}
	for rows.Next() {
		var rec T
		if err := t.scan(rows, &rec); err != nil {
			return nil, fmt.Errorf("error scanning %s: %w", t.entity, err)
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (t *table[T]) count(ctx context.Context, conds ...cond) (int, error) {
	query := "SELECT COUNT(*) FROM " + t.name
	args := make([]any, 0, len(conds))
	if len(conds) > 0 {
		clauses := make([]string, 0, len(conds))
		for _, c := range conds {
			clauses = append(clauses, c.column+" = ?")
			args = append(args, c.value)
		}
		query += " WHERE " + strings.Join(clauses, " AND ")
	}

	var n int
	if err := t.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("error counting %s records: %w", t.entity, err)
	}
	return n, nil
}

// update writes every column of rec back to its row.
func (t *table[T]) update(ctx context.Context, rec *T) error {
	if err := t.ensureUnique(ctx, rec); err != nil {
		return err
	}

	sets := make([]string, 0, len(t.columns)-1)
	for _, c := range t.columns[1:] {
		sets = append(sets, c+" = ?")
	}
	values := t.args(rec)
	args := append(values[1:len(values):len(values)], values[0])

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s = ?", t.name, strings.Join(sets, ", "), t.columns[0])
	result, err := t.db.ExecContext(ctx, query, args...)
	if err != nil {
		return t.writeError("update", err)
	}
	if n, err := result.RowsAffected(); err == nil && n == 0 {
		return t.notFound()
	}
	return nil
}

func (t *table[T]) delete(ctx context.Context, id string) error {
	result, err := t.db.ExecContext(ctx, "DELETE FROM "+t.name+" WHERE "+t.columns[0]+" = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", t.entity, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete %s: %w", t.entity, err)
	}
	if n == 0 {
		return t.notFound()
	}
	return nil
}

// ensureUnique rejects rec when another row already holds one of its unique
// values. The UNIQUE indexes still back this up for concurrent writers.
func (t *table[T]) ensureUnique(ctx context.Context, rec *T) error {
	for _, key := range t.unique {
		where := key.column + " = ?"
		if key.foldCase {
			where = "LOWER(" + key.column + ") = LOWER(?)"
		}
		var other string
		err := t.db.QueryRowContext(ctx,
			"SELECT "+t.columns[0]+" FROM "+t.name+" WHERE "+where+" LIMIT 1", key.value(rec),
		).Scan(&other)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return fmt.Errorf("error checking %s uniqueness: %w", t.entity, err)
		}
		if other != t.id(rec) {
			return apperr.Conflict(key.message)
		}
	}
	return nil
}

func (t *table[T]) writeError(op string, err error) error {
	if db.IsUniqueViolation(err) {
		msg := capitalize(t.entity) + " already exists"
		if len(t.unique) > 0 {
			msg = t.unique[0].message
		}
		return apperr.Conflict(msg)
	}
	return fmt.Errorf("failed to %s %s: %w", op, t.entity, err)
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
