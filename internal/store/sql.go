package store

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
)

// Filter is one WHERE predicate, combined with AND.
type Filter struct {
	Column string
	Op     string
	Value  any
}

// Eq matches rows where column equals value.
func Eq(column string, value any) Filter {
	return Filter{Column: column, Op: "=", Value: value}
}

// Gte matches rows where column is at least value.
func Gte(column string, value any) Filter {
	return Filter{Column: column, Op: ">=", Value: value}
}

// Lte matches rows where column is at most value.
func Lte(column string, value any) Filter {
	return Filter{Column: column, Op: "<=", Value: value}
}

// Order is one ORDER BY term.
type Order struct {
	Column string
	Desc   bool
}

// Select reads rows as column maps. A disabled client returns nothing.
func (c *Client) Select(ctx context.Context, table string, columns []string, filters []Filter, order []Order, limit int) ([]map[string]any, error) {
	if !c.Enabled() {
		return nil, nil
	}

	query, args := buildSelect(table, columns, filters, order, limit)
	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}

	out, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("select %s: %w", table, err)
	}
	return out, nil
}

// Insert writes rows in one statement. Returned rows are non-nil only
// when returning columns were requested.
func (c *Client) Insert(ctx context.Context, table string, rows []map[string]any, returning ...string) ([]map[string]any, error) {
	if !c.Enabled() || len(rows) == 0 {
		return nil, nil
	}

	query, args := buildInsert(table, rows, nil, returning)
	return c.write(ctx, table, query, args, len(returning) > 0)
}

// Upsert writes rows, merging duplicates on the conflict columns: an
// existing row with the same key is overwritten, and when the input
// itself repeats a key the last row wins.
func (c *Client) Upsert(ctx context.Context, table string, rows []map[string]any, conflict []string, returning ...string) ([]map[string]any, error) {
	if !c.Enabled() || len(rows) == 0 {
		return nil, nil
	}

	rows = dedupeRows(rows, conflict)
	query, args := buildInsert(table, rows, conflict, returning)
	return c.write(ctx, table, query, args, len(returning) > 0)
}

func (c *Client) write(ctx context.Context, table, query string, args []any, returning bool) ([]map[string]any, error) {
	if !returning {
		if _, err := c.pool.Exec(ctx, query, args...); err != nil {
			return nil, fmt.Errorf("write %s: %w", table, err)
		}
		return nil, nil
	}

	rows, err := c.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", table, err)
	}
	out, err := pgx.CollectRows(rows, pgx.RowToMap)
	if err != nil {
		return nil, fmt.Errorf("write %s: %w", table, err)
	}
	return out, nil
}

func buildSelect(table string, columns []string, filters []Filter, order []Order, limit int) (string, []any) {
	cols := "*"
	if len(columns) > 0 {
		cols = strings.Join(columns, ", ")
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "SELECT %s FROM %s", cols, table)

	args := make([]any, 0, len(filters))
	for i, f := range filters {
		if i == 0 {
			sb.WriteString(" WHERE ")
		} else {
			sb.WriteString(" AND ")
		}
		args = append(args, f.Value)
		fmt.Fprintf(&sb, "%s %s $%d", f.Column, f.Op, len(args))
	}

	for i, o := range order {
		if i == 0 {
			sb.WriteString(" ORDER BY ")
		} else {
			sb.WriteString(", ")
		}
		sb.WriteString(o.Column)
		if o.Desc {
			sb.WriteString(" DESC")
		}
	}

	if limit > 0 {
		fmt.Fprintf(&sb, " LIMIT %d", limit)
	}

	return sb.String(), args
}

// buildInsert renders one multi-row INSERT. Column order comes from
// the first row's sorted keys; a key missing from a later row inserts
// NULL.
func buildInsert(table string, rows []map[string]any, conflict []string, returning []string) (string, []any) {
	columns := make([]string, 0, len(rows[0]))
	for col := range rows[0] {
		columns = append(columns, col)
	}
	sort.Strings(columns)

	var sb strings.Builder
	fmt.Fprintf(&sb, "INSERT INTO %s (%s) VALUES ", table, strings.Join(columns, ", "))

	args := make([]any, 0, len(rows)*len(columns))
	for i, row := range rows {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for j, col := range columns {
			if j > 0 {
				sb.WriteString(", ")
			}
			args = append(args, row[col])
			fmt.Fprintf(&sb, "$%d", len(args))
		}
		sb.WriteString(")")
	}

	if len(conflict) > 0 {
		fmt.Fprintf(&sb, " ON CONFLICT (%s)", strings.Join(conflict, ", "))
		updates := updateSet(columns, conflict)
		if len(updates) == 0 {
			sb.WriteString(" DO NOTHING")
		} else {
			sb.WriteString(" DO UPDATE SET ")
			sb.WriteString(strings.Join(updates, ", "))
		}
	}

	if len(returning) > 0 {
		fmt.Fprintf(&sb, " RETURNING %s", strings.Join(returning, ", "))
	}

	return sb.String(), args
}

func updateSet(columns, conflict []string) []string {
	skip := make(map[string]bool, len(conflict))
	for _, col := range conflict {
		skip[col] = true
	}

	out := make([]string, 0, len(columns))
	for _, col := range columns {
		if skip[col] {
			continue
		}
		out = append(out, col+" = EXCLUDED."+col)
	}
	return out
}

// dedupeRows keeps the last row for each conflict-key tuple. Postgres
// rejects an upsert that touches the same key twice in one statement.
func dedupeRows(rows []map[string]any, conflict []string) []map[string]any {
	if len(conflict) == 0 || len(rows) < 2 {
		return rows
	}

	seen := make(map[string]int, len(rows))
	out := make([]map[string]any, 0, len(rows))
	for _, row := range rows {
		key := conflictKey(row, conflict)
		if i, ok := seen[key]; ok {
			out[i] = row
			continue
		}
		seen[key] = len(out)
		out = append(out, row)
	}
	return out
}

func conflictKey(row map[string]any, conflict []string) string {
	parts := make([]string, len(conflict))
	for i, col := range conflict {
		parts[i] = fmt.Sprint(row[col])
	}
	return strings.Join(parts, "\x1f")
}
