// Package table implements the small ordered-column string table the
// scrape pipeline is built on. Cells stay raw strings until the cleaner
// applies a declared schema; an empty string is the missing-value marker.
package table

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMissingColumn is returned when an operation names a column the table
// does not carry. A season whose source page shifted its schema must fail
// here rather than be silently reindexed.
var ErrMissingColumn = errors.New("missing column")

// Row maps column name to raw cell text.
type Row map[string]string

// Table is an ordered set of columns plus data rows. Every row carries
// exactly the header's column set.
type Table struct {
	Columns []string
	Rows    []Row
}

// New creates an empty table with the given column order.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Append adds one row, padding any column the caller omitted with the
// missing-value marker.
func (t *Table) Append(row Row) {
	r := make(Row, len(t.Columns))
	for _, col := range t.Columns {
		r[col] = row[col]
	}
	t.Rows = append(t.Rows, r)
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// HasColumn reports whether the table carries the named column.
func (t *Table) HasColumn(name string) bool {
	for _, col := range t.Columns {
		if col == name {
			return true
		}
	}
	return false
}

// Require fails with ErrMissingColumn unless every named column is present.
func (t *Table) Require(columns ...string) error {
	for _, col := range columns {
		if !t.HasColumn(col) {
			return fmt.Errorf("%w: %q (have %s)", ErrMissingColumn, col, strings.Join(t.Columns, ", "))
		}
	}
	return nil
}

// Clone returns a deep copy.
func (t *Table) Clone() *Table {
	out := New(t.Columns...)
	for _, row := range t.Rows {
		cpy := make(Row, len(row))
		for k, v := range row {
			cpy[k] = v
		}
		out.Rows = append(out.Rows, cpy)
	}
	return out
}

// DropEmptyColumns removes every column that holds no value in any row.
// Such columns are rendering artifacts of the source page, not data.
func (t *Table) DropEmptyColumns() {
	kept := t.Columns[:0]
	for _, col := range t.Columns {
		empty := true
		for _, row := range t.Rows {
			if row[col] != "" {
				empty = false
				break
			}
		}
		if empty {
			for _, row := range t.Rows {
				delete(row, col)
			}
			continue
		}
		kept = append(kept, col)
	}
	t.Columns = kept
}

// Select projects the table down to exactly the named columns, in the
// given order. Missing columns fail loudly.
func (t *Table) Select(columns ...string) (*Table, error) {
	if err := t.Require(columns...); err != nil {
		return nil, err
	}
	out := New(columns...)
	for _, row := range t.Rows {
		r := make(Row, len(columns))
		for _, col := range columns {
			r[col] = row[col]
		}
		out.Rows = append(out.Rows, r)
	}
	return out, nil
}

// Rename renames columns in place per the old→new mapping. Every old name
// must exist.
func (t *Table) Rename(mapping map[string]string) error {
	for old := range mapping {
		if err := t.Require(old); err != nil {
			return err
		}
	}
	for i, col := range t.Columns {
		if repl, ok := mapping[col]; ok {
			t.Columns[i] = repl
		}
	}
	for _, row := range t.Rows {
		for old, repl := range mapping {
			row[repl] = row[old]
			delete(row, old)
		}
	}
	return nil
}

// PrependColumn inserts a column in the leading position with the same
// value for every row.
func (t *Table) PrependColumn(name, value string) {
	t.Columns = append([]string{name}, t.Columns...)
	for _, row := range t.Rows {
		row[name] = value
	}
}

// DropColumn removes the named column if present.
func (t *Table) DropColumn(name string) {
	kept := t.Columns[:0]
	for _, col := range t.Columns {
		if col == name {
			for _, row := range t.Rows {
				delete(row, name)
			}
			continue
		}
		kept = append(kept, col)
	}
	t.Columns = kept
}

// keyOf builds the composite join key for a row. Cell text is joined with
// an unlikely separator; raw values are compared exactly, not normalized.
func keyOf(row Row, key []string) string {
	parts := make([]string, len(key))
	for i, col := range key {
		parts[i] = row[col]
	}
	return strings.Join(parts, "\x1f")
}

// JoinFirstMatch inner-joins t with other on the composite key. Duplicate
// keys on either side collapse to the first occurrence in source order:
// one joined row per key, pairing the first left row with the first right
// row. This is the deliberate tie-break for traded players, whose per-team
// and aggregate rows share an identical key across the two source tables.
func (t *Table) JoinFirstMatch(other *Table, key ...string) (*Table, error) {
	if err := t.Require(key...); err != nil {
		return nil, fmt.Errorf("join left side: %w", err)
	}
	if err := other.Require(key...); err != nil {
		return nil, fmt.Errorf("join right side: %w", err)
	}

	right := make(map[string]Row, other.Len())
	for _, row := range other.Rows {
		k := keyOf(row, key)
		if _, dup := right[k]; !dup {
			right[k] = row
		}
	}

	var extra []string
	for _, col := range other.Columns {
		if !t.HasColumn(col) {
			extra = append(extra, col)
		}
	}

	out := New(append(append([]string(nil), t.Columns...), extra...)...)
	seen := make(map[string]bool, t.Len())
	for _, row := range t.Rows {
		k := keyOf(row, key)
		if seen[k] {
			continue
		}
		match, ok := right[k]
		if !ok {
			continue
		}
		seen[k] = true
		joined := make(Row, len(out.Columns))
		for _, col := range t.Columns {
			joined[col] = row[col]
		}
		for _, col := range extra {
			joined[col] = match[col]
		}
		out.Rows = append(out.Rows, joined)
	}
	return out, nil
}

// IsSentinelRow reports whether a row is a leaked copy of the header:
// every non-empty cell equals its own column name. Sources in this family
// repeat the header mid-table across pagination boundaries. Columns listed
// in ignore are excluded from the check; pipeline-added columns such as the
// season year carry real values even in a leaked header row.
func (t *Table) IsSentinelRow(row Row, ignore ...string) bool {
	skip := make(map[string]bool, len(ignore))
	for _, col := range ignore {
		skip[col] = true
	}
	matched := false
	for _, col := range t.Columns {
		if skip[col] {
			continue
		}
		v := row[col]
		if v == "" {
			continue
		}
		if v != col {
			return false
		}
		matched = true
	}
	return matched
}

// Concat appends the given tables in order into one master table. Columns
// are the union in first-seen order; cells a table does not carry stay
// missing. Season boundaries survive only through the year column.
func Concat(tables ...*Table) *Table {
	out := New()
	seen := make(map[string]bool)
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, col := range t.Columns {
			if !seen[col] {
				seen[col] = true
				out.Columns = append(out.Columns, col)
			}
		}
	}
	for _, t := range tables {
		if t == nil {
			continue
		}
		for _, row := range t.Rows {
			out.Append(row)
		}
	}
	return out
}

// RemoveSentinelRows drops every header-valued row.
func (t *Table) RemoveSentinelRows(ignore ...string) {
	kept := t.Rows[:0]
	for _, row := range t.Rows {
		if t.IsSentinelRow(row, ignore...) {
			continue
		}
		kept = append(kept, row)
	}
	t.Rows = kept
}
