// Package table filters, sorts and paginates an already fetched collection the
// way the console's data tables do.
package table

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// MatchMode decides how a column filter value is compared with a cell.
type MatchMode int

const (
	Contains MatchMode = iota
	StartsWith
	Equals
)

// SortOrder of the sorted column.
type SortOrder int

const (
	Asc SortOrder = iota
	Desc
)

// PageSizes are the rows-per-page choices offered by every table.
var PageSizes = []int{5, 10, 25}

// DefaultRows is used when a query does not choose a page size.
const DefaultRows = 10

var (
	ErrUnknownField = errors.New("unknown field")
	ErrBadPageSize  = errors.New("unsupported page size")
)

// Column describes one column of a table.
type Column[T any] struct {
	Field    string
	Header   string
	Value    func(T) string
	Compare  func(a, b T) int // nil sorts by Value
	Sortable bool
	Filter   *MatchMode // nil means the column has no filter
}

// Filter is a convenience for Column.Filter.
func Filter(m MatchMode) *MatchMode { return &m }

// Table is a declarative table over rows of type T.
type Table[T any] struct {
	columns     []Column[T]
	byField     map[string]int
	globalOn    []string
	key         func(T) string
	defaultRows int
}

// New declares a table. globalFields name the columns searched by the global
// filter; key identifies a row for expansion.
func New[T any](columns []Column[T], globalFields []string, key func(T) string) (*Table[T], error) {
	t := &Table[T]{
		columns:     columns,
		byField:     make(map[string]int, len(columns)),
		key:         key,
		defaultRows: DefaultRows,
	}
	for i, c := range columns {
		if c.Value == nil {
			return nil, fmt.Errorf("column %q has no value accessor", c.Field)
		}
		t.byField[c.Field] = i
	}
	for _, f := range globalFields {
		if _, ok := t.byField[f]; !ok {
			return nil, fmt.Errorf("global filter on %q: %w", f, ErrUnknownField)
		}
	}
	t.globalOn = globalFields
	return t, nil
}

// MustNew is New for package-level declarations.
func MustNew[T any](columns []Column[T], globalFields []string, key func(T) string) *Table[T] {
	t, err := New(columns, globalFields, key)
	if err != nil {
		panic(err)
	}
	return t
}

// WithDefaultRows changes the page size used when a query has none. Sizes not
// in PageSizes are ignored.
func (t *Table[T]) WithDefaultRows(rows int) *Table[T] {
	if validRows(rows) {
		t.defaultRows = rows
	}
	return t
}

// Columns returns the column headers in order.
func (t *Table[T]) Columns() []ColumnInfo {
	out := make([]ColumnInfo, 0, len(t.columns))
	for _, c := range t.columns {
		out = append(out, ColumnInfo{Field: c.Field, Header: c.Header, Sortable: c.Sortable, Filterable: c.Filter != nil})
	}
	return out
}

// ColumnInfo is the serialisable description of a column.
type ColumnInfo struct {
	Field      string `json:"field"`
	Header     string `json:"header"`
	Sortable   bool   `json:"sortable"`
	Filterable bool   `json:"filterable"`
}

// FilterFields lists the fields that accept a column filter.
func (t *Table[T]) FilterFields() []string {
	var out []string
	for _, c := range t.columns {
		if c.Filter != nil {
			out = append(out, c.Field)
		}
	}
	return out
}

// Query is the table state chosen by the operator.
type Query struct {
	Global    string
	Filters   map[string]string
	SortField string
	SortOrder SortOrder
	Page      int // 1-based; 0 means the first page
	Rows      int // 0 means the table default
}

// Page is one page of filtered, sorted rows.
type Page[T any] struct {
	Rows        []T `json:"rows"`
	Total       int `json:"total"`
	Page        int `json:"page"`
	PageCount   int `json:"pageCount"`
	RowsPerPage int `json:"rowsPerPage"`
}

// Apply filters, sorts and paginates rows. rows is not modified.
func (t *Table[T]) Apply(rows []T, q Query) (Page[T], error) {
	perPage := q.Rows
	if perPage == 0 {
		perPage = t.defaultRows
	}
	if !validRows(perPage) {
		return Page[T]{}, fmt.Errorf("%d rows per page: %w", perPage, ErrBadPageSize)
	}

	type colFilter struct {
		col   Column[T]
		value string
	}
	var filters []colFilter
	for field, value := range q.Filters {
		i, ok := t.byField[field]
		if !ok || t.columns[i].Filter == nil {
			return Page[T]{}, fmt.Errorf("filter on %q: %w", field, ErrUnknownField)
		}
		if strings.TrimSpace(value) == "" {
			continue
		}
		filters = append(filters, colFilter{col: t.columns[i], value: value})
	}

	var sortCol *Column[T]
	if q.SortField != "" {
		i, ok := t.byField[q.SortField]
		if !ok || !t.columns[i].Sortable {
			return Page[T]{}, fmt.Errorf("sort on %q: %w", q.SortField, ErrUnknownField)
		}
		sortCol = &t.columns[i]
	}

	matched := make([]T, 0, len(rows))
	for _, r := range rows {
		if !t.matchesGlobal(r, q.Global) {
			continue
		}
		keep := true
		for _, f := range filters {
			if !Match(*f.col.Filter, f.col.Value(r), f.value) {
				keep = false
				break
			}
		}
		if keep {
			matched = append(matched, r)
		}
	}

	if sortCol != nil {
		cmp := sortCol.Compare
		if cmp == nil {
			value := sortCol.Value
			cmp = func(a, b T) int { return strings.Compare(strings.ToLower(value(a)), strings.ToLower(value(b))) }
		}
		sort.SliceStable(matched, func(i, j int) bool {
			if q.SortOrder == Desc {
				return cmp(matched[j], matched[i]) < 0
			}
			return cmp(matched[i], matched[j]) < 0
		})
	}

	return paginate(matched, q.Page, perPage), nil
}

// Find returns the row with the given key, for the expanded detail panel.
func (t *Table[T]) Find(rows []T, key string) (T, bool) {
	for _, r := range rows {
		if t.key(r) == key {
			return r, true
		}
	}
	var zero T
	return zero, false
}

func (t *Table[T]) matchesGlobal(r T, needle string) bool {
	if strings.TrimSpace(needle) == "" {
		return true
	}
	for _, f := range t.globalOn {
		if Match(Contains, t.columns[t.byField[f]].Value(r), needle) {
			return true
		}
	}
	return false
}

// Match compares a cell with a filter value case-insensitively. An empty
// filter value matches everything.
func Match(mode MatchMode, cell, value string) bool {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return true
	}
	cell = strings.ToLower(cell)
	switch mode {
	case StartsWith:
		return strings.HasPrefix(cell, value)
	case Equals:
		return cell == value
	default:
		return strings.Contains(cell, value)
	}
}

func paginate[T any](rows []T, page, perPage int) Page[T] {
	total := len(rows)
	pageCount := (total + perPage - 1) / perPage
	if pageCount == 0 {
		pageCount = 1
	}
	if page < 1 {
		page = 1
	}
	if page > pageCount {
		page = pageCount
	}
	start := (page - 1) * perPage
	end := start + perPage
	if end > total {
		end = total
	}
	out := make([]T, 0, end-start)
	out = append(out, rows[start:end]...)
	return Page[T]{Rows: out, Total: total, Page: page, PageCount: pageCount, RowsPerPage: perPage}
}

func validRows(n int) bool {
	for _, s := range PageSizes {
		if n == s {
			return true
		}
	}
	return false
}
