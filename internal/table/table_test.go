package table

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type item struct {
	ID       string
	Name     string
	Category string
	Price    int
}

func newTable(t *testing.T) *Table[item] {
	t.Helper()
	tbl, err := New([]Column[item]{
		{Field: "name", Header: "Name", Value: func(i item) string { return i.Name }, Sortable: true, Filter: Filter(StartsWith)},
		{Field: "category", Header: "Category", Value: func(i item) string { return i.Category }, Filter: Filter(Equals)},
		{Field: "price", Header: "Price", Value: func(i item) string { return "" },
			Compare: func(a, b item) int { return a.Price - b.Price }, Sortable: true},
	}, []string{"name", "category"}, func(i item) string { return i.ID })
	require.NoError(t, err)
	return tbl
}

func sample() []item {
	return []item{
		{ID: "1", Name: "RTX 4090", Category: "GPU", Price: 1599},
		{ID: "2", Name: "Ryzen 9", Category: "CPU", Price: 549},
		{ID: "3", Name: "RTX 4070", Category: "GPU", Price: 599},
		{ID: "4", Name: "Vengeance 32GB", Category: "RAM", Price: 120},
	}
}

func names(rows []item) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Name)
	}
	return out
}

func TestApply_GlobalFilterIsCaseInsensitive(t *testing.T) {
	page, err := newTable(t).Apply(sample(), Query{Global: "rtx"})
	require.NoError(t, err)
	assert.Equal(t, []string{"RTX 4090", "RTX 4070"}, names(page.Rows))

	page, err = newTable(t).Apply(sample(), Query{Global: "ram"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Vengeance 32GB"}, names(page.Rows))
}

func TestApply_ColumnFilters(t *testing.T) {
	tbl := newTable(t)

	page, err := tbl.Apply(sample(), Query{Filters: map[string]string{"category": "gpu"}})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = tbl.Apply(sample(), Query{Filters: map[string]string{"category": "GP"}})
	require.NoError(t, err)
	assert.Zero(t, page.Total, "equals does not match a prefix")

	page, err = tbl.Apply(sample(), Query{Filters: map[string]string{"name": "ry"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"Ryzen 9"}, names(page.Rows))

	page, err = tbl.Apply(sample(), Query{Filters: map[string]string{"name": "  "}})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total, "blank filter matches everything")
}

func TestApply_RejectsUnknownFields(t *testing.T) {
	tbl := newTable(t)

	_, err := tbl.Apply(sample(), Query{Filters: map[string]string{"price": "1"}})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = tbl.Apply(sample(), Query{SortField: "category"})
	assert.ErrorIs(t, err, ErrUnknownField)

	_, err = tbl.Apply(sample(), Query{Rows: 7})
	assert.ErrorIs(t, err, ErrBadPageSize)
}

func TestApply_Sorting(t *testing.T) {
	tbl := newTable(t)

	page, err := tbl.Apply(sample(), Query{SortField: "price"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Vengeance 32GB", "Ryzen 9", "RTX 4070", "RTX 4090"}, names(page.Rows))

	page, err = tbl.Apply(sample(), Query{SortField: "name", SortOrder: Desc})
	require.NoError(t, err)
	assert.Equal(t, []string{"Vengeance 32GB", "Ryzen 9", "RTX 4090", "RTX 4070"}, names(page.Rows))
}

func TestApply_Pagination(t *testing.T) {
	rows := make([]item, 0, 12)
	for i := 0; i < 12; i++ {
		rows = append(rows, item{ID: strings.Repeat("x", i+1), Name: "n"})
	}
	tbl := newTable(t)

	page, err := tbl.Apply(rows, Query{})
	require.NoError(t, err)
	assert.Len(t, page.Rows, 10)
	assert.Equal(t, 2, page.PageCount)
	assert.Equal(t, 10, page.RowsPerPage)

	page, err = tbl.Apply(rows, Query{Page: 2, Rows: 5})
	require.NoError(t, err)
	assert.Len(t, page.Rows, 5)
	assert.Equal(t, "xxxxxx", page.Rows[0].ID)

	page, err = tbl.Apply(rows, Query{Page: 9, Rows: 5})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Page, "clamped to the last page")
	assert.Len(t, page.Rows, 2)

	page, err = tbl.Apply(nil, Query{Page: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Empty(t, page.Rows)
}

func TestFind(t *testing.T) {
	tbl := newTable(t)
	row, ok := tbl.Find(sample(), "3")
	require.True(t, ok)
	assert.Equal(t, "RTX 4070", row.Name)

	_, ok = tbl.Find(sample(), "missing")
	assert.False(t, ok)
}

func TestNew_RejectsUnknownGlobalField(t *testing.T) {
	_, err := New([]Column[item]{{Field: "name", Value: func(i item) string { return i.Name }}},
		[]string{"brand"}, func(i item) string { return i.ID })
	assert.ErrorIs(t, err, ErrUnknownField)
}

func TestParseQuery(t *testing.T) {
	params := map[string]string{"q": "rtx", "category": "GPU", "sort": "price", "order": "desc", "page": "2", "rows": "25"}
	get := func(key string, def ...string) string { return params[key] }

	q, err := ParseQuery(get, []string{"name", "category"})
	require.NoError(t, err)
	assert.Equal(t, "rtx", q.Global)
	assert.Equal(t, map[string]string{"category": "GPU"}, q.Filters)
	assert.Equal(t, Desc, q.SortOrder)
	assert.Equal(t, 2, q.Page)
	assert.Equal(t, 25, q.Rows)

	params["order"] = "sideways"
	_, err = ParseQuery(get, nil)
	assert.Error(t, err)
}
