package table

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseQuery reads a Query from request parameters: q, one parameter per
// filter field, sort, order (asc/desc), page and rows. get is typically
// (*fiber.Ctx).Query.
func ParseQuery(get func(key string, defaultValue ...string) string, filterFields []string) (Query, error) {
	q := Query{
		Global:    get("q"),
		Filters:   map[string]string{},
		SortField: get("sort"),
	}
	for _, f := range filterFields {
		if v := get(f); v != "" {
			q.Filters[f] = v
		}
	}

	switch strings.ToLower(get("order")) {
	case "", "asc":
		q.SortOrder = Asc
	case "desc":
		q.SortOrder = Desc
	default:
		return Query{}, fmt.Errorf("order must be asc or desc")
	}

	var err error
	if q.Page, err = optionalInt(get("page")); err != nil {
		return Query{}, fmt.Errorf("invalid page: %w", err)
	}
	if q.Rows, err = optionalInt(get("rows")); err != nil {
		return Query{}, fmt.Errorf("invalid rows: %w", err)
	}
	return q, nil
}

func optionalInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
