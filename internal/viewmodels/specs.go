package viewmodels

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"tokoadmin/internal/models"
)

// SpecKind tells the renderer which shape a specification value had.
type SpecKind string

const (
	SpecText SpecKind = "text"
	SpecTags SpecKind = "tags"
	SpecUnit SpecKind = "measure"
)

// SpecEntry is one rendered row of the "Technical Specifications" block.
type SpecEntry struct {
	Key   string   `json:"key"`
	Label string   `json:"label"`
	Kind  SpecKind `json:"kind"`
	Text  string   `json:"text,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// RenderSpecifications renders an open specification mapping ordered by key.
// Arrays become tags; objects join each member with the sibling "unit"
// member; everything else is plain text.
func RenderSpecifications(specs models.Specifications) []SpecEntry {
	keys := make([]string, 0, len(specs))
	for k := range specs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]SpecEntry, 0, len(keys))
	for _, k := range keys {
		entry := SpecEntry{Key: k, Label: Label(k)}
		switch v := specs[k].(type) {
		case []any:
			entry.Kind = SpecTags
			entry.Tags = make([]string, 0, len(v))
			for _, item := range v {
				entry.Tags = append(entry.Tags, scalarText(item))
			}
		case map[string]any:
			entry.Kind = SpecUnit
			entry.Text = measureText(v)
		default:
			entry.Kind = SpecText
			entry.Text = scalarText(v)
		}
		entries = append(entries, entry)
	}
	return entries
}

func measureText(obj map[string]any) string {
	unit := ""
	if u, ok := obj["unit"]; ok {
		unit = scalarText(u)
	}

	members := make([]string, 0, len(obj))
	for k := range obj {
		if k != "unit" {
			members = append(members, k)
		}
	}
	sort.Strings(members)

	parts := make([]string, 0, len(members))
	for _, k := range members {
		parts = append(parts, strings.TrimSpace(scalarText(obj[k])+" "+unit))
	}
	if len(parts) == 0 {
		return unit
	}
	return strings.Join(parts, ", ")
}

func scalarText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}
