package forms

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
)

var (
	ErrDuplicateKey         = errors.New("specification key already exists")
	ErrUnknownSpecification = errors.New("no such specification")
)

// Spec is one key/value row of the specification editor.
type Spec struct {
	Key   string
	Value any
}

// Specs keeps specification rows in the order the operator added them. It
// encodes as a JSON object; rows with an empty key are left out.
type Specs []Spec

func (s Specs) index(key string) int {
	for i, sp := range s {
		if sp.Key == key {
			return i
		}
	}
	return -1
}

// Get returns the value stored under key.
func (s Specs) Get(key string) (any, bool) {
	if i := s.index(key); i >= 0 {
		return s[i].Value, true
	}
	return nil, false
}

// Map returns the non-empty rows as a plain map.
func (s Specs) Map() map[string]any {
	out := make(map[string]any, len(s))
	for _, sp := range s {
		if sp.Key != "" {
			out[sp.Key] = sp.Value
		}
	}
	return out
}

// MarshalJSON encodes the rows as an object in row order.
func (s Specs) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, sp := range s {
		if sp.Key == "" {
			continue
		}
		if !first {
			buf.WriteByte(',')
		}
		first = false
		k, err := json.Marshal(sp.Key)
		if err != nil {
			return nil, err
		}
		v, err := json.Marshal(sp.Value)
		if err != nil {
			return nil, fmt.Errorf("specification %q: %w", sp.Key, err)
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object keeping member order. A repeated key
// overwrites the earlier row.
func (s *Specs) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		*s = nil
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("specifications must be an object")
	}

	var out Specs
	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, _ := keyTok.(string)
		var v any
		if err := dec.Decode(&v); err != nil {
			return err
		}
		out.set(key, v)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}
	*s = out
	return nil
}

func (s *Specs) set(key string, value any) {
	if i := s.index(key); i >= 0 {
		(*s)[i].Value = value
		return
	}
	*s = append(*s, Spec{Key: key, Value: value})
}

// SpecsFromMap builds rows from a stored mapping, ordered by key.
func SpecsFromMap(m map[string]any) Specs {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make(Specs, 0, len(keys))
	for _, k := range keys {
		out = append(out, Spec{Key: k, Value: m[k]})
	}
	return out
}
