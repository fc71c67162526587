package structs

import (
	"maps"
	"sort"

	goccy "github.com/goccy/go-json"
)

const (
	IDField    = "id"
	ClassField = "class"
	NameField  = "name"
)

// Record is the persisted shape of an entity: a flat mapping with at least
// "id" and "class". The class drives reconstruction.
type Record map[string]any

func (r Record) ID() string {
	return r.String(IDField)
}

func (r Record) Class() string {
	return r.String(ClassField)
}

func (r Record) Name() string {
	return r.String(NameField)
}

// String returns the string under key, or "" if it is missing, null or of
// another type.
func (r Record) String(key string) string {
	if s, ok := r[key].(string); ok {
		return s
	}
	return ""
}

// Bool returns the bool under key, or def if it is missing or of another type.
func (r Record) Bool(key string, def bool) bool {
	if b, ok := r[key].(bool); ok {
		return b
	}
	return def
}

// Strings returns the string list under key. Decoded JSON produces []any, so
// both shapes are accepted.
func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return append([]string{}, v...)
	case []any:
		result := make([]string, 0, len(v))
		for _, e := range v {
			if s, ok := e.(string); ok {
				result = append(result, s)
			}
		}
		return result
	}
	return []string{}
}

// StringMap returns the string to string mapping under key.
func (r Record) StringMap(key string) map[string]string {
	switch v := r[key].(type) {
	case map[string]string:
		return maps.Clone(v)
	case map[string]any:
		result := make(map[string]string, len(v))
		for k, e := range v {
			if s, ok := e.(string); ok {
				result[k] = s
			}
		}
		return result
	}
	return map[string]string{}
}

// Maps returns the list of objects under key, each flattened to string values.
func (r Record) Maps(key string) []map[string]string {
	result := []map[string]string{}
	switch v := r[key].(type) {
	case []map[string]string:
		for _, m := range v {
			result = append(result, maps.Clone(m))
		}
	case []any:
		for _, e := range v {
			sub := Record{"e": e}
			result = append(result, sub.StringMap("e"))
		}
	}
	return result
}

// Ref returns an id or nil, which is how missing references are persisted.
func Ref(id string) any {
	if id == "" {
		return nil
	}
	return id
}

func (r Record) Clone() Record {
	result := Record{}
	for k, v := range r {
		result[k] = v
	}
	return result
}

// Keys returns the sorted field names of the record.
func (r Record) Keys() []string {
	result := make([]string, 0, len(r))
	for k := range r {
		result = append(result, k)
	}
	sort.Strings(result)
	return result
}

func (r Record) Marshal() ([]byte, error) {
	return goccy.Marshal(r)
}

func UnmarshalRecord(b []byte) (Record, error) {
	result := Record{}
	if err := goccy.Unmarshal(b, &result); err != nil {
		return nil, err
	}
	return result, nil
}
