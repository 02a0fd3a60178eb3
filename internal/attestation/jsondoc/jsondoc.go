// Package jsondoc holds the JSON tree operations the workflow engine applies to
// entity snapshots. Every function that returns a document returns a value the
// caller owns; inputs are never modified unless the name says so.
package jsondoc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"sort"

	"claimflow/internal/attestation/models"
)

// Clone deep-copies a decoded JSON value.
func Clone(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	default:
		return t
	}
}

// CloneDocument deep-copies a document.
func CloneDocument(doc models.Document) models.Document {
	if doc == nil {
		return nil
	}
	return Clone(doc).(map[string]any)
}

// Decode parses a JSON object.
func Decode(b []byte) (models.Document, error) {
	var doc models.Document
	if err := json.Unmarshal(b, &doc); err != nil {
		return nil, fmt.Errorf("decode document: %w", err)
	}
	return doc, nil
}

// ParseLoose decodes s when it is valid JSON and otherwise returns s itself.
// Plugin responses are free-form strings that are usually, but not always, JSON.
func ParseLoose(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}

// String serializes v compactly. Object keys are emitted in sorted order, so
// the result is canonical for structurally equal values.
func String(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Normalize round-trips v through JSON so values built in Go compare equal to
// values decoded from the wire (e.g. int vs float64).
func Normalize(v any) (any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var out any
	dec := json.NewDecoder(bytes.NewReader(b))
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}

// Equal compares two JSON values structurally; key order never matters.
func Equal(a, b any) bool {
	na, err := Normalize(a)
	if err != nil {
		return false
	}
	nb, err := Normalize(b)
	if err != nil {
		return false
	}
	return reflect.DeepEqual(na, nb)
}

// Diff lists the JSON pointer paths at which a and b differ. An empty result
// means the values are structurally equal.
func Diff(a, b any) []string {
	na, errA := Normalize(a)
	nb, errB := Normalize(b)
	if errA != nil || errB != nil {
		return []string{""}
	}
	var paths []string
	diff("", na, nb, &paths)
	return paths
}

func diff(path string, a, b any, out *[]string) {
	ma, okA := a.(map[string]any)
	mb, okB := b.(map[string]any)
	if okA && okB {
		keys := make(map[string]struct{}, len(ma)+len(mb))
		for k := range ma {
			keys[k] = struct{}{}
		}
		for k := range mb {
			keys[k] = struct{}{}
		}
		sorted := make([]string, 0, len(keys))
		for k := range keys {
			sorted = append(sorted, k)
		}
		sort.Strings(sorted)
		for _, k := range sorted {
			va, inA := ma[k]
			vb, inB := mb[k]
			if !inA || !inB {
				*out = append(*out, path+"/"+k)
				continue
			}
			diff(path+"/"+k, va, vb, out)
		}
		return
	}
	sa, okA := a.([]any)
	sb, okB := b.([]any)
	if okA && okB && len(sa) == len(sb) {
		for i := range sa {
			diff(fmt.Sprintf("%s/%d", path, i), sa[i], sb[i], out)
		}
		return
	}
	if !reflect.DeepEqual(a, b) {
		*out = append(*out, path)
	}
}

// Body returns the entity body of a root snapshot {"<entityType>": {...}}.
func Body(root models.Document, entityType string) (models.Document, bool) {
	body, ok := root[entityType].(map[string]any)
	return body, ok
}

// Wrap builds a root snapshot around an entity body.
func Wrap(entityType string, body models.Document) models.Document {
	return models.Document{entityType: body}
}

// RemoveKey deletes key from v at every depth. It mutates v.
func RemoveKey(v any, key string) {
	switch t := v.(type) {
	case map[string]any:
		delete(t, key)
		for _, val := range t {
			RemoveKey(val, key)
		}
	case []any:
		for _, val := range t {
			RemoveKey(val, key)
		}
	}
}
