package jsondoc

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/samber/lo"
	"github.com/tidwall/gjson"

	"claimflow/internal/attestation/models"
)

var (
	wildcardIndex = regexp.MustCompile(`\[\*\]`)
	numericIndex  = regexp.MustCompile(`\[(\d+)\]`)
	quotedKey     = regexp.MustCompile(`\['([^']+)'\]`)
)

// GJSONPath converts the JSONPath subset used by policies ($.a.b, $.a[*].b,
// $.a[0], $['a']) to a gjson path.
func GJSONPath(path string) string {
	p := strings.TrimSpace(path)
	p = quotedKey.ReplaceAllString(p, ".$1")
	p = wildcardIndex.ReplaceAllString(p, ".#")
	p = numericIndex.ReplaceAllString(p, ".$1")
	p = strings.TrimPrefix(p, "$")
	p = strings.TrimPrefix(p, ".")
	if p == "" {
		return "@this"
	}
	return p
}

// ExtractPropertyData builds the data bundle a claim is judged against. For
// every logical property the policy path is read from the entity body; when
// propertiesUUID names that property and the value is a collection, only the
// referenced sub-records are kept, in the referenced order.
func ExtractPropertyData(
	uuidProperty string,
	body models.Document,
	properties map[string]string,
	propertiesUUID map[string][]string,
) (models.Document, error) {
	raw, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode entity: %w", err)
	}

	out := make(models.Document, len(properties))
	for key, path := range properties {
		res := gjson.GetBytes(raw, GJSONPath(path))
		if !res.Exists() {
			return nil, fmt.Errorf("%s (%s): %w", key, path, models.ErrPropertyPathNotFound)
		}
		var value any
		if err := json.Unmarshal([]byte(res.Raw), &value); err != nil {
			return nil, fmt.Errorf("decode %s: %w", key, err)
		}
		if ids, ok := propertiesUUID[key]; ok {
			value, err = selectReferenced(uuidProperty, value, ids)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", key, err)
			}
		}
		out[key] = value
	}
	return out, nil
}

func selectReferenced(uuidProperty string, value any, ids []string) (any, error) {
	items, ok := value.([]any)
	if !ok {
		return value, nil
	}
	byID := make(map[string]any, len(items))
	for _, item := range items {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, models.ErrMalformedPropertiesUUID
		}
		if id, ok := obj[uuidProperty].(string); ok {
			byID[id] = obj
		}
	}
	selected := lo.FilterMap(ids, func(id string, _ int) (any, bool) {
		item, ok := byID[id]
		return item, ok
	})
	return selected, nil
}

// PropertiesUUID reads a record's propertiesUUID bookkeeping. Entries that are
// not non-empty string lists are skipped; any other shape is malformed.
func PropertiesUUID(v any) (map[string][]string, error) {
	if v == nil {
		return nil, nil
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, models.ErrMalformedPropertiesUUID
	}
	out := make(map[string][]string, len(obj))
	for key, val := range obj {
		items, ok := val.([]any)
		if !ok || len(items) == 0 {
			continue
		}
		ids := make([]string, 0, len(items))
		for _, item := range items {
			s, ok := item.(string)
			if !ok {
				ids = nil
				break
			}
			ids = append(ids, s)
		}
		if ids != nil {
			out[key] = ids
		}
	}
	return out, nil
}
