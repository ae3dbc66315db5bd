package configutil

import (
	"sort"
	"strings"
)

// Schema lists the keys a settings map may carry. Lists names keys whose value
// must be a sequence when present.
type Schema struct {
	Required     []string
	Optional     []string
	Lists        []string
	AllowUnknown bool
}

// SchemaError reports every problem found in one settings map.
type SchemaError struct {
	Missing []string
	Unknown []string
	NotList []string
}

func (e *SchemaError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "missing: "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unknown) > 0 {
		parts = append(parts, "unknown: "+strings.Join(e.Unknown, ", "))
	}
	if len(e.NotList) > 0 {
		parts = append(parts, "expected list: "+strings.Join(e.NotList, ", "))
	}
	return strings.Join(parts, "; ")
}

// ValidateSettings checks input against schema. Keys compare case, underscore
// and hyphen insensitively. The returned error is a *SchemaError.
func ValidateSettings(input map[string]any, schema Schema) error {
	keys := make(map[string]string, len(schema.Required)+len(schema.Optional))
	for _, k := range schema.Optional {
		keys[normalizeKey(k)] = k
	}
	for _, k := range schema.Required {
		keys[normalizeKey(k)] = k
	}
	lists := make(map[string]bool, len(schema.Lists))
	for _, k := range schema.Lists {
		lists[normalizeKey(k)] = true
	}

	serr := &SchemaError{}
	present := make(map[string]bool, len(input))
	for k, v := range input {
		nk := normalizeKey(k)
		if _, ok := keys[nk]; !ok && !schema.AllowUnknown {
			serr.Unknown = append(serr.Unknown, k)
			continue
		}
		if isEmptyValue(v) {
			continue
		}
		present[nk] = true
		if lists[nk] && !isList(v) {
			serr.NotList = append(serr.NotList, k)
		}
	}
	for _, k := range schema.Required {
		if !present[normalizeKey(k)] {
			serr.Missing = append(serr.Missing, k)
		}
	}

	if len(serr.Missing) == 0 && len(serr.Unknown) == 0 && len(serr.NotList) == 0 {
		return nil
	}
	sort.Strings(serr.Missing)
	sort.Strings(serr.Unknown)
	sort.Strings(serr.NotList)
	return serr
}

func isEmptyValue(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

func isList(v any) bool {
	switch v.(type) {
	case []any, []string:
		return true
	}
	return false
}
