package security

import (
	"fmt"
	"strings"
)

// nodeKind is the closed set of shapes a parsed spec node can take.
type nodeKind int

const (
	kindScalar nodeKind = iota
	kindSequence
	kindMapping
)

func kindOf(v interface{}) nodeKind {
	switch v.(type) {
	case []interface{}:
		return kindSequence
	case map[string]interface{}, map[interface{}]interface{}:
		return kindMapping
	}
	return kindScalar
}

// walkStrings visits every string leaf of a parsed document, depth first,
// calling visit with the JSON path of the leaf. It tolerates nil values,
// mixed-key YAML mappings and any scalar type without failing; unscannable
// values are skipped.
func walkStrings(value interface{}, path string, visit func(path, s string)) {
	if value == nil {
		return
	}

	switch kindOf(value) {
	case kindSequence:
		for i, item := range value.([]interface{}) {
			walkStrings(item, fmt.Sprintf("%s[%d]", path, i), visit)
		}
	case kindMapping:
		for key, item := range normalizeMapping(value) {
			childPath := key
			if path != "" {
				childPath = path + "." + key
			}
			walkStrings(item, childPath, visit)
		}
	default:
		if s, ok := value.(string); ok {
			visit(path, s)
		}
	}
}

// normalizeMapping folds both JSON-style and yaml.v2-style maps into a
// single shape. Non-string YAML keys are rendered with fmt so nothing is
// dropped.
func normalizeMapping(value interface{}) map[string]interface{} {
	switch m := value.(type) {
	case map[string]interface{}:
		return m
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(m))
		for k, v := range m {
			out[fmt.Sprint(k)] = v
		}
		return out
	}
	return nil
}

// deriveContext classifies a JSON path into a structural context using
// ordered substring checks. Earlier checks win: an example inside a
// parameter is still example context.
func deriveContext(path string) Context {
	p := strings.ToLower(path)
	switch {
	case strings.Contains(p, "example"):
		return ContextExample
	case strings.Contains(p, "description"), strings.Contains(p, "summary"):
		return ContextDescription
	case strings.Contains(p, "parameter"), strings.Contains(p, "headers"),
		strings.Contains(p, "query"), strings.Contains(p, "path"):
		return ContextParameter
	case strings.Contains(p, "schema"), strings.Contains(p, "properties"),
		strings.Contains(p, "items"), strings.Contains(p, "additionalproperties"):
		return ContextSchema
	}
	return ContextMetadata
}
