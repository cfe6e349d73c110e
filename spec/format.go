package spec

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/xerrors"
	"gopkg.in/yaml.v2"
)

var (
	openapiKeyRe = regexp.MustCompile(`(?m)^(openapi|swagger)\s*:`)
	yamlLineRe   = regexp.MustCompile(`(?m)^[\w$.-]+\s*:`)
)

// DetectFormat guesses whether content is JSON or YAML. JSON brackets win,
// then an openapi:/swagger: key, then a generic key: line; as a last resort
// content that parses as JSON is JSON and everything else is YAML.
func DetectFormat(content []byte) Format {
	trimmed := strings.TrimSpace(string(content))
	if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
		return FormatJSON
	}
	if openapiKeyRe.MatchString(trimmed) {
		return FormatYAML
	}
	if yamlLineRe.MatchString(trimmed) {
		return FormatYAML
	}
	var probe interface{}
	if err := json.Unmarshal(content, &probe); err == nil {
		return FormatJSON
	}
	return FormatYAML
}

// Parse decodes content according to format into a string-keyed document.
// YAML goes through yaml.v2, which resolves only plain tags and never
// executes anything.
func Parse(content []byte, format Format) (map[string]interface{}, error) {
	switch format {
	case FormatJSON:
		var doc map[string]interface{}
		if err := json.Unmarshal(content, &doc); err != nil {
			return nil, xerrors.Errorf("failed to parse JSON: %w", err)
		}
		return doc, nil
	case FormatYAML:
		var raw map[interface{}]interface{}
		if err := yaml.Unmarshal(content, &raw); err != nil {
			return nil, xerrors.Errorf("failed to parse YAML: %w", err)
		}
		doc, ok := normalizeValue(raw).(map[string]interface{})
		if !ok {
			return nil, xerrors.New("YAML document is not a mapping")
		}
		return doc, nil
	}
	return nil, xerrors.Errorf("unknown format: %s", format)
}

// normalizeValue rewrites yaml.v2 interface-keyed maps into JSON-compatible
// string-keyed ones, recursively.
func normalizeValue(v interface{}) interface{} {
	switch vv := v.(type) {
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(vv))
		for k, item := range vv {
			out[fmt.Sprint(k)] = normalizeValue(item)
		}
		return out
	case map[string]interface{}:
		out := make(map[string]interface{}, len(vv))
		for k, item := range vv {
			out[k] = normalizeValue(item)
		}
		return out
	case []interface{}:
		out := make([]interface{}, len(vv))
		for i, item := range vv {
			out[i] = normalizeValue(item)
		}
		return out
	}
	return v
}
