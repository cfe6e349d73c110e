package spec

import (
	"fmt"
)

// directoryChecks applies the directory-specific validation rules on top of
// whatever the external conformance validator accepted.
func directoryChecks(doc map[string]interface{}) (errs, warnings []string) {
	if _, ok := doc["openapi"]; !ok {
		if _, ok := doc["swagger"]; !ok {
			errs = append(errs, `Missing required "openapi" or "swagger" version field`)
		}
	}

	info, ok := doc["info"].(map[string]interface{})
	if !ok {
		errs = append(errs, `Missing required "info" section`)
		return errs, warnings
	}

	if title, _ := info["title"].(string); title == "" {
		errs = append(errs, `Missing required "info.title" field`)
	}
	if version, _ := info["version"].(string); version == "" {
		warnings = append(warnings, `Missing "info.version" field, defaulting to 1.0.0`)
	}

	_, hasPaths := doc["paths"]
	_, hasComponents := doc["components"]
	if !hasPaths && !hasComponents {
		warnings = append(warnings, `Spec has neither "paths" nor "components"; it describes no operations`)
	}

	return errs, warnings
}

func stringField(doc map[string]interface{}, keys ...string) string {
	current := doc
	for i, key := range keys {
		if i == len(keys)-1 {
			s, _ := current[key].(string)
			return s
		}
		next, ok := current[key].(map[string]interface{})
		if !ok {
			return ""
		}
		current = next
	}
	return ""
}

// versionField returns the OpenAPI/Swagger version declaration, whichever
// is present.
func versionField(doc map[string]interface{}) string {
	if v, ok := doc["openapi"]; ok {
		return fmt.Sprint(v)
	}
	if v, ok := doc["swagger"]; ok {
		return fmt.Sprint(v)
	}
	return ""
}
