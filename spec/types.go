package spec

import (
	"github.com/rawveg/openapi-directory-mcp-sub004/security"
	"github.com/rawveg/openapi-directory-mcp-sub004/types"
)

type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

type SourceType string

const (
	SourceFile SourceType = "file"
	SourceURL  SourceType = "url"
)

// Metadata describes the original document, independent of the converted
// directory entry. ByteSize is the byte length of the raw content, not the
// rune count, so sizes are reported correctly for multi-byte text.
type Metadata struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Version     string `json:"version,omitempty"`
	ByteSize    int64  `json:"byteSize"`
}

// Result is the output of a full processing run over one spec source.
type Result struct {
	Name           string
	Version        string
	Entry          types.Api
	OriginalFormat Format
	SourceType     SourceType
	SecurityScan   *security.ScanResult
	Metadata       Metadata
	// Content is the original raw document, stored verbatim.
	Content []byte
	// Document is the parsed, string-keyed form of Content.
	Document map[string]interface{}
}

// ValidationResult is the outcome of the lighter pre-import check.
type ValidationResult struct {
	Valid    bool     `json:"valid"`
	Format   Format   `json:"format"`
	Errors   []string `json:"errors,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
}

// Validator performs full structural OpenAPI conformance checking. It is an
// external collaborator; the processor only runs directory-specific checks
// itself.
type Validator interface {
	Validate(doc map[string]interface{}) error
}

// acceptAllValidator is the default when no conformance checker is wired.
type acceptAllValidator struct{}

func (acceptAllValidator) Validate(map[string]interface{}) error { return nil }
