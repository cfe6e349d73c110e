// Package spec ingests raw OpenAPI documents from files or URLs and turns
// them into canonical directory entries, gated by the security scanner.
package spec

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/rawveg/openapi-directory-mcp-sub004/manifest"
	"github.com/rawveg/openapi-directory-mcp-sub004/security"
	"github.com/rawveg/openapi-directory-mcp-sub004/types"
	"github.com/rawveg/openapi-directory-mcp-sub004/utils"
)

type Processor struct {
	fs        afero.Fs
	scanner   *security.Scanner
	validator Validator
	retry     int
	now       func() time.Time
}

type option func(*Processor)

func WithAppFs(fs afero.Fs) option {
	return func(p *Processor) { p.fs = fs }
}

func WithScanner(s *security.Scanner) option {
	return func(p *Processor) { p.scanner = s }
}

func WithValidator(v Validator) option {
	return func(p *Processor) { p.validator = v }
}

func WithRetry(retry int) option {
	return func(p *Processor) { p.retry = retry }
}

func WithClock(now func() time.Time) option {
	return func(p *Processor) { p.now = now }
}

func NewProcessor(opts ...option) *Processor {
	p := &Processor{
		fs:        afero.NewOsFs(),
		scanner:   security.NewScanner(),
		validator: acceptAllValidator{},
		retry:     3,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BlockedError aborts an import whose security scan found critical issues.
// The rendered report is part of the error text so nothing is lost when it
// crosses process or transport boundaries.
type BlockedError struct {
	Result security.ScanResult
	Report string
}

func (e *BlockedError) Error() string {
	return "spec blocked by security scan:\n" + e.Report
}

// Process runs the full ingestion pipeline over one source. The returned
// result carries everything the caller needs to persist the spec; nothing
// is written here.
func (p *Processor) Process(source, name string, skipSecurity bool) (*Result, error) {
	content, sourceType, err := p.fetch(source)
	if err != nil {
		return nil, err
	}

	format := DetectFormat(content)
	doc, err := Parse(content, format)
	if err != nil {
		return nil, xerrors.Errorf("failed to parse spec from %s: %w", source, err)
	}

	if err := p.validator.Validate(doc); err != nil {
		return nil, xerrors.Errorf("spec failed structural validation: %w", err)
	}
	errs, _ := directoryChecks(doc)
	if len(errs) > 0 {
		return nil, xerrors.Errorf("spec validation failed: %s", strings.Join(errs, "; "))
	}

	if name == "" {
		name = deriveName(source)
	}

	result := &Result{
		Name:           name,
		Version:        specVersion(doc),
		OriginalFormat: format,
		SourceType:     sourceType,
		Content:        content,
		Document:       doc,
	}
	result.Entry = p.convert(doc, result.Version)
	result.Metadata = Metadata{
		Title:       stringField(doc, "info", "title"),
		Description: stringField(doc, "info", "description"),
		Version:     stringField(doc, "info", "version"),
		ByteSize:    int64(len(content)),
	}

	if !skipSecurity {
		scan := p.scanner.ScanSpec(doc)
		result.SecurityScan = &scan
		if scan.Blocked {
			return nil, &BlockedError{Result: scan, Report: security.RenderReport(scan)}
		}
	}

	return result, nil
}

// QuickValidate runs fetch, detection, parsing and validation only, for
// pre-import checks that must not persist or scan anything.
func (p *Processor) QuickValidate(source string) (ValidationResult, error) {
	content, _, err := p.fetch(source)
	if err != nil {
		return ValidationResult{}, err
	}

	format := DetectFormat(content)
	doc, err := Parse(content, format)
	if err != nil {
		return ValidationResult{
			Valid:  false,
			Format: format,
			Errors: []string{err.Error()},
		}, nil
	}

	var errs []string
	if err := p.validator.Validate(doc); err != nil {
		errs = append(errs, err.Error())
	}
	dirErrs, warnings := directoryChecks(doc)
	errs = append(errs, dirErrs...)

	return ValidationResult{
		Valid:    len(errs) == 0,
		Format:   format,
		Errors:   errs,
		Warnings: warnings,
	}, nil
}

func (p *Processor) fetch(source string) ([]byte, SourceType, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		content, err := utils.FetchURL(source, "", p.retry)
		if err != nil {
			return nil, SourceURL, xerrors.Errorf("failed to fetch spec from %s: %w", source, err)
		}
		return content, SourceURL, nil
	}

	path := utils.ExpandHome(source)
	content, err := afero.ReadFile(p.fs, path)
	if err != nil {
		return nil, SourceFile, xerrors.Errorf("failed to read spec file %s: %w", path, err)
	}
	if len(content) > utils.MaxResponseSize {
		return nil, SourceFile, xerrors.Errorf("spec file too large: %d bytes", len(content))
	}
	return content, SourceFile, nil
}

func specVersion(doc map[string]interface{}) string {
	if v := stringField(doc, "info", "version"); v != "" {
		return v
	}
	return "1.0.0"
}

// convert builds the canonical directory entry for a processed spec. The
// invariant that preferred is a key of versions holds by construction.
func (p *Processor) convert(doc map[string]interface{}, version string) types.Api {
	now := p.now().UTC().Format(time.RFC3339)

	info := types.Info{
		Title:        stringField(doc, "info", "title"),
		Description:  stringField(doc, "info", "description"),
		Version:      version,
		ProviderName: manifest.Provider,
		Categories:   []string{manifest.Provider},
	}
	if provider := stringField(doc, "info", "x-providerName"); provider != "" {
		info.ProviderName = provider
	}
	if cats, ok := doc["info"].(map[string]interface{}); ok {
		if raw, ok := cats["x-apisguru-categories"].([]interface{}); ok && len(raw) > 0 {
			var categories []string
			for _, c := range raw {
				if s, ok := c.(string); ok {
					categories = append(categories, s)
				}
			}
			if len(categories) > 0 {
				info.Categories = categories
			}
		}
	}

	return types.Api{
		Added:     now,
		Preferred: version,
		Versions: map[string]types.ApiVersion{
			version: {
				Added:      now,
				Updated:    now,
				Info:       info,
				OpenapiVer: versionField(doc),
			},
		},
	}
}

func deriveName(source string) string {
	base := filepath.Base(strings.TrimSuffix(source, "/"))
	for _, ext := range []string{".json", ".yaml", ".yml"} {
		base = strings.TrimSuffix(base, ext)
	}
	return base
}
