package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/cheggaaa/pb"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"

	"github.com/rawveg/openapi-directory-mcp-sub004/cache"
	"github.com/rawveg/openapi-directory-mcp-sub004/directory"
	"github.com/rawveg/openapi-directory-mcp-sub004/importer"
	"github.com/rawveg/openapi-directory-mcp-sub004/manifest"
	"github.com/rawveg/openapi-directory-mcp-sub004/spec"
	"github.com/rawveg/openapi-directory-mcp-sub004/utils"
)

var (
	target       = flag.String("target", "", "operation (import, import-dir, validate, list-custom, remove, integrity, invalidate-cache, stats)")
	source       = flag.String("source", "", "spec file path, http(s) URL, or directory (import, import-dir, validate)")
	name         = flag.String("name", "", "import name, derived from the source when empty (import)")
	apiID        = flag.String("api-id", "", "custom spec id (remove)")
	skipSecurity = flag.Bool("skip-security", false, "bypass the security scan (import, import-dir)")
	repair       = flag.Bool("repair", false, "repair issues instead of only reporting them (integrity)")
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	flag.Parse()

	dataDir := utils.LookupEnv("OPENAPI_DIRECTORY_DATA", utils.DataDir())
	specDir := filepath.Join(dataDir, "custom-specs")
	m := manifest.NewStore(manifest.WithDir(specDir))
	imp := importer.NewImporter(
		importer.WithManifest(m),
		importer.WithCacheDir(dataDir),
	)

	src := utils.TrimSpaceNewline(*source)

	switch *target {
	case "import":
		if src == "" {
			return xerrors.New("source must be specified")
		}
		if strings.Contains(src, "::") {
			tmp, err := utils.DownloadToTempFile(context.Background(), src)
			if err != nil {
				return xerrors.Errorf("failed to download %s: %w", src, err)
			}
			defer os.Remove(tmp)
			src = tmp
		}
		entry, err := imp.Import(src, *name, *skipSecurity)
		if err != nil {
			return importError(src, err)
		}
		log.Printf("Imported %s (%s, %d bytes)", entry.ID, entry.OriginalFormat, entry.FileSize)
	case "import-dir":
		if src == "" {
			return xerrors.New("source must be specified")
		}
		if err := importDir(imp, src, *skipSecurity); err != nil {
			return xerrors.Errorf("error in directory import: %w", err)
		}
	case "validate":
		if src == "" {
			return xerrors.New("source must be specified")
		}
		result, err := imp.Validate(src)
		if err != nil {
			return xerrors.Errorf("error in validation: %w", err)
		}
		printValidation(src, result)
		if !result.Valid {
			os.Exit(1)
		}
	case "list-custom":
		entries, err := imp.List()
		if err != nil {
			return xerrors.Errorf("error listing custom specs: %w", err)
		}
		if len(entries) == 0 {
			fmt.Println("no custom specs imported")
			return nil
		}
		for _, e := range entries {
			fmt.Printf("%s\t%s\t%d bytes\timported %s\n", e.ID, e.Title, e.FileSize, e.Imported.Format("2006-01-02"))
		}
	case "remove":
		if *apiID == "" {
			return xerrors.New("api-id must be specified")
		}
		removed, err := imp.Remove(*apiID)
		if err != nil {
			return xerrors.Errorf("error removing %s: %w", *apiID, err)
		}
		if !removed {
			return xerrors.Errorf("no custom spec with id %s", *apiID)
		}
		log.Printf("Removed %s", *apiID)
	case "integrity":
		if err := runIntegrity(m, *repair); err != nil {
			return err
		}
	case "invalidate-cache":
		if err := cache.SignalInvalidation(afero.NewOsFs(), dataDir); err != nil {
			return xerrors.Errorf("error signalling invalidation: %w", err)
		}
		log.Printf("Cache invalidation signalled in %s", dataDir)
	case "stats":
		svc := directory.NewService(
			directory.WithCache(cache.NewStore(cache.WithDir(dataDir))),
			directory.WithCustom(directory.NewCustomSource(m)),
		)
		defer svc.Close()
		metrics, err := svc.GetMetrics()
		if err != nil {
			return xerrors.Errorf("error fetching metrics: %w", err)
		}
		fmt.Printf("APIs:      %d\n", metrics.NumAPIs)
		fmt.Printf("Specs:     %d\n", metrics.NumSpecs)
		fmt.Printf("Endpoints: %d (approximate)\n", metrics.NumEndpoints)
		if conflicts, err := svc.GetConflictInfo(); err == nil {
			fmt.Printf("Overlap:   %d ids present in both remote sources\n", conflicts.OverlapCount)
		}
	default:
		return xerrors.New("unknown target")
	}

	return nil
}

// importDir ingests every spec file under dir, which may also be a remote
// source fetchable by go-getter. Blocked and invalid specs are reported
// and skipped; they do not abort the rest of the batch.
func importDir(imp *importer.Importer, dir string, skipSecurity bool) error {
	if strings.Contains(dir, "://") {
		tmpDir, err := utils.DownloadToTempDir(context.Background(), dir)
		if err != nil {
			return xerrors.Errorf("failed to download %s: %w", dir, err)
		}
		defer os.RemoveAll(tmpDir)
		dir = tmpDir
	}

	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		switch filepath.Ext(path) {
		case ".json", ".yaml", ".yml":
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return xerrors.Errorf("walk error: %w", err)
	}
	if len(files) == 0 {
		return xerrors.Errorf("no spec files found under %s", dir)
	}

	log.Printf("Importing %d specs from %s", len(files), dir)
	bar := pb.StartNew(len(files))
	var failed int
	for _, f := range files {
		if _, err := imp.Import(f, "", skipSecurity); err != nil {
			failed++
			log.Printf("skipping %s: %s", f, err)
		}
		bar.Increment()
	}
	bar.Finish()

	if failed > 0 {
		log.Printf("Imported %d specs, skipped %d", len(files)-failed, failed)
	}
	return nil
}

func importError(source string, err error) error {
	var blocked *spec.BlockedError
	if xerrors.As(err, &blocked) {
		fmt.Fprintln(os.Stderr, blocked.Report)
		return xerrors.Errorf("import of %s blocked by security scan", source)
	}
	return xerrors.Errorf("error importing %s: %w", source, err)
}

func printValidation(source string, result spec.ValidationResult) {
	status := "valid"
	if !result.Valid {
		status = "invalid"
	}
	fmt.Printf("%s: %s (%s)\n", source, status, result.Format)
	for _, e := range result.Errors {
		fmt.Printf("  error: %s\n", e)
	}
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}

func runIntegrity(m *manifest.Store, repair bool) error {
	report, err := m.ValidateIntegrity()
	if err != nil {
		return xerrors.Errorf("error in integrity check: %w", err)
	}
	if report.Valid {
		fmt.Println("manifest integrity: ok")
		return nil
	}

	for _, issue := range report.Issues {
		fmt.Printf("%s: %s: %s\n", issue.SpecID, issue.Kind, issue.Message)
	}
	if !repair {
		return xerrors.Errorf("%d integrity issues found", len(report.Issues))
	}

	result, err := m.RepairIntegrity()
	if err != nil {
		return xerrors.Errorf("error in repair: %w", err)
	}
	log.Printf("Repaired %d entries, %d could not be repaired", len(result.Repaired), len(result.Failed))
	if len(result.Failed) > 0 {
		return xerrors.Errorf("%d entries could not be repaired", len(result.Failed))
	}
	return nil
}
