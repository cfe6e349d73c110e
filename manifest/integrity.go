package manifest

import (
	"fmt"

	"golang.org/x/exp/slices"
)

// IntegrityIssue describes one mismatch between the manifest and the files
// backing it.
type IntegrityIssue struct {
	SpecID  string `json:"specId"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

const (
	IssueMalformedID   = "malformed_id"
	IssueMissingFile   = "missing_file"
	IssueMissingFields = "missing_fields"
	IssueSizeMismatch  = "size_mismatch"
)

type IntegrityReport struct {
	Valid  bool             `json:"valid"`
	Issues []IntegrityIssue `json:"issues"`
}

type RepairResult struct {
	Repaired []string `json:"repaired"`
	Failed   []string `json:"failed"`
}

// ValidateIntegrity cross-validates each manifest entry against disk.
func (s *Store) ValidateIntegrity() (IntegrityReport, error) {
	m, err := s.load()
	if err != nil {
		return IntegrityReport{}, err
	}

	var issues []IntegrityIssue
	for id, e := range m.Specs {
		issues = append(issues, s.checkEntry(id, e)...)
	}
	slices.SortFunc(issues, func(a, b IntegrityIssue) int {
		if a.SpecID != b.SpecID {
			if a.SpecID < b.SpecID {
				return -1
			}
			return 1
		}
		if a.Kind < b.Kind {
			return -1
		} else if a.Kind > b.Kind {
			return 1
		}
		return 0
	})

	return IntegrityReport{Valid: len(issues) == 0, Issues: issues}, nil
}

func (s *Store) checkEntry(id string, e Entry) []IntegrityIssue {
	var issues []IntegrityIssue

	name, version, err := ParseID(id)
	if err != nil || e.ID != id {
		issues = append(issues, IntegrityIssue{
			SpecID:  id,
			Kind:    IssueMalformedID,
			Message: fmt.Sprintf("id %q is not custom:<name>:<version>", id),
		})
		return issues
	}

	if e.Name == "" || e.Version == "" || e.Title == "" || e.SourceType == "" || e.OriginalFormat == "" {
		issues = append(issues, IntegrityIssue{
			SpecID:  id,
			Kind:    IssueMissingFields,
			Message: "entry is missing required metadata fields",
		})
	}

	path := s.SpecFilePath(name, version)
	info, err := s.fs.AppFs.Stat(path)
	if err != nil {
		issues = append(issues, IntegrityIssue{
			SpecID:  id,
			Kind:    IssueMissingFile,
			Message: fmt.Sprintf("backing file %s does not exist", path),
		})
		return issues
	}

	if info.Size() != e.FileSize {
		issues = append(issues, IntegrityIssue{
			SpecID:  id,
			Kind:    IssueSizeMismatch,
			Message: fmt.Sprintf("manifest size %d, file size %d", e.FileSize, info.Size()),
		})
	}
	return issues
}

// RepairIntegrity removes entries with invalid ids or missing files and
// corrects size mismatches in place. It never fabricates missing content.
func (s *Store) RepairIntegrity() (RepairResult, error) {
	report, err := s.ValidateIntegrity()
	if err != nil {
		return RepairResult{}, err
	}

	var result RepairResult
	for _, issue := range report.Issues {
		switch issue.Kind {
		case IssueMalformedID, IssueMissingFile:
			if _, err := s.RemoveSpec(issue.SpecID); err != nil {
				result.Failed = append(result.Failed, issue.SpecID)
				continue
			}
			result.Repaired = append(result.Repaired, issue.SpecID)
		case IssueSizeMismatch:
			name, version, err := ParseID(issue.SpecID)
			if err != nil {
				result.Failed = append(result.Failed, issue.SpecID)
				continue
			}
			info, err := s.fs.AppFs.Stat(s.SpecFilePath(name, version))
			if err != nil {
				result.Failed = append(result.Failed, issue.SpecID)
				continue
			}
			ok, err := s.UpdateSpec(issue.SpecID, func(e *Entry) {
				e.FileSize = info.Size()
			})
			if err != nil || !ok {
				result.Failed = append(result.Failed, issue.SpecID)
				continue
			}
			result.Repaired = append(result.Repaired, issue.SpecID)
		}
	}
	return result, nil
}

// sortEntries keeps ListSpecs deterministic.
func sortEntries(entries []Entry) {
	slices.SortFunc(entries, func(a, b Entry) int {
		switch {
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})
}
