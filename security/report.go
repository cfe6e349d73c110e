package security

import (
	"fmt"
	"strings"
)

var severityBands = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// RenderReport formats a scan result as a multi-line report grouped by
// severity band, preserving match order within each band. The same text is
// shown on the CLI and embedded in the error when an import is blocked.
func RenderReport(result ScanResult) string {
	var b strings.Builder

	b.WriteString("Security Scan Report\n")
	b.WriteString(fmt.Sprintf("Scanned at: %s\n", result.ScannedAt.Format("2006-01-02 15:04:05 UTC")))
	b.WriteString(fmt.Sprintf("Issues: %d critical, %d high, %d medium, %d low\n",
		result.Summary.Critical, result.Summary.High, result.Summary.Medium, result.Summary.Low))
	if result.Blocked {
		b.WriteString("Status: BLOCKED (critical issues present)\n")
	} else {
		b.WriteString("Status: allowed\n")
	}

	for _, band := range severityBands {
		issues := issuesWithSeverity(result.Issues, band)
		if len(issues) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n[%s]\n", strings.ToUpper(string(band))))
		for _, issue := range issues {
			b.WriteString(fmt.Sprintf("  - %s at %s (%s): %s\n", issue.RuleID, issue.Location, issue.Context, issue.Message))
			if issue.Pattern != "" {
				b.WriteString(fmt.Sprintf("    matched: %s\n", truncate(issue.Pattern, 80)))
			}
			if issue.Suggestion != "" {
				b.WriteString(fmt.Sprintf("    suggestion: %s\n", issue.Suggestion))
			}
		}
	}
	return b.String()
}

func issuesWithSeverity(issues []Issue, severity Severity) []Issue {
	var out []Issue
	for _, issue := range issues {
		if issue.Severity == severity {
			out = append(out, issue)
		}
	}
	return out
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
