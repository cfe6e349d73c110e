// Package security analyzes parsed specification documents for content that
// should never enter the local directory: script injection, prompt
// injection aimed at AI consumers, and suspicious embedded payloads. A scan
// with at least one critical finding blocks ingestion.
package security

import (
	"time"
)

const defaultBase64MinLength = 40

type Scanner struct {
	rules           []Rule
	base64MinLength int
	now             func() time.Time
}

type option func(*Scanner)

// WithRules replaces the default rule set entirely.
func WithRules(rules []Rule) option {
	return func(s *Scanner) { s.rules = rules }
}

// WithBase64MinLength tunes the minimum candidate length of the base64
// rule. The default is a guess, not a calibrated threshold.
func WithBase64MinLength(n int) option {
	return func(s *Scanner) {
		s.base64MinLength = n
		s.rules = nil
	}
}

func WithClock(now func() time.Time) option {
	return func(s *Scanner) { s.now = now }
}

func NewScanner(opts ...option) *Scanner {
	s := &Scanner{
		base64MinLength: defaultBase64MinLength,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.rules == nil {
		s.rules = defaultRules(s.base64MinLength)
	}
	return s
}

// ScanSpec walks a parsed document and applies every rule to each string
// leaf. It never fails on malformed input.
func (s *Scanner) ScanSpec(doc interface{}) ScanResult {
	result := ScanResult{ScannedAt: s.now().UTC()}

	walkStrings(doc, "", func(path, value string) {
		ctx := deriveContext(path)
		for _, rule := range s.rules {
			if !rule.appliesTo(ctx) {
				continue
			}
			matched, evidence := rule.match(value)
			if !matched {
				continue
			}

			issue := Issue{
				Type:       rule.Type,
				Severity:   rule.Severity,
				Location:   path,
				Context:    ctx,
				Pattern:    evidence,
				Message:    rule.Message,
				RuleID:     rule.ID,
				Suggestion: rule.Suggestion,
			}
			if ctx == ContextExample && rule.AllowInExamples {
				issue.Severity = issue.Severity.Downgrade()
				issue.Message += " (severity reduced: found in example content)"
			}
			result.Issues = append(result.Issues, issue)
		}
	})

	for _, issue := range result.Issues {
		switch issue.Severity {
		case SeverityCritical:
			result.Summary.Critical++
		case SeverityHigh:
			result.Summary.High++
		case SeverityMedium:
			result.Summary.Medium++
		case SeverityLow:
			result.Summary.Low++
		}
	}
	result.Blocked = result.Summary.Critical > 0
	return result
}
