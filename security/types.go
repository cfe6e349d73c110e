package security

import "time"

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Downgrade lowers a severity exactly one level. Low stays low.
func (s Severity) Downgrade() Severity {
	switch s {
	case SeverityCritical:
		return SeverityHigh
	case SeverityHigh:
		return SeverityMedium
	case SeverityMedium:
		return SeverityLow
	}
	return SeverityLow
}

func (s Severity) rank() int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	}
	return 3
}

// Context is the structural position of a string inside a spec document,
// derived from its JSON path.
type Context string

const (
	ContextDescription Context = "description"
	ContextExample     Context = "example"
	ContextParameter   Context = "parameter"
	ContextSchema      Context = "schema"
	ContextMetadata    Context = "metadata"
)

// Issue is a single finding from the scanner.
type Issue struct {
	Type       string   `json:"type"`
	Severity   Severity `json:"severity"`
	Location   string   `json:"location"`
	Context    Context  `json:"context"`
	Pattern    string   `json:"pattern"`
	Message    string   `json:"message"`
	RuleID     string   `json:"ruleId"`
	Suggestion string   `json:"suggestion,omitempty"`
}

type Summary struct {
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// ScanResult aggregates all issues found in one document. Blocked is true
// exactly when the summary counts at least one critical issue, evaluated
// after any example-context downgrades.
type ScanResult struct {
	ScannedAt time.Time `json:"scannedAt"`
	Issues    []Issue   `json:"issues"`
	Summary   Summary   `json:"summary"`
	Blocked   bool      `json:"blocked"`
}
