package security

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// Rule is one content-safety check applied to string leaves. A rule fires
// either through Pattern or through Detect; Detect wins when both are set.
type Rule struct {
	ID       string
	Type     string
	Severity Severity
	// Contexts the rule applies to. Empty means every context.
	Contexts []Context
	// AllowInExamples downgrades the severity one level when the match
	// sits in example context, instead of suppressing it.
	AllowInExamples bool
	Pattern         *regexp.Regexp
	Detect          func(s string) (matched bool, evidence string)
	Message         string
	Suggestion      string
}

func (r Rule) appliesTo(ctx Context) bool {
	if len(r.Contexts) == 0 {
		return true
	}
	for _, c := range r.Contexts {
		if c == ctx {
			return true
		}
	}
	return false
}

func (r Rule) match(s string) (bool, string) {
	if r.Detect != nil {
		return r.Detect(s)
	}
	if m := r.Pattern.FindString(s); m != "" {
		return true, m
	}
	return false, ""
}

// stripPolicy removes every HTML element. A sanitize diff against it is how
// script and HTML content is detected without maintaining a tag blacklist.
var stripPolicy = bluemonday.StrictPolicy()

// defaultRules returns the ordered rule set. Order is observable: report
// output preserves match order within a severity band.
func defaultRules(base64MinLength int) []Rule {
	return []Rule{
		// Script/HTML injection.
		{
			ID:              "SCRIPT_TAG",
			Type:            "script_injection",
			Severity:        SeverityHigh,
			AllowInExamples: true,
			Detect: func(s string) (bool, string) {
				if !strings.Contains(s, "<") {
					return false, ""
				}
				if stripPolicy.Sanitize(s) == s {
					return false, ""
				}
				if m := regexp.MustCompile(`(?is)<script[^>]*>.*?</script>|<script[^>]*>`).FindString(s); m != "" {
					return true, m
				}
				return false, ""
			},
			Message:    "script tag in spec content",
			Suggestion: "remove executable content from the specification",
		},
		{
			ID:              "JAVASCRIPT_URI",
			Type:            "script_injection",
			Severity:        SeverityHigh,
			AllowInExamples: true,
			Pattern:         regexp.MustCompile(`(?i)javascript:`),
			Message:         "javascript: URI in spec content",
			Suggestion:      "use https URLs only",
		},
		{
			ID:              "CODE_EXECUTION",
			Type:            "script_injection",
			Severity:        SeverityCritical,
			AllowInExamples: true,
			Pattern:         regexp.MustCompile(`(?i)\beval\s*\(|\bnew\s+Function\s*\(`),
			Message:         "dynamic code execution construct in spec content",
			Suggestion:      "remove eval/new Function constructs",
		},
		{
			ID:              "RAW_HTML",
			Type:            "html_injection",
			Severity:        SeverityMedium,
			AllowInExamples: true,
			Detect: func(s string) (bool, string) {
				if !strings.Contains(s, "<") {
					return false, ""
				}
				if stripPolicy.Sanitize(s) == s {
					return false, ""
				}
				if m := regexp.MustCompile(`(?i)<(iframe|object|embed|form|img|svg|link|meta)\b[^>]*>`).FindString(s); m != "" {
					return true, m
				}
				return false, ""
			},
			Message:    "raw HTML tag in spec content",
			Suggestion: "describe APIs in plain text or markdown",
		},

		// Prompt injection aimed at AI consumers of the directory. These
		// never downgrade: an example field is just as readable to a model.
		{
			ID:       "PROMPT_OVERRIDE",
			Type:     "prompt_injection",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`(?i)(ignore|disregard|forget)\s+(all\s+)?(previous|prior|above|earlier)\s+(instructions|prompts|rules|context)`),
			Message:  "instruction-override phrase in spec content",
		},
		{
			ID:       "ROLE_INJECTION",
			Type:     "prompt_injection",
			Severity: SeverityCritical,
			Pattern:  regexp.MustCompile(`(?i)(you\s+are\s+now\s+|act\s+as\s+(a\s+)?(system|admin|root|developer)|pretend\s+(to\s+be|you\s+are))`),
			Message:  "role-injection phrase in spec content",
		},
		{
			ID:       "PROMPT_EXTRACTION",
			Type:     "prompt_injection",
			Severity: SeverityHigh,
			Pattern:  regexp.MustCompile(`(?i)(reveal|show|print|repeat|output)\s+(me\s+)?(your\s+)?(system\s+)?(prompt|instructions)`),
			Message:  "system-prompt-extraction phrase in spec content",
		},

		// Suspicious content.
		{
			ID:              "EXFILTRATION_URL",
			Type:            "suspicious_content",
			Severity:        SeverityMedium,
			AllowInExamples: true,
			Pattern:         regexp.MustCompile(`(?i)https?://[^\s"']*(exfil|steal|collect|beacon|harvest|keylog)[^\s"']*`),
			Message:         "URL matches an exfiltration-like pattern",
		},
		{
			ID:              "CREDENTIAL_PAIR",
			Type:            "suspicious_content",
			Severity:        SeverityMedium,
			AllowInExamples: true,
			Contexts:        []Context{ContextDescription, ContextExample, ContextMetadata},
			Pattern:         regexp.MustCompile(`(?i)\b(api[_-]?key|secret|password|access[_-]?token)\b\s*[:=]\s*['"]?[A-Za-z0-9_\-./+]{8,}`),
			Message:         "credential-like key/value pair in spec content",
			Suggestion:      "replace real-looking credentials with obvious placeholders",
		},
		{
			ID:              "BASE64_BLOB",
			Type:            "suspicious_content",
			Severity:        SeverityLow,
			AllowInExamples: true,
			Pattern:         regexp.MustCompile(fmt.Sprintf(`[A-Za-z0-9+/]{%d,}={0,2}`, base64MinLength)),
			Message:         "long base64-looking token in spec content",
			Suggestion:      "verify the token is not an embedded payload",
		},
	}
}
