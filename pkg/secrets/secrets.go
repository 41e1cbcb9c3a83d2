// Package secrets classifies text against a fixed table of secret patterns.
package secrets

import (
	"fmt"
	"regexp"
)

// Severity of a single finding.
type Severity string

const (
	SeverityHigh   Severity = "HIGH"
	SeverityMedium Severity = "MEDIUM"
)

// RiskLevel aggregates the findings of one scan.
type RiskLevel string

const (
	RiskClean  RiskLevel = "CLEAN"
	RiskMedium RiskLevel = "MEDIUM"
	RiskHigh   RiskLevel = "HIGH"
)

// Finding reports how often one pattern matched. It never carries the
// matched text.
type Finding struct {
	Type        string   `json:"type" yaml:"type"`
	Occurrences int      `json:"occurrences" yaml:"occurrences"`
	Severity    Severity `json:"severity" yaml:"severity"`
}

// Report is the outcome of scanning one text.
type Report struct {
	Findings     []Finding `json:"findings" yaml:"findings"`
	FindingCount int       `json:"finding_count" yaml:"finding_count"`
	RiskLevel    RiskLevel `json:"risk_level" yaml:"risk_level"`
}

// Text summarises the report without any matched content.
func (r Report) Text() string {
	s := fmt.Sprintf("risk level: %s (%d finding(s))", r.RiskLevel, r.FindingCount)
	for _, f := range r.Findings {
		s += fmt.Sprintf("\n- %s: %d occurrence(s), severity %s", f.Type, f.Occurrences, f.Severity)
	}
	return s
}

// Pattern is one named detector.
type Pattern struct {
	Name     string
	Regexp   *regexp.Regexp
	Severity Severity
}

// defaultPatterns is evaluated in order; findings keep this order.
var defaultPatterns = []Pattern{
	{
		Name:     "API Key",
		Regexp:   regexp.MustCompile(`(?i)(api[_-]?key|apikey)\s*[=:]\s*["']?[A-Za-z0-9_\-]{20,}`),
		Severity: SeverityMedium,
	},
	{
		Name:     "AWS Key",
		Regexp:   regexp.MustCompile(`AKIA[0-9A-Z]{16}`),
		Severity: SeverityHigh,
	},
	{
		Name:     "Private Key",
		Regexp:   regexp.MustCompile(`-----BEGIN (RSA |EC |DSA )?PRIVATE KEY-----`),
		Severity: SeverityHigh,
	},
	{
		Name:     "Password Assignment",
		Regexp:   regexp.MustCompile(`(?i)(password|passwd|pwd)\s*[=:]\s*["'][^"']{4,}`),
		Severity: SeverityMedium,
	},
	{
		Name:     "Bearer Token",
		Regexp:   regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9\-._~+/]+=*`),
		Severity: SeverityMedium,
	},
	{
		Name:     "Generic Token",
		Regexp:   regexp.MustCompile(`(?i)(token|secret)\s*[=:]\s*["'][A-Za-z0-9_\-]{16,}`),
		Severity: SeverityMedium,
	},
	{
		Name:     "Connection String",
		Regexp:   regexp.MustCompile(`(?i)(mongodb|postgres|mysql|redis)://[^\s"']+`),
		Severity: SeverityHigh,
	},
	{
		Name:     "Hardcoded IP",
		Regexp:   regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\.){3}(?:25[0-5]|2[0-4]\d|[01]?\d\d?)\b`),
		Severity: SeverityMedium,
	},
}

// Patterns returns a copy of the built-in pattern table.
func Patterns() []Pattern {
	out := make([]Pattern, len(defaultPatterns))
	copy(out, defaultPatterns)
	return out
}

// Scanner applies an immutable pattern table. The zero value is not usable;
// build one with NewScanner.
type Scanner struct {
	patterns []Pattern
}

// NewScanner creates a scanner over the given patterns, or the built-in table
// when none are given.
func NewScanner(patterns ...Pattern) *Scanner {
	if len(patterns) == 0 {
		patterns = defaultPatterns
	}
	table := make([]Pattern, len(patterns))
	copy(table, patterns)
	return &Scanner{patterns: table}
}

// Scan classifies text. The result depends only on text.
func (s *Scanner) Scan(text string) Report {
	findings := []Finding{}
	for _, p := range s.patterns {
		matches := p.Regexp.FindAllStringIndex(text, -1)
		if len(matches) == 0 {
			continue
		}
		findings = append(findings, Finding{
			Type:        p.Name,
			Occurrences: len(matches),
			Severity:    p.Severity,
		})
	}

	return Report{
		Findings:     findings,
		FindingCount: len(findings),
		RiskLevel:    Aggregate(findings),
	}
}

// Aggregate derives the risk level from severities alone; occurrence counts
// never change it.
func Aggregate(findings []Finding) RiskLevel {
	if len(findings) == 0 {
		return RiskClean
	}
	for _, f := range findings {
		if f.Severity == SeverityHigh {
			return RiskHigh
		}
	}
	return RiskMedium
}

var defaultScanner = NewScanner()

// Scan classifies text with the built-in pattern table.
func Scan(text string) Report {
	return defaultScanner.Scan(text)
}
