package domain

import (
	"fmt"
	"strings"
)

// Severity represents the severity level declared by a detector.
type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityNote     Severity = "note"
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
	SeverityUnknown  Severity = "unknown"
)

// severityRank orders severities from lowest to highest impact.
var severityRank = map[Severity]int{
	SeverityInfo:     0,
	SeverityNote:     1,
	SeverityLow:      2,
	SeverityMedium:   3,
	SeverityHigh:     4,
	SeverityCritical: 5,
}

func (s Severity) String() string {
	return string(s)
}

// Rank returns the numeric rank of the severity, with unknown values
// ranked below info.
func (s Severity) Rank() int {
	if rank, ok := severityRank[s]; ok {
		return rank
	}
	return -1
}

// Less reports whether s is lower impact than other.
func (s Severity) Less(other Severity) bool {
	return s.Rank() < other.Rank()
}

// ParseSeverity converts a string to a Severity level.
func ParseSeverity(value string) (Severity, error) {
	sev := Severity(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := severityRank[sev]; !ok {
		return SeverityUnknown, fmt.Errorf("unknown severity: %q", value)
	}
	return sev, nil
}

// Severities lists all valid severity levels in ascending order.
func Severities() []Severity {
	return []Severity{
		SeverityInfo,
		SeverityNote,
		SeverityLow,
		SeverityMedium,
		SeverityHigh,
		SeverityCritical,
	}
}
