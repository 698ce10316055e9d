package model

import (
	"fmt"
	"strings"
)

// Severity is the urgency of a `Finding`, INFO < CHECK < WARNING < DANGER
type Severity int

const (
	// INFO is purely informational
	INFO Severity = iota
	// CHECK is worth a look from an operator
	CHECK
	// WARNING is a setting likely to hurt
	WARNING
	// DANGER needs action
	DANGER
)

var severityLabels = []string{"INFO", "CHECK", "WARNING", "DANGER"}

func (severity Severity) String() string {
	if severity < INFO || severity > DANGER {
		return fmt.Sprintf("Severity(%d)", int(severity))
	}
	return severityLabels[severity]
}

// MarshalText renders the label, so json/yaml reports carry "DANGER" rather than 3
func (severity Severity) MarshalText() ([]byte, error) {
	return []byte(severity.String()), nil
}

// UnmarshalText parses a label back, case insensitive
func (severity *Severity) UnmarshalText(text []byte) error {
	for s, label := range severityLabels {
		if strings.EqualFold(label, string(text)) {
			*severity = Severity(s)
			return nil
		}
	}
	return fmt.Errorf("unknown severity %q", text)
}

// Finding is one leveled diagnostic message
type Finding struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Message  string   `json:"message" yaml:"message"`
}

// Findingf builds a `Finding` from a format string
func Findingf(severity Severity, format string, args ...interface{}) Finding {
	return Finding{Severity: severity, Message: fmt.Sprintf(format, args...)}
}

func (finding Finding) String() string {
	return fmt.Sprintf("%s: %s", finding.Severity, finding.Message)
}

// Section is the findings of one rule under its title
type Section struct {
	Title    string    `json:"title" yaml:"title"`
	Findings []Finding `json:"findings" yaml:"findings"`
}

// Report is an ordered list of sections, in the order they were added
type Report struct {
	Sections []Section `json:"sections" yaml:"sections"`
}

// Add appends a section, it's shaped to be used as a `Sink`
func (report *Report) Add(title string, findings []Finding) {
	report.Sections = append(report.Sections, Section{Title: title, Findings: findings})
}

// Worst is the highest severity across all sections, INFO for an empty report
func (report *Report) Worst() Severity {
	worst := INFO
	for _, section := range report.Sections {
		for _, finding := range section.Findings {
			if finding.Severity > worst {
				worst = finding.Severity
			}
		}
	}
	return worst
}

// Count tallies findings per severity
func (report *Report) Count() map[Severity]int {
	counts := make(map[Severity]int, len(severityLabels))
	for _, section := range report.Sections {
		for _, finding := range section.Findings {
			counts[finding.Severity]++
		}
	}
	return counts
}
