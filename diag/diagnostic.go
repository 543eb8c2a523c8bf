package diag

import (
	"fmt"
	"strings"
	"time"
)

// Category classifies which pipeline stage raised a diagnostic.
type Category string

const (
	CategoryParsing       Category = "parsing"
	CategoryValidation    Category = "validation"
	CategoryFileSystem    Category = "file_system"
	CategoryGeneration    Category = "generation"
	CategoryCompilation   Category = "compilation"
	CategoryConfiguration Category = "configuration"
	CategoryNetwork       Category = "network"
	CategoryUnknown       Category = "unknown"
)

// Diagnostic is a single structured finding.
type Diagnostic struct {
	ID          string            `json:"id"`
	Severity    Severity          `json:"severity"`
	Category    Category          `json:"category"`
	Message     string            `json:"message"`
	Details     string            `json:"details,omitempty"`
	Suggestion  string            `json:"suggestion,omitempty"`
	File        string            `json:"file,omitempty"`
	Line        int               `json:"line,omitempty"`
	Column      int               `json:"column,omitempty"`
	Context     map[string]string `json:"context,omitempty"`
	Recoverable bool              `json:"recoverable"`
	Retries     int               `json:"retries"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Meta carries the optional fields of a diagnostic at Add time.
type Meta struct {
	Details     string
	Suggestion  string
	File        string
	Line        int
	Column      int
	Context     map[string]string
	Recoverable bool
}

func (d Diagnostic) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s: %s", d.Severity, d.Category, d.Message)
	if d.File != "" {
		fmt.Fprintf(&b, " (%s", d.File)
		if d.Line > 0 {
			fmt.Fprintf(&b, ":%d", d.Line)
			if d.Column > 0 {
				fmt.Fprintf(&b, ":%d", d.Column)
			}
		}
		b.WriteString(")")
	} else if d.Line > 0 {
		fmt.Fprintf(&b, " (line %d)", d.Line)
	}
	if d.Suggestion != "" {
		fmt.Fprintf(&b, " -- suggestion: %s", d.Suggestion)
	}
	return b.String()
}
