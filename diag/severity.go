package diag

import (
	"fmt"
	"strings"
)

// Severity is the importance tier of a diagnostic. Higher values are
// more severe; the ordering matters for minimum-severity filtering.
type Severity int

const (
	// SeverityDebug is developer-facing trace detail.
	SeverityDebug Severity = iota
	// SeverityInfo is an informational note.
	SeverityInfo
	// SeverityWarning means output is usable but something looks off.
	SeverityWarning
	// SeverityError means the originating operation produced invalid output.
	SeverityError
	// SeverityCritical means the run cannot meaningfully continue.
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarning:
		return "WARNING"
	case SeverityError:
		return "ERROR"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return fmt.Sprintf("Severity(%d)", int(s))
	}
}

// ParseSeverity converts a case-insensitive severity name into a Severity.
func ParseSeverity(name string) (Severity, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return SeverityDebug, nil
	case "INFO":
		return SeverityInfo, nil
	case "WARNING", "WARN":
		return SeverityWarning, nil
	case "ERROR":
		return SeverityError, nil
	case "CRITICAL":
		return SeverityCritical, nil
	default:
		return SeverityDebug, fmt.Errorf("unknown severity %q", name)
	}
}

// Severities lists all tiers in ascending order.
var Severities = []Severity{SeverityDebug, SeverityInfo, SeverityWarning, SeverityError, SeverityCritical}
