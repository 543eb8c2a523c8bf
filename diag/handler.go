package diag

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Options configures a Handler.
type Options struct {
	// MaxErrors is the circuit-breaker limit. Once this many ERROR or
	// CRITICAL diagnostics have accumulated, further Add calls for those
	// tiers fail. Zero means the default.
	MaxErrors int
	// MaxRetries bounds Retry attempts per recoverable diagnostic.
	MaxRetries int
	// MinSeverity drops anything below this tier.
	MinSeverity Severity
	// GenerateReports enables writing a report file from WriteReport.
	GenerateReports bool
	// ReportDir is where report files land when GenerateReports is set.
	ReportDir string
}

// DefaultOptions returns the fallback values NewHandler applies to zero
// fields. MinSeverity has none: the zero value is DEBUG, which records
// everything.
func DefaultOptions() Options {
	return Options{
		MaxErrors:  50,
		MaxRetries: 3,
		ReportDir:  "reports",
	}
}

// BreakerError is returned by Add once the error limit has been reached.
type BreakerError struct {
	Limit int
}

func (e *BreakerError) Error() string {
	return fmt.Sprintf("too many errors: limit of %d reached, halting", e.Limit)
}

// Handler accumulates diagnostics for one run. It is not safe for
// concurrent use across unrelated runs; construct one per run, or call
// Clear between them.
type Handler struct {
	opts        Options
	diagnostics []Diagnostic
	errorCount  int // ERROR + CRITICAL only
	started     time.Time
}

// NewHandler creates a Handler, falling back to DefaultOptions for zero fields.
func NewHandler(opts Options) *Handler {
	def := DefaultOptions()
	if opts.MaxErrors <= 0 {
		opts.MaxErrors = def.MaxErrors
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = def.MaxRetries
	}
	if opts.ReportDir == "" {
		opts.ReportDir = def.ReportDir
	}
	return &Handler{opts: opts, started: time.Now()}
}

// Add records a diagnostic and returns its id. A diagnostic below the
// configured minimum severity is dropped and an empty id is returned.
// Once the accumulated ERROR+CRITICAL count has reached MaxErrors,
// adding another ERROR or CRITICAL fails with a *BreakerError.
func (h *Handler) Add(sev Severity, cat Category, message string, meta Meta) (string, error) {
	if sev < h.opts.MinSeverity {
		return "", nil
	}
	if sev >= SeverityError && h.errorCount >= h.opts.MaxErrors {
		return "", &BreakerError{Limit: h.opts.MaxErrors}
	}

	d := Diagnostic{
		ID:          uuid.NewString(),
		Severity:    sev,
		Category:    cat,
		Message:     message,
		Details:     meta.Details,
		Suggestion:  meta.Suggestion,
		File:        meta.File,
		Line:        meta.Line,
		Column:      meta.Column,
		Context:     meta.Context,
		Recoverable: meta.Recoverable,
		Timestamp:   time.Now(),
	}
	h.diagnostics = append(h.diagnostics, d)
	if sev >= SeverityError {
		h.errorCount++
	}
	return d.ID, nil
}

// Critical records a CRITICAL diagnostic.
func (h *Handler) Critical(cat Category, message string, meta Meta) (string, error) {
	return h.Add(SeverityCritical, cat, message, meta)
}

// Error records an ERROR diagnostic.
func (h *Handler) Error(cat Category, message string, meta Meta) (string, error) {
	return h.Add(SeverityError, cat, message, meta)
}

// Warning records a WARNING diagnostic.
func (h *Handler) Warning(cat Category, message string, meta Meta) (string, error) {
	return h.Add(SeverityWarning, cat, message, meta)
}

// Info records an INFO diagnostic.
func (h *Handler) Info(cat Category, message string, meta Meta) (string, error) {
	return h.Add(SeverityInfo, cat, message, meta)
}

// Debug records a DEBUG diagnostic.
func (h *Handler) Debug(cat Category, message string, meta Meta) (string, error) {
	return h.Add(SeverityDebug, cat, message, meta)
}

// Retry increments the retry count of a recoverable diagnostic and
// reports whether another attempt is allowed. Once the configured
// maximum is exceeded, the diagnostic is marked non-recoverable and an
// UNKNOWN-category error records the exhaustion.
func (h *Handler) Retry(id string) bool {
	d := h.byID(id)
	if d == nil || !d.Recoverable {
		return false
	}
	d.Retries++
	if d.Retries > h.opts.MaxRetries {
		d.Recoverable = false
		_, _ = h.Error(CategoryUnknown,
			fmt.Sprintf("retry limit of %d exceeded for diagnostic %s", h.opts.MaxRetries, id),
			Meta{Details: d.Message})
		return false
	}
	return true
}

func (h *Handler) byID(id string) *Diagnostic {
	for i := range h.diagnostics {
		if h.diagnostics[i].ID == id {
			return &h.diagnostics[i]
		}
	}
	return nil
}

// All returns every accumulated diagnostic in insertion order. The
// returned slice shares backing storage with the handler.
func (h *Handler) All() []Diagnostic {
	return h.diagnostics
}

// Len returns the number of accumulated diagnostics.
func (h *Handler) Len() int { return len(h.diagnostics) }

// HasErrors reports whether any ERROR or CRITICAL diagnostic exists.
func (h *Handler) HasErrors() bool {
	return h.errorCount > 0
}

// HasCritical reports whether any CRITICAL diagnostic exists.
func (h *Handler) HasCritical() bool {
	for i := range h.diagnostics {
		if h.diagnostics[i].Severity == SeverityCritical {
			return true
		}
	}
	return false
}

// BySeverity returns all diagnostics at exactly the given tier.
func (h *Handler) BySeverity(sev Severity) []Diagnostic {
	var out []Diagnostic
	for _, d := range h.diagnostics {
		if d.Severity == sev {
			out = append(out, d)
		}
	}
	return out
}

// ByCategory returns all diagnostics in the given category.
func (h *Handler) ByCategory(cat Category) []Diagnostic {
	var out []Diagnostic
	for _, d := range h.diagnostics {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}

// Clear resets all accumulated state so the handler can be reused.
func (h *Handler) Clear() {
	h.diagnostics = nil
	h.errorCount = 0
	h.started = time.Now()
}
