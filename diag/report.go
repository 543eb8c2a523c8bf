package diag

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"
)

// Stats summarizes accumulated diagnostics by tier and category.
type Stats struct {
	Total      int            `json:"total"`
	BySeverity map[string]int `json:"by_severity"`
	ByCategory map[string]int `json:"by_category"`
}

// Report is the structured artifact describing one run's diagnostics.
type Report struct {
	GeneratedAt time.Time    `json:"generated_at"`
	Duration    string       `json:"duration"`
	Stats       Stats        `json:"stats"`
	Diagnostics []Diagnostic `json:"diagnostics"`
	System      SystemInfo   `json:"system"`
}

// SystemInfo is the minimal environment metadata attached to a report.
type SystemInfo struct {
	GoVersion string `json:"go_version"`
	OS        string `json:"os"`
	Arch      string `json:"arch"`
	PID       int    `json:"pid"`
}

// Stats computes the current severity and category counts.
func (h *Handler) Stats() Stats {
	s := Stats{
		Total:      len(h.diagnostics),
		BySeverity: make(map[string]int),
		ByCategory: make(map[string]int),
	}
	for _, d := range h.diagnostics {
		s.BySeverity[d.Severity.String()]++
		s.ByCategory[string(d.Category)]++
	}
	return s
}

// Report builds the structured report for the run so far.
func (h *Handler) Report() Report {
	return Report{
		GeneratedAt: time.Now(),
		Duration:    time.Since(h.started).String(),
		Stats:       h.Stats(),
		Diagnostics: append([]Diagnostic(nil), h.diagnostics...),
		System: SystemInfo{
			GoVersion: runtime.Version(),
			OS:        runtime.GOOS,
			Arch:      runtime.GOARCH,
			PID:       os.Getpid(),
		},
	}
}

// Summary renders a short human-readable digest: totals, the non-zero
// severity tiers, and the busiest categories.
func (h *Handler) Summary() string {
	stats := h.Stats()

	var b strings.Builder
	fmt.Fprintf(&b, "%d diagnostic(s)", stats.Total)
	if stats.Total == 0 {
		return b.String()
	}

	// Severity tiers in descending order, non-zero only.
	var tiers []string
	for i := len(Severities) - 1; i >= 0; i-- {
		sev := Severities[i]
		if n := stats.BySeverity[sev.String()]; n > 0 {
			tiers = append(tiers, fmt.Sprintf("%d %s", n, strings.ToLower(sev.String())))
		}
	}
	fmt.Fprintf(&b, ": %s", strings.Join(tiers, ", "))

	cats := make([]string, 0, len(stats.ByCategory))
	for c := range stats.ByCategory {
		cats = append(cats, c)
	}
	sort.Slice(cats, func(i, j int) bool {
		if stats.ByCategory[cats[i]] != stats.ByCategory[cats[j]] {
			return stats.ByCategory[cats[i]] > stats.ByCategory[cats[j]]
		}
		return cats[i] < cats[j]
	})
	if len(cats) > 3 {
		cats = cats[:3]
	}
	fmt.Fprintf(&b, " (top categories: %s)", strings.Join(cats, ", "))
	return b.String()
}

// WriteReport persists the structured report as a timestamped JSON file
// under the configured report directory. It is a no-op unless report
// generation is enabled. Returns the written path.
func (h *Handler) WriteReport() (string, error) {
	if !h.opts.GenerateReports {
		return "", nil
	}
	if err := os.MkdirAll(h.opts.ReportDir, 0o755); err != nil {
		return "", fmt.Errorf("creating report directory: %w", err)
	}

	path := filepath.Join(h.opts.ReportDir,
		fmt.Sprintf("diagnostics-%s.json", time.Now().Format("20060102-150405")))

	data, err := json.MarshalIndent(h.Report(), "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing report: %w", err)
	}
	return path, nil
}
