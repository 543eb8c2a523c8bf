package flowparser

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ixoworld/ixo-ussd-sub001/diag"
)

// StrictOptions configures the strict pre-flight validator.
type StrictOptions struct {
	// StrictMode promotes non-canonical arrow syntax from warning to
	// error. Declaration and fence-closure problems are always errors.
	StrictMode bool
	// ValidateNaming enables PascalCase identifier warnings.
	ValidateNaming bool
}

// ValidationResult is the outcome of a strict or business-rule
// validation pass. IsValid is true iff Errors is empty; warnings never
// affect it.
type ValidationResult struct {
	IsValid  bool
	Errors   []diag.Diagnostic
	Warnings []diag.Diagnostic
}

func (v *ValidationResult) addError(d diag.Diagnostic) {
	v.Errors = append(v.Errors, d)
	v.IsValid = false
}

func (v *ValidationResult) addWarning(d diag.Diagnostic) {
	v.Warnings = append(v.Warnings, d)
}

var (
	arrowLikeRe = regexp.MustCompile(`-+\.?-*>|==+>`)
	pipeLabelRe = regexp.MustCompile(`^\|[^|]*\|`)
	identRe     = regexp.MustCompile(`^[A-Za-z_]\w*`)
)

// ValidateContent runs the strict pre-check over raw diagram text. It
// never mutates anything and is independent of the lenient parser: the
// single-dash arrow alias the parser tolerates fails here, because a CI
// gate wants canonical notation only.
func ValidateContent(text string, opts StrictOptions) ValidationResult {
	res := ValidationResult{IsValid: true}

	lines := strings.Split(text, "\n")
	hasFence := strings.Contains(text, "```")
	inFence := false
	fenceLine := 0
	awaitingDecl := false

	for i, raw := range lines {
		n := i + 1
		line := strings.TrimSpace(raw)

		if strings.HasPrefix(line, "```") {
			if inFence {
				inFence = false
				if awaitingDecl {
					// The block closed without any content line; the
					// missing declaration belongs to the block itself.
					awaitingDecl = false
					res.addError(diag.Diagnostic{
						Severity:   diag.SeverityError,
						Category:   diag.CategoryValidation,
						Message:    fmt.Sprintf("Block opened at line %d must begin with a \"flowchart <direction>\" declaration", fenceLine),
						Line:       fenceLine,
						Suggestion: "Start the block with e.g. \"flowchart TD\"",
					})
				}
			} else {
				inFence = true
				fenceLine = n
				awaitingDecl = true
			}
			continue
		}
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}

		if awaitingDecl {
			awaitingDecl = false
			if flowchartRe.MatchString(line) {
				continue
			}
			res.addError(diag.Diagnostic{
				Severity:   diag.SeverityError,
				Category:   diag.CategoryValidation,
				Message:    fmt.Sprintf("Block opened at line %d must begin with a \"flowchart <direction>\" declaration", fenceLine),
				Line:       n,
				Suggestion: "Start the block with e.g. \"flowchart TD\"",
			})
		}

		if flowchartRe.MatchString(line) {
			continue
		}

		if inFence || !hasFence {
			checkTransitionSyntax(line, n, opts, &res)
			if opts.ValidateNaming {
				checkNaming(line, n, &res)
			}
		}
	}

	if inFence {
		res.addError(diag.Diagnostic{
			Severity: diag.SeverityError,
			Category: diag.CategoryValidation,
			Message:  fmt.Sprintf("Diagram block opened at line %d is not properly closed", fenceLine),
			Line:     fenceLine,
		})
	}

	// A bare document with no fences is treated as a single block: its
	// first non-blank line must be the declaration.
	if !hasFence {
		if first, n := firstContentLine(lines); first != "" && !flowchartRe.MatchString(first) {
			res.addError(diag.Diagnostic{
				Severity:   diag.SeverityError,
				Category:   diag.CategoryValidation,
				Message:    "Content must begin with a \"flowchart <direction>\" declaration",
				Line:       n,
				Suggestion: "Start the block with e.g. \"flowchart TD\"",
			})
		}
	}

	return res
}

// ValidateFile wraps ValidateContent with an existence check.
func ValidateFile(path string, opts StrictOptions) ValidationResult {
	data, err := os.ReadFile(path)
	if err != nil {
		res := ValidationResult{IsValid: true}
		res.addError(diag.Diagnostic{
			Severity: diag.SeverityError,
			Category: diag.CategoryFileSystem,
			Message:  fmt.Sprintf("Missing or unreadable file %q: %v", path, err),
			File:     path,
		})
		return res
	}
	res := ValidateContent(string(data), opts)
	for i := range res.Errors {
		res.Errors[i].File = path
	}
	for i := range res.Warnings {
		res.Warnings[i].File = path
	}
	return res
}

// checkTransitionSyntax accepts only the canonical plain and
// pipe-labeled arrow forms. Anything else arrow-like is rejected.
func checkTransitionSyntax(line string, n int, opts StrictOptions, res *ValidationResult) {
	loc := arrowLikeRe.FindStringIndex(line)
	if loc == nil {
		return
	}

	token := line[loc[0]:loc[1]]
	rest := strings.TrimSpace(line[loc[1]:])
	if token == "-->" && !strings.Contains(line[:loc[0]], "--") {
		// Plain arrow, or pipe-labeled with a properly closed label.
		if !strings.HasPrefix(rest, "|") || pipeLabelRe.MatchString(rest) {
			return
		}
	}

	d := diag.Diagnostic{
		Severity:   diag.SeverityWarning,
		Category:   diag.CategoryValidation,
		Message:    fmt.Sprintf("Unsupported arrow syntax %q at line %d; only \"A --> B\" and \"A -->|label| B\" are accepted", token, n),
		Line:       n,
		Column:     loc[0] + 1,
		Suggestion: "Use the canonical \"-->\" arrow",
	}
	if opts.StrictMode {
		d.Severity = diag.SeverityError
		res.addError(d)
		return
	}
	res.addWarning(d)
}

// checkNaming warns on non-PascalCase state identifiers.
func checkNaming(line string, n int, res *ValidationResult) {
	for _, part := range splitArrowOperands(line) {
		id := identRe.FindString(strings.TrimSpace(part))
		if id == "" || isPascalCase(id) {
			continue
		}
		res.addWarning(diag.Diagnostic{
			Severity:   diag.SeverityWarning,
			Category:   diag.CategoryValidation,
			Message:    fmt.Sprintf("Identifier %q is not PascalCase", id),
			Line:       n,
			Suggestion: fmt.Sprintf("Rename to %q", toPascalCase(id)),
		})
	}
}

// splitArrowOperands splits a transition line into its endpoint tokens.
// Non-transition lines yield no operands worth checking except a bare
// state declaration.
func splitArrowOperands(line string) []string {
	if strings.HasPrefix(line, "class") || strings.HasPrefix(line, "style") {
		return nil
	}
	if strings.Contains(line, "-->") {
		parts := strings.Split(line, "-->")
		// Drop a leading |label| from the right-hand side.
		for i := 1; i < len(parts); i++ {
			p := strings.TrimSpace(parts[i])
			if strings.HasPrefix(p, "|") {
				if end := strings.Index(p[1:], "|"); end >= 0 {
					parts[i] = p[end+2:]
				}
			}
		}
		return parts
	}
	if identRe.MatchString(line) {
		return []string{line}
	}
	return nil
}

func firstContentLine(lines []string) (string, int) {
	for i, raw := range lines {
		line := strings.TrimSpace(raw)
		if line != "" && !strings.HasPrefix(line, "%%") {
			return line, i + 1
		}
	}
	return "", 0
}
