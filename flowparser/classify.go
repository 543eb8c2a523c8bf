package flowparser

import (
	"regexp"
	"strings"
	"unicode"
)

// The classification heuristics in this file are kept as small,
// independently testable predicates so rule order and fallback behavior
// stay inspectable.

// keywordRule maps a label keyword to a transition type. Rules are
// checked in order; the first containment match wins.
type keywordRule struct {
	keyword string
	typ     TransitionType
}

var transitionTypeRules = []keywordRule{
	{"input", TransitionUserInput},
	{"error", TransitionError},
	{"timeout", TransitionTimeout},
}

// classifyTransition infers a transition type from its raw label.
// An empty label is plain; a non-empty label with no recognized keyword
// is an external trigger.
func classifyTransition(label string) TransitionType {
	trimmed := strings.TrimSpace(label)
	if trimmed == "" {
		return TransitionPlain
	}
	lower := strings.ToLower(trimmed)
	for _, r := range transitionTypeRules {
		if strings.Contains(lower, r.keyword) {
			return r.typ
		}
	}
	return TransitionExternal
}

// extractGuard pulls a guard name out of a "guard:Name" or
// bracket-wrapped "[Name]" label. Empty when neither form is present.
func extractGuard(label string) string {
	t := strings.TrimSpace(label)
	if v, ok := strings.CutPrefix(t, "guard:"); ok {
		return strings.TrimSpace(v)
	}
	if len(t) >= 2 && t[0] == '[' && t[len(t)-1] == ']' {
		return strings.TrimSpace(t[1 : len(t)-1])
	}
	return ""
}

// extractAction pulls an action name out of an "action:Name" label.
func extractAction(label string) string {
	t := strings.TrimSpace(label)
	if v, ok := strings.CutPrefix(t, "action:"); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

// DefaultFinalKeywords is the keyword list used to infer final states
// when the parser is not configured with its own list.
var DefaultFinalKeywords = []string{"end", "final", "close", "complete", "exit"}

// isFinalState reports whether a state looks terminal. The match is a
// whole-word comparison of the keyword list against the words of the
// state id (split on case boundaries and underscores) and of the label
// (split on non-letters).
func isFinalState(id, label string, keywords []string) bool {
	words := splitIdentWords(id)
	words = append(words, splitLabelWords(label)...)
	for _, w := range words {
		for _, kw := range keywords {
			if w == kw {
				return true
			}
		}
	}
	return false
}

// splitIdentWords splits an identifier like "SessionEnd" or
// "session_end" into lowercased words.
func splitIdentWords(id string) []string {
	var words []string
	var cur strings.Builder
	flush := func() {
		if cur.Len() > 0 {
			words = append(words, strings.ToLower(cur.String()))
			cur.Reset()
		}
	}
	for _, r := range id {
		switch {
		case r == '_' || r == '-' || unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r):
			flush()
			cur.WriteRune(r)
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return words
}

// splitLabelWords splits display text into lowercased words.
func splitLabelWords(label string) []string {
	fields := strings.FieldsFunc(label, func(r rune) bool {
		return !unicode.IsLetter(r)
	})
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		words = append(words, strings.ToLower(f))
	}
	return words
}

// unsafeLabelChars are characters that break downstream display surfaces.
var unsafeLabelChars = regexp.MustCompile("[<>&;`]")

// hasUnsafeLabel reports whether a label contains display-unsafe characters.
func hasUnsafeLabel(label string) bool {
	return unsafeLabelChars.MatchString(label)
}

// startsWithDigit reports whether an identifier begins with a digit,
// which the generators cannot emit as a state name.
func startsWithDigit(id string) bool {
	return len(id) > 0 && id[0] >= '0' && id[0] <= '9'
}

// Soft keyword conventions checked by the business-rule validator for
// user-category machines.
var (
	authKeywords = []string{"pin", "password", "login", "auth", "verify"}
	menuKeywords = []string{"menu", "option", "select", "choice"}
)

// containsAnyKeyword reports whether the text contains any of the
// keywords, case-insensitively.
func containsAnyKeyword(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// isPascalCase reports whether s starts with an uppercase letter and
// contains no separators.
func isPascalCase(s string) bool {
	if s == "" {
		return false
	}
	first := rune(s[0])
	if !unicode.IsUpper(first) {
		return false
	}
	return !strings.ContainsAny(s, "_- ")
}

// toPascalCase suggests a PascalCase form of an identifier.
func toPascalCase(s string) string {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == '_' || r == '-' || r == ' '
	})
	var b strings.Builder
	for _, f := range fields {
		r := []rune(f)
		r[0] = unicode.ToUpper(r[0])
		b.WriteString(string(r))
	}
	return b.String()
}
