package flowparser

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/ixoworld/ixo-ussd-sub001/diag"
)

// Result is the outcome of one parse call. Diagnostics raised while
// parsing are split by severity; machines are returned alongside the
// errors rather than withheld because of them.
type Result struct {
	Machines []*MachineSpec
	Errors   []diag.Diagnostic
	Warnings []diag.Diagnostic
	Source   string
}

// Parser is the lenient extractor. Malformed lines become diagnostics
// and the rest of the document keeps parsing; only an unreadable source
// file stops a call outright.
type Parser struct {
	handler       *diag.Handler // optional; diagnostics are forwarded when set
	finalKeywords []string
}

// Option configures a Parser.
type Option func(*Parser)

// WithFinalKeywords overrides the keyword list used to infer final states.
func WithFinalKeywords(keywords []string) Option {
	return func(p *Parser) {
		lowered := make([]string, 0, len(keywords))
		for _, kw := range keywords {
			lowered = append(lowered, strings.ToLower(kw))
		}
		p.finalKeywords = lowered
	}
}

// NewParser creates a Parser. The handler may be nil; when set, every
// diagnostic the parser raises is also forwarded to it.
func NewParser(handler *diag.Handler, opts ...Option) *Parser {
	p := &Parser{
		handler:       handler,
		finalKeywords: DefaultFinalKeywords,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var (
	flowchartRe = regexp.MustCompile(`^flowchart\s+(TD|TB|LR|RL|BT)\s*$`)
	classDefRe  = regexp.MustCompile(`^classDef\s+([\w-]+)\s+(.+?);?\s*$`)
	classRe     = regexp.MustCompile(`^class\s+([\w,\s]+?)\s+([\w-]+);?\s*$`)

	// Arrow dialects, tried in order. The single-dash form is a lenient
	// alias the strict validator deliberately rejects.
	pipeArrowRe  = regexp.MustCompile(`^(.+?)\s*-->\s*\|([^|]*)\|\s*(.+)$`)
	dashLabelRe  = regexp.MustCompile(`^(.+?)\s*--\s*([^-<>|]+?)\s*-->\s*(.+)$`)
	plainArrowRe = regexp.MustCompile(`^(.+?)\s*-->\s*(.+)$`)
	altArrowRe   = regexp.MustCompile(`^(.+?)\s*->\s*(.+)$`)

	// State shape delimiters, most specific first.
	circleShapeRe  = regexp.MustCompile(`^(\w+)\(\((.*)\)\)$`)
	roundShapeRe   = regexp.MustCompile(`^(\w+)\((.*)\)$`)
	diamondShapeRe = regexp.MustCompile(`^(\w+)\{(.*)\}$`)
	rectShapeRe    = regexp.MustCompile(`^(\w+)\[(.*)\]$`)
	bareIDRe       = regexp.MustCompile(`^(\w+)$`)
)

// Parse extracts machine specifications from raw diagram text.
func (p *Parser) Parse(source string) *Result {
	return p.parse("inline", source)
}

// ParseFile reads a source document and parses it. An unreadable file
// yields an empty machine list and a single file-system diagnostic.
func (p *Parser) ParseFile(path string) *Result {
	data, err := os.ReadFile(path)
	if err != nil {
		res := &Result{Source: path}
		d := diag.Diagnostic{
			Severity: diag.SeverityError,
			Category: diag.CategoryFileSystem,
			Message:  fmt.Sprintf("Failed to read source file %q: %v", path, err),
			File:     path,
		}
		res.Errors = append(res.Errors, d)
		if p.handler != nil {
			_, _ = p.handler.Error(diag.CategoryFileSystem, d.Message, diag.Meta{File: path})
		}
		return res
	}
	return p.parse(path, string(data))
}

// parseRun holds the mutable state of one parse call.
type parseRun struct {
	parser    *Parser
	res       *Result
	cur       *MachineSpec
	slug      string
	ordinal   int
	inFence   bool
	fenceLine int
	halted    bool // set when the handler's circuit breaker trips
}

func (p *Parser) parse(source, text string) *Result {
	run := &parseRun{
		parser: p,
		res:    &Result{Source: source},
		slug:   sourceSlug(source),
	}

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		if run.halted {
			break
		}
		run.line(i+1, strings.TrimSpace(raw))
	}

	if run.inFence {
		run.warning(run.fenceLine, fmt.Sprintf(
			"Diagram block opened at line %d is not properly closed", run.fenceLine), "")
	}
	run.finishMachine()
	return run.res
}

// line processes one trimmed content line. Each line's outcome is either
// a graph update or a diagnostic; a bad line never discards the rest of
// the document.
func (r *parseRun) line(n int, line string) {
	if strings.HasPrefix(line, "```") {
		if r.inFence {
			r.inFence = false
			r.finishMachine()
		} else {
			// An opening fence ends any machine built from bare
			// notation; whatever the fence holds is not its content.
			r.finishMachine()
			r.inFence = true
			r.fenceLine = n
		}
		return
	}

	if line == "" || strings.HasPrefix(line, "%%") {
		return
	}

	if m := flowchartRe.FindStringSubmatch(line); m != nil {
		r.finishMachine()
		r.cur = &MachineSpec{
			Source:    r.res.Source,
			StyleDefs: make(map[string]string),
		}
		return
	}

	if r.cur == nil {
		// Markdown prose outside any diagram block.
		return
	}

	if m := classDefRe.FindStringSubmatch(line); m != nil {
		r.cur.StyleDefs[m[1]] = m[2]
		return
	}

	if m := classRe.FindStringSubmatch(line); m != nil {
		r.classAssignment(n, m[1], m[2])
		return
	}

	if m := pipeArrowRe.FindStringSubmatch(line); m != nil {
		r.transition(n, m[1], m[3], m[2])
		return
	}
	if m := dashLabelRe.FindStringSubmatch(line); m != nil {
		r.transition(n, m[1], m[3], m[2])
		return
	}
	if m := plainArrowRe.FindStringSubmatch(line); m != nil {
		r.transition(n, m[1], m[2], "")
		return
	}
	if m := altArrowRe.FindStringSubmatch(line); m != nil {
		r.transition(n, m[1], m[2], "")
		return
	}

	// Bare state declaration, or a construct we do not recognize.
	r.stateRef(n, line)
}

// classAssignment applies "class id[,id...] className" to the machine.
// When className is one of the fixed category tags, the first assignment
// seen sets the machine's category; later conflicting tags are ignored.
func (r *parseRun) classAssignment(n int, idList, className string) {
	for _, id := range strings.Split(idList, ",") {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		s := r.ensureState(n, id)
		if s != nil && !s.HasClass(className) {
			s.Classes = append(s.Classes, className)
		}
	}
	if tag, ok := categoryTags[className]; ok && r.cur.Category == "" {
		r.cur.Category = tag
	}
}

// transition records one arrow line, implicitly declaring both endpoints.
func (r *parseRun) transition(n int, fromRaw, toRaw, label string) {
	from := r.stateRef(n, fromRaw)
	to := r.stateRef(n, toRaw)
	if from == nil || to == nil {
		return
	}

	label = strings.TrimSpace(label)
	t := &TransitionSpec{
		From:   from.ID,
		To:     to.ID,
		Label:  label,
		Guard:  extractGuard(label),
		Action: extractAction(label),
		Type:   classifyTransition(label),
		Line:   n,
	}
	r.cur.Transitions = append(r.cur.Transitions, t)

	if r.cur.InitialState == "" {
		// Textual order decides the initial state: the from-side of the
		// first transition encountered.
		r.cur.InitialState = from.ID
	}

	if t.From == t.To {
		r.warning(n, fmt.Sprintf("Self-transition detected on state %q", t.From), "")
	}
	if label != "" && hasUnsafeLabel(label) {
		r.warning(n, fmt.Sprintf("Transition label %q contains unsafe display characters", label), "")
	}
	if from.Type == StateFinal {
		r.warning(n, fmt.Sprintf("Dead flow: transition from final state %q will never fire", from.ID), "")
	}
}

// stateRef resolves a state token, creating or updating its StateSpec.
// Returns nil when the token carries no recognizable identifier.
func (r *parseRun) stateRef(n int, token string) *StateSpec {
	token = strings.TrimSpace(token)

	shape := Shape("")
	label := ""
	var id string
	switch {
	case circleShapeRe.MatchString(token):
		m := circleShapeRe.FindStringSubmatch(token)
		id, shape, label = m[1], ShapeCircle, stripQuotes(m[2])
	case roundShapeRe.MatchString(token):
		m := roundShapeRe.FindStringSubmatch(token)
		id, shape, label = m[1], ShapeRound, stripQuotes(m[2])
	case diamondShapeRe.MatchString(token):
		m := diamondShapeRe.FindStringSubmatch(token)
		id, shape, label = m[1], ShapeDiamond, stripQuotes(m[2])
	case rectShapeRe.MatchString(token):
		m := rectShapeRe.FindStringSubmatch(token)
		id, shape, label = m[1], ShapeRect, stripQuotes(m[2])
	case bareIDRe.MatchString(token):
		id = token
	default:
		return nil
	}

	s := r.ensureState(n, id)
	if s == nil {
		return nil
	}
	if shape != "" {
		s.Shape = shape
	}
	if label != "" {
		if label != s.Label && hasUnsafeLabel(label) {
			r.warning(n, fmt.Sprintf("State label %q contains unsafe display characters", label), "")
		}
		s.Label = label
	}
	s.Type = r.stateType(s)
	return s
}

// ensureState returns the existing state or declares a new one. An id
// beginning with a digit is reported as a parsing error but the state is
// still added so the full graph stays visible.
func (r *parseRun) ensureState(n int, id string) *StateSpec {
	if s := r.cur.StateByID(id); s != nil {
		return s
	}
	if startsWithDigit(id) {
		r.error(n, fmt.Sprintf("Invalid state identifier %q: identifiers must not start with a digit", id),
			fmt.Sprintf("Rename %q so it starts with a letter", id))
	}
	s := &StateSpec{
		ID:    id,
		Shape: ShapeRect,
		Label: id,
		Line:  n,
	}
	s.Type = r.stateType(s)
	r.cur.States = append(r.cur.States, s)
	return s
}

func (r *parseRun) stateType(s *StateSpec) StateType {
	if isFinalState(s.ID, s.Label, r.parser.finalKeywords) {
		return StateFinal
	}
	return StateNormal
}

// finishMachine seals the machine under construction, assigning its
// deterministic id and name.
func (r *parseRun) finishMachine() {
	if r.cur == nil {
		return
	}
	r.ordinal++
	id := r.slug
	if r.ordinal > 1 {
		id = fmt.Sprintf("%s_%d", r.slug, r.ordinal)
	}
	r.cur.ID = id
	r.cur.Name = toPascalCase(strings.ReplaceAll(id, "_", " "))
	r.res.Machines = append(r.res.Machines, r.cur)
	r.cur = nil
}

func (r *parseRun) error(line int, message, suggestion string) {
	r.record(diag.Diagnostic{
		Severity:   diag.SeverityError,
		Category:   diag.CategoryParsing,
		Message:    message,
		Suggestion: suggestion,
		File:       r.res.Source,
		Line:       line,
	})
}

func (r *parseRun) warning(line int, message, suggestion string) {
	r.record(diag.Diagnostic{
		Severity:   diag.SeverityWarning,
		Category:   diag.CategoryParsing,
		Message:    message,
		Suggestion: suggestion,
		File:       r.res.Source,
		Line:       line,
	})
}

// record files a diagnostic into the result and forwards it to the
// handler when one is attached. A tripped circuit breaker halts the
// remainder of the parse.
func (r *parseRun) record(d diag.Diagnostic) {
	if d.Severity >= diag.SeverityError {
		r.res.Errors = append(r.res.Errors, d)
	} else {
		r.res.Warnings = append(r.res.Warnings, d)
	}
	if r.parser.handler != nil {
		_, err := r.parser.handler.Add(d.Severity, d.Category, d.Message, diag.Meta{
			Suggestion: d.Suggestion,
			File:       d.File,
			Line:       d.Line,
		})
		if err != nil {
			r.halted = true
		}
	}
}

// sourceSlug derives a machine id stem from the originating path.
func sourceSlug(source string) string {
	if source == "" || source == "inline" {
		return "machine"
	}
	base := filepath.Base(source)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	var b strings.Builder
	for _, r := range strings.ToLower(base) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "machine"
	}
	return slug
}

func stripQuotes(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			return s[1 : len(s)-1]
		}
	}
	return s
}
