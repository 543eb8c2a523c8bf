package flowparser

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ixoworld/ixo-ussd-sub001/diag"
)

// --- helpers ---

func parseOne(t *testing.T, src string) *MachineSpec {
	t.Helper()
	res := NewParser(nil).Parse(src)
	require.Len(t, res.Machines, 1)
	return res.Machines[0]
}

func messagesContaining(diags []diag.Diagnostic, substr string) []diag.Diagnostic {
	var out []diag.Diagnostic
	for _, d := range diags {
		if strings.Contains(d.Message, substr) {
			out = append(out, d)
		}
	}
	return out
}

// --- basic extraction ---

func TestParseLinearFlow(t *testing.T) {
	src := "flowchart LR\nStart[\"Start\"] --> Middle[\"Middle\"]\nMiddle --> End[\"End\"]"
	res := NewParser(nil).Parse(src)

	require.Len(t, res.Machines, 1)
	m := res.Machines[0]
	assert.Len(t, m.States, 3)
	assert.Len(t, m.Transitions, 2)
	assert.Equal(t, "Start", m.InitialState)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)

	end := m.StateByID("End")
	require.NotNil(t, end)
	assert.Equal(t, StateFinal, end.Type)
	assert.Equal(t, StateNormal, m.StateByID("Middle").Type)
}

func TestParseEmptyInput(t *testing.T) {
	res := NewParser(nil).Parse("")
	assert.Empty(t, res.Machines)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestParseNoDiagramBlock(t *testing.T) {
	res := NewParser(nil).Parse("# A document\n\nJust prose, no diagrams here.\n")
	assert.Empty(t, res.Machines)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestParseDeterministic(t *testing.T) {
	src := "flowchart TD\nA --> A\n1Bad --> C\nclass A user\n"
	first := NewParser(nil).Parse(src)
	second := NewParser(nil).Parse(src)
	assert.Equal(t, first, second)
}

func TestParseMultipleBlocks(t *testing.T) {
	src := "# Flows\n\n```mermaid\nflowchart TD\nA --> B\n```\n\nprose\n\n```mermaid\nflowchart LR\nX --> Y\n```\n"
	res := NewParser(nil).Parse(src)

	require.Len(t, res.Machines, 2)
	assert.Equal(t, "machine", res.Machines[0].ID)
	assert.Equal(t, "machine_2", res.Machines[1].ID)
	assert.Equal(t, "A", res.Machines[0].InitialState)
	assert.Equal(t, "X", res.Machines[1].InitialState)
}

func TestParseBareNotationThenCodeFence(t *testing.T) {
	// A fence after bare notation ends the machine; the fence's contents
	// must not turn into states.
	src := "flowchart TD\nA --> B\n\n```go\nx := compute()\nfoo\n```\n"
	res := NewParser(nil).Parse(src)

	require.Len(t, res.Machines, 1)
	m := res.Machines[0]
	require.Len(t, m.States, 2)
	assert.Nil(t, m.StateByID("foo"))
	assert.Len(t, m.Transitions, 1)
}

func TestParseUnclosedFence(t *testing.T) {
	src := "```mermaid\nflowchart TD\nA --> B\n"
	res := NewParser(nil).Parse(src)

	require.Len(t, res.Machines, 1)
	assert.Len(t, res.Machines[0].Transitions, 1)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0].Message, "not properly closed")
}

// --- arrow dialects ---

func TestParseArrowDialects(t *testing.T) {
	src := "flowchart LR\nA -->|input yes| B\nC -- error branch --> D\nE --> F\nG -> H"
	m := parseOne(t, src)

	require.Len(t, m.Transitions, 4)
	assert.Equal(t, TransitionUserInput, m.Transitions[0].Type)
	assert.Equal(t, "input yes", m.Transitions[0].Label)
	assert.Equal(t, TransitionError, m.Transitions[1].Type)
	assert.Equal(t, TransitionPlain, m.Transitions[2].Type)
	assert.Equal(t, TransitionPlain, m.Transitions[3].Type)
	assert.Equal(t, "G", m.Transitions[3].From)
	assert.Equal(t, "H", m.Transitions[3].To)
}

func TestParseGuardLabel(t *testing.T) {
	m := parseOne(t, "flowchart LR\nA -->|guard:isValid| B")

	require.Len(t, m.Transitions, 1)
	tr := m.Transitions[0]
	assert.Equal(t, "isValid", tr.Guard)
	assert.Equal(t, TransitionExternal, tr.Type)
}

func TestParseActionLabel(t *testing.T) {
	m := parseOne(t, "flowchart LR\nA -->|action:persistSession| B")
	require.Len(t, m.Transitions, 1)
	assert.Equal(t, "persistSession", m.Transitions[0].Action)
	assert.Empty(t, m.Transitions[0].Guard)
}

func TestParseBracketGuard(t *testing.T) {
	m := parseOne(t, "flowchart LR\nA -->|[hasBalance]| B")
	require.Len(t, m.Transitions, 1)
	assert.Equal(t, "hasBalance", m.Transitions[0].Guard)
}

func TestParseTimeoutLabel(t *testing.T) {
	m := parseOne(t, "flowchart LR\nA -->|session timeout| B")
	require.Len(t, m.Transitions, 1)
	assert.Equal(t, TransitionTimeout, m.Transitions[0].Type)
}

// --- shapes ---

func TestParseStateShapes(t *testing.T) {
	src := "flowchart TD\nBox[\"A box\"]\nPill(\"A pill\")\nGate{\"A gate\"}\nDot((\"A dot\"))\nBox --> Pill"
	m := parseOne(t, src)

	assert.Equal(t, ShapeRect, m.StateByID("Box").Shape)
	assert.Equal(t, "A box", m.StateByID("Box").Label)
	assert.Equal(t, ShapeRound, m.StateByID("Pill").Shape)
	assert.Equal(t, ShapeDiamond, m.StateByID("Gate").Shape)
	assert.Equal(t, ShapeCircle, m.StateByID("Dot").Shape)
}

func TestParseShapeInTransitionEndpoint(t *testing.T) {
	m := parseOne(t, "flowchart TD\nStart --> Gate{\"Continue?\"}")
	gate := m.StateByID("Gate")
	require.NotNil(t, gate)
	assert.Equal(t, ShapeDiamond, gate.Shape)
	assert.Equal(t, "Continue?", gate.Label)
}

// --- heuristics and recovery ---

func TestParseSelfTransition(t *testing.T) {
	src := "flowchart TD\nA --> A"
	res := NewParser(nil).Parse(src)

	require.Len(t, res.Machines, 1)
	assert.Len(t, res.Machines[0].Transitions, 1)
	selfWarnings := messagesContaining(res.Warnings, "Self-transition")
	assert.Len(t, selfWarnings, 1)
}

func TestParseDigitIdentifier(t *testing.T) {
	src := "flowchart TD\n1Start --> Next"
	res := NewParser(nil).Parse(src)

	require.Len(t, res.Machines, 1)
	m := res.Machines[0]
	// The offending state is still part of the graph.
	require.NotNil(t, m.StateByID("1Start"))
	assert.Len(t, m.Transitions, 1)

	invalid := messagesContaining(res.Errors, "Invalid")
	require.Len(t, invalid, 1)
	assert.Equal(t, 2, invalid[0].Line)
	assert.NotEmpty(t, invalid[0].Suggestion)
}

func TestParseDigitIdentifierReportedOnce(t *testing.T) {
	src := "flowchart TD\n1A --> B\n1A --> C"
	res := NewParser(nil).Parse(src)
	assert.Len(t, messagesContaining(res.Errors, "Invalid"), 1)
}

func TestParseUnsafeTransitionLabel(t *testing.T) {
	src := "flowchart TD\nA -->|bad<script>| B"
	res := NewParser(nil).Parse(src)
	assert.Len(t, messagesContaining(res.Warnings, "unsafe"), 1)
}

func TestParseDeadFlowFromFinalState(t *testing.T) {
	src := "flowchart TD\nStart --> End\nEnd --> Extra"
	res := NewParser(nil).Parse(src)

	dead := messagesContaining(res.Warnings, "Dead flow")
	require.Len(t, dead, 1)
	// The transition is still recorded.
	assert.Len(t, res.Machines[0].Transitions, 2)
}

func TestParseCustomFinalKeywords(t *testing.T) {
	p := NewParser(nil, WithFinalKeywords([]string{"done"}))
	res := p.Parse("flowchart TD\nStart --> Done\nStart --> End")
	m := res.Machines[0]

	assert.Equal(t, StateFinal, m.StateByID("Done").Type)
	assert.Equal(t, StateNormal, m.StateByID("End").Type)
}

// --- classes and categories ---

func TestParseClassAssignmentSetsCategory(t *testing.T) {
	src := "flowchart TD\nStart --> Menu\nclassDef user fill:#f9f,stroke:#333\nclass Start,Menu user"
	m := parseOne(t, src)

	assert.Equal(t, CategoryUser, m.Category)
	assert.True(t, m.StateByID("Start").HasClass("user"))
	assert.True(t, m.StateByID("Menu").HasClass("user"))
	assert.Equal(t, "fill:#f9f,stroke:#333", m.StyleDefs["user"])
}

func TestParseFirstCategoryWins(t *testing.T) {
	src := "flowchart TD\nA --> B\nclass A user\nclass B admin"
	m := parseOne(t, src)
	assert.Equal(t, CategoryUser, m.Category)
}

func TestParseNonCategoryClass(t *testing.T) {
	src := "flowchart TD\nA --> B\nclass A highlighted"
	m := parseOne(t, src)
	assert.Equal(t, Category(""), m.Category)
	assert.True(t, m.StateByID("A").HasClass("highlighted"))
}

// --- file handling ---

func TestParseFileMissing(t *testing.T) {
	res := NewParser(nil).ParseFile(filepath.Join(t.TempDir(), "nope.md"))

	assert.Empty(t, res.Machines)
	require.NotEmpty(t, res.Errors)
	assert.Contains(t, res.Errors[0].Message, "Failed to read")
	assert.Equal(t, diag.CategoryFileSystem, res.Errors[0].Category)
}

func TestParseFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registration.md")
	content := "# Registration\n\n```mermaid\nflowchart TD\nStart --> PinEntry\nPinEntry --> End\n```\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	res := NewParser(nil).ParseFile(path)
	require.Len(t, res.Machines, 1)
	m := res.Machines[0]
	assert.Equal(t, "registration", m.ID)
	assert.Equal(t, "Registration", m.Name)
	assert.Equal(t, path, m.Source)
	assert.Len(t, m.States, 3)
}

// --- handler integration ---

func TestParserForwardsToHandler(t *testing.T) {
	h := diag.NewHandler(diag.Options{})
	res := NewParser(h).Parse("flowchart TD\n1Bad --> B\nA --> A")

	require.Len(t, res.Errors, 1)
	require.Len(t, res.Warnings, 1)
	assert.Equal(t, 2, h.Len())
	assert.True(t, h.HasErrors())
}

func TestParserHaltsOnCircuitBreaker(t *testing.T) {
	h := diag.NewHandler(diag.Options{MaxErrors: 1})
	res := NewParser(h).Parse("flowchart TD\n1A --> B\n2C --> D\n3E --> F")

	// The first error is recorded; the second trips the breaker and the
	// rest of the document is abandoned.
	assert.Equal(t, 1, h.Len())
	assert.Len(t, res.Errors, 2)
}
