package flowparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassifyTransitionKeywords(t *testing.T) {
	assert.Equal(t, TransitionPlain, classifyTransition(""))
	assert.Equal(t, TransitionPlain, classifyTransition("   "))
	assert.Equal(t, TransitionUserInput, classifyTransition("user input 1"))
	assert.Equal(t, TransitionUserInput, classifyTransition("INPUT"))
	assert.Equal(t, TransitionError, classifyTransition("on error"))
	assert.Equal(t, TransitionTimeout, classifyTransition("Timeout reached"))
	assert.Equal(t, TransitionExternal, classifyTransition("payment confirmed"))
}

func TestClassifyTransitionRuleOrder(t *testing.T) {
	// "input" is checked before "error": a label carrying both keywords
	// classifies by the earlier rule.
	assert.Equal(t, TransitionUserInput, classifyTransition("input error"))
}

func TestExtractGuard(t *testing.T) {
	assert.Equal(t, "isValid", extractGuard("guard:isValid"))
	assert.Equal(t, "isValid", extractGuard("  guard: isValid "))
	assert.Equal(t, "hasBalance", extractGuard("[hasBalance]"))
	assert.Empty(t, extractGuard("action:save"))
	assert.Empty(t, extractGuard("just a label"))
}

func TestExtractAction(t *testing.T) {
	assert.Equal(t, "save", extractAction("action:save"))
	assert.Empty(t, extractAction("guard:isValid"))
	assert.Empty(t, extractAction("[bracketed]"))
}

func TestIsFinalState(t *testing.T) {
	kws := DefaultFinalKeywords

	assert.True(t, isFinalState("End", "End", kws))
	assert.True(t, isFinalState("SessionEnd", "", kws))
	assert.True(t, isFinalState("session_close", "", kws))
	assert.True(t, isFinalState("Done", "All complete", kws))

	// Whole-word matching: "Send" must not match "end".
	assert.False(t, isFinalState("Send", "Send money", kws))
	assert.False(t, isFinalState("Spending", "", kws))
	assert.False(t, isFinalState("Menu", "Main menu", kws))
}

func TestSplitIdentWords(t *testing.T) {
	assert.Equal(t, []string{"session", "end"}, splitIdentWords("SessionEnd"))
	assert.Equal(t, []string{"session", "end"}, splitIdentWords("session_end"))
	assert.Equal(t, []string{"start"}, splitIdentWords("1Start"))
}

func TestHasUnsafeLabel(t *testing.T) {
	assert.True(t, hasUnsafeLabel("a<b"))
	assert.True(t, hasUnsafeLabel("tick`tick"))
	assert.True(t, hasUnsafeLabel("x;y"))
	assert.False(t, hasUnsafeLabel("Plain label?"))
}

func TestPascalCase(t *testing.T) {
	assert.True(t, isPascalCase("StartState"))
	assert.True(t, isPascalCase("Machine2"))
	assert.False(t, isPascalCase("startState"))
	assert.False(t, isPascalCase("Start_State"))
	assert.False(t, isPascalCase(""))

	assert.Equal(t, "StartState", toPascalCase("start_state"))
	assert.Equal(t, "MainMenu", toPascalCase("main-menu"))
	assert.Equal(t, "Start", toPascalCase("start"))
}
