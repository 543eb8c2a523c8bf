package flowparser

import (
	"fmt"

	"github.com/ixoworld/ixo-ussd-sub001/diag"
)

// Rule is a single business-rule check over one parsed machine.
type Rule interface {
	Name() string
	Apply(m *MachineSpec) []diag.Diagnostic
}

// ValidateOptions configures the business-rule validator.
type ValidateOptions struct {
	// ValidateNaming enables the PascalCase naming rule.
	ValidateNaming bool
}

// BuiltInRules returns the standard rule set in application order.
func BuiltInRules(opts ValidateOptions) []Rule {
	rules := []Rule{
		initialStateRule{},
		transitionEndpointsRule{},
		reachabilityRule{},
		categoryKeywordRule{},
	}
	if opts.ValidateNaming {
		rules = append(rules, namingRule{})
	}
	return rules
}

// ValidateMachineSpecs runs semantic validation over already-parsed
// specifications. Machines validate independently; a failure in one
// never short-circuits the rest. The graph is never rewritten.
func ValidateMachineSpecs(specs []*MachineSpec, opts ValidateOptions, extraRules ...Rule) ValidationResult {
	rules := append(BuiltInRules(opts), extraRules...)

	res := ValidationResult{IsValid: true}
	for _, m := range specs {
		for _, rule := range rules {
			for _, d := range rule.Apply(m) {
				if d.Severity >= diag.SeverityError {
					res.addError(d)
				} else {
					res.addWarning(d)
				}
			}
		}
	}
	return res
}

// initialStateRule: the initial state must match a declared state id.
type initialStateRule struct{}

func (initialStateRule) Name() string { return "initial_state" }

func (initialStateRule) Apply(m *MachineSpec) []diag.Diagnostic {
	if m.InitialState != "" && m.StateByID(m.InitialState) != nil {
		return nil
	}
	msg := fmt.Sprintf("Initial state %q of machine %q does not match any declared state", m.InitialState, m.ID)
	if m.InitialState == "" {
		msg = fmt.Sprintf("Initial state of machine %q is not set; the machine has no transitions", m.ID)
	}
	return []diag.Diagnostic{{
		Severity:   diag.SeverityError,
		Category:   diag.CategoryValidation,
		Message:    msg,
		File:       m.Source,
		Suggestion: "Declare the initial state or add a first transition",
	}}
}

// transitionEndpointsRule: transition endpoints should reference
// declared states. A dangling endpoint only warns; generators can
// still work with the states that did resolve.
type transitionEndpointsRule struct{}

func (transitionEndpointsRule) Name() string { return "transition_endpoints" }

func (transitionEndpointsRule) Apply(m *MachineSpec) []diag.Diagnostic {
	var diags []diag.Diagnostic
	for _, t := range m.Transitions {
		for _, id := range []string{t.From, t.To} {
			if m.StateByID(id) == nil {
				diags = append(diags, diag.Diagnostic{
					Severity: diag.SeverityWarning,
					Category: diag.CategoryValidation,
					Message:  fmt.Sprintf("Transition %s --> %s references undeclared state %q", t.From, t.To, id),
					File:     m.Source,
					Line:     t.Line,
				})
			}
		}
	}
	return diags
}

// reachabilityRule: every state should be forward-reachable from the
// initial state. Unreachable states only warn.
type reachabilityRule struct{}

func (reachabilityRule) Name() string { return "reachability" }

func (reachabilityRule) Apply(m *MachineSpec) []diag.Diagnostic {
	if m.InitialState == "" || m.StateByID(m.InitialState) == nil {
		// initial_state rule reports this; reachability would only echo it.
		return nil
	}

	adj := make(map[string][]string)
	for _, t := range m.Transitions {
		adj[t.From] = append(adj[t.From], t.To)
	}

	visited := map[string]bool{m.InitialState: true}
	queue := []string{m.InitialState}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adj[cur] {
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}

	var diags []diag.Diagnostic
	for _, s := range m.States {
		if !visited[s.ID] {
			diags = append(diags, diag.Diagnostic{
				Severity:   diag.SeverityWarning,
				Category:   diag.CategoryValidation,
				Message:    fmt.Sprintf("State %q is not reachable from initial state %q", s.ID, m.InitialState),
				File:       m.Source,
				Line:       s.Line,
				Suggestion: fmt.Sprintf("Add a transition path from %q to %q or remove the state", m.InitialState, s.ID),
			})
		}
	}
	return diags
}

// categoryKeywordRule: a user-category flow is expected to carry an
// authentication step and a menu of some kind; a missing one warns.
type categoryKeywordRule struct{}

func (categoryKeywordRule) Name() string { return "category_keywords" }

func (categoryKeywordRule) Apply(m *MachineSpec) []diag.Diagnostic {
	if m.Category != CategoryUser {
		return nil
	}

	hasAuth := false
	hasMenu := false
	for _, s := range m.States {
		if containsAnyKeyword(s.ID, authKeywords) || containsAnyKeyword(s.Label, authKeywords) {
			hasAuth = true
		}
		if containsAnyKeyword(s.ID, menuKeywords) || containsAnyKeyword(s.Label, menuKeywords) {
			hasMenu = true
		}
	}

	var diags []diag.Diagnostic
	if !hasAuth {
		diags = append(diags, diag.Diagnostic{
			Severity:   diag.SeverityWarning,
			Category:   diag.CategoryValidation,
			Message:    fmt.Sprintf("User machine %q has no authentication-related state", m.ID),
			File:       m.Source,
			Suggestion: "User flows usually include a PIN or login step",
		})
	}
	if !hasMenu {
		diags = append(diags, diag.Diagnostic{
			Severity:   diag.SeverityWarning,
			Category:   diag.CategoryValidation,
			Message:    fmt.Sprintf("User machine %q has no menu-related state", m.ID),
			File:       m.Source,
			Suggestion: "User flows usually present a menu of options",
		})
	}
	return diags
}

// namingRule: machine and state names should be PascalCase.
type namingRule struct{}

func (namingRule) Name() string { return "naming" }

func (namingRule) Apply(m *MachineSpec) []diag.Diagnostic {
	var diags []diag.Diagnostic
	if m.Name != "" && !isPascalCase(m.Name) {
		diags = append(diags, diag.Diagnostic{
			Severity:   diag.SeverityWarning,
			Category:   diag.CategoryValidation,
			Message:    fmt.Sprintf("Machine name %q is not PascalCase", m.Name),
			File:       m.Source,
			Suggestion: fmt.Sprintf("Rename to %q", toPascalCase(m.Name)),
		})
	}
	for _, s := range m.States {
		if !isPascalCase(s.ID) {
			diags = append(diags, diag.Diagnostic{
				Severity:   diag.SeverityWarning,
				Category:   diag.CategoryValidation,
				Message:    fmt.Sprintf("State %q is not PascalCase", s.ID),
				File:       m.Source,
				Line:       s.Line,
				Suggestion: fmt.Sprintf("Rename to %q", toPascalCase(s.ID)),
			})
		}
	}
	return diags
}
