// Package flowparser turns flowchart diagrams embedded in markdown
// documents into structured machine specifications for the code
// generators.
//
// Three components live here:
//
//   - Parser: a lenient, recovery-oriented extractor. Malformed lines
//     become diagnostics, never aborts; the only hard failure is an
//     unreadable source file.
//   - Strict validator (ValidateContent/ValidateFile): a non-mutating
//     pre-check over raw diagram text, usable as a CI gate. It is
//     deliberately stricter than the parser: the single-dash arrow the
//     parser tolerates is rejected here.
//   - Business-rule validator (ValidateMachineSpecs): semantic checks
//     over already-parsed machines, built as an ordered list of Rule
//     values in the style of a linter.
//
// Usage:
//
//	p := flowparser.NewParser(nil)
//	res := p.Parse(markdown)
//	vr := flowparser.ValidateMachineSpecs(res.Machines, flowparser.ValidateOptions{})
package flowparser
