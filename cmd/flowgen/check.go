package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ixoworld/ixo-ussd-sub001/diag"
	"github.com/ixoworld/ixo-ussd-sub001/flowparser"
)

var checkCmd = &cobra.Command{
	Use:   "check <document.md>",
	Short: "Parse and validate flowchart diagrams in a document",
	Long:  "Run the strict pre-flight gate (optional), the lenient parser, and the business-rule validator over a markdown document, then print a diagnostic digest.",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]
	verbose := viper.GetBool("verbose")

	minSev, err := diag.ParseSeverity(viper.GetString("min_severity"))
	if err != nil {
		return err
	}

	// The default handler for the run is constructed here, at the top
	// of the pipeline, and passed down. Components never build their own.
	handler := diag.NewHandler(diag.Options{
		MaxErrors:       viper.GetInt("max_errors"),
		MaxRetries:      viper.GetInt("max_retries"),
		MinSeverity:     minSev,
		GenerateReports: viper.GetBool("reports"),
		ReportDir:       viper.GetString("report_dir"),
	})

	strictOpts := flowparser.StrictOptions{
		StrictMode:     viper.GetBool("strict"),
		ValidateNaming: viper.GetBool("validate_naming"),
	}

	// Strict gate runs first when requested; its findings are advisory
	// unless strict mode promotes them to errors.
	if strictOpts.StrictMode {
		sv := flowparser.ValidateFile(path, strictOpts)
		forward(handler, sv)
		if !sv.IsValid {
			printDigest(handler, verbose)
			return fmt.Errorf("strict validation failed for %s", path)
		}
	}

	parser := flowparser.NewParser(handler)
	res := parser.ParseFile(path)

	vr := flowparser.ValidateMachineSpecs(res.Machines, flowparser.ValidateOptions{
		ValidateNaming: strictOpts.ValidateNaming,
	})
	forward(handler, vr)

	fmt.Fprintf(os.Stderr, "Parsed %d machine(s) from %s\n", len(res.Machines), path)
	if verbose {
		for _, m := range res.Machines {
			fmt.Fprintf(os.Stderr, "  - %s: %d states, %d transitions, initial=%s\n",
				m.ID, len(m.States), len(m.Transitions), m.InitialState)
		}
	}

	printDigest(handler, verbose)

	if reportPath, err := handler.WriteReport(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write report: %v\n", err)
	} else if reportPath != "" {
		fmt.Fprintf(os.Stderr, "Report written to %s\n", reportPath)
	}

	if handler.HasErrors() || len(res.Errors) > 0 || !vr.IsValid {
		return fmt.Errorf("validation failed for %s", path)
	}
	return nil
}

// forward copies a validation result into the run's handler.
func forward(h *diag.Handler, vr flowparser.ValidationResult) {
	for _, d := range vr.Errors {
		_, _ = h.Add(d.Severity, d.Category, d.Message, metaOf(d))
	}
	for _, d := range vr.Warnings {
		_, _ = h.Add(d.Severity, d.Category, d.Message, metaOf(d))
	}
}

func metaOf(d diag.Diagnostic) diag.Meta {
	return diag.Meta{
		Details:    d.Details,
		Suggestion: d.Suggestion,
		File:       d.File,
		Line:       d.Line,
		Column:     d.Column,
	}
}

var severityColors = map[diag.Severity]*color.Color{
	diag.SeverityCritical: color.New(color.FgRed, color.Bold),
	diag.SeverityError:    color.New(color.FgRed),
	diag.SeverityWarning:  color.New(color.FgYellow),
	diag.SeverityInfo:     color.New(color.FgCyan),
	diag.SeverityDebug:    color.New(color.FgWhite),
}

// printDigest prints each diagnostic severity-colored, then the summary line.
func printDigest(h *diag.Handler, verbose bool) {
	for _, d := range h.All() {
		if d.Severity < diag.SeverityWarning && !verbose {
			continue
		}
		c, ok := severityColors[d.Severity]
		if !ok {
			c = color.New()
		}
		fmt.Fprintln(os.Stderr, c.Sprint(d.String()))
	}
	fmt.Fprintln(os.Stderr, h.Summary())
}
