package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "flowgen",
	Short: "Flowchart machine generator toolchain",
	Long:  "Flowgen parses flowchart diagrams embedded in markdown into validated state-machine specifications for code generation.",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().Bool("strict", false, "Treat non-canonical diagram syntax as errors")
	rootCmd.PersistentFlags().Bool("validate-naming", false, "Warn on non-PascalCase identifiers")
	rootCmd.PersistentFlags().Int("max-errors", 50, "Stop after this many errors")
	rootCmd.PersistentFlags().Int("max-retries", 3, "Retry budget for recoverable diagnostics")
	rootCmd.PersistentFlags().String("min-severity", "info", "Minimum diagnostic severity to record (debug|info|warning|error|critical)")
	rootCmd.PersistentFlags().Bool("reports", false, "Write a diagnostic report file after each run")
	rootCmd.PersistentFlags().String("report-dir", "reports", "Directory for diagnostic report files")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	_ = viper.BindPFlag("strict", rootCmd.PersistentFlags().Lookup("strict"))
	_ = viper.BindPFlag("validate_naming", rootCmd.PersistentFlags().Lookup("validate-naming"))
	_ = viper.BindPFlag("max_errors", rootCmd.PersistentFlags().Lookup("max-errors"))
	_ = viper.BindPFlag("max_retries", rootCmd.PersistentFlags().Lookup("max-retries"))
	_ = viper.BindPFlag("min_severity", rootCmd.PersistentFlags().Lookup("min-severity"))
	_ = viper.BindPFlag("reports", rootCmd.PersistentFlags().Lookup("reports"))
	_ = viper.BindPFlag("report_dir", rootCmd.PersistentFlags().Lookup("report-dir"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
}

func initConfig() {
	viper.SetEnvPrefix("FLOWGEN")
	viper.AutomaticEnv()
}
