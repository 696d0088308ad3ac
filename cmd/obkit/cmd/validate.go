package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/obkit/pkg/codec"
	"github.com/sirosfoundation/obkit/pkg/config"
	"github.com/sirosfoundation/obkit/pkg/validation"
)

var (
	validateStrict bool
	validateFormat string
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>...",
	Short: "Validate badge documents",
	Long: `Validate Open Badges 2.0 assertions and 3.0 verifiable credentials.

Each document gets a report with its detected version, its errors and its
warnings. The command fails when any document has errors, or, with --strict,
warnings.

Example:
  obkit validate assertion.json credential.yaml
  obkit validate badges.json --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as failures")
	validateCmd.Flags().StringVarP(&validateFormat, "format", "f", "text", "Report format: text, json or yaml")
}

type fileReport struct {
	File   string             `json:"file" yaml:"file"`
	Index  int                `json:"index" yaml:"index"`
	Result *validation.Result `json:"result" yaml:"result"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg.Merge(&config.Config{Strict: validateStrict})

	v := validation.New(validation.WithLogger(logger))

	var reports []fileReport
	failed := false
	for _, path := range args {
		docs, _, err := readDocuments(path)
		if err != nil {
			return err
		}
		for i, doc := range docs {
			r := v.Validate(doc)
			reports = append(reports, fileReport{File: path, Index: i, Result: r})
			if !r.IsValid || (cfg.Strict && len(r.Warnings) > 0) {
				failed = true
			}
		}
	}

	if validateFormat == "text" {
		printReports(cmd.OutOrStdout(), reports)
	} else {
		f, err := codec.ParseFormat(validateFormat)
		if err != nil {
			return err
		}
		if err := writeOutput(cmd.OutOrStdout(), "", reports, f); err != nil {
			return err
		}
	}

	if failed {
		return errValidationFailed
	}
	return nil
}

func printReports(w io.Writer, reports []fileReport) {
	for _, rep := range reports {
		name := rep.File
		if rep.Index > 0 {
			name = fmt.Sprintf("%s[%d]", rep.File, rep.Index)
		}
		r := rep.Result
		status := "valid"
		if !r.IsValid {
			status = "invalid"
		}
		if r.Version != "" {
			fmt.Fprintf(w, "%s: %s (%s)\n", name, status, r.Version)
		} else {
			fmt.Fprintf(w, "%s: %s\n", name, status)
		}
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  error: %s\n", e)
		}
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  warning: %s\n", warn)
		}
	}
}
