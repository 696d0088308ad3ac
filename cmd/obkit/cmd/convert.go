package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/obkit/pkg/config"
	"github.com/sirosfoundation/obkit/pkg/converter"
)

var (
	convertTo     string
	convertOutput string
	convertFormat string
)

var convertCmd = &cobra.Command{
	Use:   "convert <file>",
	Short: "Convert a badge between Open Badges 2.0 and 3.0",
	Long: `Convert an Open Badges 2.0 assertion into an Open Badges 3.0 verifiable
credential, or the other way around.

The output file defaults to <name>.<target>.<ext> next to the input. Use
-o - to write to stdout.

Example:
  obkit convert assertion.json --to ob3
  obkit convert credential.json --to ob2 -o assertion.json
  obkit convert assertion.json --to ob3 --format yaml -o -`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertTo, "to", "t", "", "Target version: "+fmt.Sprint(converter.List())+" (default: ob3)")
	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file path (default: derived from input)")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "Output format: json, yaml or cbor (default: input format)")
}

func runConvert(cmd *cobra.Command, args []string) error {
	cfg.Merge(&config.Config{
		InputFile:  args[0],
		OutputFile: convertOutput,
		Target:     convertTo,
		Format:     convertFormat,
	})

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	bf, err := readBadgeFile(cfg.InputFile)
	if err != nil {
		return err
	}
	if len(bf.docs) != 1 {
		return fmt.Errorf("%s holds %d documents, convert takes one", cfg.InputFile, len(bf.docs))
	}

	converted, err := converter.New(converter.WithLogger(logger)).Convert(bf.docs[0], cfg.Target)
	if err != nil {
		return fmt.Errorf("failed to convert %s: %w", cfg.InputFile, err)
	}
	var out any = converted
	if bf.array {
		out = []any{converted}
	}

	f, err := outputFormat(cfg.Format, bf.format)
	if err != nil {
		return err
	}

	outputPath := cfg.GetOutputFile()
	if err := writeOutput(cmd.OutOrStdout(), outputPath, out, f); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	if outputPath != "-" {
		fmt.Fprintf(cmd.OutOrStdout(), "Converted %s -> %s\n", cfg.InputFile, outputPath)
	}
	return nil
}
