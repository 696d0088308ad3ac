package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/sirosfoundation/obkit/internal/index"
	"github.com/sirosfoundation/obkit/pkg/badge"
	"github.com/sirosfoundation/obkit/pkg/codec"
	"github.com/sirosfoundation/obkit/pkg/config"
	"github.com/sirosfoundation/obkit/pkg/converter"
	"github.com/sirosfoundation/obkit/pkg/metrics"
	"github.com/sirosfoundation/obkit/pkg/narrative"
	"github.com/sirosfoundation/obkit/pkg/normalizer"
	"github.com/sirosfoundation/obkit/pkg/validation"
)

var (
	batchInputDir    string
	batchOutputDir   string
	batchTo          string
	batchFormat      string
	batchMetricsFile string
	batchStrict      bool
	batchHistory     int
	batchConcurrency int
)

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Validate and convert a directory of badges and write an index",
	Long: `Process all badge documents (.json, .jsonld, .yaml, .yml, .cbor) in a
directory: validate them, convert them to the target version, and write a
badge-index.json describing every document.

Hidden directories, node_modules and vendor are skipped. With --strict the
command fails when any document has errors or warnings.

Example:
  obkit batch --input ./badges --output ./site --to ob3
  obkit batch -i ./badges -o ./out --to ob2 --format yaml --metrics-file out/obkit.prom`,
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().StringVarP(&batchInputDir, "input", "i", ".", "Input directory containing badge documents")
	batchCmd.Flags().StringVarP(&batchOutputDir, "output", "o", "", "Output directory for converted documents and the index (default: input)")
	batchCmd.Flags().StringVarP(&batchTo, "to", "t", "", "Target version: ob2 or ob3 (default: ob3)")
	batchCmd.Flags().StringVarP(&batchFormat, "format", "f", "", "Output format: json, yaml or cbor (default: input format)")
	batchCmd.Flags().StringVar(&batchMetricsFile, "metrics-file", "", "Write Prometheus metrics to this file")
	batchCmd.Flags().BoolVar(&batchStrict, "strict", false, "Fail when any document has errors or warnings")
	batchCmd.Flags().IntVar(&batchHistory, "history", 0, "Number of commits listed per file in the index (default: from config)")
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 0, "Number of files processed at once (default: from config)")
}

// batchResult is the outcome of one input file.
type batchResult struct {
	entries []index.Entry
	failed  bool
}

type batchRun struct {
	inputDir  string
	outputDir string
	target    converter.Target
	validator *validation.Validator
	norm      *normalizer.Normalizer
	conv      *converter.Converter
}

func runBatch(cmd *cobra.Command, args []string) error {
	start := time.Now()

	cfg.Merge(&config.Config{
		InputFile:   batchInputDir,
		OutputFile:  batchOutputDir,
		Target:      batchTo,
		Format:      batchFormat,
		MetricsFile: batchMetricsFile,
		Strict:      batchStrict,
		History:     batchHistory,
		Concurrency: batchConcurrency,
	})
	if cfg.OutputFile == "" {
		cfg.OutputFile = cfg.InputFile
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	target, err := converter.ParseTarget(cfg.Target)
	if err != nil {
		return err
	}

	files, err := findBadgeFiles(cfg.InputFile)
	if err != nil {
		return fmt.Errorf("failed to find badge files: %w", err)
	}
	files = excludeOutputs(files, cfg.OutputFile)

	if len(files) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No badge files found")
		return nil
	}

	if err := os.MkdirAll(cfg.OutputFile, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	m := metrics.New()
	normOpts := []normalizer.Option{
		normalizer.WithLogger(logger),
		normalizer.WithMetrics(m),
	}
	if cfg.RenderNarrative {
		normOpts = append(normOpts, normalizer.WithRenderedCriteria(narrative.NewRenderer()))
	}
	run := &batchRun{
		inputDir:  cfg.InputFile,
		outputDir: cfg.OutputFile,
		target:    target,
		validator: validation.New(validation.WithLogger(logger), validation.WithMetrics(m)),
		norm:      normalizer.New(normOpts...),
		conv:      converter.New(converter.WithLogger(logger), converter.WithMetrics(m)),
	}

	results := make([]batchResult, len(files))
	g, ctx := errgroup.WithContext(cmd.Context())
	if cfg.Concurrency > 0 {
		g.SetLimit(cfg.Concurrency)
	}
	for i, file := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			r, err := run.process(file)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	var entries []index.Entry
	failed := false
	for i, r := range results {
		for _, e := range r.entries {
			status := "ok"
			if !e.Valid {
				status = "invalid"
			}
			if e.OutputFile != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", files[i], status, e.OutputFile)
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", files[i], status)
			}
		}
		entries = append(entries, r.entries...)
		failed = failed || r.failed
	}

	idx := index.New(target.Name(), entries)
	if err := idx.Write(cfg.OutputFile); err != nil {
		return fmt.Errorf("failed to write index: %w", err)
	}

	m.ObserveBatchDuration(time.Since(start))
	if cfg.MetricsFile != "" {
		if err := m.WriteTextfile(cfg.MetricsFile); err != nil {
			return err
		}
	}

	logger.Info("Batch complete", "run_id", idx.RunID, "files", len(files), "badges", len(entries), "duration", time.Since(start))
	fmt.Fprintf(cmd.OutOrStdout(), "\nIndexed %d document(s) from %d file(s)\n", len(entries), len(files))
	fmt.Fprintf(cmd.OutOrStdout(), "Index: %s\n", index.Path(cfg.OutputFile))

	if failed && cfg.Strict {
		return errValidationFailed
	}
	return nil
}

// process validates, normalizes and converts the documents of one file. Only
// I/O failures are returned as errors; bad documents are recorded in the
// entries.
func (r *batchRun) process(path string) (batchResult, error) {
	var res batchResult

	bf, err := readBadgeFile(path)
	if err != nil {
		return res, err
	}

	rel, err := filepath.Rel(r.inputDir, path)
	if err != nil {
		rel = path
	}

	integrity, err := index.Integrity(path)
	if err != nil {
		return res, err
	}
	lastModified := index.GetFileLastModified(path)
	history := index.GetFileCommitHistory(path, cfg.History)

	f, err := outputFormat(cfg.Format, bf.format)
	if err != nil {
		return res, err
	}

	var converted []any
	for _, doc := range bf.docs {
		vr := r.validator.Validate(doc)
		entry := index.Entry{
			SourceFile:    filepath.ToSlash(rel),
			Version:       string(vr.Version),
			Valid:         vr.IsValid,
			Errors:        vr.Errors,
			Warnings:      vr.Warnings,
			Integrity:     integrity,
			LastModified:  lastModified,
			CommitHistory: history,
		}
		if !vr.IsValid || (cfg.Strict && len(vr.Warnings) > 0) {
			res.failed = true
		}

		if nb, err := r.norm.Normalize(doc); err == nil {
			entry.ID = nb.ID
			entry.Name = nb.Name
			if nb.IssuerID != nil {
				entry.Issuer = *nb.IssuerID
			}
		}

		if badge.IsBadge(doc) {
			out, err := r.conv.Convert(doc, r.target.Name())
			if err != nil {
				entry.Valid = false
				entry.Errors = append(entry.Errors, err.Error())
				res.failed = true
			} else {
				converted = append(converted, out)
			}
		}
		res.entries = append(res.entries, entry)
	}

	if len(converted) == 0 {
		return res, nil
	}

	outRel := strings.TrimSuffix(rel, filepath.Ext(rel)) + "." + r.target.Name() + "." + f.Extension()
	// An input array stays an array, whatever its length.
	var out any = converted[0]
	if bf.array {
		out = converted
	}
	if err := codec.WriteFile(filepath.Join(r.outputDir, outRel), out, f); err != nil {
		return res, fmt.Errorf("failed to write %s: %w", outRel, err)
	}
	for i := range res.entries {
		res.entries[i].OutputFile = filepath.ToSlash(outRel)
	}
	return res, nil
}

// excludeOutputs drops previously converted documents when the output
// directory overlaps the input. The index itself lives in .well-known, which
// the walk skips.
func excludeOutputs(files []string, outputDir string) []string {
	absOut, err := filepath.Abs(outputDir)
	if err != nil {
		return files
	}
	kept := files[:0]
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			kept = append(kept, f)
			continue
		}
		if isConverted(abs) && strings.HasPrefix(abs, absOut+string(filepath.Separator)) {
			continue
		}
		kept = append(kept, f)
	}
	return kept
}

// isConverted reports whether name looks like <name>.<target>.<ext>.
func isConverted(path string) bool {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	for _, t := range converter.List() {
		if strings.HasSuffix(base, "."+t) {
			return true
		}
	}
	return false
}
