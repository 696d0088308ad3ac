package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/obkit/pkg/badge"
	"github.com/sirosfoundation/obkit/pkg/codec"
	"github.com/sirosfoundation/obkit/pkg/config"
	"github.com/sirosfoundation/obkit/pkg/narrative"
	"github.com/sirosfoundation/obkit/pkg/normalizer"
)

var (
	normalizeSort      string
	normalizeDesc      bool
	normalizeSearch    string
	normalizeType      string
	normalizeIssuer    string
	normalizeRecipient string
	normalizeExpired   string
	normalizeGroupBy   string
	normalizeRender    bool
	normalizeFormat    string
	normalizeOutput    string
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <file>...",
	Short: "Normalize badges into one flat view",
	Long: `Normalize Open Badges 2.0 and 3.0 documents into a common flat view.

Documents that are not badges are dropped. The result can be filtered,
sorted and grouped before it is written.

Example:
  obkit normalize badges/*.json --sort issuanceDate --desc
  obkit normalize wallet.json --type OB3 --expired false --group-by issuerName
  obkit normalize wallet.json --search python --format yaml -o badges.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)

	normalizeCmd.Flags().StringVar(&normalizeSort, "sort", "", "Field to sort by (name, issuanceDate, ...)")
	normalizeCmd.Flags().BoolVar(&normalizeDesc, "desc", false, "Sort in descending order")
	normalizeCmd.Flags().StringVar(&normalizeSearch, "search", "", "Keep badges whose name, description, issuer or criteria contain this term")
	normalizeCmd.Flags().StringVar(&normalizeType, "type", "all", "Keep badges of this version: OB2, OB3 or all")
	normalizeCmd.Flags().StringVar(&normalizeIssuer, "issuer", "", "Keep badges from this issuer id")
	normalizeCmd.Flags().StringVar(&normalizeRecipient, "recipient", "", "Keep badges for this recipient id")
	normalizeCmd.Flags().StringVar(&normalizeExpired, "expired", "", "Keep only expired (true) or unexpired (false) badges")
	normalizeCmd.Flags().StringVar(&normalizeGroupBy, "group-by", "", "Group the result by this field")
	normalizeCmd.Flags().BoolVar(&normalizeRender, "render", false, "Render criteria narratives as HTML")
	normalizeCmd.Flags().StringVarP(&normalizeFormat, "format", "f", "", "Output format: json, yaml or cbor (default: json)")
	normalizeCmd.Flags().StringVarP(&normalizeOutput, "output", "o", "", "Output file (default: stdout)")
}

func runNormalize(cmd *cobra.Command, args []string) error {
	cfg.Merge(&config.Config{
		Format:          normalizeFormat,
		RenderNarrative: normalizeRender,
	})

	var docs []any
	for _, path := range args {
		d, _, err := readDocuments(path)
		if err != nil {
			return err
		}
		docs = append(docs, d...)
	}

	opts := []normalizer.Option{
		normalizer.WithLogger(logger),
		normalizer.WithConcurrency(cfg.Concurrency),
	}
	if cfg.RenderNarrative {
		opts = append(opts, normalizer.WithRenderedCriteria(narrative.NewRenderer()))
	}

	list, err := normalizer.New(opts...).NormalizeBadgesContext(cmd.Context(), docs)
	if err != nil {
		return err
	}

	list, err = applyFilters(list)
	if err != nil {
		return err
	}

	if normalizeSort != "" {
		field, err := normalizer.ParseField(normalizeSort)
		if err != nil {
			return err
		}
		tag, err := cfg.LanguageTag()
		if err != nil {
			return err
		}
		dir := normalizer.Ascending
		if normalizeDesc {
			dir = normalizer.Descending
		}
		list = normalizer.SortBadgesLocale(list, field, dir, tag)
	}

	logger.Info("Normalized badges", "documents", len(docs), "badges", len(list))

	f, err := outputFormat(cfg.Format, codec.JSON)
	if err != nil {
		return err
	}

	var out any = list
	if normalizeGroupBy != "" {
		field, err := normalizer.ParseField(normalizeGroupBy)
		if err != nil {
			return err
		}
		out = normalizer.GroupBadges(list, field)
	}

	return writeOutput(cmd.OutOrStdout(), normalizeOutput, out, f)
}

func applyFilters(list []normalizer.NormalizedBadge) ([]normalizer.NormalizedBadge, error) {
	list = normalizer.FilterBadgesBySearchTerm(list, normalizeSearch)
	list = normalizer.FilterBadgesByType(list, badge.Version(strings.ToUpper(normalizeType)))
	if normalizeIssuer != "" {
		list = normalizer.FilterBadgesByIssuer(list, normalizeIssuer)
	}
	if normalizeRecipient != "" {
		list = normalizer.FilterBadgesByRecipient(list, normalizeRecipient)
	}
	if normalizeExpired != "" {
		expired, err := strconv.ParseBool(normalizeExpired)
		if err != nil {
			return nil, fmt.Errorf("invalid --expired value %q: %w", normalizeExpired, err)
		}
		list = normalizer.FilterBadgesByExpiration(list, expired)
	}
	return list, nil
}
