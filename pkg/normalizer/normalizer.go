// Package normalizer builds flat, version-tagged, display-ready records from
// Open Badges 2.0 and 3.0 documents, and sorts, filters and groups sets of
// them.
package normalizer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sirosfoundation/obkit/pkg/badge"
	"github.com/sirosfoundation/obkit/pkg/jsonld"
	"github.com/sirosfoundation/obkit/pkg/metrics"
	"github.com/sirosfoundation/obkit/pkg/narrative"
)

// ErrInvalidBadge is returned for input that is neither an OB2 Assertion nor
// an OB3 VerifiableCredential.
var ErrInvalidBadge = errors.New("invalid badge format")

// DefaultName is used when no badge name can be determined.
const DefaultName = "Unnamed Badge"

// NormalizedBadge is the common view of a badge. Nil pointers are values that
// could not be determined and serialise as null.
type NormalizedBadge struct {
	ID             string        `json:"id" yaml:"id"`
	Type           badge.Version `json:"type" yaml:"type"`
	Name           string        `json:"name" yaml:"name"`
	Description    *string       `json:"description" yaml:"description"`
	ImageURL       *string       `json:"imageUrl" yaml:"imageUrl"`
	IssuerName     *string       `json:"issuerName" yaml:"issuerName"`
	IssuerID       *string       `json:"issuerId" yaml:"issuerId"`
	IssuanceDate   string        `json:"issuanceDate" yaml:"issuanceDate"`
	ExpirationDate *string       `json:"expirationDate" yaml:"expirationDate"`
	IsExpired      bool          `json:"isExpired" yaml:"isExpired"`
	RecipientID    *string       `json:"recipientId" yaml:"recipientId"`
	Criteria       *string       `json:"criteria" yaml:"criteria"`
	CriteriaHTML   *string       `json:"criteriaHtml,omitempty" yaml:"criteriaHtml,omitempty"`
	Evidence       *string       `json:"evidence" yaml:"evidence"`

	// RawBadge is the input document itself, neither copied nor modified.
	RawBadge any `json:"rawBadge" yaml:"rawBadge"`
}

// Normalizer normalizes badges.
type Normalizer struct {
	logger      *slog.Logger
	metrics     *metrics.Metrics
	now         func() time.Time
	concurrency int
	renderer    *narrative.Renderer
}

// Option configures a Normalizer.
type Option func(n *Normalizer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = logger
	}
}

// WithMetrics records normalized and dropped documents.
func WithMetrics(m *metrics.Metrics) Option {
	return func(n *Normalizer) {
		n.metrics = m
	}
}

// WithClock sets the clock used to decide expiry.
func WithClock(now func() time.Time) Option {
	return func(n *Normalizer) {
		n.now = now
	}
}

// WithConcurrency bounds the number of documents normalized at once by
// NormalizeBadgesContext. Values below one mean one.
func WithConcurrency(limit int) Option {
	return func(n *Normalizer) {
		n.concurrency = limit
	}
}

// WithRenderedCriteria renders the criteria narrative as HTML into
// CriteriaHTML.
func WithRenderedCriteria(r *narrative.Renderer) Option {
	return func(n *Normalizer) {
		n.renderer = r
	}
}

// New constructs a Normalizer.
func New(opts ...Option) *Normalizer {
	n := &Normalizer{
		logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:         time.Now,
		concurrency: 1,
	}
	for _, opt := range opts {
		opt(n)
	}
	if n.concurrency < 1 {
		n.concurrency = 1
	}
	return n
}

var defaultNormalizer = New()

// NormalizeBadge normalizes one badge with a default Normalizer. It returns
// ErrInvalidBadge for anything that is not a badge.
func NormalizeBadge(value any) (*NormalizedBadge, error) {
	return defaultNormalizer.Normalize(value)
}

// NormalizeBadges normalizes a batch with a default Normalizer, dropping
// entries that are not badges.
func NormalizeBadges(values []any) []NormalizedBadge {
	return defaultNormalizer.NormalizeBadges(values)
}

// Normalize normalizes one badge. A document matching both versions is
// rejected with an error wrapping both ErrInvalidBadge and
// badge.ErrAmbiguous.
func (n *Normalizer) Normalize(value any) (*NormalizedBadge, error) {
	version, err := badge.Detect(value)
	switch {
	case errors.Is(err, badge.ErrAmbiguous):
		return nil, fmt.Errorf("%w: %w", ErrInvalidBadge, err)
	case err != nil:
		return nil, ErrInvalidBadge
	}

	id, _ := jsonld.String(value, "id")
	out := &NormalizedBadge{
		ID:             id,
		Type:           version,
		Name:           DefaultName,
		Description:    optional(badge.Description(value)),
		ImageURL:       optional(badge.ImageURL(value)),
		IssuerName:     optional(badge.IssuerName(value)),
		IssuerID:       optional(badge.IssuerID(value)),
		ExpirationDate: optional(badge.ExpirationDate(value)),
		IsExpired:      badge.IsExpiredAt(value, n.now()),
		RecipientID:    optional(badge.RecipientIdentity(value)),
		Criteria:       optional(badge.CriteriaNarrative(value)),
		RawBadge:       value,
	}
	if name, ok := badge.Name(value); ok {
		out.Name = name
	}
	if issued, ok := badge.IssuanceDate(value); ok {
		out.IssuanceDate = issued
	}
	if ev, ok := badge.Evidence(value); ok {
		out.Evidence = optional(jsonld.String(ev, "id"))
	}
	if n.renderer != nil && out.Criteria != nil {
		html, err := n.renderer.HTML(*out.Criteria)
		if err != nil {
			n.logger.Warn("failed to render criteria", "id", id, "error", err)
		} else {
			out.CriteriaHTML = &html
		}
	}

	n.metrics.IncrementNormalized(string(version))
	return out, nil
}

// NormalizeBadges normalizes values in order. Entries that are not badges
// are dropped; they never abort the batch.
func (n *Normalizer) NormalizeBadges(values []any) []NormalizedBadge {
	out := make([]NormalizedBadge, 0, len(values))
	for i, v := range values {
		nb, err := n.Normalize(v)
		if err != nil {
			n.dropped(i, err)
			continue
		}
		out = append(out, *nb)
	}
	return out
}

// NormalizeBadgesContext is NormalizeBadges spread over the configured number
// of goroutines. The output keeps input order. It fails only when ctx is
// done.
func (n *Normalizer) NormalizeBadgesContext(ctx context.Context, values []any) ([]NormalizedBadge, error) {
	results := make([]*NormalizedBadge, len(values))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(n.concurrency)
	for i, v := range values {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			nb, err := n.Normalize(v)
			if err != nil {
				n.dropped(i, err)
				return nil
			}
			results[i] = nb
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]NormalizedBadge, 0, len(values))
	for _, nb := range results {
		if nb != nil {
			out = append(out, *nb)
		}
	}
	return out, nil
}

func (n *Normalizer) dropped(index int, err error) {
	n.metrics.IncrementDropped()
	n.logger.Debug("dropped invalid badge from batch", "index", index, "error", err)
}

func optional(s string, ok bool) *string {
	if !ok {
		return nil
	}
	return &s
}
