// Package validation checks Open Badges documents against the field rules of
// their version and reports the outcome as data.
//
// Anything that breaks the document's own structural contract is an error;
// anything merely unusual is a warning. Unknown top-level keys are never
// reported: JSON-LD documents are open-world.
//
// A badge or issuer given only as an IRI is a warning, not an error. The
// discriminators accept the reference form, and every document they
// recognise with well-formed IRI and DateTime fields must validate; an error
// would fail badges that are correct but unresolved. Referenced documents
// are never fetched, so the warning says the referenced part was not
// checked. Callers that require embedded definitions can treat warnings as
// failures, as the CLI does with --strict.
package validation

import (
	"errors"
	"io"
	"log/slog"

	"github.com/sirosfoundation/obkit/pkg/badge"
	"github.com/sirosfoundation/obkit/pkg/jsonld"
	"github.com/sirosfoundation/obkit/pkg/metrics"
)

// Result is the report of one validation.
type Result struct {
	IsValid  bool          `json:"isValid" yaml:"isValid"`
	Errors   []string      `json:"errors" yaml:"errors"`
	Warnings []string      `json:"warnings" yaml:"warnings"`
	Version  badge.Version `json:"version,omitempty" yaml:"version,omitempty"`
}

func newResult() *Result {
	return &Result{Errors: []string{}, Warnings: []string{}}
}

func (r *Result) addError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.IsValid = false
}

func (r *Result) addWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// Validator validates badges.
type Validator struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// Option configures a Validator.
type Option func(v *Validator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(v *Validator) {
		v.logger = logger
	}
}

// WithMetrics records every validation.
func WithMetrics(m *metrics.Metrics) Option {
	return func(v *Validator) {
		v.metrics = m
	}
}

// New constructs a Validator.
func New(opts ...Option) *Validator {
	v := &Validator{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

var defaultValidator = New()

// ValidateBadge validates value with a default Validator.
func ValidateBadge(value any) *Result {
	return defaultValidator.Validate(value)
}

// Validate validates value. It never fails: problems are reported in the
// Result.
func (v *Validator) Validate(value any) *Result {
	r := v.validate(value)
	v.metrics.IncrementValidation(string(r.Version), r.IsValid, len(r.Errors), len(r.Warnings))
	v.logger.Debug("validated badge",
		"version", r.Version,
		"valid", r.IsValid,
		"errors", len(r.Errors),
		"warnings", len(r.Warnings))
	return r
}

func (v *Validator) validate(value any) *Result {
	r := newResult()

	doc, ok := jsonld.AsObject(value)
	if !ok {
		r.addError("Badge must be an object")
		return r
	}
	if !jsonld.IsObject(doc) {
		r.addError("Badge must be a valid JSON-LD object with @context and type properties")
		return r
	}

	version, err := badge.Detect(doc)
	switch {
	case errors.Is(err, badge.ErrAmbiguous):
		v.logger.Warn("document matches both badge versions", "id", doc["id"])
		r.addError("Badge matches both the OB2 Assertion and OB3 VerifiableCredential formats")
		return r
	case err != nil:
		r.addError("Badge is not a valid OB2 Assertion or OB3 VerifiableCredential")
		return r
	}

	r.IsValid = true
	r.Version = version
	switch version {
	case badge.OB2:
		validateAssertion(doc, r)
	case badge.OB3:
		validateCredential(doc, r)
	}
	return r
}
