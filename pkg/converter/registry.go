package converter

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/sirosfoundation/obkit/pkg/badge"
	"github.com/sirosfoundation/obkit/pkg/jsonld"
	"github.com/sirosfoundation/obkit/pkg/metrics"
)

// ErrUnknownTarget is returned for a target name nobody registered.
var ErrUnknownTarget = errors.New("converter: unknown target")

// Target produces documents of one badge version.
type Target interface {
	// Name returns the target identifier (e.g., "ob2", "ob3")
	Name() string

	// Description returns a human-readable description of the target
	Description() string

	// Version returns the badge version the target produces
	Version() badge.Version

	// From converts a document of the other version into this one
	From(value any) (map[string]any, error)
}

// Registry holds the registered targets.
type Registry struct {
	mu      sync.RWMutex
	targets map[string]Target
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		targets: make(map[string]Target),
	}
}

// Register adds a target to the registry
func (r *Registry) Register(t Target) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.targets[t.Name()] = t
}

// Get retrieves a target by name
func (r *Registry) Get(name string) (Target, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.targets[name]
	return t, ok
}

// List returns all registered target names
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ParseTarget resolves a target by name or by version label, ignoring case
// and surrounding space.
func (r *Registry) ParseTarget(s string) (Target, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if t, ok := r.Get(s); ok {
		return t, nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.targets {
		if strings.EqualFold(string(t.Version()), s) || t.Version().Number() == s {
			return t, nil
		}
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownTarget, s, strings.Join(r.listLocked(), ", "))
}

func (r *Registry) listLocked() []string {
	names := make([]string, 0, len(r.targets))
	for name := range r.targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// DefaultRegistry holds the ob2 and ob3 targets.
var DefaultRegistry = NewRegistry()

func init() {
	DefaultRegistry.Register(v2Target{})
	DefaultRegistry.Register(v3Target{})
}

// Register adds a target to the default registry
func Register(t Target) {
	DefaultRegistry.Register(t)
}

// Get retrieves a target from the default registry
func Get(name string) (Target, bool) {
	return DefaultRegistry.Get(name)
}

// List returns all target names from the default registry
func List() []string {
	return DefaultRegistry.List()
}

// ParseTarget resolves a target using the default registry
func ParseTarget(s string) (Target, error) {
	return DefaultRegistry.ParseTarget(s)
}

type v2Target struct{}

func (v2Target) Name() string                           { return "ob2" }
func (v2Target) Description() string                    { return "Open Badges 2.0 Assertion" }
func (v2Target) Version() badge.Version                 { return badge.OB2 }
func (v2Target) From(value any) (map[string]any, error) { return ConvertV3toV2(value) }

type v3Target struct{}

func (v3Target) Name() string                           { return "ob3" }
func (v3Target) Description() string                    { return "Open Badges 3.0 VerifiableCredential" }
func (v3Target) Version() badge.Version                 { return badge.OB3 }
func (v3Target) From(value any) (map[string]any, error) { return ConvertV2toV3(value) }

// Converter converts documents of either version to a named target.
type Converter struct {
	registry *Registry
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

// Option configures a Converter.
type Option func(c *Converter)

// WithRegistry sets the target registry.
func WithRegistry(r *Registry) Option {
	return func(c *Converter) {
		c.registry = r
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Converter) {
		c.logger = logger
	}
}

// WithMetrics records conversions by direction and result.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Converter) {
		c.metrics = m
	}
}

// New constructs a Converter over DefaultRegistry unless told otherwise.
func New(opts ...Option) *Converter {
	c := &Converter{
		registry: DefaultRegistry,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var defaultConverter = New()

// Convert converts value to target with the default Converter.
func Convert(value any, target string) (map[string]any, error) {
	return defaultConverter.Convert(value, target)
}

// Convert detects the version of value and converts it to target. A document
// already at the target version is returned as is.
func (c *Converter) Convert(value any, target string) (map[string]any, error) {
	t, err := c.registry.ParseTarget(target)
	if err != nil {
		return nil, err
	}
	from, err := badge.Detect(value)
	if err != nil {
		return nil, fmt.Errorf("converter: %w", err)
	}
	if from == t.Version() {
		c.logger.Debug("document already at target version", "version", from)
		m, _ := jsonld.AsObject(value)
		return m, nil
	}

	direction := strings.ToLower(string(from)) + "_to_" + t.Name()
	out, err := t.From(value)
	c.metrics.IncrementConversion(direction, err)
	if err != nil {
		c.logger.Warn("conversion failed", "direction", direction, "error", err)
		return nil, err
	}
	c.logger.Debug("converted document", "direction", direction, "id", out["id"])
	return out, nil
}
