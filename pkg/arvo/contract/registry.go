package contract

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/randalmurphal/arvo/pkg/arvo"
	"github.com/randalmurphal/arvo/pkg/arvo/observability"
	"github.com/randalmurphal/arvo/pkg/arvo/semver"
)

// registryConfig holds the observability collaborators of a registry.
type registryConfig struct {
	spans   observability.SpanManager
	metrics observability.MetricsRecorder
	logger  *slog.Logger
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		spans:   observability.NewSpanManager(),
		metrics: observability.NewMetricsRecorder(),
	}
}

// RegistryOption configures a Registry.
type RegistryOption func(*registryConfig)

// WithSpanManager sets the span manager used around resolution. Default:
// OTel via the global tracer provider; use observability.NoopSpanManager{}
// to disable.
func WithSpanManager(spans observability.SpanManager) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.spans = spans
	}
}

// WithMetrics sets the metrics recorder. Default: OTel via the global meter
// provider; use observability.NoopMetrics{} to disable.
func WithMetrics(metrics observability.MetricsRecorder) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.metrics = metrics
	}
}

// WithLogger sets the logger. Default: nil (no logging).
func WithLogger(logger *slog.Logger) RegistryOption {
	return func(cfg *registryConfig) {
		cfg.logger = logger
	}
}

// Registry is a thread-safe collection of contracts indexed by URI.
// It uses sync.RWMutex for read-heavy workloads: registration happens at
// startup, resolution on every inbound event.
type Registry struct {
	mu        sync.RWMutex
	contracts map[string]*Contract
	cfg       registryConfig
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	return &Registry{
		contracts: make(map[string]*Contract),
		cfg:       cfg,
	}
}

// Register adds a contract to the registry. Registering a second contract
// under an already-present URI fails with ErrDuplicateURI; contracts are
// immutable, so there is nothing to update in place.
func (r *Registry) Register(c *Contract) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.contracts[c.URI()]; exists {
		return fmt.Errorf("contract %q: %w", c.URI(), ErrDuplicateURI)
	}
	r.contracts[c.URI()] = c
	observability.LogContractRegistered(r.cfg.logger, c.URI(), len(c.ordered))
	return nil
}

// RegisterMany adds multiple contracts, stopping at the first failure.
func (r *Registry) RegisterMany(contracts ...*Contract) error {
	for _, c := range contracts {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// Get returns the contract for a URI and whether it exists.
func (r *Registry) Get(uri string) (*Contract, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contracts[uri]
	return c, ok
}

// Has returns true if a contract is registered under the URI.
func (r *Registry) Has(uri string) bool {
	_, ok := r.Get(uri)
	return ok
}

// Deregister removes the contract registered under the URI.
func (r *Registry) Deregister(uri string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.contracts, uri)
}

// Resolve parses a dataschema value ("{uri}/{version}") and resolves it to
// the versioned view of the registered contract. The wildcard version
// resolves to the contract's latest version.
func (r *Registry) Resolve(ctx context.Context, dataschema string) (*Versioned, error) {
	uri, version, err := ParseDataschema(dataschema)
	if err != nil {
		return nil, err
	}
	ctx, span := r.cfg.spans.StartContractSpan(ctx, "arvo.contract.resolve", uri)
	v, err := r.resolve(uri, version)
	r.cfg.metrics.RecordContractResolution(ctx, uri, version, err)
	r.cfg.spans.EndSpanWithError(span, err)
	if err != nil {
		return nil, err
	}
	observability.LogContractResolved(r.cfg.logger, uri, version, v.Version())
	return v, nil
}

func (r *Registry) resolve(uri, version string) (*Versioned, error) {
	c, ok := r.Get(uri)
	if !ok {
		return nil, fmt.Errorf("contract %q: %w", uri, ErrNotRegistered)
	}
	if semver.IsWildcard(version) {
		return c.Version(VersionLatest)
	}
	return c.Version(version)
}

// ResolveEvent resolves the contract version an event was stamped with,
// via its dataschema attribute.
func (r *Registry) ResolveEvent(ctx context.Context, e *arvo.Event) (*Versioned, error) {
	if e.DataSchema == "" {
		return nil, fmt.Errorf("event %q carries no dataschema", e.ID)
	}
	return r.Resolve(ctx, e.DataSchema)
}

// URIs returns the registered contract URIs in sorted order.
func (r *Registry) URIs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	uris := make([]string, 0, len(r.contracts))
	for uri := range r.contracts {
		uris = append(uris, uri)
	}
	sort.Strings(uris)
	return uris
}

// Len returns the number of registered contracts.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contracts)
}

// Range iterates over a snapshot of the registry. fn is called for each
// contract; returning false stops the iteration. Registering during
// iteration is safe and does not affect the snapshot.
func (r *Registry) Range(fn func(uri string, c *Contract) bool) {
	r.mu.RLock()
	snapshot := make(map[string]*Contract, len(r.contracts))
	for uri, c := range r.contracts {
		snapshot[uri] = c
	}
	r.mu.RUnlock()

	for uri, c := range snapshot {
		if !fn(uri, c) {
			return
		}
	}
}
