package cards

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// ProviderHook lets packages register card kinds/providers during init().
type ProviderHook func(reg *Registry) error

var (
	globalHookMu sync.Mutex
	globalHooks  []ProviderHook
)

// RegisterProviderHook registers a hook executed against new registries.
func RegisterProviderHook(h ProviderHook) {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	globalHooks = append(globalHooks, h)
}

// Registry maps card kinds to preview providers, with hook support.
type Registry struct {
	mu        sync.RWMutex
	kinds     map[string]CardKind
	providers map[string]PreviewProvider
}

// NewRegistry builds an empty registry and applies global hooks.
func NewRegistry() *Registry {
	reg := &Registry{
		kinds:     map[string]CardKind{},
		providers: map[string]PreviewProvider{},
	}
	reg.registerDefaults()
	_ = reg.ApplyHooks()
	return reg
}

func (r *Registry) registerDefaults() {
	for _, kind := range DefaultCardKinds() {
		_ = r.RegisterKind(kind)
	}
}

// ApplyHooks executes registered provider hooks.
func (r *Registry) ApplyHooks() error {
	globalHookMu.Lock()
	defer globalHookMu.Unlock()
	for _, hook := range globalHooks {
		if err := hook(r); err != nil {
			return err
		}
	}
	return nil
}

// RegisterKind stores card kind metadata.
func (r *Registry) RegisterKind(kind CardKind) error {
	if kind.Code == "" {
		return fmt.Errorf("cards: card kind code is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.kinds[kind.Code] = kind
	return nil
}

// RegisterProvider associates a provider implementation with a card kind.
func (r *Registry) RegisterProvider(code string, provider PreviewProvider) error {
	if code == "" {
		return fmt.Errorf("cards: card kind code is required to register provider")
	}
	if provider == nil {
		return fmt.Errorf("cards: provider cannot be nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.kinds[code]; !ok {
		return fmt.Errorf("cards: card kind %s not found", code)
	}
	r.providers[code] = provider
	return nil
}

// Kind fetches a card kind by code.
func (r *Registry) Kind(code string) (CardKind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kind, ok := r.kinds[code]
	return kind, ok
}

// Provider fetches a preview provider by card kind code.
func (r *Registry) Provider(code string) (PreviewProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	provider, ok := r.providers[code]
	return provider, ok
}

// Kinds returns all registered card kinds.
func (r *Registry) Kinds() []CardKind {
	r.mu.RLock()
	defer r.mu.RUnlock()
	kinds := make([]CardKind, 0, len(r.kinds))
	for _, kind := range r.kinds {
		kinds = append(kinds, kind)
	}
	return kinds
}

// DefaultCardKinds lists the chart kinds the built-in providers cover.
func DefaultCardKinds() []CardKind {
	return []CardKind{
		{Code: "card.chart.bar", Name: "Bar chart"},
		{Code: "card.chart.line", Name: "Line chart"},
		{Code: "card.chart.pie", Name: "Pie chart"},
		{Code: "card.chart.scatter", Name: "Scatter chart"},
		{Code: "card.chart.gauge", Name: "Gauge"},
	}
}

// PreviewSpec binds a card id to a kind and its provider configuration.
type PreviewSpec struct {
	Kind   string
	Card   CardSummary
	Config map[string]any
}

// PreviewExecutor adapts a registry into a CardExecutor so viewers can run
// fully local, backend-free dashboards.
type PreviewExecutor struct {
	registry *Registry
	viewer   ViewerContext

	mu    sync.RWMutex
	specs map[string]PreviewSpec
}

var _ CardExecutor = (*PreviewExecutor)(nil)

// NewPreviewExecutor builds an executor over the registry.
func NewPreviewExecutor(registry *Registry, viewer ViewerContext) *PreviewExecutor {
	if registry == nil {
		registry = NewRegistry()
	}
	return &PreviewExecutor{
		registry: registry,
		viewer:   viewer,
		specs:    map[string]PreviewSpec{},
	}
}

// AddCard registers a card spec for preview execution.
func (p *PreviewExecutor) AddCard(cardID string, spec PreviewSpec) error {
	if cardID == "" {
		return errMissingCardID
	}
	if _, ok := p.registry.Provider(spec.Kind); !ok {
		return fmt.Errorf("cards: no provider registered for kind %s", spec.Kind)
	}
	if spec.Card.ID == "" {
		spec.Card.ID = cardID
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.specs[cardID] = spec
	return nil
}

// ExecuteCard implements CardExecutor against local preview providers.
func (p *PreviewExecutor) ExecuteCard(ctx context.Context, cardID string, opts ExecuteOptions) (CardExecuteResponse, error) {
	p.mu.RLock()
	spec, ok := p.specs[cardID]
	p.mu.RUnlock()
	if !ok {
		return CardExecuteResponse{}, fmt.Errorf("cards: card %s is not registered for preview", cardID)
	}
	provider, found := p.registry.Provider(spec.Kind)
	if !found {
		return CardExecuteResponse{}, fmt.Errorf("cards: no provider registered for kind %s", spec.Kind)
	}

	started := time.Now()
	html, err := provider.RenderPreview(ctx, PreviewContext{
		Card:    spec.Card,
		Viewer:  p.viewer,
		Filters: opts.Filters,
		Config:  spec.Config,
	})
	if err != nil {
		return CardExecuteResponse{}, err
	}
	return CardExecuteResponse{
		CardID:          cardID,
		HTML:            html,
		ExecutionTimeMS: float64(time.Since(started).Microseconds()) / 1000,
	}, nil
}
