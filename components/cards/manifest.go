package cards

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

const (
	manifestVersionV1 = "1"
	// ManifestVersion exposes the current manifest format version for tooling.
	ManifestVersion = manifestVersionV1
)

// DashboardManifest models a YAML/JSON manifest describing a dashboard and,
// optionally, local preview bindings for its cards.
type DashboardManifest struct {
	Version   string            `json:"version" yaml:"version"`
	Dashboard Dashboard         `json:"dashboard" yaml:"dashboard"`
	Previews  []ManifestPreview `json:"previews,omitempty" yaml:"previews,omitempty"`
	Source    string            `json:"-" yaml:"-"`
}

// ManifestPreview binds a placed card to a preview provider kind and its
// configuration.
type ManifestPreview struct {
	CardID string         `json:"card_id" yaml:"card_id"`
	Kind   string         `json:"kind" yaml:"kind"`
	Config map[string]any `json:"config,omitempty" yaml:"config,omitempty"`
}

// ReadManifest loads a manifest file from disk.
func ReadManifest(path string) (*DashboardManifest, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("cards: open manifest %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeManifest(f)
	if err != nil {
		return nil, fmt.Errorf("cards: decode manifest %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeManifest reads a manifest from any reader.
func DecodeManifest(r io.Reader) (*DashboardManifest, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc DashboardManifest
	if err := decoder.Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, fmt.Errorf("cards: manifest is empty")
		}
		return nil, fmt.Errorf("cards: parse manifest: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// Validate ensures the manifest satisfies required fields.
func (doc *DashboardManifest) Validate() error {
	if doc.Version != manifestVersionV1 {
		return fmt.Errorf("cards: unsupported manifest version %q", doc.Version)
	}
	if doc.Dashboard.ID == "" {
		return fmt.Errorf("cards: manifest dashboard is missing an id")
	}
	placed := make(map[string]struct{}, len(doc.Dashboard.Layout.Cards))
	for idx, item := range doc.Dashboard.Layout.Cards {
		if item.CardID == "" {
			return fmt.Errorf("cards: manifest layout item at index %d is missing card_id", idx)
		}
		if _, exists := placed[item.CardID]; exists {
			return fmt.Errorf("cards: manifest layout duplicates card %s", item.CardID)
		}
		placed[item.CardID] = struct{}{}
	}
	seenFilters := make(map[string]struct{}, len(doc.Dashboard.Filters))
	for _, def := range doc.Dashboard.Filters {
		if def.ID == "" {
			return fmt.Errorf("cards: manifest filter is missing an id")
		}
		if def.Type != FilterTypeCategory && def.Type != FilterTypeDateRange {
			return fmt.Errorf("cards: manifest filter %s has unknown type %q", def.ID, def.Type)
		}
		if _, exists := seenFilters[def.ID]; exists {
			return fmt.Errorf("cards: manifest duplicates filter %s", def.ID)
		}
		seenFilters[def.ID] = struct{}{}
	}
	for _, preview := range doc.Previews {
		if preview.CardID == "" {
			return fmt.Errorf("cards: manifest preview is missing card_id")
		}
		if preview.Kind == "" {
			return fmt.Errorf("cards: manifest preview for %s is missing kind", preview.CardID)
		}
		if _, ok := placed[preview.CardID]; !ok {
			return fmt.Errorf("cards: manifest preview references unplaced card %s", preview.CardID)
		}
	}
	return nil
}

func (doc *DashboardManifest) applyDefaults() {
	if doc.Version == "" {
		doc.Version = manifestVersionV1
	}
	doc.Dashboard.Layout.Normalize()
}

// BindPreviews registers the manifest's preview specs against an executor.
func (doc *DashboardManifest) BindPreviews(exec *PreviewExecutor) error {
	cardsByID := make(map[string]CardSummary, len(doc.Dashboard.Cards))
	for _, card := range doc.Dashboard.Cards {
		cardsByID[card.ID] = card
	}
	for _, preview := range doc.Previews {
		spec := PreviewSpec{
			Kind:   preview.Kind,
			Card:   cardsByID[preview.CardID],
			Config: preview.Config,
		}
		if err := exec.AddCard(preview.CardID, spec); err != nil {
			return fmt.Errorf("cards: bind preview %s: %w", preview.CardID, err)
		}
	}
	return nil
}

// InMemoryDashboardStore is a concurrency-safe dashboard store, typically
// seeded from manifests.
type InMemoryDashboardStore struct {
	mu   sync.RWMutex
	data map[string]Dashboard
}

var _ DashboardStore = (*InMemoryDashboardStore)(nil)

// NewInMemoryDashboardStore creates an empty store.
func NewInMemoryDashboardStore() *InMemoryDashboardStore {
	return &InMemoryDashboardStore{data: map[string]Dashboard{}}
}

// SeedManifest loads a manifest's dashboard into the store.
func (s *InMemoryDashboardStore) SeedManifest(doc *DashboardManifest) error {
	if doc == nil {
		return fmt.Errorf("cards: manifest document is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[doc.Dashboard.ID] = doc.Dashboard
	return nil
}

// GetDashboard implements DashboardStore.
func (s *InMemoryDashboardStore) GetDashboard(_ context.Context, dashboardID string) (Dashboard, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	dash, ok := s.data[dashboardID]
	if !ok {
		return Dashboard{}, fmt.Errorf("cards: dashboard %s not found", dashboardID)
	}
	return dash, nil
}

// UpdateDashboard implements DashboardStore.
func (s *InMemoryDashboardStore) UpdateDashboard(_ context.Context, dash Dashboard) error {
	if dash.ID == "" {
		return fmt.Errorf("cards: dashboard id is required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[dash.ID] = dash
	return nil
}
