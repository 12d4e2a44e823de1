package cards

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"
)

// InMemorySavedViewStore provides a concurrency-safe default store for saved
// filter views.
type InMemorySavedViewStore struct {
	mu   sync.RWMutex
	data map[string][]SavedView
}

var _ SavedViewStore = (*InMemorySavedViewStore)(nil)

// NewInMemorySavedViewStore creates an empty saved view store.
func NewInMemorySavedViewStore() *InMemorySavedViewStore {
	return &InMemorySavedViewStore{
		data: make(map[string][]SavedView),
	}
}

// SaveView persists a named filter state for a viewer. A view without an ID
// gets one assigned; saving an existing ID replaces the stored view. The
// filter state is cloned on the way in.
func (s *InMemorySavedViewStore) SaveView(_ context.Context, viewer ViewerContext, dashboardID string, view SavedView) error {
	if viewer.UserID == "" {
		return fmt.Errorf("cards: saved views require a viewer user id")
	}
	if view.Name == "" {
		return fmt.Errorf("cards: saved view requires a name")
	}
	if view.ID == "" {
		view.ID = uuid.NewString()
	}
	view.Filters = view.Filters.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.key(viewer, dashboardID)
	views := s.data[key]
	for i := range views {
		if views[i].ID == view.ID {
			views[i] = view
			return nil
		}
	}
	s.data[key] = append(views, view)
	return nil
}

// SavedViews lists a viewer's saved views for a dashboard, sorted by name.
func (s *InMemorySavedViewStore) SavedViews(_ context.Context, viewer ViewerContext, dashboardID string) ([]SavedView, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stored := s.data[s.key(viewer, dashboardID)]
	views := make([]SavedView, 0, len(stored))
	for _, view := range stored {
		view.Filters = view.Filters.Clone()
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].Name < views[j].Name })
	return views, nil
}

// DeleteView removes a saved view. Deleting an unknown view is not an error.
func (s *InMemorySavedViewStore) DeleteView(_ context.Context, viewer ViewerContext, dashboardID, viewID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := s.key(viewer, dashboardID)
	views := s.data[key]
	kept := views[:0]
	for _, view := range views {
		if view.ID == viewID {
			continue
		}
		kept = append(kept, view)
	}
	s.data[key] = kept
	return nil
}

func (s *InMemorySavedViewStore) key(viewer ViewerContext, dashboardID string) string {
	return viewer.UserID + "::" + dashboardID
}
