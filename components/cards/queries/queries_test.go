package queries

import (
	"context"
	"errors"
	"testing"

	cards "github.com/goliatone/go-insight/components/cards"
)

func TestSnapshotQuery(t *testing.T) {
	viewer := &stubSnapshotViewer{
		views: []cards.CardView{
			{CardID: "card-a", State: cards.StateRendered},
			{CardID: "card-b", State: cards.StateErrored},
		},
	}
	q := NewSnapshotQuery(viewer)
	views, err := q.Query(context.Background(), SnapshotInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 views, got %d", len(views))
	}
	if views[0].CardID != "card-a" {
		t.Fatalf("first view = %q", views[0].CardID)
	}
}

func TestGridQuery(t *testing.T) {
	viewer := &stubSnapshotViewer{
		items: []cards.GridItem{{I: "card-a", W: 4, H: 3, Static: true}},
	}
	q := NewGridQuery(viewer)
	items, err := q.Query(context.Background(), SnapshotInput{})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(items) != 1 || !items[0].Static {
		t.Fatalf("items = %+v", items)
	}
}

func TestDashboardQuery(t *testing.T) {
	store := &stubStore{dash: cards.Dashboard{ID: "dash-1", Name: "Sales"}}
	q := NewDashboardQuery(store)
	dash, err := q.Query(context.Background(), "dash-1")
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if dash.Name != "Sales" {
		t.Fatalf("dashboard name = %q", dash.Name)
	}
	if store.lastID != "dash-1" {
		t.Fatalf("store queried with %q", store.lastID)
	}
}

func TestDashboardQueryPropagatesError(t *testing.T) {
	store := &stubStore{err: errors.New("not found")}
	q := NewDashboardQuery(store)
	if _, err := q.Query(context.Background(), "ghost"); err == nil {
		t.Fatalf("expected store error")
	}
}

func TestSavedViewsQuery(t *testing.T) {
	store := &stubStore{views: []cards.SavedView{{ID: "sv-1", Name: "EMEA"}}}
	q := NewSavedViewsQuery(store)
	views, err := q.Query(context.Background(), SavedViewsInput{
		Viewer:      cards.ViewerContext{UserID: "u-1"},
		DashboardID: "dash-1",
	})
	if err != nil {
		t.Fatalf("Query returned error: %v", err)
	}
	if len(views) != 1 || views[0].Name != "EMEA" {
		t.Fatalf("views = %+v", views)
	}
}

type stubSnapshotViewer struct {
	views []cards.CardView
	items []cards.GridItem
}

func (s *stubSnapshotViewer) Snapshot() []cards.CardView  { return s.views }
func (s *stubSnapshotViewer) GridItems() []cards.GridItem { return s.items }

type stubStore struct {
	dash   cards.Dashboard
	views  []cards.SavedView
	err    error
	lastID string
}

func (s *stubStore) GetDashboard(_ context.Context, dashboardID string) (cards.Dashboard, error) {
	s.lastID = dashboardID
	return s.dash, s.err
}

func (s *stubStore) SavedViews(context.Context, cards.ViewerContext, string) ([]cards.SavedView, error) {
	return s.views, s.err
}
