package cards

import (
	"context"
	"testing"
)

func TestSavedViewStoreSaveAndList(t *testing.T) {
	store := NewInMemorySavedViewStore()
	ctx := context.Background()
	viewer := ViewerContext{UserID: "u-1"}

	filters := FilterState{"region": "emea"}
	if err := store.SaveView(ctx, viewer, "dash-1", SavedView{Name: "EMEA", Filters: filters}); err != nil {
		t.Fatalf("SaveView: %v", err)
	}
	if err := store.SaveView(ctx, viewer, "dash-1", SavedView{Name: "APAC", Filters: FilterState{"region": "apac"}}); err != nil {
		t.Fatalf("SaveView: %v", err)
	}

	views, err := store.SavedViews(ctx, viewer, "dash-1")
	if err != nil {
		t.Fatalf("SavedViews: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("got %d views, want 2", len(views))
	}
	if views[0].Name != "APAC" || views[1].Name != "EMEA" {
		t.Fatalf("views not sorted by name: %q, %q", views[0].Name, views[1].Name)
	}
	if views[1].ID == "" {
		t.Fatal("saved view was not assigned an id")
	}

	// Mutating the caller's map must not leak into the store.
	filters["region"] = "amer"
	views, _ = store.SavedViews(ctx, viewer, "dash-1")
	if views[1].Filters["region"] != "emea" {
		t.Fatalf("stored filters mutated: %v", views[1].Filters)
	}
}

func TestSavedViewStoreReplaceByID(t *testing.T) {
	store := NewInMemorySavedViewStore()
	ctx := context.Background()
	viewer := ViewerContext{UserID: "u-1"}

	view := SavedView{ID: "sv-1", Name: "First", Filters: FilterState{"region": "emea"}}
	if err := store.SaveView(ctx, viewer, "dash-1", view); err != nil {
		t.Fatalf("SaveView: %v", err)
	}
	view.Name = "Renamed"
	if err := store.SaveView(ctx, viewer, "dash-1", view); err != nil {
		t.Fatalf("SaveView replace: %v", err)
	}

	views, _ := store.SavedViews(ctx, viewer, "dash-1")
	if len(views) != 1 {
		t.Fatalf("replace duplicated the view: %d entries", len(views))
	}
	if views[0].Name != "Renamed" {
		t.Fatalf("view name = %q", views[0].Name)
	}
}

func TestSavedViewStoreScopedPerViewerAndDashboard(t *testing.T) {
	store := NewInMemorySavedViewStore()
	ctx := context.Background()

	if err := store.SaveView(ctx, ViewerContext{UserID: "u-1"}, "dash-1", SavedView{Name: "Mine"}); err != nil {
		t.Fatalf("SaveView: %v", err)
	}

	other, _ := store.SavedViews(ctx, ViewerContext{UserID: "u-2"}, "dash-1")
	if len(other) != 0 {
		t.Fatalf("views leaked across users: %v", other)
	}
	elsewhere, _ := store.SavedViews(ctx, ViewerContext{UserID: "u-1"}, "dash-2")
	if len(elsewhere) != 0 {
		t.Fatalf("views leaked across dashboards: %v", elsewhere)
	}
}

func TestSavedViewStoreValidation(t *testing.T) {
	store := NewInMemorySavedViewStore()
	ctx := context.Background()

	if err := store.SaveView(ctx, ViewerContext{}, "dash-1", SavedView{Name: "x"}); err == nil {
		t.Fatal("anonymous viewer accepted")
	}
	if err := store.SaveView(ctx, ViewerContext{UserID: "u-1"}, "dash-1", SavedView{}); err == nil {
		t.Fatal("unnamed view accepted")
	}
}

func TestSavedViewStoreDelete(t *testing.T) {
	store := NewInMemorySavedViewStore()
	ctx := context.Background()
	viewer := ViewerContext{UserID: "u-1"}

	if err := store.SaveView(ctx, viewer, "dash-1", SavedView{ID: "sv-1", Name: "x"}); err != nil {
		t.Fatalf("SaveView: %v", err)
	}
	if err := store.DeleteView(ctx, viewer, "dash-1", "sv-1"); err != nil {
		t.Fatalf("DeleteView: %v", err)
	}
	views, _ := store.SavedViews(ctx, viewer, "dash-1")
	if len(views) != 0 {
		t.Fatalf("view not deleted: %v", views)
	}
	if err := store.DeleteView(ctx, viewer, "dash-1", "ghost"); err != nil {
		t.Fatalf("deleting unknown view should be a no-op: %v", err)
	}
}
