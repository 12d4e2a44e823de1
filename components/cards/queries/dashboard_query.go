package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	cards "github.com/goliatone/go-insight/components/cards"
)

type dashboardStore interface {
	GetDashboard(ctx context.Context, dashboardID string) (cards.Dashboard, error)
}

// DashboardQuery loads a dashboard definition by id.
type DashboardQuery struct {
	store dashboardStore
}

// NewDashboardQuery builds the query.
func NewDashboardQuery(store dashboardStore) *DashboardQuery {
	return &DashboardQuery{store: store}
}

var _ gocommand.Querier[string, cards.Dashboard] = (*DashboardQuery)(nil)

// Query fetches the dashboard.
func (q *DashboardQuery) Query(ctx context.Context, dashboardID string) (cards.Dashboard, error) {
	return q.store.GetDashboard(ctx, dashboardID)
}

// SavedViewsInput identifies a saved view listing request.
type SavedViewsInput struct {
	Viewer      cards.ViewerContext
	DashboardID string
}

type savedViewStore interface {
	SavedViews(ctx context.Context, viewer cards.ViewerContext, dashboardID string) ([]cards.SavedView, error)
}

// SavedViewsQuery lists a viewer's saved filter views for a dashboard.
type SavedViewsQuery struct {
	store savedViewStore
}

// NewSavedViewsQuery builds the query.
func NewSavedViewsQuery(store savedViewStore) *SavedViewsQuery {
	return &SavedViewsQuery{store: store}
}

var _ gocommand.Querier[SavedViewsInput, []cards.SavedView] = (*SavedViewsQuery)(nil)

// Query lists the saved views.
func (q *SavedViewsQuery) Query(ctx context.Context, input SavedViewsInput) ([]cards.SavedView, error) {
	return q.store.SavedViews(ctx, input.Viewer, input.DashboardID)
}
