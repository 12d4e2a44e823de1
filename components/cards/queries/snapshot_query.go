package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"
	cards "github.com/goliatone/go-insight/components/cards"
)

// SnapshotInput asks for the viewer's current card states.
type SnapshotInput struct{}

type snapshotViewer interface {
	Snapshot() []cards.CardView
	GridItems() []cards.GridItem
}

// SnapshotQuery reads the viewer's per-card state in layout order.
type SnapshotQuery struct {
	viewer snapshotViewer
}

// NewSnapshotQuery builds the query.
func NewSnapshotQuery(viewer snapshotViewer) *SnapshotQuery {
	return &SnapshotQuery{viewer: viewer}
}

var _ gocommand.Querier[SnapshotInput, []cards.CardView] = (*SnapshotQuery)(nil)

// Query returns the current card views.
func (q *SnapshotQuery) Query(_ context.Context, _ SnapshotInput) ([]cards.CardView, error) {
	return q.viewer.Snapshot(), nil
}

// GridQuery exposes the read-only grid items for the layout component.
type GridQuery struct {
	viewer snapshotViewer
}

// NewGridQuery builds the query.
func NewGridQuery(viewer snapshotViewer) *GridQuery {
	return &GridQuery{viewer: viewer}
}

var _ gocommand.Querier[SnapshotInput, []cards.GridItem] = (*GridQuery)(nil)

// Query returns the viewer's grid items.
func (q *GridQuery) Query(_ context.Context, _ SnapshotInput) ([]cards.GridItem, error) {
	return q.viewer.GridItems(), nil
}
