package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	cards "github.com/goliatone/go-insight/components/cards"
)

// ApplyFilterInput applies one filter value on a live viewer.
type ApplyFilterInput struct {
	FilterID string
	Value    cards.FilterValue
}

type filterViewer interface {
	ApplyFilter(ctx context.Context, filterID string, value cards.FilterValue) error
	ClearAll(ctx context.Context) error
}

// ApplyFilterCommand routes filter changes into the viewer.
type ApplyFilterCommand struct {
	viewer    filterViewer
	telemetry Telemetry
}

// NewApplyFilterCommand creates a command instance.
func NewApplyFilterCommand(viewer filterViewer, telemetry Telemetry) *ApplyFilterCommand {
	return &ApplyFilterCommand{viewer: viewer, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ApplyFilterInput] = (*ApplyFilterCommand)(nil)

// Execute delegates to the live viewer.
func (c *ApplyFilterCommand) Execute(ctx context.Context, msg ApplyFilterInput) error {
	if c.viewer == nil {
		return errors.New("apply filter command requires viewer")
	}
	if err := c.viewer.ApplyFilter(ctx, msg.FilterID, msg.Value); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "cards.filter.apply", map[string]any{
		"filter_id": msg.FilterID,
	})
	return nil
}

// ClearFiltersInput resets every applied filter.
type ClearFiltersInput struct{}

// ClearFiltersCommand clears the viewer's filter state.
type ClearFiltersCommand struct {
	viewer    filterViewer
	telemetry Telemetry
}

// NewClearFiltersCommand creates a command instance.
func NewClearFiltersCommand(viewer filterViewer, telemetry Telemetry) *ClearFiltersCommand {
	return &ClearFiltersCommand{viewer: viewer, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ClearFiltersInput] = (*ClearFiltersCommand)(nil)

// Execute delegates to the live viewer.
func (c *ClearFiltersCommand) Execute(ctx context.Context, _ ClearFiltersInput) error {
	if c.viewer == nil {
		return errors.New("clear filters command requires viewer")
	}
	if err := c.viewer.ClearAll(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "cards.filter.clear", nil)
	return nil
}

// SaveViewInput stores the current filter state under a name.
type SaveViewInput struct {
	Viewer      cards.ViewerContext
	DashboardID string
	View        cards.SavedView
}

type viewStore interface {
	SaveView(ctx context.Context, viewer cards.ViewerContext, dashboardID string, view cards.SavedView) error
}

// SaveViewCommand persists a saved filter view.
type SaveViewCommand struct {
	store     viewStore
	telemetry Telemetry
}

// NewSaveViewCommand creates a command instance.
func NewSaveViewCommand(store viewStore, telemetry Telemetry) *SaveViewCommand {
	return &SaveViewCommand{store: store, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveViewInput] = (*SaveViewCommand)(nil)

// Execute delegates to the saved view store.
func (c *SaveViewCommand) Execute(ctx context.Context, msg SaveViewInput) error {
	if c.store == nil {
		return errors.New("save view command requires store")
	}
	if err := c.store.SaveView(ctx, msg.Viewer, msg.DashboardID, msg.View); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "cards.view.save", map[string]any{
		"dashboard_id": msg.DashboardID,
		"view":         msg.View.Name,
	})
	return nil
}
