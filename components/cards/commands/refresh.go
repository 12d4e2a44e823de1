package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
)

// RefreshDashboardInput re-executes every card on the live viewer.
type RefreshDashboardInput struct{}

type refreshViewer interface {
	Load(ctx context.Context) error
}

// RefreshDashboardCommand triggers a full viewer reload.
type RefreshDashboardCommand struct {
	viewer    refreshViewer
	telemetry Telemetry
}

// NewRefreshDashboardCommand creates the command.
func NewRefreshDashboardCommand(viewer refreshViewer, telemetry Telemetry) *RefreshDashboardCommand {
	return &RefreshDashboardCommand{viewer: viewer, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RefreshDashboardInput] = (*RefreshDashboardCommand)(nil)

// Execute reloads every card.
func (c *RefreshDashboardCommand) Execute(ctx context.Context, _ RefreshDashboardInput) error {
	if c.viewer == nil {
		return errors.New("refresh command requires viewer")
	}
	if err := c.viewer.Load(ctx); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "cards.dashboard.refresh", nil)
	return nil
}
