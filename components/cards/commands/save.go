package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	cards "github.com/goliatone/go-insight/components/cards"
)

// SaveDashboardInput persists the editor's working copy.
type SaveDashboardInput struct {
	Viewer cards.ViewerContext
}

type saveEditor interface {
	Save(ctx context.Context, viewer cards.ViewerContext) error
}

// SaveDashboardCommand persists dashboard edits through the editor.
type SaveDashboardCommand struct {
	editor    saveEditor
	telemetry Telemetry
}

// NewSaveDashboardCommand creates a command instance.
func NewSaveDashboardCommand(editor saveEditor, telemetry Telemetry) *SaveDashboardCommand {
	return &SaveDashboardCommand{editor: editor, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[SaveDashboardInput] = (*SaveDashboardCommand)(nil)

// Execute delegates to the dashboard editor.
func (c *SaveDashboardCommand) Execute(ctx context.Context, msg SaveDashboardInput) error {
	if c.editor == nil {
		return errors.New("save dashboard command requires editor")
	}
	if err := c.editor.Save(ctx, msg.Viewer); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "cards.dashboard.save", map[string]any{
		"user_id": msg.Viewer.UserID,
	})
	return nil
}
