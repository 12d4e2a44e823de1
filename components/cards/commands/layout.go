package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	cards "github.com/goliatone/go-insight/components/cards"
)

// MoveCardInput updates a single card's placement.
type MoveCardInput struct {
	Viewer cards.ViewerContext
	Item   cards.LayoutItem
}

type moveEditor interface {
	MoveResizeCard(ctx context.Context, viewer cards.ViewerContext, item cards.LayoutItem) error
}

// MoveCardCommand moves or resizes a placed card through the editor.
type MoveCardCommand struct {
	editor    moveEditor
	telemetry Telemetry
}

// NewMoveCardCommand creates a command instance.
func NewMoveCardCommand(editor moveEditor, telemetry Telemetry) *MoveCardCommand {
	return &MoveCardCommand{editor: editor, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[MoveCardInput] = (*MoveCardCommand)(nil)

// Execute delegates to the dashboard editor.
func (c *MoveCardCommand) Execute(ctx context.Context, msg MoveCardInput) error {
	if c.editor == nil {
		return errors.New("move card command requires editor")
	}
	if err := c.editor.MoveResizeCard(ctx, msg.Viewer, msg.Item); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "cards.card.move", map[string]any{
		"card_id": msg.Item.CardID,
		"x":       msg.Item.X,
		"y":       msg.Item.Y,
	})
	return nil
}

// ApplyLayoutInput replaces the layout with the grid's current state.
type ApplyLayoutInput struct {
	Viewer cards.ViewerContext
	Items  []cards.GridItem
}

type layoutEditor interface {
	ApplyGridLayout(ctx context.Context, viewer cards.ViewerContext, items []cards.GridItem) error
}

// ApplyLayoutCommand writes a full grid layout back through the editor.
type ApplyLayoutCommand struct {
	editor    layoutEditor
	telemetry Telemetry
}

// NewApplyLayoutCommand creates a command instance.
func NewApplyLayoutCommand(editor layoutEditor, telemetry Telemetry) *ApplyLayoutCommand {
	return &ApplyLayoutCommand{editor: editor, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[ApplyLayoutInput] = (*ApplyLayoutCommand)(nil)

// Execute delegates to the dashboard editor.
func (c *ApplyLayoutCommand) Execute(ctx context.Context, msg ApplyLayoutInput) error {
	if c.editor == nil {
		return errors.New("apply layout command requires editor")
	}
	if err := c.editor.ApplyGridLayout(ctx, msg.Viewer, msg.Items); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "cards.layout.apply", map[string]any{
		"cards": len(msg.Items),
	})
	return nil
}
