package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	cards "github.com/goliatone/go-insight/components/cards"
)

// RemoveCardInput deletes a card from a dashboard layout.
type RemoveCardInput struct {
	Viewer cards.ViewerContext
	CardID string
}

type removeEditor interface {
	RemoveCard(ctx context.Context, viewer cards.ViewerContext, cardID string) error
}

// RemoveCardCommand removes a placed card through the editor.
type RemoveCardCommand struct {
	editor    removeEditor
	telemetry Telemetry
}

// NewRemoveCardCommand creates a command instance.
func NewRemoveCardCommand(editor removeEditor, telemetry Telemetry) *RemoveCardCommand {
	return &RemoveCardCommand{editor: editor, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[RemoveCardInput] = (*RemoveCardCommand)(nil)

// Execute delegates to the dashboard editor.
func (c *RemoveCardCommand) Execute(ctx context.Context, msg RemoveCardInput) error {
	if c.editor == nil {
		return errors.New("remove card command requires editor")
	}
	if err := c.editor.RemoveCard(ctx, msg.Viewer, msg.CardID); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "cards.card.remove", map[string]any{
		"card_id": msg.CardID,
	})
	return nil
}
