package commands

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	cards "github.com/goliatone/go-insight/components/cards"
)

// AddCardInput places a card on a dashboard layout.
type AddCardInput struct {
	Viewer cards.ViewerContext
	Item   cards.LayoutItem
}

type addEditor interface {
	AddCard(ctx context.Context, viewer cards.ViewerContext, item cards.LayoutItem) error
}

// AddCardCommand translates incoming requests into editor calls and emits
// telemetry so operators can observe layout edits.
type AddCardCommand struct {
	editor    addEditor
	telemetry Telemetry
}

// NewAddCardCommand creates a command instance.
func NewAddCardCommand(editor addEditor, telemetry Telemetry) *AddCardCommand {
	return &AddCardCommand{editor: editor, telemetry: normalizeTelemetry(telemetry)}
}

var _ gocommand.Commander[AddCardInput] = (*AddCardCommand)(nil)

// Execute delegates to the dashboard editor.
func (c *AddCardCommand) Execute(ctx context.Context, msg AddCardInput) error {
	if c.editor == nil {
		return errors.New("add card command requires editor")
	}
	if err := c.editor.AddCard(ctx, msg.Viewer, msg.Item); err != nil {
		return err
	}
	c.telemetry.Record(ctx, "cards.card.add", map[string]any{
		"card_id": msg.Item.CardID,
	})
	return nil
}
