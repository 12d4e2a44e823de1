package cards

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/goliatone/go-insight/pkg/activity"
)

var (
	errMissingStore  = errors.New("cards: dashboard store not configured")
	errMissingCardID = errors.New("cards: card id is required")
	errCardExists    = errors.New("cards: card is already placed on the layout")
	errCardMissing   = errors.New("cards: card is not placed on the layout")
)

// EditorOptions configures a dashboard Editor.
type EditorOptions struct {
	Store          DashboardStore
	Validator      FilterValidator
	Telemetry      Telemetry
	ActivityHooks  activity.Hooks
	ActivityConfig activity.Config
}

// Editor mutates a dashboard's layout and filter definitions and persists
// them through the store. Grid interactions flow back in through
// ApplyGridLayout; the editor owns the persisted representation.
type Editor struct {
	opts    EditorOptions
	emitter *activity.Emitter

	mu   sync.Mutex
	dash Dashboard
}

// NewEditor builds an editor over a dashboard snapshot.
func NewEditor(dash Dashboard, opts EditorOptions) *Editor {
	if opts.Validator == nil {
		opts.Validator = NewJSONSchemaValidator()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	dash.Layout.Normalize()
	return &Editor{
		opts:    opts,
		emitter: activity.NewEmitter(opts.ActivityHooks, opts.ActivityConfig),
		dash:    dash,
	}
}

// Dashboard returns the current working copy.
func (e *Editor) Dashboard() Dashboard {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dash
}

// AddCard places a card on the layout. Duplicate ids are rejected; spans are
// clamped to at least one cell.
func (e *Editor) AddCard(ctx context.Context, viewer ViewerContext, item LayoutItem) error {
	if item.CardID == "" {
		return errMissingCardID
	}
	if item.W < 1 {
		item.W = 1
	}
	if item.H < 1 {
		item.H = 1
	}
	e.mu.Lock()
	if _, ok := e.dash.Layout.Item(item.CardID); ok {
		e.mu.Unlock()
		return errCardExists
	}
	e.dash.Layout.Cards = append(e.dash.Layout.Cards, item)
	e.mu.Unlock()

	e.record(ctx, viewer, "cards.card.add", item.CardID)
	return nil
}

// RemoveCard deletes a card's layout entry.
func (e *Editor) RemoveCard(ctx context.Context, viewer ViewerContext, cardID string) error {
	if cardID == "" {
		return errMissingCardID
	}
	e.mu.Lock()
	found := false
	kept := e.dash.Layout.Cards[:0]
	for _, item := range e.dash.Layout.Cards {
		if item.CardID == cardID {
			found = true
			continue
		}
		kept = append(kept, item)
	}
	e.dash.Layout.Cards = kept
	e.mu.Unlock()
	if !found {
		return errCardMissing
	}

	e.record(ctx, viewer, "cards.card.remove", cardID)
	return nil
}

// MoveResizeCard updates one card's placement in place.
func (e *Editor) MoveResizeCard(ctx context.Context, viewer ViewerContext, item LayoutItem) error {
	if item.CardID == "" {
		return errMissingCardID
	}
	if item.W < 1 || item.H < 1 {
		return fmt.Errorf("cards: card %s span must be at least one cell", item.CardID)
	}
	e.mu.Lock()
	found := false
	for i := range e.dash.Layout.Cards {
		if e.dash.Layout.Cards[i].CardID == item.CardID {
			e.dash.Layout.Cards[i] = item
			found = true
			break
		}
	}
	e.mu.Unlock()
	if !found {
		return errCardMissing
	}

	e.record(ctx, viewer, "cards.card.move", item.CardID)
	return nil
}

// ApplyGridLayout replaces the layout with the grid library's current state,
// mapped back through the coordinate mapper. This is the write path for drag
// and resize interactions in edit mode.
func (e *Editor) ApplyGridLayout(ctx context.Context, viewer ViewerContext, items []GridItem) error {
	mapped := FromGridLayout(items)
	seen := make(map[string]struct{}, len(mapped))
	for _, item := range mapped {
		if item.CardID == "" {
			return errMissingCardID
		}
		if _, dup := seen[item.CardID]; dup {
			return fmt.Errorf("cards: layout repeats card %s", item.CardID)
		}
		seen[item.CardID] = struct{}{}
	}
	e.mu.Lock()
	e.dash.Layout.Cards = mapped
	e.mu.Unlock()

	e.record(ctx, viewer, "cards.layout.apply", e.dash.ID)
	return nil
}

// SetFilterDefinition adds or replaces a filter definition after validating
// its declared type.
func (e *Editor) SetFilterDefinition(ctx context.Context, viewer ViewerContext, def FilterDefinition) error {
	if def.ID == "" {
		return errors.New("cards: filter id is required")
	}
	if def.Type != FilterTypeCategory && def.Type != FilterTypeDateRange {
		return fmt.Errorf("cards: unknown filter type %q for %s", def.Type, def.ID)
	}
	e.mu.Lock()
	replaced := false
	for i := range e.dash.Filters {
		if e.dash.Filters[i].ID == def.ID {
			e.dash.Filters[i] = def
			replaced = true
			break
		}
	}
	if !replaced {
		e.dash.Filters = append(e.dash.Filters, def)
	}
	e.mu.Unlock()

	e.record(ctx, viewer, "cards.filter.define", def.ID)
	return nil
}

// RemoveFilterDefinition drops a filter definition by id.
func (e *Editor) RemoveFilterDefinition(ctx context.Context, viewer ViewerContext, filterID string) error {
	e.mu.Lock()
	kept := e.dash.Filters[:0]
	found := false
	for _, def := range e.dash.Filters {
		if def.ID == filterID {
			found = true
			continue
		}
		kept = append(kept, def)
	}
	e.dash.Filters = kept
	e.mu.Unlock()
	if !found {
		return fmt.Errorf("cards: filter %s is not defined", filterID)
	}

	e.record(ctx, viewer, "cards.filter.remove", filterID)
	return nil
}

// ValidateFilterValue checks an applied value against the dashboard's filter
// definition.
func (e *Editor) ValidateFilterValue(filterID string, value FilterValue) error {
	e.mu.Lock()
	var def *FilterDefinition
	for i := range e.dash.Filters {
		if e.dash.Filters[i].ID == filterID {
			def = &e.dash.Filters[i]
			break
		}
	}
	e.mu.Unlock()
	if def == nil {
		return fmt.Errorf("cards: filter %s is not defined", filterID)
	}
	return e.opts.Validator.Validate(*def, value)
}

// Save persists the working copy through the store.
func (e *Editor) Save(ctx context.Context, viewer ViewerContext) error {
	if e.opts.Store == nil {
		return errMissingStore
	}
	e.mu.Lock()
	dash := e.dash
	e.mu.Unlock()
	if err := e.opts.Store.UpdateDashboard(ctx, dash); err != nil {
		return err
	}
	e.opts.Telemetry.Record(ctx, "cards.dashboard.save", map[string]any{
		"dashboard_id": dash.ID,
		"cards":        len(dash.Layout.Cards),
	})
	e.record(ctx, viewer, "cards.dashboard.save", dash.ID)
	return nil
}

func (e *Editor) record(ctx context.Context, viewer ViewerContext, verb, objectID string) {
	e.opts.Telemetry.Record(ctx, verb, map[string]any{"object_id": objectID})
	if e.emitter == nil || !e.emitter.Enabled() {
		return
	}
	_ = e.emitter.Emit(ctx, activity.Event{
		Verb:       verb,
		ActorID:    viewer.UserID,
		UserID:     viewer.UserID,
		ObjectType: "dashboard_card",
		ObjectID:   objectID,
	})
}
