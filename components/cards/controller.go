package cards

import (
	"context"
	"errors"
	"io"
)

// Controller composes the dashboard host page from the viewer's state. The
// template receives sandboxed card frames only; raw card HTML never reaches
// the page directly.
type Controller struct {
	viewer   *Viewer
	renderer Renderer
}

// NewController wires a live viewer into a controller.
func NewController(viewer *Viewer, renderer Renderer) *Controller {
	return &Controller{viewer: viewer, renderer: renderer}
}

// PageCell positions one sandboxed frame on the CSS grid. Grid lines are
// 1-based, so cells carry X+1/Y+1.
type PageCell struct {
	CardID     string
	Column     int
	ColumnSpan int
	Row        int
	RowSpan    int
	Height     int
	Frame      string
}

// PagePayload is the layout endpoint's JSON body and the template input.
type PagePayload struct {
	Dashboard   Dashboard          `json:"dashboard"`
	Columns     int                `json:"columns"`
	Cells       []PageCell         `json:"cells"`
	Cards       []CardView         `json:"cards"`
	Filters     []FilterDefinition `json:"filters,omitempty"`
	FilterState FilterState        `json:"filter_state,omitempty"`
	SavedViewID string             `json:"saved_view_id,omitempty"`
	GridItems   []GridItem         `json:"grid_items"`
}

// Payload assembles the viewer's current state for templates and the layout
// endpoint.
func (c *Controller) Payload(_ context.Context) (PagePayload, error) {
	if c.viewer == nil {
		return PagePayload{}, errors.New("cards: controller requires a viewer")
	}
	dash := c.viewer.Dashboard()
	frames := c.viewer.Frames()
	views := c.viewer.Snapshot()

	cells := make([]PageCell, 0, len(dash.Layout.Cards))
	for _, item := range dash.Layout.Cards {
		cells = append(cells, PageCell{
			CardID:     item.CardID,
			Column:     item.X + 1,
			ColumnSpan: item.W,
			Row:        item.Y + 1,
			RowSpan:    item.H,
			Height:     item.H * dash.Layout.RowHeight,
			Frame:      frames[item.CardID],
		})
	}

	return PagePayload{
		Dashboard:   dash,
		Columns:     dash.Layout.Columns,
		Cells:       cells,
		Cards:       views,
		Filters:     dash.Filters,
		FilterState: c.viewer.Filters(),
		SavedViewID: c.viewer.SavedViewID(),
		GridItems:   c.viewer.GridItems(),
	}, nil
}

// RenderPage writes the host page HTML for the viewer's current state.
func (c *Controller) RenderPage(ctx context.Context, out io.Writer) error {
	if c.renderer == nil {
		return errors.New("cards: controller requires a renderer")
	}
	payload, err := c.Payload(ctx)
	if err != nil {
		return err
	}
	_, err = c.renderer.Render("dashboard", map[string]any{
		"dashboard":     payload.Dashboard,
		"columns":       payload.Columns,
		"cells":         payload.Cells,
		"filters":       payload.Filters,
		"saved_view_id": payload.SavedViewID,
	}, out)
	return err
}
