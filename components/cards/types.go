package cards

import "context"

// CardExecutor invokes server-side execution of a card and returns its
// rendered HTML. Implementations talk to the remote BI backend; tests swap in
// fakes.
type CardExecutor interface {
	ExecuteCard(ctx context.Context, cardID string, opts ExecuteOptions) (CardExecuteResponse, error)
}

// DashboardStore loads and persists dashboard definitions.
type DashboardStore interface {
	GetDashboard(ctx context.Context, dashboardID string) (Dashboard, error)
	UpdateDashboard(ctx context.Context, dash Dashboard) error
}

// SavedViewStore keeps named filter sets per viewer.
type SavedViewStore interface {
	SavedViews(ctx context.Context, viewer ViewerContext, dashboardID string) ([]SavedView, error)
	SaveView(ctx context.Context, viewer ViewerContext, dashboardID string, view SavedView) error
}

// RefreshHook notifies transports (SSE/WebSocket) about card state changes.
type RefreshHook interface {
	CardUpdated(ctx context.Context, event CardEvent) error
}

// LayoutItem places a card on the dashboard grid. Coordinates are grid cells,
// spans are at least one cell.
type LayoutItem struct {
	CardID string `json:"card_id" yaml:"card_id"`
	X      int    `json:"x" yaml:"x"`
	Y      int    `json:"y" yaml:"y"`
	W      int    `json:"w" yaml:"w"`
	H      int    `json:"h" yaml:"h"`
}

// GridItem is the external grid library representation of a layout entry.
// Static and Moved are interaction flags owned by the grid library; they are
// discarded when mapping back into LayoutItem.
type GridItem struct {
	I      string `json:"i"`
	X      int    `json:"x"`
	Y      int    `json:"y"`
	W      int    `json:"w"`
	H      int    `json:"h"`
	Static bool   `json:"static,omitempty"`
	Moved  bool   `json:"moved,omitempty"`
}

// DashboardLayout is the grid placement of every card on a dashboard.
type DashboardLayout struct {
	Columns   int          `json:"columns" yaml:"columns"`
	RowHeight int          `json:"row_height" yaml:"row_height"`
	Cards     []LayoutItem `json:"cards" yaml:"cards"`
}

const (
	// DefaultColumns is the grid width used when a layout omits it.
	DefaultColumns = 12
	// DefaultRowHeight is the pixel height per grid row.
	DefaultRowHeight = 100
)

// Normalize fills zero-valued layout defaults in place.
func (l *DashboardLayout) Normalize() {
	if l.Columns <= 0 {
		l.Columns = DefaultColumns
	}
	if l.RowHeight <= 0 {
		l.RowHeight = DefaultRowHeight
	}
}

// Item returns the layout entry for the given card, if placed.
func (l DashboardLayout) Item(cardID string) (LayoutItem, bool) {
	for _, item := range l.Cards {
		if item.CardID == cardID {
			return item, true
		}
	}
	return LayoutItem{}, false
}

// Dashboard is the unit fetched from and written to the backend.
type Dashboard struct {
	ID          string             `json:"id" yaml:"id"`
	Name        string             `json:"name" yaml:"name"`
	Description string             `json:"description,omitempty" yaml:"description,omitempty"`
	Layout      DashboardLayout    `json:"layout" yaml:"layout"`
	Filters     []FilterDefinition `json:"filters,omitempty" yaml:"filters,omitempty"`
	Cards       []CardSummary      `json:"cards,omitempty" yaml:"cards,omitempty"`
}

// CardSummary is the card metadata carried on a dashboard detail.
type CardSummary struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	DatasetID   string `json:"dataset_id,omitempty" yaml:"dataset_id,omitempty"`
}

// ExecuteOptions tunes a single card execution. A nil Filters map means no
// filtering was requested, which is distinct from filtering to nothing.
type ExecuteOptions struct {
	Filters  FilterState `json:"filters,omitempty"`
	UseCache bool        `json:"use_cache,omitempty"`
}

// CardExecuteResponse is the unit rendered into the sandbox. HTML originates
// from arbitrary card code and must never be merged into the host DOM tree.
type CardExecuteResponse struct {
	CardID          string  `json:"card_id"`
	HTML            string  `json:"html"`
	Cached          bool    `json:"cached"`
	ExecutionTimeMS float64 `json:"execution_time_ms"`
}

// SavedView is a named filter set a viewer can re-apply.
type SavedView struct {
	ID      string      `json:"id" yaml:"id"`
	Name    string      `json:"name" yaml:"name"`
	Filters FilterState `json:"filters" yaml:"filters"`
}

// ViewerContext captures the active user/locale information needed to resolve
// saved views and audit edits.
type ViewerContext struct {
	UserID string
	Roles  []string
	Locale string
}

// CardEvent describes card state changes that transports might care about.
type CardEvent struct {
	DashboardID string    `json:"dashboard_id,omitempty"`
	CardID      string    `json:"card_id"`
	State       CardState `json:"state"`
	Reason      string    `json:"reason"`
}
