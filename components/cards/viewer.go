package cards

import (
	"context"
	"errors"
	"sync"
)

// CardState tracks one card through its fetch lifecycle. Cards move
// independently: idle → loading → rendered | errored.
type CardState string

const (
	StateIdle     CardState = "idle"
	StateLoading  CardState = "loading"
	StateRendered CardState = "rendered"
	StateErrored  CardState = "errored"
)

// cardLoadError is the fixed, non-sensitive message rendered in place of a
// card whose execution failed. Raw errors never reach the sandbox.
const cardLoadError = "Card failed to load"

// CardView is the renderable snapshot of one card on the dashboard.
type CardView struct {
	CardID          string
	State           CardState
	HTML            string
	Cached          bool
	ExecutionTimeMS float64
	Filtered        bool
	Layout          LayoutItem
}

var errMissingExecutor = errors.New("cards: card executor not configured")

// ViewerOptions configures a dashboard Viewer. Collaborators arrive via
// interfaces so applications can swap implementations.
type ViewerOptions struct {
	Executor    CardExecutor
	Cache       RenderCache
	RefreshHook RefreshHook
	Telemetry   Telemetry
	Sandbox     *SandboxRenderer
}

// Viewer orchestrates fetching and sandboxed rendering of every card placed
// on a dashboard. Layout is read-only here; editing happens in the Editor.
type Viewer struct {
	opts ViewerOptions
	dash Dashboard

	mu          sync.Mutex
	states      map[string]*CardView
	filters     FilterState
	savedViewID string
	generation  uint64
}

// NewViewer builds a viewer for the dashboard with safe defaults.
func NewViewer(dash Dashboard, opts ViewerOptions) *Viewer {
	if opts.RefreshHook == nil {
		opts.RefreshHook = noopRefreshHook{}
	}
	if opts.Sandbox == nil {
		opts.Sandbox = NewSandboxRenderer()
	}
	opts.Telemetry = normalizeTelemetry(opts.Telemetry)
	dash.Layout.Normalize()
	v := &Viewer{
		opts:   opts,
		dash:   dash,
		states: make(map[string]*CardView, len(dash.Layout.Cards)),
	}
	for _, item := range dash.Layout.Cards {
		v.states[item.CardID] = &CardView{CardID: item.CardID, State: StateIdle, Layout: item}
	}
	return v
}

// Empty reports whether the dashboard layout has no cards. Callers render an
// empty-state message instead of an empty grid.
func (v *Viewer) Empty() bool {
	return len(v.dash.Layout.Cards) == 0
}

// Dashboard returns the dashboard this viewer renders.
func (v *Viewer) Dashboard() Dashboard {
	return v.dash
}

// Filters returns the currently applied filter state.
func (v *Viewer) Filters() FilterState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.filters.Clone()
}

// SavedViewID returns the id of the selected saved view, if any.
func (v *Viewer) SavedViewID() string {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.savedViewID
}

// Load fetches every card with the current filter state. Called on mount.
func (v *Viewer) Load(ctx context.Context) error {
	v.mu.Lock()
	filters := v.filters.Clone()
	gen := v.nextGeneration()
	v.mu.Unlock()
	return v.refresh(ctx, filters, gen)
}

// ApplyFilter sets or clears one filter value and, when the resulting state
// differs from the current one, refreshes every card.
func (v *Viewer) ApplyFilter(ctx context.Context, id string, value FilterValue) error {
	v.mu.Lock()
	next := UpdateFilterState(v.filters, id, value)
	changed := !next.Equal(v.filters)
	v.filters = next
	var gen uint64
	if changed {
		gen = v.nextGeneration()
	}
	v.mu.Unlock()
	if !changed {
		return nil
	}
	return v.refresh(ctx, next, gen)
}

// SetFilters replaces the filter state wholesale, refreshing on change.
func (v *Viewer) SetFilters(ctx context.Context, filters FilterState) error {
	v.mu.Lock()
	changed := !filters.Equal(v.filters)
	v.filters = filters.Clone()
	var gen uint64
	if changed {
		gen = v.nextGeneration()
	}
	v.mu.Unlock()
	if !changed {
		return nil
	}
	return v.refresh(ctx, filters.Clone(), gen)
}

// ApplySavedView applies a saved view's filters and remembers its id.
func (v *Viewer) ApplySavedView(ctx context.Context, view SavedView) error {
	v.mu.Lock()
	v.savedViewID = view.ID
	changed := !view.Filters.Equal(v.filters)
	v.filters = view.Filters.Clone()
	var gen uint64
	if changed {
		gen = v.nextGeneration()
	}
	v.mu.Unlock()
	if !changed {
		return nil
	}
	return v.refresh(ctx, view.Filters.Clone(), gen)
}

// ClearAll resets the filter state and the selected saved view in one step,
// then refreshes.
func (v *Viewer) ClearAll(ctx context.Context) error {
	v.mu.Lock()
	v.filters = FilterState{}
	v.savedViewID = ""
	gen := v.nextGeneration()
	v.mu.Unlock()
	return v.refresh(ctx, FilterState{}, gen)
}

// nextGeneration stamps a new refresh generation. Callers must hold mu: the
// generation is assigned in the same critical section that stores the filter
// state, so a later state always carries a later generation.
func (v *Viewer) nextGeneration() uint64 {
	v.generation++
	return v.generation
}

// refresh dispatches every card's execution concurrently and waits for all of
// them to settle. A card's failure never blocks or cancels its siblings.
// Requests carry the generation stamped alongside the filter state; results
// from a superseded filter set are discarded instead of overwriting newer
// state.
func (v *Viewer) refresh(ctx context.Context, filters FilterState, gen uint64) error {
	if v.opts.Executor == nil {
		return errMissingExecutor
	}
	v.mu.Lock()
	items := v.dash.Layout.Cards
	if gen == v.generation {
		for _, item := range items {
			if state, ok := v.states[item.CardID]; ok {
				state.State = StateLoading
			}
		}
	}
	v.mu.Unlock()

	v.opts.Telemetry.Record(ctx, "cards.viewer.refresh", map[string]any{
		"dashboard_id": v.dash.ID,
		"cards":        len(items),
		"filtered":     len(filters) > 0,
	})

	var wg sync.WaitGroup
	for _, item := range items {
		wg.Add(1)
		go func(cardID string) {
			defer wg.Done()
			v.executeCard(ctx, cardID, filters, gen)
		}(item.CardID)
	}
	wg.Wait()
	return nil
}

func (v *Viewer) executeCard(ctx context.Context, cardID string, filters FilterState, gen uint64) {
	opts := ExecuteOptions{UseCache: true}
	if len(filters) > 0 {
		opts.Filters = filters
	}

	var fromCache bool
	run := func() (string, error) {
		resp, err := v.opts.Executor.ExecuteCard(ctx, cardID, opts)
		if err != nil {
			return "", err
		}
		fromCache = resp.Cached
		return resp.HTML, nil
	}

	var html string
	var err error
	if v.opts.Cache != nil {
		served := false
		html, err = v.opts.Cache.GetOrRender(execKey(cardID, filters), func() (string, error) {
			served = true
			return run()
		})
		if !served {
			fromCache = true
		}
	} else {
		html, err = run()
	}

	v.mu.Lock()
	if gen != v.generation {
		v.mu.Unlock()
		return
	}
	state, ok := v.states[cardID]
	if !ok {
		v.mu.Unlock()
		return
	}
	if err != nil {
		state.State = StateErrored
		state.HTML = ErrorFragment(cardLoadError)
		state.Cached = false
	} else {
		state.State = StateRendered
		state.HTML = html
		state.Cached = fromCache
	}
	state.Filtered = len(filters) > 0
	event := CardEvent{DashboardID: v.dash.ID, CardID: cardID, State: state.State, Reason: "refresh"}
	v.mu.Unlock()

	if err != nil {
		v.opts.Telemetry.Record(ctx, "cards.card.error", map[string]any{
			"card_id": cardID,
			"error":   err.Error(),
		})
	}
	_ = v.opts.RefreshHook.CardUpdated(ctx, event)
}

// Snapshot returns the renderable state of every placed card in layout
// order.
func (v *Viewer) Snapshot() []CardView {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := make([]CardView, 0, len(v.dash.Layout.Cards))
	for _, item := range v.dash.Layout.Cards {
		if state, ok := v.states[item.CardID]; ok {
			out = append(out, *state)
		}
	}
	return out
}

// Frames renders every card's current HTML through the sandbox renderer and
// returns host-side markup keyed by card id.
func (v *Viewer) Frames() map[string]string {
	snapshot := v.Snapshot()
	out := make(map[string]string, len(snapshot))
	for _, view := range snapshot {
		if view.Filtered {
			out[view.CardID] = v.opts.Sandbox.RenderFilteredFrame(view.CardID, view.HTML)
			continue
		}
		out[view.CardID] = v.opts.Sandbox.RenderFrame(view.CardID, view.HTML)
	}
	return out
}

// GridItems exposes the layout in the external grid library's format with
// interaction disabled, since viewing is read-only.
func (v *Viewer) GridItems() []GridItem {
	items := ToGridLayout(v.dash.Layout.Cards)
	for i := range items {
		items[i].Static = true
	}
	return items
}

type noopRefreshHook struct{}

func (noopRefreshHook) CardUpdated(context.Context, CardEvent) error { return nil }
