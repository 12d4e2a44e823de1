// Package insight re-exports the core card dashboard types under a stable
// import path.
package insight

import (
	core "github.com/goliatone/go-insight/components/cards"
)

// Viewer exposes the underlying components/cards.Viewer type.
type Viewer = core.Viewer

// ViewerOptions re-export for convenience.
type ViewerOptions = core.ViewerOptions

// Editor exposes the dashboard editor.
type Editor = core.Editor

// EditorOptions re-export for convenience.
type EditorOptions = core.EditorOptions

// Dashboard and friends.
type (
	Dashboard   = core.Dashboard
	LayoutItem  = core.LayoutItem
	GridItem    = core.GridItem
	FilterState = core.FilterState
	SavedView   = core.SavedView
)

// NewViewer proxies to the internal constructor.
func NewViewer(dash Dashboard, opts ViewerOptions) *Viewer {
	return core.NewViewer(dash, opts)
}

// NewEditor proxies to the internal constructor.
func NewEditor(dash Dashboard, opts EditorOptions) *Editor {
	return core.NewEditor(dash, opts)
}
