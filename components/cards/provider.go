package cards

import "context"

// PreviewProvider renders a card body locally, without the execution backend.
// Preview output is treated exactly like backend card HTML: it still goes
// through the sandbox renderer.
type PreviewProvider interface {
	RenderPreview(ctx context.Context, meta PreviewContext) (string, error)
}

// PreviewContext contains the metadata preview providers need.
type PreviewContext struct {
	Card    CardSummary
	Viewer  ViewerContext
	Filters FilterState
	Config  map[string]any
}

// PreviewProviderFunc adapts a function to the PreviewProvider interface.
type PreviewProviderFunc func(ctx context.Context, meta PreviewContext) (string, error)

// RenderPreview implements PreviewProvider.
func (f PreviewProviderFunc) RenderPreview(ctx context.Context, meta PreviewContext) (string, error) {
	return f(ctx, meta)
}

// CardKind describes a renderable card type available for preview.
type CardKind struct {
	Code        string
	Name        string
	Description string
}
