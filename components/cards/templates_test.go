package cards

import (
	"bytes"
	"context"
	"strings"
	"testing"
)

func TestTemplateRendererDashboardPage(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	if err != nil {
		t.Fatalf("NewTemplateRenderer: %v", err)
	}

	dash := Dashboard{
		ID:          "dash-1",
		Name:        "Sales Overview",
		Description: "Quarterly numbers",
		Layout: DashboardLayout{
			Cards: []LayoutItem{{CardID: "card-a", W: 6, H: 4}},
		},
		Filters: []FilterDefinition{
			{ID: "region", Label: "Region", Type: FilterTypeCategory},
		},
	}
	exec := newFakeExecutor(func(cardID string, _ ExecuteOptions) (CardExecuteResponse, error) {
		return CardExecuteResponse{CardID: cardID, HTML: "<p>ok</p>"}, nil
	})
	viewer := NewViewer(dash, ViewerOptions{Executor: exec})
	if err := viewer.Load(context.Background()); err != nil {
		t.Fatalf("Load: %v", err)
	}

	var buf bytes.Buffer
	controller := NewController(viewer, renderer)
	if err := controller.RenderPage(context.Background(), &buf); err != nil {
		t.Fatalf("RenderPage: %v", err)
	}

	html := buf.String()
	if !strings.Contains(html, "Sales Overview") {
		t.Fatalf("page missing dashboard name")
	}
	if !strings.Contains(html, `data-filter-id="region"`) {
		t.Fatalf("page missing filter label")
	}
	if !strings.Contains(html, `id="card-card-a"`) {
		t.Fatalf("page missing sandboxed frame")
	}
	if !strings.Contains(html, "grid-column: 1 / span 6") {
		t.Fatalf("page missing grid placement")
	}
}
