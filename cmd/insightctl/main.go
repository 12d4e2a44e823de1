package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/ettle/strcase"
	"gopkg.in/yaml.v3"

	cards "github.com/goliatone/go-insight/components/cards"
)

type cli struct {
	Validate validateCmd `cmd:"" help:"Validate a dashboard manifest."`
	Render   renderCmd   `cmd:"" help:"Render a dashboard manifest to a static HTML page using local preview providers."`
	Scaffold scaffoldCmd `cmd:"" help:"Add a card entry with a preview binding to a dashboard manifest."`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Dashboard tooling for go-insight manifests."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

type validateCmd struct {
	ManifestPath string `arg:"" type:"path" help:"Path to the dashboard manifest YAML file."`
}

func (cmd *validateCmd) Run(_ context.Context) error {
	doc, err := cards.ReadManifest(cmd.ManifestPath)
	if err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ %s: dashboard %s with %d cards, %d filters, %d previews\n",
		cmd.ManifestPath, doc.Dashboard.ID,
		len(doc.Dashboard.Layout.Cards), len(doc.Dashboard.Filters), len(doc.Previews))
	return nil
}

type renderCmd struct {
	ManifestPath string `arg:"" type:"path" help:"Path to the dashboard manifest YAML file."`
	Out          string `default:"dashboard.html" type:"path" help:"Output HTML file."`
	ScriptHost   string `help:"Host allowed to serve chart scripts inside the card sandbox."`
}

func (cmd *renderCmd) Run(ctx context.Context) error {
	doc, err := cards.ReadManifest(cmd.ManifestPath)
	if err != nil {
		return err
	}

	executor := cards.NewPreviewExecutor(cards.NewRegistry(), cards.ViewerContext{UserID: "insightctl"})
	if err := doc.BindPreviews(executor); err != nil {
		return err
	}

	var sandboxOpts []cards.SandboxOption
	if cmd.ScriptHost != "" {
		sandboxOpts = append(sandboxOpts, cards.WithScriptHost(cmd.ScriptHost))
	}
	viewer := cards.NewViewer(doc.Dashboard, cards.ViewerOptions{
		Executor: executor,
		Sandbox:  cards.NewSandboxRenderer(sandboxOpts...),
	})
	if err := viewer.Load(ctx); err != nil {
		return err
	}

	renderer, err := cards.NewTemplateRenderer()
	if err != nil {
		return err
	}
	controller := cards.NewController(viewer, renderer)

	file, err := os.Create(cmd.Out) //nolint:gosec
	if err != nil {
		return fmt.Errorf("insightctl: create %s: %w", cmd.Out, err)
	}
	defer file.Close()
	if err := controller.RenderPage(ctx, file); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Rendered %s to %s\n", doc.Dashboard.ID, cmd.Out)
	return nil
}

type scaffoldCmd struct {
	ManifestPath string `required:"" type:"path" help:"Path to the dashboard manifest YAML file to update."`
	CardID       string `required:"" help:"Card identifier to place on the layout."`
	Name         string `help:"Display name for the card (defaults to the id in title case)."`
	Kind         string `default:"card.chart.bar" help:"Preview provider kind for the card."`
	X            int    `help:"Grid column of the card."`
	Y            int    `help:"Grid row of the card."`
	W            int    `default:"4" help:"Card width in grid cells."`
	H            int    `default:"3" help:"Card height in grid cells."`
	Overwrite    bool   `help:"Replace an existing layout entry for the card."`
}

func (cmd *scaffoldCmd) Run(_ context.Context) error {
	manifestPath, err := filepath.Abs(cmd.ManifestPath)
	if err != nil {
		return fmt.Errorf("insightctl: resolve manifest path: %w", err)
	}
	doc, err := loadOrInitManifest(manifestPath)
	if err != nil {
		return err
	}

	placed := -1
	for idx, item := range doc.Dashboard.Layout.Cards {
		if item.CardID == cmd.CardID {
			placed = idx
			break
		}
	}
	if placed >= 0 && !cmd.Overwrite {
		return fmt.Errorf("insightctl: manifest already places card %s (use --overwrite to replace)", cmd.CardID)
	}

	item := cards.LayoutItem{CardID: cmd.CardID, X: cmd.X, Y: cmd.Y, W: cmd.W, H: cmd.H}
	if placed >= 0 {
		doc.Dashboard.Layout.Cards[placed] = item
	} else {
		doc.Dashboard.Layout.Cards = append(doc.Dashboard.Layout.Cards, item)
	}

	name := cmd.Name
	if name == "" {
		name = strcase.ToCase(strings.ReplaceAll(cmd.CardID, "-", " "), strcase.TitleCase, ' ')
	}
	upsertCard(doc, cards.CardSummary{ID: cmd.CardID, Name: name})
	upsertPreview(doc, cards.ManifestPreview{CardID: cmd.CardID, Kind: cmd.Kind})

	sort.Slice(doc.Previews, func(i, j int) bool {
		return doc.Previews[i].CardID < doc.Previews[j].CardID
	})

	if err := doc.Validate(); err != nil {
		return err
	}
	if err := writeManifest(manifestPath, doc); err != nil {
		return err
	}
	fmt.Fprintf(os.Stdout, "✓ Added %s (%s) to %s\n", cmd.CardID, cmd.Kind, manifestPath)
	return nil
}

func upsertCard(doc *cards.DashboardManifest, card cards.CardSummary) {
	for idx := range doc.Dashboard.Cards {
		if doc.Dashboard.Cards[idx].ID == card.ID {
			doc.Dashboard.Cards[idx] = card
			return
		}
	}
	doc.Dashboard.Cards = append(doc.Dashboard.Cards, card)
}

func upsertPreview(doc *cards.DashboardManifest, preview cards.ManifestPreview) {
	for idx := range doc.Previews {
		if doc.Previews[idx].CardID == preview.CardID {
			doc.Previews[idx] = preview
			return
		}
	}
	doc.Previews = append(doc.Previews, preview)
}

func loadOrInitManifest(path string) (*cards.DashboardManifest, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
			return &cards.DashboardManifest{
				Version: cards.ManifestVersion,
				Dashboard: cards.Dashboard{
					ID:   sanitizeID(base),
					Name: strcase.ToCase(base, strcase.TitleCase, ' '),
				},
				Source: path,
			}, nil
		}
		return nil, fmt.Errorf("insightctl: stat manifest: %w", err)
	}
	return cards.ReadManifest(path)
}

func writeManifest(path string, doc *cards.DashboardManifest) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("insightctl: mkdir %s: %w", filepath.Dir(path), err)
	}
	tmpDoc := *doc
	tmpDoc.Source = ""

	file, err := os.Create(path) //nolint:gosec
	if err != nil {
		return fmt.Errorf("insightctl: create manifest %s: %w", path, err)
	}
	defer file.Close()

	encoder := yaml.NewEncoder(file)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(tmpDoc); err != nil {
		return fmt.Errorf("insightctl: write manifest: %w", err)
	}
	return nil
}

func sanitizeID(name string) string {
	replacer := strings.NewReplacer(".", "-", "_", "-", " ", "-")
	return strings.ToLower(replacer.Replace(name))
}
