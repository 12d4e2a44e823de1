package cards

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryDefaultKindsHaveProviders(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	for _, kind := range DefaultCardKinds() {
		_, ok := reg.Kind(kind.Code)
		assert.True(t, ok, "kind %s not registered", kind.Code)
		_, ok = reg.Provider(kind.Code)
		assert.True(t, ok, "provider %s not registered", kind.Code)
	}
}

func TestRegistryRegisterCustomKind(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	kind := CardKind{Code: "demo.card.greeting", Name: "Greeting"}
	require.NoError(t, reg.RegisterKind(kind))

	provider := PreviewProviderFunc(func(_ context.Context, meta PreviewContext) (string, error) {
		return "<p>hello " + meta.Viewer.UserID + "</p>", nil
	})
	require.NoError(t, reg.RegisterProvider(kind.Code, provider))

	got, ok := reg.Provider(kind.Code)
	require.True(t, ok)
	html, err := got.RenderPreview(context.Background(), PreviewContext{Viewer: ViewerContext{UserID: "u-1"}})
	require.NoError(t, err)
	assert.Equal(t, "<p>hello u-1</p>", html)
}

func TestRegistryRegisterProviderErrors(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	provider := PreviewProviderFunc(func(context.Context, PreviewContext) (string, error) {
		return "", nil
	})

	err := reg.RegisterProvider("unknown.kind", provider)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")

	require.Error(t, reg.RegisterProvider("", provider))
	require.Error(t, reg.RegisterProvider("card.chart.bar", nil))
	require.Error(t, reg.RegisterKind(CardKind{}))
}

func TestPreviewExecutorExecutesRegisteredCard(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.RegisterKind(CardKind{Code: "demo.echo", Name: "Echo"}))
	require.NoError(t, reg.RegisterProvider("demo.echo", PreviewProviderFunc(func(_ context.Context, meta PreviewContext) (string, error) {
		return "<p>" + meta.Card.Name + "</p>", nil
	})))

	exec := NewPreviewExecutor(reg, ViewerContext{UserID: "u-1"})
	require.NoError(t, exec.AddCard("card-1", PreviewSpec{
		Kind: "demo.echo",
		Card: CardSummary{ID: "card-1", Name: "Echo Card"},
	}))

	resp, err := exec.ExecuteCard(context.Background(), "card-1", ExecuteOptions{})
	require.NoError(t, err)
	assert.Equal(t, "card-1", resp.CardID)
	assert.Equal(t, "<p>Echo Card</p>", resp.HTML)
	assert.GreaterOrEqual(t, resp.ExecutionTimeMS, 0.0)
}

func TestPreviewExecutorRejectsUnknownCards(t *testing.T) {
	t.Parallel()

	exec := NewPreviewExecutor(NewRegistry(), ViewerContext{})

	_, err := exec.ExecuteCard(context.Background(), "ghost", ExecuteOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not registered for preview")

	require.Error(t, exec.AddCard("", PreviewSpec{Kind: "card.chart.bar"}))
	err = exec.AddCard("card-1", PreviewSpec{Kind: "nope"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no provider registered")
}
