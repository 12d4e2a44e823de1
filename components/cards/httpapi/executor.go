package httpapi

import (
	"context"
	"errors"

	gocommand "github.com/goliatone/go-command"
	cards "github.com/goliatone/go-insight/components/cards"
	"github.com/goliatone/go-insight/components/cards/commands"
	"github.com/goliatone/go-insight/components/cards/queries"
)

// Executor is the transport-facing surface over the shared commands. Routers
// program against this instead of linking the command types directly.
type Executor interface {
	AddCard(ctx context.Context, input commands.AddCardInput) error
	RemoveCard(ctx context.Context, input commands.RemoveCardInput) error
	ApplyLayout(ctx context.Context, input commands.ApplyLayoutInput) error
	ApplyFilter(ctx context.Context, input commands.ApplyFilterInput) error
	ClearFilters(ctx context.Context) error
	Refresh(ctx context.Context) error
	SaveView(ctx context.Context, input commands.SaveViewInput) error
	Snapshot(ctx context.Context) ([]cards.CardView, error)
	SavedViews(ctx context.Context, input queries.SavedViewsInput) ([]cards.SavedView, error)
}

// CommandExecutor implements Executor over go-command commanders and queriers.
// Unwired operations return an error instead of panicking.
type CommandExecutor struct {
	AddCardCmd      gocommand.Commander[commands.AddCardInput]
	RemoveCardCmd   gocommand.Commander[commands.RemoveCardInput]
	ApplyLayoutCmd  gocommand.Commander[commands.ApplyLayoutInput]
	ApplyFilterCmd  gocommand.Commander[commands.ApplyFilterInput]
	ClearFiltersCmd gocommand.Commander[commands.ClearFiltersInput]
	RefreshCmd      gocommand.Commander[commands.RefreshDashboardInput]
	SaveViewCmd     gocommand.Commander[commands.SaveViewInput]
	SnapshotQry     gocommand.Querier[queries.SnapshotInput, []cards.CardView]
	SavedViewsQry   gocommand.Querier[queries.SavedViewsInput, []cards.SavedView]
}

var _ Executor = (*CommandExecutor)(nil)

var errNotWired = errors.New("httpapi: operation is not wired")

func (e *CommandExecutor) AddCard(ctx context.Context, input commands.AddCardInput) error {
	if e.AddCardCmd == nil {
		return errNotWired
	}
	return e.AddCardCmd.Execute(ctx, input)
}

func (e *CommandExecutor) RemoveCard(ctx context.Context, input commands.RemoveCardInput) error {
	if e.RemoveCardCmd == nil {
		return errNotWired
	}
	return e.RemoveCardCmd.Execute(ctx, input)
}

func (e *CommandExecutor) ApplyLayout(ctx context.Context, input commands.ApplyLayoutInput) error {
	if e.ApplyLayoutCmd == nil {
		return errNotWired
	}
	return e.ApplyLayoutCmd.Execute(ctx, input)
}

func (e *CommandExecutor) ApplyFilter(ctx context.Context, input commands.ApplyFilterInput) error {
	if e.ApplyFilterCmd == nil {
		return errNotWired
	}
	return e.ApplyFilterCmd.Execute(ctx, input)
}

func (e *CommandExecutor) ClearFilters(ctx context.Context) error {
	if e.ClearFiltersCmd == nil {
		return errNotWired
	}
	return e.ClearFiltersCmd.Execute(ctx, commands.ClearFiltersInput{})
}

func (e *CommandExecutor) Refresh(ctx context.Context) error {
	if e.RefreshCmd == nil {
		return errNotWired
	}
	return e.RefreshCmd.Execute(ctx, commands.RefreshDashboardInput{})
}

func (e *CommandExecutor) SaveView(ctx context.Context, input commands.SaveViewInput) error {
	if e.SaveViewCmd == nil {
		return errNotWired
	}
	return e.SaveViewCmd.Execute(ctx, input)
}

func (e *CommandExecutor) Snapshot(ctx context.Context) ([]cards.CardView, error) {
	if e.SnapshotQry == nil {
		return nil, errNotWired
	}
	return e.SnapshotQry.Query(ctx, queries.SnapshotInput{})
}

func (e *CommandExecutor) SavedViews(ctx context.Context, input queries.SavedViewsInput) ([]cards.SavedView, error) {
	if e.SavedViewsQry == nil {
		return nil, errNotWired
	}
	return e.SavedViewsQry.Query(ctx, input)
}
