package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	cards "github.com/goliatone/go-insight/components/cards"
	"github.com/goliatone/go-insight/components/cards/commands"
	"github.com/goliatone/go-insight/components/cards/queries"
)

type stubCommander[T any] struct {
	calls int
	last  T
	err   error
}

func (s *stubCommander[T]) Execute(_ context.Context, msg T) error {
	s.calls++
	s.last = msg
	return s.err
}

type stubQuerier[T any, R any] struct {
	calls  int
	result R
	err    error
}

func (s *stubQuerier[T, R]) Query(context.Context, T) (R, error) {
	s.calls++
	return s.result, s.err
}

func TestHandleAddCard(t *testing.T) {
	cmd := &stubCommander[commands.AddCardInput]{}
	h := &Handlers{AddCard: cmd}

	body := `{"Item":{"card_id":"card-a","x":0,"y":0,"w":4,"h":3}}`
	req := httptest.NewRequest("POST", "/dashboard/cards", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleAddCard(rec, req)

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusCreated)
	}
	if cmd.calls != 1 {
		t.Fatalf("command executed %d times", cmd.calls)
	}
	if cmd.last.Item.CardID != "card-a" {
		t.Fatalf("decoded card id = %q", cmd.last.Item.CardID)
	}
}

func TestHandleAddCardBadJSON(t *testing.T) {
	cmd := &stubCommander[commands.AddCardInput]{}
	h := &Handlers{AddCard: cmd}

	req := httptest.NewRequest("POST", "/dashboard/cards", strings.NewReader("{broken"))
	rec := httptest.NewRecorder()
	h.HandleAddCard(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusBadRequest)
	}
	if cmd.calls != 0 {
		t.Fatalf("command executed on bad payload")
	}
}

func TestHandleRemoveCard(t *testing.T) {
	cmd := &stubCommander[commands.RemoveCardInput]{}
	h := &Handlers{RemoveCard: cmd}

	req := httptest.NewRequest("DELETE", "/dashboard/cards/card-a", nil)
	rec := httptest.NewRecorder()
	h.HandleRemoveCard(rec, req, "card-a")

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want %d", rec.Code, http.StatusNoContent)
	}
	if cmd.last.CardID != "card-a" {
		t.Fatalf("card id = %q", cmd.last.CardID)
	}
}

func TestHandleApplyFilter(t *testing.T) {
	cmd := &stubCommander[commands.ApplyFilterInput]{}
	h := &Handlers{ApplyFilter: cmd}

	body := `{"FilterID":"region","Value":"emea"}`
	req := httptest.NewRequest("POST", "/dashboard/filters", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.HandleApplyFilter(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if cmd.last.FilterID != "region" || cmd.last.Value != "emea" {
		t.Fatalf("decoded input = %+v", cmd.last)
	}
}

func TestHandleApplyFilterCommandError(t *testing.T) {
	cmd := &stubCommander[commands.ApplyFilterInput]{err: errors.New("invalid value")}
	h := &Handlers{ApplyFilter: cmd}

	req := httptest.NewRequest("POST", "/dashboard/filters", strings.NewReader(`{"FilterID":"x"}`))
	rec := httptest.NewRecorder()
	h.HandleApplyFilter(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHandleClearFiltersAndRefresh(t *testing.T) {
	clear := &stubCommander[commands.ClearFiltersInput]{}
	refresh := &stubCommander[commands.RefreshDashboardInput]{}
	h := &Handlers{ClearFilters: clear, Refresh: refresh}

	rec := httptest.NewRecorder()
	h.HandleClearFilters(rec, httptest.NewRequest("POST", "/dashboard/filters/clear", nil))
	if rec.Code != http.StatusOK || clear.calls != 1 {
		t.Fatalf("clear status = %d calls = %d", rec.Code, clear.calls)
	}

	rec = httptest.NewRecorder()
	h.HandleRefresh(rec, httptest.NewRequest("POST", "/dashboard/refresh", nil))
	if rec.Code != http.StatusAccepted || refresh.calls != 1 {
		t.Fatalf("refresh status = %d calls = %d", rec.Code, refresh.calls)
	}
}

func TestHandleSnapshot(t *testing.T) {
	qry := &stubQuerier[queries.SnapshotInput, []cards.CardView]{
		result: []cards.CardView{{CardID: "card-a", State: cards.StateRendered}},
	}
	h := &Handlers{Snapshot: qry}

	rec := httptest.NewRecorder()
	h.HandleSnapshot(rec, httptest.NewRequest("GET", "/dashboard/_layout", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	var views []cards.CardView
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(views) != 1 || views[0].CardID != "card-a" {
		t.Fatalf("views = %+v", views)
	}
}

func TestHandleSavedViews(t *testing.T) {
	qry := &stubQuerier[queries.SavedViewsInput, []cards.SavedView]{
		result: []cards.SavedView{{ID: "sv-1", Name: "EMEA"}},
	}
	h := &Handlers{SavedViews: qry}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/dashboard/views?dashboard_id=dash-1", nil)
	h.HandleSavedViews(rec, req, "dash-1", cards.ViewerContext{UserID: "u-1"})

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var views []cards.SavedView
	if err := json.NewDecoder(rec.Body).Decode(&views); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(views) != 1 || views[0].Name != "EMEA" {
		t.Fatalf("views = %+v", views)
	}
}

func TestCommandExecutorDelegates(t *testing.T) {
	add := &stubCommander[commands.AddCardInput]{}
	refresh := &stubCommander[commands.RefreshDashboardInput]{}
	snapshot := &stubQuerier[queries.SnapshotInput, []cards.CardView]{
		result: []cards.CardView{{CardID: "card-a"}},
	}
	exec := &CommandExecutor{
		AddCardCmd:  add,
		RefreshCmd:  refresh,
		SnapshotQry: snapshot,
	}
	ctx := context.Background()

	if err := exec.AddCard(ctx, commands.AddCardInput{Item: cards.LayoutItem{CardID: "card-a"}}); err != nil {
		t.Fatalf("AddCard: %v", err)
	}
	if add.calls != 1 {
		t.Fatalf("add executed %d times", add.calls)
	}
	if err := exec.Refresh(ctx); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	views, err := exec.Snapshot(ctx)
	if err != nil {
		t.Fatalf("Snapshot: %v", err)
	}
	if len(views) != 1 {
		t.Fatalf("views = %+v", views)
	}
}

func TestCommandExecutorUnwired(t *testing.T) {
	exec := &CommandExecutor{}
	ctx := context.Background()

	if err := exec.RemoveCard(ctx, commands.RemoveCardInput{CardID: "x"}); !errors.Is(err, errNotWired) {
		t.Fatalf("RemoveCard err = %v, want %v", err, errNotWired)
	}
	if _, err := exec.SavedViews(ctx, queries.SavedViewsInput{}); !errors.Is(err, errNotWired) {
		t.Fatalf("SavedViews err = %v, want %v", err, errNotWired)
	}
}
