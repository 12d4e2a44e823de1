// Package httpapi exposes the preview server's dashboard endpoints backed by
// shared commands and queries.
package httpapi

import (
	"encoding/json"
	"net/http"

	gocommand "github.com/goliatone/go-command"
	cards "github.com/goliatone/go-insight/components/cards"
	"github.com/goliatone/go-insight/components/cards/commands"
	"github.com/goliatone/go-insight/components/cards/queries"
)

// Handlers exposes HTTP endpoints backed by shared commands.
type Handlers struct {
	AddCard      gocommand.Commander[commands.AddCardInput]
	RemoveCard   gocommand.Commander[commands.RemoveCardInput]
	ApplyLayout  gocommand.Commander[commands.ApplyLayoutInput]
	ApplyFilter  gocommand.Commander[commands.ApplyFilterInput]
	ClearFilters gocommand.Commander[commands.ClearFiltersInput]
	Refresh      gocommand.Commander[commands.RefreshDashboardInput]
	SaveView     gocommand.Commander[commands.SaveViewInput]
	Snapshot     gocommand.Querier[queries.SnapshotInput, []cards.CardView]
	SavedViews   gocommand.Querier[queries.SavedViewsInput, []cards.SavedView]
}

func (h *Handlers) HandleAddCard(w http.ResponseWriter, r *http.Request) {
	var payload commands.AddCardInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.AddCard.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) HandleRemoveCard(w http.ResponseWriter, r *http.Request, cardID string) {
	input := commands.RemoveCardInput{CardID: cardID}
	if err := h.RemoveCard.Execute(r.Context(), input); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handlers) HandleApplyLayout(w http.ResponseWriter, r *http.Request) {
	var payload commands.ApplyLayoutInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.ApplyLayout.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleApplyFilter(w http.ResponseWriter, r *http.Request) {
	var payload commands.ApplyFilterInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.ApplyFilter.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleClearFilters(w http.ResponseWriter, r *http.Request) {
	if err := h.ClearFilters.Execute(r.Context(), commands.ClearFiltersInput{}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (h *Handlers) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	if err := h.Refresh.Execute(r.Context(), commands.RefreshDashboardInput{}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

func (h *Handlers) HandleSaveView(w http.ResponseWriter, r *http.Request) {
	var payload commands.SaveViewInput
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.SaveView.Execute(r.Context(), payload); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *Handlers) HandleSnapshot(w http.ResponseWriter, r *http.Request) {
	views, err := h.Snapshot.Query(r.Context(), queries.SnapshotInput{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, views)
}

func (h *Handlers) HandleSavedViews(w http.ResponseWriter, r *http.Request, dashboardID string, viewer cards.ViewerContext) {
	views, err := h.SavedViews.Query(r.Context(), queries.SavedViewsInput{
		Viewer:      viewer,
		DashboardID: dashboardID,
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, views)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
