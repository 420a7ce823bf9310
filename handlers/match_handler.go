package handlers

import (
	"net/http"

	"github.com/Dosada05/championship/models"
	"github.com/Dosada05/championship/services"
)

// MatchHandler принимает события от внешнего сервиса игр.
type MatchHandler struct {
	progressionService services.ProgressionService
}

func NewMatchHandler(ps services.ProgressionService) *MatchHandler {
	return &MatchHandler{progressionService: ps}
}

func (h *MatchHandler) StartHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.progressionService.StartMatch(r.Context(), matchID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResultHandler обрабатывает POST /matches/{matchID}/result
func (h *MatchHandler) ResultHandler(w http.ResponseWriter, r *http.Request) {
	matchID, err := getIDFromURL(r, "matchID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var outcome models.Outcome
	if err := readJSON(w, r, &outcome); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.progressionService.OnMatchCompleted(r.Context(), matchID, outcome)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"progression": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
