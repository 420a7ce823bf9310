package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Dosada05/championship/middleware"
	"github.com/Dosada05/championship/services"
)

type TournamentHandler struct {
	tournamentService  services.TournamentService
	progressionService services.ProgressionService
	logger             *slog.Logger
}

func NewTournamentHandler(ts services.TournamentService, ps services.ProgressionService, logger *slog.Logger) *TournamentHandler {
	return &TournamentHandler{
		tournamentService:  ts,
		progressionService: ps,
		logger:             logger,
	}
}

// audit пишет, кто выполнил административную операцию.
func (h *TournamentHandler) audit(r *http.Request, action string, tournamentID int, attrs ...any) {
	userID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		h.logger.Warn("admin action without user id", slog.String("action", action), slog.Any("error", err))
	}
	args := append([]any{
		slog.String("action", action),
		slog.Int("user_id", userID),
		slog.Int("tournament_id", tournamentID),
	}, attrs...)
	h.logger.Info("admin action", args...)
}

// CreateHandler обрабатывает POST /tournaments
func (h *TournamentHandler) CreateHandler(w http.ResponseWriter, r *http.Request) {
	var input services.CreateTournamentInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	tournament, err := h.tournamentService.CreateTournament(r.Context(), input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"tournament": tournament}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetOverviewHandler обрабатывает GET /tournaments/{tournamentID}
func (h *TournamentHandler) GetOverviewHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	overview, err := h.tournamentService.GetOverview(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, overview, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetStandingsHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	table, err := h.tournamentService.GetStandings(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"standings": table}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) GetRoundMatchesHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	round, err := getIDFromURL(r, "roundNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matches, err := h.tournamentService.GetRoundMatches(r.Context(), id, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"matches": matches}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ResetRoundHandler обрабатывает POST /tournaments/{tournamentID}/rounds/{roundNumber}/reset
func (h *TournamentHandler) ResetRoundHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	round, err := getIDFromURL(r, "roundNumber")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.progressionService.ResetRound(r.Context(), id, round)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.audit(r, "reset_round", id, slog.Int("round", round), slog.Int("reset", result.Reset), slog.Int("unbound", result.Unbound))

	if err := writeJSON(w, http.StatusOK, jsonResponse{"reset": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) WithdrawParticipantHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	participantID, err := getIDFromURL(r, "participantID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.progressionService.WithdrawParticipant(r.Context(), id, participantID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.audit(r, "withdraw_participant", id, slog.Int("participant_id", participantID))

	if err := writeJSON(w, http.StatusOK, jsonResponse{"progression": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *TournamentHandler) ReconcileHandler(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	result, err := h.progressionService.Reconcile(r.Context(), id)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	h.audit(r, "reconcile", id, slog.Int("rounds", len(result.Rounds)))

	if err := writeJSON(w, http.StatusOK, jsonResponse{"progression": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
