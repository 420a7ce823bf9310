package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/Dosada05/championship/brackets"
	"github.com/Dosada05/championship/models"
	"github.com/Dosada05/championship/realtime"
	"github.com/Dosada05/championship/repositories"
	"github.com/Dosada05/championship/standings"
)

// handleRepositoryError - общий хелпер для ошибок репозитория
func handleRepositoryError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repositories.ErrTournamentNotFound):
		return ErrTournamentNotFound
	case errors.Is(err, repositories.ErrParticipantNotFound):
		return ErrParticipantNotFound
	case errors.Is(err, repositories.ErrMatchNotFound):
		return ErrMatchNotFound
	case errors.Is(err, repositories.ErrRoundNotFound):
		return ErrRoundNotFound
	case errors.Is(err, repositories.ErrTournamentSlugConflict):
		return ErrTournamentSlugConflict
	case errors.Is(err, repositories.ErrParticipantConflict), errors.Is(err, repositories.ErrParticipantSeedConflict):
		return fmt.Errorf("%w: %v", ErrDuplicateParticipant, err)
	}
	return err
}

// mapEngineError translates domain errors of models/brackets to service errors.
func mapEngineError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, models.ErrInvalidTransition):
		return fmt.Errorf("%w: %v", ErrMatchNotPlayable, err)
	case errors.Is(err, models.ErrInvalidOutcome), errors.Is(err, models.ErrUnknownEnumValue):
		return fmt.Errorf("%w: %v", ErrInvalidResult, err)
	case errors.Is(err, brackets.ErrPairingInfeasible),
		errors.Is(err, brackets.ErrImbalancedGroup),
		errors.Is(err, brackets.ErrParticipantDropped),
		errors.Is(err, brackets.ErrNotEnoughQualifiers),
		errors.Is(err, brackets.ErrFeederUndecided),
		errors.Is(err, brackets.ErrUnknownDeclaredSeed):
		return fmt.Errorf("%w: %v", ErrPairingFailed, err)
	}
	return err
}

// Notifier receives tournament events after the transaction that produced them commits.
type Notifier interface {
	Publish(tournamentID int, eventType string, payload any)
}

type nopNotifier struct{}

func (nopNotifier) Publish(int, string, any) {}

type pendingEvent struct {
	eventType string
	payload   any
}

// eventLog collects events inside a transaction; they are dropped on rollback.
type eventLog struct {
	tournamentID int
	events       []pendingEvent
}

func (l *eventLog) add(eventType string, payload any) {
	l.events = append(l.events, pendingEvent{eventType: eventType, payload: payload})
}

func (l *eventLog) matchUpdated(m models.Match) {
	l.add(realtime.EventMatchUpdated, m)
}

func (l *eventLog) flush(n Notifier) {
	for _, e := range l.events {
		n.Publish(l.tournamentID, e.eventType, e.payload)
	}
	l.events = nil
}

// tournamentState is a transaction-local view of one tournament.
type tournamentState struct {
	tournament   *models.Tournament
	rounds       []models.Round
	participants []models.Participant
	matches      []models.Match
}

func loadState(ctx context.Context, store *repositories.Store, exec repositories.SQLExecutor, tournamentID int) (*tournamentState, error) {
	t, err := store.Tournaments.GetByID(ctx, exec, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	rounds, err := store.Rounds.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, err
	}
	participants, err := store.Participants.ListByTournament(ctx, exec, tournamentID)
	if err != nil {
		return nil, err
	}
	matches, err := store.Matches.ListByTournament(ctx, exec, tournamentID, repositories.MatchFilter{})
	if err != nil {
		return nil, err
	}
	return &tournamentState{tournament: t, rounds: rounds, participants: participants, matches: matches}, nil
}

func (st *tournamentState) round(number int) (models.Round, bool) {
	for _, r := range st.rounds {
		if r.Number == number {
			return r, true
		}
	}
	return models.Round{}, false
}

func (st *tournamentState) participant(id int) (models.Participant, bool) {
	for _, p := range st.participants {
		if p.ID == id {
			return p, true
		}
	}
	return models.Participant{}, false
}

// matchesOf returns pointers into st.matches ordered by board.
func (st *tournamentState) matchesOf(number int) []*models.Match {
	var out []*models.Match
	for i := range st.matches {
		if st.matches[i].RoundNumber == number {
			out = append(out, &st.matches[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OrderInRound < out[j].OrderInRound })
	return out
}

// removeMatch rebuilds the slice, so pointers taken earlier by matchesOf stay valid.
func (st *tournamentState) removeMatch(id int) {
	kept := make([]models.Match, 0, len(st.matches))
	for _, m := range st.matches {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	st.matches = kept
}

func (st *tournamentState) dependents(number int) []models.Round {
	var out []models.Round
	for _, r := range st.rounds {
		if r.DeterminedByRound != nil && *r.DeterminedByRound == number {
			out = append(out, r)
		}
	}
	return out
}

// isComplete: every match is bound and terminal, byes included.
func (st *tournamentState) isComplete(number int) bool {
	ms := st.matchesOf(number)
	if len(ms) == 0 {
		return false
	}
	for _, m := range ms {
		if m.IsPlaceholder || !m.Status.IsTerminal() {
			return false
		}
	}
	return true
}

func (st *tournamentState) allRoundsComplete() bool {
	for _, r := range st.rounds {
		if !st.isComplete(r.Number) {
			return false
		}
	}
	return len(st.rounds) > 0
}

func (st *tournamentState) qualificationMatches() []models.Match {
	qualification := make(map[int]bool, len(st.rounds))
	for _, r := range st.rounds {
		qualification[r.Number] = r.IsQualification()
	}
	out := make([]models.Match, 0, len(st.matches))
	for _, m := range st.matches {
		if qualification[m.RoundNumber] {
			out = append(out, m)
		}
	}
	return out
}

// table returns qualification standings with final placements applied.
func (st *tournamentState) table() []models.Standing {
	cfg := st.tournament.Config.Normalize()
	table := standings.Calculate(st.tournament.ID, st.participants, st.qualificationMatches(), cfg.ScoringPolicy())
	if cfg.Format.HasKnockout() {
		standings.ApplyPlacements(table, standings.FinalPlacements(st.rounds, st.matches))
	} else if st.tournament.Status == models.StatusCompleted {
		standings.ApplyPlacements(table, standings.PlacementsFromTable(table))
	}
	return table
}

func activeOnly(table []models.Standing) []models.Standing {
	out := make([]models.Standing, 0, len(table))
	for _, s := range table {
		if s.Active {
			out = append(out, s)
		}
	}
	return out
}

// bindPairings fills placeholder slots in board order. A bye prefers the bye slot and a
// game prefers a regular slot; whatever is left over is returned as unused.
func bindPairings(placeholders []*models.Match, pairings []brackets.Pairing, deadline time.Time) (bound, unused []*models.Match, err error) {
	var regular, byeSlots []*models.Match
	for _, m := range placeholders {
		if m.ByeSlot {
			byeSlots = append(byeSlots, m)
		} else {
			regular = append(regular, m)
		}
	}
	if len(pairings) > len(placeholders) {
		return nil, nil, fmt.Errorf("%w: %d pairings for %d slots", ErrPlaceholderSlotsExceeded, len(pairings), len(placeholders))
	}

	take := func(first, second *[]*models.Match, fromEnd bool) *models.Match {
		for _, pool := range []*[]*models.Match{first, second} {
			if len(*pool) == 0 {
				continue
			}
			if fromEnd {
				m := (*pool)[len(*pool)-1]
				*pool = (*pool)[:len(*pool)-1]
				return m
			}
			m := (*pool)[0]
			*pool = (*pool)[1:]
			return m
		}
		return nil
	}

	for _, p := range pairings {
		var slot *models.Match
		var dl *time.Time
		if p.IsBye() {
			slot = take(&byeSlots, &regular, true)
		} else {
			slot = take(&regular, &byeSlots, false)
			d := deadline
			dl = &d
		}
		if err := slot.Bind(p.White, p.Black, dl); err != nil {
			return nil, nil, err
		}
		bound = append(bound, slot)
	}
	unused = append(regular, byeSlots...)
	sort.Slice(bound, func(i, j int) bool { return bound[i].OrderInRound < bound[j].OrderInRound })
	return bound, unused, nil
}
