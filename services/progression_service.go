package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Dosada05/championship/brackets"
	"github.com/Dosada05/championship/models"
	"github.com/Dosada05/championship/realtime"
	"github.com/Dosada05/championship/repositories"
)

// Reason codes reported for every round the coordinator looked at.
const (
	ReasonResolved                = "resolved"
	ReasonPreviousRoundIncomplete = "previous_round_incomplete"
	ReasonSwissRoundsIncomplete   = "swiss_rounds_incomplete"
	ReasonAlreadyResolved         = "already_resolved"
	ReasonTournamentCompleted     = "tournament_completed"
	ReasonNoDependents            = "no_dependents"
)

// RoundOutcome describes what the coordinator did with one round.
type RoundOutcome struct {
	Round   int    `json:"round"`
	Reason  string `json:"reason"`
	Bound   int    `json:"bound,omitempty"`
	Removed int    `json:"removed,omitempty"`
}

type ProgressionResult struct {
	Match               *models.Match  `json:"match,omitempty"`
	Rounds              []RoundOutcome `json:"rounds"`
	TournamentCompleted bool           `json:"tournament_completed"`
}

type ResetResult struct {
	Round    int `json:"round"`
	Reset    int `json:"reset"`
	Unbound  int `json:"unbound"`
	Forfeits int `json:"forfeits"`
}

type ProgressionService interface {
	OnMatchCompleted(ctx context.Context, matchID int, outcome models.Outcome) (*ProgressionResult, error)
	StartMatch(ctx context.Context, matchID int) (*models.Match, error)
	// ResolveRound re-runs placeholder assignment for the dependents of a round. It is
	// idempotent: a resolved round is left untouched.
	ResolveRound(ctx context.Context, tournamentID, roundNumber int) (*ProgressionResult, error)
	ResetRound(ctx context.Context, tournamentID, roundNumber int) (*ResetResult, error)
	WithdrawParticipant(ctx context.Context, tournamentID, participantID int) (*ProgressionResult, error)
	Reconcile(ctx context.Context, tournamentID int) (*ProgressionResult, error)
	ReconcileActive(ctx context.Context) error
}

type progressionService struct {
	store    *repositories.Store
	notifier Notifier
	archiver ArchiveService
	logger   *slog.Logger
	now      func() time.Time
}

func NewProgressionService(
	store *repositories.Store,
	notifier Notifier,
	archiver ArchiveService,
	logger *slog.Logger,
) ProgressionService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	return &progressionService{
		store:    store,
		notifier: notifier,
		archiver: archiver,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// run executes fn in a transaction and publishes its events after commit.
func (s *progressionService) run(ctx context.Context, tournamentID int, fn func(exec repositories.SQLExecutor, ev *eventLog) error) error {
	ev := &eventLog{tournamentID: tournamentID}
	err := s.store.Tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		ev.events = nil
		return fn(exec, ev)
	})
	if err != nil {
		return err
	}
	completed := false
	for _, e := range ev.events {
		if e.eventType == realtime.EventTournamentCompleted {
			completed = true
		}
	}
	ev.flush(s.notifier)
	if completed {
		s.archive(ctx, tournamentID)
	}
	return nil
}

func (s *progressionService) archive(ctx context.Context, tournamentID int) {
	if s.archiver == nil {
		return
	}
	overview, err := buildOverview(ctx, s.store, tournamentID)
	if err != nil {
		s.logger.Warn("archive skipped: overview failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	location, err := s.archiver.ArchiveTournament(ctx, overview)
	if err != nil {
		s.logger.Warn("archive upload failed", slog.Int("tournament_id", tournamentID), slog.Any("error", err))
		return
	}
	s.logger.Info("tournament archived", slog.Int("tournament_id", tournamentID), slog.String("location", location))
}

// lockMatchRound finds the match's round, takes the round lock and re-reads the match
// under it.
func (s *progressionService) lockMatchRound(ctx context.Context, exec repositories.SQLExecutor, matchID int) (*models.Match, error) {
	m, err := s.store.Matches.GetByID(ctx, exec, matchID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if err := s.store.Rounds.LockRound(ctx, exec, m.TournamentID, m.RoundNumber); err != nil {
		return nil, err
	}
	m, err = s.store.Matches.GetByID(ctx, exec, matchID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return m, nil
}

func (s *progressionService) tournamentOf(ctx context.Context, matchID int) (int, error) {
	m, err := s.store.Matches.GetByID(ctx, nil, matchID)
	if err != nil {
		return 0, handleRepositoryError(err)
	}
	return m.TournamentID, nil
}

func (s *progressionService) OnMatchCompleted(ctx context.Context, matchID int, outcome models.Outcome) (*ProgressionResult, error) {
	tournamentID, err := s.tournamentOf(ctx, matchID)
	if err != nil {
		return nil, err
	}

	result := &ProgressionResult{}
	err = s.run(ctx, tournamentID, func(exec repositories.SQLExecutor, ev *eventLog) error {
		result.Rounds = nil
		m, err := s.lockMatchRound(ctx, exec, matchID)
		if err != nil {
			return err
		}
		st, err := loadState(ctx, s.store, exec, m.TournamentID)
		if err != nil {
			return err
		}
		if st.tournament.Status == models.StatusCompleted {
			return ErrTournamentCompleted
		}
		round, ok := st.round(m.RoundNumber)
		if !ok {
			return ErrRoundNotFound
		}
		if round.Kind.IsElimination() && outcome.WinnerID == nil {
			return fmt.Errorf("%w: %s in %s", ErrKnockoutNeedsWinner, outcome.Result, round.Kind)
		}

		if err := m.Complete(outcome, s.now()); err != nil {
			return mapEngineError(err)
		}
		if err := s.saveMatch(ctx, exec, st, m, ev); err != nil {
			return err
		}
		s.logger.Info("match completed",
			slog.Int("tournament_id", m.TournamentID),
			slog.Int("round", m.RoundNumber),
			slog.Int("match_id", m.ID),
			slog.String("result", string(outcome.Result)),
		)

		outcomes, err := s.advance(ctx, exec, st, m.RoundNumber, ev)
		if err != nil {
			return err
		}
		result.Match = m
		result.Rounds = outcomes
		result.TournamentCompleted = st.tournament.Status == models.StatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *progressionService) StartMatch(ctx context.Context, matchID int) (*models.Match, error) {
	tournamentID, err := s.tournamentOf(ctx, matchID)
	if err != nil {
		return nil, err
	}
	var started *models.Match
	err = s.run(ctx, tournamentID, func(exec repositories.SQLExecutor, ev *eventLog) error {
		m, err := s.lockMatchRound(ctx, exec, matchID)
		if err != nil {
			return err
		}
		if err := m.Start(); err != nil {
			return mapEngineError(err)
		}
		if err := s.store.Matches.Update(ctx, exec, m); err != nil {
			return handleRepositoryError(err)
		}
		ev.matchUpdated(*m)
		started = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return started, nil
}

func (s *progressionService) ResolveRound(ctx context.Context, tournamentID, roundNumber int) (*ProgressionResult, error) {
	result := &ProgressionResult{}
	err := s.run(ctx, tournamentID, func(exec repositories.SQLExecutor, ev *eventLog) error {
		if err := s.store.Rounds.LockRound(ctx, exec, tournamentID, roundNumber); err != nil {
			return err
		}
		st, err := loadState(ctx, s.store, exec, tournamentID)
		if err != nil {
			return err
		}
		if _, ok := st.round(roundNumber); !ok {
			return ErrRoundNotFound
		}
		outcomes, err := s.advance(ctx, exec, st, roundNumber, ev)
		if err != nil {
			return err
		}
		result.Rounds = outcomes
		result.TournamentCompleted = st.tournament.Status == models.StatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// advance settles round `from` and resolves every round that becomes determined by it.
// Rounds are visited in ascending order, so round locks are always taken in order.
func (s *progressionService) advance(ctx context.Context, exec repositories.SQLExecutor, st *tournamentState, from int, ev *eventLog) ([]RoundOutcome, error) {
	var outcomes []RoundOutcome
	queue := []int{from}
	for len(queue) > 0 {
		r := queue[0]
		queue = queue[1:]

		if st.tournament.Status == models.StatusCompleted {
			outcomes = append(outcomes, RoundOutcome{Round: r, Reason: ReasonTournamentCompleted})
			continue
		}

		complete, err := s.settleRound(ctx, exec, st, r, ev)
		if err != nil {
			return nil, err
		}
		deps := st.dependents(r)
		if !complete {
			for _, d := range deps {
				outcomes = append(outcomes, RoundOutcome{Round: d.Number, Reason: ReasonPreviousRoundIncomplete})
			}
			if len(deps) == 0 {
				outcomes = append(outcomes, RoundOutcome{Round: r, Reason: ReasonPreviousRoundIncomplete})
			}
			continue
		}

		if len(deps) == 0 {
			if st.allRoundsComplete() {
				if err := s.completeTournament(ctx, exec, st, ev); err != nil {
					return nil, err
				}
				outcomes = append(outcomes, RoundOutcome{Round: r, Reason: ReasonTournamentCompleted})
			} else {
				outcomes = append(outcomes, RoundOutcome{Round: r, Reason: ReasonNoDependents})
			}
			continue
		}

		for _, d := range deps {
			if err := s.store.Rounds.LockRound(ctx, exec, st.tournament.ID, d.Number); err != nil {
				return nil, err
			}
			o, err := s.resolveRound(ctx, exec, st, d, ev)
			if err != nil {
				return nil, fmt.Errorf("resolve round %d: %w", d.Number, err)
			}
			outcomes = append(outcomes, o)
			// раунд мог сразу завершиться из-за неявок снявшихся игроков
			if o.Reason == ReasonResolved && s.nonByeTerminal(st, d.Number) {
				queue = append(queue, d.Number)
			}
		}
	}
	return outcomes, nil
}

func (s *progressionService) nonByeTerminal(st *tournamentState, number int) bool {
	for _, m := range st.matchesOf(number) {
		if m.IsPlaceholder {
			return false
		}
		if !m.IsBye && !m.Status.IsTerminal() {
			return false
		}
	}
	return true
}

// settleRound reports whether the round is complete. Pending byes are awarded only
// once every non-bye match of the round is terminal.
func (s *progressionService) settleRound(ctx context.Context, exec repositories.SQLExecutor, st *tournamentState, number int, ev *eventLog) (bool, error) {
	ms := st.matchesOf(number)
	if len(ms) == 0 || !s.nonByeTerminal(st, number) {
		return false, nil
	}
	now := s.now()
	for _, m := range ms {
		if !m.IsBye || m.Status != models.MatchStatusPending {
			continue
		}
		if err := m.AwardBye(now); err != nil {
			return false, mapEngineError(err)
		}
		if err := s.store.Matches.Update(ctx, exec, m); err != nil {
			return false, handleRepositoryError(err)
		}
		ev.matchUpdated(*m)
		s.logger.Debug("bye awarded", slog.Int("tournament_id", m.TournamentID), slog.Int("round", number), slog.Int("participant_id", *m.Player1ID))
	}
	return st.isComplete(number), nil
}

func (s *progressionService) resolveRound(ctx context.Context, exec repositories.SQLExecutor, st *tournamentState, round models.Round, ev *eventLog) (RoundOutcome, error) {
	out := RoundOutcome{Round: round.Number}

	var placeholders []*models.Match
	for _, m := range st.matchesOf(round.Number) {
		if m.IsPlaceholder {
			placeholders = append(placeholders, m)
		}
	}
	if len(placeholders) == 0 {
		out.Reason = ReasonAlreadyResolved
		return out, nil
	}

	if round.DeterminedByRound != nil && !st.isComplete(*round.DeterminedByRound) {
		out.Reason = ReasonPreviousRoundIncomplete
		return out, nil
	}
	if round.Source == models.SourceStandingsSeed {
		for _, q := range st.rounds {
			if q.IsQualification() && !st.isComplete(q.Number) {
				out.Reason = ReasonSwissRoundsIncomplete
				return out, nil
			}
		}
	}

	pairings, err := s.generate(ctx, st, round)
	if err != nil {
		return out, err
	}

	window := st.tournament.Config.Normalize().MatchWindow()
	bound, unused, err := bindPairings(placeholders, pairings, s.now().Add(window))
	if err != nil {
		return out, mapEngineError(err)
	}
	for _, m := range bound {
		if err := s.store.Matches.Update(ctx, exec, m); err != nil {
			return out, handleRepositoryError(err)
		}
	}
	unusedIDs := make([]int, 0, len(unused))
	for _, m := range unused {
		unusedIDs = append(unusedIDs, m.ID)
	}
	for _, id := range unusedIDs {
		if err := s.store.Matches.Delete(ctx, exec, id); err != nil {
			return out, handleRepositoryError(err)
		}
		st.removeMatch(id)
	}

	if _, err := s.forfeitWithdrawn(ctx, exec, st, round, ev); err != nil {
		return out, err
	}

	resolved := make([]models.Match, 0, len(bound))
	for _, m := range st.matchesOf(round.Number) {
		resolved = append(resolved, *m)
	}
	ev.add(realtime.EventRoundResolved, map[string]any{"round": round.Number, "matches": resolved})

	s.logger.Info("round resolved",
		slog.Int("tournament_id", st.tournament.ID),
		slog.Int("round", round.Number),
		slog.String("source", string(round.Source)),
		slog.Int("bound", len(bound)),
		slog.Int("removed", len(unused)),
	)
	out.Reason = ReasonResolved
	out.Bound = len(bound)
	out.Removed = len(unused)
	return out, nil
}

func (s *progressionService) generate(ctx context.Context, st *tournamentState, round models.Round) ([]brackets.Pairing, error) {
	gen, err := brackets.GeneratorFor(round.Source)
	if err != nil {
		return nil, err
	}
	params := brackets.GenerateRoundParams{
		Round:        round,
		Standings:    activeOnly(st.table()),
		Participants: st.participants,
		History:      brackets.NewPairHistory(st.matches),
	}
	if round.DeterminedByRound != nil {
		for _, m := range st.matchesOf(*round.DeterminedByRound) {
			params.Feeder = append(params.Feeder, *m)
		}
	}
	pairings, err := gen.Generate(ctx, params)
	if err != nil {
		s.logger.Error("pairing generation failed",
			slog.Int("tournament_id", st.tournament.ID),
			slog.Int("round", round.Number),
			slog.String("generator", gen.GetName()),
			slog.Any("error", err),
		)
		return nil, mapEngineError(err)
	}
	return pairings, nil
}

// forfeitWithdrawn closes open matches of withdrawn participants in a round: the
// opponent wins by forfeit and a pending bye is cancelled.
func (s *progressionService) forfeitWithdrawn(ctx context.Context, exec repositories.SQLExecutor, st *tournamentState, round models.Round, ev *eventLog) (int, error) {
	withdrawn := func(id *int) bool {
		if id == nil {
			return false
		}
		p, ok := st.participant(*id)
		return ok && !p.IsActive()
	}

	n := 0
	now := s.now()
	for _, m := range st.matchesOf(round.Number) {
		if m.IsPlaceholder || m.Status.IsTerminal() {
			continue
		}
		w1, w2 := withdrawn(m.Player1ID), withdrawn(m.Player2ID)
		if !w1 && !w2 {
			continue
		}

		var err error
		switch {
		case m.IsBye:
			err = m.Cancel()
		case w1 && w2 && !round.Kind.IsElimination():
			err = m.Complete(models.Outcome{Result: models.ResultForfeitDouble}, now)
		case w1 && !w2:
			err = m.Complete(models.Outcome{Result: models.ResultForfeitSingle, WinnerID: m.Player2ID}, now)
		default:
			// в плей-офф победитель нужен всегда; при двойной неявке проходит белый
			err = m.Complete(models.Outcome{Result: models.ResultForfeitSingle, WinnerID: m.Player1ID}, now)
		}
		if err != nil {
			return n, mapEngineError(err)
		}
		if err := s.store.Matches.Update(ctx, exec, m); err != nil {
			return n, handleRepositoryError(err)
		}
		ev.matchUpdated(*m)
		n++
	}
	return n, nil
}

func (s *progressionService) completeTournament(ctx context.Context, exec repositories.SQLExecutor, st *tournamentState, ev *eventLog) error {
	if err := s.store.Tournaments.UpdateStatus(ctx, exec, st.tournament.ID, models.StatusCompleted); err != nil {
		return handleRepositoryError(err)
	}
	st.tournament.Status = models.StatusCompleted

	table := st.table()
	placements := make(map[int]int)
	for _, row := range table {
		if row.FinalPosition != nil {
			placements[row.ParticipantID] = *row.FinalPosition
		}
	}
	ev.add(realtime.EventTournamentCompleted, map[string]any{
		"tournament_id": st.tournament.ID,
		"placements":    placements,
		"standings":     table,
	})
	s.logger.Info("tournament completed", slog.Int("tournament_id", st.tournament.ID))
	return nil
}

// saveMatch persists a match edited in place inside st and records the event.
func (s *progressionService) saveMatch(ctx context.Context, exec repositories.SQLExecutor, st *tournamentState, m *models.Match, ev *eventLog) error {
	if err := s.store.Matches.Update(ctx, exec, m); err != nil {
		return handleRepositoryError(err)
	}
	for i := range st.matches {
		if st.matches[i].ID == m.ID {
			st.matches[i] = *m
		}
	}
	ev.matchUpdated(*m)
	return nil
}

func (s *progressionService) ResetRound(ctx context.Context, tournamentID, roundNumber int) (*ResetResult, error) {
	result := &ResetResult{Round: roundNumber}
	err := s.run(ctx, tournamentID, func(exec repositories.SQLExecutor, ev *eventLog) error {
		*result = ResetResult{Round: roundNumber}
		rounds, err := s.store.Rounds.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		found := false
		for _, r := range rounds {
			if r.Number < roundNumber {
				continue
			}
			found = found || r.Number == roundNumber
			if err := s.store.Rounds.LockRound(ctx, exec, tournamentID, r.Number); err != nil {
				return err
			}
		}
		if !found {
			return ErrRoundNotFound
		}

		st, err := loadState(ctx, s.store, exec, tournamentID)
		if err != nil {
			return err
		}
		for _, r := range st.rounds {
			if r.Number < roundNumber {
				continue
			}
			for _, m := range st.matchesOf(r.Number) {
				if m.IsPlaceholder {
					continue
				}
				if r.Number == roundNumber {
					if err := m.Reset(); err != nil {
						return mapEngineError(err)
					}
					result.Reset++
				} else {
					if err := m.Unbind(); err != nil {
						return mapEngineError(err)
					}
					result.Unbound++
				}
				if err := s.store.Matches.Update(ctx, exec, m); err != nil {
					return handleRepositoryError(err)
				}
			}
		}

		if st.tournament.Status != models.StatusActive {
			if err := s.store.Tournaments.UpdateStatus(ctx, exec, tournamentID, models.StatusActive); err != nil {
				return handleRepositoryError(err)
			}
			st.tournament.Status = models.StatusActive
		}

		round, _ := st.round(roundNumber)
		forfeits, err := s.forfeitWithdrawn(ctx, exec, st, round, ev)
		if err != nil {
			return err
		}
		result.Forfeits = forfeits
		ev.add(realtime.EventRoundReset, result)

		if forfeits > 0 {
			if _, err := s.advance(ctx, exec, st, roundNumber, ev); err != nil {
				return err
			}
		}
		s.logger.Warn("round reset",
			slog.Int("tournament_id", tournamentID),
			slog.Int("round", roundNumber),
			slog.Int("reset", result.Reset),
			slog.Int("unbound", result.Unbound),
		)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *progressionService) WithdrawParticipant(ctx context.Context, tournamentID, participantID int) (*ProgressionResult, error) {
	result := &ProgressionResult{}
	err := s.run(ctx, tournamentID, func(exec repositories.SQLExecutor, ev *eventLog) error {
		*result = ProgressionResult{}
		p, err := s.store.Participants.GetByID(ctx, exec, participantID)
		if err != nil {
			return handleRepositoryError(err)
		}
		if p.TournamentID != tournamentID {
			return ErrParticipantNotFound
		}
		if !p.IsActive() {
			return ErrParticipantNotActive
		}

		matches, err := s.store.Matches.ListByTournament(ctx, exec, tournamentID, repositories.MatchFilter{})
		if err != nil {
			return err
		}
		openRound := 0
		for _, m := range matches {
			if !m.IsPlaceholder && !m.Status.IsTerminal() && m.HasPlayer(participantID) {
				openRound = m.RoundNumber
				break
			}
		}
		if openRound > 0 {
			if err := s.store.Rounds.LockRound(ctx, exec, tournamentID, openRound); err != nil {
				return err
			}
		}

		st, err := loadState(ctx, s.store, exec, tournamentID)
		if err != nil {
			return err
		}
		if st.tournament.Status == models.StatusCompleted {
			return ErrTournamentCompleted
		}
		if err := s.store.Participants.UpdateStatus(ctx, exec, participantID, models.ParticipantWithdrawn); err != nil {
			return handleRepositoryError(err)
		}
		for i := range st.participants {
			if st.participants[i].ID == participantID {
				st.participants[i].Status = models.ParticipantWithdrawn
			}
		}
		ev.add(realtime.EventParticipantWithdrew, map[string]int{"participant_id": participantID})
		s.logger.Info("participant withdrew", slog.Int("tournament_id", tournamentID), slog.Int("participant_id", participantID))

		if openRound == 0 {
			return nil
		}
		round, _ := st.round(openRound)
		if _, err := s.forfeitWithdrawn(ctx, exec, st, round, ev); err != nil {
			return err
		}
		outcomes, err := s.advance(ctx, exec, st, openRound, ev)
		if err != nil {
			return err
		}
		result.Rounds = outcomes
		result.TournamentCompleted = st.tournament.Status == models.StatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *progressionService) Reconcile(ctx context.Context, tournamentID int) (*ProgressionResult, error) {
	result := &ProgressionResult{}
	err := s.run(ctx, tournamentID, func(exec repositories.SQLExecutor, ev *eventLog) error {
		*result = ProgressionResult{}
		rounds, err := s.store.Rounds.ListByTournament(ctx, exec, tournamentID)
		if err != nil {
			return err
		}
		for _, r := range rounds {
			if err := s.store.Rounds.LockRound(ctx, exec, tournamentID, r.Number); err != nil {
				return err
			}
		}
		st, err := loadState(ctx, s.store, exec, tournamentID)
		if err != nil {
			return err
		}
		for _, r := range st.rounds {
			if st.tournament.Status == models.StatusCompleted {
				break
			}
			if !s.nonByeTerminal(st, r.Number) {
				continue
			}
			outcomes, err := s.advance(ctx, exec, st, r.Number, ev)
			if err != nil {
				return err
			}
			for _, o := range outcomes {
				if o.Reason == ReasonResolved || o.Reason == ReasonTournamentCompleted {
					result.Rounds = append(result.Rounds, o)
				}
			}
		}
		result.TournamentCompleted = st.tournament.Status == models.StatusCompleted
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ReconcileActive reconciles every active tournament. Failures are logged per
// tournament and do not stop the sweep.
func (s *progressionService) ReconcileActive(ctx context.Context) error {
	ids, err := s.store.Tournaments.ListIDsByStatus(ctx, nil, models.StatusActive)
	if err != nil {
		return fmt.Errorf("failed to list active tournaments: %w", err)
	}
	var errs []error
	for _, id := range ids {
		res, err := s.Reconcile(ctx, id)
		if err != nil {
			s.logger.Error("reconcile failed", slog.Int("tournament_id", id), slog.Any("error", err))
			errs = append(errs, fmt.Errorf("tournament %d: %w", id, err))
			continue
		}
		if len(res.Rounds) > 0 {
			s.logger.Info("reconcile caught up", slog.Int("tournament_id", id), slog.Int("rounds", len(res.Rounds)))
		}
	}
	return errors.Join(errs...)
}
