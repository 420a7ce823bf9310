package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/Dosada05/championship/brackets"
	"github.com/Dosada05/championship/models"
	"github.com/Dosada05/championship/repositories"
	"github.com/Dosada05/championship/standings"
)

type RegistrantInput struct {
	UserID      int    `json:"user_id"`
	DisplayName string `json:"display_name"`
	Rating      int    `json:"rating"`
}

type CreateTournamentInput struct {
	Name         string                  `json:"name"`
	Config       models.TournamentConfig `json:"config"`
	Participants []RegistrantInput       `json:"participants"`
}

// TournamentOverview is everything a client needs to render a tournament.
type TournamentOverview struct {
	Tournament   *models.Tournament   `json:"tournament"`
	Rounds       []models.Round       `json:"rounds"`
	Participants []models.Participant `json:"participants"`
	Matches      []models.Match       `json:"matches"`
	Standings    []models.Standing    `json:"standings"`
}

type TournamentService interface {
	CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error)
	GetTournament(ctx context.Context, tournamentID int) (*models.Tournament, error)
	GetOverview(ctx context.Context, tournamentID int) (*TournamentOverview, error)
	GetStandings(ctx context.Context, tournamentID int) ([]models.Standing, error)
	GetRoundMatches(ctx context.Context, tournamentID, roundNumber int) ([]models.Match, error)
}

type tournamentService struct {
	store  *repositories.Store
	logger *slog.Logger
	now    func() time.Time
	// окно матча для турниров, не задавших своё
	matchWindowHrs int
	// пересчёт таблицы для одного турнира не выполняется параллельно
	standingsGroup singleflight.Group
}

func NewTournamentService(store *repositories.Store, logger *slog.Logger, matchWindowHrs int) TournamentService {
	if matchWindowHrs <= 0 {
		matchWindowHrs = models.DefaultMatchWindowHrs
	}
	return &tournamentService{
		store:          store,
		logger:         logger,
		now:            func() time.Time { return time.Now().UTC() },
		matchWindowHrs: matchWindowHrs,
	}
}

// seedRegistrants orders registrants by rating (stable) and assigns entry seeds.
func seedRegistrants(in []RegistrantInput) ([]models.Participant, error) {
	seen := make(map[int]bool, len(in))
	out := make([]models.Participant, 0, len(in))
	for _, r := range in {
		name := strings.TrimSpace(r.DisplayName)
		if name == "" {
			return nil, fmt.Errorf("%w: user %d", ErrDisplayNameRequired, r.UserID)
		}
		if seen[r.UserID] {
			return nil, fmt.Errorf("%w: user %d", ErrDuplicateParticipant, r.UserID)
		}
		seen[r.UserID] = true
		out = append(out, models.Participant{
			UserID:      r.UserID,
			DisplayName: name,
			Rating:      r.Rating,
			Status:      models.ParticipantActive,
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Rating > out[j].Rating })
	for i := range out {
		out[i].Seed = i + 1
	}
	return out, nil
}

func tournamentSlug(name string) string {
	base := slug.Make(name)
	if base == "" {
		base = "tournament"
	}
	return base + "-" + strings.SplitN(uuid.NewString(), "-", 2)[0]
}

func (s *tournamentService) CreateTournament(ctx context.Context, input CreateTournamentInput) (*models.Tournament, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, ErrTournamentNameEmpty
	}
	participants, err := seedRegistrants(input.Participants)
	if err != nil {
		return nil, err
	}
	cfg := input.Config
	if cfg.MatchWindowHrs == 0 {
		cfg.MatchWindowHrs = s.matchWindowHrs
	}
	cfg = cfg.Normalize()
	if cfg.MatchWindowHrs < 0 {
		return nil, fmt.Errorf("%w: match_window_hours must be positive", ErrValidationFailed)
	}
	plan, err := brackets.Plan(len(participants), cfg)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrValidationFailed, err)
	}

	t := &models.Tournament{
		Name:   name,
		Slug:   tournamentSlug(name),
		Status: models.StatusActive,
		Config: cfg,
	}

	err = s.store.Tx.InTx(ctx, func(exec repositories.SQLExecutor) error {
		if err := s.store.Tournaments.Create(ctx, exec, t); err != nil {
			return handleRepositoryError(err)
		}
		for i := range participants {
			participants[i].TournamentID = t.ID
			if err := s.store.Participants.Create(ctx, exec, &participants[i]); err != nil {
				return handleRepositoryError(err)
			}
		}

		rounds := make([]models.Round, 0, len(plan))
		for _, d := range plan {
			round := models.Round{TournamentID: t.ID, RoundDescriptor: d}
			if err := s.store.Rounds.Create(ctx, exec, &round); err != nil {
				return handleRepositoryError(err)
			}
			rounds = append(rounds, round)

			matches, err := s.roundMatches(ctx, t, round, participants)
			if err != nil {
				return err
			}
			for i := range matches {
				if err := s.store.Matches.Create(ctx, exec, &matches[i]); err != nil {
					return handleRepositoryError(err)
				}
			}
		}
		t.Rounds = rounds
		t.Participants = participants
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("tournament created",
		slog.Int("tournament_id", t.ID),
		slog.String("slug", t.Slug),
		slog.Int("participants", len(participants)),
		slog.Int("rounds", len(plan)),
	)
	return t, nil
}

// roundMatches builds the match rows of a round: placeholders, bound right away for the
// first round.
func (s *tournamentService) roundMatches(ctx context.Context, t *models.Tournament, round models.Round, participants []models.Participant) ([]models.Match, error) {
	slots, err := brackets.PlaceholderSlots(round.RoundDescriptor)
	if err != nil {
		return nil, err
	}
	matches := make([]models.Match, len(slots))
	for i, slot := range slots {
		matches[i] = models.NewPlaceholder(t.ID, round.Number, i+1, slot.Slot1, slot.Slot2, slot.Bye)
	}
	if round.DeterminedByRound != nil {
		return matches, nil
	}

	gen, err := brackets.GeneratorFor(round.Source)
	if err != nil {
		return nil, err
	}
	table := standings.Calculate(t.ID, participants, nil, t.Config.ScoringPolicy())
	pairings, err := gen.Generate(ctx, brackets.GenerateRoundParams{
		Round:        round,
		Standings:    table,
		Participants: participants,
	})
	if err != nil {
		return nil, mapEngineError(err)
	}

	placeholders := make([]*models.Match, len(matches))
	for i := range matches {
		placeholders[i] = &matches[i]
	}
	_, unused, err := bindPairings(placeholders, pairings, s.now().Add(t.Config.MatchWindow()))
	if err != nil {
		return nil, mapEngineError(err)
	}
	if len(unused) > 0 {
		return nil, fmt.Errorf("round %d: %d slots left unbound at creation", round.Number, len(unused))
	}
	return matches, nil
}

// buildOverview loads every part of a tournament concurrently.
func buildOverview(ctx context.Context, store *repositories.Store, tournamentID int) (*TournamentOverview, error) {
	ov := &TournamentOverview{}
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := store.Tournaments.GetByID(gCtx, nil, tournamentID)
		if err != nil {
			return handleRepositoryError(err)
		}
		ov.Tournament = t
		return nil
	})
	g.Go(func() error {
		rounds, err := store.Rounds.ListByTournament(gCtx, nil, tournamentID)
		ov.Rounds = rounds
		return err
	})
	g.Go(func() error {
		participants, err := store.Participants.ListByTournament(gCtx, nil, tournamentID)
		ov.Participants = participants
		return err
	})
	g.Go(func() error {
		matches, err := store.Matches.ListByTournament(gCtx, nil, tournamentID, repositories.MatchFilter{})
		ov.Matches = matches
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	st := &tournamentState{
		tournament:   ov.Tournament,
		rounds:       ov.Rounds,
		participants: ov.Participants,
		matches:      ov.Matches,
	}
	ov.Standings = st.table()
	return ov, nil
}

func (s *tournamentService) GetTournament(ctx context.Context, tournamentID int) (*models.Tournament, error) {
	t, err := s.store.Tournaments.GetByID(ctx, nil, tournamentID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return t, nil
}

func (s *tournamentService) GetOverview(ctx context.Context, tournamentID int) (*TournamentOverview, error) {
	return buildOverview(ctx, s.store, tournamentID)
}

func (s *tournamentService) GetStandings(ctx context.Context, tournamentID int) ([]models.Standing, error) {
	v, err, shared := s.standingsGroup.Do(strconv.Itoa(tournamentID), func() (interface{}, error) {
		ov, err := buildOverview(ctx, s.store, tournamentID)
		if err != nil {
			return nil, err
		}
		return ov.Standings, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		s.logger.Debug("standings computation shared", slog.Int("tournament_id", tournamentID))
	}
	// копия: результат singleflight делится между вызывающими
	table := v.([]models.Standing)
	out := make([]models.Standing, len(table))
	copy(out, table)
	return out, nil
}

func (s *tournamentService) GetRoundMatches(ctx context.Context, tournamentID, roundNumber int) ([]models.Match, error) {
	if _, err := s.store.Tournaments.GetByID(ctx, nil, tournamentID); err != nil {
		return nil, handleRepositoryError(err)
	}
	rounds, err := s.store.Rounds.ListByTournament(ctx, nil, tournamentID)
	if err != nil {
		return nil, err
	}
	found := false
	for _, r := range rounds {
		if r.Number == roundNumber {
			found = true
			break
		}
	}
	if !found {
		return nil, ErrRoundNotFound
	}
	return s.store.Matches.ListByTournament(ctx, nil, tournamentID, repositories.MatchFilter{Round: &roundNumber})
}
