package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship/models"
	"github.com/Dosada05/championship/repositories"
	"github.com/Dosada05/championship/storage"
)

type recordingNotifier struct {
	mu     sync.Mutex
	events []string
}

func (n *recordingNotifier) Publish(_ int, eventType string, _ any) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, eventType)
}

func (n *recordingNotifier) count(eventType string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, e := range n.events {
		if e == eventType {
			c++
		}
	}
	return c
}

type testEnv struct {
	store       *repositories.Store
	tournaments TournamentService
	progression ProgressionService
	uploader    *storage.MemoryUploader
	events      *recordingNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := repositories.NewMemoryStore()
	uploader := storage.NewMemoryUploader()
	events := &recordingNotifier{}
	return &testEnv{
		store:       store,
		tournaments: NewTournamentService(store, logger, 48),
		progression: NewProgressionService(store, events, NewArchiveService(uploader, logger), logger),
		uploader:    uploader,
		events:      events,
	}
}

func registrants(n int) []RegistrantInput {
	out := make([]RegistrantInput, n)
	for i := range out {
		out[i] = RegistrantInput{
			UserID:      100 + i,
			DisplayName: fmt.Sprintf("Player %d", i+1),
			Rating:      2000 - 10*i,
		}
	}
	return out
}

func (e *testEnv) create(t *testing.T, players int, cfg models.TournamentConfig) *models.Tournament {
	t.Helper()
	tour, err := e.tournaments.CreateTournament(context.Background(), CreateTournamentInput{
		Name:         "Spring Open",
		Config:       cfg,
		Participants: registrants(players),
	})
	require.NoError(t, err)
	return tour
}

func (e *testEnv) roundMatches(t *testing.T, tournamentID, round int) []models.Match {
	t.Helper()
	ms, err := e.tournaments.GetRoundMatches(context.Background(), tournamentID, round)
	require.NoError(t, err)
	return ms
}

// openGames returns the bound two-player matches of a round that still need a result.
func (e *testEnv) openGames(t *testing.T, tournamentID, round int) []models.Match {
	t.Helper()
	var out []models.Match
	for _, m := range e.roundMatches(t, tournamentID, round) {
		if !m.IsPlaceholder && !m.IsBye && !m.Status.IsTerminal() {
			out = append(out, m)
		}
	}
	return out
}

func whiteWins(m models.Match) models.Outcome {
	w := *m.Player1ID
	return models.Outcome{Result: models.ResultWin, WinnerID: &w}
}

// playRound reports a white win for every open game of the round and returns the
// coordinator result of the last report.
func (e *testEnv) playRound(t *testing.T, tournamentID, round int) *ProgressionResult {
	t.Helper()
	games := e.openGames(t, tournamentID, round)
	require.NotEmpty(t, games, "round %d has nothing to play", round)
	var last *ProgressionResult
	for _, m := range games {
		res, err := e.progression.OnMatchCompleted(context.Background(), m.ID, whiteWins(m))
		require.NoError(t, err)
		last = res
	}
	return last
}

func outcomeFor(res *ProgressionResult, round int) (RoundOutcome, bool) {
	for _, o := range res.Rounds {
		if o.Round == round {
			return o, true
		}
	}
	return RoundOutcome{}, false
}

// meetings counts games and byes per participant over rounds 1..upTo.
func (e *testEnv) meetings(t *testing.T, tournamentID, upTo int) (map[[2]int]int, map[int]int) {
	t.Helper()
	games := make(map[[2]int]int)
	byes := make(map[int]int)
	for r := 1; r <= upTo; r++ {
		for _, m := range e.roundMatches(t, tournamentID, r) {
			require.False(t, m.IsPlaceholder, "round %d still has placeholders", r)
			if m.IsBye {
				byes[*m.Player1ID]++
				continue
			}
			a, b := *m.Player1ID, *m.Player2ID
			if a > b {
				a, b = b, a
			}
			games[[2]int{a, b}]++
		}
	}
	return games, byes
}
