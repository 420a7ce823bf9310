package brackets

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship/models"
	"github.com/Dosada05/championship/standings"
)

func standing(id, rank int, points float64, rating int) models.Standing {
	return models.Standing{ParticipantID: id, Rank: rank, Points: points, Rating: rating, Active: true}
}

func swissRound(n int) models.Round {
	return models.Round{RoundDescriptor: models.RoundDescriptor{
		Number: n, Kind: models.RoundKindSwiss, Source: models.SourceSwissPairing,
	}}
}

func pairsOf(pairings []Pairing) (games [][2]int, byes []int) {
	for _, p := range pairings {
		if p.IsBye() {
			byes = append(byes, p.White)
			continue
		}
		games = append(games, pairKey(p.White, *p.Black))
	}
	return games, byes
}

func TestSwissEvenFieldFirstRound(t *testing.T) {
	var table []models.Standing
	for i := 1; i <= 10; i++ {
		table = append(table, standing(i, i, 0, 2000-i*10))
	}

	pairings, err := NewSwissGenerator().Generate(context.Background(), GenerateRoundParams{
		Round: swissRound(1), Standings: table,
	})
	require.NoError(t, err)

	games, byes := pairsOf(pairings)
	assert.Empty(t, byes, "an even field never gets a bye")
	assert.Equal(t, [][2]int{{1, 2}, {3, 4}, {5, 6}, {7, 8}, {9, 10}}, games)
	for _, p := range pairings {
		assert.Less(t, p.White, *p.Black, "the higher place plays white in odd rounds")
	}
}

func TestSwissOddFieldByePolicy(t *testing.T) {
	table := []models.Standing{
		standing(1, 1, 1, 1500),
		standing(2, 2, 1, 1400),
		standing(3, 3, 0, 1300),
		standing(4, 4, 0, 1200),
		standing(5, 5, 0, 1100),
	}

	pairings, err := NewSwissGenerator().Generate(context.Background(), GenerateRoundParams{
		Round: swissRound(2), Standings: table,
	})
	require.NoError(t, err)
	_, byes := pairsOf(pairings)
	assert.Equal(t, []int{5}, byes, "lowest rating without a bye")

	table[4].Byes = 1
	pairings, err = NewSwissGenerator().Generate(context.Background(), GenerateRoundParams{
		Round: swissRound(2), Standings: table,
	})
	require.NoError(t, err)
	games, byes := pairsOf(pairings)
	assert.Equal(t, []int{4}, byes, "a player who already had a bye is skipped")
	assert.Len(t, games, 2)
}

func TestSwissOddScoreGroupsInEvenFieldFloat(t *testing.T) {
	// три игрока с очком и три без: поле чётное, bye не нужен
	table := []models.Standing{
		standing(1, 1, 1, 1600),
		standing(2, 2, 1, 1500),
		standing(3, 3, 1, 1400),
		standing(4, 4, 0, 1300),
		standing(5, 5, 0, 1200),
		standing(6, 6, 0, 1100),
	}

	pairings, err := NewSwissGenerator().Generate(context.Background(), GenerateRoundParams{
		Round: swissRound(2), Standings: table,
	})
	require.NoError(t, err)

	games, byes := pairsOf(pairings)
	assert.Empty(t, byes)
	require.Len(t, games, 3)
	assert.Equal(t, [2]int{1, 2}, games[0])
	assert.Equal(t, [2]int{3, 4}, games[1], "the odd member floats into the next group")
	assert.Equal(t, [2]int{5, 6}, games[2])
}

func TestSwissAvoidsRepeats(t *testing.T) {
	table := []models.Standing{
		standing(1, 1, 1, 1500),
		standing(2, 2, 1, 1400),
		standing(3, 3, 1, 1300),
		standing(4, 4, 1, 1200),
	}
	var hist PairHistory
	hist.Add(1, 2)
	hist.Add(3, 4)

	pairings, err := NewSwissGenerator().Generate(context.Background(), GenerateRoundParams{
		Round: swissRound(2), Standings: table, History: hist,
	})
	require.NoError(t, err)
	games, _ := pairsOf(pairings)
	assert.Equal(t, [][2]int{{1, 3}, {2, 4}}, games)
}

func TestSwissCrossGroupFallback(t *testing.T) {
	table := []models.Standing{
		standing(1, 1, 2, 1500),
		standing(2, 2, 2, 1400),
		standing(3, 3, 0, 1300),
		standing(4, 4, 0, 1200),
	}
	var hist PairHistory
	hist.Add(1, 2)
	hist.Add(3, 4)

	pairings, err := NewSwissGenerator().Generate(context.Background(), GenerateRoundParams{
		Round: swissRound(3), Standings: table, History: hist,
	})
	require.NoError(t, err)
	games, _ := pairsOf(pairings)
	assert.Equal(t, [][2]int{{1, 3}, {2, 4}}, games)
}

func TestSwissInfeasible(t *testing.T) {
	table := []models.Standing{standing(1, 1, 1, 1500), standing(2, 2, 0, 1400)}
	var hist PairHistory
	hist.Add(1, 2)

	_, err := NewSwissGenerator().Generate(context.Background(), GenerateRoundParams{
		Round: swissRound(2), Standings: table, History: hist,
	})
	require.ErrorIs(t, err, ErrPairingInfeasible)
}

func TestSwissSkipsInactive(t *testing.T) {
	table := []models.Standing{
		standing(1, 1, 1, 1500),
		standing(2, 2, 1, 1400),
		standing(3, 3, 0, 1300),
	}
	table[2].Active = false

	pairings, err := NewSwissGenerator().Generate(context.Background(), GenerateRoundParams{
		Round: swissRound(2), Standings: table,
	})
	require.NoError(t, err)
	games, byes := pairsOf(pairings)
	assert.Empty(t, byes)
	assert.Equal(t, [][2]int{{1, 2}}, games)
}

func TestMatchAllRejectsOddPool(t *testing.T) {
	g := &SwissGenerator{budget: swissSearchBudget}
	_, err := g.matchAll([]swissPlayer{{id: 1}, {id: 2}, {id: 3}}, PairHistory{})
	require.ErrorIs(t, err, ErrImbalancedGroup)
}

func TestColorPairBalancesColours(t *testing.T) {
	hi := swissPlayer{id: 1, rank: 1, balance: 1, last: models.ColorWhite}
	lo := swissPlayer{id: 2, rank: 2, balance: -1, last: models.ColorBlack}
	p := colorPair(swissPair{hi: hi, lo: lo}, 3)
	assert.Equal(t, 2, p.White, "the player owing whites gets white")

	hi.balance, lo.balance = 0, 0
	hi.last, lo.last = models.ColorBlack, models.ColorWhite
	p = colorPair(swissPair{hi: hi, lo: lo}, 2)
	assert.Equal(t, 1, p.White, "black last time means white now")
}

// simulateSwiss plays rounds where the higher rating always wins.
func simulateSwiss(t *testing.T, players, rounds int) []models.Match {
	t.Helper()
	const tournamentID = 7
	participants := make([]models.Participant, players)
	rating := make(map[int]int, players)
	for i := range participants {
		participants[i] = models.Participant{ID: i + 1, Seed: i + 1, Rating: 2000 - 10*i, Status: models.ParticipantActive}
		rating[i+1] = participants[i].Rating
	}

	var matches []models.Match
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for r := 1; r <= rounds; r++ {
		table := standings.Calculate(tournamentID, participants, matches, models.DefaultScoringPolicy())
		hist := NewPairHistory(matches)

		pairings, err := NewSwissGenerator().Generate(context.Background(), GenerateRoundParams{
			Round: swissRound(r), Standings: table, History: hist,
		})
		require.NoError(t, err, "P=%d round %d", players, r)
		require.Len(t, pairings, (players+1)/2)

		for i, p := range pairings {
			m := models.NewPlaceholder(tournamentID, r, i+1, nil, nil, p.IsBye())
			m.ID = len(matches) + 1
			require.NoError(t, m.Bind(p.White, p.Black, nil))
			if p.IsBye() {
				require.NoError(t, m.AwardBye(at))
			} else {
				require.False(t, hist.Has(p.White, *p.Black), "P=%d round %d repeats %s", players, r, p)
				winner := p.White
				if rating[*p.Black] > rating[p.White] {
					winner = *p.Black
				}
				require.NoError(t, m.Complete(models.Outcome{Result: models.ResultWin, WinnerID: &winner}, at))
			}
			matches = append(matches, m)
		}
	}
	return matches
}

func TestSwissSimulatedTournaments(t *testing.T) {
	for _, p := range []int{4, 6, 7, 8, 9, 10, 11, 12, 15, 16, 19, 20} {
		t.Run(fmt.Sprintf("P=%d", p), func(t *testing.T) {
			rounds, err := SwissRoundCount(p, 0)
			require.NoError(t, err)
			matches := simulateSwiss(t, p, rounds)

			byes := make(map[int]int)
			for _, m := range matches {
				if m.IsBye {
					byes[*m.Player1ID]++
				}
			}
			for id, n := range byes {
				assert.Equal(t, 1, n, "participant %d got more than one bye", id)
			}
			if p%2 == 0 {
				assert.Empty(t, byes)
			} else {
				assert.Len(t, byes, rounds)
			}
		})
	}
}

func TestSwissFiveOverThreeRounds(t *testing.T) {
	matches := simulateSwiss(t, 5, 3)
	assert.Len(t, matches, 9, "two games and one bye per round")
}
