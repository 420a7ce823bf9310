package standings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship/models"
)

func players(ratings ...int) []models.Participant {
	out := make([]models.Participant, len(ratings))
	for i, r := range ratings {
		out[i] = models.Participant{ID: i + 1, DisplayName: "p", Rating: r, Seed: i + 1, Status: models.ParticipantActive}
	}
	return out
}

func game(round, order, white, black int, result models.ResultKind, winner int) models.Match {
	m := models.NewPlaceholder(1, round, order, nil, nil, false)
	b := black
	if err := m.Bind(white, &b, nil); err != nil {
		panic(err)
	}
	o := models.Outcome{Result: result}
	if winner != 0 {
		w := winner
		o.WinnerID = &w
	}
	if err := m.Complete(o, time.Unix(0, 0)); err != nil {
		panic(err)
	}
	return m
}

func bye(round, order, player int, awarded bool) models.Match {
	m := models.NewPlaceholder(1, round, order, nil, nil, true)
	if err := m.Bind(player, nil, nil); err != nil {
		panic(err)
	}
	if awarded {
		if err := m.AwardBye(time.Unix(0, 0)); err != nil {
			panic(err)
		}
	}
	return m
}

func byID(table []models.Standing) map[int]models.Standing {
	out := make(map[int]models.Standing, len(table))
	for _, s := range table {
		out[s.ParticipantID] = s
	}
	return out
}

func ranks(table []models.Standing) []int {
	out := make([]int, len(table))
	for i, s := range table {
		out[i] = s.ParticipantID
	}
	return out
}

func TestCalculatePointsAndCoefficients(t *testing.T) {
	matches := []models.Match{
		game(1, 1, 1, 2, models.ResultWin, 1),
		game(1, 2, 3, 4, models.ResultDraw, 0),
		game(2, 1, 1, 3, models.ResultWin, 1),
		game(2, 2, 2, 4, models.ResultWin, 2),
	}

	table := Calculate(1, players(1500, 1500, 1500, 1500), matches, models.DefaultScoringPolicy())
	require.Len(t, table, 4)
	assert.Equal(t, []int{1, 2, 3, 4}, ranks(table))

	st := byID(table)
	assert.Equal(t, 2.0, st[1].Points)
	assert.Equal(t, 1.0, st[2].Points)
	assert.Equal(t, 0.5, st[3].Points)
	assert.Equal(t, 0.5, st[4].Points)

	assert.Equal(t, 1.5, st[1].Buchholz)
	assert.Equal(t, 2.5, st[2].Buchholz)
	assert.Equal(t, 2.5, st[3].Buchholz, "3 is ahead of 4 on Buchholz")
	assert.Equal(t, 1.5, st[4].Buchholz)

	assert.Equal(t, 1.5, st[1].SonnebornBerger)
	assert.Equal(t, 0.25, st[3].SonnebornBerger)

	assert.Equal(t, 2, st[1].Wins)
	assert.Equal(t, 1, st[4].Draws)
	assert.Equal(t, 1, st[4].Losses)
	assert.Equal(t, 2, st[1].MatchesPlayed)
	assert.Equal(t, []int{2, 3}, st[1].Opponents)
	assert.Equal(t, 2, st[1].Whites)
	assert.Equal(t, models.ColorBlack, st[4].LastColor)
	for i, s := range table {
		assert.Equal(t, i+1, s.Rank)
	}
}

func TestCalculateByeOnlyWhenAwarded(t *testing.T) {
	ps := players(1500, 1400, 1300)
	pending := []models.Match{game(1, 1, 1, 2, models.ResultWin, 1), bye(1, 2, 3, false)}
	st := byID(Calculate(1, ps, pending, models.DefaultScoringPolicy()))
	assert.Zero(t, st[3].Points, "a pending bye is worth nothing")
	assert.Zero(t, st[3].Byes)
	assert.Zero(t, st[3].MatchesPlayed)

	awarded := []models.Match{game(1, 1, 1, 2, models.ResultWin, 1), bye(1, 2, 3, true)}
	st = byID(Calculate(1, ps, awarded, models.DefaultScoringPolicy()))
	assert.Equal(t, 1.0, st[3].Points)
	assert.Equal(t, 1, st[3].Byes)
	assert.Equal(t, 1, st[3].MatchesPlayed)
	assert.Empty(t, st[3].Opponents, "a bye has no opponent")
	assert.Zero(t, st[3].Buchholz)

	policy := models.DefaultScoringPolicy()
	policy.ByeCountsAsPlayed = false
	policy.ByePoints = 0.5
	st = byID(Calculate(1, ps, awarded, policy))
	assert.Equal(t, 0.5, st[3].Points)
	assert.Zero(t, st[3].MatchesPlayed)
}

func TestCalculateForfeits(t *testing.T) {
	ps := players(1500, 1400, 1300, 1200)
	matches := []models.Match{
		game(1, 1, 1, 2, models.ResultForfeitSingle, 2),
		game(1, 2, 3, 4, models.ResultForfeitDouble, 0),
	}
	st := byID(Calculate(1, ps, matches, models.DefaultScoringPolicy()))

	assert.Equal(t, 1.0, st[2].Points)
	assert.Equal(t, 1, st[2].Wins)
	assert.Equal(t, 1, st[1].Losses)
	assert.Zero(t, st[3].Points)
	assert.Equal(t, 1, st[3].Losses)
	assert.Equal(t, 1, st[4].Losses)
	assert.Zero(t, st[1].Whites, "forfeits do not count colors")
	assert.Equal(t, models.ColorNone, st[2].LastColor)
}

func TestCalculateIgnoresUnfinishedMatches(t *testing.T) {
	ps := players(1500, 1400)
	m := models.NewPlaceholder(1, 1, 1, nil, nil, false)
	black := 2
	require.NoError(t, m.Bind(1, &black, nil))
	require.NoError(t, m.Start())

	table := Calculate(1, ps, []models.Match{m, models.NewPlaceholder(1, 2, 1, nil, nil, false)}, models.DefaultScoringPolicy())
	for _, s := range table {
		assert.Zero(t, s.Points)
		assert.Zero(t, s.MatchesPlayed)
	}
}

func TestCalculateTiebreakOrder(t *testing.T) {
	t.Run("rating breaks a full tie", func(t *testing.T) {
		table := Calculate(1, players(1400, 1600, 1500), nil, models.DefaultScoringPolicy())
		assert.Equal(t, []int{2, 3, 1}, ranks(table))
	})

	t.Run("lot breaks equal ratings", func(t *testing.T) {
		table := Calculate(7, players(1500, 1500), nil, models.DefaultScoringPolicy())
		first, second := 1, 2
		if LotKey(7, 2) < LotKey(7, 1) {
			first, second = 2, 1
		}
		assert.Equal(t, []int{first, second}, ranks(table))
	})

	t.Run("withdrawn players sort last", func(t *testing.T) {
		ps := players(1500, 1400, 1300)
		ps[0].Status = models.ParticipantWithdrawn
		matches := []models.Match{game(1, 1, 1, 2, models.ResultWin, 1)}
		table := Calculate(1, ps, matches, models.DefaultScoringPolicy())
		assert.Equal(t, []int{2, 3, 1}, ranks(table))
		assert.False(t, table[2].Active)
		assert.Equal(t, 1.0, table[2].Points, "results stay on the record")
	})
}

func TestHeadToHeadAmongTiedPlayers(t *testing.T) {
	a := &entry{Standing: models.Standing{ParticipantID: 1, Active: true, Points: 2, Buchholz: 3, Rating: 1400}, vs: map[int]float64{2: 1}}
	b := &entry{Standing: models.Standing{ParticipantID: 2, Active: true, Points: 2, Buchholz: 3, Rating: 1600}, vs: map[int]float64{1: 0}}
	c := &entry{Standing: models.Standing{ParticipantID: 3, Active: true, Points: 1, Buchholz: 3, Rating: 1700}, vs: map[int]float64{1: 1}}

	applyHeadToHead([]*entry{a, b, c})
	assert.Equal(t, 1.0, a.HeadToHead)
	assert.Zero(t, b.HeadToHead)
	assert.Zero(t, c.HeadToHead, "no tie, no head-to-head score")
	assert.True(t, less(a, b), "head-to-head winner is ahead despite lower rating")
	assert.False(t, less(b, a))
}

func TestCalculateIsDeterministic(t *testing.T) {
	ps := players(1500, 1500, 1500, 1500, 1500, 1500)
	matches := []models.Match{
		game(1, 1, 1, 2, models.ResultDraw, 0),
		game(1, 2, 3, 4, models.ResultDraw, 0),
		game(1, 3, 5, 6, models.ResultDraw, 0),
		game(2, 1, 1, 3, models.ResultWin, 3),
		game(2, 2, 2, 5, models.ResultWin, 2),
		game(2, 3, 4, 6, models.ResultDraw, 0),
	}
	want := Calculate(3, ps, matches, models.DefaultScoringPolicy())

	reversedPs := make([]models.Participant, len(ps))
	for i, p := range ps {
		reversedPs[len(ps)-1-i] = p
	}
	reversedMs := make([]models.Match, len(matches))
	for i, m := range matches {
		reversedMs[len(matches)-1-i] = m
	}
	for i := 0; i < 5; i++ {
		assert.Equal(t, want, Calculate(3, reversedPs, reversedMs, models.DefaultScoringPolicy()))
		assert.Equal(t, want, Calculate(3, ps, matches, models.DefaultScoringPolicy()))
	}
}

func TestLotKey(t *testing.T) {
	assert.Equal(t, LotKey(1, 2), LotKey(1, 2))
	assert.NotEqual(t, LotKey(1, 2), LotKey(2, 1))
	assert.NotEqual(t, LotKey(1, 2), LotKey(1, 3))
}
