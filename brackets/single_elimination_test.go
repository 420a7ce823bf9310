package brackets

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship/models"
)

func TestSeedOrder(t *testing.T) {
	assert.Equal(t, []int{1, 2}, SeedOrder(2))
	assert.Equal(t, []int{1, 4, 2, 3}, SeedOrder(4))
	assert.Equal(t, []int{1, 8, 4, 5, 2, 7, 3, 6}, SeedOrder(8))

	order := SeedOrder(16)
	for i := 0; i < len(order); i += 2 {
		assert.Equal(t, 17, order[i]+order[i+1], "rank i plays rank K+1-i")
	}
}

func seedRound(k int) models.Round {
	prev := 3
	return models.Round{RoundDescriptor: models.RoundDescriptor{
		Number: 4, Kind: models.RoundKindSemifinal, Source: models.SourceStandingsSeed,
		Selection:         models.ParticipantSelection{Rule: models.SelectionTopK, K: k},
		DeterminedByRound: &prev, MatchCount: k / 2,
	}}
}

func TestSeedGeneratorTopK(t *testing.T) {
	table := []models.Standing{
		standing(11, 1, 3, 1500),
		standing(12, 2, 3, 1400),
		standing(13, 3, 2, 1300),
		standing(14, 4, 2, 1200),
		standing(15, 5, 1, 1100),
	}

	pairings, err := NewSeedGenerator().Generate(context.Background(), GenerateRoundParams{Round: seedRound(4), Standings: table})
	require.NoError(t, err)
	require.Len(t, pairings, 2)
	assert.Equal(t, 11, pairings[0].White)
	assert.Equal(t, 14, *pairings[0].Black)
	assert.Equal(t, 12, pairings[1].White)
	assert.Equal(t, 13, *pairings[1].Black)
}

func TestSeedGeneratorNotEnoughQualifiers(t *testing.T) {
	table := []models.Standing{standing(1, 1, 1, 1500), standing(2, 2, 0, 1400), standing(3, 3, 0, 1300)}
	table[2].Active = false

	_, err := NewSeedGenerator().Generate(context.Background(), GenerateRoundParams{Round: seedRound(4), Standings: table})
	require.ErrorIs(t, err, ErrNotEnoughQualifiers)
}

func decided(round, order, p1, p2, winner int) models.Match {
	m := models.NewPlaceholder(1, round, order, nil, nil, false)
	if err := m.Bind(p1, &p2, nil); err != nil {
		panic(err)
	}
	if err := m.Complete(models.Outcome{Result: models.ResultWin, WinnerID: &winner}, time.Now()); err != nil {
		panic(err)
	}
	return m
}

func bracketRound(source models.RoundSource, matches int) models.Round {
	prev := 4
	return models.Round{RoundDescriptor: models.RoundDescriptor{
		Number: 5, Kind: models.RoundKindFinal, Source: source, DeterminedByRound: &prev, MatchCount: matches,
	}}
}

func TestAdvanceGenerator(t *testing.T) {
	feeder := []models.Match{
		decided(4, 2, 12, 13, 13),
		decided(4, 1, 11, 14, 11),
	}

	winners, err := NewAdvanceGenerator(false).Generate(context.Background(), GenerateRoundParams{
		Round: bracketRound(models.SourceBracketWinners, 1), Feeder: feeder,
	})
	require.NoError(t, err)
	require.Len(t, winners, 1)
	assert.Equal(t, 11, winners[0].White, "winner of board 1 plays white")
	assert.Equal(t, 13, *winners[0].Black)

	losers, err := NewAdvanceGenerator(true).Generate(context.Background(), GenerateRoundParams{
		Round: bracketRound(models.SourceBracketLosers, 1), Feeder: feeder,
	})
	require.NoError(t, err)
	assert.Equal(t, 14, losers[0].White)
	assert.Equal(t, 12, *losers[0].Black)
}

func TestAdvanceGeneratorUndecidedFeeder(t *testing.T) {
	open := models.NewPlaceholder(1, 4, 2, nil, nil, false)
	black := 13
	require.NoError(t, open.Bind(12, &black, nil))

	_, err := NewAdvanceGenerator(false).Generate(context.Background(), GenerateRoundParams{
		Round:  bracketRound(models.SourceBracketWinners, 1),
		Feeder: []models.Match{decided(4, 1, 11, 14, 11), open},
	})
	require.ErrorIs(t, err, ErrFeederUndecided)

	_, err = NewAdvanceGenerator(false).Generate(context.Background(), GenerateRoundParams{
		Round:  bracketRound(models.SourceBracketWinners, 1),
		Feeder: []models.Match{decided(4, 1, 11, 14, 11)},
	})
	require.Error(t, err, "feeder size must match the bracket")
}

func TestGeneratorFor(t *testing.T) {
	names := map[models.RoundSource]string{
		models.SourceRegistration:   "Swiss",
		models.SourceSwissPairing:   "Swiss",
		models.SourceDeclaredPairs:  "DeclaredPairs",
		models.SourceStandingsSeed:  "StandingsSeed",
		models.SourceBracketWinners: "BracketWinners",
		models.SourceBracketLosers:  "BracketLosers",
	}
	for source, name := range names {
		g, err := GeneratorFor(source)
		require.NoError(t, err)
		assert.Equal(t, name, g.GetName())
	}
	_, err := GeneratorFor("lottery")
	require.ErrorIs(t, err, ErrUnsupportedGenerator)
}

func TestVerifyCoverage(t *testing.T) {
	two := 2
	three := 3
	require.NoError(t, VerifyCoverage([]int{1, 2, 3}, []Pairing{{White: 1, Black: &two}, {White: 3}}))
	require.ErrorIs(t, VerifyCoverage([]int{1, 2, 3}, []Pairing{{White: 1, Black: &two}}), ErrParticipantDropped)
	require.ErrorIs(t, VerifyCoverage([]int{1, 2}, []Pairing{{White: 1}, {White: 2}}), ErrParticipantDropped)
	require.ErrorIs(t, VerifyCoverage([]int{1, 2}, []Pairing{{White: 1, Black: &two}, {White: 2, Black: &three}}), ErrParticipantDropped)
}
