package brackets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship/models"
)

func TestRoundRobinScheduleCoversEveryPair(t *testing.T) {
	for _, n := range []int{2, 3, 4, 5, 6} {
		schedule := roundRobinSchedule(n)
		met := make(map[[2]int]int)
		for _, round := range schedule {
			seen := make(map[int]bool)
			for i, p := range round {
				assert.False(t, seen[p.Seed1], "n=%d: seed %d twice in a round", n, p.Seed1)
				seen[p.Seed1] = true
				if p.Seed2 == 0 {
					assert.Equal(t, len(round)-1, i, "the bye is listed last")
					continue
				}
				seen[p.Seed2] = true
				met[pairKey(p.Seed1, p.Seed2)]++
			}
			assert.Len(t, seen, n)
		}
		assert.Len(t, met, n*(n-1)/2, "n=%d", n)
		for pair, c := range met {
			assert.Equal(t, 1, c, "n=%d: pair %v", n, pair)
		}
	}
}

func TestDeclaredPairsGenerator(t *testing.T) {
	participants := []models.Participant{
		{ID: 21, Seed: 1, Status: models.ParticipantActive},
		{ID: 22, Seed: 2, Status: models.ParticipantActive},
		{ID: 23, Seed: 3, Status: models.ParticipantWithdrawn},
	}
	round := models.Round{RoundDescriptor: models.RoundDescriptor{
		Number: 2, Kind: models.RoundKindSwiss, Source: models.SourceDeclaredPairs,
		DeclaredPairs: []models.DeclaredPair{{Seed1: 3, Seed2: 1}, {Seed1: 2}},
	}}

	pairings, err := NewDeclaredPairsGenerator().Generate(context.Background(), GenerateRoundParams{
		Round: round, Participants: participants,
	})
	require.NoError(t, err, "withdrawn players are bound and forfeited by the coordinator")
	require.Len(t, pairings, 2)
	assert.Equal(t, 23, pairings[0].White)
	assert.Equal(t, 21, *pairings[0].Black)
	assert.True(t, pairings[1].IsBye())
	assert.Equal(t, 22, pairings[1].White)

	round.DeclaredPairs = []models.DeclaredPair{{Seed1: 4, Seed2: 1}}
	_, err = NewDeclaredPairsGenerator().Generate(context.Background(), GenerateRoundParams{
		Round: round, Participants: participants,
	})
	require.ErrorIs(t, err, ErrUnknownDeclaredSeed)
}
