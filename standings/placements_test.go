package standings

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Dosada05/championship/models"
)

func knockoutRounds(thirdPlace bool) []models.Round {
	kinds := []models.RoundKind{models.RoundKindSwiss, models.RoundKindSemifinal}
	if thirdPlace {
		kinds = append(kinds, models.RoundKindThirdPlace)
	}
	kinds = append(kinds, models.RoundKindFinal)
	rounds := make([]models.Round, len(kinds))
	for i, k := range kinds {
		rounds[i] = models.Round{RoundDescriptor: models.RoundDescriptor{Number: i + 1, Kind: k}}
	}
	return rounds
}

func TestFinalPlacementsSharedThird(t *testing.T) {
	rounds := knockoutRounds(false)
	matches := []models.Match{
		game(1, 1, 1, 2, models.ResultWin, 1),
		game(2, 1, 1, 4, models.ResultWin, 1),
		game(2, 2, 2, 3, models.ResultWin, 3),
		models.NewPlaceholder(1, 3, 1, nil, nil, false),
	}
	assert.Empty(t, FinalPlacements(rounds, matches), "nothing is placed before the final is decided")

	matches[3] = game(3, 1, 1, 3, models.ResultWin, 3)
	assert.Equal(t, map[int]int{3: 1, 1: 2, 4: 3, 2: 3}, FinalPlacements(rounds, matches))
}

func TestFinalPlacementsWithThirdPlaceMatch(t *testing.T) {
	rounds := knockoutRounds(true)
	matches := []models.Match{
		game(2, 1, 1, 4, models.ResultWin, 1),
		game(2, 2, 2, 3, models.ResultWin, 2),
		models.NewPlaceholder(1, 3, 1, nil, nil, false),
		game(4, 1, 1, 2, models.ResultWin, 2),
	}
	assert.Equal(t, map[int]int{2: 1, 1: 2}, FinalPlacements(rounds, matches), "third place is open until its match ends")

	matches[2] = game(3, 1, 4, 3, models.ResultWin, 4)
	assert.Equal(t, map[int]int{2: 1, 1: 2, 4: 3, 3: 4}, FinalPlacements(rounds, matches))
}

func TestApplyPlacements(t *testing.T) {
	table := Calculate(1, players(1500, 1400, 1300), nil, models.DefaultScoringPolicy())

	ApplyPlacements(table, PlacementsFromTable(table))
	for _, s := range table {
		if assert.NotNil(t, s.FinalPosition) {
			assert.Equal(t, s.Rank, *s.FinalPosition)
		}
	}

	table = Calculate(1, players(1500, 1400, 1300), nil, models.DefaultScoringPolicy())
	ApplyPlacements(table, map[int]int{3: 1})
	assert.Nil(t, table[0].FinalPosition)
	assert.Equal(t, 1, *table[2].FinalPosition)
}
