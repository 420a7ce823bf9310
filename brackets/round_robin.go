package brackets

import (
	"context"
	"fmt"

	"github.com/Dosada05/championship/models"
)

// roundRobinSchedule builds a single round robin over entry seeds 1..n by the circle
// method. For odd n the phantom seed is reported as a bye (Seed2 == 0), last in each round.
func roundRobinSchedule(n int) [][]models.DeclaredPair {
	seeds := make([]int, 0, n+1)
	for s := 1; s <= n; s++ {
		seeds = append(seeds, s)
	}
	if n%2 == 1 {
		seeds = append(seeds, 0) // фантом = bye
	}
	size := len(seeds)

	schedule := make([][]models.DeclaredPair, 0, size-1)
	for r := 0; r < size-1; r++ {
		var games []models.DeclaredPair
		var bye *models.DeclaredPair
		for i := 0; i < size/2; i++ {
			a, b := seeds[i], seeds[size-1-i]
			// чередуем цвета первой доски, чтобы фиксированный посев не играл всегда белыми
			if i == 0 && r%2 == 1 {
				a, b = b, a
			}
			switch {
			case a == 0:
				bye = &models.DeclaredPair{Seed1: b}
			case b == 0:
				bye = &models.DeclaredPair{Seed1: a}
			default:
				games = append(games, models.DeclaredPair{Seed1: a, Seed2: b})
			}
		}
		if bye != nil {
			games = append(games, *bye)
		}
		schedule = append(schedule, games)

		// вращаем всех кроме первого
		last := seeds[size-1]
		copy(seeds[2:], seeds[1:size-1])
		seeds[1] = last
	}
	return schedule
}

// DeclaredPairsGenerator resolves the fixed entry-seed pairs of a coverage round.
type DeclaredPairsGenerator struct{}

func NewDeclaredPairsGenerator() RoundGenerator {
	return &DeclaredPairsGenerator{}
}

func (g *DeclaredPairsGenerator) GetName() string {
	return "DeclaredPairs"
}

func (g *DeclaredPairsGenerator) Generate(ctx context.Context, params GenerateRoundParams) ([]Pairing, error) {
	bySeed := make(map[int]models.Participant, len(params.Participants))
	for _, p := range params.Participants {
		bySeed[p.Seed] = p
	}

	resolve := func(seed int) (int, error) {
		p, ok := bySeed[seed]
		if !ok {
			return 0, fmt.Errorf("%w: seed %d in round %d", ErrUnknownDeclaredSeed, seed, params.Round.Number)
		}
		return p.ID, nil
	}

	pairings := make([]Pairing, 0, len(params.Round.DeclaredPairs))
	for _, dp := range params.Round.DeclaredPairs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		white, err := resolve(dp.Seed1)
		if err != nil {
			return nil, err
		}
		if dp.Seed2 == 0 {
			pairings = append(pairings, Pairing{White: white})
			continue
		}
		black, err := resolve(dp.Seed2)
		if err != nil {
			return nil, err
		}
		pairings = append(pairings, Pairing{White: white, Black: &black})
	}
	return pairings, nil
}
