package brackets

import (
	"context"
	"fmt"
	"sort"

	"github.com/Dosada05/championship/models"
)

// SeedOrder returns bracket positions for a bracket of the given width so that seeds
// 1 and 2 can only meet in the final: 8 -> [1 8 4 5 2 7 3 6].
func SeedOrder(width int) []int {
	if width < 2 {
		return []int{1}
	}
	order := []int{1, 2}
	for n := 2; n < width; n *= 2 {
		next := make([]int, 0, 2*n)
		for _, s := range order {
			next = append(next, s, 2*n+1-s)
		}
		order = next
	}
	return order
}

// SeedGenerator pairs the top K of the qualification standings into the first bracket round.
type SeedGenerator struct{}

func NewSeedGenerator() RoundGenerator {
	return &SeedGenerator{}
}

func (g *SeedGenerator) GetName() string {
	return "StandingsSeed"
}

func (g *SeedGenerator) Generate(ctx context.Context, params GenerateRoundParams) ([]Pairing, error) {
	k := params.Round.Selection.K
	if k < 2 || !isPowerOfTwo(k) {
		return nil, fmt.Errorf("%w: round %d selects top %d", ErrInvalidTopK, params.Round.Number, k)
	}

	qualified := make([]int, 0, k)
	for _, s := range params.Standings {
		if !s.Active {
			continue
		}
		qualified = append(qualified, s.ParticipantID)
		if len(qualified) == k {
			break
		}
	}
	if len(qualified) < k {
		return nil, fmt.Errorf("%w: need %d, have %d", ErrNotEnoughQualifiers, k, len(qualified))
	}

	order := SeedOrder(k)
	pairings := make([]Pairing, 0, k/2)
	for i := 0; i+1 < len(order); i += 2 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// старший посев играет белыми
		white := qualified[order[i]-1]
		black := qualified[order[i+1]-1]
		pairings = append(pairings, Pairing{White: white, Black: &black})
	}
	return pairings, nil
}

// AdvanceGenerator moves winners (or losers, for the third place match) of consecutive
// feeder matches into the next bracket round.
type AdvanceGenerator struct {
	losers bool
}

func NewAdvanceGenerator(losers bool) RoundGenerator {
	return &AdvanceGenerator{losers: losers}
}

func (g *AdvanceGenerator) GetName() string {
	if g.losers {
		return "BracketLosers"
	}
	return "BracketWinners"
}

func (g *AdvanceGenerator) Generate(ctx context.Context, params GenerateRoundParams) ([]Pairing, error) {
	feeder := make([]models.Match, len(params.Feeder))
	copy(feeder, params.Feeder)
	sort.Slice(feeder, func(i, j int) bool {
		return feeder[i].OrderInRound < feeder[j].OrderInRound
	})

	want := 2 * params.Round.MatchCount
	if len(feeder) != want {
		return nil, fmt.Errorf("round %d expects %d feeder matches, found %d", params.Round.Number, want, len(feeder))
	}

	pick := func(m models.Match) (int, error) {
		if m.Status != models.MatchStatusCompleted || m.WinnerID == nil {
			return 0, fmt.Errorf("%w: round %d match %d", ErrFeederUndecided, m.RoundNumber, m.OrderInRound)
		}
		if !g.losers {
			return *m.WinnerID, nil
		}
		loser, ok := m.Loser()
		if !ok {
			return 0, fmt.Errorf("%w: round %d match %d has no loser", ErrFeederUndecided, m.RoundNumber, m.OrderInRound)
		}
		return loser, nil
	}

	pairings := make([]Pairing, 0, params.Round.MatchCount)
	for i := 0; i+1 < len(feeder); i += 2 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		white, err := pick(feeder[i])
		if err != nil {
			return nil, err
		}
		black, err := pick(feeder[i+1])
		if err != nil {
			return nil, err
		}
		pairings = append(pairings, Pairing{White: white, Black: &black})
	}
	return pairings, nil
}
