package brackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Dosada05/championship/models"
)

func kinds(rounds []models.RoundDescriptor) []models.RoundKind {
	out := make([]models.RoundKind, len(rounds))
	for i, r := range rounds {
		out[i] = r.Kind
	}
	return out
}

func TestPlanTenPlayersDefault(t *testing.T) {
	rounds, err := Plan(10, models.TournamentConfig{})
	require.NoError(t, err)

	assert.Equal(t, []models.RoundKind{
		models.RoundKindSwiss, models.RoundKindSwiss, models.RoundKindSwiss, models.RoundKindSwiss,
		models.RoundKindSemifinal, models.RoundKindFinal,
	}, kinds(rounds))

	assert.Equal(t, models.SourceRegistration, rounds[0].Source)
	assert.Nil(t, rounds[0].DeterminedByRound)
	for i := 1; i < 4; i++ {
		require.NotNil(t, rounds[i].DeterminedByRound)
		assert.Equal(t, i, *rounds[i].DeterminedByRound)
		assert.Equal(t, models.SourceSwissPairing, rounds[i].Source)
	}

	semi := rounds[4]
	assert.Equal(t, models.SourceStandingsSeed, semi.Source)
	assert.Equal(t, models.ParticipantSelection{Rule: models.SelectionTopK, K: 4}, semi.Selection)
	assert.Equal(t, 4, *semi.DeterminedByRound, "the last swiss round feeds the bracket")
	assert.Equal(t, 2, semi.MatchCount)

	final := rounds[5]
	assert.Equal(t, models.SourceBracketWinners, final.Source)
	assert.Equal(t, 5, *final.DeterminedByRound)
	assert.Equal(t, 1, final.MatchCount)
}

func TestPlanFivePlayersThreeSwissRoundsThenFinal(t *testing.T) {
	rounds, err := Plan(5, models.TournamentConfig{SwissRounds: 3})
	require.NoError(t, err)
	require.Len(t, rounds, 4)

	for _, r := range rounds[:3] {
		assert.Equal(t, models.RoundKindSwiss, r.Kind)
		assert.Equal(t, 3, r.MatchCount)
		assert.True(t, r.HasByeSlot)
	}
	final := rounds[3]
	assert.Equal(t, models.RoundKindFinal, final.Kind)
	assert.Equal(t, models.SourceStandingsSeed, final.Source)
	assert.Equal(t, 2, final.Selection.K)
	assert.Equal(t, 3, *final.DeterminedByRound)
}

func TestPlanThreePlayersUsesCoverageRounds(t *testing.T) {
	rounds, err := Plan(3, models.TournamentConfig{SwissRounds: 1})
	require.NoError(t, err)
	require.Len(t, rounds, 4)

	met := make(map[[2]int]bool)
	byes := make(map[int]int)
	for _, r := range rounds[:3] {
		assert.Equal(t, models.SourceDeclaredPairs, r.Source)
		assert.Equal(t, 2, r.MatchCount)
		require.Len(t, r.DeclaredPairs, 2)
		for _, p := range r.DeclaredPairs {
			if p.Seed2 == 0 {
				byes[p.Seed1]++
				continue
			}
			met[pairKey(p.Seed1, p.Seed2)] = true
		}
	}
	assert.Len(t, met, 3, "every pair among three players meets once")
	assert.Equal(t, map[int]int{1: 1, 2: 1, 3: 1}, byes)

	assert.Equal(t, models.RoundKindFinal, rounds[3].Kind)
	assert.Equal(t, 3, *rounds[3].DeterminedByRound)
}

func TestPlanThirdPlaceMatch(t *testing.T) {
	rounds, err := Plan(8, models.TournamentConfig{ThirdPlaceMatch: true})
	require.NoError(t, err)

	assert.Equal(t, []models.RoundKind{
		models.RoundKindSwiss, models.RoundKindSwiss, models.RoundKindSwiss,
		models.RoundKindSemifinal, models.RoundKindThirdPlace, models.RoundKindFinal,
	}, kinds(rounds))

	third, final := rounds[4], rounds[5]
	assert.Equal(t, models.SourceBracketLosers, third.Source)
	assert.Equal(t, 4, *third.DeterminedByRound)
	assert.Equal(t, models.SourceBracketWinners, final.Source)
	assert.Equal(t, 4, *final.DeterminedByRound)
}

func TestPlanSwissOnly(t *testing.T) {
	rounds, err := Plan(6, models.TournamentConfig{Format: models.FormatSwissOnly, TopK: 3})
	require.NoError(t, err, "knockout settings are ignored without a knockout")
	require.Len(t, rounds, 3)
	for _, r := range rounds {
		assert.Equal(t, models.RoundKindSwiss, r.Kind)
	}
}

func TestPlanValidation(t *testing.T) {
	tests := []struct {
		name string
		p    int
		cfg  models.TournamentConfig
		want error
	}{
		{name: "single participant", p: 1, want: ErrTooFewParticipants},
		{name: "width not a power of two", p: 10, cfg: models.TournamentConfig{TopK: 6}, want: ErrInvalidTopK},
		{name: "width exceeds field", p: 10, cfg: models.TournamentConfig{TopK: 16, MaxTopK: 64}, want: ErrTopKExceedsField},
		{name: "bad bounds", p: 10, cfg: models.TournamentConfig{MinTopK: 8, MaxTopK: 4}, want: ErrInvalidTopKBounds},
		{name: "too many swiss rounds", p: 5, cfg: models.TournamentConfig{SwissRounds: 6}, want: ErrInvalidSwissRounds},
		{name: "negative swiss rounds", p: 5, cfg: models.TournamentConfig{SwissRounds: -1}, want: ErrInvalidSwissRounds},
		{name: "unknown format", p: 5, cfg: models.TournamentConfig{Format: "ladder"}, want: models.ErrUnknownEnumValue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rounds, err := Plan(tt.p, tt.cfg)
			require.ErrorIs(t, err, tt.want)
			assert.Nil(t, rounds)
			assert.True(t, IsPlanError(err))
		})
	}
}

func TestKnockoutWidthBounds(t *testing.T) {
	tests := []struct {
		p, want int
		cfg     models.TournamentConfig
	}{
		{p: 2, want: 2},
		{p: 5, want: 2},
		{p: 9, want: 4},
		{p: 40, want: 8}, // clamped by the default maximum
		{p: 40, want: 16, cfg: models.TournamentConfig{MaxTopK: 16}},
		{p: 6, want: 4, cfg: models.TournamentConfig{MinTopK: 4}},
		{p: 10, want: 8, cfg: models.TournamentConfig{TopK: 8}},
	}
	for _, tt := range tests {
		got, err := KnockoutWidth(tt.p, tt.cfg.Normalize())
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "P=%d", tt.p)
	}
}

func TestPlanRoundShapes(t *testing.T) {
	for p := 2; p <= 40; p++ {
		rounds, err := Plan(p, models.TournamentConfig{})
		require.NoError(t, err, "P=%d", p)

		for i, r := range rounds {
			assert.Equal(t, i+1, r.Number, "rounds are numbered contiguously")
			if r.DeterminedByRound != nil {
				assert.Less(t, *r.DeterminedByRound, r.Number)
			}
			if !r.Kind.IsElimination() {
				if r.Source == models.SourceDeclaredPairs {
					continue
				}
				assert.Equal(t, (p+1)/2, r.MatchCount, "P=%d round %d", p, r.Number)
				assert.Equal(t, p%2 == 1, r.HasByeSlot, "P=%d round %d", p, r.Number)
				continue
			}
			assert.False(t, r.HasByeSlot)
			if r.Kind == models.RoundKindThirdPlace {
				continue
			}
			k := r.Selection.K
			assert.True(t, isPowerOfTwo(k), "P=%d round %d width %d", p, r.Number, k)
			assert.LessOrEqual(t, k, p)
			assert.Equal(t, k/2, r.MatchCount)
		}
	}
}

func TestPlaceholderSlots(t *testing.T) {
	t.Run("swiss with bye", func(t *testing.T) {
		prev := 1
		slots, err := PlaceholderSlots(models.RoundDescriptor{
			Number: 2, Source: models.SourceSwissPairing, DeterminedByRound: &prev, MatchCount: 3, HasByeSlot: true,
		})
		require.NoError(t, err)
		require.Len(t, slots, 3)
		assert.False(t, slots[0].Bye)
		assert.NotNil(t, slots[0].Slot2)
		assert.True(t, slots[2].Bye)
		assert.Nil(t, slots[2].Slot2)
		assert.Equal(t, models.SlotSwissPairing, slots[2].Slot1.Kind)
	})

	t.Run("standings seed", func(t *testing.T) {
		prev := 3
		slots, err := PlaceholderSlots(models.RoundDescriptor{
			Number: 4, Source: models.SourceStandingsSeed, DeterminedByRound: &prev, MatchCount: 4,
			Selection: models.ParticipantSelection{Rule: models.SelectionTopK, K: 8},
		})
		require.NoError(t, err)
		var got [][2]int
		for _, s := range slots {
			assert.Equal(t, models.SlotSeedRank, s.Slot1.Kind)
			assert.Equal(t, 3, s.Slot1.Round)
			got = append(got, [2]int{s.Slot1.Rank, s.Slot2.Rank})
		}
		assert.Equal(t, [][2]int{{1, 8}, {4, 5}, {2, 7}, {3, 6}}, got)
	})

	t.Run("bracket losers", func(t *testing.T) {
		prev := 4
		slots, err := PlaceholderSlots(models.RoundDescriptor{
			Number: 5, Source: models.SourceBracketLosers, DeterminedByRound: &prev, MatchCount: 1,
		})
		require.NoError(t, err)
		require.Len(t, slots, 1)
		assert.Equal(t, models.SlotSource{Kind: models.SlotMatchLoser, Round: 4, Order: 1}, *slots[0].Slot1)
		assert.Equal(t, models.SlotSource{Kind: models.SlotMatchLoser, Round: 4, Order: 2}, *slots[0].Slot2)
	})

	t.Run("unknown source", func(t *testing.T) {
		_, err := PlaceholderSlots(models.RoundDescriptor{Number: 1, Source: "lottery", MatchCount: 1})
		require.ErrorIs(t, err, ErrUnsupportedGenerator)
	})
}
