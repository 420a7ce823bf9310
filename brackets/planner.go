package brackets

import (
	"errors"
	"fmt"
	"math"
	"math/bits"

	"github.com/Dosada05/championship/models"
)

var (
	ErrTooFewParticipants = errors.New("at least two participants are required")
	ErrInvalidTopK        = errors.New("knockout width must be a power of two between 2 and 64")
	ErrTopKExceedsField   = errors.New("knockout width exceeds the participant count")
	ErrInvalidTopKBounds  = errors.New("knockout width bounds must be powers of two with min <= max")
	ErrInvalidSwissRounds = errors.New("swiss round count is out of range")
)

// IsPlanError reports whether err is a configuration error produced by Plan.
func IsPlanError(err error) bool {
	return errors.Is(err, ErrTooFewParticipants) ||
		errors.Is(err, ErrInvalidTopK) ||
		errors.Is(err, ErrTopKExceedsField) ||
		errors.Is(err, ErrInvalidTopKBounds) ||
		errors.Is(err, ErrInvalidSwissRounds) ||
		errors.Is(err, models.ErrUnknownEnumValue)
}

// coverageFieldSize is the field size for which the swiss phase is replaced by a full
// round robin, so every pair among the top three has met before the final.
const coverageFieldSize = 3

// Plan produces the ordered round descriptors for a tournament with the given number
// of participants. It is a pure function.
func Plan(participants int, cfg models.TournamentConfig) ([]models.RoundDescriptor, error) {
	cfg = cfg.Normalize()
	if participants < 2 {
		return nil, fmt.Errorf("%w: got %d", ErrTooFewParticipants, participants)
	}
	if _, err := models.ParseTournamentFormat(string(cfg.Format)); err != nil {
		return nil, err
	}

	width := 0
	if cfg.Format.HasKnockout() {
		var err error
		width, err = KnockoutWidth(participants, cfg)
		if err != nil {
			return nil, err
		}
	}

	var rounds []models.RoundDescriptor
	if participants == coverageFieldSize {
		rounds = coverageRounds(participants)
	} else {
		n, err := SwissRoundCount(participants, cfg.SwissRounds)
		if err != nil {
			return nil, err
		}
		rounds = swissRounds(participants, n)
	}

	if width > 0 {
		ko, err := knockoutRounds(len(rounds), width, cfg.ThirdPlaceMatch)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, ko...)
	}
	return rounds, nil
}

func isPowerOfTwo(n int) bool { return n > 0 && n&(n-1) == 0 }

// floorPowerOfTwo returns the largest power of two <= n (n >= 1).
func floorPowerOfTwo(n int) int {
	if n < 1 {
		return 0
	}
	return 1 << (bits.Len(uint(n)) - 1)
}

// KnockoutWidth resolves the number of players that enter the bracket.
func KnockoutWidth(participants int, cfg models.TournamentConfig) (int, error) {
	if !isPowerOfTwo(cfg.MinTopK) || !isPowerOfTwo(cfg.MaxTopK) ||
		cfg.MinTopK < 2 || cfg.MaxTopK > models.MaxSupportedTopK || cfg.MinTopK > cfg.MaxTopK {
		return 0, fmt.Errorf("%w: min=%d max=%d", ErrInvalidTopKBounds, cfg.MinTopK, cfg.MaxTopK)
	}
	if cfg.TopK != 0 {
		if !isPowerOfTwo(cfg.TopK) || cfg.TopK < 2 || cfg.TopK > models.MaxSupportedTopK {
			return 0, fmt.Errorf("%w: got %d", ErrInvalidTopK, cfg.TopK)
		}
		if cfg.TopK > participants {
			return 0, fmt.Errorf("%w: top %d of %d", ErrTopKExceedsField, cfg.TopK, participants)
		}
		return cfg.TopK, nil
	}

	k := floorPowerOfTwo(participants / 2)
	k = max(k, cfg.MinTopK)
	k = min(k, cfg.MaxTopK)
	if k > participants {
		k = floorPowerOfTwo(participants)
	}
	return k, nil
}

// MaxSwissRounds is the number of rounds after which a no-repeat pairing can no longer exist.
func MaxSwissRounds(participants int) int {
	if participants%2 == 0 {
		return participants - 1
	}
	return participants
}

// SwissRoundCount resolves the number of qualification rounds; 0 means ceil(log2(P)).
func SwissRoundCount(participants, requested int) (int, error) {
	limit := MaxSwissRounds(participants)
	if requested == 0 {
		n := int(math.Ceil(math.Log2(float64(participants))))
		return min(max(n, 1), limit), nil
	}
	if requested < 0 || requested > limit {
		return 0, fmt.Errorf("%w: %d rounds for %d participants (max %d)", ErrInvalidSwissRounds, requested, participants, limit)
	}
	return requested, nil
}

func swissRounds(participants, n int) []models.RoundDescriptor {
	rounds := make([]models.RoundDescriptor, 0, n)
	for i := 1; i <= n; i++ {
		d := models.RoundDescriptor{
			Number:     i,
			Kind:       models.RoundKindSwiss,
			Selection:  models.ParticipantSelection{Rule: models.SelectionAll},
			Source:     models.SourceSwissPairing,
			MatchCount: (participants + 1) / 2,
			HasByeSlot: participants%2 == 1,
		}
		if i == 1 {
			d.Source = models.SourceRegistration
		} else {
			prev := i - 1
			d.DeterminedByRound = &prev
		}
		rounds = append(rounds, d)
	}
	return rounds
}

func coverageRounds(participants int) []models.RoundDescriptor {
	schedule := roundRobinSchedule(participants)
	rounds := make([]models.RoundDescriptor, 0, len(schedule))
	for i, pairs := range schedule {
		d := models.RoundDescriptor{
			Number:        i + 1,
			Kind:          models.RoundKindSwiss,
			Selection:     models.ParticipantSelection{Rule: models.SelectionAll},
			Source:        models.SourceDeclaredPairs,
			MatchCount:    len(pairs),
			HasByeSlot:    participants%2 == 1,
			DeclaredPairs: pairs,
		}
		if i > 0 {
			prev := i
			d.DeterminedByRound = &prev
		}
		rounds = append(rounds, d)
	}
	return rounds
}

func knockoutRounds(qualificationRounds, width int, thirdPlace bool) ([]models.RoundDescriptor, error) {
	var rounds []models.RoundDescriptor
	number := qualificationRounds
	feeder := qualificationRounds
	source := models.SourceStandingsSeed

	for w := width; w >= 2; w /= 2 {
		kind, err := models.KnockoutKindForWidth(w)
		if err != nil {
			return nil, err
		}
		if w == 2 && thirdPlace && width >= 4 {
			number++
			semi := feeder
			rounds = append(rounds, models.RoundDescriptor{
				Number:            number,
				Kind:              models.RoundKindThirdPlace,
				Selection:         models.ParticipantSelection{Rule: models.SelectionTopK, K: 2},
				Source:            models.SourceBracketLosers,
				DeterminedByRound: &semi,
				MatchCount:        1,
			})
		}
		number++
		f := feeder
		rounds = append(rounds, models.RoundDescriptor{
			Number:            number,
			Kind:              kind,
			Selection:         models.ParticipantSelection{Rule: models.SelectionTopK, K: w},
			Source:            source,
			DeterminedByRound: &f,
			MatchCount:        w / 2,
		})
		feeder = number
		source = models.SourceBracketWinners
	}
	return rounds, nil
}

// Slot is the planned metadata of one placeholder match.
type Slot struct {
	Slot1 *models.SlotSource
	Slot2 *models.SlotSource
	Bye   bool
}

// PlaceholderSlots returns the bracket-position metadata for every match of a round
// that is created unbound.
func PlaceholderSlots(d models.RoundDescriptor) ([]Slot, error) {
	feeder := 0
	if d.DeterminedByRound != nil {
		feeder = *d.DeterminedByRound
	}
	slots := make([]Slot, 0, d.MatchCount)

	switch d.Source {
	case models.SourceRegistration, models.SourceSwissPairing:
		for i := 0; i < d.MatchCount; i++ {
			bye := d.HasByeSlot && i == d.MatchCount-1
			s := Slot{Slot1: &models.SlotSource{Kind: models.SlotSwissPairing, Round: feeder}, Bye: bye}
			if !bye {
				s.Slot2 = &models.SlotSource{Kind: models.SlotSwissPairing, Round: feeder}
			}
			slots = append(slots, s)
		}
	case models.SourceDeclaredPairs:
		for _, p := range d.DeclaredPairs {
			s := Slot{Slot1: &models.SlotSource{Kind: models.SlotDeclaredSeed, Round: feeder, Rank: p.Seed1}, Bye: p.Seed2 == 0}
			if p.Seed2 != 0 {
				s.Slot2 = &models.SlotSource{Kind: models.SlotDeclaredSeed, Round: feeder, Rank: p.Seed2}
			}
			slots = append(slots, s)
		}
	case models.SourceStandingsSeed:
		order := SeedOrder(d.Selection.K)
		for i := 0; i+1 < len(order); i += 2 {
			slots = append(slots, Slot{
				Slot1: &models.SlotSource{Kind: models.SlotSeedRank, Round: feeder, Rank: order[i]},
				Slot2: &models.SlotSource{Kind: models.SlotSeedRank, Round: feeder, Rank: order[i+1]},
			})
		}
	case models.SourceBracketWinners, models.SourceBracketLosers:
		kind := models.SlotMatchWinner
		if d.Source == models.SourceBracketLosers {
			kind = models.SlotMatchLoser
		}
		for i := 1; i <= d.MatchCount; i++ {
			slots = append(slots, Slot{
				Slot1: &models.SlotSource{Kind: kind, Round: feeder, Order: 2*i - 1},
				Slot2: &models.SlotSource{Kind: kind, Round: feeder, Order: 2 * i},
			})
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedGenerator, d.Source)
	}

	if len(slots) != d.MatchCount {
		return nil, fmt.Errorf("round %d: planned %d matches but built %d slots", d.Number, d.MatchCount, len(slots))
	}
	return slots, nil
}
