package brackets

import (
	"context"
	"errors"
	"fmt"

	"github.com/Dosada05/championship/models"
)

var (
	ErrPairingInfeasible    = errors.New("no pairing satisfies the no-repeat constraint")
	ErrImbalancedGroup      = errors.New("imbalanced group: odd number of players at pairing time")
	ErrParticipantDropped   = errors.New("pairing does not cover every participant exactly once")
	ErrNotEnoughQualifiers  = errors.New("not enough eligible participants for the knockout bracket")
	ErrFeederUndecided      = errors.New("feeder match has no decided winner")
	ErrUnknownDeclaredSeed  = errors.New("declared pair references an unknown entry seed")
	ErrUnsupportedGenerator = errors.New("round source has no generator")
)

// Pairing is one board of a round. Black == nil means White receives the bye.
type Pairing struct {
	White int  `json:"white"`
	Black *int `json:"black,omitempty"`
}

func (p Pairing) IsBye() bool { return p.Black == nil }

func (p Pairing) String() string {
	if p.Black == nil {
		return fmt.Sprintf("%d BYE", p.White)
	}
	return fmt.Sprintf("%d-%d", p.White, *p.Black)
}

type GenerateRoundParams struct {
	Round models.Round
	// Standings отсортированы по месту и содержат только активных участников.
	Standings []models.Standing
	// Participants отсортированы по посеву (seed).
	Participants []models.Participant
	Feeder       []models.Match
	History      PairHistory
}

// RoundGenerator produces the pairings that fill a round's placeholder slots.
type RoundGenerator interface {
	Generate(ctx context.Context, params GenerateRoundParams) ([]Pairing, error)

	GetName() string
}

// GeneratorFor returns the generator for a round source. Registration rounds are
// paired by the swiss engine over the initial (all-zero) standings.
func GeneratorFor(source models.RoundSource) (RoundGenerator, error) {
	switch source {
	case models.SourceRegistration, models.SourceSwissPairing:
		return NewSwissGenerator(), nil
	case models.SourceDeclaredPairs:
		return NewDeclaredPairsGenerator(), nil
	case models.SourceStandingsSeed:
		return NewSeedGenerator(), nil
	case models.SourceBracketWinners:
		return NewAdvanceGenerator(false), nil
	case models.SourceBracketLosers:
		return NewAdvanceGenerator(true), nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedGenerator, source)
}

// VerifyCoverage checks that every expected participant appears in exactly one pairing
// and that there is at most one bye.
func VerifyCoverage(expected []int, pairings []Pairing) error {
	seen := make(map[int]int, len(expected))
	byes := 0
	for _, p := range pairings {
		seen[p.White]++
		if p.Black != nil {
			seen[*p.Black]++
		} else {
			byes++
		}
	}
	if byes > 1 {
		return fmt.Errorf("%w: %d byes", ErrParticipantDropped, byes)
	}
	for _, id := range expected {
		if seen[id] != 1 {
			return fmt.Errorf("%w: participant %d appears %d times", ErrParticipantDropped, id, seen[id])
		}
		delete(seen, id)
	}
	for id := range seen {
		return fmt.Errorf("%w: unexpected participant %d", ErrParticipantDropped, id)
	}
	return nil
}
