package models

import (
	"database/sql/driver"
	"fmt"
)

type RoundKind string

const (
	RoundKindSwiss        RoundKind = "swiss"
	RoundKindRoundOf64    RoundKind = "round_of_64"
	RoundKindRoundOf32    RoundKind = "round_of_32"
	RoundKindRoundOf16    RoundKind = "round_of_16"
	RoundKindQuarterfinal RoundKind = "quarterfinal"
	RoundKindSemifinal    RoundKind = "semifinal"
	RoundKindThirdPlace   RoundKind = "third_place"
	RoundKindFinal        RoundKind = "final"
)

func ParseRoundKind(v string) (RoundKind, error) {
	return parseEnum("round kind", v,
		RoundKindSwiss, RoundKindRoundOf64, RoundKindRoundOf32, RoundKindRoundOf16,
		RoundKindQuarterfinal, RoundKindSemifinal, RoundKindThirdPlace, RoundKindFinal)
}

func (k *RoundKind) Scan(src any) error           { return scanEnum(k, src, ParseRoundKind) }
func (k RoundKind) Value() (driver.Value, error)  { return valueEnum(k, ParseRoundKind) }
func (k *RoundKind) UnmarshalText(b []byte) error { return unmarshalEnum(k, b, ParseRoundKind) }

// IsElimination is false only for qualification (swiss/coverage) rounds.
func (k RoundKind) IsElimination() bool {
	switch k {
	case RoundKindSwiss:
		return false
	case RoundKindRoundOf64, RoundKindRoundOf32, RoundKindRoundOf16,
		RoundKindQuarterfinal, RoundKindSemifinal, RoundKindThirdPlace, RoundKindFinal:
		return true
	}
	panic("models: unhandled round kind " + string(k))
}

// KnockoutKindForWidth returns the round kind for a bracket round with the given number of players.
func KnockoutKindForWidth(width int) (RoundKind, error) {
	switch width {
	case 2:
		return RoundKindFinal, nil
	case 4:
		return RoundKindSemifinal, nil
	case 8:
		return RoundKindQuarterfinal, nil
	case 16:
		return RoundKindRoundOf16, nil
	case 32:
		return RoundKindRoundOf32, nil
	case 64:
		return RoundKindRoundOf64, nil
	}
	return "", fmt.Errorf("no knockout round kind for width %d", width)
}

type SelectionRule string

const (
	SelectionAll  SelectionRule = "all"
	SelectionTopK SelectionRule = "top_k"
)

func ParseSelectionRule(v string) (SelectionRule, error) {
	return parseEnum("selection rule", v, SelectionAll, SelectionTopK)
}

func (s *SelectionRule) UnmarshalText(b []byte) error {
	return unmarshalEnum(s, b, ParseSelectionRule)
}

// ParticipantSelection describes which participants take part in a round.
type ParticipantSelection struct {
	Rule SelectionRule `json:"rule"`
	K    int           `json:"k,omitempty"`
}

// RoundSource describes how a round's placeholder slots are filled.
type RoundSource string

const (
	SourceRegistration   RoundSource = "registration"    // round 1, paired at creation
	SourceSwissPairing   RoundSource = "swiss_pairing"   // pairing engine over current standings
	SourceDeclaredPairs  RoundSource = "declared_pairs"  // coverage rounds, fixed entry-seed pairs
	SourceStandingsSeed  RoundSource = "standings_seed"  // first knockout round, rank i vs rank K+1-i
	SourceBracketWinners RoundSource = "bracket_winners" // winners of feeder matches
	SourceBracketLosers  RoundSource = "bracket_losers"  // losers of feeder matches (third place)
)

func ParseRoundSource(v string) (RoundSource, error) {
	return parseEnum("round source", v,
		SourceRegistration, SourceSwissPairing, SourceDeclaredPairs,
		SourceStandingsSeed, SourceBracketWinners, SourceBracketLosers)
}

func (s *RoundSource) UnmarshalText(b []byte) error {
	return unmarshalEnum(s, b, ParseRoundSource)
}

// DeclaredPair pairs two entry seeds. Seed2 == 0 declares a bye for Seed1.
type DeclaredPair struct {
	Seed1 int `json:"seed1"`
	Seed2 int `json:"seed2,omitempty"`
}

// RoundDescriptor is the planner's output for one round.
type RoundDescriptor struct {
	Number            int                  `json:"number"`
	Kind              RoundKind            `json:"kind"`
	Selection         ParticipantSelection `json:"selection"`
	Source            RoundSource          `json:"source"`
	DeterminedByRound *int                 `json:"determined_by_round,omitempty"`
	MatchCount        int                  `json:"match_count"`
	HasByeSlot        bool                 `json:"has_bye_slot,omitempty"`
	DeclaredPairs     []DeclaredPair       `json:"declared_pairs,omitempty"`
}

// Round is a persisted round descriptor.
type Round struct {
	ID           int `json:"id" db:"id"`
	TournamentID int `json:"tournament_id" db:"tournament_id"`
	RoundDescriptor
}

func (r Round) IsQualification() bool { return !r.Kind.IsElimination() }
