package models

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

type MatchStatus string

const (
	MatchStatusPlaceholder MatchStatus = "placeholder"
	MatchStatusPending     MatchStatus = "pending"
	MatchStatusInProgress  MatchStatus = "in_progress"
	MatchStatusCompleted   MatchStatus = "completed"
	MatchStatusCancelled   MatchStatus = "cancelled"
)

func ParseMatchStatus(v string) (MatchStatus, error) {
	return parseEnum("match status", v,
		MatchStatusPlaceholder, MatchStatusPending, MatchStatusInProgress,
		MatchStatusCompleted, MatchStatusCancelled)
}

func (s *MatchStatus) Scan(src any) error           { return scanEnum(s, src, ParseMatchStatus) }
func (s MatchStatus) Value() (driver.Value, error)  { return valueEnum(s, ParseMatchStatus) }
func (s *MatchStatus) UnmarshalText(b []byte) error { return unmarshalEnum(s, b, ParseMatchStatus) }

// IsTerminal reports whether the match no longer blocks round completion.
func (s MatchStatus) IsTerminal() bool {
	switch s {
	case MatchStatusCompleted, MatchStatusCancelled:
		return true
	case MatchStatusPlaceholder, MatchStatusPending, MatchStatusInProgress:
		return false
	}
	panic("models: unhandled match status " + string(s))
}

type ResultKind string

const (
	ResultWin           ResultKind = "win"
	ResultDraw          ResultKind = "draw"
	ResultBye           ResultKind = "bye"
	ResultForfeitSingle ResultKind = "forfeit_single"
	ResultForfeitDouble ResultKind = "forfeit_double"
)

func ParseResultKind(v string) (ResultKind, error) {
	return parseEnum("result kind", v,
		ResultWin, ResultDraw, ResultBye, ResultForfeitSingle, ResultForfeitDouble)
}

func (k *ResultKind) Scan(src any) error           { return scanEnum(k, src, ParseResultKind) }
func (k ResultKind) Value() (driver.Value, error)  { return valueEnum(k, ParseResultKind) }
func (k *ResultKind) UnmarshalText(b []byte) error { return unmarshalEnum(k, b, ParseResultKind) }

// SlotSourceKind describes where a placeholder slot's player comes from.
type SlotSourceKind string

const (
	SlotSwissPairing SlotSourceKind = "swiss_pairing" // next free pairing from the engine
	SlotDeclaredSeed SlotSourceKind = "declared_seed" // entry seed of a coverage round
	SlotSeedRank     SlotSourceKind = "seed_rank"     // rank in the feeder standings
	SlotMatchWinner  SlotSourceKind = "match_winner"  // winner of feeder match
	SlotMatchLoser   SlotSourceKind = "match_loser"   // loser of feeder match
)

func ParseSlotSourceKind(v string) (SlotSourceKind, error) {
	return parseEnum("slot source", v,
		SlotSwissPairing, SlotDeclaredSeed, SlotSeedRank, SlotMatchWinner, SlotMatchLoser)
}

func (k *SlotSourceKind) UnmarshalText(b []byte) error {
	return unmarshalEnum(k, b, ParseSlotSourceKind)
}

// SlotSource is the bracket-position metadata of a placeholder slot.
type SlotSource struct {
	Kind  SlotSourceKind `json:"kind"`
	Round int            `json:"round"`
	// Rank для seed_rank/declared_seed, Order для match_winner/match_loser.
	Rank  int `json:"rank,omitempty"`
	Order int `json:"order,omitempty"`
}

func (s SlotSource) String() string {
	switch s.Kind {
	case SlotSwissPairing:
		return fmt.Sprintf("pairing of round %d", s.Round)
	case SlotDeclaredSeed:
		return fmt.Sprintf("entry seed %d", s.Rank)
	case SlotSeedRank:
		return fmt.Sprintf("rank %d after round %d", s.Rank, s.Round)
	case SlotMatchWinner:
		return fmt.Sprintf("winner of round %d match %d", s.Round, s.Order)
	case SlotMatchLoser:
		return fmt.Sprintf("loser of round %d match %d", s.Round, s.Order)
	}
	return "unknown slot source " + string(s.Kind)
}

// Match is one game slot of a round. Player1 plays white.
type Match struct {
	ID            int         `json:"id" db:"id"`
	TournamentID  int         `json:"tournament_id" db:"tournament_id"`
	RoundNumber   int         `json:"round_number" db:"round_number"`
	OrderInRound  int         `json:"order_in_round" db:"order_in_round"`
	Player1ID     *int        `json:"player1_id,omitempty" db:"player1_id"`
	Player2ID     *int        `json:"player2_id,omitempty" db:"player2_id"`
	IsPlaceholder bool        `json:"is_placeholder" db:"is_placeholder"`
	IsBye         bool        `json:"is_bye" db:"is_bye"`
	ByeSlot       bool        `json:"bye_slot,omitempty" db:"bye_slot"`
	Status        MatchStatus `json:"status" db:"status"`
	Result        *ResultKind `json:"result,omitempty" db:"result"`
	WinnerID      *int        `json:"winner_id,omitempty" db:"winner_id"`
	Slot1         *SlotSource `json:"slot1,omitempty" db:"slot1"`
	Slot2         *SlotSource `json:"slot2,omitempty" db:"slot2"`
	Deadline      *time.Time  `json:"deadline,omitempty" db:"deadline"`
	CompletedAt   *time.Time  `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt     time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at" db:"updated_at"`
}

// ErrInvalidTransition is returned by every state-machine edge that does not apply.
var ErrInvalidTransition = errors.New("invalid match transition")

// ErrInvalidOutcome is returned when an outcome does not fit the match.
var ErrInvalidOutcome = errors.New("invalid match outcome")

func transitionError(m *Match, edge string) error {
	return fmt.Errorf("%w: %s from status %q (match %d, placeholder=%t, bye=%t)",
		ErrInvalidTransition, edge, m.Status, m.ID, m.IsPlaceholder, m.IsBye)
}

// NewPlaceholder creates an unbound slot.
func NewPlaceholder(tournamentID, round, order int, slot1, slot2 *SlotSource, byeSlot bool) Match {
	return Match{
		TournamentID:  tournamentID,
		RoundNumber:   round,
		OrderInRound:  order,
		IsPlaceholder: true,
		ByeSlot:       byeSlot,
		Status:        MatchStatusPlaceholder,
		Slot1:         slot1,
		Slot2:         slot2,
	}
}

// HasPlayer reports whether the participant occupies one of the slots.
func (m *Match) HasPlayer(id int) bool {
	return (m.Player1ID != nil && *m.Player1ID == id) || (m.Player2ID != nil && *m.Player2ID == id)
}

// Opponent returns the other player of a two-player match.
func (m *Match) Opponent(id int) (int, bool) {
	if m.Player1ID == nil || m.Player2ID == nil {
		return 0, false
	}
	switch id {
	case *m.Player1ID:
		return *m.Player2ID, true
	case *m.Player2ID:
		return *m.Player1ID, true
	}
	return 0, false
}

// Loser returns the losing player of a decided two-player match.
func (m *Match) Loser() (int, bool) {
	if m.WinnerID == nil || m.IsBye {
		return 0, false
	}
	return m.Opponent(*m.WinnerID)
}

// Bind is the placeholder → pending edge. black == nil binds a bye.
// This is the only place IsPlaceholder is cleared.
func (m *Match) Bind(white int, black *int, deadline *time.Time) error {
	if !m.IsPlaceholder || m.Status != MatchStatusPlaceholder {
		return transitionError(m, "bind")
	}
	if black != nil && *black == white {
		return fmt.Errorf("%w: participant %d cannot play themselves", ErrInvalidOutcome, white)
	}
	w := white
	m.Player1ID = &w
	if black != nil {
		b := *black
		m.Player2ID = &b
		m.IsBye = false
	} else {
		m.Player2ID = nil
		m.IsBye = true
	}
	m.IsPlaceholder = false
	m.Status = MatchStatusPending
	m.Result = nil
	m.WinnerID = nil
	m.CompletedAt = nil
	m.Deadline = deadline
	return nil
}

// Start is the pending → in_progress edge. Byes never start.
func (m *Match) Start() error {
	if m.Status != MatchStatusPending || m.IsBye {
		return transitionError(m, "start")
	}
	m.Status = MatchStatusInProgress
	return nil
}

// Outcome is a reported result for a two-player match.
type Outcome struct {
	Result   ResultKind `json:"result"`
	WinnerID *int       `json:"winner_id,omitempty"`
}

// Validate checks the outcome against the players of m.
func (o Outcome) Validate(m *Match) error {
	switch o.Result {
	case ResultWin, ResultForfeitSingle:
		if o.WinnerID == nil {
			return fmt.Errorf("%w: %s requires a winner", ErrInvalidOutcome, o.Result)
		}
		if !m.HasPlayer(*o.WinnerID) {
			return fmt.Errorf("%w: winner %d does not play in match %d", ErrInvalidOutcome, *o.WinnerID, m.ID)
		}
		return nil
	case ResultDraw, ResultForfeitDouble:
		if o.WinnerID != nil {
			return fmt.Errorf("%w: %s must not carry a winner", ErrInvalidOutcome, o.Result)
		}
		return nil
	case ResultBye:
		return fmt.Errorf("%w: byes are awarded by the round, not reported", ErrInvalidOutcome)
	}
	return fmt.Errorf("%w: result %q", ErrUnknownEnumValue, o.Result)
}

// Complete is the pending|in_progress → completed edge for two-player matches.
func (m *Match) Complete(o Outcome, at time.Time) error {
	if m.IsBye || m.IsPlaceholder || (m.Status != MatchStatusPending && m.Status != MatchStatusInProgress) {
		return transitionError(m, "complete")
	}
	if err := o.Validate(m); err != nil {
		return err
	}
	r := o.Result
	m.Result = &r
	m.WinnerID = nil
	if o.WinnerID != nil {
		w := *o.WinnerID
		m.WinnerID = &w
	}
	m.Status = MatchStatusCompleted
	m.CompletedAt = &at
	return nil
}

// AwardBye is the pending bye → completed edge. It must only be taken once every
// non-bye match of the round is terminal.
func (m *Match) AwardBye(at time.Time) error {
	if !m.IsBye || m.Status != MatchStatusPending || m.Player1ID == nil {
		return transitionError(m, "award bye")
	}
	r := ResultBye
	w := *m.Player1ID
	m.Result = &r
	m.WinnerID = &w
	m.Status = MatchStatusCompleted
	m.CompletedAt = &at
	return nil
}

// Cancel moves a non-completed match to cancelled.
func (m *Match) Cancel() error {
	switch m.Status {
	case MatchStatusPending, MatchStatusInProgress, MatchStatusPlaceholder:
		m.Status = MatchStatusCancelled
		return nil
	case MatchStatusCompleted, MatchStatusCancelled:
		return transitionError(m, "cancel")
	}
	return fmt.Errorf("%w: match status %q", ErrUnknownEnumValue, m.Status)
}

// Unbind returns a bound match to the placeholder state (administrative reset of a feeder round).
func (m *Match) Unbind() error {
	if m.IsPlaceholder {
		return transitionError(m, "unbind")
	}
	m.Player1ID = nil
	m.Player2ID = nil
	m.IsBye = false
	m.IsPlaceholder = true
	m.Status = MatchStatusPlaceholder
	m.Result = nil
	m.WinnerID = nil
	m.CompletedAt = nil
	m.Deadline = nil
	return nil
}

// Reset returns a bound match to unplayed, keeping its players.
func (m *Match) Reset() error {
	if m.IsPlaceholder {
		return transitionError(m, "reset")
	}
	m.Status = MatchStatusPending
	m.Result = nil
	m.WinnerID = nil
	m.CompletedAt = nil
	return nil
}
