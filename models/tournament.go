package models

import (
	"database/sql/driver"
	"time"
)

// TournamentStatus представляет статусы турнира, соответствующие ENUM в БД.
type TournamentStatus string

const (
	StatusActive    TournamentStatus = "active"
	StatusCompleted TournamentStatus = "completed"
)

func ParseTournamentStatus(v string) (TournamentStatus, error) {
	return parseEnum("tournament status", v, StatusActive, StatusCompleted)
}

func (s *TournamentStatus) Scan(src any) error { return scanEnum(s, src, ParseTournamentStatus) }
func (s TournamentStatus) Value() (driver.Value, error) {
	return valueEnum(s, ParseTournamentStatus)
}
func (s *TournamentStatus) UnmarshalText(b []byte) error {
	return unmarshalEnum(s, b, ParseTournamentStatus)
}

// TournamentFormat определяет, есть ли у турнира стадия плей-офф.
type TournamentFormat string

const (
	FormatSwissElimination TournamentFormat = "swiss_elimination"
	FormatSwissOnly        TournamentFormat = "swiss_only"
)

func ParseTournamentFormat(v string) (TournamentFormat, error) {
	return parseEnum("tournament format", v, FormatSwissElimination, FormatSwissOnly)
}

// UnmarshalText оставляет пустой формат нулевым значением, его заполняет Normalize.
func (f *TournamentFormat) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*f = ""
		return nil
	}
	return unmarshalEnum(f, b, ParseTournamentFormat)
}

// HasKnockout reports whether the format ends with an elimination bracket.
func (f TournamentFormat) HasKnockout() bool {
	switch f {
	case FormatSwissElimination:
		return true
	case FormatSwissOnly:
		return false
	}
	panic("models: unhandled tournament format " + string(f))
}

// ScoringPolicy controls how results turn into points and statistics.
type ScoringPolicy struct {
	WinPoints           float64 `json:"win_points"`
	DrawPoints          float64 `json:"draw_points"`
	LossPoints          float64 `json:"loss_points"`
	ByePoints           float64 `json:"bye_points"`
	ForfeitWinPoints    float64 `json:"forfeit_win_points"`
	ForfeitLossPoints   float64 `json:"forfeit_loss_points"`
	DoubleForfeitPoints float64 `json:"double_forfeit_points"`
	// ByeCountsAsPlayed включает bye в счётчик сыгранных матчей.
	ByeCountsAsPlayed bool `json:"bye_counts_as_played"`
}

func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		WinPoints:         1,
		DrawPoints:        0.5,
		ByePoints:         1,
		ForfeitWinPoints:  1,
		ByeCountsAsPlayed: true,
	}
}

// TournamentConfig is supplied at creation time and stored with the tournament.
type TournamentConfig struct {
	Format          TournamentFormat `json:"format"`
	SwissRounds     int              `json:"swiss_rounds"` // 0 = ceil(log2(P))
	TopK            int              `json:"top_k"`        // 0 = largest power of two <= P/2
	MinTopK         int              `json:"min_top_k"`
	MaxTopK         int              `json:"max_top_k"`
	ThirdPlaceMatch bool             `json:"third_place_match"`
	MatchWindowHrs  int              `json:"match_window_hours"`
	Scoring         *ScoringPolicy   `json:"scoring,omitempty"`
}

const (
	DefaultMinTopK        = 2
	DefaultMaxTopK        = 8
	MaxSupportedTopK      = 64
	DefaultMatchWindowHrs = 48
)

// Normalize fills zero values with defaults. Explicit values are left for validation.
func (c TournamentConfig) Normalize() TournamentConfig {
	if c.Format == "" {
		c.Format = FormatSwissElimination
	}
	if c.MinTopK == 0 {
		c.MinTopK = DefaultMinTopK
	}
	if c.MaxTopK == 0 {
		c.MaxTopK = DefaultMaxTopK
	}
	if c.MatchWindowHrs == 0 {
		c.MatchWindowHrs = DefaultMatchWindowHrs
	}
	if c.Scoring == nil {
		p := DefaultScoringPolicy()
		c.Scoring = &p
	}
	return c
}

func (c TournamentConfig) ScoringPolicy() ScoringPolicy {
	if c.Scoring == nil {
		return DefaultScoringPolicy()
	}
	return *c.Scoring
}

func (c TournamentConfig) MatchWindow() time.Duration {
	return time.Duration(c.MatchWindowHrs) * time.Hour
}

// Tournament представляет турнир.
type Tournament struct {
	ID        int              `json:"id" db:"id"`
	Name      string           `json:"name" db:"name"`
	Slug      string           `json:"slug" db:"slug"`
	Status    TournamentStatus `json:"status" db:"status"`
	Config    TournamentConfig `json:"config" db:"config"`
	CreatedAt time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt time.Time        `json:"updated_at" db:"updated_at"`

	// Опциональные связанные сущности (не мапятся напрямую)
	Rounds       []Round       `json:"rounds,omitempty" db:"-"`
	Participants []Participant `json:"participants,omitempty" db:"-"`
}
