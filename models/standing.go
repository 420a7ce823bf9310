package models

// Standing - производная проекция, всегда пересчитывается из завершённых матчей.
type Standing struct {
	ParticipantID   int     `json:"participant_id"`
	DisplayName     string  `json:"display_name"`
	Rating          int     `json:"rating"`
	Active          bool    `json:"active"`
	Points          float64 `json:"points"`
	MatchesPlayed   int     `json:"matches_played"`
	Wins            int     `json:"wins"`
	Draws           int     `json:"draws"`
	Losses          int     `json:"losses"`
	Byes            int     `json:"byes"`
	Buchholz        float64 `json:"buchholz"`
	SonnebornBerger float64 `json:"sonneborn_berger"`
	HeadToHead      float64 `json:"head_to_head"`
	Whites          int     `json:"whites"`
	Blacks          int     `json:"blacks"`
	LastColor       Color   `json:"last_color,omitempty"`
	Opponents       []int   `json:"opponents"`
	Rank            int     `json:"rank"`
	FinalPosition   *int    `json:"final_position,omitempty"`
}

// Color of the pieces a participant had in a game.
type Color string

const (
	ColorNone  Color = ""
	ColorWhite Color = "white"
	ColorBlack Color = "black"
)

// ColorBalance is whites minus blacks.
func (s Standing) ColorBalance() int { return s.Whites - s.Blacks }
