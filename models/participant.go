package models

import (
	"database/sql/driver"
	"time"
)

type ParticipantStatus string

const (
	ParticipantActive    ParticipantStatus = "active"
	ParticipantWithdrawn ParticipantStatus = "withdrawn"
)

func ParseParticipantStatus(v string) (ParticipantStatus, error) {
	return parseEnum("participant status", v, ParticipantActive, ParticipantWithdrawn)
}

func (s *ParticipantStatus) Scan(src any) error          { return scanEnum(s, src, ParseParticipantStatus) }
func (s ParticipantStatus) Value() (driver.Value, error) { return valueEnum(s, ParseParticipantStatus) }
func (s *ParticipantStatus) UnmarshalText(b []byte) error {
	return unmarshalEnum(s, b, ParseParticipantStatus)
}

// Participant - игрок, зарегистрированный в турнире.
type Participant struct {
	ID           int               `json:"id" db:"id"`
	TournamentID int               `json:"tournament_id" db:"tournament_id"`
	UserID       int               `json:"user_id" db:"user_id"`
	DisplayName  string            `json:"display_name" db:"display_name"`
	Rating       int               `json:"rating" db:"rating"`
	Seed         int               `json:"seed" db:"seed"` // entry seed, 1 = highest rating
	Status       ParticipantStatus `json:"status" db:"status"`
	CreatedAt    time.Time         `json:"created_at" db:"created_at"`
}

func (p Participant) IsActive() bool { return p.Status == ParticipantActive }
