package services

import "errors"

// Общие ошибки, используемые в разных сервисах и маппинге HTTP.
var (
	// Ресурс не найден (универсальная)
	ErrNotFound = errors.New("requested resource not found")

	// Ошибки валидации и бизнес-правил
	ErrValidationFailed     = errors.New("validation failed")
	ErrTournamentNameEmpty  = errors.New("tournament name is required")
	ErrDuplicateParticipant = errors.New("participant is listed more than once")
	ErrDisplayNameRequired  = errors.New("participant display name is required")
	ErrKnockoutNeedsWinner  = errors.New("elimination matches must produce a winner")
	ErrInvalidResult        = errors.New("invalid match result")

	// Ошибки конфликтов состояния
	ErrMatchNotPlayable         = errors.New("match cannot take this transition in its current state")
	ErrTournamentCompleted      = errors.New("tournament is already completed")
	ErrParticipantNotActive     = errors.New("participant has already withdrawn")
	ErrTournamentSlugConflict   = errors.New("tournament slug already exists")
	ErrPlaceholderSlotsExceeded = errors.New("round has fewer placeholder slots than generated pairings")

	// Ошибки, специфичные для сущностей
	ErrTournamentNotFound  = errors.New("tournament not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrMatchNotFound       = errors.New("match not found")
	ErrRoundNotFound       = errors.New("round not found")

	// Ошибки генерации пар: данные турнира не позволяют продолжить
	ErrPairingFailed = errors.New("pairing could not be generated")
)
