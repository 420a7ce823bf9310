package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/Dosada05/championship/models"
	"github.com/lib/pq"
)

var (
	ErrMatchNotFound           = errors.New("match not found")
	ErrMatchSlotConflict       = errors.New("match slot conflict: order already taken in this round")
	ErrMatchParticipantInvalid = errors.New("match participant conflict or invalid")
	ErrMatchStateViolation     = errors.New("match state violates a table constraint")
)

// MatchFilter narrows ListByTournament. Nil fields are not applied.
type MatchFilter struct {
	Round  *int
	Status *models.MatchStatus
}

type MatchRepository interface {
	Create(ctx context.Context, exec SQLExecutor, match *models.Match) error
	GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error)
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter MatchFilter) ([]models.Match, error)
	// Update persists the full mutable state of the match.
	Update(ctx context.Context, exec SQLExecutor, match *models.Match) error
	Delete(ctx context.Context, exec SQLExecutor, id int) error
}

type postgresMatchRepository struct {
	db *sql.DB
}

func NewPostgresMatchRepository(db *sql.DB) MatchRepository {
	return &postgresMatchRepository{db: db}
}

func (r *postgresMatchRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

const matchColumns = `
	id, tournament_id, round_number, order_in_round, player1_id, player2_id,
	is_placeholder, is_bye, bye_slot, status, result, winner_id, slot1, slot2,
	deadline, completed_at, created_at, updated_at`

func (r *postgresMatchRepository) Create(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	slot1, err := nullableJSONB(m.Slot1)
	if err != nil {
		return err
	}
	slot2, err := nullableJSONB(m.Slot2)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO matches
			(tournament_id, round_number, order_in_round, player1_id, player2_id,
			 is_placeholder, is_bye, bye_slot, status, result, winner_id, slot1, slot2, deadline, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		RETURNING id, created_at, updated_at`

	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		m.TournamentID, m.RoundNumber, m.OrderInRound, m.Player1ID, m.Player2ID,
		m.IsPlaceholder, m.IsBye, m.ByeSlot, m.Status, m.Result, m.WinnerID, slot1, slot2,
		m.Deadline, m.CompletedAt,
	).Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	return r.handleMatchError(err)
}

func scanMatch(row interface{ Scan(...any) error }, m *models.Match) error {
	var slot1, slot2 []byte
	err := row.Scan(
		&m.ID, &m.TournamentID, &m.RoundNumber, &m.OrderInRound, &m.Player1ID, &m.Player2ID,
		&m.IsPlaceholder, &m.IsBye, &m.ByeSlot, &m.Status, &m.Result, &m.WinnerID, &slot1, &slot2,
		&m.Deadline, &m.CompletedAt, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if m.Slot1, err = fromNullableJSONB[models.SlotSource](slot1); err != nil {
		return err
	}
	if m.Slot2, err = fromNullableJSONB[models.SlotSource](slot2); err != nil {
		return err
	}
	return nil
}

func (r *postgresMatchRepository) GetByID(ctx context.Context, exec SQLExecutor, id int) (*models.Match, error) {
	query := `SELECT ` + matchColumns + ` FROM matches WHERE id = $1`
	m := &models.Match{}
	if err := scanMatch(r.getExecutor(exec).QueryRowContext(ctx, query, id), m); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMatchNotFound
		}
		return nil, fmt.Errorf("failed to scan match by id %d: %w", id, err)
	}
	return m, nil
}

func (r *postgresMatchRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int, filter MatchFilter) ([]models.Match, error) {
	var queryBuilder strings.Builder
	queryBuilder.WriteString(`SELECT ` + matchColumns + ` FROM matches WHERE tournament_id = $1`)

	args := []interface{}{tournamentID}
	placeholderIndex := 2
	if filter.Round != nil {
		queryBuilder.WriteString(" AND round_number = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Round)
		placeholderIndex++
	}
	if filter.Status != nil {
		queryBuilder.WriteString(" AND status = $")
		queryBuilder.WriteString(strconv.Itoa(placeholderIndex))
		args = append(args, *filter.Status)
	}
	queryBuilder.WriteString(" ORDER BY round_number ASC, order_in_round ASC")

	rows, err := r.getExecutor(exec).QueryContext(ctx, queryBuilder.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query matches for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	matches := make([]models.Match, 0)
	for rows.Next() {
		var m models.Match
		if err := scanMatch(rows, &m); err != nil {
			return nil, fmt.Errorf("failed to scan match row: %w", err)
		}
		matches = append(matches, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating match rows: %w", err)
	}
	return matches, nil
}

func (r *postgresMatchRepository) Update(ctx context.Context, exec SQLExecutor, m *models.Match) error {
	query := `
		UPDATE matches SET
			player1_id = $1, player2_id = $2, is_placeholder = $3, is_bye = $4,
			status = $5, result = $6, winner_id = $7, deadline = $8, completed_at = $9,
			updated_at = NOW()
		WHERE id = $10
		RETURNING updated_at`

	err := r.getExecutor(exec).QueryRowContext(ctx, query,
		m.Player1ID, m.Player2ID, m.IsPlaceholder, m.IsBye,
		m.Status, m.Result, m.WinnerID, m.Deadline, m.CompletedAt, m.ID,
	).Scan(&m.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrMatchNotFound
	}
	return r.handleMatchError(err)
}

func (r *postgresMatchRepository) Delete(ctx context.Context, exec SQLExecutor, id int) error {
	result, err := r.getExecutor(exec).ExecContext(ctx, `DELETE FROM matches WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete match %d: %w", id, err)
	}
	return checkAffectedRows(result, ErrMatchNotFound)
}

func (r *postgresMatchRepository) handleMatchError(err error) error {
	if err == nil {
		return nil
	}
	return constraintError(err,
		map[string]error{
			"matches_tournament_id_round_number_order_in_round_key": ErrMatchSlotConflict,
			"matches_placeholder_unbound":                           ErrMatchStateViolation,
		},
		map[pq.ErrorCode]error{
			pgUniqueViolation:     ErrMatchSlotConflict,
			pgForeignKeyViolation: ErrMatchParticipantInvalid,
			pgCheckViolation:      ErrMatchStateViolation,
		},
	)
}
