package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Dosada05/championship/models"
	"github.com/lib/pq"
)

var (
	ErrRoundNotFound = errors.New("round not found")
	ErrRoundConflict = errors.New("round number already exists for this tournament")
)

type RoundRepository interface {
	Create(ctx context.Context, exec SQLExecutor, round *models.Round) error
	ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Round, error)
	// LockRound serialises completion checks of one round until the transaction ends.
	LockRound(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) error
}

type postgresRoundRepository struct {
	db *sql.DB
}

func NewPostgresRoundRepository(db *sql.DB) RoundRepository {
	return &postgresRoundRepository{db: db}
}

func (r *postgresRoundRepository) getExecutor(exec SQLExecutor) SQLExecutor {
	if exec != nil {
		return exec
	}
	return r.db
}

func (r *postgresRoundRepository) Create(ctx context.Context, exec SQLExecutor, round *models.Round) error {
	descriptor, err := toJSONB(round.RoundDescriptor)
	if err != nil {
		return err
	}
	query := `
		INSERT INTO rounds (tournament_id, number, kind, descriptor)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err = r.getExecutor(exec).QueryRowContext(ctx, query,
		round.TournamentID, round.Number, round.Kind, descriptor,
	).Scan(&round.ID)
	if err != nil {
		return constraintError(err,
			map[string]error{"rounds_tournament_id_number_key": ErrRoundConflict},
			map[pq.ErrorCode]error{pgUniqueViolation: ErrRoundConflict},
		)
	}
	return nil
}

func (r *postgresRoundRepository) ListByTournament(ctx context.Context, exec SQLExecutor, tournamentID int) ([]models.Round, error) {
	query := `SELECT id, tournament_id, descriptor FROM rounds WHERE tournament_id = $1 ORDER BY number ASC`
	rows, err := r.getExecutor(exec).QueryContext(ctx, query, tournamentID)
	if err != nil {
		return nil, fmt.Errorf("failed to query rounds for tournament %d: %w", tournamentID, err)
	}
	defer rows.Close()

	rounds := make([]models.Round, 0)
	for rows.Next() {
		var (
			round models.Round
			raw   []byte
		)
		if err := rows.Scan(&round.ID, &round.TournamentID, &raw); err != nil {
			return nil, fmt.Errorf("failed to scan round row: %w", err)
		}
		if err := json.Unmarshal(raw, &round.RoundDescriptor); err != nil {
			return nil, fmt.Errorf("failed to decode round %d descriptor: %w", round.ID, err)
		}
		rounds = append(rounds, round)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating round rows: %w", err)
	}
	return rounds, nil
}

func (r *postgresRoundRepository) LockRound(ctx context.Context, exec SQLExecutor, tournamentID, roundNumber int) error {
	if exec == nil {
		return errors.New("round lock requires a transaction")
	}
	if _, err := exec.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1, $2)`, tournamentID, roundNumber); err != nil {
		return fmt.Errorf("failed to lock round %d of tournament %d: %w", roundNumber, tournamentID, err)
	}
	return nil
}
