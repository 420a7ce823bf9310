package repositories

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// SQLExecutor is satisfied by *sql.DB and *sql.Tx. Passing nil means "use the pool".
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Transactor runs fn inside one transaction: committed when fn returns nil, rolled
// back otherwise.
type Transactor interface {
	InTx(ctx context.Context, fn func(exec SQLExecutor) error) error
}

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
	pgCheckViolation      = "23514"
)

func checkAffectedRows(result sql.Result, notFoundError error) error {
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if rowsAffected == 0 {
		return notFoundError // Возвращаем переданную ошибку "не найдено"
	}
	return nil
}

// constraintError maps a postgres constraint violation to one of the given errors by
// constraint name. Unknown constraints fall back to the generic error of the code.
func constraintError(err error, byConstraint map[string]error, fallback map[pq.ErrorCode]error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	if mapped, ok := byConstraint[pqErr.Constraint]; ok {
		return mapped
	}
	if mapped, ok := fallback[pqErr.Code]; ok {
		return fmt.Errorf("%w: %s", mapped, pqErr.Constraint)
	}
	return err
}

func toJSONB(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to encode jsonb: %w", err)
	}
	return b, nil
}

// nullableJSONB encodes v, returning nil (SQL NULL) for a nil pointer.
func nullableJSONB[T any](v *T) (any, error) {
	if v == nil {
		return nil, nil
	}
	return toJSONB(v)
}

func fromNullableJSONB[T any](raw []byte) (*T, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v T
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("failed to decode jsonb: %w", err)
	}
	return &v, nil
}

type postgresTransactor struct {
	db *sql.DB
}

func NewPostgresTransactor(db *sql.DB) Transactor {
	return &postgresTransactor{db: db}
}

func (t *postgresTransactor) InTx(ctx context.Context, fn func(exec SQLExecutor) error) (txErr error) {
	tx, err := t.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		} else if txErr != nil {
			if rbErr := tx.Rollback(); rbErr != nil {
				txErr = fmt.Errorf("transaction processing error: %w (rollback also failed: %v)", txErr, rbErr)
			}
		} else if cErr := tx.Commit(); cErr != nil {
			txErr = fmt.Errorf("failed to commit transaction: %w", cErr)
		}
	}()
	txErr = fn(tx)
	return txErr
}

// Store groups the repositories the services work with.
type Store struct {
	Tournaments  TournamentRepository
	Rounds       RoundRepository
	Participants ParticipantRepository
	Matches      MatchRepository
	Tx           Transactor
}

func NewPostgresStore(db *sql.DB) *Store {
	return &Store{
		Tournaments:  NewPostgresTournamentRepository(db),
		Rounds:       NewPostgresRoundRepository(db),
		Participants: NewPostgresParticipantRepository(db),
		Matches:      NewPostgresMatchRepository(db),
		Tx:           NewPostgresTransactor(db),
	}
}
