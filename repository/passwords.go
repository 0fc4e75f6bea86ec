package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/users-store/domain"
	"github.com/deppfellow/users-store/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgresPasswordRepository implements PasswordRepository on a pgx
// pool, with the same per-call connection scoping as the user
// repository.
type PostgresPasswordRepository struct {
	db  *pgxpool.Pool
	log *zerolog.Logger
}

// NewPostgresPasswordRepository creates a credential repository on the
// given pool.
func NewPostgresPasswordRepository(db *pgxpool.Pool, log *zerolog.Logger) *PostgresPasswordRepository {
	return &PostgresPasswordRepository{db: db, log: log}
}

// GetByObj retrieves the credential matching both user id and hash.
// It verifies a known credential rather than looking one up by user
// alone, so a wrong hash is indistinguishable from an absent record.
func (r *PostgresPasswordRepository) GetByObj(ctx context.Context, password domain.Password) (domain.Password, error) {
	rows, err := r.db.Query(ctx, `
		SELECT user_id, hash, created_at
		FROM passwords
		WHERE user_id = $1 AND hash = $2
	`, password.UserID, password.Hash)
	if err != nil {
		return domain.Password{}, fmt.Errorf("querying password: %w", err)
	}

	stored, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.Password])
	if err != nil {
		if sqlerr.Classify(err) == sqlerr.NoRows {
			return domain.Password{}, fmt.Errorf("password for user %s: %w", password.UserID, ErrPasswordNotFound)
		}
		r.log.Error().Err(err).Stringer("user_id", password.UserID).Msg("failed to get password")
		return domain.Password{}, fmt.Errorf("collecting password row: %w", err)
	}

	return stored, nil
}

// Create inserts a credential row keyed by user id.
func (r *PostgresPasswordRepository) Create(ctx context.Context, password domain.Password) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO passwords (user_id, hash, created_at)
		VALUES ($1, $2, $3)
	`, password.UserID, password.Hash, password.CreatedAt)
	if err != nil {
		if serr := sqlerr.Convert(err); serr != nil {
			switch serr.Code {
			case sqlerr.ForeignKeyViolation:
				// The violated constraint is the user relationship, so
				// this surfaces as the user's not-found error.
				return fmt.Errorf("%s: %w", sqlerr.Describe(serr), ErrUserNotFound)
			case sqlerr.UniqueViolation:
				// Primary-key collision: the user already holds a
				// credential. Rotation is delete-then-create.
				return fmt.Errorf("user %s already has a password: %w", password.UserID, ErrDuplicateUserKey)
			}
		}
		r.log.Error().Err(err).Stringer("user_id", password.UserID).Msg("failed to create password")
		return fmt.Errorf("inserting password: %w", err)
	}

	return nil
}

// Delete removes the credential for the password's user id. Zero rows
// matched is success.
func (r *PostgresPasswordRepository) Delete(ctx context.Context, password domain.Password) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM passwords
		WHERE user_id = $1
	`, password.UserID)
	if err != nil {
		r.log.Error().Err(err).Stringer("user_id", password.UserID).Msg("failed to delete password")
		return fmt.Errorf("deleting password: %w", err)
	}

	return nil
}
