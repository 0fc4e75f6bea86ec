package repository

import (
	"context"
	"fmt"

	"github.com/deppfellow/users-store/domain"
	"github.com/deppfellow/users-store/sqlerr"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// PostgresUserRepository implements UserRepository on a pgx pool.
//
// Every method acquires a connection from the pool for the duration of
// the call and releases it before returning, on every exit path
// including cancellation. Nothing is shared between calls.
type PostgresUserRepository struct {
	db  *pgxpool.Pool
	log *zerolog.Logger
}

// NewPostgresUserRepository creates a user repository on the given pool.
func NewPostgresUserRepository(db *pgxpool.Pool, log *zerolog.Logger) *PostgresUserRepository {
	return &PostgresUserRepository{db: db, log: log}
}

// GetByID retrieves a user by primary key.
func (r *PostgresUserRepository) GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, username, email
		FROM users
		WHERE id = $1
	`, userID)
	if err != nil {
		return domain.User{}, fmt.Errorf("querying user by id: %w", err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.User])
	if err != nil {
		// Exactly-one semantics: zero rows is the typed not-found case;
		// more than one means corrupted constraints and propagates.
		if sqlerr.Classify(err) == sqlerr.NoRows {
			return domain.User{}, fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
		}
		r.log.Error().Err(err).Stringer("user_id", userID).Msg("failed to get user by id")
		return domain.User{}, fmt.Errorf("collecting user row: %w", err)
	}

	return user, nil
}

// GetByUsername retrieves a user by its unique username.
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, username, email
		FROM users
		WHERE username = $1
	`, username)
	if err != nil {
		return domain.User{}, fmt.Errorf("querying user by username: %w", err)
	}

	user, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[domain.User])
	if err != nil {
		if sqlerr.Classify(err) == sqlerr.NoRows {
			return domain.User{}, fmt.Errorf("user %q: %w", username, ErrUserNotFound)
		}
		r.log.Error().Err(err).Str("username", username).Msg("failed to get user by username")
		return domain.User{}, fmt.Errorf("collecting user row: %w", err)
	}

	return user, nil
}

// Create inserts a new user row from the domain object's field set.
func (r *PostgresUserRepository) Create(ctx context.Context, user domain.User) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO users (id, username, email)
		VALUES ($1, $2, $3)
	`, user.ID, user.Username, user.Email)
	if err != nil {
		if serr := sqlerr.Convert(err); serr != nil && serr.Code == sqlerr.UniqueViolation {
			return fmt.Errorf("%s: %w", sqlerr.Describe(serr), ErrDuplicateUserKey)
		}
		r.log.Error().Err(err).Stringer("user_id", user.ID).Msg("failed to create user")
		return fmt.Errorf("inserting user: %w", err)
	}

	return nil
}

// Update overwrites every column of the row matching user.ID. The
// single statement is atomic: a failed update leaves no partial write.
func (r *PostgresUserRepository) Update(ctx context.Context, user domain.User) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE users
		SET username = $2, email = $3
		WHERE id = $1
	`, user.ID, user.Username, user.Email)
	if err != nil {
		if serr := sqlerr.Convert(err); serr != nil && serr.Code == sqlerr.UniqueViolation {
			return fmt.Errorf("%s: %w", sqlerr.Describe(serr), ErrDuplicateUserKey)
		}
		r.log.Error().Err(err).Stringer("user_id", user.ID).Msg("failed to update user")
		return fmt.Errorf("updating user: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return fmt.Errorf("user %s: %w", user.ID, ErrUserNotFound)
	}

	return nil
}

// Delete removes the row matching user.ID. Zero rows matched is
// success; the credential row, if any, goes with it via the schema's
// cascade.
func (r *PostgresUserRepository) Delete(ctx context.Context, user domain.User) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM users
		WHERE id = $1
	`, user.ID)
	if err != nil {
		r.log.Error().Err(err).Stringer("user_id", user.ID).Msg("failed to delete user")
		return fmt.Errorf("deleting user: %w", err)
	}

	return nil
}
