// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch, persist, or update
// user and credential records, abstracting SQL logic away from callers.
//
// Two implementations are provided for each contract: a PostgreSQL one
// backed by a pgx pool, and an in-memory one for tests and local
// wiring. Both honor the same operation and error contract, so callers
// can substitute one for the other.
package repository

import (
	"context"

	"github.com/deppfellow/users-store/database"
	"github.com/deppfellow/users-store/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// UserRepository is the data-access contract for user records.
//
// Reads return value snapshots; mutation happens by constructing an
// updated domain.User and calling Update. Storage or connectivity
// failures are returned untranslated; only the conditions named on
// each method map to the package's sentinel errors.
type UserRepository interface {
	// GetByID returns the user with the given id.
	// Returns ErrUserNotFound when no row matches.
	GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error)

	// GetByUsername returns the user with the given unique username.
	// Returns ErrUserNotFound when no row matches.
	GetByUsername(ctx context.Context, username string) (domain.User, error)

	// Create inserts a new user with the caller-assigned id.
	// Returns ErrDuplicateUserKey when id, username, or email collides
	// with an existing row.
	Create(ctx context.Context, user domain.User) error

	// Update overwrites every column of the row matching user.ID.
	// Returns ErrUserNotFound when the row is absent, and
	// ErrDuplicateUserKey when the new username or email collides with
	// a different row. A failed update leaves the row unchanged.
	Update(ctx context.Context, user domain.User) error

	// Delete removes the row matching user.ID, along with the user's
	// credential (the schema cascades). Deleting an absent user is not
	// an error; delete is idempotent by policy.
	Delete(ctx context.Context, user domain.User) error
}

// PasswordRepository is the data-access contract for credential
// records.
//
// There is no update: credential rotation is delete-then-create at the
// caller's discretion, and the two steps are not atomic at this layer.
type PasswordRepository interface {
	// GetByObj returns the credential matching both password.UserID and
	// password.Hash, verifying a known credential. Returns
	// ErrPasswordNotFound when no row matches the pair.
	GetByObj(ctx context.Context, password domain.Password) (domain.Password, error)

	// Create inserts a credential keyed by password.UserID.
	// Returns ErrUserNotFound when the referenced user does not exist
	// (the violated constraint is the user relationship), and
	// ErrDuplicateUserKey when the user already holds a credential.
	Create(ctx context.Context, password domain.Password) error

	// Delete removes the credential for password.UserID. Idempotent:
	// zero rows matched is success.
	Delete(ctx context.Context, password domain.Password) error
}

// Repositories is a container for all repository instances, wired once
// at startup and shared by callers.
type Repositories struct {
	Users     UserRepository
	Passwords PasswordRepository
}

// NewRepositories constructs the repository container on top of the
// shared connection pool.
func NewRepositories(db *database.Database, log *zerolog.Logger) *Repositories {
	return &Repositories{
		Users:     NewPostgresUserRepository(db.Pool, log),
		Passwords: NewPostgresPasswordRepository(db.Pool, log),
	}
}
