package repository

import (
	"context"
	"fmt"
	"sync"

	"github.com/deppfellow/users-store/domain"
	"github.com/google/uuid"
)

// memoryStore holds both tables behind one mutex so the cascade from
// users to passwords stays consistent, mirroring what the database
// enforces with constraints.
type memoryStore struct {
	mu        sync.Mutex
	users     map[uuid.UUID]domain.User
	passwords map[uuid.UUID]domain.Password
}

func newMemoryStore() *memoryStore {
	return &memoryStore{
		users:     make(map[uuid.UUID]domain.User),
		passwords: make(map[uuid.UUID]domain.Password),
	}
}

// MemoryUserRepository is an in-memory UserRepository. It enforces the
// same uniqueness and existence rules as the PostgreSQL implementation
// and returns the same sentinel errors, so tests and local wiring can
// substitute it freely.
type MemoryUserRepository struct {
	store *memoryStore
}

// MemoryPasswordRepository is the in-memory PasswordRepository half of
// the pair returned by NewMemoryRepositories.
type MemoryPasswordRepository struct {
	store *memoryStore
}

// NewMemoryRepositories creates an in-memory repository pair sharing
// one backing store, so credential rows reference users the same way
// the database schema does.
func NewMemoryRepositories() (*MemoryUserRepository, *MemoryPasswordRepository) {
	store := newMemoryStore()
	return &MemoryUserRepository{store: store}, &MemoryPasswordRepository{store: store}
}

// GetByID returns the user with the given id.
func (r *MemoryUserRepository) GetByID(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	user, ok := r.store.users[userID]
	if !ok {
		return domain.User{}, fmt.Errorf("user %s: %w", userID, ErrUserNotFound)
	}
	return user, nil
}

// GetByUsername returns the user with the given username.
func (r *MemoryUserRepository) GetByUsername(ctx context.Context, username string) (domain.User, error) {
	if err := ctx.Err(); err != nil {
		return domain.User{}, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, user := range r.store.users {
		if user.Username == username {
			return user, nil
		}
	}
	return domain.User{}, fmt.Errorf("user %q: %w", username, ErrUserNotFound)
}

// Create inserts a new user, enforcing uniqueness of id, username,
// and email.
func (r *MemoryUserRepository) Create(ctx context.Context, user domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[user.ID]; ok {
		return fmt.Errorf("a user with this Id already exists: %w", ErrDuplicateUserKey)
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}

	r.store.users[user.ID] = user
	return nil
}

// Update overwrites the stored user, enforcing the same uniqueness
// rules against all other rows.
func (r *MemoryUserRepository) Update(ctx context.Context, user domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[user.ID]; !ok {
		return fmt.Errorf("user %s: %w", user.ID, ErrUserNotFound)
	}
	if err := r.checkUnique(user); err != nil {
		return err
	}

	r.store.users[user.ID] = user
	return nil
}

// Delete removes the user and, like the schema's cascade, the user's
// credential. Idempotent.
func (r *MemoryUserRepository) Delete(ctx context.Context, user domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.users, user.ID)
	delete(r.store.passwords, user.ID)
	return nil
}

// checkUnique rejects a username or email already taken by a different
// user. Caller must hold the store mutex.
func (r *MemoryUserRepository) checkUnique(user domain.User) error {
	for id, existing := range r.store.users {
		if id == user.ID {
			continue
		}
		if existing.Username == user.Username {
			return fmt.Errorf("a user with this Username already exists: %w", ErrDuplicateUserKey)
		}
		if existing.Email == user.Email {
			return fmt.Errorf("a user with this Email already exists: %w", ErrDuplicateUserKey)
		}
	}
	return nil
}

// GetByObj returns the credential matching both user id and hash.
func (r *MemoryPasswordRepository) GetByObj(ctx context.Context, password domain.Password) (domain.Password, error) {
	if err := ctx.Err(); err != nil {
		return domain.Password{}, err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	stored, ok := r.store.passwords[password.UserID]
	if !ok || stored.Hash != password.Hash {
		return domain.Password{}, fmt.Errorf("password for user %s: %w", password.UserID, ErrPasswordNotFound)
	}
	return stored, nil
}

// Create inserts a credential, enforcing the user reference and the
// one-credential-per-user rule.
func (r *MemoryPasswordRepository) Create(ctx context.Context, password domain.Password) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.users[password.UserID]; !ok {
		return fmt.Errorf("the referenced User does not exist: %w", ErrUserNotFound)
	}
	if _, ok := r.store.passwords[password.UserID]; ok {
		return fmt.Errorf("user %s already has a password: %w", password.UserID, ErrDuplicateUserKey)
	}

	r.store.passwords[password.UserID] = password
	return nil
}

// Delete removes the credential for the password's user id. Idempotent.
func (r *MemoryPasswordRepository) Delete(ctx context.Context, password domain.Password) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	delete(r.store.passwords, password.UserID)
	return nil
}
