package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/deppfellow/users-store/domain"
	"github.com/deppfellow/users-store/repository"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// repoFactory returns a fresh repository pair for one subtest. The
// same contract suite runs against the in-memory implementations and,
// when a database is configured, against the PostgreSQL ones.
type repoFactory func(t *testing.T) (repository.UserRepository, repository.PasswordRepository)

// newTestUser builds a user with a unique username/email so subtests
// never collide with each other or with leftovers in a shared database.
func newTestUser(t *testing.T) domain.User {
	t.Helper()
	id := uuid.New()
	return domain.User{
		ID:       id,
		Username: fmt.Sprintf("user-%s", id),
		Email:    fmt.Sprintf("%s@example.test", id),
	}
}

// mustCreateUser inserts a user and registers an idempotent cleanup
// delete.
func mustCreateUser(t *testing.T, users repository.UserRepository, u domain.User) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, users.Create(ctx, u))
	t.Cleanup(func() {
		_ = users.Delete(context.Background(), u)
	})
}

func runRepositoryContract(t *testing.T, newRepos repoFactory) {
	t.Run("create then get by id returns an equal user", func(t *testing.T) {
		users, _ := newRepos(t)
		ctx := context.Background()

		want := newTestUser(t)
		mustCreateUser(t, users, want)

		got, err := users.GetByID(ctx, want.ID)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("get by id on an unknown uuid fails with user not found", func(t *testing.T) {
		users, _ := newRepos(t)

		_, err := users.GetByID(context.Background(), uuid.New())
		require.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("get by username on an unknown name fails with user not found", func(t *testing.T) {
		users, _ := newRepos(t)

		_, err := users.GetByUsername(context.Background(), "nobody-"+uuid.NewString())
		require.ErrorIs(t, err, repository.ErrUserNotFound)
	})

	t.Run("get by username returns the full record", func(t *testing.T) {
		users, _ := newRepos(t)
		ctx := context.Background()

		want := newTestUser(t)
		mustCreateUser(t, users, want)

		got, err := users.GetByUsername(ctx, want.Username)
		require.NoError(t, err)
		require.Equal(t, want, got)
	})

	t.Run("creating a second user with a taken username fails with duplicate key", func(t *testing.T) {
		users, _ := newRepos(t)
		ctx := context.Background()

		first := newTestUser(t)
		mustCreateUser(t, users, first)

		second := newTestUser(t)
		second.Username = first.Username

		err := users.Create(ctx, second)
		require.ErrorIs(t, err, repository.ErrDuplicateUserKey)

		// The first user must remain retrievable and unchanged.
		got, err := users.GetByID(ctx, first.ID)
		require.NoError(t, err)
		require.Equal(t, first, got)
	})

	t.Run("creating a second user with a taken email fails with duplicate key", func(t *testing.T) {
		users, _ := newRepos(t)
		ctx := context.Background()

		first := newTestUser(t)
		mustCreateUser(t, users, first)

		second := newTestUser(t)
		second.Email = first.Email

		require.ErrorIs(t, users.Create(ctx, second), repository.ErrDuplicateUserKey)
	})

	t.Run("creating the same user twice fails with duplicate key", func(t *testing.T) {
		users, _ := newRepos(t)

		u := newTestUser(t)
		mustCreateUser(t, users, u)

		require.ErrorIs(t, users.Create(context.Background(), u), repository.ErrDuplicateUserKey)
	})

	t.Run("update overwrites every column", func(t *testing.T) {
		users, _ := newRepos(t)
		ctx := context.Background()

		u := newTestUser(t)
		mustCreateUser(t, users, u)

		updated := u
		updated.Username = "renamed-" + uuid.NewString()
		updated.Email = updated.Username + "@example.test"
		require.NoError(t, users.Update(ctx, updated))

		got, err := users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, updated, got)
	})

	t.Run("update on an unknown id fails with user not found and alters nothing", func(t *testing.T) {
		users, _ := newRepos(t)
		ctx := context.Background()

		u := newTestUser(t)
		mustCreateUser(t, users, u)

		phantom := u
		phantom.ID = uuid.New()
		require.ErrorIs(t, users.Update(ctx, phantom), repository.ErrUserNotFound)

		// phantom's username equals u's, but no row may have changed.
		got, err := users.GetByID(ctx, u.ID)
		require.NoError(t, err)
		require.Equal(t, u, got)
	})

	t.Run("update to a username taken by another user fails with duplicate key", func(t *testing.T) {
		users, _ := newRepos(t)
		ctx := context.Background()

		first := newTestUser(t)
		mustCreateUser(t, users, first)
		second := newTestUser(t)
		mustCreateUser(t, users, second)

		moved := second
		moved.Username = first.Username
		require.ErrorIs(t, users.Update(ctx, moved), repository.ErrDuplicateUserKey)

		// The failed attempt must leave second's row untouched.
		got, err := users.GetByID(ctx, second.ID)
		require.NoError(t, err)
		require.Equal(t, second, got)
	})

	t.Run("delete is idempotent", func(t *testing.T) {
		users, _ := newRepos(t)
		ctx := context.Background()

		u := newTestUser(t)
		mustCreateUser(t, users, u)

		require.NoError(t, users.Delete(ctx, u))
		require.NoError(t, users.Delete(ctx, u))

		never := newTestUser(t)
		require.NoError(t, users.Delete(ctx, never))
	})

	t.Run("password create for an absent user fails with user not found", func(t *testing.T) {
		_, passwords := newRepos(t)

		p := domain.Password{
			UserID:    uuid.New(),
			Hash:      "h-" + uuid.NewString(),
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		}
		require.ErrorIs(t, passwords.Create(context.Background(), p), repository.ErrUserNotFound)
	})

	t.Run("password round trip preserves created_at", func(t *testing.T) {
		users, passwords := newRepos(t)
		ctx := context.Background()

		u := newTestUser(t)
		mustCreateUser(t, users, u)

		p := domain.Password{
			UserID:    u.ID,
			Hash:      "h-" + uuid.NewString(),
			CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
		}
		require.NoError(t, passwords.Create(ctx, p))
		t.Cleanup(func() { _ = passwords.Delete(context.Background(), p) })

		got, err := passwords.GetByObj(ctx, domain.Password{UserID: u.ID, Hash: p.Hash})
		require.NoError(t, err)
		require.Equal(t, p.UserID, got.UserID)
		require.Equal(t, p.Hash, got.Hash)
		require.True(t, p.CreatedAt.Equal(got.CreatedAt),
			"created_at changed: stored %v, got %v", p.CreatedAt, got.CreatedAt)
	})

	t.Run("get by obj with the wrong hash fails with password not found", func(t *testing.T) {
		users, passwords := newRepos(t)
		ctx := context.Background()

		u := newTestUser(t)
		mustCreateUser(t, users, u)

		p := domain.Password{UserID: u.ID, Hash: "right", CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}
		require.NoError(t, passwords.Create(ctx, p))
		t.Cleanup(func() { _ = passwords.Delete(context.Background(), p) })

		_, err := passwords.GetByObj(ctx, domain.Password{UserID: u.ID, Hash: "wrong"})
		require.ErrorIs(t, err, repository.ErrPasswordNotFound)
	})

	t.Run("a second password for the same user fails with duplicate key", func(t *testing.T) {
		users, passwords := newRepos(t)
		ctx := context.Background()

		u := newTestUser(t)
		mustCreateUser(t, users, u)

		first := domain.Password{UserID: u.ID, Hash: "one", CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}
		require.NoError(t, passwords.Create(ctx, first))
		t.Cleanup(func() { _ = passwords.Delete(context.Background(), first) })

		second := domain.Password{UserID: u.ID, Hash: "two", CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}
		require.ErrorIs(t, passwords.Create(ctx, second), repository.ErrDuplicateUserKey)
	})

	t.Run("password rotation is delete then create", func(t *testing.T) {
		users, passwords := newRepos(t)
		ctx := context.Background()

		u := newTestUser(t)
		mustCreateUser(t, users, u)

		old := domain.Password{UserID: u.ID, Hash: "old", CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}
		require.NoError(t, passwords.Create(ctx, old))

		require.NoError(t, passwords.Delete(ctx, old))
		fresh := domain.Password{UserID: u.ID, Hash: "fresh", CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}
		require.NoError(t, passwords.Create(ctx, fresh))
		t.Cleanup(func() { _ = passwords.Delete(context.Background(), fresh) })

		_, err := passwords.GetByObj(ctx, domain.Password{UserID: u.ID, Hash: "old"})
		require.ErrorIs(t, err, repository.ErrPasswordNotFound)

		got, err := passwords.GetByObj(ctx, domain.Password{UserID: u.ID, Hash: "fresh"})
		require.NoError(t, err)
		require.Equal(t, "fresh", got.Hash)
	})

	t.Run("password delete is idempotent", func(t *testing.T) {
		users, passwords := newRepos(t)
		ctx := context.Background()

		u := newTestUser(t)
		mustCreateUser(t, users, u)

		p := domain.Password{UserID: u.ID, Hash: "h", CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}
		require.NoError(t, passwords.Create(ctx, p))
		require.NoError(t, passwords.Delete(ctx, p))
		require.NoError(t, passwords.Delete(ctx, p))
	})

	t.Run("deleting a user removes its password", func(t *testing.T) {
		users, passwords := newRepos(t)
		ctx := context.Background()

		u := newTestUser(t)
		mustCreateUser(t, users, u)

		p := domain.Password{UserID: u.ID, Hash: "h", CreatedAt: time.Now().UTC().Truncate(time.Microsecond)}
		require.NoError(t, passwords.Create(ctx, p))

		require.NoError(t, users.Delete(ctx, u))

		_, err := passwords.GetByObj(ctx, p)
		require.ErrorIs(t, err, repository.ErrPasswordNotFound)

		// The freed slot accepts a new credential once the user returns.
		mustCreateUser(t, users, u)
		require.NoError(t, passwords.Create(ctx, p))
		t.Cleanup(func() { _ = passwords.Delete(context.Background(), p) })
	})

	t.Run("lookup then delete scenario", func(t *testing.T) {
		users, _ := newRepos(t)
		ctx := context.Background()

		u := newTestUser(t)
		mustCreateUser(t, users, u)

		got, err := users.GetByUsername(ctx, u.Username)
		require.NoError(t, err)
		require.Equal(t, u, got)

		require.NoError(t, users.Delete(ctx, u))

		_, err = users.GetByID(ctx, u.ID)
		require.ErrorIs(t, err, repository.ErrUserNotFound)
	})
}
