// Package domain holds the in-memory value types callers work with.
//
// These types are independent of the persisted row shape: repositories
// map them to and from table rows and never mutate them. Reads return
// fresh snapshots; to change a stored user, build an updated value and
// hand it to the repository's Update.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// User is a registered account. Identity is ID, assigned by the caller
// at construction and never regenerated by the store. Username and
// Email are globally unique; uniqueness is enforced by the database at
// persistence time, not validated here.
type User struct {
	ID       uuid.UUID `db:"id"`
	Username string    `db:"username"`
	Email    string    `db:"email"`
}

// Password is a credential record for a single user. UserID is both the
// record's identity and a reference to the owning User, so a user holds
// at most one credential at a time.
type Password struct {
	UserID    uuid.UUID `db:"user_id"`
	Hash      string    `db:"hash"`
	CreatedAt time.Time `db:"created_at"`
}
