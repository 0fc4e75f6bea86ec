package repository

import "errors"

// Sentinel errors for the repository layer. Repositories translate
// exactly the low-level failure signatures for "no row found" and
// "constraint violated" into these; every other failure propagates
// wrapped but unclassified. Match with errors.Is.
var (
	// ErrUserNotFound indicates no user row matches the requested
	// identity, or a credential create referenced an absent user.
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateUserKey indicates a create or update violated a
	// uniqueness constraint on id, username, or email.
	ErrDuplicateUserKey = errors.New("duplicate user key")

	// ErrPasswordNotFound indicates no credential row matches the given
	// user/hash pair.
	ErrPasswordNotFound = errors.New("password not found")
)
