package account

import "errors"

var (
	// ErrDuplicateIdentity occurs when the national id or phone number of a
	// registration is already bound to an existing account.
	ErrDuplicateIdentity = errors.New("national id or phone number already used")

	// ErrNotFound indicates no account matches the requested identifier.
	ErrNotFound = errors.New("account not found")

	// ErrInvalidCredentials indicates the presented password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// errNumberTaken signals a collision on a freshly generated account
	// number; Register retries with a new number.
	errNumberTaken = errors.New("account number already taken")
)
