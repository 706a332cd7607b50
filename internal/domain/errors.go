package domain

import "errors"

var (
	ErrEmptyIdentity    = errors.New("identity is empty")
	ErrEmptyText        = errors.New("message text is empty")
	ErrTextTooLong      = errors.New("message text too long")
	ErrIdentityMismatch = errors.New("identity does not match authenticated user")
	ErrUserNotFound     = errors.New("user not found")
	ErrUserExists       = errors.New("username already taken")
	ErrBadCredentials   = errors.New("invalid username or password")
)
