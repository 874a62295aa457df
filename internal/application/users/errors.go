package users

import "errors"

var (
	ErrCredentialsRequired = errors.New("Username and password are required")
	ErrInvalidUsername     = errors.New("Username must be 3-32 letters, digits, dots, dashes or underscores")
	ErrInvalidPassword     = errors.New("Password must be between 1 and 72 bytes")
	ErrUsernameTaken       = errors.New("Username already exists")
	ErrInvalidCredentials  = errors.New("Invalid username or password")
	ErrUserNotFound        = errors.New("User not found")
	ErrInvalidToken        = errors.New("Invalid or expired token")
)
