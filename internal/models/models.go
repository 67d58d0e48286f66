// Package models defines the core records shared between the storage,
// service, and router layers, together with the error kinds the service
// surfaces to its callers.
package models

import "errors"

// URLRecord is a single shortened URL entry.
// OwnerID is set once at creation time and never reassigned;
// Destination may be changed by the owner.
type URLRecord struct {
	ShortCode   string
	OwnerID     string
	Destination string
}

// UserUrls maps short codes to the records owned by a single user.
type UserUrls map[string]URLRecord

// ErrValidation is returned when a required field (email, password,
// destination URL) is empty.
var ErrValidation = errors.New("a required field is empty")

// ErrDuplicateEmail is returned when a registration reuses an email
// that is already on file.
var ErrDuplicateEmail = errors.New("email is already registered")

// ErrAuthentication is returned when login credentials do not match
// any stored user.
var ErrAuthentication = errors.New("invalid email or password")

// ErrNotAuthenticated is returned when an operation requiring a session
// is attempted without one.
var ErrNotAuthenticated = errors.New("authentication required")

// ErrNotAuthorized is returned when an authenticated user touches a
// short code owned by someone else.
var ErrNotAuthorized = errors.New("short URL belongs to another user")

// ErrNotFound is returned when a referenced short code does not exist.
var ErrNotFound = errors.New("short URL not found")

// ErrShortCodeTaken is returned by the storage layer when an insert
// hits an already occupied short code. Callers are expected to retry
// with a freshly generated code.
var ErrShortCodeTaken = errors.New("short code already in use")
