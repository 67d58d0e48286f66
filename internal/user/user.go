// Package user defines the user model used for authentication and
// short URL ownership.
package user

// User represents a registered account.
// ID is immutable after creation and shares the identifier format of
// short codes. PasswordHash holds a bcrypt digest; a plaintext password
// is never stored.
type User struct {
	ID           string
	Email        string
	PasswordHash string
}
