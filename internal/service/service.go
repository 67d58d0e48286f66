// Package service implements the business rules of the shortener:
// registration and credential checks, short code creation with
// collision retry, and the ownership contract around updates, deletes
// and listings.
package service

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"github.com/tinyapp/tinyapp/internal/idgen"
	"github.com/tinyapp/tinyapp/internal/models"
	"github.com/tinyapp/tinyapp/internal/user"
)

type userKeeper interface {
	CreateUser(ctx context.Context, usr *user.User) (string, error)
	GetUserByID(ctx context.Context, userID string) (*user.User, bool, error)
	FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error)
}

type urlsKeeper interface {
	SaveURL(ctx context.Context, record models.URLRecord) error
	GetURL(ctx context.Context, shortCode string) (models.URLRecord, bool, error)
	UpdateURLDestination(ctx context.Context, shortCode, destination string) error
	DeleteURL(ctx context.Context, shortCode string) error
	GetUserURLs(ctx context.Context, userID string) (models.UserUrls, error)
}

type storage interface {
	userKeeper
	urlsKeeper
}

// PasswordHashCost is the bcrypt cost factor applied to every stored
// password.
const PasswordHashCost = 10

const triesToGenerateFreeCode = 10

// ErrCodeSpaceExhausted is returned when the collision-retry loop fails
// to find a free short code.
var ErrCodeSpaceExhausted = errors.New("could not generate a free short code")

// Service exposes the core operations over an injected storage backend.
type Service struct {
	db           storage
	shortURLBase string
}

// New creates a Service. shortURLBase is the public base address that
// short links are rendered under, e.g. "http://localhost:8080".
func New(db storage, shortURLBase string) *Service {
	return &Service{
		db:           db,
		shortURLBase: shortURLBase,
	}
}

// Register creates a new user with a bcrypt-hashed password and returns
// the generated user ID. It returns models.ErrValidation when email or
// password is empty and models.ErrDuplicateEmail when the email is
// already on file. The hash is computed before the storage insert so
// the CPU-bound work never runs under the store lock.
func (s *Service) Register(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", models.ErrValidation
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return "", err
	}

	return s.db.CreateUser(ctx, &user.User{
		Email:        email,
		PasswordHash: string(passwordHash),
	})
}

// Authenticate checks the credentials against the stored users and
// returns the matching user ID. The hash comparison goes through
// bcrypt.CompareHashAndPassword, never plain string equality.
func (s *Service) Authenticate(ctx context.Context, email, password string) (string, error) {
	if email == "" || password == "" {
		return "", models.ErrValidation
	}

	usr, found, err := s.db.FindUserByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	if !found {
		return "", models.ErrAuthentication
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usr.PasswordHash), []byte(password)); err != nil {
		return "", models.ErrAuthentication
	}

	return usr.ID, nil
}

// UserByID returns the user stored under userID, or models.ErrNotFound.
func (s *Service) UserByID(ctx context.Context, userID string) (*user.User, error) {
	usr, found, err := s.db.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, models.ErrNotFound
	}

	return usr, nil
}

// Shorten creates a short code pointing at destination, owned by
// ownerID, and returns the code. Generation retries on collision until
// a free code is found or the attempt budget runs out.
func (s *Service) Shorten(ctx context.Context, destination, ownerID string) (string, error) {
	if destination == "" {
		return "", models.ErrValidation
	}

	for i := 0; i < triesToGenerateFreeCode; i++ {
		shortCode := idgen.New()
		err := s.db.SaveURL(ctx, models.URLRecord{
			ShortCode:   shortCode,
			OwnerID:     ownerID,
			Destination: destination,
		})
		if errors.Is(err, models.ErrShortCodeTaken) {
			continue
		}
		if err != nil {
			return "", err
		}

		return shortCode, nil
	}

	return "", ErrCodeSpaceExhausted
}

// Resolve returns the destination stored under shortCode. It performs
// no ownership check: anyone holding a valid code may redirect through
// it.
func (s *Service) Resolve(ctx context.Context, shortCode string) (string, error) {
	record, found, err := s.db.GetURL(ctx, shortCode)
	if err != nil {
		return "", err
	}
	if !found {
		return "", models.ErrNotFound
	}

	return record.Destination, nil
}

// URLsForUser returns every record owned by userID, keyed by short code.
func (s *Service) URLsForUser(ctx context.Context, userID string) (models.UserUrls, error) {
	return s.db.GetUserURLs(ctx, userID)
}

// BelongsToUser reports whether shortCode exists and is owned by
// userID. It is false both for a missing code and for a code owned by
// someone else.
func (s *Service) BelongsToUser(ctx context.Context, shortCode, userID string) (bool, error) {
	record, found, err := s.db.GetURL(ctx, shortCode)
	if err != nil {
		return false, err
	}

	return found && userID != "" && record.OwnerID == userID, nil
}

// URLForOwner returns the record stored under shortCode after checking
// that userID owns it. A missing code yields models.ErrNotFound and a
// foreign one models.ErrNotAuthorized; the two stay distinct so callers
// can decide how to surface them.
func (s *Service) URLForOwner(ctx context.Context, shortCode, userID string) (models.URLRecord, error) {
	record, found, err := s.db.GetURL(ctx, shortCode)
	if err != nil {
		return models.URLRecord{}, err
	}
	if !found {
		return models.URLRecord{}, models.ErrNotFound
	}
	if record.OwnerID != userID {
		return models.URLRecord{}, models.ErrNotAuthorized
	}

	return record, nil
}

// UpdateDestination changes the destination of an owned short code.
// The ownership check happens before any mutation, so a failed check
// leaves the record untouched.
func (s *Service) UpdateDestination(ctx context.Context, shortCode, userID, newDestination string) error {
	if newDestination == "" {
		return models.ErrValidation
	}

	if _, err := s.URLForOwner(ctx, shortCode, userID); err != nil {
		return err
	}

	return s.db.UpdateURLDestination(ctx, shortCode, newDestination)
}

// Delete removes an owned short code. Like UpdateDestination, a failed
// ownership check leaves the store unchanged.
func (s *Service) Delete(ctx context.Context, shortCode, userID string) error {
	if _, err := s.URLForOwner(ctx, shortCode, userID); err != nil {
		return err
	}

	return s.db.DeleteURL(ctx, shortCode)
}

// ShortURL renders the public address of a short code.
func (s *Service) ShortURL(shortCode string) string {
	return s.shortURLBase + "/u/" + shortCode
}
