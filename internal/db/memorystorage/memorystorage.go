// Package memorystorage provides the in-memory storage backend.
// All state is process-wide and lost on restart; a mutex serializes
// mutations so concurrent request handlers cannot corrupt the maps or
// lose updates.
package memorystorage

import (
	"context"
	"sync"

	"github.com/tinyapp/tinyapp/internal/idgen"
	"github.com/tinyapp/tinyapp/internal/models"
	"github.com/tinyapp/tinyapp/internal/user"
)

const triesToGenerateFreeID = 10

// MemoryStorage keeps users and shortened URLs in mutex-guarded maps.
// Construct one per process (or per test) with New and inject it into
// the consumers; there are no package-level globals.
type MemoryStorage struct {
	mu           sync.RWMutex
	users        map[string]*user.User // user ID -> record
	usersByEmail map[string]string     // email -> user ID
	urls         map[string]models.URLRecord
}

// New returns an empty MemoryStorage.
func New() (*MemoryStorage, error) {
	return &MemoryStorage{
		users:        map[string]*user.User{},
		usersByEmail: map[string]string{},
		urls:         map[string]models.URLRecord{},
	}, nil
}

// CreateUser inserts usr under a freshly generated user ID and returns
// that ID. The duplicate-email check and the insert happen under one
// lock, so two near-simultaneous registrations with the same email
// cannot both succeed. The caller is expected to have hashed the
// password already; hashing must not run under the store lock.
func (theStorage *MemoryStorage) CreateUser(ctx context.Context, usr *user.User) (string, error) {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	if _, exists := theStorage.usersByEmail[usr.Email]; exists {
		return "", models.ErrDuplicateEmail
	}

	userID := idgen.New()
	for i := 0; i < triesToGenerateFreeID; i++ {
		if _, taken := theStorage.users[userID]; !taken {
			break
		}
		userID = idgen.New()
	}

	inserted := *usr
	inserted.ID = userID
	theStorage.users[userID] = &inserted
	theStorage.usersByEmail[usr.Email] = userID

	return userID, nil
}

// GetUserByID returns the user stored under userID.
func (theStorage *MemoryStorage) GetUserByID(ctx context.Context, userID string) (*user.User, bool, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	usr, found := theStorage.users[userID]
	if !found {
		return nil, false, nil
	}
	copied := *usr

	return &copied, true, nil
}

// FindUserByEmail returns the user registered under email, matching
// case-sensitively.
func (theStorage *MemoryStorage) FindUserByEmail(ctx context.Context, email string) (*user.User, bool, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	userID, found := theStorage.usersByEmail[email]
	if !found {
		return nil, false, nil
	}
	copied := *theStorage.users[userID]

	return &copied, true, nil
}

// SaveURL inserts record under record.ShortCode. It returns
// models.ErrShortCodeTaken instead of overwriting an occupied code, so
// the caller's generate-and-retry loop stays free of lost updates.
func (theStorage *MemoryStorage) SaveURL(ctx context.Context, record models.URLRecord) error {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	if _, taken := theStorage.urls[record.ShortCode]; taken {
		return models.ErrShortCodeTaken
	}
	theStorage.urls[record.ShortCode] = record

	return nil
}

// GetURL returns the record stored under shortCode.
func (theStorage *MemoryStorage) GetURL(ctx context.Context, shortCode string) (models.URLRecord, bool, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	record, found := theStorage.urls[shortCode]

	return record, found, nil
}

// UpdateURLDestination replaces the destination of an existing record.
// Ownership must have been verified by the caller beforehand.
func (theStorage *MemoryStorage) UpdateURLDestination(ctx context.Context, shortCode, destination string) error {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	record, found := theStorage.urls[shortCode]
	if !found {
		return models.ErrNotFound
	}
	record.Destination = destination
	theStorage.urls[shortCode] = record

	return nil
}

// DeleteURL removes the record stored under shortCode. Ownership must
// have been verified by the caller beforehand.
func (theStorage *MemoryStorage) DeleteURL(ctx context.Context, shortCode string) error {
	theStorage.mu.Lock()
	defer theStorage.mu.Unlock()

	if _, found := theStorage.urls[shortCode]; !found {
		return models.ErrNotFound
	}
	delete(theStorage.urls, shortCode)

	return nil
}

// GetUserURLs returns every record owned by userID, keyed by short code.
func (theStorage *MemoryStorage) GetUserURLs(ctx context.Context, userID string) (models.UserUrls, error) {
	theStorage.mu.RLock()
	defer theStorage.mu.RUnlock()

	result := models.UserUrls{}
	for shortCode, record := range theStorage.urls {
		if record.OwnerID == userID {
			result[shortCode] = record
		}
	}

	return result, nil
}

// Ping reports storage availability. The in-memory backend is always
// available.
func (theStorage *MemoryStorage) Ping(ctx context.Context) error {
	return nil
}

// Close releases storage resources. Nothing is persisted.
func (theStorage *MemoryStorage) Close() error {
	return nil
}
