package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thoas/go-funk"

	"github.com/tinyapp/tinyapp/internal/db/memorystorage"
	"github.com/tinyapp/tinyapp/internal/idgen"
	"github.com/tinyapp/tinyapp/internal/models"
)

const shortURLBase = "http://localhost:8080"

func newService(t *testing.T) *Service {
	t.Helper()
	theStorage, err := memorystorage.New()
	require.NoError(t, err)

	return New(theStorage, shortURLBase)
}

func TestRegisterAndAuthenticate(t *testing.T) {
	t.Run("registered credentials authenticate to the created id", func(t *testing.T) {
		svc := newService(t)

		userID, err := svc.Register(context.Background(), "alice@example.com", "hunter22")
		require.NoError(t, err)
		assert.Len(t, userID, idgen.Length)

		authenticatedID, err := svc.Authenticate(context.Background(), "alice@example.com", "hunter22")
		require.NoError(t, err)
		assert.Equal(t, userID, authenticatedID)
	})

	t.Run("wrong password does not authenticate", func(t *testing.T) {
		svc := newService(t)

		_, err := svc.Register(context.Background(), "alice@example.com", "hunter22")
		require.NoError(t, err)

		_, err = svc.Authenticate(context.Background(), "alice@example.com", "hunter23")
		assert.ErrorIs(t, err, models.ErrAuthentication)
	})

	t.Run("unknown email does not authenticate", func(t *testing.T) {
		svc := newService(t)

		_, err := svc.Authenticate(context.Background(), "nobody@example.com", "whatever")
		assert.ErrorIs(t, err, models.ErrAuthentication)
	})

	t.Run("empty password is rejected and no user is created", func(t *testing.T) {
		svc := newService(t)

		_, err := svc.Register(context.Background(), "alice@example.com", "")
		assert.ErrorIs(t, err, models.ErrValidation)

		_, err = svc.Register(context.Background(), "", "hunter22")
		assert.ErrorIs(t, err, models.ErrValidation)

		// The failed registrations must not have left a record behind.
		userID, err := svc.Register(context.Background(), "alice@example.com", "hunter22")
		require.NoError(t, err)
		assert.NotEmpty(t, userID)
	})

	t.Run("second registration with the same email fails", func(t *testing.T) {
		svc := newService(t)

		first, err := svc.Register(context.Background(), "a@example.com", "pass-one")
		require.NoError(t, err)

		_, err = svc.Register(context.Background(), "a@example.com", "pass-two")
		assert.ErrorIs(t, err, models.ErrDuplicateEmail)

		// Exactly one record for that email, and it is the first one.
		authenticatedID, err := svc.Authenticate(context.Background(), "a@example.com", "pass-one")
		require.NoError(t, err)
		assert.Equal(t, first, authenticatedID)

		_, err = svc.Authenticate(context.Background(), "a@example.com", "pass-two")
		assert.ErrorIs(t, err, models.ErrAuthentication)
	})

	t.Run("stored password is a hash, not plaintext", func(t *testing.T) {
		svc := newService(t)

		userID, err := svc.Register(context.Background(), "alice@example.com", "hunter22")
		require.NoError(t, err)

		usr, err := svc.UserByID(context.Background(), userID)
		require.NoError(t, err)
		assert.NotEqual(t, "hunter22", usr.PasswordHash)
		assert.NotEmpty(t, usr.PasswordHash)
	})
}

func TestShortenAndResolve(t *testing.T) {
	t.Run("shorten then resolve returns the destination", func(t *testing.T) {
		svc := newService(t)

		shortCode, err := svc.Shorten(context.Background(), "http://example.com", "alice1")
		require.NoError(t, err)
		assert.Len(t, shortCode, idgen.Length)

		destination, err := svc.Resolve(context.Background(), shortCode)
		require.NoError(t, err)
		assert.Equal(t, "http://example.com", destination)
	})

	t.Run("empty destination is rejected", func(t *testing.T) {
		svc := newService(t)

		_, err := svc.Shorten(context.Background(), "", "alice1")
		assert.ErrorIs(t, err, models.ErrValidation)
	})

	t.Run("unknown code does not resolve", func(t *testing.T) {
		svc := newService(t)

		_, err := svc.Resolve(context.Background(), "zzzzzz")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("short URL is rendered under the public base", func(t *testing.T) {
		svc := newService(t)

		assert.Equal(t, shortURLBase+"/u/b2xVn2", svc.ShortURL("b2xVn2"))
	})
}

func TestOwnership(t *testing.T) {
	t.Run("created code belongs to its creator only", func(t *testing.T) {
		svc := newService(t)

		shortCode, err := svc.Shorten(context.Background(), "http://example.com", "alice1")
		require.NoError(t, err)

		owned, err := svc.BelongsToUser(context.Background(), shortCode, "alice1")
		require.NoError(t, err)
		assert.True(t, owned)

		owned, err = svc.BelongsToUser(context.Background(), shortCode, "bob222")
		require.NoError(t, err)
		assert.False(t, owned)

		owned, err = svc.BelongsToUser(context.Background(), "zzzzzz", "alice1")
		require.NoError(t, err)
		assert.False(t, owned)
	})

	t.Run("missing and foreign codes stay distinguishable", func(t *testing.T) {
		svc := newService(t)

		shortCode, err := svc.Shorten(context.Background(), "http://example.com", "alice1")
		require.NoError(t, err)

		_, err = svc.URLForOwner(context.Background(), "zzzzzz", "alice1")
		assert.ErrorIs(t, err, models.ErrNotFound)

		_, err = svc.URLForOwner(context.Background(), shortCode, "bob222")
		assert.ErrorIs(t, err, models.ErrNotAuthorized)
	})

	t.Run("update by a non-owner leaves the record untouched", func(t *testing.T) {
		svc := newService(t)

		shortCode, err := svc.Shorten(context.Background(), "http://example.com", "alice1")
		require.NoError(t, err)

		err = svc.UpdateDestination(context.Background(), shortCode, "bob222", "http://evil.example.com")
		assert.ErrorIs(t, err, models.ErrNotAuthorized)

		destination, err := svc.Resolve(context.Background(), shortCode)
		require.NoError(t, err)
		assert.Equal(t, "http://example.com", destination)
	})

	t.Run("owner can update the destination", func(t *testing.T) {
		svc := newService(t)

		shortCode, err := svc.Shorten(context.Background(), "http://example.com", "alice1")
		require.NoError(t, err)

		err = svc.UpdateDestination(context.Background(), shortCode, "alice1", "http://example.org")
		require.NoError(t, err)

		destination, err := svc.Resolve(context.Background(), shortCode)
		require.NoError(t, err)
		assert.Equal(t, "http://example.org", destination)
	})

	t.Run("delete by a non-owner fails, by the owner removes the code", func(t *testing.T) {
		svc := newService(t)

		shortCode, err := svc.Shorten(context.Background(), "http://example.com", "alice1")
		require.NoError(t, err)

		err = svc.Delete(context.Background(), shortCode, "bob222")
		assert.ErrorIs(t, err, models.ErrNotAuthorized)

		err = svc.Delete(context.Background(), shortCode, "alice1")
		require.NoError(t, err)

		_, err = svc.Resolve(context.Background(), shortCode)
		assert.ErrorIs(t, err, models.ErrNotFound)

		err = svc.Delete(context.Background(), shortCode, "alice1")
		assert.ErrorIs(t, err, models.ErrNotFound)
	})

	t.Run("URLsForUser returns exactly the caller's codes", func(t *testing.T) {
		svc := newService(t)

		aliceFirst, err := svc.Shorten(context.Background(), "http://example.com/1", "alice1")
		require.NoError(t, err)
		aliceSecond, err := svc.Shorten(context.Background(), "http://example.com/2", "alice1")
		require.NoError(t, err)
		_, err = svc.Shorten(context.Background(), "http://example.com/3", "bob222")
		require.NoError(t, err)

		urls, err := svc.URLsForUser(context.Background(), "alice1")
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{aliceFirst, aliceSecond}, funk.Keys(urls))
	})
}

func TestScenario(t *testing.T) {
	// Register, shorten, resolve, then verify ownership against a
	// second user.
	svc := newService(t)

	aliceID, err := svc.Register(context.Background(), "alice@example.com", "hunter22")
	require.NoError(t, err)

	shortCode, err := svc.Shorten(context.Background(), "http://example.com", aliceID)
	require.NoError(t, err)
	assert.Len(t, shortCode, 6)

	destination, err := svc.Resolve(context.Background(), shortCode)
	require.NoError(t, err)
	assert.Equal(t, "http://example.com", destination)

	owned, err := svc.BelongsToUser(context.Background(), shortCode, aliceID)
	require.NoError(t, err)
	assert.True(t, owned)

	bobID, err := svc.Register(context.Background(), "bob@example.com", "swordfish")
	require.NoError(t, err)

	owned, err = svc.BelongsToUser(context.Background(), shortCode, bobID)
	require.NoError(t, err)
	assert.False(t, owned)
}
