// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

package auth

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontaktapp/kontakt/internal/notify"
	"github.com/kontaktapp/kontakt/internal/platform/apperr"
	"github.com/kontaktapp/kontakt/internal/platform/sec"
	"github.com/kontaktapp/kontakt/pkg/uuid"
)

// # Test Doubles

// fakeUserRepository is an in-memory UserRepository for service tests.
type fakeUserRepository struct {
	users map[string]*User // keyed by ID
}

func newFakeUserRepository() *fakeUserRepository {
	return &fakeUserRepository{users: make(map[string]*User)}
}

func (repo *fakeUserRepository) FindByID(_ context.Context, id string) (*User, error) {
	if user, ok := repo.users[id]; ok {
		copied := *user
		return &copied, nil
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, user := range repo.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepository) FindByUsername(_ context.Context, username string) (*User, error) {
	for _, user := range repo.users {
		if user.Username == username {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperr.NotFound("User")
}

func (repo *fakeUserRepository) Create(_ context.Context, user *User) error {
	for _, existing := range repo.users {
		if existing.Email == user.Email || existing.Username == user.Username {
			return apperr.Conflict("Account already exists")
		}
	}
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	copied := *user
	repo.users[user.ID] = &copied
	return nil
}

func (repo *fakeUserRepository) UpdateRefreshToken(_ context.Context, userID, token string) error {
	if user, ok := repo.users[userID]; ok {
		user.RefreshToken = &token
	}
	return nil
}

func (repo *fakeUserRepository) ClearRefreshToken(_ context.Context, userID string) error {
	if user, ok := repo.users[userID]; ok {
		user.RefreshToken = nil
	}
	return nil
}

func (repo *fakeUserRepository) MarkConfirmed(_ context.Context, userID string) error {
	if user, ok := repo.users[userID]; ok {
		user.Confirmed = true
	}
	return nil
}

func (repo *fakeUserRepository) UpdateAvatar(_ context.Context, userID, avatarURL string) error {
	if user, ok := repo.users[userID]; ok {
		user.AvatarURL = &avatarURL
	}
	return nil
}

// recorderScheduler captures every scheduled confirmation mail.
type recorderScheduler struct {
	mails []notify.ConfirmationMail
}

func (scheduler *recorderScheduler) ScheduleConfirmation(_ context.Context, mail notify.ConfirmationMail) error {
	scheduler.mails = append(scheduler.mails, mail)
	return nil
}

// fakeAvatarStore records uploads and hands back a deterministic URL.
type fakeAvatarStore struct {
	lastKey string
}

func (store *fakeAvatarStore) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	_, _ = io.Copy(io.Discard, body)
	store.lastKey = key
	return "https://cdn.kontakt.test/" + key, nil
}

// # Harness

type serviceHarness struct {
	service *Service
	repo    *fakeUserRepository
	mailer  *recorderScheduler
	avatars *fakeAvatarStore
}

func newServiceHarness(t *testing.T) *serviceHarness {
	t.Helper()

	repo := newFakeUserRepository()
	mailer := &recorderScheduler{}
	avatars := &fakeAvatarStore{}
	tokens := sec.NewTokenService("unit-test-secret", "kontakt.test", 15*time.Minute, 7*24*time.Hour, 7*24*time.Hour)
	hasher := sec.NewHasher(4) // minimum cost keeps the suite fast

	return &serviceHarness{
		service: NewService(repo, tokens, hasher, mailer, avatars, "http://localhost:8080", testLogger()),
		repo:    repo,
		mailer:  mailer,
		avatars: avatars,
	}
}

// signup enrolls a user and optionally confirms the email.
func (harness *serviceHarness) signup(t *testing.T, email string, confirmed bool) *User {
	t.Helper()

	user, err := harness.service.Signup(context.Background(), SignupInput{
		// UUIDv7 strings share a timestamp prefix, so slice the random tail.
		Username: "member" + uuid.New()[28:],
		Email:    email,
		Password: "pass-123",
	})
	require.NoError(t, err)

	if confirmed {
		require.NoError(t, harness.repo.MarkConfirmed(context.Background(), user.ID))
	}
	return user
}

// # Registration

func TestService_Signup(t *testing.T) {
	harness := newServiceHarness(t)

	user, err := harness.service.Signup(context.Background(), SignupInput{
		Username: "member01",
		Email:    "member@kontakt.app",
		Password: "pass-123",
	})
	require.NoError(t, err)

	// The stored hash must never equal the plaintext and must verify.
	assert.NotEqual(t, "pass-123", user.PasswordHash)
	assert.True(t, sec.NewHasher(4).Verify("pass-123", user.PasswordHash))

	// New accounts start unconfirmed with no active session.
	assert.False(t, user.Confirmed)
	assert.Nil(t, user.RefreshToken)

	// Exactly one confirmation mail was queued, carrying a clickable link.
	require.Len(t, harness.mailer.mails, 1)
	mail := harness.mailer.mails[0]
	assert.Equal(t, "member@kontakt.app", mail.Email)
	assert.Contains(t, mail.ConfirmURL, "http://localhost:8080/api/auth/confirm/")
}

func TestService_Signup_Duplicates(t *testing.T) {
	harness := newServiceHarness(t)
	harness.signup(t, "member@kontakt.app", false)

	first := harness.repo.users
	var existing *User
	for _, u := range first {
		existing = u
	}

	t.Run("duplicate_email", func(t *testing.T) {
		_, err := harness.service.Signup(context.Background(), SignupInput{
			Username: "othername",
			Email:    existing.Email,
			Password: "pass-123",
		})
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "CONFLICT", appError.Code)
	})

	t.Run("duplicate_username", func(t *testing.T) {
		_, err := harness.service.Signup(context.Background(), SignupInput{
			Username: existing.Username,
			Email:    "other@kontakt.app",
			Password: "pass-123",
		})
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "CONFLICT", appError.Code)
	})
}

// # Login

func TestService_Login(t *testing.T) {
	harness := newServiceHarness(t)
	confirmed := harness.signup(t, "member@kontakt.app", true)
	harness.signup(t, "pending@kontakt.app", false)

	t.Run("unknown_email", func(t *testing.T) {
		_, err := harness.service.Login(context.Background(), LoginInput{
			Email:    "ghost@kontakt.app",
			Password: "pass-123",
		})
		assert.EqualError(t, err, MsgInvalidEmail)
	})

	t.Run("unconfirmed_email", func(t *testing.T) {
		_, err := harness.service.Login(context.Background(), LoginInput{
			Email:    "pending@kontakt.app",
			Password: "pass-123",
		})
		assert.EqualError(t, err, MsgEmailNotConfirmed)
	})

	t.Run("wrong_password", func(t *testing.T) {
		_, err := harness.service.Login(context.Background(), LoginInput{
			Email:    "member@kontakt.app",
			Password: "wrong-pass",
		})
		assert.EqualError(t, err, MsgInvalidPassword)
	})

	t.Run("success", func(t *testing.T) {
		pair, err := harness.service.Login(context.Background(), LoginInput{
			Email:    "member@kontakt.app",
			Password: "pass-123",
		})
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, MsgBearerTokenType, pair.TokenType)

		// The issued refresh token is now the single stored one.
		stored := harness.repo.users[confirmed.ID].RefreshToken
		require.NotNil(t, stored)
		assert.Equal(t, pair.RefreshToken, *stored)
	})
}

// # Refresh Rotation

func TestService_Refresh_Rotation(t *testing.T) {
	t.Run("new_token_accepted_after_rotation", func(t *testing.T) {
		harness := newServiceHarness(t)
		harness.signup(t, "member@kontakt.app", true)

		first, err := harness.service.Login(context.Background(), LoginInput{
			Email: "member@kontakt.app", Password: "pass-123",
		})
		require.NoError(t, err)

		second, err := harness.service.Refresh(context.Background(), first.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, first.RefreshToken, second.RefreshToken)

		third, err := harness.service.Refresh(context.Background(), second.RefreshToken)
		require.NoError(t, err)
		assert.NotEqual(t, second.RefreshToken, third.RefreshToken)
	})

	t.Run("old_token_kills_the_session", func(t *testing.T) {
		harness := newServiceHarness(t)
		user := harness.signup(t, "member@kontakt.app", true)

		first, err := harness.service.Login(context.Background(), LoginInput{
			Email: "member@kontakt.app", Password: "pass-123",
		})
		require.NoError(t, err)

		second, err := harness.service.Refresh(context.Background(), first.RefreshToken)
		require.NoError(t, err)

		// Presenting the superseded token is treated as reuse: rejected, and
		// the stored token is cleared.
		_, err = harness.service.Refresh(context.Background(), first.RefreshToken)
		assert.EqualError(t, err, MsgInvalidRefresh)
		assert.Nil(t, harness.repo.users[user.ID].RefreshToken)

		// The whole chain is dead, so even the latest token fails now.
		_, err = harness.service.Refresh(context.Background(), second.RefreshToken)
		assert.EqualError(t, err, MsgInvalidRefresh)
	})

	t.Run("garbage_token", func(t *testing.T) {
		harness := newServiceHarness(t)
		_, err := harness.service.Refresh(context.Background(), "not-a-jwt")
		assert.EqualError(t, err, MsgInvalidRefresh)
	})
}

// # Email Confirmation

func TestService_ConfirmEmail(t *testing.T) {
	harness := newServiceHarness(t)
	user := harness.signup(t, "member@kontakt.app", false)

	// Lift the token straight out of the queued confirmation link.
	require.Len(t, harness.mailer.mails, 1)
	link := harness.mailer.mails[0].ConfirmURL
	token := link[strings.LastIndex(link, "/")+1:]

	t.Run("invalid_token", func(t *testing.T) {
		_, err := harness.service.ConfirmEmail(context.Background(), "not-a-jwt")
		assert.EqualError(t, err, MsgVerificationError)
	})

	t.Run("confirms_once", func(t *testing.T) {
		message, err := harness.service.ConfirmEmail(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, MsgEmailConfirmed, message)
		assert.True(t, harness.repo.users[user.ID].Confirmed)
	})

	t.Run("idempotent", func(t *testing.T) {
		message, err := harness.service.ConfirmEmail(context.Background(), token)
		require.NoError(t, err)
		assert.Equal(t, MsgAlreadyConfirmed, message)
	})
}

func TestService_RequestConfirmation(t *testing.T) {
	harness := newServiceHarness(t)
	harness.signup(t, "pending@kontakt.app", false)
	harness.signup(t, "done@kontakt.app", true)
	mailsAfterSignup := len(harness.mailer.mails)

	t.Run("unknown_address_is_generic", func(t *testing.T) {
		message, err := harness.service.RequestConfirmation(context.Background(), "ghost@kontakt.app")
		require.NoError(t, err)
		assert.Equal(t, MsgCheckEmail, message)
		assert.Len(t, harness.mailer.mails, mailsAfterSignup)
	})

	t.Run("already_confirmed", func(t *testing.T) {
		message, err := harness.service.RequestConfirmation(context.Background(), "done@kontakt.app")
		require.NoError(t, err)
		assert.Equal(t, MsgAlreadyConfirmed, message)
		assert.Len(t, harness.mailer.mails, mailsAfterSignup)
	})

	t.Run("pending_gets_a_new_mail", func(t *testing.T) {
		message, err := harness.service.RequestConfirmation(context.Background(), "pending@kontakt.app")
		require.NoError(t, err)
		assert.Equal(t, MsgCheckEmail, message)
		assert.Len(t, harness.mailer.mails, mailsAfterSignup+1)
	})
}

// # Identity Resolution

func TestService_ResolveIdentity(t *testing.T) {
	harness := newServiceHarness(t)
	user := harness.signup(t, "member@kontakt.app", true)
	harness.signup(t, "pending@kontakt.app", false)

	pair, err := harness.service.Login(context.Background(), LoginInput{
		Email: "member@kontakt.app", Password: "pass-123",
	})
	require.NoError(t, err)

	t.Run("valid_access_token", func(t *testing.T) {
		identity, err := harness.service.ResolveIdentity(context.Background(), pair.AccessToken)
		require.NoError(t, err)
		assert.Equal(t, user.ID, identity.UserID)
		assert.Equal(t, "member@kontakt.app", identity.Email)
		assert.True(t, identity.Confirmed)
	})

	t.Run("refresh_token_rejected", func(t *testing.T) {
		_, err := harness.service.ResolveIdentity(context.Background(), pair.RefreshToken)
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})

	t.Run("unconfirmed_account_rejected", func(t *testing.T) {
		tokens := sec.NewTokenService("unit-test-secret", "kontakt.test", 15*time.Minute, time.Hour, time.Hour)
		accessToken, err := tokens.CreateAccessToken("pending@kontakt.app")
		require.NoError(t, err)

		_, err = harness.service.ResolveIdentity(context.Background(), accessToken)
		assert.EqualError(t, err, MsgEmailNotConfirmed)
	})

	t.Run("vanished_subject_rejected", func(t *testing.T) {
		tokens := sec.NewTokenService("unit-test-secret", "kontakt.test", 15*time.Minute, time.Hour, time.Hour)
		accessToken, err := tokens.CreateAccessToken("ghost@kontakt.app")
		require.NoError(t, err)

		_, err = harness.service.ResolveIdentity(context.Background(), accessToken)
		appError := apperr.As(err)
		require.NotNil(t, appError)
		assert.Equal(t, "UNAUTHORIZED", appError.Code)
	})
}

// # Profile Media

func TestService_UpdateAvatar(t *testing.T) {
	harness := newServiceHarness(t)
	user := harness.signup(t, "member@kontakt.app", true)

	updated, err := harness.service.UpdateAvatar(
		context.Background(),
		user.ID,
		"image/png",
		strings.NewReader("png-bytes"),
	)
	require.NoError(t, err)

	require.NotNil(t, updated.AvatarURL)
	assert.Equal(t, "https://cdn.kontakt.test/avatars/"+user.Username, *updated.AvatarURL)
	assert.Equal(t, "avatars/"+user.Username, harness.avatars.lastKey)

	stored := harness.repo.users[user.ID].AvatarURL
	require.NotNil(t, stored)
	assert.Equal(t, *updated.AvatarURL, *stored)
}
