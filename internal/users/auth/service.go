// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

/*
Package auth implements the identity and access management core of Kontakt.

It handles user registration, secure password hashing, the login/refresh token
lifecycle, and the email confirmation gate that protects every data endpoint.

Architecture:

  - Service: Orchestrates business logic (Signup, Login, Refresh, ConfirmEmail).
  - Repository: Abstracted interface for Postgres (user accounts).
  - Security: Bcrypt password hashes and HS256 scope-tagged JWTs.

The package ensures that identity data remains consistent and secure throughout
the platform's lifecycle.
*/
package auth

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/kontaktapp/kontakt/internal/notify"
	"github.com/kontaktapp/kontakt/internal/platform/apperr"
	"github.com/kontaktapp/kontakt/internal/platform/sec"
	"github.com/kontaktapp/kontakt/internal/storage"
	"github.com/kontaktapp/kontakt/pkg/uuid"
)

// # Definitions & Constructors

// Service implements user authentication use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, token, or
// login logic must be reviewed by the security team.
type Service struct {
	userRepository UserRepository
	tokens         *sec.TokenService
	hasher         *sec.Hasher
	mailer         notify.Scheduler
	avatars        storage.AvatarStore
	baseURL        string
	logger         *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
//
// The avatar store may be nil when object storage is not configured; avatar
// uploads then fail with an internal error while every other flow works.
func NewService(
	userRepo UserRepository,
	tokens *sec.TokenService,
	hasher *sec.Hasher,
	mailer notify.Scheduler,
	avatars storage.AvatarStore,
	baseURL string,
	logger *slog.Logger,
) *Service {
	return &Service{
		userRepository: userRepo,
		tokens:         tokens,
		hasher:         hasher,
		mailer:         mailer,
		avatars:        avatars,
		baseURL:        baseURL,
		logger:         logger,
	}
}

// TokenPair is the transport-ready result of a successful login or refresh.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// # Registration Flow

// SignupInput holds the data required to enroll a new member.
type SignupInput struct {
	Username string
	Email    string
	Password string
}

/*
Signup validates, hashes, and persists a brand new user account.

Description: Enrolls a new member in the unconfirmed state, hashes the
password, and queues the confirmation email as a best-effort side effect.

Parameters:
  - context: context.Context
  - input: SignupInput

Returns:
  - *User: Created entity
  - error: Conflict (if identity exists) or storage errors
*/
func (service *Service) Signup(context context.Context, input SignupInput) (*User, error) {

	// Verify email uniqueness. Return a client-safe Conflict.
	_, err := service.userRepository.FindByEmail(context, input.Email)
	if err == nil {
		return nil, apperr.Conflict("Email is already registered")
	}

	// Verify username uniqueness. Return a client-safe Conflict.
	_, err = service.userRepository.FindByUsername(context, input.Username)
	if err == nil {
		return nil, apperr.Conflict("Username is already taken")
	}

	// Prevent storing plain-text passwords.
	hashedPassword, err := service.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("auth_service_hash_failed: %w", err)
	}

	// Construct the new User entity. Time-sortable ID to prevent PG index fragmentation.
	user := &User{
		ID:           uuid.New(),
		Username:     input.Username,
		Email:        input.Email,
		PasswordHash: hashedPassword,
		Confirmed:    false,
	}

	// Persist the user. A concurrent duplicate that slipped past the up-front
	// checks still surfaces here as a Conflict via the unique constraints.
	if err := service.userRepository.Create(context, user); err != nil {
		if apperr.IsAppError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("auth_service_signup_failed: %w", err)
	}

	// Queue the confirmation email. Delivery failures never fail the signup.
	service.scheduleConfirmation(context, user)

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	Email    string
	Password string
}

/*
Login validates user credentials and issues a fresh token pair.

Description: Verifies identity, enforces the email confirmation gate, performs
constant-time password comparison, and rotates the stored refresh token.

The three failure reasons stay client-distinguishable (invalid email, email
not confirmed, invalid password). Clients key their flows on these messages.

Parameters:
  - context: context.Context
  - input: LoginInput

Returns:
  - *TokenPair: Transport-ready session credentials
  - error: Unauthorized or internal failures
*/
func (service *Service) Login(context context.Context, input LoginInput) (*TokenPair, error) {
	user, err := service.userRepository.FindByEmail(context, input.Email)
	if err != nil {
		return nil, apperr.Unauthorized(MsgInvalidEmail)
	}

	// Unconfirmed accounts cannot log in at all.
	if !user.Confirmed {
		return nil, apperr.Unauthorized(MsgEmailNotConfirmed)
	}

	// Constant-time comparison inside bcrypt prevents timing attacks.
	if !service.hasher.Verify(input.Password, user.PasswordHash) {
		return nil, apperr.Unauthorized(MsgInvalidPassword)
	}

	return service.issueTokenPair(context, user)
}

// # Session Management

/*
Refresh implements the refresh-token rotation mechanism.

Description: Decodes the presented refresh token and compares it with the
stored one. A mismatch on a structurally valid token is treated as a reuse or
theft signal: the stored token is cleared so the whole session chain dies.

Rotation is a read-then-write on the user row without a compare-and-swap, so
two concurrent refreshes with the same token can both succeed; the second
write wins. Known limitation.

Parameters:
  - context: context.Context
  - refreshToken: string

Returns:
  - *TokenPair: New session credentials
  - error: Unauthorized or storage failures
*/
func (service *Service) Refresh(context context.Context, refreshToken string) (*TokenPair, error) {
	email, err := service.tokens.DecodeRefreshToken(refreshToken)
	if err != nil {
		return nil, apperr.Unauthorized(MsgInvalidRefresh)
	}

	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return nil, apperr.Unauthorized(MsgInvalidRefresh)
	}

	// The token must match the single stored one exactly.
	if user.RefreshToken == nil || *user.RefreshToken != refreshToken {
		if err := service.userRepository.ClearRefreshToken(context, user.ID); err != nil {
			return nil, fmt.Errorf("auth_service_refresh_clear_failed: %w", err)
		}
		service.logger.Warn("refresh_token_reuse_detected", slog.String("user_id", user.ID))
		return nil, apperr.Unauthorized(MsgInvalidRefresh)
	}

	return service.issueTokenPair(context, user)
}

// issueTokenPair mints a fresh access/refresh pair and persists the new
// refresh token as the account's only active one.
func (service *Service) issueTokenPair(context context.Context, user *User) (*TokenPair, error) {
	accessToken, err := service.tokens.CreateAccessToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_access_token_failed: %w", err)
	}

	refreshToken, err := service.tokens.CreateRefreshToken(user.Email)
	if err != nil {
		return nil, fmt.Errorf("auth_service_refresh_token_failed: %w", err)
	}

	if err := service.userRepository.UpdateRefreshToken(context, user.ID, refreshToken); err != nil {
		return nil, fmt.Errorf("auth_service_store_refresh_token_failed: %w", err)
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    MsgBearerTokenType,
	}, nil
}

// # Identity Resolution

/*
ResolveIdentity turns a bearer access token into an authenticated identity.

Description: Decodes the access token, resolves its subject against the
account store, and enforces the email confirmation gate. This is the single
entry point the HTTP authentication middleware relies on.

Parameters:
  - context: context.Context
  - accessToken: string

Returns:
  - *sec.Identity: The acting user
  - error: Unauthorized when the token or account cannot be validated
*/
func (service *Service) ResolveIdentity(context context.Context, accessToken string) (*sec.Identity, error) {
	email, err := service.tokens.DecodeAccessToken(accessToken)
	if err != nil {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}

	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return nil, apperr.Unauthorized("Could not validate credentials")
	}

	if !user.Confirmed {
		return nil, apperr.Unauthorized(MsgEmailNotConfirmed)
	}

	return &sec.Identity{
		UserID:    user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Confirmed: user.Confirmed,
	}, nil
}

/*
CurrentUser returns the full account entity for an authenticated user ID.

Parameters:
  - context: context.Context
  - userID: string

Returns:
  - *User: Hydrated account entity
  - error: NotFound or storage failures
*/
func (service *Service) CurrentUser(context context.Context, userID string) (*User, error) {
	return service.userRepository.FindByID(context, userID)
}

// # Email Confirmation Flow

/*
ConfirmEmail flips the account's confirmed flag using a signed email token.

Description: The token is self-contained (JWT with the email scope), so no
server-side token state exists. Confirmation is idempotent: confirming an
already-confirmed account reports success without touching storage.

Parameters:
  - context: context.Context
  - token: string

Returns:
  - string: Client message describing the outcome
  - error: ValidationError on a bad token or vanished account
*/
func (service *Service) ConfirmEmail(context context.Context, token string) (string, error) {
	email, err := service.tokens.DecodeEmailToken(token)
	if err != nil {
		return "", apperr.ValidationError(MsgVerificationError)
	}

	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		return "", apperr.ValidationError(MsgVerificationError)
	}

	if user.Confirmed {
		return MsgAlreadyConfirmed, nil
	}

	if err := service.userRepository.MarkConfirmed(context, user.ID); err != nil {
		return "", fmt.Errorf("auth_service_confirm_email_failed: %w", err)
	}

	return MsgEmailConfirmed, nil
}

/*
RequestConfirmation re-sends the confirmation email.

Description: The response is generic regardless of whether the account exists,
preventing address enumeration through this endpoint. An already-confirmed
account is told so; everything else gets the check-your-email message.

Parameters:
  - context: context.Context
  - email: string

Returns:
  - string: Client message describing the outcome
  - error: Never a lookup failure; only unexpected internal errors
*/
func (service *Service) RequestConfirmation(context context.Context, email string) (string, error) {
	user, err := service.userRepository.FindByEmail(context, email)
	if err != nil {
		// Unknown address. Same message as the happy path.
		return MsgCheckEmail, nil
	}

	if user.Confirmed {
		return MsgAlreadyConfirmed, nil
	}

	service.scheduleConfirmation(context, user)
	return MsgCheckEmail, nil
}

// scheduleConfirmation mints an email token and queues the confirmation mail.
// Best effort: failures are logged, never propagated.
func (service *Service) scheduleConfirmation(context context.Context, user *User) {
	token, err := service.tokens.CreateEmailToken(user.Email)
	if err != nil {
		service.logger.Error("confirmation_token_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
		return
	}

	mail := notify.ConfirmationMail{
		Email:      user.Email,
		Username:   user.Username,
		ConfirmURL: service.baseURL + "/api/auth/confirm/" + token,
	}

	if err := service.mailer.ScheduleConfirmation(context, mail); err != nil {
		service.logger.Error("confirmation_mail_schedule_failed",
			slog.String("user_id", user.ID),
			slog.Any("error", err),
		)
	}
}

// # Profile Media

/*
UpdateAvatar uploads a new profile image and persists its public URL.

Description: The object key derives from the username, so re-uploading
overwrites the previous avatar instead of accumulating orphans.

Parameters:
  - context: context.Context
  - userID: string
  - contentType: string
  - body: io.Reader (image bytes)

Returns:
  - *User: Account entity with the refreshed avatar URL
  - error: NotFound, upload, or persistence failures
*/
func (service *Service) UpdateAvatar(context context.Context, userID, contentType string, body io.Reader) (*User, error) {
	if service.avatars == nil {
		return nil, apperr.Internal(errors.New("avatar storage is not configured"))
	}

	user, err := service.userRepository.FindByID(context, userID)
	if err != nil {
		return nil, err
	}

	avatarURL, err := service.avatars.Upload(context, "avatars/"+user.Username, contentType, body)
	if err != nil {
		return nil, fmt.Errorf("auth_service_avatar_upload_failed: %w", err)
	}

	if err := service.userRepository.UpdateAvatar(context, user.ID, avatarURL); err != nil {
		return nil, err
	}

	user.AvatarURL = &avatarURL
	return user, nil
}
