// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

/*
HTTP delivery layer for user identity management.

The handler acts as a thin mediation layer between the web and the domain
service:
  - Protocol: Standard RESTful JSON interface.
  - Security: Orchestrates the access/refresh token pair.
  - Verification: Enforces strict input validation before passing to [Service].

This layer is strictly responsible for transport concerns (status codes,
headers, JSON).
*/

package auth

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kontaktapp/kontakt/internal/platform/middleware"
	requestutil "github.com/kontaktapp/kontakt/internal/platform/request"
	"github.com/kontaktapp/kontakt/internal/platform/respond"
	"github.com/kontaktapp/kontakt/internal/platform/validate"
)

// # Definitions & Constructors

// Handler implements authentication-related HTTP endpoints.
//
// # Scope
//
// This handler manages everything related to the user lifecycle entry points
// (Signup, Login, Refresh, Email Confirmation, Avatar).
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] configured with authentication-specific routes.
//
// # Endpoints
//   - POST /signup          : Creates a new (unconfirmed) account.
//   - POST /login           : Authenticates and returns a token pair.
//   - POST /refresh         : Rotates the refresh token.
//   - GET  /confirm/{token} : Confirms the email address.
//   - POST /request-email   : Re-sends the confirmation email.
//   - GET  /me              : Returns the authenticated profile.
//   - PATCH /avatar         : Replaces the profile avatar.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	// Public endpoints
	router.Post("/signup", handler.signup)
	router.Post("/login", handler.login)
	router.Post("/refresh", handler.refresh)
	router.Get("/confirm/{token}", handler.confirmEmail)
	router.Post("/request-email", handler.requestEmail)

	// Protected endpoints
	router.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth)
		r.Get("/me", handler.me)
		r.Patch("/avatar", handler.updateAvatar)
	})

	return router
}

// # Request Payloads

type signupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type requestEmailRequest struct {
	Email string `json:"email"`
}

/*
Signup handles the creation of a new user account.

POST /api/auth/signup

Description: Validates input, checks for identity conflicts, and persists a
new unconfirmed user profile. The confirmation email is queued asynchronously.

Request:
  - Body: signupRequest (Username, Email, Password)

Response:
  - 201: User: Created user profile
  - 400: ErrInvalidJSON: Bad input or validation failure
  - 409: ErrConflict: Username or Email already exists
*/
func (handler *Handler) signup(writer http.ResponseWriter, request *http.Request) {
	var input signupRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldUsername, input.Username).
		LenBetween(FieldUsername, input.Username, UsernameMinLength, UsernameMaxLength).
		Required(FieldEmail, input.Email).
		Email(FieldEmail, input.Email).
		Required(FieldPassword, input.Password).
		LenBetween(FieldPassword, input.Password, PasswordMinLength, PasswordMaxLength)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Signup(request.Context(), SignupInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})

	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, map[string]any{
		FieldUser:    user,
		FieldMessage: MsgCheckEmail,
	})
}

/*
Login authenticates a user and issues a token pair.

POST /api/auth/login

Description: Verifies credentials against the confirmation gate and the
stored password hash, then rotates the refresh token.

Request:
  - Body: loginRequest (Email, Password)

Response:
  - 200: TokenPair: Access and refresh tokens
  - 401: ErrUnauthorized: Invalid email, unconfirmed email, or invalid password
*/
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	validator.Required(FieldEmail, input.Email)
	validator.Required(FieldPassword, input.Password)

	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	pair, err := handler.authService.Login(request.Context(), LoginInput{
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
Refresh rotates the session using a valid refresh token.

POST /api/auth/refresh

Description: Validates the presented refresh token against the stored one and
issues a fresh token pair. A mismatch kills the stored session.

Request:
  - Body: refreshRequest (RefreshToken)

Response:
  - 200: TokenPair: New session credentials
  - 401: ErrUnauthorized: Missing, invalid, or superseded refresh token
*/
func (handler *Handler) refresh(writer http.ResponseWriter, request *http.Request) {
	var input refreshRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.RefreshToken == "" {
		respond.Error(writer, request, validate.RequiredError(FieldRefreshToken, "This field is required"))
		return
	}

	pair, err := handler.authService.Refresh(request.Context(), input.RefreshToken)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, pair)
}

/*
ConfirmEmail confirms a user's email ownership.

GET /api/auth/confirm/{token}

Description: Validates the signed email token from the confirmation link and
activates the account. Safe to follow twice.

Response:
  - 200: Success: Email confirmed (or already confirmed)
  - 400: ErrValidation: Invalid token or vanished account
*/
func (handler *Handler) confirmEmail(writer http.ResponseWriter, request *http.Request) {
	token := requestutil.Param(request, FieldToken)

	message, err := handler.authService.ConfirmEmail(request.Context(), token)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: message,
	})
}

/*
RequestEmail re-sends the confirmation email.

POST /api/auth/request-email

Description: Queues another confirmation email for an unconfirmed account.
The response never reveals whether the address is registered.

Request:
  - Body: requestEmailRequest (Email)

Response:
  - 200: Success: Generic check-your-email message
  - 400: ErrInvalidJSON: Invalid email format
*/
func (handler *Handler) requestEmail(writer http.ResponseWriter, request *http.Request) {
	var input requestEmailRequest

	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	v := &validate.Validator{}
	v.Required(FieldEmail, input.Email).Email(FieldEmail, input.Email)

	if err := v.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	message, err := handler.authService.RequestConfirmation(request.Context(), input.Email)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]string{
		FieldMessage: message,
	})
}

/*
Me returns the authenticated user's profile.

GET /api/auth/me

Response:
  - 200: User: Current account entity
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.CurrentUser(request.Context(), userID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

/*
UpdateAvatar replaces the authenticated user's profile image.

PATCH /api/auth/avatar

Description: Accepts a multipart form with an "avatar" file part, streams it
to object storage, and persists the returned public URL.

Request:
  - Multipart: avatar (image file, max 5 MiB)

Response:
  - 200: User: Account entity with the refreshed avatar URL
  - 400: ErrValidation: Missing or oversized file part
  - 401: ErrUnauthorized: Authentication required
*/
func (handler *Handler) updateAvatar(writer http.ResponseWriter, request *http.Request) {
	userID, err := requestutil.RequiredUserID(request)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := request.ParseMultipartForm(MaxAvatarSizeBytes); err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldAvatar, "A valid image file is required"))
		return
	}

	file, header, err := request.FormFile(FieldAvatar)
	if err != nil {
		respond.Error(writer, request, validate.RequiredError(FieldAvatar, "A valid image file is required"))
		return
	}
	defer file.Close()

	user, err := handler.authService.UpdateAvatar(
		request.Context(),
		userID,
		header.Header.Get("Content-Type"),
		file,
	)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}
