// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

/*
Package auth implements the user identity layer of the Kontakt platform.

It defines the core domain entity (User) and the logic for registration,
credential verification, token lifecycle, and email confirmation.

# Architecture

This layer is the "Truth" of the system. The entity defined here has no
external dependencies and encapsulates all business rules related to identity.
*/
package auth

import "time"

// # Domain Entities

// User represents a registered member of the Kontakt platform.
//
// RefreshToken holds the single active refresh token for the account; a nil
// value means no session is active. It is never serialized.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Explicitly omitted from JSON for security.
	RefreshToken *string   `json:"-"` // Omitted for security. Nil when no session is active.
	Confirmed    bool      `json:"confirmed"`
	AvatarURL    *string   `json:"avatar_url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// # Field Identifiers

// Global field names for validation and identity mapping in the authentication domain.
const (
	FieldUsername     = "username"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldToken        = "token"
	FieldRefreshToken = "refresh_token"
	FieldAccessToken  = "access_token"
	FieldTokenType    = "token_type"
	FieldAvatar       = "avatar"
	FieldUser         = "user"
	FieldMessage      = "message"
)
