// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

package auth

// # Input Constraints

// Validation bounds for registration input.
const (
	UsernameMinLength = 6
	UsernameMaxLength = 12
	PasswordMinLength = 6
	PasswordMaxLength = 20

	// MaxAvatarSizeBytes caps avatar uploads at 5 MiB.
	MaxAvatarSizeBytes = 5 << 20
)

// # Client Messages

// Stable response messages. Clients match on these strings, so changing them
// is a breaking API change.
const (
	MsgEmailConfirmed    = "Email confirmed"
	MsgAlreadyConfirmed  = "Your email is already confirmed"
	MsgCheckEmail        = "Check your email for confirmation."
	MsgInvalidEmail      = "Invalid email"
	MsgEmailNotConfirmed = "Email not confirmed"
	MsgInvalidPassword   = "Invalid password"
	MsgVerificationError = "Verification error"
	MsgInvalidRefresh    = "Invalid refresh token"
	MsgBearerTokenType   = "bearer"
)
