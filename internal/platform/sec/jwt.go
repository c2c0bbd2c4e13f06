// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

// Package sec provides cryptographic primitives and token management.
//
// # Architecture
//
// This package isolates security-sensitive code (Hashing, JWT Signing) from
// the domain logic. It acts as an Infrastructure service injected into the
// Application layer via small constructor-built structs; no ambient globals.
package sec

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kontaktapp/kontakt/pkg/uuid"
)

// Token scopes embedded in the payload so the three token kinds are never
// interchangeable.
const (
	ScopeAccess  = "access_token"
	ScopeRefresh = "refresh_token"
	ScopeEmail   = "email_token"
)

// ErrInvalidToken is returned for every decode failure. The caller never
// learns whether the signature, the expiry, or the scope check failed,
// which avoids building a validation oracle into the API.
var ErrInvalidToken = errors.New("sec: invalid token")

// Claims is the payload embedded inside every Kontakt JWT.
//
// Subject carries the user's email address; Scope pins the token kind.
type Claims struct {
	jwt.RegisteredClaims

	Scope string `json:"scope"`
}

// Identity is the resolved acting user attached to authenticated requests.
//
// It is a read-only projection of the credential store row; mutating it has
// no effect on persisted state.
type Identity struct {
	UserID    string `json:"user_id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
}

// TokenService handles generation and verification of JWT tokens using HS256
// with a server-held secret.
type TokenService struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	emailTTL   time.Duration
}

// NewTokenService creates a new TokenService.
//
// The secret and the three expiry policies are configuration inputs, loaded
// once at startup and read-only afterwards.
func NewTokenService(secret, issuer string, accessTTL, refreshTTL, emailTTL time.Duration) *TokenService {
	return &TokenService{
		secret:     []byte(secret),
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		emailTTL:   emailTTL,
	}
}

// # Token Generation

// CreateAccessToken creates a short-lived access token for the subject.
func (service *TokenService) CreateAccessToken(subject string) (string, error) {
	return service.sign(subject, ScopeAccess, service.accessTTL)
}

// CreateRefreshToken creates a long-lived refresh token for the subject.
func (service *TokenService) CreateRefreshToken(subject string) (string, error) {
	return service.sign(subject, ScopeRefresh, service.refreshTTL)
}

// CreateEmailToken creates a confirmation-link token for the subject.
// Its expiry policy is independent of the session tokens because users
// may not open the confirmation mail for days.
func (service *TokenService) CreateEmailToken(subject string) (string, error) {
	return service.sign(subject, ScopeEmail, service.emailTTL)
}

func (service *TokenService) sign(subject, scope string, timeToLive time.Duration) (string, error) {
	currentTime := time.Now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique per token. Two tokens minted within the same second
			// must still compare unequal for refresh rotation to work.
			ID:        uuid.New(),
			Subject:   subject,
			Issuer:    service.issuer,
			IssuedAt:  jwt.NewNumericDate(currentTime),
			ExpiresAt: jwt.NewNumericDate(currentTime.Add(timeToLive)),
		},
		Scope: scope,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signedToken, err := token.SignedString(service.secret)
	if err != nil {
		return "", err
	}

	return signedToken, nil
}

// # Token Verification

// DecodeAccessToken validates an access token and returns its subject.
func (service *TokenService) DecodeAccessToken(tokenString string) (string, error) {
	return service.decode(tokenString, ScopeAccess)
}

// DecodeRefreshToken validates a refresh token and returns its subject.
func (service *TokenService) DecodeRefreshToken(tokenString string) (string, error) {
	return service.decode(tokenString, ScopeRefresh)
}

// DecodeEmailToken validates a confirmation-link token and returns its subject.
func (service *TokenService) DecodeEmailToken(tokenString string) (string, error) {
	return service.decode(tokenString, ScopeEmail)
}

// decode checks the signature, expiry, and scope of a JWT string.
// Every failure collapses into [ErrInvalidToken].
func (service *TokenService) decode(tokenString, wantScope string) (string, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return service.secret, nil
	})

	if err != nil {
		return "", ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Scope != wantScope || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
