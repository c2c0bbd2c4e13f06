// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

package sec_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontaktapp/kontakt/internal/platform/sec"
)

func newTokenService() *sec.TokenService {
	return sec.NewTokenService("unit-test-secret", "kontakt.test", 15*time.Minute, 7*24*time.Hour, 7*24*time.Hour)
}

/*
TestTokenService_RoundTrip verifies that each token kind decodes back to its subject.
*/
func TestTokenService_RoundTrip(t *testing.T) {
	service := newTokenService()
	subject := "member@kontakt.app"

	tests := []struct {
		name   string
		create func(string) (string, error)
		decode func(string) (string, error)
	}{
		{"access", service.CreateAccessToken, service.DecodeAccessToken},
		{"refresh", service.CreateRefreshToken, service.DecodeRefreshToken},
		{"email", service.CreateEmailToken, service.DecodeEmailToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := tt.create(subject)
			require.NoError(t, err)
			require.NotEmpty(t, token)

			decoded, err := tt.decode(token)
			require.NoError(t, err)
			assert.Equal(t, subject, decoded)
		})
	}
}

/*
TestTokenService_ScopeIsolation verifies that the three token kinds are never
interchangeable: a token minted for one scope must fail decoding under the others.
*/
func TestTokenService_ScopeIsolation(t *testing.T) {
	service := newTokenService()
	subject := "member@kontakt.app"

	accessToken, err := service.CreateAccessToken(subject)
	require.NoError(t, err)
	refreshToken, err := service.CreateRefreshToken(subject)
	require.NoError(t, err)
	emailToken, err := service.CreateEmailToken(subject)
	require.NoError(t, err)

	_, err = service.DecodeRefreshToken(accessToken)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	_, err = service.DecodeAccessToken(refreshToken)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	_, err = service.DecodeAccessToken(emailToken)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)

	_, err = service.DecodeEmailToken(accessToken)
	assert.ErrorIs(t, err, sec.ErrInvalidToken)
}

/*
TestTokenService_TamperAndExpiry verifies that tampered, foreign-key, and
expired tokens all collapse into the same opaque error.
*/
func TestTokenService_TamperAndExpiry(t *testing.T) {
	service := newTokenService()

	t.Run("tampered_payload", func(t *testing.T) {
		token, err := service.CreateAccessToken("member@kontakt.app")
		require.NoError(t, err)

		_, err = service.DecodeAccessToken(token + "x")
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	})

	t.Run("wrong_secret", func(t *testing.T) {
		other := sec.NewTokenService("different-secret", "kontakt.test", time.Minute, time.Minute, time.Minute)
		token, err := other.CreateAccessToken("member@kontakt.app")
		require.NoError(t, err)

		_, err = service.DecodeAccessToken(token)
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	})

	t.Run("expired", func(t *testing.T) {
		expired := sec.NewTokenService("unit-test-secret", "kontakt.test", -time.Minute, -time.Minute, -time.Minute)
		token, err := expired.CreateAccessToken("member@kontakt.app")
		require.NoError(t, err)

		_, err = service.DecodeAccessToken(token)
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := service.DecodeAccessToken("not-a-jwt")
		assert.ErrorIs(t, err, sec.ErrInvalidToken)
	})
}
