// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/kontaktapp/kontakt/internal/platform/apperr"
	"github.com/kontaktapp/kontakt/internal/platform/ctxutil"
	"github.com/kontaktapp/kontakt/internal/platform/respond"
	"github.com/kontaktapp/kontakt/internal/platform/sec"
)

// IdentityResolver turns a bearer access token into the acting user.
//
// # Why an interface?
//
// The auth service implements it; defining the contract here decouples the
// middleware from that package and lets unit tests inject a stub. Resolution
// hits the credential store on every request so that a deleted account is
// locked out the moment its row disappears, not when its token expires.
type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, accessToken string) (*sec.Identity, error)
}

// Authenticate extracts and verifies the bearer token from the Authorization header.
//
// # Flow
//  1. Check for 'Authorization: Bearer <token>' header.
//  2. If absent, request proceeds as anonymous.
//  3. If present, resolve the acting user via [IdentityResolver].
//  4. Inject [*sec.Identity] into the request context for downstream use.
func Authenticate(resolver IdentityResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authHeader := request.Header.Get("Authorization")

			// ── 1. Anonymous Access ───────────────────────────────────────────
			if authHeader == "" {
				next.ServeHTTP(writer, request)
				return
			}

			// ── 2. Format Validation ──────────────────────────────────────────
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				respond.Error(writer, request, apperr.Unauthorized("Invalid authorization format"))
				return
			}

			// ── 3. Identity Resolution ────────────────────────────────────────
			identity, err := resolver.ResolveIdentity(request.Context(), parts[1])
			if err != nil {
				respond.Error(writer, request, err)
				return
			}

			// ── 4. Context Injection ──────────────────────────────────────────
			ctx := ctxutil.WithIdentity(request.Context(), identity)
			next.ServeHTTP(writer, request.WithContext(ctx))
		})
	}
}

// RequireAuth blocks requests that are not authenticated.
//
// # Usage
//
// Must be registered in the router AFTER [Authenticate].
func RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		if ctxutil.GetIdentity(request.Context()) == nil {
			respond.Error(writer, request, apperr.Unauthorized("Authentication required"))
			return
		}
		next.ServeHTTP(writer, request)
	})
}
