// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

// Package dberr provides a bridge between low-level database errors and
// higher-level application errors.
package dberr

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kontaktapp/kontakt/internal/platform/apperr"
)

// Wrap inspects a database error and wraps it into a meaningful [apperr.AppError].
// It hides internal database details from the client while classifying the error type.
//
// # Classification
//
//   - pgx.ErrNoRows        -> NOT_FOUND for the named resource
//   - SQLSTATE 23505       -> CONFLICT (duplicate unique field)
//   - anything else        -> INTERNAL_ERROR (transient storage failure)
func Wrap(err error, resource string) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(resource)
	}

	var pgError *pgconn.PgError
	if errors.As(err, &pgError) && pgError.Code == pgerrcode.UniqueViolation {
		return apperr.Conflict(resource + " already exists")
	}

	return apperr.Internal(err)
}

// IsUniqueViolation reports whether err is a unique-constraint violation.
//
// Services use this to distinguish a duplicate-key race that slipped past the
// up-front existence check from genuine storage failures.
func IsUniqueViolation(err error) bool {
	var pgError *pgconn.PgError
	return errors.As(err, &pgError) && pgError.Code == pgerrcode.UniqueViolation
}
