// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

package auth

import (
	"io"
	"log/slog"
)

// testLogger returns a logger that discards everything.
func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
