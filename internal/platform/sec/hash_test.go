// Copyright (c) 2026 Kontakt. All rights reserved.
// Author: support@kontakt.app

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kontaktapp/kontakt/internal/platform/sec"
)

/*
TestHasher_HashAndVerify verifies the one-way hash contract: the stored value
never equals the plaintext, the right password verifies, the wrong one doesn't.
*/
func TestHasher_HashAndVerify(t *testing.T) {
	hasher := sec.NewHasher(4) // minimum cost keeps the test fast

	hash, err := hasher.Hash("s3cret-pass")
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", hash)

	assert.True(t, hasher.Verify("s3cret-pass", hash))
	assert.False(t, hasher.Verify("wrong-pass", hash))
}

/*
TestHasher_UnknownFormat verifies that a malformed stored hash behaves exactly
like a wrong password — Verify returns false, no panic, no distinct error.
*/
func TestHasher_UnknownFormat(t *testing.T) {
	hasher := sec.NewHasher(0) // zero falls back to the library default

	assert.False(t, hasher.Verify("anything", "not-a-bcrypt-hash"))
	assert.False(t, hasher.Verify("anything", ""))
}

/*
TestHasher_OutOfRangeCost verifies the cost clamp falls back to the default.
*/
func TestHasher_OutOfRangeCost(t *testing.T) {
	hasher := sec.NewHasher(99)

	hash, err := hasher.Hash("pw-123456")
	require.NoError(t, err)
	assert.True(t, hasher.Verify("pw-123456", hash))
}
