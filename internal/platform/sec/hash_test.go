// Copyright (c) 2026 Vidora. All rights reserved.
// Author: dev@vidora.app

package sec_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidora/vidora/internal/platform/sec"
)

/*
TestHashPassword_RoundTrip verifies that a hashed password validates against
its original plain text and nothing else.
*/
func TestHashPassword_RoundTrip(t *testing.T) {
	digest, err := sec.HashPassword("secret1")
	require.NoError(t, err)

	// The digest must never equal (or contain) the plain text.
	assert.NotEqual(t, "secret1", digest)
	assert.NotContains(t, digest, "secret1")

	assert.True(t, sec.CheckPasswordHash("secret1", digest))
	assert.False(t, sec.CheckPasswordHash("secret2", digest))
	assert.False(t, sec.CheckPasswordHash("", digest))
}

/*
TestHashPassword_DistinctSalts verifies that hashing is salted: the same
input yields different digests.
*/
func TestHashPassword_DistinctSalts(t *testing.T) {
	first, err := sec.HashPassword("secret1")
	require.NoError(t, err)

	second, err := sec.HashPassword("secret1")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

/*
TestCheckPasswordHash_MalformedDigest verifies that garbage digests never validate.
*/
func TestCheckPasswordHash_MalformedDigest(t *testing.T) {
	assert.False(t, sec.CheckPasswordHash("secret1", "not-a-bcrypt-digest"))
}
