package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignVerify(t *testing.T) {
	tokens := &Tokens{Secret: []byte("test-secret"), TTL: time.Hour}

	raw, err := tokens.Sign("u-1", "thandi@example.com", "customer")
	require.NoError(t, err)

	claims, err := tokens.Verify(raw)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "thandi@example.com", claims.Email)
	assert.Equal(t, "customer", claims.Role)
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	signer := &Tokens{Secret: []byte("one"), TTL: time.Hour}
	verifier := &Tokens{Secret: []byte("two"), TTL: time.Hour}

	raw, err := signer.Sign("u-1", "a@b.com", "customer")
	require.NoError(t, err)

	_, err = verifier.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsExpired(t *testing.T) {
	tokens := &Tokens{Secret: []byte("test-secret"), TTL: -time.Minute}

	raw, err := tokens.Sign("u-1", "a@b.com", "customer")
	require.NoError(t, err)

	_, err = tokens.Verify(raw)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyRejectsGarbage(t *testing.T) {
	tokens := &Tokens{Secret: []byte("test-secret"), TTL: time.Hour}
	_, err := tokens.Verify("not.a.jwt")
	assert.ErrorIs(t, err, ErrInvalidToken)
}
