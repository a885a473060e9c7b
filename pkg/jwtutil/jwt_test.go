package jwtutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateToken(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	token, err := util.GenerateToken("jane@example.com", 7, "acme")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := util.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", claims.Email)
	assert.Equal(t, uint(7), claims.UserID)
	assert.Equal(t, "acme", claims.TenantIdentifier)
}

func TestValidateTokenRejectsWrongKey(t *testing.T) {
	issuer := NewJWTUtil(&JWTConfig{SigningKey: "key-a", ExpirationHours: 1})
	verifier := NewJWTUtil(&JWTConfig{SigningKey: "key-b", ExpirationHours: 1})

	token, err := issuer.GenerateToken("jane@example.com", 7, "acme")
	require.NoError(t, err)

	_, err = verifier.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	util := NewJWTUtil(&JWTConfig{SigningKey: "test-key", ExpirationHours: 1})

	_, err := util.ValidateToken("not-a-token")
	assert.Error(t, err)
}
