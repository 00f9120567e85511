package jwt_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgjwt "github.com/jhoicas/backoffice-core/pkg/jwt"
)

const (
	secret = "test-secret-key-for-unit-tests"
	issuer = "backoffice-core-test"
)

func TestGenerateAndParse_ConRole(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", "bodeguero", issuer, 60)
	require.NoError(t, err)

	id, err := pkgjwt.Parse(secret, issuer, tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", id.UserID)
	assert.Equal(t, "bodeguero", id.Role)
}

func TestParse_TokenExpirado(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", "admin", issuer, -1)
	require.NoError(t, err)

	_, err = pkgjwt.Parse(secret, issuer, tok)
	assert.Error(t, err)
}

func TestParse_SecretOEmisorIncorrecto(t *testing.T) {
	tok, err := pkgjwt.Generate(secret, "user-1", "admin", issuer, 60)
	require.NoError(t, err)

	_, err = pkgjwt.Parse("otro-secret", issuer, tok)
	assert.Error(t, err)

	_, err = pkgjwt.Parse(secret, "otro-emisor", tok)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := pkgjwt.Generate("", "user-1", "admin", issuer, 60)
	assert.Error(t, err)
}
