package jwt_test

import (
	"testing"

	"github.com/jhoicas/bodega-api/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "secreto-de-prueba"

func TestGenerateParse_RoundTrip(t *testing.T) {
	token, err := jwt.Generate(secret, "u-1", "ana", "vendedor", "bodega-api", 5)
	require.NoError(t, err)

	claims, err := jwt.Parse(secret, "bodega-api", token)
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, "ana", claims.Username)
	assert.Equal(t, "vendedor", claims.Role)
}

func TestParse_FirmaIncorrecta(t *testing.T) {
	token, err := jwt.Generate(secret, "u-1", "ana", "admin", "bodega-api", 5)
	require.NoError(t, err)

	_, err = jwt.Parse("otro-secreto", "", token)
	assert.Error(t, err)
}

func TestParse_Expirado(t *testing.T) {
	token, err := jwt.Generate(secret, "u-1", "ana", "admin", "bodega-api", -1)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, "", token)
	assert.Error(t, err)
}

func TestParse_IssuerDistinto(t *testing.T) {
	token, err := jwt.Generate(secret, "u-1", "ana", "admin", "otro-servicio", 5)
	require.NoError(t, err)

	_, err = jwt.Parse(secret, "bodega-api", token)
	assert.Error(t, err)
}

func TestGenerate_SecretVacio(t *testing.T) {
	_, err := jwt.Generate("", "u-1", "ana", "admin", "bodega-api", 5)
	assert.Error(t, err)
}
