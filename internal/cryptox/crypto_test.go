package cryptox

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKey_DeterministicAndSaltSensitive(t *testing.T) {
	pass := []byte("correct horse")

	k1 := DeriveKey(pass, []byte("salt-1"))
	k2 := DeriveKey(pass, []byte("salt-1"))
	k3 := DeriveKey(pass, []byte("salt-2"))

	assert.Len(t, k1, KeySize)
	assert.Equal(t, k1, k2)
	assert.NotEqual(t, k1, k3)
}

func TestSealOpen_RoundTrip(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))

	sealed, err := Seal(key, []byte("eyJhbGciOi.access"))
	require.NoError(t, err)
	assert.False(t, bytes.Contains(sealed, []byte("access")))

	plain, err := Open(key, sealed)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOi.access", string(plain))
}

func TestSeal_NonceIsFresh(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))

	a, err := Seal(key, []byte("same"))
	require.NoError(t, err)
	b, err := Seal(key, []byte("same"))
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestOpen_WrongKeyFails(t *testing.T) {
	sealed, err := Seal(DeriveKey([]byte("a"), []byte("salt")), []byte("token"))
	require.NoError(t, err)

	_, err = Open(DeriveKey([]byte("b"), []byte("salt")), sealed)
	require.Error(t, err)
}

func TestOpen_TruncatedInput(t *testing.T) {
	key := DeriveKey([]byte("pw"), []byte("salt"))

	_, err := Open(key, []byte{1, 2, 3})
	require.ErrorIs(t, err, ErrMalformed)
}

func TestSeal_BadKeySize(t *testing.T) {
	_, err := Seal([]byte("short"), []byte("x"))
	require.Error(t, err)
}

func TestRandomBytes(t *testing.T) {
	b, err := RandomBytes(SaltSize)
	require.NoError(t, err)
	assert.Len(t, b, SaltSize)
}
