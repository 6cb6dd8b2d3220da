package crypto

import (
	"bytes"
	"crypto/elliptic"
	"crypto/x509"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveKeyAndIV(t *testing.T) {
	secret := []byte("agreement secret material")
	info := []byte("encoded sender public key")

	key, iv, err := DeriveKeyAndIV(secret, info)
	require.NoError(t, err)
	assert.Len(t, key, DataKeySize)
	assert.Len(t, iv, NonceSize)

	// Deterministic for identical inputs.
	key2, iv2, err := DeriveKeyAndIV(secret, info)
	require.NoError(t, err)
	assert.Equal(t, key, key2)
	assert.Equal(t, iv, iv2)

	// Bound to the sender key: a different shared info must change the output.
	key3, _, err := DeriveKeyAndIV(secret, []byte("another sender key"))
	require.NoError(t, err)
	assert.NotEqual(t, key, key3)

	// And to the secret.
	key4, _, err := DeriveKeyAndIV([]byte("other secret"), info)
	require.NoError(t, err)
	assert.NotEqual(t, key, key4)
}

func TestDeriveKeyAndIVEmptyInputs(t *testing.T) {
	var keyErr *KeyError

	_, _, err := DeriveKeyAndIV(nil, []byte("info"))
	assert.ErrorAs(t, err, &keyErr)

	_, _, err = DeriveKeyAndIV([]byte("secret"), nil)
	assert.ErrorAs(t, err, &keyErr)
}

func TestKDF2OutputSpansDigestBoundary(t *testing.T) {
	// 39 bytes needs two SHA-256 blocks; the second block must not repeat the
	// first.
	out := kdf2SHA256([]byte("seed"), []byte("info"), 64)
	if bytes.Equal(out[:32], out[32:]) {
		t.Fatal("KDF2 counter is not advancing between blocks")
	}
}

func TestEncodeDecodeECPublicKey(t *testing.T) {
	kp := mustECKeyPair(t, elliptic.P256())

	encoded, err := EncodeECPublicKey(kp.Public())
	require.NoError(t, err)

	decoded, err := DecodeECPublicKey(encoded)
	require.NoError(t, err)
	assert.True(t, decoded.Equal(kp.Public()), "decoded key differs from original")
}

func TestEncodeECPublicKeyRejectsRSA(t *testing.T) {
	_, err := EncodeECPublicKey(mustRSAKeyPair(t).Public())
	var keyErr *KeyError
	assert.ErrorAs(t, err, &keyErr)
}

func TestDecodeECPublicKeyInvalid(t *testing.T) {
	var keyErr *KeyError

	_, err := DecodeECPublicKey([]byte{0x30, 0x01, 0x00})
	assert.ErrorAs(t, err, &keyErr, "garbage DER must be rejected")

	// A valid SPKI holding an RSA key is still not an EC key.
	der, err := x509.MarshalPKIXPublicKey(mustRSAKeyPair(t).Public().raw())
	require.NoError(t, err)
	_, err = DecodeECPublicKey(der)
	assert.ErrorAs(t, err, &keyErr)
}
