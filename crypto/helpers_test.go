package crypto

import (
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustRSAKeyPair(t *testing.T) *KeyPair {
	t.Helper()
	kp, err := GenerateKeyPair(rand.Reader, KeyTypeRSA, 2048, nil)
	require.NoError(t, err, "RSA key generation")
	return kp
}

func mustECKeyPair(t *testing.T, curve elliptic.Curve) *KeyPair {
	t.Helper()
	kp, err := GenerateKeyPair(rand.Reader, KeyTypeEllipticCurves, 0, curve)
	require.NoError(t, err, "EC key generation")
	return kp
}

func mustRecipient(t *testing.T, kp *KeyPair) Recipient {
	t.Helper()
	id, err := CalculateKeyID(kp.Public())
	require.NoError(t, err, "key id calculation")
	return Recipient{ID: id, Key: kp.Public()}
}

func mustDataKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, DataKeySize)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}
