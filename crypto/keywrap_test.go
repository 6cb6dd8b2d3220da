package crypto

import (
	"crypto/elliptic"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// wrapAndUnwrap runs a full wrap/unwrap cycle through an EncryptionInfo for
// one recipient key pair.
func wrapAndUnwrap(t *testing.T, encryptor *KeyEncryptor, recipientPair *KeyPair, dataKey []byte) []byte {
	t.Helper()
	wrapped, sharedPub, err := encryptor.EncryptDataKey(dataKey)
	require.NoError(t, err)

	info := &EncryptionInfo{
		DataMode:         DataModeAES256CCM,
		IVs:              [][]byte{},
		DataKeys:         wrapped,
		MessagePublicKey: sharedPub,
	}
	decryptor, err := NewKeyDecryptor(recipientPair)
	require.NoError(t, err)
	recovered, err := decryptor.DecryptKey(info)
	require.NoError(t, err)
	return recovered
}

func TestRSAKeyWrapRoundTrip(t *testing.T) {
	kp := mustRSAKeyPair(t)
	dataKey := mustDataKey(t)

	encryptor, err := NewKeyEncryptor([]Recipient{mustRecipient(t, kp)}, rand.Reader, false)
	require.NoError(t, err)

	recovered := wrapAndUnwrap(t, encryptor, kp, dataKey)
	assert.Equal(t, dataKey, recovered)
}

func TestECKeyWrapRoundTrip(t *testing.T) {
	for _, shared := range []bool{false, true} {
		name := "specific ephemeral key"
		if shared {
			name = "shared ephemeral key"
		}
		t.Run(name, func(t *testing.T) {
			kp1 := mustECKeyPair(t, elliptic.P256())
			kp2 := mustECKeyPair(t, elliptic.P256())
			dataKey := mustDataKey(t)

			encryptor, err := NewKeyEncryptor(
				[]Recipient{mustRecipient(t, kp1), mustRecipient(t, kp2)}, rand.Reader, shared)
			require.NoError(t, err)

			assert.Equal(t, dataKey, wrapAndUnwrap(t, encryptor, kp1, dataKey))
			assert.Equal(t, dataKey, wrapAndUnwrap(t, encryptor, kp2, dataKey))
		})
	}
}

func TestSharedEphemeralKeyPlacement(t *testing.T) {
	// Two P-256 recipients and one P-384 recipient: P-256 wins the popularity
	// scan, its recipients carry no per-recipient key, and the P-384 recipient
	// gets its own.
	p256a := mustECKeyPair(t, elliptic.P256())
	p256b := mustECKeyPair(t, elliptic.P256())
	p384 := mustECKeyPair(t, elliptic.P384())

	ra, rb, rc := mustRecipient(t, p256a), mustRecipient(t, p256b), mustRecipient(t, p384)
	encryptor, err := NewKeyEncryptor([]Recipient{ra, rb, rc}, rand.Reader, true)
	require.NoError(t, err)

	dataKey := mustDataKey(t)
	wrapped, sharedPub, err := encryptor.EncryptDataKey(dataKey)
	require.NoError(t, err)

	require.NotNil(t, sharedPub, "shared ephemeral key must be reported")
	assert.Nil(t, wrapped[ra.ID].MessagePublicKey, "shared-curve recipient must not carry its own key")
	assert.Nil(t, wrapped[rb.ID].MessagePublicKey, "shared-curve recipient must not carry its own key")
	assert.NotNil(t, wrapped[rc.ID].MessagePublicKey, "off-curve recipient needs its own ephemeral key")

	// All three can still unwrap.
	info := &EncryptionInfo{DataMode: DataModeAES256CCM, DataKeys: wrapped, MessagePublicKey: sharedPub}
	for _, kp := range []*KeyPair{p256a, p256b, p384} {
		decryptor, err := NewKeyDecryptor(kp)
		require.NoError(t, err)
		recovered, err := decryptor.DecryptKey(info)
		require.NoError(t, err)
		assert.Equal(t, dataKey, recovered)
	}
}

func TestSharedEphemeralDisabled(t *testing.T) {
	p256a := mustECKeyPair(t, elliptic.P256())
	p256b := mustECKeyPair(t, elliptic.P256())

	ra, rb := mustRecipient(t, p256a), mustRecipient(t, p256b)
	encryptor, err := NewKeyEncryptor([]Recipient{ra, rb}, rand.Reader, false)
	require.NoError(t, err)

	wrapped, sharedPub, err := encryptor.EncryptDataKey(mustDataKey(t))
	require.NoError(t, err)

	assert.Nil(t, sharedPub, "no shared key when the optimization is disabled")
	assert.NotNil(t, wrapped[ra.ID].MessagePublicKey)
	assert.NotNil(t, wrapped[rb.ID].MessagePublicKey)
	assert.NotEqual(t, wrapped[ra.ID].MessagePublicKey, wrapped[rb.ID].MessagePublicKey,
		"each recipient must get a fresh ephemeral key")
}

func TestMixedRecipientTypes(t *testing.T) {
	rsaPair := mustRSAKeyPair(t)
	ecPair := mustECKeyPair(t, elliptic.P256())
	dataKey := mustDataKey(t)

	encryptor, err := NewKeyEncryptor(
		[]Recipient{mustRecipient(t, rsaPair), mustRecipient(t, ecPair)}, rand.Reader, true)
	require.NoError(t, err)

	wrapped, sharedPub, err := encryptor.EncryptDataKey(dataKey)
	require.NoError(t, err)
	info := &EncryptionInfo{DataMode: DataModeAES256CCM, DataKeys: wrapped, MessagePublicKey: sharedPub}

	rsaID := mustRecipient(t, rsaPair).ID
	assert.Equal(t, KeyModeRSAPKCS1, wrapped[rsaID].Mode)
	ecID := mustRecipient(t, ecPair).ID
	assert.Equal(t, KeyModeECDHKDF2SHA256AES256CCM, wrapped[ecID].Mode)

	for _, kp := range []*KeyPair{rsaPair, ecPair} {
		decryptor, err := NewKeyDecryptor(kp)
		require.NoError(t, err)
		recovered, err := decryptor.DecryptKey(info)
		require.NoError(t, err)
		assert.Equal(t, dataKey, recovered)
	}
}

func TestNonRecipientReturnsNil(t *testing.T) {
	recipient := mustECKeyPair(t, elliptic.P256())
	outsider := mustECKeyPair(t, elliptic.P256())

	encryptor, err := NewKeyEncryptor([]Recipient{mustRecipient(t, recipient)}, rand.Reader, false)
	require.NoError(t, err)
	wrapped, sharedPub, err := encryptor.EncryptDataKey(mustDataKey(t))
	require.NoError(t, err)
	info := &EncryptionInfo{DataMode: DataModeAES256CCM, DataKeys: wrapped, MessagePublicKey: sharedPub}

	decryptor, err := NewKeyDecryptor(outsider)
	require.NoError(t, err)
	recovered, err := decryptor.DecryptKey(info)
	if err != nil {
		t.Fatalf("non-recipient lookup must not error, got %v", err)
	}
	if recovered != nil {
		t.Fatal("non-recipient must not recover a data key")
	}
}

func TestEmptyRecipientListRejected(t *testing.T) {
	_, err := NewKeyEncryptor(nil, rand.Reader, false)
	var encErr *EncryptionError
	require.ErrorAs(t, err, &encErr)
}

func TestTamperedWrappedKeyFails(t *testing.T) {
	kp := mustECKeyPair(t, elliptic.P256())
	recipient := mustRecipient(t, kp)

	encryptor, err := NewKeyEncryptor([]Recipient{recipient}, rand.Reader, false)
	require.NoError(t, err)
	wrapped, _, err := encryptor.EncryptDataKey(mustDataKey(t))
	require.NoError(t, err)

	keyInfo := wrapped[recipient.ID]
	keyInfo.EncryptedKey[0] ^= 0x01
	wrapped[recipient.ID] = keyInfo
	info := &EncryptionInfo{DataMode: DataModeAES256CCM, DataKeys: wrapped}

	decryptor, err := NewKeyDecryptor(kp)
	require.NoError(t, err)
	_, err = decryptor.DecryptKey(info)
	var decErr *DecryptionError
	require.ErrorAs(t, err, &decErr)
}

func TestMissingMessagePublicKey(t *testing.T) {
	kp := mustECKeyPair(t, elliptic.P256())
	recipient := mustRecipient(t, kp)

	// A malformed envelope: ECDH-wrapped key with neither a recipient-specific
	// nor a shared message public key.
	info := &EncryptionInfo{
		DataMode: DataModeAES256CCM,
		DataKeys: map[KeyID]DataKeyInfo{
			recipient.ID: {Mode: KeyModeECDHKDF2SHA256AES256CCM, EncryptedKey: []byte{1, 2, 3}},
		},
	}
	decryptor, err := NewKeyDecryptor(kp)
	require.NoError(t, err)
	_, err = decryptor.DecryptKey(info)
	var keyErr *KeyError
	require.ErrorAs(t, err, &keyErr)
}

func TestUnsupportedKeyEncryptionMode(t *testing.T) {
	kp := mustRSAKeyPair(t)
	recipient := mustRecipient(t, kp)
	info := &EncryptionInfo{
		DataMode: DataModeAES256CCM,
		DataKeys: map[KeyID]DataKeyInfo{
			recipient.ID: {Mode: KeyEncryptionMode(99), EncryptedKey: []byte{1}},
		},
	}
	decryptor, err := NewKeyDecryptor(kp)
	require.NoError(t, err)
	_, err = decryptor.DecryptKey(info)
	var decErr *DecryptionError
	require.ErrorAs(t, err, &decErr)
}
