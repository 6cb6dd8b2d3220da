package crypto

import (
	"bytes"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEnvelopeEndToEnd exercises the full sender/receiver flow: stream
// encryption, recipient fanout with a shared ephemeral key, envelope
// serialization, and per-recipient recovery.
func TestEnvelopeEndToEnd(t *testing.T) {
	recipients := []*KeyPair{
		mustRSAKeyPair(t),
		mustECKeyPair(t, elliptic.P256()),
		mustECKeyPair(t, elliptic.P256()),
		mustECKeyPair(t, elliptic.P521()),
	}
	outsider := mustECKeyPair(t, elliptic.P256())

	recipientKeys := make([]Recipient, len(recipients))
	for i, kp := range recipients {
		recipientKeys[i] = mustRecipient(t, kp)
	}

	// Sender side.
	encryptor, err := NewDataEncryptor(rand.Reader, 2)
	require.NoError(t, err)

	payloads := [][]byte{
		bytes.Repeat([]byte("main content "), 100),
		[]byte(`{"title":"metadata stream"}`),
	}
	cipherTexts := make([][]byte, len(payloads))
	for i, payload := range payloads {
		var out bytes.Buffer
		stream, err := encryptor.OpenEncryptionWriteStream(&out, i)
		require.NoError(t, err)
		_, err = stream.Write(payload)
		require.NoError(t, err)
		require.NoError(t, stream.Close())
		cipherTexts[i] = out.Bytes()
	}

	keyEncryptor, err := NewKeyEncryptor(recipientKeys, rand.Reader, true)
	require.NoError(t, err)
	info, err := encryptor.GenerateEncryptionInfo(keyEncryptor)
	require.NoError(t, err)
	require.NoError(t, encryptor.Close())

	// The envelope travels as JSON alongside the ciphertext.
	transmitted, err := json.Marshal(info)
	require.NoError(t, err)

	// Receiver side, once per recipient.
	for i, kp := range recipients {
		var received EncryptionInfo
		require.NoError(t, json.Unmarshal(transmitted, &received))

		keyDecryptor, err := NewKeyDecryptor(kp)
		require.NoError(t, err)
		decryptor, err := DataDecryptorFromEncryptionInfo(&received, keyDecryptor)
		require.NoError(t, err, "recipient %d", i)
		require.NotNil(t, decryptor, "recipient %d", i)

		for streamIndex, payload := range payloads {
			stream, err := decryptor.OpenDecryptionReadStream(bytes.NewReader(cipherTexts[streamIndex]), streamIndex)
			require.NoError(t, err)
			clear, err := io.ReadAll(stream)
			require.NoError(t, err)
			assert.Equal(t, payload, clear, "recipient %d stream %d", i, streamIndex)
			require.NoError(t, stream.Close())
		}
		require.NoError(t, decryptor.Close())
	}

	// The outsider cannot recover anything, without an error being raised.
	var received EncryptionInfo
	require.NoError(t, json.Unmarshal(transmitted, &received))
	keyDecryptor, err := NewKeyDecryptor(outsider)
	require.NoError(t, err)
	decryptor, err := DataDecryptorFromEncryptionInfo(&received, keyDecryptor)
	require.NoError(t, err)
	assert.Nil(t, decryptor)
}

func TestSecureWipe(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	require.NoError(t, SecureWipe(data))
	assert.Equal(t, make([]byte, 5), data)

	assert.Error(t, SecureWipe(nil))

	// ZeroBytes tolerates nil.
	ZeroBytes(nil)
}
