package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"

	"github.com/pion/dtls/v2/pkg/crypto/ccm"
)

const (
	ccmTagSize = 16
	// RFC 3610: nonce size + length field size = 15.
	ccmLengthFieldSize = 15 - NonceSize
)

// newAESCCM builds an AES-256-CCM AEAD with 7-byte nonces and 16-byte tags.
func newAESCCM(key []byte) (cipher.AEAD, error) {
	if len(key) != DataKeySize {
		return nil, newKeyError(fmt.Sprintf("AES-256 key must be %d bytes, got %d", DataKeySize, len(key)), nil)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, newKeyError("cannot initialize AES cipher", err)
	}
	aead, err := ccm.NewCCM(block, ccmTagSize, NonceSize)
	if err != nil {
		return nil, newKeyError("cannot initialize CCM mode", err)
	}
	return aead, nil
}
