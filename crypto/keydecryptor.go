package crypto

import (
	"crypto/rsa"
	"fmt"

	"github.com/sirupsen/logrus"
)

// KeyDecryptor unwraps data keys for one recipient key pair. The key pair's
// identifier is computed once at construction.
type KeyDecryptor struct {
	keyPair *KeyPair
	id      KeyID
}

// NewKeyDecryptor creates a decryptor for the given key pair.
func NewKeyDecryptor(keyPair *KeyPair) (*KeyDecryptor, error) {
	if keyPair == nil {
		return nil, newKeyError("nil key pair", nil)
	}
	id, err := CalculateKeyID(keyPair.public)
	if err != nil {
		return nil, err
	}
	return &KeyDecryptor{keyPair: keyPair, id: id}, nil
}

// ID returns the identifier of the decryptor's key pair.
func (d *KeyDecryptor) ID() KeyID { return d.id }

// DecryptKey looks up and unwraps this key pair's copy of the data key.
// It returns nil, nil when the envelope carries no entry for this key pair:
// not being an authorized recipient is a normal outcome, not an error.
func (d *KeyDecryptor) DecryptKey(info *EncryptionInfo) ([]byte, error) {
	if info == nil {
		return nil, newDecryptionError("nil encryption info", nil)
	}
	keyInfo, ok := info.DataKeys[d.id]
	if !ok {
		logrus.WithFields(logrus.Fields{
			"function": "DecryptKey",
			"key_id":   keyIDPrefix(d.id),
		}).Debug("Key pair is not a recipient of this object")
		return nil, nil
	}
	switch keyInfo.Mode {
	case KeyModeRSAPKCS1:
		return d.unwrapRSA(keyInfo)
	case KeyModeECDHKDF2SHA256AES256CCM:
		return d.unwrapECDH(info, keyInfo)
	default:
		return nil, newDecryptionError(fmt.Sprintf("unsupported key encryption mode %d", int(keyInfo.Mode)), nil)
	}
}

func (d *KeyDecryptor) unwrapRSA(keyInfo DataKeyInfo) ([]byte, error) {
	if d.keyPair.private.keyType != KeyTypeRSA {
		return nil, newDecryptionError("RSA-wrapped key but key pair is not RSA", nil)
	}
	dataKey, err := rsa.DecryptPKCS1v15(nil, d.keyPair.private.rsa, keyInfo.EncryptedKey)
	if err != nil {
		return nil, newDecryptionError("RSA key unwrapping failed", err)
	}
	return dataKey, nil
}

func (d *KeyDecryptor) unwrapECDH(info *EncryptionInfo, keyInfo DataKeyInfo) ([]byte, error) {
	if d.keyPair.private.keyType != KeyTypeEllipticCurves {
		return nil, newDecryptionError("ECDH-wrapped key but key pair is not EC", nil)
	}
	// Recipient-specific ephemeral key wins; fall back to the shared one.
	encoded := keyInfo.MessagePublicKey
	if encoded == nil {
		encoded = info.MessagePublicKey
	}
	if encoded == nil {
		return nil, newKeyError("no message public key present for ECDH unwrapping", nil)
	}
	ephemeral, err := decodeECPublicKey(encoded)
	if err != nil {
		return nil, err
	}
	secret, err := ecdhAgreement(d.keyPair.private.ec, ephemeral)
	if err != nil {
		return nil, newDecryptionError("ECDH agreement failed", err)
	}
	defer ZeroBytes(secret)
	aesKey, iv, err := DeriveKeyAndIV(secret, encoded)
	if err != nil {
		return nil, err
	}
	defer ZeroBytes(aesKey)
	aead, err := newAESCCM(aesKey)
	if err != nil {
		return nil, newDecryptionError("cannot initialize key-unwrapping cipher", err)
	}
	dataKey, err := aead.Open(nil, iv, keyInfo.EncryptedKey, nil)
	if err != nil {
		return nil, newDecryptionError("data key authentication failed", err)
	}
	return dataKey, nil
}
