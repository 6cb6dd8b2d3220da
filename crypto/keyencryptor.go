package crypto

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rsa"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Recipient pairs a recipient's key identifier with their public key.
type Recipient struct {
	ID  KeyID
	Key *PublicKey
}

// sharedEphemeral is the precomputed shared-message-key state: one ephemeral
// EC key pair generated for the most common recipient curve at construction.
type sharedEphemeral struct {
	curve   elliptic.Curve
	key     *ecdsa.PrivateKey
	encoded []byte
}

// KeyEncryptor wraps a raw data key for a fixed set of recipients. It holds
// recipient public keys only, never a data key, and may be reused across many
// data objects for the same recipient set.
type KeyEncryptor struct {
	recipients []Recipient
	random     io.Reader
	shared     *sharedEphemeral
}

// NewKeyEncryptor creates an encryptor for the given recipients. The list must
// be non-empty: an empty list would silently produce unrecoverable ciphertext.
// When allowSharedMessageKeyPair is set, one ephemeral EC key pair is generated
// for the most common curve among EC recipients and reused for every recipient
// on that curve.
func NewKeyEncryptor(recipients []Recipient, random io.Reader, allowSharedMessageKeyPair bool) (*KeyEncryptor, error) {
	if len(recipients) == 0 {
		return nil, newEncryptionError("recipient list must not be empty", nil)
	}
	if random == nil {
		return nil, newEncryptionError("nil random source", nil)
	}
	for i, r := range recipients {
		if r.Key == nil {
			return nil, newEncryptionError(fmt.Sprintf("recipient %d has no public key", i), nil)
		}
	}
	e := &KeyEncryptor{
		recipients: append([]Recipient(nil), recipients...),
		random:     random,
	}
	if allowSharedMessageKeyPair {
		if err := e.initSharedEphemeral(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

// initSharedEphemeral scans recipient curves once and generates the shared
// ephemeral key pair for the most common one. Ties resolve to the curve seen
// first in recipient order.
func (e *KeyEncryptor) initSharedEphemeral() error {
	counts := make(map[elliptic.Curve]int)
	var best elliptic.Curve
	for _, r := range e.recipients {
		if r.Key.keyType != KeyTypeEllipticCurves {
			continue
		}
		curve := r.Key.ec.Curve
		counts[curve]++
		if best == nil || counts[curve] > counts[best] {
			best = curve
		}
	}
	if best == nil {
		return nil
	}
	key, err := ecdsa.GenerateKey(best, e.random)
	if err != nil {
		return newEncryptionError("cannot generate shared ephemeral key pair", err)
	}
	encoded, err := encodeECPublicKey(&key.PublicKey)
	if err != nil {
		return newEncryptionError("cannot encode shared ephemeral public key", err)
	}
	logrus.WithFields(logrus.Fields{
		"function": "NewKeyEncryptor",
		"curve":    best.Params().Name,
		"users":    counts[best],
	}).Debug("Generated shared ephemeral message key pair")
	e.shared = &sharedEphemeral{curve: best, key: key, encoded: encoded}
	return nil
}

// EncryptDataKey wraps the raw data key once per recipient and returns the
// per-recipient map plus the shared ephemeral public key bytes, which are
// non-nil only when at least one recipient reused the shared key pair. The
// caller stores the shared key once in EncryptionInfo.MessagePublicKey rather
// than duplicating it per recipient.
func (e *KeyEncryptor) EncryptDataKey(dataKey []byte) (map[KeyID]DataKeyInfo, []byte, error) {
	if len(dataKey) == 0 {
		return nil, nil, newEncryptionError("empty data key", nil)
	}
	wrapped := make(map[KeyID]DataKeyInfo, len(e.recipients))
	sharedUsed := false
	for _, r := range e.recipients {
		switch r.Key.keyType {
		case KeyTypeRSA:
			encrypted, err := rsa.EncryptPKCS1v15(e.random, r.Key.rsa, dataKey)
			if err != nil {
				return nil, nil, newEncryptionError("RSA key wrapping failed for recipient "+keyIDPrefix(r.ID), err)
			}
			wrapped[r.ID] = DataKeyInfo{Mode: KeyModeRSAPKCS1, EncryptedKey: encrypted}
		case KeyTypeEllipticCurves:
			info, usedShared, err := e.wrapForECRecipient(r, dataKey)
			if err != nil {
				return nil, nil, err
			}
			wrapped[r.ID] = info
			sharedUsed = sharedUsed || usedShared
		default:
			return nil, nil, newEncryptionError(fmt.Sprintf("unsupported recipient key type %v", r.Key.keyType), nil)
		}
	}
	logrus.WithFields(logrus.Fields{
		"function":    "EncryptDataKey",
		"recipients":  len(e.recipients),
		"shared_used": sharedUsed,
	}).Debug("Wrapped data key for all recipients")
	if !sharedUsed {
		return wrapped, nil, nil
	}
	return wrapped, e.shared.encoded, nil
}

// wrapForECRecipient performs one ECDH agreement with either the shared or a
// recipient-specific ephemeral key, derives the AES key and nonce, and wraps
// the data key with AES-256-CCM.
func (e *KeyEncryptor) wrapForECRecipient(r Recipient, dataKey []byte) (DataKeyInfo, bool, error) {
	var ephemeral *ecdsa.PrivateKey
	var encoded []byte
	usingShared := e.shared != nil && r.Key.ec.Curve == e.shared.curve
	if usingShared {
		ephemeral = e.shared.key
		encoded = e.shared.encoded
	} else {
		key, err := ecdsa.GenerateKey(r.Key.ec.Curve, e.random)
		if err != nil {
			return DataKeyInfo{}, false, newEncryptionError("cannot generate ephemeral key pair", err)
		}
		ephemeral = key
		encoded, err = encodeECPublicKey(&key.PublicKey)
		if err != nil {
			return DataKeyInfo{}, false, newEncryptionError("cannot encode ephemeral public key", err)
		}
	}
	secret, err := ecdhAgreement(ephemeral, r.Key.ec)
	if err != nil {
		return DataKeyInfo{}, false, newEncryptionError("ECDH agreement failed for recipient "+keyIDPrefix(r.ID), err)
	}
	defer ZeroBytes(secret)
	aesKey, iv, err := DeriveKeyAndIV(secret, encoded)
	if err != nil {
		return DataKeyInfo{}, false, err
	}
	defer ZeroBytes(aesKey)
	aead, err := newAESCCM(aesKey)
	if err != nil {
		return DataKeyInfo{}, false, newEncryptionError("cannot initialize key-wrapping cipher", err)
	}
	info := DataKeyInfo{
		Mode:         KeyModeECDHKDF2SHA256AES256CCM,
		EncryptedKey: aead.Seal(nil, iv, dataKey, nil),
	}
	if !usingShared {
		info.MessagePublicKey = encoded
	}
	return info, usingShared, nil
}
